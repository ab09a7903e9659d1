package engine

import (
	"errors"
	"fmt"
	"time"
)

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	Reset() *GameState
	IsGameOver() bool
	IsVictory() bool
	GetStatus() ActorStatus
	GetPlayerPosition() Position

	// Movement operations
	Move(direction string) (*MoveResult, error)
	MoveDirection(d Direction) (*MoveResult, error)
	CanMove(direction string) bool
	GetPossibleMoves() []string

	// Configuration
	GetConfig() *LevelConfig
	SetConfig(config *LevelConfig) error

	Snapshot() *GameState

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry

	// Local view
	GetLocalView() []SurroundingCell

	// Carrots
	GetCarrotsEaten() int
	GetTotalCarrots() int
	GetRemainingCarrots() int
}

// GameEngine implements the Engine interface. It is the loop driver for one
// traversal: it owns the Grid and the Actor and hands both to the Resolver
// on every accepted input.
type GameEngine struct {
	config   *LevelConfig
	messages Messages
	resolver *Resolver
	state    *GameState
}

// NewEngine creates a new game engine with the provided level
func NewEngine(config *LevelConfig) (*GameEngine, error) {
	if err := ValidateLevelConfig(config); err != nil {
		return nil, err
	}

	e := &GameEngine{}
	if err := e.load(config); err != nil {
		return nil, err
	}
	return e, nil
}

// NewEngineWithDefaults creates a new game engine on the built-in level
func NewEngineWithDefaults() *GameEngine {
	e := &GameEngine{}
	if err := e.load(DefaultLevelConfig()); err != nil {
		panic(fmt.Sprintf("built-in level is invalid: %v", err))
	}
	return e
}

func (e *GameEngine) load(config *LevelConfig) error {
	state, err := InitGameStateFromConfig(config)
	if err != nil {
		return err
	}
	e.config = config
	e.messages = config.Messages.WithDefaults()
	e.resolver = NewResolver(config.Rules)
	e.state = state
	return nil
}

// InitGameStateFromConfig creates a fresh traversal of the level.
func InitGameStateFromConfig(config *LevelConfig) (*GameState, error) {
	if config == nil {
		config = DefaultLevelConfig()
	}

	grid, err := NewGrid(config.Layout)
	if err != nil {
		return nil, err
	}
	actor := NewActor(grid)

	state := &GameState{
		Grid:              grid,
		Actor:             actor,
		PlayerPos:         actor.Position(),
		Status:            actor.Status(),
		TotalCarrots:      grid.Count(Collectible),
		Message:           config.Messages.WithDefaults().Welcome,
		LevelName:         config.Name,
		Rules:             config.Rules,
		MoveHistory:       []MoveHistoryEntry{},
		CurrentMoves:      []MoveHistoryEntry{},
		CurrentMovesCount: 0,
	}
	state.LocalView3x3 = state.Local3x3()
	return state, nil
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// Snapshot returns a deep copy of the current game state
func (e *GameEngine) Snapshot() *GameState {
	return e.state.Snapshot()
}

// Reset starts a new traversal of the same level
func (e *GameEngine) Reset() *GameState {
	// Preserve cumulative history and totals across resets
	prevHistory := e.state.MoveHistory
	prevTotal := e.state.TotalMoves

	state, err := InitGameStateFromConfig(e.config)
	if err != nil {
		// The level was validated when it was loaded.
		panic(fmt.Sprintf("reset of validated level failed: %v", err))
	}
	e.state = state

	e.state.MoveHistory = prevHistory
	e.state.TotalMoves = prevTotal

	return e.state
}

// IsGameOver returns whether the traversal has ended
func (e *GameEngine) IsGameOver() bool {
	return e.state.Actor.Finished()
}

// IsVictory returns whether the player has reached an End cell
func (e *GameEngine) IsVictory() bool {
	return e.state.Actor.Status() == StatusWon
}

// GetStatus returns the actor status
func (e *GameEngine) GetStatus() ActorStatus {
	return e.state.Actor.Status()
}

// GetPlayerPosition returns the current player position
func (e *GameEngine) GetPlayerPosition() Position {
	return e.state.Actor.Position()
}

// Move parses direction and resolves it. Blocked moves are recorded in the
// history; invalid tokens and input after the game ended are not.
func (e *GameEngine) Move(direction string) (*MoveResult, error) {
	d, err := ParseDirection(direction)
	if err != nil {
		return nil, err
	}
	return e.MoveDirection(d)
}

// MoveDirection resolves one input.
func (e *GameEngine) MoveDirection(d Direction) (*MoveResult, error) {
	result, err := e.resolver.AttemptMove(e.state.Grid, e.state.Actor, d)
	if err != nil {
		if errors.Is(err, ErrActorFinished) {
			e.state.Message = e.messages.GameOver
		}
		return nil, err
	}

	e.state.AddMoveToHistory(d.String(), result)
	e.apply(&result)
	return &result, nil
}

// BulkMove executes moves in sequence until one fails or the game ends.
func (e *GameEngine) BulkMove(moves []string) ([]*MoveResult, error) {
	results := make([]*MoveResult, 0, len(moves))

	for _, direction := range moves {
		if e.IsGameOver() {
			break
		}

		result, err := e.Move(direction)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}

	return results, nil
}

// apply refreshes the derived state fields after a resolved move.
func (e *GameEngine) apply(result *MoveResult) {
	s := e.state
	s.LastMove = result
	s.PlayerPos = s.Actor.Position()
	s.Status = s.Actor.Status()
	s.CarrotsEaten += result.Collected
	s.GameOver = s.Actor.Finished()
	s.Victory = s.Status == StatusWon
	s.LocalView3x3 = s.Local3x3()

	switch result.Event {
	case EventBlocked:
		s.Message = e.messages.Blocked
	case EventCollected:
		s.Message = fmt.Sprintf(e.messages.Collected, s.CarrotsEaten)
	case EventWon:
		s.Message = e.messages.Won
	case EventLost:
		s.Message = e.messages.Lost
	default:
		s.Message = e.messages.Moved
	}
}

// CanMove checks if the player can move in the specified direction
func (e *GameEngine) CanMove(direction string) bool {
	d, err := ParseDirection(direction)
	if err != nil {
		return false
	}
	if !e.state.Actor.Movable() {
		return false
	}
	_, ok := Enterable(e.state.Grid, e.state.Actor.Position(), d)
	return ok
}

// GetPossibleMoves returns all valid directions the player can move
func (e *GameEngine) GetPossibleMoves() []string {
	var possible []string
	for _, d := range Directions {
		if e.CanMove(d.String()) {
			possible = append(possible, d.String())
		}
	}
	return possible
}

// GetConfig returns the current level
func (e *GameEngine) GetConfig() *LevelConfig {
	return e.config
}

// SetConfig switches to a new level and resets the game
func (e *GameEngine) SetConfig(config *LevelConfig) error {
	if err := ValidateLevelConfig(config); err != nil {
		return err
	}
	return e.load(config)
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}

// GetLocalView returns the local view around the player
func (e *GameEngine) GetLocalView() []SurroundingCell {
	return e.state.GenerateLocalView()
}

// GetCarrotsEaten returns how many carrots were eaten this traversal
func (e *GameEngine) GetCarrotsEaten() int {
	return e.state.CarrotsEaten
}

// GetTotalCarrots returns the number of carrots the level started with
func (e *GameEngine) GetTotalCarrots() int {
	return e.state.TotalCarrots
}

// GetRemainingCarrots returns the number of carrots still on the grid
func (e *GameEngine) GetRemainingCarrots() int {
	return e.state.Grid.Count(Collectible)
}

// AddMoveToHistory adds a resolved move to the game's move history
func (gs *GameState) AddMoveToHistory(action string, result MoveResult) {
	entry := MoveHistoryEntry{
		Action:       action,
		FromPosition: result.From,
		ToPosition:   result.To,
		Event:        result.Event,
		Timestamp:    time.Now().Unix(),
		Success:      result.Event != EventBlocked,
		MoveNumber:   gs.TotalMoves + 1,
	}
	// Append to cumulative history (never cleared by reset) and increment total
	gs.MoveHistory = append(gs.MoveHistory, entry)
	gs.TotalMoves++

	// Append to current segment history and increment its counter
	gs.CurrentMoves = append(gs.CurrentMoves, entry)
	gs.CurrentMovesCount++
}
