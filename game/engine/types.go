package engine

// Validation constants
const (
	MinGridSize  = 1
	MaxGridSize  = 64
	MaxBulkMoves = 50
)

// Position represents x,y coordinates
type Position struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Add returns p moved one step in direction d.
func (p Position) Add(d Direction) Position {
	dx, dy := d.Delta()
	return Position{X: p.X + dx, Y: p.Y + dy}
}

// SurroundingCell represents a cell with its absolute position
type SurroundingCell struct {
	X        int      `json:"x"`
	Y        int      `json:"y"`
	Type     CellKind `json:"type,omitempty"`
	Boundary bool     `json:"boundary,omitempty"`
}

// GameState is the authoritative view of one traversal: the grid, the
// player and the bookkeeping the transports expose.
type GameState struct {
	Grid         *Grid              `json:"grid"`
	Actor        *Actor             `json:"-"`
	PlayerPos    Position           `json:"player_pos"`
	Status       ActorStatus        `json:"status"`
	CarrotsEaten int                `json:"carrots_eaten"`
	TotalCarrots int                `json:"total_carrots"`
	Message      string             `json:"message"`
	GameOver     bool               `json:"game_over"`
	Victory      bool               `json:"victory"`
	LevelName    string             `json:"level_name"`
	Rules        Rules              `json:"rules"`
	LastMove     *MoveResult        `json:"last_move,omitempty"`
	MoveHistory  []MoveHistoryEntry `json:"move_history"`
	TotalMoves   int                `json:"total_moves"`

	// CurrentMoves tracks only the moves since the last reset. It mirrors MoveHistory entries
	// but gets cleared on reset while MoveHistory remains cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`

	LocalView3x3 []string `json:"local_view_3x3,omitempty"`
}

// MoveHistoryEntry represents a single move in the game history
type MoveHistoryEntry struct {
	Action       string    `json:"action"`
	FromPosition Position  `json:"from_position"`
	ToPosition   Position  `json:"to_position"`
	Event        EventKind `json:"event"`
	Timestamp    int64     `json:"timestamp"`
	Success      bool      `json:"success"`
	MoveNumber   int       `json:"move_number"`
}

// Snapshot returns a deep copy of the state that shares nothing with the
// engine, safe to read after the caller's lock is released.
func (gs *GameState) Snapshot() *GameState {
	if gs == nil {
		return nil
	}
	snap := *gs
	if gs.Grid != nil {
		snap.Grid = gs.Grid.Clone()
	}
	if gs.Actor != nil {
		snap.Actor = gs.Actor.Clone()
	}
	if gs.LastMove != nil {
		last := *gs.LastMove
		last.Steps = append([]Step(nil), gs.LastMove.Steps...)
		snap.LastMove = &last
	}
	snap.MoveHistory = append([]MoveHistoryEntry{}, gs.MoveHistory...)
	snap.CurrentMoves = append([]MoveHistoryEntry{}, gs.CurrentMoves...)
	snap.LocalView3x3 = append([]string(nil), gs.LocalView3x3...)
	return &snap
}
