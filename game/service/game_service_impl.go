package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/wricardo/carrot-trail/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// CreateSession creates a new game session on the named level, or on the
// catalogue default when levelID is empty.
func (s *gameServiceImpl) CreateSession(ctx context.Context, levelID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.LevelConfig
	var err error
	if levelID != "" {
		config, err = s.configs.LoadConfig(levelID)
		if err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				return nil, fmt.Errorf("%w: %q, available levels: %v", ErrConfigNotFound, levelID, s.levelIDs())
			}
			return nil, fmt.Errorf("failed to load level %s: %w", levelID, err)
		}
	} else {
		config = s.configs.GetDefault()
		levelID = "default"
	}

	session, err := s.sessions.Create("", config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	session.LevelID = levelID

	return sessionInfo(session), nil
}

func (s *gameServiceImpl) levelIDs() []string {
	var ids []string
	available, err := s.configs.ListConfigs()
	if err != nil {
		return ids
	}
	for _, cfg := range available {
		ids = append(ids, cfg.ConfigID)
	}
	return ids
}

func sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		LevelID:        sess.LevelID,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.Snapshot(),
		Level:          sess.Config,
	}
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sessionInfo(sess), nil
}

// session looks up a session and marks it as accessed.
func (s *gameServiceImpl) session(sessionID string) (*Session, error) {
	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	_ = s.sessions.UpdateLastAccessed(sessionID)
	return sess, nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sessions.Delete(sessionID)
}

// Move executes a single move for a session. A blocked move or input after
// the game ended is reported with Success false; an unknown direction is an
// error.
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string, reset bool) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	events := []GameEvent{}
	if reset {
		sess.Engine.Reset()
		events = append(events, resetEvent())
	}

	prevPos := sess.Engine.GetPlayerPosition()
	res, err := sess.Engine.Move(direction)
	state := sess.Engine.GetState()
	snap := state.Snapshot()

	result := &MoveResult{
		GameState: snap,
		Message:   state.Message,
		Events:    events,
	}

	switch {
	case errors.Is(err, engine.ErrActorFinished):
		result.Events = append(result.Events, GameEvent{
			Type:      "game_over",
			Message:   state.Message,
			Timestamp: time.Now(),
			Position:  prevPos,
		})
		return result, nil
	case err != nil:
		return nil, err
	}

	result.Resolution = snap.LastMove
	result.Events = append(result.Events, moveEvents(res, state)...)

	if res.Event == engine.EventBlocked {
		result.AttemptedTo = attemptInfo(state.Grid, prevPos.Add(res.Direction))
		return result, nil
	}

	result.Success = true
	step := stepInfo(1, res, state.Grid)
	result.Step = &step
	return result, nil
}

// BulkMove executes moves in sequence until one is rejected or the game
// ends. At most engine.MaxBulkMoves moves are attempted per call.
func (s *gameServiceImpl) BulkMove(ctx context.Context, sessionID string, moves []string, reset bool) (*BulkMoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	result := &BulkMoveResult{
		RequestedMoves: len(moves),
		Events:         make([]GameEvent, 0),
		Success:        true,
	}

	if reset {
		sess.Engine.Reset()
		result.Events = append(result.Events, resetEvent())
	}

	start := sess.Engine.GetState()
	result.StartPos = start.PlayerPos
	startCarrots := start.CarrotsEaten

	if len(moves) > engine.MaxBulkMoves {
		result.Truncated = true
		result.Limit = engine.MaxBulkMoves
		moves = moves[:engine.MaxBulkMoves]
	}

	for i, move := range moves {
		if sess.Engine.IsGameOver() {
			result.StoppedReason = "game is over"
			result.StopReasonCode = StopGameOver
			result.StoppedOnMove = i + 1
			break
		}

		prevPos := sess.Engine.GetPlayerPosition()
		res, err := sess.Engine.Move(move)
		if err != nil {
			if !errors.Is(err, engine.ErrInvalidDirection) {
				return nil, err
			}
			result.Success = false
			result.StoppedReason = fmt.Sprintf("move %d: %v", i+1, err)
			result.StopReasonCode = StopInvalidDirection
			result.StoppedOnMove = i + 1
			break
		}

		state := sess.Engine.GetState()
		result.Events = append(result.Events, moveEvents(res, state)...)

		if res.Event == engine.EventBlocked {
			result.Success = false
			result.StoppedReason = fmt.Sprintf("move %d blocked: %s", i+1, move)
			result.StopReasonCode = StopBlocked
			result.StoppedOnMove = i + 1
			result.AttemptedTo = attemptInfo(state.Grid, prevPos.Add(res.Direction))
			break
		}

		result.MovesExecuted++
		result.Steps = append(result.Steps, stepInfo(i+1, res, state.Grid))

		switch res.Event {
		case engine.EventWon:
			result.StoppedReason = "reached the burrow"
			result.StopReasonCode = StopWon
		case engine.EventLost:
			result.StoppedReason = "stepped on sprung spikes"
			result.StopReasonCode = StopLost
		}
		if res.Event == engine.EventWon || res.Event == engine.EventLost {
			if i+1 < len(moves) {
				result.StoppedOnMove = i + 1
			}
			break
		}
	}

	end := sess.Engine.Snapshot()
	result.GameState = end
	result.EndPos = end.PlayerPos
	result.CarrotsDelta = end.CarrotsEaten - startCarrots
	result.GameOver = end.GameOver
	result.Message = end.Message
	result.PossibleMoves = sess.Engine.GetPossibleMoves()
	result.LocalView3x3 = end.LocalView3x3

	return result, nil
}

// Reset resets a game session to initial state
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.Reset().Snapshot(), nil
}

// GetGameState retrieves the current game state
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.Snapshot(), nil
}

// GetMoveHistory returns paginated move history
func (s *gameServiceImpl) GetMoveHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}

	history := sess.Engine.GetMoveHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	// Pages past the end are empty; start is only computed for pages in
	// range so it cannot overflow.
	moves := []engine.MoveHistoryEntry{}
	if opts.Page <= totalPages {
		start := (opts.Page - 1) * opts.Limit
		end := min(start+opts.Limit, total)

		if opts.Order == "desc" {
			// Most recent first
			for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
				moves = append(moves, history[i])
			}
		} else if start < total {
			moves = append(moves, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListConfigs returns the levels in the catalogue
func (s *gameServiceImpl) ListConfigs(ctx context.Context) ([]*ConfigInfo, error) {
	return s.configs.ListConfigs()
}

// LoadConfig loads a specific level
func (s *gameServiceImpl) LoadConfig(ctx context.Context, levelID string) (*engine.LevelConfig, error) {
	return s.configs.LoadConfig(levelID)
}

// SaveConfig saves a level to the catalogue
func (s *gameServiceImpl) SaveConfig(ctx context.Context, levelID string, config *engine.LevelConfig) error {
	return s.configs.SaveConfig(levelID, config)
}

func resetEvent() GameEvent {
	return GameEvent{
		Type:      "reset",
		Message:   "Game reset to initial state",
		Timestamp: time.Now(),
	}
}

// moveEvents turns one resolved move into the events pushed to clients.
func moveEvents(res *engine.MoveResult, state *engine.GameState) []GameEvent {
	now := time.Now()
	if res.Event == engine.EventBlocked {
		return []GameEvent{{
			Type:      "blocked",
			Message:   fmt.Sprintf("Blocked moving %s from (%d,%d)", res.Direction, res.From.X, res.From.Y),
			Timestamp: now,
			Position:  res.From,
		}}
	}

	events := []GameEvent{{
		Type:      "move",
		Message:   fmt.Sprintf("Moved %s to (%d,%d)", res.Direction, res.To.X, res.To.Y),
		Timestamp: now,
		Position:  res.To,
	}}
	if res.Collected > 0 {
		events = append(events, GameEvent{
			Type:      "collected",
			Message:   fmt.Sprintf("Ate %d carrot(s), %d eaten in total", res.Collected, state.CarrotsEaten),
			Timestamp: now,
			Position:  res.To,
		})
	}
	switch res.Event {
	case engine.EventWon:
		events = append(events, GameEvent{Type: "won", Message: state.Message, Timestamp: now, Position: res.To})
	case engine.EventLost:
		events = append(events, GameEvent{Type: "lost", Message: state.Message, Timestamp: now, Position: res.To})
	}
	return events
}

func stepInfo(idx int, res *engine.MoveResult, g *engine.Grid) StepInfo {
	step := StepInfo{
		Idx:       idx,
		Dir:       res.Direction.String(),
		From:      res.From,
		To:        res.To,
		Event:     res.Event,
		Landings:  len(res.Steps),
		Collected: res.Collected,
		Truncated: res.Truncated,
	}
	if kind, err := g.KindAt(res.To); err == nil {
		step.TileGlyph = kind.Glyph()
		step.TileKind = kind.String()
	}
	return step
}

func attemptInfo(g *engine.Grid, target engine.Position) *AttemptInfo {
	info := &AttemptInfo{X: target.X, Y: target.Y}
	kind, err := g.KindAt(target)
	if err != nil {
		info.Glyph = "#"
		info.Kind = "boundary"
		info.Boundary = true
		return info
	}
	info.Glyph = kind.Glyph()
	info.Kind = kind.String()
	return info
}
