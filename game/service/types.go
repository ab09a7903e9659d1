package service

import (
	"time"

	"github.com/wricardo/carrot-trail/game/engine"
)

// Stop reason codes reported by BulkMove.
const (
	StopBlocked          = "blocked"
	StopInvalidDirection = "invalid_direction"
	StopWon              = "won"
	StopLost             = "lost"
	StopGameOver         = "game_over"
)

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string              `json:"id"`
	LevelID        string              `json:"level_id"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	GameState      *engine.GameState   `json:"game_state"`
	Level          *engine.LevelConfig `json:"level"`
}

// MoveResult contains the result of a move operation
type MoveResult struct {
	Success     bool               `json:"success"`
	GameState   *engine.GameState  `json:"game_state"`
	Message     string             `json:"message"`
	Events      []GameEvent        `json:"events,omitempty"`
	Step        *StepInfo          `json:"step,omitempty"`
	AttemptedTo *AttemptInfo       `json:"attempted_to,omitempty"`
	Resolution  *engine.MoveResult `json:"resolution,omitempty"`
}

// BulkMoveResult contains the result of multiple moves
type BulkMoveResult struct {
	// Summary
	MovesExecuted  int               `json:"moves_executed"`
	RequestedMoves int               `json:"requested_moves"`
	Success        bool              `json:"success"`
	GameState      *engine.GameState `json:"game_state"`
	Events         []GameEvent       `json:"events"`
	StoppedReason  string            `json:"stopped_reason,omitempty"`   // Human-readable reason
	StopReasonCode string            `json:"stop_reason_code,omitempty"` // blocked|invalid_direction|won|lost|game_over
	StoppedOnMove  int               `json:"stopped_on_move,omitempty"`  // 1-based index of the move that caused stop
	Truncated      bool              `json:"truncated,omitempty"`
	Limit          int               `json:"limit,omitempty"`

	// Start/end snapshot
	StartPos     engine.Position `json:"start_pos"`
	EndPos       engine.Position `json:"end_pos"`
	CarrotsDelta int             `json:"carrots_delta"`

	// Per-step compact trace (only for this call)
	Steps []StepInfo `json:"steps,omitempty"`

	AttemptedTo *AttemptInfo `json:"attempted_to,omitempty"`

	// Final status aids
	GameOver      bool     `json:"game_over"`
	Message       string   `json:"message,omitempty"`
	PossibleMoves []string `json:"possible_moves,omitempty"`
	LocalView3x3  []string `json:"local_view_3x3,omitempty"`
}

// StepInfo is a compact record for each executed move
type StepInfo struct {
	Idx       int              `json:"idx"`
	Dir       string           `json:"dir"`
	From      engine.Position  `json:"from"`
	To        engine.Position  `json:"to"`
	Event     engine.EventKind `json:"event"`
	Landings  int              `json:"landings"`
	Collected int              `json:"collected,omitempty"`
	Truncated bool             `json:"truncated,omitempty"`
	TileGlyph string           `json:"tile_glyph"`
	TileKind  string           `json:"tile_kind"`
}

// AttemptInfo details the cell a rejected move tried to enter
type AttemptInfo struct {
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Glyph    string `json:"glyph"`
	Kind     string `json:"kind"`
	Boundary bool   `json:"boundary,omitempty"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	Type      string          `json:"type"` // "move", "collected", "won", "lost", "blocked", "reset"
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
	Position  engine.Position `json:"position,omitempty"`
}

// HistoryOptions configures move history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated move history
type HistoryResponse struct {
	Moves       []engine.MoveHistoryEntry `json:"moves"`
	TotalMoves  int                       `json:"total_moves"`
	Page        int                       `json:"page"`
	PageSize    int                       `json:"page_size"`
	TotalPages  int                       `json:"total_pages"`
	HasNext     bool                      `json:"has_next"`
	HasPrevious bool                      `json:"has_previous"`
}

// ConfigInfo describes a level available in the catalogue
type ConfigInfo struct {
	Filename    string `json:"filename"`
	ConfigID    string `json:"config_id"` // The identifier to use for session creation
	Name        string `json:"name"`      // Display name
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Carrots     int    `json:"carrots"`
}
