package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/carrot-trail/game/engine"
	"github.com/wricardo/carrot-trail/game/service"
)

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	sessions map[string]*service.Session
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id string, config *engine.LevelConfig) (*service.Session, error) {
	// Generate ID if empty (mimics real session manager behavior)
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}

	if _, exists := m.sessions[id]; exists {
		return nil, fmt.Errorf("session %s already exists", id)
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, err
	}

	session := &service.Session{
		ID:             id,
		Engine:         eng,
		Config:         config,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}

	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	session, exists := m.sessions[id]
	if !exists {
		return nil, service.ErrSessionNotFound
	}
	return session, nil
}

func (m *MockSessionManager) GetOrCreate(id string, config *engine.LevelConfig) (*service.Session, error) {
	if session, exists := m.sessions[id]; exists {
		return session, nil
	}
	return m.Create(id, config)
}

func (m *MockSessionManager) List() []*service.Session {
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	if _, exists := m.sessions[id]; !exists {
		return service.ErrSessionNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return service.ErrSessionNotFound
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.LevelConfig
}

// testLevel is a single corridor: start, ground, carrot, armed spikes, burrow.
func testLevel() *engine.LevelConfig {
	return &engine.LevelConfig{
		Name:        "test",
		Description: "Test corridor",
		Layout:      [][]int{{14, 1, 16, 4, 15}},
		Messages: engine.Messages{
			Welcome:   "Welcome!",
			Collected: "Carrots: %d",
			Won:       "Won!",
			Lost:      "Lost!",
		},
	}
}

func NewMockConfigManager() *MockConfigManager {
	return &MockConfigManager{
		configs: map[string]*engine.LevelConfig{"test": testLevel()},
	}
}

func (m *MockConfigManager) LoadConfig(name string) (*engine.LevelConfig, error) {
	config, exists := m.configs[name]
	if !exists {
		return nil, service.ErrConfigNotFound
	}
	return config, nil
}

func (m *MockConfigManager) ListConfigs() ([]*service.ConfigInfo, error) {
	var configs []*service.ConfigInfo
	for id, config := range m.configs {
		configs = append(configs, &service.ConfigInfo{
			Filename:    id + ".json",
			ConfigID:    id,
			Name:        config.Name,
			Description: config.Description,
		})
	}
	return configs, nil
}

func (m *MockConfigManager) GetDefault() *engine.LevelConfig {
	return m.configs["test"]
}

func (m *MockConfigManager) SaveConfig(name string, config *engine.LevelConfig) error {
	if err := engine.ValidateLevelConfig(config); err != nil {
		return err
	}
	m.configs[name] = config
	return nil
}

func newTestService(t *testing.T) (service.GameService, string) {
	t.Helper()
	svc := service.NewGameService(NewMockSessionManager(), NewMockConfigManager())
	info, err := svc.CreateSession(context.Background(), "test")
	require.NoError(t, err)
	return svc, info.ID
}

func TestGameService_CreateSession(t *testing.T) {
	ctx := context.Background()
	svc := service.NewGameService(NewMockSessionManager(), NewMockConfigManager())

	t.Run("named level", func(t *testing.T) {
		info, err := svc.CreateSession(ctx, "test")
		require.NoError(t, err)
		assert.NotEmpty(t, info.ID)
		assert.Equal(t, "test", info.LevelID)
		assert.Equal(t, "Welcome!", info.GameState.Message)
		assert.Equal(t, engine.Position{X: 0, Y: 0}, info.GameState.PlayerPos)
	})

	t.Run("default level", func(t *testing.T) {
		info, err := svc.CreateSession(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, "default", info.LevelID)
		assert.Equal(t, "test", info.Level.Name)
	})

	t.Run("unknown level", func(t *testing.T) {
		_, err := svc.CreateSession(ctx, "nope")
		require.Error(t, err)
		assert.ErrorIs(t, err, service.ErrConfigNotFound)
		assert.Contains(t, err.Error(), "test")
	})
}

func TestGameService_GetSession(t *testing.T) {
	svc, id := newTestService(t)

	info, err := svc.GetSession(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, info.ID)

	_, err = svc.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
}

func TestGameService_Move(t *testing.T) {
	ctx := context.Background()

	t.Run("successful move", func(t *testing.T) {
		svc, id := newTestService(t)

		result, err := svc.Move(ctx, id, "right", false)
		require.NoError(t, err)
		assert.True(t, result.Success)
		require.NotNil(t, result.Step)
		assert.Equal(t, engine.Position{X: 1, Y: 0}, result.Step.To)
		assert.Equal(t, "ground", result.Step.TileKind)
		assert.Equal(t, 1, result.Step.Landings)
		assert.Equal(t, engine.EventMoved, result.Resolution.Event)
		assert.Equal(t, "move", result.Events[0].Type)
	})

	t.Run("collect", func(t *testing.T) {
		svc, id := newTestService(t)

		_, err := svc.Move(ctx, id, "right", false)
		require.NoError(t, err)
		result, err := svc.Move(ctx, id, "right", false)
		require.NoError(t, err)

		assert.True(t, result.Success)
		assert.Equal(t, "Carrots: 1", result.Message)
		assert.Equal(t, 1, result.Step.Collected)
		assert.Equal(t, "carrot_hole", result.Step.TileKind)
		require.Len(t, result.Events, 2)
		assert.Equal(t, "collected", result.Events[1].Type)
	})

	t.Run("blocked by boundary", func(t *testing.T) {
		svc, id := newTestService(t)

		result, err := svc.Move(ctx, id, "left", false)
		require.NoError(t, err)
		assert.False(t, result.Success)
		require.NotNil(t, result.AttemptedTo)
		assert.True(t, result.AttemptedTo.Boundary)
		assert.Equal(t, -1, result.AttemptedTo.X)
		assert.Equal(t, "blocked", result.Events[0].Type)
	})

	t.Run("invalid direction", func(t *testing.T) {
		svc, id := newTestService(t)

		_, err := svc.Move(ctx, id, "diagonal", false)
		assert.ErrorIs(t, err, engine.ErrInvalidDirection)
	})

	t.Run("after game over", func(t *testing.T) {
		svc, id := newTestService(t)

		_, err := svc.BulkMove(ctx, id, []string{"right", "right", "right", "right"}, false)
		require.NoError(t, err)

		result, err := svc.Move(ctx, id, "left", false)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, "game_over", result.Events[0].Type)
	})

	t.Run("reset before move", func(t *testing.T) {
		svc, id := newTestService(t)

		_, err := svc.Move(ctx, id, "right", false)
		require.NoError(t, err)
		result, err := svc.Move(ctx, id, "right", true)
		require.NoError(t, err)

		assert.Equal(t, "reset", result.Events[0].Type)
		assert.Equal(t, engine.Position{X: 1, Y: 0}, result.GameState.PlayerPos)
	})

	t.Run("unknown session", func(t *testing.T) {
		svc, _ := newTestService(t)

		_, err := svc.Move(ctx, "missing", "right", false)
		assert.ErrorIs(t, err, service.ErrSessionNotFound)
	})
}

func TestGameService_BulkMove(t *testing.T) {
	ctx := context.Background()

	t.Run("win", func(t *testing.T) {
		svc, id := newTestService(t)

		result, err := svc.BulkMove(ctx, id, []string{"right", "right", "right", "right"}, false)
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, 4, result.MovesExecuted)
		assert.Equal(t, service.StopWon, result.StopReasonCode)
		assert.Zero(t, result.StoppedOnMove)
		assert.True(t, result.GameOver)
		assert.Equal(t, 1, result.CarrotsDelta)
		assert.Equal(t, engine.Position{X: 4, Y: 0}, result.EndPos)
		assert.Len(t, result.Steps, 4)
		assert.Empty(t, result.PossibleMoves)
	})

	t.Run("lose stops remaining moves", func(t *testing.T) {
		svc, id := newTestService(t)

		moves := []string{"right", "right", "right", "left", "right", "right"}
		result, err := svc.BulkMove(ctx, id, moves, false)
		require.NoError(t, err)
		assert.Equal(t, 5, result.MovesExecuted)
		assert.Equal(t, service.StopLost, result.StopReasonCode)
		assert.Equal(t, 5, result.StoppedOnMove)
		assert.Equal(t, "Lost!", result.Message)
	})

	t.Run("blocked", func(t *testing.T) {
		svc, id := newTestService(t)

		result, err := svc.BulkMove(ctx, id, []string{"right", "up", "right"}, false)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, 1, result.MovesExecuted)
		assert.Equal(t, service.StopBlocked, result.StopReasonCode)
		assert.Equal(t, 2, result.StoppedOnMove)
		require.NotNil(t, result.AttemptedTo)
		assert.Equal(t, engine.Position{X: 1, Y: -1}, engine.Position{X: result.AttemptedTo.X, Y: result.AttemptedTo.Y})
	})

	t.Run("invalid direction", func(t *testing.T) {
		svc, id := newTestService(t)

		result, err := svc.BulkMove(ctx, id, []string{"right", "jump"}, false)
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, service.StopInvalidDirection, result.StopReasonCode)
		assert.Equal(t, 2, result.StoppedOnMove)
	})

	t.Run("already over", func(t *testing.T) {
		svc, id := newTestService(t)

		_, err := svc.BulkMove(ctx, id, []string{"right", "right", "right", "right"}, false)
		require.NoError(t, err)
		result, err := svc.BulkMove(ctx, id, []string{"left"}, false)
		require.NoError(t, err)
		assert.Equal(t, service.StopGameOver, result.StopReasonCode)
		assert.Zero(t, result.MovesExecuted)
	})

	t.Run("truncated", func(t *testing.T) {
		svc, id := newTestService(t)

		moves := make([]string, engine.MaxBulkMoves+5)
		for i := range moves {
			if i%2 == 0 {
				moves[i] = "right"
			} else {
				moves[i] = "left"
			}
		}
		result, err := svc.BulkMove(ctx, id, moves, false)
		require.NoError(t, err)
		assert.True(t, result.Truncated)
		assert.Equal(t, engine.MaxBulkMoves, result.Limit)
		assert.Equal(t, engine.MaxBulkMoves+5, result.RequestedMoves)
		assert.Equal(t, engine.MaxBulkMoves, result.MovesExecuted)
	})
}

func TestGameService_GetMoveHistory(t *testing.T) {
	ctx := context.Background()
	svc, id := newTestService(t)

	for _, dir := range []string{"right", "left", "right", "left", "right"} {
		_, err := svc.Move(ctx, id, dir, false)
		require.NoError(t, err)
	}

	tests := []struct {
		name      string
		opts      service.HistoryOptions
		wantLen   int
		wantFirst int
		wantNext  bool
	}{
		{"defaults are newest first", service.HistoryOptions{}, 5, 5, false},
		{"ascending", service.HistoryOptions{Order: "asc"}, 5, 1, false},
		{"first page", service.HistoryOptions{Limit: 2, Order: "asc"}, 2, 1, true},
		{"last page", service.HistoryOptions{Page: 3, Limit: 2, Order: "asc"}, 1, 5, false},
		{"desc second page", service.HistoryOptions{Page: 2, Limit: 2}, 2, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history, err := svc.GetMoveHistory(ctx, id, tt.opts)
			require.NoError(t, err)
			assert.Equal(t, 5, history.TotalMoves)
			require.Len(t, history.Moves, tt.wantLen)
			assert.Equal(t, tt.wantFirst, history.Moves[0].MoveNumber)
			assert.Equal(t, tt.wantNext, history.HasNext)
		})
	}

	for _, order := range []string{"asc", "desc"} {
		for _, page := range []int{10, math.MaxInt/20 + 2, math.MaxInt} {
			history, err := svc.GetMoveHistory(ctx, id, service.HistoryOptions{Page: page, Limit: 20, Order: order})
			require.NoError(t, err, "order=%s page=%d", order, page)
			assert.Empty(t, history.Moves)
			assert.NotNil(t, history.Moves)
			assert.False(t, history.HasNext)
			assert.Equal(t, page, history.Page)
		}
	}
}

func TestGameService_StateIsDetached(t *testing.T) {
	ctx := context.Background()
	svc, id := newTestService(t)

	before, err := svc.GetGameState(ctx, id)
	require.NoError(t, err)

	result, err := svc.Move(ctx, id, "right", false)
	require.NoError(t, err)
	_, err = svc.Move(ctx, id, "right", false)
	require.NoError(t, err)

	assert.Equal(t, engine.Position{X: 0, Y: 0}, before.PlayerPos)
	assert.Empty(t, before.MoveHistory)
	kind, err := before.Grid.KindAt(engine.Position{X: 2, Y: 0})
	require.NoError(t, err)
	assert.Equal(t, engine.Collectible, kind)

	assert.Equal(t, engine.Position{X: 1, Y: 0}, result.GameState.PlayerPos)
	assert.Len(t, result.GameState.MoveHistory, 1)
}

func TestGameService_ConcurrentMoveAndRead(t *testing.T) {
	ctx := context.Background()
	svc, id := newTestService(t)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			dir := "right"
			if i%2 == 1 {
				dir = "left"
			}
			_, err := svc.Move(ctx, id, dir, i%7 == 0)
			assert.NoError(t, err)
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			state, err := svc.GetGameState(ctx, id)
			if !assert.NoError(t, err) {
				return
			}
			_, err = json.Marshal(state)
			assert.NoError(t, err)
		}
	}()

	wg.Wait()
}

func TestGameService_ListSessions(t *testing.T) {
	ctx := context.Background()
	svc := service.NewGameService(NewMockSessionManager(), NewMockConfigManager())

	for i := 0; i < 3; i++ {
		_, err := svc.CreateSession(ctx, "test")
		require.NoError(t, err)
	}

	sessions, err := svc.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 3)
}

func TestGameService_DeleteSession(t *testing.T) {
	ctx := context.Background()
	svc, id := newTestService(t)

	require.NoError(t, svc.DeleteSession(ctx, id))
	_, err := svc.GetGameState(ctx, id)
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
}

func TestGameService_Reset(t *testing.T) {
	ctx := context.Background()
	svc, id := newTestService(t)

	_, err := svc.BulkMove(ctx, id, []string{"right", "right"}, false)
	require.NoError(t, err)

	state, err := svc.Reset(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, engine.Position{X: 0, Y: 0}, state.PlayerPos)
	assert.Zero(t, state.CarrotsEaten)
	assert.Equal(t, 1, state.TotalCarrots)
	assert.Equal(t, 2, state.TotalMoves)
	assert.Empty(t, state.CurrentMoves)
}

func TestGameService_SaveConfig(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	level := testLevel()
	level.Name = "copy"
	require.NoError(t, svc.SaveConfig(ctx, "copy", level))

	loaded, err := svc.LoadConfig(ctx, "copy")
	require.NoError(t, err)
	assert.Equal(t, "copy", loaded.Name)

	info, err := svc.CreateSession(ctx, "copy")
	require.NoError(t, err)
	assert.Equal(t, "copy", info.LevelID)

	bad := testLevel()
	bad.Layout = [][]int{{1, 1}}
	assert.ErrorIs(t, svc.SaveConfig(ctx, "bad", bad), engine.ErrMalformedLevel)
}
