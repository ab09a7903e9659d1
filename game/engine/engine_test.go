package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// winningRoute solves DefaultLevelConfig: belts to the first carrot, down
// the west side, then the east belts to the burrow.
var winningRoute = []string{"right", "right", "down", "down", "down", "down", "right", "right", "right", "right"}

func createTestConfig() *LevelConfig {
	return &LevelConfig{
		Name:        "Engine Test Level",
		Description: "Level for engine integration tests",
		Layout: [][]int{
			{3, 3, 3, 3, 3},
			{3, 14, 16, 4, 3},
			{3, 1, 2, 8, 15},
			{3, 3, 3, 3, 3},
		},
		Messages: Messages{
			Welcome:   "Welcome to engine test!",
			Collected: "Carrots: %d",
			Won:       "Won!",
			Lost:      "Lost!",
		},
	}
}

func TestNewEngine(t *testing.T) {
	e, err := NewEngine(createTestConfig())
	require.NoError(t, err)

	state := e.GetState()
	assert.Equal(t, Position{X: 1, Y: 1}, state.PlayerPos)
	assert.Equal(t, StatusPlaying, state.Status)
	assert.Equal(t, "Welcome to engine test!", state.Message)
	assert.Equal(t, 1, e.GetTotalCarrots())
	assert.Equal(t, "Engine Test Level", state.LevelName)
	assert.False(t, e.IsGameOver())
	assert.Equal(t, []string{"###", "#@C", "#.\""}, state.LocalView3x3)
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	config := createTestConfig()
	config.Layout = [][]int{{1, 1}, {1}}

	_, err := NewEngine(config)
	assert.ErrorIs(t, err, ErrMalformedLevel)
}

func TestNewEngineWithDefaults(t *testing.T) {
	e := NewEngineWithDefaults()
	assert.Equal(t, "First Steps", e.GetConfig().Name)
	assert.Equal(t, []string{"right"}, e.GetPossibleMoves())
	assert.Equal(t, 3, e.GetTotalCarrots())
}

func TestEngine_MoveRecordsHistory(t *testing.T) {
	e, err := NewEngine(createTestConfig())
	require.NoError(t, err)

	result, err := e.Move("right")
	require.NoError(t, err)
	assert.Equal(t, EventCollected, result.Event)
	assert.Equal(t, "Carrots: 1", e.GetState().Message)
	assert.Equal(t, 1, e.GetCarrotsEaten())
	assert.Equal(t, 0, e.GetRemainingCarrots())

	result, err = e.Move("up")
	require.NoError(t, err)
	assert.Equal(t, EventBlocked, result.Event)

	history := e.GetMoveHistory()
	require.Len(t, history, 2)
	assert.True(t, history[0].Success)
	assert.False(t, history[1].Success)
	assert.Equal(t, 2, e.GetLastMove().MoveNumber)
	assert.Equal(t, EventBlocked, e.GetLastMove().Event)
}

func TestEngine_InvalidDirectionNotRecorded(t *testing.T) {
	e, err := NewEngine(createTestConfig())
	require.NoError(t, err)

	_, err = e.Move("sideways")
	assert.ErrorIs(t, err, ErrInvalidDirection)
	assert.Empty(t, e.GetMoveHistory())
	assert.Nil(t, e.GetLastMove())
	assert.False(t, e.CanMove("sideways"))
}

func TestEngine_TrapThenConveyorToEnd(t *testing.T) {
	e, err := NewEngine(createTestConfig())
	require.NoError(t, err)

	// (2,1) carrot, (3,1) armed trap, then down onto the belt that pushes
	// into the End at (4,2).
	for _, dir := range []string{"right", "right"} {
		_, err := e.Move(dir)
		require.NoError(t, err)
	}
	kind, _ := e.GetState().Grid.KindAt(Position{X: 3, Y: 1})
	assert.Equal(t, TrapSprung, kind)

	result, err := e.Move("down")
	require.NoError(t, err)
	assert.Equal(t, EventWon, result.Event)
	assert.True(t, e.IsVictory())
	assert.True(t, e.GetState().GameOver)
	assert.Equal(t, Position{X: 4, Y: 2}, e.GetPlayerPosition())
	assert.Equal(t, "Won!", e.GetState().Message)

	_, err = e.Move("left")
	assert.ErrorIs(t, err, ErrActorFinished)
	assert.Empty(t, e.GetPossibleMoves())
}

func TestEngine_LoseOnSprungTrap(t *testing.T) {
	e, err := NewEngine(createTestConfig())
	require.NoError(t, err)

	for _, dir := range []string{"right", "right", "left"} {
		_, err := e.Move(dir)
		require.NoError(t, err)
	}
	result, err := e.Move("right")
	require.NoError(t, err)

	assert.Equal(t, EventLost, result.Event)
	assert.Equal(t, StatusLost, e.GetStatus())
	assert.True(t, e.IsGameOver())
	assert.False(t, e.IsVictory())
	assert.Equal(t, "Lost!", e.GetState().Message)
}

func TestEngine_ResetKeepsCumulativeHistory(t *testing.T) {
	e, err := NewEngine(createTestConfig())
	require.NoError(t, err)

	_, err = e.Move("right")
	require.NoError(t, err)
	_, err = e.Move("right")
	require.NoError(t, err)

	state := e.Reset()
	assert.Equal(t, Position{X: 1, Y: 1}, state.PlayerPos)
	assert.Equal(t, 2, state.TotalMoves)
	assert.Len(t, state.MoveHistory, 2)
	assert.Empty(t, state.CurrentMoves)
	assert.Zero(t, state.CurrentMovesCount)
	assert.Zero(t, state.CarrotsEaten)

	kind, _ := state.Grid.KindAt(Position{X: 3, Y: 1})
	assert.Equal(t, TrapArmed, kind, "reset restores the level's cells")
}

func TestEngine_DefaultLevelRoute(t *testing.T) {
	e := NewEngineWithDefaults()

	results, err := e.BulkMove(winningRoute)
	require.NoError(t, err)
	require.Len(t, results, len(winningRoute))

	assert.Equal(t, EventCollected, results[3].Event)
	assert.Equal(t, EventWon, results[len(results)-1].Event)
	assert.True(t, e.IsVictory())
	assert.Equal(t, 2, e.GetCarrotsEaten())
	assert.Equal(t, 1, e.GetRemainingCarrots())
	assert.Equal(t, Position{X: 7, Y: 5}, e.GetPlayerPosition())
}

func TestEngine_BulkMoveStopsAtGameOver(t *testing.T) {
	e, err := NewEngine(createTestConfig())
	require.NoError(t, err)

	results, err := e.BulkMove([]string{"right", "right", "down", "left", "left"})
	require.NoError(t, err)
	assert.Len(t, results, 3)
	assert.True(t, e.IsVictory())
}

func TestEngine_BulkMoveInvalidToken(t *testing.T) {
	e, err := NewEngine(createTestConfig())
	require.NoError(t, err)

	results, err := e.BulkMove([]string{"right", "nope", "right"})
	assert.ErrorIs(t, err, ErrInvalidDirection)
	assert.Len(t, results, 1)
}

func TestEngine_SetConfig(t *testing.T) {
	e := NewEngineWithDefaults()

	require.NoError(t, e.SetConfig(createTestConfig()))
	assert.Equal(t, "Engine Test Level", e.GetState().LevelName)

	assert.Error(t, e.SetConfig(&LevelConfig{Name: "x"}))
	assert.Equal(t, "Engine Test Level", e.GetConfig().Name)
}

func TestEngine_LocalView(t *testing.T) {
	e, err := NewEngine(createTestConfig())
	require.NoError(t, err)

	view := e.GetLocalView()
	require.Len(t, view, 8)
	assert.Equal(t, Fence, view[0].Type)      // north
	assert.Equal(t, Collectible, view[2].Type) // east
	assert.Equal(t, Ground, view[4].Type)      // south
}

func TestSolve_DefaultLevel(t *testing.T) {
	solution, err := Solve(DefaultLevelConfig(), 0)
	require.NoError(t, err)
	require.True(t, solution.Winnable)
	assert.LessOrEqual(t, len(solution.Moves), len(winningRoute))

	e := NewEngineWithDefaults()
	for _, d := range solution.Moves {
		_, err := e.MoveDirection(d)
		require.NoError(t, err)
	}
	assert.True(t, e.IsVictory())
}

func TestSolve_NoEndIsUnwinnable(t *testing.T) {
	config := createTestConfig()
	config.Layout = [][]int{{14, 1, 16, 1}}

	solution, err := Solve(config, 0)
	require.NoError(t, err)
	assert.False(t, solution.Winnable)
	assert.Greater(t, solution.Explored, 0)
}

func TestGameEngine_SnapshotIsIndependent(t *testing.T) {
	e := NewEngineWithDefaults()
	_, err := e.Move("right")
	require.NoError(t, err)

	snap := e.Snapshot()
	require.NotNil(t, snap.LastMove)
	require.Len(t, snap.MoveHistory, 1)

	for _, dir := range winningRoute[1:] {
		_, err := e.Move(dir)
		require.NoError(t, err)
	}
	require.True(t, e.IsVictory())

	assert.Equal(t, Position{X: 2, Y: 1}, snap.PlayerPos)
	assert.Len(t, snap.MoveHistory, 1)
	assert.Len(t, snap.CurrentMoves, 1)
	assert.Equal(t, StatusPlaying, snap.Actor.Status())
	assert.Equal(t, Position{X: 2, Y: 1}, snap.LastMove.To)
	assert.NotSame(t, e.GetState().Grid, snap.Grid)

	carrot := Position{X: 1, Y: 3}
	live, err := e.GetState().Grid.KindAt(carrot)
	require.NoError(t, err)
	assert.Equal(t, CollectibleConsumed, live)
	kept, err := snap.Grid.KindAt(carrot)
	require.NoError(t, err)
	assert.Equal(t, Collectible, kept)
}
