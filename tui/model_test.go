package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/carrot-trail/game/engine"
)

func newModel(t *testing.T, layout [][]int, opts ...Option) Model {
	t.Helper()
	e, err := engine.NewEngine(&engine.LevelConfig{
		Name:        "Belt",
		Description: "a conveyor corridor",
		Layout:      layout,
	})
	require.NoError(t, err)
	return NewModel(e, opts...)
}

func press(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok)
	return model, cmd
}

func key(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestModel_AnimatesConveyorAndDropsInput(t *testing.T) {
	m := newModel(t, [][]int{{14, 8, 1, 15}})

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	require.NotNil(t, cmd, "a chained move schedules a frame")
	assert.True(t, m.Moving())
	assert.Equal(t, engine.Position{X: 1, Y: 0}, m.PlayerPosition())
	assert.Equal(t, engine.Position{X: 2, Y: 0}, m.engine.GetPlayerPosition())

	m, cmd = press(t, m, key('d'))
	assert.Nil(t, cmd)
	assert.Equal(t, 1, m.Dropped())
	assert.Equal(t, engine.Position{X: 2, Y: 0}, m.engine.GetPlayerPosition(), "dropped input does not move")

	m, cmd = press(t, m, stepMsg{})
	assert.Nil(t, cmd)
	assert.False(t, m.Moving())
	assert.Equal(t, engine.Position{X: 2, Y: 0}, m.PlayerPosition())

	m, _ = press(t, m, key('d'))
	assert.True(t, m.engine.IsVictory())
	assert.Contains(t, m.View(), "VICTORY")
}

func TestModel_LongChainTicksPerLanding(t *testing.T) {
	m := newModel(t, [][]int{{14, 8, 8, 1, 15}})

	m, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	require.NotNil(t, cmd)
	assert.Len(t, m.landings, 3)

	m, cmd = press(t, m, stepMsg{})
	assert.NotNil(t, cmd)
	assert.Equal(t, engine.Position{X: 2, Y: 0}, m.PlayerPosition())

	m, cmd = press(t, m, stepMsg{})
	assert.Nil(t, cmd)
	assert.False(t, m.Moving())
	assert.Equal(t, engine.Position{X: 3, Y: 0}, m.PlayerPosition())
}

func TestModel_NoAnimationWithZeroDelay(t *testing.T) {
	m := newModel(t, [][]int{{14, 8, 1, 15}}, WithStepDelay(0))

	m, cmd := press(t, m, key('l'))
	assert.Nil(t, cmd)
	assert.False(t, m.Moving())
	assert.Equal(t, engine.Position{X: 2, Y: 0}, m.PlayerPosition())
}

func TestModel_ResetAndFinishedGame(t *testing.T) {
	m := newModel(t, [][]int{{14, 15}})

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	require.True(t, m.engine.IsGameOver())

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	assert.NoError(t, m.err, "moving after the end is not an error for the player")
	assert.Equal(t, engine.Position{X: 1, Y: 0}, m.PlayerPosition())

	m, _ = press(t, m, key('r'))
	assert.False(t, m.engine.IsGameOver())
	assert.Equal(t, engine.Position{X: 0, Y: 0}, m.PlayerPosition())
	assert.Nil(t, m.last)
}

func TestModel_Quit(t *testing.T) {
	m := newModel(t, [][]int{{14, 15}})

	m, cmd := press(t, m, key('q'))
	require.NotNil(t, cmd)
	assert.True(t, m.quitting)
	assert.Equal(t, "Bye! 🥕\n", m.View())
}

func TestView(t *testing.T) {
	e := engine.NewEngineWithDefaults()
	view := NewModel(e).View()

	assert.Contains(t, view, "First Steps")
	assert.Contains(t, view, "Carrots: 0/3")
	assert.Contains(t, view, "Status: playing")
	assert.Contains(t, view, "WASD/Arrows: Move")
}

func TestRenderBoard(t *testing.T) {
	g, err := engine.NewGrid([][]int{{3, 14, 8}, {2, 16, 15}})
	require.NoError(t, err)

	board := RenderBoard(g, engine.Position{X: 1, Y: 0})
	assert.Contains(t, board, "@")
	assert.Contains(t, board, "→")
	assert.Contains(t, board, "E")
	assert.NotContains(t, board, "S", "the player covers the start")

	assert.Equal(t, "No level loaded", RenderBoard(nil, engine.Position{}))
}
