package tui

import (
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wricardo/carrot-trail/game/engine"
)

// DefaultStepDelay is how long each conveyor or turnstile landing is shown.
const DefaultStepDelay = 120 * time.Millisecond

// stepMsg advances the landing animation by one frame.
type stepMsg struct{}

// Model is the Bubbletea model for local play. It owns one engine and
// replays the landings of the last move before accepting more input.
type Model struct {
	engine    *engine.GameEngine
	stepDelay time.Duration

	// landings of the move being shown; input is dropped while non-empty
	landings []engine.Position
	frame    int

	last     *engine.MoveResult
	dropped  int
	err      error
	quitting bool
}

// Option configures a Model.
type Option func(*Model)

// WithStepDelay sets the per-landing animation delay. Zero disables the
// animation.
func WithStepDelay(d time.Duration) Option {
	return func(m *Model) { m.stepDelay = d }
}

// NewModel creates a model driving e.
func NewModel(e *engine.GameEngine, opts ...Option) Model {
	m := Model{engine: e, stepDelay: DefaultStepDelay}
	for _, opt := range opts {
		opt(&m)
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles key presses and animation frames.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case stepMsg:
		if !m.Moving() {
			return m, nil
		}
		m.frame++
		if m.frame >= len(m.landings)-1 {
			m.landings = nil
			m.frame = 0
			return m, nil
		}
		return m, m.tick()
	}

	return m, nil
}

// Moving reports whether a move is still being shown.
func (m Model) Moving() bool {
	return len(m.landings) > 0
}

// Dropped returns how many inputs arrived while a move was being shown.
func (m Model) Dropped() int {
	return m.dropped
}

// PlayerPosition is where the player is drawn, which trails the engine
// during the animation.
func (m Model) PlayerPosition() engine.Position {
	if m.Moving() {
		return m.landings[m.frame]
	}
	return m.engine.GetPlayerPosition()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var dir engine.Direction
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case "up", "w", "k":
		dir = engine.Up
	case "down", "s", "j":
		dir = engine.Down
	case "left", "a", "h":
		dir = engine.Left
	case "right", "d", "l":
		dir = engine.Right
	case "r":
		if m.Moving() {
			m.dropped++
			return m, nil
		}
		m.engine.Reset()
		m.last = nil
		m.err = nil
		return m, nil
	default:
		return m, nil
	}

	if m.Moving() {
		m.dropped++
		return m, nil
	}

	res, err := m.engine.MoveDirection(dir)
	if err != nil {
		// A finished game only needs a reset hint, which the HUD shows.
		if !errors.Is(err, engine.ErrActorFinished) {
			m.err = err
		}
		return m, nil
	}
	m.last = res
	m.err = nil

	if m.stepDelay <= 0 || len(res.Steps) < 2 {
		return m, nil
	}
	m.landings = make([]engine.Position, 0, len(res.Steps))
	for _, step := range res.Steps {
		m.landings = append(m.landings, step.Position)
	}
	m.frame = 0
	return m, m.tick()
}

func (m Model) tick() tea.Cmd {
	return tea.Tick(m.stepDelay, func(time.Time) tea.Msg { return stepMsg{} })
}

// View renders the board next to the HUD.
func (m Model) View() string {
	if m.quitting {
		return "Bye! 🥕\n"
	}

	board := RenderBoard(m.engine.GetState().Grid, m.PlayerPosition())
	hud := RenderHUD(m.engine.GetState(), m.last, m.err)

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		board,
		"  ",
		hud,
	) + "\n"
}
