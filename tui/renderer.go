package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wricardo/carrot-trail/game/engine"
)

var (
	groundStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8a6a4a"))

	grassStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#3fa34d"))

	fenceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7a7a7a")).
			Bold(true)

	trapStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff4444")).
			Bold(true)

	conveyorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#44aaff"))

	turnstileStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#cc88ff"))

	markerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffff44")).
			Bold(true)

	carrotStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff8844")).
			Bold(true)

	playerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#444466")).
			Bold(true)

	hudBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff8844")).
			Bold(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#555555"))
)

func styleFor(kind engine.CellKind) lipgloss.Style {
	switch {
	case kind == engine.Grass:
		return grassStyle
	case kind == engine.Fence:
		return fenceStyle
	case kind == engine.TrapArmed, kind == engine.TrapSprung:
		return trapStyle
	case engine.IsConveyor(kind):
		return conveyorStyle
	case engine.IsTurnstile(kind):
		return turnstileStyle
	case kind == engine.Start, kind == engine.End:
		return markerStyle
	case kind == engine.Collectible:
		return carrotStyle
	default:
		return groundStyle
	}
}

// RenderBoard draws the grid with the player at player. Each cell is two
// columns wide.
func RenderBoard(g *engine.Grid, player engine.Position) string {
	if g == nil {
		return "No level loaded"
	}

	rows := g.Rows()
	lines := make([]string, 0, len(rows))
	for y, row := range rows {
		var b strings.Builder
		for x, kind := range row {
			if player.X == x && player.Y == y {
				b.WriteString(playerStyle.Render("@ "))
				continue
			}
			b.WriteString(styleFor(kind).Render(kind.Glyph() + " "))
		}
		lines = append(lines, b.String())
	}
	return strings.Join(lines, "\n")
}

// RenderHUD renders level, progress and the outcome of the last move.
func RenderHUD(state *engine.GameState, last *engine.MoveResult, err error) string {
	if state == nil {
		return ""
	}

	parts := []string{
		titleStyle.Render("🥕 " + state.LevelName),
		"",
		fmt.Sprintf("Carrots: %d/%d", state.CarrotsEaten, state.TotalCarrots),
		fmt.Sprintf("Moves: %d", state.CurrentMovesCount),
		fmt.Sprintf("Status: %s", state.Status),
	}

	if last != nil {
		line := fmt.Sprintf("Last: %s %s", last.Direction, last.Event)
		if len(last.Steps) > 1 {
			line += fmt.Sprintf(" (%d landings)", len(last.Steps))
		}
		parts = append(parts, line)
	}

	parts = append(parts, "", state.Message)
	switch {
	case err != nil:
		parts = append(parts, trapStyle.Render("Error: "+err.Error()))
	case state.Victory:
		parts = append(parts, markerStyle.Render("🎉 VICTORY! Press r to play again"))
	case state.GameOver:
		parts = append(parts, trapStyle.Render("💀 GAME OVER. Press r to retry"))
	}

	parts = append(parts, "", helpStyle.Render("WASD/Arrows: Move | R: Reset | Q: Quit"))

	return hudBorderStyle.Render(strings.Join(parts, "\n"))
}
