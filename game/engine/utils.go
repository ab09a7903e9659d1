package engine

import "strings"

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// FindNearestCarrot finds the closest uneaten carrot and returns its position and distance
func FindNearestCarrot(state *GameState) (Position, int, bool) {
	return nearest(state, Collectible)
}

// FindNearestEnd finds the closest End cell and returns its position and distance
func FindNearestEnd(state *GameState) (Position, int, bool) {
	return nearest(state, End)
}

func nearest(state *GameState, kind CellKind) (Position, int, bool) {
	minDistance := -1
	var nearestPos Position
	found := false

	for y, row := range state.Grid.cells {
		for x, k := range row {
			if k != kind {
				continue
			}
			pos := Position{X: x, Y: y}
			distance := ManhattanDistance(state.PlayerPos, pos)
			if minDistance == -1 || distance < minDistance {
				minDistance = distance
				nearestPos = pos
				found = true
			}
		}
	}

	return nearestPos, minDistance, found
}

// GenerateLocalView creates list of 8 surrounding cells around the player
func (gs *GameState) GenerateLocalView() []SurroundingCell {
	px, py := gs.PlayerPos.X, gs.PlayerPos.Y

	directions := []struct{ dx, dy int }{
		{0, -1},  // North
		{1, -1},  // North-East
		{1, 0},   // East
		{1, 1},   // South-East
		{0, 1},   // South
		{-1, 1},  // South-West
		{-1, 0},  // West
		{-1, -1}, // North-West
	}

	surroundings := make([]SurroundingCell, len(directions))
	for i, dir := range directions {
		x, y := px+dir.dx, py+dir.dy
		cell := SurroundingCell{X: x, Y: y}
		if kind, err := gs.Grid.KindAt(Position{X: x, Y: y}); err == nil {
			cell.Type = kind
		} else {
			cell.Boundary = true
		}
		surroundings[i] = cell
	}

	return surroundings
}

// Local3x3 renders the cells around the player as three glyph rows. The
// player is '@' and cells off the grid are '#'.
func (gs *GameState) Local3x3() []string {
	rows := make([]string, 0, 3)
	for dy := -1; dy <= 1; dy++ {
		var b strings.Builder
		for dx := -1; dx <= 1; dx++ {
			p := Position{X: gs.PlayerPos.X + dx, Y: gs.PlayerPos.Y + dy}
			switch kind, err := gs.Grid.KindAt(p); {
			case dx == 0 && dy == 0:
				b.WriteString("@")
			case err != nil:
				b.WriteString("#")
			default:
				b.WriteString(kind.Glyph())
			}
		}
		rows = append(rows, b.String())
	}
	return rows
}

// RenderGrid renders the whole grid as glyph rows with the player as '@'.
func RenderGrid(g *Grid, player Position) []string {
	rows := make([]string, 0, g.height)
	for y, row := range g.cells {
		var b strings.Builder
		for x, k := range row {
			if player.X == x && player.Y == y {
				b.WriteString("@")
				continue
			}
			b.WriteString(k.Glyph())
		}
		rows = append(rows, b.String())
	}
	return rows
}
