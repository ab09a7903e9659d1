package engine

import (
	"encoding/json"
	"fmt"
)

// Grid is a fixed-size, mutable 2D array of cell kinds addressed by (x, y),
// x being the column and y the row.
type Grid struct {
	width  int
	height int
	cells  [][]CellKind
	start  Position
	ends   []Position
}

// NewGrid builds a grid from a rectangular table of level codes. The Start
// and End locations are located once here.
func NewGrid(rows [][]int) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: layout is empty", ErrMalformedLevel)
	}

	width := len(rows[0])
	g := &Grid{
		width:  width,
		height: len(rows),
		cells:  make([][]CellKind, len(rows)),
	}

	starts := 0
	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, expected %d", ErrMalformedLevel, y, len(row), width)
		}
		g.cells[y] = make([]CellKind, width)
		for x, code := range row {
			kind, ok := KindFromCode(code)
			if !ok {
				return nil, fmt.Errorf("%w: code %d at (%d,%d) is outside %d..%d",
					ErrMalformedLevel, code, x, y, MinCellCode, MaxCellCode)
			}
			g.cells[y][x] = kind

			switch kind {
			case Start:
				g.start = Position{X: x, Y: y}
				starts++
			case End:
				g.ends = append(g.ends, Position{X: x, Y: y})
			}
		}
	}

	if starts == 0 {
		return nil, fmt.Errorf("%w: no start cell", ErrMalformedLevel)
	}
	if starts > 1 {
		return nil, fmt.Errorf("%w: %d start cells, expected exactly one", ErrMalformedLevel, starts)
	}

	return g, nil
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// InBounds reports whether p addresses a cell of the grid.
func (g *Grid) InBounds(p Position) bool {
	return p.X >= 0 && p.X < g.width && p.Y >= 0 && p.Y < g.height
}

// KindAt returns the kind stored at p.
func (g *Grid) KindAt(p Position) (CellKind, error) {
	if !g.InBounds(p) {
		return 0, fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, p.X, p.Y)
	}
	return g.cells[p.Y][p.X], nil
}

// SetKindAt overwrites the kind stored at p. Only the movement resolver
// mutates a grid in play.
func (g *Grid) SetKindAt(p Position, kind CellKind) error {
	if !g.InBounds(p) {
		return fmt.Errorf("%w: (%d,%d)", ErrOutOfBounds, p.X, p.Y)
	}
	if !kind.Valid() {
		return fmt.Errorf("cannot store unknown cell kind %d", int(kind))
	}
	g.cells[p.Y][p.X] = kind
	return nil
}

// Start returns the single Start location.
func (g *Grid) Start() Position {
	return g.start
}

// Ends returns a copy of the End locations. It may be empty, in which case
// the level cannot be won.
func (g *Grid) Ends() []Position {
	ends := make([]Position, len(g.ends))
	copy(ends, g.ends)
	return ends
}

// IsEnd reports whether p is one of the End locations.
func (g *Grid) IsEnd(p Position) bool {
	for _, e := range g.ends {
		if e == p {
			return true
		}
	}
	return false
}

// Count returns how many cells currently hold kind.
func (g *Grid) Count(kind CellKind) int {
	count := 0
	for _, row := range g.cells {
		for _, k := range row {
			if k == kind {
				count++
			}
		}
	}
	return count
}

// Codes returns the grid as a table of level codes.
func (g *Grid) Codes() [][]int {
	rows := make([][]int, g.height)
	for y, row := range g.cells {
		rows[y] = make([]int, g.width)
		for x, k := range row {
			rows[y][x] = k.Code()
		}
	}
	return rows
}

// Rows returns a copy of the cell kinds, row by row.
func (g *Grid) Rows() [][]CellKind {
	rows := make([][]CellKind, g.height)
	for y, row := range g.cells {
		rows[y] = make([]CellKind, g.width)
		copy(rows[y], row)
	}
	return rows
}

// Clone returns an independent copy of the grid.
func (g *Grid) Clone() *Grid {
	ends := make([]Position, len(g.ends))
	copy(ends, g.ends)
	return &Grid{
		width:  g.width,
		height: g.height,
		cells:  g.Rows(),
		start:  g.start,
		ends:   ends,
	}
}

// Key returns a compact string of the cell contents, used to deduplicate
// states during search.
func (g *Grid) Key() string {
	buf := make([]byte, 0, g.width*g.height)
	for _, row := range g.cells {
		for _, k := range row {
			buf = append(buf, byte(k))
		}
	}
	return string(buf)
}

type gridJSON struct {
	Width  int          `json:"width"`
	Height int          `json:"height"`
	Cells  [][]CellKind `json:"cells"`
}

// MarshalJSON encodes the grid with named cell kinds.
func (g *Grid) MarshalJSON() ([]byte, error) {
	return json.Marshal(gridJSON{
		Width:  g.width,
		Height: g.height,
		Cells:  g.cells,
	})
}

// UnmarshalJSON rebuilds a grid from its JSON form, re-running the level
// checks.
func (g *Grid) UnmarshalJSON(data []byte) error {
	var raw gridJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	codes := make([][]int, len(raw.Cells))
	for y, row := range raw.Cells {
		codes[y] = make([]int, len(row))
		for x, k := range row {
			codes[y][x] = k.Code()
		}
	}

	built, err := NewGrid(codes)
	if err != nil {
		return err
	}
	*g = *built
	return nil
}
