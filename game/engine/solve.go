package engine

import "fmt"

// DefaultSolveLimit bounds Solve when no limit is given.
const DefaultSolveLimit = 200000

// Solution is the outcome of a breadth-first search over a level.
type Solution struct {
	Winnable bool        `json:"winnable"`
	Moves    []Direction `json:"moves,omitempty"`
	Explored int         `json:"explored"`
	Capped   bool        `json:"capped,omitempty"`
}

type searchNode struct {
	grid  *Grid
	actor *Actor
	path  []Direction
}

// Solve searches for the shortest input sequence that wins the level.
// maxStates bounds the number of distinct (grid, position) states visited.
func Solve(config *LevelConfig, maxStates int) (*Solution, error) {
	if maxStates <= 0 {
		maxStates = DefaultSolveLimit
	}

	grid, err := NewGrid(config.Layout)
	if err != nil {
		return nil, err
	}
	resolver := NewResolver(config.Rules)

	start := searchNode{grid: grid, actor: NewActor(grid)}
	seen := map[string]bool{stateKey(start.grid, start.actor): true}
	queue := []searchNode{start}
	solution := &Solution{}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		solution.Explored++

		for _, d := range Directions {
			g := node.grid.Clone()
			a := node.actor.Clone()

			result, err := resolver.AttemptMove(g, a, d)
			if err != nil {
				return nil, fmt.Errorf("search: %w", err)
			}
			if result.Event == EventBlocked || result.Event == EventLost {
				continue
			}

			path := make([]Direction, len(node.path)+1)
			copy(path, node.path)
			path[len(node.path)] = d

			if result.Event == EventWon {
				solution.Winnable = true
				solution.Moves = path
				return solution, nil
			}

			key := stateKey(g, a)
			if seen[key] {
				continue
			}
			if len(seen) >= maxStates {
				solution.Capped = true
				continue
			}
			seen[key] = true
			queue = append(queue, searchNode{grid: g, actor: a, path: path})
		}
	}

	return solution, nil
}

func stateKey(g *Grid, a *Actor) string {
	p := a.Position()
	return fmt.Sprintf("%d,%d:%s", p.X, p.Y, g.Key())
}
