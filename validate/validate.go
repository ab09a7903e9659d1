// Command validate checks level files in a levels directory. It checks:
//   - JSON or YAML structure and required fields
//   - Grid shape, cell codes (1..17) and exactly one start cell
//   - Presence of at least one end cell
//   - Message templates
//   - Connectivity: an end cell is reachable from the start by single steps
//     over passable cells, ignoring conveyor and turnstile effects
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/carrot-trail/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) info(format string, args ...interface{}) {
	r.Errors = append(r.Errors, "✓ "+fmt.Sprintf(format, args...))
}

// validateLevel loads and validates a single level file.
func validateLevel(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	level, err := engine.LoadLevelConfig(filePath)
	if err != nil {
		result.fail("%v", err)
		return result
	}

	// LoadLevelConfig already built the grid once.
	grid, _ := engine.NewGrid(level.Layout)

	if len(grid.Ends()) == 0 {
		result.fail("Must have at least 1 end cell (code %d)", engine.End.Code())
		return result
	}

	reachable := reachableFrom(grid, grid.Start())
	ends := 0
	for _, end := range grid.Ends() {
		if reachable[end] {
			ends++
		}
	}
	if ends == 0 {
		result.fail("Connectivity failure: no end cell is reachable from the start at (%d,%d)",
			grid.Start().X, grid.Start().Y)
		return result
	}

	carrots, reachableCarrots := 0, 0
	for y, row := range grid.Rows() {
		for x, kind := range row {
			if kind != engine.Collectible {
				continue
			}
			carrots++
			if reachable[engine.Position{X: x, Y: y}] {
				reachableCarrots++
			}
		}
	}

	result.info("Name: %s", level.Name)
	result.info("Grid: %dx%d", grid.Width(), grid.Height())
	result.info("Start: (%d,%d)", grid.Start().X, grid.Start().Y)
	result.info("Connectivity: %d/%d end cells reachable", ends, len(grid.Ends()))
	result.info("Carrots: %d/%d reachable", reachableCarrots, carrots)
	if level.Rules.TurnstilePush {
		result.info("Turnstiles push")
	}

	return result
}

// reachableFrom flood fills from start using 4-directional steps over
// cells that are not solid.
func reachableFrom(grid *engine.Grid, start engine.Position) map[engine.Position]bool {
	visited := map[engine.Position]bool{start: true}
	queue := []engine.Position{start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		for _, d := range engine.Directions {
			next, ok := engine.Enterable(grid, current, d)
			if !ok || visited[next] {
				continue
			}
			visited[next] = true
			queue = append(queue, next)
		}
	}
	return visited
}

func levelFiles(dir string) ([]string, error) {
	var files []string
	for _, pattern := range []string{"*.json", "*.yaml", "*.yml"} {
		matches, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, err
		}
		files = append(files, matches...)
	}
	sort.Strings(files)
	return files, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	files := cmd.Args().Slice()
	if len(files) == 0 {
		var err error
		files, err = levelFiles(cmd.String("levels-dir"))
		if err != nil {
			return fmt.Errorf("finding level files: %w", err)
		}
	}

	allValid := true
	for _, file := range files {
		result := validateLevel(file)
		log.WithFields(log.Fields{"file": result.File, "valid": result.Valid}).Debug("validated")

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if !allValid {
		return cli.Exit("❌ Some levels have errors", 1)
	}
	fmt.Println("✅ All levels are valid!")
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:      "validate",
		Usage:     "validate level files",
		ArgsUsage: "[file ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "levels-dir",
				Value:   "levels",
				Usage:   "directory scanned when no files are given",
				Sources: cli.EnvVars("LEVELS_DIR"),
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
