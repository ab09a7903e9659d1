// Command analyze searches every level in the levels directory for the
// shortest winning input sequence and prints a short report per level:
// dimensions, counts of special cells and whether the level can be won.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v3"

	"github.com/wricardo/carrot-trail/game/config"
	"github.com/wricardo/carrot-trail/game/engine"
)

// LevelReport is the analysis of one level.
type LevelReport struct {
	ID         string
	Name       string
	Width      int
	Height     int
	Carrots    int
	Conveyors  int
	Turnstiles int
	Traps      int
	Ends       int
	Solution   *engine.Solution
	Err        error
}

func analyzeLevel(id string, level *engine.LevelConfig, maxStates int) LevelReport {
	report := LevelReport{ID: id, Name: level.Name}

	grid, err := engine.NewGrid(level.Layout)
	if err != nil {
		report.Err = err
		return report
	}
	report.Width, report.Height = grid.Width(), grid.Height()
	report.Ends = len(grid.Ends())

	for _, row := range grid.Rows() {
		for _, kind := range row {
			switch {
			case kind == engine.Collectible:
				report.Carrots++
			case kind == engine.TrapArmed, kind == engine.TrapSprung:
				report.Traps++
			case engine.IsConveyor(kind):
				report.Conveyors++
			case engine.IsTurnstile(kind):
				report.Turnstiles++
			}
		}
	}

	report.Solution, report.Err = engine.Solve(level, maxStates)
	return report
}

func analyzeDir(dir string, maxStates int) ([]LevelReport, error) {
	manager, err := config.NewManager(dir)
	if err != nil {
		return nil, err
	}
	levels, err := manager.ListConfigs()
	if err != nil {
		return nil, err
	}

	reports := make([]LevelReport, 0, len(levels))
	for _, info := range levels {
		level, err := manager.LoadConfig(info.ConfigID)
		if err != nil {
			reports = append(reports, LevelReport{ID: info.ConfigID, Name: info.Name, Err: err})
			continue
		}
		log.WithField("level", info.ConfigID).Debug("analyzing")
		reports = append(reports, analyzeLevel(info.ConfigID, level, maxStates))
	}
	return reports, nil
}

func formatMoves(moves []engine.Direction) string {
	names := make([]string, len(moves))
	for i, d := range moves {
		names[i] = d.String()
	}
	return strings.Join(names, ",")
}

func printReport(w io.Writer, r LevelReport) {
	fmt.Fprintf(w, "\n=== Analyzing %s ===\n", r.ID)
	fmt.Fprintf(w, "Name: %s\n", r.Name)
	if r.Err != nil {
		fmt.Fprintf(w, "❌ Error: %v\n", r.Err)
		return
	}
	fmt.Fprintf(w, "Grid: %d x %d\n", r.Width, r.Height)
	fmt.Fprintf(w, "Carrots: %d, Conveyors: %d, Turnstiles: %d, Spikes: %d, Ends: %d\n",
		r.Carrots, r.Conveyors, r.Turnstiles, r.Traps, r.Ends)

	s := r.Solution
	switch {
	case s.Winnable:
		fmt.Fprintf(w, "✅ Winnable in %d moves (%d states explored)\n", len(s.Moves), s.Explored)
		fmt.Fprintf(w, "   Route: %s\n", formatMoves(s.Moves))
	case s.Capped:
		fmt.Fprintf(w, "⚠️  No win found within the state limit (%d states explored)\n", s.Explored)
	default:
		fmt.Fprintf(w, "❌ Unwinnable (%d states explored)\n", s.Explored)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("debug") {
		log.SetLevel(log.DebugLevel)
	}

	reports, err := analyzeDir(cmd.String("levels-dir"), cmd.Int("max-states"))
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Fprintf(os.Stdout, "No levels found in %s\n", cmd.String("levels-dir"))
		return nil
	}

	unwinnable := 0
	for _, r := range reports {
		printReport(os.Stdout, r)
		if r.Err != nil || !r.Solution.Winnable {
			unwinnable++
		}
	}
	if unwinnable > 0 {
		return cli.Exit(fmt.Sprintf("%d of %d levels cannot be won", unwinnable, len(reports)), 1)
	}
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "analyze",
		Usage: "search each level for a winning route",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "levels-dir",
				Value:   "levels",
				Usage:   "directory containing level files",
				Sources: cli.EnvVars("LEVELS_DIR"),
			},
			&cli.IntFlag{
				Name:  "max-states",
				Value: engine.DefaultSolveLimit,
				Usage: "maximum number of distinct states to explore per level",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
