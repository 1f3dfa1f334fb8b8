// Command sokostar solves (and optionally optimizes) a Sokoban board read
// from a file or stdin, grounded on the teacher pack's own flag-driven,
// pprof-instrumented CLI shape (bertbaron-pathfinding/examples/sokoban).
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/pprof"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/sokostar/sokostar/board"
	"github.com/sokostar/sokostar/deadlock"
	"github.com/sokostar/sokostar/optimizer"
	"github.com/sokostar/sokostar/search"
	"github.com/sokostar/sokostar/verify"
)

func main() {
	var (
		inputPath  = flag.String("input", "-", "board file, or - for stdin")
		mode       = flag.String("mode", "astar", "search mode: astar or idastar")
		timeout    = flag.Duration("timeout", 30*time.Second, "search wall-clock budget")
		maxMemMiB  = flag.Int("maxmem", 0, "abort below this many MiB free (0 disables)")
		tunnel     = flag.Bool("tunnel", true, "enable tunnel pruning")
		icorral    = flag.Bool("icorral", true, "enable I-corral relevance pruning")
		goalRoom   = flag.Bool("goalroom", true, "enable goal-room fast-forward")
		cpuProfile = flag.String("cpuprofile", "", "write a CPU profile to this path")
		diagYAML   = flag.String("diag", "", "write a YAML diagnostic dump to this path")

		optimizeMetric = flag.String("optimize", "", "metric to optimize the found solution under (empty disables optimization)")
		radiiFlag      = flag.String("radii", "", "comma-separated vicinity radii, e.g. 3,3,5")
		fixpoint       = flag.Bool("fixpoint", true, "iterate the optimizer to a fixpoint")
		verbose        = flag.Bool("v", false, "debug-level logging")
	)
	flag.Parse()

	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.Fatal().Err(err).Msg("could not create CPU profile")
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal().Err(err).Msg("could not start CPU profile")
		}
		defer pprof.StopCPUProfile()
	}

	grid, err := readGrid(*inputPath)
	if err != nil {
		log.Fatal().Err(err).Msg("could not read board")
	}

	b, err := verify.ParseBoard(grid)
	if err != nil {
		log.Fatal().Err(err).Msg("invalid board")
	}
	if err := deadlock.PrecomputeSimple(b); err != nil {
		log.Fatal().Err(err).Msg("simple-deadlock precomputation failed")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	searchMode := search.AStar
	if strings.EqualFold(*mode, "idastar") {
		searchMode = search.IDAStar
	}

	start := time.Now()
	sol, err := search.Solve(ctx, b, search.Options{
		Mode:           searchMode,
		Timeout:        *timeout,
		MaxMemMiB:      *maxMemMiB,
		EnableTunnel:   *tunnel,
		EnableICorral:  *icorral,
		EnableGoalRoom: *goalRoom,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("search failed")
	}
	log.Info().
		Dur("elapsed", time.Since(start)).
		Int("pushes", sol.Pushes).
		Int("moves", sol.Moves).
		Int("nodes", sol.Nodes).
		Msg("solved")

	lurd := sol.LURD
	if *optimizeMetric != "" {
		metric, err := parseMetric(*optimizeMetric)
		if err != nil {
			log.Fatal().Err(err).Msg("bad -optimize value")
		}
		radii, err := parseRadii(*radiiFlag)
		if err != nil {
			log.Fatal().Err(err).Msg("bad -radii value")
		}
		optStart := time.Now()
		optSol, err := optimizer.Optimize(ctx, b, lurd, optimizer.Settings{
			Metric:            metric,
			Radii:             radii,
			MaxMemMiB:         *maxMemMiB,
			IterateToFixpoint: *fixpoint,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("optimization failed")
		}
		log.Info().
			Dur("elapsed", time.Since(optStart)).
			Int("pushes", optSol.Metrics.Pushes).
			Int("moves", optSol.Metrics.Moves).
			Msg("optimized")
		lurd = optSol.LURD
	}

	fmt.Println(lurd)

	if *diagYAML != "" {
		if err := writeDiagnostics(*diagYAML, b, lurd); err != nil {
			log.Error().Err(err).Msg("could not write diagnostic dump")
		}
	}
}

func readGrid(path string) (string, error) {
	var r io.Reader
	if path == "-" {
		r = os.Stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func parseMetric(name string) (optimizer.Metric, error) {
	switch strings.ToUpper(name) {
	case "MOVES_PUSHES":
		return optimizer.MovesPushes, nil
	case "PUSHES_MOVES":
		return optimizer.PushesMoves, nil
	case "BOX_LINES_PUSHES":
		return optimizer.BoxLinesPushes, nil
	case "BOX_LINES_MOVES":
		return optimizer.BoxLinesMoves, nil
	case "BOX_CHANGES_PUSHES":
		return optimizer.BoxChangesPushes, nil
	case "BOX_CHANGES_MOVES":
		return optimizer.BoxChangesMoves, nil
	case "ALL_METRICS_MOVES_PUSHES":
		return optimizer.AllMetricsMovesPushes, nil
	case "ALL_METRICS_BOX_LINES_PUSHES":
		return optimizer.AllMetricsBoxLinesPushes, nil
	}
	return 0, fmt.Errorf("unknown metric %q", name)
}

func parseRadii(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	radii := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("radii entry %q: %w", p, err)
		}
		radii = append(radii, v)
	}
	return radii, nil
}

// diagnostics is the shape of the -diag YAML dump: a snapshot of the
// final solution plus its recomputed metrics, for offline inspection
// without re-running the solver.
type diagnostics struct {
	Width   int           `yaml:"width"`
	Height  int           `yaml:"height"`
	LURD    string        `yaml:"lurd"`
	Metrics verify.Result `yaml:"metrics"`
}

func writeDiagnostics(path string, b *board.Board, lurd string) error {
	metrics, err := verify.Replay(b, lurd)
	if err != nil {
		return err
	}
	d := diagnostics{Width: b.Width, Height: b.Height, LURD: lurd, Metrics: metrics}
	out, err := yaml.Marshal(d)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}
