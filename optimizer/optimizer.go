// Package optimizer implements C9: given a board and a reference LURD
// solution, search a bounded neighbourhood of the solution's own push
// configurations for a strictly better solution under a chosen
// lexicographic metric, iterating to a fixpoint.
package optimizer

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pbnjay/memory"
	"github.com/rs/zerolog/log"

	"github.com/sokostar/sokostar/board"
	"github.com/sokostar/sokostar/boxconf"
	"github.com/sokostar/sokostar/deadlock"
	"github.com/sokostar/sokostar/vicinity"
	"github.com/sokostar/sokostar/verify"
)

const defaultMaxDeadlockK = 3

// Settings configures an Optimize call (spec.md §4.7/§6).
type Settings struct {
	Metric Metric

	// Radii is V: radii[i] is the number of cells nearest by push distance
	// to the i-th relocated box (in ascending box-internal-index order)
	// that a single vicinity expansion tries as its destination, the box's
	// own cell counted among them and skipped. Non-decreasing per spec.md
	// §4.6.
	Radii []int

	// MaxBoxesRelocated caps len(Radii) actually used; zero means use all
	// of Radii.
	MaxBoxesRelocated int

	Timeout   time.Duration
	MaxMemMiB int

	// IterateToFixpoint re-invokes Optimize with each improved solution as
	// the new reference until one full pass produces no improvement.
	IterateToFixpoint bool
}

// Solution is C9's output: an improved (or, at worst, unchanged) LURD
// string plus its full metric set as recomputed by SolutionVerifier.
type Solution struct {
	LURD    string
	Metrics verify.Result
}

// Optimize runs C9 over lurd. Input that fails to verify is rejected with
// an error and a nil Solution. When free memory falls below MaxMemMiB, or
// the solved state is unreachable in the state universe, it returns the
// best solution found so far (the input itself if nothing improved) with a
// nil error. On cancellation or timeout it returns that same best-so-far
// solution together with ErrCancelled or ErrTimeout.
func Optimize(ctx context.Context, b *board.Board, lurd string, settings Settings) (*Solution, error) {
	if settings.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, settings.Timeout)
		defer cancel()
	}

	refMetrics, err := verify.Replay(b, lurd)
	if err != nil {
		return nil, err
	}
	if !refMetrics.Valid {
		return nil, fmt.Errorf("%w: reference solution never reaches a solved state", verify.ErrInvalidSolution)
	}
	ref := lurd

	buckets, err := deadlock.Identify(ctx, b, defaultMaxDeadlockK, 0, 0, 1)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return nil, err
	}

	radii := settings.Radii
	if settings.MaxBoxesRelocated > 0 && settings.MaxBoxesRelocated < len(radii) {
		radii = radii[:settings.MaxBoxesRelocated]
	}

	for {
		if ctx.Err() != nil {
			return &Solution{LURD: ref, Metrics: refMetrics}, resourceErr(ctx)
		}
		if settings.MaxMemMiB > 0 && memory.FreeMemory() < uint64(settings.MaxMemMiB)*1024*1024 {
			log.Warn().Msg("optimizer: aborting pass, free memory below ceiling")
			return &Solution{LURD: ref, Metrics: refMetrics}, nil
		}

		candidateLURD, candidateMetrics, found, err := optimizeOnce(ctx, b, ref, settings.Metric, radii, buckets)
		if err != nil {
			return &Solution{LURD: ref, Metrics: refMetrics}, err
		}
		if !found || !IsBetter(settings.Metric, candidateMetrics, refMetrics) {
			break
		}

		log.Debug().
			Int("pushes", candidateMetrics.Pushes).
			Int("moves", candidateMetrics.Moves).
			Msg("optimizer: improved solution found")

		ref, refMetrics = candidateLURD, candidateMetrics
		if !settings.IterateToFixpoint {
			break
		}
	}

	return &Solution{LURD: ref, Metrics: refMetrics}, nil
}

func resourceErr(ctx context.Context) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return ErrTimeout
	case ctx.Err() != nil:
		return ErrCancelled
	default:
		return nil
	}
}

// optimizeOnce runs Phases 1-3 of C9 a single time against ref, returning
// found=false when the solved state is unreachable inside the state
// universe built from ref (a documented failure mode, not an error).
func optimizeOnce(ctx context.Context, b *board.Board, ref string, metric Metric, radii []int, buckets *deadlock.Buckets) (string, verify.Result, bool, error) {
	configs, err := replayPushConfigs(b, ref)
	if err != nil {
		return "", verify.Result{}, false, err
	}

	universe := newStateSet()
	for _, c := range configs {
		universe.add(c)
	}
	for _, c := range configs {
		res, err := vicinity.Generate(ctx, b, c, radii, buckets, 0, 1)
		if err != nil {
			return "", verify.Result{}, false, err
		}
		universe.merge(res)
		if ctx.Err() != nil {
			return "", verify.Result{}, false, resourceErr(ctx)
		}
	}

	solved, err := dijkstra(ctx, b, configs[0], metric, universe, buckets)
	if err != nil {
		return "", verify.Result{}, false, err
	}
	if solved == nil {
		return "", verify.Result{}, false, nil
	}

	lurdOut, err := reconstructLURD(b, solved)
	if err != nil {
		return "", verify.Result{}, false, err
	}
	metrics, err := verify.Replay(b, lurdOut)
	if err != nil {
		return "", verify.Result{}, false, err
	}
	return lurdOut, metrics, true, nil
}

// stateSet is the Phase 1 state universe U: a hash set of
// BoxConfigurations, structural-equality collision-resolved.
type stateSet struct {
	byHash map[uint64][]boxconf.Configuration
}

func newStateSet() *stateSet {
	return &stateSet{byHash: map[uint64][]boxconf.Configuration{}}
}

func (s *stateSet) add(c boxconf.Configuration) {
	h := c.Hash()
	for _, e := range s.byHash[h] {
		if e.Equals(c) {
			return
		}
	}
	s.byHash[h] = append(s.byHash[h], c)
}

func (s *stateSet) merge(res *vicinity.Result) {
	for _, bucket := range res.Configs {
		for _, c := range bucket {
			s.add(c)
		}
	}
}

func (s *stateSet) contains(c boxconf.Configuration) bool {
	for _, e := range s.byHash[c.Hash()] {
		if e.Equals(c) {
			return true
		}
	}
	return false
}

// replayPushConfigs replays lurd and returns the sequence of box
// configurations C0..Cn: C0 is the board's initial configuration, and Ci
// for i>0 is the configuration immediately after the i-th push (spec.md
// §4.7 Phase 1). Assumes lurd already verified (Optimize checks this
// before calling).
func replayPushConfigs(b *board.Board, lurd string) ([]boxconf.Configuration, error) {
	idx := make([]int, 0, len(b.InitialBoxesRaw))
	for _, raw := range b.InitialBoxesRaw {
		i, ok := b.BoxIndex(raw)
		if !ok {
			return nil, fmt.Errorf("%w: initial box at cell with no box slot", verify.ErrInvalidSolution)
		}
		idx = append(idx, i)
	}
	conf := boxconf.FromIndices(b.NumBoxCells(), idx)
	playerRaw := b.InitialPlayerRaw

	configs := []boxconf.Configuration{conf}
	for i := 0; i < len(lurd); i++ {
		d, isPush, ok := decodeLURD(lurd[i])
		if !ok {
			return nil, fmt.Errorf("%w: invalid character %q", verify.ErrInvalidSolution, lurd[i])
		}
		dst := b.Neighbor(playerRaw, d)
		if isPush {
			boxIdx, ok := b.BoxIndex(dst)
			if !ok {
				return nil, fmt.Errorf("%w: illegal push at offset %d", verify.ErrInvalidSolution, i)
			}
			beyond := b.Neighbor(dst, d)
			beyondIdx, ok := b.BoxIndex(beyond)
			if !ok {
				return nil, fmt.Errorf("%w: illegal push at offset %d", verify.ErrInvalidSolution, i)
			}
			conf = conf.Move(boxIdx, beyondIdx)
			configs = append(configs, conf)
		}
		playerRaw = dst
	}
	return configs, nil
}

func decodeLURD(ch byte) (d board.Direction, isPush bool, ok bool) {
	switch ch {
	case 'u':
		return board.Up, false, true
	case 'U':
		return board.Up, true, true
	case 'd':
		return board.Down, false, true
	case 'D':
		return board.Down, true, true
	case 'l':
		return board.Left, false, true
	case 'L':
		return board.Left, true, true
	case 'r':
		return board.Right, false, true
	case 'R':
		return board.Right, true, true
	}
	return 0, false, false
}

// isSolved reports whether every goal cell is occupied.
func isSolved(b *board.Board, conf boxconf.Configuration) bool {
	for _, g := range b.GoalBoxIdx {
		if !conf.ContainsBoxIdx(g) {
			return false
		}
	}
	return true
}

// dijkstra runs Phase 2: shortest path from root0 to any fully-solved
// configuration, restricted to states present in universe, under
// metric's composite cost ordering.
func dijkstra(ctx context.Context, b *board.Board, root0 boxconf.Configuration, metric Metric, universe *stateSet, buckets *deadlock.Buckets) (*node, error) {
	root := &node{
		conf:       root0,
		playerRaw:  b.InitialPlayerRaw,
		reachCanon: b.ComputeReach(root0, b.InitialPlayerRaw).Canonical,
		havePush:   false,
		lastBox:    -1,
	}

	visited := map[visitKey]cost{}
	frontier := newFrontier(metric)
	heap.Push(frontier, root)
	nextSeq := 1

	for frontier.Len() > 0 {
		if ctx.Err() != nil {
			return nil, resourceErr(ctx)
		}
		n := heap.Pop(frontier).(*node)
		key := keyOf(n)
		if prev, ok := visited[key]; ok && !less(metric, n.total, prev) {
			continue
		}
		visited[key] = n.total

		if isSolved(b, n.conf) {
			return n, nil
		}

		reach := b.ComputeReach(n.conf, n.playerRaw)
		n.conf.Positions(func(boxIdx int) {
			boxRaw := b.RawOfBoxIndex(boxIdx)
			for _, d := range board.Directions() {
				standRaw := b.Neighbor(boxRaw, board.Opposite(d))
				if !reach.ContainsRaw(b, standRaw) {
					continue
				}
				destRaw := b.Neighbor(boxRaw, d)
				destIdx, canHold := b.BoxIndex(destRaw)
				if !canHold || b.IsWall(destRaw) || n.conf.ContainsBoxIdx(destIdx) {
					continue
				}
				newConf := n.conf.Move(boxIdx, destIdx)
				if buckets.IsDeadlock(newConf, destIdx) {
					continue
				}
				if !universe.contains(newConf) {
					continue
				}
				walk, ok := b.PathTo(n.conf, reach, n.playerRaw, standRaw)
				if !ok {
					continue
				}

				sameBox := n.havePush && n.lastBox == boxIdx
				sameDir := n.havePush && n.lastDir == d
				// moves is the total LURD length this edge contributes
				// (the walk to the stand square plus the push character
				// itself), matching verify.Replay's and search.finish's
				// "every consumed character" convention for Moves.
				edge := cost{moves: walk + 1, pushes: 1}
				if !n.havePush || !sameBox || !sameDir {
					edge.boxLines = 1
				}
				if n.havePush && !sameBox {
					edge.boxChanges = 1
				}
				if !n.havePush || walk > 0 {
					edge.pushingSessions = 1
				}

				child := &node{
					conf:       newConf,
					playerRaw:  boxRaw,
					reachCanon: b.ComputeReach(newConf, boxRaw).Canonical,
					havePush:   true,
					lastBox:    destIdx,
					lastDir:    d,
					parent:     n,
					standRaw:   standRaw,
					dir:        d,
					total:      add(n.total, edge),
					seq:        nextSeq,
				}
				nextSeq++

				ck := keyOf(child)
				if prev, ok := visited[ck]; ok && !less(metric, child.total, prev) {
					continue
				}
				heap.Push(frontier, child)
			}
		})
	}
	return nil, nil
}
