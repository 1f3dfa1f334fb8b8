package deadlock

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat/combin"

	"github.com/sokostar/sokostar/board"
	"github.com/sokostar/sokostar/boxconf"
)

// DefaultTimeout is the wall-clock bound spec.md §4.3 assigns to background
// deadlock identification.
const DefaultTimeout = 3 * time.Second

// DefaultCapacity bounds the number of no-deadlock configurations kept per
// cardinality before identification gives up and reports what it has.
const DefaultCapacity = 200_000

// Buckets is the C5 deadlock set: for every box-internal index, the list of
// deadlocked sub-configurations that involve a box at that index. Buckets
// is immutable once Identify returns; IsDeadlock only reads it.
type Buckets struct {
	perBox [][]boxconf.Configuration
	n      int
}

// IsDeadlock reports whether conf is a known superset of a deadlocked
// sub-configuration involving a box at involvedBox (spec.md §4.3 query).
func (buckets *Buckets) IsDeadlock(conf boxconf.Configuration, involvedBox int) bool {
	if buckets == nil || involvedBox < 0 || involvedBox >= len(buckets.perBox) {
		return false
	}
	for _, d := range buckets.perBox[involvedBox] {
		if d.IsSubsetOf(conf) {
			return true
		}
	}
	return false
}

// IsDeadlockAny checks every box present in conf against its bucket; used
// when the caller has not singled out which box just moved (e.g. checking
// the initial configuration).
func (buckets *Buckets) IsDeadlockAny(conf boxconf.Configuration) bool {
	if buckets == nil {
		return false
	}
	found := false
	conf.Positions(func(idx int) {
		if !found && buckets.IsDeadlock(conf, idx) {
			found = true
		}
	})
	return found
}

// Identify runs C5: for k = 2..maxK, finds every k-box subset of b's
// box-internal cells that is deadlocked regardless of player position, and
// buckets it by every box-internal index it contains. It is safe to call
// with ctx already carrying a deadline; Identify also enforces
// DefaultTimeout-scaled wall clock bounds internally via timeout.
func Identify(ctx context.Context, b *board.Board, maxK int, timeout time.Duration, capacity int, workers int) (*Buckets, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	n := b.NumBoxCells()
	buckets := &Buckets{perBox: make([][]boxconf.Configuration, n), n: n}

	for k := 2; k <= maxK; k++ {
		if k > n || k > len(b.GoalBoxIdx) {
			break
		}
		noDeadlock, truncated, err := generateNoDeadlockSet(ctx, b, k, capacity, workers)
		if err != nil {
			return buckets, err
		}
		if truncated || ctx.Err() != nil {
			log.Warn().Int("k", k).Msg("deadlock identification truncated: capacity or timeout reached")
			break
		}
		found, err := enumerateDeadlocks(ctx, b, k, noDeadlock, workers)
		if err != nil {
			return buckets, err
		}
		for _, d := range found {
			d.Positions(func(idx int) {
				buckets.perBox[idx] = append(buckets.perBox[idx], d)
			})
		}
		log.Debug().Int("k", k).Int("found", len(found)).Msg("deadlock identification pass complete")
	}
	return buckets, nil
}

// pullState is a node in the reverse (pull) search used to generate the
// no-deadlock set: a box configuration together with the player position
// that reached it.
type pullState struct {
	conf   boxconf.Configuration
	player int // raw position
}

// generateNoDeadlockSet performs reverse-pull BFS starting from every
// placement of k boxes on k distinct goals (spec.md §4.3 step 1), in
// parallel across starting placements, and returns the set of box
// configurations (keyed by structural hash, ignoring player position) that
// are provably reachable from a solved state.
func generateNoDeadlockSet(ctx context.Context, b *board.Board, k int, capacity int, workers int) (map[uint64][]boxconf.Configuration, bool, error) {
	goalCombos := combin.Combinations(len(b.GoalBoxIdx), k)

	var mu sync.Mutex
	seen := make(map[uint64][]boxconf.Configuration)
	var total atomic.Int64
	truncated := atomic.Bool{}

	var next atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for {
				i := next.Add(1) - 1
				if i >= int64(len(goalCombos)) {
					return nil
				}
				if gctx.Err() != nil || truncated.Load() {
					return nil
				}
				combo := goalCombos[i]
				startIdx := make([]int, k)
				for j, goalPos := range combo {
					startIdx[j] = b.GoalBoxIdx[goalPos]
				}
				start := boxconf.FromIndices(b.NumBoxCells(), startIdx)

				localNew := exploreFromConfig(gctx, b, start, capacity, &total)
				mu.Lock()
				for h, confs := range localNew {
					seen[h] = dedupAppend(seen[h], confs)
				}
				mu.Unlock()
				if total.Load() >= int64(capacity) {
					truncated.Store(true)
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return seen, truncated.Load(), err
	}
	return seen, truncated.Load(), nil
}

func dedupAppend(existing []boxconf.Configuration, add []boxconf.Configuration) []boxconf.Configuration {
outer:
	for _, c := range add {
		for _, e := range existing {
			if e.Equals(c) {
				continue outer
			}
		}
		existing = append(existing, c)
	}
	return existing
}

// exploreFromConfig runs a single-threaded reverse-pull BFS seeded at every
// player position adjacent to start, returning every distinct box
// configuration discovered, bucketed by structural hash.
func exploreFromConfig(ctx context.Context, b *board.Board, start boxconf.Configuration, capacity int, total *atomic.Int64) map[uint64][]boxconf.Configuration {
	found := map[uint64][]boxconf.Configuration{}
	visitedConf := map[uint64][]boxconf.Configuration{}

	record := func(c boxconf.Configuration) bool {
		h := c.Hash()
		for _, e := range visitedConf[h] {
			if e.Equals(c) {
				return false
			}
		}
		visitedConf[h] = append(visitedConf[h], c)
		found[h] = append(found[h], c)
		total.Add(1)
		return true
	}

	queue := []pullState{}
	seenStart := map[uint64]bool{}
	start.Positions(func(boxIdx int) {
		raw := b.RawOfBoxIndex(boxIdx)
		for _, d := range board.Directions() {
			p := b.Neighbor(raw, d)
			pidx, ok := b.PlayerIndex(p)
			if !ok {
				continue
			}
			if bidx, isBox := b.BoxIndex(p); isBox && start.ContainsBoxIdx(bidx) {
				continue
			}
			key := start.Hash()*1_000_003 + uint64(pidx)
			if seenStart[key] {
				continue
			}
			seenStart[key] = true
			queue = append(queue, pullState{conf: start, player: p})
		}
	})
	if len(queue) == 0 {
		// no player cell adjacent to any box (fully enclosed); still a
		// valid, trivially "solved" placement.
		record(start)
		return found
	}
	record(start)

	visitedState := map[string]bool{}
	for len(queue) > 0 {
		if ctx.Err() != nil || int(total.Load()) >= capacity {
			return found
		}
		st := queue[0]
		queue = queue[1:]

		key := stateKey(st)
		if visitedState[key] {
			continue
		}
		visitedState[key] = true

		reach := b.ComputeReach(st.conf, st.player)
		st.conf.Positions(func(boxIdx int) {
			boxRaw := b.RawOfBoxIndex(boxIdx)
			for _, d := range board.Directions() {
				// Pulling in direction d undoes a push of direction d: the
				// box moves from boxRaw back to dst = boxRaw-delta(d). The
				// player must currently be able to reach dst, then steps
				// back to playerTo = dst-delta(d) (which must be free
				// floor) while the box follows onto dst.
				dst := b.Neighbor(boxRaw, board.Opposite(d))
				if !reach.ContainsRaw(b, dst) {
					continue
				}
				dstIdx, ok := b.BoxIndex(dst)
				if !ok {
					continue
				}
				if st.conf.ContainsBoxIdx(dstIdx) {
					continue
				}
				playerTo := b.Neighbor(dst, board.Opposite(d))
				if _, ok := b.PlayerIndex(playerTo); !ok {
					continue
				}
				if pb, isBox := b.BoxIndex(playerTo); isBox && st.conf.ContainsBoxIdx(pb) {
					continue
				}
				newConf := st.conf.Move(boxIdx, dstIdx)
				record(newConf)
				queue = append(queue, pullState{conf: newConf, player: playerTo})
			}
		})
	}
	return found
}

func stateKey(st pullState) string {
	b := make([]byte, 0, 16)
	var buf [8]byte
	h := st.conf.Hash()
	for i := 0; i < 8; i++ {
		buf[i] = byte(h >> (8 * i))
	}
	b = append(b, buf[:]...)
	p := uint64(st.player)
	for i := 0; i < 8; i++ {
		buf[i] = byte(p >> (8 * i))
	}
	b = append(b, buf[:]...)
	return string(b)
}

// enumerateDeadlocks walks every k-subset of b's box-internal cells and
// reports those absent from noDeadlock (spec.md §4.3 step 2).
func enumerateDeadlocks(ctx context.Context, b *board.Board, k int, noDeadlock map[uint64][]boxconf.Configuration, workers int) ([]boxconf.Configuration, error) {
	bCells := b.NumBoxCells()
	if k > bCells {
		return nil, nil
	}
	combos := combin.Combinations(bCells, k)

	var mu sync.Mutex
	var result []boxconf.Configuration
	var next atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for {
				i := next.Add(1) - 1
				if i >= int64(len(combos)) {
					return nil
				}
				if gctx.Err() != nil {
					return nil
				}
				conf := boxconf.FromIndices(bCells, combos[i])
				if !inSet(noDeadlock, conf) {
					mu.Lock()
					result = append(result, conf)
					mu.Unlock()
				}
			}
		})
	}
	if err := g.Wait(); err != nil {
		return result, err
	}
	return result, nil
}

func inSet(set map[uint64][]boxconf.Configuration, c boxconf.Configuration) bool {
	for _, e := range set[c.Hash()] {
		if e.Equals(c) {
			return true
		}
	}
	return false
}
