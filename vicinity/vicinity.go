// Package vicinity implements C8: given a reference BoxConfiguration and a
// vector of per-slot radii, enumerate every configuration obtained by
// relocating at most N of its boxes to one of their v_i nearest cells
// (by push-reachability distance, ignoring other boxes), discarding any
// known deadlock.
package vicinity

import (
	"context"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/sokostar/sokostar/board"
	"github.com/sokostar/sokostar/boxconf"
	"github.com/sokostar/sokostar/deadlock"
	"github.com/sokostar/sokostar/lowerbound"
	"github.com/sokostar/sokostar/search"
)

// ErrCancelled re-exports search.ErrCancelled: Generate returns it when ctx
// is cancelled before enumeration completes, so callers in optimizer (and
// any other consumer) can errors.Is against one sentinel value regardless
// of which package's cancellable operation they are waiting on.
var ErrCancelled = search.ErrCancelled

// DefaultCapacity bounds the number of configurations Generate keeps
// before reporting the table-full signal (spec.md §4.6).
const DefaultCapacity = 500_000

// Result is the output of Generate: a hash set of configurations (by
// structural hash, collision-resolved by Equals) plus whether the
// capacity bound cut the enumeration short.
type Result struct {
	Configs   map[uint64][]boxconf.Configuration
	Truncated bool
}

// Contains reports whether conf is present in r (used by callers building
// the Phase 1 state universe for the optimizer).
func (r *Result) Contains(conf boxconf.Configuration) bool {
	for _, c := range r.Configs[conf.Hash()] {
		if c.Equals(conf) {
			return true
		}
	}
	return false
}

// Slice flattens r into a plain slice, for callers that just need to
// iterate every generated configuration once.
func (r *Result) Slice() []boxconf.Configuration {
	var out []boxconf.Configuration
	for _, bucket := range r.Configs {
		out = append(out, bucket...)
	}
	return out
}

// Generate enumerates vicinity(ref, radii) for board b, pruning any
// configuration deadlock.Buckets reports as deadlocked. radii must be
// non-decreasing per spec.md §4.6; radii[i] is the number of cells nearest
// (by push distance ignoring other boxes) to the original cell of the i-th
// box chosen for relocation (canonical ascending box-index order across the
// whole combination, not ref's full box order) that are tried as its
// destination; the box's own cell is counted among them and skipped. Every combination of at most len(radii) distinct boxes
// is tried, not just the single-box case. workers bounds the errgroup
// pool used to explore independent first-relocated-box choices
// concurrently.
func Generate(ctx context.Context, b *board.Board, ref boxconf.Configuration, radii []int, buckets *deadlock.Buckets, capacity int, workers int) (*Result, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if workers <= 0 {
		workers = 1
	}

	boxes := ref.Slice()
	if len(radii) > len(boxes) {
		radii = radii[:len(boxes)]
	}

	res := &Result{Configs: map[uint64][]boxconf.Configuration{}}
	var mu sync.Mutex
	var total atomic.Int64
	truncated := atomic.Bool{}

	record := func(conf boxconf.Configuration) {
		mu.Lock()
		defer mu.Unlock()
		h := conf.Hash()
		for _, e := range res.Configs[h] {
			if e.Equals(conf) {
				return
			}
		}
		res.Configs[h] = append(res.Configs[h], conf)
		total.Add(1)
		if int(total.Load()) >= capacity {
			truncated.Store(true)
		}
	}
	record(ref) // the reference configuration is itself always in U

	if len(radii) == 0 {
		res.Truncated = truncated.Load()
		return res, nil
	}

	// Per spec.md §4.6, relocating "at most N distinct boxes" is a genuine
	// combination: the top-level fan-out picks, per worker, which box is
	// relocated first (in canonical ascending box-index order), and
	// expandBox recurses over every later box to add further relocations,
	// matching the board's own candidate-set shape to C5's errgroup +
	// atomic work-stealing pattern.
	var nextSlot atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for {
				slot := int(nextSlot.Add(1) - 1)
				if slot >= len(boxes) {
					return nil
				}
				if gctx.Err() != nil || truncated.Load() {
					return nil
				}
				expandBox(gctx, b, ref, boxes, slot, 0, radii, buckets, record, &truncated)
			}
		})
	}
	err := g.Wait()
	res.Truncated = truncated.Load()
	if err != nil {
		return res, err
	}
	if ctx.Err() != nil {
		return res, ErrCancelled
	}
	return res, nil
}

// expandBox relocates boxes[slot] — the depth-th box chosen for
// relocation in this combination, in the canonical ascending box-index
// order spec.md §4.6 requires — to each of its radii[depth]-nearest cells
// (by push-reachability distance ignoring other boxes), records every
// resulting non-deadlocked configuration, and recurses over every later
// slot to add a further relocation, up to len(radii) boxes total.
//
// The documented duplicate exception (Open Question 2 resolution,
// SPEC_FULL.md §6): destinations are checked against cur, the
// configuration after this combination's earlier relocations, not ref —
// so a later box is allowed to land exactly on an earlier-in-this-combo
// box's original cell, since that cell is genuinely vacant in cur.
func expandBox(ctx context.Context, b *board.Board, cur boxconf.Configuration, boxes []int, slot, depth int, radii []int, buckets *deadlock.Buckets, record func(boxconf.Configuration), truncated *atomic.Bool) {
	if ctx.Err() != nil || truncated.Load() {
		return
	}
	boxIdx := boxes[slot]
	boxRaw := b.RawOfBoxIndex(boxIdx)
	dist := lowerbound.DistancesFrom(b, boxRaw)

	for _, destIdx := range nearestCells(dist, radii[depth]) {
		if ctx.Err() != nil || truncated.Load() {
			return
		}
		if destIdx == boxIdx || cur.ContainsBoxIdx(destIdx) {
			continue
		}
		newConf := cur.Move(boxIdx, destIdx)
		if buckets.IsDeadlockAny(newConf) {
			continue
		}
		record(newConf)
		if depth+1 >= len(radii) {
			continue
		}
		for next := slot + 1; next < len(boxes); next++ {
			expandBox(ctx, b, newConf, boxes, next, depth+1, radii, buckets, record, truncated)
		}
	}
}

// nearestCells returns the box-internal indices of the up-to-radius
// closest cells to the seed (dist[seed] == 0), in ascending-distance
// order, excluding unreachable cells (dist < 0).
func nearestCells(dist []int, radius int) []int {
	type entry struct{ idx, d int }
	var entries []entry
	for idx, d := range dist {
		if d >= 0 {
			entries = append(entries, entry{idx, d})
		}
	}
	// insertion sort is fine here: radius is typically small and boards
	// are small, so an O(n log n) general sort buys nothing.
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].d < entries[j-1].d; j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
	if radius > len(entries) {
		radius = len(entries)
	}
	out := make([]int, 0, radius)
	for i := 0; i < radius; i++ {
		out = append(out, entries[i].idx)
	}
	return out
}
