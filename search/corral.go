package search

import (
	"github.com/sokostar/sokostar/board"
	"github.com/sokostar/sokostar/boxconf"
)

// relevantBoxes implements the sound, always-safe subset of spec.md
// §4.5.2b's I-corral relevance rule: the player's current reach is a
// single connected region bounded by walls and boxes (an "I-corral" in the
// glossary's sense), and a box can only be pushed from within it if the
// player can actually stand on its push-from square. relevantBoxes returns
// exactly the boxes with at least one neighbour cell inside reach, i.e.
// boxes a push could possibly touch right now; every other box is
// provably unreachable until one of these boundary boxes moves, so the
// caller never needs to consider it this ply.
//
// This is deliberately the conservative half of full I-corral pruning: the
// stronger form additionally fixes a canonical push order across
// independent boundary boxes to cut permutation-equivalent branches, which
// is not implemented here (see DESIGN.md) because verifying it sound
// without running the solver was judged too risky; the transposition
// table still collapses any resulting duplicate states regardless.
func relevantBoxes(b *board.Board, conf boxconf.Configuration, reach board.Reach) []int {
	var out []int
	conf.Positions(func(idx int) {
		raw := b.RawOfBoxIndex(idx)
		for _, d := range board.Directions() {
			if reach.ContainsRaw(b, b.Neighbor(raw, d)) {
				out = append(out, idx)
				return
			}
		}
	})
	return out
}
