// Package zobrist implements incremental hashing of search states: a
// BoxConfiguration paired with the canonical player-reach cell it was
// reached with, so the transposition table can key on a single uint64
// instead of re-hashing the full configuration on every lookup. Grounded
// on the teacher's original Zobrist table approach (random per-feature
// keys XORed together), generalized from piece-on-square bitboards to a
// single fungible-piece case: boxes carry no identity of their own, so one
// random key per box-internal cell is enough to hash the occupied set.
package zobrist

import (
	"lukechampine.com/frand"

	"github.com/sokostar/sokostar/board"
	"github.com/sokostar/sokostar/boxconf"
)

// Table holds the random keys used to compute a position hash: one key per
// box-internal cell (XORed in when a box occupies it) and one key per
// canonical reach cell (board.Reach.Canonical). A Table is generated once
// per board and is safe for concurrent read-only use across solver
// workers.
type Table struct {
	cellKeys  []uint64
	reachKeys []uint64
}

// New builds a fresh Table sized to b, seeding every key from frand (a
// CSPRNG reseeded from the OS on every process start, so hash values are
// not reproducible across runs — acceptable here since the table only
// needs to be internally consistent within a single solve, never replayed
// across runs or persisted).
func New(b *board.Board) *Table {
	numBox := b.NumBoxCells()
	numPlayer := b.NumPlayerCells()
	t := &Table{
		cellKeys:  make([]uint64, numBox),
		reachKeys: make([]uint64, numPlayer),
	}
	for i := 0; i < numBox; i++ {
		t.cellKeys[i] = randKey()
	}
	for i := 0; i < numPlayer; i++ {
		t.reachKeys[i] = randKey()
	}
	return t
}

func randKey() uint64 {
	var buf [8]byte
	frand.Read(buf[:])
	var v uint64
	for i, bb := range buf {
		v |= uint64(bb) << (8 * i)
	}
	if v == 0 {
		// Zero would be a silent identity element under XOR; resample the
		// vanishingly rare draw so every key actually moves the hash.
		return randKey()
	}
	return v
}

// Hash computes the position key for conf observed with canonical reach
// cell reachCanonical (board.Reach.Canonical).
func (t *Table) Hash(conf boxconf.Configuration, reachCanonical int) uint64 {
	h := t.reachKeys[reachCanonical]
	conf.Positions(func(idx int) {
		h ^= t.cellKeys[idx]
	})
	return h
}

// Update returns the hash obtained by moving a single box from src to dst
// and changing the canonical reach cell from oldReach to newReach, without
// rescanning the whole configuration. Callers performing a single push
// should prefer this over recomputing Hash from scratch.
func (t *Table) Update(h uint64, src, dst int, oldReach, newReach int) uint64 {
	return h ^ t.cellKeys[src] ^ t.cellKeys[dst] ^ t.reachKeys[oldReach] ^ t.reachKeys[newReach]
}
