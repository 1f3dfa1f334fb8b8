// Package boxconf implements BoxConfiguration: a dense bitset of box
// occupancy over a board's box-internal cell numbering (spec.md §3/§4.1).
package boxconf

import "math/bits"

const wordBits = 64

// Configuration is an immutable-by-convention bitset of box occupancy. All
// mutating operations return a new Configuration sharing no backing array
// with the receiver, so a Configuration already inserted into a shared set
// (transposition table, deadlock bucket, vicinity hash set) is always safe
// to keep around after its "owner" moves on.
type Configuration struct {
	words []uint64
	n     int // number of box-internal slots this configuration is sized for
}

// New returns an empty configuration sized for n box-internal slots.
func New(n int) Configuration {
	return Configuration{words: make([]uint64, (n+wordBits-1)/wordBits), n: n}
}

// FromIndices returns a configuration with exactly the given box-internal
// indices set.
func FromIndices(n int, indices []int) Configuration {
	c := New(n)
	for _, idx := range indices {
		c.words[idx/wordBits] |= 1 << uint(idx%wordBits)
	}
	return c
}

// Len returns the number of box-internal slots this configuration is sized
// for (B in spec.md, not the number of boxes present).
func (c Configuration) Len() int { return c.n }

// ContainsBoxIdx implements board.BoxOccupant.
func (c Configuration) ContainsBoxIdx(idx int) bool { return c.Contains(idx) }

// Contains reports whether a box occupies box-internal index idx.
func (c Configuration) Contains(idx int) bool {
	if idx < 0 || idx >= c.n {
		return false
	}
	return c.words[idx/wordBits]&(1<<uint(idx%wordBits)) != 0
}

// clone returns a deep copy of c's backing words.
func (c Configuration) clone() Configuration {
	words := make([]uint64, len(c.words))
	copy(words, c.words)
	return Configuration{words: words, n: c.n}
}

// Add returns a new configuration with idx additionally occupied.
func (c Configuration) Add(idx int) Configuration {
	n := c.clone()
	n.words[idx/wordBits] |= 1 << uint(idx%wordBits)
	return n
}

// Remove returns a new configuration with idx no longer occupied.
func (c Configuration) Remove(idx int) Configuration {
	n := c.clone()
	n.words[idx/wordBits] &^= 1 << uint(idx%wordBits)
	return n
}

// Move returns a new configuration with the box at src relocated to dst.
// src must currently be occupied; dst must not be. This is the concrete
// form of spec.md's doPush (minus the board-side legality checks, which
// live in board.Board/search so this package stays board-agnostic).
func (c Configuration) Move(src, dst int) Configuration {
	n := c.clone()
	n.words[src/wordBits] &^= 1 << uint(src%wordBits)
	n.words[dst/wordBits] |= 1 << uint(dst%wordBits)
	return n
}

// Cardinality returns the number of boxes present.
func (c Configuration) Cardinality() int {
	total := 0
	for _, w := range c.words {
		total += bits.OnesCount64(w)
	}
	return total
}

// IsSubsetOf reports whether every box in c is also present in other. Used
// by deadlock.Bucket.IsDeadlock: deadlockConf.IsSubsetOf(conf).
func (c Configuration) IsSubsetOf(other Configuration) bool {
	for i, w := range c.words {
		var ow uint64
		if i < len(other.words) {
			ow = other.words[i]
		}
		if w&^ow != 0 {
			return false
		}
	}
	return true
}

// Equals reports structural equality.
func (c Configuration) Equals(other Configuration) bool {
	if len(c.words) != len(other.words) {
		return false
	}
	for i, w := range c.words {
		if w != other.words[i] {
			return false
		}
	}
	return true
}

// Hash returns a structural hash suitable for use as (part of) a map key or
// a zobrist-table seed input; it is not the zobrist hash itself (see the
// zobrist package for the incremental version used by the solver).
func (c Configuration) Hash() uint64 {
	var h uint64 = 14695981039346656037 // FNV-1a offset basis
	for _, w := range c.words {
		h ^= w
		h *= 1099511628211 // FNV-1a prime
	}
	return h
}

// Positions calls fn for every occupied box-internal index, in ascending
// order.
func (c Configuration) Positions(fn func(idx int)) {
	for w, word := range c.words {
		for word != 0 {
			b := bits.TrailingZeros64(word)
			fn(w*wordBits + b)
			word &= word - 1
		}
	}
}

// Slice returns the occupied box-internal indices as a sorted slice.
func (c Configuration) Slice() []int {
	out := make([]int, 0, c.Cardinality())
	c.Positions(func(idx int) { out = append(out, idx) })
	return out
}
