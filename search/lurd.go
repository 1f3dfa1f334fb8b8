package search

import (
	"github.com/sokostar/sokostar/board"
)

// reconstructLURD walks solved's parent chain back to the root and emits
// the full LURD solution string: for every push, the lowercase moves that
// walk the player from its position after the previous push to this
// push's stand square, followed by the uppercase push character itself.
func reconstructLURD(b *board.Board, solved *node) (string, error) {
	var chain []*node
	for n := solved; n != nil; n = n.parent {
		chain = append([]*node{n}, chain...)
	}
	if len(chain) == 0 {
		return "", nil
	}

	var out []byte
	for i := 1; i < len(chain); i++ {
		prev, cur := chain[i-1], chain[i]
		dirs, ok := b.PathDirections(prev.conf, prev.playerRaw, cur.standRaw)
		if !ok {
			return "", ErrUnsolvable
		}
		for _, d := range dirs {
			out = append(out, d.LURD(false))
		}
		out = append(out, cur.dir.LURD(true))
	}
	return string(out), nil
}
