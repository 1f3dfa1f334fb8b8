package optimizer

import "github.com/sokostar/sokostar/board"

// reconstructLURD mirrors search.reconstructLURD: walk solved's parent
// chain to the root, emitting the lowercase walk to each push's stand
// square followed by the uppercase push itself (spec.md §4.7 Phase 3).
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
			return "", ErrUnreachableStand
		}
		for _, d := range dirs {
			out = append(out, d.LURD(false))
		}
		out = append(out, cur.dir.LURD(true))
	}
	return string(out), nil
}
