// Package verify implements C10: replaying a LURD move string against a
// board and reporting whether it is a valid solution, together with every
// metric the optimizer's metrics (spec.md §4.7/§4.8) are defined over.
package verify

import (
	"errors"
	"fmt"

	"github.com/sokostar/sokostar/board"
	"github.com/sokostar/sokostar/boxconf"
)

// ErrInvalidSolution is returned when a LURD string cannot be legally
// replayed on the board it is checked against.
var ErrInvalidSolution = errors.New("verify: invalid solution")

// ParseBoard is the external-interface entry point of spec.md §6's
// abstract "Board input": it is board.Parse under the name the rest of
// the public API (Solve, Optimize) is described against.
func ParseBoard(grid string) (*board.Board, error) {
	return board.Parse(grid)
}

// Result is the outcome of replaying a LURD string: whether it is valid,
// every primary/secondary metric spec.md §4.8 defines, and the
// normalized LURD string.
type Result struct {
	Valid bool

	Moves           int
	Pushes          int
	BoxLines        int
	BoxChanges      int
	PushingSessions int

	// LURDNormalized writes pushes uppercase and non-push moves lowercase,
	// and truncates any trailing characters after the first configuration
	// with every box on a goal. An uppercase character that moves no box is
	// written lowercase; a lowercase character whose target cell holds a box
	// is not treated as a push: Replay rejects it with ErrInvalidSolution.
	LURDNormalized string
}

// Replay runs C10 over lurd against b's initial configuration, returning
// ErrInvalidSolution (wrapped with the offending reason) for any
// structurally illegal move or push.
func Replay(b *board.Board, lurd string) (Result, error) {
	idx := make([]int, 0, len(b.InitialBoxesRaw))
	for _, raw := range b.InitialBoxesRaw {
		i, ok := b.BoxIndex(raw)
		if !ok {
			return Result{}, fmt.Errorf("%w: initial box at cell with no box slot", ErrInvalidSolution)
		}
		idx = append(idx, i)
	}
	conf := boxconf.FromIndices(b.NumBoxCells(), idx)
	playerRaw := b.InitialPlayerRaw

	var (
		moves, pushes          int
		boxLines, boxChanges   int
		pushingSessions        int
		lastPushedBox          = -1
		lastPushDir            board.Direction
		haveLastPush           bool
		inPushRun              bool
		normalized             []byte
		solvedAtNormalizedLen  = -1
	)

	solved := func(c boxconf.Configuration) bool {
		for _, g := range b.GoalBoxIdx {
			if !c.ContainsBoxIdx(g) {
				return false
			}
		}
		return true
	}

	if solved(conf) {
		solvedAtNormalizedLen = 0
	}

	for i := 0; i < len(lurd); i++ {
		ch := lurd[i]
		d, isPush, ok := decodeLURD(ch)
		if !ok {
			return Result{}, fmt.Errorf("%w: invalid character %q at offset %d", ErrInvalidSolution, ch, i)
		}

		dst := b.Neighbor(playerRaw, d)
		if b.IsWall(dst) {
			return Result{}, fmt.Errorf("%w: move into wall at offset %d", ErrInvalidSolution, i)
		}

		boxIdx, dstHasBox := b.BoxIndex(dst)
		dstHasBox = dstHasBox && conf.ContainsBoxIdx(boxIdx)

		// Moves counts every consumed character, push or not, matching
		// search.finish's "moves" (total solution length); Pushes is the
		// uppercase subset of the same walk, not a disjoint tally.
		moves++

		switch {
		case dstHasBox && isPush:
			beyond := b.Neighbor(dst, d)
			beyondIdx, canHoldBox := b.BoxIndex(beyond)
			if !canHoldBox || b.IsWall(beyond) || conf.ContainsBoxIdx(beyondIdx) {
				return Result{}, fmt.Errorf("%w: illegal push at offset %d", ErrInvalidSolution, i)
			}
			conf = conf.Move(boxIdx, beyondIdx)
			playerRaw = dst
			pushes++
			normalized = append(normalized, d.LURD(true))

			sameBox := haveLastPush && lastPushedBox == boxIdx
			sameDir := haveLastPush && lastPushDir == d
			if !haveLastPush || !sameBox || !sameDir {
				boxLines++
			}
			if haveLastPush && !sameBox {
				boxChanges++
			}
			if !inPushRun {
				pushingSessions++
				inPushRun = true
			}
			lastPushedBox, lastPushDir, haveLastPush = beyondIdx, d, true

		case dstHasBox && !isPush:
			return Result{}, fmt.Errorf("%w: move character onto a box at offset %d", ErrInvalidSolution, i)

		default:
			playerRaw = dst
			normalized = append(normalized, d.LURD(false))
			inPushRun = false
		}

		if solvedAtNormalizedLen == -1 && solved(conf) {
			solvedAtNormalizedLen = len(normalized)
		}
	}

	if solvedAtNormalizedLen == -1 {
		return Result{Valid: false}, nil
	}

	return Result{
		Valid:           true,
		Moves:           moves,
		Pushes:          pushes,
		BoxLines:        boxLines,
		BoxChanges:      boxChanges,
		PushingSessions: pushingSessions,
		LURDNormalized:  string(normalized[:solvedAtNormalizedLen]),
	}, nil
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
