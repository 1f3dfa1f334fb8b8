package lowerbound

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokostar/sokostar/board"
	"github.com/sokostar/sokostar/boxconf"
	"github.com/sokostar/sokostar/deadlock"
)

const microban1 = "#####\n#@$.#\n#####"

func mustBoard(t *testing.T, grid string) *board.Board {
	t.Helper()
	b, err := board.Parse(grid)
	require.NoError(t, err)
	require.NoError(t, deadlock.PrecomputeSimple(b))
	return b
}

func initialConfig(b *board.Board) boxconf.Configuration {
	idx := make([]int, 0, len(b.InitialBoxesRaw))
	for _, raw := range b.InitialBoxesRaw {
		i, _ := b.BoxIndex(raw)
		idx = append(idx, i)
	}
	return boxconf.FromIndices(b.NumBoxCells(), idx)
}

func TestPushesLowerBoundAdmissibleOnTrivialBoard(t *testing.T) {
	b := mustBoard(t, microban1)
	table := Precompute(b)

	lb := table.PushesLowerBound(b, initialConfig(b))
	// Box sits one cell left of the single goal: exactly one push suffices,
	// so the true optimum is 1 and the bound must not exceed it.
	assert.Equal(t, 1.0, lb)
}

func TestPushesLowerBoundInfiniteOnFreezeDeadlock(t *testing.T) {
	// The box starts wedged into a corner (wall to its left, wall below)
	// that is not a goal: it is frozen on both axes, so the bound must
	// report +Inf even though the goal itself is reachable in isolation.
	grid := "#####\n#@  #\n#$ .#\n#####"
	b := mustBoard(t, grid)
	table := Precompute(b)

	lb := table.PushesLowerBound(b, initialConfig(b))
	assert.True(t, math.IsInf(lb, 1))
}

func TestPushesLowerBoundFiniteOnSolvableMultiBoxBoard(t *testing.T) {
	grid := "#######\n#  .  #\n# $ $ #\n#  .  #\n#  @  #\n#######"
	b := mustBoard(t, grid)
	table := Precompute(b)

	lb := table.PushesLowerBound(b, initialConfig(b))
	assert.False(t, math.IsInf(lb, 1))
	assert.Greater(t, lb, 0.0)
}
