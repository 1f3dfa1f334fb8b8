package deadlock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokostar/sokostar/board"
)

func TestPrecomputeSimpleMarksUnreachableCorners(t *testing.T) {
	// A box stuck in column 1 of this corridor can never be pushed into
	// column 2+ because the player would need to stand in the wall column
	// 0 to push it rightward; every cell in column 1 is a simple deadlock.
	grid := "#####\n#$@ #\n#$ .#\n#  .#\n#####"
	b, err := board.Parse(grid)
	require.NoError(t, err)

	require.NoError(t, PrecomputeSimple(b))

	col1Row1, _ := b.PlayerIndex(1*5 + 1)
	col1Row2, _ := b.PlayerIndex(2*5 + 1)
	col1Row3, _ := b.PlayerIndex(3*5 + 1)
	assert.True(t, b.IsSimpleDeadlock(1*5+1), "row1 col1")
	assert.True(t, b.IsSimpleDeadlock(2*5+1), "row2 col1")
	assert.True(t, b.IsSimpleDeadlock(3*5+1), "row3 col1")
	_ = col1Row1
	_ = col1Row2
	_ = col1Row3

	// the open 2x2-ish block around the goals must not be marked.
	assert.False(t, b.IsSimpleDeadlock(2*5+2))
	assert.False(t, b.IsSimpleDeadlock(2*5+3))
	assert.False(t, b.IsSimpleDeadlock(3*5+3))
}

func TestPrecomputeSimpleGoalsNeverDeadlocked(t *testing.T) {
	grid := "#####\n#@ $#\n#  .#\n#####"
	b, err := board.Parse(grid)
	require.NoError(t, err)
	require.NoError(t, PrecomputeSimple(b))
	for raw, isGoal := range allGoals(b) {
		if isGoal {
			assert.False(t, b.IsSimpleDeadlock(raw))
		}
	}
}

func allGoals(b *board.Board) []bool {
	out := make([]bool, b.RawSize())
	for raw := 0; raw < b.RawSize(); raw++ {
		out[raw] = b.IsGoal(raw)
	}
	return out
}
