package verify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokostar/sokostar/board"
	"github.com/sokostar/sokostar/deadlock"
)

func mustBoard(t *testing.T, grid string) *board.Board {
	t.Helper()
	b, err := ParseBoard(grid)
	require.NoError(t, err)
	require.NoError(t, deadlock.PrecomputeSimple(b))
	return b
}

func TestReplayValidSolutionComputesMetrics(t *testing.T) {
	b := mustBoard(t, "#####\n#@$.#\n#####")

	res, err := Replay(b, "R")
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, 1, res.Pushes)
	assert.Equal(t, 1, res.Moves)
	assert.Equal(t, 1, res.BoxLines)
	assert.Equal(t, 0, res.BoxChanges)
	assert.Equal(t, 1, res.PushingSessions)
	assert.Equal(t, "R", res.LURDNormalized)
}

func TestReplayTruncatesAfterFirstGoalReach(t *testing.T) {
	b := mustBoard(t, "#######\n#@$.  #\n#     #\n#######")

	res, err := Replay(b, "Rd")
	require.NoError(t, err)
	assert.True(t, res.Valid)
	assert.Equal(t, "R", res.LURDNormalized)
}

func TestReplayRejectsPushIntoWall(t *testing.T) {
	b := mustBoard(t, "####\n#@$#\n#. #\n####")

	_, err := Replay(b, "R")
	assert.Error(t, err)
}

func TestReplayInvalidWhenNeverSolved(t *testing.T) {
	b := mustBoard(t, "#####\n#@$.#\n#####")

	res, err := Replay(b, "")
	require.NoError(t, err)
	assert.False(t, res.Valid)
}

// TestReplayBoxLinesAndChanges covers S6's metric ordering board: a push
// of one box followed by a push of a different box counts as a box line
// for each push and exactly one box change. Moves is the total LURD
// length (pushes included), matching search.finish's convention.
func TestReplayBoxLinesAndChanges(t *testing.T) {
	b := mustBoard(t, "#######\n#.$@$.#\n#######")

	res, err := Replay(b, "LrR")
	require.NoError(t, err)
	require.True(t, res.Valid)
	assert.Equal(t, 2, res.Pushes)
	assert.Equal(t, 3, res.Moves)
	assert.Equal(t, 2, res.BoxLines)
	assert.Equal(t, 1, res.BoxChanges)
	assert.Equal(t, 2, res.PushingSessions)
}

// TestLURDNormalizedRoundTripIsIdempotent covers invariant 6: normalizing
// an already-normalized solution produces the same string.
func TestLURDNormalizedRoundTripIsIdempotent(t *testing.T) {
	b := mustBoard(t, "#####\n#@$.#\n#####")

	first, err := Replay(b, "R")
	require.NoError(t, err)
	require.True(t, first.Valid)

	second, err := Replay(b, first.LURDNormalized)
	require.NoError(t, err)
	require.True(t, second.Valid)
	assert.Equal(t, first.LURDNormalized, second.LURDNormalized)
}
