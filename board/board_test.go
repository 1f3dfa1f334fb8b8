package board

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const microban1 = `
  ####
###  ####
#     $ #
# #  #$ #
# . .#@ #
#########`

func TestParseMicroban1(t *testing.T) {
	b, err := Parse(microban1)
	require.NoError(t, err)
	require.NoError(t, b.FinalizeBoxIndex())

	assert.Equal(t, 2, len(b.InitialBoxesRaw))
	assert.Equal(t, 2, len(b.GoalBoxIdx))
	assert.NotEqual(t, -1, b.InitialPlayerRaw)
}

func TestParseCoercesUnreachableToWall(t *testing.T) {
	// the isolated floor cell at row 3, col 3 (raw 18) is not reachable
	// from the player and must be coerced to a wall.
	grid := "#####\n#@$.#\n#####\n### #\n#####"
	b, err := Parse(grid)
	require.NoError(t, err)
	assert.True(t, b.IsWall(0))
	assert.True(t, b.IsWall(18))
}

func TestParseRejectsBoxGoalMismatch(t *testing.T) {
	grid := "#####\n#@$ #\n#####"
	_, err := Parse(grid)
	assert.ErrorIs(t, err, ErrInvalidBoard)
}

func TestParseRejectsNoPlayer(t *testing.T) {
	grid := "#####\n# $.#\n#####"
	_, err := Parse(grid)
	assert.ErrorIs(t, err, ErrInvalidBoard)
}

// TestParseDoesNotLeakReachabilityAcrossRowBoundary exercises a grid where a
// naive raw±1 Neighbor (no column bounds-check) would falsely link a cell at
// column 0 to the previous row's last column. Row1 col3 (raw 7) has no real
// 2D neighbour at all (walls on every side that matters) except the phantom
// edge a buggy Left from row2 col0 (raw 8) would create by computing raw 7
// directly. If Neighbor ever regresses to unchecked raw±1 arithmetic, row1
// col3 is incorrectly pulled into the reachable set and IsWall(7) flips
// to false.
func TestParseDoesNotLeakReachabilityAcrossRowBoundary(t *testing.T) {
	grid := "@ $#\n  # \n .##"
	b, err := Parse(grid)
	require.NoError(t, err)
	assert.True(t, b.IsWall(7), "row1 col3 has no legitimate 2D neighbour and must be coerced to a wall, not phantom-linked to row2 col0")
}

func TestNeighborAndOpposite(t *testing.T) {
	b := &Board{Width: 5, Height: 5}
	assert.Equal(t, 7, b.Neighbor(12, Up))
	assert.Equal(t, 17, b.Neighbor(12, Down))
	assert.Equal(t, 11, b.Neighbor(12, Left))
	assert.Equal(t, 13, b.Neighbor(12, Right))

	for _, d := range Directions() {
		assert.Equal(t, d, Opposite(Opposite(d)))
	}
}

// TestNeighborReturnsSentinelAtColumnBoundary covers the column-boundary
// case TestNeighborAndOpposite's raw 12 (an interior column) does not
// reach: Left at column 0 and Right at the last column must report -1
// instead of wrapping into the adjacent row.
func TestNeighborReturnsSentinelAtColumnBoundary(t *testing.T) {
	b := &Board{Width: 5, Height: 5}
	assert.Equal(t, -1, b.Neighbor(10, Left))  // row 2, col 0
	assert.Equal(t, -1, b.Neighbor(14, Right)) // row 2, col 4
	assert.Equal(t, 11, b.Neighbor(10, Right))
	assert.Equal(t, 13, b.Neighbor(14, Left))
}
