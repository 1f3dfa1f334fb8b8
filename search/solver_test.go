package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokostar/sokostar/board"
	"github.com/sokostar/sokostar/boxconf"
	"github.com/sokostar/sokostar/deadlock"
)

const microban1 = "  ####\n###  ####\n#     $ #\n# #  #$ #\n# . .#@ #\n#########"

func mustBoard(t *testing.T, grid string) *board.Board {
	t.Helper()
	b, err := board.Parse(grid)
	require.NoError(t, err)
	require.NoError(t, deadlock.PrecomputeSimple(b))
	return b
}

func TestSolveMicroban1(t *testing.T) {
	b := mustBoard(t, microban1)

	sol, err := Solve(context.Background(), b, Options{Mode: AStar, EnableTunnel: true, EnableICorral: true})
	require.NoError(t, err)
	assert.Equal(t, 8, sol.Pushes)
	assert.Equal(t, 17, sol.Moves)
}

func TestSolveMicroban1IDAStarAgreesOnPushCount(t *testing.T) {
	b := mustBoard(t, microban1)

	sol, err := Solve(context.Background(), b, Options{Mode: IDAStar})
	require.NoError(t, err)
	assert.Equal(t, 8, sol.Pushes)
}

func TestSolveFreezeDeadlockIsUnsolvable(t *testing.T) {
	grid := "#####\n#$@ #\n#$ .#\n#  .#\n#####"
	b := mustBoard(t, grid)

	_, err := Solve(context.Background(), b, Options{Mode: AStar})
	assert.True(t, errors.Is(err, ErrUnsolvable))
}

func TestSolveTunnelCorridorMatchesNonTunnelSolution(t *testing.T) {
	grid := "########\n#@$   .#\n########"
	b := mustBoard(t, grid)

	withTunnel, err := Solve(context.Background(), b, Options{Mode: AStar, EnableTunnel: true})
	require.NoError(t, err)

	withoutTunnel, err := Solve(context.Background(), b, Options{Mode: AStar, EnableTunnel: false})
	require.NoError(t, err)

	assert.Equal(t, withoutTunnel.Pushes, withTunnel.Pushes)
}

func TestRelevantBoxesRestrictsToReachBoundary(t *testing.T) {
	grid := "######\n#@ $.#\n# $ .#\n######"
	b := mustBoard(t, grid)

	conf := initialConfig(t, b)
	reach := b.ComputeReach(conf, b.InitialPlayerRaw)

	boxes := relevantBoxes(b, conf, reach)
	assert.NotEmpty(t, boxes)
}

func initialConfig(t *testing.T, b *board.Board) boxconf.Configuration {
	t.Helper()
	idx := make([]int, 0, len(b.InitialBoxesRaw))
	for _, raw := range b.InitialBoxesRaw {
		i, _ := b.BoxIndex(raw)
		idx = append(idx, i)
	}
	return boxconf.FromIndices(b.NumBoxCells(), idx)
}
