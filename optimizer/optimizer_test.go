package optimizer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokostar/sokostar/board"
	"github.com/sokostar/sokostar/deadlock"
	"github.com/sokostar/sokostar/verify"
)

func mustBoard(t *testing.T, grid string) *board.Board {
	t.Helper()
	b, err := board.Parse(grid)
	require.NoError(t, err)
	require.NoError(t, deadlock.PrecomputeSimple(b))
	return b
}

const corridor = "##########\n#@  $   .#\n##########"

// TestOptimizeRemovesWastedMoves feeds a valid but deliberately wasteful
// reference solution (a pointless left-right detour before the push run)
// and checks the optimizer finds the same push count with far fewer
// moves under MOVES_PUSHES.
func TestOptimizeRemovesWastedMoves(t *testing.T) {
	b := mustBoard(t, corridor)
	ref := "rrllrrRRRR"

	refMetrics, err := verify.Replay(b, ref)
	require.NoError(t, err)
	require.True(t, refMetrics.Valid)
	require.Equal(t, 10, refMetrics.Moves)
	require.Equal(t, 4, refMetrics.Pushes)

	sol, err := Optimize(context.Background(), b, ref, Settings{
		Metric:            MovesPushes,
		Radii:             []int{10},
		MaxBoxesRelocated: 1,
		IterateToFixpoint: true,
	})
	require.NoError(t, err)
	assert.True(t, sol.Metrics.Valid)
	assert.Equal(t, 4, sol.Metrics.Pushes)
	assert.LessOrEqual(t, sol.Metrics.Moves, refMetrics.Moves)
	assert.True(t, IsBetter(MovesPushes, sol.Metrics, refMetrics) || sol.Metrics == refMetrics)
}

// TestOptimizeIsIdempotentOnReoptimization covers S4: re-running Optimize
// on an already-improved solution with the same settings must not change
// it further — the state universe already contained the optimum the
// first time, so a second pass is a fixpoint.
func TestOptimizeIsIdempotentOnReoptimization(t *testing.T) {
	b := mustBoard(t, corridor)
	ref := "rrllrrRRRR"

	settings := Settings{
		Metric:            MovesPushes,
		Radii:             []int{10},
		MaxBoxesRelocated: 1,
		IterateToFixpoint: true,
	}

	first, err := Optimize(context.Background(), b, ref, settings)
	require.NoError(t, err)

	second, err := Optimize(context.Background(), b, first.LURD, settings)
	require.NoError(t, err)

	assert.Equal(t, first.Metrics.Moves, second.Metrics.Moves)
	assert.Equal(t, first.Metrics.Pushes, second.Metrics.Pushes)
}

// TestIsBetterOrdersByNamedMetricFirst covers S6: under MOVES_PUSHES the
// solution with fewer moves wins even though it has more pushes; under
// PUSHES_MOVES the ranking reverses.
func TestIsBetterOrdersByNamedMetricFirst(t *testing.T) {
	fewerMovesMorePushes := verify.Result{Moves: 10, Pushes: 7}
	moreMovesFewerPushes := verify.Result{Moves: 11, Pushes: 6}

	assert.True(t, IsBetter(MovesPushes, fewerMovesMorePushes, moreMovesFewerPushes))
	assert.True(t, IsBetter(PushesMoves, moreMovesFewerPushes, fewerMovesMorePushes))
}
