package zobrist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sokostar/sokostar/board"
	"github.com/sokostar/sokostar/boxconf"
	"github.com/sokostar/sokostar/deadlock"
)

func TestHashIndependentOfBoxEnumerationOrder(t *testing.T) {
	grid := "#####\n#@$.#\n#$ .#\n#####"
	b, err := board.Parse(grid)
	require.NoError(t, err)
	require.NoError(t, deadlock.PrecomputeSimple(b))
	table := New(b)

	idxA, _ := b.BoxIndex(b.InitialBoxesRaw[0])
	idxB, _ := b.BoxIndex(b.InitialBoxesRaw[1])

	confOrderAB := boxconf.FromIndices(b.NumBoxCells(), []int{idxA, idxB})
	confOrderBA := boxconf.FromIndices(b.NumBoxCells(), []int{idxB, idxA})

	assert.Equal(t, table.Hash(confOrderAB, 0), table.Hash(confOrderBA, 0))
}

func TestHashDistinguishesDifferentConfigurations(t *testing.T) {
	grid := "#####\n#@$.#\n#$ .#\n#####"
	b, err := board.Parse(grid)
	require.NoError(t, err)
	require.NoError(t, deadlock.PrecomputeSimple(b))
	table := New(b)

	idxA, _ := b.BoxIndex(b.InitialBoxesRaw[0])
	confA := boxconf.FromIndices(b.NumBoxCells(), []int{idxA})

	var otherIdx int
	for i := 0; i < b.NumBoxCells(); i++ {
		if i != idxA {
			otherIdx = i
			break
		}
	}
	confB := boxconf.FromIndices(b.NumBoxCells(), []int{otherIdx})

	assert.NotEqual(t, table.Hash(confA, 0), table.Hash(confB, 0))
}

func TestUpdateMatchesFullRehash(t *testing.T) {
	grid := "#####\n#@$.#\n#$ .#\n#####"
	b, err := board.Parse(grid)
	require.NoError(t, err)
	require.NoError(t, deadlock.PrecomputeSimple(b))
	table := New(b)

	idxA, _ := b.BoxIndex(b.InitialBoxesRaw[0])
	var dstIdx int
	for i := 0; i < b.NumBoxCells(); i++ {
		if i != idxA {
			dstIdx = i
			break
		}
	}

	before := boxconf.FromIndices(b.NumBoxCells(), []int{idxA})
	after := before.Move(idxA, dstIdx)

	h0 := table.Hash(before, 0)
	h1 := table.Hash(after, 1)

	incremental := table.Update(h0, idxA, dstIdx, 0, 1)
	assert.Equal(t, h1, incremental)
}
