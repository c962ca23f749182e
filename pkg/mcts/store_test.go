package mcts

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ABGursu/sfnnue-mcts/pkg/common"
)

func TestStoreGetOrCreate(t *testing.T) {
	var s = newStore()
	var p, err = common.NewPositionFromFEN(common.InitialPositionFen)
	require.NoError(t, err)

	var n = s.getOrCreate(&p)
	require.NotNil(t, n)
	require.Equal(t, p.Key, n.key1)
	require.Equal(t, p.PawnKey, n.key2)
	require.Same(t, n, s.getOrCreate(&p))
	require.Same(t, n, s.find(p.Key, p.PawnKey))
	require.Nil(t, s.find(p.Key^1, p.PawnKey))
	require.Equal(t, int64(1), s.size())
}

func TestStoreKeyCollision(t *testing.T) {
	var s = newStore()
	var p1, _ = common.NewPositionFromFEN(common.InitialPositionFen)
	var p2 = p1
	p2.PawnKey ^= 0xDEADBEEF // same key1, different identity

	var n1 = s.getOrCreate(&p1)
	var n2 = s.getOrCreate(&p2)
	require.NotSame(t, n1, n2)
	require.Equal(t, int64(2), s.size())
	require.Same(t, n1, s.find(p1.Key, p1.PawnKey))
	require.Same(t, n2, s.find(p2.Key, p2.PawnKey))
}

func TestStoreConcurrentCreate(t *testing.T) {
	var s = newStore()
	var positions []common.Position
	var p, err = common.NewPositionFromFEN(common.InitialPositionFen)
	require.NoError(t, err)
	var buffer [common.MaxMoves]common.OrderedMove
	for _, om := range p.GenerateMoves(buffer[:]) {
		var child common.Position
		if p.MakeMove(om.Move, &child) {
			positions = append(positions, child)
		}
	}
	require.Len(t, positions, 20)

	const workers = 8
	var results [workers][]*node
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := range positions {
				results[w] = append(results[w], s.getOrCreate(&positions[i]))
			}
		}(w)
	}
	wg.Wait()

	// Every worker must observe the same node per position.
	for w := 1; w < workers; w++ {
		for i := range positions {
			require.Same(t, results[0][i], results[w][i])
		}
	}
	require.Equal(t, int64(len(positions)), s.size())
}
