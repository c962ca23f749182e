package mcts

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSpinlockMutualExclusion(t *testing.T) {
	var lock Spinlock
	var counter int
	var wg sync.WaitGroup
	const workers = 8
	const iterations = 10000
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < iterations; j++ {
				lock.Acquire()
				counter++
				lock.Release()
			}
		}()
	}
	wg.Wait()
	require.Equal(t, workers*iterations, counter)
}

func TestSpinlockTryAcquire(t *testing.T) {
	var lock Spinlock
	require.True(t, lock.TryAcquire())
	require.False(t, lock.TryAcquire())
	lock.Release()
	require.True(t, lock.TryAcquire())
	lock.Release()
}
