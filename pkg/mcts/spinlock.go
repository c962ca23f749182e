package mcts

import (
	"runtime"
	"sync/atomic"
)

// Spinlock is a busy-wait mutual exclusion primitive for critical
// sections that complete in bounded, very short time (counter and
// array mutation). It must never be held across move generation or
// evaluator calls. Not reentrant: acquiring a lock already held by
// the caller deadlocks.
type Spinlock struct {
	state uint32
}

const spinsBeforeYield = 64

func (l *Spinlock) Acquire() {
	var spins = 0
	for !atomic.CompareAndSwapUint32(&l.state, 0, 1) {
		spins++
		if spins >= spinsBeforeYield {
			runtime.Gosched()
			spins = 0
		}
	}
}

func (l *Spinlock) TryAcquire() bool {
	return atomic.CompareAndSwapUint32(&l.state, 0, 1)
}

func (l *Spinlock) Release() {
	atomic.StoreUint32(&l.state, 0)
}
