package mcts

import (
	"sync"

	"github.com/ABGursu/sfnnue-mcts/pkg/common"
)

// store holds the shared Monte-Carlo tree for one search invocation:
// a concurrent hash multimap from the full-position Zobrist key to
// node records. Distinct positions may share key1 (collisions are
// tolerated), so identity is re-validated with the (key1, key2) pair
// on every lookup; statistics of different positions are never
// silently merged.
//
// Buckets are copy-on-write slices: lookups are lock-free, all
// insertions are serialized under one global creation lock.
type store struct {
	buckets    sync.Map // uint64 -> []*node
	createLock Spinlock
	nodeCount  int64 // mutated under createLock only
}

func newStore() *store {
	return &store{}
}

func (s *store) find(key1, key2 uint64) *node {
	if v, ok := s.buckets.Load(key1); ok {
		for _, n := range v.([]*node) {
			if n.key1 == key1 && n.key2 == key2 {
				return n
			}
		}
	}
	return nil
}

// getOrCreate returns the node for the position, creating a
// zero-statistics record when absent. At most one record is ever
// created per distinct position within one search lifetime.
func (s *store) getOrCreate(p *common.Position) *node {
	var key1, key2 = p.Key, p.PawnKey
	if n := s.find(key1, key2); n != nil {
		return n
	}

	s.createLock.Acquire()
	defer s.createLock.Release()

	// Another thread may have inserted while we waited.
	if n := s.find(key1, key2); n != nil {
		return n
	}

	var n = &node{
		key1:     key1,
		key2:     key2,
		lastMove: p.LastMove,
	}
	var bucket []*node
	if v, ok := s.buckets.Load(key1); ok {
		var old = v.([]*node)
		bucket = make([]*node, len(old)+1)
		copy(bucket, old)
		bucket[len(old)] = n
	} else {
		bucket = []*node{n}
	}
	s.buckets.Store(key1, bucket)
	s.nodeCount++
	return n
}

func (s *store) size() int64 {
	s.createLock.Acquire()
	defer s.createLock.Release()
	return s.nodeCount
}
