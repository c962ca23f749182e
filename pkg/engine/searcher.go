package engine

import (
	. "github.com/ABGursu/sfnnue-mcts/pkg/common"
)

// Searcher runs fixed-depth alpha-beta searches outside of the UCI
// time-managed flow. Several searchers may share one transposition
// table and run concurrently, each owning its private stack and
// history tables.
type Searcher struct {
	t thread
}

func NewSearcher(evaluator IEvaluator, tt TransTable) *Searcher {
	var s = &Searcher{}
	s.t.evaluator = evaluator
	s.t.transTable = tt
	return s
}

// SearchDepth searches the last position of history to the given
// depth and returns the score from the side to move point of view
// together with the best move. Earlier history positions only feed
// repetition detection. depth <= 0 runs the quiescence search.
func (s *Searcher) SearchDepth(history []Position, depth int) (score int, bestMove Move) {
	var t = &s.t
	var p = &history[len(history)-1]
	t.historyKeys = getHistoryKeys(history)
	t.stack[0].position = *p
	for h := 0; h <= 2; h++ {
		t.stack[h].killer1 = MoveEmpty
		t.stack[h].killer2 = MoveEmpty
	}
	if depth <= 0 {
		score = t.quiescence(-valueInfinity, valueInfinity, 0)
	} else {
		score = t.alphaBeta(-valueInfinity, valueInfinity, Min(depth, maxHeight), 0)
	}
	if t.stack[0].pv.size > 0 {
		bestMove = t.stack[0].pv.items[0]
	}
	return score, bestMove
}

func (s *Searcher) Nodes() int64 {
	return s.t.nodes
}

func (s *Searcher) ResetNodes() {
	s.t.nodes = 0
}
