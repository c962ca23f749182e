package mcts

import (
	"github.com/ABGursu/sfnnue-mcts/pkg/common"
)

// MaxChildren bounds the branching factor of a tree node. Chess
// positions never reach it in practice; overflow is a fatal
// structural violation rather than a truncation.
const MaxChildren = 128

// unvisitedMean is the sentinel mean action value of an edge that was
// never traversed; real means live in [0, 1].
const unvisitedMean = Reward(-1000000)

// Edge stores the statistics of one edge between nodes in the
// Monte-Carlo tree.
type Edge struct {
	Move            common.Move
	Visits          float64
	Prior           Reward
	ActionValue     Reward
	MeanActionValue Reward
}

// node is the unit of the implicit game tree. The tree has no
// parent/child pointers: nodes are addressed by the position's
// Zobrist keys through the shared store, so transposing move
// sequences share statistics.
//
// lock guards nodeVisits, expandedCount, the children array and the
// cached alpha-beta result. key1, key2, legalMoveCount and lastMove
// are immutable after expandChildren.
type node struct {
	lock           Spinlock
	key1           uint64 // full-position Zobrist key
	key2           uint64 // pawn-only Zobrist key
	nodeVisits     int64
	expanded       bool
	legalMoveCount int
	expandedCount  int
	lastMove       common.Move
	children       [MaxChildren]Edge

	// Cached deterministic evaluator output for this position.
	abMove  common.Move
	abValue int
	abDepth int
	abValid bool
}

func (n *node) edges() []Edge {
	return n.children[:n.legalMoveCount]
}

// EdgeStatistic selects how edges are ranked.
type EdgeStatistic int

const (
	StatUCB EdgeStatistic = iota
	StatVisits
	StatMean
	StatPrior
	StatRobust
)

func compareVisits(a, b *Edge) bool {
	return a.Visits > b.Visits || (a.Visits == b.Visits && a.Prior > b.Prior)
}

func compareMeanAction(a, b *Edge) bool {
	return a.MeanActionValue > b.MeanActionValue
}

func comparePrior(a, b *Edge) bool {
	return a.Prior > b.Prior
}

func compareRobustChoice(a, b *Edge) bool {
	return 10*a.Visits+float64(a.Prior) > 10*b.Visits+float64(b.Prior)
}

func compareFunc(stat EdgeStatistic) func(a, b *Edge) bool {
	switch stat {
	case StatVisits:
		return compareVisits
	case StatMean:
		return compareMeanAction
	case StatPrior:
		return comparePrior
	case StatRobust:
		return compareRobustChoice
	}
	return compareVisits
}

// bestEdge returns the edge maximizing the given statistic. The
// caller must hold the node's lock when other threads may mutate it.
func (n *node) bestEdge(stat EdgeStatistic) *Edge {
	if n.legalMoveCount == 0 {
		return nil
	}
	var better = compareFunc(stat)
	var best = &n.children[0]
	for i := 1; i < n.legalMoveCount; i++ {
		if better(&n.children[i], best) {
			best = &n.children[i]
		}
	}
	return best
}
