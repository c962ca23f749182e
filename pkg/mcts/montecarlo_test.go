package mcts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ABGursu/sfnnue-mcts/pkg/common"
	"github.com/ABGursu/sfnnue-mcts/pkg/engine"
	"github.com/ABGursu/sfnnue-mcts/pkg/eval"
)

func evalBuilder() engine.IEvaluator {
	return eval.NewEvaluationService()
}

func testEngine(t *testing.T, tune func(*Params)) *Engine {
	t.Helper()
	var e = NewEngine(evalBuilder)
	e.Hash = 4
	e.Params.PriorFastEvalDepth = 1
	e.Params.PriorSlowEvalDepth = 2
	e.Params.RolloutDepth = 2
	if tune != nil {
		tune(&e.Params)
	}
	require.NoError(t, e.Params.Validate())
	return e
}

func runSearch(t *testing.T, e *Engine, fen string, descents int64) (*search, common.SearchInfo) {
	t.Helper()
	var p, err = common.NewPositionFromFEN(fen)
	require.NoError(t, err)
	e.Params.MaxDescents = descents
	var s, info = e.searchRoot(context.Background(), common.SearchParams{
		Positions: []common.Position{p},
	})
	require.NotNil(t, s)
	return s, info
}

func rootEdgeStats(s *search) (visitSum float64, edges []Edge) {
	s.root.lock.Acquire()
	defer s.root.lock.Release()
	for _, e := range s.root.edges() {
		visitSum += e.Visits
		edges = append(edges, e)
	}
	return
}

func TestSingleDescent(t *testing.T) {
	var e = testEngine(t, nil)
	var s, info = runSearch(t, e, common.InitialPositionFen, 1)

	var visitSum, edges = rootEdgeStats(s)
	assert.Equal(t, 20, len(edges))
	assert.Equal(t, 1.0, visitSum)
	assert.Equal(t, int64(2), s.store.size(), "root plus one expanded child")
	assert.Equal(t, 1, s.root.expandedCount)
	require.Len(t, info.MainLine, 1)

	for _, edge := range edges {
		if edge.Visits == 0 {
			assert.Equal(t, unvisitedMean, edge.MeanActionValue)
			continue
		}
		assert.Equal(t, edge.ActionValue, edge.MeanActionValue)
		assert.GreaterOrEqual(t, float64(edge.MeanActionValue), float64(RewardLoss))
		assert.LessOrEqual(t, float64(edge.MeanActionValue), float64(RewardWin))
	}
}

func TestSingleThreadDeterminism(t *testing.T) {
	var run = func() ([]Edge, common.SearchInfo) {
		var e = testEngine(t, nil)
		var s, info = runSearch(t, e, "r1bqkbnr/pppp1ppp/2n5/4p3/4P3/5N2/PPPP1PPP/RNBQKB1R w KQkq - 2 3", 200)
		var _, edges = rootEdgeStats(s)
		return edges, info
	}
	var edges1, info1 = run()
	var edges2, info2 = run()
	require.Equal(t, edges1, edges2)
	assert.Equal(t, info1.MainLine, info2.MainLine)
	assert.Equal(t, info1.Score, info2.Score)
}

func TestVisitAccounting(t *testing.T) {
	var e = testEngine(t, func(p *Params) {
		p.Threads = 4
	})
	const descents = 1500
	var s, info = runSearch(t, e, "r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 1", descents)

	var visitSum, edges = rootEdgeStats(s)
	assert.Equal(t, float64(descents), visitSum,
		"every descent contributes exactly one root edge visit")
	assert.NotEmpty(t, info.MainLine)

	s.root.lock.Acquire()
	assert.Equal(t, int64(descents), s.root.nodeVisits)
	s.root.lock.Release()

	for _, edge := range edges {
		if edge.Visits > 0 {
			assert.InDelta(t, float64(edge.ActionValue)/edge.Visits,
				float64(edge.MeanActionValue), 1e-9)
		}
	}
}

func TestMateInOne(t *testing.T) {
	var e = testEngine(t, nil)
	var _, info = runSearch(t, e, "6k1/5ppp/8/8/8/8/8/1R4K1 w - - 0 1", 300)
	require.NotEmpty(t, info.MainLine)
	assert.Equal(t, "b1b8", info.MainLine[0].String())
	assert.Equal(t, 1, info.Score.Mate)
}

func TestCheckmatedRoot(t *testing.T) {
	var e = testEngine(t, nil)
	var _, info = runSearch(t, e, "6k1/6Q1/6K1/8/8/8/8/8 b - - 0 1", 10)
	assert.Empty(t, info.MainLine)
	assert.Equal(t, -1, info.Score.Mate)
}

func TestStalematedRoot(t *testing.T) {
	var e = testEngine(t, nil)
	var _, info = runSearch(t, e, "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1", 10)
	assert.Empty(t, info.MainLine)
	assert.Equal(t, 0, info.Score.Mate)
	assert.Equal(t, 0, info.Score.Centipawns)
}

func TestTerminalLeafWithoutDescendants(t *testing.T) {
	// The checkmated child of the mating move is rewarded as a loss
	// for the side to move without the tree ever growing below it.
	var e = testEngine(t, nil)
	var s, _ = runSearch(t, e, "6k1/5ppp/8/8/8/8/8/1R4K1 w - - 0 1", 100)

	var pos, err = common.NewPositionFromFEN("6k1/5ppp/8/8/8/8/8/1R4K1 w - - 0 1")
	require.NoError(t, err)
	var child, ok = pos.MakeMoveLAN("b1b8")
	require.True(t, ok)

	var leaf = s.root.bestEdge(StatVisits)
	require.Equal(t, "b1b8", leaf.Move.String())
	var n = s.store.find(child.Key, child.PawnKey)
	require.NotNil(t, n)
	assert.True(t, n.expanded)
	assert.Equal(t, 0, n.legalMoveCount)
	assert.Equal(t, 0, n.expandedCount)
	assert.Equal(t, int64(leaf.Visits), n.nodeVisits)
	assert.Equal(t, RewardWin, leaf.MeanActionValue)
}

func TestBestEdgeStatistics(t *testing.T) {
	var n = &node{legalMoveCount: 3}
	n.children[0] = Edge{Visits: 50, Prior: 0.40, ActionValue: 30, MeanActionValue: 0.60}
	n.children[1] = Edge{Visits: 80, Prior: 0.30, ActionValue: 36, MeanActionValue: 0.45}
	n.children[2] = Edge{Visits: 10, Prior: 0.90, ActionValue: 7, MeanActionValue: 0.70}

	assert.Same(t, &n.children[1], n.bestEdge(StatVisits))
	assert.Same(t, &n.children[2], n.bestEdge(StatMean))
	assert.Same(t, &n.children[2], n.bestEdge(StatPrior))
	assert.Same(t, &n.children[1], n.bestEdge(StatRobust))
}

func TestBestEdgeVisitsTieBreak(t *testing.T) {
	var n = &node{legalMoveCount: 2}
	n.children[0] = Edge{Visits: 40, Prior: 0.20}
	n.children[1] = Edge{Visits: 40, Prior: 0.55}
	assert.Same(t, &n.children[1], n.bestEdge(StatVisits))
}

func TestUCBPreference(t *testing.T) {
	var p = DefaultParams()
	var visited = &Edge{Visits: 100, ActionValue: 90, MeanActionValue: 0.9, Prior: 0.5}
	var fresh = &Edge{Prior: 0.5, MeanActionValue: unvisitedMean}

	// An unvisited edge starts from the optimistic constant plus its
	// full prior; it must outrank a well-visited strong edge.
	assert.Greater(t, ucb(&p, 100, fresh), ucb(&p, 100, visited))

	// A surely lost edge is damped to zero with full losses avoidance.
	var lost = &Edge{Visits: 5, ActionValue: 0, MeanActionValue: 0, Prior: 0.5}
	assert.Equal(t, 0.0, ucb(&p, 100, lost))
}

func TestParamsValidate(t *testing.T) {
	var cases = []func(*Params){
		func(p *Params) { p.Threads = 0 },
		func(p *Params) { p.MaxDescents = -1 },
		func(p *Params) { p.UCBExplorationConstant = -0.1 },
		func(p *Params) { p.UCBLossesAvoidance = 1.5 },
		func(p *Params) { p.UCBLogTermFactor = 0 },
		func(p *Params) { p.PriorFastEvalDepth = -1 },
		func(p *Params) { p.RolloutDepth = -2 },
		func(p *Params) { p.BestChildStat = "median" },
	}
	for i, tweak := range cases {
		var p = DefaultParams()
		tweak(&p)
		assert.Error(t, p.Validate(), "case %d", i)
	}
	var p = DefaultParams()
	assert.NoError(t, p.Validate())
}
