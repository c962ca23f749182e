package mcts

import (
	"context"
	"fmt"
	gomath "math"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ABGursu/sfnnue-mcts/pkg/common"
	"github.com/ABGursu/sfnnue-mcts/pkg/engine"
)

const (
	maxPly         = 127
	outputInterval = time.Second
)

// Engine runs a multi-threaded Monte-Carlo tree search with rollout
// by alpha-beta search. It satisfies the uci.Engine interface.
type Engine struct {
	Hash   int
	Params Params
	Logger zerolog.Logger

	evalBuilder func() engine.IEvaluator
	transTable  engine.TransTable
	searchers   []*engine.Searcher
}

func NewEngine(evalBuilder func() engine.IEvaluator) *Engine {
	return &Engine{
		Hash:        16,
		Params:      DefaultParams(),
		Logger:      zerolog.Nop(),
		evalBuilder: evalBuilder,
	}
}

func (e *Engine) Prepare() {
	if e.transTable == nil || e.transTable.Size() != e.Hash {
		e.transTable = engine.NewTransTable(e.Hash)
	}
	if len(e.searchers) != e.Params.Threads {
		e.searchers = make([]*engine.Searcher, e.Params.Threads)
		for i := range e.searchers {
			e.searchers[i] = engine.NewSearcher(e.evalBuilder(), e.transTable)
		}
	}
}

func (e *Engine) Clear() {
	if e.transTable != nil {
		e.transTable.Clear()
	}
}

// search carries the shared state of one Search invocation. The tree
// store lives exactly as long as this struct: a fresh store per
// top-level search, never reused across invocations.
type search struct {
	params    Params
	stat      EdgeStatistic
	store     *store
	root      *node
	history   []common.Position
	startTime time.Time
	ctx       context.Context
	cancel    context.CancelFunc
	progress  func(common.SearchInfo)
	logger    zerolog.Logger

	descentCnt int64
	playoutCnt int64
	priorCnt   int64
	nodeCnt    int64
	maximumPly int32
	lastOutput int64 // unix nanos
}

func (e *Engine) Search(ctx context.Context, searchParams common.SearchParams) common.SearchInfo {
	var _, result = e.searchRoot(ctx, searchParams)
	return result
}

// searchRoot additionally returns the search state so the tree can be
// inspected after the workers stop.
func (e *Engine) searchRoot(ctx context.Context, searchParams common.SearchParams) (*search, common.SearchInfo) {
	var start = time.Now()
	if err := e.Params.Validate(); err != nil {
		e.Logger.Error().Err(err).Msg("mcts search aborted")
		return nil, common.SearchInfo{}
	}
	e.Prepare()

	var stat, _ = e.Params.bestChildStat()
	var s = &search{
		params:    e.Params,
		stat:      stat,
		store:     newStore(),
		history:   searchParams.Positions,
		startTime: start,
		progress:  searchParams.Progress,
		logger:    e.Logger,
	}
	s.ctx, s.cancel = budgetContext(ctx, start, searchParams.Limits,
		&searchParams.Positions[len(searchParams.Positions)-1])
	defer s.cancel()
	if limit := searchParams.Limits.Nodes; limit > 0 &&
		(s.params.MaxDescents == 0 || int64(limit) < s.params.MaxDescents) {
		s.params.MaxDescents = int64(limit)
	}

	s.logger.Debug().Stringer("params", &s.params).Msg("mcts search started")

	var workers = make([]*monteCarlo, s.params.Threads)
	for i := range workers {
		workers[i] = newWorker(s, e.searchers[i], i)
	}

	// The root is expanded once, before the workers start.
	var root = workers[0].createRoot()
	if root.legalMoveCount == 0 {
		return s, s.currentResult()
	}

	var g errgroup.Group
	for i := range workers {
		var w = workers[i]
		g.Go(func() error {
			w.run()
			return nil
		})
	}
	g.Wait()

	var result = s.currentResult()
	s.logger.Debug().
		Int64("descents", atomic.LoadInt64(&s.descentCnt)).
		Int64("playouts", atomic.LoadInt64(&s.playoutCnt)).
		Int64("priors", atomic.LoadInt64(&s.priorCnt)).
		Int64("treeNodes", s.store.size()).
		Int32("maximumPly", atomic.LoadInt32(&s.maximumPly)).
		Dur("elapsed", time.Since(start)).
		Msg("mcts search finished")
	return s, result
}

// budgetContext derives the wall-clock budget from the UCI limits the
// same way the alpha-beta time manager does.
func budgetContext(ctx context.Context, start time.Time,
	limits common.LimitsType, p *common.Position) (context.Context, context.CancelFunc) {
	var hardLimit time.Duration
	if limits.MoveTime > 0 {
		hardLimit = time.Duration(limits.MoveTime) * time.Millisecond
	} else if limits.WhiteTime > 0 || limits.BlackTime > 0 {
		var main, inc time.Duration
		if p.WhiteMove {
			main = time.Duration(limits.WhiteTime) * time.Millisecond
			inc = time.Duration(limits.WhiteIncrement) * time.Millisecond
		} else {
			main = time.Duration(limits.BlackTime) * time.Millisecond
			inc = time.Duration(limits.BlackIncrement) * time.Millisecond
		}
		const movesToGo = 35
		hardLimit = main/movesToGo + inc/2
	}
	if hardLimit != 0 {
		return context.WithDeadline(ctx, start.Add(hardLimit))
	}
	return context.WithCancel(ctx)
}

// startDescent claims one unit of the computational budget.
func (s *search) startDescent() bool {
	if s.ctx.Err() != nil {
		return false
	}
	var n = atomic.AddInt64(&s.descentCnt, 1)
	if s.params.MaxDescents > 0 && n > s.params.MaxDescents {
		atomic.AddInt64(&s.descentCnt, -1)
		return false
	}
	return true
}

func (s *search) observePly(ply int) {
	for {
		var cur = atomic.LoadInt32(&s.maximumPly)
		if int32(ply) <= cur || atomic.CompareAndSwapInt32(&s.maximumPly, cur, int32(ply)) {
			return
		}
	}
}

// monteCarlo is the per-worker descent state. Stacks and counters are
// private to the worker; only the store and its nodes are shared.
type monteCarlo struct {
	s        *search
	id       int
	searcher *engine.Searcher

	// stack holds the game history followed by the current descent
	// path; stack[rootHeight] is the root position. The history
	// prefix gives the rollout searcher its repetition lookback.
	stack      []common.Position
	rootHeight int
	ply        int
	nodes      [maxPly + 2]*node
	edges      [maxPly + 2]*Edge
}

func newWorker(s *search, searcher *engine.Searcher, id int) *monteCarlo {
	var mc = &monteCarlo{
		s:          s,
		id:         id,
		searcher:   searcher,
		rootHeight: len(s.history) - 1,
	}
	mc.stack = make([]common.Position, len(s.history), len(s.history)+maxPly+2)
	copy(mc.stack, s.history)
	return mc
}

func (mc *monteCarlo) createRoot() *node {
	var root = mc.s.store.getOrCreate(&mc.stack[mc.rootHeight])
	mc.s.root = root
	mc.ply = 0
	mc.expandChildren(root)
	return root
}

func (mc *monteCarlo) run() {
	for mc.s.startDescent() {
		mc.descend()
		mc.flushNodes()
		if mc.id == 0 {
			mc.s.maybeReportProgress()
		}
	}
}

func (mc *monteCarlo) flushNodes() {
	if n := mc.searcher.Nodes(); n != 0 {
		atomic.AddInt64(&mc.s.nodeCnt, n)
		mc.searcher.ResetNodes()
	}
}

// descend runs one selection / expansion / playout / backup cycle.
func (mc *monteCarlo) descend() {
	mc.ply = 0
	mc.stack = mc.stack[:mc.rootHeight+1]
	var n = mc.s.root

	for {
		mc.nodes[mc.ply] = n
		var pos = &mc.stack[len(mc.stack)-1]

		if mc.ply > 0 && mc.isDrawnByRule(pos) {
			mc.backup(RewardDraw)
			return
		}

		mc.expandChildren(n)
		if n.legalMoveCount == 0 {
			mc.backup(evaluateTerminal(pos))
			return
		}

		n.lock.Acquire()
		var edge = mc.selectEdge(n)
		var unvisited = edge.Visits == 0
		n.lock.Release()

		mc.doMove(edge)

		if unvisited {
			var child = mc.s.store.getOrCreate(&mc.stack[len(mc.stack)-1])
			mc.nodes[mc.ply] = child
			mc.backup(mc.playoutPolicy(child))
			return
		}
		n = mc.s.store.getOrCreate(&mc.stack[len(mc.stack)-1])
	}
}

func (mc *monteCarlo) doMove(edge *Edge) {
	var pos = &mc.stack[len(mc.stack)-1]
	var child common.Position
	if !pos.MakeMove(edge.Move, &child) {
		panic(fmt.Errorf("mcts: illegal move %v in expanded node %v", edge.Move, pos.String()))
	}
	mc.edges[mc.ply] = edge
	mc.ply++
	if mc.ply > maxPly {
		panic(fmt.Errorf("mcts: descent exceeded maximum ply %d at %v", maxPly, pos.String()))
	}
	mc.stack = append(mc.stack, child)
	mc.s.observePly(mc.ply)
}

// isDrawnByRule reports draws decided by the path itself: repetition
// against the descent stack and game history, the fifty-move rule and
// bare-material endings.
func (mc *monteCarlo) isDrawnByRule(pos *common.Position) bool {
	if pos.Rule50 > 100 {
		return true
	}
	if (pos.Pawns|pos.Rooks|pos.Queens) == 0 &&
		!common.MoreThanOne(pos.Knights|pos.Bishops) {
		return true
	}
	if pos.Rule50 == 0 {
		return false
	}
	for i := len(mc.stack) - 2; i >= 0; i-- {
		var prev = &mc.stack[i]
		if prev.Key == pos.Key {
			return true
		}
		if prev.Rule50 == 0 {
			break
		}
	}
	return false
}

// expandChildren materializes the node's edges: legal moves and their
// priors. Priors are computed outside the node lock; the first writer
// wins, later expansions of the same node are discarded.
func (mc *monteCarlo) expandChildren(n *node) {
	n.lock.Acquire()
	var done = n.expanded
	n.lock.Release()
	if done {
		return
	}

	var pos = &mc.stack[len(mc.stack)-1]
	var buffer [common.MaxMoves]common.OrderedMove
	var local [MaxChildren]Edge
	var count = 0
	var child common.Position
	for _, om := range pos.GenerateMoves(buffer[:]) {
		if !pos.MakeMove(om.Move, &child) {
			continue
		}
		if count >= MaxChildren {
			panic(fmt.Errorf("mcts: branching factor above %d at %v", MaxChildren, pos.String()))
		}
		local[count] = Edge{
			Move:            om.Move,
			Prior:           mc.calculatePrior(&child),
			MeanActionValue: unvisitedMean,
		}
		count++
	}

	n.lock.Acquire()
	if !n.expanded {
		copy(n.children[:count], local[:count])
		n.legalMoveCount = count
		n.expanded = true
	}
	n.lock.Release()
}

// calculatePrior scores the move leading to child with a shallow
// deterministic search. Children of the root get the slow depth,
// deeper expansions the fast one.
func (mc *monteCarlo) calculatePrior(child *common.Position) Reward {
	var depth = mc.s.params.PriorFastEvalDepth
	if mc.ply == 0 {
		depth = mc.s.params.PriorSlowEvalDepth
	}
	mc.stack = append(mc.stack, *child)
	var v, _ = mc.searcher.SearchDepth(mc.stack, depth)
	mc.stack = mc.stack[:len(mc.stack)-1]
	atomic.AddInt64(&mc.s.priorCnt, 1)
	// v is from the child's side to move; flip for the mover.
	return RewardWin - ValueToReward(v)
}

// playoutPolicy evaluates the newly-reached leaf: terminal reward for
// ended games, otherwise rollout by fixed-depth search (or quiescence
// only when the hybrid rollout is disabled).
func (mc *monteCarlo) playoutPolicy(n *node) Reward {
	var pos = &mc.stack[len(mc.stack)-1]
	if mc.isDrawnByRule(pos) {
		return RewardDraw
	}
	mc.expandChildren(n)
	if n.legalMoveCount == 0 {
		return evaluateTerminal(pos)
	}

	atomic.AddInt64(&mc.s.playoutCnt, 1)
	var depth = 0
	if mc.s.params.ABRollout {
		depth = mc.s.params.RolloutDepth
	}
	var v, _ = mc.evaluateWithMinimax(n, depth)
	return ValueToReward(v)
}

func evaluateTerminal(pos *common.Position) Reward {
	if pos.IsCheck() {
		return RewardLoss
	}
	return RewardDraw
}

// evaluateWithMinimax runs the deterministic evaluator at the current
// stack position, memoizing the result on the node. The node lock is
// never held across the search itself.
func (mc *monteCarlo) evaluateWithMinimax(n *node, depth int) (int, common.Move) {
	n.lock.Acquire()
	if n.abValid && n.abDepth >= depth {
		var v, m = n.abValue, n.abMove
		n.lock.Release()
		return v, m
	}
	n.lock.Release()

	var v, m = mc.searcher.SearchDepth(mc.stack, depth)

	n.lock.Acquire()
	if !n.abValid || depth > n.abDepth {
		n.abValue, n.abMove, n.abDepth, n.abValid = v, m, depth, true
	}
	n.lock.Release()
	return v, m
}

// backup walks the traversed path bottom-up. Each node is updated as
// an independent atomic step under its own lock; no lock ever spans
// two nodes.
func (mc *monteCarlo) backup(r Reward) {
	var leaf = mc.nodes[mc.ply]
	leaf.lock.Acquire()
	leaf.nodeVisits++
	leaf.lock.Release()

	for i := mc.ply; i >= 1; i-- {
		r = RewardWin - r
		var parent = mc.nodes[i-1]
		var e = mc.edges[i-1]
		parent.lock.Acquire()
		if e.Visits == 0 {
			parent.expandedCount++
		}
		e.Visits++
		e.ActionValue += r
		e.MeanActionValue = e.ActionValue / Reward(e.Visits)
		parent.nodeVisits++
		parent.lock.Release()
	}
}

// selectEdge returns the edge maximizing the UCB score. The caller
// holds the node's lock.
func (mc *monteCarlo) selectEdge(n *node) *Edge {
	var p = &mc.s.params
	var fatherVisits float64
	if p.UCBUseFatherVisits {
		fatherVisits = float64(n.nodeVisits)
	} else {
		for i := 0; i < n.legalMoveCount; i++ {
			fatherVisits += n.children[i].Visits
		}
	}
	var best = &n.children[0]
	var bestScore = ucb(p, fatherVisits, best)
	for i := 1; i < n.legalMoveCount; i++ {
		var e = &n.children[i]
		if score := ucb(p, fatherVisits, e); score > bestScore {
			best, bestScore = e, score
		}
	}
	return best
}

// ucb is the selection score of one edge: mean action value (or the
// unexpanded-node constant for never-visited edges), an exploration
// term fed by the father visits, and a prior bias decaying with
// visits. Edges whose observed mean is a sure loss are damped by the
// losses-avoidance factor.
func ucb(p *Params, fatherVisits float64, e *Edge) float64 {
	var exploitation float64
	if e.Visits > 0 {
		exploitation = float64(e.MeanActionValue)
	} else {
		exploitation = p.UCBUnexpandedNode
	}

	var exploration float64
	if fatherVisits > 0 {
		exploration = p.UCBExplorationConstant *
			gomath.Sqrt(p.UCBLogTermFactor*gomath.Log(1+fatherVisits)/(1+e.Visits))
	}

	var score = exploitation + exploration + float64(e.Prior)/(1+e.Visits)

	if e.Visits > 0 && e.MeanActionValue <= RewardLoss {
		score *= 1 - p.UCBLossesAvoidance
	}
	return score
}

func (s *search) maybeReportProgress() {
	if s.progress == nil {
		return
	}
	var now = time.Now().UnixNano()
	var last = atomic.LoadInt64(&s.lastOutput)
	if now-last < int64(outputInterval) {
		return
	}
	if atomic.CompareAndSwapInt64(&s.lastOutput, last, now) {
		s.progress(s.currentResult())
	}
}

// currentResult extracts the best root move by the configured best
// child statistic and the principal variation below it.
func (s *search) currentResult() common.SearchInfo {
	var result = common.SearchInfo{
		Depth: int(atomic.LoadInt32(&s.maximumPly)),
		Nodes: atomic.LoadInt64(&s.nodeCnt),
		Time:  time.Since(s.startTime),
	}

	var root = s.root
	root.lock.Acquire()
	var best *Edge
	if root.legalMoveCount > 0 {
		best = root.bestEdge(s.stat)
		if best.Visits > 0 {
			result.Score = uciScoreFromReward(best.MeanActionValue)
		} else {
			result.Score = uciScoreFromReward(best.Prior)
		}
	} else {
		// Terminal root: mate or stalemate.
		result.Score = uciScoreFromReward(evaluateTerminal(&s.history[len(s.history)-1]))
	}
	root.lock.Release()

	if best != nil {
		result.MainLine = s.principalVariation(best)
	}
	return result
}

// principalVariation follows the best visited edge from node to node
// through the store. Cycles through transpositions stop the walk.
func (s *search) principalVariation(rootEdge *Edge) []common.Move {
	var line = []common.Move{rootEdge.Move}
	var seen = map[uint64]bool{s.root.key1: true}

	var pos = s.history[len(s.history)-1]
	var child common.Position
	if !pos.MakeMove(rootEdge.Move, &child) {
		return line
	}
	pos = child

	for len(line) <= maxPly {
		if seen[pos.Key] {
			break
		}
		seen[pos.Key] = true
		var n = s.store.find(pos.Key, pos.PawnKey)
		if n == nil {
			break
		}
		n.lock.Acquire()
		var best *Edge
		if n.expanded && n.legalMoveCount > 0 {
			best = n.bestEdge(s.stat)
		}
		if best == nil || best.Visits == 0 {
			n.lock.Release()
			break
		}
		var move = best.Move
		n.lock.Release()

		if !pos.MakeMove(move, &child) {
			break
		}
		line = append(line, move)
		pos = child
	}
	return line
}

func uciScoreFromReward(r Reward) common.UciScore {
	if r <= RewardLoss {
		return common.UciScore{Mate: -1}
	}
	if r >= RewardWin {
		return common.UciScore{Mate: 1}
	}
	return common.UciScore{Centipawns: RewardToValue(r)}
}
