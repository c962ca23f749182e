package engine

import (
	"context"
	"math"
	"runtime"
	"time"

	. "github.com/ABGursu/sfnnue-mcts/pkg/common"
)

type Engine struct {
	Hash             int
	Threads          int
	ProgressMinNodes int
	evalBuilder      func() IEvaluator
	timeManager      *timeManager
	transTable       TransTable
	historyKeys      map[uint64]int
	threads          []thread
	progress         func(SearchInfo)
	mainLine         mainLine
	start            time.Time
}

type thread struct {
	transTable          TransTable
	timeManager         *timeManager
	historyKeys         map[uint64]int
	evaluator           IEvaluator
	nodes               int64
	mainHistory         [2 << 12]int16
	continuationHistory [2 << 9][2 << 9]int16
	stack               [stackSize]struct {
		position       Position
		moveList       [MaxMoves]OrderedMove
		quietsSearched [MaxMoves]Move
		pv             pv
		staticEval     int
		killer1        Move
		killer2        Move
	}
}

type pv struct {
	items [stackSize]Move
	size  int
}

type mainLine struct {
	moves []Move
	score int
	depth int
	nodes int64
}

type IEvaluator interface {
	Evaluate(p *Position) int
}

type TransTable interface {
	Size() (megabytes int)
	IncDate()
	Clear()
	Read(key uint64) (depth, score, bound int, move Move, found bool)
	Update(key uint64, depth, score, bound int, move Move)
}

func NewEngine(evalBuilder func() IEvaluator) *Engine {
	return &Engine{
		Hash:             16,
		Threads:          1,
		ProgressMinNodes: 200000,
		evalBuilder:      evalBuilder,
	}
}

func (e *Engine) Prepare() {
	if e.transTable == nil || e.transTable.Size() != e.Hash {
		if e.transTable != nil {
			e.transTable = nil
			runtime.GC()
		}
		e.transTable = newTransTable(e.Hash)
	}
	if len(e.threads) != e.Threads {
		e.threads = make([]thread, e.Threads)
		for i := range e.threads {
			var t = &e.threads[i]
			t.evaluator = e.evalBuilder()
		}
	}
}

func (e *Engine) Search(ctx context.Context, searchParams SearchParams) SearchInfo {
	e.start = time.Now()
	e.Prepare()
	var p = &searchParams.Positions[len(searchParams.Positions)-1]
	e.timeManager = newTimeManager(ctx, e.start, searchParams.Limits, p)
	defer e.timeManager.Close()
	e.transTable.IncDate()
	e.historyKeys = getHistoryKeys(searchParams.Positions)
	for i := range e.threads {
		var t = &e.threads[i]
		t.transTable = e.transTable
		t.timeManager = e.timeManager
		t.historyKeys = e.historyKeys
		t.nodes = 0
		t.stack[0].position = *p
	}
	e.progress = searchParams.Progress
	lazySmp(e)
	return e.currentSearchResult()
}

func getHistoryKeys(positions []Position) map[uint64]int {
	var result = make(map[uint64]int)
	for i := len(positions) - 1; i >= 0; i-- {
		var p = &positions[i]
		result[p.Key]++
		if p.Rule50 == 0 {
			break
		}
	}
	return result
}

func (e *Engine) Clear() {
	if e.transTable != nil {
		e.transTable.Clear()
	}
	for i := range e.threads {
		var t = &e.threads[i]
		t.clearHistory()
	}
}

func (e *Engine) currentSearchResult() SearchInfo {
	return SearchInfo{
		Depth:    e.mainLine.depth,
		MainLine: e.mainLine.moves,
		Score:    newUciScore(e.mainLine.score),
		Nodes:    e.mainLine.nodes,
		Time:     time.Since(e.start),
	}
}

func (pv *pv) clear() {
	pv.size = 0
}

func (pv *pv) assign(m Move, child *pv) {
	pv.size = 1
	pv.items[0] = m
	if child.size > 0 {
		pv.size += child.size
		copy(pv.items[1:], child.items[:child.size])
	}
}

func (pv *pv) toSlice() []Move {
	var result = make([]Move, pv.size)
	copy(result, pv.items[:pv.size])
	return result
}

var lmrReductions [64][64]int

func init() {
	for d := 1; d < 64; d++ {
		for m := 1; m < 64; m++ {
			lmrReductions[d][m] = int(lirp(math.Log(float64(d))*math.Log(float64(m)),
				math.Log(5)*math.Log(22), math.Log(63)*math.Log(63), 3, 8))
		}
	}
}

func lateMoveReduction(d, m int) int {
	return lmrReductions[Min(d, 63)][Min(m, 63)]
}

func lirp(x, x1, x2, y1, y2 float64) float64 {
	return y1 + (y2-y1)*(x-x1)/(x2-x1)
}
