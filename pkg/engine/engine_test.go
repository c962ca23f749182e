package engine

import (
	"context"
	"testing"

	. "github.com/ABGursu/sfnnue-mcts/pkg/common"
	"github.com/ABGursu/sfnnue-mcts/pkg/eval"
)

func TestSEE(t *testing.T) {
	var buffer [MaxMoves]OrderedMove
	var child = &Position{}
	for _, test := range seeTestFENs {
		var p, err = NewPositionFromFEN(test)
		if err != nil {
			t.Fatal(err)
		}
		var eval = basicMaterial(&p)
		for _, om := range p.GenerateCaptures(buffer[:]) {
			var move = om.Move
			if !p.MakeMove(move, child) {
				continue
			}
			if child.IsDiscoveredCheck() {
				continue
			}
			var directSEE = -searchSEE(child) - eval
			if !SeeGE(&p, move, directSEE) || SeeGE(&p, move, directSEE+1) {
				t.Error(test, move.String(), directSEE)
			}
		}
	}
}

func basicMaterial(p *Position) int {
	var score = 0
	score += PopCount(p.Pawns&p.White) - PopCount(p.Pawns&p.Black)
	score += 4 * (PopCount(p.Knights&p.White) - PopCount(p.Knights&p.Black))
	score += 4 * (PopCount(p.Bishops&p.White) - PopCount(p.Bishops&p.Black))
	score += 6 * (PopCount(p.Rooks&p.White) - PopCount(p.Rooks&p.Black))
	score += 12 * (PopCount(p.Queens&p.White) - PopCount(p.Queens&p.Black))
	if !p.WhiteMove {
		score = -score
	}
	return score
}

func searchSEE(p *Position) int {
	var alpha = basicMaterial(p)
	var buffer [MaxMoves]OrderedMove
	var ml = p.GenerateCaptures(buffer[:])
	var child = &Position{}
	var move = lvaRecapture(p, child, ml, p.LastMove.To())
	if move != MoveEmpty &&
		p.MakeMove(move, child) {
		var score = -searchSEE(child)
		if score > alpha {
			alpha = score
		}
	}
	return alpha
}

func lvaRecapture(p, child *Position, ml []OrderedMove, square int) Move {
	var piece = King + 1
	var bestMove = MoveEmpty
	for _, om := range ml {
		var move = om.Move
		if move.To() == square &&
			move.MovingPiece() < piece &&
			p.MakeMove(move, child) {
			bestMove = move
			piece = move.MovingPiece()
		}
	}
	return bestMove
}

var seeTestFENs = []string{
	"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
	"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
	"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
	"8/7p/p5pb/4k3/P1pPn3/8/P5PP/1rB2RK1 b - d3 0 28",
	"1k1r4/1pp4p/p7/4p3/8/P5P1/1PP4P/2K1R3 w - - 0 1",
	"1k1r3q/1ppn3p/p4b2/4p3/8/P2N2P1/1PP1R1BP/2K1Q3 w - - 0 1",
	"6k1/Qp1r1pp1/p1rP3p/P3q3/2Bnb1P1/1P3PNP/4p1K1/R1R5 b - - 0 1",
	"3r2k1/2Q2pb1/2n1r3/1p1p4/pB1PP3/n1N2p2/B1q2P1R/6RK b - - 0 1",
	"r3r3/bpp1Nk1p/p1bq1Bp1/5p2/PPP3n1/R7/3QBPPP/5RK1 w - - 0 1",
	"1rr3k1/4ppb1/2q1bnp1/1p2B1Q1/6P1/2p2P2/2P1B2R/2K4R w - - 0 1",
}

func TestSearchMate(t *testing.T) {
	var tests = []struct {
		fen  string
		mate int
	}{
		// Mate in 1
		{"6k1/5ppp/8/8/8/8/8/1R4K1 w - - 0 1", 1},
		// Mate in 2: Anderssen
		{"r1b2k1r/ppp1bppp/8/1B1Q4/5q2/2P5/PPP2PPP/R3R1K1 w - - 1 1", 2},
	}
	var eng = NewEngine(func() IEvaluator { return eval.NewEvaluationService() })
	eng.Hash = 16
	eng.Threads = 2
	for _, test := range tests {
		var p, err = NewPositionFromFEN(test.fen)
		if err != nil {
			t.Fatal(err)
		}
		eng.Clear()
		var res = eng.Search(context.Background(), SearchParams{
			Positions: []Position{p},
			Limits:    LimitsType{MoveTime: 3000},
		})
		if res.Score.Mate != test.mate {
			t.Error(test.fen, res.Score, res.MainLine)
		}
	}
}

func TestSearcherFixedDepth(t *testing.T) {
	var tt = newTransTable(8)
	var s = NewSearcher(eval.NewEvaluationService(), tt)

	var p, _ = NewPositionFromFEN("6k1/5ppp/8/8/8/8/8/1R4K1 w - - 0 1")
	var score, move = s.SearchDepth([]Position{p}, 4)
	if score < valueWin {
		t.Error("expected mate score", score)
	}
	if move.String() != "b1b8" {
		t.Error("expected b1b8", move)
	}

	// Quiescence only.
	p, _ = NewPositionFromFEN(InitialPositionFen)
	score, _ = s.SearchDepth([]Position{p}, 0)
	if score < -100 || score > 100 {
		t.Error("quiescence startpos", score)
	}
}
