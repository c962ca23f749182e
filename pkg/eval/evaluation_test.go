package eval

import (
	"testing"

	"github.com/ABGursu/sfnnue-mcts/pkg/common"
)

func TestEvaluateSymmetry(t *testing.T) {
	var fens = []string{
		common.InitialPositionFen,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"r4rk1/1pp1qppp/p1np1n2/2b1p1B1/2B1P1b1/P1NP1N2/1PP1QPPP/R4RK1 w - - 0 10",
	}
	var e = NewEvaluationService()
	for _, fen := range fens {
		var p, err = common.NewPositionFromFEN(fen)
		if err != nil {
			t.Fatal(err)
		}
		var mirror = common.MirrorPosition(&p)
		if a, b := e.Evaluate(&p), e.Evaluate(&mirror); a != b {
			t.Error(fen, a, b)
		}
	}
}

func TestEvaluateMaterial(t *testing.T) {
	var e = NewEvaluationService()

	var p, _ = common.NewPositionFromFEN(common.InitialPositionFen)
	var v = e.Evaluate(&p)
	if v < -50 || v > 50 {
		t.Error("startpos", v)
	}

	// White is a queen up.
	var q, _ = common.NewPositionFromFEN("rnb1kbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1")
	if v = e.Evaluate(&q); v < 500 {
		t.Error("queen up", v)
	}
	q, _ = common.NewPositionFromFEN("rnb1kbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR b KQkq - 0 1")
	if v = e.Evaluate(&q); v > -500 {
		t.Error("queen up, black to move", v)
	}
}
