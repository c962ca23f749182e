package common

import (
	"testing"
)

func TestFenRoundTrip(t *testing.T) {
	var fens = []string{
		InitialPositionFen,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
	}
	for _, fen := range fens {
		var p, err = NewPositionFromFEN(fen)
		if err != nil {
			t.Fatal(err)
		}
		var p2, err2 = NewPositionFromFEN(p.String())
		if err2 != nil {
			t.Fatal(err2)
		}
		if p.Key != p2.Key || p.PawnKey != p2.PawnKey {
			t.Error(fen, p.String())
		}
	}
}

// Keys updated move by move must equal keys recomputed from scratch.
func TestIncrementalKeys(t *testing.T) {
	var p, err = NewPositionFromFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	if err != nil {
		t.Fatal(err)
	}
	checkKeys(t, &p, 3)
}

func checkKeys(t *testing.T, p *Position, depth int) {
	if p.Key != p.computeKey() {
		t.Fatal("key mismatch", p.String())
	}
	if p.PawnKey != p.computePawnKey() {
		t.Fatal("pawn key mismatch", p.String())
	}
	if depth == 0 {
		return
	}
	var buffer [MaxMoves]OrderedMove
	var child Position
	for _, om := range p.GenerateMoves(buffer[:]) {
		if p.MakeMove(om.Move, &child) {
			checkKeys(t, &child, depth-1)
		}
	}
}

func TestMakeMoveLAN(t *testing.T) {
	var p, _ = NewPositionFromFEN(InitialPositionFen)
	var tests = []struct {
		lan string
		ok  bool
	}{
		{"e2e4", true},
		{"e2e5", false},
		{"g1f3", true},
		{"e1g1", false},
	}
	for _, test := range tests {
		var _, ok = p.MakeMoveLAN(test.lan)
		if ok != test.ok {
			t.Error(test.lan, ok)
		}
	}
}
