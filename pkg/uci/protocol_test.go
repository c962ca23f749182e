package uci

import (
	"testing"
	"time"

	"github.com/ABGursu/sfnnue-mcts/pkg/common"
)

func TestParseLimits(t *testing.T) {
	var limits = parseLimits([]string{"wtime", "60000", "btime", "55000",
		"winc", "1000", "binc", "1000", "movestogo", "30"})
	if limits.WhiteTime != 60000 || limits.BlackTime != 55000 ||
		limits.WhiteIncrement != 1000 || limits.BlackIncrement != 1000 ||
		limits.MovesToGo != 30 {
		t.Errorf("parseLimits failed: %+v", limits)
	}
	limits = parseLimits([]string{"movetime", "3000"})
	if limits.MoveTime != 3000 {
		t.Errorf("parseLimits failed: %+v", limits)
	}
	limits = parseLimits([]string{"infinite"})
	if !limits.Infinite {
		t.Errorf("parseLimits failed: %+v", limits)
	}
	limits = parseLimits([]string{"nodes", "5000"})
	if limits.Nodes != 5000 {
		t.Errorf("parseLimits failed: %+v", limits)
	}
}

func TestSearchInfoToUci(t *testing.T) {
	var p, err = common.NewPositionFromFEN(common.InitialPositionFen)
	if err != nil {
		t.Fatal(err)
	}
	var child, ok = p.MakeMoveLAN("e2e4")
	if !ok {
		t.Fatal("e2e4 not found")
	}
	var si = common.SearchInfo{
		Depth:    12,
		Nodes:    100000,
		Time:     time.Second,
		Score:    common.UciScore{Centipawns: 33},
		MainLine: []common.Move{child.LastMove},
	}
	var s = searchInfoToUci(si)
	var expected = "info depth 12 score cp 33 nodes 100000 time 1000 nps 99900 pv e2e4"
	if s != expected {
		t.Errorf("searchInfoToUci: got %q, want %q", s, expected)
	}

	si.Score = common.UciScore{Mate: -3}
	si.MainLine = nil
	s = searchInfoToUci(si)
	expected = "info depth 12 score mate -3 nodes 100000 time 1000 nps 99900"
	if s != expected {
		t.Errorf("searchInfoToUci: got %q, want %q", s, expected)
	}
}

func TestOptions(t *testing.T) {
	var intVal = 16
	var intOpt = &IntOption{Name: "Hash", Min: 4, Max: 1024, Value: &intVal}
	if err := intOpt.Set("64"); err != nil || intVal != 64 {
		t.Errorf("IntOption.Set failed: %v %v", err, intVal)
	}
	if err := intOpt.Set("2048"); err == nil {
		t.Error("IntOption.Set accepted out of range value")
	}

	var boolVal = false
	var boolOpt = &BoolOption{Name: "Ponder", Value: &boolVal}
	if err := boolOpt.Set("true"); err != nil || !boolVal {
		t.Errorf("BoolOption.Set failed: %v %v", err, boolVal)
	}

	var floatVal = 1.0
	var floatOpt = &FloatOption{Name: "ExplorationConstant", Min: 0, Max: 10, Value: &floatVal}
	if err := floatOpt.Set("1.5"); err != nil || floatVal != 1.5 {
		t.Errorf("FloatOption.Set failed: %v %v", err, floatVal)
	}
	if err := floatOpt.Set("-1"); err == nil {
		t.Error("FloatOption.Set accepted out of range value")
	}

	var int64Val = int64(0)
	var int64Opt = &Int64Option{Name: "MaxDescents", Min: 0, Max: 1 << 40, Value: &int64Val}
	if err := int64Opt.Set("100000"); err != nil || int64Val != 100000 {
		t.Errorf("Int64Option.Set failed: %v %v", err, int64Val)
	}

	var strVal = "robust"
	var strOpt = &StringOption{Name: "BestChildStat", Value: &strVal}
	if err := strOpt.Set("visits"); err != nil || strVal != "visits" {
		t.Errorf("StringOption.Set failed: %v %v", err, strVal)
	}
}
