package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/rs/zerolog"

	"github.com/ABGursu/sfnnue-mcts/pkg/engine"
	"github.com/ABGursu/sfnnue-mcts/pkg/eval"
	"github.com/ABGursu/sfnnue-mcts/pkg/mcts"
)

type Config struct {
	Concurrency int
	MoveTimeMs  int
	Nodes       int
	Seed        uint64
}

var config Config

func main() {
	var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		With().Timestamp().Logger()

	if err := run(logger); err != nil {
		logger.Error().Err(err).Msg("arena failed")
	}
}

func run(logger zerolog.Logger) error {
	flag.IntVar(&config.Concurrency, "concurrency", 4, "number of concurrent games")
	flag.IntVar(&config.MoveTimeMs, "movetime", 100, "milliseconds per move")
	flag.IntVar(&config.Nodes, "nodes", 0, "node limit per move, overrides movetime")
	flag.Uint64Var(&config.Seed, "seed", 0, "opening shuffle seed, 0 keeps book order")
	flag.Parse()

	logger.Info().
		Interface("config", config).
		Int("numCPU", runtime.NumCPU()).
		Msg("arena")

	var tc timeControl
	if config.Nodes > 0 {
		tc.FixedNodes = config.Nodes
	} else {
		tc.FixedTime = time.Duration(config.MoveTimeMs) * time.Millisecond
	}

	return runArena(context.Background(), logger,
		config.Concurrency, config.Seed, tc, newMonteCarloEngine, newAlphaBetaEngine)
}

func evalBuilder() engine.IEvaluator {
	return eval.NewEvaluationService()
}

func newMonteCarloEngine() IEngine {
	var eng = mcts.NewEngine(evalBuilder)
	eng.Hash = 128
	eng.Params.Threads = 1
	return eng
}

func newAlphaBetaEngine() IEngine {
	var eng = engine.NewEngine(evalBuilder)
	eng.Hash = 128
	eng.Threads = 1
	return eng
}
