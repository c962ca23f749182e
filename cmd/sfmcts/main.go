package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/ABGursu/sfnnue-mcts/pkg/engine"
	"github.com/ABGursu/sfnnue-mcts/pkg/eval"
	"github.com/ABGursu/sfnnue-mcts/pkg/mcts"
	"github.com/ABGursu/sfnnue-mcts/pkg/uci"
)

const (
	name   = "sfmcts"
	author = "ABGursu"
)

var (
	versionName = "dev"
	buildDate   = "(null)"
	gitRevision = "(null)"
)

type config struct {
	Hash   int         `yaml:"hash"`
	Search mcts.Params `yaml:"search"`
}

func loadConfig(path string) (config, error) {
	var cfg = config{
		Hash:   16,
		Search: mcts.DefaultParams(),
	}
	if path == "" {
		return cfg, nil
	}
	var data, err = os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %v: %w", path, err)
	}
	return cfg, nil
}

func main() {
	var flgConfig string
	var flgDebug bool
	flag.StringVar(&flgConfig, "config", "", "path to yaml config file")
	flag.BoolVar(&flgDebug, "debug", false, "enable debug logging")
	flag.Parse()

	var level = zerolog.InfoLevel
	if flgDebug {
		level = zerolog.DebugLevel
	}
	var logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	logger.Info().
		Str("version", versionName).
		Str("buildDate", buildDate).
		Str("gitRevision", gitRevision).
		Str("runtimeVersion", runtime.Version()).
		Int("numCPU", runtime.NumCPU()).
		Msg(name)

	var cfg, err = loadConfig(flgConfig)
	if err != nil {
		logger.Fatal().Err(err).Msg("load config failed")
	}
	if err = cfg.Search.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("bad search parameters")
	}

	var eng = mcts.NewEngine(func() engine.IEvaluator {
		return eval.NewEvaluationService()
	})
	eng.Hash = cfg.Hash
	eng.Params = cfg.Search
	eng.Logger = logger

	var protocol = uci.New(name, author, versionName, eng,
		[]uci.Option{
			&uci.IntOption{Name: "Hash", Min: 4, Max: 1 << 16, Value: &eng.Hash},
			&uci.IntOption{Name: "Threads", Min: 1, Max: runtime.NumCPU(), Value: &eng.Params.Threads},
			&uci.Int64Option{Name: "MaxDescents", Min: 0, Max: 1 << 40, Value: &eng.Params.MaxDescents},
			&uci.FloatOption{Name: "ExplorationConstant", Min: 0, Max: 100, Value: &eng.Params.UCBExplorationConstant},
			&uci.FloatOption{Name: "LossesAvoidance", Min: 0, Max: 1, Value: &eng.Params.UCBLossesAvoidance},
			&uci.IntOption{Name: "PriorFastEvalDepth", Min: 0, Max: 20, Value: &eng.Params.PriorFastEvalDepth},
			&uci.IntOption{Name: "PriorSlowEvalDepth", Min: 0, Max: 20, Value: &eng.Params.PriorSlowEvalDepth},
			&uci.BoolOption{Name: "ABRollout", Value: &eng.Params.ABRollout},
			&uci.IntOption{Name: "RolloutDepth", Min: 0, Max: 20, Value: &eng.Params.RolloutDepth},
			&uci.StringOption{Name: "BestChildStat", Value: &eng.Params.BestChildStat},
		},
	)
	protocol.Run(logger)
}
