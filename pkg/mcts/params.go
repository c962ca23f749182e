package mcts

import (
	"fmt"
	"strings"
)

// Params is the tunable parameter set of the Monte-Carlo search.
// Validated once at search start; a search never runs with undefined
// tuning.
type Params struct {
	Threads int `yaml:"threads"`

	// MaxDescents caps the number of selection/expansion/backup
	// cycles across all workers. 0 means no cap (wall-clock budget
	// only).
	MaxDescents int64 `yaml:"max-descents"`

	UCBUnexpandedNode      float64 `yaml:"ucb-unexpanded-node"`
	UCBExplorationConstant float64 `yaml:"ucb-exploration-constant"`
	UCBLossesAvoidance     float64 `yaml:"ucb-losses-avoidance"`
	UCBLogTermFactor       float64 `yaml:"ucb-log-term-factor"`

	// UCBUseFatherVisits selects the numerator of the exploration
	// term: the parent node's visit count when true, the sum of
	// sibling edge visits otherwise.
	UCBUseFatherVisits bool `yaml:"ucb-use-father-visits"`

	PriorFastEvalDepth int `yaml:"prior-fast-eval-depth"`
	PriorSlowEvalDepth int `yaml:"prior-slow-eval-depth"`

	// ABRollout enables rollout by search: leaves are scored by a
	// fixed-depth alpha-beta call instead of a static evaluation.
	ABRollout    bool `yaml:"ab-rollout"`
	RolloutDepth int  `yaml:"rollout-depth"`

	// BestChildStat picks the statistic used for final move
	// selection: "visits", "mean", "robust" or "prior".
	BestChildStat string `yaml:"best-child-stat"`
}

func DefaultParams() Params {
	return Params{
		Threads:                1,
		MaxDescents:            0,
		UCBUnexpandedNode:      1.0,
		UCBExplorationConstant: 1.0,
		UCBLossesAvoidance:     1.0,
		UCBLogTermFactor:       1.0,
		UCBUseFatherVisits:     true,
		PriorFastEvalDepth:     2,
		PriorSlowEvalDepth:     4,
		ABRollout:              true,
		RolloutDepth:           4,
		BestChildStat:          "robust",
	}
}

func (p *Params) Validate() error {
	if p.Threads <= 0 {
		return fmt.Errorf("mcts: threads must be positive: %d", p.Threads)
	}
	if p.MaxDescents < 0 {
		return fmt.Errorf("mcts: max descents must not be negative: %d", p.MaxDescents)
	}
	if p.UCBExplorationConstant < 0 {
		return fmt.Errorf("mcts: exploration constant must not be negative: %v", p.UCBExplorationConstant)
	}
	if p.UCBLossesAvoidance < 0 || p.UCBLossesAvoidance > 1 {
		return fmt.Errorf("mcts: losses avoidance must be in [0,1]: %v", p.UCBLossesAvoidance)
	}
	if p.UCBLogTermFactor <= 0 {
		return fmt.Errorf("mcts: log term factor must be positive: %v", p.UCBLogTermFactor)
	}
	if p.PriorFastEvalDepth < 0 || p.PriorSlowEvalDepth < 0 {
		return fmt.Errorf("mcts: prior eval depths must not be negative: %d, %d",
			p.PriorFastEvalDepth, p.PriorSlowEvalDepth)
	}
	if p.RolloutDepth < 0 {
		return fmt.Errorf("mcts: rollout depth must not be negative: %d", p.RolloutDepth)
	}
	if _, err := p.bestChildStat(); err != nil {
		return err
	}
	return nil
}

func (p *Params) bestChildStat() (EdgeStatistic, error) {
	switch strings.ToLower(p.BestChildStat) {
	case "visits":
		return StatVisits, nil
	case "mean":
		return StatMean, nil
	case "robust":
		return StatRobust, nil
	case "prior":
		return StatPrior, nil
	}
	return 0, fmt.Errorf("mcts: unknown best child statistic %q", p.BestChildStat)
}

// String is a human-readable parameter dump.
func (p *Params) String() string {
	return fmt.Sprintf("threads=%d maxDescents=%d ucb(unexpanded=%v C=%v lossesAvoidance=%v logTermFactor=%v fatherVisits=%v) prior(fast=%d slow=%d) rollout(ab=%v depth=%d) bestChild=%s",
		p.Threads, p.MaxDescents,
		p.UCBUnexpandedNode, p.UCBExplorationConstant, p.UCBLossesAvoidance,
		p.UCBLogTermFactor, p.UCBUseFatherVisits,
		p.PriorFastEvalDepth, p.PriorSlowEvalDepth,
		p.ABRollout, p.RolloutDepth, p.BestChildStat)
}
