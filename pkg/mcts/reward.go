package mcts

import (
	gomath "math"

	"github.com/ABGursu/sfnnue-mcts/internal/math"
)

// Reward is a normalized game outcome estimate in [0, 1] from the
// point of view of the side to move: 1 is a win, 0.5 a draw, 0 a loss.
type Reward float64

const (
	RewardLoss Reward = 0.0
	RewardDraw Reward = 0.5
	RewardWin  Reward = 1.0
)

// rewardScale maps centipawn scores onto the sigmoid: about +256cp
// gives a reward of 0.73.
const rewardScale = 256.0

func ValueToReward(v int) Reward {
	return Reward(math.Sigmoid(float64(v) / rewardScale))
}

func RewardToValue(r Reward) int {
	if r <= 0 {
		return -valueMateCap
	}
	if r >= 1 {
		return valueMateCap
	}
	var v = rewardScale * math.ReverseSigmoid(float64(r))
	return int(gomath.Round(v))
}

// valueMateCap clamps the inverse conversion at the saturated ends of
// the sigmoid.
const valueMateCap = 30000
