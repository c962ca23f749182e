package mcts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewardConversionRoundTrip(t *testing.T) {
	for _, v := range []int{-2000, -512, -256, -100, -1, 0, 1, 100, 256, 512, 2000} {
		assert.Equal(t, v, RewardToValue(ValueToReward(v)), "value %d", v)
	}
}

func TestRewardConversionMonotonic(t *testing.T) {
	var prev = ValueToReward(-3000)
	for v := -2999; v <= 3000; v += 7 {
		var r = ValueToReward(v)
		assert.Greater(t, float64(r), float64(prev), "value %d", v)
		prev = r
	}
}

func TestRewardConversionSignSymmetric(t *testing.T) {
	for v := 0; v <= 3000; v += 13 {
		var sum = ValueToReward(v) + ValueToReward(-v)
		assert.InDelta(t, float64(RewardWin), float64(sum), 1e-12, "value %d", v)
	}
}

func TestRewardConversionBounds(t *testing.T) {
	assert.Equal(t, 0, RewardToValue(ValueToReward(0)))
	assert.InDelta(t, 0.5, float64(ValueToReward(0)), 1e-12)
	assert.Less(t, float64(ValueToReward(100000)), float64(RewardWin)+1e-12)
	assert.Greater(t, float64(ValueToReward(-100000)), float64(RewardLoss)-1e-12)
}
