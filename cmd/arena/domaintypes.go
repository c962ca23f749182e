package main

import (
	"context"
	"time"

	"github.com/ABGursu/sfnnue-mcts/pkg/common"
)

const (
	gameResultDraw = iota
	gameResultWhiteWins
	gameResultBlackWins
)

type IEngine interface {
	Prepare()
	Clear()
	Search(ctx context.Context, searchParams common.SearchParams) common.SearchInfo
}

type timeControl struct {
	FixedNodes int
	FixedTime  time.Duration
}

type gameInfo struct {
	opening        string
	engineAIsWhite bool
	gameNumber     int
}

type gameResult struct {
	gameInfo gameInfo
	comment  string
	result   int
}
