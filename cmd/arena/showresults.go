package main

import (
	"context"
	"math"

	"github.com/rs/zerolog"
)

func showResults(ctx context.Context, logger zerolog.Logger,
	gameResults <-chan gameResult) error {

	var wins, losses, draws int
	for res := range gameResults {
		logger.Info().
			Int("game", res.gameInfo.gameNumber).
			Str("result", gameResultString(res.result)).
			Str("comment", res.comment).
			Msg("game finished")

		if res.result == gameResultDraw {
			draws++
		} else if res.result == gameResultWhiteWins && res.gameInfo.engineAIsWhite ||
			res.result == gameResultBlackWins && !res.gameInfo.engineAIsWhite {
			wins++
		} else {
			losses++
		}
		var stat = computeStat(wins, losses, draws)
		logger.Info().
			Int("wins", wins).
			Int("losses", losses).
			Int("draws", draws).
			Float64("score", stat.winningFraction).
			Float64("eloDifference", stat.eloDifference).
			Float64("los", stat.los).
			Msg("score")
	}
	return nil
}

type gameStatistics struct {
	winningFraction float64
	eloDifference   float64
	los             float64
}

// https://www.chessprogramming.org/Match_Statistics
func computeStat(wins, losses, draws int) gameStatistics {
	var games = wins + losses + draws
	var winningFraction = (float64(wins) + 0.5*float64(draws)) / float64(games)
	var eloDifference = -math.Log(1/winningFraction-1) * 400 / math.Ln10
	var los = 0.5 + 0.5*math.Erf(float64(wins-losses)/math.Sqrt(2*float64(wins+losses)))
	return gameStatistics{
		winningFraction: winningFraction,
		eloDifference:   eloDifference,
		los:             los,
	}
}

func gameResultString(v int) string {
	switch v {
	case gameResultWhiteWins:
		return "1-0"
	case gameResultBlackWins:
		return "0-1"
	case gameResultDraw:
		return "1/2-1/2"
	}
	return ""
}
