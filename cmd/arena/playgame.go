package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/ABGursu/sfnnue-mcts/pkg/common"
)

const maxGamePlies = 300

// playGame plays out one opening between the two engines and
// adjudicates the result by the rules of chess plus a ply cap.
func playGame(ctx context.Context, engineA, engineB IEngine,
	tc timeControl, info gameInfo) (gameResult, error) {

	engineA.Clear()
	engineB.Clear()

	var opening, err = common.NewPositionFromFEN(info.opening)
	if err != nil {
		return gameResult{}, fmt.Errorf("bad opening %q: %w", info.opening, err)
	}
	var positions = []common.Position{opening}

	for {
		var pos = &positions[len(positions)-1]

		if len(common.GenerateLegalMoves(pos)) == 0 {
			if pos.IsCheck() {
				if pos.WhiteMove {
					return result(info, gameResultBlackWins, "checkmate"), nil
				}
				return result(info, gameResultWhiteWins, "checkmate"), nil
			}
			return result(info, gameResultDraw, "stalemate"), nil
		}
		if pos.Rule50 >= 100 {
			return result(info, gameResultDraw, "fifty moves"), nil
		}
		if isThreefold(positions) {
			return result(info, gameResultDraw, "threefold repetition"), nil
		}
		if isInsufficientMaterial(pos) {
			return result(info, gameResultDraw, "insufficient material"), nil
		}
		if len(positions) > maxGamePlies {
			return result(info, gameResultDraw, "ply limit"), nil
		}

		var eng = engineB
		if pos.WhiteMove == info.engineAIsWhite {
			eng = engineA
		}
		var si = eng.Search(ctx, common.SearchParams{
			Positions: positions,
			Limits: common.LimitsType{
				MoveTime: int(tc.FixedTime.Milliseconds()),
				Nodes:    tc.FixedNodes,
			},
		})
		if err = ctx.Err(); err != nil {
			return gameResult{}, err
		}
		if len(si.MainLine) == 0 {
			return gameResult{}, errors.New("engine returned no move")
		}
		var next common.Position
		if !pos.MakeMove(si.MainLine[0], &next) {
			return gameResult{}, fmt.Errorf("engine returned illegal move %v in %v",
				si.MainLine[0], pos.String())
		}
		positions = append(positions, next)
	}
}

func result(info gameInfo, r int, comment string) gameResult {
	return gameResult{gameInfo: info, result: r, comment: comment}
}

func isThreefold(positions []common.Position) bool {
	var last = &positions[len(positions)-1]
	var count = 1
	for i := len(positions) - 2; i >= 0; i-- {
		if positions[i].Key == last.Key {
			count++
			if count >= 3 {
				return true
			}
		}
		if positions[i].Rule50 == 0 {
			break
		}
	}
	return false
}

func isInsufficientMaterial(p *common.Position) bool {
	return (p.Pawns|p.Rooks|p.Queens) == 0 &&
		!common.MoreThanOne(p.Knights|p.Bishops)
}
