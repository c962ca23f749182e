package main

import (
	"context"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

func runArena(ctx context.Context, logger zerolog.Logger,
	gameConcurrency int, seed uint64, tc timeControl,
	buildA, buildB func() IEngine) error {

	logger.Info().Msg("arena started")
	defer logger.Info().Msg("arena finished")

	g, ctx := errgroup.WithContext(ctx)

	var gameInfos = make(chan gameInfo)
	var gameResults = make(chan gameResult)

	g.Go(func() error {
		defer close(gameInfos)
		return loadOpenings(ctx, seed, gameInfos)
	})

	g.Go(func() error {
		return showResults(ctx, logger, gameResults)
	})

	var wg = &sync.WaitGroup{}
	for i := 0; i < gameConcurrency; i++ {
		wg.Add(1)
		g.Go(func() error {
			defer wg.Done()
			return playGames(ctx, tc, buildA(), buildB(), gameInfos, gameResults)
		})
	}

	g.Go(func() error {
		wg.Wait()
		close(gameResults)
		return nil
	})

	return g.Wait()
}

func playGames(ctx context.Context, tc timeControl, engineA, engineB IEngine,
	gameInfos <-chan gameInfo, gameResults chan<- gameResult) error {

	engineA.Prepare()
	engineB.Prepare()
	for info := range gameInfos {
		var res, err = playGame(ctx, engineA, engineB, tc, info)
		if err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case gameResults <- res:
		}
	}
	return nil
}
