package main

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
)

func applyCommand(ctx context.Context, args Command, logger zerolog.Logger, out io.Writer) error {
	target, err := targetFromFlags(args.Apply.TargetFlags)
	if err != nil {
		return err
	}

	db, err := openDatabase(args.Apply.Database, logger)
	if err != nil {
		return err
	}

	startTime := time.Now()
	logger.Info().Object("target", target).Msg("starting retention run")

	result, err := runTarget(ctx, runParams{
		target:      target,
		dryRun:      args.Apply.DryRun,
		concurrency: args.Apply.Concurrency,
		timeout:     args.Apply.Timeout,
		db:          db,
		logger:      logger,
	})
	if err != nil {
		return err
	}

	logger.Info().
		Float64("seconds", time.Since(startTime).Seconds()).
		Object("report", result.report).
		Msg("retention run done")

	return writeJSON(out, result.report)
}
