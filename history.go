package main

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/stupid-simple/retention/database"
)

func historyCommand(ctx context.Context, args Command, logger zerolog.Logger, out io.Writer) error {
	db, err := openDatabase(args.History.Database, logger)
	if err != nil {
		return err
	}
	if db == nil {
		return errors.New("no database specified")
	}

	if args.History.Run != 0 {
		rows, err := db.RunDecisions(ctx, args.History.Run)
		if err != nil {
			return err
		}
		if args.History.JSON {
			return writeJSON(out, rows)
		}
		return writeRunDecisionTable(out, rows)
	}

	opts := []database.FindRunsOptions{}
	if args.History.Limit > 0 {
		opts = append(opts, database.WithFindRunsLimit(args.History.Limit))
	}
	if args.History.Target != "" {
		opts = append(opts, database.WithFindRunsTarget(args.History.Target))
	}

	if args.History.Since > 0 {
		opts = append(opts, database.WithFindRunsSince(time.Now().Add(-args.History.Since)))
	}

	seq, err := db.FindRuns(ctx, opts...)
	if err != nil {
		return err
	}
	runs := []database.Run{}
	for run := range seq {
		runs = append(runs, run)
	}

	if args.History.JSON {
		return writeJSON(out, runs)
	}
	return writeRunTable(out, runs)
}
