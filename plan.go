package main

import (
	"context"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/stupid-simple/retention/enforcer"
)

func planCommand(ctx context.Context, args Command, logger zerolog.Logger, out io.Writer) error {
	target, err := targetFromFlags(args.Plan.TargetFlags)
	if err != nil {
		return err
	}
	logger = logger.With().Str("target", target.DisplayName()).Logger()

	result, err := planTarget(ctx, target, time.Now(), logger)
	if err != nil {
		return err
	}

	// A dry run apply produces the report without touching storage.
	report := enforcer.NewEnforcer(nil, zerolog.Nop(), enforcer.WithDryRun(true)).
		Apply(ctx, result.decisions)

	if !args.Plan.JSON {
		if err := writeDecisionTable(out, result.classifications, result.decisions); err != nil {
			return err
		}
	}
	return writeJSON(out, report.ToMap())
}
