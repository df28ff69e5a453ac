package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stupid-simple/retention/catalog"
	"github.com/stupid-simple/retention/config"
	"github.com/stupid-simple/retention/database"
	"github.com/stupid-simple/retention/enforcer"
	"github.com/stupid-simple/retention/fileutils"
	"github.com/stupid-simple/retention/retention"
)

type runParams struct {
	target      config.Target
	now         time.Time
	dryRun      bool
	concurrency int
	timeout     time.Duration
	remover     enforcer.Remover
	db          *database.Database
	logger      zerolog.Logger
}

type runResult struct {
	artifacts       []catalog.Artifact
	classifications []retention.Classification
	decisions       []enforcer.Decision
	report          enforcer.ApplyReport
}

// planTarget lists and classifies the target's artifacts. An unreadable root
// is logged and leaves nothing to manage.
func planTarget(ctx context.Context, target config.Target, now time.Time, logger zerolog.Logger) (*runResult, error) {
	policy, err := target.Policy()
	if err != nil {
		return nil, fmt.Errorf("invalid policy for %s: %w", target.DisplayName(), err)
	}

	artifacts, err := catalog.List(ctx, target.RootDir, target.TypeTag, logger,
		catalog.WithLocation(policy.Location),
		catalog.WithExcludes(target.Excludes...),
		catalog.WithUnixSeconds(target.UnixSeconds),
	)
	if err != nil {
		var catalogErr *catalog.CatalogError
		if !errors.As(err, &catalogErr) || ctx.Err() != nil {
			return nil, err
		}
		logger.Warn().Err(err).Msg("nothing to manage")
		artifacts = nil
	}

	classifications := retention.NewClassifier(policy, logger).Classify(now, artifacts)
	logger.Info().
		Int("artifacts", len(artifacts)).
		Object("tiers", retention.CountTiers(classifications)).
		Msg("classified backups")

	return &runResult{
		artifacts:       artifacts,
		classifications: classifications,
		decisions:       enforcer.Plan(classifications),
	}, nil
}

// runTarget plans the target, applies the decisions and records the run.
func runTarget(ctx context.Context, p runParams) (*runResult, error) {
	logger := p.logger.With().Str("target", p.target.DisplayName()).Logger()
	if p.dryRun {
		logger = logger.With().Bool("dryrun", true).Logger()
	}

	startedAt := time.Now()
	now := p.now
	if now.IsZero() {
		now = startedAt
	}

	result, err := planTarget(ctx, p.target, now, logger)
	if err != nil {
		return nil, err
	}

	if !p.dryRun && len(result.artifacts) > 0 {
		if err := fileutils.VerifyWritable(p.target.RootDir); err != nil {
			logger.Warn().Err(err).Msg("backup root is not writable, deletions will likely fail")
		}
	}

	concurrency := p.concurrency
	if concurrency <= 0 {
		concurrency = p.target.Concurrency
	}
	remover := p.remover
	if remover == nil {
		remover = enforcer.NewOSRemover()
	}
	enf := enforcer.NewEnforcer(remover, logger,
		enforcer.WithConcurrency(concurrency),
		enforcer.WithDryRun(p.dryRun),
	)

	applyCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		applyCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	result.report = enf.Apply(applyCtx, result.decisions)

	if p.db != nil {
		_, err := p.db.RecordRun(context.WithoutCancel(ctx), database.RunParams{
			Target:     p.target.DisplayName(),
			RootDir:    p.target.RootDir,
			TypeTag:    p.target.TypeTag,
			StartedAt:  startedAt,
			FinishedAt: time.Now(),
		}, result.decisions, result.report)
		if err != nil {
			logger.Error().Err(err).Msg("could not record run history")
		}
	}

	return result, nil
}

// targetFromFlags builds the target to manage from command line flags or,
// when a config file and target name are given, from the config file.
func targetFromFlags(f TargetFlags) (config.Target, error) {
	if f.Config != "" || f.Target != "" {
		if f.Config == "" || f.Target == "" {
			return config.Target{}, errors.New("--config and --target must be used together")
		}
		cfg, err := config.LoadFromFile(f.Config)
		if err != nil {
			return config.Target{}, fmt.Errorf("could not load config: %w", err)
		}
		target, ok := cfg.FindTarget(f.Target)
		if !ok {
			return config.Target{}, fmt.Errorf("no target named %q in %s", f.Target, f.Config)
		}
		return target, nil
	}

	if f.Root == "" {
		return config.Target{}, errors.New("either --root or --config with --target is required")
	}
	target := config.Target{
		RootDir:         f.Root,
		TypeTag:         f.TypeTag,
		Enable:          true,
		Daily:           config.IntPtr(f.Daily),
		Weekly:          config.IntPtr(f.Weekly),
		Monthly:         config.IntPtr(f.Monthly),
		DailyWindowDays: config.IntPtr(f.DailyWindow),
		WeeklyAnchor:    f.WeeklyAnchor,
		Timezone:        f.Timezone,
		Excludes:        f.Exclude,
		UnixSeconds:     f.UnixSeconds,
	}
	return target, target.Validate()
}
