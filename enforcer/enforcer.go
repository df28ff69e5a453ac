package enforcer

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type Remover interface {
	RemoveAll(ctx context.Context, path string) error
}

type Enforcer struct {
	remover Remover
	logger  zerolog.Logger
	opts    options
}

func NewEnforcer(remover Remover, logger zerolog.Logger, opts ...Option) *Enforcer {
	o := options{concurrency: 1}
	for _, opt := range opts {
		opt(&o)
	}
	if o.concurrency < 1 {
		o.concurrency = 1
	}
	return &Enforcer{
		remover: remover,
		logger:  logger,
		opts:    o,
	}
}

// Apply executes the Delete decisions. A failed deletion is recorded in the
// report and the remaining ones still run. When ctx is done no new deletion
// starts; the report then only covers the attempted ones.
func (e *Enforcer) Apply(ctx context.Context, decisions []Decision) ApplyReport {
	logger := e.logger
	if e.opts.dryRun {
		logger = logger.With().Bool("dryrun", true).Logger()
	}

	report := ApplyReport{
		Deleted: []string{},
		Failed:  []Failure{},
		Kept:    []Kept{},
		DryRun:  e.opts.dryRun,
	}
	var mu sync.Mutex

	startTime := time.Now()
	logger.Info().Int("decisions", len(decisions)).Int("concurrency", e.opts.concurrency).Msg("applying retention decisions")
	defer func() {
		tookSeconds := time.Since(startTime).Seconds()
		if ctx.Err() != nil {
			logger.Info().Float64("seconds", tookSeconds).Msg("applying retention interrupted")
		} else {
			logger.Info().Float64("seconds", tookSeconds).Msg("applying retention done")
		}
	}()

	var g errgroup.Group
	g.SetLimit(e.opts.concurrency)

	for _, d := range decisions {
		if d.Action == Keep {
			report.Kept = append(report.Kept, Kept{Identifier: d.Artifact.Identifier, Tier: d.Tier})
			continue
		}
		if ctx.Err() != nil {
			continue
		}

		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}

			if e.opts.dryRun {
				logger.Info().Object("artifact", d.Artifact).Str("reason", d.Reason).Msg("would delete backup")
				mu.Lock()
				report.Deleted = append(report.Deleted, d.Artifact.Identifier)
				report.FreedBytes += d.Artifact.SizeBytes
				mu.Unlock()
				return nil
			}

			if err := e.remover.RemoveAll(ctx, d.Artifact.Path); err != nil {
				delErr := &DeletionError{Identifier: d.Artifact.Identifier, Path: d.Artifact.Path, Err: err}
				logger.Error().Err(delErr).Object("artifact", d.Artifact).Msg("failed to delete backup")
				mu.Lock()
				report.Failed = append(report.Failed, Failure{
					Identifier: d.Artifact.Identifier,
					Reason:     err.Error(),
					Err:        delErr,
				})
				mu.Unlock()
				return nil
			}

			logger.Info().Object("artifact", d.Artifact).Str("reason", d.Reason).Msg("deleted backup")
			mu.Lock()
			report.Deleted = append(report.Deleted, d.Artifact.Identifier)
			report.FreedBytes += d.Artifact.SizeBytes
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	report.sort()
	logger.Info().Object("report", report).Msg("retention applied")
	return report
}
