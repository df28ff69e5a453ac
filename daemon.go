package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/stupid-simple/retention/config"
	"github.com/stupid-simple/retention/database"
	"github.com/stupid-simple/retention/fileutils"
	"github.com/stupid-simple/retention/scheduler"
)

const configPollInterval = 30 * time.Second

func daemonCommand(ctx context.Context, args Command, logger zerolog.Logger) error {
	if args.Daemon.DryRun {
		logger = logger.With().Bool("dryrun", true).Logger()
	}

	if args.Daemon.Database == "" {
		return fmt.Errorf("no database specified")
	}
	if !fileutils.Exists(args.Daemon.Config) {
		return fmt.Errorf("config file %s does not exist", args.Daemon.Config)
	}

	cfg, err := config.LoadFromFile(args.Daemon.Config)
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}

	db, err := openDatabase(args.Daemon.Database, logger)
	if err != nil {
		return err
	}

	scheduler := scheduler.NewScheduler(scheduler.SchedulerParams{
		Logger: logger,
	})

	addRetentionJobsFromConfig(ctx, scheduler, cfg, db, logger, args.Daemon.DryRun)

	startConfigFileWatcher(ctx, args.Daemon.Config, logger, fileutils.PollEvery(ctx, configPollInterval), func(cfg *config.Config) {
		scheduler.RemoveJobs()
		addRetentionJobsFromConfig(ctx, scheduler, cfg, db, logger, args.Daemon.DryRun)
		logScheduledJobs(logger, scheduler)
	})

	scheduler.Start()
	defer scheduler.Stop()
	logScheduledJobs(logger, scheduler)

	<-ctx.Done()

	return nil
}

func logScheduledJobs(logger zerolog.Logger, s *scheduler.Scheduler) {
	logger.Info().Int("jobs", s.JobCount()).Msg("scheduled retention jobs")
	for name, next := range s.NextRuns() {
		logger.Info().Str("target", name).Time("next", next).Msg("next retention run")
	}
}

type jobScheduler interface {
	AddRetentionJob(name string, schedule string, job scheduler.RetentionJob) error
}

// addRetentionJobsFromConfig schedules one job per enabled target and returns
// how many were added. Two targets sharing a root and tag would fight over
// the same artifacts, so only the first one is kept.
func addRetentionJobsFromConfig(
	ctx context.Context,
	s jobScheduler,
	cfg *config.Config,
	db *database.Database,
	logger zerolog.Logger,
	dryRun bool,
) int {
	managed := make(map[string]struct{})
	added := 0

	for _, target := range cfg.Targets {
		logger := logger.With().Str("target", target.DisplayName()).Logger()

		if !target.Enable {
			logger.Info().Msg("skipping disabled target")
			continue
		}
		if target.Schedule == "" {
			logger.Warn().Msg("skipping target without cron schedule")
			continue
		}

		key := target.RootDir + "\x00" + target.TypeTag
		if _, ok := managed[key]; ok {
			logger.Warn().Str("root", target.RootDir).Str("tag", target.TypeTag).Msg("skipping duplicate target")
			continue
		}
		managed[key] = struct{}{}

		job := &retentionJob{
			ctx:     ctx,
			target:  target,
			history: cfg.HistoryDays,
			dryRun:  dryRun,
			db:      db,
			logger:  logger,
		}
		if err := s.AddRetentionJob(target.DisplayName(), target.Schedule, job); err != nil {
			logger.Error().Err(err).Msg("could not add retention job")
			continue
		}
		added++

		logger.Info().Object("target", target).Msg("added retention job")
	}
	return added
}

func startConfigFileWatcher(ctx context.Context, cfgPath string, logger zerolog.Logger, ticks <-chan struct{}, onChanged func(cfg *config.Config)) {
	logger.Info().Str("path", cfgPath).Msg("watching config file for changes")
	watcher, err := fileutils.WatchFile(ctx, cfgPath, ticks, func(err error) {
		logger.Error().Err(err).Msg("could not watch config file")
	})
	if err != nil {
		logger.Error().Err(err).Msg("could not watch config file")
		return
	}

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-watcher:
				if !ok {
					return
				}
				logger.Info().Str("path", cfgPath).Msg("config file changed, reloading")

				cfg, err := config.LoadFromFile(cfgPath)
				if err != nil {
					logger.Error().Err(err).Msg("could not load config, keeping previous jobs")
					break
				}

				onChanged(cfg)
			}
		}
	}()
}

type retentionJob struct {
	ctx     context.Context
	target  config.Target
	history int
	dryRun  bool
	db      *database.Database
	logger  zerolog.Logger
}

func (j *retentionJob) Run() {
	startTime := time.Now()
	result, err := runTarget(j.ctx, runParams{
		target: j.target,
		dryRun: j.dryRun,
		db:     j.db,
		logger: j.logger,
	})
	if err != nil {
		j.logger.Error().Err(err).Msg("retention job failed")
		return
	}
	j.logger.Info().
		Float64("seconds", time.Since(startTime).Seconds()).
		Object("report", result.report).
		Msg("retention job done")

	if j.db != nil && j.history > 0 {
		cutoff := time.Now().AddDate(0, 0, -j.history)
		if _, err := j.db.PruneRuns(j.ctx, cutoff); err != nil {
			j.logger.Error().Err(err).Msg("could not prune run history")
		}
	}
}
