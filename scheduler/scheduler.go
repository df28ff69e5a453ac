package scheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// RetentionJob is one periodic retention run for a target.
type RetentionJob interface {
	Run()
}

type SchedulerParams struct {
	Logger   zerolog.Logger
	Location *time.Location
}

func NewScheduler(params SchedulerParams) *Scheduler {
	loc := params.Location
	if loc == nil {
		loc = time.Local
	}
	cronLogger := cronLog{logger: params.Logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(loc),
			cron.WithLogger(cronLogger),
			cron.WithChain(cron.Recover(cronLogger), cron.SkipIfStillRunning(cronLogger)),
		),
		logger: params.Logger,
		jobs:   make(map[cron.EntryID]string),
	}
}

type Scheduler struct {
	mu     sync.Mutex
	cron   *cron.Cron
	jobs   map[cron.EntryID]string
	logger zerolog.Logger
}

// Start the scheduler in its own routine.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop the scheduler and wait for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// AddRetentionJob schedules job under the given cron spec. A run that is
// still in progress when the next one is due causes the next one to be
// skipped.
func (s *Scheduler) AddRetentionJob(name string, schedule string, job RetentionJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.cron.AddJob(schedule, job)
	if err != nil {
		return fmt.Errorf("could not add retention job %s: %w", name, err)
	}
	s.jobs[entry] = name

	return nil
}

func (s *Scheduler) RemoveJobs() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for entry := range s.jobs {
		s.cron.Remove(entry)
		delete(s.jobs, entry)
	}
}

func (s *Scheduler) JobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// NextRuns returns the next activation time of every job by name. Jobs of a
// scheduler that was not started have a zero time.
func (s *Scheduler) NextRuns() map[string]time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make(map[string]time.Time, len(s.jobs))
	for id, name := range s.jobs {
		next[name] = s.cron.Entry(id).Next
	}
	return next
}

// cronLog routes cron's internal logging through zerolog.
type cronLog struct {
	logger zerolog.Logger
}

func (l cronLog) Info(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(keysAndValues).Msg("cron: " + msg)
}

func (l cronLog) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg("cron: " + msg)
}
