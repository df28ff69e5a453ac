package database

import "time"

type findRunsOptions struct {
	limit  int
	target string
	since  time.Time
}

type FindRunsOptions func(*findRunsOptions)

// Limit the number of runs returned.
func WithFindRunsLimit(limit int) FindRunsOptions {
	return func(o *findRunsOptions) {
		o.limit = limit
	}
}

// Only return runs of the named target.
func WithFindRunsTarget(target string) FindRunsOptions {
	return func(o *findRunsOptions) {
		o.target = target
	}
}

// Only return runs started at or after since.
func WithFindRunsSince(since time.Time) FindRunsOptions {
	return func(o *findRunsOptions) {
		o.since = since
	}
}
