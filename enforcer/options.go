package enforcer

type options struct {
	concurrency int
	dryRun      bool
}

type Option func(o *options)

// Maximum number of deletions running at once. Values below 1 mean sequential.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

// Report the deletions without touching storage.
func WithDryRun(dryRun bool) Option {
	return func(o *options) {
		o.dryRun = dryRun
	}
}
