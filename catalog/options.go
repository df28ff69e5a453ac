package catalog

import "time"

type listOptions struct {
	location    *time.Location
	excludes    []string
	unixSeconds bool
}

type ListOption func(o *listOptions)

// Location used to interpret timestamp tokens without a zone. Defaults to UTC.
func WithLocation(loc *time.Location) ListOption {
	return func(o *listOptions) {
		o.location = loc
	}
}

// Skip entries whose name matches any of the glob patterns.
func WithExcludes(patterns ...string) ListOption {
	return func(o *listOptions) {
		o.excludes = append(o.excludes, patterns...)
	}
}

// Accept 10-digit unix second tokens in names.
func WithUnixSeconds(enabled bool) ListOption {
	return func(o *listOptions) {
		o.unixSeconds = enabled
	}
}
