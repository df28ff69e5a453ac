package enforcer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"
)

const (
	defaultMaxAttempts = 5
	defaultBaseDelay   = 100 * time.Millisecond
)

// OSRemover deletes files and directory trees from the local filesystem,
// retrying transient errors with exponential backoff.
type OSRemover struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

func NewOSRemover() *OSRemover {
	return &OSRemover{
		MaxAttempts: defaultMaxAttempts,
		BaseDelay:   defaultBaseDelay,
	}
}

// RemoveAll implements Remover. A path that no longer exists is not an error.
func (r *OSRemover) RemoveAll(ctx context.Context, path string) error {
	attempts := r.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := os.RemoveAll(path)
		if err == nil || errors.Is(err, os.ErrNotExist) {
			return nil
		}
		lastErr = err

		if !isTransient(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return errors.Join(lastErr, ctx.Err())
		case <-time.After(r.BaseDelay * (1 << (attempt - 1))):
		}
	}

	return fmt.Errorf("gave up after %d attempts: %w", attempts, lastErr)
}

func isTransient(err error) bool {
	return errors.Is(err, syscall.EAGAIN) ||
		errors.Is(err, syscall.EBUSY) ||
		errors.Is(err, syscall.ETIMEDOUT)
}
