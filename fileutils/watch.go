package fileutils

import (
	"context"
	"time"
)

// WatchFile polls the file at path on every tick and emits an event when its
// content hash changes. Read errors are reported through onErr and do not
// count as a change, so a file that is briefly missing during an editor save
// does not trigger a reload.
func WatchFile(ctx context.Context, path string, ticker <-chan struct{}, onErr func(err error)) (<-chan struct{}, error) {
	ch := make(chan struct{})

	lastHash, err := ComputeFileHash(path)
	if err != nil {
		return nil, err
	}

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ticker:
				if !ok {
					return
				}
				newHash, err := ComputeFileHash(path)
				if err != nil {
					onErr(err)
					continue
				}
				if newHash == lastHash {
					continue
				}
				lastHash = newHash
				select {
				case ch <- struct{}{}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

// PollEvery returns a tick channel for WatchFile that fires every interval
// until ctx is done.
func PollEvery(ctx context.Context, interval time.Duration) <-chan struct{} {
	out := make(chan struct{})
	go func() {
		defer close(out)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				select {
				case out <- struct{}{}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}
