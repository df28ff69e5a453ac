package enforcer

import "fmt"

// DeletionError records a failed deletion. It never aborts a batch.
type DeletionError struct {
	Identifier string
	Path       string
	Err        error
}

func (e *DeletionError) Error() string {
	return fmt.Sprintf("could not delete %s: %v", e.Path, e.Err)
}

func (e *DeletionError) Unwrap() error {
	return e.Err
}
