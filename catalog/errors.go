package catalog

import "fmt"

// CatalogError is returned when the backup root cannot be listed.
// Callers treat it as "nothing to manage".
type CatalogError struct {
	Root string
	Err  error
}

func (e *CatalogError) Error() string {
	return fmt.Sprintf("could not list backup root %s: %v", e.Root, e.Err)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

// ClassificationError marks an artifact whose name carries a timestamp
// token that could not be parsed.
type ClassificationError struct {
	Identifier string
	Token      string
	Err        error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("malformed timestamp %q in %s: %v", e.Token, e.Identifier, e.Err)
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}
