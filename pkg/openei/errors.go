package openei

import "fmt"

// MissingColumnError reports a dataset file that lacks a required column.
// It aborts the run before any resolution: a missing column is a structural
// problem with the input, never a transient one.
type MissingColumnError struct {
	File   string
	Column string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("%s: required column %q not found", e.File, e.Column)
}
