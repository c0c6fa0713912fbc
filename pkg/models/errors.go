package models

import "fmt"

// TraversalError reports a source folder that could not be opened.
// A traversal error aborts the whole run: partial catalogs are never planned.
type TraversalError struct {
	Path string
	Err  error
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("cannot traverse folder %s: %v", e.Path, e.Err)
}

func (e *TraversalError) Unwrap() error {
	return e.Err
}

// PathLayoutError reports a file whose path does not fall under the
// declared source root
type PathLayoutError struct {
	Path string
	Root string
}

func (e *PathLayoutError) Error() string {
	return fmt.Sprintf("'%s' should start with '%s'", e.Path, e.Root)
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}
