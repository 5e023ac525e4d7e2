package nodesync

import (
	"errors"
	"fmt"
)

// Sentinel errors reported by the path-addressed patcher. They arrive
// wrapped in a *PatchResolutionError, so callers match them with errors.Is.
var (
	// ErrInvalidDocument reports document text that is not valid JSON.
	ErrInvalidDocument = errors.New("document is not valid JSON")
	// ErrPathNotFound reports a path segment with no counterpart in the document.
	ErrPathNotFound = errors.New("path not found")
	// ErrNotAContainer reports a path that descends into a primitive value.
	ErrNotAContainer = errors.New("path descends into a non-container value")
	// ErrIndexOutOfRange reports an array index outside the array's bounds.
	ErrIndexOutOfRange = errors.New("array index out of range")
)

// ParseError reports edited text that could not be interpreted as JSON. It
// wraps the underlying syntax error so its message reaches the user
// unchanged.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("nodesync: invalid JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// PatchResolutionError reports a path that could not be resolved against the
// current document. The document is never modified when one is returned.
type PatchResolutionError struct {
	Path Path
	Err  error
}

func (e *PatchResolutionError) Error() string {
	return fmt.Sprintf("nodesync: cannot resolve %s: %v", e.Path, e.Err)
}

func (e *PatchResolutionError) Unwrap() error { return e.Err }

func resolutionErr(path Path, err error) error {
	return &PatchResolutionError{Path: path, Err: err}
}
