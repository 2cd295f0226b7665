package namespace

import (
	"errors"
	"fmt"
)

// ErrNoNamespace is returned when no namespace matches a tag and no default
// namespace is configured.
var ErrNoNamespace = errors.New("no namespace registered for component")

// ErrNotFound is returned by fetchers for missing resources.
var ErrNotFound = errors.New("component resource not found")

// ResolutionError reports a tag no namespace can serve.
type ResolutionError struct {
	Tag string
	Err error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve %q: %v", e.Tag, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// FetchError reports a resource that could not be retrieved.
type FetchError struct {
	Tag string
	URI string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %q from %s: %v", e.Tag, e.URI, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
