package registry

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidName is returned for empty names and names that break the
	// custom tag naming convention.
	ErrInvalidName = errors.New("invalid component name")
	// ErrDuplicate is returned when the tag is already registered. The
	// original definition is kept.
	ErrDuplicate = errors.New("component already registered")
	// ErrConflict is returned when an attached host already defines the tag
	// through other means.
	ErrConflict = errors.New("tag already defined by another element")
	// ErrInvalidSource is returned when component source cannot be parsed or
	// its setup block does not compile.
	ErrInvalidSource = errors.New("invalid component source")
)

// RegistrationError describes a rejected registration.
type RegistrationError struct {
	Tag string
	Err error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("cannot register %q: %v", e.Tag, e.Err)
}

func (e *RegistrationError) Unwrap() error { return e.Err }

// resultLabel maps a registration outcome to its metrics label.
func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidName):
		return "invalid_name"
	case errors.Is(err, ErrDuplicate):
		return "duplicate"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "invalid_source"
	}
}
