package prepare

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrParse          = errors.New("parse sample identifier")
	ErrUnknownReactor = errors.New("unknown reactor")
	ErrUnknownRecipe  = errors.New("unknown recipe")
	ErrInvalidRecipe  = errors.New("invalid recipe config")
)

// ParseError reports a sample identifier that does not have the
// "<prefix>-<reactor> ..." structure.
type ParseError struct {
	ID     string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse sample identifier %q: %s", e.ID, e.Reason)
}

func (e *ParseError) Unwrap() error { return ErrParse }

// UnknownReactorError reports a reactor with no strain mapping.
type UnknownReactorError struct {
	Reactor int
}

func (e *UnknownReactorError) Error() string {
	return fmt.Sprintf("reactor %d has no strain mapping", e.Reactor)
}

func (e *UnknownReactorError) Unwrap() error { return ErrUnknownReactor }
