package model

import (
	"errors"
	"fmt"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrSchemaViolation = errors.New("schema violation")
)

// SchemaViolationError identifies the table and invariant that failed validation.
type SchemaViolationError struct {
	Table     string // conc, biomass, times, coords, raw, name
	Invariant string // short invariant label, e.g. "time_ix_in_times"
	Detail    string
}

func (e *SchemaViolationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("schema violation in %s: %s", e.Table, e.Invariant)
	}
	return fmt.Sprintf("schema violation in %s: %s: %s", e.Table, e.Invariant, e.Detail)
}

// Unwrap lets errors.Is match ErrSchemaViolation.
func (e *SchemaViolationError) Unwrap() error { return ErrSchemaViolation }

// Violation builds a SchemaViolationError with a formatted detail.
func Violation(table, invariant, format string, args ...any) error {
	return &SchemaViolationError{Table: table, Invariant: invariant, Detail: fmt.Sprintf(format, args...)}
}
