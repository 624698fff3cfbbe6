package domain

import (
	"errors"
	"fmt"
)

// ErrBlockNotFound is returned when a List Tools block id cannot be resolved.
var ErrBlockNotFound = errors.New("list tools block not found")

// ErrSchemaUnresolved is returned when a list variable has no resolvable
// table schema.
var ErrSchemaUnresolved = errors.New("schema unresolved")

// ErrProducerUnknown is returned when no block or input step is known to
// publish a list variable.
var ErrProducerUnknown = errors.New("producer unknown")

// ErrConfigNotFound is returned when a question has no stored options config.
var ErrConfigNotFound = errors.New("options config not found")

// ValidationError means the caller attempted a transition with missing or
// unusable input. The transition is aborted and the config unchanged.
type ValidationError struct {
	Field  string // Field name
	Reason string // Human-readable reason for failure
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

// InvariantViolation means a stored config reached a state the link state
// machine declares impossible. It is surfaced as an error and never repaired
// by guessing, since a guess could silently discard user data.
type InvariantViolation struct {
	Reason string
}

func (e *InvariantViolation) Error() string {
	return "invariant violation: " + e.Reason
}
