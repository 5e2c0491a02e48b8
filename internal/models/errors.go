package models

import (
	"fmt"
	"strings"
	"time"
)

// ConfigurationError covers missing or malformed rule documents and a
// missing start date. Fatal before any solve is attempted.
type ConfigurationError struct {
	Reason string
	Err    error
}

func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration: %s: %v", e.Reason, e.Err)
	}
	return "configuration: " + e.Reason
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ValidationError reports internally conflicting rules by identity.
type ValidationError struct {
	Conflicts []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid rules: %s", strings.Join(e.Conflicts, "; "))
}

// InfeasibleModelError means the hard constraints admit no solution.
// Families lists the constraint families that were active in the
// model, not a minimal conflict set.
type InfeasibleModelError struct {
	Families []string
}

func (e *InfeasibleModelError) Error() string {
	return fmt.Sprintf("no schedule satisfies the hard constraints (active: %s)",
		strings.Join(e.Families, ", "))
}

// SolverTimeoutError means the bounded solve ran out of budget without
// a definitive status. Distinct from infeasibility: a solution may
// still exist.
type SolverTimeoutError struct {
	Budget time.Duration
}

func (e *SolverTimeoutError) Error() string {
	return fmt.Sprintf("solver exceeded %s time budget without a definitive status", e.Budget)
}
