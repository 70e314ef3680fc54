package workflow

import (
	"errors"
	"fmt"

	"github.com/SaneeshInter/project-management-sub002/internal/model"
)

// ErrConcurrentModification is returned when a transition loses the race
// against another writer on the same project.
var ErrConcurrentModification = errors.New("project was modified concurrently, reload and retry")

// InvalidTransitionError reports a (from, to) pair with no edge in the graph.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: no workflow path from %s to %s", e.From, e.To)
}

// WorkStatusNotReadyError reports that the current visit has not reached the
// work status the transition rule requires.
type WorkStatusNotReadyError struct {
	Department     string
	RequiredStatus model.WorkStatus
	CurrentStatus  model.WorkStatus
}

func (e *WorkStatusNotReadyError) Error() string {
	return fmt.Sprintf("work in %s must be %s before moving on (currently %s)",
		e.Department, e.RequiredStatus, e.CurrentStatus)
}

// GateNotSatisfiedError carries every unmet gate requirement, not just the
// first, so callers can render a complete actionable message.
type GateNotSatisfiedError struct {
	Department string
	Missing    []string
}

func (e *GateNotSatisfiedError) Error() string {
	return fmt.Sprintf("approval gate for %s not satisfied: %d requirement(s) missing", e.Department, len(e.Missing))
}

// InvalidStatusChangeError reports an illegal work-status machine step.
type InvalidStatusChangeError struct {
	From model.WorkStatus
	To   model.WorkStatus
}

func (e *InvalidStatusChangeError) Error() string {
	return fmt.Sprintf("work status cannot change from %s to %s", e.From, e.To)
}

// ConfigurationError reports a malformed category graph. It is raised when a
// mapping is loaded or written, never during a transition.
type ConfigurationError struct {
	Category string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid workflow configuration for category %s: %s", e.Category, e.Reason)
}
