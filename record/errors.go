package record

import "fmt"

// StateConflictError rejects an operation that is invalid in the current
// lifecycle state, e.g. a second Start while a session is live.
type StateConflictError struct {
	State State
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("operation not allowed while %s", e.State)
}
