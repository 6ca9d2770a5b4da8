package store

import "fmt"

// PersistenceError reports a failed read (Op "read") or write (Op "write")
// of a collection. It is informational: the store keeps working with its
// in-memory state.
type PersistenceError struct {
	Op        string
	Namespace string
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s %s: %v", e.Op, e.Namespace, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
