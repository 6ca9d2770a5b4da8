package store

import "fmt"

// Kind describes one entity type: where its collection lives and how to read
// and write its fields. Catalog and sales each define one.
type Kind[T any] struct {
	// Label names the collection in user-facing messages, e.g. "produtos".
	Label     string
	Namespace string

	ID     func(T) int64
	WithID func(T, int64) T

	// Missing returns the required fields that are empty.
	Missing func(T) []string
	// SetField assigns value to the named field of *T.
	SetField func(*T, string, string) error
}

// UnknownFieldError is returned by Kind.SetField for a name it does not know.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q", e.Field)
}

// IDPolicy decides the id given to a newly appended entity.
type IDPolicy int

const (
	// MonotonicIDs assigns one more than the highest id seen by this store,
	// so an id freed by a delete is not handed out again.
	MonotonicIDs IDPolicy = iota
	// LengthIDs assigns len(collection)+1. Ids can repeat after deletions.
	LengthIDs
)

func ParseIDPolicy(s string) (IDPolicy, error) {
	switch s {
	case "", "monotonic":
		return MonotonicIDs, nil
	case "length":
		return LengthIDs, nil
	default:
		return 0, fmt.Errorf("unknown id policy %q", s)
	}
}
