package store

import "context"

// Save tracks one asynchronous persistence of a collection.
type Save struct {
	done chan struct{}
	err  error
}

func newSave() *Save {
	return &Save{done: make(chan struct{})}
}

func completedSave(err error) *Save {
	s := newSave()
	s.finish(err)
	return s
}

func (s *Save) finish(err error) {
	s.err = err
	close(s.done)
}

// Done is closed once the save has finished.
func (s *Save) Done() <-chan struct{} {
	return s.done
}

// Err returns the save result. It is nil until Done is closed.
func (s *Save) Err() error {
	select {
	case <-s.done:
		return s.err
	default:
		return nil
	}
}

// Wait blocks until the save finishes or ctx is done.
func (s *Save) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
