// Package store holds the in-memory collection of one entity type and keeps a
// copy of it in a kv.Backend. Every mutation starts a full-collection save in
// the background and returns a *Save the caller may wait on.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/vbonduro/cafeliz/internal/kv"
	"github.com/vbonduro/cafeliz/internal/notify"
)

type Options struct {
	Notifier notify.Notifier
	Logger   *slog.Logger
	IDPolicy IDPolicy
}

type Store[T any] struct {
	kind     Kind[T]
	backend  kv.Backend
	notifier notify.Notifier
	logger   *slog.Logger
	policy   IDPolicy

	mu      sync.RWMutex
	items   []T
	version uint64
	highest int64

	// saveMu serializes writes; saved is the newest version written and
	// savedSeq the high-water mark last written under seqKey.
	saveMu   sync.Mutex
	saved    uint64
	savedSeq int64
	inflight sync.WaitGroup
}

func New[T any](kind Kind[T], backend kv.Backend, opts Options) *Store[T] {
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Store[T]{
		kind:     kind,
		backend:  backend,
		notifier: opts.Notifier,
		logger:   opts.Logger.With("namespace", kind.Namespace),
		policy:   opts.IDPolicy,
		items:    []T{},
	}
}

func (s *Store[T]) Kind() Kind[T] {
	return s.kind
}

// seqKey holds the highest id ever assigned, so MonotonicIDs survives a
// restart after the newest entity was deleted.
func (s *Store[T]) seqKey() string {
	return s.kind.Namespace + ".seq"
}

// Load replaces the collection with the persisted one. A missing key yields an
// empty collection. On a read or decode failure the collection is left empty,
// the user is notified and a *PersistenceError is returned.
func (s *Store[T]) Load(ctx context.Context) error {
	seq, err := s.loadSeq(ctx)
	if err != nil {
		return s.loadFailed(ctx, err)
	}

	data, err := s.backend.Get(ctx, s.kind.Namespace)
	if errors.Is(err, kv.ErrNotFound) {
		s.reset(nil, seq)
		s.logger.Debug("no persisted collection", "seq", seq)
		return nil
	}
	if err != nil {
		return s.loadFailed(ctx, err)
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return s.loadFailed(ctx, fmt.Errorf("failed to decode collection: %w", err))
	}

	s.reset(items, seq)
	s.logger.Info("collection loaded", "count", len(items), "seq", seq)
	return nil
}

func (s *Store[T]) loadSeq(ctx context.Context) (int64, error) {
	data, err := s.backend.Get(ctx, s.seqKey())
	if errors.Is(err, kv.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	seq, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to decode id sequence: %w", err)
	}
	return seq, nil
}

func (s *Store[T]) loadFailed(ctx context.Context, err error) error {
	s.reset(nil, 0)
	perr := &PersistenceError{Op: "read", Namespace: s.kind.Namespace, Err: err}
	s.logger.Error("failed to load collection", "error", err)
	s.notifier.Notify(ctx, notify.Error(fmt.Sprintf("Não foi possível carregar os %s.", s.kind.Label)))
	return perr
}

// reset installs items as both the in-memory and the persisted state. The id
// high-water mark is the larger of seq and the highest loaded id.
func (s *Store[T]) reset(items []T, seq int64) {
	if items == nil {
		items = []T{}
	}
	s.mu.Lock()
	s.items = items
	s.version++
	s.highest = max(seq, s.maxID(items))
	v := s.version
	s.mu.Unlock()

	s.saveMu.Lock()
	if v > s.saved {
		s.saved = v
	}
	s.savedSeq = seq
	s.saveMu.Unlock()
}

// Items returns a copy of the collection in insertion order.
func (s *Store[T]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.items)
}

func (s *Store[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *Store[T]) Find(id int64) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(id); i >= 0 {
		return s.items[i], true
	}
	var zero T
	return zero, false
}

// Mutate replaces the whole collection and persists it.
func (s *Store[T]) Mutate(ctx context.Context, items []T) *Save {
	s.mu.Lock()
	v := s.replaceLocked(clone(items))
	s.mu.Unlock()
	return s.persistAsync(ctx, v)
}

// Append assigns a fresh id to item, adds it at the end of the collection and
// persists the result. It returns the stored entity.
func (s *Store[T]) Append(ctx context.Context, item T) (T, *Save) {
	s.mu.Lock()
	item = s.kind.WithID(item, s.nextIDLocked())
	v := s.replaceLocked(append(clone(s.items), item))
	s.mu.Unlock()
	return item, s.persistAsync(ctx, v)
}

// Replace swaps the entity sharing item's id. If no entity matches, the
// collection is unchanged, nothing is saved and false is returned.
func (s *Store[T]) Replace(ctx context.Context, item T) (bool, *Save) {
	s.mu.Lock()
	i := s.indexOf(s.kind.ID(item))
	if i < 0 {
		s.mu.Unlock()
		return false, completedSave(nil)
	}
	items := clone(s.items)
	items[i] = item
	v := s.replaceLocked(items)
	s.mu.Unlock()
	return true, s.persistAsync(ctx, v)
}

// Remove deletes the entity with id. Unknown ids are a no-op returning false.
func (s *Store[T]) Remove(ctx context.Context, id int64) (bool, *Save) {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false, completedSave(nil)
	}
	items := make([]T, 0, len(s.items)-1)
	items = append(items, s.items[:i]...)
	items = append(items, s.items[i+1:]...)
	v := s.replaceLocked(items)
	s.mu.Unlock()
	return true, s.persistAsync(ctx, v)
}

// Flush waits for every save started so far.
func (s *Store[T]) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Store[T]) replaceLocked(items []T) uint64 {
	s.items = items
	s.version++
	if m := s.maxID(items); m > s.highest {
		s.highest = m
	}
	return s.version
}

func (s *Store[T]) nextIDLocked() int64 {
	if s.policy == LengthIDs {
		return int64(len(s.items)) + 1
	}
	return s.highest + 1
}

func (s *Store[T]) indexOf(id int64) int {
	for i, item := range s.items {
		if s.kind.ID(item) == id {
			return i
		}
	}
	return -1
}

func (s *Store[T]) maxID(items []T) int64 {
	var m int64
	for _, item := range items {
		if id := s.kind.ID(item); id > m {
			m = id
		}
	}
	return m
}

func (s *Store[T]) persistAsync(ctx context.Context, version uint64) *Save {
	save := newSave()
	// The save outlives the request that triggered it.
	ctx = context.WithoutCancel(ctx)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		err := s.persist(ctx, version)
		if err != nil {
			s.logger.Error("failed to save collection", "version", version, "error", err)
			s.notifier.Notify(ctx, notify.Error(fmt.Sprintf("Não foi possível salvar os %s.", s.kind.Label)))
		}
		save.finish(err)
	}()
	return save
}

// persist writes the newest snapshot unless a snapshot at least as new as
// version has already been written. A raised id high-water mark is written
// first, so a failure in between can only leave the sequence ahead.
func (s *Store[T]) persist(ctx context.Context, version uint64) error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if s.saved >= version {
		return nil
	}

	s.mu.RLock()
	snapshot := clone(s.items)
	latest := s.version
	highest := s.highest
	s.mu.RUnlock()

	data, err := json.Marshal(snapshot)
	if err != nil {
		return &PersistenceError{Op: "write", Namespace: s.kind.Namespace, Err: err}
	}
	if s.policy == MonotonicIDs && highest > s.savedSeq {
		seq := []byte(strconv.FormatInt(highest, 10))
		if err := s.backend.Put(ctx, s.seqKey(), seq); err != nil {
			return &PersistenceError{Op: "write", Namespace: s.kind.Namespace, Err: err}
		}
		s.savedSeq = highest
	}
	if err := s.backend.Put(ctx, s.kind.Namespace, data); err != nil {
		return &PersistenceError{Op: "write", Namespace: s.kind.Namespace, Err: err}
	}

	s.saved = latest
	s.logger.Debug("collection saved", "version", latest, "count", len(snapshot))
	return nil
}

func clone[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}
