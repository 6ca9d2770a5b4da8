// Package form edits one draft entity at a time on top of a store.Store.
//
// A Controller is either closed or open in create or edit mode:
//
//	Closed -> OpenForCreate | OpenForEdit -> Open -> Commit | Discard | Remove -> Closed
//
// A failed Commit (missing required fields) leaves the form open.
package form

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/vbonduro/cafeliz/internal/notify"
	"github.com/vbonduro/cafeliz/internal/store"
)

var (
	ErrFormClosed = errors.New("form is not open")
	ErrNotEditing = errors.New("form is not editing an existing entity")
)

// ValidationError lists the required fields that were empty at commit time.
type ValidationError struct {
	Missing []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("required fields missing: %s", strings.Join(e.Missing, ", "))
}

// validationMessage is shown to the user when a commit is rejected.
const validationMessage = "Por favor, preencha todos os campos obrigatórios!"

type State[T any] struct {
	Draft   T    `json:"draft"`
	Editing bool `json:"editing"`
	Visible bool `json:"visible"`
}

// CommitHook runs after a successful commit. created is false for edits.
type CommitHook[T any] func(ctx context.Context, entity T, created bool)

type Controller[T any] struct {
	store    *store.Store[T]
	kind     store.Kind[T]
	notifier notify.Notifier
	logger   *slog.Logger
	onCommit CommitHook[T]

	mu      sync.Mutex
	draft   T
	editing bool
	visible bool
}

func New[T any](s *store.Store[T], notifier notify.Notifier, logger *slog.Logger) *Controller[T] {
	if notifier == nil {
		notifier = notify.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller[T]{
		store:    s,
		kind:     s.Kind(),
		notifier: notifier,
		logger:   logger.With("form", s.Kind().Namespace),
	}
}

// OnCommit registers a hook called after every successful commit.
func (c *Controller[T]) OnCommit(hook CommitHook[T]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onCommit = hook
}

func (c *Controller[T]) State() State[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State[T]{Draft: c.draft, Editing: c.editing, Visible: c.visible}
}

func (c *Controller[T]) Visible() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

func (c *Controller[T]) OpenForCreate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	var blank T
	c.draft = blank
	c.editing = false
	c.visible = true
}

func (c *Controller[T]) OpenForEdit(entity T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft = entity
	c.editing = true
	c.visible = true
}

// SetField updates one draft field. Values are not validated here.
func (c *Controller[T]) SetField(name, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.visible {
		return ErrFormClosed
	}
	return c.kind.SetField(&c.draft, name, value)
}

// SetFields applies every field or none: the draft is only replaced when all
// names are known. Fields are applied in name order.
func (c *Controller[T]) SetFields(fields map[string]string) error {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.visible {
		return ErrFormClosed
	}
	draft := c.draft
	for _, name := range names {
		if err := c.kind.SetField(&draft, name, fields[name]); err != nil {
			return err
		}
	}
	c.draft = draft
	return nil
}

// Commit validates the draft and writes it to the store: an edit replaces the
// entity with the draft's id, a create appends it with a new id. On success
// the form closes and the returned Save tracks persistence.
func (c *Controller[T]) Commit(ctx context.Context) (*store.Save, error) {
	c.mu.Lock()
	if !c.visible {
		c.mu.Unlock()
		return nil, ErrFormClosed
	}

	if missing := c.kind.Missing(c.draft); len(missing) > 0 {
		c.mu.Unlock()
		c.notifier.Notify(ctx, notify.Error(validationMessage))
		return nil, &ValidationError{Missing: missing}
	}

	draft, editing, hook := c.draft, c.editing, c.onCommit
	c.closeLocked()
	c.mu.Unlock()

	var (
		save    *store.Save
		stored  = draft
		changed = true
	)
	if editing {
		changed, save = c.store.Replace(ctx, draft)
		if !changed {
			c.logger.Warn("edited entity no longer exists", "id", c.kind.ID(draft))
		}
	} else {
		stored, save = c.store.Append(ctx, draft)
	}

	c.logger.Info("draft committed", "id", c.kind.ID(stored), "created", !editing)
	if hook != nil && changed {
		hook(ctx, stored, !editing)
	}
	return save, nil
}

func (c *Controller[T]) Discard() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

// Remove deletes the entity being edited and closes the form. It fails with
// ErrNotEditing for a new draft or a closed form.
func (c *Controller[T]) Remove(ctx context.Context) (*store.Save, error) {
	c.mu.Lock()
	if !c.visible || !c.editing {
		c.mu.Unlock()
		return nil, ErrNotEditing
	}
	id := c.kind.ID(c.draft)
	c.closeLocked()
	c.mu.Unlock()

	_, save := c.store.Remove(ctx, id)
	c.logger.Info("entity removed", "id", id)
	return save, nil
}

func (c *Controller[T]) closeLocked() {
	var blank T
	c.draft = blank
	c.editing = false
	c.visible = false
}
