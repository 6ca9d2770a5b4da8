package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vbonduro/cafeliz/internal/kv"
	"github.com/vbonduro/cafeliz/internal/kv/memory"
	"github.com/vbonduro/cafeliz/internal/notify"
)

type note struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

var noteKind = Kind[note]{
	Label:     "notas",
	Namespace: "notes",
	ID:        func(n note) int64 { return n.ID },
	WithID: func(n note, id int64) note {
		n.ID = id
		return n
	},
	Missing: func(n note) []string {
		if n.Text == "" {
			return []string{"text"}
		}
		return nil
	},
	SetField: func(n *note, field, value string) error {
		if field != "text" {
			return &UnknownFieldError{Field: field}
		}
		n.Text = value
		return nil
	},
}

// stubBackend fails Get and/or Put with the configured errors and counts puts.
type stubBackend struct {
	*memory.Backend
	getErr error
	putErr error
	puts   atomic.Int32
}

func newStubBackend() *stubBackend {
	return &stubBackend{Backend: memory.New()}
}

func (b *stubBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if b.getErr != nil {
		return nil, b.getErr
	}
	return b.Backend.Get(ctx, key)
}

func (b *stubBackend) Put(ctx context.Context, key string, value []byte) error {
	b.puts.Add(1)
	if b.putErr != nil {
		return b.putErr
	}
	return b.Backend.Put(ctx, key, value)
}

func newTestStore(t *testing.T, backend kv.Backend, policy IDPolicy) (*Store[note], *notify.Inbox) {
	t.Helper()
	inbox := notify.NewInbox(0)
	s := New(noteKind, backend, Options{Notifier: inbox, IDPolicy: policy})
	require.NoError(t, s.Load(context.Background()))
	return s, inbox
}

func persisted(t *testing.T, backend kv.Backend) []note {
	t.Helper()
	data, err := backend.Get(context.Background(), "notes")
	require.NoError(t, err)
	var out []note
	require.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestStoreLoadMissingKey(t *testing.T) {
	s, inbox := newTestStore(t, memory.New(), MonotonicIDs)

	assert.Empty(t, s.Items())
	assert.NotNil(t, s.Items())
	assert.Empty(t, inbox.Drain())
}

func TestStoreAppendAssignsSequentialIDs(t *testing.T) {
	backend := memory.New()
	s, _ := newTestStore(t, backend, MonotonicIDs)
	ctx := context.Background()

	first, save := s.Append(ctx, note{Text: "a"})
	require.NoError(t, save.Wait(ctx))
	second, save := s.Append(ctx, note{Text: "b"})
	require.NoError(t, save.Wait(ctx))

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, []note{{1, "a"}, {2, "b"}}, persisted(t, backend))
}

func TestStoreRoundTrip(t *testing.T) {
	backend := memory.New()
	ctx := context.Background()

	s, _ := newTestStore(t, backend, MonotonicIDs)
	want := []note{{ID: 3, Text: "c"}, {ID: 1, Text: "a"}, {ID: 2, Text: "b"}}
	require.NoError(t, s.Mutate(ctx, want).Wait(ctx))

	reloaded, _ := newTestStore(t, backend, MonotonicIDs)
	assert.Equal(t, want, reloaded.Items())
}

func TestStoreLoadDecodeError(t *testing.T) {
	backend := memory.New()
	ctx := context.Background()
	require.NoError(t, backend.Put(ctx, "notes", []byte("{not json")))

	inbox := notify.NewInbox(0)
	s := New(noteKind, backend, Options{Notifier: inbox})
	err := s.Load(ctx)

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "read", perr.Op)
	assert.Empty(t, s.Items())

	notices := inbox.Drain()
	require.Len(t, notices, 1)
	assert.Equal(t, notify.LevelError, notices[0].Level)
	assert.Contains(t, notices[0].Message, "notas")
}

func TestStoreLoadReadError(t *testing.T) {
	backend := newStubBackend()
	backend.getErr = errors.New("disk gone")
	inbox := notify.NewInbox(0)
	s := New(noteKind, backend, Options{Notifier: inbox})

	err := s.Load(context.Background())

	assert.ErrorContains(t, err, "disk gone")
	assert.Empty(t, s.Items())
	assert.Len(t, inbox.Drain(), 1)
}

func TestStoreLoadNull(t *testing.T) {
	backend := memory.New()
	require.NoError(t, backend.Put(context.Background(), "notes", []byte("null")))

	s, _ := newTestStore(t, backend, MonotonicIDs)
	assert.Empty(t, s.Items())
}

func TestStoreWriteErrorKeepsMemoryState(t *testing.T) {
	backend := newStubBackend()
	s, inbox := newTestStore(t, backend, MonotonicIDs)
	backend.putErr = errors.New("read-only filesystem")
	ctx := context.Background()

	_, save := s.Append(ctx, note{Text: "a"})
	err := save.Wait(ctx)

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "write", perr.Op)
	assert.Equal(t, []note{{1, "a"}}, s.Items())
	assert.Equal(t, err, save.Err())

	notices := inbox.Drain()
	require.Len(t, notices, 1)
	assert.Contains(t, notices[0].Message, "salvar")
}

func TestStoreReplace(t *testing.T) {
	backend := memory.New()
	s, _ := newTestStore(t, backend, MonotonicIDs)
	ctx := context.Background()

	_, save := s.Append(ctx, note{Text: "a"})
	require.NoError(t, save.Wait(ctx))

	ok, save := s.Replace(ctx, note{ID: 1, Text: "A"})
	require.NoError(t, save.Wait(ctx))
	assert.True(t, ok)
	assert.Equal(t, []note{{1, "A"}}, persisted(t, backend))
}

func TestStoreReplaceUnknownIDIsNoop(t *testing.T) {
	backend := newStubBackend()
	s, _ := newTestStore(t, backend, MonotonicIDs)
	ctx := context.Background()

	_, save := s.Append(ctx, note{Text: "a"})
	require.NoError(t, save.Wait(ctx))
	puts := backend.puts.Load()

	ok, save := s.Replace(ctx, note{ID: 9, Text: "x"})
	require.NoError(t, save.Wait(ctx))

	assert.False(t, ok)
	assert.Equal(t, []note{{1, "a"}}, s.Items())
	assert.Equal(t, puts, backend.puts.Load())
}

func TestStoreRemove(t *testing.T) {
	backend := memory.New()
	s, _ := newTestStore(t, backend, MonotonicIDs)
	ctx := context.Background()

	require.NoError(t, s.Mutate(ctx, []note{{1, "a"}, {2, "b"}, {3, "c"}}).Wait(ctx))

	ok, save := s.Remove(ctx, 2)
	require.NoError(t, save.Wait(ctx))
	assert.True(t, ok)
	assert.Equal(t, []note{{1, "a"}, {3, "c"}}, persisted(t, backend))

	ok, save = s.Remove(ctx, 2)
	require.NoError(t, save.Wait(ctx))
	assert.False(t, ok)
}

func TestStoreMonotonicIDsAfterDelete(t *testing.T) {
	s, _ := newTestStore(t, memory.New(), MonotonicIDs)
	ctx := context.Background()

	s.Append(ctx, note{Text: "a"})
	s.Append(ctx, note{Text: "b"})
	s.Remove(ctx, 1)
	added, _ := s.Append(ctx, note{Text: "c"})

	assert.Equal(t, int64(3), added.ID)
	require.NoError(t, s.Flush(ctx))
}

func TestStoreLengthIDsCanRepeat(t *testing.T) {
	s, _ := newTestStore(t, memory.New(), LengthIDs)
	ctx := context.Background()

	s.Append(ctx, note{Text: "a"})
	s.Append(ctx, note{Text: "b"})
	s.Remove(ctx, 1)
	added, _ := s.Append(ctx, note{Text: "c"})

	// len is 1 after the delete, so the new id collides with "b".
	assert.Equal(t, int64(2), added.ID)
	require.NoError(t, s.Flush(ctx))
}

func TestStoreMonotonicIDsFollowLoadedMax(t *testing.T) {
	backend := memory.New()
	ctx := context.Background()
	require.NoError(t, backend.Put(ctx, "notes", []byte(`[{"id":7,"text":"x"}]`)))

	s, _ := newTestStore(t, backend, MonotonicIDs)
	added, save := s.Append(ctx, note{Text: "y"})
	require.NoError(t, save.Wait(ctx))

	assert.Equal(t, int64(8), added.ID)
}

func TestStoreMonotonicIDsSurviveRestart(t *testing.T) {
	backend := memory.New()
	ctx := context.Background()

	s, _ := newTestStore(t, backend, MonotonicIDs)
	s.Append(ctx, note{Text: "a"})
	s.Append(ctx, note{Text: "b"})
	s.Remove(ctx, 2)
	require.NoError(t, s.Flush(ctx))
	require.Equal(t, []note{{1, "a"}}, persisted(t, backend))

	reopened, _ := newTestStore(t, backend, MonotonicIDs)
	added, save := reopened.Append(ctx, note{Text: "c"})
	require.NoError(t, save.Wait(ctx))

	assert.Equal(t, int64(3), added.ID)
	assert.Equal(t, []note{{1, "a"}, {3, "c"}}, persisted(t, backend))
}

func TestStoreLoadBadSequence(t *testing.T) {
	backend := memory.New()
	ctx := context.Background()
	require.NoError(t, backend.Put(ctx, "notes.seq", []byte("seven")))

	inbox := notify.NewInbox(0)
	s := New(noteKind, backend, Options{Notifier: inbox})
	err := s.Load(ctx)

	var perr *PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "read", perr.Op)
	assert.Len(t, inbox.Drain(), 1)
}

func TestStoreConcurrentAppendsPersistLatest(t *testing.T) {
	backend := memory.New()
	s, _ := newTestStore(t, backend, MonotonicIDs)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Append(ctx, note{Text: "n"})
		}()
	}
	wg.Wait()
	require.NoError(t, s.Flush(ctx))

	assert.Len(t, persisted(t, backend), 20)
	assert.Equal(t, s.Items(), persisted(t, backend))
}

// gatedBackend blocks the first Put until release is closed.
type gatedBackend struct {
	*memory.Backend
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (b *gatedBackend) Put(ctx context.Context, key string, value []byte) error {
	first := false
	b.once.Do(func() { first = true })
	if first {
		close(b.entered)
		<-b.release
	}
	return b.Backend.Put(ctx, key, value)
}

func TestStoreSlowSaveDoesNotOverwriteNewer(t *testing.T) {
	backend := &gatedBackend{Backend: memory.New(), entered: make(chan struct{}), release: make(chan struct{})}
	s, _ := newTestStore(t, backend, MonotonicIDs)
	ctx := context.Background()

	_, first := s.Append(ctx, note{Text: "a"})
	<-backend.entered
	_, second := s.Append(ctx, note{Text: "b"})
	close(backend.release)

	require.NoError(t, first.Wait(ctx))
	require.NoError(t, second.Wait(ctx))
	assert.Equal(t, []note{{1, "a"}, {2, "b"}}, persisted(t, backend))
}

func TestStoreFind(t *testing.T) {
	s, _ := newTestStore(t, memory.New(), MonotonicIDs)
	ctx := context.Background()
	require.NoError(t, s.Mutate(ctx, []note{{4, "d"}}).Wait(ctx))

	got, ok := s.Find(4)
	assert.True(t, ok)
	assert.Equal(t, "d", got.Text)

	_, ok = s.Find(5)
	assert.False(t, ok)
}

func TestStoreItemsIsCopy(t *testing.T) {
	s, _ := newTestStore(t, memory.New(), MonotonicIDs)
	ctx := context.Background()
	require.NoError(t, s.Mutate(ctx, []note{{1, "a"}}).Wait(ctx))

	items := s.Items()
	items[0].Text = "changed"

	assert.Equal(t, "a", s.Items()[0].Text)
}

func TestParseIDPolicy(t *testing.T) {
	p, err := ParseIDPolicy("")
	require.NoError(t, err)
	assert.Equal(t, MonotonicIDs, p)

	p, err = ParseIDPolicy("length")
	require.NoError(t, err)
	assert.Equal(t, LengthIDs, p)

	_, err = ParseIDPolicy("random")
	assert.Error(t, err)
}
