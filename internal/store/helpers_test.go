package store

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"notes/internal/codec"
	"notes/internal/domain"
	"notes/internal/storage"
	"notes/internal/validation"

	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2024, 12, 17, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

type recorder struct {
	mu       sync.Mutex
	events   []Event
	warnings []error
}

func (r *recorder) observe(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *recorder) warn(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, err)
}

func (r *recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func (r *recorder) Warnings() []error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]error(nil), r.warnings...)
}

// newSyncStore returns a store that writes inline, so storage can be checked
// right after each call.
func newSyncStore(t *testing.T, kv storage.KV) (*Store, *recorder) {
	t.Helper()
	rec := &recorder{}
	clock := &fakeClock{now: baseTime}
	s := New(context.Background(), kv, Options{
		Validator:  validation.NewItemValidator(),
		Clock:      clock.Now,
		NewID:      sequentialIDs(),
		OnWarning:  rec.warn,
		SyncWrites: true,
	})
	s.Subscribe(rec.observe)
	return s, rec
}

// stored decodes what the KV currently holds under the default key.
func stored(t *testing.T, kv storage.KV) []domain.Item {
	t.Helper()
	data, err := kv.Get(context.Background(), DefaultKey)
	require.NoError(t, err)
	items, err := codec.JSON{}.Decode(data)
	require.NoError(t, err)
	return items
}

func storedBytes(t *testing.T, kv storage.KV) []byte {
	t.Helper()
	data, err := kv.Get(context.Background(), DefaultKey)
	require.NoError(t, err)
	return data
}

func ids(items []domain.Item) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID
	}
	return out
}

// faultyKV wraps a Memory KV with injectable failures.
type faultyKV struct {
	*storage.Memory
	mu     sync.Mutex
	getErr error
	putErr error
}

func (f *faultyKV) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	err := f.getErr
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return f.Memory.Get(ctx, key)
}

func (f *faultyKV) Put(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	err := f.putErr
	f.mu.Unlock()
	if err != nil {
		return err
	}
	return f.Memory.Put(ctx, key, value)
}

// gatedKV blocks every Put until the test releases it.
type gatedKV struct {
	*storage.Memory
	entered chan struct{}
	release chan struct{}
}

func newGatedKV() *gatedKV {
	return &gatedKV{
		Memory:  storage.NewMemory(),
		entered: make(chan struct{}, 16),
		release: make(chan struct{}),
	}
}

func (g *gatedKV) Put(ctx context.Context, key string, value []byte) error {
	g.entered <- struct{}{}
	<-g.release
	return g.Memory.Put(ctx, key, value)
}

// failingCodec encodes nothing.
type failingCodec struct {
	codec.JSON
	err error
}

func (f failingCodec) Encode([]domain.Item) ([]byte, error) {
	return nil, f.err
}
