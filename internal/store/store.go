// Package store holds the authoritative, ordered item collection. Every
// effective mutation is persisted through the configured codec and storage
// and then announced to observers.
package store

import (
	"context"
	stderrors "errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"notes/internal/codec"
	"notes/internal/domain"
	"notes/internal/errors"
	"notes/internal/storage"
	"notes/internal/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// DefaultKey is the storage key holding the collection.
const DefaultKey = "items"

const defaultWriteTimeout = 5 * time.Second

// Options configures a Store. The zero value is usable.
type Options struct {
	Key       string
	Codec     codec.Codec
	Validator *validation.ItemValidator // nil disables content validation
	Logger    *zap.Logger
	Clock     func() time.Time
	NewID     func() string
	// OnWarning receives non-fatal persistence problems: unreadable data at
	// load, skipped encodes and failed writes. It may be called from the
	// background writer goroutine.
	OnWarning func(error)
	// SyncWrites performs each write inline instead of on the background writer.
	SyncWrites   bool
	WriteTimeout time.Duration
}

// Store is the item collection. Newest items come first.
type Store struct {
	mu    sync.Mutex
	items []domain.Item

	kv        storage.KV
	key       string
	codec     codec.Codec
	validator *validation.ItemValidator
	log       *zap.Logger
	now       func() time.Time
	newID     func() string
	onWarning func(error)

	writer       *writer
	writeTimeout time.Duration
	syncErr      error
	// readOnly is set when existing data could not be read, so that it is
	// never overwritten by this process.
	readOnly bool

	observers observers
}

// New loads the collection stored under opts.Key. It never fails: missing
// data yields an empty store and unreadable data is reported via OnWarning.
func New(ctx context.Context, kv storage.KV, opts Options) *Store {
	s := &Store{
		kv:           kv,
		key:          opts.Key,
		codec:        opts.Codec,
		validator:    opts.Validator,
		log:          opts.Logger,
		now:          opts.Clock,
		newID:        opts.NewID,
		onWarning:    opts.OnWarning,
		writeTimeout: opts.WriteTimeout,
		items:        []domain.Item{},
	}
	if s.key == "" {
		s.key = DefaultKey
	}
	if s.codec == nil {
		s.codec = codec.JSON{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	s.log = s.log.Named("store")
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.writeTimeout <= 0 {
		s.writeTimeout = defaultWriteTimeout
	}

	s.loadAll(ctx)

	if !opts.SyncWrites {
		s.writer = newWriter(kv, s.key, s.writeTimeout, s.log.Named("writer"), s.warn)
	}
	return s
}

func (s *Store) loadAll(ctx context.Context) {
	data, err := s.kv.Get(ctx, s.key)
	if stderrors.Is(err, storage.ErrNotFound) {
		s.log.Debug("no saved items", zap.String("key", s.key))
		return
	}
	if err != nil {
		s.readOnly = true
		if !errors.IsAppError(err) {
			err = errors.NewStorageError("read "+s.key, err)
		}
		s.warn(fmt.Errorf("saved items could not be read, changes will not be saved: %w", err))
		return
	}

	items, err := s.codec.Decode(data)
	if err != nil {
		s.warn(err)
		s.preserve(ctx, data)
		return
	}

	s.items = items
	s.log.Debug("items loaded", zap.String("key", s.key), zap.Int("count", len(items)))
}

// preserve copies unreadable bytes aside before anything can overwrite them.
func (s *Store) preserve(ctx context.Context, data []byte) {
	backupKey := s.backupPrefix() + strconv.FormatInt(s.now().Unix(), 10)
	if err := s.kv.Put(ctx, backupKey, data); err != nil {
		s.readOnly = true
		s.warn(fmt.Errorf("could not back up unreadable items, changes will not be saved: %w", err))
		return
	}
	s.log.Warn("unreadable items preserved", zap.String("backup_key", backupKey), zap.Int("bytes", len(data)))
}

// Add creates an item at the front of the collection and returns a copy.
// The due date is ignored for notes.
func (s *Store) Add(content string, kind domain.Kind, due *time.Time) (domain.Item, error) {
	if s.validator != nil {
		if err := s.validator.ValidateNewItem(content, kind); err != nil {
			return domain.Item{}, validationError(err)
		}
	} else if !kind.IsValid() {
		return domain.Item{}, errors.NewValidationError(fmt.Sprintf("unknown item kind %q", kind), nil)
	}

	var created domain.Item
	s.mutate(func() (Event, bool) {
		id := s.newID()
		for s.indexOf(id) >= 0 {
			id = s.newID()
		}
		created = domain.NewItem(id, content, kind, s.now(), due)
		s.items = append([]domain.Item{created}, s.items...)
		return Event{Type: EventAdded, IDs: []string{id}, Items: []domain.Item{created.Clone()}}, true
	})
	return created.Clone(), nil
}

// Update replaces the content and due date of an item. An unknown id is a
// silent no-op. Notes keep no due date.
func (s *Store) Update(id, content string, due *time.Time) error {
	var err error
	s.mutate(func() (Event, bool) {
		i := s.indexOf(id)
		if i < 0 {
			return Event{}, false
		}
		if s.validator != nil {
			if verr := s.validator.ValidateContent(content); verr != nil {
				err = validationError(verr)
				return Event{}, false
			}
		}
		item := &s.items[i]
		item.Content = content
		if item.IsTask() {
			item.Task.DueDate = domain.NormalizeDue(due)
		}
		return Event{Type: EventUpdated, IDs: []string{id}, Items: []domain.Item{item.Clone()}}, true
	})
	return err
}

// ToggleDone flips the completion flag of a task.
func (s *Store) ToggleDone(id string) {
	s.mutate(func() (Event, bool) {
		i := s.indexOf(id)
		if i < 0 || !s.items[i].IsTask() {
			return Event{}, false
		}
		s.items[i].Task.Done = !s.items[i].Task.Done
		return Event{Type: EventUpdated, IDs: []string{id}, Items: []domain.Item{s.items[i].Clone()}}, true
	})
}

// SetDueDate sets or, with nil, clears the due date of a task.
func (s *Store) SetDueDate(id string, due *time.Time) {
	s.mutate(func() (Event, bool) {
		i := s.indexOf(id)
		if i < 0 || !s.items[i].IsTask() {
			return Event{}, false
		}
		s.items[i].Task.DueDate = domain.NormalizeDue(due)
		return Event{Type: EventUpdated, IDs: []string{id}, Items: []domain.Item{s.items[i].Clone()}}, true
	})
}

// DeleteByID removes one item.
func (s *Store) DeleteByID(id string) {
	s.mutate(func() (Event, bool) {
		i := s.indexOf(id)
		if i < 0 {
			return Event{}, false
		}
		removed := s.items[i]
		s.items = append(s.items[:i:i], s.items[i+1:]...)
		return Event{Type: EventDeleted, IDs: []string{id}, Items: []domain.Item{removed}}, true
	})
}

// DeleteAt removes the items at the given 0-based positions in one mutation.
// Out-of-range and repeated positions are ignored.
func (s *Store) DeleteAt(positions ...int) {
	s.mutate(func() (Event, bool) {
		drop := make(map[int]struct{}, len(positions))
		for _, p := range positions {
			if p >= 0 && p < len(s.items) {
				drop[p] = struct{}{}
			}
		}
		if len(drop) == 0 {
			return Event{}, false
		}

		ordered := make([]int, 0, len(drop))
		for p := range drop {
			ordered = append(ordered, p)
		}
		sort.Ints(ordered)

		ev := Event{Type: EventDeleted}
		for _, p := range ordered {
			ev.IDs = append(ev.IDs, s.items[p].ID)
			ev.Items = append(ev.Items, s.items[p])
		}

		kept := make([]domain.Item, 0, len(s.items)-len(drop))
		for i, item := range s.items {
			if _, ok := drop[i]; !ok {
				kept = append(kept, item)
			}
		}
		s.items = kept
		return ev, true
	})
}

// Items returns a copy of the collection in store order.
func (s *Store) Items() []domain.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CloneItems(s.items)
}

// Get returns a copy of the item with id.
func (s *Store) Get(id string) (domain.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return domain.Item{}, false
	}
	return s.items[i].Clone(), true
}

// Len returns the number of items.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Subscribe registers fn to be called after every effective mutation, in
// subscription order and outside the store lock. The returned function
// unsubscribes.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	return s.observers.add(fn)
}

// Flush waits for every write enqueued so far and returns the error of the
// most recent write.
func (s *Store) Flush(ctx context.Context) error {
	if s.writer == nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.syncErr
	}
	return s.writer.flush(ctx)
}

// Close flushes and stops the background writer. The storage is left open.
// Mutations after Close are written inline.
func (s *Store) Close(ctx context.Context) error {
	if s.writer == nil {
		return s.Flush(ctx)
	}
	return s.writer.close(ctx)
}

// mutate runs fn under the lock. When fn reports a change the collection is
// persisted before the lock is released, then observers are notified.
func (s *Store) mutate(fn func() (Event, bool)) {
	s.mu.Lock()
	ev, changed := fn()
	var err error
	if changed {
		err = s.persist()
	}
	s.mu.Unlock()

	if !changed {
		return
	}
	if err != nil {
		s.warn(err)
	}
	s.observers.notify(ev)
}

// persist encodes the full collection and hands it to the writer.
// Must be called with s.mu held.
func (s *Store) persist() error {
	if s.readOnly {
		return errors.NewStorageError("write "+s.key, stderrors.New("saving is disabled because existing data could not be read"))
	}

	data, err := s.codec.Encode(s.items)
	if err != nil {
		return err
	}

	if s.writer != nil {
		if s.writer.enqueue(data) {
			return nil
		}
		return s.writer.writeInline(data)
	}
	s.syncErr = putWithTimeout(s.kv, s.key, data, s.writeTimeout)
	return s.syncErr
}

func (s *Store) warn(err error) {
	s.log.Warn("persistence problem", zap.Error(err))
	if s.onWarning != nil {
		s.onWarning(err)
	}
}

func (s *Store) indexOf(id string) int {
	for i := range s.items {
		if s.items[i].ID == id {
			return i
		}
	}
	return -1
}

func validationError(err error) error {
	var ve *validation.ValidationError
	if stderrors.As(err, &ve) {
		return errors.NewValidationError(ve.UserMessage(), err)
	}
	return errors.NewValidationError("invalid item", err)
}
