package store

import (
	"context"
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"notes/internal/codec"
	"notes/internal/domain"
	"notes/internal/errors"
	"notes/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_MissingKeyIsEmpty(t *testing.T) {
	s, rec := newSyncStore(t, storage.NewMemory())

	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Items())
	assert.Empty(t, rec.Warnings())
}

func TestAdd_InsertsNewestFirst(t *testing.T) {
	kv := storage.NewMemory()
	s, _ := newSyncStore(t, kv)

	a, err := s.Add("A", domain.KindNote, nil)
	require.NoError(t, err)
	b, err := s.Add("B", domain.KindTask, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{b.ID, a.ID}, ids(s.Items()))
	assert.Equal(t, []string{b.ID, a.ID}, ids(stored(t, kv)))
	assert.True(t, a.CreatedAt.Before(b.CreatedAt))
	assert.Equal(t, time.UTC, b.CreatedAt.Location())
}

func TestAdd_UniqueIDs(t *testing.T) {
	s := New(context.Background(), storage.NewMemory(), Options{SyncWrites: true})

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		item, err := s.Add("item", domain.KindTask, nil)
		require.NoError(t, err)
		require.False(t, seen[item.ID], "duplicate id %s", item.ID)
		seen[item.ID] = true
	}
	assert.Equal(t, 200, s.Len())
}

func TestAdd_RegeneratesCollidingID(t *testing.T) {
	calls := 0
	newID := func() string {
		calls++
		if calls <= 2 {
			return "same"
		}
		return "other"
	}
	s := New(context.Background(), storage.NewMemory(), Options{NewID: newID, SyncWrites: true})

	first, err := s.Add("one", domain.KindNote, nil)
	require.NoError(t, err)
	second, err := s.Add("two", domain.KindNote, nil)
	require.NoError(t, err)

	assert.Equal(t, "same", first.ID)
	assert.Equal(t, "other", second.ID)
}

func TestAdd_NoteDropsDueDate(t *testing.T) {
	s, _ := newSyncStore(t, storage.NewMemory())
	due := baseTime.Add(48 * time.Hour)

	note, err := s.Add("idea", domain.KindNote, &due)
	require.NoError(t, err)

	assert.Nil(t, note.Task)
	assert.Nil(t, note.DueDate())
}

func TestAdd_Validation(t *testing.T) {
	kv := storage.NewMemory()
	s, rec := newSyncStore(t, kv)

	tests := []struct {
		name    string
		content string
		kind    domain.Kind
	}{
		{"empty content", "", domain.KindTask},
		{"whitespace content", "  \n ", domain.KindNote},
		{"unknown kind", "x", "event"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Add(tt.content, tt.kind, nil)
			require.Error(t, err)
			assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))
		})
	}

	assert.Equal(t, 0, s.Len())
	assert.Empty(t, rec.Events())
	assert.Equal(t, 0, kv.Puts())
}

func TestAdd_UnknownKindWithoutValidator(t *testing.T) {
	s := New(context.Background(), storage.NewMemory(), Options{SyncWrites: true})

	_, err := s.Add("", "event", nil)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))

	item, err := s.Add("", domain.KindNote, nil)
	require.NoError(t, err, "empty content is allowed without a validator")
	assert.Equal(t, "", item.Content)
}

func TestToggleDone_Idempotent(t *testing.T) {
	kv := storage.NewMemory()
	s, _ := newSyncStore(t, kv)
	task, err := s.Add("Buy milk", domain.KindTask, nil)
	require.NoError(t, err)
	before := storedBytes(t, kv)

	s.ToggleDone(task.ID)
	got, _ := s.Get(task.ID)
	assert.True(t, got.IsDone())

	s.ToggleDone(task.ID)
	got, _ = s.Get(task.ID)
	assert.False(t, got.IsDone())
	assert.Equal(t, before, storedBytes(t, kv))
}

func TestToggleDone_NoteIsNoOp(t *testing.T) {
	kv := storage.NewMemory()
	s, rec := newSyncStore(t, kv)
	note, err := s.Add("idea", domain.KindNote, nil)
	require.NoError(t, err)
	puts := kv.Puts()

	s.ToggleDone(note.ID)
	due := baseTime
	s.SetDueDate(note.ID, &due)

	got, _ := s.Get(note.ID)
	assert.Nil(t, got.Task)
	assert.Equal(t, puts, kv.Puts())
	assert.Len(t, rec.Events(), 1)
}

func TestNotFound_NoOps(t *testing.T) {
	kv := storage.NewMemory()
	s, rec := newSyncStore(t, kv)
	_, err := s.Add("A", domain.KindTask, nil)
	require.NoError(t, err)
	_, err = s.Add("B", domain.KindNote, nil)
	require.NoError(t, err)

	before := storedBytes(t, kv)
	beforeItems := s.Items()
	puts := kv.Puts()
	events := len(rec.Events())
	due := baseTime

	require.NoError(t, s.Update("missing", "changed", &due))
	s.ToggleDone("missing")
	s.SetDueDate("missing", &due)
	s.DeleteByID("missing")
	s.DeleteAt(-1, 2, 99)

	assert.Equal(t, beforeItems, s.Items())
	assert.Equal(t, before, storedBytes(t, kv))
	assert.Equal(t, puts, kv.Puts())
	assert.Len(t, rec.Events(), events)
}

func TestUpdate(t *testing.T) {
	kv := storage.NewMemory()
	s, rec := newSyncStore(t, kv)
	due := baseTime.Add(24 * time.Hour)
	task, err := s.Add("draft", domain.KindTask, nil)
	require.NoError(t, err)
	note, err := s.Add("note", domain.KindNote, nil)
	require.NoError(t, err)

	require.NoError(t, s.Update(task.ID, "final", &due))
	got, _ := s.Get(task.ID)
	assert.Equal(t, "final", got.Content)
	require.NotNil(t, got.DueDate())
	assert.True(t, got.DueDate().Equal(due))
	assert.True(t, got.CreatedAt.Equal(task.CreatedAt))

	require.NoError(t, s.Update(task.ID, "final", nil))
	got, _ = s.Get(task.ID)
	assert.Nil(t, got.DueDate(), "nil due clears it")

	require.NoError(t, s.Update(note.ID, "note v2", &due))
	got, _ = s.Get(note.ID)
	assert.Equal(t, "note v2", got.Content)
	assert.Nil(t, got.Task)

	persisted := stored(t, kv)
	assert.Equal(t, "note v2", persisted[0].Content)
	assert.Equal(t, "final", persisted[1].Content)

	last := rec.Events()[len(rec.Events())-1]
	assert.Equal(t, EventUpdated, last.Type)
	assert.Equal(t, []string{note.ID}, last.IDs)
}

func TestUpdate_InvalidContent(t *testing.T) {
	kv := storage.NewMemory()
	s, _ := newSyncStore(t, kv)
	task, err := s.Add("keep me", domain.KindTask, nil)
	require.NoError(t, err)
	puts := kv.Puts()

	err = s.Update(task.ID, "   ", nil)
	require.Error(t, err)
	assert.True(t, errors.IsErrorType(err, errors.ErrorTypeValidation))
	assert.Contains(t, errors.GetUserMessage(err), "content is required")

	got, _ := s.Get(task.ID)
	assert.Equal(t, "keep me", got.Content)
	assert.Equal(t, puts, kv.Puts())

	assert.NoError(t, s.Update("missing", "", nil), "unknown ids stay silent even with invalid content")
}

func TestSetDueDate(t *testing.T) {
	kv := storage.NewMemory()
	s, _ := newSyncStore(t, kv)
	task, err := s.Add("report", domain.KindTask, nil)
	require.NoError(t, err)

	due := baseTime.Add(72 * time.Hour)
	s.SetDueDate(task.ID, &due)
	due = due.Add(time.Hour) // the store keeps its own copy

	got, _ := s.Get(task.ID)
	require.NotNil(t, got.DueDate())
	assert.True(t, got.DueDate().Equal(baseTime.Add(72*time.Hour)))
	assert.True(t, stored(t, kv)[0].DueDate().Equal(baseTime.Add(72*time.Hour)))

	s.SetDueDate(task.ID, nil)
	got, _ = s.Get(task.ID)
	assert.Nil(t, got.DueDate())
	assert.Nil(t, stored(t, kv)[0].DueDate())
}

func TestDeleteAt(t *testing.T) {
	kv := storage.NewMemory()
	s, rec := newSyncStore(t, kv)
	for _, c := range []string{"a", "b", "c", "d", "e"} {
		_, err := s.Add(c, domain.KindNote, nil)
		require.NoError(t, err)
	}
	// order: e d c b a
	items := s.Items()
	puts := kv.Puts()

	s.DeleteAt(3, 1, 1, -4, 17, 3)

	assert.Equal(t, []string{items[0].ID, items[2].ID, items[4].ID}, ids(s.Items()))
	assert.Equal(t, puts+1, kv.Puts(), "one persist for the whole batch")
	assert.Equal(t, ids(s.Items()), ids(stored(t, kv)))

	last := rec.Events()[len(rec.Events())-1]
	assert.Equal(t, EventDeleted, last.Type)
	assert.Equal(t, []string{items[1].ID, items[3].ID}, last.IDs)
	assert.Equal(t, "d", last.Items[0].Content)

	s.DeleteAt()
	assert.Equal(t, puts+1, kv.Puts())
}

func TestDeleteByID(t *testing.T) {
	kv := storage.NewMemory()
	s, _ := newSyncStore(t, kv)
	a, _ := s.Add("a", domain.KindNote, nil)
	b, _ := s.Add("b", domain.KindNote, nil)

	s.DeleteByID(a.ID)

	assert.Equal(t, []string{b.ID}, ids(s.Items()))
	assert.Equal(t, []string{b.ID}, ids(stored(t, kv)))
	_, ok := s.Get(a.ID)
	assert.False(t, ok)
}

func TestLifecycleScenario(t *testing.T) {
	kv := storage.NewMemory()
	s, _ := newSyncStore(t, kv)

	item, err := s.Add("Buy milk", domain.KindTask, nil)
	require.NoError(t, err)
	require.Equal(t, 1, s.Len())
	assert.False(t, s.Items()[0].IsDone())
	assert.Equal(t, s.Items(), stored(t, kv))

	s.ToggleDone(item.ID)
	assert.True(t, s.Items()[0].IsDone())
	assert.Equal(t, s.Items(), stored(t, kv))

	tomorrow := baseTime.Add(24 * time.Hour)
	s.SetDueDate(item.ID, &tomorrow)
	require.NotNil(t, s.Items()[0].DueDate())
	assert.True(t, s.Items()[0].DueDate().Equal(tomorrow))
	assert.Equal(t, s.Items(), stored(t, kv))

	s.DeleteByID(item.ID)
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, stored(t, kv))
}

func TestReload_PreservesOrderAndState(t *testing.T) {
	kv := storage.NewMemory()
	s, _ := newSyncStore(t, kv)
	due := baseTime.Add(time.Hour)
	_, _ = s.Add("first", domain.KindNote, nil)
	task, _ := s.Add("second", domain.KindTask, &due)
	s.ToggleDone(task.ID)

	reloaded := New(context.Background(), kv, Options{SyncWrites: true})

	assert.Equal(t, s.Items(), reloaded.Items())
}

func TestReload_DueDatesInOtherZones(t *testing.T) {
	kv := storage.NewMemory()
	s, _ := newSyncStore(t, kv)
	cet := time.FixedZone("CET", 60*60)
	due := time.Date(2025, 1, 5, 17, 0, 0, 0, cet)

	added, err := s.Add("added with due", domain.KindTask, &due)
	require.NoError(t, err)
	updated, err := s.Add("updated with due", domain.KindTask, nil)
	require.NoError(t, err)
	require.NoError(t, s.Update(updated.ID, "updated with due", &due))
	set, err := s.Add("set due", domain.KindTask, nil)
	require.NoError(t, err)
	s.SetDueDate(set.ID, &due)

	for _, item := range s.Items() {
		require.NotNil(t, item.DueDate())
		assert.Equal(t, time.UTC, item.DueDate().Location(), item.Content)
		assert.True(t, item.DueDate().Equal(due), item.Content)
	}
	assert.Equal(t, time.UTC, added.DueDate().Location())

	reloaded := New(context.Background(), kv, Options{SyncWrites: true})
	assert.Equal(t, s.Items(), reloaded.Items())
}

func TestReload_YAMLCodec(t *testing.T) {
	kv := storage.NewMemory()
	s := New(context.Background(), kv, Options{Codec: codec.YAML{}, SyncWrites: true})
	_, err := s.Add("yaml note", domain.KindNote, nil)
	require.NoError(t, err)

	data, err := kv.Get(context.Background(), DefaultKey)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "- id:"))

	reloaded := New(context.Background(), kv, Options{Codec: codec.YAML{}, SyncWrites: true})
	assert.Equal(t, s.Items(), reloaded.Items())
}

func TestCorruptStorageScenario(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemory()
	require.NoError(t, kv.Put(ctx, DefaultKey, []byte(`{"this is": not json`)))

	var s *Store
	rec := &recorder{}
	require.NotPanics(t, func() {
		s = New(ctx, kv, Options{
			Clock:      func() time.Time { return baseTime },
			OnWarning:  rec.warn,
			SyncWrites: true,
		})
	})

	assert.Equal(t, 0, s.Len())
	require.Len(t, rec.Warnings(), 1)
	assert.True(t, errors.IsErrorType(rec.Warnings()[0], errors.ErrorTypeDecode))

	backups, err := kv.Keys(ctx, DefaultKey+".unreadable-")
	require.NoError(t, err)
	require.Equal(t, []string{"items.unreadable-1734426000"}, backups)
	preserved, err := kv.Get(ctx, backups[0])
	require.NoError(t, err)
	assert.Equal(t, `{"this is": not json`, string(preserved))

	_, err = s.Add("fresh start", domain.KindNote, nil)
	require.NoError(t, err)
	assert.Len(t, stored(t, kv), 1)
}

func TestCorruptStorage_BackupFails(t *testing.T) {
	ctx := context.Background()
	kv := &faultyKV{Memory: storage.NewMemory()}
	require.NoError(t, kv.Memory.Put(ctx, DefaultKey, []byte("garbage")))
	kv.putErr = stderrors.New("read-only file system")

	rec := &recorder{}
	s := New(ctx, kv, Options{OnWarning: rec.warn, SyncWrites: true})
	require.Len(t, rec.Warnings(), 2)

	kv.putErr = nil
	_, err := s.Add("new", domain.KindNote, nil)
	require.NoError(t, err)

	data, err := kv.Get(ctx, DefaultKey)
	require.NoError(t, err)
	assert.Equal(t, "garbage", string(data), "unreadable data must not be overwritten")
	assert.Len(t, rec.Warnings(), 3)
}

func TestReadFailure_DisablesWrites(t *testing.T) {
	ctx := context.Background()
	kv := &faultyKV{Memory: storage.NewMemory(), getErr: stderrors.New("database is locked")}

	rec := &recorder{}
	s := New(ctx, kv, Options{OnWarning: rec.warn, SyncWrites: true})
	require.Len(t, rec.Warnings(), 1)
	assert.True(t, errors.IsErrorType(rec.Warnings()[0], errors.ErrorTypeStorage))

	_, err := s.Add("in memory only", domain.KindNote, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 0, kv.Puts())
	assert.Len(t, rec.Warnings(), 2)
}

func TestEncodeFailure_SkipsWrite(t *testing.T) {
	kv := storage.NewMemory()
	rec := &recorder{}
	encodeErr := errors.NewEncodeError("items", stderrors.New("unrepresentable"))
	s := New(context.Background(), kv, Options{
		Codec:      failingCodec{err: encodeErr},
		OnWarning:  rec.warn,
		SyncWrites: true,
	})
	s.Subscribe(rec.observe)

	item, err := s.Add("kept in memory", domain.KindTask, nil)
	require.NoError(t, err)

	_, ok := s.Get(item.ID)
	assert.True(t, ok)
	assert.Equal(t, 0, kv.Puts())
	require.Len(t, rec.Warnings(), 1)
	assert.True(t, errors.IsErrorType(rec.Warnings()[0], errors.ErrorTypeEncode))
	assert.Len(t, rec.Events(), 1, "observers are still notified")
}

func TestWriteFailure_SyncMode(t *testing.T) {
	kv := &faultyKV{Memory: storage.NewMemory(), putErr: stderrors.New("disk full")}
	rec := &recorder{}
	s := New(context.Background(), kv, Options{OnWarning: rec.warn, SyncWrites: true})

	_, err := s.Add("x", domain.KindNote, nil)
	require.NoError(t, err)
	require.Len(t, rec.Warnings(), 1)
	assert.True(t, errors.IsErrorType(rec.Warnings()[0], errors.ErrorTypeStorage))

	flushErr := s.Flush(context.Background())
	assert.True(t, errors.IsErrorType(flushErr, errors.ErrorTypeStorage))

	kv.putErr = nil
	_, err = s.Add("y", domain.KindNote, nil)
	require.NoError(t, err)
	assert.NoError(t, s.Close(context.Background()))
	assert.Len(t, stored(t, kv), 2)
}

func TestItems_AreCopies(t *testing.T) {
	s, _ := newSyncStore(t, storage.NewMemory())
	due := baseTime
	task, err := s.Add("task", domain.KindTask, &due)
	require.NoError(t, err)

	task.Task.Done = true
	snapshot := s.Items()
	snapshot[0].Content = "changed"
	*snapshot[0].Task.DueDate = baseTime.Add(time.Hour)
	got, _ := s.Get(task.ID)
	got.Task.Done = true

	fresh := s.Items()[0]
	assert.Equal(t, "task", fresh.Content)
	assert.False(t, fresh.IsDone())
	assert.True(t, fresh.DueDate().Equal(baseTime))
}
