package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"notes/internal/config"
	"notes/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNow = time.Date(2024, 12, 17, 9, 0, 0, 0, time.UTC)

// testEnv runs commands against one in-memory storage, each run in a fresh
// session as separate invocations would.
type testEnv struct {
	kv *storage.Memory
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	original := timeNow
	timeNow = func() time.Time { return testNow }
	t.Cleanup(func() { timeNow = original })
	t.Setenv("NOTES_DEBUG", "")
	return &testEnv{kv: storage.NewMemory()}
}

func (e *testEnv) run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Storage.Backend = config.BackendMemory
	cfg.Display.NoColor = true
	cfg.Display.Markdown = false

	open := func(ctx context.Context, cfg *config.Config, log *zap.Logger) (storage.KV, error) {
		return e.kv, nil
	}

	var out, errOut bytes.Buffer
	root := NewRootCommand(cfg, open, &out, &errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func (e *testEnv) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, err := e.run(t, args...)
	require.NoError(t, err, "stderr: %s", errOut)
	return out
}

func TestAddCommand(t *testing.T) {
	env := newTestEnv(t)

	out := env.mustRun(t, "add", "Garden", "ideas")
	assert.Contains(t, out, "✔ Added note #1: Garden ideas")

	out = env.mustRun(t, "add", "--task", "Call the bank")
	assert.Contains(t, out, "Added task #1: Call the bank")

	out = env.mustRun(t, "add", "--due", "tomorrow", "Pay rent")
	assert.Contains(t, out, "Added task #1: Pay rent (due Tomorrow)", "--due implies a task")

	out = env.mustRun(t, "list")
	assert.Contains(t, out, "1 notes · 2 tasks · 0 done")
}

func TestAddCommand_Errors(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"blank content", []string{"add", "   "}, "usage: notes add"},
		{"bad due date", []string{"add", "--due", "someday", "Pay rent"}, "failed to add item"},
		{"missing content", []string{"add"}, "requires at least 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := env.run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	out := env.mustRun(t, "list")
	assert.Contains(t, out, "No items found")
}

func TestListCommand(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "add", "Garden ideas")
	env.mustRun(t, "add", "--task", "Call the bank")

	out := env.mustRun(t, "list")
	assert.Contains(t, out, "1  ☐ Call the bank")
	assert.Contains(t, out, "2  • Garden ideas")
	assert.Less(t, strings.Index(out, "Call the bank"), strings.Index(out, "Garden ideas"), "newest first")

	out = env.mustRun(t, "list", "--view", "notes")
	assert.Contains(t, out, "2  • Garden ideas", "positions stay store positions")
	assert.NotContains(t, out, "Call the bank")

	out = env.mustRun(t, "ls", "--view", "tasks")
	assert.Contains(t, out, "Call the bank")
	assert.NotContains(t, out, "Garden ideas")

	out = env.mustRun(t, "list", "--columns")
	assert.Contains(t, out, "Call the bank")
	assert.Contains(t, out, "Garden ideas")

	_, _, err := env.run(t, "list", "--view", "archive")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "view must be one of")
}

func TestListCommand_SortByDue(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "add", "--due", "2024-12-20", "Second")
	env.mustRun(t, "add", "--task", "Undated")
	env.mustRun(t, "add", "--due", "2024-12-18", "First")
	env.mustRun(t, "add", "A note")

	out := env.mustRun(t, "list", "--sort", "due")

	first := strings.Index(out, "First")
	second := strings.Index(out, "Second")
	undated := strings.Index(out, "Undated")
	require.True(t, first >= 0 && second >= 0 && undated >= 0, out)
	assert.Less(t, first, second)
	assert.Less(t, second, undated)
	assert.NotContains(t, out, "A note", "sorting by due date lists tasks only")
	assert.Contains(t, out, "(due Tomorrow)")
	assert.Contains(t, out, "(due Dec 20)")
}

func TestListCommand_Group(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "add", "Garden ideas")
	env.mustRun(t, "add", "--task", "Call the bank")
	env.mustRun(t, "add", "--task", "Pay rent")
	env.mustRun(t, "done", "1")

	out := env.mustRun(t, "list", "--group")

	notes := strings.Index(out, "Notes 1")
	pending := strings.Index(out, "Pending 1")
	done := strings.Index(out, "Done 1")
	require.True(t, notes >= 0 && pending >= 0 && done >= 0, out)
	assert.Less(t, notes, pending)
	assert.Less(t, pending, done)
	assert.Contains(t, out, "☑ Pay rent")
}

func TestListCommand_Overdue(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "add", "--due", "2024-12-16", "Late")

	out := env.mustRun(t, "list")
	assert.Contains(t, out, "(overdue Dec 16)")
	assert.Contains(t, out, "1 overdue")
}

func TestDoneCommand(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "add", "Garden ideas")
	env.mustRun(t, "add", "--task", "Call the bank")

	out := env.mustRun(t, "done", "1")
	assert.Contains(t, out, "Completed: Call the bank")
	assert.Contains(t, env.mustRun(t, "list"), "☑ Call the bank")

	out = env.mustRun(t, "done", "1")
	assert.Contains(t, out, "Reopened: Call the bank")

	_, _, err := env.run(t, "done", "2")
	require.Error(t, err)
	assert.Equal(t, "failed to complete item: invalid input for ref: notes cannot be completed", err.Error())

	_, _, err = env.run(t, "done", "7")
	require.Error(t, err)
	assert.Equal(t, "failed to complete item: item not found: #7", err.Error())
}

func TestDueCommand(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "add", "--task", "Call the bank")

	out := env.mustRun(t, "due", "1", "2024-12-20", "17:00")
	assert.Contains(t, out, "Due Dec 20: Call the bank")

	out = env.mustRun(t, "due", "1", "none")
	assert.Contains(t, out, "Cleared due date: Call the bank")
	assert.NotContains(t, env.mustRun(t, "list"), "(due")

	env.mustRun(t, "add", "Garden ideas")
	_, _, err := env.run(t, "due", "1", "tomorrow")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "notes have no due date")
}

func TestEditCommand(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "add", "--due", "tomorrow", "Call the bank")

	out := env.mustRun(t, "edit", "1", "Call", "the", "bank", "about", "fees")
	assert.Contains(t, out, "Updated: Call the bank about fees")
	assert.Contains(t, env.mustRun(t, "list"), "(due Tomorrow)", "due date kept")

	env.mustRun(t, "edit", "--clear-due", "1", "Call the bank")
	assert.NotContains(t, env.mustRun(t, "list"), "(due")

	env.mustRun(t, "edit", "--due", "2024-12-20", "1", "Call the bank")
	assert.Contains(t, env.mustRun(t, "list"), "(due Dec 20)")

	_, _, err := env.run(t, "edit", "--due", "today", "--clear-due", "1", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot set and clear")
}

func TestDeleteCommand(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "add", "One")
	env.mustRun(t, "add", "Two")
	env.mustRun(t, "add", "--task", "Three")

	out := env.mustRun(t, "rm", "1", "3", "1")
	assert.Contains(t, out, "Deleted task: Three")
	assert.Contains(t, out, "Deleted note: One")
	assert.Equal(t, 2, strings.Count(out, "Deleted"), "duplicates are removed once")

	list := env.mustRun(t, "list")
	assert.Contains(t, list, "1  • Two")
	assert.NotContains(t, list, "One")

	_, _, err := env.run(t, "rm", "5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "item not found: #5")
	assert.Contains(t, env.mustRun(t, "list"), "Two", "nothing deleted on error")
}

func TestShowCommand(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "add", "--due", "tomorrow", "Pay rent\nbefore noon")

	out := env.mustRun(t, "show", "1")
	assert.Contains(t, out, "#1")
	assert.Contains(t, out, "task")
	assert.Contains(t, out, "pending")
	assert.Contains(t, out, "due Tomorrow")
	assert.Contains(t, out, "before noon")

	_, _, err := env.run(t, "show", "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to show item")
}

func TestExportCommand(t *testing.T) {
	env := newTestEnv(t)
	env.mustRun(t, "add", "Garden ideas")
	env.mustRun(t, "add", "--task", "Call the bank")

	out := env.mustRun(t, "export")
	assert.Contains(t, out, `"content": "Garden ideas"`)
	assert.Contains(t, out, `"kind": "task"`)

	out = env.mustRun(t, "export", "--format", "yaml")
	assert.Contains(t, out, "content: Garden ideas")

	out = env.mustRun(t, "export", "-f", "csv")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "position,id,kind,content,created_at,done,due_date", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1,"))
	assert.Contains(t, lines[1], ",task,Call the bank,")

	_, _, err := env.run(t, "export", "--format", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "supported formats are json, yaml, csv")
}

func TestGlobalFlags(t *testing.T) {
	env := newTestEnv(t)

	env.mustRun(t, "--storage-format", "yaml", "add", "Garden ideas")
	data, err := env.kv.Get(context.Background(), "items")
	require.NoError(t, err)
	assert.Contains(t, string(data), "content: Garden ideas")

	env.mustRun(t, "--storage-key", "work", "add", "Standup notes")
	_, err = env.kv.Get(context.Background(), "work")
	require.NoError(t, err)
	assert.NotContains(t, env.mustRun(t, "--storage-format", "yaml", "list"), "Standup notes")

	_, _, err = env.run(t, "--theme", "neon", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "display.theme")
}

func TestCorruptStorageWarns(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.kv.Put(context.Background(), "items", []byte("{not json")))

	out, errOut, err := env.run(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No items found")
	assert.Contains(t, errOut, "warning: Saved items could not be read")

	backups, err := env.kv.Keys(context.Background(), "items.unreadable-")
	require.NoError(t, err)
	require.Len(t, backups, 1)
	data, err := env.kv.Get(context.Background(), backups[0])
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data), "unreadable data is kept aside")
}

func TestBackupsCommand(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	out := env.mustRun(t, "backups")
	assert.Contains(t, out, "No backups found")

	require.NoError(t, env.kv.Put(ctx, "items", []byte("{not json")))
	env.mustRun(t, "list")
	require.NoError(t, env.kv.Put(ctx, "items", []byte("[]")))

	keys, err := env.kv.Keys(ctx, "items.unreadable-")
	require.NoError(t, err)
	require.Len(t, keys, 1)
	name := keys[0]

	out = env.mustRun(t, "backups")
	assert.Contains(t, out, "Backups 1")
	assert.Contains(t, out, name)
	assert.Contains(t, out, "9 bytes")

	out = env.mustRun(t, "backups", "--show", strings.TrimPrefix(name, "items.unreadable-"))
	assert.Equal(t, "{not json", out, "raw bytes for manual recovery")

	out = env.mustRun(t, "backups", "--delete", name)
	assert.Contains(t, out, "✔ Deleted backup: "+name)

	keys, err = env.kv.Keys(ctx, "items.unreadable-")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestBackupsCommand_Purge(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	require.NoError(t, env.kv.Put(ctx, "items.unreadable-1", []byte("a")))
	require.NoError(t, env.kv.Put(ctx, "items.unreadable-2", []byte("b")))

	out := env.mustRun(t, "backups", "--purge")
	assert.Contains(t, out, "Deleted backup: items.unreadable-1")
	assert.Contains(t, out, "Deleted backup: items.unreadable-2")

	keys, err := env.kv.Keys(ctx, "items.unreadable-")
	require.NoError(t, err)
	assert.Empty(t, keys)

	out = env.mustRun(t, "backups", "--purge")
	assert.Contains(t, out, "No backups found")
}

func TestBackupsCommand_Errors(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.kv.Put(context.Background(), "items.unreadable-1", []byte("a")))

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"show without name", []string{"backups", "--show"}, "usage: notes backups --show <name>"},
		{"delete without name", []string{"backups", "--delete"}, "usage: notes backups --delete <name...>"},
		{"unknown backup", []string{"backups", "--delete", "42"}, "failed to delete backup: backup not found: 42"},
		{"collection is not a backup", []string{"backups", "--show", "items"}, "backup not found: items"},
		{"name without action", []string{"backups", "1"}, "names are only used with --show or --delete"},
		{"conflicting actions", []string{"backups", "--show", "--purge", "1"}, "none of the others can be"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := env.run(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	_, err := env.kv.Get(context.Background(), "items.unreadable-1")
	assert.NoError(t, err, "failed commands leave backups alone")
}

func TestHelpDoesNotOpenStorage(t *testing.T) {
	var opened bool
	cfg := config.NewConfig()
	open := func(ctx context.Context, cfg *config.Config, log *zap.Logger) (storage.KV, error) {
		opened = true
		return storage.NewMemory(), nil
	}

	var out bytes.Buffer
	root := NewRootCommand(cfg, open, &out, &out)
	root.SetArgs([]string{"--help"})
	require.NoError(t, root.Execute())

	assert.False(t, opened)
	assert.Contains(t, out.String(), "notes keeps free-form notes and tasks")
}
