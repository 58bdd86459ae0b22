// Package sqlite stores key-value records in a single SQLite table.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"notes/internal/errors"
	"notes/internal/storage"
	"notes/internal/storage/sqlite/migrations"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// Options configures Open.
type Options struct {
	BusyTimeout    time.Duration
	DirPermissions os.FileMode
	Logger         *zap.Logger
}

// KV implements storage.KV on top of SQLite.
type KV struct {
	db  *sql.DB
	log *zap.Logger
	now func() time.Time
}

var _ storage.KV = (*KV)(nil)

// Open opens (creating if needed) the database at path and runs migrations.
func Open(ctx context.Context, path string, opts Options) (*KV, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	dsn := path
	if path != MemoryPath {
		perm := opts.DirPermissions
		if perm == 0 {
			perm = 0o755
		}
		if err := os.MkdirAll(filepath.Dir(path), perm); err != nil {
			if os.IsPermission(err) {
				return nil, errors.NewPermissionError("create", filepath.Dir(path))
			}
			return nil, errors.NewStorageError("create database directory", err)
		}
		if opts.BusyTimeout > 0 {
			dsn = fmt.Sprintf("%s?_pragma=busy_timeout(%d)", path, opts.BusyTimeout.Milliseconds())
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.NewStorageError("open database", err)
	}
	// One connection: a single writer, and :memory: databases are per connection.
	db.SetMaxOpenConns(1)

	if err := migrations.RunMigrations(ctx, db, log); err != nil {
		db.Close()
		return nil, errors.NewStorageError("run migrations", err)
	}

	log.Debug("opened sqlite storage", zap.String("path", path))
	return NewWithDB(db, log), nil
}

// NewWithDB wraps an already migrated database handle.
func NewWithDB(db *sql.DB, log *zap.Logger) *KV {
	if log == nil {
		log = zap.NewNop()
	}
	return &KV{db: db, log: log, now: time.Now}
}

// GetEntry returns the full row for key.
func (kv *KV) GetEntry(ctx context.Context, key string) (*Entry, error) {
	query := `
	SELECT key, value, updated_at
	FROM kv
	WHERE key = ?`

	return QuerySingle(ctx, kv.db, query, ScanEntry, "entry", key)
}

func (kv *KV) Get(ctx context.Context, key string) ([]byte, error) {
	entry, err := kv.GetEntry(ctx, key)
	if err != nil {
		return nil, err
	}
	kv.log.Debug("read key", zap.String("key", key), zap.Int("bytes", len(entry.Value)), zap.Time("updated_at", entry.UpdatedAt))
	return entry.Value, nil
}

func (kv *KV) Put(ctx context.Context, key string, value []byte) error {
	if err := storage.ValidateKey(key); err != nil {
		return errors.NewInvalidInputError("key", key, err.Error())
	}
	if value == nil {
		value = []byte{}
	}

	query := `
	INSERT INTO kv (key, value, updated_at)
	VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`

	if err := Execute(ctx, kv.db, "put "+key, query, key, value, FormatTimeForDB(kv.now())); err != nil {
		return err
	}
	kv.log.Debug("wrote key", zap.String("key", key), zap.Int("bytes", len(value)))
	return nil
}

func (kv *KV) Delete(ctx context.Context, key string) error {
	query := `DELETE FROM kv WHERE key = ?`
	return Execute(ctx, kv.db, "delete "+key, query, key)
}

func (kv *KV) Keys(ctx context.Context, prefix string) ([]string, error) {
	query := `
	SELECT key
	FROM kv
	WHERE substr(key, 1, length(?)) = ?
	ORDER BY key ASC`

	rows, err := QueryMultiple(ctx, kv.db, query, ScanKeys, "keys", prefix, prefix)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(rows))
	for _, k := range rows {
		keys = append(keys, *k)
	}
	return keys, nil
}

// Close closes the database connection
func (kv *KV) Close() error {
	return kv.db.Close()
}
