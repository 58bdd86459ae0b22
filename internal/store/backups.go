package store

import (
	"context"
	stderrors "errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"notes/internal/errors"
	"notes/internal/storage"

	"go.uber.org/zap"
)

const backupInfix = ".unreadable-"

// Backup is a copy of saved data that could not be decoded at load. The
// store never reads it back; it is kept for manual recovery.
type Backup struct {
	Key     string
	SavedAt time.Time
	Size    int
}

func (s *Store) backupPrefix() string {
	return s.key + backupInfix
}

// backupKey accepts a full backup key or just its timestamp suffix.
func (s *Store) backupKey(name string) (string, bool) {
	name = strings.TrimSpace(name)
	suffix := strings.TrimPrefix(name, s.backupPrefix())
	if _, err := strconv.ParseInt(suffix, 10, 64); err != nil {
		return "", false
	}
	return s.backupPrefix() + suffix, true
}

// Backups lists the preserved copies for this store's key, oldest first.
func (s *Store) Backups(ctx context.Context) ([]Backup, error) {
	keys, err := s.kv.Keys(ctx, s.backupPrefix())
	if err != nil {
		return nil, storageError("list backups", err)
	}

	backups := make([]Backup, 0, len(keys))
	for _, key := range keys {
		sec, err := strconv.ParseInt(strings.TrimPrefix(key, s.backupPrefix()), 10, 64)
		if err != nil {
			continue
		}
		data, err := s.kv.Get(ctx, key)
		if stderrors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, storageError("read "+key, err)
		}
		backups = append(backups, Backup{Key: key, SavedAt: time.Unix(sec, 0).UTC(), Size: len(data)})
	}

	sort.SliceStable(backups, func(i, j int) bool {
		return backups[i].SavedAt.Before(backups[j].SavedAt)
	})
	return backups, nil
}

// ReadBackup returns the preserved bytes of one backup.
func (s *Store) ReadBackup(ctx context.Context, name string) ([]byte, error) {
	key, ok := s.backupKey(name)
	if !ok {
		return nil, errors.NewNotFoundError("backup", name)
	}
	data, err := s.kv.Get(ctx, key)
	if stderrors.Is(err, storage.ErrNotFound) {
		return nil, errors.NewNotFoundError("backup", name)
	}
	if err != nil {
		return nil, storageError("read "+key, err)
	}
	return data, nil
}

// DeleteBackup discards one backup and returns its full key.
func (s *Store) DeleteBackup(ctx context.Context, name string) (string, error) {
	if _, err := s.ReadBackup(ctx, name); err != nil {
		return "", err
	}
	key, _ := s.backupKey(name)
	if err := s.kv.Delete(ctx, key); err != nil {
		return "", storageError("delete "+key, err)
	}
	s.log.Info("backup deleted", zap.String("backup_key", key))
	return key, nil
}

func storageError(operation string, err error) error {
	if errors.IsAppError(err) {
		return err
	}
	return errors.NewStorageError(operation, err)
}
