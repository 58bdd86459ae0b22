// Package file stores each key as one file in a directory.
package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	apperrors "notes/internal/errors"
	"notes/internal/storage"
)

const tempPattern = ".tmp-*"

// KV keeps one file per key, named <key><ext>, inside a directory.
type KV struct {
	dir  string
	ext  string
	perm os.FileMode
}

// New creates the directory if needed and returns a file-backed KV.
// ext is appended to every key, for example ".json".
func New(dir, ext string, dirPerm os.FileMode) (*KV, error) {
	if dir == "" {
		return nil, apperrors.NewInvalidInputError("storage.dir", dir, "directory cannot be empty")
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		if os.IsPermission(err) {
			return nil, apperrors.NewPermissionError("create", dir)
		}
		return nil, apperrors.NewStorageError("create directory", err)
	}
	return &KV{dir: dir, ext: ext, perm: 0o600}, nil
}

// Path returns the file that holds key.
func (kv *KV) Path(key string) string {
	return filepath.Join(kv.dir, key+kv.ext)
}

func (kv *KV) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := storage.ValidateKey(key); err != nil {
		return nil, apperrors.NewInvalidInputError("key", key, err.Error())
	}

	data, err := os.ReadFile(kv.Path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, apperrors.NewStorageError("read "+key, err)
	}
	return data, nil
}

// Put writes to a temporary file in the same directory and renames it over
// the target, so readers see either the old or the new value.
func (kv *KV) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := storage.ValidateKey(key); err != nil {
		return apperrors.NewInvalidInputError("key", key, err.Error())
	}

	tmp, err := os.CreateTemp(kv.dir, key+tempPattern)
	if err != nil {
		return apperrors.NewStorageError("create temp file", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		cleanup()
		return apperrors.NewStorageError("write "+key, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return apperrors.NewStorageError("sync "+key, err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return apperrors.NewStorageError("close "+key, err)
	}
	if err := os.Chmod(tmpName, kv.perm); err != nil {
		cleanup()
		return apperrors.NewStorageError("chmod "+key, err)
	}
	if err := os.Rename(tmpName, kv.Path(key)); err != nil {
		cleanup()
		return apperrors.NewStorageError("rename "+key, err)
	}
	return nil
}

func (kv *KV) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := storage.ValidateKey(key); err != nil {
		return apperrors.NewInvalidInputError("key", key, err.Error())
	}
	if err := os.Remove(kv.Path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return apperrors.NewStorageError("delete "+key, err)
	}
	return nil
}

func (kv *KV) Keys(ctx context.Context, prefix string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(kv.dir)
	if err != nil {
		return nil, apperrors.NewStorageError("list "+kv.dir, err)
	}

	var keys []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, kv.ext) {
			continue
		}
		key := strings.TrimSuffix(name, kv.ext)
		if strings.Contains(key, ".tmp-") || !strings.HasPrefix(key, prefix) {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (kv *KV) Close() error {
	return nil
}

func (kv *KV) String() string {
	return fmt.Sprintf("file:%s/*%s", kv.dir, kv.ext)
}
