package config

import (
	"context"
	"fmt"
	"os"

	"notes/internal/codec"
	"notes/internal/storage"
	"notes/internal/storage/file"
	"notes/internal/storage/sqlite"

	"go.uber.org/zap"
)

// EnvVar selects the runtime environment.
const EnvVar = "NOTES_ENV"

// Environment represents the current environment
type Environment string

const (
	Development Environment = "development"
	Testing     Environment = "testing"
	Production  Environment = "production"
)

// GetEnvironment determines the current environment from NOTES_ENV.
// Anything unrecognised is treated as production.
func GetEnvironment() Environment {
	switch Environment(os.Getenv(EnvVar)) {
	case Development:
		return Development
	case Testing:
		return Testing
	default:
		return Production
	}
}

// StorageFactory creates key-value storage based on environment
type StorageFactory struct {
	env Environment
}

// NewStorageFactory creates a new storage factory for the given environment
func NewStorageFactory(env Environment) *StorageFactory {
	return &StorageFactory{env: env}
}

// CreateStorage opens the storage for the current environment.
// Development keeps its database in the working directory, testing stays in
// memory and production honours the configured backend.
func (sf *StorageFactory) CreateStorage(ctx context.Context, cfg *Config, log *zap.Logger) (storage.KV, error) {
	switch sf.env {
	case Development:
		kv, err := sqlite.Open(ctx, "notes.db", sqlite.Options{
			BusyTimeout: cfg.Storage.WriteTimeout,
			Logger:      log,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize development database: %w", err)
		}
		return kv, nil
	case Testing:
		return storage.NewMemory(), nil
	default:
		return CreateStorage(ctx, cfg, log)
	}
}

// CreateStorage opens the backend named by the configuration
func CreateStorage(ctx context.Context, cfg *Config, log *zap.Logger) (storage.KV, error) {
	switch cfg.Storage.Backend {
	case BackendMemory:
		return storage.NewMemory(), nil
	case BackendFile:
		format, err := codec.ParseFormat(cfg.Storage.Format)
		if err != nil {
			return nil, err
		}
		kv, err := file.New(cfg.Storage.Dir, format.Extension(), os.FileMode(cfg.Storage.DirPermissions))
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file storage: %w", err)
		}
		return kv, nil
	default:
		kv, err := sqlite.Open(ctx, cfg.GetDatabasePath(), sqlite.Options{
			BusyTimeout:    cfg.Storage.WriteTimeout,
			DirPermissions: os.FileMode(cfg.Storage.DirPermissions),
			Logger:         log,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		return kv, nil
	}
}
