package migrations

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

//go:embed *.sql
var migrationsFS embed.FS

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// RunMigrations executes all pending migrations in version order.
// It refuses to run when an earlier migration was left dirty.
func RunMigrations(ctx context.Context, db *sql.DB, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}

	if err := createMigrationsTable(ctx, db); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	migrations, err := loadMigrations()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	applied, dirty, err := getAppliedMigrations(ctx, db)
	if err != nil {
		return fmt.Errorf("failed to get applied migrations: %w", err)
	}
	if len(dirty) > 0 {
		return fmt.Errorf("database is in a dirty state, failed migration(s): %v", dirty)
	}

	for _, migration := range migrations {
		if applied[migration.Version] {
			continue
		}
		if err := applyMigration(ctx, db, migration); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", migration.Version, err)
		}
		log.Debug("applied migration", zap.Int("version", migration.Version), zap.String("name", migration.Name))
	}

	return nil
}

// Migrations returns the embedded migrations sorted by version.
func Migrations() ([]Migration, error) {
	return loadMigrations()
}

func createMigrationsTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		dirty BOOLEAN NOT NULL DEFAULT FALSE
	)`
	_, err := db.ExecContext(ctx, query)
	return err
}

func loadMigrations() ([]Migration, error) {
	entries, err := migrationsFS.ReadDir(".")
	if err != nil {
		return nil, err
	}

	var migrations []Migration
	for _, entry := range entries {
		if !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}

		version := extractVersion(entry.Name())
		if version == 0 {
			continue
		}

		upSQL, err := migrationsFS.ReadFile(entry.Name())
		if err != nil {
			return nil, err
		}

		downFile := strings.Replace(entry.Name(), ".up.sql", ".down.sql", 1)
		downSQL, err := migrationsFS.ReadFile(downFile)
		if err != nil {
			return nil, err
		}

		migrations = append(migrations, Migration{
			Version: version,
			Name:    extractName(entry.Name()),
			Up:      string(upSQL),
			Down:    string(downSQL),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

func getAppliedMigrations(ctx context.Context, db *sql.DB) (map[int]bool, []int, error) {
	rows, err := db.QueryContext(ctx, "SELECT version, dirty FROM migrations ORDER BY version")
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	var dirty []int
	for rows.Next() {
		var version int
		var isDirty bool
		if err := rows.Scan(&version, &isDirty); err != nil {
			return nil, nil, err
		}
		if isDirty {
			dirty = append(dirty, version)
			continue
		}
		applied[version] = true
	}
	return applied, dirty, rows.Err()
}

// applyMigration marks the version dirty, runs the migration in a transaction
// and clears the mark. The mark survives only if the process dies mid-way or
// the rollback itself fails.
func applyMigration(ctx context.Context, db *sql.DB, migration Migration) error {
	if _, err := db.ExecContext(ctx, "INSERT INTO migrations (version, dirty) VALUES (?, TRUE)", migration.Version); err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return clearMark(ctx, db, migration.Version, err)
	}

	if _, err := tx.ExecContext(ctx, migration.Up); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return clearMark(ctx, db, migration.Version, err)
	}

	if err := tx.Commit(); err != nil {
		return clearMark(ctx, db, migration.Version, err)
	}

	_, err = db.ExecContext(ctx, "UPDATE migrations SET dirty = FALSE, applied_at = CURRENT_TIMESTAMP WHERE version = ?", migration.Version)
	return err
}

func clearMark(ctx context.Context, db *sql.DB, version int, cause error) error {
	if _, err := db.ExecContext(ctx, "DELETE FROM migrations WHERE version = ?", version); err != nil {
		return fmt.Errorf("%w (clearing dirty mark: %v)", cause, err)
	}
	return cause
}

func extractVersion(filename string) int {
	var version int
	fmt.Sscanf(filename, "%d_", &version)
	return version
}

func extractName(filename string) string {
	name := strings.TrimSuffix(filename, ".up.sql")
	if i := strings.Index(name, "_"); i >= 0 {
		return name[i+1:]
	}
	return name
}
