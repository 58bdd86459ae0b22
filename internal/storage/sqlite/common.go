package sqlite

import (
	"context"
	"database/sql"
	stderrors "errors"

	"notes/internal/errors"
	"notes/internal/storage"
)

// HandleDatabaseError converts database errors to structured app errors
func HandleDatabaseError(operation string, err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.NewTimeoutError(operation, err.Error())
	}
	return errors.NewStorageError(operation, err)
}

// Execute runs a statement that returns no rows
func Execute(ctx context.Context, db *sql.DB, operation string, query string, args ...interface{}) error {
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return HandleDatabaseError(operation, err)
	}
	return nil
}

// QuerySingle executes a query that returns a single row and scans it.
// A missing row is reported as storage.ErrNotFound.
func QuerySingle[T any](ctx context.Context, db *sql.DB, query string, scanFunc func(Scanner) (*T, error), entityType string, args ...interface{}) (*T, error) {
	row := db.QueryRowContext(ctx, query, args...)
	result, err := scanFunc(row)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, HandleDatabaseError("scan "+entityType, err)
	}
	return result, nil
}

// QueryMultiple executes a query that returns multiple rows and scans them
func QueryMultiple[T any](ctx context.Context, db *sql.DB, query string, scanFunc func(Rows) ([]*T, error), entityType string, args ...interface{}) ([]*T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, HandleDatabaseError("query "+entityType, err)
	}
	defer rows.Close()

	results, err := scanFunc(rows)
	if err != nil {
		return nil, HandleDatabaseError("scan "+entityType, err)
	}

	return results, nil
}
