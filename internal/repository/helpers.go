package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"github.com/petcare/rfid-gateway/internal/database"
)

// uniqueViolation is the Postgres SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// getOne scans a single row into a T. A query that matches nothing yields
// (nil, nil) so callers can tell "absent" from a failed lookup.
func getOne[T any](ctx context.Context, db database.DBTX, query string, args ...any) (*T, error) {
	var row T
	err := db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	return false
}
