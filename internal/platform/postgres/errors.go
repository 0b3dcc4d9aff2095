package postgres

import (
	"errors"
	"fmt"

	"github.com/askdoc/askdoc-api/internal/store"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL error codes we map to store-level errors.
const (
	pgUniqueViolationCode     = "23505"
	pgForeignKeyViolationCode = "23503"
	pgCheckViolationCode      = "23514"
)

// mapError converts low-level database errors into the store package's
// error taxonomy. Constraint violations become entity errors; anything
// else (connection refused, timeouts, failover) is treated as the store
// being unavailable, which callers surface as a retryable failure.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolationCode:
			return fmt.Errorf("%w: %s", store.ErrDuplicate, pgErr.ConstraintName)
		case pgForeignKeyViolationCode, pgCheckViolationCode:
			return fmt.Errorf("%w: %s", store.ErrInvalidEntity, pgErr.ConstraintName)
		}
		// Other server-side errors fall through to unavailable.
	}

	return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
}
