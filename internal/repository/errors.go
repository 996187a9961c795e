package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/puddle/v2"

	"tapp-club-backend/internal/errs"
)

// PostgreSQL SQLSTATE codes that the repositories re-map onto the error
// taxonomy instead of leaking raw driver errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// isPgCode reports whether err carries the given SQLSTATE.
func isPgCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

// storeErr classifies a driver error that no explicit check accounts for.
// Acquiring from a closed pool surfaces as Unavailable; everything else is
// an internal store failure.
func storeErr(op string, err error) error {
	if errors.Is(err, puddle.ErrClosedPool) {
		return errs.Wrap(errs.CodeUnavailable, "database is not available", err)
	}
	return errs.Internal("failed to "+op, err)
}
