package postgres

import (
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	"jobportal/internal/common"
)

const uniqueViolation = "23505"

// isUniqueViolation understands errors from both supported drivers.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == uniqueViolation
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == uniqueViolation
	}
	return false
}

func writeError(err error, conflictMessage, failMessage string) error {
	if isUniqueViolation(err) {
		return common.NewError(common.CodeConflict, conflictMessage, err)
	}
	return common.NewError(common.CodeInternal, failMessage, err)
}

func readError(err error, notFoundMessage, failMessage string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.NewError(common.CodeNotFound, notFoundMessage, err)
	}
	return common.NewError(common.CodeInternal, failMessage, err)
}

func requireRows(result sql.Result, notFoundMessage string) error {
	rows, err := result.RowsAffected()
	if err == nil && rows == 0 {
		return common.NewError(common.CodeNotFound, notFoundMessage, sql.ErrNoRows)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}
