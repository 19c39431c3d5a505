package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/smallbiznis/bullionbook/pkg/apperror"
	"gorm.io/gorm"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

func IsDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}

	msg := err.Error()
	switch {
	case strings.Contains(msg, "duplicate key value violates unique constraint"):
		return true
	case strings.Contains(msg, "Error 1062"):
		return true
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return true
	}
	return false
}

// TranslateError maps storage errors onto the application error kinds. Errors that
// already carry a kind pass through untouched.
func TranslateError(err error, notFound error) error {
	if err == nil {
		return nil
	}
	var tagged *apperror.Error
	if errors.As(err, &tagged) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if notFound != nil {
			return notFound
		}
		return apperror.New(apperror.KindNotFound, "not_found")
	}
	if IsDuplicateKeyErr(err) {
		return apperror.Wrap(apperror.KindConflict, "duplicate_record", err)
	}
	return apperror.Wrap(apperror.KindInternal, "storage_failure", err)
}
