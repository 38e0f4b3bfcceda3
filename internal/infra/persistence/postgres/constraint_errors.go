package postgres

import (
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation  = "23505"
	pgNotNullViolation = "23502"
	pgCheckViolation   = "23514"
	pgValueTooLong     = "22001"
)

// Helper functions for constraint error checking. gorm translates most driver
// errors when TranslateError is on; the pgconn code covers sessions where it is not.
func isUniqueConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	if pgErr := asPgError(err); pgErr != nil {
		return pgErr.Code == pgUniqueViolation
	}

	// sqlite without translation
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func isNotNullConstraintViolation(err error) bool {
	if pgErr := asPgError(err); pgErr != nil {
		return pgErr.Code == pgNotNullViolation
	}

	return strings.Contains(err.Error(), "NOT NULL constraint failed")
}

func isCheckConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}

	if pgErr := asPgError(err); pgErr != nil {
		return pgErr.Code == pgCheckViolation
	}

	return strings.Contains(err.Error(), "CHECK constraint failed")
}

// isValueTooLong reports a string wider than its VARCHAR column. sqlite does
// not enforce declared lengths, so only the postgres code is checked.
func isValueTooLong(err error) bool {
	pgErr := asPgError(err)

	return pgErr != nil && pgErr.Code == pgValueTooLong
}

// isInputRejected groups the failures caused by the row content rather than the store.
func isInputRejected(err error) bool {
	return isNotNullConstraintViolation(err) || isCheckConstraintViolation(err) || isValueTooLong(err)
}

func asPgError(err error) *pgconn.PgError {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr
	}

	return nil
}
