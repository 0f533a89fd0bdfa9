package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"
	pkgerrors "github.com/verifi-app/verifi-backend/pkg/errors"
	"gorm.io/gorm"
)

// Classify maps driver errors onto the application error codes: constraint
// faults become validation (or conflict for duplicate keys) errors, transient
// I/O becomes a retryable dependency error.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if pkgerrors.As(err) != nil {
		return err
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, sql.ErrNoRows):
		return pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "record not found")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, driver.ErrBadConn), errors.Is(err, sql.ErrConnDone):
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store unavailable")
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return classifySQLite(liteErr)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return classifyPostgres(pgErr)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store unavailable")
	}

	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store statement failed")
}

func classifySQLite(err sqlite3.Error) error {
	switch err.Code {
	case sqlite3.ErrConstraint:
		switch err.ExtendedCode {
		case sqlite3.ErrConstraintPrimaryKey, sqlite3.ErrConstraintUnique:
			return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "duplicate key")
		case sqlite3.ErrConstraintForeignKey:
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "referenced row does not exist")
		case sqlite3.ErrConstraintNotNull:
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "required field is missing")
		default:
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "constraint violated")
		}
	case sqlite3.ErrBusy, sqlite3.ErrLocked, sqlite3.ErrIoErr, sqlite3.ErrFull, sqlite3.ErrCantOpen:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store unavailable")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store statement failed")
}

func classifyPostgres(err *pgconn.PgError) error {
	switch {
	case err.Code == "23505":
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "duplicate key")
	case err.Code == "23503":
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "referenced row does not exist")
	case err.Code == "23502":
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "required field is missing")
	case strings.HasPrefix(err.Code, "23"):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "constraint violated")
	case strings.HasPrefix(err.Code, "08"), strings.HasPrefix(err.Code, "57P"), err.Code == "40001", err.Code == "40P01":
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store unavailable")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store statement failed")
}

// IsUniqueViolation reports whether err is a duplicate-key fault on either engine.
func IsUniqueViolation(err error) bool {
	return pkgerrors.IsCode(Classify(err), pkgerrors.CodeConflict)
}
