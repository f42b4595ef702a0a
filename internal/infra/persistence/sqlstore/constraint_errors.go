package sqlstore

import (
	"strings"

	domainerrors "userstore/internal/domain/errors"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// MySQL server error numbers that signal a rejected row rather than an unavailable server.
const (
	mysqlErrDupEntry           = 1062
	mysqlErrBadNull            = 1048
	mysqlErrNoDefaultForField  = 1364
	mysqlErrDataTooLong        = 1406
	mysqlErrCheckConstraintHit = 3819
)

// translateWriteError classifies a failed INSERT or UPDATE into a *StoreError.
func translateWriteError(err error, details string) error {
	switch {
	case isUniqueConstraintViolation(err):
		return domainerrors.NewStoreErrorOf(domainerrors.ErrUserAlreadyExists, err, details)
	case isNotNullConstraintViolation(err), isCheckConstraintViolation(err), isDataTooLong(err):
		return domainerrors.NewStoreErrorOf(domainerrors.ErrConstraintViolated, err, details)
	default:
		return domainerrors.NewStoreError(err, details)
	}
}

func isUniqueConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	return mysqlErrorNumber(err) == mysqlErrDupEntry
}

func isNotNullConstraintViolation(err error) bool {
	switch mysqlErrorNumber(err) {
	case mysqlErrBadNull, mysqlErrNoDefaultForField:
		return true
	}

	// PostgreSQL reports not_null_violation as SQLSTATE 23502.
	errMsg := strings.ToLower(err.Error())

	return strings.Contains(errMsg, "null value") || strings.Contains(errMsg, "23502")
}

func isCheckConstraintViolation(err error) bool {
	if errors.Is(err, gorm.ErrCheckConstraintViolated) {
		return true
	}

	return mysqlErrorNumber(err) == mysqlErrCheckConstraintHit
}

func isDataTooLong(err error) bool {
	if mysqlErrorNumber(err) == mysqlErrDataTooLong {
		return true
	}

	// PostgreSQL: string_data_right_truncation.
	return strings.Contains(err.Error(), "22001")
}

func mysqlErrorNumber(err error) uint16 {
	var mysqlErr *mysqldriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number
	}

	return 0
}
