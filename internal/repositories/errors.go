package repositories

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// MySQL server error numbers the repositories translate
const (
	mysqlErrDuplicateEntry   = 1062
	mysqlErrNoReferencedRow2 = 1452
)

// isMySQLError reports whether err is a MySQL server error with the given number
func isMySQLError(err error, number uint16) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == number
}
