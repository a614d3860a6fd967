package mysql

import (
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

func Connect(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "connect to mysql")
	}
	return db, nil
}

// inTx runs fn inside a transaction, rolling back on error.
func inTx(db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.Beginx()
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "commit transaction")
}

const mysqlErrDuplicateEntry = 1062

// isDuplicateEntry reports whether err is a unique-constraint violation,
// optionally restricted to a specific index name.
func isDuplicateEntry(err error, indexName string) bool {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) || mysqlErr.Number != mysqlErrDuplicateEntry {
		return false
	}
	if indexName == "" {
		return true
	}
	return strings.Contains(mysqlErr.Message, indexName)
}

const mysqlErrRowReferenced = 1451

// isRowReferenced reports whether err is a foreign-key RESTRICT violation on
// delete.
func isRowReferenced(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlErrRowReferenced
}
