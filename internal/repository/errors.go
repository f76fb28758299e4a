// Package repository contains the MySQL data access layer.  Repositories
// translate driver failures into the sentinel values below so services can
// tell "row missing" apart from "constraint violated" without knowing SQL.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"
)

var (
	// ErrNotFound is returned when the addressed row does not exist or is
	// not visible to the caller (e.g. a booking owned by another user).
	ErrNotFound = errors.New("not found")

	// ErrDuplicate signals a unique key violation (MySQL 1062).
	ErrDuplicate = errors.New("duplicate entry")

	// ErrInUse is returned when a delete is rejected because other rows
	// still reference the target (MySQL 1451).
	ErrInUse = errors.New("row is referenced by other rows")

	// ErrBadReference is returned when an insert or update points at a
	// parent row that does not exist (MySQL 1452).
	ErrBadReference = errors.New("referenced row does not exist")

	// ErrConflict signals that a conditional update matched no row because
	// the state changed underneath the caller.
	ErrConflict = errors.New("conflict")
)

const (
	mysqlDupEntry        = 1062
	mysqlRowIsReferenced = 1451
	mysqlNoReferencedRow = 1452
)

// translate maps driver errors onto the package sentinels.  Unknown errors
// are returned unchanged.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		switch me.Number {
		case mysqlDupEntry:
			return ErrDuplicate
		case mysqlRowIsReferenced:
			return ErrInUse
		case mysqlNoReferencedRow:
			return ErrBadReference
		}
	}
	return err
}

// expectOne turns a zero-row update or delete into ErrNotFound.
func expectOne(res sql.Result, err error) error {
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// exists reports whether table has a row with the given id.  table is
// always a package constant, never user input.
func exists(ctx context.Context, q querier, table string, id uint64) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id = ? LIMIT 1", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
