package repository

import "database/sql"

// Querier is the subset of database/sql operations shared by *sql.DB and
// *sql.Tx. Repository methods take it as their first argument so the same
// query runs standalone or inside a rotation/reset transaction.
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)
