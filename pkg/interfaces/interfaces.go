package interfaces

import "github.com/jackc/pgx/v5"

type UoW interface {
	Begin() (pgx.Tx, error)
	Commit() error
	Rollback() error
	GetTx() pgx.Tx
	Finalize(err *error)
}

type Event interface {
	GetType() string
}
