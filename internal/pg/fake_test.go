package pg

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeDB is an in-memory stand-in for a connection that honours
// ON CONFLICT DO NOTHING on the first argument and transaction boundaries.
type fakeDB struct {
	rows      map[uuid.UUID]bool
	failOn    uuid.UUID
	execSQL   []string
	begins    int
	commits   int
	rollbacks int
	beginErr  error
}

func newFakeDB() *fakeDB {
	return &fakeDB{rows: make(map[uuid.UUID]bool)}
}

func (db *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	db.execSQL = append(db.execSQL, sql)
	return pgconn.NewCommandTag("OK"), nil
}

func (db *fakeDB) Begin(ctx context.Context) (pgx.Tx, error) {
	if db.beginErr != nil {
		return nil, db.beginErr
	}
	db.begins++
	return &fakeTx{db: db, pending: make(map[uuid.UUID]bool)}, nil
}

type fakeTx struct {
	pgx.Tx
	db      *fakeDB
	pending map[uuid.UUID]bool
	done    bool
}

var errBoom = errors.New("boom")

func (tx *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	tx.db.execSQL = append(tx.db.execSQL, sql)
	id := args[0].(uuid.UUID)
	if id == tx.db.failOn {
		return pgconn.CommandTag{}, errBoom
	}
	if tx.db.rows[id] || tx.pending[id] {
		return pgconn.NewCommandTag("INSERT 0 0"), nil
	}
	tx.pending[id] = true
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (tx *fakeTx) Commit(ctx context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	for id := range tx.pending {
		tx.db.rows[id] = true
	}
	tx.db.commits++
	return nil
}

func (tx *fakeTx) Rollback(ctx context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.done = true
	tx.db.rollbacks++
	return nil
}
