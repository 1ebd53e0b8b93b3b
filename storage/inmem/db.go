// Package inmemdb is a process-local submission backend, used in DEV and tests.
package inmemdb

import (
	"context"
	"sync"

	"github.com/trezcool/peereval/core/evaluation"
)

// DB keeps the submission set in memory. Failures can be injected with ReadErr and WriteErr.
type DB struct {
	mu     sync.RWMutex
	rows   []evaluation.Row
	writes int

	ReadErr  error
	WriteErr error
}

var _ evaluation.Backend = (*DB)(nil) // interface compliance check

func Open(rows ...evaluation.Row) *DB {
	db := &DB{}
	db.rows = append(db.rows, rows...)
	return db
}

func (db *DB) ReadRows(_ context.Context) ([]evaluation.Row, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	if db.ReadErr != nil {
		return nil, db.ReadErr
	}
	rows := make([]evaluation.Row, len(db.rows))
	copy(rows, db.rows)
	return rows, nil
}

func (db *DB) WriteRows(_ context.Context, rows []evaluation.Row) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.WriteErr != nil {
		return db.WriteErr
	}
	db.rows = make([]evaluation.Row, len(rows))
	copy(db.rows, rows)
	db.writes++
	return nil
}

// Writes returns how many times the whole set was written.
func (db *DB) Writes() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return db.writes
}
