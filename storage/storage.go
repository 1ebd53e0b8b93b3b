// Package storage opens the configured submission store backend.
package storage

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/peereval/core"
	"github.com/trezcool/peereval/core/evaluation"
	"github.com/trezcool/peereval/storage/csvfile"
	"github.com/trezcool/peereval/storage/database"
	"github.com/trezcool/peereval/storage/sheets"
)

// Closer releases the resources held by a backend.
type Closer func() error

func noop() error { return nil }

// Open opens the backend named by conf.Store.Backend.
func Open(ctx context.Context, conf *core.Config) (evaluation.Backend, Closer, error) {
	switch conf.Store.Backend {
	case core.StoreCSV:
		return csvfile.Open(conf.Store.CSVPath), noop, nil
	case core.StoreSheets:
		db, err := sheetsdb.Open(ctx, conf)
		if err != nil {
			return nil, nil, errors.Wrap(err, "opening sheet")
		}
		return db, noop, nil
	case core.StorePostgres:
		db, err := SetUpDB(ctx, conf)
		if err != nil {
			return nil, nil, errors.Wrap(err, "setting up database")
		}
		return database.NewEvaluationBackend(db), db.Close, nil
	default:
		return nil, nil, errors.Errorf("unknown store backend %q", conf.Store.Backend)
	}
}

// SetUpDB creates the database if needed, connects to it and applies the migrations.
func SetUpDB(ctx context.Context, conf *core.Config) (*sqlx.DB, error) {
	if err := database.CreateIfNotExist(ctx, conf); err != nil {
		return nil, err
	}
	db, err := database.Open(conf)
	if err != nil {
		return nil, err
	}
	if err = database.Migrate(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
