// Package csvfile keeps the submission set in a single CSV file on the local disk.
package csvfile

import (
	"context"
	"encoding/csv"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/peereval/core"
	"github.com/trezcool/peereval/core/evaluation"
)

const bom = "\ufeff"

type DB struct {
	mu   sync.Mutex
	path string
}

var _ evaluation.Backend = (*DB)(nil) // interface compliance check

func Open(path string) *DB {
	return &DB{path: path}
}

func (db *DB) Path() string { return db.path }

// ReadRows reads the whole file. A missing file is an empty set.
func (db *DB) ReadRows(_ context.Context) ([]evaluation.Row, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	f, err := os.Open(db.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, core.NewStoreConnectError(err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "parsing "+db.path)
	}
	if len(records) > 0 && len(records[0]) > 0 {
		records[0][0] = strings.TrimPrefix(records[0][0], bom)
	}
	return evaluation.ParseRecords(records)
}

// WriteRows replaces the file content. The new content is written to a temporary file first,
// so readers never see a partially written set.
func (db *DB) WriteRows(_ context.Context, rows []evaluation.Row) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	dir := filepath.Dir(db.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return core.NewStoreConnectError(err)
	}
	tmp, err := ioutil.TempFile(dir, "."+filepath.Base(db.path)+".*")
	if err != nil {
		return core.NewStoreConnectError(err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }() // no-op once renamed

	w := csv.NewWriter(tmp)
	if err = w.WriteAll(evaluation.Records(rows)); err != nil {
		_ = tmp.Close()
		return core.NewStoreConnectError(errors.Wrap(err, "writing csv"))
	}
	if err = tmp.Close(); err != nil {
		return core.NewStoreConnectError(errors.Wrap(err, "closing csv"))
	}
	if err = os.Rename(tmp.Name(), db.path); err != nil {
		return core.NewStoreConnectError(errors.Wrap(err, "replacing "+db.path))
	}
	return nil
}
