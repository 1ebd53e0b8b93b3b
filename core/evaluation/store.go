package evaluation

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/peereval/core"
)

// Backend is the durable home of the submission set.
// It has no per-row update primitive: the set is read and written as a whole.
type Backend interface {
	// ReadRows returns the whole submission set.
	// A *core.StoreConnectError means the backend could not be reached,
	// any other error means its content is absent or unreadable.
	ReadRows(ctx context.Context) ([]Row, error)

	// WriteRows replaces the whole submission set with rows.
	WriteRows(ctx context.Context, rows []Row) error
}

// Store persists evaluation rows with overwrite-by-evaluator semantics:
// the submission set holds at most one set of rows per evaluator.
//
// Save is a read-modify-write cycle with no locking: two evaluators saving at the same
// moment can race and the last writer wins for the whole set. The expected load
// (one classroom, staggered submissions) makes this acceptable.
type Store struct {
	backend Backend
	logger  core.Logger
}

func NewStore(backend Backend, logger core.Logger) *Store {
	return &Store{backend: backend, logger: logger}
}

// load reads the current set. Absent or unreadable content is an empty set, not an error.
func (s *Store) load(ctx context.Context) ([]Row, error) {
	rows, err := s.backend.ReadRows(ctx)
	if err != nil {
		if core.IsStoreConnect(err) {
			return nil, err
		}
		s.logger.Warn(fmt.Sprintf("submission set unreadable, starting from an empty set: %v", err), err)
		return nil, nil
	}
	return rows, nil
}

// Save replaces every row previously submitted by evaluatorID with newRows.
// newRows may be empty: the evaluator's prior rows are still cleared.
func (s *Store) Save(ctx context.Context, evaluatorID string, newRows []Row) error {
	for _, r := range newRows {
		if r.EvaluatorID != evaluatorID {
			return errors.Errorf("row evaluator %q does not match %q", r.EvaluatorID, evaluatorID)
		}
	}

	current, err := s.load(ctx)
	if err != nil {
		return errors.Wrap(err, "loading submission set")
	}

	final := make([]Row, 0, len(current)+len(newRows))
	for _, r := range current {
		if r.EvaluatorID != evaluatorID {
			final = append(final, r)
		}
	}
	final = append(final, newRows...)

	if err = s.backend.WriteRows(ctx, final); err != nil {
		return errors.Wrap(err, "writing submission set")
	}
	return nil
}

// Rows returns the whole submission set.
func (s *Store) Rows(ctx context.Context) ([]Row, error) {
	rows, err := s.load(ctx)
	return rows, errors.Wrap(err, "loading submission set")
}

// EvaluatorRows returns the rows currently recorded for evaluatorID.
func (s *Store) EvaluatorRows(ctx context.Context, evaluatorID string) ([]Row, error) {
	rows, err := s.Rows(ctx)
	if err != nil {
		return nil, err
	}
	var out []Row
	for _, r := range rows {
		if r.EvaluatorID == evaluatorID {
			out = append(out, r)
		}
	}
	return out, nil
}
