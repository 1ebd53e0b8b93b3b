package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/peereval/core"
	"github.com/trezcool/peereval/core/evaluation"
)

const (
	selectRowsQuery = `SELECT
	evaluator_id, evaluator_name, group_name, peer_id, peer_name, submitted_at, overall_score,
	attendance, deadlines, quality, amount, attitude, comment_low_given, comment_low_received, signature
FROM evaluation_rows ORDER BY id`

	deleteRowsQuery = `DELETE FROM evaluation_rows`

	insertRowQuery = `INSERT INTO evaluation_rows (
	evaluator_id, evaluator_name, group_name, peer_id, peer_name, submitted_at, overall_score,
	attendance, deadlines, quality, amount, attitude, comment_low_given, comment_low_received, signature
) VALUES (
	:evaluator_id, :evaluator_name, :group_name, :peer_id, :peer_name, :submitted_at, :overall_score,
	:attendance, :deadlines, :quality, :amount, :attitude, :comment_low_given, :comment_low_received, :signature
)`
)

// evaluationRow maps a row of the evaluation_rows table.
type evaluationRow struct {
	EvaluatorID        string    `db:"evaluator_id"`
	EvaluatorName      string    `db:"evaluator_name"`
	Group              string    `db:"group_name"`
	PeerID             string    `db:"peer_id"`
	PeerName           string    `db:"peer_name"`
	SubmittedAt        time.Time `db:"submitted_at"`
	Overall            float64   `db:"overall_score"`
	Attendance         int       `db:"attendance"`
	Deadlines          int       `db:"deadlines"`
	Quality            int       `db:"quality"`
	Amount             int       `db:"amount"`
	Attitude           int       `db:"attitude"`
	CommentLowGiven    string    `db:"comment_low_given"`
	CommentLowReceived string    `db:"comment_low_received"`
	Signature          string    `db:"signature"`
}

func fromRow(r evaluation.Row) evaluationRow {
	return evaluationRow{
		EvaluatorID:        r.EvaluatorID,
		EvaluatorName:      r.EvaluatorName,
		Group:              r.Group,
		PeerID:             r.PeerID,
		PeerName:           r.PeerName,
		SubmittedAt:        r.Timestamp.UTC(),
		Overall:            r.Overall,
		Attendance:         r.Scores[0],
		Deadlines:          r.Scores[1],
		Quality:            r.Scores[2],
		Amount:             r.Scores[3],
		Attitude:           r.Scores[4],
		CommentLowGiven:    r.CommentLowGiven,
		CommentLowReceived: r.CommentLowReceived,
		Signature:          r.Signature,
	}
}

func (er evaluationRow) toRow() evaluation.Row {
	return evaluation.Row{
		EvaluatorID:        er.EvaluatorID,
		EvaluatorName:      er.EvaluatorName,
		Group:              er.Group,
		PeerID:             er.PeerID,
		PeerName:           er.PeerName,
		Timestamp:          er.SubmittedAt.Local(),
		Scores:             evaluation.Scores{er.Attendance, er.Deadlines, er.Quality, er.Amount, er.Attitude},
		Overall:            er.Overall,
		CommentLowGiven:    er.CommentLowGiven,
		CommentLowReceived: er.CommentLowReceived,
		Signature:          er.Signature,
	}
}

// EvaluationBackend stores the submission set in the evaluation_rows table.
type EvaluationBackend struct {
	db *sqlx.DB
}

var _ evaluation.Backend = (*EvaluationBackend)(nil) // interface compliance check

func NewEvaluationBackend(db *sqlx.DB) *EvaluationBackend {
	return &EvaluationBackend{db: db}
}

func (b *EvaluationBackend) ReadRows(ctx context.Context) ([]evaluation.Row, error) {
	var ers []evaluationRow
	if err := b.db.SelectContext(ctx, &ers, selectRowsQuery); err != nil {
		return nil, core.NewStoreConnectError(errors.Wrap(err, "selecting evaluation rows"))
	}
	rows := make([]evaluation.Row, 0, len(ers))
	for _, er := range ers {
		rows = append(rows, er.toRow())
	}
	return rows, nil
}

// WriteRows replaces the table content in a single transaction.
func (b *EvaluationBackend) WriteRows(ctx context.Context, rows []evaluation.Row) (err error) {
	tx, err := b.db.BeginTxx(ctx, nil)
	if err != nil {
		return core.NewStoreConnectError(errors.Wrap(err, "beginning transaction"))
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, deleteRowsQuery); err != nil {
		return errors.Wrap(err, "deleting evaluation rows")
	}
	stmt, err := tx.PrepareNamedContext(ctx, insertRowQuery)
	if err != nil {
		return errors.Wrap(err, "preparing insert")
	}
	defer func() { _ = stmt.Close() }()

	for _, r := range rows {
		if _, err = stmt.ExecContext(ctx, fromRow(r)); err != nil {
			return errors.Wrapf(err, "inserting row %s -> %s", r.EvaluatorID, r.PeerID)
		}
	}
	return errors.Wrap(tx.Commit(), "committing")
}
