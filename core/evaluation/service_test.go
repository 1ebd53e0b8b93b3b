package evaluation_test

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/peereval/core"
	"github.com/trezcool/peereval/core/evaluation"
	"github.com/trezcool/peereval/storage/inmem"
	"github.com/trezcool/peereval/tests"
)

func setupService(t *testing.T, enforceSignature bool) (*evaluation.Service, *inmemdb.DB) {
	conf := core.NewTestConfig()
	conf.Evaluation.EnforceSignatureMatch = enforceSignature
	logger := testutil.NewLogger(conf)
	validate, _ := testutil.NewValidator()

	db := inmemdb.Open()
	svc := evaluation.NewService(conf, testutil.Roster(t), evaluation.NewStore(db, logger), validate, logger)
	return svc, db
}

func TestService_Submit(t *testing.T) {
	ctx := context.Background()
	dir := testutil.Roster(t)
	ada := testutil.Student(t, dir, "100001")

	now := time.Date(2024, time.March, 4, 13, 5, 9, 123, time.Local)
	evaluation.NowFunc = func() time.Time { return now }
	defer func() { evaluation.NowFunc = time.Now }()

	t.Run("one row per group member", func(t *testing.T) {
		svc, db := setupService(t, false)

		for _, id := range []string{"100001", "100004", "100005"} { // groups of size 3, 1 and 2
			evaluator := testutil.Student(t, dir, id)
			rows, err := svc.Submit(ctx, evaluator, testutil.Submission(dir, evaluator, "", 0, 20, 40, 60, 80))
			require.NoError(t, err)

			members := dir.Group(evaluator.Group)
			require.Len(t, rows, len(members))
			var selfRows int
			for i, r := range rows {
				assert.Equal(t, members[i].ID, r.PeerID)
				assert.Equal(t, members[i].Name, r.PeerName)
				assert.Equal(t, evaluator.ID, r.EvaluatorID)
				assert.Equal(t, evaluator.Group, r.Group)
				assert.Equal(t, 40.0, r.Overall)
				assert.Equal(t, now.Truncate(time.Second), r.Timestamp)
				if r.IsSelf() {
					selfRows++
				}
			}
			assert.Equal(t, 1, selfRows)
		}

		stored, err := db.ReadRows(ctx)
		require.NoError(t, err)
		assert.Len(t, stored, 3+1+2)
	})

	t.Run("resubmission overwrites", func(t *testing.T) {
		svc, db := setupService(t, false)

		_, err := svc.Submit(ctx, ada, testutil.Submission(dir, ada, "", 10, 10, 10, 10, 10))
		require.NoError(t, err)
		want, err := svc.Submit(ctx, ada, testutil.Submission(dir, ada, "", 100, 100, 100, 100, 100))
		require.NoError(t, err)

		stored, err := db.ReadRows(ctx)
		require.NoError(t, err)
		assert.Equal(t, want, stored)
	})

	t.Run("out of range scores never reach the store", func(t *testing.T) {
		svc, db := setupService(t, false)

		for _, scores := range [][]int{{150, 0, 0, 0, 0}, {0, 0, 0, 0, -5}} {
			_, err := svc.Submit(ctx, ada, testutil.Submission(dir, ada, "", scores...))
			var verrs validator.ValidationErrors
			require.True(t, errors.As(err, &verrs), "want validation errors, got %v", err)
			assert.Equal(t, "score", verrs[0].Tag())
		}
		assert.Equal(t, 0, db.Writes())
	})

	t.Run("invalid submissions", func(t *testing.T) {
		svc, db := setupService(t, false)

		wrongLen := testutil.Submission(dir, ada, "")
		wrongLen.Evaluations[0].Scores = []int{50, 50}

		missing := testutil.Submission(dir, ada, "")
		missing.Evaluations = missing.Evaluations[:2]

		outsider := testutil.Submission(dir, ada, "")
		outsider.Evaluations[1].PeerID = "100004"

		duplicate := testutil.Submission(dir, ada, "")
		duplicate.Evaluations[1].PeerID = duplicate.Evaluations[0].PeerID

		tests := []struct {
			name    string
			ns      evaluation.NewSubmission
			wantMsg string
		}{
			{name: "missing member", ns: missing, wantMsg: "missing evaluation for Grace Hopper"},
			{name: "outsider", ns: outsider, wantMsg: `"100004" is not a member of your group`},
			{name: "duplicate", ns: duplicate, wantMsg: "100001 is evaluated more than once"},
			{name: "empty", ns: evaluation.NewSubmission{Evaluations: []evaluation.PeerEvaluation{}}, wantMsg: "missing evaluation for Ada Lovelace"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := svc.Submit(ctx, ada, tt.ns)
				var verr *core.ValidationError
				require.True(t, errors.As(err, &verr), "want ValidationError, got %v", err)
				require.Len(t, verr.Fields, 1)
				assert.Equal(t, tt.wantMsg, verr.Fields[0].Error)
			})
		}

		_, err := svc.Submit(ctx, ada, wrongLen)
		var verrs validator.ValidationErrors
		require.True(t, errors.As(err, &verrs), "want validation errors, got %v", err)
		assert.Equal(t, "len", verrs[0].Tag())

		assert.Equal(t, 0, db.Writes())
	})

	t.Run("signature", func(t *testing.T) {
		tests := []struct {
			name      string
			enforce   bool
			signature string
			wantErr   bool
		}{
			{name: "free text", signature: "whatever"},
			{name: "free text empty", signature: ""},
			{name: "enforced exact", enforce: true, signature: "Ada Lovelace"},
			{name: "enforced case insensitive", enforce: true, signature: "  ADA lovelace "},
			{name: "enforced mismatch", enforce: true, signature: "Alan Turing", wantErr: true},
			{name: "enforced empty", enforce: true, signature: "", wantErr: true},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				svc, db := setupService(t, tt.enforce)
				_, err := svc.Submit(ctx, ada, testutil.Submission(dir, ada, tt.signature))
				if !tt.wantErr {
					assert.NoError(t, err)
					return
				}
				var verr *core.ValidationError
				require.True(t, errors.As(err, &verr), "want ValidationError, got %v", err)
				assert.Equal(t, "signature", verr.Fields[0].Field)
				assert.Equal(t, 0, db.Writes())
			})
		}
	})

	t.Run("store failure", func(t *testing.T) {
		svc, db := setupService(t, false)
		db.ReadErr = core.NewStoreConnectError(errors.New("offline"))

		_, err := svc.Submit(ctx, ada, testutil.Submission(dir, ada, ""))
		assert.True(t, core.IsStoreConnect(err))
	})
}

func TestService_Preview(t *testing.T) {
	dir := testutil.Roster(t)
	ada := testutil.Student(t, dir, "100001")
	svc, db := setupService(t, false)

	ns := testutil.Submission(dir, ada, "")
	ns.Evaluations[1].Scores = []int{85, 90, 95, 100, 77}

	scores, err := svc.Preview(ada, ns)
	require.NoError(t, err)
	require.Len(t, scores, 3)
	assert.True(t, scores[0].IsSelf)
	assert.Equal(t, 80.0, scores[0].Overall)
	assert.Equal(t, "89.4", scores[1].Display)
	assert.Equal(t, 0, db.Writes())
}

func TestService_Form(t *testing.T) {
	ctx := context.Background()
	dir := testutil.Roster(t)
	ada := testutil.Student(t, dir, "100001")
	svc, _ := setupService(t, true)

	form := svc.Form(ctx, ada)
	assert.Equal(t, ada.ID, form.EvaluatorID)
	assert.Equal(t, evaluation.Criteria, form.Criteria)
	assert.Equal(t, 0, form.DefaultScore)
	assert.Equal(t, 5, form.ScoreStep)
	assert.Equal(t, "must match your name", form.SignatureRule)
	require.Len(t, form.Members, 3)
	assert.True(t, form.Members[0].IsSelf)
	assert.False(t, form.Members[1].IsSelf)
	assert.Empty(t, form.Previous)

	_, err := svc.Submit(ctx, ada, testutil.Submission(dir, ada, "Ada Lovelace", 100, 100, 100, 100, 100))
	require.NoError(t, err)

	form = svc.Form(ctx, ada)
	require.Len(t, form.Previous, 3)
	assert.Equal(t, 100.0, form.Previous["100002"].Overall)
}

func TestService_Summary(t *testing.T) {
	ctx := context.Background()
	dir := testutil.Roster(t)
	svc, _ := setupService(t, false)

	sum, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.True(t, sum.Empty())

	barbara := testutil.Student(t, dir, "100005")
	donald := testutil.Student(t, dir, "100006")
	_, err = svc.Submit(ctx, barbara, testutil.Submission(dir, barbara, "", 80, 80, 80, 80, 80))
	require.NoError(t, err)
	_, err = svc.Submit(ctx, donald, testutil.Submission(dir, donald, "", 100, 100, 100, 100, 100))
	require.NoError(t, err)

	sum, err = svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"Barbara Liskov": 90, "Donald Knuth": 90}, sum.Means())
}
