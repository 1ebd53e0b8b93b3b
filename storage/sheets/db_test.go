package sheetsdb

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/peereval/core"
	"github.com/trezcool/peereval/core/evaluation"
)

type fakeAPI struct {
	values    [][]interface{}
	getErr    error
	clearErr  error
	updateErr error
	calls     []string
}

func (f *fakeAPI) Get(_ context.Context, _, rng string) ([][]interface{}, error) {
	f.calls = append(f.calls, "get "+rng)
	return f.values, f.getErr
}

func (f *fakeAPI) Clear(_ context.Context, _, rng string) error {
	f.calls = append(f.calls, "clear "+rng)
	if f.clearErr != nil {
		return f.clearErr
	}
	f.values = nil
	return nil
}

func (f *fakeAPI) Update(_ context.Context, _, rng string, values [][]interface{}) error {
	f.calls = append(f.calls, "update "+rng)
	if f.updateErr != nil {
		return f.updateErr
	}
	f.values = values
	return nil
}

func TestDB_RoundTrip(t *testing.T) {
	ctx := context.Background()
	api := new(fakeAPI)
	db := newDB(api, "sheet-id", "")

	rows, err := db.ReadRows(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	want := []evaluation.Row{{
		EvaluatorID: "100001", EvaluatorName: "Ada Lovelace", Group: "1",
		PeerID: "100002", PeerName: "Alan Turing",
		Timestamp: time.Date(2021, 3, 1, 10, 30, 0, 0, time.Local),
		Scores:    evaluation.Scores{80, 90, 100, 70, 60}, Overall: 80,
	}}
	require.NoError(t, db.WriteRows(ctx, want))
	assert.Equal(t, []string{"get Sheet1", "clear Sheet1", "update Sheet1!A1"}, api.calls)
	assert.Equal(t, evaluation.ColEvaluator, api.values[0][0])

	rows, err = db.ReadRows(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, rows)
}

func TestDB_NumericCells(t *testing.T) {
	// numeric cells decoded from JSON are float64
	header := evaluation.Header()
	rec := make([]interface{}, len(header))
	for i := range rec {
		rec[i] = ""
	}
	rec[1] = float64(100123456)
	rec[6] = 72.5
	rec[7] = float64(80)
	hdr := make([]interface{}, len(header))
	for i, h := range header {
		hdr[i] = h
	}

	db := newDB(&fakeAPI{values: [][]interface{}{hdr, rec}}, "sheet-id", "Results")
	rows, err := db.ReadRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "100123456", rows[0].EvaluatorID)
	assert.Equal(t, 72.5, rows[0].Overall)
	assert.Equal(t, 80, rows[0].Scores[0])
}

func TestDB_Unreachable(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("googleapi: Error 503")

	db := newDB(&fakeAPI{getErr: boom}, "sheet-id", "Sheet1")
	_, err := db.ReadRows(ctx)
	assert.True(t, core.IsStoreConnect(err))

	db = newDB(&fakeAPI{clearErr: boom}, "sheet-id", "Sheet1")
	assert.True(t, core.IsStoreConnect(db.WriteRows(ctx, nil)))

	api := &fakeAPI{updateErr: boom}
	db = newDB(api, "sheet-id", "Sheet1")
	err = db.WriteRows(ctx, nil)
	assert.True(t, core.IsStoreConnect(err))
	assert.Equal(t, []string{"clear Sheet1", "update Sheet1!A1"}, api.calls)
}

func TestCellString(t *testing.T) {
	tests := []struct {
		in   interface{}
		want string
	}{
		{"Ada Lovelace", "Ada Lovelace"},
		{float64(100123456), "100123456"},
		{72.5, "72.5"},
		{true, "true"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, cellString(tc.in))
	}
}
