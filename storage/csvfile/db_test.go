package csvfile

import (
	"context"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/peereval/core"
	"github.com/trezcool/peereval/core/evaluation"
)

func testRows() []evaluation.Row {
	ts := time.Date(2021, 3, 1, 10, 30, 0, 0, time.Local)
	return []evaluation.Row{
		{
			EvaluatorID: "100001", EvaluatorName: "Ada Lovelace", Group: "1",
			PeerID: "100002", PeerName: "Alan Turing", Timestamp: ts,
			Scores: evaluation.Scores{80, 90, 100, 70, 60}, Overall: 80,
			CommentLowGiven: "missed, \"two\" meetings", Signature: "Ada Lovelace",
		},
		{
			EvaluatorID: "100001", EvaluatorName: "Ada Lovelace", Group: "1",
			PeerID: "100001", PeerName: "Ada Lovelace", Timestamp: ts,
			Scores: evaluation.Scores{100, 100, 100, 100, 95}, Overall: 99,
			Signature: "Ada Lovelace",
		},
	}
}

func TestDB_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db := Open(filepath.Join(t.TempDir(), "out", "evaluations.csv"))

	rows, err := db.ReadRows(ctx)
	require.NoError(t, err, "a missing file is an empty set")
	assert.Empty(t, rows)

	require.NoError(t, db.WriteRows(ctx, testRows()))
	rows, err = db.ReadRows(ctx)
	require.NoError(t, err)
	assert.Equal(t, testRows(), rows)

	// replaced wholesale
	require.NoError(t, db.WriteRows(ctx, testRows()[:1]))
	rows, err = db.ReadRows(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	// no temporary file left behind
	files, err := ioutil.ReadDir(filepath.Dir(db.Path()))
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestDB_ReadRows(t *testing.T) {
	header := "Evaluator,Evaluator ID,Group,Peer Name,Peer ID,Timestamp,Overall Score\n"
	tests := []struct {
		name    string
		content string
		want    int
		wantErr bool
	}{
		{name: "empty file", content: "", want: 0},
		{name: "header only", content: header, want: 0},
		{name: "with BOM", content: bom + header + "Ada,100001,1,Alan,100002,2021-03-01 10:30:00,80\n", want: 1},
		{name: "bad timestamp", content: header + "Ada,100001,1,Alan,100002,yesterday,80\n", wantErr: true},
		{name: "bad quoting", content: header + "\"Ada,100001\n", wantErr: true},
		{name: "foreign file", content: "a,b,c\n1,2,3\n", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "evaluations.csv")
			require.NoError(t, ioutil.WriteFile(path, []byte(tc.content), 0o644))

			rows, err := Open(path).ReadRows(context.Background())
			if tc.wantErr {
				assert.Error(t, err)
				assert.False(t, core.IsStoreConnect(err), "unreadable content is not a connection failure")
				return
			}
			require.NoError(t, err)
			assert.Len(t, rows, tc.want)
		})
	}
}

func TestDB_Unreachable(t *testing.T) {
	// a directory cannot be opened as a csv file
	dir := t.TempDir()
	path := filepath.Join(dir, "evaluations.csv")
	require.NoError(t, os.Mkdir(path, 0o755))

	_, err := Open(path).ReadRows(context.Background())
	if err == nil {
		// opening a directory succeeds on some platforms: reading it fails instead
		t.Skip("directory opened as a file")
	}
	assert.Error(t, err)
}

func TestDB_WriteRows_Unreachable(t *testing.T) {
	// the temporary file cannot replace a non-empty directory
	dir := t.TempDir()
	path := filepath.Join(dir, "evaluations.csv")
	require.NoError(t, os.Mkdir(path, 0o755))
	require.NoError(t, ioutil.WriteFile(filepath.Join(path, "keep"), []byte("x"), 0o644))

	err := Open(path).WriteRows(context.Background(), testRows())
	require.Error(t, err)
	assert.True(t, core.IsStoreConnect(err))

	// the temporary file is cleaned up
	entries, err := ioutil.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
