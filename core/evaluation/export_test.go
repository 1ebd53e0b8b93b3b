package evaluation

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteSummaryCSV(t *testing.T) {
	t.Run("no data", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteSummaryCSV(&buf, Summarize(nil)))
		assert.Equal(t, "no data\n", buf.String())
	})

	t.Run("one line per peer", func(t *testing.T) {
		rows := []Row{
			{EvaluatorID: "1", PeerID: "2", PeerName: "Bob", Overall: 80},
			{EvaluatorID: "2", PeerID: "2", PeerName: "Bob", Overall: 100},
			{EvaluatorID: "2", PeerID: "1", PeerName: "Alice", Overall: 72.5},
		}
		var buf bytes.Buffer
		require.NoError(t, WriteSummaryCSV(&buf, Summarize(rows)))
		want := "Peer Name,Peer ID,Mean Score,Evaluations,Self Score\n" +
			"Alice,1,72.5,1,\n" +
			"Bob,2,90.0,2,100.0\n"
		assert.Equal(t, want, buf.String())
	})
}

func TestWriteRowsCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRowsCSV(&buf, nil))
	assert.Equal(t, "Evaluator,Evaluator ID,Group,Peer Name,Peer ID,Timestamp,Overall Score,"+
		"Attendance at Meetings,Meeting Deadlines,Quality of Work,Amount of Work,Attitudes & Commitment,"+
		"Comment (Low Score Given),Comment (Low Score Received),Signature\n", buf.String())
}
