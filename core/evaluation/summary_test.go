package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	t.Run("mean across evaluators", func(t *testing.T) {
		rows := []Row{
			{EvaluatorID: "1", PeerID: "2", PeerName: "A", Overall: 80},
			{EvaluatorID: "3", PeerID: "2", PeerName: "A", Overall: 100},
		}
		sum := Summarize(rows)
		assert.Equal(t, map[string]float64{"A": 90}, sum.Means())

		mean, ok := sum.Lookup("A")
		assert.True(t, ok)
		assert.Equal(t, 90.0, mean)
	})

	t.Run("no data", func(t *testing.T) {
		sum := Summarize(nil)
		assert.True(t, sum.Empty())
		for _, peer := range []string{"A", "B", ""} {
			_, ok := sum.Lookup(peer)
			assert.False(t, ok, "Lookup(%q) should report no data", peer)
		}
		_, ok := Summary{}.Lookup("A")
		assert.False(t, ok)
	})

	t.Run("self score counts and is flagged", func(t *testing.T) {
		rows := []Row{
			{EvaluatorID: "1", PeerID: "1", PeerName: "A", Overall: 100},
			{EvaluatorID: "2", PeerID: "1", PeerName: "A", Overall: 50},
			{EvaluatorID: "1", PeerID: "2", PeerName: "B", Overall: 70},
		}
		sum := Summarize(rows)
		require.Len(t, sum.Peers, 2)

		a := sum.Peers[0]
		assert.Equal(t, "A", a.PeerName)
		assert.Equal(t, "1", a.PeerID)
		assert.Equal(t, 75.0, a.Mean)
		assert.Equal(t, 2, a.Count)
		require.NotNil(t, a.SelfScore)
		assert.Equal(t, 100.0, *a.SelfScore)
		assert.True(t, a.IncludesSelf())

		b := sum.Peers[1]
		assert.Equal(t, "B", b.PeerName)
		assert.Equal(t, 70.0, b.Mean)
		assert.Nil(t, b.SelfScore)
		assert.False(t, b.IncludesSelf())
	})
}
