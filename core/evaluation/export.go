package evaluation

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// NoData is reported by summaries with nothing recorded yet.
const NoData = "no data"

// Summary export columns
const (
	ColMeanScore   = "Mean Score"
	ColEvaluations = "Evaluations"
	ColSelfScore   = "Self Score"
)

// WriteRowsCSV writes the whole submission set as CSV, header first.
func WriteRowsCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(Records(rows)); err != nil {
		return errors.Wrap(err, "writing rows")
	}
	return nil
}

// WriteSummaryCSV writes one line per peer: name, ID, mean received score, number of evaluations
// and self score. An empty summary is written as a single NoData line.
func WriteSummaryCSV(w io.Writer, sum Summary) error {
	cw := csv.NewWriter(w)
	if sum.Empty() {
		_ = cw.Write([]string{NoData})
		cw.Flush()
		return errors.Wrap(cw.Error(), "writing summary")
	}

	records := make([][]string, 0, len(sum.Peers)+1)
	records = append(records, []string{ColPeerName, ColPeerID, ColMeanScore, ColEvaluations, ColSelfScore})
	for _, p := range sum.Peers {
		self := ""
		if p.SelfScore != nil {
			self = DisplayScore(*p.SelfScore)
		}
		records = append(records, []string{p.PeerName, p.PeerID, DisplayScore(p.Mean), strconv.Itoa(p.Count), self})
	}
	if err := cw.WriteAll(records); err != nil {
		return errors.Wrap(err, "writing summary")
	}
	return nil
}
