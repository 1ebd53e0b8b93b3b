package evaluation

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// TimestampLayout is the layout of the Timestamp column: YYYY-MM-DD HH:MM:SS.
const TimestampLayout = "2006-01-02 15:04:05"

// Store columns
const (
	ColEvaluator          = "Evaluator"
	ColEvaluatorID        = "Evaluator ID"
	ColGroup              = "Group"
	ColPeerName           = "Peer Name"
	ColPeerID             = "Peer ID"
	ColTimestamp          = "Timestamp"
	ColOverall            = "Overall Score"
	ColCommentLowGiven    = "Comment (Low Score Given)"
	ColCommentLowReceived = "Comment (Low Score Received)"
	ColSignature          = "Signature"
)

// Header returns the tabular store columns, in order.
func Header() []string {
	h := []string{ColEvaluator, ColEvaluatorID, ColGroup, ColPeerName, ColPeerID, ColTimestamp, ColOverall}
	h = append(h, Criteria[:]...)
	return append(h, ColCommentLowGiven, ColCommentLowReceived, ColSignature)
}

// Record returns the row as tabular values matching Header.
func (r Row) Record() []string {
	rec := []string{
		r.EvaluatorName,
		r.EvaluatorID,
		r.Group,
		r.PeerName,
		r.PeerID,
		r.Timestamp.Local().Format(TimestampLayout),
		strconv.FormatFloat(r.Overall, 'f', -1, 64),
	}
	for _, s := range r.Scores {
		rec = append(rec, strconv.Itoa(s))
	}
	return append(rec, r.CommentLowGiven, r.CommentLowReceived, r.Signature)
}

// Records returns the header followed by one record per row.
func Records(rows []Row) [][]string {
	out := make([][]string, 0, len(rows)+1)
	out = append(out, Header())
	for _, r := range rows {
		out = append(out, r.Record())
	}
	return out
}

// ParseRecords parses tabular records, the first of which is the header.
// Columns are looked up by name so extra or reordered columns are tolerated.
func ParseRecords(records [][]string) ([]Row, error) {
	if len(records) == 0 {
		return nil, nil
	}
	cols := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		cols[strings.TrimSpace(h)] = i
	}
	if _, ok := cols[ColEvaluatorID]; !ok {
		return nil, errors.Errorf("missing column %q", ColEvaluatorID)
	}

	rows := make([]Row, 0, len(records)-1)
	for i, rec := range records[1:] {
		if blankRecord(rec) { // eg: a row cleared by hand in the sheet
			continue
		}
		row, err := parseRecord(cols, rec)
		if err != nil {
			return nil, errors.Wrapf(err, "record %d", i+1)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func blankRecord(rec []string) bool {
	for _, v := range rec {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func parseRecord(cols map[string]int, rec []string) (Row, error) {
	get := func(col string) string {
		if i, ok := cols[col]; ok && i < len(rec) {
			return strings.TrimSpace(rec[i])
		}
		return ""
	}

	row := Row{
		EvaluatorName:      get(ColEvaluator),
		EvaluatorID:        get(ColEvaluatorID),
		Group:              get(ColGroup),
		PeerName:           get(ColPeerName),
		PeerID:             get(ColPeerID),
		CommentLowGiven:    get(ColCommentLowGiven),
		CommentLowReceived: get(ColCommentLowReceived),
		Signature:          get(ColSignature),
	}

	if ts := get(ColTimestamp); ts != "" {
		t, err := time.ParseInLocation(TimestampLayout, ts, time.Local)
		if err != nil {
			return Row{}, errors.Wrap(err, "parsing timestamp")
		}
		row.Timestamp = t
	}

	for i, c := range Criteria {
		v := get(c)
		if v == "" {
			continue
		}
		s, err := strconv.Atoi(v)
		if err != nil {
			return Row{}, errors.Wrapf(err, "parsing %q", c)
		}
		row.Scores[i] = s
	}

	if v := get(ColOverall); v != "" {
		o, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return Row{}, errors.Wrap(err, "parsing overall score")
		}
		row.Overall = o
	} else {
		row.Overall = OverallScore(row.Scores)
	}
	return row, nil
}
