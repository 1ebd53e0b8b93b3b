package evaluation

import (
	"time"

	"github.com/trezcool/peereval/core"
)

const NumCriteria = 5

// Score bounds and form affordances.
const (
	MinScore     = 0
	MaxScore     = 100
	DefaultScore = 0
	ScoreStep    = 5
)

// Criteria are the fixed evaluation criteria, in column order.
var Criteria = [NumCriteria]string{
	"Attendance at Meetings",
	"Meeting Deadlines",
	"Quality of Work",
	"Amount of Work",
	"Attitudes & Commitment",
}

// Notices shown on the evaluation form.
var (
	ConfidentialityNotice = "This evaluation is a secret vote. Don't show your vote to others, " +
		"nor try to see or discuss others' and yours votes. Please do not base your evaluations " +
		"on friendship or personality conflicts. Your identity will be kept strictly confidential."
	MultipleAttemptNotice = "Multiple submissions are allowed; only your most recent submission " +
		"will be recorded and used for grading."
)

type Scores [NumCriteria]int

// Row is one (evaluator, peer) evaluation as persisted in the submission set.
type Row struct {
	EvaluatorID        string    `json:"evaluator_id"`
	EvaluatorName      string    `json:"evaluator_name"`
	Group              string    `json:"group"`
	PeerID             string    `json:"peer_id"`
	PeerName           string    `json:"peer_name"`
	Timestamp          time.Time `json:"timestamp"`
	Scores             Scores    `json:"scores"`
	Overall            float64   `json:"overall_score"`
	CommentLowGiven    string    `json:"comment_low_given"`
	CommentLowReceived string    `json:"comment_low_received"`
	Signature          string    `json:"signature"`
}

// IsSelf reports whether the row is a self-evaluation.
func (r Row) IsSelf() bool { return r.EvaluatorID == r.PeerID }

// PeerEvaluation holds the scores given to one group member.
type PeerEvaluation struct {
	PeerID             string `json:"peer_id" validate:"notblank"`
	Scores             []int  `json:"scores" validate:"len=5,dive,score"`
	CommentLowGiven    string `json:"comment_low_given" validate:"max=2000"`
	CommentLowReceived string `json:"comment_low_received" validate:"max=2000"`
}

// NewSubmission contains everything an evaluator submits at once: one entry per group member.
type NewSubmission struct {
	Evaluations []PeerEvaluation `json:"evaluations" validate:"required,dive"`
	Signature   string           `json:"signature" validate:"max=200"`
}

func (ns *NewSubmission) Clean() {
	ns.Signature = core.CleanString(ns.Signature)
	for i := range ns.Evaluations {
		ev := &ns.Evaluations[i]
		ev.PeerID = core.CleanString(ev.PeerID)
		ev.CommentLowGiven = core.CleanString(ev.CommentLowGiven)
		ev.CommentLowReceived = core.CleanString(ev.CommentLowReceived)
	}
}

// Member is a group member as shown on the form.
type Member struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsSelf bool   `json:"is_self"`
}

// Form describes what an evaluator has to fill in.
type Form struct {
	EvaluatorID   string                  `json:"evaluator_id"`
	EvaluatorName string                  `json:"evaluator_name"`
	Group         string                  `json:"group"`
	Members       []Member                `json:"members"`
	Criteria      [NumCriteria]string     `json:"criteria"`
	MinScore      int                     `json:"min_score"`
	MaxScore      int                     `json:"max_score"`
	DefaultScore  int                     `json:"default_score"`
	ScoreStep     int                     `json:"score_step"`
	SignatureRule string                  `json:"signature_rule"`
	Notices       []string                `json:"notices"`
	Previous      map[string]PreviousEval `json:"previous,omitempty"` // by peer ID
}

// PreviousEval is the evaluator's currently recorded evaluation of a peer.
type PreviousEval struct {
	Scores             Scores  `json:"scores"`
	Overall            float64 `json:"overall_score"`
	CommentLowGiven    string  `json:"comment_low_given"`
	CommentLowReceived string  `json:"comment_low_received"`
}

// MemberScore is the computed average of one member's scores.
type MemberScore struct {
	PeerID   string  `json:"peer_id"`
	PeerName string  `json:"peer_name"`
	IsSelf   bool    `json:"is_self"`
	Overall  float64 `json:"overall_score"`
	Display  string  `json:"display"`
}
