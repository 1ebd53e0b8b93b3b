package testutil

import (
	"io/ioutil"
	"log"
	"strings"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/peereval/core"
	"github.com/trezcool/peereval/core/evaluation"
	"github.com/trezcool/peereval/core/roster"
	"github.com/trezcool/peereval/services/logger"
)

// RosterCSV has three groups: "1" (3 members), "2" (1 member) and "3" (2 members).
const RosterCSV = `Student Name,Student ID,Group #,Email
Ada Lovelace,100001,1,ada@test.ca
Alan Turing,100002,1,alan@test.ca
Grace Hopper,100003,1,grace@test.ca
Edsger Dijkstra,100004,2,edsger@test.ca
Barbara Liskov,100005,3,barbara@test.ca
Donald Knuth,100006,3,donald@test.ca
`

func Roster(t *testing.T) *roster.Directory {
	t.Helper()
	dir, err := roster.Read(strings.NewReader(RosterCSV), true)
	if err != nil {
		t.Fatalf("Roster() failed: %v", err)
	}
	return dir
}

func Student(t *testing.T, dir *roster.Directory, id string) roster.Student {
	t.Helper()
	s, err := dir.GetByID(id)
	if err != nil {
		t.Fatalf("Student(%s) failed: %v", id, err)
	}
	return s
}

// NewLogger returns a disabled rollbar logger writing nowhere.
func NewLogger(conf *core.Config) core.Logger {
	logger := logsvc.NewRollbarLogger(log.New(ioutil.Discard, "", 0), conf)
	logger.Enable(false)
	return logger
}

// NewValidator returns a validator with every custom validation registered.
func NewValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	evaluation.InitValidators(validate, translator)
	return validate, translator
}

// Submission builds a submission giving the same scores to every member of the evaluator's group.
func Submission(dir *roster.Directory, evaluator roster.Student, signature string, scores ...int) evaluation.NewSubmission {
	if len(scores) == 0 {
		scores = []int{80, 80, 80, 80, 80}
	}
	ns := evaluation.NewSubmission{Signature: signature}
	for _, m := range dir.Group(evaluator.Group) {
		ns.Evaluations = append(ns.Evaluations, evaluation.PeerEvaluation{
			PeerID: m.ID,
			Scores: append([]int(nil), scores...),
		})
	}
	return ns
}
