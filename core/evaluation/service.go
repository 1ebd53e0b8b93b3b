package evaluation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/peereval/core"
	"github.com/trezcool/peereval/core/roster"
)

var (
	NowFunc = time.Now // mockable

	// errors
	errMissingMember   = "missing evaluation for %s"
	errUnknownMember   = "%q is not a member of your group"
	errDuplicateMember = "%s is evaluated more than once"
	errSignature       = "signature must match your name"
)

type Service struct {
	dir              *roster.Directory
	store            *Store
	validate         *validator.Validate
	logger           core.Logger
	enforceSignature bool
}

func NewService(
	conf *core.Config,
	dir *roster.Directory,
	store *Store,
	validate *validator.Validate,
	logger core.Logger,
) *Service {
	return &Service{
		dir:              dir,
		store:            store,
		validate:         validate,
		logger:           logger,
		enforceSignature: conf.Evaluation.EnforceSignatureMatch,
	}
}

// Form returns the form the evaluator has to fill in: one entry per group member, themselves included.
// Previously recorded scores are attached when the store can be read.
func (svc *Service) Form(ctx context.Context, evaluator roster.Student) Form {
	form := Form{
		EvaluatorID:   evaluator.ID,
		EvaluatorName: evaluator.Name,
		Group:         evaluator.Group,
		Criteria:      Criteria,
		MinScore:      MinScore,
		MaxScore:      MaxScore,
		DefaultScore:  DefaultScore,
		ScoreStep:     ScoreStep,
		SignatureRule: "free text",
		Notices:       []string{ConfidentialityNotice, MultipleAttemptNotice},
	}
	if svc.enforceSignature {
		form.SignatureRule = "must match your name"
	}
	for _, m := range svc.dir.Group(evaluator.Group) {
		form.Members = append(form.Members, Member{ID: m.ID, Name: m.Name, IsSelf: m.ID == evaluator.ID})
	}

	rows, err := svc.store.EvaluatorRows(ctx, evaluator.ID)
	if err != nil {
		svc.logger.Warn(fmt.Sprintf("loading previous evaluations: %v", err), err, evaluator)
		return form
	}
	if len(rows) > 0 {
		form.Previous = make(map[string]PreviousEval, len(rows))
		for _, r := range rows {
			form.Previous[r.PeerID] = PreviousEval{
				Scores:             r.Scores,
				Overall:            r.Overall,
				CommentLowGiven:    r.CommentLowGiven,
				CommentLowReceived: r.CommentLowReceived,
			}
		}
	}
	return form
}

// Preview validates a submission and returns each member's average without saving anything.
func (svc *Service) Preview(evaluator roster.Student, ns NewSubmission) ([]MemberScore, error) {
	rows, err := svc.prepare(evaluator, ns)
	if err != nil {
		return nil, err
	}
	return MemberScores(rows), nil
}

// MemberScores returns the overall score of each row's peer, in row order.
func MemberScores(rows []Row) []MemberScore {
	scores := make([]MemberScore, 0, len(rows))
	for _, r := range rows {
		scores = append(scores, MemberScore{
			PeerID:   r.PeerID,
			PeerName: r.PeerName,
			IsSelf:   r.IsSelf(),
			Overall:  r.Overall,
			Display:  DisplayScore(r.Overall),
		})
	}
	return scores
}

// Submit validates a submission and replaces the evaluator's previously recorded rows with it.
// Invalid submissions never reach the store.
func (svc *Service) Submit(ctx context.Context, evaluator roster.Student, ns NewSubmission) ([]Row, error) {
	rows, err := svc.prepare(evaluator, ns)
	if err != nil {
		return nil, err
	}
	if err = svc.store.Save(ctx, evaluator.ID, rows); err != nil {
		return nil, errors.Wrap(err, "saving submission")
	}
	svc.logger.Info(fmt.Sprintf("evaluation submitted by %s (group %s): %d rows", evaluator.ID, evaluator.Group, len(rows)))
	return rows, nil
}

// Rows returns every recorded evaluation.
func (svc *Service) Rows(ctx context.Context) ([]Row, error) {
	return svc.store.Rows(ctx)
}

// Summary aggregates every recorded evaluation by recipient.
func (svc *Service) Summary(ctx context.Context) (Summary, error) {
	rows, err := svc.store.Rows(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(rows), nil
}

// prepare validates ns and builds one row per group member, in roster order.
func (svc *Service) prepare(evaluator roster.Student, ns NewSubmission) ([]Row, error) {
	ns.Clean()
	if err := svc.validate.Struct(ns); err != nil {
		return nil, err
	}

	if svc.enforceSignature && !strings.EqualFold(ns.Signature, evaluator.Name) {
		return nil, core.NewValidationError(nil, core.FieldError{Field: "signature", Error: errSignature})
	}

	members := svc.dir.Group(evaluator.Group)
	inGroup := make(map[string]bool, len(members))
	for _, m := range members {
		inGroup[m.ID] = true
	}

	byPeer := make(map[string]PeerEvaluation, len(ns.Evaluations))
	for _, ev := range ns.Evaluations {
		if !inGroup[ev.PeerID] {
			return nil, core.NewValidationError(nil, core.FieldError{
				Field: "evaluations",
				Error: fmt.Sprintf(errUnknownMember, ev.PeerID),
			})
		}
		if _, dup := byPeer[ev.PeerID]; dup {
			return nil, core.NewValidationError(nil, core.FieldError{
				Field: "evaluations",
				Error: fmt.Sprintf(errDuplicateMember, ev.PeerID),
			})
		}
		byPeer[ev.PeerID] = ev
	}

	now := NowFunc().Truncate(time.Second)
	rows := make([]Row, 0, len(members))
	for _, m := range members {
		ev, ok := byPeer[m.ID]
		if !ok {
			return nil, core.NewValidationError(nil, core.FieldError{
				Field: "evaluations",
				Error: fmt.Sprintf(errMissingMember, m.Name),
			})
		}

		var scores Scores
		for i, s := range ev.Scores {
			if !inRange(s) { // validated above; never store an out of range score
				return nil, core.NewValidationError(nil, core.FieldError{Field: "scores", Error: scoreText})
			}
			scores[i] = s
		}

		rows = append(rows, Row{
			EvaluatorID:        evaluator.ID,
			EvaluatorName:      evaluator.Name,
			Group:              evaluator.Group,
			PeerID:             m.ID,
			PeerName:           m.Name,
			Timestamp:          now,
			Scores:             scores,
			Overall:            OverallScore(scores),
			CommentLowGiven:    ev.CommentLowGiven,
			CommentLowReceived: ev.CommentLowReceived,
			Signature:          ns.Signature,
		})
	}
	return rows, nil
}
