package auth

import (
	"context"
	"net/mail"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"

	"github.com/trezcool/peereval/core"
	"github.com/trezcool/peereval/core/evaluation"
	"github.com/trezcool/peereval/core/roster"
)

const codeEmailTemplate = "auth_code"

var (
	ErrAuthFailed      = errors.New("name and student ID do not match")
	ErrUnknownStudent  = errors.New("this name is not on the student list")
	ErrNoPendingCode   = errors.New("no code was requested, please request a new one")
	ErrCodeMismatch    = errors.New("invalid code, please request a new one")
	ErrCodeExpired     = errors.New("this code has expired, please request a new one")
	ErrCodeCooldown    = errors.New("a code was sent recently, please wait before requesting another one")
	ErrWrongMode       = errors.New("this login method is not enabled")
	ErrSessionNotFound = errors.New("session not found or expired")
)

// Service authenticates students against the roster.
// Depending on the configured mode, the secret is either the student ID or a one-time code sent by email.
type Service struct {
	mode         string
	codeValidity time.Duration
	codeCooldown time.Duration
	appName      string

	dir       *roster.Directory
	sessions  *SessionStore
	mailSvc   core.EmailService
	logger    core.Logger
	cooldowns *cache.Cache // {studentID: sentAt}
}

func NewService(
	conf *core.Config,
	dir *roster.Directory,
	sessions *SessionStore,
	mailSvc core.EmailService,
	logger core.Logger,
) *Service {
	return &Service{
		mode:         conf.Auth.Mode,
		codeValidity: conf.Auth.CodeValidity,
		codeCooldown: conf.Auth.CodeCooldown,
		appName:      conf.AppName,
		dir:          dir,
		sessions:     sessions,
		mailSvc:      mailSvc,
		logger:       logger,
		cooldowns:    cache.New(cache.NoExpiration, 10*time.Minute),
	}
}

func (svc *Service) Mode() string { return svc.mode }

func (svc *Service) Sessions() *SessionStore { return svc.sessions }

// Names lists the roster names a student can pick from when logging in by code.
func (svc *Service) Names() []string { return svc.dir.Names() }

// IdentifyDirect logs the session in when name and student ID match the same roster row exactly.
func (svc *Service) IdentifyDirect(sess *Session, name, id string) (roster.Student, error) {
	if svc.mode != core.AuthModeDirect {
		return roster.Student{}, core.NewAuthError(ErrWrongMode)
	}
	student, err := svc.dir.Match(name, id)
	if err != nil {
		return roster.Student{}, core.NewAuthError(ErrAuthFailed)
	}
	sess.setStudent(student)
	return student, nil
}

// SendCode emails a new one-time code to the student named `name` and attaches it to the session,
// replacing any previous code. It returns the code expiry.
func (svc *Service) SendCode(ctx context.Context, sess *Session, name string) (time.Time, error) {
	if svc.mode != core.AuthModeCode {
		return time.Time{}, core.NewAuthError(ErrWrongMode)
	}
	student, err := svc.dir.GetByName(name)
	if err != nil {
		return time.Time{}, core.NewAuthError(ErrUnknownStudent)
	}
	if _, found := svc.cooldowns.Get(student.ID); found {
		return time.Time{}, ErrCodeCooldown
	}

	code, err := generateCode()
	if err != nil {
		return time.Time{}, errors.Wrap(err, "generating code")
	}
	expiresAt := NowFunc().Add(svc.codeValidity)

	msg := &core.EmailMessage{
		To:           []mail.Address{student.Address()},
		Subject:      svc.appName + " login code",
		TemplateName: codeEmailTemplate,
		TemplateData: map[string]interface{}{
			"Name":      student.Name,
			"Code":      code,
			"ValidFor":  humanDuration(svc.codeValidity),
			"ExpiresAt": expiresAt.Local().Format(evaluation.TimestampLayout),
		},
	}
	if err := svc.mailSvc.SendMessages(ctx, msg); err != nil {
		return time.Time{}, errors.Wrap(err, "sending code")
	}

	sess.mu.Lock()
	sess.code = &pendingCode{studentID: student.ID, code: code, expiresAt: expiresAt}
	sess.mu.Unlock()

	if svc.codeCooldown > 0 {
		svc.cooldowns.Set(student.ID, NowFunc(), svc.codeCooldown)
	}
	svc.logger.Info("login code sent", student, map[string]interface{}{"expiresAt": expiresAt})
	return expiresAt, nil
}

// VerifyCode logs the session in if `code` matches its pending code and has not expired.
// Any failed attempt discards the pending code: a new one must be requested.
func (svc *Service) VerifyCode(sess *Session, code string) (roster.Student, error) {
	if svc.mode != core.AuthModeCode {
		return roster.Student{}, core.NewAuthError(ErrWrongMode)
	}

	sess.mu.Lock()
	pending := sess.code
	sess.code = nil
	sess.mu.Unlock()

	switch {
	case pending == nil:
		return roster.Student{}, core.NewAuthError(ErrNoPendingCode)
	case !NowFunc().Before(pending.expiresAt):
		return roster.Student{}, core.NewAuthError(ErrCodeExpired)
	case !codesEqual(core.CleanString(code), pending.code):
		return roster.Student{}, core.NewAuthError(ErrCodeMismatch)
	}

	student, err := svc.dir.GetByID(pending.studentID)
	if err != nil {
		return roster.Student{}, core.NewAuthError(ErrUnknownStudent)
	}
	sess.setStudent(student)
	return student, nil
}

// Logout tears the session down.
func (svc *Service) Logout(sess *Session) {
	svc.sessions.Delete(sess.ID)
}
