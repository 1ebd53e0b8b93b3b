package echoapi

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/peereval/core"
	"github.com/trezcool/peereval/core/auth"
	"github.com/trezcool/peereval/core/evaluation"
	"github.com/trezcool/peereval/core/roster"
)

// Requests

type DirectLoginRequest struct {
	Name      string `json:"name" validate:"notblank"`
	StudentID string `json:"student_id" validate:"notblank"`
}

func (r *DirectLoginRequest) Validate(validate *validator.Validate) error {
	r.Name = core.CleanString(r.Name)
	r.StudentID = core.CleanString(r.StudentID)
	return validate.Struct(r)
}

type SendCodeRequest struct {
	Name string `json:"name" validate:"notblank"`
}

func (r *SendCodeRequest) Validate(validate *validator.Validate) error {
	r.Name = core.CleanString(r.Name)
	return validate.Struct(r)
}

type VerifyCodeRequest struct {
	Code string `json:"code" validate:"notblank"`
}

func (r *VerifyCodeRequest) Validate(validate *validator.Validate) error {
	r.Code = core.CleanString(r.Code)
	return validate.Struct(r)
}

type AdminLoginRequest struct {
	Password string `json:"password" validate:"required"`
}

func (r *AdminLoginRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(r)
}

// Responses

type SessionResponse struct {
	Token         string          `json:"token,omitempty"`
	Mode          string          `json:"mode"`
	Authenticated bool            `json:"authenticated"`
	Student       *roster.Student `json:"student,omitempty"`
	CodeExpiresAt *time.Time      `json:"code_expires_at,omitempty"`
	Names         []string        `json:"names,omitempty"` // login choices, code mode only
}

func newSessionResponse(sess *auth.Session, mode string) SessionResponse {
	res := SessionResponse{Mode: mode}
	if student, ok := sess.Student(); ok {
		res.Authenticated = true
		res.Student = &student
	}
	if expiresAt, ok := sess.PendingCode(); ok {
		res.CodeExpiresAt = &expiresAt
	}
	return res
}

type SendCodeResponse struct {
	Success   string    `json:"success"`
	ExpiresAt time.Time `json:"expires_at"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

type SubmitResponse struct {
	Success   string                   `json:"success"`
	Submitted int                      `json:"submitted"`
	Scores    []evaluation.MemberScore `json:"scores"`
}

type SummaryResponse struct {
	Message string                   `json:"message,omitempty"`
	Peers   []evaluation.PeerSummary `json:"peers"`
}
