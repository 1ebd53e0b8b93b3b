package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/trezcool/peereval/apps/api/echo"
	"github.com/trezcool/peereval/core"
	"github.com/trezcool/peereval/core/roster"
)

func Test_sessionApi_create(t *testing.T) {
	tests := []struct {
		name      string
		mode      string
		wantNames bool
	}{
		{name: "direct mode", mode: core.AuthModeDirect},
		{name: "code mode lists names", mode: core.AuthModeCode, wantNames: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			app := setup(t, tc.mode)

			req, rec := newRequest(http.MethodPost, "/v1/sessions")
			app.ServeHTTP(rec, req)
			require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

			var res SessionResponse
			decode(t, rec, &res)
			assert.NotEmpty(t, res.Token)
			assert.Equal(t, tc.mode, res.Mode)
			assert.False(t, res.Authenticated)
			if tc.wantNames {
				assert.Contains(t, res.Names, "Ada Lovelace")
			} else {
				assert.Empty(t, res.Names)
			}

			// the new token works on the authenticated session routes
			rec = app.do(t, http.MethodGet, "/v1/sessions/me", res.Token, nil)
			assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		})
	}
}

func Test_sessionApi_directLogin(t *testing.T) {
	app := setup(t, core.AuthModeDirect)
	token := app.newSession(t).Token

	tests := []httpTest{
		{
			name: "token required", path: "/v1/sessions/login",
			body:     marchallObj(t, DirectLoginRequest{Name: "Ada Lovelace", StudentID: "100001"}),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken),
		},
		{
			name: "invalid token", path: "/v1/sessions/login", token: token + "x",
			body:     marchallObj(t, DirectLoginRequest{Name: "Ada Lovelace", StudentID: "100001"}),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "invalid or expired jwt"}),
		},
		{
			name: "blank fields", path: "/v1/sessions/login", token: token,
			body:     marchallObj(t, DirectLoginRequest{Name: " ", StudentID: ""}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"name":       "this field cannot be blank",
				"student_id": "this field cannot be blank",
			}),
		},
		{
			name: "wrong ID", path: "/v1/sessions/login", token: token,
			body:     marchallObj(t, DirectLoginRequest{Name: "Ada Lovelace", StudentID: "100002"}),
			wantCode: http.StatusUnauthorized, wantData: marchallObj(t, httpErr{Error: "name and student ID do not match"}),
		},
		{
			name: "success", path: "/v1/sessions/login", token: token,
			body:     marchallObj(t, DirectLoginRequest{Name: "Ada Lovelace", StudentID: "100001"}),
			wantCode: http.StatusOK,
			wantData: marchallObj(t, SessionResponse{
				Mode:          core.AuthModeDirect,
				Authenticated: true,
				Student:       &roster.Student{ID: "100001", Name: "Ada Lovelace", Group: "1"},
			}),
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, tc.path, tc.token, tc.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tc, rec)
		})
	}

	t.Run("email is never exposed", func(t *testing.T) {
		rec := app.do(t, http.MethodGet, "/v1/sessions/me", token, nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, rec.Body.String(), "@test.ca")
	})

	t.Run("code endpoints disabled", func(t *testing.T) {
		rec := app.do(t, http.MethodPost, "/v1/sessions/code", app.newSession(t).Token, SendCodeRequest{Name: "Ada Lovelace"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Empty(t, app.mailSvc.SentMessages())
	})
}

func Test_sessionApi_codeLogin(t *testing.T) {
	app := setup(t, core.AuthModeCode)

	sess := app.newSession(t)
	assert.Equal(t, core.AuthModeCode, sess.Mode)
	assert.False(t, sess.Authenticated)
	assert.Contains(t, sess.Names, "Grace Hopper")
	assert.Len(t, sess.Names, 6)

	// unknown name
	rec := app.do(t, http.MethodPost, "/v1/sessions/code", sess.Token, SendCodeRequest{Name: "Nobody"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// request a code
	rec = app.do(t, http.MethodPost, "/v1/sessions/code", sess.Token, SendCodeRequest{Name: "Grace Hopper"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var sent SendCodeResponse
	decode(t, rec, &sent)
	assert.WithinDuration(t, time.Now().Add(time.Hour), sent.ExpiresAt, time.Minute)

	msg, ok := app.mailSvc.LastMessage()
	require.True(t, ok)
	assert.Equal(t, "grace@test.ca", msg.To[0].Address)
	code, _ := msg.TemplateData.(map[string]interface{})["Code"].(string)
	require.Len(t, code, 6)

	// not logged in yet
	rec = app.do(t, http.MethodGet, "/v1/evaluations/form", sess.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// verify
	rec = app.do(t, http.MethodPost, "/v1/sessions/verify", sess.Token, VerifyCodeRequest{Code: code})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res SessionResponse
	decode(t, rec, &res)
	assert.True(t, res.Authenticated)
	assert.Equal(t, "100003", res.Student.ID)

	rec = app.do(t, http.MethodGet, "/v1/evaluations/form", sess.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func Test_sessionApi_codeMismatch(t *testing.T) {
	app := setup(t, core.AuthModeCode)
	token := app.newSession(t).Token

	rec := app.do(t, http.MethodPost, "/v1/sessions/verify", token, VerifyCodeRequest{Code: "123456"})
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusUnauthorized,
		wantData: marchallObj(t, httpErr{Error: "no code was requested, please request a new one"}),
	}, rec)

	rec = app.do(t, http.MethodPost, "/v1/sessions/code", token, SendCodeRequest{Name: "Ada Lovelace"})
	require.Equal(t, http.StatusOK, rec.Code)
	msg, _ := app.mailSvc.LastMessage()
	code := msg.TemplateData.(map[string]interface{})["Code"].(string)
	wrong := "000000"
	if code == wrong {
		wrong = "999999"
	}

	rec = app.do(t, http.MethodPost, "/v1/sessions/verify", token, VerifyCodeRequest{Code: wrong})
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusUnauthorized,
		wantData: marchallObj(t, httpErr{Error: "invalid code, please request a new one"}),
	}, rec)

	// the code was discarded
	rec = app.do(t, http.MethodPost, "/v1/sessions/verify", token, VerifyCodeRequest{Code: code})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func Test_sessionApi_logout(t *testing.T) {
	app := setup(t, core.AuthModeDirect)
	token := app.loginDirect(t, "Edsger Dijkstra", "100004")

	rec := app.do(t, http.MethodDelete, "/v1/sessions", token, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = app.do(t, http.MethodGet, "/v1/sessions/me", token, nil)
	checkCodeAndData(t, httpTest{
		wantCode: http.StatusUnauthorized,
		wantData: marchallObj(t, httpErr{Error: "session expired, please start again"}),
	}, rec)

	rec = app.do(t, http.MethodGet, "/v1/evaluations/form", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
