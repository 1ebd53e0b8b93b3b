package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"golang.org/x/crypto/bcrypt"

	. "github.com/trezcool/peereval/apps/api/echo"
	"github.com/trezcool/peereval/core"
	"github.com/trezcool/peereval/core/auth"
	"github.com/trezcool/peereval/core/evaluation"
	"github.com/trezcool/peereval/services/email"
	"github.com/trezcool/peereval/storage/inmem"
	"github.com/trezcool/peereval/tests"
)

const adminPassword = "s3cr3t-admin"

var errMissingToken = httpErr{Error: "missing or malformed jwt"}

type testApp struct {
	Server
	db      *inmemdb.DB
	mailSvc *emailsvc.ConsoleService
}

func setup(t *testing.T, mode string) testApp {
	conf := core.NewTestConfig()
	conf.Debug = false
	conf.Auth.Mode = mode
	conf.Auth.CodeCooldown = 0
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt.GenerateFromPassword() failed: %v", err)
	}
	conf.Admin.PasswordHash = string(hash)

	logger := testutil.NewLogger(conf)
	validate, translator := testutil.NewValidator()
	dir := testutil.Roster(t)
	db := inmemdb.Open()
	mailSvc := emailsvc.NewConsoleServiceMock(conf)

	app := NewServer(conf, logger, &Deps{
		AuthSvc:    auth.NewService(conf, dir, auth.NewSessionStore(conf.Auth.SessionTimeout), mailSvc, logger),
		EvalSvc:    evaluation.NewService(conf, dir, evaluation.NewStore(db, logger), validate, logger),
		Validate:   validate,
		Translator: translator,
	})
	return testApp{Server: app, db: db, mailSvc: mailSvc}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func (app testApp) do(t *testing.T, method, path, token string, obj interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var body []byte
	if obj != nil {
		body = marchallObj(t, obj)
	}
	req, rec := newAuthRequest(method, path, token, body)
	app.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode(%s) failed: %v", rec.Body.String(), err)
	}
}

// newSession starts a session and returns its token.
func (app testApp) newSession(t *testing.T) SessionResponse {
	t.Helper()
	rec := app.do(t, http.MethodPost, "/v1/sessions", "", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("newSession() failed: %d %s", rec.Code, rec.Body.String())
	}
	var res SessionResponse
	decode(t, rec, &res)
	return res
}

// loginDirect returns the token of a session logged in with name & student ID.
func (app testApp) loginDirect(t *testing.T, name, id string) string {
	t.Helper()
	token := app.newSession(t).Token
	rec := app.do(t, http.MethodPost, "/v1/sessions/login", token, DirectLoginRequest{Name: name, StudentID: id})
	if rec.Code != http.StatusOK {
		t.Fatalf("loginDirect() failed: %d %s", rec.Code, rec.Body.String())
	}
	return token
}

func (app testApp) adminToken(t *testing.T) string {
	t.Helper()
	rec := app.do(t, http.MethodPost, "/v1/admin/login", "", AdminLoginRequest{Password: adminPassword})
	if rec.Code != http.StatusOK {
		t.Fatalf("adminToken() failed: %d %s", rec.Code, rec.Body.String())
	}
	var res TokenResponse
	decode(t, rec, &res)
	return res.Token
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}
