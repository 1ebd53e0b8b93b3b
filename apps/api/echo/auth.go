package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/peereval/core"
	"github.com/trezcool/peereval/core/auth"
	"github.com/trezcool/peereval/core/roster"
)

const (
	tokenContextKey   = "userToken"
	sessionContextKey = "session"
	adminSubject      = "admin"
)

// Claims represents the authorization claims transmitted via a JWT.
// Student tokens carry the session ID as subject: identity lives in the server-side session.
type Claims struct {
	jwt.StandardClaims
	IsAdmin bool `json:"is_admin,omitempty"` // -> ADMIN PORTAL
}

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    tokenContextKey,
		Claims:        new(Claims),
	}
}

func (s *server) newClaims(subject string, isAdmin bool) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    s.conf.AppName,
			Subject:   subject,
			ExpiresAt: now.Add(s.conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		IsAdmin: isAdmin,
	}
}

// generateToken generates a signed JWT token string representing the Claims.
func (s *server) generateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(s.jwtConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(s.jwtConfig.SigningKey)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

// checkAdminPassword compares pwd with the configured bcrypt hash. Admin access is disabled without a hash.
func (s *server) checkAdminPassword(pwd string) error {
	if s.conf.Admin.PasswordHash == "" {
		return errAdminDisabled
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.conf.Admin.PasswordHash), []byte(pwd)); err != nil {
		return errAuthenticationFailed
	}
	return nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(tokenContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextSession(ctx echo.Context) (*auth.Session, error) {
	if sess, ok := ctx.Get(sessionContextKey).(*auth.Session); ok {
		return sess, nil
	}
	return nil, errUnauthorized
}

func getContextStudent(ctx echo.Context) (roster.Student, error) {
	sess, err := getContextSession(ctx)
	if err != nil {
		return roster.Student{}, err
	}
	student, ok := sess.Student()
	if !ok {
		return roster.Student{}, errNotLoggedIn
	}
	return student, nil
}
