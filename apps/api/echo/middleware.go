package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/peereval/core/auth"
)

func adminMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// sessionMiddleware loads the session named by the token subject.
// With loggedIn, the session must also be authenticated.
func sessionMiddleware(sessions *auth.SessionStore, loggedIn bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if claims.IsAdmin {
				return errHttpForbidden
			}
			sess, err := sessions.Get(claims.Subject)
			if err != nil {
				return errSessionExpired
			}
			if loggedIn && !sess.Authenticated() {
				return errNotLoggedIn
			}
			ctx.Set(sessionContextKey, sess)
			return next(ctx)
		}
	}
}
