package echoapi

import (
	"fmt"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/peereval/core"
	"github.com/trezcool/peereval/core/auth"
)

var (
	errUnauthorized         = echo.NewHTTPError(http.StatusUnauthorized, "user not authenticated")
	errNotLoggedIn          = echo.NewHTTPError(http.StatusUnauthorized, "please log in first")
	errSessionExpired       = echo.NewHTTPError(http.StatusUnauthorized, "session expired, please start again")
	errAuthenticationFailed = echo.NewHTTPError(http.StatusUnauthorized, "authentication failed")
	errAdminDisabled        = echo.NewHTTPError(http.StatusForbidden, "admin access is disabled")
	errHttpForbidden        = echo.NewHTTPError(http.StatusForbidden, "permission denied")

	msgStoreUnavailable = "the evaluation store is unavailable, please try again later"
)

// newAppHTTPErrorHandler returns a custom echo.HTTPErrorHandler that knows how to handle our errors.
func newAppHTTPErrorHandler(logger core.Logger, translator ut.Translator) echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		var code int
		var message interface{}

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			if origErr == middleware.ErrJWTMissing {
				code = http.StatusUnauthorized
				message = origErr.Message
				break
			}
			if origErr.Internal != nil {
				if herr, ok := origErr.Internal.(*echo.HTTPError); ok {
					origErr = herr
				}
			}
			code = origErr.Code
			message = origErr.Message
		case validator.ValidationErrors:
			fldErrs := make(map[string]string, len(origErr))
			for _, vErr := range origErr {
				fldErrs[vErr.Field()] = vErr.Translate(translator)
			}
			code = http.StatusBadRequest
			message = fldErrs
		case *core.ValidationError:
			if origErr.Fields != nil {
				fldErrs := make(map[string]string, len(origErr.Fields))
				for _, fErr := range origErr.Fields {
					fldErrs[fErr.Field] = fErr.Error
				}
				message = fldErrs
			} else {
				message = origErr.Error()
			}
			code = http.StatusBadRequest
		case *core.AuthError:
			code = http.StatusUnauthorized
			message = origErr.Error()
		case *core.StoreConnectError:
			code = http.StatusServiceUnavailable
			message = msgStoreUnavailable
			logger.Error(fmt.Sprintf("store unavailable: %v", err), logArgs(ctx, err)...)
		default:
			if origErr == auth.ErrCodeCooldown {
				code = http.StatusTooManyRequests
				message = origErr.Error()
				break
			}

			// any other error is a server error
			code = http.StatusInternalServerError
			msg := http.StatusText(http.StatusInternalServerError)
			message = msg
			logger.Error(msg, logArgs(ctx, errors.Wrap(err, msg))...)
		}

		if ctx.Echo().Debug {
			message = err.Error()
		}
		if m, ok := message.(string); ok {
			message = echo.Map{"error": m}
		}

		// Send response
		if !ctx.Response().Committed {
			if ctx.Request().Method == http.MethodHead { // Issue #608
				err = ctx.NoContent(code)
			} else {
				err = ctx.JSON(code, message)
			}
			if err != nil {
				ctx.Echo().Logger.Error(err)
			}
		}
	}
}

// logArgs attaches the logged in student, if any, to error reports.
func logArgs(ctx echo.Context, err error) []interface{} {
	args := []interface{}{err}
	if student, sErr := getContextStudent(ctx); sErr == nil {
		args = append(args, student)
	}
	return args
}
