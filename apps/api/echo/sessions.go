package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/peereval/core"
	"github.com/trezcool/peereval/core/auth"
)

type sessionApi struct {
	*server
	svc *auth.Service
}

func registerSessionAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *server) {
	api := sessionApi{server: s, svc: s.deps.AuthSvc}

	sg := g.Group("/sessions")

	// un-authed endpoints
	sg.POST("", api.create)

	// session endpoints: middlewares are set per route, a sub-group's Any("") would shadow POST ""
	sm := sessionMiddleware(api.svc.Sessions(), false)
	sg.GET("/me", api.retrieve, jwt, sm)
	sg.POST("/login", api.login, jwt, sm)
	sg.POST("/code", api.sendCode, jwt, sm)
	sg.POST("/verify", api.verifyCode, jwt, sm)
	sg.DELETE("", api.logout, jwt, sm)
}

// Handlers

// create starts a new login cycle. The returned token identifies the session in every later call.
func (api *sessionApi) create(ctx echo.Context) error {
	sess := api.svc.Sessions().New()
	token, err := api.generateToken(api.newClaims(sess.ID, false))
	if err != nil {
		api.svc.Sessions().Delete(sess.ID)
		return errors.Wrap(err, "generating token")
	}

	res := newSessionResponse(sess, api.svc.Mode())
	res.Token = token
	if api.svc.Mode() == core.AuthModeCode {
		res.Names = api.svc.Names()
	}
	return ctx.JSON(http.StatusCreated, res)
}

func (api *sessionApi) retrieve(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newSessionResponse(sess, api.svc.Mode()))
}

func (api *sessionApi) login(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	var data DirectLoginRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to DirectLoginRequest")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	if _, err = api.svc.IdentifyDirect(sess, data.Name, data.StudentID); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newSessionResponse(sess, api.svc.Mode()))
}

func (api *sessionApi) sendCode(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	var data SendCodeRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SendCodeRequest")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	expiresAt, err := api.svc.SendCode(ctx.Request().Context(), sess, data.Name)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, SendCodeResponse{
		Success:   "A login code was sent to your email address.",
		ExpiresAt: expiresAt,
	})
}

func (api *sessionApi) verifyCode(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	var data VerifyCodeRequest
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VerifyCodeRequest")
	}
	if err = data.Validate(api.deps.Validate); err != nil {
		return err
	}

	if _, err = api.svc.VerifyCode(sess, data.Code); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, newSessionResponse(sess, api.svc.Mode()))
}

// logout tears the session down: its token stops working.
func (api *sessionApi) logout(ctx echo.Context) error {
	sess, err := getContextSession(ctx)
	if err != nil {
		return err
	}
	api.svc.Logout(sess)
	return ctx.NoContent(http.StatusNoContent)
}
