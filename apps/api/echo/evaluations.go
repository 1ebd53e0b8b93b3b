package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/peereval/core/evaluation"
)

type evaluationApi struct {
	svc *evaluation.Service
}

func registerEvaluationAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *server) {
	api := evaluationApi{svc: s.deps.EvalSvc}

	eg := g.Group("/evaluations", jwt, sessionMiddleware(s.deps.AuthSvc.Sessions(), true))
	eg.GET("/form", api.form)
	eg.POST("/preview", api.preview)
	eg.POST("", api.submit)
}

// Handlers

func (api *evaluationApi) form(ctx echo.Context) error {
	student, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, api.svc.Form(ctx.Request().Context(), student))
}

func (api *evaluationApi) preview(ctx echo.Context) error {
	student, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	var data evaluation.NewSubmission
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}

	scores, err := api.svc.Preview(student, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, scores)
}

func (api *evaluationApi) submit(ctx echo.Context) error {
	student, err := getContextStudent(ctx)
	if err != nil {
		return err
	}
	var data evaluation.NewSubmission
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSubmission")
	}

	rows, err := api.svc.Submit(ctx.Request().Context(), student, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, SubmitResponse{
		Success:   "Your evaluation was recorded. Only your most recent submission is kept.",
		Submitted: len(rows),
		Scores:    evaluation.MemberScores(rows),
	})
}
