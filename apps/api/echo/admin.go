package echoapi

import (
	"bytes"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/peereval/core/evaluation"
)

const (
	formatParam = "format"
	formatCSV   = "csv"

	mimeTextCSV = "text/csv; charset=UTF-8"
)

type adminApi struct {
	*server
	svc *evaluation.Service
}

func registerAdminAPI(g *echo.Group, jwt echo.MiddlewareFunc, s *server) {
	api := adminApi{server: s, svc: s.deps.EvalSvc}

	ag := g.Group("/admin")
	ag.POST("/login", api.login)

	// authed endpoints
	am := adminMiddleware()
	ag.GET("/rows", api.rows, jwt, am)
	ag.GET("/summary", api.summary, jwt, am)
}

// Handlers

func (api *adminApi) login(ctx echo.Context) error {
	var data AdminLoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AdminLoginRequest")
	}
	if err := data.Validate(api.deps.Validate); err != nil {
		return err
	}
	if err := api.checkAdminPassword(data.Password); err != nil {
		return err
	}

	token, err := api.generateToken(api.newClaims(adminSubject, true))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Token: token})
}

// rows exports the whole submission set, as JSON or as a CSV download with `?format=csv`.
func (api *adminApi) rows(ctx echo.Context) error {
	rows, err := api.svc.Rows(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "loading rows")
	}

	if ctx.QueryParam(formatParam) == formatCSV {
		var buf bytes.Buffer
		if err = evaluation.WriteRowsCSV(&buf, rows); err != nil {
			return err
		}
		return attachment(ctx, "evaluations.csv", buf.Bytes())
	}
	if rows == nil {
		rows = []evaluation.Row{}
	}
	return ctx.JSON(http.StatusOK, rows)
}

// summary exports the mean received score of every peer, as JSON or as a CSV download with `?format=csv`.
func (api *adminApi) summary(ctx echo.Context) error {
	sum, err := api.svc.Summary(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "summarizing")
	}

	if ctx.QueryParam(formatParam) == formatCSV {
		var buf bytes.Buffer
		if err = evaluation.WriteSummaryCSV(&buf, sum); err != nil {
			return err
		}
		return attachment(ctx, "summary.csv", buf.Bytes())
	}

	res := SummaryResponse{Peers: sum.Peers}
	if sum.Empty() {
		res.Message = evaluation.NoData
	}
	return ctx.JSON(http.StatusOK, res)
}

func attachment(ctx echo.Context, filename string, content []byte) error {
	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return ctx.Blob(http.StatusOK, mimeTextCSV, content)
}
