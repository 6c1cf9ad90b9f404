package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/NAA-del/naa-portal/core/cpd"
	"github.com/NAA-del/naa-portal/core/member"
)

type cpdApi struct {
	svc       *cpd.Service
	memberSvc *member.Service
}

func registerCPDAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *cpd.Service, memberSvc *member.Service) {
	api := cpdApi{svc: svc, memberSvc: memberSvc}

	cg := g.Group("/cpd", jwt)
	cg.POST("/records", api.submit)
	cg.GET("/records", api.queryOwn)
	cg.GET("/total", api.totalPoints)
	cg.GET("/export", api.exportCSV)
	cg.POST("/verify", api.verifyRecords, leadershipMiddleware())
	cg.GET("/members/:id/records", api.queryByMember, leadershipMiddleware())
}

func (api *cpdApi) submit(ctx echo.Context) error {
	actor, err := getContextMember(ctx, api.memberSvc)
	if err != nil {
		return errors.Wrap(err, "getting context member")
	}

	data := cpd.NewRecord{ActivityName: ctx.FormValue("activity_name")}
	data.Points, _ = strconv.Atoi(ctx.FormValue("points"))
	if raw := ctx.FormValue("date_completed"); raw != "" {
		data.DateCompleted, _ = time.Parse("2006-01-02", raw)
	}
	if fh, err := ctx.FormFile("certificate"); err == nil && fh != nil {
		file, err := readFormFile(ctx, "certificate")
		if err != nil {
			return err
		}
		data.CertificateName = file.name
		data.Certificate = file.content
	}
	if err := data.Validate(); err != nil {
		return err
	}

	r, err := api.svc.Submit(ctx.Request().Context(), actor, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *cpdApi) queryOwn(ctx echo.Context) error {
	actor, err := getContextMember(ctx, api.memberSvc)
	if err != nil {
		return errors.Wrap(err, "getting context member")
	}
	return api.respondRecords(ctx, actor, actor.ID)
}

func (api *cpdApi) queryByMember(ctx echo.Context) error {
	actor, err := getContextMember(ctx, api.memberSvc)
	if err != nil {
		return errors.Wrap(err, "getting context member")
	}
	memberID, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}
	return api.respondRecords(ctx, actor, memberID)
}

func (api *cpdApi) respondRecords(ctx echo.Context, actor member.Member, memberID int) error {
	records, err := api.svc.ListByMember(ctx.Request().Context(), actor, memberID)
	if err != nil {
		return err
	}
	if records == nil {
		records = []cpd.Record{}
	}
	return ctx.JSON(http.StatusOK, records)
}

func (api *cpdApi) totalPoints(ctx echo.Context) error {
	actor, err := getContextMember(ctx, api.memberSvc)
	if err != nil {
		return errors.Wrap(err, "getting context member")
	}
	verifiedOnly := ctx.QueryParam("verified_only") == "true"

	total, err := api.svc.TotalPoints(ctx.Request().Context(), actor, actor.ID, verifiedOnly)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"total_points": total})
}

func (api *cpdApi) exportCSV(ctx echo.Context) error {
	actor, err := getContextMember(ctx, api.memberSvc)
	if err != nil {
		return errors.Wrap(err, "getting context member")
	}

	res := ctx.Response()
	res.Header().Set(echo.HeaderContentType, "text/csv")
	res.Header().Set(echo.HeaderContentDisposition, `attachment; filename="cpd-portfolio.csv"`)
	res.WriteHeader(http.StatusOK)
	return api.svc.ExportCSV(ctx.Request().Context(), actor, actor.ID, res)
}

func (api *cpdApi) verifyRecords(ctx echo.Context) error {
	actor, err := getContextMember(ctx, api.memberSvc)
	if err != nil {
		return errors.Wrap(err, "getting context member")
	}

	var data VerifyRecordsRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VerifyRecordsRequest")
	}
	if data.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	if err := api.svc.VerifyRecords(ctx.Request().Context(), actor, data.IDs...); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

type VerifyRecordsRequest struct {
	IDs []int `json:"ids"`
}
