package echoapi

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/NAA-del/naa-portal/core/committee"
	"github.com/NAA-del/naa-portal/core/member"
)

type committeeApi struct {
	svc       *committee.Service
	memberSvc *member.Service
}

func registerCommitteeAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *committee.Service, memberSvc *member.Service) {
	api := committeeApi{svc: svc, memberSvc: memberSvc}

	cg := g.Group("/committees", jwt)
	cg.POST("", api.create, leadershipMiddleware())
	cg.GET("", api.query)
	cg.GET("/:id", api.retrieve)
	cg.PUT("/:id", api.update)
	cg.PUT("/:id/members", api.setMembers)
	cg.GET("/:id/reports", api.queryReports)
	cg.POST("/:id/reports", api.submitReport)
	cg.GET("/:id/announcements", api.queryAnnouncements)
	cg.POST("/:id/announcements", api.postAnnouncement)
}

func (api *committeeApi) create(ctx echo.Context) error {
	var data committee.NewCommittee
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCommittee")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	actor, err := getContextMember(ctx, api.memberSvc)
	if err != nil {
		return errors.Wrap(err, "getting context member")
	}

	c, err := api.svc.Create(ctx.Request().Context(), actor, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, c)
}

func (api *committeeApi) query(ctx echo.Context) error {
	committees, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying committees")
	}
	if committees == nil {
		committees = []committee.Committee{}
	}
	return ctx.JSON(http.StatusOK, committees)
}

func (api *committeeApi) retrieve(ctx echo.Context) error {
	actor, id, err := api.actorAndID(ctx)
	if err != nil {
		return err
	}
	c, err := api.svc.Get(ctx.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *committeeApi) update(ctx echo.Context) error {
	actor, id, err := api.actorAndID(ctx)
	if err != nil {
		return err
	}

	var data committee.UpdateCommittee
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCommittee")
	}
	orig, err := api.svc.Get(ctx.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	if err := data.Validate(orig); err != nil {
		return err
	}

	c, err := api.svc.Update(ctx.Request().Context(), actor, id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *committeeApi) setMembers(ctx echo.Context) error {
	actor, id, err := api.actorAndID(ctx)
	if err != nil {
		return err
	}

	var data SetMembersRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetMembersRequest")
	}

	c, err := api.svc.SetMembers(ctx.Request().Context(), actor, id, data.MemberIDs)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, c)
}

func (api *committeeApi) queryReports(ctx echo.Context) error {
	actor, id, err := api.actorAndID(ctx)
	if err != nil {
		return err
	}
	reports, err := api.svc.QueryReports(ctx.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	if reports == nil {
		reports = []committee.Report{}
	}
	return ctx.JSON(http.StatusOK, reports)
}

func (api *committeeApi) submitReport(ctx echo.Context) error {
	actor, id, err := api.actorAndID(ctx)
	if err != nil {
		return err
	}

	data := committee.NewReport{Title: ctx.FormValue("title")}
	file, err := readFormFile(ctx, "file")
	if err != nil {
		return err
	}
	data.FileName = file.name
	data.File = file.content
	if err := data.Validate(); err != nil {
		return err
	}

	r, err := api.svc.SubmitReport(ctx.Request().Context(), actor, id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *committeeApi) queryAnnouncements(ctx echo.Context) error {
	actor, id, err := api.actorAndID(ctx)
	if err != nil {
		return err
	}
	announcements, err := api.svc.QueryAnnouncements(ctx.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	if announcements == nil {
		announcements = []committee.Announcement{}
	}
	return ctx.JSON(http.StatusOK, announcements)
}

func (api *committeeApi) postAnnouncement(ctx echo.Context) error {
	actor, id, err := api.actorAndID(ctx)
	if err != nil {
		return err
	}

	var data committee.NewAnnouncement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAnnouncement")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	a, err := api.svc.PostAnnouncement(ctx.Request().Context(), actor, id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *committeeApi) actorAndID(ctx echo.Context) (member.Member, int, error) {
	actor, err := getContextMember(ctx, api.memberSvc)
	if err != nil {
		return member.Member{}, 0, errors.Wrap(err, "getting context member")
	}
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return member.Member{}, 0, errHttpNotFound
	}
	return actor, id, nil
}

type SetMembersRequest struct {
	MemberIDs []int `json:"member_ids"`
}

type formFile struct {
	name    string
	content []byte
}

func readFormFile(ctx echo.Context, field string) (formFile, error) {
	fh, err := ctx.FormFile(field)
	if err != nil {
		return formFile{}, echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	f, err := fh.Open()
	if err != nil {
		return formFile{}, errors.Wrap(err, "opening uploaded file")
	}
	defer func() { _ = f.Close() }()

	content, err := io.ReadAll(f)
	if err != nil {
		return formFile{}, errors.Wrap(err, "reading uploaded file")
	}
	return formFile{name: fh.Filename, content: content}, nil
}
