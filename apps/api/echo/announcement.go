package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/NAA-del/naa-portal/core/announcement"
	"github.com/NAA-del/naa-portal/core/member"
)

type announcementApi struct {
	svc       *announcement.Service
	memberSvc *member.Service
}

func registerAnnouncementAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *announcement.Service, memberSvc *member.Service) {
	api := announcementApi{svc: svc, memberSvc: memberSvc}

	ag := g.Group("/announcements", jwt)
	ag.GET("", api.query)
	ag.POST("", api.create, leadershipMiddleware())
	ag.POST("/broadcast", api.broadcast, leadershipMiddleware())
	ag.GET("/student", api.queryStudent)
	ag.POST("/student", api.createStudent, leadershipMiddleware())
}

func (api *announcementApi) query(ctx echo.Context) error {
	announcements, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying announcements")
	}
	if announcements == nil {
		announcements = []announcement.Announcement{}
	}
	return ctx.JSON(http.StatusOK, announcements)
}

func (api *announcementApi) create(ctx echo.Context) error {
	actor, data, err := api.actorAndBody(ctx)
	if err != nil {
		return err
	}
	a, err := api.svc.Create(ctx.Request().Context(), actor, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *announcementApi) broadcast(ctx echo.Context) error {
	actor, data, err := api.actorAndBody(ctx)
	if err != nil {
		return err
	}
	a, err := api.svc.Broadcast(ctx.Request().Context(), actor, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, a)
}

// queryStudent returns the announcements addressed to the caller's university
// (or to all of them). The caller must have a student profile.
func (api *announcementApi) queryStudent(ctx echo.Context) error {
	actor, err := getContextMember(ctx, api.memberSvc)
	if err != nil {
		return errors.Wrap(err, "getting context member")
	}

	profile, err := api.memberSvc.GetStudentProfile(ctx.Request().Context(), actor.ID)
	if err != nil {
		return err
	}

	announcements, err := api.svc.ListForStudent(ctx.Request().Context(), profile.University)
	if err != nil {
		return errors.Wrap(err, "querying student announcements")
	}
	if announcements == nil {
		announcements = []announcement.StudentAnnouncement{}
	}
	return ctx.JSON(http.StatusOK, announcements)
}

func (api *announcementApi) createStudent(ctx echo.Context) error {
	actor, err := getContextMember(ctx, api.memberSvc)
	if err != nil {
		return errors.Wrap(err, "getting context member")
	}

	var data announcement.NewStudentAnnouncement
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudentAnnouncement")
	}

	a, err := api.svc.CreateForStudents(ctx.Request().Context(), actor, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, a)
}

func (api *announcementApi) actorAndBody(ctx echo.Context) (member.Member, announcement.NewAnnouncement, error) {
	actor, err := getContextMember(ctx, api.memberSvc)
	if err != nil {
		return member.Member{}, announcement.NewAnnouncement{}, errors.Wrap(err, "getting context member")
	}
	var data announcement.NewAnnouncement
	if err := ctx.Bind(&data); err != nil {
		return member.Member{}, announcement.NewAnnouncement{}, errors.Wrap(err, "binding to NewAnnouncement")
	}
	return actor, data, nil
}
