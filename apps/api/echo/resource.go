package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/NAA-del/naa-portal/core/member"
	"github.com/NAA-del/naa-portal/core/resource"
)

type resourceApi struct {
	svc       *resource.Service
	memberSvc *member.Service
}

func registerResourceAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *resource.Service, memberSvc *member.Service) {
	api := resourceApi{svc: svc, memberSvc: memberSvc}

	rg := g.Group("/resources", jwt)
	rg.POST("", api.create, leadershipMiddleware())
	rg.GET("", api.query)
	rg.GET("/:id", api.retrieve)
	rg.DELETE("/:id", api.destroy, leadershipMiddleware())
}

func (api *resourceApi) create(ctx echo.Context) error {
	actor, err := getContextMember(ctx, api.memberSvc)
	if err != nil {
		return errors.Wrap(err, "getting context member")
	}

	data := resource.NewResource{
		Title:        ctx.FormValue("title"),
		Category:     ctx.FormValue("category"),
		Level:        ctx.FormValue("access_level"),
		VerifiedOnly: ctx.FormValue("verified_only") == "true",
	}
	file, err := readFormFile(ctx, "file")
	if err != nil {
		return err
	}
	data.FileName = file.name
	data.File = file.content
	if err := data.Validate(); err != nil {
		return err
	}

	r, err := api.svc.Create(ctx.Request().Context(), actor, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, r)
}

func (api *resourceApi) query(ctx echo.Context) error {
	actor, err := getContextMember(ctx, api.memberSvc)
	if err != nil {
		return errors.Wrap(err, "getting context member")
	}

	resources, err := api.svc.ListVisible(ctx.Request().Context(), actor)
	if err != nil {
		return errors.Wrap(err, "listing resources")
	}
	if resources == nil {
		resources = []resource.Resource{}
	}
	return ctx.JSON(http.StatusOK, resources)
}

func (api *resourceApi) retrieve(ctx echo.Context) error {
	actor, err := getContextMember(ctx, api.memberSvc)
	if err != nil {
		return errors.Wrap(err, "getting context member")
	}
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	r, err := api.svc.Get(ctx.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, r)
}

func (api *resourceApi) destroy(ctx echo.Context) error {
	actor, err := getContextMember(ctx, api.memberSvc)
	if err != nil {
		return errors.Wrap(err, "getting context member")
	}
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return errHttpNotFound
	}

	if err := api.svc.Delete(ctx.Request().Context(), actor, id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
