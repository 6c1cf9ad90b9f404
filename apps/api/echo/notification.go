package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/NAA-del/naa-portal/core/notification"
)

type notificationApi struct {
	svc *notification.Service
}

func registerNotificationAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *notification.Service) {
	api := notificationApi{svc: svc}

	ng := g.Group("/notifications", jwt)
	ng.GET("", api.query)
	ng.POST("/:id/read", api.markRead)
}

func (api *notificationApi) query(ctx echo.Context) error {
	memberID, err := claimsMemberID(ctx)
	if err != nil {
		return err
	}
	events, err := api.svc.QueryByMember(ctx.Request().Context(), memberID)
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	if events == nil {
		events = []notification.Event{}
	}
	return ctx.JSON(http.StatusOK, events)
}

func (api *notificationApi) markRead(ctx echo.Context) error {
	memberID, err := claimsMemberID(ctx)
	if err != nil {
		return err
	}
	evt, err := api.svc.MarkRead(ctx.Request().Context(), ctx.Param("id"), memberID)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, evt)
}

func claimsMemberID(ctx echo.Context) (int, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "getting context claims")
	}
	id, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return 0, errUnauthorized
	}
	return id, nil
}
