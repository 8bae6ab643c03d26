package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-market/core/notification"
)

type notificationAPI struct {
	service NotificationService
}

func registerNotificationAPI(group *echo.Group, deps ServerDeps) {
	api := &notificationAPI{service: deps.NotificationSvc}
	group.POST("/notifications/read-all", api.markAllRead)
	group.POST("/notifications/:id/read", api.markRead)
}

func (api *notificationAPI) markRead(ctx echo.Context) error {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return errHttpNotFound
	}
	identity := getContextIdentity(ctx)
	if identity == nil {
		return errUnauthorized
	}

	if err = api.service.MarkRead(ctx.Request().Context(), *identity, id); err != nil {
		if errors.Cause(err) == notification.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "marking notification as read")
	}
	return ctx.JSON(http.StatusOK, success(echo.Map{"id": id}, "Notification marked as read"))
}

func (api *notificationAPI) markAllRead(ctx echo.Context) error {
	identity := getContextIdentity(ctx)
	if identity == nil {
		return errUnauthorized
	}

	cnt, err := api.service.MarkAllRead(ctx.Request().Context(), *identity)
	if err != nil {
		return errors.Wrap(err, "marking notifications as read")
	}
	return ctx.JSON(http.StatusOK, success(echo.Map{"updated": cnt}, "Notifications marked as read"))
}
