package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

func healthCheck(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339Nano),
	})
}
