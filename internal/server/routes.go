package server

import (
	"orderdesk/internal/handler"

	"github.com/labstack/echo/v4"
)

func RegisterRoutes(e *echo.Echo, orderH *handler.OrderHandler) {
	handler.RegisterHealthRoutes(e)
	orderH.RegisterRoutes(e)
}
