package router

import (
	"nutriflow/internal/adapter/api/handler"
	"nutriflow/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupDashboardRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	dashboardHandler := handler.GetDashboardHandler()

	dashboard := e.Group("/v1/dashboard")
	dashboard.Use(authMiddleware.Authenticate)

	dashboard.GET("", dashboardHandler.GetStats)
}
