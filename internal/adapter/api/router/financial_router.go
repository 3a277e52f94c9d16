package router

import (
	"nutriflow/internal/adapter/api/handler"
	"nutriflow/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupFinancialRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	financialHandler := handler.GetFinancialHandler()

	financial := e.Group("/v1/financial")
	financial.Use(authMiddleware.Authenticate)

	financial.GET("", financialHandler.GetSummary) // ?month=YYYY-MM
	financial.POST("", financialHandler.CreateRecord)
	financial.GET("/:id", financialHandler.GetRecord)
	financial.PUT("/:id", financialHandler.UpdateRecord)
	financial.DELETE("/:id", financialHandler.DeleteRecord)
}
