package router

import (
	"nutriflow/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	SetupProfileRouter(e, authMiddleware)
	SetupPatientRouter(e, authMiddleware)
	SetupAppointmentRouter(e, authMiddleware)
	SetupDietPlanRouter(e, authMiddleware)
	SetupFinancialRouter(e, authMiddleware)
	SetupChatRouter(e, authMiddleware)
	SetupDashboardRouter(e, authMiddleware)
	SetupHealthRouter(e)
}
