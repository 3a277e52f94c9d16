package router

import (
	"nutriflow/internal/adapter/api/handler"
	"nutriflow/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupAppointmentRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	appointmentHandler := handler.GetAppointmentHandler()

	appointments := e.Group("/v1/appointments")
	appointments.Use(authMiddleware.Authenticate)

	appointments.GET("", appointmentHandler.ListAppointments)
	appointments.GET("/upcoming", appointmentHandler.GetUpcoming)
	appointments.POST("", appointmentHandler.CreateAppointment)
	appointments.GET("/:id", appointmentHandler.GetAppointment)
	appointments.PUT("/:id", appointmentHandler.UpdateAppointment)
	appointments.DELETE("/:id", appointmentHandler.DeleteAppointment)
}
