package router

import (
	"nutriflow/internal/adapter/api/handler"
	"nutriflow/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupPatientRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	patientHandler := handler.GetPatientHandler()

	patients := e.Group("/v1/patients")
	patients.Use(authMiddleware.Authenticate)

	patients.GET("", patientHandler.ListPatients)
	patients.POST("", patientHandler.CreatePatient)
	patients.GET("/:id", patientHandler.GetPatient)
	patients.PUT("/:id", patientHandler.UpdatePatient)
	patients.DELETE("/:id", patientHandler.DeletePatient)

	patients.POST("/:id/measurements", patientHandler.AddMeasurement)
	patients.PUT("/:id/anamnesis", patientHandler.SetAnamnesis)
}
