package router

import (
	"nutriflow/internal/adapter/api/handler"
	"nutriflow/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupProfileRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	profileHandler := handler.GetProfileHandler()

	profile := e.Group("/v1/profile")
	profile.Use(authMiddleware.Authenticate)

	profile.GET("", profileHandler.GetProfile)
	profile.PUT("", profileHandler.UpdateProfile)
	profile.POST("/onboarding", profileHandler.CompleteOnboarding)
	profile.POST("/avatar", profileHandler.UploadAvatar)

	profile.PUT("/settings/notifications/:key", profileHandler.SetNotificationSetting)
	profile.PUT("/settings/privacy/:key", profileHandler.SetPrivacySetting)
}
