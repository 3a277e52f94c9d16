package router

import (
	"nutriflow/internal/adapter/api/handler"

	"github.com/labstack/echo/v4"
)

// SetupFileRouter serves uploads of the in-memory storage backend. Like
// public bucket URLs they need no auth.
func SetupFileRouter(e *echo.Echo, fileHandler *handler.FileHandler) {
	e.GET("/files/*", fileHandler.ServeFile)
}
