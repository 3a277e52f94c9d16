package router

import (
	"github.com/labstack/echo/v4"

	"nutriflow/internal/adapter/api/handler"
)

// SetupWebSocketRouter registers the live channel. Authentication happens
// inside the connection, so no auth middleware here.
func SetupWebSocketRouter(e *echo.Echo, wsHandler *handler.WebSocketHandler) {
	e.GET("/ws", wsHandler.HandleWebSocket)
}
