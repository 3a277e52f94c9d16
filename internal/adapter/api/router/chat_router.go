package router

import (
	"github.com/labstack/echo/v4"

	"nutriflow/internal/adapter/api/handler"
	"nutriflow/internal/adapter/api/middleware"
)

// SetupChatRouter sets up the chat routes. Live updates go over /ws.
func SetupChatRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	chatHandler := handler.GetChatHandler()

	chatGroup := e.Group("/v1/chats")
	chatGroup.Use(authMiddleware.Authenticate)

	chatGroup.GET("", chatHandler.GetUserChats)
	chatGroup.POST("", chatHandler.ResolveChat) // find or create the chat with a counterpart

	chatGroup.GET("/:id/messages", chatHandler.GetChatMessages)
	chatGroup.POST("/:id/messages", chatHandler.SendMessage)
	chatGroup.PUT("/:id/messages/:messageId/read", chatHandler.MarkMessageRead)
}
