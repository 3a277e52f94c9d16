package handler

import (
	stderrors "errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"nutriflow/internal/usecase"
	"nutriflow/pkg/errors"
	"nutriflow/pkg/response"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type resolveChatRequest struct {
	CounterpartID string `json:"counterpartId" validate:"required"`
}

type sendMessageRequest struct {
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl" validate:"omitempty,url"`
}

// ResolveChat returns the chat with the counterpart, creating it when there
// is none yet. 201 means a new chat was created.
func (h *ChatHandler) ResolveChat(c echo.Context) error {
	var req resolveChatRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)
	// No live subscription on plain HTTP; the lookup falls back to a read.
	chat, created, err := h.chatUseCase.ResolveChat(c.Request().Context(), nil, uid, req.CounterpartID)
	if err != nil {
		return response.Error(c, err)
	}
	if created {
		return response.Created(c, chat)
	}
	return response.Success(c, chat)
}

func (h *ChatHandler) GetUserChats(c echo.Context) error {
	uid := c.Get("uid").(string)
	chats, err := h.chatUseCase.ListChats(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, chats)
}

func (h *ChatHandler) GetChatMessages(c echo.Context) error {
	uid := c.Get("uid").(string)
	messages, err := h.chatUseCase.ListMessages(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, messages)
}

// SendMessage answers 201 with the stored message. When the chat summary
// could not be refreshed the message is still returned, with the drift
// reported alongside it.
func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)
	message, err := h.chatUseCase.SendMessage(c.Request().Context(), uid, usecase.SendMessageInput{
		ChatID:   c.Param("id"),
		Text:     req.Text,
		ImageURL: req.ImageURL,
	})
	if err != nil && message != nil && errors.Is(err, errors.CodeSummaryDrift) {
		var appErr *errors.AppError
		stderrors.As(err, &appErr)
		return c.JSON(http.StatusCreated, response.Response{
			Success:   true,
			Data:      message,
			Error:     &response.ErrorInfo{Code: appErr.Code, Message: appErr.Message},
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
	}
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, message)
}

func (h *ChatHandler) MarkMessageRead(c echo.Context) error {
	uid := c.Get("uid").(string)
	if err := h.chatUseCase.MarkRead(c.Request().Context(), uid, c.Param("id"), c.Param("messageId")); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{"message": "Mensagem marcada como lida"})
}
