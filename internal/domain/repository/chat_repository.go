package repository

import (
	"context"

	"nutriflow/internal/domain/entity"
)

type ChatRepository interface {
	Create(ctx context.Context, chat *entity.Chat) error
	GetByID(ctx context.Context, id string) (*entity.Chat, error)
	ListByParticipant(ctx context.Context, uid string) ([]*entity.Chat, error)
	// ListAll is for system jobs only; it is not scoped to any identity.
	ListAll(ctx context.Context) ([]*entity.Chat, error)

	// Message methods
	AddMessage(ctx context.Context, message *entity.Message) error
	ListMessages(ctx context.Context, chatID string) ([]*entity.Message, error)
	LatestMessage(ctx context.Context, chatID string) (*entity.Message, error)
	MarkRead(ctx context.Context, chatID, messageID string) error
}
