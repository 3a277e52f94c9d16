package repository

import (
	"context"
	"log"

	"nutriflow/internal/domain/docstore"
	"nutriflow/internal/domain/entity"
	"nutriflow/internal/domain/repository"
	"nutriflow/pkg/errors"
)

type documentChatRepository struct {
	store docstore.DocumentStore
}

func NewDocumentChatRepository(store docstore.DocumentStore) repository.ChatRepository {
	return &documentChatRepository{
		store: store,
	}
}

// Create stores a new chat under a store-assigned ID. Two concurrent
// creates for the same pair produce two chats.
func (r *documentChatRepository) Create(ctx context.Context, chat *entity.Chat) error {
	id, err := r.store.Add(ctx, docstore.ChatsCollection, chat.Fields())
	if err != nil {
		log.Printf("Error creating chat: %v", err)
		return storeError("Chat", err)
	}
	chat.ID = id
	return nil
}

func (r *documentChatRepository) GetByID(ctx context.Context, id string) (*entity.Chat, error) {
	path, ok := docstore.ChatPath(id)
	if !ok {
		return nil, errors.BadRequest("Chat ID is required", nil)
	}

	doc, err := r.store.GetDoc(ctx, path)
	if err != nil {
		return nil, storeError("Chat", err)
	}
	return entity.ChatFromDocument(doc), nil
}

func (r *documentChatRepository) ListByParticipant(ctx context.Context, uid string) ([]*entity.Chat, error) {
	q, ok := docstore.Chats(uid)
	if !ok {
		return nil, errors.ErrNoSession
	}

	docs, err := r.store.Get(ctx, q)
	if err != nil {
		return nil, storeError("Chats", err)
	}
	return chatsFrom(docs), nil
}

func (r *documentChatRepository) ListAll(ctx context.Context) ([]*entity.Chat, error) {
	docs, err := r.store.Get(ctx, docstore.Query{Collection: docstore.ChatsCollection})
	if err != nil {
		return nil, storeError("Chats", err)
	}
	return chatsFrom(docs), nil
}

func (r *documentChatRepository) AddMessage(ctx context.Context, message *entity.Message) error {
	collection, ok := docstore.MessagesPath(message.ChatID)
	if !ok {
		return errors.BadRequest("Chat ID is required", nil)
	}

	id, err := r.store.Add(ctx, collection, message.Fields())
	if err != nil {
		log.Printf("Error creating message in chat %s: %v", message.ChatID, err)
		return storeError("Message", err)
	}
	message.ID = id
	return nil
}

func (r *documentChatRepository) ListMessages(ctx context.Context, chatID string) ([]*entity.Message, error) {
	q, ok := docstore.Messages(chatID)
	if !ok {
		return nil, errors.BadRequest("Chat ID is required", nil)
	}

	docs, err := r.store.Get(ctx, q)
	if err != nil {
		return nil, storeError("Messages", err)
	}
	return messagesFrom(chatID, docs), nil
}

// LatestMessage returns the newest message of a chat, or nil when the chat
// has none.
func (r *documentChatRepository) LatestMessage(ctx context.Context, chatID string) (*entity.Message, error) {
	path, ok := docstore.MessagesPath(chatID)
	if !ok {
		return nil, errors.BadRequest("Chat ID is required", nil)
	}

	q := docstore.Query{Collection: path}.OrderBy("timestamp", true).WithLimit(1)
	docs, err := r.store.Get(ctx, q)
	if err != nil {
		return nil, storeError("Messages", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	return entity.MessageFromDocument(chatID, docs[0]), nil
}

func (r *documentChatRepository) MarkRead(ctx context.Context, chatID, messageID string) error {
	collection, ok := docstore.MessagesPath(chatID)
	if !ok {
		return errors.BadRequest("Chat ID is required", nil)
	}
	path, ok := docstore.DocPath(collection, messageID)
	if !ok {
		return errors.BadRequest("Message ID is required", nil)
	}

	if _, err := r.store.GetDoc(ctx, path); err != nil {
		return storeError("Message", err)
	}
	if err := r.store.Write(ctx, path, map[string]interface{}{"read": true}, docstore.Merge); err != nil {
		log.Printf("Error marking message %s as read: %v", messageID, err)
		return storeError("Message", err)
	}
	return nil
}
