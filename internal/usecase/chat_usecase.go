package usecase

import (
	"context"
	"log"
	"strings"
	"time"

	"nutriflow/internal/domain/docstore"
	"nutriflow/internal/domain/entity"
	"nutriflow/internal/domain/repository"
	"nutriflow/internal/infrastructure/livequery"
	"nutriflow/internal/infrastructure/ratelimit"
	"nutriflow/pkg/errors"
)

// Subscription scopes owned by the chat page. Switching to another chat
// replaces the messages subscription.
const (
	ChatsScope    = "chats"
	MessagesScope = "messages"
)

const relationMessageChat = "message->chat"

type ChatUseCase struct {
	chatRepo    repository.ChatRepository
	sync        *Synchronizer
	rateLimiter *ratelimit.RateLimiter
	now         Clock
}

func NewChatUseCase(
	chatRepo repository.ChatRepository,
	sync *Synchronizer,
	rateLimiter *ratelimit.RateLimiter,
) *ChatUseCase {
	return &ChatUseCase{
		chatRepo:    chatRepo,
		sync:        sync,
		rateLimiter: rateLimiter,
		now:         time.Now,
	}
}

// WithClock replaces the clock used for chat and message timestamps.
func (uc *ChatUseCase) WithClock(now Clock) *ChatUseCase {
	uc.now = now
	return uc
}

type SendMessageInput struct {
	ChatID   string
	Text     string
	ImageURL string
}

func (uc *ChatUseCase) timestamp() time.Time {
	// Firestore keeps microseconds; truncating keeps the message and the
	// chat summary equal after a round trip.
	return uc.now().UTC().Truncate(time.Microsecond)
}

func chatsFromSnapshot(snap docstore.Snapshot) []*entity.Chat {
	chats := make([]*entity.Chat, 0, len(snap.Docs))
	for _, doc := range snap.Docs {
		chats = append(chats, entity.ChatFromDocument(doc))
	}
	return chats
}

// WatchChats keeps onChats fed with uid's chats, most recent first.
func (uc *ChatUseCase) WatchChats(ctx context.Context, subs *livequery.Manager, uid string, onChats func([]*entity.Chat), onError func(error)) (*livequery.Handle, error) {
	q, ok := docstore.Chats(uid)
	if !ok {
		return nil, errors.ErrNoSession
	}

	return subs.Subscribe(ctx, ChatsScope, q, func(snap docstore.Snapshot) {
		onChats(chatsFromSnapshot(snap))
	}, onError), nil
}

// WatchMessages keeps onMessages fed with the chat's messages in send order.
// Only participants may watch a chat.
func (uc *ChatUseCase) WatchMessages(ctx context.Context, subs *livequery.Manager, uid, chatID string, onMessages func([]*entity.Message), onError func(error)) (*livequery.Handle, error) {
	if uid == "" {
		return nil, errors.ErrNoSession
	}
	if _, err := uc.participantChat(ctx, uid, chatID); err != nil {
		return nil, err
	}

	q, _ := docstore.Messages(chatID)
	return subs.Subscribe(ctx, MessagesScope, q, func(snap docstore.Snapshot) {
		messages := make([]*entity.Message, 0, len(snap.Docs))
		for _, doc := range snap.Docs {
			messages = append(messages, entity.MessageFromDocument(chatID, doc))
		}
		onMessages(messages)
	}, onError), nil
}

func (uc *ChatUseCase) ListChats(ctx context.Context, uid string) ([]*entity.Chat, error) {
	return uc.chatRepo.ListByParticipant(ctx, uid)
}

func (uc *ChatUseCase) ListMessages(ctx context.Context, uid, chatID string) ([]*entity.Message, error) {
	if uid == "" {
		return nil, errors.ErrNoSession
	}
	if _, err := uc.participantChat(ctx, uid, chatID); err != nil {
		return nil, err
	}
	return uc.chatRepo.ListMessages(ctx, chatID)
}

// ResolveChat returns the chat between uid and counterpartID, creating it
// when none is known. The lookup uses the chats already loaded by the
// session's live subscription and falls back to a one-shot read. Two
// sessions resolving the same pair at once may both create a chat.
func (uc *ChatUseCase) ResolveChat(ctx context.Context, subs *livequery.Manager, uid, counterpartID string) (*entity.Chat, bool, error) {
	if uid == "" {
		return nil, false, errors.ErrNoSession
	}
	counterpartID = strings.TrimSpace(counterpartID)
	if counterpartID == "" {
		return nil, false, errors.BadRequest("Selecione um paciente para conversar", nil)
	}
	if counterpartID == uid {
		return nil, false, errors.BadRequest("Não é possível iniciar uma conversa consigo mesmo", nil)
	}

	known, err := uc.knownChats(ctx, subs, uid)
	if err != nil {
		return nil, false, err
	}
	for _, chat := range known {
		if chat.HasParticipant(counterpartID) {
			return chat, false, nil
		}
	}

	if allowed, wait := uc.rateLimiter.Allow(uid, ratelimit.ActionCreateChat); !allowed {
		log.Printf("ResolveChat Rate Limited: User %s must wait %v", uid, wait)
		return nil, false, errors.TooManyRequests("Muitas conversas criadas. Aguarde um instante")
	}

	now := uc.timestamp()
	chat := &entity.Chat{
		Participants: []string{uid, counterpartID},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.chatRepo.Create(ctx, chat); err != nil {
		log.Printf("ResolveChat Error: Failed to create chat between %s and %s: %v", uid, counterpartID, err)
		return nil, false, errors.Internal("Erro ao criar conversa", err)
	}
	return chat, true, nil
}

func (uc *ChatUseCase) knownChats(ctx context.Context, subs *livequery.Manager, uid string) ([]*entity.Chat, error) {
	if subs != nil {
		if h, ok := subs.Lookup(ChatsScope); ok {
			if snap, ok := h.Latest(); ok {
				return chatsFromSnapshot(snap), nil
			}
		}
	}
	return uc.chatRepo.ListByParticipant(ctx, uid)
}

// SendMessage stores the message and then refreshes the chat's lastMessage
// and updatedAt from the same clock reading. If only the second write fails
// the stored message is returned together with a SUMMARY_DRIFT error.
func (uc *ChatUseCase) SendMessage(ctx context.Context, uid string, input SendMessageInput) (*entity.Message, error) {
	if uid == "" {
		return nil, errors.ErrNoSession
	}
	text := strings.TrimSpace(input.Text)
	if text == "" && input.ImageURL == "" {
		return nil, errors.BadRequest("A mensagem não pode estar vazia", nil)
	}

	if allowed, wait := uc.rateLimiter.Allow(uid, ratelimit.ActionSendMessage); !allowed {
		log.Printf("SendMessage Rate Limited: User %s must wait %v", uid, wait)
		return nil, errors.TooManyRequests("Muitas mensagens enviadas. Aguarde um instante")
	}

	if _, err := uc.participantChat(ctx, uid, input.ChatID); err != nil {
		return nil, err
	}

	now := uc.timestamp()
	message := &entity.Message{
		ChatID:    input.ChatID,
		SenderID:  uid,
		Text:      text,
		ImageURL:  input.ImageURL,
		Timestamp: now,
		Read:      false,
	}

	chatPath, _ := docstore.ChatPath(input.ChatID)
	err := uc.sync.CommitWithSummaryUpdate(ctx, relationMessageChat, func(ctx context.Context) error {
		return uc.chatRepo.AddMessage(ctx, message)
	}, chatPath, ChatSummary(text, uid, now))
	if err != nil {
		if errors.Is(err, errors.CodeSummaryDrift) {
			return message, err
		}
		log.Printf("SendMessage Error: chat %s: %v", input.ChatID, err)
		return nil, err
	}
	return message, nil
}

// MarkRead flags a message as read. The caller must take part in the chat.
func (uc *ChatUseCase) MarkRead(ctx context.Context, uid, chatID, messageID string) error {
	if uid == "" {
		return errors.ErrNoSession
	}
	if _, err := uc.participantChat(ctx, uid, chatID); err != nil {
		return err
	}
	return uc.chatRepo.MarkRead(ctx, chatID, messageID)
}

func (uc *ChatUseCase) participantChat(ctx context.Context, uid, chatID string) (*entity.Chat, error) {
	if chatID == "" {
		return nil, errors.BadRequest("Conversa não informada", nil)
	}
	chat, err := uc.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return nil, err
	}
	if !chat.HasParticipant(uid) {
		return nil, errors.Forbidden("Você não participa desta conversa", nil)
	}
	return chat, nil
}
