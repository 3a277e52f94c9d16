package usecase

import (
	"context"
	"time"

	"nutriflow/internal/domain/docstore"
	"nutriflow/internal/domain/repository"
	"nutriflow/pkg/errors"
	"nutriflow/pkg/logger"
)

// DetailWrite persists the child document of a denormalized relation.
type DetailWrite func(ctx context.Context) error

// Synchronizer keeps cached summary fields on parent documents in step with
// their children. The two writes are not atomic.
type Synchronizer struct {
	store    docstore.DocumentStore
	chatRepo repository.ChatRepository
}

func NewSynchronizer(store docstore.DocumentStore, chatRepo repository.ChatRepository) *Synchronizer {
	return &Synchronizer{
		store:    store,
		chatRepo: chatRepo,
	}
}

// CommitWithSummaryUpdate runs detail and then merges projection onto
// parentPath. If the detail write fails nothing else happens. If the summary
// write fails the detail stays committed and a SUMMARY_DRIFT error is
// returned.
func (s *Synchronizer) CommitWithSummaryUpdate(ctx context.Context, relation string, detail DetailWrite, parentPath string, projection map[string]interface{}) error {
	if err := detail(ctx); err != nil {
		logger.Error("Detail write failed: relation=%s, parent=%s, error=%v", relation, parentPath, err)
		if _, ok := err.(*errors.AppError); ok {
			return err
		}
		return errors.Internal("Falha ao salvar", err)
	}

	if err := s.store.Write(ctx, parentPath, projection, docstore.Merge); err != nil {
		logger.LogDrift(parentPath, relation, err)
		return errors.SummaryDrift(parentPath, err)
	}
	return nil
}

// ChatSummary is the projection a message leaves on its chat. updatedAt
// carries the same instant as the message timestamp.
func ChatSummary(text, senderID string, at time.Time) map[string]interface{} {
	return map[string]interface{}{
		"lastMessage": map[string]interface{}{
			"text":      text,
			"timestamp": at,
			"senderId":  senderID,
		},
		"updatedAt": at,
	}
}

// ReconcileChat rewrites a chat's lastMessage from its newest message. It
// reports whether a write was needed.
func (s *Synchronizer) ReconcileChat(ctx context.Context, chatID string) (bool, error) {
	chat, err := s.chatRepo.GetByID(ctx, chatID)
	if err != nil {
		return false, err
	}
	latest, err := s.chatRepo.LatestMessage(ctx, chatID)
	if err != nil {
		return false, err
	}
	if latest == nil {
		return false, nil
	}

	current := chat.LastMessage
	if current != nil &&
		current.Text == latest.Text &&
		current.SenderID == latest.SenderID &&
		current.Timestamp.Equal(latest.Timestamp) &&
		!chat.UpdatedAt.Before(latest.Timestamp) {
		return false, nil
	}

	path, _ := docstore.ChatPath(chatID)
	if err := s.store.Write(ctx, path, ChatSummary(latest.Text, latest.SenderID, latest.Timestamp), docstore.Merge); err != nil {
		logger.LogDrift(path, "message->chat", err)
		return false, errors.SummaryDrift(path, err)
	}
	logger.Info("Reconciled chat summary: chat=%s", chatID)
	return true, nil
}

// ReconcileAll walks every chat. It keeps going past individual failures
// and returns how many chats were repaired plus the first error.
func (s *Synchronizer) ReconcileAll(ctx context.Context) (int, error) {
	chats, err := s.chatRepo.ListAll(ctx)
	if err != nil {
		return 0, err
	}

	var firstErr error
	repaired := 0
	for _, chat := range chats {
		if err := ctx.Err(); err != nil {
			return repaired, err
		}
		fixed, err := s.ReconcileChat(ctx, chat.ID)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if fixed {
			repaired++
		}
	}
	return repaired, firstErr
}
