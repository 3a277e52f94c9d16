package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutriflow/internal/domain/docstore"
	"nutriflow/internal/domain/entity"
	"nutriflow/pkg/errors"
)

func (f *chatFixture) chatDoc(t *testing.T, chatID string) *entity.Chat {
	t.Helper()
	path, _ := docstore.ChatPath(chatID)
	doc, err := f.store.GetDoc(context.Background(), path)
	require.NoError(t, err)
	return entity.ChatFromDocument(doc)
}

func TestSendMessageUpdatesChatSummary(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	chat, created, err := f.chats.ResolveChat(ctx, nil, "nutri", "patient")
	require.NoError(t, err)
	require.True(t, created)

	msg, err := f.chats.SendMessage(ctx, "nutri", SendMessageInput{ChatID: chat.ID, Text: "  Olá!  "})
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "Olá!", msg.Text)
	assert.False(t, msg.Read)

	stored := f.chatDoc(t, chat.ID)
	require.NotNil(t, stored.LastMessage)
	assert.Equal(t, "Olá!", stored.LastMessage.Text)
	assert.Equal(t, "nutri", stored.LastMessage.SenderID)
	assert.True(t, stored.LastMessage.Timestamp.Equal(msg.Timestamp))
	assert.True(t, stored.UpdatedAt.Equal(msg.Timestamp))

	messages, err := f.chats.ListMessages(ctx, "patient", chat.ID)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, msg.ID, messages[0].ID)
}

func TestSendMessageReportsDriftWhenSummaryWriteFails(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	chat, _, err := f.chats.ResolveChat(ctx, nil, "nutri", "patient")
	require.NoError(t, err)

	chatPath, _ := docstore.ChatPath(chat.ID)
	f.store.set(chatPath, "")

	msg, err := f.chats.SendMessage(ctx, "nutri", SendMessageInput{ChatID: chat.ID, Text: "Oi"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.CodeSummaryDrift))
	require.NotNil(t, msg)
	assert.NotEmpty(t, msg.ID)

	// The message is committed, the summary is stale.
	messages, err := f.chats.ListMessages(ctx, "nutri", chat.ID)
	require.NoError(t, err)
	assert.Len(t, messages, 1)
	assert.Nil(t, f.chatDoc(t, chat.ID).LastMessage)

	f.store.set("", "")
	repaired, err := f.sync.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, repaired)

	stored := f.chatDoc(t, chat.ID)
	require.NotNil(t, stored.LastMessage)
	assert.Equal(t, "Oi", stored.LastMessage.Text)
	assert.True(t, stored.UpdatedAt.Equal(msg.Timestamp))

	// A second pass has nothing to do.
	repaired, err = f.sync.ReconcileAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, repaired)
}

func TestSendMessageSkipsSummaryWhenDetailFails(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	chat, _, err := f.chats.ResolveChat(ctx, nil, "nutri", "patient")
	require.NoError(t, err)

	messages, _ := docstore.MessagesPath(chat.ID)
	f.store.set("", messages)

	msg, err := f.chats.SendMessage(ctx, "nutri", SendMessageInput{ChatID: chat.ID, Text: "Oi"})
	require.Error(t, err)
	assert.Nil(t, msg)
	assert.False(t, errors.Is(err, errors.CodeSummaryDrift))
	assert.Equal(t, 0, f.store.merges())
	assert.Nil(t, f.chatDoc(t, chat.ID).LastMessage)
}

func TestSendMessageValidation(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	chat, _, err := f.chats.ResolveChat(ctx, nil, "nutri", "patient")
	require.NoError(t, err)

	_, err = f.chats.SendMessage(ctx, "", SendMessageInput{ChatID: chat.ID, Text: "x"})
	assert.ErrorIs(t, err, errors.ErrNoSession)

	_, err = f.chats.SendMessage(ctx, "nutri", SendMessageInput{ChatID: chat.ID, Text: "   "})
	assert.True(t, errors.Is(err, errors.CodeBadRequest))

	_, err = f.chats.SendMessage(ctx, "stranger", SendMessageInput{ChatID: chat.ID, Text: "x"})
	assert.True(t, errors.Is(err, errors.CodeForbidden))

	_, err = f.chats.SendMessage(ctx, "nutri", SendMessageInput{ChatID: "missing", Text: "x"})
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestCommitWithSummaryUpdate(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Write(ctx, "parents/p1", map[string]interface{}{"name": "p"}, docstore.Create))

	detailRan := false
	err := f.sync.CommitWithSummaryUpdate(ctx, "child->parent", func(ctx context.Context) error {
		detailRan = true
		return f.store.Write(ctx, "parents/p1/children/c1", map[string]interface{}{"v": 1}, docstore.Create)
	}, "parents/p1", map[string]interface{}{"lastChild": "c1"})
	require.NoError(t, err)
	assert.True(t, detailRan)

	doc, err := f.store.GetDoc(ctx, "parents/p1")
	require.NoError(t, err)
	assert.Equal(t, "c1", doc.Data["lastChild"])
	assert.Equal(t, "p", doc.Data["name"])
}

func TestChatSummaryUsesOneInstant(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 6000, time.UTC)
	summary := ChatSummary("oi", "u1", at)
	last := summary["lastMessage"].(map[string]interface{})
	assert.Equal(t, at, last["timestamp"])
	assert.Equal(t, at, summary["updatedAt"])
}
