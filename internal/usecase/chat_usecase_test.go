package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutriflow/internal/domain/entity"
	"nutriflow/internal/infrastructure/livequery"
	"nutriflow/internal/infrastructure/ratelimit"
	"nutriflow/pkg/errors"
)

func TestResolveChatCreatesOnceThenReuses(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	chat, created, err := f.chats.ResolveChat(ctx, nil, "nutri", "patient-1")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEmpty(t, chat.ID)
	assert.Equal(t, []string{"nutri", "patient-1"}, chat.Participants)

	again, created, err := f.chats.ResolveChat(ctx, nil, "nutri", "patient-1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, chat.ID, again.ID)

	// The counterpart resolves the same chat from their side.
	theirs, created, err := f.chats.ResolveChat(ctx, nil, "patient-1", "nutri")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, chat.ID, theirs.ID)

	other, created, err := f.chats.ResolveChat(ctx, nil, "nutri", "patient-2")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, chat.ID, other.ID)
}

func TestResolveChatUsesLiveSnapshot(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	existing, _, err := f.chats.ResolveChat(ctx, nil, "nutri", "patient-1")
	require.NoError(t, err)

	subs := livequery.NewManager(f.store)
	defer subs.Close()

	got := make(chan []*entity.Chat, 4)
	_, err = f.chats.WatchChats(ctx, subs, "nutri", func(chats []*entity.Chat) { got <- chats }, nil)
	require.NoError(t, err)

	select {
	case chats := <-got:
		require.Len(t, chats, 1)
		assert.Equal(t, existing.ID, chats[0].ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no chats snapshot")
	}

	chat, created, err := f.chats.ResolveChat(ctx, subs, "nutri", "patient-1")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing.ID, chat.ID)
}

func TestResolveChatValidation(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	_, _, err := f.chats.ResolveChat(ctx, nil, "", "patient")
	assert.ErrorIs(t, err, errors.ErrNoSession)

	_, _, err = f.chats.ResolveChat(ctx, nil, "nutri", "  ")
	assert.True(t, errors.Is(err, errors.CodeBadRequest))

	_, _, err = f.chats.ResolveChat(ctx, nil, "nutri", "nutri")
	assert.True(t, errors.Is(err, errors.CodeBadRequest))
}

func TestResolveChatRateLimitsCreation(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()
	f.limit.SetLimit(ratelimit.ActionCreateChat, ratelimit.Limit{Every: time.Hour, Burst: 1})

	_, created, err := f.chats.ResolveChat(ctx, nil, "nutri", "patient-1")
	require.NoError(t, err)
	assert.True(t, created)

	_, _, err = f.chats.ResolveChat(ctx, nil, "nutri", "patient-2")
	assert.True(t, errors.Is(err, errors.CodeTooManyRequests))

	// Reusing an existing chat does not spend a token.
	_, created, err = f.chats.ResolveChat(ctx, nil, "nutri", "patient-1")
	require.NoError(t, err)
	assert.False(t, created)
}

func TestWatchMessagesRequiresParticipant(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	chat, _, err := f.chats.ResolveChat(ctx, nil, "nutri", "patient")
	require.NoError(t, err)

	subs := livequery.NewManager(f.store)
	defer subs.Close()

	_, err = f.chats.WatchMessages(ctx, subs, "stranger", chat.ID, func([]*entity.Message) {}, nil)
	assert.True(t, errors.Is(err, errors.CodeForbidden))
	assert.Equal(t, 0, subs.Active())

	_, err = f.chats.WatchChats(ctx, subs, "", func([]*entity.Chat) {}, nil)
	assert.ErrorIs(t, err, errors.ErrNoSession)
}

func TestWatchMessagesFollowsSends(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	chat, _, err := f.chats.ResolveChat(ctx, nil, "nutri", "patient")
	require.NoError(t, err)

	subs := livequery.NewManager(f.store)
	defer subs.Close()

	got := make(chan []*entity.Message, 8)
	_, err = f.chats.WatchMessages(ctx, subs, "patient", chat.ID, func(m []*entity.Message) { got <- m }, nil)
	require.NoError(t, err)

	next := func() []*entity.Message {
		select {
		case m := <-got:
			return m
		case <-time.After(2 * time.Second):
			t.Fatal("no messages snapshot")
			return nil
		}
	}
	assert.Empty(t, next())

	_, err = f.chats.SendMessage(ctx, "nutri", SendMessageInput{ChatID: chat.ID, Text: "Bom dia"})
	require.NoError(t, err)

	messages := next()
	require.Len(t, messages, 1)
	assert.Equal(t, "Bom dia", messages[0].Text)
	assert.Equal(t, chat.ID, messages[0].ChatID)
}

func TestMarkRead(t *testing.T) {
	f := newChatFixture(t)
	ctx := context.Background()

	chat, _, err := f.chats.ResolveChat(ctx, nil, "nutri", "patient")
	require.NoError(t, err)
	msg, err := f.chats.SendMessage(ctx, "nutri", SendMessageInput{ChatID: chat.ID, Text: "Oi"})
	require.NoError(t, err)

	require.NoError(t, f.chats.MarkRead(ctx, "patient", chat.ID, msg.ID))
	messages, err := f.chats.ListMessages(ctx, "patient", chat.ID)
	require.NoError(t, err)
	assert.True(t, messages[0].Read)

	err = f.chats.MarkRead(ctx, "patient", chat.ID, "missing")
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}
