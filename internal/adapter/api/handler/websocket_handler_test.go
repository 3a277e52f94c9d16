package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutriflow/internal/adapter/repository"
	"nutriflow/internal/domain/entity"
	"nutriflow/internal/infrastructure/firebase"
	"nutriflow/internal/infrastructure/memstore"
	"nutriflow/internal/infrastructure/ratelimit"
	"nutriflow/internal/infrastructure/session"
	ws "nutriflow/internal/infrastructure/websocket"
	"nutriflow/internal/usecase"
	"nutriflow/pkg/errors"
)

const frameWait = 2 * time.Second

type frame struct {
	Type     string          `json:"type"`
	Scope    string          `json:"scope"`
	Code     string          `json:"code"`
	Location string          `json:"location"`
	Data     json.RawMessage `json:"data"`
}

type liveServer struct {
	url     string
	handler *WebSocketHandler
	chats   *usecase.ChatUseCase
	sockets *ws.Manager
}

func newLiveServer(t *testing.T) *liveServer {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	store := memstore.New()
	provider := session.NewProvider(firebase.NewDevAuthClient())

	patientRepo := repository.NewDocumentPatientRepository(store)
	chatRepo := repository.NewDocumentChatRepository(store)
	chats := usecase.NewChatUseCase(chatRepo, usecase.NewSynchronizer(store, chatRepo), ratelimit.NewRateLimiter(600))

	wsManager := ws.NewManager()
	wsManager.Start(ctx)
	h := NewWebSocketHandler(ctx, wsManager, provider, store, WebSocketUseCases{
		Chat:         chats,
		Appointments: usecase.NewAppointmentUseCase(repository.NewDocumentAppointmentRepository(store), patientRepo),
		DietPlans:    usecase.NewDietPlanUseCase(repository.NewDocumentDietPlanRepository(store)),
		Financial:    usecase.NewFinancialUseCase(repository.NewDocumentFinancialRepository(store), patientRepo),
	}, "/login", nil)

	e := echo.New()
	e.GET("/ws", h.HandleWebSocket)
	srv := httptest.NewServer(e)
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})

	return &liveServer{
		url:     "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws",
		handler: h,
		chats:   chats,
		sockets: wsManager,
	}
}

func (s *liveServer) dial(t *testing.T, token string) *gorillaws.Conn {
	t.Helper()
	target := s.url
	if token != "" {
		target += "?token=" + url.QueryEscape(token)
	}
	conn, _, err := gorillaws.DefaultDialer.Dial(target, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

// chatWith creates a chat between uid and counterpart holding one message.
func (s *liveServer) chatWith(t *testing.T, uid, counterpart, text string) *entity.Chat {
	t.Helper()
	chat, _, err := s.chats.ResolveChat(context.Background(), nil, uid, counterpart)
	require.NoError(t, err)
	s.send(t, uid, chat.ID, text)
	return chat
}

func (s *liveServer) send(t *testing.T, uid, chatID, text string) {
	t.Helper()
	_, err := s.chats.SendMessage(context.Background(), uid, usecase.SendMessageInput{ChatID: chatID, Text: text})
	require.NoError(t, err)
}

func sendFrame(t *testing.T, conn *gorillaws.Conn, msg ws.InboundMessage) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
}

// readUntil skips frames until match accepts one.
func readUntil(t *testing.T, conn *gorillaws.Conn, match func(frame) bool) frame {
	t.Helper()
	deadline := time.Now().Add(frameWait)
	for {
		require.NoError(t, conn.SetReadDeadline(deadline))
		var f frame
		_, raw, err := conn.ReadMessage()
		require.NoError(t, err, "no matching frame before the deadline")
		require.NoError(t, json.Unmarshal(raw, &f))
		if match(f) {
			return f
		}
	}
}

func ofType(typ string) func(frame) bool {
	return func(f frame) bool { return f.Type == typ }
}

func snapshotOf(scope string) func(frame) bool {
	return func(f frame) bool { return f.Type == ws.MessageTypeSnapshot && f.Scope == scope }
}

// quiet collects every frame that arrives within d. The connection is not
// readable afterwards.
func quiet(t *testing.T, conn *gorillaws.Conn, d time.Duration) []frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(d)))
	var got []frame
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return got
		}
		var f frame
		require.NoError(t, json.Unmarshal(raw, &f))
		got = append(got, f)
	}
}

func messagesIn(t *testing.T, f frame) []entity.Message {
	t.Helper()
	var messages []entity.Message
	require.NoError(t, json.Unmarshal(f.Data, &messages))
	return messages
}

func TestWebSocketSubscribeAndSwitchChats(t *testing.T) {
	s := newLiveServer(t)
	chatA := s.chatWith(t, "nutri", "p1", "olá A")
	chatB := s.chatWith(t, "nutri", "p2", "olá B")

	conn := s.dial(t, firebase.DevToken("nutri", "Ana"))
	f := readUntil(t, conn, ofType(ws.MessageTypeSession))
	var sess session.Session
	require.NoError(t, json.Unmarshal(f.Data, &sess))
	assert.Equal(t, "nutri", sess.ID)
	assert.Equal(t, "Ana", sess.DisplayName)

	sendFrame(t, conn, ws.InboundMessage{Type: ws.MessageTypeSubscribe, Scope: usecase.ChatsScope})
	f = readUntil(t, conn, snapshotOf(usecase.ChatsScope))
	var chats []entity.Chat
	require.NoError(t, json.Unmarshal(f.Data, &chats))
	assert.Len(t, chats, 2)

	sendFrame(t, conn, ws.InboundMessage{Type: ws.MessageTypeSubscribe, Scope: usecase.MessagesScope, ChatID: chatA.ID})
	messages := messagesIn(t, readUntil(t, conn, snapshotOf(usecase.MessagesScope)))
	require.Len(t, messages, 1)
	assert.Equal(t, "olá A", messages[0].Text)

	// The second chat replaces the first one's messages subscription.
	sendFrame(t, conn, ws.InboundMessage{Type: ws.MessageTypeSubscribe, Scope: usecase.MessagesScope, ChatID: chatB.ID})
	messages = messagesIn(t, readUntil(t, conn, snapshotOf(usecase.MessagesScope)))
	require.Len(t, messages, 1)
	assert.Equal(t, chatB.ID, messages[0].ChatID)

	s.send(t, "nutri", chatA.ID, "ainda A")
	s.send(t, "nutri", chatB.ID, "de novo B")
	messages = messagesIn(t, readUntil(t, conn, snapshotOf(usecase.MessagesScope)))
	require.Len(t, messages, 2)
	for _, m := range messages {
		assert.Equal(t, chatB.ID, m.ChatID)
	}

	sendFrame(t, conn, ws.InboundMessage{Type: ws.MessageTypePing})
	readUntil(t, conn, ofType(ws.MessageTypePong))
}

func TestWebSocketSignOutRedirectsAndStopsSnapshots(t *testing.T) {
	s := newLiveServer(t)
	chat := s.chatWith(t, "nutri", "p1", "olá")

	conn := s.dial(t, firebase.DevToken("nutri", ""))
	readUntil(t, conn, ofType(ws.MessageTypeSession))
	sendFrame(t, conn, ws.InboundMessage{Type: ws.MessageTypeSubscribe, Scope: usecase.ChatsScope})
	readUntil(t, conn, snapshotOf(usecase.ChatsScope))
	sendFrame(t, conn, ws.InboundMessage{Type: ws.MessageTypeSubscribe, Scope: usecase.MessagesScope, ChatID: chat.ID})
	readUntil(t, conn, snapshotOf(usecase.MessagesScope))

	sendFrame(t, conn, ws.InboundMessage{Type: ws.MessageTypeSignOut})
	f := readUntil(t, conn, ofType(ws.MessageTypeRedirect))
	assert.Equal(t, "/login", f.Location)

	sendFrame(t, conn, ws.InboundMessage{Type: ws.MessageTypeSubscribe, Scope: usecase.ChatsScope})
	f = readUntil(t, conn, ofType(ws.MessageTypeError))
	assert.Equal(t, usecase.ChatsScope, f.Scope)
	assert.Equal(t, errors.ErrNoSession.Code, f.Code)

	s.send(t, "nutri", chat.ID, "depois de sair")
	for _, f := range quiet(t, conn, 200*time.Millisecond) {
		assert.NotEqual(t, ws.MessageTypeSnapshot, f.Type, "snapshot for %s after sign out", f.Scope)
	}
}

func TestWebSocketIdentitySwitchCancelsSubscriptions(t *testing.T) {
	s := newLiveServer(t)
	s.chatWith(t, "nutri", "p1", "olá")

	conn := s.dial(t, firebase.DevToken("nutri", ""))
	readUntil(t, conn, ofType(ws.MessageTypeSession))
	sendFrame(t, conn, ws.InboundMessage{Type: ws.MessageTypeSubscribe, Scope: usecase.ChatsScope})
	readUntil(t, conn, snapshotOf(usecase.ChatsScope))

	sendFrame(t, conn, ws.InboundMessage{Type: ws.MessageTypeAuth, Token: firebase.DevToken("other", "")})
	f := readUntil(t, conn, ofType(ws.MessageTypeSession))
	var sess session.Session
	require.NoError(t, json.Unmarshal(f.Data, &sess))
	assert.Equal(t, "other", sess.ID)

	// A new chat for the previous identity must not reach this connection.
	s.chatWith(t, "nutri", "p2", "oi")
	for _, f := range quiet(t, conn, 200*time.Millisecond) {
		assert.NotEqual(t, ws.MessageTypeSnapshot, f.Type, "snapshot for %s after identity switch", f.Scope)
	}
}

func TestWebSocketAuthFrame(t *testing.T) {
	s := newLiveServer(t)

	conn := s.dial(t, "")
	sendFrame(t, conn, ws.InboundMessage{Type: ws.MessageTypeAuth, Token: firebase.DevToken("nutri", "")})
	f := readUntil(t, conn, ofType(ws.MessageTypeSession))
	assert.Contains(t, string(f.Data), `"id":"nutri"`)

	other := s.dial(t, "")
	sendFrame(t, other, ws.InboundMessage{Type: ws.MessageTypeAuth, Token: "garbage"})
	f = readUntil(t, other, ofType(ws.MessageTypeRedirect))
	assert.Equal(t, "/login", f.Location)
	f = readUntil(t, other, ofType(ws.MessageTypeError))
	assert.Equal(t, errors.CodeUnauthorized, f.Code)
}

func TestWebSocketDisconnectReleasesConnection(t *testing.T) {
	s := newLiveServer(t)

	conn := s.dial(t, firebase.DevToken("nutri", ""))
	readUntil(t, conn, ofType(ws.MessageTypeSession))
	sendFrame(t, conn, ws.InboundMessage{Type: ws.MessageTypeSubscribe, Scope: usecase.ChatsScope})
	readUntil(t, conn, snapshotOf(usecase.ChatsScope))
	assert.Equal(t, 1, s.handler.Connections())

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool {
		return s.handler.Connections() == 0 && s.sockets.Count() == 0
	}, frameWait, 10*time.Millisecond)
}
