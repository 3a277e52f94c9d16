package handler

import (
	"context"
	stderrors "errors"
	"net/http"
	"sync"
	"time"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"nutriflow/internal/adapter/api/middleware"
	"nutriflow/internal/domain/docstore"
	"nutriflow/internal/domain/entity"
	"nutriflow/internal/infrastructure/livequery"
	"nutriflow/internal/infrastructure/session"
	ws "nutriflow/internal/infrastructure/websocket"
	"nutriflow/internal/usecase"
	"nutriflow/pkg/errors"
	"nutriflow/pkg/logger"
)

const authTimeout = 15 * time.Second

// Live scopes a client may subscribe to.
const (
	scopeChats        = usecase.ChatsScope
	scopeMessages     = usecase.MessagesScope
	scopeAppointments = usecase.AppointmentsScope
	scopeDietPlans    = usecase.DietPlansScope
	scopeFinancial    = usecase.FinancialScope
)

type WebSocketUseCases struct {
	Chat         *usecase.ChatUseCase
	Appointments *usecase.AppointmentUseCase
	DietPlans    *usecase.DietPlanUseCase
	Financial    *usecase.FinancialUseCase
}

// WebSocketHandler serves the live snapshot channel. Each connection owns an
// identity context, an auth gate and its own set of subscriptions.
type WebSocketHandler struct {
	ctx       context.Context
	wsManager *ws.Manager
	provider  *session.Provider
	store     docstore.DocumentStore
	useCases  WebSocketUseCases
	loginPath string
	upgrader  gorillaws.Upgrader

	mu    sync.Mutex
	conns map[string]*connection
}

type connection struct {
	client   *ws.Client
	identity *session.Context
	subs     *livequery.Manager
	gate     *usecase.AuthGate
	ctx      context.Context
	cancel   context.CancelFunc
	timer    *time.Timer

	mu  sync.Mutex
	uid string
}

// switchIdentity records uid as the signed-in identity and reports whether
// it differs from the previous one.
func (cc *connection) switchIdentity(uid string) bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	changed := cc.uid != uid
	cc.uid = uid
	return changed
}

// NewWebSocketHandler ties connections to ctx, the server's lifetime, since
// the upgrade request's context ends once the handler returns.
func NewWebSocketHandler(ctx context.Context, wsManager *ws.Manager, provider *session.Provider, store docstore.DocumentStore, useCases WebSocketUseCases, loginPath string, allowedOrigins []string) *WebSocketHandler {
	if loginPath == "" {
		loginPath = "/login"
	}
	return &WebSocketHandler{
		ctx:       ctx,
		wsManager: wsManager,
		provider:  provider,
		store:     store,
		useCases:  useCases,
		loginPath: loginPath,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		conns: make(map[string]*connection),
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// HandleWebSocket upgrades the request. A token may come with the upgrade
// (Authorization header or ?token=); otherwise the client has authTimeout to
// send an auth frame before it is redirected to the login page.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	token := middleware.BearerToken(c.Request())
	if token == "" {
		token = c.QueryParam("token")
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		logger.Error("WebSocket upgrade failed: %v", err)
		return nil
	}

	client := ws.NewClient(conn)
	cc := h.open(client)

	select {
	case h.wsManager.Register <- client:
	case <-h.ctx.Done():
		h.Disconnected(client)
		conn.Close()
		return nil
	}

	if token != "" {
		if _, err := cc.identity.SignIn(cc.ctx, token); err != nil {
			client.Enqueue(errorFrame("", err))
		}
	} else {
		cc.timer = time.AfterFunc(authTimeout, cc.identity.Resolve)
	}

	go client.WritePump()
	go client.ReadPump(h.ctx, h.wsManager, h)
	return nil
}

func (h *WebSocketHandler) open(client *ws.Client) *connection {
	ctx, cancel := context.WithCancel(h.ctx)
	cc := &connection{
		client:   client,
		identity: h.provider.NewContext(),
		subs:     livequery.NewManager(h.store),
		ctx:      ctx,
		cancel:   cancel,
	}

	cc.gate = usecase.NewAuthGate(cc.identity, func() {
		cc.subs.CancelAll()
		client.Enqueue(ws.EncodeRedirect(h.loginPath))
	}, func(state usecase.GateState, sess *session.Session) {
		logger.Debug("WebSocket gate: client=%s, state=%s", client.ID, state)
		if state != usecase.GateAuthenticated {
			cc.switchIdentity("")
			return
		}
		// Subscriptions are scoped to the identity that opened them.
		if cc.switchIdentity(sess.ID) {
			cc.subs.CancelAll()
		}
		client.Enqueue(ws.EncodeSession(sess))
	})

	h.mu.Lock()
	h.conns[client.ID] = cc
	h.mu.Unlock()
	return cc
}

func (h *WebSocketHandler) lookup(client *ws.Client) (*connection, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	cc, ok := h.conns[client.ID]
	return cc, ok
}

// Disconnected releases everything the connection held.
func (h *WebSocketHandler) Disconnected(client *ws.Client) {
	h.mu.Lock()
	cc, ok := h.conns[client.ID]
	delete(h.conns, client.ID)
	h.mu.Unlock()
	if !ok {
		return
	}

	if cc.timer != nil {
		cc.timer.Stop()
	}
	cc.gate.Stop()
	cc.subs.Close()
	cc.identity.Close()
	cc.cancel()
}

func (h *WebSocketHandler) HandleMessage(client *ws.Client, msg ws.InboundMessage) {
	cc, ok := h.lookup(client)
	if !ok {
		return
	}

	switch msg.Type {
	case ws.MessageTypePing:
		client.Enqueue(ws.EncodePong())

	case ws.MessageTypeAuth:
		if cc.timer != nil {
			cc.timer.Stop()
		}
		if _, err := cc.identity.SignIn(cc.ctx, msg.Token); err != nil {
			client.Enqueue(errorFrame("", err))
		}

	case ws.MessageTypeSignOut:
		cc.identity.SignOut()

	case ws.MessageTypeSubscribe:
		if err := h.subscribe(cc, msg); err != nil {
			client.Enqueue(errorFrame(msg.Scope, err))
		}

	case ws.MessageTypeUnsubscribe:
		cc.subs.Cancel(msg.Scope)

	default:
		client.Enqueue(ws.EncodeError("", errors.CodeBadRequest, "Tipo de mensagem desconhecido"))
	}
}

func (h *WebSocketHandler) subscribe(cc *connection, msg ws.InboundMessage) error {
	uid := cc.identity.UID()
	if uid == "" {
		return errors.ErrNoSession
	}

	client := cc.client
	onError := func(scope string) func(error) {
		return func(err error) {
			client.Enqueue(errorFrame(scope, err))
		}
	}

	var err error
	switch msg.Scope {
	case scopeChats:
		_, err = h.useCases.Chat.WatchChats(cc.ctx, cc.subs, uid, func(chats []*entity.Chat) {
			client.Enqueue(ws.EncodeSnapshot(scopeChats, chats))
		}, onError(scopeChats))

	case scopeMessages:
		_, err = h.useCases.Chat.WatchMessages(cc.ctx, cc.subs, uid, msg.ChatID, func(messages []*entity.Message) {
			client.Enqueue(ws.EncodeSnapshot(scopeMessages, messages))
		}, onError(scopeMessages))

	case scopeAppointments:
		_, err = h.useCases.Appointments.WatchAppointments(cc.ctx, cc.subs, uid, func(list []*entity.Appointment) {
			client.Enqueue(ws.EncodeSnapshot(scopeAppointments, list))
		}, onError(scopeAppointments))

	case scopeDietPlans:
		_, err = h.useCases.DietPlans.WatchPlans(cc.ctx, cc.subs, uid, func(plans []*entity.DietPlan) {
			client.Enqueue(ws.EncodeSnapshot(scopeDietPlans, plans))
		}, onError(scopeDietPlans))

	case scopeFinancial:
		month, perr := h.useCases.Financial.ParseMonth(msg.Month)
		if perr != nil {
			return perr
		}
		_, err = h.useCases.Financial.WatchMonth(cc.ctx, cc.subs, uid, month, func(summary *usecase.FinancialSummary) {
			client.Enqueue(ws.EncodeSnapshot(scopeFinancial, summary))
		}, onError(scopeFinancial))

	default:
		return errors.BadRequest("Escopo desconhecido: "+msg.Scope, nil)
	}
	return err
}

// Connections reports the number of open live connections.
func (h *WebSocketHandler) Connections() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

func errorFrame(scope string, err error) []byte {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return ws.EncodeError(scope, appErr.Code, appErr.Message)
	}
	logger.Error("WebSocket: scope=%s, error=%v", scope, err)
	return ws.EncodeError(scope, errors.CodeInternal, "Ocorreu um erro inesperado")
}
