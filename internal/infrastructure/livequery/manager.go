// Package livequery keeps at most one live subscription per logical scope
// and delivers full ordered snapshots to a callback. Slow consumers only see
// the most recent pending snapshot.
package livequery

import (
	"context"
	stderrors "errors"
	"sync"

	"nutriflow/internal/domain/docstore"
	"nutriflow/pkg/logger"
)

type SnapshotFunc func(docstore.Snapshot)

type ErrorFunc func(error)

type Manager struct {
	store  docstore.DocumentStore
	mu     sync.Mutex
	subs   map[string]*Handle
	closed bool
}

func NewManager(store docstore.DocumentStore) *Manager {
	return &Manager{
		store: store,
		subs:  make(map[string]*Handle),
	}
}

// Subscribe starts a live query under scope. An existing subscription on the
// same scope is cancelled, and its callbacks finished, before the new one
// starts. A callback must not subscribe to its own scope.
func (m *Manager) Subscribe(ctx context.Context, scope string, q docstore.Query, onSnapshot SnapshotFunc, onError ErrorFunc) *Handle {
	h := newHandle(m, scope)

	for {
		m.mu.Lock()
		if m.closed {
			m.mu.Unlock()
			h.Cancel()
			return h
		}
		prev, exists := m.subs[scope]
		if !exists {
			// Listen only registers the query; it does not block.
			sctx, cancel := context.WithCancel(ctx)
			h.ctx, h.cancel = sctx, cancel
			h.stream = m.store.Listen(sctx, q)
			m.subs[scope] = h
			m.mu.Unlock()
			break
		}
		delete(m.subs, scope)
		m.mu.Unlock()
		prev.CancelWait()
	}

	go h.read()
	go h.deliver(onSnapshot, onError)

	logger.Debug("Subscription started: scope=%s, collection=%s", scope, q.Collection)
	return h
}

// Lookup returns the active subscription for scope, if any.
func (m *Manager) Lookup(scope string) (*Handle, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.subs[scope]
	return h, ok
}

// Cancel stops the subscription under scope and waits for its callbacks to
// finish. It must not be called from a callback of this manager; use
// Handle.Cancel there.
func (m *Manager) Cancel(scope string) {
	m.mu.Lock()
	h, ok := m.subs[scope]
	m.mu.Unlock()
	if ok {
		h.CancelWait()
	}
}

// Close cancels every subscription. Later Subscribe calls return handles
// that are already cancelled.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	m.CancelAll()
}

// CancelAll cancels every subscription but keeps the manager usable. No
// callback runs once it returns, so it must not be called from a callback of
// this manager.
func (m *Manager) CancelAll() {
	m.mu.Lock()
	handles := make([]*Handle, 0, len(m.subs))
	for _, h := range m.subs {
		handles = append(handles, h)
	}
	m.mu.Unlock()

	for _, h := range handles {
		h.Cancel()
	}
	for _, h := range handles {
		<-h.done
	}
}

// Active reports the number of live subscriptions.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.subs)
}

func (m *Manager) release(scope string, h *Handle) {
	m.mu.Lock()
	if m.subs[scope] == h {
		delete(m.subs, scope)
	}
	m.mu.Unlock()
}

// Handle is the cancel token of one subscription.
type Handle struct {
	owner  *Manager
	scope  string
	stream docstore.SnapshotStream
	ctx    context.Context
	cancel context.CancelFunc

	mailbox chan docstore.Snapshot
	failed  chan struct{}
	quit    chan struct{}
	done    chan struct{}
	err     error

	// gate orders the stopped flag against the start of each callback.
	gate    sync.Mutex
	stopped bool
	once    sync.Once

	latestMu sync.RWMutex
	latest   *docstore.Snapshot
}

func newHandle(m *Manager, scope string) *Handle {
	return &Handle{
		owner:   m,
		scope:   scope,
		mailbox: make(chan docstore.Snapshot, 1),
		failed:  make(chan struct{}),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (h *Handle) Scope() string {
	return h.scope
}

// Cancel stops the subscription without waiting. It is safe to call more
// than once and from inside a callback. A callback that passed its start
// check before the stop may still run once; CancelWait rules that out.
func (h *Handle) Cancel() {
	h.once.Do(func() {
		h.gate.Lock()
		h.stopped = true
		h.gate.Unlock()

		if h.cancel != nil {
			h.cancel()
		}
		if h.stream != nil {
			h.stream.Stop()
		}
		close(h.quit)
		h.owner.release(h.scope, h)
		if h.stream == nil {
			close(h.done)
		}
	})
}

// CancelWait cancels and blocks until the delivery goroutine has exited, so
// no callback runs after it returns. Calling it from the handle's own
// callback deadlocks.
func (h *Handle) CancelWait() {
	h.Cancel()
	<-h.done
}

// Done is closed once the delivery goroutine has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

// Latest returns the last snapshot handed to the callback.
func (h *Handle) Latest() (docstore.Snapshot, bool) {
	h.latestMu.RLock()
	defer h.latestMu.RUnlock()
	if h.latest == nil {
		return docstore.Snapshot{}, false
	}
	return *h.latest, true
}

func (h *Handle) isStopped() bool {
	h.gate.Lock()
	defer h.gate.Unlock()
	return h.stopped
}

// read pulls from the store stream and parks the newest snapshot in the
// one-slot mailbox, replacing whatever was still pending.
func (h *Handle) read() {
	for {
		snap, err := h.stream.Next()
		if err != nil {
			if h.isStopped() || h.ctx.Err() != nil || stderrors.Is(err, docstore.ErrStreamDone) {
				h.Cancel()
				return
			}
			h.err = err
			close(h.failed)
			return
		}

		h.put(snap)
	}
}

func (h *Handle) put(snap docstore.Snapshot) {
	for {
		select {
		case h.mailbox <- snap:
			return
		default:
		}
		select {
		case <-h.mailbox:
		default:
		}
	}
}

func (h *Handle) deliver(onSnapshot SnapshotFunc, onError ErrorFunc) {
	defer close(h.done)
	for {
		select {
		case snap := <-h.mailbox:
			h.emit(snap, onSnapshot)
		case <-h.failed:
			select {
			case snap := <-h.mailbox:
				h.emit(snap, onSnapshot)
			default:
			}
			logger.Error("Subscription failed: scope=%s, error=%v", h.scope, h.err)
			if h.start() && onError != nil {
				onError(h.err)
			}
			h.Cancel()
			return
		case <-h.quit:
			return
		}
	}
}

func (h *Handle) emit(snap docstore.Snapshot, onSnapshot SnapshotFunc) {
	if !h.start() {
		return
	}
	h.latestMu.Lock()
	h.latest = &snap
	h.latestMu.Unlock()
	if onSnapshot != nil {
		onSnapshot(snap)
	}
}

// start reports whether a callback may begin. Cancel flips the stopped flag
// under the same lock, but the callback itself runs after the unlock.
func (h *Handle) start() bool {
	return !h.isStopped()
}
