package usecase

import (
	"sync"

	"nutriflow/internal/infrastructure/session"
)

type GateState int

const (
	GateChecking GateState = iota
	GateAuthenticated
	GateUnauthenticated
)

func (s GateState) String() string {
	switch s {
	case GateAuthenticated:
		return "authenticated"
	case GateUnauthenticated:
		return "unauthenticated"
	}
	return "checking"
}

// IdentitySource pushes every identity change. session.Context implements it.
type IdentitySource interface {
	Watch(fn func(*session.Session)) (stop func())
}

// AuthGate follows an identity source for its whole lifetime. Each time the
// identity resolves to nobody the redirect callback runs.
type AuthGate struct {
	mu       sync.Mutex
	state    GateState
	current  *session.Session
	stopped  bool
	stop     func()
	once     sync.Once
	redirect func()
	onChange func(GateState, *session.Session)
}

// NewAuthGate starts in GateChecking and attaches to source right away.
// onChange may be nil.
func NewAuthGate(source IdentitySource, redirect func(), onChange func(GateState, *session.Session)) *AuthGate {
	g := &AuthGate{
		state:    GateChecking,
		redirect: redirect,
		onChange: onChange,
	}
	stop := source.Watch(g.evaluate)

	g.mu.Lock()
	g.stop = stop
	stopped := g.stopped
	g.mu.Unlock()
	if stopped {
		stop()
	}
	return g
}

func (g *AuthGate) evaluate(s *session.Session) {
	g.mu.Lock()
	if g.stopped {
		g.mu.Unlock()
		return
	}
	g.current = s
	if s == nil {
		g.state = GateUnauthenticated
	} else {
		g.state = GateAuthenticated
	}
	state := g.state
	g.mu.Unlock()

	if g.onChange != nil {
		g.onChange(state, s)
	}
	if state == GateUnauthenticated && g.redirect != nil {
		g.redirect()
	}
}

func (g *AuthGate) State() GateState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Session returns the identity seen by the last evaluation.
func (g *AuthGate) Session() *session.Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// Stop detaches the gate from its identity source. Later identity changes
// are ignored.
func (g *AuthGate) Stop() {
	g.once.Do(func() {
		g.mu.Lock()
		g.stopped = true
		stop := g.stop
		g.mu.Unlock()
		if stop != nil {
			stop()
		}
	})
}
