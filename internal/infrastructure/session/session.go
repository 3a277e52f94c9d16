// Package session tracks who is signed in on each live connection. One
// Provider is built at startup; every connection gets its own Context.
package session

import (
	"context"
	"sync"

	"nutriflow/pkg/errors"
	"nutriflow/pkg/logger"
)

// Session is the signed-in professional.
type Session struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
	PhotoURL    string `json:"photoUrl,omitempty"`
}

// Identity is what an identity backend reports for a verified token.
type Identity struct {
	UID         string
	DisplayName string
	Email       string
	PhotoURL    string
}

type IdentityClient interface {
	VerifyToken(ctx context.Context, token string) (*Identity, error)
	UpdateProfile(ctx context.Context, uid, displayName, photoURL string) error
}

type Provider struct {
	client IdentityClient

	mu       sync.Mutex
	contexts map[*Context]struct{}
}

func NewProvider(client IdentityClient) *Provider {
	return &Provider{
		client:   client,
		contexts: make(map[*Context]struct{}),
	}
}

// Verify checks a token without attaching it to any context.
func (p *Provider) Verify(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, errors.Unauthorized("Token não informado", nil)
	}
	identity, err := p.client.VerifyToken(ctx, token)
	if err != nil {
		logger.Warn("Token verification failed: %v", err)
		return nil, errors.Unauthorized("Sessão inválida ou expirada", err)
	}
	return &Session{
		ID:          identity.UID,
		DisplayName: identity.DisplayName,
		Email:       identity.Email,
		PhotoURL:    identity.PhotoURL,
	}, nil
}

// UpdateProfile changes the display name and photo URL of uid on the
// identity backend and refreshes every live context signed in as uid.
// Empty values are left unchanged.
func (p *Provider) UpdateProfile(ctx context.Context, uid, displayName, photoURL string) error {
	if uid == "" {
		return errors.ErrNoSession
	}
	if err := p.client.UpdateProfile(ctx, uid, displayName, photoURL); err != nil {
		logger.Error("Failed to update identity profile for %s: %v", uid, err)
		return errors.Internal("Falha ao atualizar perfil", err)
	}

	p.mu.Lock()
	contexts := make([]*Context, 0, len(p.contexts))
	for c := range p.contexts {
		contexts = append(contexts, c)
	}
	p.mu.Unlock()

	for _, c := range contexts {
		c.refresh(uid, displayName, photoURL)
	}
	return nil
}

// NewContext returns an unresolved context attached to the provider. Call
// Close when the connection ends.
func (p *Provider) NewContext() *Context {
	c := &Context{
		provider: p,
		watchers: make(map[int]func(*Session)),
	}
	p.mu.Lock()
	p.contexts[c] = struct{}{}
	p.mu.Unlock()
	return c
}

func (p *Provider) detach(c *Context) {
	p.mu.Lock()
	delete(p.contexts, c)
	p.mu.Unlock()
}
