package usecase

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutriflow/internal/infrastructure/session"
)

type tokenClient struct{}

func (tokenClient) VerifyToken(ctx context.Context, token string) (*session.Identity, error) {
	if !strings.HasPrefix(token, "ok:") {
		return nil, fmt.Errorf("invalid token")
	}
	return &session.Identity{UID: strings.TrimPrefix(token, "ok:")}, nil
}

func (tokenClient) UpdateProfile(ctx context.Context, uid, displayName, photoURL string) error {
	return nil
}

func TestAuthGateWaitsWhileChecking(t *testing.T) {
	identity := session.NewProvider(tokenClient{}).NewContext()
	defer identity.Close()

	redirects := 0
	gate := NewAuthGate(identity, func() { redirects++ }, nil)
	defer gate.Stop()

	assert.Equal(t, GateChecking, gate.State())
	assert.Equal(t, 0, redirects)
	assert.Nil(t, gate.Session())
}

func TestAuthGateTransitions(t *testing.T) {
	ctx := context.Background()
	identity := session.NewProvider(tokenClient{}).NewContext()
	defer identity.Close()

	redirects := 0
	var states []GateState
	gate := NewAuthGate(identity, func() { redirects++ }, func(s GateState, _ *session.Session) {
		states = append(states, s)
	})
	defer gate.Stop()

	_, err := identity.SignIn(ctx, "ok:nutri")
	require.NoError(t, err)
	assert.Equal(t, GateAuthenticated, gate.State())
	assert.Equal(t, "nutri", gate.Session().ID)
	assert.Equal(t, 0, redirects)

	identity.SignOut()
	assert.Equal(t, GateUnauthenticated, gate.State())
	assert.Equal(t, 1, redirects)

	// Every later sign-out redirects again.
	_, err = identity.SignIn(ctx, "ok:nutri")
	require.NoError(t, err)
	_, err = identity.SignIn(ctx, "expired")
	require.Error(t, err)
	assert.Equal(t, 2, redirects)

	assert.Equal(t, []GateState{GateAuthenticated, GateUnauthenticated, GateAuthenticated, GateUnauthenticated}, states)
}

func TestAuthGateResolvedAsSignedOutRedirects(t *testing.T) {
	identity := session.NewProvider(tokenClient{}).NewContext()
	defer identity.Close()
	identity.Resolve()

	redirects := 0
	gate := NewAuthGate(identity, func() { redirects++ }, nil)
	defer gate.Stop()

	assert.Equal(t, GateUnauthenticated, gate.State())
	assert.Equal(t, 1, redirects)
}

func TestAuthGateStopIgnoresLaterChanges(t *testing.T) {
	identity := session.NewProvider(tokenClient{}).NewContext()
	defer identity.Close()

	redirects := 0
	gate := NewAuthGate(identity, func() { redirects++ }, nil)
	gate.Stop()
	gate.Stop()

	identity.SignOut()
	assert.Equal(t, 0, redirects)
	assert.Equal(t, GateChecking, gate.State())
	assert.Equal(t, "checking", gate.State().String())
}
