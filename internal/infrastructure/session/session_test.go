package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutriflow/pkg/errors"
)

// fakeClient accepts "ok:<uid>" tokens.
type fakeClient struct {
	mu      sync.Mutex
	updates []string
}

func (f *fakeClient) VerifyToken(ctx context.Context, token string) (*Identity, error) {
	if !strings.HasPrefix(token, "ok:") {
		return nil, fmt.Errorf("bad token")
	}
	uid := strings.TrimPrefix(token, "ok:")
	return &Identity{UID: uid, DisplayName: "Nutri " + uid}, nil
}

func (f *fakeClient) UpdateProfile(ctx context.Context, uid, displayName, photoURL string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, uid+"|"+displayName+"|"+photoURL)
	return nil
}

func TestVerify(t *testing.T) {
	p := NewProvider(&fakeClient{})

	s, err := p.Verify(context.Background(), "ok:u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", s.ID)
	assert.Equal(t, "Nutri u1", s.DisplayName)

	_, err = p.Verify(context.Background(), "")
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))

	_, err = p.Verify(context.Background(), "nope")
	assert.True(t, errors.Is(err, errors.CodeUnauthorized))
}

func TestContextStartsUnresolved(t *testing.T) {
	p := NewProvider(&fakeClient{})
	c := p.NewContext()
	defer c.Close()

	calls := 0
	stop := c.Watch(func(*Session) { calls++ })
	defer stop()

	assert.False(t, c.Resolved())
	assert.Nil(t, c.Current())
	assert.Empty(t, c.UID())
	assert.Equal(t, 0, calls)
}

func TestContextTransitions(t *testing.T) {
	p := NewProvider(&fakeClient{})
	c := p.NewContext()
	defer c.Close()

	var seen []string
	stop := c.Watch(func(s *Session) {
		if s == nil {
			seen = append(seen, "")
			return
		}
		seen = append(seen, s.ID)
	})
	defer stop()

	_, err := c.SignIn(context.Background(), "ok:u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", c.UID())
	assert.True(t, c.Resolved())

	c.SignOut()
	assert.Empty(t, c.UID())

	_, err = c.SignIn(context.Background(), "bad")
	assert.Error(t, err)

	// Resolve is a no-op once settled.
	c.Resolve()

	assert.Equal(t, []string{"u1", "", ""}, seen)
}

func TestWatchAfterResolutionFiresImmediately(t *testing.T) {
	p := NewProvider(&fakeClient{})
	c := p.NewContext()
	defer c.Close()

	c.Resolve()

	var got *Session
	fired := false
	stop := c.Watch(func(s *Session) {
		fired = true
		got = s
	})
	stop()
	stop()

	assert.True(t, fired)
	assert.Nil(t, got)

	_, err := c.SignIn(context.Background(), "ok:u2")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestCurrentReturnsCopy(t *testing.T) {
	p := NewProvider(&fakeClient{})
	c := p.NewContext()
	defer c.Close()

	_, err := c.SignIn(context.Background(), "ok:u1")
	require.NoError(t, err)

	s := c.Current()
	s.ID = "someone-else"
	assert.Equal(t, "u1", c.UID())
}

func TestUpdateProfileRefreshesMatchingContexts(t *testing.T) {
	client := &fakeClient{}
	p := NewProvider(client)
	ctx := context.Background()

	mine := p.NewContext()
	defer mine.Close()
	other := p.NewContext()
	defer other.Close()

	_, err := mine.SignIn(ctx, "ok:u1")
	require.NoError(t, err)
	_, err = other.SignIn(ctx, "ok:u2")
	require.NoError(t, err)

	var refreshed *Session
	stop := mine.Watch(func(s *Session) { refreshed = s })
	defer stop()

	require.NoError(t, p.UpdateProfile(ctx, "u1", "", "https://cdn/avatar.png"))

	require.NotNil(t, refreshed)
	assert.Equal(t, "https://cdn/avatar.png", refreshed.PhotoURL)
	assert.Equal(t, "Nutri u1", refreshed.DisplayName)
	assert.Equal(t, "https://cdn/avatar.png", mine.Current().PhotoURL)
	assert.Empty(t, other.Current().PhotoURL)
	assert.Equal(t, []string{"u1||https://cdn/avatar.png"}, client.updates)

	assert.ErrorIs(t, p.UpdateProfile(ctx, "", "x", ""), errors.ErrNoSession)
}

func TestResolveNeverUndoesConcurrentSignIn(t *testing.T) {
	p := NewProvider(&fakeClient{})

	for i := 0; i < 200; i++ {
		c := p.NewContext()
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := c.SignIn(context.Background(), "ok:u1")
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			c.Resolve()
		}()
		wg.Wait()

		require.Equal(t, "u1", c.UID(), "iteration %d", i)
		c.Close()
	}
}

func TestWatchLastDeliveryMatchesFinalState(t *testing.T) {
	p := NewProvider(&fakeClient{})

	for i := 0; i < 200; i++ {
		c := p.NewContext()
		_, err := c.SignIn(context.Background(), "ok:u1")
		require.NoError(t, err)

		var mu sync.Mutex
		var last *Session
		deliveries := 0
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.Watch(func(s *Session) {
				mu.Lock()
				last = s
				deliveries++
				mu.Unlock()
			})
		}()
		go func() {
			defer wg.Done()
			c.SignOut()
		}()
		wg.Wait()

		mu.Lock()
		require.Positive(t, deliveries, "iteration %d", i)
		require.Nil(t, last, "iteration %d", i)
		mu.Unlock()
		c.Close()
	}
}

func TestWatcherMayChangeIdentityFromCallback(t *testing.T) {
	p := NewProvider(&fakeClient{})
	c := p.NewContext()
	defer c.Close()

	c.Watch(func(s *Session) {
		if s != nil && s.ID == "blocked" {
			c.SignOut()
		}
	})
	var seen []string
	c.Watch(func(s *Session) {
		if s == nil {
			seen = append(seen, "")
			return
		}
		seen = append(seen, s.ID)
	})

	_, err := c.SignIn(context.Background(), "ok:blocked")
	require.NoError(t, err)

	assert.Equal(t, []string{"blocked", ""}, seen)
	assert.Empty(t, c.UID())
}

func TestClosedContextStopsDeliveries(t *testing.T) {
	p := NewProvider(&fakeClient{})
	c := p.NewContext()

	calls := 0
	c.Watch(func(*Session) { calls++ })
	c.Close()

	_, err := c.SignIn(context.Background(), "ok:u1")
	require.NoError(t, err)
	assert.Equal(t, 0, calls)
}
