package firebase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"nutriflow/internal/infrastructure/session"
)

// DevTokenPrefix marks tokens accepted by DevAuthClient: "dev:<uid>" or
// "dev:<uid>:<display name>".
const DevTokenPrefix = "dev:"

// DevAuthClient accepts development tokens without any network call. It is
// only wired when the server runs in development or with the memory store.
type DevAuthClient struct {
	mu       sync.Mutex
	profiles map[string]session.Identity
}

func NewDevAuthClient() *DevAuthClient {
	return &DevAuthClient{
		profiles: make(map[string]session.Identity),
	}
}

var _ session.IdentityClient = (*DevAuthClient)(nil)

func (d *DevAuthClient) VerifyToken(ctx context.Context, token string) (*session.Identity, error) {
	if !strings.HasPrefix(token, DevTokenPrefix) {
		return nil, fmt.Errorf("not a development token")
	}
	parts := strings.SplitN(strings.TrimPrefix(token, DevTokenPrefix), ":", 2)
	uid := strings.TrimSpace(parts[0])
	if uid == "" {
		return nil, fmt.Errorf("development token without uid")
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	identity, ok := d.profiles[uid]
	if !ok {
		identity = session.Identity{UID: uid, Email: uid + "@dev.local"}
	}
	if len(parts) == 2 && identity.DisplayName == "" {
		identity.DisplayName = parts[1]
	}
	d.profiles[uid] = identity
	return &identity, nil
}

func (d *DevAuthClient) UpdateProfile(ctx context.Context, uid, displayName, photoURL string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	identity, ok := d.profiles[uid]
	if !ok {
		identity = session.Identity{UID: uid}
	}
	if displayName != "" {
		identity.DisplayName = displayName
	}
	if photoURL != "" {
		identity.PhotoURL = photoURL
	}
	d.profiles[uid] = identity
	return nil
}

// DevToken builds a token DevAuthClient accepts.
func DevToken(uid, displayName string) string {
	if displayName == "" {
		return DevTokenPrefix + uid
	}
	return DevTokenPrefix + uid + ":" + displayName
}
