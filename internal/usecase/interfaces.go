package usecase

import (
	"context"
	"time"
)

// IdentityProfileUpdater changes the display name and photo URL kept by the
// identity backend. session.Provider implements it.
type IdentityProfileUpdater interface {
	UpdateProfile(ctx context.Context, uid, displayName, photoURL string) error
}

// Clock is injected so tests can pin "now".
type Clock func() time.Time
