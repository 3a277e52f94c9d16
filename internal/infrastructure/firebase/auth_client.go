package firebase

import (
	"context"

	"firebase.google.com/go/v4/auth"

	"nutriflow/internal/infrastructure/session"
)

type FirebaseAuthClient struct {
	client *auth.Client
}

func NewFirebaseAuthClient(client *auth.Client) *FirebaseAuthClient {
	return &FirebaseAuthClient{
		client: client,
	}
}

var _ session.IdentityClient = (*FirebaseAuthClient)(nil)

func (f *FirebaseAuthClient) VerifyToken(ctx context.Context, token string) (*session.Identity, error) {
	result, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, err
	}

	identity := &session.Identity{UID: result.UID}
	if name, ok := result.Claims["name"].(string); ok {
		identity.DisplayName = name
	}
	if email, ok := result.Claims["email"].(string); ok {
		identity.Email = email
	}
	if picture, ok := result.Claims["picture"].(string); ok {
		identity.PhotoURL = picture
	}
	return identity, nil
}

func (f *FirebaseAuthClient) UpdateProfile(ctx context.Context, uid, displayName, photoURL string) error {
	params := &auth.UserToUpdate{}
	if displayName != "" {
		params = params.DisplayName(displayName)
	}
	if photoURL != "" {
		params = params.PhotoURL(photoURL)
	}

	_, err := f.client.UpdateUser(ctx, uid, params)
	return err
}
