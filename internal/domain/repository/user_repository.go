package repository

import (
	"context"

	"nutriflow/internal/domain/entity"
)

type UserRepository interface {
	GetByID(ctx context.Context, uid string) (*entity.User, error)
	// Create fails with a CONFLICT error when the profile already exists.
	Create(ctx context.Context, user *entity.User) error
	// Merge sets the given fields on users/{uid}, creating the document if needed.
	Merge(ctx context.Context, uid string, fields map[string]interface{}) error
}
