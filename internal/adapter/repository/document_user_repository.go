package repository

import (
	"context"
	"log"

	"nutriflow/internal/domain/docstore"
	"nutriflow/internal/domain/entity"
	"nutriflow/internal/domain/repository"
	"nutriflow/pkg/errors"
)

type documentUserRepository struct {
	store docstore.DocumentStore
}

func NewDocumentUserRepository(store docstore.DocumentStore) repository.UserRepository {
	return &documentUserRepository{
		store: store,
	}
}

func (r *documentUserRepository) GetByID(ctx context.Context, uid string) (*entity.User, error) {
	path, ok := docstore.UserPath(uid)
	if !ok {
		return nil, errors.ErrNoSession
	}

	doc, err := r.store.GetDoc(ctx, path)
	if err != nil {
		return nil, storeError("User", err)
	}
	return entity.UserFromDocument(doc), nil
}

func (r *documentUserRepository) Create(ctx context.Context, user *entity.User) error {
	path, ok := docstore.UserPath(user.ID)
	if !ok {
		return errors.ErrNoSession
	}

	if err := r.store.Write(ctx, path, user.Fields(), docstore.Create); err != nil {
		log.Printf("Error creating user %s: %v", user.ID, err)
		return storeError("User", err)
	}
	return nil
}

func (r *documentUserRepository) Merge(ctx context.Context, uid string, fields map[string]interface{}) error {
	path, ok := docstore.UserPath(uid)
	if !ok {
		return errors.ErrNoSession
	}

	if err := r.store.Write(ctx, path, fields, docstore.Merge); err != nil {
		log.Printf("Error updating user %s: %v", uid, err)
		return storeError("User", err)
	}
	return nil
}
