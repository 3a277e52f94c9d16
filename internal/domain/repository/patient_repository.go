package repository

import (
	"context"
	"time"

	"nutriflow/internal/domain/entity"
)

type PatientRepository interface {
	Create(ctx context.Context, uid string, patient *entity.Patient) error
	GetByID(ctx context.Context, uid, id string) (*entity.Patient, error)
	List(ctx context.Context, uid string) ([]*entity.Patient, error)
	ListRecent(ctx context.Context, uid string, limit int) ([]*entity.Patient, error)
	CountCreatedSince(ctx context.Context, uid string, since time.Time) (int, error)
	Update(ctx context.Context, uid string, patient *entity.Patient) error
	Delete(ctx context.Context, uid, id string) error
}
