package repository

import (
	"context"
	"time"

	"nutriflow/internal/domain/entity"
)

type FinancialRepository interface {
	Create(ctx context.Context, uid string, record *entity.FinancialRecord) error
	GetByID(ctx context.Context, uid, id string) (*entity.FinancialRecord, error)
	List(ctx context.Context, uid string) ([]*entity.FinancialRecord, error)
	// ListBetween returns records dated in [from, to), newest first.
	ListBetween(ctx context.Context, uid string, from, to time.Time) ([]*entity.FinancialRecord, error)
	Update(ctx context.Context, uid string, record *entity.FinancialRecord) error
	Delete(ctx context.Context, uid, id string) error
}
