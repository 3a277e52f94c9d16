package repository

import (
	"context"

	"nutriflow/internal/domain/entity"
)

type DietPlanRepository interface {
	// Create always lets the store assign the ID; plan.ID is overwritten.
	Create(ctx context.Context, uid string, plan *entity.DietPlan) error
	GetByID(ctx context.Context, uid, id string) (*entity.DietPlan, error)
	List(ctx context.Context, uid string) ([]*entity.DietPlan, error)
	Update(ctx context.Context, uid string, plan *entity.DietPlan) error
	Delete(ctx context.Context, uid, id string) error
}
