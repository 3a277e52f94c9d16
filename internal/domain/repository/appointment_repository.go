package repository

import (
	"context"
	"time"

	"nutriflow/internal/domain/entity"
)

type AppointmentRepository interface {
	Create(ctx context.Context, appointment *entity.Appointment) error
	// GetByID only returns appointments owned by uid.
	GetByID(ctx context.Context, uid, id string) (*entity.Appointment, error)
	List(ctx context.Context, uid string) ([]*entity.Appointment, error)
	ListBetween(ctx context.Context, uid string, from, to time.Time) ([]*entity.Appointment, error)
	Upcoming(ctx context.Context, uid string, now time.Time, limit int) ([]*entity.Appointment, error)
	Update(ctx context.Context, appointment *entity.Appointment) error
	Delete(ctx context.Context, uid, id string) error
}
