package repository

import (
	"context"
	"log"
	"time"

	"nutriflow/internal/domain/docstore"
	"nutriflow/internal/domain/entity"
	"nutriflow/internal/domain/repository"
	"nutriflow/pkg/errors"
)

type documentAppointmentRepository struct {
	store docstore.DocumentStore
}

func NewDocumentAppointmentRepository(store docstore.DocumentStore) repository.AppointmentRepository {
	return &documentAppointmentRepository{
		store: store,
	}
}

func (r *documentAppointmentRepository) Create(ctx context.Context, appointment *entity.Appointment) error {
	if appointment.NutritionistID == "" {
		return errors.ErrNoSession
	}

	id, err := r.store.Add(ctx, docstore.AppointmentsCollection, appointment.Fields())
	if err != nil {
		log.Printf("Error creating appointment for %s: %v", appointment.NutritionistID, err)
		return storeError("Appointment", err)
	}
	appointment.ID = id
	return nil
}

func (r *documentAppointmentRepository) GetByID(ctx context.Context, uid, id string) (*entity.Appointment, error) {
	if uid == "" {
		return nil, errors.ErrNoSession
	}
	path, ok := docstore.DocPath(docstore.AppointmentsCollection, id)
	if !ok {
		return nil, errors.BadRequest("Appointment ID is required", nil)
	}

	doc, err := r.store.GetDoc(ctx, path)
	if err != nil {
		return nil, storeError("Appointment", err)
	}
	appointment := entity.AppointmentFromDocument(doc)
	if appointment.NutritionistID != uid {
		// Another professional's appointment is reported as missing.
		return nil, errors.NotFound("Appointment", nil)
	}
	return appointment, nil
}

func (r *documentAppointmentRepository) List(ctx context.Context, uid string) ([]*entity.Appointment, error) {
	q, ok := docstore.Appointments(uid)
	if !ok {
		return nil, errors.ErrNoSession
	}

	docs, err := r.store.Get(ctx, q.OrderBy("date", false))
	if err != nil {
		return nil, storeError("Appointments", err)
	}
	return appointmentsFrom(docs), nil
}

func (r *documentAppointmentRepository) ListBetween(ctx context.Context, uid string, from, to time.Time) ([]*entity.Appointment, error) {
	q, ok := docstore.Appointments(uid)
	if !ok {
		return nil, errors.ErrNoSession
	}

	q = q.Where("date", docstore.OpGreaterEqual, from).
		Where("date", docstore.OpLess, to).
		OrderBy("date", false)
	docs, err := r.store.Get(ctx, q)
	if err != nil {
		return nil, storeError("Appointments", err)
	}
	return appointmentsFrom(docs), nil
}

func (r *documentAppointmentRepository) Upcoming(ctx context.Context, uid string, now time.Time, limit int) ([]*entity.Appointment, error) {
	q, ok := docstore.Appointments(uid)
	if !ok {
		return nil, errors.ErrNoSession
	}

	q = q.Where("date", docstore.OpGreaterEqual, now).
		Where("status", docstore.OpEqual, entity.AppointmentScheduled).
		OrderBy("date", false).
		WithLimit(limit)
	docs, err := r.store.Get(ctx, q)
	if err != nil {
		return nil, storeError("Appointments", err)
	}
	return appointmentsFrom(docs), nil
}

func (r *documentAppointmentRepository) Update(ctx context.Context, appointment *entity.Appointment) error {
	if appointment.NutritionistID == "" {
		return errors.ErrNoSession
	}
	path, ok := docstore.DocPath(docstore.AppointmentsCollection, appointment.ID)
	if !ok {
		return errors.BadRequest("Appointment ID is required", nil)
	}

	if err := r.store.Write(ctx, path, appointment.Fields(), docstore.Replace); err != nil {
		log.Printf("Error updating appointment %s: %v", appointment.ID, err)
		return storeError("Appointment", err)
	}
	return nil
}

func (r *documentAppointmentRepository) Delete(ctx context.Context, uid, id string) error {
	// Ownership check before the unscoped delete.
	if _, err := r.GetByID(ctx, uid, id); err != nil {
		return err
	}

	path, _ := docstore.DocPath(docstore.AppointmentsCollection, id)
	if err := r.store.Delete(ctx, path); err != nil {
		log.Printf("Error deleting appointment %s: %v", id, err)
		return storeError("Appointment", err)
	}
	return nil
}
