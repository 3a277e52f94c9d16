package usecase

import (
	"context"
	"time"

	"nutriflow/internal/domain/docstore"
	"nutriflow/internal/domain/entity"
	"nutriflow/internal/domain/repository"
	"nutriflow/internal/infrastructure/livequery"
	"nutriflow/pkg/errors"
)

const AppointmentsScope = "appointments"

const (
	defaultAppointmentDuration = 60
	upcomingAppointmentsLimit  = 5
)

type AppointmentUseCase struct {
	appointmentRepo repository.AppointmentRepository
	patientRepo     repository.PatientRepository
	now             Clock
}

func NewAppointmentUseCase(appointmentRepo repository.AppointmentRepository, patientRepo repository.PatientRepository) *AppointmentUseCase {
	return &AppointmentUseCase{
		appointmentRepo: appointmentRepo,
		patientRepo:     patientRepo,
		now:             time.Now,
	}
}

type CreateAppointmentInput struct {
	PatientID            string
	Date                 time.Time
	Duration             int
	Type                 string
	Status               string
	TeleconsultationLink string
	Notes                string
}

type UpdateAppointmentInput struct {
	PatientID            *string
	Date                 *time.Time
	Duration             *int
	Type                 *string
	Status               *string
	TeleconsultationLink *string
	Notes                *string
}

// patientName copies the patient's current name. It is not refreshed when
// the patient is renamed later.
func (uc *AppointmentUseCase) patientName(ctx context.Context, uid, patientID string) (string, error) {
	if patientID == "" {
		return "", errors.BadRequest("Selecione um paciente", nil)
	}
	patient, err := uc.patientRepo.GetByID(ctx, uid, patientID)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return "", errors.BadRequest("Paciente não encontrado", err)
		}
		return "", err
	}
	return patient.Name, nil
}

func (uc *AppointmentUseCase) Create(ctx context.Context, uid string, input CreateAppointmentInput) (*entity.Appointment, error) {
	if uid == "" {
		return nil, errors.ErrNoSession
	}
	if input.Date.IsZero() {
		return nil, errors.BadRequest("Data da consulta é obrigatória", nil)
	}
	if input.Duration < 0 {
		return nil, errors.BadRequest("Duração inválida", nil)
	}

	name, err := uc.patientName(ctx, uid, input.PatientID)
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	appointment := &entity.Appointment{
		NutritionistID:       uid,
		PatientID:            input.PatientID,
		PatientName:          name,
		Date:                 input.Date.UTC(),
		Duration:             input.Duration,
		Type:                 input.Type,
		Status:               input.Status,
		TeleconsultationLink: input.TeleconsultationLink,
		Notes:                input.Notes,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if appointment.Duration == 0 {
		appointment.Duration = defaultAppointmentDuration
	}
	if appointment.Type == "" {
		appointment.Type = entity.AppointmentPresencial
	}
	if appointment.Status == "" {
		appointment.Status = entity.AppointmentScheduled
	}

	if err := uc.appointmentRepo.Create(ctx, appointment); err != nil {
		return nil, err
	}
	return appointment, nil
}

func (uc *AppointmentUseCase) Get(ctx context.Context, uid, id string) (*entity.Appointment, error) {
	return uc.appointmentRepo.GetByID(ctx, uid, id)
}

// List returns uid's appointments in date order. When both bounds are set
// only appointments in [from, to) are returned.
func (uc *AppointmentUseCase) List(ctx context.Context, uid string, from, to time.Time) ([]*entity.Appointment, error) {
	if !from.IsZero() && !to.IsZero() {
		return uc.appointmentRepo.ListBetween(ctx, uid, from, to)
	}
	return uc.appointmentRepo.List(ctx, uid)
}

func (uc *AppointmentUseCase) Update(ctx context.Context, uid, id string, input UpdateAppointmentInput) (*entity.Appointment, error) {
	appointment, err := uc.appointmentRepo.GetByID(ctx, uid, id)
	if err != nil {
		return nil, err
	}

	if input.PatientID != nil && *input.PatientID != appointment.PatientID {
		name, err := uc.patientName(ctx, uid, *input.PatientID)
		if err != nil {
			return nil, err
		}
		appointment.PatientID = *input.PatientID
		appointment.PatientName = name
	}
	if input.Date != nil {
		appointment.Date = input.Date.UTC()
	}
	if input.Duration != nil {
		if *input.Duration <= 0 {
			return nil, errors.BadRequest("Duração inválida", nil)
		}
		appointment.Duration = *input.Duration
	}
	if input.Type != nil {
		appointment.Type = *input.Type
	}
	if input.Status != nil {
		appointment.Status = *input.Status
	}
	if input.TeleconsultationLink != nil {
		appointment.TeleconsultationLink = *input.TeleconsultationLink
	}
	if input.Notes != nil {
		appointment.Notes = *input.Notes
	}
	appointment.UpdatedAt = uc.now().UTC()

	if err := uc.appointmentRepo.Update(ctx, appointment); err != nil {
		return nil, err
	}
	return appointment, nil
}

func (uc *AppointmentUseCase) Delete(ctx context.Context, uid, id string) error {
	return uc.appointmentRepo.Delete(ctx, uid, id)
}

// Upcoming returns the next scheduled appointments from now on.
func (uc *AppointmentUseCase) Upcoming(ctx context.Context, uid string) ([]*entity.Appointment, error) {
	return uc.appointmentRepo.Upcoming(ctx, uid, uc.now().UTC(), upcomingAppointmentsLimit)
}

// TodayCount counts the upcoming appointments that fall on the current
// local day.
func (uc *AppointmentUseCase) TodayCount(ctx context.Context, uid string) (int, error) {
	upcoming, err := uc.Upcoming(ctx, uid)
	if err != nil {
		return 0, err
	}
	return countOnDay(upcoming, uc.now()), nil
}

func countOnDay(appointments []*entity.Appointment, day time.Time) int {
	start, end := DayBounds(day)
	count := 0
	for _, a := range appointments {
		if !a.Date.Before(start) && a.Date.Before(end) {
			count++
		}
	}
	return count
}

// WatchAppointments keeps onAppointments fed with all of uid's appointments
// in date order.
func (uc *AppointmentUseCase) WatchAppointments(ctx context.Context, subs *livequery.Manager, uid string, onAppointments func([]*entity.Appointment), onError func(error)) (*livequery.Handle, error) {
	q, ok := docstore.Appointments(uid)
	if !ok {
		return nil, errors.ErrNoSession
	}

	return subs.Subscribe(ctx, AppointmentsScope, q.OrderBy("date", false), func(snap docstore.Snapshot) {
		list := make([]*entity.Appointment, 0, len(snap.Docs))
		for _, doc := range snap.Docs {
			list = append(list, entity.AppointmentFromDocument(doc))
		}
		onAppointments(list)
	}, onError), nil
}
