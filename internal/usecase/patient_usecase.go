package usecase

import (
	"context"
	"strings"
	"time"

	"nutriflow/internal/domain/entity"
	"nutriflow/internal/domain/repository"
	"nutriflow/pkg/errors"
)

type PatientUseCase struct {
	patientRepo repository.PatientRepository
	now         Clock
}

func NewPatientUseCase(patientRepo repository.PatientRepository) *PatientUseCase {
	return &PatientUseCase{
		patientRepo: patientRepo,
		now:         time.Now,
	}
}

type CreatePatientInput struct {
	Name      string
	Email     string
	Phone     string
	BirthDate time.Time
	Gender    string
	CPF       string
}

type UpdatePatientInput struct {
	Name      *string
	Email     *string
	Phone     *string
	BirthDate *time.Time
	Gender    *string
	CPF       *string
}

func (uc *PatientUseCase) Create(ctx context.Context, uid string, input CreatePatientInput) (*entity.Patient, error) {
	if uid == "" {
		return nil, errors.ErrNoSession
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.BadRequest("Nome do paciente é obrigatório", nil)
	}

	now := uc.now().UTC()
	patient := &entity.Patient{
		Name:      name,
		Email:     strings.TrimSpace(input.Email),
		Phone:     strings.TrimSpace(input.Phone),
		BirthDate: input.BirthDate,
		Gender:    input.Gender,
		CPF:       input.CPF,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.patientRepo.Create(ctx, uid, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

func (uc *PatientUseCase) Get(ctx context.Context, uid, id string) (*entity.Patient, error) {
	return uc.patientRepo.GetByID(ctx, uid, id)
}

// List returns uid's patients ordered by name. A non-empty search keeps
// the ones whose name, email or phone contains it.
func (uc *PatientUseCase) List(ctx context.Context, uid, search string) ([]*entity.Patient, error) {
	patients, err := uc.patientRepo.List(ctx, uid)
	if err != nil {
		return nil, err
	}

	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return patients, nil
	}
	filtered := make([]*entity.Patient, 0, len(patients))
	for _, p := range patients {
		if strings.Contains(strings.ToLower(p.Name), search) ||
			strings.Contains(strings.ToLower(p.Email), search) ||
			strings.Contains(p.Phone, search) {
			filtered = append(filtered, p)
		}
	}
	return filtered, nil
}

func (uc *PatientUseCase) Update(ctx context.Context, uid, id string, input UpdatePatientInput) (*entity.Patient, error) {
	patient, err := uc.patientRepo.GetByID(ctx, uid, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, errors.BadRequest("Nome do paciente é obrigatório", nil)
		}
		patient.Name = name
	}
	if input.Email != nil {
		patient.Email = strings.TrimSpace(*input.Email)
	}
	if input.Phone != nil {
		patient.Phone = strings.TrimSpace(*input.Phone)
	}
	if input.BirthDate != nil {
		patient.BirthDate = *input.BirthDate
	}
	if input.Gender != nil {
		patient.Gender = *input.Gender
	}
	if input.CPF != nil {
		patient.CPF = *input.CPF
	}
	patient.UpdatedAt = uc.now().UTC()

	if err := uc.patientRepo.Update(ctx, uid, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

// Delete removes the patient only. Appointments and financial records keep
// their copy of the patient's name.
func (uc *PatientUseCase) Delete(ctx context.Context, uid, id string) error {
	if _, err := uc.patientRepo.GetByID(ctx, uid, id); err != nil {
		return err
	}
	return uc.patientRepo.Delete(ctx, uid, id)
}

// AddMeasurement appends an anthropometric snapshot. IMC is derived from
// weight and height when not given.
func (uc *PatientUseCase) AddMeasurement(ctx context.Context, uid, id string, data entity.AnthropometricData) (*entity.Patient, error) {
	if data.Weight < 0 || data.Height < 0 {
		return nil, errors.BadRequest("Peso e altura devem ser positivos", nil)
	}
	patient, err := uc.patientRepo.GetByID(ctx, uid, id)
	if err != nil {
		return nil, err
	}

	if data.Date.IsZero() {
		data.Date = uc.now().UTC()
	}
	patient.AddMeasurement(data)
	patient.UpdatedAt = uc.now().UTC()

	if err := uc.patientRepo.Update(ctx, uid, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

func (uc *PatientUseCase) SetAnamnesis(ctx context.Context, uid, id string, anamnesis *entity.Anamnesis) (*entity.Patient, error) {
	if anamnesis == nil {
		return nil, errors.BadRequest("Anamnese não informada", nil)
	}
	patient, err := uc.patientRepo.GetByID(ctx, uid, id)
	if err != nil {
		return nil, err
	}

	patient.Anamnesis = anamnesis
	patient.UpdatedAt = uc.now().UTC()
	if err := uc.patientRepo.Update(ctx, uid, patient); err != nil {
		return nil, err
	}
	return patient, nil
}
