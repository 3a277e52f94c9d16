package usecase

import (
	"context"
	"strings"
	"time"

	"nutriflow/internal/domain/docstore"
	"nutriflow/internal/domain/entity"
	"nutriflow/internal/domain/repository"
	"nutriflow/internal/infrastructure/livequery"
	"nutriflow/pkg/errors"
)

const FinancialScope = "financial"

type FinancialUseCase struct {
	recordRepo  repository.FinancialRepository
	patientRepo repository.PatientRepository
	now         Clock
	loc         *time.Location
}

func NewFinancialUseCase(recordRepo repository.FinancialRepository, patientRepo repository.PatientRepository) *FinancialUseCase {
	return &FinancialUseCase{
		recordRepo:  recordRepo,
		patientRepo: patientRepo,
		now:         time.Now,
		loc:         time.Local,
	}
}

type FinancialRecordInput struct {
	Description   string
	Value         float64
	Date          time.Time
	Type          string
	Category      string
	PatientID     string
	PaymentMethod string
	Status        string
}

type FinancialSummary struct {
	Month      string                    `json:"month"`
	Records    []*entity.FinancialRecord `json:"records"`
	Stats      FinancialStats            `json:"stats"`
	Chart      []ChartPoint              `json:"chart"`
	Categories []CategoryTotal           `json:"categories"`
}

func (uc *FinancialUseCase) fill(ctx context.Context, uid string, record *entity.FinancialRecord, input FinancialRecordInput) error {
	description := strings.TrimSpace(input.Description)
	if description == "" || input.Value == 0 || input.Date.IsZero() {
		return errors.BadRequest("Preencha todos os campos obrigatórios", nil)
	}
	if input.Value < 0 {
		return errors.BadRequest("O valor deve ser positivo", nil)
	}

	record.Description = description
	record.Value = input.Value
	record.Date = input.Date.UTC()
	record.Type = input.Type
	record.Category = input.Category
	record.PaymentMethod = input.PaymentMethod
	record.Status = input.Status
	if record.Type == "" {
		record.Type = entity.RecordIncome
	}
	if record.Status == "" {
		record.Status = entity.RecordPaid
	}

	if input.PatientID != record.PatientID || (input.PatientID != "" && record.PatientName == "") {
		record.PatientID = input.PatientID
		record.PatientName = ""
		if input.PatientID != "" {
			patient, err := uc.patientRepo.GetByID(ctx, uid, input.PatientID)
			if err != nil {
				if errors.Is(err, errors.CodeNotFound) {
					return errors.BadRequest("Paciente não encontrado", err)
				}
				return err
			}
			record.PatientName = patient.Name
		}
	}
	return nil
}

func (uc *FinancialUseCase) Create(ctx context.Context, uid string, input FinancialRecordInput) (*entity.FinancialRecord, error) {
	if uid == "" {
		return nil, errors.ErrNoSession
	}

	record := &entity.FinancialRecord{}
	if err := uc.fill(ctx, uid, record, input); err != nil {
		return nil, err
	}
	now := uc.now().UTC()
	record.CreatedAt = now
	record.UpdatedAt = now

	if err := uc.recordRepo.Create(ctx, uid, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (uc *FinancialUseCase) Get(ctx context.Context, uid, id string) (*entity.FinancialRecord, error) {
	return uc.recordRepo.GetByID(ctx, uid, id)
}

func (uc *FinancialUseCase) Update(ctx context.Context, uid, id string, input FinancialRecordInput) (*entity.FinancialRecord, error) {
	record, err := uc.recordRepo.GetByID(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	if err := uc.fill(ctx, uid, record, input); err != nil {
		return nil, err
	}
	record.UpdatedAt = uc.now().UTC()

	if err := uc.recordRepo.Update(ctx, uid, record); err != nil {
		return nil, err
	}
	return record, nil
}

func (uc *FinancialUseCase) Delete(ctx context.Context, uid, id string) error {
	if _, err := uc.recordRepo.GetByID(ctx, uid, id); err != nil {
		return err
	}
	return uc.recordRepo.Delete(ctx, uid, id)
}

// ParseMonth reads a "2006-01" month in the use case's location. An empty
// value means the current month.
func (uc *FinancialUseCase) ParseMonth(value string) (time.Time, error) {
	if value == "" {
		return uc.now().In(uc.loc), nil
	}
	month, err := time.ParseInLocation("2006-01", value, uc.loc)
	if err != nil {
		return time.Time{}, errors.BadRequest("Mês inválido, use o formato AAAA-MM", err)
	}
	return month, nil
}

// Summary loads one month of records with their stats, chart and category
// breakdown.
func (uc *FinancialUseCase) Summary(ctx context.Context, uid string, month time.Time) (*FinancialSummary, error) {
	from, to := MonthBounds(month.In(uc.loc))
	records, err := uc.recordRepo.ListBetween(ctx, uid, from, to)
	if err != nil {
		return nil, err
	}
	return uc.summarize(from, records), nil
}

func (uc *FinancialUseCase) summarize(month time.Time, records []*entity.FinancialRecord) *FinancialSummary {
	return &FinancialSummary{
		Month:      month.Format("2006-01"),
		Records:    records,
		Stats:      ComputeStats(records),
		Chart:      MonthlyChart(records, uc.loc),
		Categories: Categories(records),
	}
}

// WatchMonth keeps onSummary fed with the month's records and derived
// totals, recomputed on every change.
func (uc *FinancialUseCase) WatchMonth(ctx context.Context, subs *livequery.Manager, uid string, month time.Time, onSummary func(*FinancialSummary), onError func(error)) (*livequery.Handle, error) {
	from, to := MonthBounds(month.In(uc.loc))
	q, ok := docstore.FinancialBetween(uid, from, to)
	if !ok {
		return nil, errors.ErrNoSession
	}

	return subs.Subscribe(ctx, FinancialScope, q, func(snap docstore.Snapshot) {
		records := make([]*entity.FinancialRecord, 0, len(snap.Docs))
		for _, doc := range snap.Docs {
			records = append(records, entity.FinancialRecordFromDocument(doc))
		}
		onSummary(uc.summarize(from, records))
	}, onError), nil
}

// MonthlyRevenue is the paid income dated in the current month.
func (uc *FinancialUseCase) MonthlyRevenue(ctx context.Context, uid string) (float64, error) {
	from, to := MonthBounds(uc.now().In(uc.loc))
	records, err := uc.recordRepo.ListBetween(ctx, uid, from, to)
	if err != nil {
		return 0, err
	}
	return ComputeStats(records).TotalIncome, nil
}
