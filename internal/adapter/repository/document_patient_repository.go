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

type documentPatientRepository struct {
	store docstore.DocumentStore
}

func NewDocumentPatientRepository(store docstore.DocumentStore) repository.PatientRepository {
	return &documentPatientRepository{
		store: store,
	}
}

func (r *documentPatientRepository) docPath(uid, id string) (string, error) {
	collection, ok := docstore.PatientsPath(uid)
	if !ok {
		return "", errors.ErrNoSession
	}
	path, ok := docstore.DocPath(collection, id)
	if !ok {
		return "", errors.BadRequest("Patient ID is required", nil)
	}
	return path, nil
}

func (r *documentPatientRepository) Create(ctx context.Context, uid string, patient *entity.Patient) error {
	collection, ok := docstore.PatientsPath(uid)
	if !ok {
		return errors.ErrNoSession
	}

	id, err := r.store.Add(ctx, collection, patient.Fields())
	if err != nil {
		log.Printf("Error creating patient for %s: %v", uid, err)
		return storeError("Patient", err)
	}
	patient.ID = id
	return nil
}

func (r *documentPatientRepository) GetByID(ctx context.Context, uid, id string) (*entity.Patient, error) {
	path, err := r.docPath(uid, id)
	if err != nil {
		return nil, err
	}

	doc, err := r.store.GetDoc(ctx, path)
	if err != nil {
		return nil, storeError("Patient", err)
	}
	return entity.PatientFromDocument(doc), nil
}

func (r *documentPatientRepository) List(ctx context.Context, uid string) ([]*entity.Patient, error) {
	q, ok := docstore.Patients(uid)
	if !ok {
		return nil, errors.ErrNoSession
	}

	docs, err := r.store.Get(ctx, q.OrderBy("name", false))
	if err != nil {
		return nil, storeError("Patients", err)
	}
	return patientsFrom(docs), nil
}

func (r *documentPatientRepository) ListRecent(ctx context.Context, uid string, limit int) ([]*entity.Patient, error) {
	q, ok := docstore.Patients(uid)
	if !ok {
		return nil, errors.ErrNoSession
	}

	docs, err := r.store.Get(ctx, q.OrderBy("createdAt", true).WithLimit(limit))
	if err != nil {
		return nil, storeError("Patients", err)
	}
	return patientsFrom(docs), nil
}

func (r *documentPatientRepository) CountCreatedSince(ctx context.Context, uid string, since time.Time) (int, error) {
	q, ok := docstore.Patients(uid)
	if !ok {
		return 0, errors.ErrNoSession
	}

	docs, err := r.store.Get(ctx, q.Where("createdAt", docstore.OpGreaterEqual, since))
	if err != nil {
		return 0, storeError("Patients", err)
	}
	return len(docs), nil
}

func (r *documentPatientRepository) Update(ctx context.Context, uid string, patient *entity.Patient) error {
	path, err := r.docPath(uid, patient.ID)
	if err != nil {
		return err
	}

	if err := r.store.Write(ctx, path, patient.Fields(), docstore.Replace); err != nil {
		log.Printf("Error updating patient %s: %v", patient.ID, err)
		return storeError("Patient", err)
	}
	return nil
}

// Delete removes only the patient document. Appointments and financial
// records that reference it are left in place.
func (r *documentPatientRepository) Delete(ctx context.Context, uid, id string) error {
	path, err := r.docPath(uid, id)
	if err != nil {
		return err
	}

	if err := r.store.Delete(ctx, path); err != nil {
		log.Printf("Error deleting patient %s: %v", id, err)
		return storeError("Patient", err)
	}
	return nil
}
