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

type documentFinancialRepository struct {
	store docstore.DocumentStore
}

func NewDocumentFinancialRepository(store docstore.DocumentStore) repository.FinancialRepository {
	return &documentFinancialRepository{
		store: store,
	}
}

func (r *documentFinancialRepository) docPath(uid, id string) (string, error) {
	collection, ok := docstore.FinancialPath(uid)
	if !ok {
		return "", errors.ErrNoSession
	}
	path, ok := docstore.DocPath(collection, id)
	if !ok {
		return "", errors.BadRequest("Financial record ID is required", nil)
	}
	return path, nil
}

func (r *documentFinancialRepository) Create(ctx context.Context, uid string, record *entity.FinancialRecord) error {
	collection, ok := docstore.FinancialPath(uid)
	if !ok {
		return errors.ErrNoSession
	}

	id, err := r.store.Add(ctx, collection, record.Fields())
	if err != nil {
		log.Printf("Error creating financial record for %s: %v", uid, err)
		return storeError("Financial record", err)
	}
	record.ID = id
	return nil
}

func (r *documentFinancialRepository) GetByID(ctx context.Context, uid, id string) (*entity.FinancialRecord, error) {
	path, err := r.docPath(uid, id)
	if err != nil {
		return nil, err
	}

	doc, err := r.store.GetDoc(ctx, path)
	if err != nil {
		return nil, storeError("Financial record", err)
	}
	return entity.FinancialRecordFromDocument(doc), nil
}

func (r *documentFinancialRepository) List(ctx context.Context, uid string) ([]*entity.FinancialRecord, error) {
	q, ok := docstore.Financial(uid)
	if !ok {
		return nil, errors.ErrNoSession
	}

	docs, err := r.store.Get(ctx, q.OrderBy("date", true))
	if err != nil {
		return nil, storeError("Financial records", err)
	}
	return recordsFrom(docs), nil
}

func (r *documentFinancialRepository) ListBetween(ctx context.Context, uid string, from, to time.Time) ([]*entity.FinancialRecord, error) {
	q, ok := docstore.FinancialBetween(uid, from, to)
	if !ok {
		return nil, errors.ErrNoSession
	}

	docs, err := r.store.Get(ctx, q)
	if err != nil {
		return nil, storeError("Financial records", err)
	}
	return recordsFrom(docs), nil
}

func (r *documentFinancialRepository) Update(ctx context.Context, uid string, record *entity.FinancialRecord) error {
	path, err := r.docPath(uid, record.ID)
	if err != nil {
		return err
	}

	if err := r.store.Write(ctx, path, record.Fields(), docstore.Replace); err != nil {
		log.Printf("Error updating financial record %s: %v", record.ID, err)
		return storeError("Financial record", err)
	}
	return nil
}

func (r *documentFinancialRepository) Delete(ctx context.Context, uid, id string) error {
	path, err := r.docPath(uid, id)
	if err != nil {
		return err
	}

	if err := r.store.Delete(ctx, path); err != nil {
		log.Printf("Error deleting financial record %s: %v", id, err)
		return storeError("Financial record", err)
	}
	return nil
}
