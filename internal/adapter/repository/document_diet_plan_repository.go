package repository

import (
	"context"
	"log"

	"nutriflow/internal/domain/docstore"
	"nutriflow/internal/domain/entity"
	"nutriflow/internal/domain/repository"
	"nutriflow/pkg/errors"
)

type documentDietPlanRepository struct {
	store docstore.DocumentStore
}

func NewDocumentDietPlanRepository(store docstore.DocumentStore) repository.DietPlanRepository {
	return &documentDietPlanRepository{
		store: store,
	}
}

func (r *documentDietPlanRepository) docPath(uid, id string) (string, error) {
	collection, ok := docstore.DietPlansPath(uid)
	if !ok {
		return "", errors.ErrNoSession
	}
	path, ok := docstore.DocPath(collection, id)
	if !ok {
		return "", errors.BadRequest("Diet plan ID is required", nil)
	}
	return path, nil
}

func (r *documentDietPlanRepository) Create(ctx context.Context, uid string, plan *entity.DietPlan) error {
	collection, ok := docstore.DietPlansPath(uid)
	if !ok {
		return errors.ErrNoSession
	}

	// Fields never carries the ID, so the store always assigns a fresh one.
	id, err := r.store.Add(ctx, collection, plan.Fields())
	if err != nil {
		log.Printf("Error creating diet plan for %s: %v", uid, err)
		return storeError("Diet plan", err)
	}
	plan.ID = id
	return nil
}

func (r *documentDietPlanRepository) GetByID(ctx context.Context, uid, id string) (*entity.DietPlan, error) {
	path, err := r.docPath(uid, id)
	if err != nil {
		return nil, err
	}

	doc, err := r.store.GetDoc(ctx, path)
	if err != nil {
		return nil, storeError("Diet plan", err)
	}
	return entity.DietPlanFromDocument(doc), nil
}

func (r *documentDietPlanRepository) List(ctx context.Context, uid string) ([]*entity.DietPlan, error) {
	q, ok := docstore.DietPlans(uid)
	if !ok {
		return nil, errors.ErrNoSession
	}

	docs, err := r.store.Get(ctx, q.OrderBy("createdAt", true))
	if err != nil {
		return nil, storeError("Diet plans", err)
	}
	return dietPlansFrom(docs), nil
}

func (r *documentDietPlanRepository) Update(ctx context.Context, uid string, plan *entity.DietPlan) error {
	path, err := r.docPath(uid, plan.ID)
	if err != nil {
		return err
	}

	if err := r.store.Write(ctx, path, plan.Fields(), docstore.Replace); err != nil {
		log.Printf("Error updating diet plan %s: %v", plan.ID, err)
		return storeError("Diet plan", err)
	}
	return nil
}

func (r *documentDietPlanRepository) Delete(ctx context.Context, uid, id string) error {
	path, err := r.docPath(uid, id)
	if err != nil {
		return err
	}

	if err := r.store.Delete(ctx, path); err != nil {
		log.Printf("Error deleting diet plan %s: %v", id, err)
		return storeError("Diet plan", err)
	}
	return nil
}
