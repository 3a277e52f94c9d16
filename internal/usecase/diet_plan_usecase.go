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

const DietPlansScope = "dietPlans"

const defaultFoodUnit = "g"

type DietPlanUseCase struct {
	planRepo repository.DietPlanRepository
	now      Clock
}

func NewDietPlanUseCase(planRepo repository.DietPlanRepository) *DietPlanUseCase {
	return &DietPlanUseCase{
		planRepo: planRepo,
		now:      time.Now,
	}
}

type DietPlanInput struct {
	Title           string
	PatientID       string
	Objective       string
	StartDate       time.Time
	EndDate         time.Time
	TotalCalories   float64
	Macros          entity.Macros
	Meals           []entity.Meal
	Observations    string
	Recommendations []string
}

func validateFoodItem(item *entity.FoodItem) error {
	item.Food = strings.TrimSpace(item.Food)
	item.Quantity = strings.TrimSpace(item.Quantity)
	if item.Food == "" || item.Quantity == "" {
		return errors.BadRequest("Preencha alimento e quantidade", nil)
	}
	if item.Unit == "" {
		item.Unit = defaultFoodUnit
	}
	return nil
}

func validateMeal(meal *entity.Meal) error {
	meal.Name = strings.TrimSpace(meal.Name)
	meal.Time = strings.TrimSpace(meal.Time)
	if meal.Name == "" || meal.Time == "" {
		return errors.BadRequest("Preencha nome e horário da refeição", nil)
	}
	if meal.Items == nil {
		meal.Items = []entity.FoodItem{}
	}
	for i := range meal.Items {
		if err := validateFoodItem(&meal.Items[i]); err != nil {
			return err
		}
	}
	meal.Calories = meal.SumCalories()
	return nil
}

func (uc *DietPlanUseCase) Create(ctx context.Context, uid string, input DietPlanInput) (*entity.DietPlan, error) {
	if uid == "" {
		return nil, errors.ErrNoSession
	}
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errors.BadRequest("Preencha pelo menos o título do plano", nil)
	}

	meals := append([]entity.Meal{}, input.Meals...)
	for i := range meals {
		if err := validateMeal(&meals[i]); err != nil {
			return nil, err
		}
	}

	now := uc.now().UTC()
	plan := &entity.DietPlan{
		Title:           title,
		PatientID:       input.PatientID,
		Objective:       input.Objective,
		StartDate:       input.StartDate,
		EndDate:         input.EndDate,
		TotalCalories:   input.TotalCalories,
		Macros:          input.Macros,
		Meals:           meals,
		Observations:    input.Observations,
		Recommendations: input.Recommendations,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := uc.planRepo.Create(ctx, uid, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (uc *DietPlanUseCase) Get(ctx context.Context, uid, id string) (*entity.DietPlan, error) {
	return uc.planRepo.GetByID(ctx, uid, id)
}

func (uc *DietPlanUseCase) List(ctx context.Context, uid string) ([]*entity.DietPlan, error) {
	return uc.planRepo.List(ctx, uid)
}

// Update replaces the plan's editable fields.
func (uc *DietPlanUseCase) Update(ctx context.Context, uid, id string, input DietPlanInput) (*entity.DietPlan, error) {
	plan, err := uc.planRepo.GetByID(ctx, uid, id)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, errors.BadRequest("Preencha pelo menos o título do plano", nil)
	}
	meals := append([]entity.Meal{}, input.Meals...)
	for i := range meals {
		if err := validateMeal(&meals[i]); err != nil {
			return nil, err
		}
	}

	plan.Title = title
	plan.PatientID = input.PatientID
	plan.Objective = input.Objective
	plan.StartDate = input.StartDate
	plan.EndDate = input.EndDate
	plan.TotalCalories = input.TotalCalories
	plan.Macros = input.Macros
	plan.Meals = meals
	plan.Observations = input.Observations
	plan.Recommendations = input.Recommendations
	plan.UpdatedAt = uc.now().UTC()

	if err := uc.planRepo.Update(ctx, uid, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (uc *DietPlanUseCase) Delete(ctx context.Context, uid, id string) error {
	if _, err := uc.planRepo.GetByID(ctx, uid, id); err != nil {
		return err
	}
	return uc.planRepo.Delete(ctx, uid, id)
}

// Duplicate stores a copy of the plan under a new store-assigned ID with
// " - Cópia" appended to the title.
func (uc *DietPlanUseCase) Duplicate(ctx context.Context, uid, id string) (*entity.DietPlan, error) {
	original, err := uc.planRepo.GetByID(ctx, uid, id)
	if err != nil {
		return nil, err
	}

	copied := original.Duplicate(uc.now().UTC())
	if err := uc.planRepo.Create(ctx, uid, copied); err != nil {
		return nil, err
	}
	return copied, nil
}

// AddMeal appends a meal to a stored plan.
func (uc *DietPlanUseCase) AddMeal(ctx context.Context, uid, planID string, meal entity.Meal) (*entity.DietPlan, error) {
	if err := validateMeal(&meal); err != nil {
		return nil, err
	}
	return uc.editPlan(ctx, uid, planID, func(plan *entity.DietPlan) error {
		plan.Meals = append(plan.Meals, meal)
		return nil
	})
}

func (uc *DietPlanUseCase) RemoveMeal(ctx context.Context, uid, planID string, mealIndex int) (*entity.DietPlan, error) {
	return uc.editPlan(ctx, uid, planID, func(plan *entity.DietPlan) error {
		if mealIndex < 0 || mealIndex >= len(plan.Meals) {
			return errors.NotFound("Meal", nil)
		}
		plan.Meals = append(plan.Meals[:mealIndex:mealIndex], plan.Meals[mealIndex+1:]...)
		return nil
	})
}

// AddFoodItem appends an item to a meal and recomputes the meal's calories.
func (uc *DietPlanUseCase) AddFoodItem(ctx context.Context, uid, planID string, mealIndex int, item entity.FoodItem) (*entity.DietPlan, error) {
	if err := validateFoodItem(&item); err != nil {
		return nil, err
	}
	return uc.editPlan(ctx, uid, planID, func(plan *entity.DietPlan) error {
		if mealIndex < 0 || mealIndex >= len(plan.Meals) {
			return errors.NotFound("Meal", nil)
		}
		plan.Meals[mealIndex].AddItem(item)
		return nil
	})
}

// RemoveFoodItem drops an item from a meal and recomputes the meal's calories.
func (uc *DietPlanUseCase) RemoveFoodItem(ctx context.Context, uid, planID string, mealIndex, itemIndex int) (*entity.DietPlan, error) {
	return uc.editPlan(ctx, uid, planID, func(plan *entity.DietPlan) error {
		if mealIndex < 0 || mealIndex >= len(plan.Meals) {
			return errors.NotFound("Meal", nil)
		}
		if !plan.Meals[mealIndex].RemoveItem(itemIndex) {
			return errors.NotFound("Food item", nil)
		}
		return nil
	})
}

func (uc *DietPlanUseCase) editPlan(ctx context.Context, uid, planID string, edit func(*entity.DietPlan) error) (*entity.DietPlan, error) {
	plan, err := uc.planRepo.GetByID(ctx, uid, planID)
	if err != nil {
		return nil, err
	}
	if err := edit(plan); err != nil {
		return nil, err
	}
	plan.UpdatedAt = uc.now().UTC()
	if err := uc.planRepo.Update(ctx, uid, plan); err != nil {
		return nil, err
	}
	return plan, nil
}

// WatchPlans keeps onPlans fed with uid's plans, newest first.
func (uc *DietPlanUseCase) WatchPlans(ctx context.Context, subs *livequery.Manager, uid string, onPlans func([]*entity.DietPlan), onError func(error)) (*livequery.Handle, error) {
	q, ok := docstore.DietPlans(uid)
	if !ok {
		return nil, errors.ErrNoSession
	}

	return subs.Subscribe(ctx, DietPlansScope, q.OrderBy("createdAt", true), func(snap docstore.Snapshot) {
		plans := make([]*entity.DietPlan, 0, len(snap.Docs))
		for _, doc := range snap.Docs {
			plans = append(plans, entity.DietPlanFromDocument(doc))
		}
		onPlans(plans)
	}, onError), nil
}
