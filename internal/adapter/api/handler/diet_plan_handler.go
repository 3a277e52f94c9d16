package handler

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"nutriflow/internal/domain/entity"
	"nutriflow/internal/usecase"
	"nutriflow/pkg/errors"
	"nutriflow/pkg/response"
)

type DietPlanHandler struct {
	dietPlanUseCase *usecase.DietPlanUseCase
}

func NewDietPlanHandler(dietPlanUseCase *usecase.DietPlanUseCase) *DietPlanHandler {
	return &DietPlanHandler{
		dietPlanUseCase: dietPlanUseCase,
	}
}

type dietPlanRequest struct {
	Title           string        `json:"title" validate:"required"`
	PatientID       string        `json:"patientId"`
	Objective       string        `json:"objective"`
	StartDate       time.Time     `json:"startDate"`
	EndDate         time.Time     `json:"endDate"`
	TotalCalories   float64       `json:"totalCalories" validate:"gte=0"`
	Macros          entity.Macros `json:"macros"`
	Meals           []entity.Meal `json:"meals"`
	Observations    string        `json:"observations"`
	Recommendations []string      `json:"recommendations"`
}

func (r dietPlanRequest) input() usecase.DietPlanInput {
	return usecase.DietPlanInput{
		Title:           r.Title,
		PatientID:       r.PatientID,
		Objective:       r.Objective,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		TotalCalories:   r.TotalCalories,
		Macros:          r.Macros,
		Meals:           r.Meals,
		Observations:    r.Observations,
		Recommendations: r.Recommendations,
	}
}

func (h *DietPlanHandler) CreatePlan(c echo.Context) error {
	var req dietPlanRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)
	plan, err := h.dietPlanUseCase.Create(c.Request().Context(), uid, req.input())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, plan)
}

func (h *DietPlanHandler) ListPlans(c echo.Context) error {
	uid := c.Get("uid").(string)
	plans, err := h.dietPlanUseCase.List(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, plans)
}

func (h *DietPlanHandler) GetPlan(c echo.Context) error {
	uid := c.Get("uid").(string)
	plan, err := h.dietPlanUseCase.Get(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, plan)
}

func (h *DietPlanHandler) UpdatePlan(c echo.Context) error {
	var req dietPlanRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)
	plan, err := h.dietPlanUseCase.Update(c.Request().Context(), uid, c.Param("id"), req.input())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, plan)
}

func (h *DietPlanHandler) DeletePlan(c echo.Context) error {
	uid := c.Get("uid").(string)
	if err := h.dietPlanUseCase.Delete(c.Request().Context(), uid, c.Param("id")); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{"message": "Plano excluído com sucesso"})
}

func (h *DietPlanHandler) DuplicatePlan(c echo.Context) error {
	uid := c.Get("uid").(string)
	plan, err := h.dietPlanUseCase.Duplicate(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, plan)
}

func (h *DietPlanHandler) AddMeal(c echo.Context) error {
	var req entity.Meal
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)
	plan, err := h.dietPlanUseCase.AddMeal(c.Request().Context(), uid, c.Param("id"), req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, plan)
}

func (h *DietPlanHandler) RemoveMeal(c echo.Context) error {
	meal, err := indexParam(c, "meal")
	if err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)
	plan, err := h.dietPlanUseCase.RemoveMeal(c.Request().Context(), uid, c.Param("id"), meal)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, plan)
}

func (h *DietPlanHandler) AddFoodItem(c echo.Context) error {
	meal, err := indexParam(c, "meal")
	if err != nil {
		return response.Error(c, err)
	}
	var req entity.FoodItem
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)
	plan, err := h.dietPlanUseCase.AddFoodItem(c.Request().Context(), uid, c.Param("id"), meal, req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, plan)
}

func (h *DietPlanHandler) RemoveFoodItem(c echo.Context) error {
	meal, err := indexParam(c, "meal")
	if err != nil {
		return response.Error(c, err)
	}
	item, err := indexParam(c, "item")
	if err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)
	plan, err := h.dietPlanUseCase.RemoveFoodItem(c.Request().Context(), uid, c.Param("id"), meal, item)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, plan)
}

func indexParam(c echo.Context, name string) (int, error) {
	i, err := strconv.Atoi(c.Param(name))
	if err != nil || i < 0 {
		return 0, errors.BadRequest("Índice inválido: "+name, err)
	}
	return i, nil
}
