package router

import (
	"nutriflow/internal/adapter/api/handler"
	"nutriflow/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupDietPlanRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	dietPlanHandler := handler.GetDietPlanHandler()

	plans := e.Group("/v1/diet-plans")
	plans.Use(authMiddleware.Authenticate)

	plans.GET("", dietPlanHandler.ListPlans)
	plans.POST("", dietPlanHandler.CreatePlan)
	plans.GET("/:id", dietPlanHandler.GetPlan)
	plans.PUT("/:id", dietPlanHandler.UpdatePlan)
	plans.DELETE("/:id", dietPlanHandler.DeletePlan)
	plans.POST("/:id/duplicate", dietPlanHandler.DuplicatePlan)

	// Meal builder
	plans.POST("/:id/meals", dietPlanHandler.AddMeal)
	plans.DELETE("/:id/meals/:meal", dietPlanHandler.RemoveMeal)
	plans.POST("/:id/meals/:meal/items", dietPlanHandler.AddFoodItem)
	plans.DELETE("/:id/meals/:meal/items/:item", dietPlanHandler.RemoveFoodItem)
}
