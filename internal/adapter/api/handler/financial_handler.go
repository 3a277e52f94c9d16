package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"nutriflow/internal/usecase"
	"nutriflow/pkg/response"
)

type FinancialHandler struct {
	financialUseCase *usecase.FinancialUseCase
}

func NewFinancialHandler(financialUseCase *usecase.FinancialUseCase) *FinancialHandler {
	return &FinancialHandler{
		financialUseCase: financialUseCase,
	}
}

type financialRecordRequest struct {
	Description   string    `json:"description" validate:"required"`
	Value         float64   `json:"value" validate:"gt=0"`
	Date          time.Time `json:"date" validate:"required"`
	Type          string    `json:"type" validate:"omitempty,oneof=income expense"`
	Category      string    `json:"category"`
	PatientID     string    `json:"patientId"`
	PaymentMethod string    `json:"paymentMethod"`
	Status        string    `json:"status" validate:"omitempty,oneof=pending paid canceled"`
}

func (r financialRecordRequest) input() usecase.FinancialRecordInput {
	return usecase.FinancialRecordInput{
		Description:   r.Description,
		Value:         r.Value,
		Date:          r.Date,
		Type:          r.Type,
		Category:      r.Category,
		PatientID:     r.PatientID,
		PaymentMethod: r.PaymentMethod,
		Status:        r.Status,
	}
}

func (h *FinancialHandler) CreateRecord(c echo.Context) error {
	var req financialRecordRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)
	record, err := h.financialUseCase.Create(c.Request().Context(), uid, req.input())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, record)
}

// GetSummary answers one month (?month=YYYY-MM, default current) of records
// with stats, chart and category breakdown.
func (h *FinancialHandler) GetSummary(c echo.Context) error {
	month, err := h.financialUseCase.ParseMonth(c.QueryParam("month"))
	if err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)
	summary, err := h.financialUseCase.Summary(c.Request().Context(), uid, month)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, summary)
}

func (h *FinancialHandler) GetRecord(c echo.Context) error {
	uid := c.Get("uid").(string)
	record, err := h.financialUseCase.Get(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, record)
}

func (h *FinancialHandler) UpdateRecord(c echo.Context) error {
	var req financialRecordRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)
	record, err := h.financialUseCase.Update(c.Request().Context(), uid, c.Param("id"), req.input())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, record)
}

func (h *FinancialHandler) DeleteRecord(c echo.Context) error {
	uid := c.Get("uid").(string)
	if err := h.financialUseCase.Delete(c.Request().Context(), uid, c.Param("id")); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{"message": "Registro excluído com sucesso"})
}
