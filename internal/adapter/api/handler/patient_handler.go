package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"nutriflow/internal/domain/entity"
	"nutriflow/internal/usecase"
	"nutriflow/pkg/response"
	"nutriflow/pkg/utils"
)

type PatientHandler struct {
	patientUseCase *usecase.PatientUseCase
}

func NewPatientHandler(patientUseCase *usecase.PatientUseCase) *PatientHandler {
	return &PatientHandler{
		patientUseCase: patientUseCase,
	}
}

type createPatientRequest struct {
	Name      string    `json:"name" validate:"required"`
	Email     string    `json:"email" validate:"omitempty,email"`
	Phone     string    `json:"phone"`
	BirthDate time.Time `json:"birthDate"`
	Gender    string    `json:"gender" validate:"omitempty,oneof=male female other"`
	CPF       string    `json:"cpf"`
}

type updatePatientRequest struct {
	Name      *string    `json:"name"`
	Email     *string    `json:"email" validate:"omitempty,email"`
	Phone     *string    `json:"phone"`
	BirthDate *time.Time `json:"birthDate"`
	Gender    *string    `json:"gender" validate:"omitempty,oneof=male female other"`
	CPF       *string    `json:"cpf"`
}

func (h *PatientHandler) CreatePatient(c echo.Context) error {
	var req createPatientRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)
	patient, err := h.patientUseCase.Create(c.Request().Context(), uid, usecase.CreatePatientInput{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		BirthDate: req.BirthDate,
		Gender:    req.Gender,
		CPF:       req.CPF,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, patient)
}

// ListPatients answers a plain list, or a page when ?page= is given.
// ?search= filters by name, email or phone.
func (h *PatientHandler) ListPatients(c echo.Context) error {
	uid := c.Get("uid").(string)
	patients, err := h.patientUseCase.List(c.Request().Context(), uid, c.QueryParam("search"))
	if err != nil {
		return response.Error(c, err)
	}

	if c.QueryParam("page") == "" {
		return response.Success(c, patients)
	}
	params := utils.GetPaginationParams(c)
	start, end := params.Window(len(patients))
	return response.Paginated(c, patients[start:end], int64(len(patients)), params.Page, params.PageSize)
}

func (h *PatientHandler) GetPatient(c echo.Context) error {
	uid := c.Get("uid").(string)
	patient, err := h.patientUseCase.Get(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, patient)
}

func (h *PatientHandler) UpdatePatient(c echo.Context) error {
	var req updatePatientRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)
	patient, err := h.patientUseCase.Update(c.Request().Context(), uid, c.Param("id"), usecase.UpdatePatientInput{
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		BirthDate: req.BirthDate,
		Gender:    req.Gender,
		CPF:       req.CPF,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, patient)
}

func (h *PatientHandler) DeletePatient(c echo.Context) error {
	uid := c.Get("uid").(string)
	if err := h.patientUseCase.Delete(c.Request().Context(), uid, c.Param("id")); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{"message": "Paciente excluído com sucesso"})
}

func (h *PatientHandler) AddMeasurement(c echo.Context) error {
	var req entity.AnthropometricData
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)
	patient, err := h.patientUseCase.AddMeasurement(c.Request().Context(), uid, c.Param("id"), req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, patient)
}

func (h *PatientHandler) SetAnamnesis(c echo.Context) error {
	var req entity.Anamnesis
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)
	patient, err := h.patientUseCase.SetAnamnesis(c.Request().Context(), uid, c.Param("id"), &req)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, patient)
}
