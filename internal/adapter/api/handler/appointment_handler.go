package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"nutriflow/internal/usecase"
	"nutriflow/pkg/errors"
	"nutriflow/pkg/response"
)

type AppointmentHandler struct {
	appointmentUseCase *usecase.AppointmentUseCase
}

func NewAppointmentHandler(appointmentUseCase *usecase.AppointmentUseCase) *AppointmentHandler {
	return &AppointmentHandler{
		appointmentUseCase: appointmentUseCase,
	}
}

type createAppointmentRequest struct {
	PatientID            string    `json:"patientId" validate:"required"`
	Date                 time.Time `json:"date" validate:"required"`
	Duration             int       `json:"duration" validate:"omitempty,gt=0"`
	Type                 string    `json:"type" validate:"omitempty,oneof=online presencial"`
	Status               string    `json:"status" validate:"omitempty,oneof=scheduled completed canceled no-show"`
	TeleconsultationLink string    `json:"teleconsultationLink" validate:"omitempty,url"`
	Notes                string    `json:"notes"`
}

type updateAppointmentRequest struct {
	PatientID            *string    `json:"patientId"`
	Date                 *time.Time `json:"date"`
	Duration             *int       `json:"duration" validate:"omitempty,gt=0"`
	Type                 *string    `json:"type" validate:"omitempty,oneof=online presencial"`
	Status               *string    `json:"status" validate:"omitempty,oneof=scheduled completed canceled no-show"`
	TeleconsultationLink *string    `json:"teleconsultationLink"`
	Notes                *string    `json:"notes"`
}

func (h *AppointmentHandler) CreateAppointment(c echo.Context) error {
	var req createAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)
	appointment, err := h.appointmentUseCase.Create(c.Request().Context(), uid, usecase.CreateAppointmentInput{
		PatientID:            req.PatientID,
		Date:                 req.Date,
		Duration:             req.Duration,
		Type:                 req.Type,
		Status:               req.Status,
		TeleconsultationLink: req.TeleconsultationLink,
		Notes:                req.Notes,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Created(c, appointment)
}

// ListAppointments takes optional RFC 3339 ?from= and ?to= bounds.
func (h *AppointmentHandler) ListAppointments(c echo.Context) error {
	from, err := parseTimeParam(c, "from")
	if err != nil {
		return response.Error(c, err)
	}
	to, err := parseTimeParam(c, "to")
	if err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)
	appointments, err := h.appointmentUseCase.List(c.Request().Context(), uid, from, to)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, appointments)
}

func (h *AppointmentHandler) GetUpcoming(c echo.Context) error {
	uid := c.Get("uid").(string)
	appointments, err := h.appointmentUseCase.Upcoming(c.Request().Context(), uid)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, appointments)
}

func (h *AppointmentHandler) GetAppointment(c echo.Context) error {
	uid := c.Get("uid").(string)
	appointment, err := h.appointmentUseCase.Get(c.Request().Context(), uid, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, appointment)
}

func (h *AppointmentHandler) UpdateAppointment(c echo.Context) error {
	var req updateAppointmentRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)
	appointment, err := h.appointmentUseCase.Update(c.Request().Context(), uid, c.Param("id"), usecase.UpdateAppointmentInput{
		PatientID:            req.PatientID,
		Date:                 req.Date,
		Duration:             req.Duration,
		Type:                 req.Type,
		Status:               req.Status,
		TeleconsultationLink: req.TeleconsultationLink,
		Notes:                req.Notes,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, appointment)
}

func (h *AppointmentHandler) DeleteAppointment(c echo.Context) error {
	uid := c.Get("uid").(string)
	if err := h.appointmentUseCase.Delete(c.Request().Context(), uid, c.Param("id")); err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{"message": "Consulta excluída com sucesso"})
}

func parseTimeParam(c echo.Context, name string) (time.Time, error) {
	value := c.QueryParam(name)
	if value == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, errors.BadRequest("Data inválida em "+name, err)
	}
	return t, nil
}
