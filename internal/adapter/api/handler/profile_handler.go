package handler

import (
	"github.com/labstack/echo/v4"

	"nutriflow/internal/infrastructure/session"
	"nutriflow/internal/usecase"
	"nutriflow/pkg/errors"
	"nutriflow/pkg/response"
)

type ProfileHandler struct {
	profileUseCase *usecase.ProfileUseCase
	maxUploadBytes int64
}

func NewProfileHandler(profileUseCase *usecase.ProfileUseCase, maxUploadBytes int64) *ProfileHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = usecase.DefaultMaxUploadBytes
	}
	return &ProfileHandler{
		profileUseCase: profileUseCase,
		maxUploadBytes: maxUploadBytes,
	}
}

type updateProfileRequest struct {
	Name           string `json:"name" validate:"required"`
	CRN            string `json:"crn"`
	WhatsappNumber string `json:"whatsappNumber"`
}

type toggleRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// GetProfile returns the caller's profile, creating it on first access.
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	sess, ok := c.Get("session").(*session.Session)
	if !ok {
		return response.Error(c, errors.ErrNoSession)
	}
	user, err := h.profileUseCase.EnsureProfile(c.Request().Context(), sess)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, user)
}

func (h *ProfileHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)
	user, err := h.profileUseCase.UpdateProfile(c.Request().Context(), uid, usecase.UpdateProfileInput{
		Name:           req.Name,
		CRN:            req.CRN,
		WhatsappNumber: req.WhatsappNumber,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, user)
}

// CompleteOnboarding takes a multipart form with crn, whatsappNumber and an
// optional logo file.
func (h *ProfileHandler) CompleteOnboarding(c echo.Context) error {
	logo, err := readUpload(c, "logo", h.maxUploadBytes)
	if err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)
	user, err := h.profileUseCase.CompleteOnboarding(c.Request().Context(), uid, usecase.OnboardingInput{
		CRN:            c.FormValue("crn"),
		WhatsappNumber: c.FormValue("whatsappNumber"),
		Logo:           logo,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, user)
}

func (h *ProfileHandler) UploadAvatar(c echo.Context) error {
	blob, err := readUpload(c, "file", h.maxUploadBytes)
	if err != nil {
		return response.Error(c, err)
	}
	if blob == nil {
		return response.Error(c, errors.BadRequest("Arquivo ausente ou inválido", nil))
	}

	uid := c.Get("uid").(string)
	url, err := h.profileUseCase.UploadAvatar(c.Request().Context(), uid, blob)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{"url": url})
}

func (h *ProfileHandler) SetNotificationSetting(c echo.Context) error {
	var req toggleRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)
	user, err := h.profileUseCase.SetNotificationSetting(c.Request().Context(), uid, c.Param("key"), *req.Enabled)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, user)
}

func (h *ProfileHandler) SetPrivacySetting(c echo.Context) error {
	var req toggleRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	uid := c.Get("uid").(string)
	user, err := h.profileUseCase.SetPrivacySetting(c.Request().Context(), uid, c.Param("key"), *req.Enabled)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, user)
}
