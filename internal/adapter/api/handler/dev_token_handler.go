package handler

import (
	"strings"

	"github.com/labstack/echo/v4"

	"nutriflow/internal/infrastructure/firebase"
	"nutriflow/internal/infrastructure/session"
	"nutriflow/pkg/errors"
	"nutriflow/pkg/response"
)

// DevTokenHandler mints development tokens. It is only routed when the
// development identity client is in use.
type DevTokenHandler struct {
	provider *session.Provider
}

var devTokenHandler *DevTokenHandler

func NewDevTokenHandler(provider *session.Provider) *DevTokenHandler {
	return &DevTokenHandler{
		provider: provider,
	}
}

func SetupDevTokenHandler(provider *session.Provider) {
	devTokenHandler = NewDevTokenHandler(provider)
}

func GetDevTokenHandler() *DevTokenHandler {
	return devTokenHandler
}

type devTokenRequest struct {
	UID  string `json:"uid" validate:"required"`
	Name string `json:"name"`
}

// GenerateToken returns a token for any uid, verified right away so the
// response carries the resulting session.
func (h *DevTokenHandler) GenerateToken(c echo.Context) error {
	var req devTokenRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}
	if strings.Contains(req.UID, ":") || strings.Contains(req.UID, "/") {
		return response.Error(c, errors.BadRequest("uid inválido", nil))
	}

	token := firebase.DevToken(req.UID, req.Name)
	sess, err := h.provider.Verify(c.Request().Context(), token)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]interface{}{
		"token":   token,
		"session": sess,
	})
}
