package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"nutriflow/internal/infrastructure/session"
	"nutriflow/pkg/errors"
	"nutriflow/pkg/response"
)

type AuthMiddleware struct {
	provider  *session.Provider
	loginPath string
}

func NewAuthMiddleware(provider *session.Provider, loginPath string) *AuthMiddleware {
	if loginPath == "" {
		loginPath = "/login"
	}
	return &AuthMiddleware{
		provider:  provider,
		loginPath: loginPath,
	}
}

// Authenticate resolves the bearer token to a session and stores it under
// "session", with the identity under "uid". Browsers asking for HTML are sent
// to the login page; everything else gets 401.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		token := BearerToken(c.Request())
		if token == "" {
			return m.reject(c, errors.Unauthorized("Autenticação necessária", nil))
		}

		sess, err := m.provider.Verify(c.Request().Context(), token)
		if err != nil {
			return m.reject(c, err)
		}

		c.Set("uid", sess.ID)
		c.Set("session", sess)
		return next(c)
	}
}

func (m *AuthMiddleware) reject(c echo.Context, err error) error {
	if wantsHTML(c.Request()) {
		return c.Redirect(http.StatusFound, m.loginPath)
	}
	return response.Error(c, err)
}

// BearerToken extracts the token from "Authorization: Bearer <token>".
func BearerToken(r *http.Request) string {
	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), echo.MIMETextHTML)
}
