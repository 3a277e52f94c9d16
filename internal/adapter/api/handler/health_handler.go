package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// LiveCounter reports open live connections.
type LiveCounter interface {
	Connections() int
}

type HealthHandler struct {
	storeBackend string
	live         LiveCounter
	startedAt    time.Time
}

var healthHandler *HealthHandler

func NewHealthHandler(storeBackend string, live LiveCounter) *HealthHandler {
	return &HealthHandler{
		storeBackend: storeBackend,
		live:         live,
		startedAt:    time.Now(),
	}
}

func SetupHealthHandler(storeBackend string, live LiveCounter) {
	healthHandler = NewHealthHandler(storeBackend, live)
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	body := map[string]interface{}{
		"status": "Server is running",
		"time":   time.Now().Format(time.RFC3339),
		"uptime": time.Since(h.startedAt).Round(time.Second).String(),
		"store":  h.storeBackend,
	}
	if h.live != nil {
		body["liveConnections"] = h.live.Connections()
	}
	return c.JSON(http.StatusOK, body)
}
