package handlers

import (
	"net/http"

	"github.com/akinalp/wordless/pkg"
)

// ConnectionCounter, bu süreçteki canlı bağlantı sayısını verir. *ws.Hub karşılar.
type ConnectionCounter interface {
	ConnectionCount() int
}

// HealthResponse, health endpoint'inin response formatı.
type HealthResponse struct {
	Status      string `json:"status"`
	Service     string `json:"service"`
	Connections int    `json:"connections"`
}

// HealthHandler, auth gerektirmeyen health check endpoint'i.
type HealthHandler struct {
	counter ConnectionCounter
}

// NewHealthHandler, constructor.
func NewHealthHandler(counter ConnectionCounter) *HealthHandler {
	return &HealthHandler{counter: counter}
}

// Health godoc
// GET /api/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	pkg.JSON(w, http.StatusOK, HealthResponse{
		Status:      "ok",
		Service:     "wordless",
		Connections: h.counter.ConnectionCount(),
	})
}
