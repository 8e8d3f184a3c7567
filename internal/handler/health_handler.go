package handler

import (
	"net/http"

	"wacms/internal/service"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	healthService *service.HealthChecker
}

// NewHealthHandler creates a new HealthHandler instance
func NewHealthHandler(healthService *service.HealthChecker) *HealthHandler {
	return &HealthHandler{
		healthService: healthService,
	}
}

// HandleHealth handles GET requests to the /health endpoint
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthStatus := h.healthService.CheckHealth(r.Context())

	// Degraded still serves traffic; only unhealthy is reported as unavailable
	var status int
	switch healthStatus.Status {
	case service.StatusHealthy, service.StatusDegraded:
		status = http.StatusOK
	case service.StatusUnhealthy:
		status = http.StatusServiceUnavailable
	default:
		status = http.StatusInternalServerError
	}

	WriteJSON(w, status, healthStatus)
}
