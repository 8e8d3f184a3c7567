package service

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Health status constants
const (
	StatusHealthy       = "healthy"
	StatusDegraded      = "degraded"
	StatusUnhealthy     = "unhealthy"
	StatusConnected     = "connected"
	StatusDisconnected  = "disconnected"
	StatusDisabled      = "disabled"
	StatusConfigured    = "configured"
	StatusNotConfigured = "not_configured"
)

const healthCheckTimeout = 2 * time.Second

// HealthStatus represents the overall health status of the application
type HealthStatus struct {
	Status    string            `json:"status"`
	Services  map[string]string `json:"services"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version,omitempty"`
}

// Pinger is satisfied by *sql.DB
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthChecker handles health check operations
type HealthChecker struct {
	db       Pinger
	queueURL string
	settings SettingsSource
	version  string
}

// NewHealthService creates a new HealthChecker instance. db, queueURL and
// settings are optional; a missing dependency is reported as disabled.
func NewHealthService(db Pinger, queueURL string, settings SettingsSource, version string) *HealthChecker {
	return &HealthChecker{
		db:       db,
		queueURL: queueURL,
		settings: settings,
		version:  version,
	}
}

// checkDatabase verifies PostgreSQL connectivity with a timeout
func (h *HealthChecker) checkDatabase(ctx context.Context) string {
	if h.db == nil {
		return StatusDisabled
	}

	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		return StatusDisconnected
	}

	return StatusConnected
}

// checkQueue verifies RabbitMQ connectivity
func (h *HealthChecker) checkQueue() string {
	if h.queueURL == "" {
		return StatusDisabled
	}

	conn, err := amqp.DialConfig(h.queueURL, amqp.Config{Dial: amqp.DefaultDial(healthCheckTimeout)})
	if err != nil {
		return StatusDisconnected
	}
	defer conn.Close()

	return StatusConnected
}

// checkCredentials reports whether template sends are possible
func (h *HealthChecker) checkCredentials() string {
	if h.settings == nil {
		return StatusDisabled
	}
	settings := h.settings.Settings()
	if settings.HasSendCredentials() {
		return StatusConfigured
	}
	return StatusNotConfigured
}

// determineOverallStatus calculates the overall health status based on service statuses
func (h *HealthChecker) determineOverallStatus(services map[string]string) string {
	if services["database"] == StatusDisconnected {
		return StatusUnhealthy
	}

	if services["queue"] == StatusDisconnected || services["whatsapp"] == StatusNotConfigured {
		return StatusDegraded
	}

	return StatusHealthy
}

// CheckHealth performs health checks on all dependencies and returns the overall status
func (h *HealthChecker) CheckHealth(ctx context.Context) *HealthStatus {
	services := map[string]string{
		"database": h.checkDatabase(ctx),
		"queue":    h.checkQueue(),
		"whatsapp": h.checkCredentials(),
	}

	return &HealthStatus{
		Status:    h.determineOverallStatus(services),
		Services:  services,
		Timestamp: time.Now().UTC(),
		Version:   h.version,
	}
}
