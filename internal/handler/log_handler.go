package handler

import (
	"net/http"

	"wacms/internal/service"
)

// LogHandler serves message logs and the dashboard counters
type LogHandler struct {
	logService *service.LogService
}

// NewLogHandler creates a new log handler
func NewLogHandler(logService *service.LogService) *LogHandler {
	return &LogHandler{
		logService: logService,
	}
}

// List handles GET /api/logs?search=&status=
func (h *LogHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	logs, err := h.logService.Query(service.LogFilter{
		Search: query.Get("search"),
		Status: query.Get("status"),
	})
	if err != nil {
		HandleServiceError(w, err)
		return
	}

	WriteOK(w, map[string]interface{}{
		"logs":  logs,
		"total": len(logs),
	})
}

// Clear handles DELETE /api/logs
func (h *LogHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.logService.ClearLogs()
	WriteNoContent(w)
}

// Dashboard handles GET /api/dashboard
func (h *LogHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	WriteOK(w, h.logService.DashboardStats())
}
