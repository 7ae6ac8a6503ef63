package api

import (
	"context"
	"net/http"
	"time"
)

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Checks        map[string]string `json:"checks"`
}

// AuditChecker reports whether the audit log's database connection is
// reachable. Satisfied by *audit.Log; nil if audit persistence is disabled.
type AuditChecker interface {
	HealthCheck(ctx context.Context) error
}

// AutomationChecker reports whether the MQTT relay is currently connected.
// Satisfied by *automation.Client; nil if automation relay is disabled.
type AutomationChecker interface {
	IsConnected() bool
}

type HealthHandler struct {
	audit       AuditChecker
	automation  AutomationChecker
	version     string
	startTime   time.Time
}

func NewHealthHandler(audit AuditChecker, automation AutomationChecker, version string, startTime time.Time) *HealthHandler {
	return &HealthHandler{audit: audit, automation: automation, version: version, startTime: startTime}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)
	status := "healthy"
	httpStatus := http.StatusOK

	if h.audit != nil {
		if err := h.audit.HealthCheck(r.Context()); err != nil {
			checks["audit"] = "error"
			status = "degraded"
		} else {
			checks["audit"] = "ok"
		}
	} else {
		checks["audit"] = "not_configured"
	}

	if h.automation != nil {
		if h.automation.IsConnected() {
			checks["automation"] = "ok"
		} else {
			checks["automation"] = "disconnected"
			if status == "healthy" {
				status = "degraded"
			}
		}
	} else {
		checks["automation"] = "not_configured"
	}

	resp := HealthResponse{
		Status:        status,
		Version:       h.version,
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
		Checks:        checks,
	}

	WriteJSON(w, httpStatus, resp)
}
