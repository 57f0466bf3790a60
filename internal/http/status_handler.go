package httpapi

import (
	"context"
	"net/http"

	"aquawatch/internal/service"
)

// StatusProvider reports component health.
type StatusProvider interface {
	Status(ctx context.Context) service.Status
}

type StatusHandler struct {
	provider StatusProvider
}

func NewStatusHandler(provider StatusProvider) *StatusHandler {
	return &StatusHandler{provider: provider}
}

// GetStatus handles GET /status.
func (h *StatusHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Ok(h.provider.Status(r.Context())))
}
