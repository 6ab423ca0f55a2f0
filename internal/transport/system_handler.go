package transport

import (
	"context"
	"net/http"

	"github.com/jjsuplementos77-arch/FINANCAS/internal/middleware"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SyncReporter is the part of the sync service the API exposes
type SyncReporter interface {
	State() service.SyncState
	Setup(ctx context.Context) (bool, error)
}

// SetupResponse tells the front end whether to show onboarding
type SetupResponse struct {
	FirstOpen bool `json:"firstOpen"`
}

// SystemHandler serves onboarding and the persistence indicator
type SystemHandler struct {
	sync   SyncReporter
	logger *zap.Logger
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(sync SyncReporter, logger *zap.Logger) *SystemHandler {
	return &SystemHandler{sync: sync, logger: logger}
}

// RegisterRoutes registers the system routes
func (h *SystemHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/setup", h.Setup)
	r.Get("/api/sync", h.Sync)
}

// Setup reports a first open once and records it
func (h *SystemHandler) Setup(w http.ResponseWriter, r *http.Request) {
	firstOpen, err := h.sync.Setup(r.Context())
	if err != nil {
		h.logger.Error("Failed to read onboarding flag", zap.Error(err))
		middleware.RespondWithError(w, http.StatusServiceUnavailable, "storage unavailable")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, SetupResponse{FirstOpen: firstOpen})
}

// Sync returns the persistence indicator
func (h *SystemHandler) Sync(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.sync.State())
}
