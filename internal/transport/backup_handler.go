package transport

import (
	"fmt"
	"io"
	"net/http"

	"github.com/jjsuplementos77-arch/FINANCAS/internal/middleware"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// MaxBackupSize bounds an uploaded backup document
const MaxBackupSize = 32 << 20

// BackupHandler downloads and restores backup documents
type BackupHandler struct {
	backup service.BackupService
	logger *zap.Logger
}

// NewBackupHandler creates a new BackupHandler
func NewBackupHandler(backup service.BackupService, logger *zap.Logger) *BackupHandler {
	return &BackupHandler{backup: backup, logger: logger}
}

// RegisterRoutes registers the backup routes
func (h *BackupHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/backup", func(r chi.Router) {
		r.Get("/", h.Export)
		r.Post("/import", h.Import)
	})
}

// Export sends the whole state as a file download
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, name, err := h.backup.Export()
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Debug("Failed to write backup download", zap.String("file", name), zap.Error(err))
	}
}

// Import replaces the whole state with the uploaded document
func (h *BackupHandler) Import(w http.ResponseWriter, r *http.Request) {
	if !requireConfirmation(w, r) {
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBackupSize))
	if err != nil {
		middleware.RespondWithCode(w, http.StatusRequestEntityTooLarge, codeBackupTooLarge, "backup document too large", nil)
		return
	}

	if err := h.backup.Import(data); err != nil {
		h.logger.Warn("Backup import rejected", zap.Error(err))
		respondWithServiceError(w, h.logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
