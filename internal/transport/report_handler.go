package transport

import (
	"net/http"

	"github.com/jjsuplementos77-arch/FINANCAS/internal/middleware"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ReportHandler serves the dashboard reports and the activity feed
type ReportHandler struct {
	reports service.ReportService
	logger  *zap.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, logger: logger}
}

// RegisterRoutes registers the report and log routes
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/api/logs", h.Logs)
	r.Route("/api/reports", func(r chi.Router) {
		r.Get("/monthly", h.Monthly)
		r.Get("/years", h.Years)
	})
}

// Logs returns the activity feed, newest first
func (h *ReportHandler) Logs(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.reports.Logs())
}

// Monthly returns the dashboard report of one month
func (h *ReportHandler) Monthly(w http.ResponseWriter, r *http.Request) {
	month, year, err := parsePeriod(r, h.reports.CurrentPeriod)
	if err != nil {
		middleware.RespondWithCode(w, http.StatusBadRequest, codeInvalidPeriod, err.Error(), nil)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, h.reports.Monthly(month, year))
}

// Years returns the years the period picker offers
func (h *ReportHandler) Years(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.reports.Years())
}
