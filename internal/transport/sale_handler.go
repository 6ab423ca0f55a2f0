package transport

import (
	"net/http"

	"github.com/jjsuplementos77-arch/FINANCAS/internal/middleware"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// SaleHandler handles HTTP requests for sales
type SaleHandler struct {
	sales   service.SaleService
	reports service.ReportService
	logger  *zap.Logger
}

// NewSaleHandler creates a new SaleHandler
func NewSaleHandler(sales service.SaleService, reports service.ReportService, logger *zap.Logger) *SaleHandler {
	return &SaleHandler{
		sales:   sales,
		reports: reports,
		logger:  logger,
	}
}

// RegisterRoutes registers all sale routes
func (h *SaleHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/sales", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Register)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

// List returns the sales of a month, newest first
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	month, year, err := parsePeriod(r, h.reports.CurrentPeriod)
	if err != nil {
		middleware.RespondWithCode(w, http.StatusBadRequest, codeInvalidPeriod, err.Error(), nil)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, h.sales.List(month, year))
}

// Get returns one sale
func (h *SaleHandler) Get(w http.ResponseWriter, r *http.Request) {
	sale, err := h.sales.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, sale)
}

// Register records a sale and takes its quantity out of stock
func (h *SaleHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input service.SaleInput
	if err := middleware.DecodeAndValidate(r, &input); err != nil {
		h.logger.Debug("Sale validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	sale, err := h.sales.Register(input)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Sale registered",
		zap.String("sale_id", sale.ID),
		zap.String("product_id", sale.ProductID),
		zap.Int("quantity", sale.Quantity),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, sale)
}

// Update edits a sale and moves stock between the old and new product
func (h *SaleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input service.SaleInput
	if err := middleware.DecodeAndValidate(r, &input); err != nil {
		h.logger.Debug("Sale validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	sale, err := h.sales.Update(chi.URLParam(r, "id"), input)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, sale)
}

// Delete cancels a sale and returns its units to stock
func (h *SaleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !requireConfirmation(w, r) {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.sales.Delete(id); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Sale cancelled", zap.String("sale_id", id))
	w.WriteHeader(http.StatusNoContent)
}
