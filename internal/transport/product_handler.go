package transport

import (
	"net/http"

	"github.com/jjsuplementos77-arch/FINANCAS/internal/middleware"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// AvailableStockResponse is the quantity a sale form may sell
type AvailableStockResponse struct {
	ProductID string `json:"productId"`
	Available int    `json:"available"`
}

// ProductHandler handles HTTP requests for the catalog
type ProductHandler struct {
	products service.ProductService
	sales    service.SaleService
	logger   *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products service.ProductService, sales service.SaleService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		products: products,
		sales:    sales,
		logger:   logger,
	}
}

// RegisterRoutes registers all product routes
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Get("/{id}/available", h.Available)
	})
}

// List returns the catalog in insertion order
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	middleware.RespondWithJSON(w, http.StatusOK, h.products.List())
}

// Get returns one product
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	product, err := h.products.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}
	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Create adds a product to the catalog
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input service.ProductInput
	if err := middleware.DecodeAndValidate(r, &input); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	product, err := h.products.Create(input)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Product created", zap.String("product_id", product.ID))
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// Update replaces a product's fields
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	var input service.ProductInput
	if err := middleware.DecodeAndValidate(r, &input); err != nil {
		h.logger.Debug("Product validation failed", zap.Error(err))
		middleware.RespondWithDecodeError(w, err)
		return
	}

	product, err := h.products.Update(chi.URLParam(r, "id"), input)
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// Delete removes a product. Its sales are kept.
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !requireConfirmation(w, r) {
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.products.Delete(id); err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("Product deleted", zap.String("product_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// Available returns how many units a sale form can sell, counting the units
// held by the sale being edited
func (h *ProductHandler) Available(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	available, err := h.sales.AvailableStock(id, r.URL.Query().Get("editingSaleId"))
	if err != nil {
		respondWithServiceError(w, h.logger, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, AvailableStockResponse{ProductID: id, Available: available})
}
