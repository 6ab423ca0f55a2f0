package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jjsuplementos77-arch/FINANCAS/internal/domain"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/metrics"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidInput = errors.New("invalid input")
)

// ProductInput is the product form
type ProductInput struct {
	Name         string          `json:"name" validate:"required"`
	Photo        *string         `json:"photo"`
	CostPrice    decimal.Decimal `json:"costPrice" validate:"gte=0"`
	SellingPrice decimal.Decimal `json:"sellingPrice" validate:"gte=0"`
	Stock        int             `json:"stock" validate:"gte=0"`
}

// Validate checks the form the same way the validation tags do, for callers
// that do not go through the HTTP layer
func (in ProductInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if in.CostPrice.IsNegative() {
		return fmt.Errorf("%w: costPrice must be >= 0", ErrInvalidInput)
	}
	if in.SellingPrice.IsNegative() {
		return fmt.Errorf("%w: sellingPrice must be >= 0", ErrInvalidInput)
	}
	if in.Stock < 0 {
		return fmt.Errorf("%w: stock must be >= 0", ErrInvalidInput)
	}
	return nil
}

func (in ProductInput) toProduct(id string) domain.Product {
	return domain.Product{
		ID:           id,
		Name:         strings.TrimSpace(in.Name),
		Photo:        in.Photo,
		CostPrice:    in.CostPrice,
		SellingPrice: in.SellingPrice,
		Stock:        in.Stock,
	}
}

// ProductService defines the interface for catalog business logic
type ProductService interface {
	List() []domain.Product
	Get(id string) (domain.Product, error)
	Create(input ProductInput) (domain.Product, error)
	Update(id string, input ProductInput) (domain.Product, error)
	Delete(id string) error
}

type productService struct {
	store   *store.Store
	metrics *metrics.Metrics
	newID   func() string
}

// NewProductService creates a new instance of ProductService
func NewProductService(s *store.Store, m *metrics.Metrics) ProductService {
	return &productService{
		store:   s,
		metrics: m,
		newID:   uuid.NewString,
	}
}

func (s *productService) List() []domain.Product {
	return s.store.Products()
}

func (s *productService) Get(id string) (domain.Product, error) {
	product, ok := s.store.FindProduct(id)
	if !ok {
		return domain.Product{}, store.ErrProductNotFound
	}
	return product, nil
}

// Create validates the form and adds the product under a fresh id
func (s *productService) Create(input ProductInput) (domain.Product, error) {
	if err := input.Validate(); err != nil {
		return domain.Product{}, err
	}

	product := input.toProduct(s.newID())
	s.store.AddProduct(product)
	s.metrics.ObserveStoreOperation(string(store.OpAddProduct), nil)

	return product, nil
}

// Update replaces every field of an existing product
func (s *productService) Update(id string, input ProductInput) (domain.Product, error) {
	if err := input.Validate(); err != nil {
		return domain.Product{}, err
	}

	// only existing products reach the store, unknown ids are rejected here
	if _, ok := s.store.FindProduct(id); !ok {
		s.metrics.ObserveStoreOperation(string(store.OpUpdateProduct), store.ErrProductNotFound)
		return domain.Product{}, store.ErrProductNotFound
	}

	product := input.toProduct(id)
	err := s.store.UpdateProduct(product)
	s.metrics.ObserveStoreOperation(string(store.OpUpdateProduct), err)
	if err != nil {
		return domain.Product{}, fmt.Errorf("failed to update product: %w", err)
	}

	return product, nil
}

// Delete removes a product. Its past sales are kept.
func (s *productService) Delete(id string) error {
	if _, ok := s.store.FindProduct(id); !ok {
		s.metrics.ObserveStoreOperation(string(store.OpDeleteProduct), store.ErrProductNotFound)
		return store.ErrProductNotFound
	}

	err := s.store.DeleteProduct(id)
	s.metrics.ObserveStoreOperation(string(store.OpDeleteProduct), err)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	return nil
}
