package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jjsuplementos77-arch/FINANCAS/internal/domain"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/metrics"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/report"
	"github.com/jjsuplementos77-arch/FINANCAS/internal/store"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

var (
	ErrProductRequired   = errors.New("product is required")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// SaleInput is the sale form
type SaleInput struct {
	ProductID string `json:"productId" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
	// UnitPrice defaults to the product selling price on new sales and to the
	// price previously charged when editing
	UnitPrice     *decimal.Decimal     `json:"unitPrice" validate:"omitempty,gte=0"`
	PaymentMethod domain.PaymentMethod `json:"paymentMethod" validate:"omitempty,oneof=PIX CARD CASH"`
	CustomerName  string               `json:"customerName" validate:"max=120"`
	// Date is YYYY-MM-DD or RFC3339, empty means today
	Date string `json:"date"`
}

// Validate checks the form without looking at the catalog
func (in SaleInput) Validate() error {
	if strings.TrimSpace(in.ProductID) == "" {
		return ErrProductRequired
	}
	if in.Quantity < 1 {
		return fmt.Errorf("%w: quantity must be at least 1", ErrInvalidInput)
	}
	if in.UnitPrice != nil && in.UnitPrice.IsNegative() {
		return fmt.Errorf("%w: unitPrice must be >= 0", ErrInvalidInput)
	}
	if in.PaymentMethod != "" && !in.PaymentMethod.Valid() {
		return fmt.Errorf("%w: unknown payment method %q", ErrInvalidInput, in.PaymentMethod)
	}
	return nil
}

// SaleService defines the interface for sales business logic
type SaleService interface {
	// List returns the sales of a period, newest first
	List(month time.Month, year int) []domain.Sale
	Get(id string) (domain.Sale, error)
	Register(input SaleInput) (domain.Sale, error)
	Update(id string, input SaleInput) (domain.Sale, error)
	Delete(id string) error
	// AvailableStock is the stock a sale form may use for a product. When
	// editing a sale of that product its quantity counts as available.
	AvailableStock(productID, editingSaleID string) (int, error)
}

type saleService struct {
	// serializes the stock check with the store write
	mu       sync.Mutex
	store    *store.Store
	metrics  *metrics.Metrics
	logger   *zap.Logger
	location *time.Location
	clock    func() time.Time
	newID    func() string
}

// NewSaleService creates a new instance of SaleService. Periods are read in loc.
func NewSaleService(s *store.Store, m *metrics.Metrics, loc *time.Location, logger *zap.Logger) SaleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	return &saleService{
		store:    s,
		metrics:  m,
		logger:   logger,
		location: loc,
		clock:    time.Now,
		newID:    uuid.NewString,
	}
}

func (s *saleService) List(month time.Month, year int) []domain.Sale {
	return report.SortByDateDesc(report.FilterByPeriod(s.store.Sales(), month, year, s.location))
}

func (s *saleService) Get(id string) (domain.Sale, error) {
	sale, ok := s.store.FindSale(id)
	if !ok {
		return domain.Sale{}, store.ErrSaleNotFound
	}
	return sale, nil
}

// Register checks the stock and records a new sale
func (s *saleService) Register(input SaleInput) (domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sale, err := s.build(input, nil)
	if err != nil {
		s.metrics.ObserveStoreOperation(string(store.OpRegisterSale), err)
		return domain.Sale{}, err
	}

	s.store.RegisterSale(sale)
	s.metrics.ObserveStoreOperation(string(store.OpRegisterSale), nil)
	return sale, nil
}

// Update rebuilds an existing sale from the form and applies the stock delta
func (s *saleService) Update(id string, input SaleInput) (domain.Sale, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.store.FindSale(id)
	if !ok {
		s.metrics.ObserveStoreOperation(string(store.OpUpdateSale), store.ErrSaleNotFound)
		return domain.Sale{}, store.ErrSaleNotFound
	}

	sale, err := s.build(input, &existing)
	if err != nil {
		s.metrics.ObserveStoreOperation(string(store.OpUpdateSale), err)
		return domain.Sale{}, err
	}

	err = s.store.UpdateSale(sale)
	s.metrics.ObserveStoreOperation(string(store.OpUpdateSale), err)
	if err != nil {
		return domain.Sale{}, fmt.Errorf("failed to update sale: %w", err)
	}
	return sale, nil
}

// Delete cancels a sale and returns its quantity to stock
func (s *saleService) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.store.DeleteSale(id)
	s.metrics.ObserveStoreOperation(string(store.OpDeleteSale), err)
	return err
}

func (s *saleService) AvailableStock(productID, editingSaleID string) (int, error) {
	product, ok := s.store.FindProduct(productID)
	if !ok {
		return 0, store.ErrProductNotFound
	}

	available := product.Stock
	if editingSaleID != "" {
		if sale, ok := s.store.FindSale(editingSaleID); ok && sale.ProductID == productID {
			available += sale.Quantity
		}
	}
	return available, nil
}

// build turns the form into a sale, computing the totals from the product as
// it is now. existing is nil for new sales.
func (s *saleService) build(input SaleInput, existing *domain.Sale) (domain.Sale, error) {
	if err := input.Validate(); err != nil {
		return domain.Sale{}, err
	}

	product, ok := s.store.FindProduct(input.ProductID)
	if !ok {
		return domain.Sale{}, store.ErrProductNotFound
	}

	oldQty := 0
	if existing != nil && existing.ProductID == input.ProductID {
		oldQty = existing.Quantity
	}
	if needed := input.Quantity - oldQty; product.Stock < needed {
		s.logger.Warn("Sale rejected, not enough stock",
			zap.String("product_id", product.ID),
			zap.Int("needed", needed),
			zap.Int("stock", product.Stock),
		)
		return domain.Sale{}, fmt.Errorf("%w: %d requested, %d available", ErrInsufficientStock, needed, product.Stock)
	}

	unitPrice := product.SellingPrice
	switch {
	case input.UnitPrice != nil:
		unitPrice = *input.UnitPrice
	case existing != nil:
		unitPrice = existing.UnitPrice()
	}

	date, err := s.parseDate(input.Date, existing)
	if err != nil {
		return domain.Sale{}, err
	}

	paymentMethod := input.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = domain.PaymentPix
	}

	id := s.newID()
	if existing != nil {
		id = existing.ID
	}

	quantity := decimal.NewFromInt(int64(input.Quantity))
	return domain.Sale{
		ID:             id,
		ProductID:      product.ID,
		ProductName:    product.Name,
		Quantity:       input.Quantity,
		TotalPrice:     unitPrice.Mul(quantity),
		TotalCost:      product.CostPrice.Mul(quantity),
		TotalBasePrice: product.SellingPrice.Mul(quantity),
		Date:           date,
		CustomerName:   strings.TrimSpace(input.CustomerName),
		PaymentMethod:  paymentMethod,
	}, nil
}

// parseDate accepts a calendar day, stored as UTC midnight, or a full timestamp
func (s *saleService) parseDate(raw string, existing *domain.Sale) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		if existing != nil {
			return existing.Date, nil
		}
		today := s.clock().UTC().Format(dateLayout)
		raw = today
	}

	if day, err := time.Parse(dateLayout, raw); err == nil {
		return day, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD or RFC3339", ErrInvalidInput)
	}
	return ts.UTC(), nil
}
