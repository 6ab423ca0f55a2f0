package store

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/jjsuplementos77-arch/FINANCAS/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// MaxLogs is how many activity log entries are retained
const MaxLogs = 50

var (
	ErrProductNotFound = errors.New("product not found")
	ErrSaleNotFound    = errors.New("sale not found")
)

// Operation names a mutating store operation
type Operation string

const (
	OpAddProduct     Operation = "add_product"
	OpUpdateProduct  Operation = "update_product"
	OpDeleteProduct  Operation = "delete_product"
	OpRegisterSale   Operation = "register_sale"
	OpUpdateSale     Operation = "update_sale"
	OpDeleteSale     Operation = "delete_sale"
	OpImportSnapshot Operation = "import_snapshot"
)

// Change is delivered to the notifier after every mutation
type Change struct {
	Operation Operation
	Snapshot  domain.Snapshot
}

// Notifier receives the new state after each mutation. It is called while the
// store is locked, so it must not call back into the store.
type Notifier interface {
	Notify(change Change)
}

// NotifierFunc adapts a function to the Notifier interface
type NotifierFunc func(change Change)

// Notify calls f(change)
func (f NotifierFunc) Notify(change Change) {
	f(change)
}

// Option configures a Store
type Option func(*Store)

// WithNotifier registers the receiver of state changes
func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// WithClock overrides the clock used to stamp log entries
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// WithIDGenerator overrides how log entry ids are generated
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithLogger sets the logger for store diagnostics
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// Store owns the products, sales and activity logs. All mutation goes through
// its methods, which keep every product stock at or above zero and the log
// bounded to MaxLogs entries, newest first.
type Store struct {
	mu       sync.RWMutex
	products []domain.Product
	sales    []domain.Sale
	logs     []domain.ActivityLog

	notifier Notifier
	clock    func() time.Time
	newID    func() string
	logger   *zap.Logger
}

// New creates an empty store
func New(opts ...Option) *Store {
	s := &Store{
		products: []domain.Product{},
		sales:    []domain.Sale{},
		logs:     []domain.ActivityLog{},
		clock:    time.Now,
		newID:    uuid.NewString,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hydrate replaces the state with a previously saved snapshot without logging
// or notifying. It is meant for load-on-start.
func (s *Store) Hydrate(snapshot domain.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot = snapshot.Normalized()
	s.products = clampStock(cloneProducts(snapshot.Products))
	s.sales = cloneSales(snapshot.Sales)
	s.logs = cloneLogs(snapshot.Logs)
	if len(s.logs) > MaxLogs {
		s.logs = s.logs[:MaxLogs]
	}
}

// AddProduct inserts a new product. The id is supplied by the caller.
func (s *Store) AddProduct(product domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = append(s.products, product)
	s.appendLog(fmt.Sprintf("Produto \"%s\" cadastrado com estoque %d", product.Name, product.Stock), domain.LogTypeProduct)

	s.logger.Debug("Product added", zap.String("product_id", product.ID), zap.Int("stock", product.Stock))
	s.notify(OpAddProduct)
}

// UpdateProduct replaces the product with the same id. When no product
// matches, nothing is replaced but the update is still logged, and
// ErrProductNotFound is returned.
func (s *Store) UpdateProduct(product domain.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.productIndex(product.ID)
	if idx >= 0 {
		s.products[idx] = product
	}
	s.appendLog(fmt.Sprintf("Produto \"%s\" atualizado", product.Name), domain.LogTypeProduct)
	s.notify(OpUpdateProduct)

	if idx < 0 {
		s.logger.Debug("Product to update not found", zap.String("product_id", product.ID))
		return ErrProductNotFound
	}
	s.logger.Debug("Product updated", zap.String("product_id", product.ID))
	return nil
}

// DeleteProduct removes the product with the given id. Sales of the product
// are kept. The caller must have obtained confirmation from the operator.
// An unknown id is logged with an empty name and reported as
// ErrProductNotFound.
func (s *Store) DeleteProduct(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var name string
	idx := s.productIndex(id)
	if idx >= 0 {
		name = s.products[idx].Name
		s.products = slices.Delete(s.products, idx, idx+1)
	}
	s.appendLog(fmt.Sprintf("Produto \"%s\" excluído", name), domain.LogTypeProduct)
	s.notify(OpDeleteProduct)

	if idx < 0 {
		return ErrProductNotFound
	}
	s.logger.Debug("Product deleted", zap.String("product_id", id))
	return nil
}

// RegisterSale records a sale and takes its quantity out of the product's
// stock, never below zero. Sufficient stock is the caller's concern.
func (s *Store) RegisterSale(sale domain.Sale) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sales = append(s.sales, sale)
	if idx := s.productIndex(sale.ProductID); idx >= 0 {
		s.products[idx].Stock = max(0, s.products[idx].Stock-sale.Quantity)
	}
	s.appendLog(fmt.Sprintf("Venda de %dx \"%s\" realizada (R$ %s)", sale.Quantity, sale.ProductName, sale.TotalPrice.StringFixed(2)), domain.LogTypeSale)

	s.logger.Debug("Sale registered",
		zap.String("sale_id", sale.ID),
		zap.String("product_id", sale.ProductID),
		zap.Int("quantity", sale.Quantity),
	)
	s.notify(OpRegisterSale)
}

// UpdateSale replaces an existing sale and reconciles stock: the old quantity
// goes back to the old product and the new quantity comes out of the new
// product. Each affected product is floored at zero once, after both
// adjustments. An unknown sale id changes nothing and returns ErrSaleNotFound.
func (s *Store) UpdateSale(updated domain.Sale) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saleIdx := s.saleIndex(updated.ID)
	if saleIdx < 0 {
		return ErrSaleNotFound
	}
	old := s.sales[saleIdx]

	for i := range s.products {
		p := &s.products[i]
		if p.ID != old.ProductID && p.ID != updated.ProductID {
			continue
		}
		stock := p.Stock
		if p.ID == old.ProductID {
			stock += old.Quantity
		}
		if p.ID == updated.ProductID {
			stock -= updated.Quantity
		}
		p.Stock = max(0, stock)
	}

	s.sales[saleIdx] = updated
	s.appendLog(fmt.Sprintf("Venda de \"%s\" editada", updated.ProductName), domain.LogTypeSale)

	s.logger.Debug("Sale updated",
		zap.String("sale_id", updated.ID),
		zap.Int("old_quantity", old.Quantity),
		zap.Int("new_quantity", updated.Quantity),
	)
	s.notify(OpUpdateSale)
	return nil
}

// DeleteSale cancels a sale and gives its quantity back to the product. The
// caller must have obtained confirmation from the operator. An unknown id
// changes nothing and returns ErrSaleNotFound.
func (s *Store) DeleteSale(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	saleIdx := s.saleIndex(id)
	if saleIdx < 0 {
		return ErrSaleNotFound
	}
	sale := s.sales[saleIdx]

	s.sales = slices.Delete(s.sales, saleIdx, saleIdx+1)
	if idx := s.productIndex(sale.ProductID); idx >= 0 {
		s.products[idx].Stock += sale.Quantity
	}
	s.appendLog(fmt.Sprintf("Venda de \"%s\" cancelada", sale.ProductName), domain.LogTypeSale)

	s.logger.Debug("Sale cancelled", zap.String("sale_id", id), zap.Int("restored", sale.Quantity))
	s.notify(OpDeleteSale)
	return nil
}

// ImportSnapshot replaces products and sales wholesale. Logs are replaced only
// when logs is non-nil. Negative stock is stored as zero. A restore entry is
// logged afterwards.
func (s *Store) ImportSnapshot(products []domain.Product, sales []domain.Sale, logs []domain.ActivityLog) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products = clampStock(cloneProducts(products))
	s.sales = cloneSales(sales)
	if logs != nil {
		s.logs = cloneLogs(logs)
	}
	s.appendLog("Banco de dados restaurado via importação", domain.LogTypeSystem)

	s.logger.Info("Snapshot imported",
		zap.Int("products", len(s.products)),
		zap.Int("sales", len(s.sales)),
		zap.Bool("logs_replaced", logs != nil),
	)
	s.notify(OpImportSnapshot)
}

// Products returns a copy of the catalog in insertion order
func (s *Store) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneProducts(s.products)
}

// Sales returns a copy of all sales in insertion order
func (s *Store) Sales() []domain.Sale {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneSales(s.sales)
}

// Logs returns a copy of the activity log, newest first
func (s *Store) Logs() []domain.ActivityLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneLogs(s.logs)
}

// Snapshot returns a copy of the whole state
func (s *Store) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// FindProduct looks up a product by id
func (s *Store) FindProduct(id string) (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx := s.productIndex(id); idx >= 0 {
		return s.products[idx], true
	}
	return domain.Product{}, false
}

// FindSale looks up a sale by id
func (s *Store) FindSale(id string) (domain.Sale, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if idx := s.saleIndex(id); idx >= 0 {
		return s.sales[idx], true
	}
	return domain.Sale{}, false
}

// appendLog prepends an entry and drops everything past MaxLogs
func (s *Store) appendLog(action string, logType domain.LogType) {
	entry := domain.ActivityLog{
		ID:        s.newID(),
		Timestamp: s.clock(),
		Action:    action,
		Type:      logType,
	}

	logs := make([]domain.ActivityLog, 0, min(len(s.logs)+1, MaxLogs))
	logs = append(logs, entry)
	for _, l := range s.logs {
		if len(logs) == MaxLogs {
			break
		}
		logs = append(logs, l)
	}
	s.logs = logs
}

func (s *Store) notify(op Operation) {
	if s.notifier == nil {
		return
	}
	s.notifier.Notify(Change{Operation: op, Snapshot: s.snapshot()})
}

func (s *Store) snapshot() domain.Snapshot {
	return domain.Snapshot{
		Products: cloneProducts(s.products),
		Sales:    cloneSales(s.sales),
		Logs:     cloneLogs(s.logs),
	}
}

func (s *Store) productIndex(id string) int {
	for i := range s.products {
		if s.products[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) saleIndex(id string) int {
	for i := range s.sales {
		if s.sales[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneProducts(in []domain.Product) []domain.Product {
	out := make([]domain.Product, len(in))
	copy(out, in)
	return out
}

// clampStock raises negative stock to zero in place
func clampStock(products []domain.Product) []domain.Product {
	for i := range products {
		products[i].Stock = max(0, products[i].Stock)
	}
	return products
}

func cloneSales(in []domain.Sale) []domain.Sale {
	out := make([]domain.Sale, len(in))
	copy(out, in)
	return out
}

func cloneLogs(in []domain.ActivityLog) []domain.ActivityLog {
	out := make([]domain.ActivityLog, len(in))
	copy(out, in)
	return out
}
