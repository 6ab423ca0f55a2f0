package metrics

import (
	"strconv"
	"time"

	"github.com/jjsuplementos77-arch/FINANCAS/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "financas"

// Result label values
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// Metrics holds the Prometheus collectors of the application. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	requestCounter  *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
	storeOperations *prometheus.CounterVec
	snapshotSaves   *prometheus.CounterVec
	products        prometheus.Gauge
	sales           prometheus.Gauge
	outOfStock      prometheus.Gauge
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		requestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		storeOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_operations_total",
				Help:      "Store mutations by operation and result",
			},
			[]string{"operation", "result"},
		),
		snapshotSaves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshot_saves_total",
				Help:      "Snapshot writes to the storage backend by result",
			},
			[]string{"result"},
		),
		products: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "products",
			Help:      "Number of products in the catalog",
		}),
		sales: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sales",
			Help:      "Number of recorded sales",
		}),
		outOfStock: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "out_of_stock_products",
			Help:      "Number of products with no stock left",
		}),
	}

	reg.MustRegister(
		m.requestCounter,
		m.requestLatency,
		m.storeOperations,
		m.snapshotSaves,
		m.products,
		m.sales,
		m.outOfStock,
	)

	return m
}

// ObserveRequest records one served HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestCounter.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.requestLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveStoreOperation counts a store mutation
func (m *Metrics) ObserveStoreOperation(operation string, err error) {
	if m == nil {
		return
	}
	m.storeOperations.WithLabelValues(operation, result(err)).Inc()
}

// ObserveSnapshotSave counts a snapshot write
func (m *Metrics) ObserveSnapshotSave(err error) {
	if m == nil {
		return
	}
	m.snapshotSaves.WithLabelValues(result(err)).Inc()
}

// SetInventory updates the catalog gauges from snapshot
func (m *Metrics) SetInventory(snapshot domain.Snapshot) {
	if m == nil {
		return
	}

	outOfStock := 0
	for _, p := range snapshot.Products {
		if p.OutOfStock() {
			outOfStock++
		}
	}

	m.products.Set(float64(len(snapshot.Products)))
	m.sales.Set(float64(len(snapshot.Sales)))
	m.outOfStock.Set(float64(outOfStock))
}

func result(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultOK
}
