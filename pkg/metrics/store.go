package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// StoreMetrics collects per-verb and throughput metrics for the object
// store engine.
//
// A nil *StoreMetrics is the no-op form: the engine guards every call
// site, so passing nil disables collection with zero overhead.
type StoreMetrics struct {
	operationsTotal *prometheus.CounterVec
	poolEpoch       *prometheus.GaugeVec
	bytesRead       prometheus.Counter
	bytesWritten    prometheus.Counter
}

// NewStoreMetrics creates the Prometheus-backed store instrumentation.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewStoreMetrics() *StoreMetrics {
	if !IsEnabled() {
		return nil
	}

	reg := GetRegistry()

	return &StoreMetrics{
		operationsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "radosmem_operations_total",
				Help: "Total number of store operations by verb, status, and result code",
			},
			[]string{"op", "status", "code"},
		),
		poolEpoch: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "radosmem_pool_epoch",
				Help: "Current pool-wide mutation epoch per pool",
			},
			[]string{"pool"},
		),
		bytesRead: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "radosmem_read_bytes_total",
				Help: "Total object bytes returned by read operations",
			},
		),
		bytesWritten: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Name: "radosmem_written_bytes_total",
				Help: "Total object bytes accepted by write operations",
			},
		),
	}
}

// ObserveOperation records one completed verb with its raw result code.
// Codes >= 0 count as success; negative codes count as errors, labeled
// with the code value.
func (m *StoreMetrics) ObserveOperation(op string, code int) {
	status := "success"
	if code < 0 {
		status = "error"
	}
	m.operationsTotal.WithLabelValues(op, status, strconv.Itoa(code)).Inc()
}

// SetPoolEpoch records the pool's current mutation epoch.
func (m *StoreMetrics) SetPoolEpoch(pool string, epoch uint64) {
	m.poolEpoch.WithLabelValues(pool).Set(float64(epoch))
}

// AddBytesRead accumulates payload bytes returned to readers.
func (m *StoreMetrics) AddBytesRead(n int) {
	m.bytesRead.Add(float64(n))
}

// AddBytesWritten accumulates payload bytes accepted from writers.
func (m *StoreMetrics) AddBytesWritten(n int) {
	m.bytesWritten.Add(float64(n))
}
