package obs

import (
	"sync/atomic"

	"main/internal/schema"
)

const maxRejectReason = int(schema.RejectRateLimitExceeded)

// Metrics collects lightweight counters from both sides of the pipeline.
// Everything is atomic so the producer, consumer and gateway workers can
// bump counters without coordination.
type Metrics struct {
	ticks          uint64
	queueDrops     uint64
	unknownSymbols uint64
	ordersCreated  uint64
	poolExhausted  uint64
	execReports    uint64
	unknownOrders  uint64

	rejectCounts [maxRejectReason + 1]uint64
}

// Snapshot is a copy of the current counter values.
type Snapshot struct {
	Ticks          uint64
	QueueDrops     uint64
	UnknownSymbols uint64
	OrdersCreated  uint64
	PoolExhausted  uint64
	ExecReports    uint64
	UnknownOrders  uint64
	RejectCounts   map[schema.RejectReason]uint64
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// IncTick counts one consumed book ticker.
func (m *Metrics) IncTick() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.ticks, 1)
}

// IncQueueDrop counts one ticker dropped on ring overflow.
func (m *Metrics) IncQueueDrop() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.queueDrops, 1)
}

// IncUnknownSymbol counts a ticker for a symbol without a book.
func (m *Metrics) IncUnknownSymbol() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.unknownSymbols, 1)
}

// IncOrderCreated counts a successful order manager create.
func (m *Metrics) IncOrderCreated() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.ordersCreated, 1)
}

// IncPoolExhausted counts an aborted send due to pool exhaustion.
func (m *Metrics) IncPoolExhausted() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.poolExhausted, 1)
}

// IncExecReport counts one applied execution report.
func (m *Metrics) IncExecReport() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.execReports, 1)
}

// IncUnknownOrder counts an execution report for an unknown order id.
func (m *Metrics) IncUnknownOrder() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.unknownOrders, 1)
}

// IncReject counts a risk rejection by reason.
func (m *Metrics) IncReject(reason schema.RejectReason) {
	if m == nil {
		return
	}
	idx := int(reason)
	if idx >= 0 && idx < len(m.rejectCounts) {
		atomic.AddUint64(&m.rejectCounts[idx], 1)
	}
}

// Snapshot returns a copy of the current counter values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	rejects := make(map[schema.RejectReason]uint64)
	for i := range m.rejectCounts {
		if v := atomic.LoadUint64(&m.rejectCounts[i]); v > 0 {
			rejects[schema.RejectReason(i)] = v
		}
	}
	return Snapshot{
		Ticks:          atomic.LoadUint64(&m.ticks),
		QueueDrops:     atomic.LoadUint64(&m.queueDrops),
		UnknownSymbols: atomic.LoadUint64(&m.unknownSymbols),
		OrdersCreated:  atomic.LoadUint64(&m.ordersCreated),
		PoolExhausted:  atomic.LoadUint64(&m.poolExhausted),
		ExecReports:    atomic.LoadUint64(&m.execReports),
		UnknownOrders:  atomic.LoadUint64(&m.unknownOrders),
		RejectCounts:   rejects,
	}
}
