// Package om is the order manager: it owns the live-order index and the
// storage pool, and applies execution reports to order state.
package om

import (
	"sync"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"main/internal/pool"
	"main/internal/schema"
)

var (
	ErrPoolExhausted = errors.New("om: order pool exhausted")
	ErrUnknownOrder  = errors.New("om: order not found")
	ErrNotTerminal   = errors.New("om: order not in a terminal state")
)

// DefaultPoolSize pre-allocates enough orders for a busy trading day.
const DefaultPoolSize = 100_000

// Order is a tracked trade intent. Storage belongs to the manager's pool;
// callers only ever see value copies.
type Order struct {
	ID       int64
	SymbolID schema.SymbolID
	Side     schema.Side
	Price    schema.Price
	Quantity schema.Quantity
	Filled   schema.Quantity
	State    schema.OrderState
}

// Manager tracks every live order. All operations serialize on one mutex;
// the critical sections are short, so contention between the strategy
// consumer and gateway workers stays cheap.
type Manager struct {
	mu     sync.Mutex
	orders map[int64]*Order
	pool   *pool.Pool[Order]
	nextID int64
}

// NewManager creates a manager backed by a pool of poolSize orders.
// poolSize <= 0 uses DefaultPoolSize.
func NewManager(poolSize int) *Manager {
	if poolSize <= 0 {
		poolSize = DefaultPoolSize
	}
	return &Manager{
		orders: make(map[int64]*Order),
		pool:   pool.New[Order](poolSize),
		nextID: 1,
	}
}

// Create reserves the next order id, acquires pool storage and indexes the
// order in PendingNew. Returns ErrPoolExhausted when no slot is free.
func (m *Manager) Create(symbolID schema.SymbolID, side schema.Side, price schema.Price, qty schema.Quantity) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.pool.Acquire()
	if !ok {
		return 0, ErrPoolExhausted
	}

	id := m.nextID
	m.nextID++

	o.ID = id
	o.SymbolID = symbolID
	o.Side = side
	o.Price = price
	o.Quantity = qty
	o.Filled = 0
	o.State = schema.OrderStatePendingNew
	m.orders[id] = o
	return id, nil
}

// Get returns a snapshot copy of the order. The copy stays valid after the
// lock is released, so no caller ever aliases pool storage.
func (m *Manager) Get(id int64) (Order, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return Order{}, false
	}
	return *o, true
}

// Apply transitions an order from an execution report. Reports for unknown
// ids are logged and dropped; reports against terminal orders are ignored.
// Safe to call from any goroutine.
func (m *Manager) Apply(report schema.ExecutionReport) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[report.OrderID]
	if !ok {
		logs.Warnf("om: execution report for unknown order %d dropped", report.OrderID)
		return ErrUnknownOrder
	}
	if o.State.Terminal() {
		return nil
	}

	switch report.ExecType {
	case schema.ExecTypeNew:
		o.State = schema.OrderStateNew
	case schema.ExecTypePartialFill:
		o.Filled = report.CumQty
		if report.State != schema.OrderStateUnknown {
			o.State = report.State
		} else {
			o.State = schema.OrderStateNew
		}
	case schema.ExecTypeFill:
		o.Filled = report.CumQty
		o.State = schema.OrderStateFilled
		logs.Infof("om: order %d filled %v @ %v", o.ID, report.CumQty, report.AvgPrice)
	case schema.ExecTypeCanceled:
		o.State = schema.OrderStateCanceled
	case schema.ExecTypeRejected:
		o.State = schema.OrderStateRejected
		logs.Warnf("om: order %d rejected: %s", o.ID, report.Text)
	default:
		// PendingNew/PendingCancel and anything unrecognized carry no
		// state change for this book-keeping model.
	}
	return nil
}

// OnFill is the legacy manual fill path: it accumulates quantity and
// promotes the order to Filled once fully executed.
func (m *Manager) OnFill(id int64, qty schema.Quantity, price schema.Price) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return ErrUnknownOrder
	}
	o.Filled += qty
	if o.Filled >= o.Quantity {
		o.State = schema.OrderStateFilled
	}
	return nil
}

// Purge drops a terminal order from the index and returns its storage to
// the pool. Terminal orders are otherwise retained for end-of-day review.
func (m *Manager) Purge(id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[id]
	if !ok {
		return ErrUnknownOrder
	}
	if !o.State.Terminal() {
		return ErrNotTerminal
	}
	delete(m.orders, id)
	m.pool.Release(o)
	return nil
}

// Count returns the number of tracked orders, terminal included.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}
