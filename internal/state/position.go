// Package state tracks settled per-symbol positions from execution
// reports. The risk engine holds the projected (pre-fill) position; this
// reducer holds what actually filled.
package state

import (
	"sync"

	"main/internal/schema"
)

// PositionReducer folds fills into per-symbol settled positions. Reports
// arrive on gateway worker goroutines, so access is serialized.
type PositionReducer struct {
	mu        sync.Mutex
	positions map[string]schema.Quantity
}

// NewPositionReducer creates an empty reducer.
func NewPositionReducer() *PositionReducer {
	return &PositionReducer{positions: make(map[string]schema.Quantity)}
}

// ApplyReport folds the incremental fill of one execution report and
// returns the new settled position. Non-fill reports are no-ops.
func (r *PositionReducer) ApplyReport(report schema.ExecutionReport) schema.Quantity {
	r.mu.Lock()
	defer r.mu.Unlock()

	current := r.positions[report.Symbol]
	switch report.ExecType {
	case schema.ExecTypePartialFill, schema.ExecTypeFill:
		next := current + schema.Quantity(report.Side.Signed())*report.LastQty
		r.positions[report.Symbol] = next
		return next
	default:
		return current
	}
}

// Position returns the settled position for a symbol.
func (r *PositionReducer) Position(symbol string) schema.Quantity {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.positions[symbol]
}

// Count returns the number of symbols with recorded fills.
func (r *PositionReducer) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.positions)
}

// Snapshot returns a copy of all settled positions for reporting.
func (r *PositionReducer) Snapshot() map[string]schema.Quantity {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]schema.Quantity, len(r.positions))
	for symbol, qty := range r.positions {
		out[symbol] = qty
	}
	return out
}
