// Package risk implements the pre-trade checks that sit between a strategy
// signal and the order gateway.
package risk

import (
	"math"
	"sync/atomic"
	"time"

	"main/internal/schema"
)

// Config defines the static risk limits.
type Config struct {
	MaxOrderSize      schema.Quantity `json:"maxOrderSize"`
	MaxPosition       schema.Quantity `json:"maxPosition"`
	MaxPriceDeviation float64         `json:"maxPriceDeviation"`
	MaxOrderRate      int             `json:"maxOrderRate"`
	RateWindow        time.Duration   `json:"rateWindow"`
}

// DefaultConfig returns the stock limits: 10 per order, 100 position,
// 5% band, 10 orders per second.
func DefaultConfig() Config {
	return Config{
		MaxOrderSize:      10,
		MaxPosition:       100,
		MaxPriceDeviation: 0.05,
		MaxOrderRate:      10,
		RateWindow:        time.Second,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MaxOrderSize <= 0 {
		c.MaxOrderSize = d.MaxOrderSize
	}
	if c.MaxPosition <= 0 {
		c.MaxPosition = d.MaxPosition
	}
	if c.MaxPriceDeviation <= 0 {
		c.MaxPriceDeviation = d.MaxPriceDeviation
	}
	if c.MaxOrderRate <= 0 {
		c.MaxOrderRate = d.MaxOrderRate
	}
	if c.RateWindow <= 0 {
		c.RateWindow = d.RateWindow
	}
	return c
}

// Action is the outcome of a risk decision.
type Action uint16

const (
	ActionUnknown Action = iota
	ActionAllow
	ActionDeny
)

// Decision is the result of one pre-trade check.
type Decision struct {
	Action Action
	Reason schema.RejectReason
}

// Allowed reports whether the order may be sent.
func (d Decision) Allowed() bool {
	return d.Action == ActionAllow
}

// Engine evaluates pre-trade checks and tracks the projected position.
//
// Check and UpdatePosition are called only from the strategy consumer, so
// the rate window state needs no locking. The position is kept as atomic
// float bits so any other goroutine may read it through Position.
type Engine struct {
	cfg Config

	// now must be monotonic; a stepping wall clock would poison the
	// rate window. time.Time carries a monotonic reading by default.
	now func() time.Time

	windowStart   time.Time
	ordersInWindow int

	positionBits atomic.Uint64
}

// NewEngine creates a risk engine with the given limits. Zero limits fall
// back to the defaults.
func NewEngine(cfg Config) *Engine {
	return &Engine{
		cfg: cfg.withDefaults(),
		now: time.Now,
	}
}

// Check runs the four pre-trade checks in order; the first failure wins.
// refPrice is the current market price on the order's side; pass 0 to
// disable the price band check. The rate counter advances only when the
// order is allowed.
func (e *Engine) Check(symbolID schema.SymbolID, side schema.Side, price schema.Price, qty schema.Quantity, refPrice schema.Price) Decision {
	// Fat-finger: a runaway strategy must not send an outsized order.
	if qty > e.cfg.MaxOrderSize {
		return Decision{Action: ActionDeny, Reason: schema.RejectOrderSizeExceeded}
	}

	// Projected position: what the position becomes if this order fully
	// fills. The check never mutates the tracked position.
	projected := e.Position() + schema.Quantity(side.Signed())*qty
	if projected < -e.cfg.MaxPosition || projected > e.cfg.MaxPosition {
		return Decision{Action: ActionDeny, Reason: schema.RejectProjectedPositionExceeded}
	}

	// Price band: guard against trading on bad data. Skipped when no
	// reference is available.
	if refPrice > 0 {
		deviation := math.Abs(float64(price-refPrice)) / float64(refPrice)
		if deviation > e.cfg.MaxPriceDeviation {
			return Decision{Action: ActionDeny, Reason: schema.RejectPriceBandExceeded}
		}
	}

	// Rate limit: fixed window, reset once the window has fully elapsed.
	now := e.now()
	if e.windowStart.IsZero() || now.Sub(e.windowStart) >= e.cfg.RateWindow {
		e.windowStart = now
		e.ordersInWindow = 0
	}
	if e.ordersInWindow >= e.cfg.MaxOrderRate {
		return Decision{Action: ActionDeny, Reason: schema.RejectRateLimitExceeded}
	}
	e.ordersInWindow++

	return Decision{Action: ActionAllow, Reason: schema.RejectNone}
}

// UpdatePosition applies an authorized send to the projected position.
// This is the only position mutator; it runs before the fill confirms, the
// conservative choice for exposure tracking.
func (e *Engine) UpdatePosition(side schema.Side, qty schema.Quantity) {
	next := e.Position() + schema.Quantity(side.Signed())*qty
	e.positionBits.Store(math.Float64bits(float64(next)))
}

// Position returns the current projected position.
func (e *Engine) Position() schema.Quantity {
	return schema.Quantity(math.Float64frombits(e.positionBits.Load()))
}
