// Package og is the order gateway: the asynchronous boundary between the
// trading thread and the venue. The stock implementation simulates a venue
// that fills every order after a short random delay, which is enough to
// exercise the full report pipeline without credentials.
package og

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"main/internal/schema"
)

var ErrGatewayClosed = errors.New("og: gateway closed")

// ExecCallback receives execution reports. It runs on gateway worker
// goroutines, never on the trading thread.
type ExecCallback func(schema.ExecutionReport)

// Config controls the simulated venue.
type Config struct {
	MinDelay time.Duration `json:"minDelay"`
	MaxDelay time.Duration `json:"maxDelay"`
}

// DefaultConfig simulates a venue that acknowledges in 5 to 50 ms.
func DefaultConfig() Config {
	return Config{MinDelay: 5 * time.Millisecond, MaxDelay: 50 * time.Millisecond}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.MinDelay <= 0 {
		c.MinDelay = d.MinDelay
	}
	if c.MaxDelay < c.MinDelay {
		c.MaxDelay = c.MinDelay
	}
	return c
}

// Gateway simulates an exchange connection. SendOrder returns immediately;
// a worker goroutine sleeps for the simulated round trip and then delivers
// a full fill through the callback.
type Gateway struct {
	cfg    Config
	cb     atomic.Pointer[ExecCallback]
	wg     sync.WaitGroup
	closed atomic.Bool
}

// NewGateway creates a simulated gateway. Zero delays fall back to defaults.
func NewGateway(cfg Config) *Gateway {
	return &Gateway{cfg: cfg.withDefaults()}
}

// SetExecCallback installs the report sink. Must be set before SendOrder;
// reports emitted without a sink are dropped with a warning.
func (g *Gateway) SetExecCallback(cb ExecCallback) {
	g.cb.Store(&cb)
}

// SendOrder hands the order to the simulated venue and returns without
// waiting. The eventual fill arrives on a worker goroutine.
func (g *Gateway) SendOrder(id int64, symbol string, side schema.Side, price schema.Price, qty schema.Quantity) error {
	if g.closed.Load() {
		return ErrGatewayClosed
	}

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()

		delay := g.cfg.MinDelay
		if span := g.cfg.MaxDelay - g.cfg.MinDelay; span > 0 {
			delay += time.Duration(rand.Int63n(int64(span) + 1))
		}
		time.Sleep(delay)

		g.emit(schema.ExecutionReport{
			OrderID:   id,
			Symbol:    symbol,
			Side:      side,
			ExecType:  schema.ExecTypeFill,
			State:     schema.OrderStateFilled,
			LastQty:   qty,
			LastPrice: price,
			LeavesQty: 0,
			CumQty:    qty,
			AvgPrice:  price,
		})
	}()
	return nil
}

// CancelOrder is accepted but has no effect: the simulated venue fills
// everything, so there is never a resting order to pull.
func (g *Gateway) CancelOrder(id int64) error {
	if g.closed.Load() {
		return ErrGatewayClosed
	}
	logs.Infof("og: cancel requested for order %d (simulated venue ignores cancels)", id)
	return nil
}

// Close stops accepting orders and waits for in-flight reports to drain,
// bounded by ctx.
func (g *Gateway) Close(ctx context.Context) error {
	g.closed.Store(true)

	done := make(chan struct{})
	go func() {
		g.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return errors.Wrap(ctx.Err(), "og: close")
	}
}

func (g *Gateway) emit(report schema.ExecutionReport) {
	if p := g.cb.Load(); p != nil && *p != nil {
		(*p)(report)
		return
	}
	logs.Warnf("og: no execution callback installed, report for order %d dropped", report.OrderID)
}
