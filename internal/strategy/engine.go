// Package strategy is the single-threaded consumer at the heart of the
// pipeline: it drains the ticker ring, maintains top-of-book state and turns
// price signals into risk-checked orders.
package strategy

import (
	"runtime"
	"sync/atomic"

	"github.com/yanun0323/logs"

	"main/internal/book"
	"main/internal/bus"
	"main/internal/obs"
	"main/internal/om"
	"main/internal/risk"
	"main/internal/schema"
)

const (
	symbolBTCUSDT = "btcusdt"
	symbolETHBTC  = "ethbtc"
	symbolETHUSDT = "ethusdt"

	// Triangular arbitrage: simulate converting 100 USDT around the
	// BTC/ETH triangle and fire leg one when the round trip nets more
	// than 0.3 USDT.
	arbBasisUSDT = 100.0
	arbMinProfit = 0.3
	arbOrderQty  = schema.Quantity(0.001)

	// Order book imbalance on btcusdt only.
	obiThreshold = 0.8
	obiOrderQty  = schema.Quantity(0.01)
)

// OrderGateway is the slice of the gateway the strategy needs.
type OrderGateway interface {
	SendOrder(id int64, symbol string, side schema.Side, price schema.Price, qty schema.Quantity) error
}

// Engine owns the per-symbol books and the trading loop. Everything here
// runs on the consumer goroutine; only Stop may be called from elsewhere.
type Engine struct {
	registry *schema.SymbolRegistry
	gateway  OrderGateway
	orders   *om.Manager
	risk     *risk.Engine
	metrics  *obs.Metrics
	latency  *obs.Histogram

	books map[schema.SymbolID]*book.Book

	btcUsdtID schema.SymbolID
	ethBtcID  schema.SymbolID
	ethUsdtID schema.SymbolID

	stop atomic.Bool
}

// New builds a strategy engine trading the given symbols. The three
// arbitrage legs always get books so the triangle check never has to probe
// the map.
func New(registry *schema.SymbolRegistry, gateway OrderGateway, orders *om.Manager, riskEngine *risk.Engine, metrics *obs.Metrics, latency *obs.Histogram, symbols []string) *Engine {
	e := &Engine{
		registry: registry,
		gateway:  gateway,
		orders:   orders,
		risk:     riskEngine,
		metrics:  metrics,
		latency:  latency,
		books:    make(map[schema.SymbolID]*book.Book),
	}
	for _, s := range symbols {
		e.books[registry.GetID(s)] = book.New()
	}
	for _, s := range []string{symbolBTCUSDT, symbolETHBTC, symbolETHUSDT} {
		id := registry.GetID(s)
		if _, ok := e.books[id]; !ok {
			e.books[id] = book.New()
		}
	}
	e.btcUsdtID = registry.GetID(symbolBTCUSDT)
	e.ethBtcID = registry.GetID(symbolETHBTC)
	e.ethUsdtID = registry.GetID(symbolETHUSDT)
	return e
}

// Run drains the ring until Stop is called. Pin this goroutine to an OS
// thread before calling when latency matters.
func (e *Engine) Run(ring *bus.Ring[schema.BookTicker]) {
	var t schema.BookTicker
	for !e.stop.Load() {
		if !ring.Pop(&t) {
			runtime.Gosched()
			continue
		}
		e.metrics.IncTick()
		e.onTick(&t)
	}
}

// Stop asks the loop to exit after the current tick. Safe from any
// goroutine.
func (e *Engine) Stop() {
	e.stop.Store(true)
}

func (e *Engine) onTick(t *schema.BookTicker) {
	e.latency.Start()

	id := e.registry.GetID(t.Symbol)
	b, ok := e.books[id]
	if !ok {
		e.metrics.IncUnknownSymbol()
		e.latency.Stop()
		return
	}
	b.ApplyTicker(*t)

	e.checkArbitrage()
	if id == e.btcUsdtID {
		e.checkImbalance(b)
	}

	e.latency.Stop()
}

// checkArbitrage walks 100 USDT around USDT -> BTC -> ETH -> USDT at the
// current top of book and buys the first leg when the loop is profitable.
func (e *Engine) checkArbitrage() {
	btcUsdtAsk := e.books[e.btcUsdtID].BestAsk()
	ethBtcAsk := e.books[e.ethBtcID].BestAsk()
	ethUsdtBid := e.books[e.ethUsdtID].BestBid()
	if btcUsdtAsk <= 0 || ethBtcAsk <= 0 || ethUsdtBid <= 0 {
		return
	}

	endUSDT := arbBasisUSDT / float64(btcUsdtAsk) / float64(ethBtcAsk) * float64(ethUsdtBid)
	profit := endUSDT - arbBasisUSDT
	if profit <= arbMinProfit {
		return
	}

	logs.Infof("strategy: arbitrage %.4f USDT profit, buying %v btcusdt @ %v", profit, arbOrderQty, btcUsdtAsk)
	e.sendOrder(e.btcUsdtID, schema.SideBuy, btcUsdtAsk, arbOrderQty)
}

// checkImbalance fires a marketable buy when resting bids dwarf asks.
func (e *Engine) checkImbalance(b *book.Book) {
	bidQty, askQty := b.BestBidQty(), b.BestAskQty()
	total := float64(bidQty + askQty)
	if total <= 0 {
		return
	}

	imbalance := float64(bidQty-askQty) / total
	if imbalance <= obiThreshold {
		return
	}

	logs.Infof("strategy: imbalance %.3f, buying %v btcusdt @ %v", imbalance, obiOrderQty, b.BestAsk())
	e.sendOrder(e.btcUsdtID, schema.SideBuy, b.BestAsk(), obiOrderQty)
}

// sendOrder is the one emission path: risk check, create, send, then book
// the projected position. The reference price is the order's own limit
// price, the best level on the crossed side.
func (e *Engine) sendOrder(symbolID schema.SymbolID, side schema.Side, price schema.Price, qty schema.Quantity) {
	d := e.risk.Check(symbolID, side, price, qty, price)
	if !d.Allowed() {
		e.metrics.IncReject(d.Reason)
		logs.Warnf("strategy: %s %v %s @ %v denied: %s", side, qty, e.registry.GetSymbol(symbolID), price, d.Reason)
		return
	}

	id, err := e.orders.Create(symbolID, side, price, qty)
	if err != nil {
		e.metrics.IncPoolExhausted()
		logs.Errorf("strategy: create order failed: %+v", err)
		return
	}

	if err := e.gateway.SendOrder(id, e.registry.GetSymbol(symbolID), side, price, qty); err != nil {
		logs.Errorf("strategy: send order %d failed: %+v", id, err)
		return
	}

	e.metrics.IncOrderCreated()
	e.risk.UpdatePosition(side, qty)
}
