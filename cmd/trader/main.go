package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"

	"main/internal/bus"
	"main/internal/ingest"
	"main/internal/obs"
	"main/internal/og"
	"main/internal/om"
	"main/internal/ops"
	"main/internal/risk"
	"main/internal/schema"
	"main/internal/state"
	"main/internal/store"
	"main/internal/strategy"
)

func main() {
	configPath := flag.String("config", "", "path to JSON config (empty = defaults)")
	replayPath := flag.String("replay", "", "CSV file to replay instead of the live feed")
	flag.Parse()

	if err := run(*configPath, *replayPath); err != nil {
		logs.Errorf("trader: %+v", err)
		os.Exit(1)
	}
}

func run(configPath, replayPath string) error {
	cfg, err := ops.Load(configPath)
	if err != nil {
		return err
	}

	stopProfiler, err := ops.StartProfiler(cfg.Pyroscope)
	if err != nil {
		return err
	}
	defer stopProfiler()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := obs.NewMetrics()
	latency := obs.NewHistogram("tick_to_trade")
	registry := schema.NewSymbolRegistry()

	ring, err := bus.NewRing[schema.BookTicker](cfg.RingCapacity)
	if err != nil {
		return err
	}

	orders := om.NewManager(cfg.OrderPoolSize)
	riskEngine := risk.NewEngine(cfg.Risk)
	gateway := og.NewGateway(cfg.Gateway)
	positions := state.NewPositionReducer()

	var execLog *store.ExecutionLog
	if cfg.Postgres.Enabled() {
		execLog, err = store.OpenExecutionLog(cfg.Postgres, 0)
		if err != nil {
			return err
		}
		logs.Infof("trader: persisting execution reports to postgres")
	}

	// Reports arrive on gateway worker goroutines; everything touched here
	// is internally synchronized.
	gateway.SetExecCallback(func(report schema.ExecutionReport) {
		metrics.IncExecReport()
		if err := orders.Apply(report); err != nil {
			metrics.IncUnknownOrder()
			return
		}
		positions.ApplyReport(report)
		if err := execLog.TryAppend(report); err != nil {
			logs.Warnf("trader: execution log append: %+v", err)
		}
	})

	engine := strategy.New(registry, gateway, orders, riskEngine, metrics, latency, cfg.Symbols)

	consumerDone := make(chan struct{})
	go func() {
		defer close(consumerDone)
		// The trading loop spins on one OS thread.
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		engine.Run(ring)
	}()

	var source ingest.Source
	if replayPath != "" {
		logs.Infof("trader: replaying %s", replayPath)
		source = ingest.NewReplaySource(replayPath)
	} else {
		logs.Infof("trader: streaming %v", cfg.Symbols)
		source = ingest.NewBinanceSource(ctx, cfg.Symbols)
	}
	source.SetCallback(func(t schema.BookTicker) {
		if !ring.Push(t) {
			metrics.IncQueueDrop()
		}
	})

	sourceErr := make(chan error, 1)
	go func() { sourceErr <- source.Run(ctx) }()

	select {
	case <-sys.Shutdown():
		logs.Info("trader: shutdown signal received")
	case err := <-sourceErr:
		if err != nil {
			logs.Errorf("trader: market data source: %+v", err)
		} else {
			logs.Info("trader: market data source finished")
		}
	}
	cancel()

	waitDrain(ring, 2*time.Second)
	engine.Stop()
	<-consumerDone

	closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer closeCancel()
	if err := gateway.Close(closeCtx); err != nil {
		logs.Warnf("trader: gateway close: %+v", err)
	}

	if execLog != nil {
		if err := execLog.Close(); err != nil {
			logs.Warnf("trader: execution log close: %+v", err)
		}
	}

	report(metrics, latency, riskEngine, positions)
	return nil
}

// waitDrain gives the consumer a bounded window to finish queued tickers
// before the loop is stopped.
func waitDrain(ring *bus.Ring[schema.BookTicker], timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for !ring.Empty() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
}

func report(metrics *obs.Metrics, latency *obs.Histogram, riskEngine *risk.Engine, positions *state.PositionReducer) {
	latency.Report()

	m := metrics.Snapshot()
	logs.Infof("trader: ticks=%d drops=%d unknown_symbols=%d orders=%d rejects=%v pool_exhausted=%d reports=%d unknown_orders=%d",
		m.Ticks, m.QueueDrops, m.UnknownSymbols, m.OrdersCreated, m.RejectCounts,
		m.PoolExhausted, m.ExecReports, m.UnknownOrders)

	logs.Infof("trader: projected position=%v", riskEngine.Position())
	for symbol, qty := range positions.Snapshot() {
		logs.Infof("trader: settled position %s=%v", symbol, qty)
	}
}
