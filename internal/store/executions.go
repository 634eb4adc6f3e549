package store

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"gorm.io/gorm"

	"main/internal/schema"
)

var (
	ErrQueueFull = errors.New("store: execution queue full")
	ErrClosed    = errors.New("store: execution log closed")
)

const defaultQueueSize = 1024

// ExecutionRecord is the persisted form of one execution report.
type ExecutionRecord struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	OrderID   int64  `gorm:"index"`
	Symbol    string `gorm:"index;size:32"`
	Side      string `gorm:"size:8"`
	ExecType  uint16
	State     string `gorm:"size:16"`
	LastQty   float64
	LastPrice float64
	CumQty    float64
	AvgPrice  float64
	Text      string
	CreatedAt time.Time
}

// TableName keeps the table name stable regardless of gorm pluralization.
func (ExecutionRecord) TableName() string {
	return "execution_reports"
}

// ExecutionLog buffers execution reports and writes them to PostgreSQL on
// a background goroutine. TryAppend never blocks.
type ExecutionLog struct {
	db *gorm.DB
	ch chan ExecutionRecord
	wg sync.WaitGroup

	closed atomic.Bool
	err    atomic.Value
}

// OpenExecutionLog connects, migrates the table and starts the writer
// goroutine. queueSize <= 0 uses the default.
func OpenExecutionLog(opt PGOption, queueSize int) (*ExecutionLog, error) {
	db, err := open(opt)
	if err != nil {
		return nil, errors.Wrap(err, "open postgres")
	}
	if err := db.AutoMigrate(&ExecutionRecord{}); err != nil {
		return nil, errors.Wrap(err, "migrate execution_reports")
	}

	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	l := &ExecutionLog{
		db: db,
		ch: make(chan ExecutionRecord, queueSize),
	}
	l.wg.Add(1)
	go l.run()
	return l, nil
}

// TryAppend enqueues a report without blocking. A full queue drops the
// record and returns ErrQueueFull; losing an audit row beats stalling a
// gateway worker.
func (l *ExecutionLog) TryAppend(report schema.ExecutionReport) error {
	if l == nil {
		return nil
	}
	if l.closed.Load() {
		return ErrClosed
	}

	select {
	case l.ch <- newExecutionRecord(report):
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops the writer and flushes everything still queued.
func (l *ExecutionLog) Close() error {
	if l == nil {
		return nil
	}
	if l.closed.CompareAndSwap(false, true) {
		close(l.ch)
	}
	l.wg.Wait()

	if v := l.err.Load(); v != nil {
		return v.(error)
	}
	sqlDB, err := l.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (l *ExecutionLog) run() {
	defer l.wg.Done()
	for rec := range l.ch {
		if err := l.db.Create(&rec).Error; err != nil {
			logs.Errorf("store: insert execution report: %+v", err)
			l.err.CompareAndSwap(nil, error(errors.Wrap(err, "insert execution report")))
		}
	}
}

func newExecutionRecord(report schema.ExecutionReport) ExecutionRecord {
	return ExecutionRecord{
		OrderID:   report.OrderID,
		Symbol:    report.Symbol,
		Side:      report.Side.String(),
		ExecType:  uint16(report.ExecType),
		State:     report.State.String(),
		LastQty:   float64(report.LastQty),
		LastPrice: float64(report.LastPrice),
		CumQty:    float64(report.CumQty),
		AvgPrice:  float64(report.AvgPrice),
		Text:      report.Text,
		CreatedAt: time.Now().UTC(),
	}
}
