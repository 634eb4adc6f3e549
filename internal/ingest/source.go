// Package ingest produces book-ticker events at the network boundary. A
// Source invokes one callback per ticker on its own producer goroutine; the
// callback is expected to enqueue and return immediately.
package ingest

import (
	"context"

	"main/internal/schema"
)

// TickerCallback receives one top-of-book update. It runs on the source's
// producer goroutine and must not block.
type TickerCallback func(schema.BookTicker)

// Source is a live or replayed market-data feed.
type Source interface {
	// SetCallback installs the ticker sink. Must be called before Run.
	SetCallback(cb TickerCallback)
	// Run blocks, delivering tickers until the feed ends or ctx is done.
	Run(ctx context.Context) error
}
