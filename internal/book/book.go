// Package book holds per-symbol top-of-book state. Only the strategy
// consumer touches a Book, so there is no locking here.
package book

import "main/internal/schema"

// Book is the current top of book for one symbol. No depth is retained.
// A freshly updated book may momentarily show crossed prices when the feed
// delivers stale snapshots; callers must tolerate that.
type Book struct {
	bidPrice schema.Price
	bidQty   schema.Quantity
	askPrice schema.Price
	askQty   schema.Quantity
}

// New creates an empty book. Both sides report zero until updated.
func New() *Book {
	return &Book{}
}

// Update replaces all four top-of-book values.
func (b *Book) Update(bidPrice schema.Price, bidQty schema.Quantity, askPrice schema.Price, askQty schema.Quantity) {
	b.bidPrice = bidPrice
	b.bidQty = bidQty
	b.askPrice = askPrice
	b.askQty = askQty
}

// ApplyTicker updates the book from a feed snapshot.
func (b *Book) ApplyTicker(t schema.BookTicker) {
	b.Update(t.BidPrice, t.BidQty, t.AskPrice, t.AskQty)
}

func (b *Book) BestBid() schema.Price     { return b.bidPrice }
func (b *Book) BestAsk() schema.Price     { return b.askPrice }
func (b *Book) BestBidQty() schema.Quantity { return b.bidQty }
func (b *Book) BestAskQty() schema.Quantity { return b.askQty }

// Mid returns the mid price, or 0 while either side is absent.
func (b *Book) Mid() schema.Price {
	if b.bidPrice == 0 || b.askPrice == 0 {
		return 0
	}
	return (b.bidPrice + b.askPrice) / 2
}
