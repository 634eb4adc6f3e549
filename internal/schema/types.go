package schema

// Price is a quoted price level. The venue quotes decimal strings on the
// wire; internally everything runs on float64, which covers the precision
// of the feeds this engine trades.
type Price float64

// Quantity is a base-asset quantity.
type Quantity float64

// Side describes order direction.
type Side uint16

const (
	SideUnknown Side = iota
	SideBuy
	SideSell
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Signed returns +1 for buys and -1 for sells.
func (s Side) Signed() float64 {
	switch s {
	case SideBuy:
		return 1
	case SideSell:
		return -1
	default:
		return 0
	}
}

// OrderType describes order type.
type OrderType uint16

const (
	OrderTypeUnknown OrderType = iota
	OrderTypeLimit
	OrderTypeMarket
	OrderTypeIOC
	OrderTypeFOK
)

// OrderState tracks the lifecycle of an order.
type OrderState uint16

const (
	OrderStateUnknown OrderState = iota
	OrderStatePendingNew
	OrderStateNew
	OrderStateFilled
	OrderStateCanceled
	OrderStateRejected
)

func (s OrderState) String() string {
	switch s {
	case OrderStatePendingNew:
		return "PENDING_NEW"
	case OrderStateNew:
		return "NEW"
	case OrderStateFilled:
		return "FILLED"
	case OrderStateCanceled:
		return "CANCELED"
	case OrderStateRejected:
		return "REJECTED"
	default:
		return "UNKNOWN"
	}
}

// Terminal reports whether the state admits no further transitions.
func (s OrderState) Terminal() bool {
	switch s {
	case OrderStateFilled, OrderStateCanceled, OrderStateRejected:
		return true
	default:
		return false
	}
}

// ExecType is the FIX-style execution report category.
type ExecType uint16

const (
	ExecTypeUnknown ExecType = iota
	ExecTypeNew
	ExecTypePartialFill
	ExecTypeFill
	ExecTypeCanceled
	ExecTypeRejected
	ExecTypePendingCancel
	ExecTypePendingNew
)

// RejectReason is the closed set of pre-trade risk rejection reasons.
type RejectReason uint16

const (
	RejectNone RejectReason = iota
	RejectOrderSizeExceeded
	RejectProjectedPositionExceeded
	RejectPriceBandExceeded
	RejectRateLimitExceeded
)

func (r RejectReason) String() string {
	switch r {
	case RejectNone:
		return "NONE"
	case RejectOrderSizeExceeded:
		return "ORDER_SIZE_EXCEEDED"
	case RejectProjectedPositionExceeded:
		return "PROJECTED_POSITION_EXCEEDED"
	case RejectPriceBandExceeded:
		return "PRICE_BAND_EXCEEDED"
	case RejectRateLimitExceeded:
		return "RATE_LIMIT_EXCEEDED"
	default:
		return "UNKNOWN"
	}
}

// BookTicker is one top-of-book snapshot as delivered by the feed.
// It travels by value through the SPSC ring: created on the producer,
// consumed exactly once on the strategy thread, then discarded.
type BookTicker struct {
	Symbol   string
	BidPrice Price
	BidQty   Quantity
	AskPrice Price
	AskQty   Quantity
	UpdateID int64
}

// ExecutionReport is the asynchronous order lifecycle event emitted by the
// gateway. CumQty is monotonically non-decreasing per order.
type ExecutionReport struct {
	OrderID   int64
	Symbol    string
	Side      Side
	ExecType  ExecType
	State     OrderState
	LastQty   Quantity
	LastPrice Price
	LeavesQty Quantity
	CumQty    Quantity
	AvgPrice  Price
	Text      string
}
