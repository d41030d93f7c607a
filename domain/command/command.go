// Package command defines the inputs the engine journals before
// applying them. Replaying the same commands in order rebuilds the
// same book.
package command

import "ordercore/domain/orderbook"

type Type uint8

const (
	TypePlace Type = iota + 1
	TypeCancel
	TypeReduce
	TypeExecute
	TypePurge
)

func (t Type) String() string {
	switch t {
	case TypePlace:
		return "PLACE"
	case TypeCancel:
		return "CANCEL"
	case TypeReduce:
		return "REDUCE"
	case TypeExecute:
		return "EXECUTE"
	case TypePurge:
		return "PURGE"
	default:
		return "UNKNOWN"
	}
}

// Place accepts a new order.
type Place struct {
	Time          int64
	OrderID       uint64
	ClientID      uint64
	ClientOrderID string
	Security      string
	Side          orderbook.Side
	Type          orderbook.OrderType
	TimeInForce   orderbook.TimeInForce
	Price         int64
	Size          int64
}

// Cancel removes Size from an order's open size, or everything when
// Size is not positive.
type Cancel struct {
	Time    int64
	OrderID uint64
	Size    int64
	Reason  orderbook.CancelReason
}

// Reduce shrinks an order's total size.
type Reduce struct {
	Time         int64
	OrderID      uint64
	NewTotalSize int64
}

// Execute records a fill decided by the matcher.
type Execute struct {
	Time        int64
	OrderID     uint64
	Side        orderbook.ExecuteSide
	Size        int64
	Price       int64
	ExecutionID int64
	MatchID     int64
}

// Purge cancels every resting order of Security.
type Purge struct {
	Time     int64
	Security string
}
