// Package event defines the order events published to downstream
// consumers. One Event is produced per listener callback.
package event

import "ordercore/domain/orderbook"

type Type uint8

const (
	TypeReduced Type = iota + 1
	TypeCanceled
	TypeExecuted
	TypeTerminated
)

func (t Type) String() string {
	switch t {
	case TypeReduced:
		return "REDUCED"
	case TypeCanceled:
		return "CANCELED"
	case TypeExecuted:
		return "EXECUTED"
	case TypeTerminated:
		return "TERMINATED"
	default:
		return "UNKNOWN"
	}
}

// Event is a flat record of one order state change. Fields that do not
// apply to Type are zero.
type Event struct {
	Seq      uint64
	Type     Type
	Time     int64
	OrderID  uint64
	ClientID uint64
	Security string
	Side     orderbook.Side

	// Reduced: new total size. Executed: executed size.
	Size         int64
	Price        int64
	CancelReason orderbook.CancelReason
	ExecuteSide  orderbook.ExecuteSide
	ExecutionID  int64
	MatchID      int64

	TotalSize    int64
	ExecutedSize int64
}

// From fills the order-derived fields of e from o.
func (e *Event) From(t Type, time int64, o *orderbook.Order) {
	*e = Event{
		Type:         t,
		Time:         time,
		OrderID:      o.ID(),
		ClientID:     o.ClientID(),
		Security:     o.Security(),
		Side:         o.Side(),
		TotalSize:    o.TotalSize(),
		ExecutedSize: o.ExecutedSize(),
	}
}
