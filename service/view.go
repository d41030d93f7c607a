package service

import "ordercore/domain/orderbook"

// View is a copy of an order's state, safe to hand out past the
// service lock.
type View struct {
	ID            uint64
	ClientID      uint64
	ClientOrderID string
	Security      string
	Side          orderbook.Side
	Type          orderbook.OrderType
	TimeInForce   orderbook.TimeInForce
	Price         int64

	OriginalSize int64
	TotalSize    int64
	ExecutedSize int64
	OpenSize     int64
	CanceledSize int64

	AcceptTime  int64
	RestTime    int64
	CancelTime  int64
	RejectTime  int64
	ReduceTime  int64
	ExecuteTime int64

	Resting       bool
	Terminated    bool
	PendingCancel bool
	PendingSize   int64
	Rejected      bool
	RejectReason  orderbook.RejectReason

	// Debug is the order's debug rendering.
	Debug string
}

func viewOf(o *orderbook.Order) View {
	reason, rejected := o.RejectReason()
	return View{
		ID:            o.ID(),
		ClientID:      o.ClientID(),
		ClientOrderID: o.ClientOrderID().String(),
		Security:      o.Security(),
		Side:          o.Side(),
		Type:          o.Type(),
		TimeInForce:   o.TimeInForce(),
		Price:         o.Price(),
		OriginalSize:  o.OriginalSize(),
		TotalSize:     o.TotalSize(),
		ExecutedSize:  o.ExecutedSize(),
		OpenSize:      o.OpenSize(),
		CanceledSize:  o.CanceledSize(),
		AcceptTime:    o.AcceptTime(),
		RestTime:      o.RestTime(),
		CancelTime:    o.CancelTime(),
		RejectTime:    o.RejectTime(),
		ReduceTime:    o.ReduceTime(),
		ExecuteTime:   o.ExecuteTime(),
		Resting:       o.IsResting(),
		Terminated:    o.IsTerminated(),
		PendingCancel: o.IsPendingCancel(),
		PendingSize:   o.PendingSize(),
		Rejected:      rejected,
		RejectReason:  reason,
		Debug:         o.String(),
	}
}
