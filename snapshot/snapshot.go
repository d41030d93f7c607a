// Package snapshot persists the resting orders of every book together
// with the sequence positions they correspond to. Recovery loads the
// latest snapshot and replays the entry WAL from Seqs.WAL onward.
package snapshot

import (
	"time"

	"ordercore/domain/orderbook"
)

const FileName = "snapshot.bin"

// Seqs are the sequencer positions at the time of capture.
type Seqs struct {
	WAL       uint64
	Event     uint64
	Order     uint64
	Execution uint64
	Match     uint64
}

type Snapshot struct {
	Seqs    Seqs
	Created time.Time
	Orders  []OrderEntry

	// Terminated holds the recently terminated order ids, oldest first,
	// so ids already used stay rejected after recovery.
	Terminated []uint64
}

// OrderEntry is the persisted form of one resting order.
type OrderEntry struct {
	ID            uint64
	ClientID      uint64
	ClientOrderID string
	Security      string
	Side          orderbook.Side
	Type          orderbook.OrderType
	TimeInForce   orderbook.TimeInForce
	Price         int64

	// ClientOrderIDSet separates an unset id from an empty one.
	ClientOrderIDSet bool

	OriginalSize int64
	TotalSize    int64
	ExecutedSize int64

	AcceptTime  int64
	RestTime    int64
	ReduceTime  int64
	ExecuteTime int64
}

func entryOf(o *orderbook.Order) OrderEntry {
	e := OrderEntry{
		ID:            o.ID(),
		ClientID:      o.ClientID(),
		Security:      o.Security(),
		Side:          o.Side(),
		Type:          o.Type(),
		TimeInForce:   o.TimeInForce(),
		Price:         o.Price(),
		OriginalSize:  o.OriginalSize(),
		TotalSize:     o.TotalSize(),
		ExecutedSize:  o.ExecutedSize(),
		AcceptTime:    o.AcceptTime(),
		RestTime:      o.RestTime(),
		ReduceTime:    o.ReduceTime(),
		ExecuteTime:   o.ExecuteTime(),
	}
	if id := o.ClientOrderID(); id.IsSet() {
		e.ClientOrderID = id.String()
		e.ClientOrderIDSet = true
	}
	return e
}

// Apply rebuilds o from e. o must be fresh and have no listeners, so
// the reduce and execute steps that restore its sizes emit nothing.
func (e *OrderEntry) Apply(o *orderbook.Order) {
	o.Init(e.ID, e.ClientID, e.ClientOrderID, e.Security, e.Side, e.Type, e.TimeInForce, e.Price, e.OriginalSize)
	if !e.ClientOrderIDSet {
		o.ClientOrderID().Reset()
	}
	o.Accept(e.AcceptTime)
	if e.TotalSize < e.OriginalSize {
		o.ReduceTo(e.ReduceTime, e.TotalSize)
	}
	if e.ExecutedSize > 0 {
		o.ExecuteTrade(e.ExecuteTime, orderbook.ExecuteSideMaker, e.ExecutedSize, e.Price, orderbook.NoID, orderbook.NoID)
	}
}

// Capture collects every resting order of books, bids then asks, each
// side best price first and FIFO within a level.
func Capture(seqs Seqs, created time.Time, books ...*orderbook.Book) *Snapshot {
	s := &Snapshot{Seqs: seqs, Created: created}
	collect := func(lvl *orderbook.PriceLevel) bool {
		for o := lvl.Head(); o != nil; o = o.Next() {
			s.Orders = append(s.Orders, entryOf(o))
		}
		return true
	}
	for _, b := range books {
		b.WalkBids(collect)
		b.WalkAsks(collect)
	}
	return s
}
