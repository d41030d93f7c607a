package service

import "ordercore/domain/orderbook"

const recentCapacity = 1 << 16

// liveIndex maps ids to live orders across all books and remembers the
// most recently terminated ids.
type liveIndex struct {
	orderbook.NopListener

	live   map[uint64]*orderbook.Order
	recent map[uint64]struct{}
	ring   []uint64
	next   int
}

func newLiveIndex() *liveIndex {
	return &liveIndex{
		live:   make(map[uint64]*orderbook.Order, 1024),
		recent: make(map[uint64]struct{}, recentCapacity),
		ring:   make([]uint64, 0, recentCapacity),
	}
}

func (x *liveIndex) add(o *orderbook.Order) {
	x.live[o.ID()] = o
	o.AddListener(x)
}

func (x *liveIndex) get(id uint64) *orderbook.Order { return x.live[id] }

func (x *liveIndex) known(id uint64) bool {
	if _, ok := x.live[id]; ok {
		return true
	}
	_, ok := x.recent[id]
	return ok
}

func (x *liveIndex) remember(id uint64) {
	if len(x.ring) < cap(x.ring) {
		x.ring = append(x.ring, id)
	} else {
		delete(x.recent, x.ring[x.next])
		x.ring[x.next] = id
		x.next = (x.next + 1) % len(x.ring)
	}
	x.recent[id] = struct{}{}
}

// recentIDs returns the remembered terminated ids, oldest first.
func (x *liveIndex) recentIDs() []uint64 {
	out := make([]uint64, 0, len(x.ring))
	out = append(out, x.ring[x.next:]...)
	return append(out, x.ring[:x.next]...)
}

func (x *liveIndex) OnOrderTerminated(_ int64, o *orderbook.Order) {
	delete(x.live, o.ID())
	x.remember(o.ID())
}
