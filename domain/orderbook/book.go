package orderbook

import "github.com/tidwall/btree"

// Book indexes the resting orders of one security. It does not match;
// it only tracks which orders rest at which price.
//
// Book is single-writer: one goroutine owns it and every order in it.
type Book struct {
	NopListener

	Security string

	bids   *btree.BTreeG[*PriceLevel]
	asks   *btree.BTreeG[*PriceLevel]
	orders map[uint64]*Order
	key    PriceLevel

	// retire receives orders once they terminate while resting.
	retire func(*Order)
}

// LevelDepth is an aggregated view of one price level.
type LevelDepth struct {
	Price  int64
	Size   int64
	Orders int
}

func byPrice(a, b *PriceLevel) bool { return a.Price < b.Price }

func NewBook(security string, retire func(*Order)) *Book {
	return &Book{
		Security: security,
		bids:     btree.NewBTreeG(byPrice),
		asks:     btree.NewBTreeG(byPrice),
		orders:   make(map[uint64]*Order, 1024),
		retire:   retire,
	}
}

// Rest queues o at its price. The book registers before the level, so
// the level observes every event first.
func (b *Book) Rest(time int64, o *Order) *PriceLevel {
	lvl := b.getOrCreate(o.Side(), o.Price())

	o.AddListener(b)
	lvl.Add(o)
	o.SetResting(time, true)
	b.orders[o.ID()] = o
	return lvl
}

func (b *Book) Find(id uint64) *Order {
	return b.orders[id]
}

func (b *Book) Len() int { return len(b.orders) }

// Level returns the level at price on side, or nil.
func (b *Book) Level(side Side, price int64) *PriceLevel {
	b.key.Price = price
	lvl, ok := b.tree(side).Get(&b.key)
	if !ok {
		return nil
	}
	return lvl
}

func (b *Book) BestBid() *PriceLevel {
	lvl, _ := b.bids.Max()
	return lvl
}

func (b *Book) BestAsk() *PriceLevel {
	lvl, _ := b.asks.Min()
	return lvl
}

// WalkBids visits bid levels best (highest) first.
func (b *Book) WalkBids(fn func(*PriceLevel) bool) {
	b.bids.Reverse(fn)
}

// WalkAsks visits ask levels best (lowest) first.
func (b *Book) WalkAsks(fn func(*PriceLevel) bool) {
	b.asks.Scan(fn)
}

// Depth returns up to n aggregated levels on side, best first.
func (b *Book) Depth(side Side, n int) []LevelDepth {
	out := make([]LevelDepth, 0, n)
	visit := func(lvl *PriceLevel) bool {
		if len(out) >= n {
			return false
		}
		out = append(out, LevelDepth{Price: lvl.Price, Size: lvl.OpenSize(), Orders: lvl.Count()})
		return true
	}
	if side == Buy {
		b.WalkBids(visit)
	} else {
		b.WalkAsks(visit)
	}
	return out
}

// Purge cancels every resting order with reason, bids then asks, best
// price first and FIFO within a level, so the event order is stable.
func (b *Book) Purge(time int64, reason CancelReason) int {
	resting := make([]*Order, 0, len(b.orders))
	collect := func(lvl *PriceLevel) bool {
		for o := lvl.Head(); o != nil; o = o.Next() {
			resting = append(resting, o)
		}
		return true
	}
	b.WalkBids(collect)
	b.WalkAsks(collect)
	for _, o := range resting {
		o.CancelWithReason(time, reason)
	}
	return len(resting)
}

// OnOrderTerminated drops a terminated order from the index and prunes
// its level once empty.
func (b *Book) OnOrderTerminated(time int64, o *Order) {
	if _, ok := b.orders[o.ID()]; !ok {
		return
	}
	delete(b.orders, o.ID())
	b.prune(o.Side(), o.Price())
	o.SetResting(time, false)

	if b.retire != nil {
		b.retire(o)
	}
}

// forget drops a live order that was removed from its level. The
// caller keeps ownership, so it is not retired.
func (b *Book) forget(o *Order) {
	if _, ok := b.orders[o.ID()]; !ok {
		return
	}
	delete(b.orders, o.ID())
	o.RemoveListener(b)
	b.prune(o.Side(), o.Price())
	o.SetResting(0, false)
}

func (b *Book) prune(side Side, price int64) {
	if lvl := b.Level(side, price); lvl != nil && lvl.Empty() {
		b.key.Price = price
		b.tree(side).Delete(&b.key)
	}
}

func (b *Book) getOrCreate(side Side, price int64) *PriceLevel {
	if lvl := b.Level(side, price); lvl != nil {
		return lvl
	}
	lvl := NewPriceLevel(side, price)
	lvl.book = b
	b.tree(side).Set(lvl)
	return lvl
}

func (b *Book) tree(side Side) *btree.BTreeG[*PriceLevel] {
	if side == Buy {
		return b.bids
	}
	return b.asks
}
