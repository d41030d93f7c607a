package orderbook

// PriceLevel is a FIFO queue of resting orders at a single price.
// Orders are linked intrusively, so adding at the tail and removing
// from anywhere are both O(1).
//
// A level registers itself as a listener on each order it queues and
// keeps its aggregate open size current; a terminated order unlinks
// itself.
type PriceLevel struct {
	NopListener

	Side  Side
	Price int64

	head *Order
	tail *Order

	openSize int64
	count    int

	// book is set when the level belongs to a Book.
	book *Book
}

func NewPriceLevel(side Side, price int64) *PriceLevel {
	return &PriceLevel{Side: side, Price: price}
}

// Add links o at the tail. o must not be queued elsewhere.
func (p *PriceLevel) Add(o *Order) {
	if p.tail == nil {
		p.head = o
		p.tail = o
	} else {
		p.tail.next = o
		o.prev = p.tail
		p.tail = o
	}
	o.level = p
	o.levelOpenSize = o.OpenSize()

	p.openSize += o.levelOpenSize
	p.count++
	o.AddListener(p)
}

// Remove unlinks o from the queue without terminating it. It reports
// false if o is not queued at this level. A book-owned level also drops
// o from its book.
func (p *PriceLevel) Remove(o *Order) bool {
	if o.level != p {
		return false
	}

	p.unlink(o)
	o.RemoveListener(p)
	if p.book != nil {
		p.book.forget(o)
	}
	return true
}

func (p *PriceLevel) Empty() bool     { return p.head == nil }
func (p *PriceLevel) Head() *Order    { return p.head }
func (p *PriceLevel) Tail() *Order    { return p.tail }
func (p *PriceLevel) Count() int      { return p.count }
func (p *PriceLevel) OpenSize() int64 { return p.openSize }

// ---- OrderListener ----

func (p *PriceLevel) OnOrderReduced(_ int64, o *Order, _ int64) {
	p.resync(o)
}

func (p *PriceLevel) OnOrderExecuted(_ int64, o *Order, _ ExecuteSide, _, _, _, _ int64) {
	p.resync(o)
}

func (p *PriceLevel) OnOrderTerminated(_ int64, o *Order) {
	if o.level != p {
		return
	}
	// The order releases its listener set right after this callback,
	// so only the links are dropped here.
	p.unlink(o)
}

func (p *PriceLevel) resync(o *Order) {
	if o.level != p {
		return
	}
	open := o.OpenSize()
	p.openSize += open - o.levelOpenSize
	o.levelOpenSize = open
}

func (p *PriceLevel) unlink(o *Order) {
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		p.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		p.tail = o.prev
	}

	p.openSize -= o.levelOpenSize
	p.count--

	o.prev = nil
	o.next = nil
	o.level = nil
	o.levelOpenSize = 0
}
