package orderbook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRestingOrder(id uint64, side Side, price, size int64) *Order {
	o := NewOrder()
	o.Init(id, 1, "", "AAPL", side, Limit, GTC, price, size)
	return o
}

func levelIDs(lvl *PriceLevel) []uint64 {
	var ids []uint64
	for o := lvl.Head(); o != nil; o = o.Next() {
		ids = append(ids, o.ID())
	}
	return ids
}

func TestPriceLevelFIFOAndUnlinkMiddle(t *testing.T) {
	lvl := NewPriceLevel(Buy, 100)
	a := newRestingOrder(1, Buy, 100, 10)
	b := newRestingOrder(2, Buy, 100, 20)
	c := newRestingOrder(3, Buy, 100, 30)
	lvl.Add(a)
	lvl.Add(b)
	lvl.Add(c)

	assert.Equal(t, []uint64{1, 2, 3}, levelIDs(lvl))
	assert.Equal(t, int64(60), lvl.OpenSize())
	assert.Same(t, lvl, b.Level())

	b.Cancel(1)
	assert.Equal(t, []uint64{1, 3}, levelIDs(lvl))
	assert.Same(t, a, c.Prev())
	assert.Same(t, c, a.Next())
	assert.Nil(t, b.Level())
	assert.Equal(t, int64(40), lvl.OpenSize())
	assert.Equal(t, 2, lvl.Count())

	a.Cancel(2)
	assert.Same(t, c, lvl.Head())
	assert.Same(t, c, lvl.Tail())
	assert.Nil(t, c.Prev())
}

func TestPriceLevelTracksLifecycle(t *testing.T) {
	lvl := NewPriceLevel(Sell, 100)
	a := newRestingOrder(1, Sell, 100, 10)
	b := newRestingOrder(2, Sell, 100, 20)
	lvl.Add(a)
	lvl.Add(b)

	a.Execute(1, 4)
	assert.Equal(t, int64(26), lvl.OpenSize())

	b.CancelSize(2, 5)
	assert.Equal(t, int64(21), lvl.OpenSize())

	a.Cancel(3)
	assert.Equal(t, []uint64{2}, levelIDs(lvl))
	assert.Equal(t, int64(15), lvl.OpenSize())

	b.Execute(4, 15)
	assert.True(t, lvl.Empty())
	assert.Equal(t, int64(0), lvl.OpenSize())
	assert.Equal(t, 0, lvl.Count())
}

func TestBookRestAndBestPrices(t *testing.T) {
	book := NewBook("AAPL", nil)
	book.Rest(1, newRestingOrder(1, Buy, 99, 5))
	book.Rest(1, newRestingOrder(2, Buy, 101, 5))
	book.Rest(1, newRestingOrder(3, Sell, 105, 5))
	book.Rest(1, newRestingOrder(4, Sell, 103, 5))
	book.Rest(1, newRestingOrder(5, Sell, 103, 7))

	assert.Equal(t, 5, book.Len())
	assert.Equal(t, int64(101), book.BestBid().Price)
	assert.Equal(t, int64(103), book.BestAsk().Price)
	assert.Equal(t, []LevelDepth{
		{Price: 103, Size: 12, Orders: 2},
		{Price: 105, Size: 5, Orders: 1},
	}, book.Depth(Sell, 10))
	assert.Len(t, book.Depth(Buy, 1), 1)

	o := book.Find(2)
	require.NotNil(t, o)
	assert.True(t, o.IsResting())
	assert.Equal(t, int64(1), o.RestTime())
}

func TestBookDropsTerminatedOrders(t *testing.T) {
	var retired []*Order
	book := NewBook("AAPL", func(o *Order) { retired = append(retired, o) })
	a := newRestingOrder(1, Buy, 100, 10)
	b := newRestingOrder(2, Buy, 100, 10)
	book.Rest(1, a)
	book.Rest(1, b)

	a.Execute(2, 10)
	assert.Nil(t, book.Find(1))
	assert.False(t, a.IsResting())
	assert.NotNil(t, book.Level(Buy, 100))

	b.ReduceTo(3, 0)
	assert.Nil(t, book.Level(Buy, 100))
	assert.Nil(t, book.BestBid())
	assert.Equal(t, 0, book.Len())
	assert.Equal(t, []*Order{a, b}, retired)
	assert.Equal(t, 0, a.ListenerCount())
	assert.Equal(t, 0, b.ListenerCount())
}

func TestBookLevelSeesEventsBeforeBook(t *testing.T) {
	book := NewBook("AAPL", nil)
	o := newRestingOrder(1, Buy, 100, 10)
	book.Rest(1, o)

	log := &[]call{}
	o.AddListener(&recorder{name: "risk", log: log})
	o.Cancel(2)

	assert.Equal(t, []string{"canceled", "terminated"}, events(log))
	assert.Nil(t, book.Level(Buy, 100))
}

func TestPriceLevelRemove(t *testing.T) {
	lvl := NewPriceLevel(Buy, 100)
	a := newRestingOrder(1, Buy, 100, 10)
	b := newRestingOrder(2, Buy, 100, 20)
	lvl.Add(a)
	lvl.Add(b)

	require.True(t, lvl.Remove(a))
	assert.False(t, lvl.Remove(a))
	assert.Equal(t, []uint64{2}, levelIDs(lvl))
	assert.Equal(t, int64(20), lvl.OpenSize())
	assert.Nil(t, a.Level())
	assert.Equal(t, 0, a.ListenerCount())

	a.Execute(1, 5)
	assert.Equal(t, int64(20), lvl.OpenSize())
}

func TestRemoveFromBookOwnedLevel(t *testing.T) {
	var retired []*Order
	book := NewBook("AAPL", func(o *Order) { retired = append(retired, o) })
	a := newRestingOrder(1, Sell, 105, 10)
	book.Rest(1, a)

	require.True(t, book.Level(Sell, 105).Remove(a))
	assert.Nil(t, book.Find(1))
	assert.Nil(t, book.Level(Sell, 105))
	assert.Nil(t, book.BestAsk())
	assert.Equal(t, 0, book.Len())
	assert.False(t, a.IsResting())
	assert.Equal(t, 0, a.ListenerCount())

	a.Cancel(2)
	assert.True(t, a.IsTerminated())
	assert.Empty(t, retired)
}

func TestBookPurge(t *testing.T) {
	book := NewBook("AAPL", nil)
	orders := []*Order{
		newRestingOrder(1, Buy, 100, 1),
		newRestingOrder(2, Sell, 111, 1),
		newRestingOrder(3, Sell, 110, 1),
		newRestingOrder(4, Buy, 101, 1),
		newRestingOrder(5, Buy, 101, 1),
	}
	var seen []uint64
	for _, o := range orders {
		book.Rest(1, o)
		o.AddListener(&terminationLog{ids: &seen})
	}

	assert.Equal(t, 5, book.Purge(5, CancelReasonPurged))
	assert.Equal(t, 0, book.Len())
	assert.Equal(t, []uint64{4, 5, 1, 3, 2}, seen)
	for _, o := range orders {
		assert.True(t, o.IsTerminated())
		assert.Equal(t, int64(5), o.CancelTime())
	}
}

type terminationLog struct {
	NopListener
	ids *[]uint64
}

func (l *terminationLog) OnOrderTerminated(_ int64, o *Order) {
	*l.ids = append(*l.ids, o.ID())
}
