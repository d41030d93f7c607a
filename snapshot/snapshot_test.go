package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordercore/domain/orderbook"
)

func restingBook(t *testing.T) *orderbook.Book {
	t.Helper()
	b := orderbook.NewBook("AAPL", nil)

	a := orderbook.NewOrder()
	a.Init(1, 7, "cl-1", "AAPL", orderbook.Buy, orderbook.Limit, orderbook.GTC, 100, 50)
	a.Accept(10)
	b.Rest(11, a)
	a.ExecuteTrade(12, orderbook.ExecuteSideMaker, 20, 100, 5, 6)
	a.CancelSize(13, 10)

	c := orderbook.NewOrder()
	c.Init(2, 8, "", "AAPL", orderbook.Sell, orderbook.Limit, orderbook.Day, 105, 3)
	b.Rest(14, c)
	return b
}

func TestCaptureWriteLoadApply(t *testing.T) {
	dir := t.TempDir()
	created := time.Unix(1700000000, 0).UTC()
	seqs := Seqs{WAL: 9, Event: 4, Order: 2, Execution: 5, Match: 6}

	s := Capture(seqs, created, restingBook(t))
	require.Len(t, s.Orders, 2)

	w := &Writer{Dir: dir}
	require.NoError(t, w.Write(s))

	got, err := Load(dir)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, seqs, got.Seqs)
	assert.True(t, created.Equal(got.Created))
	assert.Equal(t, s.Orders, got.Orders)

	o := orderbook.NewOrder()
	got.Orders[0].Apply(o)
	assert.Equal(t, uint64(1), o.ID())
	assert.Equal(t, "cl-1", o.ClientOrderID().String())
	assert.Equal(t, int64(50), o.OriginalSize())
	assert.Equal(t, int64(40), o.TotalSize())
	assert.Equal(t, int64(20), o.ExecutedSize())
	assert.Equal(t, int64(20), o.OpenSize())
	assert.Equal(t, int64(10), o.AcceptTime())
	assert.Equal(t, int64(12), o.ExecuteTime())
	assert.Equal(t, int64(13), o.ReduceTime())
	assert.False(t, o.IsTerminated())
}

func TestApplyKeepsUnsetClientOrderID(t *testing.T) {
	b := orderbook.NewBook("AAPL", nil)
	unset := orderbook.NewOrder()
	unset.Init(1, 1, "", "AAPL", orderbook.Buy, orderbook.Limit, orderbook.GTC, 100, 5)
	unset.ClientOrderID().Reset()
	b.Rest(1, unset)
	b.Rest(2, func() *orderbook.Order {
		o := orderbook.NewOrder()
		o.Init(2, 1, "", "AAPL", orderbook.Buy, orderbook.Limit, orderbook.GTC, 100, 5)
		return o
	}())

	dir := t.TempDir()
	snap := Capture(Seqs{}, time.Now(), b)
	snap.Terminated = []uint64{7, 3}
	require.NoError(t, (&Writer{Dir: dir}).Write(snap))
	got, err := Load(dir)
	require.NoError(t, err)
	require.Len(t, got.Orders, 2)
	assert.Equal(t, []uint64{7, 3}, got.Terminated)

	o := orderbook.NewOrder()
	got.Orders[0].Apply(o)
	assert.False(t, o.ClientOrderID().IsSet())
	assert.Equal(t, "NULL", o.ClientOrderID().String())

	empty := orderbook.NewOrder()
	got.Orders[1].Apply(empty)
	assert.True(t, empty.ClientOrderID().IsSet())
	assert.Equal(t, "", empty.ClientOrderID().String())
}

func TestLoadMissingSnapshot(t *testing.T) {
	s, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestWriteReplacesPrevious(t *testing.T) {
	w := &Writer{Dir: t.TempDir()}
	require.NoError(t, w.Write(&Snapshot{Seqs: Seqs{WAL: 1}}))
	require.NoError(t, w.Write(&Snapshot{Seqs: Seqs{WAL: 2}}))

	s, err := Load(w.Dir)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), s.Seqs.WAL)
}

func TestReaderEpoch(t *testing.T) {
	r := NewReader()
	assert.Equal(t, ^uint64(0), r.Epoch().Value())
	r.Begin()
	assert.NotEqual(t, ^uint64(0), r.Epoch().Value())
	r.End()
	assert.Equal(t, ^uint64(0), r.Epoch().Value())
}
