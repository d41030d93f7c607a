package journal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ordercore/domain/event"
	"ordercore/domain/orderbook"
	"ordercore/infra/codec"
	"ordercore/infra/sequence"
	exitwal "ordercore/infra/wal/exit"
)

type memStore struct {
	entries []exitwal.Entry
	err     error
}

func (m *memStore) PutNewBatch(entries []exitwal.Entry) error {
	if m.err != nil {
		return m.err
	}
	for _, e := range entries {
		m.entries = append(m.entries, exitwal.Entry{Seq: e.Seq, Payload: append([]byte(nil), e.Payload...)})
	}
	return nil
}

func (m *memStore) decoded(t *testing.T) []event.Event {
	t.Helper()
	out := make([]event.Event, len(m.entries))
	for i, e := range m.entries {
		require.NoError(t, codec.DecodeEvent(e.Payload, &out[i]))
	}
	return out
}

func newOrder() *orderbook.Order {
	o := orderbook.NewOrder()
	o.Init(5, 9, "c", "AAPL", orderbook.Sell, orderbook.Limit, orderbook.GTC, 100, 50)
	return o
}

func TestJournalRecordsLifecycle(t *testing.T) {
	store := &memStore{}
	j := New(store, sequence.New(0))
	o := newOrder()
	o.AddListener(j)

	o.CancelSize(1, 10)
	o.ExecuteTrade(2, orderbook.ExecuteSideMaker, 15, 99, 7, 8)
	o.Cancel(3)

	assert.Equal(t, 4, j.Pending())
	assert.Empty(t, store.entries)
	require.NoError(t, j.Flush())
	assert.Equal(t, 0, j.Pending())

	evs := store.decoded(t)
	require.Len(t, evs, 4)

	var types []event.Type
	for i, e := range evs {
		types = append(types, e.Type)
		assert.Equal(t, uint64(i+1), e.Seq)
		assert.Equal(t, uint64(5), e.OrderID)
		assert.Equal(t, "AAPL", e.Security)
	}
	assert.Equal(t, []event.Type{event.TypeReduced, event.TypeExecuted, event.TypeCanceled, event.TypeTerminated}, types)
	assert.Equal(t, int64(40), evs[0].Size)
	assert.Equal(t, int64(15), evs[1].Size)
	assert.Equal(t, int64(7), evs[1].ExecutionID)
	assert.Equal(t, orderbook.ExecuteSideMaker, evs[1].ExecuteSide)
	assert.Equal(t, int64(15), evs[3].TotalSize)
}

func TestJournalPayloadsSurviveBufferGrowth(t *testing.T) {
	store := &memStore{}
	j := New(store, sequence.New(0))
	j.buf = make([]byte, 0, 8)
	o := newOrder()
	o.AddListener(j)

	for i := 0; i < 20; i++ {
		o.CancelSize(int64(i), 1)
	}
	require.NoError(t, j.Flush())

	evs := store.decoded(t)
	require.Len(t, evs, 20)
	for i, e := range evs {
		assert.Equal(t, int64(49-i), e.Size)
	}
}

func TestJournalFlushError(t *testing.T) {
	store := &memStore{err: errors.New("disk full")}
	j := New(store, sequence.New(0))
	o := newOrder()
	o.AddListener(j)
	o.Cancel(1)

	err := j.Flush()
	assert.ErrorContains(t, err, "disk full")
	assert.Equal(t, 0, j.Pending())
}
