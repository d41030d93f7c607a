// Package journal turns order events into outbox records. It is an
// OrderListener; callbacks only encode into memory, and the owner calls
// Flush once the command that produced the events has returned.
package journal

import (
	"fmt"

	"ordercore/domain/event"
	"ordercore/domain/orderbook"
	"ordercore/infra/codec"
	"ordercore/infra/sequence"
	exitwal "ordercore/infra/wal/exit"
)

// Store is the durable side of the journal.
type Store interface {
	PutNewBatch(entries []exitwal.Entry) error
}

type Journal struct {
	store   Store
	seq     *sequence.Sequencer
	ev      event.Event
	buf     []byte
	pending []exitwal.Entry
}

func New(store Store, seq *sequence.Sequencer) *Journal {
	return &Journal{
		store:   store,
		seq:     seq,
		buf:     make([]byte, 0, 4096),
		pending: make([]exitwal.Entry, 0, 16),
	}
}

// Pending returns the number of encoded events not yet flushed.
func (j *Journal) Pending() int { return len(j.pending) }

// Flush writes every pending event to the store in one batch.
func (j *Journal) Flush() error {
	if len(j.pending) == 0 {
		return nil
	}
	err := j.store.PutNewBatch(j.pending)
	n := len(j.pending)
	for i := range j.pending {
		j.pending[i] = exitwal.Entry{}
	}
	j.pending = j.pending[:0]
	j.buf = j.buf[:0]
	if err != nil {
		return fmt.Errorf("journal: flush %d events: %w", n, err)
	}
	return nil
}

func (j *Journal) record() {
	j.ev.Seq = j.seq.Next()
	start := len(j.buf)
	j.buf = codec.AppendEvent(j.buf, &j.ev)
	// Slices taken before a regrow keep pointing at the old array,
	// which is never written again.
	j.pending = append(j.pending, exitwal.Entry{
		Seq:     j.ev.Seq,
		Payload: j.buf[start:len(j.buf):len(j.buf)],
	})
}

// ---- OrderListener ----

func (j *Journal) OnOrderReduced(time int64, o *orderbook.Order, newTotalSize int64) {
	j.ev.From(event.TypeReduced, time, o)
	j.ev.Size = newTotalSize
	j.record()
}

func (j *Journal) OnOrderCanceled(time int64, o *orderbook.Order, reason orderbook.CancelReason) {
	j.ev.From(event.TypeCanceled, time, o)
	j.ev.CancelReason = reason
	j.record()
}

func (j *Journal) OnOrderExecuted(
	time int64,
	o *orderbook.Order,
	side orderbook.ExecuteSide,
	size, price, executionID, matchID int64,
) {
	j.ev.From(event.TypeExecuted, time, o)
	j.ev.ExecuteSide = side
	j.ev.Size = size
	j.ev.Price = price
	j.ev.ExecutionID = executionID
	j.ev.MatchID = matchID
	j.record()
}

func (j *Journal) OnOrderTerminated(time int64, o *orderbook.Order) {
	j.ev.From(event.TypeTerminated, time, o)
	j.record()
}
