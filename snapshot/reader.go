package snapshot

import "ordercore/infra/memory"

// Reader marks the span during which a caller walks live orders, so
// retired orders are not recycled under it.
type Reader struct {
	epoch *memory.ReaderEpoch
}

func NewReader() *Reader {
	return &Reader{epoch: memory.NewReaderEpoch()}
}

func (r *Reader) Begin() { r.epoch.Enter() }
func (r *Reader) End()   { r.epoch.Exit() }

func (r *Reader) Epoch() *memory.ReaderEpoch {
	return r.epoch
}
