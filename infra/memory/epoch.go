package memory

import "sync/atomic"

// GlobalEpoch monotonically increases.
var GlobalEpoch atomic.Uint64

const inactive = ^uint64(0)

// ReaderEpoch marks when a reader entered a read section.
type ReaderEpoch struct {
	epoch atomic.Uint64
}

func NewReaderEpoch() *ReaderEpoch {
	r := &ReaderEpoch{}
	r.epoch.Store(inactive)
	return r
}

func (r *ReaderEpoch) Enter() {
	r.epoch.Store(GlobalEpoch.Load())
}

func (r *ReaderEpoch) Exit() {
	r.epoch.Store(inactive)
}

func (r *ReaderEpoch) Value() uint64 {
	return r.epoch.Load()
}

// AdvanceEpochAndReclaim advances the epoch and returns retired
// objects to pool while no reader is inside a read section. It returns
// the number of objects reclaimed.
func AdvanceEpochAndReclaim[T any](
	ring *RetireRing[T],
	pool *Pool[T],
	readers ...*ReaderEpoch,
) int {
	GlobalEpoch.Add(1)
	if minReaderEpoch(readers...) != inactive {
		// Someone may still hold a pointer into the book; try later.
		return 0
	}

	n := 0
	for {
		obj := ring.Dequeue()
		if obj == nil {
			return n
		}
		pool.Put(obj)
		n++
	}
}

func minReaderEpoch(rs ...*ReaderEpoch) uint64 {
	min := inactive
	for _, r := range rs {
		if r == nil {
			continue
		}
		if v := r.Value(); v < min {
			min = v
		}
	}
	return min
}
