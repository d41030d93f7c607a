package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID   int
	Used bool
}

func TestRetireRingFIFO(t *testing.T) {
	r := NewRetireRing[item](4)
	a, b := &item{ID: 1}, &item{ID: 2}

	require.True(t, r.Enqueue(a))
	require.True(t, r.Enqueue(b))
	assert.Equal(t, 2, r.Len())

	assert.Same(t, a, r.Dequeue())
	assert.Same(t, b, r.Dequeue())
	assert.Nil(t, r.Dequeue())
}

func TestRetireRingFull(t *testing.T) {
	r := NewRetireRing[item](2)
	assert.True(t, r.Enqueue(&item{}))
	assert.True(t, r.Enqueue(&item{}))
	assert.False(t, r.Enqueue(&item{}))
}

func TestRetireRingSizeMustBePowerOfTwo(t *testing.T) {
	assert.Panics(t, func() { NewRetireRing[item](3) })
}

func TestPoolResetsOnPut(t *testing.T) {
	p := NewPool(func() *item { return &item{} }, func(v *item) { *v = item{} })
	v := p.Get()
	v.ID, v.Used = 9, true
	p.Put(v)

	got := p.Get()
	assert.False(t, got.Used)
	assert.Zero(t, got.ID)
}

func TestReclaimWaitsForReaders(t *testing.T) {
	var reset int
	p := NewPool(func() *item { return &item{} }, func(v *item) { reset++ })
	r := NewRetireRing[item](8)
	reader := NewReaderEpoch()

	r.Enqueue(&item{ID: 1})
	r.Enqueue(&item{ID: 2})

	reader.Enter()
	assert.Equal(t, 0, AdvanceEpochAndReclaim(r, p, reader))
	assert.Equal(t, 2, r.Len())

	reader.Exit()
	assert.Equal(t, 2, AdvanceEpochAndReclaim(r, p, reader))
	assert.Equal(t, 2, reset)
	assert.Equal(t, 0, r.Len())
}
