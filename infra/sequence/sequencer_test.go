package sequence

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextIsMonotonic(t *testing.T) {
	s := New(10)
	assert.Equal(t, uint64(11), s.Next())
	assert.Equal(t, uint64(12), s.Next())
	assert.Equal(t, uint64(12), s.Current())
}

func TestObserveOnlyMovesForward(t *testing.T) {
	s := New(5)
	s.Observe(3)
	assert.Equal(t, uint64(5), s.Current())
	s.Observe(42)
	assert.Equal(t, uint64(43), s.Next())
}

func TestConcurrentNextIsUnique(t *testing.T) {
	s := New(0)
	var mu sync.Mutex
	seen := make(map[uint64]bool)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 1000; i++ {
				v := s.Next()
				mu.Lock()
				seen[v] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Len(t, seen, 8000)
}
