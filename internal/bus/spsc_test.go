package bus

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRingRejectsBadCapacity(t *testing.T) {
	for _, capacity := range []int{0, 1, 3, 6, 1000} {
		_, err := NewRing[int](capacity)
		assert.ErrorIs(t, err, ErrCapacity, "capacity %d", capacity)
	}

	_, err := NewRing[int](1024)
	assert.NoError(t, err)
}

func TestRingDropOnFull(t *testing.T) {
	// Capacity 4 leaves 3 usable slots.
	ring, err := NewRing[string](4)
	require.NoError(t, err)

	require.True(t, ring.Push("A"))
	require.True(t, ring.Push("B"))
	require.True(t, ring.Push("C"))
	assert.False(t, ring.Push("D"), "fourth push must report full")

	var v string
	require.True(t, ring.Pop(&v))
	assert.Equal(t, "A", v)
	require.True(t, ring.Pop(&v))
	assert.Equal(t, "B", v)
	require.True(t, ring.Pop(&v))
	assert.Equal(t, "C", v)
	assert.False(t, ring.Pop(&v), "pop on empty must fail")
	assert.True(t, ring.Empty())
}

func TestRingWrapAround(t *testing.T) {
	ring, err := NewRing[int](8)
	require.NoError(t, err)

	next := 0
	var got int
	for round := 0; round < 10; round++ {
		for i := 0; i < 5; i++ {
			require.True(t, ring.Push(next+i))
		}
		for i := 0; i < 5; i++ {
			require.True(t, ring.Pop(&got))
			assert.Equal(t, next+i, got)
		}
		next += 5
	}
}

func TestRingNeverExceedsUsableCapacity(t *testing.T) {
	ring, err := NewRing[int](16)
	require.NoError(t, err)

	stored := 0
	for ring.Push(stored) {
		stored++
	}
	assert.Equal(t, ring.Capacity()-1, stored)
}

// The consumer must observe a prefix-preserving subsequence of what the
// producer pushed: no reordering, no duplication, gaps only where Push
// reported full.
func TestRingConcurrentFIFO(t *testing.T) {
	ring, err := NewRing[int](64)
	require.NoError(t, err)

	const total = 200000
	accepted := make([]bool, total)
	done := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(done)
		for i := 0; i < total; i++ {
			accepted[i] = ring.Push(i)
		}
	}()

	var consumed []int
	var v int
	producing := true
	for producing || !ring.Empty() {
		select {
		case <-done:
			producing = false
		default:
		}
		for ring.Pop(&v) {
			consumed = append(consumed, v)
		}
	}
	wg.Wait()
	for ring.Pop(&v) {
		consumed = append(consumed, v)
	}

	prev := -1
	for _, v := range consumed {
		require.Greater(t, v, prev, "values must arrive in push order")
		prev = v
	}
	for _, v := range consumed {
		require.True(t, accepted[v], "consumed value %d was reported dropped", v)
	}
}
