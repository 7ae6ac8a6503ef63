package transport

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBatcher_FlushesAtMaxSize(t *testing.T) {
	var mu sync.Mutex
	var flushes [][]int

	b := newBatcher(3, time.Hour, func(items []int) {
		mu.Lock()
		defer mu.Unlock()
		flushes = append(flushes, items)
	})

	b.Add(1)
	b.Add(2)
	b.Add(3)
	b.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, flushes, 1)
	require.Equal(t, []int{1, 2, 3}, flushes[0])
}

func TestBatcher_FlushesOnInterval(t *testing.T) {
	var mu sync.Mutex
	var flushes [][]int

	b := newBatcher(100, 10*time.Millisecond, func(items []int) {
		mu.Lock()
		defer mu.Unlock()
		flushes = append(flushes, items)
	})

	b.Add(1)
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	require.Len(t, flushes, 1)
	require.Equal(t, []int{1}, flushes[0])
	mu.Unlock()

	b.Stop()
}

func TestBatcher_StopFlushesPendingItems(t *testing.T) {
	var mu sync.Mutex
	var flushes [][]int

	b := newBatcher(100, time.Hour, func(items []int) {
		mu.Lock()
		defer mu.Unlock()
		flushes = append(flushes, items)
	})

	b.Add(1)
	b.Add(2)
	b.Stop()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, flushes, 1)
	require.Equal(t, []int{1, 2}, flushes[0])
}

func TestBatcher_AddAfterStopIsNoop(t *testing.T) {
	var count int
	var mu sync.Mutex

	b := newBatcher(1, time.Hour, func(items []int) {
		mu.Lock()
		defer mu.Unlock()
		count += len(items)
	})
	b.Stop()
	b.Add(1)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, 0, count)
}
