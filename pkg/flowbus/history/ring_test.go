package history_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/flowbus/pkg/flowbus/history"
)

type entry struct {
	topic string
	n     int
}

func entryTopic(e entry) string { return e.topic }

func TestRing_Bound(t *testing.T) {
	const capacity = 10
	ring := history.NewRing(capacity, entryTopic)

	for i := 0; i < capacity+5; i++ {
		ring.Record(entry{topic: "T", n: i})
	}

	got := ring.Query("")
	require.Len(t, got, capacity)
	assert.Equal(t, capacity, ring.Len())
	assert.Equal(t, capacity, ring.Cap())

	// Oldest five evicted, order preserved.
	for i, e := range got {
		assert.Equal(t, i+5, e.n)
	}
}

func TestRing_QueryByTopic(t *testing.T) {
	ring := history.NewRing(5, entryTopic)
	ring.Record(entry{topic: "A", n: 1})
	ring.Record(entry{topic: "B", n: 2})
	ring.Record(entry{topic: "A", n: 3})
	ring.Record(entry{topic: "A.B", n: 4})

	got := ring.Query("A")
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].n)
	assert.Equal(t, 3, got[1].n)

	// No wildcard filtering in history queries.
	assert.Empty(t, ring.Query("A.*"))
	assert.Empty(t, ring.Query("missing"))
}

func TestRing_Clear(t *testing.T) {
	ring := history.NewRing(3, entryTopic)
	ring.Record(entry{topic: "A", n: 1})
	ring.Record(entry{topic: "A", n: 2})

	ring.Clear()
	assert.Equal(t, 0, ring.Len())
	assert.Empty(t, ring.Query(""))

	ring.Record(entry{topic: "A", n: 3})
	got := ring.Query("")
	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].n)
}

func TestRing_ZeroCapacity(t *testing.T) {
	ring := history.NewRing(0, entryTopic)
	ring.Record(entry{topic: "A"})
	assert.Equal(t, 0, ring.Len())
	assert.Empty(t, ring.Query(""))

	negative := history.NewRing(-3, entryTopic)
	negative.Record(entry{topic: "A"})
	assert.Equal(t, 0, negative.Cap())
}

func TestRing_WrapAroundOrder(t *testing.T) {
	ring := history.NewRing(3, entryTopic)
	for i := 0; i < 7; i++ {
		ring.Record(entry{topic: fmt.Sprintf("T%d", i%2), n: i})
	}

	got := ring.Query("")
	require.Len(t, got, 3)
	assert.Equal(t, []int{4, 5, 6}, []int{got[0].n, got[1].n, got[2].n})

	odd := ring.Query("T1")
	require.Len(t, odd, 1)
	assert.Equal(t, 5, odd[0].n)
}

func TestRing_Concurrent(t *testing.T) {
	ring := history.NewRing(50, entryTopic)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				ring.Record(entry{topic: "T", n: g*100 + i})
				_ = ring.Query("T")
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, 50, ring.Len())
}
