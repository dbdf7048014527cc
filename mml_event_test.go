package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestEventQueueOrdersByTime(t *testing.T) {
	q := newEventQueue()
	q.Insert(Event{Time: 300, Channel: 0})
	q.Insert(Event{Time: 100, Channel: 0})
	q.Insert(Event{Time: 200, Channel: 0})
	q.Insert(Event{Time: 100, Channel: 1})

	times := q.Times()
	require.Equal(t, []int64{100, 200, 300}, times)
	assert.Len(t, q.AtTime(100), 2)
	assert.Len(t, q.AtTime(200), 1)
}

func TestEventQueuePreservesInsertionOrderWithinTime(t *testing.T) {
	q := newEventQueue()
	q.Insert(Event{Time: 0, Channel: 1})
	q.Insert(Event{Time: 0, Channel: 2})
	q.Insert(Event{Time: 0, Channel: 3})

	bucket := q.AtTime(0)
	require.Len(t, bucket, 3)
	assert.Equal(t, int8(1), bucket[0].Channel)
	assert.Equal(t, int8(2), bucket[1].Channel)
	assert.Equal(t, int8(3), bucket[2].Channel)
}

func TestEventQueueEmptyAndLastTime(t *testing.T) {
	q := newEventQueue()
	assert.True(t, q.IsEmpty())
	_, ok := q.LastTime()
	assert.False(t, ok)

	q.Insert(Event{Time: 50})
	assert.False(t, q.IsEmpty())
	last, ok := q.LastTime()
	require.True(t, ok)
	assert.Equal(t, int64(50), last)

	q.Clear()
	assert.True(t, q.IsEmpty())
}

func TestEventQueueTimesAlwaysSortedProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		q := newEventQueue()
		n := rapid.IntRange(0, 200).Draw(t, "n")
		for i := 0; i < n; i++ {
			ti := rapid.Int64Range(0, 1000).Draw(t, "t")
			q.Insert(Event{Time: ti})
		}
		times := q.Times()
		for i := 1; i < len(times); i++ {
			assert.Less(t, times[i-1], times[i])
		}
	})
}
