package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventQueue_PopOrdersByTimestampThenSeq(t *testing.T) {
	q := NewEventQueue()
	_, err := q.Push(Timer{Token: 3}, 5.0)
	require.NoError(t, err)
	_, err = q.Push(Timer{Token: 1}, 1.0)
	require.NoError(t, err)
	_, err = q.Push(Timer{Token: 2}, 1.0)
	require.NoError(t, err)

	ev, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, Timer{Token: 1}, ev)

	ev, ok = q.Pop()
	require.True(t, ok)
	assert.Equal(t, Timer{Token: 2}, ev)

	ev, ok = q.Pop()
	require.True(t, ok)
	assert.Equal(t, Timer{Token: 3}, ev)

	_, ok = q.Pop()
	assert.False(t, ok)
}

func TestEventQueue_PushBeforeNowIsLogicError(t *testing.T) {
	q := NewEventQueue()
	q.MustPush(Timer{Token: 1}, 10.0)
	_, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, 10.0, q.Now())

	_, err := q.Push(Timer{Token: 2}, 5.0)
	require.Error(t, err)
	var logicErr *LogicError
	assert.ErrorAs(t, err, &logicErr)
}

func TestEventQueue_CancelSkipsOnPop(t *testing.T) {
	q := NewEventQueue()
	h := q.MustPush(Timer{Token: 1}, 1.0)
	q.MustPush(Timer{Token: 2}, 2.0)
	q.Cancel(h)

	ev, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, Timer{Token: 2}, ev)
	assert.Equal(t, 2.0, q.Now())
}

func TestEventQueue_CancelIsIdempotent(t *testing.T) {
	q := NewEventQueue()
	h := q.MustPush(Timer{Token: 1}, 1.0)
	q.Cancel(h)
	assert.NotPanics(t, func() { q.Cancel(h) })
}

func TestEventQueue_LenExcludesCancelled(t *testing.T) {
	q := NewEventQueue()
	h := q.MustPush(Timer{Token: 1}, 1.0)
	q.MustPush(Timer{Token: 2}, 2.0)
	assert.Equal(t, 2, q.Len())
	q.Cancel(h)
	assert.Equal(t, 1, q.Len())
}
