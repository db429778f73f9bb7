package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infersim/infersim/trace"
)

func newTestContext(workers []*Worker, seed int64) (*SchedulerContext, *EventQueue, *trace.MemorySink) {
	q := NewEventQueue()
	sink := trace.NewMemorySink()
	dropped := 0
	return &SchedulerContext{
		Queue:   q,
		Workers: workers,
		Sink:    sink,
		RNG:     rand.New(rand.NewSource(seed)),
		Dropped: &dropped,
	}, q, sink
}

func TestFIFOScheduler_DispatchesAsSoonAsAWorkerIsIdle(t *testing.T) {
	// A worker doesn't wait to accumulate a full batch: it takes whatever
	// is pending, up to its batch_size, the moment it's free.
	w := NewWorker(0, 2)
	ctx, _, _ := newTestContext([]*Worker{w}, 1)
	s := NewFIFOScheduler()

	j1 := newTestJob(1, 1.0)
	require.NoError(t, s.OnArrival(ctx, j1))
	assert.Equal(t, Running, j1.State)
	assert.False(t, w.IsIdle())

	j2, j3 := newTestJob(2, 1.0), newTestJob(3, 1.0)
	require.NoError(t, s.OnArrival(ctx, j2))
	require.NoError(t, s.OnArrival(ctx, j3))
	assert.Equal(t, Pending, j2.State)
	assert.Equal(t, Pending, j3.State)
	assert.Len(t, s.pending, 2)
}

func TestFIFOScheduler_OnWorkerIdleDrainsRemainder(t *testing.T) {
	w := NewWorker(0, 1)
	ctx, q, sink := newTestContext([]*Worker{w}, 1)
	s := NewFIFOScheduler()

	j1, j2 := newTestJob(1, 1.0), newTestJob(2, 1.0)
	require.NoError(t, s.OnArrival(ctx, j1))
	require.NoError(t, s.OnArrival(ctx, j2))
	assert.Equal(t, Pending, j2.State)

	w.Complete(q.Now(), sink)
	require.NoError(t, s.OnWorkerIdle(ctx, w.ID))
	assert.Equal(t, Running, j2.State)
}

func TestRandomScheduler_DispatchesWithoutDuplicationOrLoss(t *testing.T) {
	// Two workers free at once, three jobs pending: exactly two should be
	// drawn into batches (one each), the third left pending, and none of
	// the three should ever appear twice.
	w1, w2 := NewWorker(0, 1), NewWorker(1, 1)
	ctx, _, _ := newTestContext([]*Worker{w1, w2}, 42)
	s := NewRandomScheduler()
	s.pending = []*Job{newTestJob(1, 1.0), newTestJob(2, 1.0), newTestJob(3, 1.0)}
	jobs := append([]*Job(nil), s.pending...)

	require.NoError(t, s.tryDispatch(ctx))

	dispatched := 0
	for _, j := range jobs {
		if j.State == Running {
			dispatched++
		}
	}
	assert.Equal(t, 2, dispatched)
	assert.Len(t, s.pending, 1)
	assert.NotEqual(t, s.pending[0].ID, uint64(0))
}
