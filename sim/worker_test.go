package sim

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infersim/infersim/trace"
)

func newTestJob(id uint64, length float64) *Job {
	return NewJob(id, 0, ConstantSpec{Value: length}, 100, rand.New(rand.NewSource(int64(id))))
}

func TestWorker_DispatchUsesStragglerLength(t *testing.T) {
	w := NewWorker(0, 3)
	q := NewEventQueue()
	sink := trace.NewMemorySink()

	batch := []*Job{newTestJob(1, 2.0), newTestJob(2, 5.0), newTestJob(3, 1.0)}
	require.NoError(t, w.Dispatch(q, sink, batch))

	assert.False(t, w.IsIdle())
	assert.Equal(t, 5.0, w.Until())
	for _, j := range batch {
		assert.Equal(t, Running, j.State)
		assert.Equal(t, 0.0, j.StartedAt)
	}

	starts := sink.ByKind("batch_start")
	require.Len(t, starts, 1)
	rec := starts[0].(trace.BatchStartRecord)
	assert.Equal(t, 5.0, rec.PredictedEnd)
}

func TestWorker_DispatchToBusyWorkerIsLogicError(t *testing.T) {
	w := NewWorker(0, 2)
	q := NewEventQueue()
	sink := trace.NewMemorySink()
	require.NoError(t, w.Dispatch(q, sink, []*Job{newTestJob(1, 1.0)}))

	err := w.Dispatch(q, sink, []*Job{newTestJob(2, 1.0)})
	require.Error(t, err)
	var logicErr *LogicError
	assert.ErrorAs(t, err, &logicErr)
}

func TestWorker_DispatchOversizeBatchIsLogicError(t *testing.T) {
	w := NewWorker(0, 1)
	q := NewEventQueue()
	sink := trace.NewMemorySink()
	err := w.Dispatch(q, sink, []*Job{newTestJob(1, 1.0), newTestJob(2, 1.0)})
	require.Error(t, err)
}

func TestWorker_CompleteTagsLateJobs(t *testing.T) {
	w := NewWorker(0, 1)
	q := NewEventQueue()
	sink := trace.NewMemorySink()
	job := newTestJob(1, 1.0)
	job.Deadline = 0.5
	require.NoError(t, w.Dispatch(q, sink, []*Job{job}))

	done := w.Complete(1.0, sink)
	require.Len(t, done, 1)
	assert.Equal(t, Done, done[0].State)
	assert.True(t, w.IsIdle())

	finished := sink.ByKind("job_finished")
	require.Len(t, finished, 1)
	assert.True(t, finished[0].(trace.JobFinishedRecord).Late)
}
