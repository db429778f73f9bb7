package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/infersim/infersim/trace"
)

func runFIFOScenario(seed string) *trace.MemorySink {
	sink := trace.NewMemorySink()
	workers := []*Worker{NewWorker(0, 5)}
	gen := OneBatchSpec{Delay: 0, NJobs: 10, Spec: IncomingSpec{Length: ConstantSpec{Value: 1}, Budget: 50}}
	s := NewSimulator(seed, sink, workers, NewFIFOScheduler(), []GeneratorSpec{gen}, NoEventsUntil{})
	_ = s.Run()
	return sink
}

func TestSimulator_DeterministicAcrossRunsWithSameSeed(t *testing.T) {
	a := runFIFOScenario("stripy zebra")
	b := runFIFOScenario("stripy zebra")
	assert.Equal(t, a.Records, b.Records)
}

func TestSimulator_JobConservationUnderFIFO(t *testing.T) {
	sink := runFIFOScenario("stripy zebra")
	admitted := sink.ByKind("job_admitted")
	finished := sink.ByKind("job_finished")
	dropped := sink.ByKind("job_dropped")
	assert.Len(t, admitted, 10)
	assert.Empty(t, dropped)
	assert.Len(t, finished, 10)
}

func TestSimulator_NoEventsUntilDrainsEagerFIFOBatches(t *testing.T) {
	sink := trace.NewMemorySink()
	workers := []*Worker{NewWorker(0, 5)}
	gen := OneBatchSpec{Delay: 0, NJobs: 10, Spec: IncomingSpec{Length: ConstantSpec{Value: 2}, Budget: 50}}
	s := NewSimulator("stripy zebra", sink, workers, NewFIFOScheduler(), []GeneratorSpec{gen}, NoEventsUntil{})
	require.NoError(t, s.Run())

	res := s.Summary()
	assert.Equal(t, 10, res.Admitted)
	assert.Equal(t, 10, res.Finished)
	assert.Equal(t, 0, res.Dropped)
	// FIFO dispatches eagerly rather than waiting to accumulate a full
	// batch, so the single worker churns through three batches (the
	// first arrival alone, then up to batch_size from backlog) before
	// draining; every finish latency falls within that span.
	assert.GreaterOrEqual(t, res.LatencyP99, 2.0)
	assert.LessOrEqual(t, res.LatencyP99, 6.0)
}

func TestSimulator_MultiGeneratorLabelsDoNotPerturbSingleGeneratorDraws(t *testing.T) {
	single := NewSimulator("stripy zebra", trace.NewMemorySink(), nil, NewFIFOScheduler(),
		[]GeneratorSpec{OneBatchSpec{NJobs: 1, Spec: IncomingSpec{Length: NormalSpec{Mean: 5, StdDev: 1}, Budget: 10}}},
		NoEventsUntil{})
	singleSample := single.rng.ForLabel("incoming").Float64()

	multi := NewSimulator("stripy zebra", trace.NewMemorySink(), nil, NewFIFOScheduler(),
		[]GeneratorSpec{
			OneBatchSpec{NJobs: 1, Spec: IncomingSpec{Length: NormalSpec{Mean: 5, StdDev: 1}, Budget: 10}},
			OneBatchSpec{NJobs: 1, Spec: IncomingSpec{Length: NormalSpec{Mean: 5, StdDev: 1}, Budget: 10}},
		},
		NoEventsUntil{})
	multiSample := multi.rng.ForLabel("incoming").Float64()

	// "incoming" is untouched by the multi-generator run: its generators
	// use "incoming.0" and "incoming.1" instead.
	assert.Equal(t, singleSample, multiSample)
	assert.Equal(t, "incoming", single.generators[0].label)
	assert.Equal(t, "incoming.0", multi.generators[0].label)
	assert.Equal(t, "incoming.1", multi.generators[1].label)
}

func TestSimulator_UnknownWorkerOnBatchDoneIsLogicError(t *testing.T) {
	sink := trace.NewMemorySink()
	s := NewSimulator("zebra", sink, nil, NewFIFOScheduler(), nil, NoEventsUntil{})
	err := s.dispatch(BatchDone{WorkerID: 99})
	require.Error(t, err)
	var logicErr *LogicError
	assert.ErrorAs(t, err, &logicErr)
}
