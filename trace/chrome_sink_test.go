package trace

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChromeSink_WritesBatchEventsWithDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.json")
	s := NewChromeSink(path)

	s.Emit(JobAdmittedRecord{ID: 1, AdmittedAt: 0, Deadline: 10, P99: 3})
	s.Emit(BatchStartRecord{WorkerID: 2, JobIDs: []uint64{1}, StartAt: 1, PredictedEnd: 4})
	s.Emit(JobFinishedRecord{ID: 1, FinishedAt: 4})
	require.NoError(t, s.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var events []map[string]any
	require.NoError(t, json.Unmarshal(data, &events))
	require.Len(t, events, 3)

	batch := events[1]
	assert.Equal(t, "Batch", batch["name"])
	assert.Equal(t, "X", batch["ph"])
	assert.Equal(t, 3.0, batch["dur"])
	assert.Equal(t, 3.0, batch["tid"]) // worker id 2 -> tid 3
}

func TestChromeSink_UnknownRecordKindFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.json")
	s := NewChromeSink(path)

	s.Emit(unknownRecord{})
	sinkErr := s.Err()
	require.NotNil(t, sinkErr)
	assert.Contains(t, sinkErr.Error(), "unknown record kind")
}
