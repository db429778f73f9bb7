package trace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParquetSink_WritesOneFilePerNonEmptyKind(t *testing.T) {
	dir := t.TempDir()
	s := NewParquetSink(dir)

	s.Emit(JobAdmittedRecord{ID: 1, AdmittedAt: 0, Deadline: 10, LengthSample: 2, P99: 3})
	s.Emit(JobFinishedRecord{ID: 1, StartedAt: 0, FinishedAt: 2})
	require.NoError(t, s.Close())

	admitted, err := os.Stat(filepath.Join(dir, "job_admitted.parquet"))
	require.NoError(t, err)
	assert.Greater(t, admitted.Size(), int64(0))

	finished, err := os.Stat(filepath.Join(dir, "job_finished.parquet"))
	require.NoError(t, err)
	assert.Greater(t, finished.Size(), int64(0))

	_, err = os.Stat(filepath.Join(dir, "batch_start.parquet"))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(dir, "job_dropped.parquet"))
	assert.True(t, os.IsNotExist(err))
}

func TestParquetSink_UnknownRecordKindFails(t *testing.T) {
	dir := t.TempDir()
	s := NewParquetSink(dir)

	s.Emit(unknownRecord{})
	sinkErr := s.Err()
	require.NotNil(t, sinkErr)
	assert.Contains(t, sinkErr.Error(), "unknown record kind")
}
