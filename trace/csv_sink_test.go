package trace

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVSink_WritesOneFilePerKindWithHeader(t *testing.T) {
	dir := t.TempDir()
	s, err := NewCSVSink(dir)
	require.NoError(t, err)

	s.Emit(JobAdmittedRecord{ID: 1, AdmittedAt: 0, Deadline: 10, LengthSample: 2, P99: 3})
	s.Emit(JobFinishedRecord{ID: 1, StartedAt: 0, FinishedAt: 2, Late: false})
	require.NoError(t, s.Close())

	admitted, err := os.ReadFile(filepath.Join(dir, "job_admitted.csv"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(admitted)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,admitted_at,deadline,length_sample,p99", lines[0])
	assert.Equal(t, "1,0,10,2,3", lines[1])

	finished, err := os.ReadFile(filepath.Join(dir, "job_finished.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(finished), "1,0,2,false")
}

func TestCSVSink_UnknownRecordKindFailsWithoutPanic(t *testing.T) {
	dir := t.TempDir()
	s, err := NewCSVSink(dir)
	require.NoError(t, err)

	s.Emit(unknownRecord{})
	sinkErr := s.Err()
	require.NotNil(t, sinkErr)
	assert.Contains(t, sinkErr.Error(), "unknown record kind")
}

type unknownRecord struct{}

func (unknownRecord) Kind() string { return "unknown" }
