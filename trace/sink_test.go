package trace

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemorySink_ByKindFilters(t *testing.T) {
	s := NewMemorySink()
	s.Emit(JobAdmittedRecord{ID: 1})
	s.Emit(JobFinishedRecord{ID: 1})
	s.Emit(JobAdmittedRecord{ID: 2})

	admitted := s.ByKind("job_admitted")
	require.Len(t, admitted, 2)
	assert.Equal(t, uint64(1), admitted[0].(JobAdmittedRecord).ID)
	assert.Equal(t, uint64(2), admitted[1].(JobAdmittedRecord).ID)
}

func TestBaseSink_ErrClearsAfterRead(t *testing.T) {
	s := NewMemorySink()
	s.fail(errors.New("boom"))
	err := s.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "memory")
	assert.Nil(t, s.Err())
}

type stubSink struct {
	baseSink
	emitted []Record
	closed  bool
}

func (s *stubSink) Emit(r Record) { s.emitted = append(s.emitted, r) }
func (s *stubSink) Close() error  { s.closed = true; return nil }

func TestMultiSink_FansOutToEverySink(t *testing.T) {
	a := &stubSink{baseSink: baseSink{name: "a"}}
	b := &stubSink{baseSink: baseSink{name: "b"}}
	m := NewMultiSink(a, b)

	m.Emit(JobAdmittedRecord{ID: 7})
	assert.Len(t, a.emitted, 1)
	assert.Len(t, b.emitted, 1)

	require.NoError(t, m.Close())
	assert.True(t, a.closed)
	assert.True(t, b.closed)
}

func TestMultiSink_ErrReturnsFirstFailure(t *testing.T) {
	a := &stubSink{baseSink: baseSink{name: "a"}}
	b := &stubSink{baseSink: baseSink{name: "b"}}
	b.fail(errors.New("disk full"))
	m := NewMultiSink(a, b)

	err := m.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}
