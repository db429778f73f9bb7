package trace

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// CSVSink writes one CSV file per record kind under dir. No third-party
// CSV writer appears anywhere in the retrieved example pack, so this
// sink — like ChromeSink — stays on the standard library's encoding/csv
// (see DESIGN.md).
type CSVSink struct {
	baseSink
	dir     string
	writers map[string]*csv.Writer
	files   map[string]*os.File
}

// NewCSVSink creates dir if needed and returns a sink ready to Emit.
func NewCSVSink(dir string) (*CSVSink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("csv sink: %w", err)
	}
	return &CSVSink{
		baseSink: baseSink{name: "csv"},
		dir:      dir,
		writers:  make(map[string]*csv.Writer),
		files:    make(map[string]*os.File),
	}, nil
}

var csvHeaders = map[string][]string{
	"job_admitted": {"id", "admitted_at", "deadline", "length_sample", "p99"},
	"batch_start":  {"worker_id", "job_ids", "start_at", "predicted_end"},
	"job_finished": {"id", "started_at", "finished_at", "late"},
	"job_dropped":  {"id", "at", "reason"},
}

func (s *CSVSink) writerFor(kind string) (*csv.Writer, error) {
	if w, ok := s.writers[kind]; ok {
		return w, nil
	}
	f, err := os.Create(filepath.Join(s.dir, kind+".csv"))
	if err != nil {
		return nil, err
	}
	w := csv.NewWriter(f)
	if header, ok := csvHeaders[kind]; ok {
		if err := w.Write(header); err != nil {
			return nil, err
		}
	}
	s.files[kind] = f
	s.writers[kind] = w
	return w, nil
}

func (s *CSVSink) Emit(record Record) {
	w, err := s.writerFor(record.Kind())
	if err != nil {
		s.fail(err)
		return
	}
	row, err := csvRow(record)
	if err != nil {
		s.fail(err)
		return
	}
	if err := w.Write(row); err != nil {
		s.fail(err)
	}
}

func csvRow(record Record) ([]string, error) {
	switch r := record.(type) {
	case JobAdmittedRecord:
		return []string{
			strconv.FormatUint(r.ID, 10),
			strconv.FormatFloat(r.AdmittedAt, 'f', -1, 64),
			strconv.FormatFloat(r.Deadline, 'f', -1, 64),
			strconv.FormatFloat(r.LengthSample, 'f', -1, 64),
			strconv.FormatFloat(r.P99, 'f', -1, 64),
		}, nil
	case BatchStartRecord:
		ids := make([]string, len(r.JobIDs))
		for i, id := range r.JobIDs {
			ids[i] = strconv.FormatUint(id, 10)
		}
		return []string{
			strconv.Itoa(r.WorkerID),
			strings.Join(ids, ";"),
			strconv.FormatFloat(r.StartAt, 'f', -1, 64),
			strconv.FormatFloat(r.PredictedEnd, 'f', -1, 64),
		}, nil
	case JobFinishedRecord:
		return []string{
			strconv.FormatUint(r.ID, 10),
			strconv.FormatFloat(r.StartedAt, 'f', -1, 64),
			strconv.FormatFloat(r.FinishedAt, 'f', -1, 64),
			strconv.FormatBool(r.Late),
		}, nil
	case JobDroppedRecord:
		return []string{
			strconv.FormatUint(r.ID, 10),
			strconv.FormatFloat(r.At, 'f', -1, 64),
			r.Reason,
		}, nil
	default:
		return nil, fmt.Errorf("csv sink: unknown record kind %q", record.Kind())
	}
}

func (s *CSVSink) Close() error {
	var first error
	for kind, w := range s.writers {
		w.Flush()
		if err := w.Error(); err != nil && first == nil {
			first = err
		}
		if err := s.files[kind].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
