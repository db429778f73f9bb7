package trace

import (
	"fmt"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
)

// parquet-go infers a file's schema from Go struct tags, so each record
// kind gets its own flat row type rather than reusing the trace.Record
// field names verbatim — this is the same shape the teacher pack's
// noahrauterberg-milvus-benchmark/offline-recall/main.go and
// load-generator/src/logger.go use: accumulate typed rows, then
// parquet.WriteFile(path, rows) once at the end.

type jobAdmittedRow struct {
	ID           uint64  `parquet:"id"`
	AdmittedAt   float64 `parquet:"admitted_at"`
	Deadline     float64 `parquet:"deadline"`
	LengthSample float64 `parquet:"length_sample"`
	P99          float64 `parquet:"p99"`
}

type batchStartRow struct {
	WorkerID     int     `parquet:"worker_id"`
	JobIDCount   int     `parquet:"job_id_count"`
	StartAt      float64 `parquet:"start_at"`
	PredictedEnd float64 `parquet:"predicted_end"`
}

type jobFinishedRow struct {
	ID         uint64  `parquet:"id"`
	StartedAt  float64 `parquet:"started_at"`
	FinishedAt float64 `parquet:"finished_at"`
	Late       bool    `parquet:"late"`
}

type jobDroppedRow struct {
	ID     uint64  `parquet:"id"`
	At     float64 `parquet:"at"`
	Reason string  `parquet:"reason"`
}

// ParquetSink buffers rows per record kind in memory and writes one
// columnar .parquet file per kind on Close, via
// github.com/parquet-go/parquet-go.
type ParquetSink struct {
	baseSink
	dir       string
	admitted  []jobAdmittedRow
	starts    []batchStartRow
	finished  []jobFinishedRow
	dropped   []jobDroppedRow
}

// NewParquetSink returns a sink that writes into dir on Close.
func NewParquetSink(dir string) *ParquetSink {
	return &ParquetSink{baseSink: baseSink{name: "parquet"}, dir: dir}
}

func (s *ParquetSink) Emit(record Record) {
	switch r := record.(type) {
	case JobAdmittedRecord:
		s.admitted = append(s.admitted, jobAdmittedRow{r.ID, r.AdmittedAt, r.Deadline, r.LengthSample, r.P99})
	case BatchStartRecord:
		s.starts = append(s.starts, batchStartRow{r.WorkerID, len(r.JobIDs), r.StartAt, r.PredictedEnd})
	case JobFinishedRecord:
		s.finished = append(s.finished, jobFinishedRow{r.ID, r.StartedAt, r.FinishedAt, r.Late})
	case JobDroppedRecord:
		s.dropped = append(s.dropped, jobDroppedRow{r.ID, r.At, r.Reason})
	default:
		s.fail(fmt.Errorf("parquet sink: unknown record kind %q", record.Kind()))
	}
}

func (s *ParquetSink) Close() error {
	write := func(name string, rows any) error {
		switch v := rows.(type) {
		case []jobAdmittedRow:
			if len(v) == 0 {
				return nil
			}
			return parquet.WriteFile(filepath.Join(s.dir, name+".parquet"), v)
		case []batchStartRow:
			if len(v) == 0 {
				return nil
			}
			return parquet.WriteFile(filepath.Join(s.dir, name+".parquet"), v)
		case []jobFinishedRow:
			if len(v) == 0 {
				return nil
			}
			return parquet.WriteFile(filepath.Join(s.dir, name+".parquet"), v)
		case []jobDroppedRow:
			if len(v) == 0 {
				return nil
			}
			return parquet.WriteFile(filepath.Join(s.dir, name+".parquet"), v)
		}
		return nil
	}

	var first error
	for name, rows := range map[string]any{
		"job_admitted": s.admitted,
		"batch_start":  s.starts,
		"job_finished": s.finished,
		"job_dropped":  s.dropped,
	} {
		if err := write(name, rows); err != nil && first == nil {
			first = err
			s.fail(err)
		}
	}
	return first
}
