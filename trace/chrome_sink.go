package trace

import (
	"encoding/json"
	"fmt"
	"os"
)

// chromeEvent is one entry in the Chrome "about:tracing" JSON array
// format (https://docs.google.com/document/d/1CvAClvFfyA5R-PhYUmn5OOQtYMH4h6I0nSsKchNAySU).
// "X" phase events carry a duration; "i" phase events are instantaneous.
type chromeEvent struct {
	Name string         `json:"name"`
	Ph   string         `json:"ph"`
	Ts   float64        `json:"ts"`
	Dur  float64        `json:"dur,omitempty"`
	Pid  int            `json:"pid"`
	Tid  int            `json:"tid"`
	Args map[string]any `json:"args,omitempty"`
}

// ChromeSink writes a single Chrome-trace JSON array, an alternative to
// CSVSink (spec.md §6: "both must be interchangeable"). Same stdlib
// justification as CSVSink applies to encoding/json here: no third-party
// JSON trace-format writer appears in the retrieved pack.
type ChromeSink struct {
	baseSink
	path   string
	events []chromeEvent
}

// NewChromeSink returns a sink that buffers events and writes path on
// Close.
func NewChromeSink(path string) *ChromeSink {
	return &ChromeSink{baseSink: baseSink{name: "chrome"}, path: path}
}

func (s *ChromeSink) Emit(record Record) {
	switch r := record.(type) {
	case JobAdmittedRecord:
		s.events = append(s.events, chromeEvent{
			Name: "JobAdmitted", Ph: "i", Ts: r.AdmittedAt, Pid: 1, Tid: 0,
			Args: map[string]any{"id": r.ID, "deadline": r.Deadline, "p99": r.P99},
		})
	case BatchStartRecord:
		s.events = append(s.events, chromeEvent{
			Name: "Batch", Ph: "X", Ts: r.StartAt, Dur: r.PredictedEnd - r.StartAt,
			Pid: 1, Tid: r.WorkerID + 1,
			Args: map[string]any{"job_ids": r.JobIDs},
		})
	case JobFinishedRecord:
		s.events = append(s.events, chromeEvent{
			Name: "JobFinished", Ph: "i", Ts: r.FinishedAt, Pid: 1, Tid: 0,
			Args: map[string]any{"id": r.ID, "late": r.Late},
		})
	case JobDroppedRecord:
		s.events = append(s.events, chromeEvent{
			Name: "JobDropped", Ph: "i", Ts: r.At, Pid: 1, Tid: 0,
			Args: map[string]any{"id": r.ID, "reason": r.Reason},
		})
	default:
		s.fail(fmt.Errorf("chrome sink: unknown record kind %q", record.Kind()))
	}
}

func (s *ChromeSink) Close() error {
	f, err := os.Create(s.path)
	if err != nil {
		s.fail(err)
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	if err := enc.Encode(s.events); err != nil {
		s.fail(err)
		return err
	}
	return nil
}
