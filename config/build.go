package config

import (
	"fmt"
	"os"

	"github.com/infersim/infersim/sim"
	"github.com/infersim/infersim/trace"
)

// Build materializes a sim.Simulator and its trace.EventSink from a
// validated RunConfig. The sink is returned separately so the caller can
// Close it after Simulator.Run returns.
func Build(cfg *RunConfig) (*sim.Simulator, trace.EventSink, error) {
	sink, err := buildSink(cfg.Output)
	if err != nil {
		return nil, nil, err
	}

	workers := make([]*sim.Worker, len(cfg.Workers))
	for i, w := range cfg.Workers {
		workers[i] = sim.NewWorker(i, w.BatchSize)
	}

	scheduler, err := buildScheduler(cfg.Scheduler)
	if err != nil {
		return nil, nil, err
	}

	specs := make([]sim.GeneratorSpec, len(cfg.Incoming))
	for i, g := range cfg.Incoming {
		spec, err := buildGeneratorSpec(g)
		if err != nil {
			return nil, nil, err
		}
		specs[i] = spec
	}

	until, err := buildUntil(cfg.Until)
	if err != nil {
		return nil, nil, err
	}

	s := sim.NewSimulator(cfg.Seed, sink, workers, scheduler, specs, until)
	return s, sink, nil
}

func buildScheduler(c *SchedulerConfig) (sim.Scheduler, error) {
	switch c.Kind {
	case "fifo":
		return sim.NewFIFOScheduler(), nil
	case "random":
		return sim.NewRandomScheduler(), nil
	case "my":
		return sim.NewMyScheduler(c.Percentile, c.Step), nil
	default:
		return nil, &ConfigError{Field: "scheduler.kind", Reason: fmt.Sprintf("unknown kind %q", c.Kind)}
	}
}

func buildLengthSpec(c LengthConfig) (sim.LengthSpec, error) {
	switch c.Kind {
	case "constant":
		return sim.ConstantSpec{Value: c.Value}, nil
	case "normal":
		return sim.NormalSpec{Mean: c.Mean, StdDev: c.StdDev}, nil
	case "lognormal":
		return sim.LognormalSpec{Mu: c.Mu, Sigma: c.Sigma}, nil
	case "exp":
		return sim.ExpSpec{Lambda: c.Lambda, Offset: c.Offset, Factor: c.Factor}, nil
	default:
		return nil, &ConfigError{Field: "length.kind", Reason: fmt.Sprintf("unknown kind %q", c.Kind)}
	}
}

func buildGeneratorSpec(c IncomingGenConfig) (sim.GeneratorSpec, error) {
	length, err := buildLengthSpec(c.Length)
	if err != nil {
		return nil, err
	}
	incoming := sim.IncomingSpec{Length: length, Budget: c.Budget}
	switch c.Kind {
	case "one_batch":
		return sim.OneBatchSpec{Delay: c.Delay, NJobs: c.NJobs, Spec: incoming}, nil
	case "rate":
		return sim.RateSpec{Unit: c.Unit, Per: c.Per, Bursty: c.Bursty, Spec: incoming}, nil
	default:
		return nil, &ConfigError{Field: "incoming.kind", Reason: fmt.Sprintf("unknown kind %q", c.Kind)}
	}
}

func buildUntil(c *UntilConfig) (sim.UntilPredicate, error) {
	switch c.Kind {
	case "time":
		return sim.TimeUntil{Max: c.Max}, nil
	case "count":
		return sim.CountUntil{Max: int(c.Max)}, nil
	case "no_events":
		return sim.NoEventsUntil{}, nil
	default:
		return nil, &ConfigError{Field: "until.kind", Reason: fmt.Sprintf("unknown kind %q", c.Kind)}
	}
}

// buildSink composes cfg.Output.Sinks into one trace.EventSink. No
// output config, or a single "memory" entry, yields a bare MemorySink —
// the zero-ceremony default for tests and dump-config dry runs.
func buildSink(cfg *OutputConfig) (trace.EventSink, error) {
	if cfg == nil || len(cfg.Sinks) == 0 {
		return trace.NewMemorySink(), nil
	}
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating output dir: %w", err)
		}
	}

	sinks := make([]trace.EventSink, 0, len(cfg.Sinks))
	for _, kind := range cfg.Sinks {
		switch kind {
		case "memory":
			sinks = append(sinks, trace.NewMemorySink())
		case "csv":
			csvSink, err := trace.NewCSVSink(cfg.Dir)
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, csvSink)
		case "chrome":
			sinks = append(sinks, trace.NewChromeSink(cfg.Dir+"/trace.json"))
		case "parquet":
			sinks = append(sinks, trace.NewParquetSink(cfg.Dir))
		case "kafka":
			k, err := trace.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic)
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, k)
		default:
			return nil, &ConfigError{Field: "output.sinks", Reason: fmt.Sprintf("unknown sink %q", kind)}
		}
	}
	if len(sinks) == 1 {
		return sinks[0], nil
	}
	return trace.NewMultiSink(sinks...), nil
}
