// Package config loads layered RunConfig documents — a defaults block
// plus named presets, matching the teacher's sim/workload.WorkloadSpec
// YAML shape (gopkg.in/yaml.v3, strict field decoding) — and builds a
// sim.Simulator and trace.EventSink from the merged result.
package config

// RunConfig is the declarative description of one simulation run
// (spec.md §6's RunConfig fields table, expanded with the ambient output
// and workers sections SPEC_FULL.md adds).
type RunConfig struct {
	Seed      string              `yaml:"seed,omitempty"`
	Workers   []WorkerConfig      `yaml:"workers,omitempty"`
	Scheduler *SchedulerConfig    `yaml:"scheduler,omitempty"`
	Incoming  []IncomingGenConfig `yaml:"incoming,omitempty"`
	Until     *UntilConfig        `yaml:"until,omitempty"`
	Output    *OutputConfig       `yaml:"output,omitempty"`
}

// WorkerConfig declares one C4 worker.
type WorkerConfig struct {
	BatchSize int `yaml:"batch_size"`
}

// SchedulerConfig is the tagged union over the three reference policies
// (spec.md §4.5): Kind selects the variant, Percentile/Step apply only
// to "my".
type SchedulerConfig struct {
	Kind       string  `yaml:"kind"`
	Percentile float64 `yaml:"percentile,omitempty"`
	Step       float64 `yaml:"step,omitempty"`
}

// LengthConfig is the tagged union over sim.LengthSpec variants.
type LengthConfig struct {
	Kind   string  `yaml:"kind"`
	Value  float64 `yaml:"value,omitempty"`
	Mean   float64 `yaml:"mean,omitempty"`
	StdDev float64 `yaml:"stddev,omitempty"`
	Mu     float64 `yaml:"mu,omitempty"`
	Sigma  float64 `yaml:"sigma,omitempty"`
	Lambda float64 `yaml:"lambda,omitempty"`
	Offset float64 `yaml:"offset,omitempty"`
	Factor float64 `yaml:"factor,omitempty"`
}

// IncomingGenConfig is the tagged union over sim.GeneratorSpec variants
// (spec.md §4.3).
type IncomingGenConfig struct {
	Kind   string       `yaml:"kind"`
	Delay  float64      `yaml:"delay,omitempty"`
	NJobs  int          `yaml:"n_jobs,omitempty"`
	Unit   int          `yaml:"unit,omitempty"`
	Per    float64      `yaml:"per,omitempty"`
	Bursty bool         `yaml:"bursty,omitempty"`
	Length LengthConfig `yaml:"length"`
	Budget float64      `yaml:"budget"`
}

// UntilConfig is the tagged union over sim.UntilPredicate variants.
type UntilConfig struct {
	Kind string  `yaml:"kind"`
	Max  float64 `yaml:"max,omitempty"`
}

// OutputConfig selects where and how trace records are written. Sinks
// lists zero or more of "memory", "csv", "chrome", "parquet", "kafka";
// more than one composes via trace.MultiSink. Dir supports a literal
// "{preset}" token, expanded to the preset name plus a fresh
// google/uuid run identifier so repeated runs of the same preset never
// collide on disk.
type OutputConfig struct {
	Dir          string   `yaml:"dir,omitempty"`
	Sinks        []string `yaml:"sinks,omitempty"`
	KafkaBrokers []string `yaml:"kafka_brokers,omitempty"`
	KafkaTopic   string   `yaml:"kafka_topic,omitempty"`
}

// document is the on-disk shape: a defaults block merged under every
// named preset before Load returns it (spec.md §9, "presets are sugar
// over a merge, not a separate config language").
type document struct {
	Defaults RunConfig            `yaml:"defaults"`
	Presets  map[string]RunConfig `yaml:"presets"`
}
