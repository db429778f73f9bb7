package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
)

var (
	validSchedulerKinds = map[string]bool{"fifo": true, "random": true, "my": true}
	validLengthKinds    = map[string]bool{"constant": true, "normal": true, "lognormal": true, "exp": true}
	validIncomingKinds  = map[string]bool{"one_batch": true, "rate": true}
	validUntilKinds     = map[string]bool{"time": true, "count": true, "no_events": true}
	validSinkKinds      = map[string]bool{"memory": true, "csv": true, "chrome": true, "parquet": true, "kafka": true}
)

// Load reads the YAML document at path, merges the named preset over its
// defaults block, validates the result, and expands the output
// directory's "{preset}" token. Unknown keys are rejected (strict
// decoding), matching the teacher's workload.LoadWorkloadSpec.
func Load(path, presetName string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var doc document
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	preset, ok := doc.Presets[presetName]
	if !ok {
		return nil, &ConfigError{Field: "preset", Reason: fmt.Sprintf("unknown preset %q", presetName)}
	}
	merged := mergeRunConfig(doc.Defaults, preset)
	if err := Validate(&merged); err != nil {
		return nil, err
	}
	expandOutputDir(&merged, presetName)
	return &merged, nil
}

// mergeRunConfig layers override's non-zero fields on top of base; this
// is what lets a preset set only what it needs to change (spec.md §9).
func mergeRunConfig(base, override RunConfig) RunConfig {
	merged := base
	if override.Seed != "" {
		merged.Seed = override.Seed
	}
	if len(override.Workers) > 0 {
		merged.Workers = override.Workers
	}
	if override.Scheduler != nil {
		merged.Scheduler = override.Scheduler
	}
	if len(override.Incoming) > 0 {
		merged.Incoming = override.Incoming
	}
	if override.Until != nil {
		merged.Until = override.Until
	}
	merged.Output = mergeOutput(base.Output, override.Output)
	return merged
}

func mergeOutput(base, override *OutputConfig) *OutputConfig {
	if override == nil {
		return base
	}
	if base == nil {
		return override
	}
	out := *base
	if override.Dir != "" {
		out.Dir = override.Dir
	}
	if len(override.Sinks) > 0 {
		out.Sinks = override.Sinks
	}
	if len(override.KafkaBrokers) > 0 {
		out.KafkaBrokers = override.KafkaBrokers
	}
	if override.KafkaTopic != "" {
		out.KafkaTopic = override.KafkaTopic
	}
	return &out
}

// Validate checks a merged RunConfig for the mistakes a hand-edited
// preset is most likely to make, mirroring the teacher's
// WorkloadSpec.Validate style: one ConfigError per first mistake found.
func Validate(cfg *RunConfig) error {
	if cfg.Seed == "" {
		return &ConfigError{Field: "seed", Reason: "must be non-empty"}
	}
	if len(cfg.Workers) == 0 {
		return &ConfigError{Field: "workers", Reason: "at least one worker required"}
	}
	for i, w := range cfg.Workers {
		if w.BatchSize <= 0 {
			return &ConfigError{Field: fmt.Sprintf("workers[%d].batch_size", i), Reason: "must be positive"}
		}
	}
	if cfg.Scheduler == nil || !validSchedulerKinds[cfg.Scheduler.Kind] {
		return &ConfigError{Field: "scheduler.kind", Reason: "must be one of fifo, random, my"}
	}
	if len(cfg.Incoming) == 0 {
		return &ConfigError{Field: "incoming", Reason: "at least one generator required"}
	}
	for i, g := range cfg.Incoming {
		prefix := fmt.Sprintf("incoming[%d]", i)
		if !validIncomingKinds[g.Kind] {
			return &ConfigError{Field: prefix + ".kind", Reason: "must be one of one_batch, rate"}
		}
		if !validLengthKinds[g.Length.Kind] {
			return &ConfigError{Field: prefix + ".length.kind", Reason: "must be one of constant, normal, lognormal, exp"}
		}
		if g.Budget <= 0 {
			return &ConfigError{Field: prefix + ".budget", Reason: "must be positive"}
		}
	}
	if cfg.Until == nil || !validUntilKinds[cfg.Until.Kind] {
		return &ConfigError{Field: "until.kind", Reason: "must be one of time, count, no_events"}
	}
	if cfg.Output != nil {
		for _, sink := range cfg.Output.Sinks {
			if !validSinkKinds[sink] {
				return &ConfigError{Field: "output.sinks", Reason: fmt.Sprintf("unknown sink %q", sink)}
			}
		}
	}
	return nil
}

// expandOutputDir replaces a literal "{preset}" token in the output
// directory with presetName plus a fresh run identifier, so concurrent
// or repeated runs of one preset never collide on disk (SPEC_FULL.md's
// resolution of the bare-preset-name collision risk).
func expandOutputDir(cfg *RunConfig, presetName string) {
	if cfg.Output == nil || cfg.Output.Dir == "" {
		return
	}
	if !strings.Contains(cfg.Output.Dir, "{preset}") {
		return
	}
	runID := fmt.Sprintf("%s-%s", presetName, uuid.NewString())
	cfg.Output.Dir = strings.ReplaceAll(cfg.Output.Dir, "{preset}", runID)
}

// Dump renders cfg back to YAML, for the dump-config CLI command and for
// the config round-trip property (spec.md §8): parse, dump, re-parse
// must be idempotent.
func Dump(cfg *RunConfig) (string, error) {
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("rendering config: %w", err)
	}
	return string(out), nil
}
