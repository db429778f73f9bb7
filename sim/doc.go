// Package sim implements the InferSim discrete-event kernel: a monotonic
// clock and event queue (C1), a seeded RNG tree and service-time length
// model (C2), an arrival generator (C3), a fixed-batch-size worker (C4),
// and a pluggable scheduler with FIFO, Random, and deadline-aware "My"
// reference policies (C5).
//
// The simulator is strictly single-threaded and cooperative: Simulator.Run
// pops the earliest event, advances the clock, and dispatches it to its
// handler. Determinism end to end depends on two things holding: events at
// equal timestamps fire in insertion order, and every source of randomness
// is drawn from a PartitionedRNG child seeded from (root seed, label).
package sim
