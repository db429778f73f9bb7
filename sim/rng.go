package sim

import (
	"hash/fnv"
	"math/rand"
)

// PartitionedRNG provides deterministic, isolated RNG instances per
// labeled subsystem, derived from a single named root seed (spec.md §4.2:
// "the reference uses 'stripy zebra'"). The same label always returns the
// same *rand.Rand instance; two PartitionedRNGs built from the same seed
// string produce bit-identical streams per label, which is the whole of
// InferSim's determinism guarantee (spec.md §8 property 1).
//
// Not thread-safe: the simulator is single-threaded cooperative by design
// (spec.md §5), and so is this.
type PartitionedRNG struct {
	rootSeed int64
	children map[string]*rand.Rand
}

// NewPartitionedRNG hashes seed (an arbitrary UTF-8 string) into a root
// seed and returns an RNG tree rooted there.
func NewPartitionedRNG(seed string) *PartitionedRNG {
	return &PartitionedRNG{
		rootSeed: int64(fnv1a64(seed)),
		children: make(map[string]*rand.Rand),
	}
}

// ForLabel returns the deterministically-seeded *rand.Rand for label,
// creating and caching it on first use. Never returns nil.
func (p *PartitionedRNG) ForLabel(label string) *rand.Rand {
	if rng, ok := p.children[label]; ok {
		return rng
	}
	derived := p.rootSeed ^ int64(fnv1a64(label))
	rng := rand.New(rand.NewSource(derived))
	p.children[label] = rng
	return rng
}

func fnv1a64(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
