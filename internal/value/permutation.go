package value

import "math"

// smallPermutationLimit is the length threshold at or below which a
// Permutation materialises a shuffled index table instead of running the
// Feistel network.
const smallPermutationLimit = 96

const feistelRounds = 8

// Permutation is a deterministic bijection on [0, len) keyed by a seed.
// Lengths <= 96 use a pre-shuffled table (Fisher-Yates under the same
// keyed generator); larger lengths use a balanced Feistel network with
// cycle walking.
type Permutation struct {
	length int

	// small-length path
	table []uint32

	// Feistel path
	m     uint64 // ceil(sqrt(length)), the digit modulus
	mask  uint64 // bitmask covering [0, m)
	round [feistelRounds]uint64
}

// NewPermutation builds a permutation over [0, length) driven by a
// 64-bit keyed pseudo-random function (any deterministic seed works; the
// write pipeline feeds this from the shard's seeded RNG).
func NewPermutation(length int, seed uint64) *Permutation {
	p := &Permutation{length: length}
	if length <= 0 {
		return p
	}
	rng := newSplitMix64(seed)
	if length <= smallPermutationLimit {
		table := make([]uint32, length)
		for i := range table {
			table[i] = uint32(i)
		}
		for i := length - 1; i > 0; i-- {
			j := int(rng.next() % uint64(i+1))
			table[i], table[j] = table[j], table[i]
		}
		p.table = table
		return p
	}

	m := uint64(math.Ceil(math.Sqrt(float64(length))))
	if m < 1 {
		m = 1
	}
	mask := uint64(1)
	for mask < m {
		mask <<= 1
	}
	mask--
	p.m = m
	p.mask = mask
	for i := range p.round {
		p.round[i] = rng.next()
	}
	return p
}

// Get returns the image of i under the permutation. Panics if i is out of [0, len).
func (p *Permutation) Get(i int) int {
	if i < 0 || i >= p.length {
		panic("value: permutation index out of range")
	}
	if p.table != nil {
		return int(p.table[i])
	}
	x := uint64(i)
	for {
		x = p.feistelRound(x)
		if x < uint64(p.length) {
			return int(x)
		}
		// cycle walking: re-apply until we land back inside [0, length)
	}
}

func (p *Permutation) feistelRound(x uint64) uint64 {
	a, b := x/p.m, x%p.m
	for _, key := range p.round {
		a, b = b, (a+feistelF(key, b, p.mask))%p.m
	}
	return a*p.m + b
}

// feistelF is the round function: a 64-bit multiply/xor-shift mix keyed
// by the round key and masked to [0, mask] with the precomputed bitmask;
// the result can exceed m-1, and the caller reduces it into [0, m) with a
// modulus.
func feistelF(key, b, mask uint64) uint64 {
	x := (b ^ key) * 0x9E3779B97F4A7C15
	x ^= x >> 29
	x *= 0xBF58476D1CE4E5B9
	x ^= x >> 32
	return x & mask
}

func (p *Permutation) Len() int { return p.length }

// splitMix64 is a tiny, fast, well-distributed 64-bit generator used only
// to derive the Permutation's internal keys/table from a single seed; it
// is not one of the six named rand.Engine implementations exposed to
// templates.
type splitMix64 struct{ state uint64 }

func newSplitMix64(seed uint64) *splitMix64 { return &splitMix64{state: seed} }

func (s *splitMix64) next() uint64 {
	s.state += 0x9E3779B97F4A7C15
	z := s.state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}
