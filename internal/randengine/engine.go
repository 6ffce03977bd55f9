// Package randengine implements the six named RNG engines the write
// pipeline can select between: chacha, hc128, isaac, isaac64, xorshift,
// pcg32. chacha is backed by golang.org/x/crypto/chacha20; pcg32 and
// xorshift follow their published algorithms; hc128, isaac and isaac64 are
// variants whose output streams differ from the reference algorithms (see
// each type's comment). All are wrapped in a common Engine interface so
// the evaluator's distributions stay oblivious to which one backs a given
// shard.
package randengine

import "math/rand"

// Engine is a 64-bit pseudo-random source, seeded once from 32 bytes
// (matching the write pipeline's "sample 32 bytes from the seeding RNG"
// per-shard seeding rule).
type Engine interface {
	Uint64() uint64
}

// Name enumerates the engines selectable from the CLI's --rng flag.
type Name string

const (
	ChaCha   Name = "chacha"
	HC128    Name = "hc128"
	ISAAC    Name = "isaac"
	ISAAC64  Name = "isaac64"
	XorShift Name = "xorshift"
	PCG32    Name = "pcg32"
)

// New constructs the named engine from a 32-byte seed.
func New(name Name, seed [32]byte) (Engine, error) {
	switch name {
	case ChaCha:
		return newChaCha(seed)
	case HC128:
		return newHC128(seed), nil
	case ISAAC:
		return newISAAC(seed), nil
	case ISAAC64:
		return newISAAC64(seed), nil
	case XorShift:
		return newXorShift(seed), nil
	case PCG32:
		return newPCG32(seed), nil
	default:
		return nil, &UnknownEngineError{Name: name}
	}
}

type UnknownEngineError struct{ Name Name }

func (e *UnknownEngineError) Error() string { return "randengine: unknown engine " + string(e.Name) }

// source64Adapter lets any Engine serve as a math/rand.Source64, which is
// how the evaluator gets Zipf/NormFloat64/Float64 sampling on top of a
// chosen engine without reimplementing those distributions.
type source64Adapter struct{ Engine }

func (s source64Adapter) Int63() int64  { return int64(s.Uint64() >> 1) }
func (s source64Adapter) Seed(int64)    {}
func (s source64Adapter) Uint64() uint64 { return s.Engine.Uint64() }

// NewRand wraps an Engine as a *rand.Rand for distributions the stdlib
// already implements correctly (Zipf, the normal distribution).
func NewRand(e Engine) *rand.Rand {
	return rand.New(source64Adapter{e})
}
