package writepipe

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/sqldef/tablegen/internal/randengine"
)

// ParseSeed decodes the CLI's 64-hex-digit --seed flag into 32 bytes.
func ParseSeed(hexSeed string) ([32]byte, error) {
	var seed [32]byte
	b, err := hex.DecodeString(hexSeed)
	if err != nil {
		return seed, fmt.Errorf("invalid seed: %w", err)
	}
	if len(b) != 32 {
		return seed, fmt.Errorf("seed must be 64 hex digits (32 bytes), got %d bytes", len(b))
	}
	copy(seed[:], b)
	return seed, nil
}

// RandomSeed draws 256 bits from the OS entropy source, used when no
// --seed is given.
func RandomSeed() ([32]byte, error) {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return seed, fmt.Errorf("reading entropy: %w", err)
	}
	return seed, nil
}

// seedingRNG is the top-level seed's fan-out source: each shard's RNG is
// seeded by sampling 32 bytes from it, so shards are independent yet the
// whole run is deterministic in the one run seed. It is always backed by
// ChaCha regardless of the CLI's chosen --rng engine for the shards
// themselves; its only job is deterministic fan-out.
type seedingRNG struct {
	eng randengine.Engine
}

func newSeedingRNG(seed [32]byte) (*seedingRNG, error) {
	eng, err := randengine.New(randengine.ChaCha, seed)
	if err != nil {
		return nil, err
	}
	return &seedingRNG{eng: eng}, nil
}

// Next returns the next shard's 32-byte seed.
func (s *seedingRNG) Next() [32]byte {
	var out [32]byte
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint64(out[i*8:], s.eng.Uint64())
	}
	return out
}
