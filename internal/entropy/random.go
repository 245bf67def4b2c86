// Package entropy provides the seedable random source threaded through a
// simulation run. Seeds come from crypto/rand when the caller has none.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand/v2"
)

// Source is a deterministic random source for one run. It is not safe for
// concurrent use; each run (or replica) owns its own Source.
type Source struct {
	seed uint64
	pcg  *mrand.PCG
	rng  *mrand.Rand
}

// New returns a Source seeded with seed. The same seed always yields the
// same sequence of draws.
func New(seed uint64) *Source {
	pcg := mrand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	return &Source{
		seed: seed,
		pcg:  pcg,
		rng:  mrand.New(pcg),
	}
}

// Seed returns the seed the source was created with.
func (s *Source) Seed() uint64 { return s.seed }

// Float returns a uniform float64 in [0, 1).
func (s *Source) Float() float64 {
	return s.rng.Float64()
}

// Uint64 implements math/rand/v2.Source so the same stream can drive
// distribution samplers.
func (s *Source) Uint64() uint64 {
	return s.pcg.Uint64()
}

// NewSeed returns a non-zero seed from crypto/rand.
func NewSeed() uint64 {
	for {
		if seed := cryptoRandUint64(); seed != 0 {
			return seed
		}
	}
}

// SeedOrNew returns seed unchanged when non-zero, otherwise a fresh seed.
func SeedOrNew(seed uint64) uint64 {
	if seed != 0 {
		return seed
	}
	return NewSeed()
}

func cryptoRandUint64() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand.Read does not fail on supported platforms.
		panic("entropy: crypto/rand unavailable: " + err.Error())
	}
	return binary.LittleEndian.Uint64(buf[:])
}
