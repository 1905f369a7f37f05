package randutil

import (
	crand "crypto/rand"
	"encoding/binary"
	rand "math/rand/v2"
	"sync/atomic"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// SeedFunc produces the seed for the next random source. Sessions call it
// once per shoe so tests can pin every shuffle.
type SeedFunc func() int64

// New returns a *rand.Rand seeded deterministically from the provided int64.
// Both PCG words are derived from the one seed so call sites stay reproducible.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// CryptoSeed reads a seed from crypto/rand.
func CryptoSeed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		panic("failed to read random seed: " + err.Error())
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}

// FixedSeeds returns a SeedFunc that derives a new seed per call from base,
// so consecutive shoes differ but the whole sequence is reproducible. Safe
// for concurrent use. A zero base falls back to CryptoSeed.
func FixedSeeds(base int64) SeedFunc {
	if base == 0 {
		return CryptoSeed
	}
	var next atomic.Uint64
	next.Store(uint64(base))
	return func() int64 {
		return int64(mix(next.Add(goldenRatio64)))
	}
}

// splitmix64 finaliser
func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
