// Package randutil centralises how seeds become rand/v2 generators so every
// call site gets reproducible sequences from a single int64.
package randutil

import (
	rand "math/rand/v2"
	"time"
)

const goldenRatio64 = 0x9e3779b97f4a7c15

// New returns a *rand.Rand seeded deterministically from the provided int64.
// The two 64-bit PCG seeds are derived with a splitmix-style finalizer so
// nearby input seeds still produce unrelated streams.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// TimeSeed returns a wall-clock derived seed for runs where the caller did
// not pin one.
func TimeSeed() int64 {
	return time.Now().UnixNano()
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
