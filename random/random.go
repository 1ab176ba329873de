// Package random centralises the one place the core needs
// non-determinism: giving general registers an unknown value on reset
// when the host has asked for it (emulating a real chip's undefined
// power-on state rather than the tidy all-zero state most emulators use
// for convenience).
package random

import "math/rand"

// Random is a small wrapper around a seeded source so that every
// instance of the core can have its own stream without disturbing the
// global math/rand source.
type Random struct {
	src *rand.Rand

	// ZeroSeed forces NoRewind to always return zero. Used by tests and by
	// regression harnesses that need a deterministic "random" reset.
	ZeroSeed bool
}

// NewRandom creates a Random seeded from seed. A seed of zero is valid
// and deterministic — see ZeroSeed for the equivalent runtime switch.
func NewRandom(seed int64) *Random {
	return &Random{src: rand.New(rand.NewSource(seed))}
}

// NoRewind returns a value in [0, n) without allowing the caller to
// rewind the stream by re-requesting the same value (there is nothing to
// rewind here; the name mirrors the reference emulator's contract that
// random values consumed during a step are never replayed).
func (r *Random) NoRewind(n int) int {
	if r.ZeroSeed || n <= 0 {
		return 0
	}
	return r.src.Intn(n)
}
