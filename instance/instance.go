// Package instance defines those parts of a core instantiation that may
// vary between two otherwise-identical CPUs running side by side (their
// preferences, their random source) without being part of the CPU state
// itself. Useful when running more than one core in parallel — a
// regression harness comparing 8088 and 80286 behavior on the same
// program, for instance.
package instance

import (
	"github.com/AdminOfLife/pcjs/preferences"
	"github.com/AdminOfLife/pcjs/random"
)

// Instance carries the non-architectural configuration of one running
// core.
type Instance struct {
	Prefs  preferences.Preferences
	Random *random.Random
}

// New creates an Instance from the given preferences, seeding its random
// source from randSeed (zero included; the current time is never used).
func New(prefs preferences.Preferences, randSeed int64) *Instance {
	return &Instance{
		Prefs:  prefs,
		Random: random.NewRandom(randSeed),
	}
}

// Normalise forces the instance into a known-deterministic state, for
// use in regression tests where every run must start identically.
func (ins *Instance) Normalise() {
	ins.Random.ZeroSeed = true
	ins.Prefs.RandomState = false
}
