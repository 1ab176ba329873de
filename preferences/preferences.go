// Package preferences defines and persists the host-tunable knobs for a
// core instance. Where the reference emulator rolls its own disk format,
// this module persists to YAML via gopkg.in/yaml.v3 — the config
// serialization library present in the retrieved example corpus.
package preferences

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Model names the CPU variant to construct. Kept as a string at the
// config layer (rather than cpu/model.Model) so this package never
// imports cpu — preferences is loaded before the CPU exists.
type Model string

// Recognised Model values.
const (
	Model8088  Model = "8088"
	Model80186 Model = "80186"
	Model80286 Model = "80286"
)

// Preferences collects every value the host may want to override before
// constructing a CPU.
type Preferences struct {
	// Model selects the instruction set/timing variant.
	Model Model `yaml:"model"`

	// CyclesPerSecond records a clock rate, zero standing for the model
	// default. It is stored and persisted only; nothing in the core reads
	// it, since StepCPU budgets in cycles rather than wall-clock time.
	CyclesPerSecond int `yaml:"cycles_per_second"`

	// Prefetch enables the instruction prefetch queue model. Disabling it
	// routes decode straight through MemoryBus instead, fetching each
	// byte exactly where the queue would have fetched it so the two modes
	// read identical byte streams off the bus.
	Prefetch bool `yaml:"prefetch"`

	// A20 sets the initial state of the address-line-20 gate.
	A20 bool `yaml:"a20"`

	// RandomState initialises general registers to an unknown value on
	// reset instead of zero, mirroring real hardware's undefined power-on
	// state.
	RandomState bool `yaml:"random_state"`
}

// Defaults returns the preferences a freshly constructed host should
// start from.
func Defaults() Preferences {
	return Preferences{
		Model:    Model8088,
		Prefetch: true,
		A20:      false,
	}
}

// Load reads preferences from path, falling back to Defaults() for any
// field the file doesn't set and returning Defaults() outright if path
// does not exist.
func Load(path string) (Preferences, error) {
	p := Defaults()

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return p, err
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&p); err != nil {
		return p, err
	}
	return p, nil
}

// Save writes p to path as YAML, creating or truncating the file.
func (p Preferences) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := yaml.NewEncoder(f)
	defer enc.Close()
	return enc.Encode(p)
}
