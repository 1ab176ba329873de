package interrupt

import (
	"github.com/AdminOfLife/pcjs/cpu/model"
	"github.com/AdminOfLife/pcjs/cpu/peripherals"
)

// Flags bits for the intFlags bitset (§3 Interrupt state).
type Flags uint8

const (
	FlagINTR  Flags = 1 << 0
	FlagTRAP  Flags = 1 << 1
	FlagHALT  Flags = 1 << 2
	FlagDMA   Flags = 1 << 3
)

// NotifyObserver is a registered watcher for explicit INT n calls;
// returning false suppresses the original interrupt, letting host code
// emulate a BIOS service in place of the architected handler.
type NotifyObserver func(vector int) (proceed bool)

// ReturnCallback fires exactly once, the next time linearAddr is the
// instruction about to execute.
type ReturnCallback func()

// Registry owns the interrupt notification and one-shot return hooks
// described in §6: a vector->observers map and a linear-address->
// one-shot-callback map, both cleared on reset.
type Registry struct {
	notify  map[int][]NotifyObserver
	returns map[uint32]ReturnCallback
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{notify: make(map[int][]NotifyObserver), returns: make(map[uint32]ReturnCallback)}
}

// Reset clears every registration, matching the core's reset behavior.
func (r *Registry) Reset() {
	r.notify = make(map[int][]NotifyObserver)
	r.returns = make(map[uint32]ReturnCallback)
}

// AddIntNotify registers fn against vector; fn is invoked only for an
// explicit INT n, never for INT3/INTO/divide/hardware IRQs/pushed-
// simulated INTs.
func (r *Registry) AddIntNotify(vector int, fn NotifyObserver) {
	r.notify[vector] = append(r.notify[vector], fn)
}

// AddIntReturn registers a one-shot callback for linearAddr.
func (r *Registry) AddIntReturn(linearAddr uint32, fn ReturnCallback) {
	r.returns[linearAddr] = fn
}

// FireReturn invokes and clears the one-shot callback for linearAddr, if
// one is registered.
func (r *Registry) FireReturn(linearAddr uint32) {
	if fn, ok := r.returns[linearAddr]; ok {
		delete(r.returns, linearAddr)
		fn()
	}
}

// NotifyExplicitInt runs every observer registered for vector; if any
// returns false the original interrupt is suppressed.
func (r *Registry) NotifyExplicitInt(vector int) (suppress bool) {
	for _, fn := range r.notify[vector] {
		if !fn(vector) {
			suppress = true
		}
	}
	return suppress
}

// CheckINTR implements the §4.8 priority order. order8086 selects the
// 8086-style ordering (hardware IRQ before trap); the 80286 inverts it.
// It returns true if an interrupt/trap was raised and CS:IP already
// redirected by CheckINTR itself via RaiseInterrupt.
func (u *Unit) CheckINTR(st *State, flags *Flags, pic peripherals.PIC, dma peripherals.DMA) (raised bool, vector int, err error) {
	if u.seg.NoIntr {
		u.seg.NoIntr = false
		return false, 0, nil
	}

	order8086 := u.model != model.I80286
	intrStep := func() (bool, int, error) {
		if *flags&FlagINTR == 0 || !st.Flags.InterruptEnable {
			return false, 0, nil
		}
		v := pic.IRRVector()
		if v < 0 {
			return false, 0, nil
		}
		*flags &^= FlagINTR | FlagHALT
		return true, int(v), u.RaiseInterrupt(st, int(v), -1)
	}
	trapStep := func() (bool, int, error) {
		if *flags&FlagTRAP == 0 {
			return false, 0, nil
		}
		*flags &^= FlagTRAP
		return true, 1, u.RaiseInterrupt(st, 1, -1)
	}

	if order8086 {
		if ok, v, e := intrStep(); ok || e != nil {
			return ok, v, e
		}
		if ok, v, e := trapStep(); ok || e != nil {
			return ok, v, e
		}
	} else {
		if ok, v, e := trapStep(); ok || e != nil {
			return ok, v, e
		}
		if ok, v, e := intrStep(); ok || e != nil {
			return ok, v, e
		}
	}

	if *flags&FlagDMA != 0 {
		if !dma.Check() {
			*flags &^= FlagDMA
		}
	}
	return false, 0, nil
}
