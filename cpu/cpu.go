// Package cpu ties together the register file, memory bus, segment
// unit, prefetch queue, decoder and interrupt unit into one instruction
// step loop. It plays the role the reference emulator's hardware/cpu
// package plays for the 6507: the place where every collaborator's
// state is owned and the instruction table is dispatched from.
package cpu

import (
	"github.com/AdminOfLife/pcjs/cpu/execution"
	"github.com/AdminOfLife/pcjs/cpu/interrupt"
	"github.com/AdminOfLife/pcjs/cpu/membus"
	"github.com/AdminOfLife/pcjs/cpu/model"
	"github.com/AdminOfLife/pcjs/cpu/peripherals"
	"github.com/AdminOfLife/pcjs/cpu/prefetch"
	"github.com/AdminOfLife/pcjs/cpu/registers"
	"github.com/AdminOfLife/pcjs/cpu/segment"
	"github.com/AdminOfLife/pcjs/instance"
	"github.com/AdminOfLife/pcjs/logger"
)

// Handler dispatches one opcode; it reads further bytes itself, mutates
// CPU state, and returns the filled-in execution.Result the step loop
// charges cycles from.
type Handler func(c *CPU) (execution.Result, error)

// CPU is the top-level emulation core.
type CPU struct {
	Model model.Model
	inst  *instance.Instance

	AX, BX, CX, DX *registers.Register16
	SP, BP, SI, DI *registers.Register16
	IP             *registers.Register16

	CS, DS, SS, ES *registers.Segment
	LDTR, TR       *registers.Segment

	Flags *registers.Flags

	Bus       *membus.Bus
	Seg       *segment.Unit
	Prefetch  *prefetch.Queue
	Interrupt *interrupt.Unit
	Registry  *interrupt.Registry

	PIC    peripherals.PIC
	DMA    peripherals.DMA
	Timers peripherals.Timers
	Ports  peripherals.PortBus

	intFlags interrupt.Flags

	usePrefetch bool

	// per-instruction scratch, reset at the top of ExecCore's loop body
	// unless a prefix byte carries state forward (§4.7 step 1).
	segOverride *registers.Segment
	repMode     uint8  // 0 = none, 0xF2 = REPNE, 0xF3 = REP
	repPrefixIP uint16 // IP of the first prefix byte of the REP'd instruction, for mid-count interrupt resume
	lockPrefix  bool
	haveGate    bool

	table   [256]Handler
	table0F [256]Handler

	Halted bool

	// TotalCycles accumulates every cycle StepCPU has charged, the
	// speed.totalCycles field of the save/restore payload (§6).
	TotalCycles int64

	cancelRequested bool
}

// New constructs a CPU for the given model, sharing inst for preference
// and randomization state the way the reference emulator's instance
// package is shared across hardware components.
func New(m model.Model, inst *instance.Instance, bus *membus.Bus, ports peripherals.PortBus) *CPU {
	c := &CPU{
		Model: m,
		inst:  inst,

		AX: registers.NewRegister16(0, "AX"),
		BX: registers.NewRegister16(0, "BX"),
		CX: registers.NewRegister16(0, "CX"),
		DX: registers.NewRegister16(0, "DX"),
		SP: registers.NewRegister16(0, "SP"),
		BP: registers.NewRegister16(0, "BP"),
		SI: registers.NewRegister16(0, "SI"),
		DI: registers.NewRegister16(0, "DI"),
		IP: registers.NewRegister16(0, "IP"),

		CS:   registers.NewSegment("CS"),
		DS:   registers.NewSegment("DS"),
		SS:   registers.NewSegment("SS"),
		ES:   registers.NewSegment("ES"),
		LDTR: registers.NewSegment("LDTR"),
		TR:   registers.NewSegment("TR"),

		Flags: &registers.Flags{},

		Bus: bus,

		PIC:    peripherals.Null{},
		DMA:    peripherals.Null{},
		Timers: peripherals.Null{},
		Ports:  ports,

		usePrefetch: true,
	}
	if c.Ports == nil {
		c.Ports = peripherals.Null{}
	}

	c.Seg = segment.New(bus, m)
	c.Prefetch = prefetch.New(bus, m.QueueDepth())
	c.Interrupt = interrupt.New(bus, c.Seg, m)
	c.Registry = interrupt.NewRegistry()

	c.buildTables()
	c.Reset()
	return c
}

// SetPrefetch toggles prefetch-queue use at runtime, matching the
// specification's description of prefetch as an optional, test-both-
// paths build flag (§9 Design notes).
func (c *CPU) SetPrefetch(on bool) { c.usePrefetch = on }

// Reset implements §3 Lifecycles: zero GP registers, model-specific PS,
// CS:IP, cleared intFlags, flushed prefetch.
func (c *CPU) Reset() {
	randomize := c.inst != nil && c.inst.Prefs.RandomState
	for _, r := range []*registers.Register16{c.AX, c.BX, c.CX, c.DX, c.SP, c.BP, c.SI, c.DI} {
		if randomize {
			r.Load(uint16(c.inst.Random.NoRewind(0x10000)))
			continue
		}
		r.Load(0)
	}

	c.Flags.Reset()
	c.Flags.SetPS(c.Model.ResetPS())

	c.CS.LoadReal(c.Model.ResetCS())
	if c.Model.ProtectedModeCapable() {
		// the 80286 resets with CS base FF0000 despite selector F000 —
		// LoadReal's selector<<4 formula doesn't apply until the first
		// far jump/call/IRET loads CS through the descriptor mechanism.
		c.CS.Base = c.Model.ResetCSBase()
	}
	c.IP.Load(c.Model.ResetIP())
	c.DS.LoadReal(0)
	c.SS.LoadReal(0)
	c.ES.LoadReal(0)

	c.Seg.MSW = 0
	if c.Model.ProtectedModeCapable() {
		c.Seg.MSW = c.Model.ResetMSW()
	}
	c.Seg.IDTR = segment.Table{Base: 0, Limit: c.Model.ResetIDTLimit()}
	c.Seg.CPL = 0
	c.Seg.NoIntr = false

	c.intFlags = 0
	c.Halted = false
	c.Registry.Reset()

	c.Bus.SetA20(false)
	c.Prefetch.Flush(c.linearIP())

	logger.Logf(logger.Allow, "CPU", "reset: model=%s cs=%04x ip=%04x ps=%04x", c.Model, c.CS.Selector, c.IP.Value(), c.Flags.PS())
}

// linearIP returns the current CS.base + IP.
func (c *CPU) linearIP() uint32 {
	return c.CS.Linear(uint32(c.IP.Value()))
}

// AddIntNotify registers fn against vector n; it is invoked only for an
// explicit INT n, matching the §6 instrumentation surface.
func (c *CPU) AddIntNotify(vector int, fn interrupt.NotifyObserver) {
	c.Registry.AddIntNotify(vector, fn)
}

// AddIntReturn registers a one-shot callback fired the next time
// linearAddr is the instruction about to execute.
func (c *CPU) AddIntReturn(linearAddr uint32, fn interrupt.ReturnCallback) {
	c.Registry.AddIntReturn(linearAddr, fn)
}

// interruptState builds the interrupt.State view onto the live register
// file, for handing to c.Interrupt's methods.
func (c *CPU) interruptState() *interrupt.State {
	return &interrupt.State{Flags: c.Flags, CS: c.CS, SS: c.SS, IP: c.IP, SP: c.SP}
}
