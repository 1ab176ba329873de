package main

import (
	"fmt"

	"github.com/AdminOfLife/pcjs/cpu"
	"github.com/AdminOfLife/pcjs/cpu/membus"
	"github.com/AdminOfLife/pcjs/cpu/model"
	"github.com/AdminOfLife/pcjs/instance"
	"github.com/AdminOfLife/pcjs/preferences"
)

// parseModel turns the config-layer Model string into the cpu/model
// constant the core itself is built from. Kept out of the preferences
// package so that package never needs to import any part of cpu.
func parseModel(m preferences.Model) (model.Model, error) {
	switch m {
	case preferences.Model8088, "":
		return model.I8088, nil
	case preferences.Model80186:
		return model.I80186, nil
	case preferences.Model80286:
		return model.I80286, nil
	default:
		return 0, fmt.Errorf("unrecognized model %q", m)
	}
}

// busMasks returns the address-space size and the two addrMask values
// the A20 gate toggles between. On 8086-class parts the bus genuinely
// has 20 lines: gating A20 off wraps a 0xFFFFF+1 access back to 0, and
// gating it on exposes the one-megabyte alias above it a real XT's A20
// hack papers over. The 80286 runs with its full 24-bit bus regardless
// of A20 (membus.Bus models A20 as not architecturally present there).
func busMasks(m model.Model) (addrSpace, maskA20, maskFull uint32) {
	if m == model.I80286 {
		full := m.ResetAddrMask()
		return full + 1, full, full
	}
	return 0x200000, 0x0fffff, 0x1fffff
}

// buildMachine constructs a CPU and its backing RAM from p, ready for a
// program image to be loaded into the RAM and executed.
func buildMachine(p preferences.Preferences, randSeed int64) (*cpu.CPU, *membus.RAM, error) {
	m, err := parseModel(p.Model)
	if err != nil {
		return nil, nil, err
	}

	addrSpace, maskA20, maskFull := busMasks(m)
	bus := membus.New(addrSpace, maskA20, maskFull)
	ram := membus.NewRAM(0, addrSpace)
	bus.InstallBlocks(0, addrSpace, ram.Vtable())

	ins := instance.New(p, randSeed)
	c := cpu.New(m, ins, bus, nil)
	c.SetPrefetch(p.Prefetch)
	c.Bus.SetA20(p.A20)

	return c, ram, nil
}

// dumpRegisters writes a two-line architectural register snapshot,
// matching the kind of terse state line the reference emulator's
// debugger prints after a step.
func dumpRegisters(c *cpu.CPU) string {
	return fmt.Sprintf(
		"%s %s %s %s %s %s %s %s\nCS=%#04x IP=%#04x DS=%#04x SS=%#04x ES=%#04x PS=%#04x cycles=%d",
		c.AX, c.BX, c.CX, c.DX, c.SP, c.BP, c.SI, c.DI,
		c.CS.Selector, c.IP.Value(), c.DS.Selector, c.SS.Selector, c.ES.Selector, c.Flags.PS(),
		c.TotalCycles,
	)
}
