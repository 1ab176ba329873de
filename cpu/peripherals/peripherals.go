// Package peripherals fixes the Go shape of the chips the core treats
// as external collaborators: the interrupt controller, DMA controller,
// timer chips, and the I/O port space. No chip is implemented here —
// that is out of scope for the core — but the core needs a concrete
// interface to call through, and a no-op implementation to run headless
// against in tests and in the CLI host.
package peripherals

// PIC is the interrupt controller's contract with checkINTR (§4.8).
type PIC interface {
	// UpdateINTR tells the controller whether it currently has a
	// pending vector to offer.
	UpdateINTR(raise bool)
	// IRRVector returns the highest-priority pending vector, or -1 if
	// none is pending (a spurious read).
	IRRVector() int16
	// DelayINTR models the one-instruction latency a real 8259 imposes
	// between raising its output line and the CPU's next poll.
	DelayINTR()
}

// DMA is the DMA controller's contract: while the DMA flag is set and
// no interrupt or trap was raised, CheckINTR polls Check and clears the
// flag once it reports no transfer in progress.
type DMA interface {
	Check() (inProgress bool)
}

// Timers is the contract for whatever timer/counter chips are attached
// (8253-class on the 80186, none on a bare 8088); ExecCore ticks them
// once per step regardless of whether anything is wired up.
type Timers interface {
	UpdateAll()
}

// PortBus is the I/O address space IN/OUT/INS/OUTS address, separate
// from the memory bus.
type PortBus interface {
	In8(port uint16) uint8
	In16(port uint16) uint16
	Out8(port uint16, v uint8)
	Out16(port uint16, v uint16)
}

// Null satisfies PIC, DMA, Timers and PortBus with the quiescent,
// nothing-attached answer to every call, so the core can run standalone.
type Null struct{}

func (Null) UpdateINTR(raise bool)      {}
func (Null) IRRVector() int16           { return -1 }
func (Null) DelayINTR()                 {}
func (Null) Check() (inProgress bool)   { return false }
func (Null) UpdateAll()                 {}
func (Null) In8(port uint16) uint8      { return 0xff }
func (Null) In16(port uint16) uint16    { return 0xffff }
func (Null) Out8(port uint16, v uint8)  {}
func (Null) Out16(port uint16, v uint16) {}
