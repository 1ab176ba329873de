// Package interrupt implements IDT/IVT loading and synchronous/hardware
// interrupt dispatch and IRET, routing every CS reload through
// segment.Unit.Load so protected-mode descriptor lookup and CPL tracking
// apply the same way they do for a far JMP/CALL/RET. It depends on the
// segment and registers packages for the state it reads and mutates but
// owns none of that state itself, the same division of labor the
// segment package uses for its Load/CheckRead/CheckWrite operations.
package interrupt

import (
	"github.com/AdminOfLife/pcjs/curated"
	"github.com/AdminOfLife/pcjs/cpu/membus"
	"github.com/AdminOfLife/pcjs/cpu/model"
	"github.com/AdminOfLife/pcjs/cpu/registers"
	"github.com/AdminOfLife/pcjs/cpu/segment"
)

// GateType names the descriptor types loadIDTEntry accepts in protected
// mode.
type GateType int

const (
	GateInterrupt GateType = iota
	GateTrap
	GateTask
	GateInvalid
)

// IDTEntry is the resolved target of an interrupt vector: where to jump,
// and which flags the gate mask clears on entry.
type IDTEntry struct {
	Offset   uint16
	Selector uint16
	Gate     GateType
	Mask     uint16 // flags to clear (ANDed into PS) on dispatch
}

// bit positions duplicated from registers.Flags' PS layout; kept local
// since this package only ever ANDs/ORs whole words, never derives
// individual arithmetic flags.
const (
	maskTF = 1 << 8
	maskIF = 1 << 9
	maskNT = 1 << 14
)

// State is the slice of CPU state an interrupt dispatch reads and
// mutates: the stack (SS/SP), the code segment and instruction pointer,
// and the flags word.
type State struct {
	Flags *registers.Flags
	CS    *registers.Segment
	SS    *registers.Segment
	IP    *registers.Register16
	SP    *registers.Register16
}

// Unit owns the IDT/IVT location and dispatch logic.
type Unit struct {
	bus   *membus.Bus
	seg   *segment.Unit
	model model.Model
}

// New creates an interrupt unit sharing bus and seg with the rest of the
// CPU.
func New(bus *membus.Bus, seg *segment.Unit, m model.Model) *Unit {
	return &Unit{bus: bus, seg: seg, model: m}
}

// LoadIDTEntry resolves vector n to a jump target and gate mask, per
// §4.8. In real mode the IDT is the fixed-format IVT; in protected mode
// it is the table at seg.IDTR.
func (u *Unit) LoadIDTEntry(n int) (IDTEntry, error) {
	if !u.seg.Protected() {
		addr := u.seg.IDTR.Base + uint32(n*4)
		offset := u.bus.ReadWord(addr)
		selector := u.bus.ReadWord(addr + 2)
		return IDTEntry{Offset: offset, Selector: selector, Gate: GateInterrupt, Mask: ^uint16(maskTF | maskIF)}, nil
	}

	if uint32(n*8)+7 > uint32(u.seg.IDTR.Limit) {
		return IDTEntry{}, curated.Fault(curated.GP, n*8+2, "interrupt vector %d exceeds IDT limit", n)
	}

	addr := u.seg.IDTR.Base + uint32(n*8)
	offsetLo := u.bus.ReadWord(addr)
	selector := u.bus.ReadWord(addr + 2)
	access := u.bus.ReadByte(addr + 5)

	if access&0x80 == 0 {
		return IDTEntry{}, curated.Fault(curated.NP, n*8+2, "interrupt vector %d: gate not present", n)
	}

	var gate GateType
	var mask uint16
	switch access & 0x0f {
	case 0x6:
		gate, mask = GateInterrupt, ^uint16(maskNT|maskTF|maskIF)
	case 0x7:
		gate, mask = GateTrap, ^uint16(maskNT|maskTF)
	case 0x5:
		gate = GateTask
	default:
		return IDTEntry{}, curated.Fault(curated.GP, n*8+2, "interrupt vector %d: invalid gate type", n)
	}

	return IDTEntry{Offset: offsetLo, Selector: selector, Gate: gate, Mask: mask}, nil
}

// push decrements SP by 2 and writes v at SS:SP, mirroring raiseINT's
// documented push order and checked against SS's limit/access like any
// other protected-mode-aware stack access.
func (u *Unit) push(st *State, v uint16) error {
	st.SP.Add(^uint16(1), false) // SP -= 2, via the same add-complement trick registers.Subtract uses
	linear, err := u.seg.CheckWrite(st.SS, uint32(st.SP.Value()), 1)
	if err != nil {
		return err
	}
	u.bus.WriteWord(linear, v)
	return nil
}

func (u *Unit) pop(st *State) (uint16, error) {
	linear, err := u.seg.CheckRead(st.SS, uint32(st.SP.Value()), 1)
	if err != nil {
		return 0, err
	}
	v := u.bus.ReadWord(linear)
	st.SP.Add(2, false)
	return v, nil
}

// RaiseInterrupt pushes PS, CS, IP (and an error code, when errorCode is
// non-negative) and loads CS:IP from the IDT entry for vector n,
// applying its gate mask to the flags word. It does not implement the
// inter-privilege stack switch (TSS-resolved SS0:SP0, with the old
// SS:SP pushed onto the new stack) a gate whose DPL is more privileged
// than the interrupted CPL requires; this unit only ever pushes onto
// the stack already in SS:SP.
func (u *Unit) RaiseInterrupt(st *State, n int, errorCode int) error {
	entry, err := u.LoadIDTEntry(n)
	if err != nil {
		return err
	}
	if entry.Gate == GateTask {
		return curated.Errorf("task gates are not dispatched by RaiseInterrupt")
	}

	if err := u.push(st, st.Flags.PS()); err != nil {
		return err
	}
	if err := u.push(st, st.CS.Selector); err != nil {
		return err
	}
	if err := u.push(st, st.IP.Value()); err != nil {
		return err
	}
	if errorCode >= 0 {
		if err := u.push(st, uint16(errorCode)); err != nil {
			return err
		}
	}

	st.Flags.SetPS(st.Flags.PS() & entry.Mask)

	if err := u.seg.Load(st.CS, entry.Selector, segment.KindCode); err != nil {
		return err
	}
	st.IP.Load(entry.Offset)
	return nil
}

// IRET pops IP, CS and PS and reloads CS through segment.Unit.Load,
// exactly like opRetFar's far return — in real mode that's LoadReal's
// selector<<4 formula; in protected mode it's the full descriptor
// lookup, which also updates CPL from the popped selector's RPL. It
// does not implement task-return (a popped PS with NT=1 should resume
// the back-linked task via its TSS instead of popping IP/CS/PS) or the
// privilege-raising SS:SP pop a return to a less privileged CS RPL
// requires; both need machinery (TSS-based stack resolution) this unit
// doesn't have on the RaiseInterrupt side either, so there's nothing
// for this side to undo yet.
func (u *Unit) IRET(st *State) error {
	ip, err := u.pop(st)
	if err != nil {
		return err
	}
	cs, err := u.pop(st)
	if err != nil {
		return err
	}
	ps, err := u.pop(st)
	if err != nil {
		return err
	}
	if err := u.seg.Load(st.CS, cs, segment.KindCode); err != nil {
		return err
	}
	st.IP.Load(ip)
	st.Flags.SetPS(ps)
	return nil
}
