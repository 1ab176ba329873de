// Package segment implements the per-segment descriptor cache and the
// real/protected mode loaders and limit checks described by the
// specification's SegmentUnit. It is grounded on the reference
// emulator's small-struct-with-methods register style, widened from a
// flat memory map to a descriptor-table-backed address translation.
package segment

import (
	"github.com/AdminOfLife/pcjs/curated"
	"github.com/AdminOfLife/pcjs/cpu/membus"
	"github.com/AdminOfLife/pcjs/cpu/model"
	"github.com/AdminOfLife/pcjs/cpu/registers"
)

// Kind identifies what a selector load is for, so the protected-mode
// loader can reject an incompatible descriptor type (§4.3).
type Kind int

const (
	KindData  Kind = iota // DS, ES load
	KindCode              // CS load (via JMP/CALL/IRET/task switch)
	KindStack             // SS load
	KindLDT               // LLDT
	KindTSS               // LTR
)

func (k Kind) String() string {
	switch k {
	case KindData:
		return "data"
	case KindCode:
		return "code"
	case KindStack:
		return "stack"
	case KindLDT:
		return "LDT"
	case KindTSS:
		return "TSS"
	}
	return "unknown"
}

// Table is a descriptor table's (base, limit) pair: GDTR, IDTR, or the
// cached LDT location installed by LLDT.
type Table struct {
	Base  uint32
	Limit uint16
}

// descType is the decoded access-byte type for a fetched descriptor.
type descType int

const (
	typeData descType = iota
	typeCode
	typeLDT
	typeTSSAvail
	typeTSSBusy
	typeCallGate
	typeTaskGate
	typeIntGate
	typeTrapGate
	typeUnknown
)

func (t descType) String() string {
	switch t {
	case typeData:
		return "data"
	case typeCode:
		return "code"
	case typeLDT:
		return "LDT"
	case typeTSSAvail:
		return "TSS(available)"
	case typeTSSBusy:
		return "TSS(busy)"
	case typeCallGate:
		return "call-gate"
	case typeTaskGate:
		return "task-gate"
	case typeIntGate:
		return "interrupt-gate"
	case typeTrapGate:
		return "trap-gate"
	}
	return "unknown"
}

type descriptor struct {
	base    uint32
	limit   uint32
	present bool
	dpl     uint8
	typ     descType
	writable bool // data segments only
	conforming bool // code segments only
}

// Unit owns the descriptor tables and the current privilege/mode state
// shared by every segment register. Each Segment register (CS, DS, SS,
// ES, and on the 80286 LDTR, TR) is a *registers.Segment the caller
// passes into Load/CheckRead/CheckWrite; Unit itself holds no register
// state beyond the tables.
type Unit struct {
	bus   *membus.Bus
	model model.Model

	GDTR Table
	IDTR Table
	LDT  Table // resolved from LDTR's selector by LLDT

	MSW uint16
	CPL uint8

	// NoIntr is the one-instruction interrupt/trap inhibit window opened
	// by a POP SS / MOV SS,r/m load (§4.6 edge cases, GLOSSARY NOINTR).
	NoIntr bool
}

// New creates a segment unit bound to bus for descriptor-table reads.
func New(bus *membus.Bus, m model.Model) *Unit {
	return &Unit{bus: bus, model: m}
}

// Protected reports whether the Machine Status Word's PE bit is set.
// Only meaningful on an 80286; earlier models are always in real mode.
func (u *Unit) Protected() bool {
	return u.model.ProtectedModeCapable() && u.MSW&0x0001 != 0
}

// Load dispatches to the real- or protected-mode loader for seg
// depending on the current mode.
func (u *Unit) Load(seg *registers.Segment, selector uint16, kind Kind) error {
	if !u.Protected() {
		return u.loadReal(seg, selector, kind)
	}
	return u.loadProtected(seg, selector, kind)
}

func (u *Unit) loadReal(seg *registers.Segment, selector uint16, kind Kind) error {
	seg.LoadReal(selector)
	if kind == KindStack {
		u.NoIntr = true
	}
	if kind == KindCode {
		u.CPL = 0
	}
	return nil
}

// loadProtected implements the six-step algorithm of §4.3.
func (u *Unit) loadProtected(seg *registers.Segment, selector uint16, kind Kind) error {
	// step 1: null selector
	if selector&0xfffc == 0 {
		if kind == KindCode || kind == KindStack {
			return curated.Fault(curated.NP, int(selector), "load %s: null selector used as %v", seg.Label(), kind)
		}
		seg.LoadNull(selector)
		return nil
	}

	table := u.GDTR
	if selector&0x0004 != 0 {
		table = u.LDT
	}

	// step 2: bounds check
	if uint32(selector&0xfff8)+7 > uint32(table.Limit) {
		return curated.Fault(curated.GP, int(selector&0xfffc), "load %s: selector %#04x exceeds table limit", seg.Label(), selector)
	}

	d, err := u.fetchDescriptor(table, selector)
	if err != nil {
		return err
	}

	// step 3: type compatibility
	if err := checkKind(kind, d); err != nil {
		return curated.Fault(curated.GP, int(selector&0xfffc), "load %s: %v", seg.Label(), err)
	}

	// step 4: present bit
	if !d.present {
		cat := curated.NP
		if kind == KindStack {
			cat = curated.SS
		}
		return curated.Fault(cat, int(selector&0xfffc), "load %s: descriptor not present", seg.Label())
	}

	access := registers.Access{Type: uint8(d.typ), DPL: d.dpl, Present: d.present, Writable: d.writable}
	seg.LoadCached(selector, d.base, d.limit, access)

	switch kind {
	case KindCode:
		u.CPL = uint8(selector & 0x3)
	case KindStack:
		u.NoIntr = true
	}
	return nil
}

func checkKind(kind Kind, d descriptor) error {
	switch kind {
	case KindData:
		if d.typ != typeData {
			return curated.Errorf("expected data descriptor, got type %v", d.typ)
		}
	case KindCode:
		if d.typ != typeCode {
			return curated.Errorf("expected code descriptor, got type %v", d.typ)
		}
	case KindStack:
		if d.typ != typeData || !d.writable {
			return curated.Errorf("expected writable data descriptor for SS, got type %v", d.typ)
		}
	case KindLDT:
		if d.typ != typeLDT {
			return curated.Errorf("expected LDT descriptor, got type %v", d.typ)
		}
	case KindTSS:
		if d.typ != typeTSSAvail && d.typ != typeTSSBusy {
			return curated.Errorf("expected TSS descriptor, got type %v", d.typ)
		}
	}
	return nil
}

// fetchDescriptor reads the 8-byte descriptor for selector out of table.
func (u *Unit) fetchDescriptor(table Table, selector uint16) (descriptor, error) {
	addr := table.Base + uint32(selector&0xfff8)
	var raw [8]uint8
	for i := range raw {
		raw[i] = u.bus.ReadByte(addr + uint32(i))
	}

	access := raw[5]
	present := access&0x80 != 0
	dpl := (access >> 5) & 0x3
	isCodeOrData := access&0x10 != 0

	base := uint32(raw[2]) | uint32(raw[3])<<8 | uint32(raw[4])<<16 | uint32(raw[7])<<24
	base &= 0x00ffffff
	limit := uint32(raw[0]) | uint32(raw[1])<<8 | (uint32(raw[6])&0x0f)<<16

	d := descriptor{base: base, limit: limit, present: present, dpl: dpl}

	if isCodeOrData {
		executable := access&0x08 != 0
		if executable {
			d.typ = typeCode
			d.conforming = access&0x04 != 0
		} else {
			d.typ = typeData
			d.writable = access&0x02 != 0
		}
		return d, nil
	}

	switch access & 0x0f {
	case 0x2:
		d.typ = typeLDT
	case 0x1:
		d.typ = typeTSSAvail
	case 0x3:
		d.typ = typeTSSBusy
	case 0x4:
		d.typ = typeCallGate
	case 0x5:
		d.typ = typeTaskGate
	case 0x6:
		d.typ = typeIntGate
	case 0x7:
		d.typ = typeTrapGate
	default:
		d.typ = typeUnknown
	}
	return d, nil
}

// IsTaskSelector reports whether selector names a TSS descriptor in the
// table it indexes, for far JMP/CALL's task-switch-selector detection
// (§12). It is side-effect free — a caller that gets true still drives
// the actual load through Load(..., KindTSS) to get presence/type
// validation and the TR update.
func (u *Unit) IsTaskSelector(selector uint16) bool {
	if !u.Protected() || selector&0xfffc == 0 {
		return false
	}
	table := u.GDTR
	if selector&0x0004 != 0 {
		table = u.LDT
	}
	if uint32(selector&0xfff8)+7 > uint32(table.Limit) {
		return false
	}
	d, err := u.fetchDescriptor(table, selector)
	if err != nil {
		return false
	}
	return d.typ == typeTSSAvail || d.typ == typeTSSBusy
}

// CheckRead validates a read of extra+1 bytes starting at offset off
// within seg, returning the linear address on success.
func (u *Unit) CheckRead(seg *registers.Segment, off uint32, extra uint32) (uint32, error) {
	return u.check(seg, off, extra, false)
}

// CheckWrite is CheckRead's write-side counterpart; on a data segment it
// additionally rejects writes to a read-only descriptor.
func (u *Unit) CheckWrite(seg *registers.Segment, off uint32, extra uint32) (uint32, error) {
	return u.check(seg, off, extra, true)
}

func (u *Unit) check(seg *registers.Segment, off, extra uint32, write bool) (uint32, error) {
	if seg.Null {
		return 0, curated.Fault(curated.GP, 0, "use of null segment %s", seg.Label())
	}

	if !u.Protected() {
		limitOff := off
		if u.model.SegmentWraps() {
			limitOff = off & 0xffff
		}
		return seg.Linear(limitOff), nil
	}

	if off+extra > seg.Limit {
		cat := curated.GP
		if seg.Label() == "SS" {
			cat = curated.SS
		}
		return 0, curated.Fault(cat, 0, "segment %s: offset %#x exceeds limit %#x", seg.Label(), off, seg.Limit)
	}
	if write && seg.Access.Type == uint8(typeData) && !seg.Access.Writable {
		return 0, curated.Fault(curated.GP, 0, "segment %s: write to read-only descriptor", seg.Label())
	}
	return seg.Linear(off), nil
}
