package cpu

import (
	"github.com/AdminOfLife/pcjs/cpu/interrupt"
	"github.com/AdminOfLife/pcjs/cpu/registers"
	"github.com/AdminOfLife/pcjs/cpu/segment"
	"github.com/AdminOfLife/pcjs/curated"
)

// SegmentSave is a segment register's descriptor cache in save/restore
// form: enough to reconstruct the live registers.Segment without
// re-walking a descriptor table that may have since changed.
type SegmentSave struct {
	Selector uint16
	Base     uint32
	Limit    uint32
	Null     bool
}

// ProtectedSave carries the 80286 descriptor-table state the payload's
// prot_state tuple names; it is present only when the segment unit is
// operating in protected mode at the time of the snapshot.
type ProtectedSave struct {
	MSW      uint16
	GDTBase  uint32
	GDTLimit uint16
	IDTBase  uint32
	IDTLimit uint16
	LDTSave  SegmentSave
	TSSSave  SegmentSave
}

// ScratchSave is the per-instruction decode scratch the payload names.
// RegEA/RegEAWrite are always zero here: this ExecCore never suspends
// mid-instruction (§5), so there is no live effective address to carry
// across a snapshot boundary — the fields exist only so the tuple shape
// matches the documented payload.
type ScratchSave struct {
	SegDataName  string
	SegStackName string
	OpFlags      bool  // lockPrefix
	OpPrefixes   uint8 // repMode: 0, 0xF2, or 0xF3
	IntFlags     uint8
	RegEA        uint32
	RegEAWrite   bool
}

// SpeedSave is the clock-accounting half of the payload. This core
// doesn't model a burst-mode clock divisor, so BurstDivisor and
// Multiplier are always 1; they're carried for shape compatibility with
// a host that might.
type SpeedSave struct {
	BurstDivisor int
	TotalCycles  int64
	Multiplier   int
}

// Snapshot is the save/restore payload: an opaque-to-callers,
// stable-across-minor-versions tuple. Memory contents are deliberately
// excluded — which installed bus blocks are RAM-backed (and therefore
// snapshot-able at all) is a host decision the bus's opaque Vtable
// doesn't expose to the core, and serialization formats beyond what the
// core exposes are out of scope here. A host wanting a full machine
// snapshot composes this with its own dump of whatever membus.RAM
// blocks it installed.
type Snapshot struct {
	GPRegs         [8]uint16 // AX, CX, DX, BX, SP, BP, SI, DI
	IP             uint16
	CS, DS, SS, ES SegmentSave
	PS             uint16
	Protected      *ProtectedSave
	Scratch        ScratchSave
	Speed          SpeedSave
}

func segSave(s *registers.Segment) SegmentSave {
	return SegmentSave{Selector: s.Selector, Base: s.Base, Limit: s.Limit, Null: s.Null}
}

func restoreSeg(s *registers.Segment, v SegmentSave) {
	s.Selector = v.Selector
	s.Base = v.Base
	s.Limit = v.Limit
	s.Null = v.Null
}

// Snapshot captures the CPU's architectural state into the documented
// payload shape.
func (c *CPU) Snapshot() Snapshot {
	s := Snapshot{
		GPRegs: [8]uint16{
			c.AX.Value(), c.CX.Value(), c.DX.Value(), c.BX.Value(),
			c.SP.Value(), c.BP.Value(), c.SI.Value(), c.DI.Value(),
		},
		IP: c.IP.Value(),
		CS: segSave(c.CS),
		DS: segSave(c.DS),
		SS: segSave(c.SS),
		ES: segSave(c.ES),
		PS: c.Flags.PS(),
		Scratch: ScratchSave{
			SegStackName: c.SS.Label(),
			OpFlags:      c.lockPrefix,
			OpPrefixes:   c.repMode,
			IntFlags:     uint8(c.intFlags),
		},
		Speed: SpeedSave{BurstDivisor: 1, TotalCycles: c.TotalCycles, Multiplier: 1},
	}
	if c.segOverride != nil {
		s.Scratch.SegDataName = c.segOverride.Label()
	}
	if c.Seg.Protected() {
		s.Protected = &ProtectedSave{
			MSW:      c.Seg.MSW,
			GDTBase:  c.Seg.GDTR.Base,
			GDTLimit: c.Seg.GDTR.Limit,
			IDTBase:  c.Seg.IDTR.Base,
			IDTLimit: c.Seg.IDTR.Limit,
			LDTSave:  segSave(c.LDTR),
			TSSSave:  segSave(c.TR),
		}
	}
	return s
}

// Restore installs a previously captured Snapshot, rejecting any
// segment-name scratch the restore payload names that this build
// doesn't recognize (CS/DS/SS/ES) rather than guessing a fallback.
func (c *CPU) Restore(s Snapshot) error {
	c.AX.Load(s.GPRegs[0])
	c.CX.Load(s.GPRegs[1])
	c.DX.Load(s.GPRegs[2])
	c.BX.Load(s.GPRegs[3])
	c.SP.Load(s.GPRegs[4])
	c.BP.Load(s.GPRegs[5])
	c.SI.Load(s.GPRegs[6])
	c.DI.Load(s.GPRegs[7])
	c.IP.Load(s.IP)

	restoreSeg(c.CS, s.CS)
	restoreSeg(c.DS, s.DS)
	restoreSeg(c.SS, s.SS)
	restoreSeg(c.ES, s.ES)
	c.Flags.SetPS(s.PS)

	c.lockPrefix = s.Scratch.OpFlags
	c.repMode = s.Scratch.OpPrefixes
	c.intFlags = interrupt.Flags(s.Scratch.IntFlags)

	switch s.Scratch.SegDataName {
	case "":
		c.segOverride = nil
	case c.CS.Label():
		c.segOverride = c.CS
	case c.DS.Label():
		c.segOverride = c.DS
	case c.SS.Label():
		c.segOverride = c.SS
	case c.ES.Label():
		c.segOverride = c.ES
	default:
		return curated.Errorf("restore: unrecognized segment override name %q", s.Scratch.SegDataName)
	}

	if s.Protected != nil {
		c.Seg.MSW = s.Protected.MSW
		c.Seg.GDTR = segment.Table{Base: s.Protected.GDTBase, Limit: s.Protected.GDTLimit}
		c.Seg.IDTR = segment.Table{Base: s.Protected.IDTBase, Limit: s.Protected.IDTLimit}
		restoreSeg(c.LDTR, s.Protected.LDTSave)
		restoreSeg(c.TR, s.Protected.TSSSave)
		c.Seg.LDT = segment.Table{Base: c.LDTR.Base, Limit: uint16(c.LDTR.Limit)}
	}

	c.TotalCycles = s.Speed.TotalCycles
	c.Prefetch.Flush(c.linearIP())
	return nil
}
