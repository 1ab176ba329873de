package cpu

import (
	"github.com/AdminOfLife/pcjs/cpu/decode"
	"github.com/AdminOfLife/pcjs/cpu/execution"
	"github.com/AdminOfLife/pcjs/cpu/registers"
	"github.com/AdminOfLife/pcjs/cpu/segment"
	"github.com/AdminOfLife/pcjs/curated"
)

// opTwoByteDispatch handles the 80286's 0x0F escape: fetch the second
// opcode byte and dispatch through table0F (§4.6 model deltas).
func opTwoByteDispatch(c *CPU) (execution.Result, error) {
	op, cost := c.fetchIPByte()
	handler := c.table0F[op]
	if handler == nil {
		return execution.Result{}, curated.Fault(curated.UD, 0, "unimplemented two-byte opcode 0x0F %#02x", op)
	}
	res, err := handler(c)
	if err != nil {
		return execution.Result{}, err
	}
	res.Cycles += cost
	return res, nil
}

// opPopCS is 0x0F's meaning on the 8086/8088, before the 80286 claimed
// the byte as a two-byte escape (§4.6 model deltas).
func opPopCS(c *CPU) (execution.Result, error) {
	v, err := c.pop()
	if err != nil {
		return execution.Result{}, err
	}
	c.CS.LoadReal(v)
	return execution.Result{Mnemonic: "POP CS", Cycles: 8, ByteCount: 1}, nil
}

// buildTable0F wires the 80286 descriptor-table and machine-status
// instructions, plus ARPL which despite living outside the 0x0F map is
// only ever decoded on a model with protected-mode support.
func (c *CPU) buildTable0F() {
	c.table0F[0x00] = opGroup0F00
	c.table0F[0x01] = opGroup0F01
	c.table0F[0x02] = opLAR
	c.table0F[0x03] = opLSL
	c.table0F[0x06] = opClts
	c.table[0x63] = opArpl
}

func opGroup0F00(c *CPU) (execution.Result, error) {
	f, ea, cost := c.fetchModRM()
	switch f.Reg {
	case 0: // SLDT
		if err := c.writeRM16(ea, c.LDTR.Selector); err != nil {
			return execution.Result{}, err
		}
	case 1: // STR
		if err := c.writeRM16(ea, c.TR.Selector); err != nil {
			return execution.Result{}, err
		}
	case 2: // LLDT
		v, err := c.readRM16(ea)
		if err != nil {
			return execution.Result{}, err
		}
		if err := c.Seg.Load(c.LDTR, v, segment.KindLDT); err != nil {
			return execution.Result{}, err
		}
		c.Seg.LDT = segment.Table{Base: c.LDTR.Base, Limit: uint16(c.LDTR.Limit)}
	case 3: // LTR
		v, err := c.readRM16(ea)
		if err != nil {
			return execution.Result{}, err
		}
		if err := c.Seg.Load(c.TR, v, segment.KindTSS); err != nil {
			return execution.Result{}, err
		}
	case 4: // VERR
		v, err := c.readRM16(ea)
		if err != nil {
			return execution.Result{}, err
		}
		scratch := registers.NewSegment("VERR")
		c.Flags.SetZF(c.Seg.Load(scratch, v, segment.KindData) == nil)
	case 5: // VERW
		v, err := c.readRM16(ea)
		if err != nil {
			return execution.Result{}, err
		}
		scratch := registers.NewSegment("VERW")
		c.Flags.SetZF(c.Seg.Load(scratch, v, segment.KindStack) == nil)
	default:
		return execution.Result{}, curated.Fault(curated.UD, 0, "unimplemented 0F00 /reg %d", f.Reg)
	}
	return execution.Result{Mnemonic: "0F00 group", Cycles: 17 + cost, ByteCount: 2}, nil
}

func opGroup0F01(c *CPU) (execution.Result, error) {
	f, ea, cost := c.fetchModRM()
	switch f.Reg {
	case 0: // SGDT
		if err := c.writePseudoDescriptor(ea, c.Seg.GDTR); err != nil {
			return execution.Result{}, err
		}
	case 1: // SIDT
		if err := c.writePseudoDescriptor(ea, c.Seg.IDTR); err != nil {
			return execution.Result{}, err
		}
	case 2: // LGDT
		t, err := c.readPseudoDescriptor(ea)
		if err != nil {
			return execution.Result{}, err
		}
		c.Seg.GDTR = t
	case 3: // LIDT
		t, err := c.readPseudoDescriptor(ea)
		if err != nil {
			return execution.Result{}, err
		}
		c.Seg.IDTR = t
	case 4: // SMSW
		if err := c.writeRM16(ea, c.Seg.MSW); err != nil {
			return execution.Result{}, err
		}
	case 6: // LMSW — bit 0 (PE) can be set but never cleared this way
		v, err := c.readRM16(ea)
		if err != nil {
			return execution.Result{}, err
		}
		kept := c.Seg.MSW & 0x0001
		c.Seg.MSW = (c.Seg.MSW &^ 0x000f) | (v & 0x000f) | kept
	default:
		return execution.Result{}, curated.Fault(curated.UD, 0, "unimplemented 0F01 /reg %d", f.Reg)
	}
	return execution.Result{Mnemonic: "0F01 group", Cycles: 19 + cost, ByteCount: 2}, nil
}

// writePseudoDescriptor stores a GDTR/IDTR-shaped 6-byte operand: a
// 16-bit limit followed by a 32-bit base, the high byte of which reads
// back as 0xFF on real 80286 silicon since the part only latches 24
// base bits.
func (c *CPU) writePseudoDescriptor(ea decode.EA, t segment.Table) error {
	addr, err := c.eaLinear(ea, 5, true)
	if err != nil {
		return err
	}
	c.Bus.WriteWord(addr, t.Limit)
	c.Bus.WriteWord(addr+2, uint16(t.Base))
	c.Bus.WriteByte(addr+4, uint8(t.Base>>16))
	c.Bus.WriteByte(addr+5, 0xff)
	return nil
}

// readPseudoDescriptor is LGDT/LIDT's counterpart.
func (c *CPU) readPseudoDescriptor(ea decode.EA) (segment.Table, error) {
	addr, err := c.eaLinear(ea, 5, false)
	if err != nil {
		return segment.Table{}, err
	}
	limit := c.Bus.ReadWord(addr)
	base := uint32(c.Bus.ReadWord(addr+2)) | uint32(c.Bus.ReadByte(addr+4))<<16
	return segment.Table{Base: base, Limit: limit}, nil
}

func opLAR(c *CPU) (execution.Result, error) {
	f, ea, cost := c.fetchModRM()
	v, err := c.readRM16(ea)
	if err != nil {
		return execution.Result{}, err
	}
	scratch := registers.NewSegment("LAR")
	ok := c.Seg.Load(scratch, v, segment.KindData) == nil
	c.Flags.SetZF(ok)
	if ok {
		c.reg16(f.Reg).Load(accessWord(scratch.Access))
	}
	return execution.Result{Mnemonic: "LAR", Cycles: 14 + cost, ByteCount: 2}, nil
}

func opLSL(c *CPU) (execution.Result, error) {
	f, ea, cost := c.fetchModRM()
	v, err := c.readRM16(ea)
	if err != nil {
		return execution.Result{}, err
	}
	scratch := registers.NewSegment("LSL")
	ok := c.Seg.Load(scratch, v, segment.KindData) == nil
	c.Flags.SetZF(ok)
	if ok {
		c.reg16(f.Reg).Load(uint16(scratch.Limit))
	}
	return execution.Result{Mnemonic: "LSL", Cycles: 14 + cost, ByteCount: 2}, nil
}

// accessWord reconstructs a plausible access-rights word (the byte
// LAR's documented result carries in bits 8-15) from the fields the
// registers package exposes.
func accessWord(a registers.Access) uint16 {
	var v uint16
	if a.Present {
		v |= 1 << 15
	}
	v |= uint16(a.DPL&0x3) << 13
	v |= uint16(a.Type&0xf) << 8
	return v
}

func opClts(c *CPU) (execution.Result, error) {
	c.Seg.MSW &^= 0x0008 // TS bit
	return execution.Result{Mnemonic: "CLTS", Cycles: 2, ByteCount: 2}, nil
}

// opArpl adjusts r/m16's RPL up to the calling register's RPL if it is
// lower (§4.6 model deltas); ARPL lives at primary opcode 0x63 but is
// only ever wired on models with protected-mode support.
func opArpl(c *CPU) (execution.Result, error) {
	f, ea, cost := c.fetchModRM()
	rm, err := c.readRM16(ea)
	if err != nil {
		return execution.Result{}, err
	}
	regRPL := c.reg16(f.Reg).Value() & 0x3
	rmRPL := rm & 0x3
	if rmRPL < regRPL {
		if err := c.writeRM16(ea, (rm &^ 0x3)|regRPL); err != nil {
			return execution.Result{}, err
		}
		c.Flags.SetZF(true)
	} else {
		c.Flags.SetZF(false)
	}
	return execution.Result{Mnemonic: "ARPL", Cycles: 10 + cost, ByteCount: 2}, nil
}
