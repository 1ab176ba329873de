package cpu

import (
	"github.com/AdminOfLife/pcjs/cpu/decode"
	"github.com/AdminOfLife/pcjs/cpu/execution"
	"github.com/AdminOfLife/pcjs/cpu/registers"
	"github.com/AdminOfLife/pcjs/cpu/segment"
	"github.com/AdminOfLife/pcjs/curated"
)

func opMovR8Imm(i uint8) Handler {
	return func(c *CPU) (execution.Result, error) {
		v, cost := c.fetchIPByte()
		c.reg8(i).set(v)
		return execution.Result{Mnemonic: "MOV r8,imm8", Cycles: 4 + cost, ByteCount: 2}, nil
	}
}

func opMovR16Imm(i uint8) Handler {
	return func(c *CPU) (execution.Result, error) {
		v, cost := c.fetchIPWord()
		c.reg16(i).Load(v)
		return execution.Result{Mnemonic: "MOV r16,imm16", Cycles: 4 + cost, ByteCount: 3}, nil
	}
}

func opPushR16(i uint8) Handler {
	return func(c *CPU) (execution.Result, error) {
		var err error
		if i == 4 { // SP: model dichotomy (§4.6 edge cases)
			err = c.pushSP()
		} else {
			err = c.push(c.reg16(i).Value())
		}
		if err != nil {
			return execution.Result{}, err
		}
		return execution.Result{Mnemonic: "PUSH r16", Cycles: 11, ByteCount: 1}, nil
	}
}

func opPopR16(i uint8) Handler {
	return func(c *CPU) (execution.Result, error) {
		v, err := c.pop()
		if err != nil {
			return execution.Result{}, err
		}
		c.reg16(i).Load(v)
		return execution.Result{Mnemonic: "POP r16", Cycles: 8, ByteCount: 1}, nil
	}
}

func opXchgAXr16(i uint8) Handler {
	return func(c *CPU) (execution.Result, error) {
		r := c.reg16(i)
		ax := c.AX.Value()
		c.AX.Load(r.Value())
		r.Load(ax)
		return execution.Result{Mnemonic: "XCHG AX,r16", Cycles: 3, ByteCount: 1}, nil
	}
}

func opMovRM8R8(toReg bool) Handler {
	return func(c *CPU) (execution.Result, error) {
		f, ea, cost := c.fetchModRM()
		if toReg {
			v, err := c.readRM8(ea)
			if err != nil {
				return execution.Result{}, err
			}
			c.reg8(f.Reg).set(v)
		} else {
			v := c.reg8(f.Reg).get()
			if err := c.writeRM8(ea, v); err != nil {
				return execution.Result{}, err
			}
		}
		return execution.Result{Mnemonic: "MOV r/m8,r8", Cycles: 2 + cost, ByteCount: 2}, nil
	}
}

func opMovRM16R16(toReg bool) Handler {
	return func(c *CPU) (execution.Result, error) {
		f, ea, cost := c.fetchModRM()
		if toReg {
			v, err := c.readRM16(ea)
			if err != nil {
				return execution.Result{}, err
			}
			c.reg16(f.Reg).Load(v)
		} else {
			v := c.reg16(f.Reg).Value()
			if err := c.writeRM16(ea, v); err != nil {
				return execution.Result{}, err
			}
		}
		return execution.Result{Mnemonic: "MOV r/m16,r16", Cycles: 2 + cost, ByteCount: 2}, nil
	}
}

func opMovRM16Sreg(toSreg bool) Handler {
	return func(c *CPU) (execution.Result, error) {
		f, ea, cost := c.fetchModRM()
		seg := c.segReg(f.Reg)
		if toSreg {
			v, err := c.readRM16(ea)
			if err != nil {
				return execution.Result{}, err
			}
			if err := c.Seg.Load(seg, v, segKindFor(seg)); err != nil {
				return execution.Result{}, err
			}
		} else {
			if err := c.writeRM16(ea, seg.Selector); err != nil {
				return execution.Result{}, err
			}
		}
		return execution.Result{Mnemonic: "MOV Sreg,r/m16", Cycles: 2 + cost, ByteCount: 2}, nil
	}
}

func opMovRM8Imm(c *CPU) (execution.Result, error) {
	_, ea, cost := c.fetchModRM()
	v, c2 := c.fetchIPByte()
	if err := c.writeRM8(ea, v); err != nil {
		return execution.Result{}, err
	}
	return execution.Result{Mnemonic: "MOV r/m8,imm8", Cycles: 10 + cost + c2, ByteCount: 3}, nil
}

func opMovRM16Imm(c *CPU) (execution.Result, error) {
	_, ea, cost := c.fetchModRM()
	v, c2 := c.fetchIPWord()
	if err := c.writeRM16(ea, v); err != nil {
		return execution.Result{}, err
	}
	return execution.Result{Mnemonic: "MOV r/m16,imm16", Cycles: 10 + cost + c2, ByteCount: 4}, nil
}

func opLEA(c *CPU) (execution.Result, error) {
	f, ea, cost := c.fetchModRM()
	if ea.IsRegister {
		return execution.Result{}, curated.Errorf("LEA requires a memory operand")
	}
	c.reg16(f.Reg).Load(ea.Offset)
	return execution.Result{Mnemonic: "LEA r16,m", Cycles: 2 + cost, ByteCount: 2}, nil
}

func opPushF(c *CPU) (execution.Result, error) {
	if err := c.push(c.Flags.PS()); err != nil {
		return execution.Result{}, err
	}
	return execution.Result{Mnemonic: "PUSHF", Cycles: 10, ByteCount: 1}, nil
}

func opPopF(c *CPU) (execution.Result, error) {
	v, err := c.pop()
	if err != nil {
		return execution.Result{}, err
	}
	c.Flags.SetPS(v)
	return execution.Result{Mnemonic: "POPF", Cycles: 8, ByteCount: 1}, nil
}

func opSahf(c *CPU) (execution.Result, error) {
	lo := c.Flags.PS() & 0xff00
	c.Flags.SetPS(lo | uint16(c.AX.High()))
	return execution.Result{Mnemonic: "SAHF", Cycles: 4, ByteCount: 1}, nil
}

func opLahf(c *CPU) (execution.Result, error) {
	c.AX.LoadHigh(uint8(c.Flags.PS()))
	return execution.Result{Mnemonic: "LAHF", Cycles: 4, ByteCount: 1}, nil
}

func opCbw(c *CPU) (execution.Result, error) {
	c.AX.Load(uint16(int16(int8(c.AX.Low()))))
	return execution.Result{Mnemonic: "CBW", Cycles: 2, ByteCount: 1}, nil
}

func opCwd(c *CPU) (execution.Result, error) {
	if c.AX.IsNegative() {
		c.DX.Load(0xffff)
	} else {
		c.DX.Load(0)
	}
	return execution.Result{Mnemonic: "CWD", Cycles: 5, ByteCount: 1}, nil
}

func opXlat(c *CPU) (execution.Result, error) {
	addr, err := c.Seg.CheckRead(c.segFor(decode.SegDS), uint32(c.BX.Value())+uint32(c.AX.Low()), 0)
	if err != nil {
		return execution.Result{}, err
	}
	c.AX.LoadLow(c.Bus.ReadByte(addr))
	return execution.Result{Mnemonic: "XLAT", Cycles: 11, ByteCount: 1}, nil
}

// segKindFor reports the segment.Kind a loaded-into segment register
// corresponds to, for the Load call's NOINTR bookkeeping.
func segKindFor(seg *registers.Segment) segment.Kind {
	if seg.Label() == "SS" {
		return segment.KindStack
	}
	if seg.Label() == "CS" {
		return segment.KindCode
	}
	return segment.KindData
}
