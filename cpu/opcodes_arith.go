package cpu

import (
	"github.com/AdminOfLife/pcjs/cpu/decode"
	"github.com/AdminOfLife/pcjs/cpu/execution"
	"github.com/AdminOfLife/pcjs/cpu/registers"
	"github.com/AdminOfLife/pcjs/curated"
)

// aluOp names one of the eight arithmetic/logical operations that share
// a ModRM/immediate encoding family (ADD/OR/ADC/SBB/AND/SUB/XOR/CMP).
type aluOp int

const (
	opADD aluOp = iota
	opOR
	opADC
	opSBB
	opAND
	opSUB
	opXOR
	opCMP
)

func (op aluOp) String() string {
	return [...]string{"ADD", "OR", "ADC", "SBB", "AND", "SUB", "XOR", "CMP"}[op]
}

// apply computes op(a, b) against f, returning the result to store
// (callers for CMP/TEST discard it — the triple is what matters).
func (op aluOp) apply(f *registers.Flags, a, b, size uint32) uint32 {
	switch op {
	case opADD:
		return f.Add(a, b, false, size)
	case opADC:
		return f.Add(a, b, f.CF(), size)
	case opSUB, opCMP:
		return f.Sub(a, b, false, size)
	case opSBB:
		return f.Sub(a, b, f.CF(), size)
	case opAND:
		return f.Logic(a&b, size)
	case opOR:
		return f.Logic(a|b, size)
	case opXOR:
		return f.Logic(a^b, size)
	}
	return 0
}

func opArithRM8R8(op aluOp, regIsDest bool) Handler {
	return func(c *CPU) (execution.Result, error) {
		f, ea, cost := c.fetchModRM()
		rm, err := c.readRM8(ea)
		if err != nil {
			return execution.Result{}, err
		}
		reg := c.reg8(f.Reg)
		var result uint32
		if regIsDest {
			result = op.apply(c.Flags, uint32(reg.get()), uint32(rm), registers.SizeByte)
		} else {
			result = op.apply(c.Flags, uint32(rm), uint32(reg.get()), registers.SizeByte)
		}
		if op != opCMP {
			if regIsDest {
				reg.set(uint8(result))
			} else if err := c.writeRM8(ea, uint8(result)); err != nil {
				return execution.Result{}, err
			}
		}
		return execution.Result{Mnemonic: op.String() + " r/m8,r8", Cycles: 3 + cost, ByteCount: 2}, nil
	}
}

func opArithRM16R16(op aluOp, regIsDest bool) Handler {
	return func(c *CPU) (execution.Result, error) {
		f, ea, cost := c.fetchModRM()
		rm, err := c.readRM16(ea)
		if err != nil {
			return execution.Result{}, err
		}
		reg := c.reg16(f.Reg)
		var result uint32
		if regIsDest {
			result = op.apply(c.Flags, uint32(reg.Value()), uint32(rm), registers.SizeWord)
		} else {
			result = op.apply(c.Flags, uint32(rm), uint32(reg.Value()), registers.SizeWord)
		}
		if op != opCMP {
			if regIsDest {
				reg.Load(uint16(result))
			} else if err := c.writeRM16(ea, uint16(result)); err != nil {
				return execution.Result{}, err
			}
		}
		return execution.Result{Mnemonic: op.String() + " r/m16,r16", Cycles: 3 + cost, ByteCount: 2}, nil
	}
}

func opArithALImm8(op aluOp) Handler {
	return func(c *CPU) (execution.Result, error) {
		imm, cost := c.fetchIPByte()
		result := op.apply(c.Flags, uint32(c.AX.Low()), uint32(imm), registers.SizeByte)
		if op != opCMP {
			c.AX.LoadLow(uint8(result))
		}
		return execution.Result{Mnemonic: op.String() + " AL,imm8", Cycles: 4 + cost, ByteCount: 2}, nil
	}
}

func opArithAXImm16(op aluOp) Handler {
	return func(c *CPU) (execution.Result, error) {
		imm, cost := c.fetchIPWord()
		result := op.apply(c.Flags, uint32(c.AX.Value()), uint32(imm), registers.SizeWord)
		if op != opCMP {
			c.AX.Load(uint16(result))
		}
		return execution.Result{Mnemonic: op.String() + " AX,imm16", Cycles: 4 + cost, ByteCount: 3}, nil
	}
}

func opTestRM8R8(c *CPU) (execution.Result, error) {
	f, ea, cost := c.fetchModRM()
	rm, err := c.readRM8(ea)
	if err != nil {
		return execution.Result{}, err
	}
	c.Flags.Logic(uint32(rm)&uint32(c.reg8(f.Reg).get()), registers.SizeByte)
	return execution.Result{Mnemonic: "TEST r/m8,r8", Cycles: 3 + cost, ByteCount: 2}, nil
}

func opTestRM16R16(c *CPU) (execution.Result, error) {
	f, ea, cost := c.fetchModRM()
	rm, err := c.readRM16(ea)
	if err != nil {
		return execution.Result{}, err
	}
	c.Flags.Logic(uint32(rm)&uint32(c.reg16(f.Reg).Value()), registers.SizeWord)
	return execution.Result{Mnemonic: "TEST r/m16,r16", Cycles: 3 + cost, ByteCount: 2}, nil
}

func opTestALImm8(c *CPU) (execution.Result, error) {
	imm, cost := c.fetchIPByte()
	c.Flags.Logic(uint32(c.AX.Low())&uint32(imm), registers.SizeByte)
	return execution.Result{Mnemonic: "TEST AL,imm8", Cycles: 4 + cost, ByteCount: 2}, nil
}

func opTestAXImm16(c *CPU) (execution.Result, error) {
	imm, cost := c.fetchIPWord()
	c.Flags.Logic(uint32(c.AX.Value())&uint32(imm), registers.SizeWord)
	return execution.Result{Mnemonic: "TEST AX,imm16", Cycles: 4 + cost, ByteCount: 3}, nil
}

func opIncR16(i uint8) Handler {
	return func(c *CPU) (execution.Result, error) {
		r := c.reg16(i)
		r.Load(uint16(c.Flags.Inc(uint32(r.Value()), registers.SizeWord)))
		return execution.Result{Mnemonic: "INC r16", Cycles: 3, ByteCount: 1}, nil
	}
}

func opDecR16(i uint8) Handler {
	return func(c *CPU) (execution.Result, error) {
		r := c.reg16(i)
		r.Load(uint16(c.Flags.Dec(uint32(r.Value()), registers.SizeWord)))
		return execution.Result{Mnemonic: "DEC r16", Cycles: 3, ByteCount: 1}, nil
	}
}

// group80 dispatches 0x80-0x83: an ALU op selected by the ModRM /reg
// field, against an r/m operand and an immediate whose width is either
// 1 or 2 bytes (opSize) but which is always sign-extended to match the
// operand width for 0x83 (immSize==1 but opSize==2).
func opGroup80(wide bool, immSize int) Handler {
	return func(c *CPU) (execution.Result, error) {
		f, ea, cost := c.fetchModRM()
		op := aluOp(f.Reg)

		if !wide {
			imm, c2 := c.fetchIPByte()
			rm, err := c.readRM8(ea)
			if err != nil {
				return execution.Result{}, err
			}
			result := op.apply(c.Flags, uint32(rm), uint32(imm), registers.SizeByte)
			if op != opCMP {
				if err := c.writeRM8(ea, uint8(result)); err != nil {
					return execution.Result{}, err
				}
			}
			return execution.Result{Mnemonic: op.String() + " r/m8,imm8", Cycles: 4 + cost + c2, ByteCount: 3}, nil
		}

		var imm uint16
		var c2 int
		if immSize == 2 {
			imm, c2 = c.fetchIPWord()
		} else {
			imm, c2 = c.fetchIPDisp8()
		}
		rm, err := c.readRM16(ea)
		if err != nil {
			return execution.Result{}, err
		}
		result := op.apply(c.Flags, uint32(rm), uint32(imm), registers.SizeWord)
		if op != opCMP {
			if err := c.writeRM16(ea, uint16(result)); err != nil {
				return execution.Result{}, err
			}
		}
		return execution.Result{Mnemonic: op.String() + " r/m16,imm", Cycles: 4 + cost + c2, ByteCount: 3}, nil
	}
}

// group F6/F7 (/reg selects TEST, NOT, NEG, MUL, IMUL, DIV, IDIV)
func opGroupF6(wide bool) Handler {
	return func(c *CPU) (execution.Result, error) {
		f, ea, cost := c.fetchModRM()
		size := registers.SizeByte
		if wide {
			size = registers.SizeWord
		}

		get := func() (uint32, int, error) {
			if wide {
				v, err := c.readRM16(ea)
				return uint32(v), 0, err
			}
			v, err := c.readRM8(ea)
			return uint32(v), 0, err
		}
		put := func(v uint32) error {
			if wide {
				return c.writeRM16(ea, uint16(v))
			}
			return c.writeRM8(ea, uint8(v))
		}

		v, _, err := get()
		if err != nil {
			return execution.Result{}, err
		}

		switch f.Reg {
		case 0, 1: // TEST r/m,imm
			var imm uint32
			var c2 int
			if wide {
				iv, cc := c.fetchIPWord()
				imm, c2 = uint32(iv), cc
			} else {
				iv, cc := c.fetchIPByte()
				imm, c2 = uint32(iv), cc
			}
			c.Flags.Logic(v&imm, size)
			return execution.Result{Mnemonic: "TEST r/m,imm", Cycles: 5 + cost + c2, ByteCount: 3}, nil
		case 2: // NOT
			if err := put(^v & (size - 1)); err != nil {
				return execution.Result{}, err
			}
			return execution.Result{Mnemonic: "NOT r/m", Cycles: 3 + cost, ByteCount: 2}, nil
		case 3: // NEG
			r := c.Flags.Neg(v, size)
			if err := put(r); err != nil {
				return execution.Result{}, err
			}
			return execution.Result{Mnemonic: "NEG r/m", Cycles: 3 + cost, ByteCount: 2}, nil
		case 4: // MUL
			if wide {
				r := uint32(c.AX.Value()) * v
				c.AX.Load(uint16(r))
				c.DX.Load(uint16(r >> 16))
				c.Flags.SetCF(c.DX.Value() != 0)
				c.Flags.SetOF(c.DX.Value() != 0)
			} else {
				r := uint32(c.AX.Low()) * v
				c.AX.Load(uint16(r))
				c.Flags.SetCF(uint8(r>>8) != 0)
				c.Flags.SetOF(uint8(r>>8) != 0)
			}
			return execution.Result{Mnemonic: "MUL r/m", Cycles: 70 + cost, ByteCount: 2}, nil
		case 5: // IMUL
			if wide {
				r := int32(int16(c.AX.Value())) * int32(int16(v))
				c.AX.Load(uint16(r))
				c.DX.Load(uint16(r >> 16))
				ext := int32(int16(uint16(r)))
				of := r != ext
				c.Flags.SetCF(of)
				c.Flags.SetOF(of)
			} else {
				r := int16(int8(c.AX.Low())) * int16(int8(v))
				c.AX.Load(uint16(r))
				ext := int16(int8(uint8(r)))
				of := r != ext
				c.Flags.SetCF(of)
				c.Flags.SetOF(of)
			}
			return execution.Result{Mnemonic: "IMUL r/m", Cycles: 80 + cost, ByteCount: 2}, nil
		case 6: // DIV
			if wide {
				dividend := uint32(c.DX.Value())<<16 | uint32(c.AX.Value())
				if v == 0 || dividend/v > 0xffff {
					return execution.Result{}, curated.Fault(curated.DE, 0, "DIV overflow or divide by zero")
				}
				q, r := dividend/v, dividend%v
				c.AX.Load(uint16(q))
				c.DX.Load(uint16(r))
			} else {
				dividend := uint32(c.AX.Value())
				if v == 0 || dividend/v > 0xff {
					return execution.Result{}, curated.Fault(curated.DE, 0, "DIV overflow or divide by zero")
				}
				q, r := dividend/v, dividend%v
				c.AX.LoadLow(uint8(q))
				c.AX.LoadHigh(uint8(r))
			}
			return execution.Result{Mnemonic: "DIV r/m", Cycles: 80 + cost, ByteCount: 2}, nil
		case 7: // IDIV
			return c.idiv(v, wide, cost)
		}
		return execution.Result{}, curated.Fault(curated.UD, 0, "unimplemented groupF6/F7 /reg %d", f.Reg)
	}
}

func (c *CPU) idiv(v uint32, wide bool, cost int) (execution.Result, error) {
	boundaryOK := c.Model.AcceptsIDIVBoundary()
	if wide {
		dividend := int32(uint32(c.DX.Value())<<16 | uint32(c.AX.Value()))
		divisor := int32(int16(v))
		if divisor == 0 {
			return execution.Result{}, curated.Fault(curated.DE, 0, "IDIV divide by zero")
		}
		q := dividend / divisor
		if q == -32768 && !boundaryOK {
			return execution.Result{}, curated.Fault(curated.DE, 0, "IDIV boundary quotient")
		}
		r := dividend % divisor
		c.AX.Load(uint16(q))
		c.DX.Load(uint16(r))
		bug := execution.NoBug
		if q == -32768 {
			bug = execution.IDIVBoundaryAccepted
		}
		return execution.Result{Mnemonic: "IDIV r/m16", Cycles: 101 + cost, ByteCount: 2, Bug: bug}, nil
	}
	dividend := int32(int16(c.AX.Value()))
	divisor := int32(int8(v))
	if divisor == 0 {
		return execution.Result{}, curated.Fault(curated.DE, 0, "IDIV divide by zero")
	}
	q := dividend / divisor
	if q == -128 && !boundaryOK {
		return execution.Result{}, curated.Fault(curated.DE, 0, "IDIV boundary quotient")
	}
	r := dividend % divisor
	c.AX.LoadLow(uint8(q))
	c.AX.LoadHigh(uint8(r))
	bug := execution.NoBug
	if q == -128 {
		bug = execution.IDIVBoundaryAccepted
	}
	return execution.Result{Mnemonic: "IDIV r/m8", Cycles: 101 + cost, ByteCount: 2, Bug: bug}, nil
}

// groupFE/FF (/reg selects INC, DEC, and on FF also CALL/JMP/PUSH)
func opGroupFE(wide bool) Handler {
	return func(c *CPU) (execution.Result, error) {
		f, ea, cost := c.fetchModRM()
		size := registers.SizeByte
		if wide {
			size = registers.SizeWord
		}
		switch f.Reg {
		case 0, 1: // INC, DEC
			var v uint32
			var err error
			if wide {
				vv, e := c.readRM16(ea)
				v, err = uint32(vv), e
			} else {
				vv, e := c.readRM8(ea)
				v, err = uint32(vv), e
			}
			if err != nil {
				return execution.Result{}, err
			}
			var r uint32
			if f.Reg == 0 {
				r = c.Flags.Inc(v, size)
			} else {
				r = c.Flags.Dec(v, size)
			}
			if wide {
				err = c.writeRM16(ea, uint16(r))
			} else {
				err = c.writeRM8(ea, uint8(r))
			}
			if err != nil {
				return execution.Result{}, err
			}
			return execution.Result{Mnemonic: "INC/DEC r/m", Cycles: 3 + cost, ByteCount: 2}, nil
		case 6: // PUSH r/m16 (FF only)
			v, err := c.readRM16(ea)
			if err != nil {
				return execution.Result{}, err
			}
			if err := c.push(v); err != nil {
				return execution.Result{}, err
			}
			return execution.Result{Mnemonic: "PUSH r/m16", Cycles: 11 + cost, ByteCount: 2}, nil
		}
		return execution.Result{}, curated.Fault(curated.UD, 0, "unimplemented groupFE/FF /reg %d", f.Reg)
	}
}

type shiftCountMode int

const (
	shiftByOne shiftCountMode = iota
	shiftByCL
)

// groupD0-D3 (/reg selects ROL, ROR, RCL, RCR, SHL, SHR, SAL, SAR)
func opGroupD0(wide bool, mode shiftCountMode) Handler {
	return func(c *CPU) (execution.Result, error) {
		f, ea, cost := c.fetchModRM()
		count := uint8(1)
		if mode == shiftByCL {
			count = c.CX.Low()
			if c.Model.MasksShiftCount() {
				count &= 0x1f
			}
		}
		return c.shiftGroup(f, ea, wide, count, cost, 3)
	}
}

// groupC0/C1 (80186+ shift-by-immediate)
func opGroupC0(wide bool) Handler {
	return func(c *CPU) (execution.Result, error) {
		f, ea, cost := c.fetchModRM()
		imm, c2 := c.fetchIPByte()
		count := imm
		if c.Model.MasksShiftCount() {
			count &= 0x1f
		}
		return c.shiftGroup(f, ea, wide, count, cost+c2, 4)
	}
}

func (c *CPU) shiftGroup(f decode.Fields, ea decode.EA, wide bool, count uint8, cost, baseCycles int) (execution.Result, error) {
	size := registers.SizeByte
	if wide {
		size = registers.SizeWord
	}
	var v uint32
	var err error
	if wide {
		vv, e := c.readRM16(ea)
		v, err = uint32(vv), e
	} else {
		vv, e := c.readRM8(ea)
		v, err = uint32(vv), e
	}
	if err != nil {
		return execution.Result{}, err
	}

	r := v
	bits := uint8(8)
	if wide {
		bits = 16
	}
	for i := uint8(0); i < count; i++ {
		switch f.Reg {
		case 4, 6: // SHL/SAL
			cf := r&(1<<(bits-1)) != 0
			r = (r << 1) & (size - 1)
			c.Flags.SetCF(cf)
		case 5: // SHR
			cf := r&1 != 0
			r >>= 1
			c.Flags.SetCF(cf)
		case 7: // SAR
			signBit := r & (1 << (bits - 1))
			cf := r&1 != 0
			r = (r >> 1) | signBit
			c.Flags.SetCF(cf)
		case 0: // ROL
			cf := r&(1<<(bits-1)) != 0
			r = ((r << 1) | b2u(cf)) & (size - 1)
			c.Flags.SetCF(cf)
		case 1: // ROR
			cf := r&1 != 0
			r = (r >> 1) | (uint32(b2u(cf)) << (bits - 1))
			c.Flags.SetCF(cf)
		case 2: // RCL
			cf := r&(1<<(bits-1)) != 0
			r = ((r << 1) | b2u(c.Flags.CF())) & (size - 1)
			c.Flags.SetCF(cf)
		case 3: // RCR
			cf := r&1 != 0
			r = (r >> 1) | (uint32(b2u(c.Flags.CF())) << (bits - 1))
			c.Flags.SetCF(cf)
		}
	}
	if count > 0 {
		c.Flags.SetResult(r, r, r, size)
		if count == 1 {
			c.Flags.SetOF((r^v)&(1<<(bits-1)) != 0)
		}
	}

	if wide {
		err = c.writeRM16(ea, uint16(r))
	} else {
		err = c.writeRM8(ea, uint8(r))
	}
	if err != nil {
		return execution.Result{}, err
	}
	return execution.Result{Mnemonic: "shift/rotate r/m", Cycles: baseCycles + cost, ByteCount: 2}, nil
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
