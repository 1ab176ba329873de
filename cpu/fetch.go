package cpu

import (
	"github.com/AdminOfLife/pcjs/cpu/decode"
	"github.com/AdminOfLife/pcjs/cpu/model"
	"github.com/AdminOfLife/pcjs/cpu/registers"
)

// fetchIPByte reads the byte at CS:IP (through the prefetch queue, or
// directly from the bus when prefetch is disabled), post-increments IP,
// and returns the bus cycles the fetch cost for ExecCore's accounting.
func (c *CPU) fetchIPByte() (uint8, int) {
	addr := c.linearIP()
	var b uint8
	var cycles int
	if c.usePrefetch {
		b, cycles = c.Prefetch.FetchByte(addr)
	} else {
		b = c.Bus.ReadByte(addr)
		cycles = 4
	}
	c.IP.Load(c.IP.Value() + 1)
	return b, cycles
}

func (c *CPU) fetchIPWord() (uint16, int) {
	lo, c1 := c.fetchIPByte()
	hi, c2 := c.fetchIPByte()
	return uint16(lo) | uint16(hi)<<8, c1 + c2
}

// fetchIPDisp8 reads a sign-extended 8-bit displacement/immediate.
func (c *CPU) fetchIPDisp8() (uint16, int) {
	b, cycles := c.fetchIPByte()
	return uint16(int16(int8(b))), cycles
}

// gpValues snapshots the registers decode.Resolve needs for EA forms.
func (c *CPU) gpValues() decode.GPValues {
	return decode.GPValues{BX: c.BX.Value(), BP: c.BP.Value(), SI: c.SI.Value(), DI: c.DI.Value()}
}

// segFor picks the segment register a resolved EA's default maps to,
// honoring any active segment-override prefix.
func (c *CPU) segFor(kind decode.SegKind) *registers.Segment {
	if c.segOverride != nil {
		return c.segOverride
	}
	if kind == decode.SegSS {
		return c.SS
	}
	return c.DS
}

// fetchModRM reads the ModRM byte plus any displacement it implies and
// resolves it to an EA. extraCycles accumulates bus/EA costs the caller
// charges into its Result.
func (c *CPU) fetchModRM() (decode.Fields, decode.EA, int) {
	b, cost := c.fetchIPByte()
	f := decode.DecodeModRM(b)

	if f.Mod == 3 {
		return f, decode.EA{IsRegister: true, RegIndex: f.RM}, cost
	}

	var disp uint16
	switch f.NeedsDisplacement() {
	case 1:
		d, c1 := c.fetchIPDisp8()
		disp, cost = d, cost+c1
	case 2:
		d, c1 := c.fetchIPWord()
		disp, cost = d, cost+c1
	}

	ea := decode.Resolve(f, disp, c.gpValues(), c.Model)
	return f, ea, cost + ea.Cycles
}

// eaLinear turns a resolved memory EA into the linear address to access,
// running it through the segment unit's limit check.
func (c *CPU) eaLinear(ea decode.EA, extra uint32, write bool) (uint32, error) {
	seg := c.segFor(ea.Seg)
	if write {
		return c.Seg.CheckWrite(seg, uint32(ea.Offset), extra)
	}
	return c.Seg.CheckRead(seg, uint32(ea.Offset), extra)
}

// readRM8/readRM16 read an r/m operand already resolved by fetchModRM,
// from either a register (by index) or memory.
func (c *CPU) readRM8(ea decode.EA) (uint8, error) {
	if ea.IsRegister {
		return c.reg8(ea.RegIndex).get(), nil
	}
	addr, err := c.eaLinear(ea, 0, false)
	if err != nil {
		return 0, err
	}
	return c.Bus.ReadByte(addr), nil
}

func (c *CPU) readRM16(ea decode.EA) (uint16, error) {
	if ea.IsRegister {
		return c.reg16(ea.RegIndex).Value(), nil
	}
	addr, err := c.eaLinear(ea, 1, false)
	if err != nil {
		return 0, err
	}
	return c.Bus.ReadWord(addr), nil
}

func (c *CPU) writeRM8(ea decode.EA, v uint8) error {
	if ea.IsRegister {
		c.reg8(ea.RegIndex).set(v)
		return nil
	}
	addr, err := c.eaLinear(ea, 0, true)
	if err != nil {
		return err
	}
	c.Bus.WriteByte(addr, v)
	return nil
}

func (c *CPU) writeRM16(ea decode.EA, v uint16) error {
	if ea.IsRegister {
		c.reg16(ea.RegIndex).Load(v)
		return nil
	}
	addr, err := c.eaLinear(ea, 1, true)
	if err != nil {
		return err
	}
	c.Bus.WriteWord(addr, v)
	return nil
}

// reg16 maps a ModRM reg/rm field (0-7) to AX..DI.
func (c *CPU) reg16(i uint8) *registers.Register16 {
	switch i & 7 {
	case 0:
		return c.AX
	case 1:
		return c.CX
	case 2:
		return c.DX
	case 3:
		return c.BX
	case 4:
		return c.SP
	case 5:
		return c.BP
	case 6:
		return c.SI
	default:
		return c.DI
	}
}

// halfReg is a uniform get/set view onto a register's 8-bit half.
type halfReg struct {
	get func() uint8
	set func(uint8)
}

// reg8 maps a ModRM reg/rm field (0-7) to AL..BH.
func (c *CPU) reg8(i uint8) halfReg {
	switch i & 7 {
	case 0:
		return halfReg{c.AX.Low, c.AX.LoadLow}
	case 1:
		return halfReg{c.CX.Low, c.CX.LoadLow}
	case 2:
		return halfReg{c.DX.Low, c.DX.LoadLow}
	case 3:
		return halfReg{c.BX.Low, c.BX.LoadLow}
	case 4:
		return halfReg{c.AX.High, c.AX.LoadHigh}
	case 5:
		return halfReg{c.CX.High, c.CX.LoadHigh}
	case 6:
		return halfReg{c.DX.High, c.DX.LoadHigh}
	default:
		return halfReg{c.BX.High, c.BX.LoadHigh}
	}
}

// segReg maps the 0-3 Sreg field used by MOV Sreg / PUSH/POP Sreg to
// ES/CS/SS/DS.
func (c *CPU) segReg(i uint8) *registers.Segment {
	switch i & 3 {
	case 0:
		return c.ES
	case 1:
		return c.CS
	case 2:
		return c.SS
	default:
		return c.DS
	}
}

// push decrements SP by 2 and writes v at SS:SP, checked against SS's
// limit/access the same way a memory operand write is through eaLinear.
func (c *CPU) push(v uint16) error {
	c.SP.Load(c.SP.Value() - 2)
	linear, err := c.Seg.CheckWrite(c.SS, uint32(c.SP.Value()), 1)
	if err != nil {
		return err
	}
	c.Bus.WriteWord(linear, v)
	return nil
}

// pushSP implements the PUSH SP model dichotomy (§4.6 edge cases,
// §8 seed scenario 6): on the 8086/8088/80186, PUSH SP pushes the
// pre-decrement value of SP (a documented erratum carried forward from
// the 8086); the 80286 pushes the post-decrement value, as every other
// PUSH r16 does.
func (c *CPU) pushSP() error {
	if c.Model == model.I80286 {
		c.SP.Load(c.SP.Value() - 2)
		linear, err := c.Seg.CheckWrite(c.SS, uint32(c.SP.Value()), 1)
		if err != nil {
			return err
		}
		c.Bus.WriteWord(linear, c.SP.Value())
		return nil
	}
	v := c.SP.Value()
	c.SP.Load(v - 2)
	linear, err := c.Seg.CheckWrite(c.SS, uint32(c.SP.Value()), 1)
	if err != nil {
		return err
	}
	c.Bus.WriteWord(linear, v)
	return nil
}

func (c *CPU) pop() (uint16, error) {
	linear, err := c.Seg.CheckRead(c.SS, uint32(c.SP.Value()), 1)
	if err != nil {
		return 0, err
	}
	v := c.Bus.ReadWord(linear)
	c.SP.Load(c.SP.Value() + 2)
	return v, nil
}
