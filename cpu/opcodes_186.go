package cpu

import (
	"github.com/AdminOfLife/pcjs/cpu/decode"
	"github.com/AdminOfLife/pcjs/cpu/execution"
	"github.com/AdminOfLife/pcjs/cpu/registers"
	"github.com/AdminOfLife/pcjs/cpu/segment"
	"github.com/AdminOfLife/pcjs/curated"
)

// moffs forms read/write AL/AX against a direct 16-bit offset in the
// (overridable) data segment, with no ModRM byte.
func opMovALMoffs8(c *CPU) (execution.Result, error) {
	off, cost := c.fetchIPWord()
	addr, err := c.Seg.CheckRead(c.segFor(decode.SegDS), uint32(off), 0)
	if err != nil {
		return execution.Result{}, err
	}
	c.AX.LoadLow(c.Bus.ReadByte(addr))
	return execution.Result{Mnemonic: "MOV AL,[moffs8]", Cycles: 10 + cost, ByteCount: 3}, nil
}

func opMovAXMoffs16(c *CPU) (execution.Result, error) {
	off, cost := c.fetchIPWord()
	addr, err := c.Seg.CheckRead(c.segFor(decode.SegDS), uint32(off), 1)
	if err != nil {
		return execution.Result{}, err
	}
	c.AX.Load(c.Bus.ReadWord(addr))
	return execution.Result{Mnemonic: "MOV AX,[moffs16]", Cycles: 10 + cost, ByteCount: 3}, nil
}

func opMovMoffs8AL(c *CPU) (execution.Result, error) {
	off, cost := c.fetchIPWord()
	addr, err := c.Seg.CheckWrite(c.segFor(decode.SegDS), uint32(off), 0)
	if err != nil {
		return execution.Result{}, err
	}
	c.Bus.WriteByte(addr, c.AX.Low())
	return execution.Result{Mnemonic: "MOV [moffs8],AL", Cycles: 10 + cost, ByteCount: 3}, nil
}

func opMovMoffs16AX(c *CPU) (execution.Result, error) {
	off, cost := c.fetchIPWord()
	addr, err := c.Seg.CheckWrite(c.segFor(decode.SegDS), uint32(off), 1)
	if err != nil {
		return execution.Result{}, err
	}
	c.Bus.WriteWord(addr, c.AX.Value())
	return execution.Result{Mnemonic: "MOV [moffs16],AX", Cycles: 10 + cost, ByteCount: 3}, nil
}

// opPushA and opPopA implement the 80186+ PUSHA/POPA block (§4.6
// supplemented features): all eight general registers in one opcode,
// in the documented AX/CX/DX/BX/(original)SP/BP/SI/DI order.
func opPushA(c *CPU) (execution.Result, error) {
	sp := c.SP.Value()
	for _, r := range []*registers.Register16{c.AX, c.CX, c.DX, c.BX} {
		if err := c.push(r.Value()); err != nil {
			return execution.Result{}, err
		}
	}
	if err := c.push(sp); err != nil {
		return execution.Result{}, err
	}
	for _, r := range []*registers.Register16{c.BP, c.SI, c.DI} {
		if err := c.push(r.Value()); err != nil {
			return execution.Result{}, err
		}
	}
	return execution.Result{Mnemonic: "PUSHA", Cycles: 19, ByteCount: 1}, nil
}

func opPopA(c *CPU) (execution.Result, error) {
	for _, r := range []*registers.Register16{c.DI, c.SI, c.BP} {
		v, err := c.pop()
		if err != nil {
			return execution.Result{}, err
		}
		r.Load(v)
	}
	if _, err := c.pop(); err != nil { // discarded SP snapshot
		return execution.Result{}, err
	}
	for _, r := range []*registers.Register16{c.BX, c.DX, c.CX, c.AX} {
		v, err := c.pop()
		if err != nil {
			return execution.Result{}, err
		}
		r.Load(v)
	}
	return execution.Result{Mnemonic: "POPA", Cycles: 19, ByteCount: 1}, nil
}

// opBound raises #BR when reg16 falls outside the [lower, upper] pair
// stored at the memory operand.
func opBound(c *CPU) (execution.Result, error) {
	f, ea, cost := c.fetchModRM()
	if ea.IsRegister {
		return execution.Result{}, curated.Errorf("BOUND requires a memory operand")
	}
	addr, err := c.eaLinear(ea, 3, false)
	if err != nil {
		return execution.Result{}, err
	}
	lower := int16(c.Bus.ReadWord(addr))
	upper := int16(c.Bus.ReadWord(addr + 2))
	v := int16(c.reg16(f.Reg).Value())
	if v < lower || v > upper {
		return execution.Result{}, curated.Fault(curated.BR, 0, "BOUND: %d outside [%d,%d]", v, lower, upper)
	}
	return execution.Result{Mnemonic: "BOUND r16,m", Cycles: 13 + cost, ByteCount: 2}, nil
}

func opPushImm16(c *CPU) (execution.Result, error) {
	v, cost := c.fetchIPWord()
	if err := c.push(v); err != nil {
		return execution.Result{}, err
	}
	return execution.Result{Mnemonic: "PUSH imm16", Cycles: 3 + cost, ByteCount: 3}, nil
}

func opPushImm8(c *CPU) (execution.Result, error) {
	v, cost := c.fetchIPDisp8()
	if err := c.push(v); err != nil {
		return execution.Result{}, err
	}
	return execution.Result{Mnemonic: "PUSH imm8", Cycles: 3 + cost, ByteCount: 2}, nil
}

func opImulR16RM16Imm(immWord bool) Handler {
	return func(c *CPU) (execution.Result, error) {
		f, ea, cost := c.fetchModRM()
		rm, err := c.readRM16(ea)
		if err != nil {
			return execution.Result{}, err
		}
		var imm int16
		var c2 int
		if immWord {
			v, cc := c.fetchIPWord()
			imm, c2 = int16(v), cc
		} else {
			v, cc := c.fetchIPDisp8()
			imm, c2 = int16(v), cc
		}
		r := int32(int16(rm)) * int32(imm)
		c.reg16(f.Reg).Load(uint16(r))
		ext := int32(int16(uint16(r)))
		of := r != ext
		c.Flags.SetCF(of)
		c.Flags.SetOF(of)
		return execution.Result{Mnemonic: "IMUL r16,r/m16,imm", Cycles: 21 + cost + c2, ByteCount: 3}, nil
	}
}

// opEnter/opLeave implement the 80186+ stack-frame helpers. Nested
// display copying (level > 0) follows the documented algorithm; level 0
// is the common case a C compiler's prologue emits.
func opEnter(c *CPU) (execution.Result, error) {
	size, c1 := c.fetchIPWord()
	level, c2 := c.fetchIPByte()

	if err := c.push(c.BP.Value()); err != nil {
		return execution.Result{}, err
	}
	frameTemp := c.SP.Value()

	if level > 0 {
		bp := c.BP.Value()
		for i := uint8(1); i < level; i++ {
			bp -= 2
			linear, err := c.Seg.CheckRead(c.SS, uint32(bp), 1)
			if err != nil {
				return execution.Result{}, err
			}
			if err := c.push(c.Bus.ReadWord(linear)); err != nil {
				return execution.Result{}, err
			}
		}
		if err := c.push(frameTemp); err != nil {
			return execution.Result{}, err
		}
	}

	c.BP.Load(frameTemp)
	c.SP.Load(c.SP.Value() - size)
	return execution.Result{Mnemonic: "ENTER imm16,imm8", Cycles: 15 + c1 + c2, ByteCount: 4}, nil
}

func opLeave(c *CPU) (execution.Result, error) {
	c.SP.Load(c.BP.Value())
	v, err := c.pop()
	if err != nil {
		return execution.Result{}, err
	}
	c.BP.Load(v)
	return execution.Result{Mnemonic: "LEAVE", Cycles: 5, ByteCount: 1}, nil
}

// opInsb/opInsw/opOutsb/opOutsw move between the port space and ES:DI
// (fixed, INS) or the overridable data segment at SI (OUTS), honoring a
// carried REP prefix the same way the other string ops do.
func opInsb(c *CPU) (execution.Result, error) { return c.runIO(false, true) }
func opInsw(c *CPU) (execution.Result, error) { return c.runIO(true, true) }
func opOutsb(c *CPU) (execution.Result, error) { return c.runIO(false, false) }
func opOutsw(c *CPU) (execution.Result, error) { return c.runIO(true, false) }

func (c *CPU) runIO(wide bool, in bool) (execution.Result, error) {
	step := c.step(wide)
	iterations := 1
	repeating := c.repMode != 0
	if repeating {
		iterations = int(c.CX.Value())
	}

	mnemonic := "INS"
	if !in {
		mnemonic = "OUTS"
	}

	for i := 0; i < iterations; i++ {
		if in {
			addr, err := c.Seg.CheckWrite(c.ES, uint32(c.DI.Value()), 0)
			if err != nil {
				return execution.Result{}, err
			}
			if wide {
				c.Bus.WriteWord(addr, c.Ports.In16(c.DX.Value()))
			} else {
				c.Bus.WriteByte(addr, c.Ports.In8(c.DX.Value()))
			}
			c.DI.Load(c.DI.Value() + step)
		} else {
			addr, err := c.Seg.CheckRead(c.segSrc(), uint32(c.SI.Value()), 0)
			if err != nil {
				return execution.Result{}, err
			}
			if wide {
				c.Ports.Out16(c.DX.Value(), c.Bus.ReadWord(addr))
			} else {
				c.Ports.Out8(c.DX.Value(), c.Bus.ReadByte(addr))
			}
			c.SI.Load(c.SI.Value() + step)
		}
		if repeating {
			c.CX.Load(c.CX.Value() - 1)
		}
	}
	return execution.Result{Mnemonic: mnemonic, Cycles: 14 * iterations, ByteCount: 1}, nil
}

// switchTask is the task-switch-selector path of far JMP/CALL to a TSS
// descriptor (§12): it validates the descriptor and loads TR through the
// same Kind-checked loader LTR uses, then reads the new task's initial
// CS:IP out of the 80286 TSS image (offsets 0x0e/0x10) so control
// actually transfers. It does not save the outgoing task's state, flip
// the descriptor's busy bit, or follow the back-link — full hardware
// multitasking is out of scope; this only gets far enough to validate
// the descriptor and update TR.
func (c *CPU) switchTask(selector uint16) error {
	if err := c.Seg.Load(c.TR, selector, segment.KindTSS); err != nil {
		return err
	}
	base := c.TR.Base
	newIP := c.Bus.ReadWord(base + 0x0e)
	newCS := c.Bus.ReadWord(base + 0x10)
	if err := c.Seg.Load(c.CS, newCS, segment.KindCode); err != nil {
		return err
	}
	c.IP.Load(newIP)
	return nil
}

func opJmpFar(c *CPU) (execution.Result, error) {
	offset, c1 := c.fetchIPWord()
	selector, c2 := c.fetchIPWord()
	if c.Seg.IsTaskSelector(selector) {
		if err := c.switchTask(selector); err != nil {
			return execution.Result{}, err
		}
		return execution.Result{Mnemonic: "JMP ptr16:16 (task)", Cycles: 17 + c1 + c2, ByteCount: 5}, nil
	}
	if err := c.Seg.Load(c.CS, selector, segment.KindCode); err != nil {
		return execution.Result{}, err
	}
	c.IP.Load(offset)
	return execution.Result{Mnemonic: "JMP ptr16:16", Cycles: 15 + c1 + c2, ByteCount: 5}, nil
}

func opCallFar(c *CPU) (execution.Result, error) {
	offset, c1 := c.fetchIPWord()
	selector, c2 := c.fetchIPWord()
	if err := c.push(c.CS.Selector); err != nil {
		return execution.Result{}, err
	}
	if err := c.push(c.IP.Value()); err != nil {
		return execution.Result{}, err
	}
	if c.Seg.IsTaskSelector(selector) {
		if err := c.switchTask(selector); err != nil {
			return execution.Result{}, err
		}
		return execution.Result{Mnemonic: "CALL ptr16:16 (task)", Cycles: 31 + c1 + c2, ByteCount: 5}, nil
	}
	if err := c.Seg.Load(c.CS, selector, segment.KindCode); err != nil {
		return execution.Result{}, err
	}
	c.IP.Load(offset)
	return execution.Result{Mnemonic: "CALL ptr16:16", Cycles: 28 + c1 + c2, ByteCount: 5}, nil
}

func opRetFar(c *CPU) (execution.Result, error) {
	ip, err := c.pop()
	if err != nil {
		return execution.Result{}, err
	}
	selector, err := c.pop()
	if err != nil {
		return execution.Result{}, err
	}
	if err := c.Seg.Load(c.CS, selector, segment.KindCode); err != nil {
		return execution.Result{}, err
	}
	c.IP.Load(ip)
	return execution.Result{Mnemonic: "RETF", Cycles: 25, ByteCount: 1}, nil
}

func opRetFarImm(c *CPU) (execution.Result, error) {
	imm, cost := c.fetchIPWord()
	ip, err := c.pop()
	if err != nil {
		return execution.Result{}, err
	}
	selector, err := c.pop()
	if err != nil {
		return execution.Result{}, err
	}
	if err := c.Seg.Load(c.CS, selector, segment.KindCode); err != nil {
		return execution.Result{}, err
	}
	c.IP.Load(ip)
	c.SP.Load(c.SP.Value() + imm)
	return execution.Result{Mnemonic: "RETF imm16", Cycles: 25 + cost, ByteCount: 3}, nil
}

func opInto(c *CPU) (execution.Result, error) {
	if c.Flags.OF() {
		if err := c.Interrupt.RaiseInterrupt(c.interruptState(), curated.OF.Vector(), -1); err != nil {
			return execution.Result{}, err
		}
		return execution.Result{Mnemonic: "INTO taken", Cycles: 53, ByteCount: 1}, nil
	}
	return execution.Result{Mnemonic: "INTO", Cycles: 4, ByteCount: 1}, nil
}
