package cpu

import (
	"github.com/AdminOfLife/pcjs/cpu/execution"
	"github.com/AdminOfLife/pcjs/cpu/registers"
	"github.com/AdminOfLife/pcjs/curated"
)

func opCallRel16(c *CPU) (execution.Result, error) {
	rel, cost := c.fetchIPWord()
	if err := c.push(c.IP.Value()); err != nil {
		return execution.Result{}, err
	}
	c.IP.Load(c.IP.Value() + rel)
	return execution.Result{Mnemonic: "CALL rel16", Cycles: 19 + cost, ByteCount: 3}, nil
}

func opJmpRel16(c *CPU) (execution.Result, error) {
	rel, cost := c.fetchIPWord()
	c.IP.Load(c.IP.Value() + rel)
	return execution.Result{Mnemonic: "JMP rel16", Cycles: 15 + cost, ByteCount: 3}, nil
}

func opJmpRel8(c *CPU) (execution.Result, error) {
	rel, cost := c.fetchIPDisp8()
	c.IP.Load(c.IP.Value() + rel)
	return execution.Result{Mnemonic: "JMP rel8", Cycles: 15 + cost, ByteCount: 2}, nil
}

func opRetNear(c *CPU) (execution.Result, error) {
	v, err := c.pop()
	if err != nil {
		return execution.Result{}, err
	}
	c.IP.Load(v)
	return execution.Result{Mnemonic: "RET", Cycles: 8, ByteCount: 1}, nil
}

func opRetNearImm(c *CPU) (execution.Result, error) {
	imm, cost := c.fetchIPWord()
	v, err := c.pop()
	if err != nil {
		return execution.Result{}, err
	}
	c.IP.Load(v)
	c.SP.Load(c.SP.Value() + imm)
	return execution.Result{Mnemonic: "RET imm16", Cycles: 8 + cost, ByteCount: 3}, nil
}

// condCode names one of the sixteen Jcc condition codes (opcodes
// 0x70-0x7F), evaluated against the deferred flags triple on demand.
type condCode int

const (
	ccO condCode = iota
	ccNO
	ccB
	ccNB
	ccE
	ccNE
	ccBE
	ccA
	ccS
	ccNS
	ccP
	ccNP
	ccL
	ccGE
	ccLE
	ccG
)

var jccTable = map[uint8]condCode{
	0x70: ccO, 0x71: ccNO, 0x72: ccB, 0x73: ccNB,
	0x74: ccE, 0x75: ccNE, 0x76: ccBE, 0x77: ccA,
	0x78: ccS, 0x79: ccNS, 0x7A: ccP, 0x7B: ccNP,
	0x7C: ccL, 0x7D: ccGE, 0x7E: ccLE, 0x7F: ccG,
}

func (cc condCode) eval(f *registers.Flags) bool {
	sf, of, cf, zf, pf := f.SF(), f.OF(), f.CF(), f.ZF(), f.PF()
	switch cc {
	case ccO:
		return of
	case ccNO:
		return !of
	case ccB:
		return cf
	case ccNB:
		return !cf
	case ccE:
		return zf
	case ccNE:
		return !zf
	case ccBE:
		return cf || zf
	case ccA:
		return !cf && !zf
	case ccS:
		return sf
	case ccNS:
		return !sf
	case ccP:
		return pf
	case ccNP:
		return !pf
	case ccL:
		return sf != of
	case ccGE:
		return sf == of
	case ccLE:
		return (sf != of) || zf
	case ccG:
		return (sf == of) && !zf
	}
	return false
}

func opJcc(cc condCode) Handler {
	return func(c *CPU) (execution.Result, error) {
		rel, cost := c.fetchIPDisp8()
		if cc.eval(c.Flags) {
			c.IP.Load(c.IP.Value() + rel)
			return execution.Result{Mnemonic: "Jcc taken", Cycles: 16 + cost, ByteCount: 2}, nil
		}
		return execution.Result{Mnemonic: "Jcc", Cycles: 4 + cost, ByteCount: 2}, nil
	}
}

// loopMode selects which flag condition (besides CX != 0) the LOOP
// family checks (§4.6 LOOP variants).
type loopMode int

const (
	loopNE loopMode = iota // LOOPNE/LOOPNZ: stop when ZF set
	loopE                  // LOOPE/LOOPZ: stop when ZF clear
	loopAlways              // plain LOOP: no flag check
)

func opLoop(mode loopMode) Handler {
	return func(c *CPU) (execution.Result, error) {
		rel, cost := c.fetchIPDisp8()
		c.CX.Load(c.CX.Value() - 1)

		take := c.CX.Value() != 0
		switch mode {
		case loopNE:
			take = take && !c.Flags.ZF()
		case loopE:
			take = take && c.Flags.ZF()
		}

		if take {
			c.IP.Load(c.IP.Value() + rel)
			return execution.Result{Mnemonic: "LOOP taken", Cycles: 17 + cost, ByteCount: 2}, nil
		}
		return execution.Result{Mnemonic: "LOOP", Cycles: 5 + cost, ByteCount: 2}, nil
	}
}

func opJcxz(c *CPU) (execution.Result, error) {
	rel, cost := c.fetchIPDisp8()
	if c.CX.IsZero() {
		c.IP.Load(c.IP.Value() + rel)
		return execution.Result{Mnemonic: "JCXZ taken", Cycles: 18 + cost, ByteCount: 2}, nil
	}
	return execution.Result{Mnemonic: "JCXZ", Cycles: 6 + cost, ByteCount: 2}, nil
}

func opInt3(c *CPU) (execution.Result, error) {
	if err := c.Interrupt.RaiseInterrupt(c.interruptState(), curated.BP.Vector(), -1); err != nil {
		return execution.Result{}, err
	}
	return execution.Result{Mnemonic: "INT3", Cycles: 52, ByteCount: 1}, nil
}

func opIntImm8(c *CPU) (execution.Result, error) {
	n, cost := c.fetchIPByte()
	if c.Registry.NotifyExplicitInt(int(n)) {
		return execution.Result{Mnemonic: "INT imm8 (suppressed)", Cycles: 51 + cost, ByteCount: 2}, nil
	}
	if err := c.Interrupt.RaiseInterrupt(c.interruptState(), int(n), -1); err != nil {
		return execution.Result{}, err
	}
	return execution.Result{Mnemonic: "INT imm8", Cycles: 51 + cost, ByteCount: 2}, nil
}

func opIret(c *CPU) (execution.Result, error) {
	if err := c.Interrupt.IRET(c.interruptState()); err != nil {
		return execution.Result{}, err
	}
	return execution.Result{Mnemonic: "IRET", Cycles: 24, ByteCount: 1}, nil
}

func opHlt(c *CPU) (execution.Result, error) {
	c.Halted = true
	return execution.Result{Mnemonic: "HLT", Cycles: 2, ByteCount: 1}, nil
}

func opClc(c *CPU) (execution.Result, error) {
	c.Flags.SetCF(false)
	return execution.Result{Mnemonic: "CLC", Cycles: 2, ByteCount: 1}, nil
}

func opStc(c *CPU) (execution.Result, error) {
	c.Flags.SetCF(true)
	return execution.Result{Mnemonic: "STC", Cycles: 2, ByteCount: 1}, nil
}

func opCmc(c *CPU) (execution.Result, error) {
	c.Flags.SetCF(!c.Flags.CF())
	return execution.Result{Mnemonic: "CMC", Cycles: 2, ByteCount: 1}, nil
}

func opCli(c *CPU) (execution.Result, error) {
	c.Flags.InterruptEnable = false
	return execution.Result{Mnemonic: "CLI", Cycles: 2, ByteCount: 1}, nil
}

// opSti sets IF and covers the instruction immediately after it with
// the "STI shadow": INTR is not acknowledged until that next
// instruction has completed, so a real-mode handler's IRET/POPF idiom
// can re-enable interrupts and still execute one more instruction
// before one lands.
func opSti(c *CPU) (execution.Result, error) {
	c.Flags.InterruptEnable = true
	c.Seg.NoIntr = true
	c.PIC.DelayINTR()
	return execution.Result{Mnemonic: "STI", Cycles: 2, ByteCount: 1}, nil
}

func opCld(c *CPU) (execution.Result, error) {
	c.Flags.Direction = false
	return execution.Result{Mnemonic: "CLD", Cycles: 2, ByteCount: 1}, nil
}

func opStd(c *CPU) (execution.Result, error) {
	c.Flags.Direction = true
	return execution.Result{Mnemonic: "STD", Cycles: 2, ByteCount: 1}, nil
}

func opNop(c *CPU) (execution.Result, error) {
	return execution.Result{Mnemonic: "NOP", Cycles: 3, ByteCount: 1}, nil
}

func opWait(c *CPU) (execution.Result, error) {
	return execution.Result{Mnemonic: "WAIT", Cycles: 4, ByteCount: 1}, nil
}
