package cpu

import (
	"github.com/AdminOfLife/pcjs/cpu/decode"
	"github.com/AdminOfLife/pcjs/cpu/execution"
	"github.com/AdminOfLife/pcjs/cpu/registers"
)

// stringKind names one of the five string-instruction families; they
// share the same REP-prefix looping and SI/DI stepping logic and differ
// only in which operands they read/write/compare (§4.6 string ops).
type stringKind int

const (
	stringMovs stringKind = iota
	stringStos
	stringLods
	stringCmps
	stringScas
)

// segSrc is the (overridable) segment string instructions use for the
// source operand addressed through SI; the destination addressed
// through DI always uses ES and is never overridable on real hardware.
func (c *CPU) segSrc() *registers.Segment {
	return c.segFor(decode.SegDS)
}

func (c *CPU) step(wide bool) uint16 {
	n := uint16(1)
	if wide {
		n = 2
	}
	if c.Flags.Direction {
		return -n
	}
	return n
}

// runString executes one or, under an active REP/REPNE prefix, many
// iterations of a string instruction, honoring CX and the kind's stop
// condition. Between iterations it checks for a pending interrupt the
// same way stepOne does at instruction boundaries; if one is taken, IP
// and the prefetch queue are rewound to the REP prefix byte first, so
// the pushed return address and the next fetch both land back on the
// prefix, and the string instruction resumes (with CX already reduced
// by the completed iterations) rather than restarting from scratch.
func (c *CPU) runString(kind stringKind, wide bool) (execution.Result, error) {
	size := registers.SizeByte
	if wide {
		size = registers.SizeWord
	}
	step := c.step(wide)

	iterations := 1
	repeating := c.repMode != 0
	if repeating && !c.CX.IsZero() {
		iterations = int(c.CX.Value())
	} else if repeating {
		iterations = 0
	}

	cost := 0
	count := 0
	for ; count < iterations; count++ {
		iterCost, stop, err := c.stringIteration(kind, wide, size, step)
		if err != nil {
			return execution.Result{}, err
		}
		cost += iterCost
		if repeating {
			c.CX.Load(c.CX.Value() - 1)
		}
		if repeating && stop {
			count++
			break
		}
		if !repeating {
			count++
			break
		}
		if repeating && !c.CX.IsZero() && c.intFlags != 0 {
			taken, err := c.checkRepInterrupt()
			if err != nil {
				return execution.Result{}, err
			}
			if taken {
				count++
				break
			}
		}
	}

	mnemonic := map[stringKind]string{
		stringMovs: "MOVS", stringStos: "STOS", stringLods: "LODS",
		stringCmps: "CMPS", stringScas: "SCAS",
	}[kind]
	base := 5
	if repeating {
		base = 4 + 4*count
	}
	return execution.Result{Mnemonic: mnemonic, Cycles: base + cost, ByteCount: 1}, nil
}

// checkRepInterrupt rewinds IP and, if prefetch is active, the prefetch
// queue back to the REP prefix byte, then runs the same CheckINTR an
// ordinary instruction boundary runs. If nothing is raised both are
// restored forward again and the loop continues; if something is
// raised, CheckINTR has already redirected CS:IP to the handler with
// the prefix address as the pushed return point, and the caller must
// stop iterating.
func (c *CPU) checkRepInterrupt() (taken bool, err error) {
	resumeIP := c.IP.Value()
	prefixAddr := c.CS.Linear(uint32(c.repPrefixIP))

	c.IP.Load(c.repPrefixIP)
	if c.usePrefetch {
		c.Prefetch.Rewind(2, prefixAddr)
	}

	raised, _, err := c.Interrupt.CheckINTR(c.interruptState(), &c.intFlags, c.PIC, c.DMA)
	if err != nil {
		return false, err
	}
	if raised {
		return true, nil
	}

	c.IP.Load(resumeIP)
	if c.usePrefetch {
		c.Prefetch.FetchByte(prefixAddr)
		c.Prefetch.FetchByte(prefixAddr + 1)
	}
	return false, nil
}

// stringIteration performs one pass and reports whether a REPE/REPNE
// prefix's flag-based stop condition is satisfied after it.
func (c *CPU) stringIteration(kind stringKind, wide bool, size uint32, step uint16) (cost int, stop bool, err error) {
	switch kind {
	case stringMovs:
		srcAddr, e := c.Seg.CheckRead(c.segSrc(), uint32(c.SI.Value()), 0)
		if e != nil {
			return 0, false, e
		}
		dstAddr, e := c.Seg.CheckWrite(c.ES, uint32(c.DI.Value()), 0)
		if e != nil {
			return 0, false, e
		}
		if wide {
			c.Bus.WriteWord(dstAddr, c.Bus.ReadWord(srcAddr))
		} else {
			c.Bus.WriteByte(dstAddr, c.Bus.ReadByte(srcAddr))
		}
		c.SI.Load(c.SI.Value() + step)
		c.DI.Load(c.DI.Value() + step)

	case stringStos:
		dstAddr, e := c.Seg.CheckWrite(c.ES, uint32(c.DI.Value()), 0)
		if e != nil {
			return 0, false, e
		}
		if wide {
			c.Bus.WriteWord(dstAddr, c.AX.Value())
		} else {
			c.Bus.WriteByte(dstAddr, c.AX.Low())
		}
		c.DI.Load(c.DI.Value() + step)

	case stringLods:
		srcAddr, e := c.Seg.CheckRead(c.segSrc(), uint32(c.SI.Value()), 0)
		if e != nil {
			return 0, false, e
		}
		if wide {
			c.AX.Load(c.Bus.ReadWord(srcAddr))
		} else {
			c.AX.LoadLow(c.Bus.ReadByte(srcAddr))
		}
		c.SI.Load(c.SI.Value() + step)

	case stringCmps:
		srcAddr, e := c.Seg.CheckRead(c.segSrc(), uint32(c.SI.Value()), 0)
		if e != nil {
			return 0, false, e
		}
		dstAddr, e := c.Seg.CheckRead(c.ES, uint32(c.DI.Value()), 0)
		if e != nil {
			return 0, false, e
		}
		var a, b uint32
		if wide {
			a, b = uint32(c.Bus.ReadWord(srcAddr)), uint32(c.Bus.ReadWord(dstAddr))
		} else {
			a, b = uint32(c.Bus.ReadByte(srcAddr)), uint32(c.Bus.ReadByte(dstAddr))
		}
		c.Flags.Sub(a, b, false, size)
		c.SI.Load(c.SI.Value() + step)
		c.DI.Load(c.DI.Value() + step)
		stop = c.repStop()

	case stringScas:
		dstAddr, e := c.Seg.CheckRead(c.ES, uint32(c.DI.Value()), 0)
		if e != nil {
			return 0, false, e
		}
		var a, b uint32
		if wide {
			a, b = uint32(c.AX.Value()), uint32(c.Bus.ReadWord(dstAddr))
		} else {
			a, b = uint32(c.AX.Low()), uint32(c.Bus.ReadByte(dstAddr))
		}
		c.Flags.Sub(a, b, false, size)
		c.DI.Load(c.DI.Value() + step)
		stop = c.repStop()
	}
	return 0, stop, nil
}

// repStop reports whether a CMPS/SCAS REP/REPNE prefix's flag condition
// has been hit, ending the repetition early (§4.6: REPE/REPZ stops on
// ZF=0, REPNE/REPNZ stops on ZF=1).
func (c *CPU) repStop() bool {
	switch c.repMode {
	case 0xF3: // REPE/REPZ
		return !c.Flags.ZF()
	case 0xF2: // REPNE/REPNZ
		return c.Flags.ZF()
	}
	return false
}

func opMovsb(c *CPU) (execution.Result, error) { return c.runString(stringMovs, false) }
func opMovsw(c *CPU) (execution.Result, error) { return c.runString(stringMovs, true) }
func opStosb(c *CPU) (execution.Result, error) { return c.runString(stringStos, false) }
func opStosw(c *CPU) (execution.Result, error) { return c.runString(stringStos, true) }
func opLodsb(c *CPU) (execution.Result, error) { return c.runString(stringLods, false) }
func opLodsw(c *CPU) (execution.Result, error) { return c.runString(stringLods, true) }
func opCmpsb(c *CPU) (execution.Result, error) { return c.runString(stringCmps, false) }
func opCmpsw(c *CPU) (execution.Result, error) { return c.runString(stringCmps, true) }
func opScasb(c *CPU) (execution.Result, error) { return c.runString(stringScas, false) }
func opScasw(c *CPU) (execution.Result, error) { return c.runString(stringScas, true) }
