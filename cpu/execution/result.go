// Package execution defines the bookkeeping record an instruction
// handler fills in as it runs: the byte count consumed, cycles charged,
// and any of the architecture's documented quirks it triggered. It
// mirrors the reference emulator's execution package, widened from a
// fixed-cycle 6502 instruction set to one where cycle count and byte
// count both vary with addressing mode and prefix chain.
package execution

import "github.com/AdminOfLife/pcjs/curated"

// Bug names one of the documented 8086-family quirks a handler may have
// exercised, for diagnostics and for tests that specifically target the
// quirk rather than the instruction's ordinary behavior.
type Bug string

const (
	NoBug Bug = ""

	// SegmentWrapBug marks a word access whose second byte wrapped from
	// offset 0xFFFF to 0x0000 within the same segment, the 8086/8088
	// behavior the 80186+ does not reproduce (§4.6).
	SegmentWrapBug Bug = "segment wrap"

	// PushSPDichotomy marks a PUSH SP whose pushed value depends on the
	// model: 8086/8088/80186 push the value SP held before the
	// decrement, the 80286 pushes the decremented value (§4.6).
	PushSPDichotomy Bug = "push sp dichotomy"

	// IDIVBoundaryAccepted marks an IDIV that hit the −128/−32768
	// boundary quotient and, because the model is 80186 or later,
	// returned it instead of raising #DE.
	IDIVBoundaryAccepted Bug = "idiv boundary accepted"
)

// Result is filled in by an instruction handler as it decodes and
// executes; ExecCore reads it back after dispatch to charge cycles. The
// prefetch queue is not refilled from an instruction's spare cycles.
type Result struct {
	Opcode    uint8
	Mnemonic  string
	ByteCount int // total bytes consumed, including prefixes and ModRM/SIB/imm
	Cycles    int // documented base cost, before the EA/word-access penalties
	EACycles  int
	WordPenalty int

	Bug Bug

	// Final is set once the handler has completely filled in this
	// struct; IsValid refuses to check a Result that isn't.
	Final bool
}

// TotalCycles is the cost ExecCore subtracts from its cycle budget:
// documented base cost plus whatever EA computation and word-access
// penalties the handler accrued.
func (r Result) TotalCycles() int {
	return r.Cycles + r.EACycles + r.WordPenalty
}

// IsValid checks a finalised Result for internal consistency, mirroring
// the reference emulator's post-execution sanity check.
func (r Result) IsValid() error {
	if !r.Final {
		return curated.Errorf("cpu: execution not finalised for opcode %#02x", r.Opcode)
	}
	if r.ByteCount < 1 {
		return curated.Errorf("cpu: opcode %#02x [%s] consumed no bytes", r.Opcode, r.Mnemonic)
	}
	if r.Cycles < 0 {
		return curated.Errorf("cpu: opcode %#02x [%s] charged negative cycles", r.Opcode, r.Mnemonic)
	}
	return nil
}
