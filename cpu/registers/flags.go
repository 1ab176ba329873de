package registers

// Flags implements the processor status word: the control/trap bits are
// stored directly, but the six arithmetic bits (CF, PF, AF, ZF, SF, OF)
// are derived on demand from the triple left behind by the last ALU
// helper, rather than being recomputed (and stored) after every single
// operation. This mirrors the reference emulator's StatusRegister in
// spirit — a small struct with named boolean fields an instruction
// handler sets directly — but the arithmetic half is computed lazily
// because the instruction set this core runs is large enough that doing
// so measurably matters.
type Flags struct {
	// direct-set bits
	InterruptEnable bool
	Direction       bool
	Trap            bool
	IOPL            uint8 // 0-3, 80286 only
	NestedTask      bool // 80286 only

	// the deferred-flags triple. resultSize is BYTE (0x100) or WORD
	// (0x10000); it is never zero once any ALU helper has run.
	resultValue     uint32
	resultParitySign uint32
	resultAuxOverflow uint32
	resultSize      uint32
}

// Result sizes for SetResult's size parameter.
const (
	SizeByte uint32 = 0x100
	SizeWord uint32 = 0x10000
)

// SetResult records the triple an ALU helper produces. Every
// arithmetic/logical opcode handler calls this exactly once; the six
// arithmetic flags are reconstructed from it on read.
func (f *Flags) SetResult(value, paritySign, auxOverflow, size uint32) {
	f.resultValue = value
	f.resultParitySign = paritySign
	f.resultAuxOverflow = auxOverflow
	f.resultSize = size
}

var parityTable [256]bool

func init() {
	for i := range parityTable {
		v := i
		v ^= v >> 4
		v ^= v >> 2
		v ^= v >> 1
		parityTable[i] = v&1 == 0
	}
}

// CF is the carry flag, derived per §3: set when the result exceeded the
// operand width.
func (f *Flags) CF() bool {
	return f.resultValue&f.resultSize != 0
}

// ZF is the zero flag: all operand-width bits of the result are clear.
func (f *Flags) ZF() bool {
	return f.resultValue&(f.resultSize-1) == 0
}

// SF is the sign flag: the operand-width sign bit of resultParitySign.
func (f *Flags) SF() bool {
	return f.resultParitySign&(f.resultSize>>1) != 0
}

// PF is the parity flag: even parity of the result's low byte.
func (f *Flags) PF() bool {
	return parityTable[f.resultParitySign&0xff]
}

// AF is the auxiliary (half-carry) flag.
func (f *Flags) AF() bool {
	return ((f.resultParitySign ^ f.resultAuxOverflow) & 0x10) != 0
}

// OF is the overflow flag.
func (f *Flags) OF() bool {
	return ((f.resultParitySign ^ f.resultAuxOverflow ^ (f.resultParitySign >> 1)) & (f.resultSize >> 1)) != 0
}

// SetCF sets or clears the carry flag without disturbing the
// other five arithmetic flags.
func (f *Flags) SetCF(v bool) {
	cur := f.CF()
	if cur == v {
		return
	}
	f.resultValue ^= f.resultSize
}

// SetZF sets or clears the zero flag in place.
func (f *Flags) SetZF(v bool) {
	if f.ZF() == v {
		return
	}
	if v {
		f.resultValue &^= f.resultSize - 1
	} else {
		f.resultValue |= 1
	}
}

// SetSF sets or clears the sign flag in place.
func (f *Flags) SetSF(v bool) {
	if f.SF() == v {
		return
	}
	f.resultParitySign ^= f.resultSize >> 1
}

// SetPF sets or clears the parity flag in place by flipping the low bit
// of the result's parity/sign byte (changes parity without otherwise
// perturbing the value the rest of the triple encodes).
func (f *Flags) SetPF(v bool) {
	if f.PF() == v {
		return
	}
	f.resultParitySign ^= 1
	f.resultValue ^= 1
}

// SetAF sets or clears the auxiliary carry flag in place.
func (f *Flags) SetAF(v bool) {
	if f.AF() == v {
		return
	}
	f.resultAuxOverflow ^= 0x10
}

// SetOF sets or clears the overflow flag in place.
func (f *Flags) SetOF(v bool) {
	if f.OF() == v {
		return
	}
	f.resultAuxOverflow ^= f.resultSize >> 1
}

// bit positions within the 16-bit PS word.
const (
	bitCF = 1 << 0
	bitPF = 1 << 2
	bitAF = 1 << 4
	bitZF = 1 << 6
	bitSF = 1 << 7
	bitTF = 1 << 8
	bitIF = 1 << 9
	bitDF = 1 << 10
	bitOF = 1 << 11
	// bits 12-13 are IOPL on the 80286; bit 14 is NT on the 80286; bit 1
	// always reads as 1.
)

// PS composes the direct bits and the derived arithmetic bits into the
// 16-bit processor status word.
func (f *Flags) PS() uint16 {
	var v uint16 = 0x0002 // bit 1 is always 1

	if f.CF() {
		v |= bitCF
	}
	if f.PF() {
		v |= bitPF
	}
	if f.AF() {
		v |= bitAF
	}
	if f.ZF() {
		v |= bitZF
	}
	if f.SF() {
		v |= bitSF
	}
	if f.Trap {
		v |= bitTF
	}
	if f.InterruptEnable {
		v |= bitIF
	}
	if f.Direction {
		v |= bitDF
	}
	if f.OF() {
		v |= bitOF
	}
	v |= uint16(f.IOPL&0x3) << 12
	if f.NestedTask {
		v |= 1 << 14
	}
	return v
}

// SetPS resets the triple to a zero word result (which reads as ZF and
// PF set) and then sets or clears every bit of v via the individual
// setters, so that
// PS(SetPS(v)) == v restricted to the observable bits for any v.
func (f *Flags) SetPS(v uint16) {
	f.resultValue = 0
	f.resultParitySign = 0
	f.resultAuxOverflow = 0
	f.resultSize = SizeWord

	f.SetCF(v&bitCF != 0)
	f.SetPF(v&bitPF != 0)
	f.SetAF(v&bitAF != 0)
	f.SetZF(v&bitZF != 0)
	f.SetSF(v&bitSF != 0)
	f.Trap = v&bitTF != 0
	f.InterruptEnable = v&bitIF != 0
	f.Direction = v&bitDF != 0
	f.SetOF(v&bitOF != 0)
	f.IOPL = uint8((v >> 12) & 0x3)
	f.NestedTask = v&(1<<14) != 0
}

// Reset clears the flags register to its model-independent neutral
// state. Callers apply the model-specific reset PS value (always 0x0002,
// but kept as a parameter for clarity at call sites) via SetPS.
func (f *Flags) Reset() {
	*f = Flags{}
}
