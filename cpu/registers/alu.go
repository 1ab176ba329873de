package registers

// Add computes a + b (+1 if carryIn) at the given operand width and
// records the triple that makes every Flags getter read back correctly.
// a and b must already be masked to size-1. The returned value is the
// masked (wrapped) result; resultValue itself is left unmasked so CF can
// read the carry-out bit directly.
func (f *Flags) Add(a, b uint32, carryIn bool, size uint32) uint32 {
	sum := a + b
	if carryIn {
		sum++
	}
	f.SetResult(sum, sum, a^b, size)
	return sum & (size - 1)
}

// Sub computes a - b (-1 if borrowIn) at the given width. It is
// implemented as an addition of the one's complement of b (the same
// trick a real ALU's adder uses to subtract), which gets SF/ZF/PF/OF
// right directly; CF and AF come out inverted by that trick (the
// adder's carry-out means "no borrow", the opposite of what x86 wants)
// so they're flipped afterward.
func (f *Flags) Sub(a, b uint32, borrowIn bool, size uint32) uint32 {
	notb := b ^ (size - 1)
	r := f.Add(a, notb, !borrowIn, size)
	f.SetCF(!f.CF())
	f.SetAF(!f.AF())
	return r
}

// Logic records the triple for AND/OR/XOR/TEST: CF and OF are always
// clear, SF/ZF/PF reflect the result, and AF is left clear (Intel
// documents AF as undefined for these; clearing it is the common,
// deterministic emulator choice).
func (f *Flags) Logic(result, size uint32) uint32 {
	f.SetResult(result, result, result, size)
	return result
}

// Inc and Dec are Add/Sub by 1 with CF explicitly preserved, matching
// INC/DEC's documented behavior of leaving the carry flag alone.
func (f *Flags) Inc(a, size uint32) uint32 {
	cf := f.CF()
	r := f.Add(a, 1, false, size)
	f.SetCF(cf)
	return r
}

func (f *Flags) Dec(a, size uint32) uint32 {
	cf := f.CF()
	r := f.Sub(a, 1, false, size)
	f.SetCF(cf)
	return r
}

// Neg is two's complement negation (0 - a), used by NEG and by decimal
// adjust helpers.
func (f *Flags) Neg(a, size uint32) uint32 {
	return f.Sub(0, a, false, size)
}

// DecimalAdjustAdd implements DAA's correction of AL after a byte
// addition that produced a packed-BCD result: each nibble that overran 9
// is corrected back into range and folded into CF/AF. SF/ZF/PF are
// re-derived from the corrected AL; OF is left as the addition set it,
// since Intel documents DAA's OF as undefined.
func (f *Flags) DecimalAdjustAdd(al uint8) uint8 {
	oldAL, oldCF := al, f.CF()
	af := false
	if al&0x0f > 9 || f.AF() {
		al += 6
		af = true
	}
	cf := oldCF
	if oldAL > 0x99 || oldCF {
		al += 0x60
		cf = true
	}
	f.SetResult(uint32(al), uint32(al), uint32(al), SizeByte)
	f.SetCF(cf)
	f.SetAF(af)
	return al
}

// DecimalAdjustSub implements DAS, the AF/CF-aware mirror of
// DecimalAdjustAdd for SUB.
func (f *Flags) DecimalAdjustSub(al uint8) uint8 {
	oldAL, oldCF := al, f.CF()
	af := false
	if al&0x0f > 9 || f.AF() {
		al -= 6
		af = true
	}
	cf := oldCF
	if oldAL > 0x99 || oldCF {
		al -= 0x60
		cf = true
	}
	f.SetResult(uint32(al), uint32(al), uint32(al), SizeByte)
	f.SetCF(cf)
	f.SetAF(af)
	return al
}

// AdjustASCIIAdd implements AAA: corrects an unpacked-BCD addition left
// in AL, carrying into AH when the low nibble overran. Intel documents
// SF/ZF/PF/OF as undefined for AAA; only CF/AF are meaningful and set
// here.
func (f *Flags) AdjustASCIIAdd(al, ah uint8) (newAL, newAH uint8) {
	if al&0x0f > 9 || f.AF() {
		al += 6
		ah++
		f.SetAF(true)
		f.SetCF(true)
	} else {
		f.SetAF(false)
		f.SetCF(false)
	}
	return al & 0x0f, ah
}

// AdjustASCIISub implements AAS, AAA's subtraction-side mirror.
func (f *Flags) AdjustASCIISub(al, ah uint8) (newAL, newAH uint8) {
	if al&0x0f > 9 || f.AF() {
		al -= 6
		ah--
		f.SetAF(true)
		f.SetCF(true)
	} else {
		f.SetAF(false)
		f.SetCF(false)
	}
	return al & 0x0f, ah
}

// AdjustASCIIMul implements AAM: converts the byte product MUL left in
// AX into two unpacked-BCD digits by dividing AL by the instruction's
// divisor (10 for the documented AAM). CF/AF/OF are undefined per Intel;
// SF/ZF/PF are derived from the quotient left in AL.
func (f *Flags) AdjustASCIIMul(al, divisor uint8) (newAL, newAH uint8) {
	newAH = al / divisor
	newAL = al % divisor
	f.SetResult(uint32(newAL), uint32(newAL), uint32(newAL), SizeByte)
	return
}

// AdjustASCIIDiv implements AAD: folds two unpacked-BCD digits in AH:AL
// into a single binary byte in AL ahead of a DIV, the inverse of
// AdjustASCIIMul. CF/AF/OF are undefined per Intel; SF/ZF/PF are derived
// from the folded AL.
func (f *Flags) AdjustASCIIDiv(al, ah, multiplier uint8) (newAL, newAH uint8) {
	newAL = uint8((uint16(ah)*uint16(multiplier) + uint16(al)) & 0xff)
	newAH = 0
	f.SetResult(uint32(newAL), uint32(newAL), uint32(newAL), SizeByte)
	return
}
