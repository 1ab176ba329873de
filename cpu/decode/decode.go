// Package decode implements ModRM/SIB decoding and effective-address
// resolution. It is deliberately kept free of bus/prefetch access: the
// byte-fetch loop that drives IP and the prefetch queue together lives
// in the cpu package, which feeds this package already-fetched bytes
// and already-read register values and gets back a resolved operand.
package decode

import "github.com/AdminOfLife/pcjs/cpu/model"

// SegKind names which segment register supplies the default base for a
// resolved memory operand, before any segment-override prefix is
// applied (§4.5: DS for BX/SI/DI/direct forms, SS for BP-based forms).
type SegKind int

const (
	SegDS SegKind = iota
	SegSS
)

// Fields is the decoded (mod, reg, r/m) triple from a ModRM byte.
type Fields struct {
	Mod uint8
	Reg uint8
	RM  uint8
}

// DecodeModRM splits a ModRM byte into its three fields.
func DecodeModRM(b uint8) Fields {
	return Fields{Mod: b >> 6 & 0x3, Reg: b >> 3 & 0x7, RM: b & 0x7}
}

// DecodeSIB splits a SIB byte (80386+; included for completeness since
// the instruction table never emits a ModRM requiring one on these
// models) into its (scale, index, base) fields.
func DecodeSIB(b uint8) (scale, index, base uint8) {
	return b >> 6 & 0x3, b >> 3 & 0x7, b & 0x7
}

// GPValues is the snapshot of base/index register contents EA
// resolution needs. The caller reads these out of its register file
// before calling Resolve.
type GPValues struct {
	BX, BP, SI, DI uint16
}

// EA is a resolved r/m operand: either a register index (Mod == 3) or a
// memory reference with its default segment, 16-bit offset and the
// cycle cost of computing it.
type EA struct {
	IsRegister bool
	RegIndex   uint8 // valid when IsRegister

	Seg    SegKind
	Offset uint16
	Cycles int
}

// NeedsDisplacement reports whether f's r/m field requires a
// displacement to be fetched (disp8 for Mod==1, disp16 for Mod==2, and
// for Mod==0 RM==6 which is the direct-address special case, disp16).
func (f Fields) NeedsDisplacement() (size int) {
	switch f.Mod {
	case 1:
		return 1
	case 2:
		return 2
	case 0:
		if f.RM == 6 {
			return 2
		}
	}
	return 0
}

// Resolve computes the EA for f.RM given mod!=3 (a memory operand), the
// already-fetched displacement (sign-extended to 16 bits by the caller
// for disp8), and the register values needed to form base+index. m
// governs the EA cycle table: the formula is zeroed on the 80286.
func Resolve(f Fields, disp uint16, regs GPValues, m model.Model) EA {
	var base, index uint16
	var hasBase, hasIndex, isBPBased bool

	switch f.RM {
	case 0:
		base, hasBase = regs.BX, true
		index, hasIndex = regs.SI, true
	case 1:
		base, hasBase = regs.BX, true
		index, hasIndex = regs.DI, true
	case 2:
		base, hasBase, isBPBased = regs.BP, true, true
		index, hasIndex = regs.SI, true
	case 3:
		base, hasBase, isBPBased = regs.BP, true, true
		index, hasIndex = regs.DI, true
	case 4:
		index, hasIndex = regs.SI, true
	case 5:
		index, hasIndex = regs.DI, true
	case 6:
		if f.Mod == 0 {
			// direct address: disp16, no base/index
		} else {
			base, hasBase, isBPBased = regs.BP, true, true
		}
	case 7:
		base, hasBase = regs.BX, true
	}

	offset := disp
	if hasBase {
		offset += base
	}
	if hasIndex {
		offset += index
	}

	seg := SegDS
	if isBPBased {
		seg = SegSS
	}

	return EA{Seg: seg, Offset: offset, Cycles: eaCycles(f, hasIndex, m)}
}

// awkwardPair reports whether rm names one of the two base+index
// combinations that carry an extra cycle penalty (§4.5).
func awkwardPair(rm uint8) bool {
	return rm == 1 || rm == 2 // BX+DI, BP+SI
}

func eaCycles(f Fields, hasIndex bool, m model.Model) int {
	if m == model.I80286 {
		return 0
	}
	cycles := 5
	if f.NeedsDisplacement() > 0 {
		cycles++
	}
	if hasIndex {
		cycles++
	}
	if f.Mod != 3 && f.RM <= 3 && awkwardPair(f.RM) {
		cycles += 2
	}
	return cycles
}
