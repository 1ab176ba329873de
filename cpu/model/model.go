// Package model centralises the per-variant constants the rest of the
// cpu tree needs: which CPU we're emulating and the handful of
// behavioral deltas that vary by variant (shift-count masking, the 0x0F
// decode, segment-wrap rules, prefetch depth, reset vector and default
// clock).
package model

// Model names one of the emulated CPU variants.
type Model int

// Supported variants. 80188 shares 80186 timing/decode and is not given
// its own constant; callers that care about the 8-bit external bus
// distinction do so above this package.
const (
	I8088 Model = iota
	I80186
	I80286
)

func (m Model) String() string {
	switch m {
	case I8088:
		return "8088"
	case I80186:
		return "80186"
	case I80286:
		return "80286"
	}
	return "unknown"
}

// QueueDepth returns the prefetch queue size in bytes for the model (§3
// Prefetch queue).
func (m Model) QueueDepth() int {
	if m == I8088 {
		return 4
	}
	return 6
}

// DefaultCyclesPerSecond is the nominal clock used when the host does
// not override it (§6 CLI/Configuration).
func (m Model) DefaultCyclesPerSecond() int {
	switch m {
	case I80286:
		return 6_000_000
	default:
		return 4_772_727
	}
}

// MasksShiftCount reports whether shift/rotate counts are masked modulo
// 32 (80186+) rather than used unmasked (8086/8088).
func (m Model) MasksShiftCount() bool {
	return m >= I80186
}

// HasTwoByteOpcodes reports whether the 0x0F escape introduces the
// 80286 two-byte instruction map. On 8086/80186, 0x0F decodes as POP CS
// (8086) or #UD (80186+, since POP CS was removed and the slot is
// reserved).
func (m Model) HasTwoByteOpcodes() bool {
	return m == I80286
}

// SegmentWraps reports whether a word access at segment offset 0xFFFF
// wraps to offset 0x0000 within the same segment (8086/8088) instead of
// extending into the next segment, which is a fault-or-not concern on
// 80186+ (§4.6 edge cases).
func (m Model) SegmentWraps() bool {
	return m == I8088
}

// AcceptsIDIVBoundary reports whether IDIV accepts the boundary quotient
// (-128 for byte operands, -32768 for word operands) instead of raising
// #DE (§4.6 edge cases).
func (m Model) AcceptsIDIVBoundary() bool {
	return m >= I80186
}

// ProtectedModeCapable reports whether the model implements descriptor
// tables, CPL/DPL checks and the LGDT/LMSW/etc instruction family.
func (m Model) ProtectedModeCapable() bool {
	return m == I80286
}

// ResetCS, ResetCSBase and ResetIP give the CS:IP the core loads on
// reset (§3 Lifecycles).
func (m Model) ResetCS() uint16 {
	if m == I80286 {
		return 0xf000
	}
	return 0xffff
}

// ResetCSBase only has a meaningful value on the 80286: its reset CS
// selector (0xF000) and reset CS base (0xFF0000) disagree with the
// selector<<4 real-mode formula, since the reset descriptor cache is
// latched directly rather than loaded via LoadReal. 8088/80186 reset
// through LoadReal(ResetCS()), whose own selector<<4 already produces
// the correct base (0xFFFF0), so this has no caller for those models.
func (m Model) ResetCSBase() uint32 {
	return 0xff0000
}

func (m Model) ResetIP() uint16 {
	if m == I80286 {
		return 0xfff0
	}
	return 0x0000
}

// ResetAddrMask is the A20-gate-off physical address mask on reset.
func (m Model) ResetAddrMask() uint32 {
	if m == I80286 {
		return 0x00ffffff
	}
	return 0x000fffff
}

// ResetPS is the model-specific reset value of the direct-bits half of
// the processor status word (§8 seed scenario 1).
func (m Model) ResetPS() uint16 {
	return 0x0002
}

// ResetMSW is the 80286 Machine Status Word reset value; meaningless on
// earlier models.
func (m Model) ResetMSW() uint16 {
	return 0xfff0
}

// ResetIDTLimit is the IDT limit latched at reset; only meaningful on
// the 80286, where the IDT always exists (real mode addresses it
// directly as the IVT with a fixed 0x3FF limit).
func (m Model) ResetIDTLimit() uint16 {
	return 0x03ff
}
