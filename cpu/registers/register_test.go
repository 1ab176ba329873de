package registers_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AdminOfLife/pcjs/cpu/registers"
)

func TestNewRegister16LabelAndValue(t *testing.T) {
	r := registers.NewRegister16(0x1234, "AX")
	require.Equal(t, "AX", r.Label())
	require.EqualValues(t, 0x1234, r.Value())
	require.Equal(t, "AX=0x1234", r.String())
}

func TestLoadLowAndHighPreserveOtherHalf(t *testing.T) {
	r := registers.NewRegister16(0x1234, "AX")

	r.LoadLow(0xff)
	require.EqualValues(t, 0x12ff, r.Value())
	require.EqualValues(t, 0xff, r.Low())
	require.EqualValues(t, 0x12, r.High())

	r.LoadHigh(0xab)
	require.EqualValues(t, 0xabff, r.Value())
	require.EqualValues(t, 0xab, r.High())
}

func TestAddWrapSetsCarryNoOverflow(t *testing.T) {
	r := registers.NewRegister16(0xffff, "AX")

	carry, overflow := r.Add(1, false)
	require.EqualValues(t, 0, r.Value())
	require.True(t, carry)
	require.False(t, overflow)
}

func TestAddSignedOverflowNoCarry(t *testing.T) {
	r := registers.NewRegister16(0x7fff, "AX")

	carry, overflow := r.Add(1, false)
	require.EqualValues(t, 0x8000, r.Value())
	require.False(t, carry)
	require.True(t, overflow)
}

func TestAddWithIncomingCarry(t *testing.T) {
	r := registers.NewRegister16(1, "AX")

	carry, overflow := r.Add(1, true)
	require.EqualValues(t, 3, r.Value())
	require.False(t, carry)
	require.False(t, overflow)
}

func TestAddLowByteOverflowLeavesHighUntouched(t *testing.T) {
	r := registers.NewRegister16(0xff7f, "AX")

	carry, overflow := r.AddLow(1, false)
	require.EqualValues(t, 0x80, r.Low())
	require.EqualValues(t, 0xff, r.High())
	require.False(t, carry)
	require.True(t, overflow)
}

func TestSubtractExactEqualHasNoCarryNoOverflow(t *testing.T) {
	r := registers.NewRegister16(5, "CX")

	carry, overflow := r.Subtract(5, true)
	require.EqualValues(t, 0, r.Value())
	require.True(t, carry)
	require.False(t, overflow)
}

func TestSubtractBorrowClearsCarry(t *testing.T) {
	r := registers.NewRegister16(0, "CX")

	carry, overflow := r.Subtract(1, true)
	require.EqualValues(t, 0xffff, r.Value())
	require.False(t, carry)
	require.False(t, overflow)
}

func TestSubtractLowHalfIsIndependentOfHigh(t *testing.T) {
	r := registers.NewRegister16(0xaa00, "DX")

	carry, overflow := r.SubtractLow(1, true)
	require.EqualValues(t, 0xff, r.Low())
	require.EqualValues(t, 0xaa, r.High())
	require.False(t, carry)
	require.False(t, overflow)
}

func TestBitwiseOperators(t *testing.T) {
	r := registers.NewRegister16(0x0f0f, "BX")

	r.AND(0x00ff)
	require.EqualValues(t, 0x000f, r.Value())

	r.OR(0xf000)
	require.EqualValues(t, 0xf00f, r.Value())

	r.EOR(0xffff)
	require.EqualValues(t, 0x0ff0, r.Value())
}

func TestIsZeroAndIsNegative(t *testing.T) {
	r := registers.NewRegister16(0, "AX")
	require.True(t, r.IsZero())
	require.False(t, r.IsNegative())

	r.Load(0x8000)
	require.False(t, r.IsZero())
	require.True(t, r.IsNegative())
}

func TestParityReflectsLowByteOnly(t *testing.T) {
	r := registers.NewRegister16(0xff03, "AX") // low byte 0x03: two bits set, even parity
	require.True(t, r.Parity())

	r.Load(0xff01) // low byte 0x01: one bit set, odd parity
	require.False(t, r.Parity())
}
