package registers_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AdminOfLife/pcjs/cpu/registers"
)

func TestAddWordWrapSetsCarryZeroAuxNotOverflow(t *testing.T) {
	var f registers.Flags

	r := f.Add(0xffff, 1, false, registers.SizeWord)
	require.EqualValues(t, 0, r)
	require.True(t, f.CF())
	require.True(t, f.ZF())
	require.False(t, f.SF())
	require.True(t, f.PF())
	require.True(t, f.AF())
	require.False(t, f.OF())
}

func TestAddByteSignedOverflowNoCarry(t *testing.T) {
	var f registers.Flags

	r := f.Add(0x7f, 1, false, registers.SizeByte)
	require.EqualValues(t, 0x80, r)
	require.False(t, f.CF())
	require.False(t, f.ZF())
	require.True(t, f.SF())
	require.False(t, f.PF())
	require.True(t, f.AF())
	require.True(t, f.OF())
}

func TestSubEqualOperandsClearsCarryAndSetsZero(t *testing.T) {
	var f registers.Flags

	r := f.Sub(5, 5, false, registers.SizeByte)
	require.EqualValues(t, 0, r)
	require.True(t, f.ZF())
	require.False(t, f.CF())
	require.False(t, f.OF())
}

func TestSubBorrowSetsCarryAndSign(t *testing.T) {
	var f registers.Flags

	r := f.Sub(0, 1, false, registers.SizeByte)
	require.EqualValues(t, 0xff, r)
	require.True(t, f.CF())
	require.True(t, f.SF())
	require.False(t, f.ZF())
}

func TestLogicClearsCarryAndOverflow(t *testing.T) {
	var f registers.Flags
	f.Add(0xffff, 1, false, registers.SizeWord)
	require.True(t, f.CF())

	r := f.Logic(0x8000, registers.SizeWord)
	require.EqualValues(t, 0x8000, r)
	require.False(t, f.CF())
	require.False(t, f.OF())
	require.True(t, f.SF())
	require.False(t, f.ZF())
}

func TestIncDecPreserveCarry(t *testing.T) {
	var f registers.Flags
	f.SetPS(0x0002) // establish a valid resultSize before using the setters directly
	f.SetCF(true)

	f.Inc(0x0f, registers.SizeByte)
	require.True(t, f.CF())
	require.True(t, f.AF())

	f.SetCF(false)
	f.Dec(0x10, registers.SizeByte)
	require.False(t, f.CF())
	require.True(t, f.AF())
}

func TestNegZeroIsZeroWithNoCarry(t *testing.T) {
	var f registers.Flags

	r := f.Neg(0, registers.SizeByte)
	require.EqualValues(t, 0, r)
	require.True(t, f.ZF())
	require.False(t, f.CF())
}

func TestNegNonzeroSetsCarry(t *testing.T) {
	var f registers.Flags

	r := f.Neg(1, registers.SizeByte)
	require.EqualValues(t, 0xff, r)
	require.True(t, f.CF())
	require.False(t, f.ZF())
}

func TestSetPSIndividualBitsRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		bit  uint16
		get  func(*registers.Flags) bool
	}{
		{"CF", 1 << 0, (*registers.Flags).CF},
		{"PF", 1 << 2, (*registers.Flags).PF},
		{"AF", 1 << 4, (*registers.Flags).AF},
		{"ZF", 1 << 6, (*registers.Flags).ZF},
		{"SF", 1 << 7, (*registers.Flags).SF},
		{"OF", 1 << 11, (*registers.Flags).OF},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var f registers.Flags

			f.SetPS(0x0002 | c.bit)
			require.True(t, c.get(&f))
			require.Equal(t, uint16(0x0002|c.bit), f.PS())

			f.SetPS(0x0002)
			require.False(t, c.get(&f))
			require.Equal(t, uint16(0x0002), f.PS())
		})
	}
}

func TestSetPSControlBitsAndIOPL(t *testing.T) {
	var f registers.Flags

	f.SetPS(0x0002 | 1<<8 | 1<<9 | 1<<10 | 3<<12 | 1<<14)
	require.True(t, f.Trap)
	require.True(t, f.InterruptEnable)
	require.True(t, f.Direction)
	require.EqualValues(t, 3, f.IOPL)
	require.True(t, f.NestedTask)

	f.SetPS(0x0002)
	require.False(t, f.Trap)
	require.False(t, f.InterruptEnable)
	require.False(t, f.Direction)
	require.EqualValues(t, 0, f.IOPL)
	require.False(t, f.NestedTask)
}

func TestResetClearsEverything(t *testing.T) {
	var f registers.Flags
	f.SetPS(0xffff)
	f.Reset()

	// a zeroed triple reads back as a zero result: ZF and PF set (zero
	// has even parity) plus the always-1 bit; every other flag and
	// control bit is clear.
	require.EqualValues(t, 0x0046, f.PS())
	require.False(t, f.CF())
	require.True(t, f.ZF())
	require.False(t, f.SF())
	require.False(t, f.AF())
	require.False(t, f.OF())
	require.False(t, f.Trap)
	require.False(t, f.InterruptEnable)
	require.False(t, f.Direction)
}
