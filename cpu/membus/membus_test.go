package membus_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AdminOfLife/pcjs/cpu/membus"
)

func TestOpenBusReadsZeroAndSwallowsWrites(t *testing.T) {
	bus := membus.New(0x100000, 0x0fffff, 0x1fffff)

	require.Equal(t, uint8(0), bus.ReadByte(0x4000))
	bus.WriteByte(0x4000, 0x42) // no block installed: must not panic
	require.Equal(t, uint8(0), bus.ReadByte(0x4000))
}

func TestRAMRoundTrip(t *testing.T) {
	bus := membus.New(0x100000, 0x0fffff, 0x1fffff)
	ram := membus.NewRAM(0, 0x1000)
	bus.InstallBlocks(0, 0x1000, ram.Vtable())

	bus.WriteByte(0x10, 0xab)
	require.Equal(t, uint8(0xab), bus.ReadByte(0x10))

	bus.WriteWord(0x20, 0x1234)
	require.Equal(t, uint16(0x1234), bus.ReadWord(0x20))
	require.Equal(t, uint8(0x34), bus.ReadByte(0x20))
	require.Equal(t, uint8(0x12), bus.ReadByte(0x21))
}

func TestWordStraddlesBlockBoundary(t *testing.T) {
	bus := membus.New(0x4000, 0x0fffff, 0x1fffff)
	ramA := membus.NewRAM(0, membus.BlockSize)
	ramB := membus.NewRAM(membus.BlockSize, membus.BlockSize)
	bus.InstallBlocks(0, membus.BlockSize, ramA.Vtable())
	bus.InstallBlocks(membus.BlockSize, membus.BlockSize, ramB.Vtable())

	last := uint32(membus.BlockSize - 1)
	bus.WriteWord(last, 0xbeef)
	require.Equal(t, uint8(0xef), bus.ReadByte(last))
	require.Equal(t, uint8(0xbe), bus.ReadByte(last+1))
	require.Equal(t, uint16(0xbeef), bus.ReadWord(last))
}

func TestA20GateTogglesAddrMask(t *testing.T) {
	bus := membus.New(0x200000, 0x0fffff, 0x1fffff)
	ram := membus.NewRAM(0, membus.BlockSize)
	bus.InstallBlocks(0, membus.BlockSize, ram.Vtable())

	// with A20 off, an access at 0x100000 wraps to 0x000000 and hits ram
	require.False(t, bus.A20())
	bus.WriteByte(0x000010, 0x7e)
	require.Equal(t, uint8(0x7e), bus.ReadByte(0x100010))

	bus.SetA20(true)
	require.True(t, bus.A20())
	require.Equal(t, uint8(0), bus.ReadByte(0x100010))
}
