package segment_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AdminOfLife/pcjs/cpu/membus"
	"github.com/AdminOfLife/pcjs/cpu/model"
	"github.com/AdminOfLife/pcjs/cpu/registers"
	"github.com/AdminOfLife/pcjs/cpu/segment"
)

func newBus() *membus.Bus {
	b := membus.New(0x100000, 0x0fffff, 0x1fffff)
	ram := membus.NewRAM(0, 0x10000)
	b.InstallBlocks(0, 0x10000, ram.Vtable())
	return b
}

func TestRealModeLoadSynthesizesBaseAndLimit(t *testing.T) {
	u := segment.New(newBus(), model.I8088)
	ds := registers.NewSegment("DS")

	err := u.Load(ds, 0x1234, segment.KindData)
	require.NoError(t, err)
	require.Equal(t, uint32(0x12340), ds.Base)
	require.Equal(t, uint32(0xffff), ds.Limit)
	require.False(t, ds.Null)
}

func TestRealModeStackLoadOpensNoIntrWindow(t *testing.T) {
	u := segment.New(newBus(), model.I8088)
	ss := registers.NewSegment("SS")

	require.False(t, u.NoIntr)
	require.NoError(t, u.Load(ss, 0x2000, segment.KindStack))
	require.True(t, u.NoIntr)
}

// writeDescriptor installs an 8-byte protected-mode descriptor at
// table+selector&0xfff8, following the (limit, base, access, limit_hi)
// layout the segment package decodes.
func writeDescriptor(t *testing.T, b *membus.Bus, addr uint32, base, limit uint32, access uint8) {
	t.Helper()
	b.WriteByte(addr+0, uint8(limit))
	b.WriteByte(addr+1, uint8(limit>>8))
	b.WriteByte(addr+2, uint8(base))
	b.WriteByte(addr+3, uint8(base>>8))
	b.WriteByte(addr+4, uint8(base>>16))
	b.WriteByte(addr+5, access)
	b.WriteByte(addr+6, uint8((limit>>16)&0x0f))
	b.WriteByte(addr+7, uint8(base>>24))
}

func TestProtectedModeDataLoadFromGDT(t *testing.T) {
	bus := newBus()
	u := segment.New(bus, model.I80286)
	u.MSW = 0x0001 // PE
	u.GDTR = segment.Table{Base: 0x0000, Limit: 0x0fff}

	// selector 0x0008: GDT index 1, a writable data descriptor
	writeDescriptor(t, bus, 0x0008, 0x5000, 0x0fff, 0x92) // present, DPL0, data, writable

	ds := registers.NewSegment("DS")
	require.NoError(t, u.Load(ds, 0x0008, segment.KindData))
	require.Equal(t, uint32(0x5000), ds.Base)
	require.Equal(t, uint32(0x0fff), ds.Limit)
	require.True(t, ds.Access.Writable)
}

func TestProtectedModeCodeLoadSetsCPL(t *testing.T) {
	bus := newBus()
	u := segment.New(bus, model.I80286)
	u.MSW = 0x0001
	u.GDTR = segment.Table{Base: 0x0000, Limit: 0x0fff}

	writeDescriptor(t, bus, 0x0010, 0x8000, 0xffff, 0x9a) // present, DPL0, code, executable/readable

	cs := registers.NewSegment("CS")
	// selector RPL=3: index 2, requested privilege 3
	require.NoError(t, u.Load(cs, 0x0013, segment.KindCode))
	require.Equal(t, uint8(3), u.CPL)
}

func TestProtectedModeLimitViolationFaults(t *testing.T) {
	bus := newBus()
	u := segment.New(bus, model.I80286)
	u.MSW = 0x0001
	u.GDTR = segment.Table{Base: 0x0000, Limit: 0x0fff}
	writeDescriptor(t, bus, 0x0008, 0x5000, 0x0010, 0x92)

	ds := registers.NewSegment("DS")
	require.NoError(t, u.Load(ds, 0x0008, segment.KindData))

	_, err := u.CheckRead(ds, 0x0020, 0)
	require.Error(t, err)
}

func TestNullSegmentUseFaults(t *testing.T) {
	bus := newBus()
	u := segment.New(bus, model.I80286)
	u.MSW = 0x0001
	u.GDTR = segment.Table{Base: 0x0000, Limit: 0x0fff}

	es := registers.NewSegment("ES")
	require.NoError(t, u.Load(es, 0x0000, segment.KindData))
	require.True(t, es.Null)

	_, err := u.CheckRead(es, 0, 0)
	require.Error(t, err)
}
