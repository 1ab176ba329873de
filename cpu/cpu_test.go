package cpu_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/AdminOfLife/pcjs/cpu"
	"github.com/AdminOfLife/pcjs/cpu/interrupt"
	"github.com/AdminOfLife/pcjs/cpu/membus"
	"github.com/AdminOfLife/pcjs/cpu/model"
	"github.com/AdminOfLife/pcjs/instance"
	"github.com/AdminOfLife/pcjs/preferences"
)

// constPIC always offers the same vector, just enough to drive
// CheckINTR's hardware-IRQ branch in a test without a real 8259.
type constPIC struct{ vector int16 }

func (p constPIC) UpdateINTR(raise bool) {}
func (p constPIC) IRRVector() int16      { return p.vector }
func (p constPIC) DelayINTR()            {}

// newTestCPU wires a CPU with a single flat RAM block covering the
// whole address space, matching the mockMem-equivalent setup the
// decode/segment/membus package tests already use.
func newTestCPU(t *testing.T, m model.Model) (*cpu.CPU, *membus.RAM) {
	t.Helper()
	mask := m.ResetAddrMask()
	bus := membus.New(mask+1, mask, mask)
	ram := membus.NewRAM(0, mask+1)
	bus.InstallBlocks(0, mask+1, ram.Vtable())

	ins := instance.New(preferences.Preferences{}, 1)
	ins.Normalise()
	return cpu.New(m, ins, bus, nil), ram
}

func TestResetState8088(t *testing.T) {
	c, _ := newTestCPU(t, model.I8088)

	require.Equal(t, uint16(0), c.AX.Value())
	require.Equal(t, uint16(0), c.SP.Value())
	require.Equal(t, uint16(0xffff), c.CS.Selector)
	require.Equal(t, uint16(0), c.IP.Value())
	require.Equal(t, uint16(0), c.DS.Selector)
	require.Equal(t, uint16(0), c.ES.Selector)
	require.Equal(t, uint16(0), c.SS.Selector)
	require.Equal(t, uint16(0x0002), c.Flags.PS())
}

func TestResetState80286(t *testing.T) {
	c, _ := newTestCPU(t, model.I80286)

	require.Equal(t, uint16(0xf000), c.CS.Selector)
	require.Equal(t, uint32(0xff0000), c.CS.Base)
	require.Equal(t, uint16(0xfff0), c.IP.Value())
	require.Equal(t, uint16(0xfff0), c.Seg.MSW)
	require.Equal(t, uint16(0x03ff), c.Seg.IDTR.Limit)
}

func TestMovAXImm16(t *testing.T) {
	c, ram := newTestCPU(t, model.I8088)
	c.CS.LoadReal(0x1000)
	c.IP.Load(0x0020)
	ram.Load(buildProgram(0x10020, []byte{0xb8, 0x34, 0x12}))

	_, err := c.StepCPU(1)
	require.NoError(t, err)

	require.Equal(t, uint16(0x1234), c.AX.Value())
	require.Equal(t, uint16(0x0023), c.IP.Value())
	require.Equal(t, uint32(0x10023), c.CS.Linear(uint32(c.IP.Value())))
}

func TestAddFlagsOverflow(t *testing.T) {
	c, ram := newTestCPU(t, model.I8088)
	c.CS.LoadReal(0)
	c.IP.Load(0)
	c.AX.Load(0x7fff)
	ram.Load(buildProgram(0, []byte{0x05, 0x01, 0x00})) // ADD AX,1

	_, err := c.StepCPU(1)
	require.NoError(t, err)

	require.Equal(t, uint16(0x8000), c.AX.Value())
	require.False(t, c.Flags.CF())
	require.False(t, c.Flags.ZF())
	require.True(t, c.Flags.SF())
	require.True(t, c.Flags.OF())
	require.True(t, c.Flags.PF()) // 0x8000's low byte is 0x00: zero set bits is even parity
	require.True(t, c.Flags.AF())
}

func TestShiftCountMasking(t *testing.T) {
	cases := []struct {
		m    model.Model
		want uint16
	}{
		{model.I8088, 0},      // 33 unmasked shifts of a 16-bit value clears it
		{model.I80286, 0x0002}, // 33 & 0x1f = 1, 1<<1 = 2
	}
	for _, tc := range cases {
		c, ram := newTestCPU(t, tc.m)
		c.CS.LoadReal(0)
		c.IP.Load(0)
		c.AX.Load(1)
		c.CX.LoadLow(33)
		ram.Load(buildProgram(0, []byte{0xd3, 0xe0})) // SHL AX,CL

		_, err := c.StepCPU(1)
		require.NoError(t, err)
		require.Equal(t, tc.want, c.AX.Value(), "model %s", tc.m)
	}
}

func TestRealModeINTPushOrderAndTarget(t *testing.T) {
	c, ram := newTestCPU(t, model.I8088)

	c.CS.LoadReal(0x0100)
	c.IP.Load(0x0000)
	c.Flags.SetPS(0x0202)
	c.SS.LoadReal(0)
	c.SP.Load(0x0100)
	ram.Load(buildProgram(0x01000, []byte{0xcd, 0x21})) // INT 0x21

	// IVT entry 0x21: IP=0x0100, CS=0x2000. Poked after Load since Load
	// zeroes every byte up to its buffer length, including low memory.
	ram.Poke(0x21*4, 0x00)
	ram.Poke(0x21*4+1, 0x01)
	ram.Poke(0x21*4+2, 0x00)
	ram.Poke(0x21*4+3, 0x20)

	_, err := c.StepCPU(1)
	require.NoError(t, err)

	sp := c.SP.Value()
	require.Equal(t, uint16(0x0100-6), sp)
	ip := c.Bus.ReadWord(uint32(sp))
	cs := c.Bus.ReadWord(uint32(sp) + 2)
	ps := c.Bus.ReadWord(uint32(sp) + 4)
	require.Equal(t, uint16(0x0002), ip)
	require.Equal(t, uint16(0x0100), cs)
	require.Equal(t, uint16(0x0202), ps)

	require.Equal(t, uint16(0x2000), c.CS.Selector)
	require.Equal(t, uint16(0x0100), c.IP.Value())
	require.False(t, c.Flags.InterruptEnable)
	require.False(t, c.Flags.Trap)
}

// This checks the uninterrupted case: the count-down, the source and
// destination advance, and the bytes actually moved. The interrupted-
// mid-repeat resumability §8 property 5 names is covered separately by
// TestRepMovsbInterruptedMidRepeatResumesAtPrefix.
func TestRepMovsbCompletesAndCopiesBytes(t *testing.T) {
	c, ram := newTestCPU(t, model.I8088)
	c.CS.LoadReal(0)
	c.IP.Load(0x4000)
	c.DS.LoadReal(0)
	c.ES.LoadReal(0)
	c.SI.Load(0x5000)
	c.DI.Load(0x6000)
	c.CX.Load(4)
	prog := buildProgram(0x4000, []byte{0xf3, 0xa4}) // REP MOVSB
	ram.Load(prog)
	for i := uint32(0); i < 4; i++ {
		ram.Poke(0x5000+i, uint8(0xa0+i))
	}

	_, err := c.StepCPU(1)
	require.NoError(t, err)

	require.Equal(t, uint16(0), c.CX.Value())
	require.Equal(t, uint16(0x5004), c.SI.Value())
	require.Equal(t, uint16(0x6004), c.DI.Value())
	for i := uint32(0); i < 4; i++ {
		require.Equal(t, uint8(0xa0+i), c.Bus.ReadByte(0x6000+i))
	}
}

// A pending hardware IRQ mid-count must rewind IP (and the pushed
// return address) to the REP prefix byte, not the instruction after it,
// so IRET resumes the string instruction with CX already reduced by the
// completed iterations rather than restarting or skipping it — §8
// property 5, seed scenario 6.
func TestRepMovsbInterruptedMidRepeatResumesAtPrefix(t *testing.T) {
	c, ram := newTestCPU(t, model.I8088)
	c.CS.LoadReal(0)
	c.IP.Load(0x4000)
	c.DS.LoadReal(0)
	c.ES.LoadReal(0)
	c.SS.LoadReal(0)
	c.SP.Load(0x2000)
	c.SI.Load(0x5000)
	c.DI.Load(0x6000)
	c.CX.Load(4)
	c.Flags.InterruptEnable = true

	const prefixAddr = 0x4000
	prog := buildProgram(prefixAddr, []byte{0xf3, 0xa4}) // REP MOVSB
	ram.Load(prog)
	for i := uint32(0); i < 4; i++ {
		ram.Poke(0x5000+i, uint8(0xa0+i))
	}

	// IVT entry for vector 9: jump to 0x9000:0x0010.
	ram.Poke(9*4+0, 0x10)
	ram.Poke(9*4+1, 0x00)
	ram.Poke(9*4+2, 0x00)
	ram.Poke(9*4+3, 0x90)

	c.PIC = constPIC{vector: 9}
	snap := c.Snapshot()
	snap.Scratch.IntFlags = uint8(interrupt.FlagINTR)
	require.NoError(t, c.Restore(snap))
	// open the one-instruction inhibit window (as an STI or SS load
	// would), so the IRQ is passed over at the instruction boundary and
	// first seen by the REP loop after its first iteration.
	c.Seg.NoIntr = true

	_, err := c.StepCPU(1)
	require.NoError(t, err)

	// one iteration completed before the interrupt was taken mid-count
	require.Equal(t, uint16(3), c.CX.Value())
	require.Equal(t, uint16(0x5001), c.SI.Value())
	require.Equal(t, uint16(0x6001), c.DI.Value())
	require.Equal(t, uint8(0xa0), c.Bus.ReadByte(0x6000))

	require.Equal(t, uint16(0x9000), c.CS.Selector)
	require.Equal(t, uint16(0x0010), c.IP.Value())

	sp := uint32(c.SP.Value())
	require.Equal(t, uint16(prefixAddr), c.Bus.ReadWord(sp))   // pushed IP
	require.Equal(t, uint16(0), c.Bus.ReadWord(sp+2))          // pushed CS
}

func TestPushSPDichotomy(t *testing.T) {
	cases := []struct {
		m    model.Model
		want uint16
	}{
		{model.I8088, 0x0100},
		{model.I80286, 0x00fe},
	}
	for _, tc := range cases {
		c, ram := newTestCPU(t, tc.m)
		c.CS.LoadReal(0)
		c.IP.Load(0)
		c.SS.LoadReal(0)
		ram.Load(buildProgram(0, []byte{
			0xbc, 0x00, 0x01, // MOV SP,0x0100
			0x54, // PUSH SP
		}))

		// StepCPU's argument is a cycle budget, so step each of the two
		// instructions on its own.
		_, err := c.StepCPU(1)
		require.NoError(t, err)
		_, err = c.StepCPU(1)
		require.NoError(t, err)

		got := c.Bus.ReadWord(0x00fe)
		require.Equal(t, tc.want, got, "model %s", tc.m)
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	c, _ := newTestCPU(t, model.I8088)
	c.AX.Load(0x1234)
	c.CX.Load(0x5678)
	c.CS.LoadReal(0x0800)
	c.IP.Load(0x0042)
	c.Flags.SetPS(0x0246)

	snap := c.Snapshot()

	other, _ := newTestCPU(t, model.I8088)
	require.NoError(t, other.Restore(snap))

	require.Equal(t, c.AX.Value(), other.AX.Value())
	require.Equal(t, c.CX.Value(), other.CX.Value())
	require.Equal(t, c.CS.Selector, other.CS.Selector)
	require.Equal(t, c.IP.Value(), other.IP.Value())
	require.Equal(t, c.Flags.PS(), other.Flags.PS())
}

func TestRestoreRejectsUnknownSegmentOverrideName(t *testing.T) {
	c, _ := newTestCPU(t, model.I8088)
	snap := c.Snapshot()
	snap.Scratch.SegDataName = "XS" // not one of CS/DS/SS/ES

	err := c.Restore(snap)
	require.Error(t, err)
}

// buildProgram returns a byte slice long enough to Load at offset 0 that
// places code at linearAddr; tests load the whole RAM block once since
// membus.RAM.Load writes starting at its own base.
func buildProgram(linearAddr uint32, code []byte) []byte {
	buf := make([]byte, linearAddr+uint32(len(code)))
	copy(buf[linearAddr:], code)
	return buf
}
