package prefetch_test

import (
	"testing"

	"github.com/AdminOfLife/pcjs/cpu/prefetch"
)

type mockBus struct {
	mem [0x100]uint8
}

func (m *mockBus) ReadByte(addr uint32) uint8 { return m.mem[addr&0xff] }

func TestFillRespectsQueueDepth(t *testing.T) {
	bus := &mockBus{}
	q := prefetch.New(bus, 4)
	q.Flush(0)

	if c := q.Fill(8); c != 16 {
		t.Errorf("expected 16 cycles for 4 bytes filled, got %d", c)
	}
	if q.QueuedBytes() != 4 {
		t.Errorf("expected queue to cap at depth 4, got %d queued", q.QueuedBytes())
	}
}

func TestFetchByteDrainsInOrder(t *testing.T) {
	bus := &mockBus{}
	bus.mem[0] = 0x90
	bus.mem[1] = 0xf4
	q := prefetch.New(bus, 4)
	q.Flush(0)
	q.Fill(4)

	b, cycles := q.FetchByte(0)
	if b != 0x90 || cycles != 0 {
		t.Errorf("expected (0x90, 0 cycles) from a primed queue, got (%#02x, %d)", b, cycles)
	}
	b, _ = q.FetchByte(1)
	if b != 0xf4 {
		t.Errorf("expected second byte 0xf4, got %#02x", b)
	}
}

func TestFetchByteOnEmptyQueueCostsFourCycles(t *testing.T) {
	bus := &mockBus{}
	bus.mem[5] = 0x42
	q := prefetch.New(bus, 4)
	q.Flush(5)

	b, cycles := q.FetchByte(5)
	if b != 0x42 {
		t.Errorf("expected 0x42, got %#02x", b)
	}
	if cycles != 4 {
		t.Errorf("expected a cold fetch to cost 4 cycles, got %d", cycles)
	}
}

func TestRewindReexposesConsumedBytes(t *testing.T) {
	bus := &mockBus{}
	for i := range bus.mem[:4] {
		bus.mem[i] = uint8(i + 1)
	}
	q := prefetch.New(bus, 4)
	q.Flush(0)
	q.Fill(4)

	first, _ := q.FetchByte(0)
	if first != 1 {
		t.Errorf("expected first byte 1, got %d", first)
	}

	q.Rewind(1, 0)

	again, _ := q.FetchByte(0)
	if again != 1 {
		t.Errorf("expected rewind to re-expose byte 1, got %d", again)
	}
}

func TestRewindBeyondValidBytesFlushes(t *testing.T) {
	bus := &mockBus{}
	bus.mem[9] = 0x77
	q := prefetch.New(bus, 4)
	q.Flush(0)
	q.Fill(4)
	q.FetchByte(0)
	q.FetchByte(1)
	q.FetchByte(2)
	q.FetchByte(3)

	q.Rewind(9, 9) // far beyond validBytes: must flush to addr 9 instead

	b, _ := q.FetchByte(9)
	if b != 0x77 {
		t.Errorf("expected rewind-overflow to flush to the given address, got %#02x", b)
	}
}
