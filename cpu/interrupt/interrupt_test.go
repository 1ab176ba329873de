package interrupt_test

import (
	"testing"

	"github.com/AdminOfLife/pcjs/cpu/interrupt"
	"github.com/AdminOfLife/pcjs/cpu/membus"
	"github.com/AdminOfLife/pcjs/cpu/model"
	"github.com/AdminOfLife/pcjs/cpu/registers"
	"github.com/AdminOfLife/pcjs/cpu/segment"
)

func newState() (*membus.Bus, *segment.Unit, *interrupt.State) {
	bus := membus.New(0x100000, 0x0fffff, 0x1fffff)
	ram := membus.NewRAM(0, 0x100000)
	bus.InstallBlocks(0, 0x100000, ram.Vtable())

	seg := segment.New(bus, model.I8088)
	cs := registers.NewSegment("CS")
	ss := registers.NewSegment("SS")
	cs.LoadReal(0x0100)
	ss.LoadReal(0x0000)

	st := &interrupt.State{
		Flags: &registers.Flags{},
		CS:    cs,
		SS:    ss,
		IP:    registers.NewRegister16(0x0000, "IP"),
		SP:    registers.NewRegister16(0x0100, "SP"),
	}
	return bus, seg, st
}

func TestRealModeINTPushesInOrderAndRedirects(t *testing.T) {
	bus, seg, st := newState()
	u := interrupt.New(bus, seg, model.I8088)

	// IVT entry 0x21: IP=0x0100, CS=0x2000
	bus.WriteWord(0x21*4, 0x0100)
	bus.WriteWord(0x21*4+2, 0x2000)

	st.Flags.SetPS(0x0202)

	if err := u.RaiseInterrupt(st, 0x21, -1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if st.CS.Selector != 0x2000 || st.IP.Value() != 0x0100 {
		t.Errorf("expected redirect to 2000:0100, got %04x:%04x", st.CS.Selector, st.IP.Value())
	}
	if st.Flags.InterruptEnable || st.Flags.Trap {
		t.Errorf("expected IF/TF cleared after INT dispatch")
	}

	// stack now holds, from low to high address: IP, CS, PS (pushed in
	// that order, each push decrementing SP first)
	sp := st.SP.Value()
	ip := bus.ReadWord(uint32(sp))
	cs := bus.ReadWord(uint32(sp) + 2)
	ps := bus.ReadWord(uint32(sp) + 4)
	if ps != 0x0202 || cs != 0x0100 || ip != 0x0000 {
		t.Errorf("expected pushed (ps,cs,ip) = (0202,0100,0000), got (%04x,%04x,%04x)", ps, cs, ip)
	}
}

func TestIRETRestoresSavedState(t *testing.T) {
	bus, seg, st := newState()
	u := interrupt.New(bus, seg, model.I8088)

	bus.WriteWord(0x21*4, 0x0100)
	bus.WriteWord(0x21*4+2, 0x2000)
	st.Flags.SetPS(0x0202)

	if err := u.RaiseInterrupt(st, 0x21, -1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := u.IRET(st); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if st.CS.Selector != 0x0100 || st.IP.Value() != 0x0000 {
		t.Errorf("expected IRET to restore 0100:0000, got %04x:%04x", st.CS.Selector, st.IP.Value())
	}
	if st.Flags.PS() != 0x0202 {
		t.Errorf("expected restored PS 0202, got %04x", st.Flags.PS())
	}
}
