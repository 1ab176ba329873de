package decode_test

import (
	"testing"

	"github.com/AdminOfLife/pcjs/cpu/decode"
	"github.com/AdminOfLife/pcjs/cpu/model"
)

func TestDecodeModRMFields(t *testing.T) {
	f := decode.DecodeModRM(0b11_010_110) // mod=11 reg=010 rm=110
	if f.Mod != 3 || f.Reg != 2 || f.RM != 6 {
		t.Errorf("unexpected fields: %+v", f)
	}
}

func TestResolveBXSIBase(t *testing.T) {
	f := decode.Fields{Mod: 0, RM: 0}
	regs := decode.GPValues{BX: 0x1000, SI: 0x0020}
	ea := decode.Resolve(f, 0, regs, model.I8088)

	if ea.Offset != 0x1020 {
		t.Errorf("expected offset 0x1020, got %#04x", ea.Offset)
	}
	if ea.Seg != decode.SegDS {
		t.Errorf("expected default segment DS for [BX+SI], got %v", ea.Seg)
	}
}

func TestResolveBPBasedDefaultsToSS(t *testing.T) {
	f := decode.Fields{Mod: 1, RM: 6} // [BP+disp8]
	regs := decode.GPValues{BP: 0x2000}
	ea := decode.Resolve(f, 0x0005, regs, model.I8088)

	if ea.Seg != decode.SegSS {
		t.Errorf("expected SS default for BP-based EA, got %v", ea.Seg)
	}
	if ea.Offset != 0x2005 {
		t.Errorf("expected offset 0x2005, got %#04x", ea.Offset)
	}
}

func TestResolveDirectAddressHasNoBase(t *testing.T) {
	f := decode.Fields{Mod: 0, RM: 6}
	ea := decode.Resolve(f, 0x1234, decode.GPValues{}, model.I8088)

	if ea.Offset != 0x1234 {
		t.Errorf("expected direct address offset 0x1234, got %#04x", ea.Offset)
	}
	if ea.Seg != decode.SegDS {
		t.Errorf("expected DS default for direct address, got %v", ea.Seg)
	}
}

func TestEACyclesZeroedOn80286(t *testing.T) {
	f := decode.Fields{Mod: 0, RM: 0}
	ea := decode.Resolve(f, 0, decode.GPValues{}, model.I80286)
	if ea.Cycles != 0 {
		t.Errorf("expected EA cost to be zeroed on the 80286, got %d", ea.Cycles)
	}
}

func TestEACyclesAwkwardPairPenalty(t *testing.T) {
	bxdi := decode.Resolve(decode.Fields{Mod: 0, RM: 1}, 0, decode.GPValues{}, model.I8088)
	bxsi := decode.Resolve(decode.Fields{Mod: 0, RM: 0}, 0, decode.GPValues{}, model.I8088)

	if bxdi.Cycles != bxsi.Cycles+2 {
		t.Errorf("expected [BX+DI] to cost 2 more than [BX+SI] (got %d vs %d)", bxdi.Cycles, bxsi.Cycles)
	}
}
