package cpu

import "github.com/AdminOfLife/pcjs/cpu/model"

// buildTables wires the 256-entry primary dispatch table (and, on the
// 80286, the 0x0F two-byte table) to this CPU's handler methods. A nil
// slot dispatches #UD from stepOne, which is the correct behavior for
// every opcode this emulator does not implement — including, per
// §4.6's model deltas, slots that must always fault on a given model
// regardless of implementation effort.
func (c *CPU) buildTables() {
	t := &c.table

	// data movement
	for i := uint8(0); i < 8; i++ {
		t[0xB0+i] = opMovR8Imm(i)
		t[0xB8+i] = opMovR16Imm(i)
		t[0x50+i] = opPushR16(i)
		t[0x58+i] = opPopR16(i)
	}
	for i := uint8(0); i < 7; i++ {
		t[0x91+i] = opXchgAXr16(i + 1)
	}
	t[0x88] = opMovRM8R8(false)
	t[0x8A] = opMovRM8R8(true)
	t[0x89] = opMovRM16R16(false)
	t[0x8B] = opMovRM16R16(true)
	t[0x8C] = opMovRM16Sreg(false)
	t[0x8E] = opMovRM16Sreg(true)
	t[0x8D] = opLEA
	t[0xC6] = opMovRM8Imm
	t[0xC7] = opMovRM16Imm
	t[0xA0] = opMovALMoffs8
	t[0xA1] = opMovAXMoffs16
	t[0xA2] = opMovMoffs8AL
	t[0xA3] = opMovMoffs16AX

	t[0x9C] = opPushF
	t[0x9D] = opPopF
	t[0x9E] = opSahf
	t[0x9F] = opLahf
	t[0x98] = opCbw
	t[0x99] = opCwd
	t[0xD7] = opXlat

	// arithmetic register/immediate forms
	arithOps := []aluOp{opADD, opOR, opADC, opSBB, opAND, opSUB, opXOR, opCMP}
	for i, op := range arithOps {
		base := uint8(i * 8)
		t[base+0] = opArithRM8R8(op, false)
		t[base+1] = opArithRM16R16(op, false)
		t[base+2] = opArithRM8R8(op, true)
		t[base+3] = opArithRM16R16(op, true)
		t[base+4] = opArithALImm8(op)
		t[base+5] = opArithAXImm16(op)
	}
	t[0x27] = opDaa
	t[0x2F] = opDas
	t[0x37] = opAaa
	t[0x3F] = opAas
	t[0xD4] = opAam
	t[0xD5] = opAad

	t[0x84] = opTestRM8R8
	t[0x85] = opTestRM16R16
	t[0xA8] = opTestALImm8
	t[0xA9] = opTestAXImm16

	t[0x80] = opGroup80(false, 1)
	t[0x81] = opGroup80(true, 2)
	t[0x82] = opGroup80(false, 1)
	t[0x83] = opGroup80(true, 1)
	t[0xF6] = opGroupF6(false)
	t[0xF7] = opGroupF6(true)
	t[0xFE] = opGroupFE(false)
	t[0xFF] = opGroupFE(true)
	t[0xD0] = opGroupD0(false, shiftByOne)
	t[0xD1] = opGroupD0(true, shiftByOne)
	t[0xD2] = opGroupD0(false, shiftByCL)
	t[0xD3] = opGroupD0(true, shiftByCL)
	t[0xC0] = opGroupC0(false)
	t[0xC1] = opGroupC0(true)

	for i := uint8(0); i < 8; i++ {
		t[0x40+i] = opIncR16(i)
		t[0x48+i] = opDecR16(i)
	}

	// control transfer
	t[0xE8] = opCallRel16
	t[0xE9] = opJmpRel16
	t[0xEB] = opJmpRel8
	t[0xC3] = opRetNear
	t[0xC2] = opRetNearImm
	t[0xCB] = opRetFar
	t[0xCA] = opRetFarImm
	t[0xEA] = opJmpFar
	t[0x9A] = opCallFar
	for op, cc := range jccTable {
		t[op] = opJcc(cc)
	}
	t[0xE0] = opLoop(loopNE)
	t[0xE1] = opLoop(loopE)
	t[0xE2] = opLoop(loopAlways)
	t[0xE3] = opJcxz

	// interrupts, flags, misc
	t[0xCC] = opInt3
	t[0xCD] = opIntImm8
	t[0xCE] = opInto
	t[0xCF] = opIret
	t[0xF4] = opHlt
	t[0xF8] = opClc
	t[0xF9] = opStc
	t[0xFA] = opCli
	t[0xFB] = opSti
	t[0xFC] = opCld
	t[0xFD] = opStd
	t[0xF5] = opCmc
	t[0x90] = opNop
	t[0x9B] = opWait

	// string ops
	t[0xA4] = opMovsb
	t[0xA5] = opMovsw
	t[0xAA] = opStosb
	t[0xAB] = opStosw
	t[0xAC] = opLodsb
	t[0xAD] = opLodsw
	t[0xA6] = opCmpsb
	t[0xA7] = opCmpsw
	t[0xAE] = opScasb
	t[0xAF] = opScasw

	// 80186+ supplemented features: these opcodes are reserved (#UD) on
	// a bare 8088, so they're only wired for models that document them.
	if c.Model != model.I8088 {
		t[0x60] = opPushA
		t[0x61] = opPopA
		t[0x62] = opBound
		t[0x68] = opPushImm16
		t[0x6A] = opPushImm8
		t[0x69] = opImulR16RM16Imm(true)
		t[0x6B] = opImulR16RM16Imm(false)
		t[0xC8] = opEnter
		t[0xC9] = opLeave
		t[0x6C] = opInsb
		t[0x6D] = opInsw
		t[0x6E] = opOutsb
		t[0x6F] = opOutsw
	}

	// port I/O
	t[0xE4] = opInALImm8
	t[0xE5] = opInAXImm8
	t[0xE6] = opOutImm8AL
	t[0xE7] = opOutImm8AX
	t[0xEC] = opInALDX
	t[0xED] = opInAXDX
	t[0xEE] = opOutDXAL
	t[0xEF] = opOutDXAX

	if c.Model.HasTwoByteOpcodes() {
		t[0x0F] = opTwoByteDispatch
		c.buildTable0F()
	} else if c.Model == model.I8088 {
		t[0x0F] = opPopCS
	}
}
