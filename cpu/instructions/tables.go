// Package instructions holds the per-model static opcode metadata the
// cpu package's dispatch table is built from: documented base cycle
// cost and mnemonic, indexed by opcode. It deliberately holds no
// executable behavior — the handlers themselves are methods on cpu.CPU,
// since they need the full register/bus/segment state that living in
// this package would otherwise force back-imported, creating a cycle.
// This mirrors the reference emulator's split between its CSV-driven
// definitions table and the behavior implemented in cpu.go.
package instructions

// Entry is one opcode's documented metadata.
type Entry struct {
	Mnemonic string
	Cycles   int // base cost, before EA/word-access penalties
	Bytes    int // total instruction length with no ModRM/imm (a floor)
}

// Group names one of the secondary-dispatch opcode groups the
// specification calls out (§4.6). Entry does not record a group: the
// group opcodes' ModRM /reg dispatch lives in the cpu package handlers.
type Group int

const (
	NoGroup Group = iota
	Group80 // 0x80-0x83: ADD/OR/ADC/SBB/AND/SUB/XOR/CMP, imm to r/m
	GroupF6 // 0xF6-0xF7: TEST/NOT/NEG/MUL/IMUL/DIV/IDIV
	GroupFE // 0xFE-0xFF: INC/DEC/CALL/JMP/PUSH
	GroupD0 // 0xD0-0xD3: ROL/ROR/RCL/RCR/SHL/SHR/SAL/SAR
	GroupC0 // 0xC0-0xC1: shift-by-immediate (80186+)
)

// Primary is the 256-entry metadata table for the one-byte opcode map,
// shared across models; per-model deltas (0x0F meaning, reserved slots
// raising #UD) are applied by the cpu package's table builder rather
// than duplicated here.
var Primary [256]Entry

func reg(op uint8, mnemonic string, cycles int) {
	Primary[op] = Entry{Mnemonic: mnemonic, Cycles: cycles, Bytes: 1}
}

func init() {
	// data movement
	for i := uint8(0); i < 8; i++ {
		reg(0xB0+i, "MOV r8,imm8", 4)
		reg(0xB8+i, "MOV r16,imm16", 4)
		reg(0x50+i, "PUSH r16", 11)
		reg(0x58+i, "POP r16", 8)
	}
	for i := uint8(0); i < 7; i++ {
		reg(0x91+i, "XCHG AX,r16", 3)
	}
	reg(0x88, "MOV r/m8,r8", 2)
	reg(0x89, "MOV r/m16,r16", 2)
	reg(0x8A, "MOV r8,r/m8", 2)
	reg(0x8B, "MOV r16,r/m16", 2)
	reg(0x8C, "MOV r/m16,Sreg", 2)
	reg(0x8E, "MOV Sreg,r/m16", 2)
	reg(0x8D, "LEA r16,m", 2)
	reg(0xA0, "MOV AL,[moffs8]", 10)
	reg(0xA1, "MOV AX,[moffs16]", 10)
	reg(0xA2, "MOV [moffs8],AL", 10)
	reg(0xA3, "MOV [moffs16],AX", 10)
	reg(0xC6, "MOV r/m8,imm8", 10)
	reg(0xC7, "MOV r/m16,imm16", 10)

	// arithmetic, register-form and AL/AX-immediate form
	arith := []string{"ADD", "OR", "ADC", "SBB", "AND", "SUB", "XOR", "CMP"}
	for i, name := range arith {
		base := uint8(i * 8)
		reg(base+0, name+" r/m8,r8", 3)
		reg(base+1, name+" r/m16,r16", 3)
		reg(base+2, name+" r8,r/m8", 3)
		reg(base+3, name+" r16,r/m16", 3)
		reg(base+4, name+" AL,imm8", 4)
		reg(base+5, name+" AX,imm16", 4)
	}
	reg(0x80, "<group80> r/m8,imm8", 4)
	reg(0x81, "<group80> r/m16,imm16", 4)
	reg(0x82, "<group80> r/m8,imm8", 4)
	reg(0x83, "<group80> r/m16,imm8", 4)

	for i := uint8(0); i < 8; i++ {
		reg(0x40+i, "INC r16", 3)
		reg(0x48+i, "DEC r16", 3)
	}

	reg(0xF6, "<groupF6> r/m8", 3)
	reg(0xF7, "<groupF7> r/m16", 3)
	reg(0xFE, "<groupFE> r/m8", 3)
	reg(0xFF, "<groupFF> r/m16", 3)

	reg(0xD0, "<groupD0> r/m8,1", 2)
	reg(0xD1, "<groupD0> r/m16,1", 2)
	reg(0xD2, "<groupD0> r/m8,CL", 8)
	reg(0xD3, "<groupD0> r/m16,CL", 8)
	reg(0xC0, "<groupC0> r/m8,imm8", 5)
	reg(0xC1, "<groupC0> r/m16,imm8", 5)

	// control transfer
	reg(0xE8, "CALL rel16", 19)
	reg(0xE9, "JMP rel16", 15)
	reg(0xEB, "JMP rel8", 15)
	reg(0xC3, "RET", 16)
	reg(0xC2, "RET imm16", 20)
	reg(0xCB, "RETF", 25)
	reg(0xCA, "RETF imm16", 25)
	reg(0xEA, "JMP ptr16:16", 15)
	reg(0x9A, "CALL ptr16:16", 28)

	jcc := map[uint8]string{
		0x70: "JO", 0x71: "JNO", 0x72: "JB", 0x73: "JAE",
		0x74: "JE", 0x75: "JNE", 0x76: "JBE", 0x77: "JA",
		0x78: "JS", 0x79: "JNS", 0x7A: "JP", 0x7B: "JNP",
		0x7C: "JL", 0x7D: "JGE", 0x7E: "JLE", 0x7F: "JG",
	}
	for op, name := range jcc {
		reg(op, name+" rel8", 4)
	}
	reg(0xE0, "LOOPNE rel8", 5)
	reg(0xE1, "LOOPE rel8", 5)
	reg(0xE2, "LOOP rel8", 5)
	reg(0xE3, "JCXZ rel8", 6)

	// interrupts, flags, misc
	reg(0xCC, "INT3", 51)
	reg(0xCD, "INT imm8", 51)
	reg(0xCE, "INTO", 53)
	reg(0xCF, "IRET", 24)
	reg(0xF4, "HLT", 2)
	reg(0xF5, "CMC", 2)
	reg(0xF8, "CLC", 2)
	reg(0xF9, "STC", 2)
	reg(0xFA, "CLI", 2)
	reg(0xFB, "STI", 2)
	reg(0xFC, "CLD", 2)
	reg(0xFD, "STD", 2)
	reg(0x90, "NOP", 3)
	reg(0x9B, "WAIT", 3)
	reg(0xF0, "LOCK", 2)

	reg(0x9C, "PUSHF", 10)
	reg(0x9D, "POPF", 8)
	reg(0x9E, "SAHF", 4)
	reg(0x9F, "LAHF", 4)
	reg(0x98, "CBW", 2)
	reg(0x99, "CWD", 5)
	reg(0xD7, "XLAT", 11)

	// string ops
	reg(0xA4, "MOVSB", 18)
	reg(0xA5, "MOVSW", 18)
	reg(0xA6, "CMPSB", 22)
	reg(0xA7, "CMPSW", 22)
	reg(0xAA, "STOSB", 11)
	reg(0xAB, "STOSW", 11)
	reg(0xAC, "LODSB", 12)
	reg(0xAD, "LODSW", 12)
	reg(0xAE, "SCASB", 15)
	reg(0xAF, "SCASW", 15)
	reg(0xF2, "REPNE", 2)
	reg(0xF3, "REP", 2)

	reg(0x26, "SEG ES", 2)
	reg(0x2E, "SEG CS", 2)
	reg(0x36, "SEG SS", 2)
	reg(0x3E, "SEG DS", 2)

	// test
	reg(0x84, "TEST r/m8,r8", 3)
	reg(0x85, "TEST r/m16,r16", 3)
	reg(0xA8, "TEST AL,imm8", 4)
	reg(0xA9, "TEST AX,imm16", 4)

	// 80186+ supplemented features
	reg(0x60, "PUSHA", 19)
	reg(0x61, "POPA", 19)
	reg(0x62, "BOUND r16,m", 13)
	reg(0x68, "PUSH imm16", 3)
	reg(0x6A, "PUSH imm8", 3)
	reg(0x69, "IMUL r16,r/m16,imm16", 21)
	reg(0x6B, "IMUL r16,r/m16,imm8", 21)
	reg(0xC8, "ENTER imm16,imm8", 17)
	reg(0xC9, "LEAVE", 5)
	reg(0x6C, "INSB", 14)
	reg(0x6D, "INSW", 14)
	reg(0x6E, "OUTSB", 14)
	reg(0x6F, "OUTSW", 14)

	reg(0xE4, "IN AL,imm8", 10)
	reg(0xE5, "IN AX,imm8", 10)
	reg(0xE6, "OUT imm8,AL", 10)
	reg(0xE7, "OUT imm8,AX", 10)
	reg(0xEC, "IN AL,DX", 8)
	reg(0xED, "IN AX,DX", 8)
	reg(0xEE, "OUT DX,AL", 8)
	reg(0xEF, "OUT DX,AX", 8)
}

// TwoByte is the metadata table for the 80286's 0x0F two-byte opcode
// map: protected-mode control and the LAR/LSL/VERR/VERW/ARPL family.
var TwoByte [256]Entry

func reg2(op uint8, mnemonic string, cycles int) {
	TwoByte[op] = Entry{Mnemonic: mnemonic, Cycles: cycles, Bytes: 2}
}

func init() {
	reg2(0x00, "<group0F00> r/m16", 11) // SLDT/STR/LLDT/LTR/VERR/VERW
	reg2(0x01, "<group0F01> m", 11)     // SGDT/SIDT/LGDT/LIDT/SMSW/LMSW
	reg2(0x02, "LAR r16,r/m16", 14)
	reg2(0x03, "LSL r16,r/m16", 14)
	reg2(0x06, "CLTS", 2)
}
