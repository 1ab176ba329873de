package membus

// RAM is a flat byte-addressable block suitable for installing over any
// range: system RAM, a ROM image (by never calling WriteByte), or a
// scratch area for tests.
type RAM struct {
	base uint32
	mem  []uint8
}

// NewRAM allocates size bytes and returns a RAM ready to install at base
// via Bus.InstallBlocks(base, size, ram.Vtable()).
func NewRAM(base, size uint32) *RAM {
	return &RAM{base: base, mem: make([]uint8, size)}
}

// Vtable exposes this RAM's access vectors for installation on a Bus.
// Its word vectors are a plain little-endian pair of the byte vectors —
// RAM has no access-side-effect to distinguish a word read/write from
// two byte ones — but wiring them through still saves the bus the
// two-call split on every non-straddling word access to RAM, the common
// case for code and data fetches alike.
func (r *RAM) Vtable() Vtable {
	return Vtable{
		Label:     "RAM",
		ReadByte:  r.readByte,
		WriteByte: r.writeByte,
		ReadWord:  r.readWord,
		WriteWord: r.writeWord,
	}
}

func (r *RAM) readByte(off uint32) uint8 {
	if int(off) >= len(r.mem) {
		return 0
	}
	return r.mem[off]
}

func (r *RAM) writeByte(off uint32, v uint8) {
	if int(off) >= len(r.mem) {
		return
	}
	r.mem[off] = v
}

func (r *RAM) readWord(off uint32) uint16 {
	return uint16(r.readByte(off)) | uint16(r.readByte(off+1))<<8
}

func (r *RAM) writeWord(off uint32, v uint16) {
	r.writeByte(off, uint8(v))
	r.writeByte(off+1, uint8(v>>8))
}

// Load copies data into the RAM starting at offset 0, for seeding test
// fixtures and boot images.
func (r *RAM) Load(data []byte) {
	copy(r.mem, data)
}

// Peek and Poke give debugger-style access bypassing any side effects a
// future memory-mapped variant might add, mirroring the reference
// emulator's DebuggerBus split between normal and inspection access.
func (r *RAM) Peek(off uint32) uint8         { return r.readByte(off) }
func (r *RAM) Poke(off uint32, v uint8)      { r.writeByte(off, v) }
