package registers

// Access packs the descriptor access-byte fields the segment cache
// needs: type, descriptor-privilege-level, and present.
type Access struct {
	Type     uint8 // segment package's descriptor-type code after a protected-mode load; 0x3 after LoadReal
	DPL      uint8
	Present  bool
	Writable bool // data segments only; meaningless for code
}

// Segment is a segment register's descriptor cache: the selector last
// loaded plus the (base, limit, access) triple derived from it. In real
// mode these are synthesized from the selector directly; in protected
// mode they come from a GDT/LDT lookup performed by the segment package.
type Segment struct {
	name     string
	Selector uint16
	Base     uint32 // 24-bit
	Limit    uint32 // effective byte limit
	Access   Access
	Null     bool // selector RPL=0, index=0: segment is "null-loaded"
}

// NewSegment creates a named segment register, initialised to the
// all-zero, real-mode-equivalent state.
func NewSegment(name string) *Segment {
	return &Segment{name: name}
}

// Label returns the register's canonical name (CS, DS, SS, ES, ...).
func (s Segment) Label() string { return s.name }

// LoadReal synthesizes the descriptor cache for a real-mode selector
// load: base = selector<<4, limit = 0xFFFF, access fully permissive.
func (s *Segment) LoadReal(selector uint16) {
	s.Selector = selector
	s.Base = uint32(selector) << 4
	s.Limit = 0xffff
	s.Access = Access{Type: 0x3, DPL: 0, Present: true}
	s.Null = false
}

// LoadCached installs a descriptor already resolved by the segment
// package's GDT/LDT lookup (protected mode).
func (s *Segment) LoadCached(selector uint16, base, limit uint32, access Access) {
	s.Selector = selector
	s.Base = base
	s.Limit = limit
	s.Access = access
	s.Null = false
}

// LoadNull marks the segment as null-loaded: valid to hold (ES/DS may be
// null) but a fault if subsequently used to address memory.
func (s *Segment) LoadNull(selector uint16) {
	s.Selector = selector
	s.Base = 0
	s.Limit = 0
	s.Access = Access{}
	s.Null = true
}

// Linear returns the physical address for offset off within this
// segment.
func (s Segment) Linear(off uint32) uint32 {
	return s.Base + off
}
