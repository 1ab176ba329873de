// Package prefetch implements the instruction byte queue: a small ring
// buffer sitting between the decoder and the memory bus, modelling the
// BIU's lookahead without simulating it as a concurrent unit.
package prefetch

// Reader is the subset of membus.Bus the queue needs to refill itself.
type Reader interface {
	ReadByte(addr uint32) uint8
}

type slot struct {
	addr uint32
	data uint8
}

// Queue is a ring of N slots, N the next power of two at or above the
// model's queue depth (4 on the 8088, 6 on the 8086/80186/80286).
type Queue struct {
	bus   Reader
	slots []slot
	head  int // next slot a fill() writes to
	tail  int // next slot a fetch() reads from

	depth       int // architectural queue depth
	queuedBytes int
	validBytes  int // queuedBytes plus bytes still valid behind tail, for rewind

	nextFetch uint32 // physical address the queue's head is primed to read
}

// New creates a queue sized for depth bytes (4 or 6); the ring itself is
// allocated at the next power of two so head/tail wrap with a bitmask.
func New(bus Reader, depth int) *Queue {
	n := 1
	for n < depth {
		n <<= 1
	}
	return &Queue{bus: bus, slots: make([]slot, n), depth: depth}
}

func (q *Queue) mask() int { return len(q.slots) - 1 }

// Flush empties the queue and points it at newAddr; the next Fill/fetch
// call will read starting there.
func (q *Queue) Flush(newAddr uint32) {
	q.head = 0
	q.tail = 0
	q.queuedBytes = 0
	q.validBytes = 0
	q.nextFetch = newAddr
}

// Fill prefetches up to n bytes, never exceeding the architectural queue
// depth. Returns the number of bus cycles spent (4 per byte fetched).
// The step loop does not call it; only FetchByte's empty-queue path
// refills the queue during execution.
func (q *Queue) Fill(n int) int {
	cycles := 0
	for i := 0; i < n && q.queuedBytes < q.depth; i++ {
		q.fetchOne()
		cycles += 4
	}
	return cycles
}

func (q *Queue) fetchOne() {
	b := q.bus.ReadByte(q.nextFetch)
	q.slots[q.head] = slot{addr: q.nextFetch, data: b}
	q.head = (q.head + 1) & q.mask()
	q.nextFetch++
	q.queuedBytes++
	if q.validBytes < q.depth {
		q.validBytes++
	}
}

// FetchByte returns the next byte of the instruction stream. If the
// queue is empty it re-points the queue at expectedAddr and reads one
// byte from there (4 cycles); otherwise it returns the byte at the tail
// without consulting expectedAddr (0 cycles).
func (q *Queue) FetchByte(expectedAddr uint32) (uint8, int) {
	if q.queuedBytes == 0 {
		q.nextFetch = expectedAddr
		q.fetchOne()
		b := q.slots[q.prev(q.head)].data
		q.queuedBytes--
		q.tail = q.head
		return b, 4
	}
	s := q.slots[q.tail]
	q.tail = (q.tail + 1) & q.mask()
	q.queuedBytes--
	return s.data, 0
}

func (q *Queue) prev(i int) int {
	return (i - 1) & q.mask()
}

// FetchWord reads two consecutive bytes through FetchByte, little-endian.
func (q *Queue) FetchWord(addr uint32) (uint16, int) {
	lo, c1 := q.FetchByte(addr)
	hi, c2 := q.FetchByte(addr + 1)
	return uint16(lo) | uint16(hi)<<8, c1 + c2
}

// Rewind moves the tail back by delta bytes, re-exposing bytes already
// fetched — used when a REP-prefixed string instruction must re-fetch
// its own opcode on the next iteration. If delta exceeds the consumed
// bytes still cached (validBytes minus queuedBytes) the queue instead
// flushes to addr, since the bytes it would need to
// re-expose are no longer cached.
func (q *Queue) Rewind(delta int, addr uint32) {
	if delta > q.validBytes-q.queuedBytes {
		q.Flush(addr)
		return
	}
	for i := 0; i < delta; i++ {
		q.tail = q.prev(q.tail)
		q.queuedBytes++
	}
}

// QueuedBytes and ValidBytes expose the queue's depth/fill invariants
// directly, for tests and the debugger.
func (q *Queue) QueuedBytes() int { return q.queuedBytes }
func (q *Queue) ValidBytes() int  { return q.validBytes }
