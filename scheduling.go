package evf

import "math/bits"

// priorityScheduler is a bucket-array substitute for a priority queue of
// tickets: one FIFO per priority level plus a bitmap of non-empty levels,
// giving O(1) ticket insertion and O(1) amortized selection of the next
// ticket.
//
// Lower priority values run first (0 is highest priority); within a level,
// FIFO order is preserved by the bucket's own append/pop-front order.
type priorityScheduler struct {
	buckets []ticketFIFO
	bitmap  []uint64 // bit p set iff buckets[p] is non-empty
	count   int
}

// ticketFIFO is a growable FIFO of pending active-object tickets. One
// entry exists per pending event enqueued for that active object — a
// single active object can appear many times if it has many pending
// events.
type ticketFIFO struct {
	items []*ActiveObject
	head  int
}

func (f *ticketFIFO) pushBack(ao *ActiveObject) {
	f.items = append(f.items, ao)
}

func (f *ticketFIFO) popFront() *ActiveObject {
	if f.head >= len(f.items) {
		return nil
	}
	ao := f.items[f.head]
	f.items[f.head] = nil
	f.head++
	// Compact occasionally so a long-lived bucket doesn't retain an
	// ever-growing backing array.
	if f.head == len(f.items) {
		f.items = f.items[:0]
		f.head = 0
	}
	return ao
}

func (f *ticketFIFO) empty() bool {
	return f.head >= len(f.items)
}

func newPriorityScheduler(priorityMax int) *priorityScheduler {
	return &priorityScheduler{
		buckets: make([]ticketFIFO, priorityMax),
		bitmap:  make([]uint64, (priorityMax+63)/64),
	}
}

func (s *priorityScheduler) setBit(p int) {
	s.bitmap[p/64] |= 1 << uint(p%64)
}

func (s *priorityScheduler) clearBit(p int) {
	s.bitmap[p/64] &^= 1 << uint(p%64)
}

// schedule adds one ticket for ao, ordered after any existing tickets of
// the same or higher priority and before any of lower priority — i.e.
// appended to ao's own priority bucket.
func (s *priorityScheduler) schedule(ao *ActiveObject) {
	p := int(ao.Priority)
	s.buckets[p].pushBack(ao)
	s.setBit(p)
	s.count++
}

// next pops and returns the active object with the single highest-priority
// pending ticket (lowest Priority value), FIFO among equal priorities, or
// nil if no tickets are pending.
func (s *priorityScheduler) next() *ActiveObject {
	for w, word := range s.bitmap {
		if word == 0 {
			continue
		}
		bit := bits.TrailingZeros64(word)
		p := w*64 + bit
		ao := s.buckets[p].popFront()
		if s.buckets[p].empty() {
			s.clearBit(p)
		}
		s.count--
		return ao
	}
	return nil
}

func (s *priorityScheduler) empty() bool {
	return s.count == 0
}

func (s *priorityScheduler) length() int {
	return s.count
}
