package swapbuffer

import (
	"fmt"
	"math/bits"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// SwapEvent describes one genuine swap: which worker exchanged which slots,
// and the values they held before the exchange.
type SwapEvent struct {
	Worker int
	I, J   int
	Vi, Vj int
}

func (e SwapEvent) String() string {
	return fmt.Sprintf("Thread %d swapping positions %d (== %d) and %d (== %d)",
		e.Worker, e.I, e.Vi, e.J, e.Vj)
}

type traceCell struct {
	seq atomic.Uint64 // position this cell is ready for (see publish/next)
	ev  SwapEvent
}

// traceRing is a bounded lock-free queue of swap events with many
// publishing workers and a single draining goroutine.
// Sequence-per-cell algorithm by Dmitry Vyukov.
type traceRing struct {
	_     cpu.CacheLinePad
	mask  uint64
	cells []traceCell
	_     cpu.CacheLinePad
	tail  atomic.Uint64 // advanced by publishers
	_     cpu.CacheLinePad
	head  uint64 // advanced by the single consumer only
	_     cpu.CacheLinePad
}

// minTraceCells is the smallest ring that works. With a single cell a full
// cell (seq == pos+1) is indistinguishable from a free one for pos+1.
const minTraceCells = 2

// newTraceRing rounds capacity up to the next power of two, at least minTraceCells.
func newTraceRing(capacity int) *traceRing {
	if capacity < minTraceCells {
		capacity = minTraceCells
	}
	size := uint64(1) << bits.Len64(uint64(capacity-1))

	cells := make([]traceCell, size)
	for i := range cells {
		cells[i].seq.Store(uint64(i))
	}

	return &traceRing{
		mask:  size - 1,
		cells: cells,
	}
}

// publish appends ev without blocking.
// Returns false if the ring is full; the event is then discarded.
func (r *traceRing) publish(ev SwapEvent) bool {
	for {
		pos := r.tail.Load()
		c := &r.cells[pos&r.mask]

		switch diff := int64(c.seq.Load()) - int64(pos); {
		case diff == 0:
			if r.tail.CompareAndSwap(pos, pos+1) {
				c.ev = ev
				c.seq.Store(pos + 1)
				return true
			}
			// lost the cell to another publisher
		case diff < 0:
			// the consumer has not freed this cell yet
			return false
		default:
			// tail moved on under us, reload
		}
	}
}

// next pops the oldest event.
// IMPORTANT: must only be called from one goroutine at a time.
func (r *traceRing) next() (SwapEvent, bool) {
	pos := r.head
	c := &r.cells[pos&r.mask]

	if int64(c.seq.Load())-int64(pos+1) != 0 {
		// empty, or the publisher of this cell is still writing it
		return SwapEvent{}, false
	}

	r.head = pos + 1
	ev := c.ev
	c.seq.Store(pos + uint64(len(r.cells)))
	return ev, true
}

func (r *traceRing) capacity() int {
	return len(r.cells)
}
