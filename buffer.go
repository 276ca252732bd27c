package swapbuffer

import (
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
)

// slot pairs one buffer cell with the lock that guards writes to it.
type slot struct {
	mu  sync.Mutex   // held by a worker for the whole critical section
	val atomic.Int64 // atomic so the observer can read without mu
}

// Buffer is a fixed-size array of ints with one lock per slot.
// There is no lock covering the whole buffer.
type Buffer struct {
	slots []slot
}

// NewBuffer allocates size slots holding the identity permutation 0..size-1.
func NewBuffer(size int) (b *Buffer, err error) {
	if size < 1 {
		return nil, fmt.Errorf("%w: size must be >= 1, got %d", ErrInvalidConfig, size)
	}

	defer func() {
		if r := recover(); r != nil {
			b, err = nil, fmt.Errorf("%w: buffer of %d slots: %v", ErrResourceExhausted, size, r)
		}
	}()

	slots := make([]slot, size)
	for i := range slots {
		slots[i].val.Store(int64(i))
	}

	return &Buffer{slots: slots}, nil
}

// Len returns the fixed number of slots.
func (b *Buffer) Len() int {
	return len(b.slots)
}

// Load returns the current value of slot i without taking its lock.
func (b *Buffer) Load(i int) int {
	return int(b.slots[i].val.Load())
}

// Snapshot copies the buffer into dst (grown if needed) slot by slot.
// Concurrent swaps are not excluded, so the result may show a slot mid-swap.
func (b *Buffer) Snapshot(dst []int) []int {
	dst = slices.Grow(dst[:0], len(b.slots))
	for i := range b.slots {
		dst = append(dst, int(b.slots[i].val.Load()))
	}
	return dst
}

// Sorted returns a sorted copy of the buffer.
// Only meaningful once no swap is in flight.
func (b *Buffer) Sorted() []int {
	out := b.Snapshot(nil)
	slices.Sort(out)
	return out
}

func (b *Buffer) lock(i int) {
	b.slots[i].mu.Lock()
}

func (b *Buffer) tryLock(i int) bool {
	return b.slots[i].mu.TryLock()
}

func (b *Buffer) unlock(i int) {
	b.slots[i].mu.Unlock()
}
