package swapbuffer

import (
	"sync"
	"testing"
	"time"
)

func TestSwapReturnsPreviousValues(t *testing.T) {
	b, _ := NewBuffer(4)
	vi, vj, retries := b.swap(1, 3, 0)
	if vi != 1 || vj != 3 {
		t.Fatalf("expected (1, 3), got (%d, %d)", vi, vj)
	}
	if retries != 0 {
		t.Fatalf("expected no retries without contention, got %d", retries)
	}
	if b.Load(1) != 3 || b.Load(3) != 1 {
		t.Fatalf("expected slots exchanged, got %d and %d", b.Load(1), b.Load(3))
	}
}

// While slot j is held elsewhere the swapper keeps releasing slot i,
// so i can be taken by someone else in the meantime.
func TestSwapReleasesFirstLockWhileSecondBusy(t *testing.T) {
	b, _ := NewBuffer(2)

	b.lock(1)

	done := make(chan [2]int, 1)
	go func() {
		vi, vj, _ := b.swap(0, 1, 0)
		done <- [2]int{vi, vj}
	}()

	// let the swapper spin on the busy slot for a while
	time.Sleep(10 * time.Millisecond)

	deadline := time.Now().Add(5 * time.Second)
	for !b.tryLock(0) {
		if time.Now().After(deadline) {
			t.Fatalf("slot 0 never released while slot 1 was busy")
		}
		time.Sleep(time.Microsecond)
	}

	select {
	case <-done:
		t.Fatalf("swap completed while slot 1 was held")
	default:
	}

	b.unlock(0)
	b.unlock(1)

	select {
	case r := <-done:
		if r != [2]int{0, 1} {
			t.Fatalf("expected (0, 1), got (%d, %d)", r[0], r[1])
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("swap did not finish after both slots were released")
	}

	if b.Load(0) != 1 || b.Load(1) != 0 {
		t.Fatalf("expected slots exchanged, got %d and %d", b.Load(0), b.Load(1))
	}
}

// Two goroutines swapping (i, j) and (j, i) forever is the classic
// lock-order inversion; it must still finish.
func TestSwapOppositeOrderNoDeadlock(t *testing.T) {
	const N = 20_000
	b, _ := NewBuffer(2)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for n := 0; n < N; n++ {
			b.swap(0, 1, 0)
		}
	}()
	go func() {
		defer wg.Done()
		for n := 0; n < N; n++ {
			b.swap(1, 0, 0)
		}
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Second):
		t.Fatalf("opposite-order swaps deadlocked")
	}

	// 2*N swaps, an even number: identity again
	if b.Load(0) != 0 || b.Load(1) != 1 {
		t.Fatalf("expected [0 1], got [%d %d]", b.Load(0), b.Load(1))
	}
}

func TestWorkerCountsEveryAttempt(t *testing.T) {
	const iterations = 500
	b, _ := NewBuffer(3)
	ops := new(Counter)
	w := &worker{id: 7, iterations: iterations, buf: b, ops: ops, trace: newTraceRing(iterations)}
	w.run()

	s := ops.Stats()
	if s.Operations != iterations {
		t.Fatalf("expected %d operations, got %d", iterations, s.Operations)
	}
	if s.Swaps+s.NoOps != s.Operations {
		t.Fatalf("expected swaps+noops == operations, got %d+%d != %d", s.Swaps, s.NoOps, s.Operations)
	}
	if s.Retries != 0 {
		t.Fatalf("expected no retries for a lone worker, got %d", s.Retries)
	}

	// every genuine swap was traced with the right worker id
	var traced uint64
	for {
		ev, ok := w.trace.next()
		if !ok {
			break
		}
		if ev.Worker != 7 || ev.I == ev.J {
			t.Fatalf("unexpected event %v", ev)
		}
		traced++
	}
	if traced != s.Swaps {
		t.Fatalf("expected %d traced swaps, got %d", s.Swaps, traced)
	}
}

func TestWorkerSingleSlotNeverLocks(t *testing.T) {
	b, _ := NewBuffer(1)
	ops := new(Counter)

	// a held lock would block any genuine swap attempt forever
	b.lock(0)
	defer b.unlock(0)

	w := &worker{iterations: 100, buf: b, ops: ops}
	w.run()

	s := ops.Stats()
	if s.NoOps != 100 || s.Swaps != 0 {
		t.Fatalf("expected 100 no-ops and 0 swaps, got %d and %d", s.NoOps, s.Swaps)
	}
}

func TestWorkerDropsTraceWhenRingFull(t *testing.T) {
	b, _ := NewBuffer(2)
	ops := new(Counter)
	w := &worker{iterations: 1000, buf: b, ops: ops, trace: newTraceRing(1)}
	w.run()

	// nothing drains the ring: the first minTraceCells swaps are kept
	s := ops.Stats()
	kept := min(s.Swaps, minTraceCells)
	if s.TraceDropped != s.Swaps-kept {
		t.Fatalf("expected %d dropped events, got %d", s.Swaps-kept, s.TraceDropped)
	}
	for n := uint64(0); n < kept; n++ {
		if _, ok := w.trace.next(); !ok {
			t.Fatalf("expected kept event %d, got nothing", n)
		}
	}
	if ev, ok := w.trace.next(); ok {
		t.Fatalf("expected no more events, got %v", ev)
	}
}

func BenchmarkSwapContended(b *testing.B) {
	buf, _ := NewBuffer(4)
	ops := new(Counter)
	b.RunParallel(func(pb *testing.PB) {
		w := &worker{iterations: 1, buf: buf, ops: ops}
		for pb.Next() {
			w.run()
		}
	})
}
