package swapbuffer

import (
	"runtime"
	"time"

	"github.com/valyala/fastrand"
)

const goschedEvery = 64 // yield to the scheduler once per this many failed try-locks

// swap exchanges slots i and j (i != j) and returns their values before the
// exchange along with how many times the pair acquisition had to start over.
//
// Lock i is taken blocking, lock j only with TryLock. If j is busy, i is
// released before trying again, so a caller never waits on j while holding i
// and two workers contending for overlapping pairs cannot deadlock. Retries
// are unbounded and unfair.
func (b *Buffer) swap(i, j int, delay time.Duration) (vi, vj int, retries uint64) {
	for {
		b.lock(i)
		if b.tryLock(j) {
			break
		}
		b.unlock(i)

		retries++
		if retries%goschedEvery == 0 {
			runtime.Gosched()
		}
	}

	si, sj := &b.slots[i], &b.slots[j]
	vi, vj = int(si.val.Load()), int(sj.val.Load())

	tmp := vi
	pause(delay)
	si.val.Store(sj.val.Load())
	pause(delay)
	sj.val.Store(int64(tmp))
	pause(delay)

	b.unlock(i)
	b.unlock(j)
	return vi, vj, retries
}

// pause widens the race window inside the critical section.
func pause(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

// worker performs a fixed number of swap attempts on a shared buffer.
type worker struct {
	id         int
	iterations int
	delay      time.Duration

	buf   *Buffer
	ops   *Counter
	trace *traceRing // nil when tracing is off

	rng fastrand.RNG
}

func (w *worker) run() {
	size := uint32(w.buf.Len())

	for n := 0; n < w.iterations; n++ {
		i := int(w.rng.Uint32n(size))
		j := int(w.rng.Uint32n(size))

		if i == j {
			w.ops.skipped()
			continue
		}

		vi, vj, retries := w.buf.swap(i, j, w.delay)
		if retries > 0 {
			w.ops.retries.Add(retries)
		}
		w.ops.swapped()

		if w.trace != nil && !w.trace.publish(SwapEvent{Worker: w.id, I: i, J: j, Vi: vi, Vj: vj}) {
			w.ops.dropped.Add(1)
		}
	}
}
