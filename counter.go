package swapbuffer

import (
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// Counter is the shared operation counter plus the run statistics.
// Every field is updated atomically; workers share one *Counter.
type Counter struct {
	// Every attempt touches ops and one of swaps/noops, contended retries
	// touch retries; each sits on its own cache line.
	_       cpu.CacheLinePad
	ops     atomic.Uint64 // every swap attempt, including i == j
	_       cpu.CacheLinePad
	swaps   atomic.Uint64
	_       cpu.CacheLinePad
	noops   atomic.Uint64
	_       cpu.CacheLinePad
	retries atomic.Uint64 // failed try-lock rounds
	_       cpu.CacheLinePad

	dropped atomic.Uint64
	reports atomic.Uint64
}

type Stats struct {
	Operations   uint64 // swap attempts, Swaps + NoOps
	Swaps        uint64 // attempts that exchanged two distinct slots
	NoOps        uint64 // attempts where both indices coincided
	Retries      uint64 // times a worker released lock i because j was busy
	TraceDropped uint64 // trace events lost on a full trace ring
	Reports      uint64 // observer reports written
}

// Operations returns the number of completed swap attempts.
func (c *Counter) Operations() uint64 {
	return c.ops.Load()
}

// Stats retrieves the current statistics.
func (c *Counter) Stats() Stats {
	return Stats{
		Operations:   c.ops.Load(),
		Swaps:        c.swaps.Load(),
		NoOps:        c.noops.Load(),
		Retries:      c.retries.Load(),
		TraceDropped: c.dropped.Load(),
		Reports:      c.reports.Load(),
	}
}

func (c *Counter) swapped() {
	c.swaps.Add(1)
	c.ops.Add(1)
}

func (c *Counter) skipped() {
	c.noops.Add(1)
	c.ops.Add(1)
}
