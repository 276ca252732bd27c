// Package swapbuffer swaps random pairs of a shared array from many goroutines
// under per-slot locks while an observer periodically prints the array.
package swapbuffer

import (
	"io"
	"log"
	"strings"
	"sync"
	"time"
)

// Report is the outcome of a completed run.
type Report struct {
	Final      []int   // final buffer contents in slot order
	Sorted     []int   // Final, sorted
	Operations uint64  // total swap attempts over all workers
	Stats      Stats   // detailed counters, Stats.Operations == Operations
	Snapshots  [][]int // last cfg.History observer reports, oldest first
	Elapsed    time.Duration
}

// Run swaps random slot pairs of a fresh identity buffer from cfg.Workers
// goroutines, cfg.Iterations times each, while an observer periodically
// writes the buffer to w. Swap trace lines go to w as well when cfg.Trace
// is set. Run returns once every goroutine it started has exited.
func Run(cfg Config, w io.Writer) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	buf, err := NewBuffer(cfg.Size)
	if err != nil {
		return nil, err
	}

	var trace *traceRing
	if cfg.Trace {
		trace = newTraceRing(cfg.TraceCapacity)
	}

	out := log.New(w, "", 0)
	ops := new(Counter)
	start := time.Now()

	out.Printf("creating %d threads", cfg.Workers)
	out.Print("Buffer before: " + formatValues(new(strings.Builder), buf.Snapshot(nil)))

	obs := newObserver(buf, cfg.PrintInterval, out, ops, trace, cfg.History)
	stop := make(chan struct{})
	obsDone := make(chan struct{})
	go func() {
		defer close(obsDone)
		obs.run(stop)
	}()

	var wg sync.WaitGroup
	wg.Add(cfg.Workers)
	for id := 0; id < cfg.Workers; id++ {
		wk := &worker{
			id:         id,
			iterations: cfg.Iterations,
			delay:      cfg.Delay,
			buf:        buf,
			ops:        ops,
			trace:      trace,
		}
		go func() {
			defer wg.Done()
			wk.run()
		}()
	}
	wg.Wait()

	close(stop)
	<-obsDone

	// Workers and observer are gone; the ring has no other consumer left.
	obs.drain()

	return &Report{
		Final:      buf.Snapshot(nil),
		Sorted:     buf.Sorted(),
		Operations: ops.Operations(),
		Stats:      ops.Stats(),
		Snapshots:  obs.snapshots(),
		Elapsed:    time.Since(start),
	}, nil
}
