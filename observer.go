package swapbuffer

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/eapache/queue"
)

// observer periodically reports the buffer contents until stop is closed.
// It never takes a slot lock, so it can neither block a worker nor be
// blocked by one; reports may show a slot mid-swap.
type observer struct {
	buf      *Buffer
	interval time.Duration
	out      *log.Logger
	stats    *Counter
	trace    *traceRing // drained here; the observer is its only consumer

	limit   int          // snapshots kept in history, 0 disables
	history *queue.Queue // oldest first

	scratch []int
	line    strings.Builder
}

func newObserver(buf *Buffer, interval time.Duration, out *log.Logger, stats *Counter, trace *traceRing, limit int) *observer {
	return &observer{
		buf:      buf,
		interval: interval,
		out:      out,
		stats:    stats,
		trace:    trace,
		limit:    limit,
		history:  queue.New(),
	}
}

// run blocks until stop is closed. Shutdown latency is bounded by one
// interval: the stop channel is selected together with the ticker.
func (o *observer) run(stop <-chan struct{}) {
	ticker := time.NewTicker(o.interval)
	defer ticker.Stop()

	for {
		o.report()
		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

func (o *observer) report() {
	o.drain()

	o.scratch = o.buf.Snapshot(o.scratch)
	o.out.Print(formatValues(&o.line, o.scratch))
	o.stats.reports.Add(1)

	if o.limit == 0 {
		return
	}
	if o.history.Length() == o.limit {
		o.history.Remove()
	}
	o.history.Add(append([]int(nil), o.scratch...))
}

// drain writes every pending swap event.
func (o *observer) drain() {
	if o.trace == nil {
		return
	}
	for {
		ev, ok := o.trace.next()
		if !ok {
			return
		}
		o.out.Print(ev.String())
	}
}

// snapshots returns the retained history. Call only after run returned.
func (o *observer) snapshots() [][]int {
	n := o.history.Length()
	if n == 0 {
		return nil
	}
	out := make([][]int, n)
	for i := range out {
		out[i] = o.history.Get(i).([]int)
	}
	return out
}

// formatValues renders vs as space-separated integers.
func formatValues(sb *strings.Builder, vs []int) string {
	sb.Reset()
	for i, v := range vs {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(strconv.Itoa(v))
	}
	return sb.String()
}
