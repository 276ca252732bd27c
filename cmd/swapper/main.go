// Command swapper runs concurrent workers that swap random pairs of a shared
// buffer under per-slot locks and prints the final sorted contents.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/aradilov/swapbuffer"
)

func main() {
	cfg := swapbuffer.DefaultConfig()

	var delay, printWait int
	intFlag(&cfg.Workers, "threads", "t", cfg.Workers, "number of worker goroutines")
	intFlag(&cfg.Size, "size", "s", cfg.Size, "number of buffer slots")
	intFlag(&cfg.Iterations, "iterations", "i", cfg.Iterations, "swap attempts per worker")
	intFlag(&delay, "delay", "d", int(cfg.Delay/time.Microsecond), "microseconds paused inside each swap (0 disables)")
	intFlag(&printWait, "print-wait", "p", int(cfg.PrintInterval/time.Microsecond), "microseconds between buffer reports")
	flag.BoolVar(&cfg.Trace, "trace", cfg.Trace, "print a line for every swap")
	flag.IntVar(&cfg.TraceCapacity, "trace-capacity", cfg.TraceCapacity, "pending swap lines before new ones are dropped")
	flag.Parse()

	cfg.Delay = time.Duration(delay) * time.Microsecond
	cfg.PrintInterval = time.Duration(printWait) * time.Microsecond

	log.SetFlags(0)
	report, err := swapbuffer.Run(cfg, os.Stdout)
	if err != nil {
		log.Fatalf("swapper: %v", err)
	}

	fmt.Printf("Buffer after:  %s\n", join(report.Sorted))
	fmt.Printf("iterations: %d\n", report.Operations)
	if report.Stats.TraceDropped > 0 {
		log.Printf("swapper: %d swap lines dropped", report.Stats.TraceDropped)
	}
}

func intFlag(p *int, name, short string, value int, usage string) {
	flag.IntVar(p, name, value, usage)
	flag.IntVar(p, short, value, "shorthand for -"+name)
}

func join(vs []int) string {
	var b []byte
	for i, v := range vs {
		if i > 0 {
			b = append(b, ' ')
		}
		b = fmt.Appendf(b, "%d", v)
	}
	return string(b)
}
