package swapbuffer

import (
	"fmt"
	"math"
	"time"
)

// Config is read once by Run and never modified afterwards.
type Config struct {
	Workers    int // number of swap workers
	Size       int // number of slots in the buffer
	Iterations int // swap attempts per worker

	Delay         time.Duration // pause at each of the 3 points of a swap (0 disables)
	PrintInterval time.Duration // pause between observer reports

	// Trace emits one line per swap. Lines are queued by workers and
	// written by the observer once per PrintInterval; when more than
	// TraceCapacity lines are pending, new ones are dropped and counted in
	// Stats.TraceDropped, so output is lossy under heavy contention.
	Trace         bool
	TraceCapacity int // rounded up to a power of two, at least 2
	History       int // observer snapshots kept in the report
}

func DefaultConfig() Config {
	return Config{
		Workers:       10,
		Size:          10,
		Iterations:    100,
		Delay:         10 * time.Microsecond,
		PrintInterval: 10 * time.Microsecond,
		Trace:         true,
		TraceCapacity: 1024,
	}
}

// Validate reports the first invalid field, wrapped in ErrInvalidConfig.
func (cfg Config) Validate() error {
	switch {
	case cfg.Size < 1:
		return fmt.Errorf("%w: size must be >= 1, got %d", ErrInvalidConfig, cfg.Size)
	case uint64(cfg.Size) > math.MaxUint32:
		// indices are drawn as uint32
		return fmt.Errorf("%w: size must be <= %d, got %d", ErrInvalidConfig, uint64(math.MaxUint32), cfg.Size)
	case cfg.Workers < 0:
		return fmt.Errorf("%w: workers must be >= 0, got %d", ErrInvalidConfig, cfg.Workers)
	case cfg.Iterations < 0:
		return fmt.Errorf("%w: iterations must be >= 0, got %d", ErrInvalidConfig, cfg.Iterations)
	case cfg.Delay < 0:
		return fmt.Errorf("%w: delay must be >= 0, got %s", ErrInvalidConfig, cfg.Delay)
	case cfg.PrintInterval <= 0:
		return fmt.Errorf("%w: print interval must be > 0, got %s", ErrInvalidConfig, cfg.PrintInterval)
	case cfg.Trace && cfg.TraceCapacity < 1:
		return fmt.Errorf("%w: trace capacity must be >= 1, got %d", ErrInvalidConfig, cfg.TraceCapacity)
	case cfg.History < 0:
		return fmt.Errorf("%w: history must be >= 0, got %d", ErrInvalidConfig, cfg.History)
	}
	return nil
}
