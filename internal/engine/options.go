// Package engine implements the three value-of-information calculations:
// EVPI (perfect information), EVSI (one finite test) and the integrated net
// value of running that test. Engines are pure functions over the input
// records in domain/decision; the only injected dependency is the random
// source, so Monte Carlo output is reproducible under a seeded stream.
package engine

import (
	"math/rand"
	"time"
)

const (
	// DefaultNumSamples is the Monte Carlo draw count when the caller does
	// not override it.
	DefaultNumSamples = 5000

	// DefaultGridPoints sizes both the truncation-aware EVPI integration
	// grid and the Student-t posterior grid.
	DefaultGridPoints = 200

	// attemptFactor caps total rejection-sampling attempts at
	// NumSamples * attemptFactor so a hostile prior cannot spin forever.
	attemptFactor = 10

	daysPerYear = 365.0
)

// Options tune an engine invocation. The zero value is usable: defaults are
// filled in and a time-seeded RNG is created on demand.
type Options struct {
	// Rand supplies every random draw. Inject a seeded source for
	// reproducible simulations; nil falls back to a time-seeded stream.
	Rand *rand.Rand

	// NumSamples is the accepted Monte Carlo draw count.
	NumSamples int

	// GridPoints sizes numerical-integration grids.
	GridPoints int

	// Workers > 1 splits draws across goroutines with independent seeded
	// streams and sums partial accumulators. Results are equivalent to the
	// single-threaded path up to floating-point summation order.
	Workers int
}

// DefaultOptions returns the standard engine tuning.
func DefaultOptions() Options {
	return Options{NumSamples: DefaultNumSamples, GridPoints: DefaultGridPoints, Workers: 1}
}

func (o Options) withDefaults() Options {
	if o.NumSamples <= 0 {
		o.NumSamples = DefaultNumSamples
	}
	if o.GridPoints <= 0 {
		o.GridPoints = DefaultGridPoints
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return o
}
