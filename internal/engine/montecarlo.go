package engine

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"

	"infoworth/domain/decision"
	"infoworth/domain/dist"
)

// drawOutcome is one accepted Monte Carlo draw: the true lift that was
// simulated and the decision the posterior mean led to.
type drawOutcome struct {
	LTrue    float64
	PostShip bool
}

// simStats aggregates a simulation run. Rejected counts draws discarded for
// falling outside the feasibility bounds.
type simStats struct {
	Outcomes []drawOutcome
	Attempts int
	Rejected int
}

func (s simStats) rejectionRate() float64 {
	if s.Attempts == 0 {
		return 0
	}
	return float64(s.Rejected) / float64(s.Attempts)
}

// standardError is the delta-method standard error of the relative-lift
// estimator for a two-arm conversion test.
func standardError(cr0, nControl, nVariant float64) float64 {
	return math.Sqrt((1 - cr0) / cr0 * (1/nControl + 1/nVariant))
}

// runSimulation rejection-samples true lifts from the prior inside the
// feasibility bounds and records the posterior decision for each accepted
// draw. Total attempts are capped at NumSamples * attemptFactor.
func runSimulation(in decision.EVSIInputs, se float64, fb decision.FeasibilityBounds, opts Options) simStats {
	if opts.Workers <= 1 {
		return simulateChunk(in, se, fb, opts.NumSamples, opts.GridPoints, opts.Rand)
	}

	workers := opts.Workers
	chunks := make([]simStats, workers)
	per := opts.NumSamples / workers
	rem := opts.NumSamples % workers

	// Seed worker streams up front from the injected source so the split is
	// deterministic regardless of scheduling.
	seeds := make([]int64, workers)
	for i := range seeds {
		seeds[i] = opts.Rand.Int63()
	}

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		i := i
		target := per
		if i < rem {
			target++
		}
		g.Go(func() error {
			rng := rand.New(rand.NewSource(seeds[i]))
			chunks[i] = simulateChunk(in, se, fb, target, opts.GridPoints, rng)
			return nil
		})
	}
	_ = g.Wait() // workers never fail

	var merged simStats
	for _, c := range chunks {
		merged.Outcomes = append(merged.Outcomes, c.Outcomes...)
		merged.Attempts += c.Attempts
		merged.Rejected += c.Rejected
	}
	return merged
}

func simulateChunk(in decision.EVSIInputs, se float64, fb decision.FeasibilityBounds, target, gridPoints int, rng *rand.Rand) simStats {
	st := simStats{Outcomes: make([]drawOutcome, 0, target)}
	maxAttempts := target * attemptFactor

	for len(st.Outcomes) < target && st.Attempts < maxAttempts {
		st.Attempts++
		lTrue := in.Prior.Sample(rng)
		if !fb.Contains(lTrue) {
			st.Rejected++
			continue
		}

		lHat := lTrue + se*dist.SampleStdNorm(rng)
		pm := posteriorMean(in.Prior, lHat, se, fb, gridPoints)
		st.Outcomes = append(st.Outcomes, drawOutcome{
			LTrue:    lTrue,
			PostShip: pm >= in.ThresholdLift,
		})
	}
	return st
}

// effectiveMetrics recomputes the prior mean and P(clears threshold) from the
// accepted draws, so reported metrics describe the same truncated prior the
// simulation actually used. Falls back to the untruncated prior when every
// draw was rejected.
func effectiveMetrics(st simStats, prior dist.Prior, threshold float64) (mean, probClears float64) {
	if len(st.Outcomes) == 0 {
		return prior.Mean(), 1 - prior.CDF(threshold)
	}

	lifts := make([]float64, len(st.Outcomes))
	clears := 0
	for i, o := range st.Outcomes {
		lifts[i] = o.LTrue
		if o.LTrue >= threshold {
			clears++
		}
	}
	mean, _ = stats.Mean(lifts)
	return mean, float64(clears) / float64(len(st.Outcomes))
}

func flipRate(st simStats, defaultShip bool) float64 {
	if len(st.Outcomes) == 0 {
		return 0
	}
	flips := 0
	for _, o := range st.Outcomes {
		if o.PostShip != defaultShip {
			flips++
		}
	}
	return float64(flips) / float64(len(st.Outcomes))
}

// rareEventsWarning fires when either arm expects fewer than 20 conversions,
// where the normal approximation for a binomial ratio degrades.
func rareEventsWarning(in decision.EVSIInputs) (decision.Warning, bool) {
	expected := math.Min(in.NControl*in.BaselineConversionRate, in.NVariant*in.BaselineConversionRate)
	if expected >= 20 {
		return decision.Warning{}, false
	}
	return decision.Warning{
		Code: decision.WarnRareEvents,
		Message: fmt.Sprintf(
			"expected conversions per arm is %.1f (< 20); the normal approximation for the lift estimate may be unreliable", expected),
	}, true
}

// simWarnings collects the advisory conditions shared by the Monte Carlo
// engines.
func simWarnings(in decision.EVSIInputs, st simStats) []decision.Warning {
	var ws []decision.Warning

	if w, ok := rareEventsWarning(in); ok {
		ws = append(ws, w)
	}

	if rate := st.rejectionRate(); rate > 0.10 {
		ws = append(ws, decision.Warning{
			Code: decision.WarnHighRejection,
			Message: fmt.Sprintf(
				"%.0f%% of prior draws fell outside the feasible lift range; effective prior differs materially from the stated one", rate*100),
		})
	}

	return ws
}

// priorEdgeCases generalizes edge detection to any prior family via its CDF.
func priorEdgeCases(prior dist.Prior, threshold float64) decision.EdgeCases {
	return decision.DetectEdgeCases(prior.StdDev(), prior.CDF(threshold), prior.CDF(feasibilityFloor))
}
