package engine

import (
	"math/rand"

	"infoworth/domain/decision"
	"infoworth/domain/dist"
)

// SweepPoint is the value of one candidate test size.
type SweepPoint struct {
	NPerArm              float64 `json:"n_per_arm"`
	EVSIDollars          float64 `json:"evsi_dollars"`
	NetValueDollars      float64 `json:"net_value_dollars"`
	MaxTestBudgetDollars float64 `json:"max_test_budget_dollars"`
	RejectionRate        float64 `json:"rejection_rate"`
}

// SweepResult answers "how big a test is worth running" across a grid of
// per-arm sample sizes for a single scenario.
type SweepResult struct {
	// EVPIDollars is the perfect-information ceiling. Populated for normal
	// priors, where the closed form applies; zero otherwise.
	EVPIDollars float64      `json:"evpi_dollars"`
	Points      []SweepPoint `json:"points"`
}

// Sweep evaluates EVSI and net value at each per-arm size. Every point gets
// its own child stream seeded from the injected source, so points are
// individually reproducible and independent of evaluation order.
func Sweep(in decision.NetValueInputs, armSizes []float64, opts Options) SweepResult {
	opts = opts.withDefaults()

	res := SweepResult{Points: make([]SweepPoint, 0, len(armSizes))}
	if in.Prior.Kind == dist.PriorNormal {
		res.EVPIDollars = EVPIFromScale(in.K, in.Prior.Mu, in.Prior.Sigma, in.ThresholdLift, opts).EVPIDollars
	}

	for _, n := range armSizes {
		point := in
		point.NControl = n
		point.NVariant = n

		evsiOpts := opts
		evsiOpts.Rand = rand.New(rand.NewSource(opts.Rand.Int63()))
		ev := EVSI(point.EVSIInputs, evsiOpts)

		netOpts := opts
		netOpts.Rand = rand.New(rand.NewSource(opts.Rand.Int63()))
		nv := NetValue(point, netOpts)

		res.Points = append(res.Points, SweepPoint{
			NPerArm:              n,
			EVSIDollars:          ev.EVSIDollars,
			NetValueDollars:      nv.NetValueDollars,
			MaxTestBudgetDollars: nv.MaxTestBudgetDollars,
			RejectionRate:        nv.Diagnostics.RejectionRate,
		})
	}
	return res
}
