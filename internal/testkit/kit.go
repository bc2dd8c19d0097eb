// Package testkit provides deterministic fixtures for engine tests: a
// linear-congruential rand.Source substituted for the platform RNG, and the
// canonical scenarios the suite reasons about.
package testkit

import (
	"math/rand"

	"infoworth/domain/decision"
	"infoworth/domain/dist"
)

// lcgSource is a 64-bit linear congruential generator behind rand.Source.
// Statistically weak, deliberately so: its point is bit-for-bit reproducible
// Monte Carlo runs, not randomness quality.
type lcgSource struct {
	state uint64
}

const (
	lcgMult = 6364136223846793005
	lcgInc  = 1442695040888963407
)

func (s *lcgSource) Int63() int64 {
	s.state = s.state*lcgMult + lcgInc
	return int64(s.state >> 1)
}

func (s *lcgSource) Seed(seed int64) {
	s.state = uint64(seed)
}

// NewLCG returns a deterministic generator seeded with the given value.
func NewLCG(seed int64) *rand.Rand {
	return rand.New(&lcgSource{state: uint64(seed)})
}

// ReferenceEVPIInputs is the closed-form anchor scenario: K = $5M per unit
// lift, prior N(0, 0.05), threshold 0. EVPI = K * sigma * phi(0) ~ $99,735.
func ReferenceEVPIInputs() decision.EVPIInputs {
	return decision.EVPIInputs{
		BaselineConversionRate: 0.05,
		AnnualVisitors:         1_000_000,
		ValuePerConversion:     100,
		PriorMu:                0,
		PriorSigma:             0.05,
		ThresholdLift:          0,
	}
}

// ReferenceEVSIInputs is a well-behaved test pricing scenario on the same
// business scale.
func ReferenceEVSIInputs() decision.EVSIInputs {
	return decision.EVSIInputs{
		K:                      5_000_000,
		BaselineConversionRate: 0.05,
		ThresholdLift:          0,
		Prior:                  dist.NormalPrior(0, 0.05),
		NControl:               20_000,
		NVariant:               20_000,
	}
}

// ReferenceNetValueInputs wraps the EVSI scenario in a 30-day, half-traffic
// test with a week of decision latency.
func ReferenceNetValueInputs() decision.NetValueInputs {
	return decision.NetValueInputs{
		EVSIInputs:          ReferenceEVSIInputs(),
		TestDurationDays:    30,
		VariantFraction:     0.5,
		DecisionLatencyDays: 7,
	}
}
