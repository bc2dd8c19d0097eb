package engine

import (
	"math"

	"infoworth/domain/decision"
	"infoworth/domain/dist"
)

// feasibilityFloor is the hard lower bound on relative lift: a variant
// conversion rate cannot drop below zero, so L >= -1 always.
const feasibilityFloor = -1.0

// EVPI computes the dollar value of eliminating all decision uncertainty
// under a normal prior on lift.
//
// When the raw prior puts more than 0.1% of its mass below -100% lift the
// closed form is abandoned for a truncated-grid integration, so EVPI stays
// consistent with the EVSI simulation, which rejection-samples at the same
// bound. In that mode the standard-normal diagnostics are NaN sentinels and
// truncated-specific diagnostics are reported instead.
func EVPI(in decision.EVPIInputs, opts Options) decision.EVPIResult {
	opts = opts.withDefaults()
	return evpiCompute(in.K(), in.PriorMu, in.PriorSigma, in.ThresholdLift, opts.GridPoints)
}

// EVPIFromScale computes EVPI from a pre-derived business scale K, for
// callers that never saw the raw business inputs.
func EVPIFromScale(k, mu, sigma, threshold float64, opts Options) decision.EVPIResult {
	opts = opts.withDefaults()
	return evpiCompute(k, mu, sigma, threshold, opts.GridPoints)
}

func evpiCompute(k, mu, sigma, threshold float64, gridPoints int) decision.EVPIResult {
	if sigma <= 0 {
		return evpiPointMass(k, mu, threshold)
	}

	massBelowFloor := dist.StdNormCDF((feasibilityFloor - mu) / sigma)
	if massBelowFloor > 0.001 {
		return evpiTruncated(k, mu, sigma, threshold, gridPoints)
	}

	z := (threshold - mu) / sigma
	phi := dist.StdNormPDF(z)
	capPhi := dist.StdNormCDF(z)
	def := decision.DefaultDecisionFor(mu, threshold)

	var evpi float64
	if def == decision.DecisionShip {
		evpi = k * ((threshold-mu)*capPhi + sigma*phi)
	} else {
		evpi = k * ((mu-threshold)*(1-capPhi) + sigma*phi)
	}
	if evpi < 0 {
		evpi = 0
	}

	chanceWrong := capPhi
	if def == decision.DecisionDontShip {
		chanceWrong = 1 - capPhi
	}

	return decision.EVPIResult{
		Provenance:                 decision.NewProvenance(),
		EVPIDollars:                evpi,
		DefaultDecision:            def,
		ProbabilityClearsThreshold: 1 - capPhi,
		ChanceOfBeingWrong:         chanceWrong,
		EdgeCases:                  decision.DetectEdgeCases(sigma, capPhi, massBelowFloor),
		Diagnostics: decision.Diagnostics{
			ZScore: z,
			PhiZ:   phi,
			CapPhi: capPhi,
			Method: "closed_form",
		},
	}
}

// evpiPointMass handles the degenerate sigma=0 prior: there is nothing to
// learn, so EVPI is exactly zero and the threshold comparison is a strict
// check against the point mass. The z-score is a signed-infinity sentinel
// unless the point sits exactly on the threshold.
func evpiPointMass(k, mu, threshold float64) decision.EVPIResult {
	def := decision.DefaultDecisionFor(mu, threshold)

	clears := 0.0
	capPhi := 1.0
	if mu >= threshold {
		clears = 1.0
		capPhi = 0.0
	}

	z := 0.0
	if mu < threshold {
		z = math.Inf(1)
	} else if mu > threshold {
		z = math.Inf(-1)
	}

	massBelowFloor := 0.0
	if mu < feasibilityFloor {
		massBelowFloor = 1.0
	}

	return decision.EVPIResult{
		Provenance:                 decision.NewProvenance(),
		EVPIDollars:                0,
		DefaultDecision:            def,
		ProbabilityClearsThreshold: clears,
		ChanceOfBeingWrong:         0,
		EdgeCases:                  decision.DetectEdgeCases(0, capPhi, massBelowFloor),
		Diagnostics: decision.Diagnostics{
			ZScore: z,
			PhiZ:   0,
			CapPhi: capPhi,
			Method: "closed_form",
		},
	}
}

// evpiTruncated integrates the regret function against the prior truncated
// at L >= -1 ("Method B"). The default decision is re-determined from the
// truncated mean, not the raw one.
func evpiTruncated(k, mu, sigma, threshold float64, gridPoints int) decision.EVPIResult {
	tn := dist.TruncatedNormal{Mu: mu, Sigma: sigma, Lower: feasibilityFloor}
	tMean := tn.Mean()
	tSigma := tn.StdDev()
	def := decision.DefaultDecisionFor(tMean, threshold)

	lo := feasibilityFloor
	hi := math.Max(mu+6*sigma, feasibilityFloor+1e-9)
	width := (hi - lo) / float64(gridPoints)

	var evpi float64
	for i := 0; i < gridPoints; i++ {
		x0 := lo + float64(i)*width
		x1 := x0 + width
		mass := tn.CDF(x1) - tn.CDF(x0)
		if mass <= 0 {
			continue
		}
		mid := (x0 + x1) / 2

		var loss float64
		if def == decision.DecisionShip {
			loss = math.Max(0, threshold-mid)
		} else {
			loss = math.Max(0, mid-threshold)
		}
		evpi += mass * loss
	}
	evpi *= k
	if evpi < 0 {
		evpi = 0
	}

	chanceWrong := tn.CDF(threshold)
	if def == decision.DecisionDontShip {
		chanceWrong = 1 - tn.CDF(threshold)
	}

	rawCapPhi := dist.StdNormCDF((threshold - mu) / sigma)
	edge := decision.DetectEdgeCases(sigma, rawCapPhi, 1)
	edge.TruncationApplied = true

	nan := math.NaN()
	return decision.EVPIResult{
		Provenance:                 decision.NewProvenance(),
		EVPIDollars:                evpi,
		DefaultDecision:            def,
		ProbabilityClearsThreshold: 1 - tn.CDF(threshold),
		ChanceOfBeingWrong:         chanceWrong,
		EdgeCases:                  edge,
		Diagnostics: decision.Diagnostics{
			ZScore:           nan,
			PhiZ:             nan,
			CapPhi:           nan,
			Method:           "truncated_grid",
			TruncatedMean:    tMean,
			TruncatedSigma:   tSigma,
			TruncPDFAtThresh: tn.PDF(threshold),
			TruncCDFAtThresh: tn.CDF(threshold),
		},
	}
}
