package engine

import (
	"math"

	"infoworth/domain/decision"
	"infoworth/domain/dist"
	"infoworth/internal/errors"
)

// EVSI estimates the dollar value of one concrete, finite test by Monte
// Carlo: draw a true lift from the prior (respecting feasibility), simulate
// the test's noisy estimate, shrink it to a Bayesian posterior mean, and
// compare the payoff of the posterior decision against the default decision.
//
// Degenerate inputs (zero arm sizes, CR0 outside (0,1)) return a
// no-information zero result, never an error and never NaN.
func EVSI(in decision.EVSIInputs, opts Options) decision.EVSIResult {
	opts = opts.withDefaults()

	priorMean := in.Prior.Mean()
	def := decision.DefaultDecisionFor(priorMean, in.ThresholdLift)
	defaultShip := def == decision.DecisionShip

	if res, ok := evsiGuard(in, def, "monte_carlo"); ok {
		return res
	}

	se := standardError(in.BaselineConversionRate, in.NControl, in.NVariant)
	fb := decision.FeasibilityBoundsFor(in.BaselineConversionRate)
	st := runSimulation(in, se, fb, opts)

	var sumWith, sumWithout float64
	for _, o := range st.Outcomes {
		gain := in.K * (o.LTrue - in.ThresholdLift)
		if defaultShip {
			sumWithout += gain
		}
		if o.PostShip {
			sumWith += gain
		}
	}

	evsi := 0.0
	if n := len(st.Outcomes); n > 0 {
		evsi = (sumWith - sumWithout) / float64(n)
	}
	if evsi < 0 {
		evsi = 0
	}

	effMean, probClears := effectiveMetrics(st, in.Prior, in.ThresholdLift)

	return decision.EVSIResult{
		Provenance:                 decision.NewProvenance(),
		EVSIDollars:                evsi,
		DefaultDecision:            def,
		ProbabilityClearsThreshold: probClears,
		ProbabilityDecisionFlips:   flipRate(st, defaultShip),
		EdgeCases:                  priorEdgeCases(in.Prior, in.ThresholdLift),
		Diagnostics: decision.Diagnostics{
			ZScore:             math.NaN(),
			PhiZ:               math.NaN(),
			CapPhi:             math.NaN(),
			Method:             "monte_carlo",
			StandardError:      se,
			RejectionRate:      st.rejectionRate(),
			SamplesUsed:        len(st.Outcomes),
			EffectivePriorMean: effMean,
		},
		Warnings: simWarnings(in, st),
	}
}

// EVSIClosedForm is the Normal-prior fast path: a conjugate update gives the
// preposterior spread of the posterior mean, and the EVPI formula applied at
// that spread prices the test without simulation.
//
// Calling it with a non-normal prior is a contract violation and fails
// loudly; it is not a recoverable runtime condition.
func EVSIClosedForm(in decision.EVSIInputs, opts Options) (decision.EVSIResult, error) {
	if in.Prior.Kind != dist.PriorNormal {
		return decision.EVSIResult{}, errors.InvalidPrior(
			"closed-form EVSI requires a normal prior, got " + string(in.Prior.Kind))
	}
	opts = opts.withDefaults()

	priorMean := in.Prior.Mean()
	def := decision.DefaultDecisionFor(priorMean, in.ThresholdLift)

	// Zero-information short circuits come before any division.
	if res, ok := evsiGuard(in, def, "closed_form"); ok {
		return res, nil
	}
	if in.Prior.Sigma <= 0 {
		return zeroEVSIResult(in, def, "closed_form", nil), nil
	}

	se := standardError(in.BaselineConversionRate, in.NControl, in.NVariant)
	dataPrecision := 1 / (se * se)
	priorPrecision := 1 / (in.Prior.Sigma * in.Prior.Sigma)
	posteriorPrecision := dataPrecision + priorPrecision

	// Spread of the preposterior distribution of the posterior mean.
	preSigma := in.Prior.Sigma * math.Sqrt(dataPrecision/posteriorPrecision)

	z := (in.ThresholdLift - priorMean) / preSigma
	phi := dist.StdNormPDF(z)
	capPhi := dist.StdNormCDF(z)

	var evsi float64
	if def == decision.DecisionShip {
		evsi = in.K * ((in.ThresholdLift-priorMean)*capPhi + preSigma*phi)
	} else {
		evsi = in.K * ((priorMean-in.ThresholdLift)*(1-capPhi) + preSigma*phi)
	}
	if evsi < 0 {
		evsi = 0
	}

	var warnings []decision.Warning
	if w, ok := rareEventsWarning(in); ok {
		warnings = append(warnings, w)
	}

	return decision.EVSIResult{
		Provenance:                 decision.NewProvenance(),
		EVSIDollars:                evsi,
		DefaultDecision:            def,
		ProbabilityClearsThreshold: 1 - in.Prior.CDF(in.ThresholdLift),
		EdgeCases:                  priorEdgeCases(in.Prior, in.ThresholdLift),
		Diagnostics: decision.Diagnostics{
			ZScore:            z,
			PhiZ:              phi,
			CapPhi:            capPhi,
			Method:            "closed_form",
			StandardError:     se,
			PreposteriorSigma: preSigma,
		},
		Warnings: warnings,
	}, nil
}

// evsiGuard returns a no-information zero result for boundary inputs: arm
// sizes must be positive and the baseline rate strictly inside (0, 1). The
// default decision is still reported from the prior mean.
func evsiGuard(in decision.EVSIInputs, def decision.Decision, method string) (decision.EVSIResult, bool) {
	if in.NControl <= 0 || in.NVariant <= 0 {
		return zeroEVSIResult(in, def, method, nil), true
	}
	if in.BaselineConversionRate <= 0 || in.BaselineConversionRate >= 1 {
		w := []decision.Warning{{
			Code:    decision.WarnInvalidCR0,
			Message: "baseline conversion rate must be strictly between 0 and 1; no information value can be computed",
		}}
		return zeroEVSIResult(in, def, method, w), true
	}
	return decision.EVSIResult{}, false
}

func zeroEVSIResult(in decision.EVSIInputs, def decision.Decision, method string, warnings []decision.Warning) decision.EVSIResult {
	clears := 1 - in.Prior.CDF(in.ThresholdLift)
	if pt, ok := in.Prior.PointMass(); ok {
		// Strict comparison against the point mass: the step CDF would
		// report 0 exactly at the threshold, but ties clear it.
		clears = 0
		if pt >= in.ThresholdLift {
			clears = 1
		}
	}

	return decision.EVSIResult{
		Provenance:                 decision.NewProvenance(),
		EVSIDollars:                0,
		DefaultDecision:            def,
		ProbabilityClearsThreshold: clears,
		EdgeCases:                  priorEdgeCases(in.Prior, in.ThresholdLift),
		Diagnostics: decision.Diagnostics{
			ZScore: math.NaN(),
			PhiZ:   math.NaN(),
			CapPhi: math.NaN(),
			Method: method,
		},
		Warnings: warnings,
	}
}
