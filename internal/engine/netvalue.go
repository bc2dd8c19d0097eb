package engine

import (
	"math"

	"infoworth/domain/decision"
)

// NetValue prices a test net of the cost of acquiring its information. It is
// deliberately one coherent simulation rather than EVSI minus a separate
// cost-of-delay figure, so delay and exposure are never double-counted.
//
// Each draw splits the year into during-test, during-latency and
// post-decision fractions. Only the variant fraction realizes the lift
// during the test; nobody realizes it while the decision is pending; the
// full population realizes it afterwards iff the posterior decision is ship.
// The result can be legitimately negative.
func NetValue(in decision.NetValueInputs, opts Options) decision.NetValueResult {
	opts = opts.withDefaults()

	priorMean := in.Prior.Mean()
	def := decision.DefaultDecisionFor(priorMean, in.ThresholdLift)
	defaultShip := def == decision.DecisionShip
	cod := CostOfDelay(in.K, priorMean, in.ThresholdLift, in.TestDurationDays, in.VariantFraction, in.DecisionLatencyDays)

	if res, ok := evsiGuard(in.EVSIInputs, def, "monte_carlo"); ok {
		return netFromZero(res, cod)
	}

	testFraction := in.TestDurationDays / daysPerYear
	latencyFraction := in.DecisionLatencyDays / daysPerYear
	remainingFraction := math.Max(0, 1-testFraction-latencyFraction)

	se := standardError(in.BaselineConversionRate, in.NControl, in.NVariant)
	fb := decision.FeasibilityBoundsFor(in.BaselineConversionRate)
	st := runSimulation(in.EVSIInputs, se, fb, opts)

	var sumTest, sumBaseline float64
	for _, o := range st.Outcomes {
		gain := in.K * (o.LTrue - in.ThresholdLift)

		// During the test only the exposed variant group realizes the lift;
		// during latency nobody does, whatever the eventual decision.
		total := in.VariantFraction * gain * testFraction
		if o.PostShip {
			total += gain * remainingFraction
		}
		sumTest += total

		if defaultShip {
			sumBaseline += gain
		}
	}

	net := 0.0
	if n := len(st.Outcomes); n > 0 {
		net = (sumTest - sumBaseline) / float64(n)
	}

	effMean, probClears := effectiveMetrics(st, in.Prior, in.ThresholdLift)

	return decision.NetValueResult{
		Provenance:                 decision.NewProvenance(),
		NetValueDollars:            net,
		MaxTestBudgetDollars:       math.Max(0, net),
		CostOfDelayDollars:         cod,
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
		Warnings: simWarnings(in.EVSIInputs, st),
	}
}

// CostOfDelay is the deterministic special case of the net-value model with
// a point-mass prior at mu: the expected daily value forgone by held-back
// traffic during the test plus the full population during decision latency.
// Applies only when the default is ship; delaying a don't-ship costs nothing.
func CostOfDelay(k, mu, threshold, testDurationDays, variantFraction, latencyDays float64) float64 {
	if mu < threshold {
		return 0
	}
	evPerDay := k * (mu - threshold) / daysPerYear
	return (1-variantFraction)*evPerDay*testDurationDays + evPerDay*latencyDays
}

// netFromZero lifts a zero-information EVSI sentinel into the net-value
// record shape: no test happens, so nothing is gained or spent.
func netFromZero(res decision.EVSIResult, cod float64) decision.NetValueResult {
	return decision.NetValueResult{
		Provenance:                 res.Provenance,
		NetValueDollars:            0,
		MaxTestBudgetDollars:       0,
		CostOfDelayDollars:         cod,
		DefaultDecision:            res.DefaultDecision,
		ProbabilityClearsThreshold: res.ProbabilityClearsThreshold,
		EdgeCases:                  res.EdgeCases,
		Diagnostics:                res.Diagnostics,
		Warnings:                   res.Warnings,
	}
}
