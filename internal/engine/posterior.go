package engine

import (
	"math"

	"infoworth/domain/decision"
	"infoworth/domain/dist"
)

// tGridSigmaSpan is the practical integration window for the Student-t
// posterior: mu +/- span*sigma intersected with the feasibility bounds.
// Exact coverage depends on DF; treat as a tunable approximation.
const tGridSigmaSpan = 6.0

// posteriorMean computes the Bayesian posterior expectation E[L | L_hat]
// given a simulated observation lHat with standard error se. The posterior
// mean, not the raw estimate, is what the decision-maker acts on after the
// test.
func posteriorMean(prior dist.Prior, lHat, se float64, fb decision.FeasibilityBounds, gridPoints int) float64 {
	if pt, ok := prior.PointMass(); ok {
		// A point-mass belief cannot be moved by data.
		return pt
	}

	switch prior.Kind {
	case dist.PriorNormal:
		// Conjugate shrinkage toward the prior mean.
		v := prior.Sigma * prior.Sigma
		w := v / (v + se*se)
		return w*lHat + (1-w)*prior.Mu

	case dist.PriorUniform:
		// Exact: a flat prior on [low, high] makes the posterior a normal
		// centered on the estimate, truncated to the feasible interval.
		tn := dist.DoublyTruncatedNormal{
			Mu:    lHat,
			Sigma: se,
			A:     math.Max(feasibilityFloor, prior.Low),
			B:     math.Min(prior.High, fb.Max),
		}
		return tn.Mean()

	case dist.PriorStudentT:
		return studentTPosteriorMean(prior, lHat, se, fb, gridPoints)
	}

	return clampToBounds(prior.Mean(), fb)
}

// studentTPosteriorMean integrates prior_pdf(L) * likelihood(L_hat; L, se)
// over a practical grid. Weights are accumulated in log space with a
// max-subtraction so small standard errors cannot underflow every weight to
// zero and silently trigger the fallback.
func studentTPosteriorMean(prior dist.Prior, lHat, se float64, fb decision.FeasibilityBounds, gridPoints int) float64 {
	lo := math.Max(feasibilityFloor, prior.Mu-tGridSigmaSpan*prior.Sigma)
	hi := math.Min(prior.Mu+tGridSigmaSpan*prior.Sigma, fb.Max)
	if !(hi > lo) {
		// The feasibility clamp inverted the window.
		return clampToBounds(prior.Mean(), fb)
	}

	step := (hi - lo) / float64(gridPoints-1)
	logSE := math.Log(se)

	logW := make([]float64, gridPoints)
	xs := make([]float64, gridPoints)
	maxLog := math.Inf(-1)
	for i := 0; i < gridPoints; i++ {
		x := lo + float64(i)*step
		z := (lHat - x) / se
		lw := math.Log(prior.PDF(x)) - 0.5*z*z - logSE
		xs[i] = x
		logW[i] = lw
		if lw > maxLog {
			maxLog = lw
		}
	}

	if math.IsInf(maxLog, -1) {
		return clampToBounds(prior.Mean(), fb)
	}

	var sumW, sumXW float64
	for i := 0; i < gridPoints; i++ {
		w := math.Exp(logW[i] - maxLog)
		sumW += w
		sumXW += xs[i] * w
	}
	if sumW <= 0 {
		return clampToBounds(prior.Mean(), fb)
	}
	return sumXW / sumW
}

func clampToBounds(x float64, fb decision.FeasibilityBounds) float64 {
	if x < fb.Min {
		return fb.Min
	}
	if x > fb.Max {
		return fb.Max
	}
	return x
}
