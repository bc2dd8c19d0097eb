package dist

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"
)

// PriorKind discriminates the supported prior families.
type PriorKind string

const (
	PriorNormal   PriorKind = "normal"
	PriorStudentT PriorKind = "student_t"
	PriorUniform  PriorKind = "uniform"
)

// Prior is the decision-maker's belief over true relative lift, in decimal
// lift units (0.05 = 5%). It is a closed sum type: every consumer switches on
// Kind so the per-family numerics stay in one place.
//
// Degenerate parameters never produce NaN or Inf. Sigma <= 0 (normal,
// student_t) and DF <= 0 (student_t) collapse to a point mass at Mu; a
// uniform with High <= Low collapses to a point mass at Low.
type Prior struct {
	Kind PriorKind `json:"kind"`

	// Normal / StudentT location and scale.
	Mu    float64 `json:"mu,omitempty"`
	Sigma float64 `json:"sigma,omitempty"`

	// StudentT degrees of freedom.
	DF float64 `json:"df,omitempty"`

	// Uniform bounds.
	Low  float64 `json:"low,omitempty"`
	High float64 `json:"high,omitempty"`
}

// NormalPrior builds a normal prior N(mu, sigma^2).
func NormalPrior(mu, sigma float64) Prior {
	return Prior{Kind: PriorNormal, Mu: mu, Sigma: sigma}
}

// StudentTPrior builds a location-scale Student-t prior.
func StudentTPrior(mu, sigma, df float64) Prior {
	return Prior{Kind: PriorStudentT, Mu: mu, Sigma: sigma, DF: df}
}

// UniformPrior builds a uniform prior on [low, high].
func UniformPrior(low, high float64) Prior {
	return Prior{Kind: PriorUniform, Low: low, High: high}
}

// PointMass reports whether the prior has collapsed to a single point, and
// where that point is.
func (p Prior) PointMass() (float64, bool) {
	switch p.Kind {
	case PriorNormal:
		if p.Sigma <= 0 {
			return p.Mu, true
		}
	case PriorStudentT:
		if p.Sigma <= 0 || p.DF <= 0 {
			return p.Mu, true
		}
	case PriorUniform:
		if p.High <= p.Low {
			return p.Low, true
		}
	}
	return 0, false
}

// Mean returns the prior expectation. For Student-t with DF <= 1 the formal
// mean does not exist; the location Mu is used, which is what the decision
// rule needs.
func (p Prior) Mean() float64 {
	if pt, ok := p.PointMass(); ok {
		return pt
	}
	switch p.Kind {
	case PriorNormal, PriorStudentT:
		return p.Mu
	case PriorUniform:
		return (p.Low + p.High) / 2
	}
	return 0
}

// StdDev returns the prior spread. Student-t uses the exact scale-adjusted
// deviation when DF > 2 and falls back to Sigma otherwise (the formal
// deviation diverges); uniform uses range/sqrt(12).
func (p Prior) StdDev() float64 {
	if _, ok := p.PointMass(); ok {
		return 0
	}
	switch p.Kind {
	case PriorNormal:
		return p.Sigma
	case PriorStudentT:
		if p.DF > 2 {
			return p.Sigma * math.Sqrt(p.DF/(p.DF-2))
		}
		return p.Sigma
	case PriorUniform:
		return (p.High - p.Low) / math.Sqrt(12)
	}
	return 0
}

// PDF returns the prior density at x. Point-mass priors return 0 away from
// the point (and 0 at it: the collapsed density is not representable).
func (p Prior) PDF(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	if _, ok := p.PointMass(); ok {
		return 0
	}
	switch p.Kind {
	case PriorNormal:
		z := (x - p.Mu) / p.Sigma
		return StdNormPDF(z) / p.Sigma
	case PriorStudentT:
		z := (x - p.Mu) / p.Sigma
		t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: p.DF}
		return t.Prob(z) / p.Sigma
	case PriorUniform:
		if x < p.Low || x > p.High {
			return 0
		}
		return 1 / (p.High - p.Low)
	}
	return 0
}

// CDF returns P(L <= x). Point-mass priors are a unit step at the point.
func (p Prior) CDF(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	if pt, ok := p.PointMass(); ok {
		if x >= pt {
			return 1
		}
		return 0
	}
	switch p.Kind {
	case PriorNormal:
		return StdNormCDF((x - p.Mu) / p.Sigma)
	case PriorStudentT:
		z := (x - p.Mu) / p.Sigma
		t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: p.DF}
		return t.CDF(z)
	case PriorUniform:
		return clamp01((x - p.Low) / (p.High - p.Low))
	}
	return 0
}

// Sample draws one lift value from the prior using the supplied RNG.
// Normal uses Box-Muller; Student-t uses inverse-CDF with a re-draw whenever
// the quantile comes back non-finite (deep-tail uniforms at low DF).
func (p Prior) Sample(rng *rand.Rand) float64 {
	if pt, ok := p.PointMass(); ok {
		return pt
	}
	switch p.Kind {
	case PriorNormal:
		return p.Mu + p.Sigma*SampleStdNorm(rng)
	case PriorStudentT:
		t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: p.DF}
		for {
			z := t.Quantile(rng.Float64())
			if !math.IsNaN(z) && !math.IsInf(z, 0) {
				return p.Mu + p.Sigma*z
			}
		}
	case PriorUniform:
		return p.Low + (p.High-p.Low)*rng.Float64()
	}
	return 0
}
