package dist

import "math"

// survivalEps is the truncation mass below which a truncated normal is
// treated as a point mass at its bound. Keeps the inverse Mills ratio from
// blowing up when the bound sits far into the tail.
const survivalEps = 1e-10

// TruncatedNormal describes N(mu, sigma^2) restricted to L >= Lower.
type TruncatedNormal struct {
	Mu    float64
	Sigma float64
	Lower float64
}

// pointMass reports whether the truncation leaves effectively no mass above
// the bound, or the underlying normal is already degenerate.
func (t TruncatedNormal) pointMass() (float64, bool) {
	if t.Sigma <= 0 {
		if t.Mu >= t.Lower {
			return t.Mu, true
		}
		return t.Lower, true
	}
	alpha := (t.Lower - t.Mu) / t.Sigma
	if 1-StdNormCDF(alpha) < survivalEps {
		return t.Lower, true
	}
	return 0, false
}

// Mean returns E[L | L >= Lower] = mu + sigma*lambda(alpha), with
// lambda the inverse Mills ratio phi(alpha)/(1-Phi(alpha)).
func (t TruncatedNormal) Mean() float64 {
	if p, ok := t.pointMass(); ok {
		return p
	}
	alpha := (t.Lower - t.Mu) / t.Sigma
	lambda := StdNormPDF(alpha) / (1 - StdNormCDF(alpha))
	return t.Mu + t.Sigma*lambda
}

// Variance returns Var[L | L >= Lower] = sigma^2 * (1 + alpha*lambda - lambda^2).
func (t TruncatedNormal) Variance() float64 {
	if _, ok := t.pointMass(); ok {
		return 0
	}
	alpha := (t.Lower - t.Mu) / t.Sigma
	lambda := StdNormPDF(alpha) / (1 - StdNormCDF(alpha))
	v := t.Sigma * t.Sigma * (1 + alpha*lambda - lambda*lambda)
	if v < 0 {
		return 0
	}
	return v
}

// StdDev returns the truncated standard deviation.
func (t TruncatedNormal) StdDev() float64 {
	return math.Sqrt(t.Variance())
}

// PDF returns the truncated density at x (0 below the bound).
func (t TruncatedNormal) PDF(x float64) float64 {
	if _, ok := t.pointMass(); ok {
		return 0
	}
	if x < t.Lower {
		return 0
	}
	alpha := (t.Lower - t.Mu) / t.Sigma
	z := (x - t.Mu) / t.Sigma
	return StdNormPDF(z) / (t.Sigma * (1 - StdNormCDF(alpha)))
}

// CDF returns P(L <= x | L >= Lower).
func (t TruncatedNormal) CDF(x float64) float64 {
	if p, ok := t.pointMass(); ok {
		if x >= p {
			return 1
		}
		return 0
	}
	if x < t.Lower {
		return 0
	}
	alpha := (t.Lower - t.Mu) / t.Sigma
	z := (x - t.Mu) / t.Sigma
	c := (StdNormCDF(z) - StdNormCDF(alpha)) / (1 - StdNormCDF(alpha))
	return clamp01(c)
}

// DoublyTruncatedNormal describes N(mu, sigma^2) restricted to [A, B].
type DoublyTruncatedNormal struct {
	Mu    float64
	Sigma float64
	A     float64
	B     float64
}

// pointMass collapses degenerate intervals or vanishing interval mass to a
// single point: the nearer bound, or mu itself when mu lies inside [A, B].
func (t DoublyTruncatedNormal) pointMass() (float64, bool) {
	if t.B <= t.A {
		return t.A, true
	}
	if t.Sigma <= 0 {
		if t.Mu < t.A {
			return t.A, true
		}
		if t.Mu > t.B {
			return t.B, true
		}
		return t.Mu, true
	}
	alpha := (t.A - t.Mu) / t.Sigma
	beta := (t.B - t.Mu) / t.Sigma
	if StdNormCDF(beta)-StdNormCDF(alpha) < survivalEps {
		if t.Mu < t.A {
			return t.A, true
		}
		if t.Mu > t.B {
			return t.B, true
		}
		return t.Mu, true
	}
	return 0, false
}

// Mean returns E[L | A <= L <= B].
func (t DoublyTruncatedNormal) Mean() float64 {
	if p, ok := t.pointMass(); ok {
		return p
	}
	alpha := (t.A - t.Mu) / t.Sigma
	beta := (t.B - t.Mu) / t.Sigma
	z := StdNormCDF(beta) - StdNormCDF(alpha)
	return t.Mu + t.Sigma*(StdNormPDF(alpha)-StdNormPDF(beta))/z
}

// Variance returns Var[L | A <= L <= B].
func (t DoublyTruncatedNormal) Variance() float64 {
	if _, ok := t.pointMass(); ok {
		return 0
	}
	alpha := (t.A - t.Mu) / t.Sigma
	beta := (t.B - t.Mu) / t.Sigma
	z := StdNormCDF(beta) - StdNormCDF(alpha)
	d := (StdNormPDF(alpha) - StdNormPDF(beta)) / z
	v := t.Sigma * t.Sigma * (1 + (alpha*StdNormPDF(alpha)-beta*StdNormPDF(beta))/z - d*d)
	if v < 0 {
		return 0
	}
	return v
}

// PDF returns the renormalized density at x (0 outside [A, B]).
func (t DoublyTruncatedNormal) PDF(x float64) float64 {
	if _, ok := t.pointMass(); ok {
		return 0
	}
	if x < t.A || x > t.B {
		return 0
	}
	alpha := (t.A - t.Mu) / t.Sigma
	beta := (t.B - t.Mu) / t.Sigma
	z := StdNormCDF(beta) - StdNormCDF(alpha)
	return StdNormPDF((x-t.Mu)/t.Sigma) / (t.Sigma * z)
}

// CDF returns P(L <= x | A <= L <= B).
func (t DoublyTruncatedNormal) CDF(x float64) float64 {
	if p, ok := t.pointMass(); ok {
		if x >= p {
			return 1
		}
		return 0
	}
	if x < t.A {
		return 0
	}
	if x >= t.B {
		return 1
	}
	alpha := (t.A - t.Mu) / t.Sigma
	beta := (t.B - t.Mu) / t.Sigma
	z := StdNormCDF(beta) - StdNormCDF(alpha)
	return clamp01((StdNormCDF((x-t.Mu)/t.Sigma) - StdNormCDF(alpha)) / z)
}

func clamp01(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
