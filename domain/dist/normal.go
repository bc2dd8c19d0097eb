package dist

import (
	"math"
	"math/rand"
)

const invSqrt2Pi = 0.3989422804014327 // 1/sqrt(2*pi)

// StdNormPDF computes the standard normal density exp(-z^2/2)/sqrt(2*pi).
func StdNormPDF(z float64) float64 {
	if math.IsNaN(z) {
		return math.NaN()
	}
	if math.IsInf(z, 0) {
		return 0
	}
	return invSqrt2Pi * math.Exp(-0.5*z*z)
}

// StdNormCDF computes the standard normal cumulative distribution function
// using the Zelen & Severo rational approximation (Abramowitz & Stegun
// 26.2.17), accurate to about 7.5e-8 over the whole real line.
//
// Infinities map to exactly 0 and 1; NaN propagates.
func StdNormCDF(z float64) float64 {
	if math.IsNaN(z) {
		return math.NaN()
	}
	if math.IsInf(z, 1) {
		return 1
	}
	if math.IsInf(z, -1) {
		return 0
	}

	x := math.Abs(z)
	t := 1.0 / (1.0 + 0.2316419*x)
	poly := t * (0.319381530 + t*(-0.356563782+t*(1.781477937+t*(-1.821255978+t*1.330274429))))
	tail := StdNormPDF(x) * poly

	if z < 0 {
		return tail
	}
	return 1 - tail
}

// SampleStdNorm draws one standard normal variate via Box-Muller.
// The first uniform draw is floored at 1e-16 so log never sees zero.
func SampleStdNorm(rng *rand.Rand) float64 {
	u1 := rng.Float64()
	if u1 < 1e-16 {
		u1 = 1e-16
	}
	u2 := rng.Float64()
	return math.Sqrt(-2*math.Log(u1)) * math.Cos(2*math.Pi*u2)
}
