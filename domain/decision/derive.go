package decision

// Pure derivations shared by every engine. All lift values are decimal
// (0.05 = 5%); K converts lift units to annual dollars.

// Decision is the ship / don't-ship call.
type Decision string

const (
	DecisionShip     Decision = "ship"
	DecisionDontShip Decision = "dont-ship"
)

// ThresholdUnit tags the raw threshold collected from the caller.
type ThresholdUnit string

const (
	UnitDollars ThresholdUnit = "dollars"
	UnitLift    ThresholdUnit = "lift"
)

// DeriveK computes the business scale in dollars per unit lift:
// annual visitors * baseline conversion rate * value per conversion.
func DeriveK(annualVisitors, baselineConversionRate, valuePerConversion float64) float64 {
	return annualVisitors * baselineConversionRate * valuePerConversion
}

// NormalizeThresholdToLift converts a raw threshold into decimal lift units.
// Dollar thresholds divide by K (0 when K is non-positive, so a broken scale
// never propagates); lift thresholds arrive as percentages and divide by 100.
func NormalizeThresholdToLift(rawValue float64, unit ThresholdUnit, k float64) float64 {
	switch unit {
	case UnitDollars:
		if k <= 0 {
			return 0
		}
		return rawValue / k
	default:
		return rawValue / 100
	}
}

// DefaultDecisionFor applies the no-more-information decision rule:
// ship iff the prior mean clears the threshold. Ties go to ship; both
// engines and reported metrics rely on that convention.
func DefaultDecisionFor(priorMean, thresholdLift float64) Decision {
	if priorMean >= thresholdLift {
		return DecisionShip
	}
	return DecisionDontShip
}

// FeasibilityBounds is the range of lift values physically consistent with a
// variant conversion rate staying inside [0, 1].
type FeasibilityBounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// FeasibilityBoundsFor derives [-1, 1/CR0 - 1] from the baseline conversion
// rate. CR0 outside (0, 1) is the caller's problem; engines guard it first.
func FeasibilityBoundsFor(cr0 float64) FeasibilityBounds {
	return FeasibilityBounds{Min: -1, Max: 1/cr0 - 1}
}

// Contains reports whether a lift value is physically feasible.
func (b FeasibilityBounds) Contains(lift float64) bool {
	return lift >= b.Min && lift <= b.Max
}

// EdgeCases flags prior shapes that make headline numbers fragile.
type EdgeCases struct {
	// NearZeroSigma: the prior is nearly a point; EVPI is dominated by
	// floating-point noise.
	NearZeroSigma bool `json:"near_zero_sigma"`
	// PriorOneSided: essentially all prior mass sits on one side of the
	// threshold.
	PriorOneSided bool `json:"prior_one_sided"`
	// TruncationApplied: the raw prior puts non-trivial mass below -100%
	// lift, so the effective (truncated) prior differs from the stated one.
	TruncationApplied bool `json:"truncation_applied"`
}

const (
	nearZeroSigmaCutoff = 0.001
	oneSidedCutoff      = 0.0001
	truncationMassCut   = 0.001
)

// DetectEdgeCases classifies the prior given its sigma, the CDF at the
// threshold, and the mass below -1.
func DetectEdgeCases(sigma, phiAtThreshold, massBelowFloor float64) EdgeCases {
	return EdgeCases{
		NearZeroSigma:     sigma < nearZeroSigmaCutoff,
		PriorOneSided:     phiAtThreshold < oneSidedCutoff || phiAtThreshold > 1-oneSidedCutoff,
		TruncationApplied: massBelowFloor > truncationMassCut,
	}
}
