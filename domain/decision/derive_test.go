package decision

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeriveK(t *testing.T) {
	// 1M visitors at 5% baseline, $100 per conversion.
	assert.Equal(t, 5_000_000.0, DeriveK(1_000_000, 0.05, 100))
	assert.Equal(t, 0.0, DeriveK(0, 0.05, 100))
}

func TestNormalizeThresholdToLift(t *testing.T) {
	k := DeriveK(1_000_000, 0.05, 100)

	assert.InDelta(t, 0.02, NormalizeThresholdToLift(100_000, UnitDollars, k), 1e-12)
	assert.Equal(t, 0.0, NormalizeThresholdToLift(100_000, UnitDollars, 0))
	assert.Equal(t, 0.0, NormalizeThresholdToLift(100_000, UnitDollars, -5))
	assert.InDelta(t, 0.05, NormalizeThresholdToLift(5, UnitLift, k), 1e-12)
}

func TestNormalizeThreshold_RoundTrip(t *testing.T) {
	k := 5_000_000.0
	for _, lift := range []float64{0.001, 0.05, 0.2, 1.5} {
		dollars := k * lift
		assert.InDelta(t, lift, NormalizeThresholdToLift(dollars, UnitDollars, k), 1e-12)
	}
}

func TestDefaultDecision_TieGoesToShip(t *testing.T) {
	assert.Equal(t, DecisionShip, DefaultDecisionFor(0.05, 0.02))
	assert.Equal(t, DecisionShip, DefaultDecisionFor(0.02, 0.02))
	assert.Equal(t, DecisionDontShip, DefaultDecisionFor(0.019, 0.02))
}

func TestFeasibilityBounds(t *testing.T) {
	b := FeasibilityBoundsFor(0.05)

	assert.Equal(t, -1.0, b.Min)
	assert.InDelta(t, 19.0, b.Max, 1e-12)
	assert.True(t, b.Contains(0.5))
	assert.True(t, b.Contains(-1))
	assert.False(t, b.Contains(-1.01))
	assert.False(t, b.Contains(19.5))
}

func TestDetectEdgeCases(t *testing.T) {
	normal := DetectEdgeCases(0.05, 0.5, 0)
	assert.Equal(t, EdgeCases{}, normal)

	tiny := DetectEdgeCases(0.0005, 0.5, 0)
	assert.True(t, tiny.NearZeroSigma)

	oneSided := DetectEdgeCases(0.05, 0.99995, 0)
	assert.True(t, oneSided.PriorOneSided)
	oneSidedLow := DetectEdgeCases(0.05, 0.00005, 0)
	assert.True(t, oneSidedLow.PriorOneSided)

	truncated := DetectEdgeCases(0.5, 0.5, 0.02)
	assert.True(t, truncated.TruncationApplied)
}

func TestDiagnostics_MarshalNonFinite(t *testing.T) {
	d := Diagnostics{
		ZScore: math.Inf(1),
		PhiZ:   math.NaN(),
		CapPhi: 0.25,
		Method: "truncated_grid",
	}

	raw, err := json.Marshal(d)
	assert.NoError(t, err)

	var decoded map[string]interface{}
	assert.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Nil(t, decoded["z_score"])
	assert.Nil(t, decoded["phi_z"])
	assert.Equal(t, 0.25, decoded["Phi_z"])
}
