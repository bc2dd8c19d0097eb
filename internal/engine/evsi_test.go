package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infoworth/domain/decision"
	"infoworth/domain/dist"
	apperrors "infoworth/internal/errors"
	"infoworth/internal/testkit"
)

func seededOptions(seed int64, samples int) Options {
	return Options{Rand: testkit.NewLCG(seed), NumSamples: samples, GridPoints: DefaultGridPoints, Workers: 1}
}

func TestEVSI_MonteCarloMatchesClosedForm(t *testing.T) {
	in := testkit.ReferenceEVSIInputs()

	cf, err := EVSIClosedForm(in, DefaultOptions())
	require.NoError(t, err)
	require.Greater(t, cf.EVSIDollars, 0.0)

	mc := EVSI(in, seededOptions(12345, 10000))

	// Stochastic tolerance at 10k samples.
	assert.InEpsilon(t, cf.EVSIDollars, mc.EVSIDollars, 0.15)
	assert.Equal(t, "monte_carlo", mc.Diagnostics.Method)
	assert.Equal(t, "closed_form", cf.Diagnostics.Method)
}

func TestEVSI_NeverExceedsEVPI(t *testing.T) {
	evsiIn := testkit.ReferenceEVSIInputs()
	evpiIn := testkit.ReferenceEVPIInputs()

	evpi := EVPI(evpiIn, DefaultOptions())
	mc := EVSI(evsiIn, seededOptions(777, 10000))

	assert.LessOrEqual(t, mc.EVSIDollars, evpi.EVPIDollars*1.15)

	cf, err := EVSIClosedForm(evsiIn, DefaultOptions())
	require.NoError(t, err)
	assert.LessOrEqual(t, cf.EVSIDollars, evpi.EVPIDollars)
}

func TestEVSI_GrowsWithSampleSize(t *testing.T) {
	small := testkit.ReferenceEVSIInputs()
	small.NControl, small.NVariant = 1000, 1000
	big := testkit.ReferenceEVSIInputs()
	big.NControl, big.NVariant = 200000, 200000

	cfSmall, err := EVSIClosedForm(small, DefaultOptions())
	require.NoError(t, err)
	cfBig, err := EVSIClosedForm(big, DefaultOptions())
	require.NoError(t, err)

	// Bigger tests are worth more, approaching the EVPI ceiling.
	assert.Greater(t, cfBig.EVSIDollars, cfSmall.EVSIDollars)
	evpi := EVPI(testkit.ReferenceEVPIInputs(), DefaultOptions())
	assert.Less(t, cfBig.EVSIDollars, evpi.EVPIDollars)
}

func TestEVSI_ZeroArmSizes(t *testing.T) {
	for _, tc := range []struct{ nc, nv float64 }{{0, 1000}, {1000, 0}, {0, 0}, {-5, 1000}} {
		in := testkit.ReferenceEVSIInputs()
		in.NControl, in.NVariant = tc.nc, tc.nv

		res := EVSI(in, seededOptions(1, 1000))
		assert.Equal(t, 0.0, res.EVSIDollars)
		assert.Equal(t, decision.DecisionShip, res.DefaultDecision)
		assert.False(t, math.IsNaN(res.ProbabilityClearsThreshold))

		cf, err := EVSIClosedForm(in, DefaultOptions())
		require.NoError(t, err)
		assert.Equal(t, 0.0, cf.EVSIDollars)
	}
}

func TestEVSI_InvalidBaselineRate(t *testing.T) {
	for _, cr0 := range []float64{0, 1, -0.1, 1.5} {
		in := testkit.ReferenceEVSIInputs()
		in.BaselineConversionRate = cr0

		res := EVSI(in, seededOptions(2, 1000))
		assert.Equal(t, 0.0, res.EVSIDollars)
		assert.False(t, math.IsNaN(res.EVSIDollars))
		require.Len(t, res.Warnings, 1)
		assert.Equal(t, decision.WarnInvalidCR0, res.Warnings[0].Code)
	}
}

func TestEVSI_ZeroSigmaPrior(t *testing.T) {
	in := testkit.ReferenceEVSIInputs()
	in.Prior = dist.NormalPrior(0.03, 0)

	mc := EVSI(in, seededOptions(3, 2000))
	assert.Equal(t, 0.0, mc.EVSIDollars)
	assert.Equal(t, 0.0, mc.ProbabilityDecisionFlips)

	cf, err := EVSIClosedForm(in, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0.0, cf.EVSIDollars)
	// Point mass at 0.03 clears threshold 0 with certainty.
	assert.Equal(t, 1.0, cf.ProbabilityClearsThreshold)
}

func TestEVSIClosedForm_RejectsNonNormalPrior(t *testing.T) {
	in := testkit.ReferenceEVSIInputs()
	in.Prior = dist.UniformPrior(-0.05, 0.1)

	_, err := EVSIClosedForm(in, DefaultOptions())
	require.Error(t, err)
	assert.Equal(t, apperrors.CodeInvalidPrior, apperrors.GetCode(err))

	in.Prior = dist.StudentTPrior(0, 0.05, 4)
	_, err = EVSIClosedForm(in, DefaultOptions())
	require.Error(t, err)
}

func TestEVSI_RareEventsWarning(t *testing.T) {
	in := testkit.ReferenceEVSIInputs()
	in.NControl, in.NVariant = 300, 300 // 15 expected conversions per arm

	res := EVSI(in, seededOptions(4, 2000))

	found := false
	for _, w := range res.Warnings {
		if w.Code == decision.WarnRareEvents {
			found = true
		}
	}
	assert.True(t, found)
}

func TestEVSI_HighRejectionWarning(t *testing.T) {
	in := testkit.ReferenceEVSIInputs()
	// Most of this prior sits below -100% lift and gets rejected.
	in.Prior = dist.NormalPrior(-1.2, 0.4)

	res := EVSI(in, seededOptions(5, 2000))

	found := false
	for _, w := range res.Warnings {
		if w.Code == decision.WarnHighRejection {
			found = true
		}
	}
	assert.True(t, found)
	assert.Greater(t, res.Diagnostics.RejectionRate, 0.10)
	assert.GreaterOrEqual(t, res.EVSIDollars, 0.0)
}

func TestEVSI_EffectiveMetricsUnderTruncation(t *testing.T) {
	in := testkit.ReferenceEVSIInputs()
	in.Prior = dist.NormalPrior(-0.8, 0.2)

	res := EVSI(in, seededOptions(6, 5000))

	// The effective mean reflects the truncated prior: pulled up from -0.8
	// toward the hand-derived truncated mean of about -0.7425.
	assert.InDelta(t, -0.7425, res.Diagnostics.EffectivePriorMean, 0.01)
	assert.GreaterOrEqual(t, res.ProbabilityClearsThreshold, 0.0)
	assert.LessOrEqual(t, res.ProbabilityClearsThreshold, 1.0)
}

func TestEVSI_UniformAndStudentTPriors(t *testing.T) {
	uniform := testkit.ReferenceEVSIInputs()
	uniform.Prior = dist.UniformPrior(-0.05, 0.10)

	resU := EVSI(uniform, seededOptions(7, 4000))
	assert.GreaterOrEqual(t, resU.EVSIDollars, 0.0)
	assert.False(t, math.IsNaN(resU.EVSIDollars))
	assert.Equal(t, decision.DecisionShip, resU.DefaultDecision) // mean 0.025 >= 0

	studentT := testkit.ReferenceEVSIInputs()
	studentT.Prior = dist.StudentTPrior(0, 0.05, 4)

	resT := EVSI(studentT, seededOptions(8, 4000))
	assert.GreaterOrEqual(t, resT.EVSIDollars, 0.0)
	assert.False(t, math.IsNaN(resT.EVSIDollars))
	assert.Greater(t, resT.ProbabilityDecisionFlips, 0.0)
}

func TestEVSI_DeterministicUnderSeed(t *testing.T) {
	in := testkit.ReferenceEVSIInputs()

	a := EVSI(in, seededOptions(42, 3000))
	b := EVSI(in, seededOptions(42, 3000))

	assert.Equal(t, a.EVSIDollars, b.EVSIDollars)
	assert.Equal(t, a.ProbabilityClearsThreshold, b.ProbabilityClearsThreshold)
	assert.Equal(t, a.Diagnostics.RejectionRate, b.Diagnostics.RejectionRate)
}

func TestEVSI_ParallelWorkersAgreeStochastically(t *testing.T) {
	in := testkit.ReferenceEVSIInputs()

	single := EVSI(in, seededOptions(9, 8000))
	parallel := EVSI(in, Options{Rand: testkit.NewLCG(9), NumSamples: 8000, GridPoints: DefaultGridPoints, Workers: 4})

	assert.Equal(t, 8000, parallel.Diagnostics.SamplesUsed)
	require.Greater(t, single.EVSIDollars, 0.0)
	assert.InEpsilon(t, single.EVSIDollars, parallel.EVSIDollars, 0.25)
}
