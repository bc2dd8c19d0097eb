package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infoworth/domain/dist"
	"infoworth/internal/testkit"
)

func TestSweep_PointsAndCeiling(t *testing.T) {
	in := testkit.ReferenceNetValueInputs()
	arms := []float64{1000, 10000, 100000}

	res := Sweep(in, arms, seededOptions(30, 3000))

	require.Len(t, res.Points, 3)
	assert.InDelta(t, 99735.57, res.EVPIDollars, 1.0)

	for i, p := range res.Points {
		assert.Equal(t, arms[i], p.NPerArm)
		assert.GreaterOrEqual(t, p.EVSIDollars, 0.0)
		assert.LessOrEqual(t, p.EVSIDollars, res.EVPIDollars*1.15)
		assert.GreaterOrEqual(t, p.MaxTestBudgetDollars, 0.0)
	}

	// Larger tests extract more of the information ceiling.
	assert.Greater(t, res.Points[2].EVSIDollars, res.Points[0].EVSIDollars)
}

func TestSweep_DeterministicUnderSeed(t *testing.T) {
	in := testkit.ReferenceNetValueInputs()
	arms := []float64{5000, 20000}

	a := Sweep(in, arms, seededOptions(31, 2000))
	b := Sweep(in, arms, seededOptions(31, 2000))

	require.Len(t, b.Points, len(a.Points))
	for i := range a.Points {
		assert.Equal(t, a.Points[i].EVSIDollars, b.Points[i].EVSIDollars)
		assert.Equal(t, a.Points[i].NetValueDollars, b.Points[i].NetValueDollars)
	}
}

func TestSweep_NonNormalPriorSkipsEVPICeiling(t *testing.T) {
	in := testkit.ReferenceNetValueInputs()
	in.Prior = dist.UniformPrior(-0.05, 0.10)

	res := Sweep(in, []float64{10000}, seededOptions(32, 2000))

	assert.Equal(t, 0.0, res.EVPIDollars)
	require.Len(t, res.Points, 1)
	assert.GreaterOrEqual(t, res.Points[0].EVSIDollars, 0.0)
}
