package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infoworth/domain/decision"
	"infoworth/domain/dist"
	"infoworth/internal/testkit"
)

func TestNetValue_TestingAnObviousWinnerCostsMoney(t *testing.T) {
	// Near-deterministic prior at +10% lift, threshold 0: the default is
	// ship and the test only delays a sure thing. Net value is negative and
	// the budget answer is "pay nothing".
	in := testkit.ReferenceNetValueInputs()
	in.Prior = dist.NormalPrior(0.10, 0.0001)
	in.DecisionLatencyDays = 0

	res := NetValue(in, seededOptions(11, 4000))

	assert.Equal(t, decision.DecisionShip, res.DefaultDecision)
	assert.Negative(t, res.NetValueDollars)
	assert.Equal(t, 0.0, res.MaxTestBudgetDollars)

	// Sanity on magnitude: half the traffic forgoes K*0.10 for 30/365 of a
	// year, about $20.5k on a $5M scale.
	expected := -0.5 * in.K * 0.10 * (30.0 / 365.0)
	assert.InEpsilon(t, expected, res.NetValueDollars, 0.05)
}

func TestNetValue_ExposingUsersToAHarmfulVariantCostsMoney(t *testing.T) {
	// Near-deterministic prior at -5%: default is don't-ship, the baseline
	// forgoes nothing, but the variant group eats the damage during the test.
	in := testkit.ReferenceNetValueInputs()
	in.Prior = dist.NormalPrior(-0.05, 0.0001)
	in.DecisionLatencyDays = 0

	res := NetValue(in, seededOptions(12, 4000))

	assert.Equal(t, decision.DecisionDontShip, res.DefaultDecision)
	assert.Negative(t, res.NetValueDollars)
	assert.Equal(t, 0.0, res.MaxTestBudgetDollars)

	expected := 0.5 * in.K * (-0.05) * (30.0 / 365.0)
	assert.InEpsilon(t, expected, res.NetValueDollars, 0.05)
}

func TestNetValue_GenuineUncertaintyCanMakeTestingWorthIt(t *testing.T) {
	// Wide prior straddling the threshold: the posterior decision saves
	// real money often enough to outweigh delay.
	in := testkit.ReferenceNetValueInputs()
	in.Prior = dist.NormalPrior(0, 0.05)

	res := NetValue(in, seededOptions(13, 8000))

	assert.Positive(t, res.NetValueDollars)
	assert.Equal(t, res.NetValueDollars, res.MaxTestBudgetDollars)
}

func TestNetValue_ZeroArmsZeroContribution(t *testing.T) {
	in := testkit.ReferenceNetValueInputs()
	in.NControl = 0

	res := NetValue(in, seededOptions(14, 2000))

	assert.Equal(t, 0.0, res.NetValueDollars)
	assert.Equal(t, 0.0, res.MaxTestBudgetDollars)
	assert.False(t, math.IsNaN(res.ProbabilityClearsThreshold))
}

func TestNetValue_InvalidCR0Sentinel(t *testing.T) {
	in := testkit.ReferenceNetValueInputs()
	in.BaselineConversionRate = 1

	res := NetValue(in, seededOptions(15, 2000))

	assert.Equal(t, 0.0, res.NetValueDollars)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, decision.WarnInvalidCR0, res.Warnings[0].Code)
}

func TestNetValue_LatencyPeriodEarnsNothing(t *testing.T) {
	// Same scenario with and without latency: latency can only reduce the
	// net value when the default is ship, never add to it.
	base := testkit.ReferenceNetValueInputs()
	base.Prior = dist.NormalPrior(0.10, 0.0001)
	base.DecisionLatencyDays = 0

	delayed := base
	delayed.DecisionLatencyDays = 60

	fast := NetValue(base, seededOptions(16, 4000))
	slow := NetValue(delayed, seededOptions(16, 4000))

	assert.Less(t, slow.NetValueDollars, fast.NetValueDollars)
}

func TestCostOfDelay_ClosedForm(t *testing.T) {
	// K=$5M, mu=5%, threshold 0: $684.93/day; 30-day half-traffic test plus
	// 7 days of latency.
	cod := CostOfDelay(5_000_000, 0.05, 0, 30, 0.5, 7)

	perDay := 5_000_000 * 0.05 / 365.0
	assert.InDelta(t, 0.5*perDay*30+perDay*7, cod, 1e-9)
}

func TestCostOfDelay_ZeroWhenDefaultIsDontShip(t *testing.T) {
	assert.Equal(t, 0.0, CostOfDelay(5_000_000, -0.01, 0, 30, 0.5, 7))
	// Tie goes to ship, so the threshold case pays delay cost of zero value.
	assert.Equal(t, 0.0, CostOfDelay(5_000_000, 0, 0, 30, 0.5, 7))
}

func TestNetValue_DeterministicUnderSeed(t *testing.T) {
	in := testkit.ReferenceNetValueInputs()

	a := NetValue(in, seededOptions(21, 3000))
	b := NetValue(in, seededOptions(21, 3000))

	assert.Equal(t, a.NetValueDollars, b.NetValueDollars)
	assert.Equal(t, a.ProbabilityDecisionFlips, b.ProbabilityDecisionFlips)
}
