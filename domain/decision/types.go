package decision

import (
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"

	"infoworth/domain/dist"
)

// ============================================================================
// INPUT CONTRACTS (canonical decimal form; callers convert UI strings first)
// ============================================================================

// EVPIInputs feed the perfect-information engine. EVPI is defined against a
// normal prior, so the prior arrives as its two parameters rather than the
// full sum type.
type EVPIInputs struct {
	BaselineConversionRate float64 `json:"baseline_conversion_rate"`
	AnnualVisitors         float64 `json:"annual_visitors"`
	ValuePerConversion     float64 `json:"value_per_conversion"`
	PriorMu                float64 `json:"prior_mu"`
	PriorSigma             float64 `json:"prior_sigma"`
	ThresholdLift          float64 `json:"threshold_lift"`
}

// K derives the business scale from the raw business inputs.
func (in EVPIInputs) K() float64 {
	return DeriveK(in.AnnualVisitors, in.BaselineConversionRate, in.ValuePerConversion)
}

// EVSIInputs feed the sample-information engine. K arrives pre-derived so the
// form layer and the engine agree on one number.
type EVSIInputs struct {
	K                      float64    `json:"k"`
	BaselineConversionRate float64    `json:"baseline_conversion_rate"`
	ThresholdLift          float64    `json:"threshold_lift"`
	Prior                  dist.Prior `json:"prior"`
	NControl               float64    `json:"n_control"`
	NVariant               float64    `json:"n_variant"`
}

// NetValueInputs extend EVSIInputs with the shape of the test itself.
type NetValueInputs struct {
	EVSIInputs
	TestDurationDays    float64 `json:"test_duration_days"`
	VariantFraction     float64 `json:"variant_fraction"`
	DecisionLatencyDays float64 `json:"decision_latency_days"`
}

// ============================================================================
// WARNINGS (advisory only; never change the computed figure)
// ============================================================================

// WarningCode discriminates advisory calculation warnings.
type WarningCode string

const (
	WarnRareEvents    WarningCode = "rare_events"
	WarnHighRejection WarningCode = "high_rejection"
	WarnInvalidCR0    WarningCode = "invalid_cr0"
)

// Warning carries an advisory condition with a human-readable message.
type Warning struct {
	Code    WarningCode `json:"code"`
	Message string      `json:"message"`
}

// ============================================================================
// RESULT RECORDS (immutable; created fresh per calculation)
// ============================================================================

// Diagnostics exposes the intermediate quantities each engine computed.
// Some fields are documented sentinels: the truncation-aware EVPI path sets
// the standard-normal trio to NaN, and a zero-sigma prior makes ZScore a
// signed infinity. MarshalJSON renders non-finite values as null so records
// survive plain JSON encoding.
type Diagnostics struct {
	ZScore float64 `json:"z_score"`
	PhiZ   float64 `json:"phi_z"`  // standard normal PDF at the z-score
	CapPhi float64 `json:"Phi_z"`  // standard normal CDF at the z-score
	Method string  `json:"method"` // closed_form | truncated_grid | monte_carlo

	// Truncation-aware EVPI extras.
	TruncatedMean      float64 `json:"truncated_mean,omitempty"`
	TruncatedSigma     float64 `json:"truncated_sigma,omitempty"`
	TruncPDFAtThresh   float64 `json:"trunc_pdf_at_threshold,omitempty"`
	TruncCDFAtThresh   float64 `json:"trunc_cdf_at_threshold,omitempty"`
	StandardError      float64 `json:"standard_error,omitempty"`
	PreposteriorSigma  float64 `json:"preposterior_sigma,omitempty"`
	RejectionRate      float64 `json:"rejection_rate,omitempty"`
	SamplesUsed        int     `json:"samples_used,omitempty"`
	EffectivePriorMean float64 `json:"effective_prior_mean,omitempty"`
}

func jsonNumber(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

// MarshalJSON replaces non-finite sentinel values with null.
func (d Diagnostics) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"z_score":                jsonNumber(d.ZScore),
		"phi_z":                  jsonNumber(d.PhiZ),
		"Phi_z":                  jsonNumber(d.CapPhi),
		"method":                 d.Method,
		"truncated_mean":         jsonNumber(d.TruncatedMean),
		"truncated_sigma":        jsonNumber(d.TruncatedSigma),
		"trunc_pdf_at_threshold": jsonNumber(d.TruncPDFAtThresh),
		"trunc_cdf_at_threshold": jsonNumber(d.TruncCDFAtThresh),
		"standard_error":         jsonNumber(d.StandardError),
		"preposterior_sigma":     jsonNumber(d.PreposteriorSigma),
		"rejection_rate":         jsonNumber(d.RejectionRate),
		"samples_used":           d.SamplesUsed,
		"effective_prior_mean":   jsonNumber(d.EffectivePriorMean),
	})
}

// Provenance stamps a result record so exported calculations can be traced
// back to a specific run.
type Provenance struct {
	CalculationID uuid.UUID `json:"calculation_id"`
	CalculatedAt  time.Time `json:"calculated_at"`
}

// NewProvenance stamps a fresh calculation.
func NewProvenance() Provenance {
	return Provenance{CalculationID: uuid.New(), CalculatedAt: time.Now().UTC()}
}

// EVPIResult is the value of eliminating all decision uncertainty.
type EVPIResult struct {
	Provenance

	EVPIDollars                float64     `json:"evpi_dollars"`
	DefaultDecision            Decision    `json:"default_decision"`
	ProbabilityClearsThreshold float64     `json:"probability_clears_threshold"`
	ChanceOfBeingWrong         float64     `json:"chance_of_being_wrong"`
	EdgeCases                  EdgeCases   `json:"edge_cases"`
	Diagnostics                Diagnostics `json:"diagnostics"`
	Warnings                   []Warning   `json:"warnings,omitempty"`
}

// EVSIResult is the value of one concrete, finite test.
type EVSIResult struct {
	Provenance

	EVSIDollars                float64     `json:"evsi_dollars"`
	DefaultDecision            Decision    `json:"default_decision"`
	ProbabilityClearsThreshold float64     `json:"probability_clears_threshold"`
	ProbabilityDecisionFlips   float64     `json:"probability_decision_flips"`
	EdgeCases                  EdgeCases   `json:"edge_cases"`
	Diagnostics                Diagnostics `json:"diagnostics"`
	Warnings                   []Warning   `json:"warnings,omitempty"`
}

// NetValueResult prices a test net of delay and in-test exposure.
// NetValueDollars can be legitimately negative.
type NetValueResult struct {
	Provenance

	NetValueDollars            float64     `json:"net_value_dollars"`
	MaxTestBudgetDollars       float64     `json:"max_test_budget_dollars"`
	CostOfDelayDollars         float64     `json:"cost_of_delay_dollars"`
	DefaultDecision            Decision    `json:"default_decision"`
	ProbabilityClearsThreshold float64     `json:"probability_clears_threshold"`
	ProbabilityDecisionFlips   float64     `json:"probability_decision_flips"`
	EdgeCases                  EdgeCases   `json:"edge_cases"`
	Diagnostics                Diagnostics `json:"diagnostics"`
	Warnings                   []Warning   `json:"warnings,omitempty"`
}
