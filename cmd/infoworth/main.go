package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"

	"infoworth/adapters/excel"
	"infoworth/adapters/rng"
	"infoworth/domain/decision"
	"infoworth/domain/dist"
	"infoworth/internal"
	"infoworth/internal/config"
	"infoworth/internal/engine"
	"infoworth/ports"
)

var rngPort ports.RNGPort = rng.NewSeededAdapter()

func main() {
	// Optional .env for engine defaults; absence is fine.
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "infoworth",
		Short: "Value-of-information calculator for A/B experiments (EVPI, EVSI, net value)",
	}

	rootCmd.AddCommand(
		newEVPICmd(),
		newEVSICmd(),
		newNetValueCmd(),
		newSweepCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// scenario is the canonical numeric form of one decision problem, parsed
// from a scenario JSON file.
type scenario struct {
	CR0            float64
	AnnualVisitors float64
	ValuePerConv   float64
	K              float64
	ThresholdLift  float64
	Prior          dist.Prior
	NControl       float64
	NVariant       float64
	DurationDays   float64
	VariantFrac    float64
	LatencyDays    float64
}

// loadScenario pulls the scenario fields out of a JSON file. Thresholds are
// normalized here, at the boundary, so the engines only ever see decimal
// lift units.
func loadScenario(path string) (scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return scenario{}, fmt.Errorf("read scenario: %w", err)
	}
	if !gjson.ValidBytes(raw) {
		return scenario{}, fmt.Errorf("scenario %s is not valid JSON", path)
	}

	doc := gjson.ParseBytes(raw)
	s := scenario{
		CR0:            doc.Get("baseline_conversion_rate").Float(),
		AnnualVisitors: doc.Get("annual_visitors").Float(),
		ValuePerConv:   doc.Get("value_per_conversion").Float(),
		NControl:       doc.Get("n_control").Float(),
		NVariant:       doc.Get("n_variant").Float(),
		DurationDays:   doc.Get("test_duration_days").Float(),
		VariantFrac:    doc.Get("variant_fraction").Float(),
		LatencyDays:    doc.Get("decision_latency_days").Float(),
	}
	s.K = decision.DeriveK(s.AnnualVisitors, s.CR0, s.ValuePerConv)

	unit := decision.ThresholdUnit(doc.Get("threshold.unit").String())
	s.ThresholdLift = decision.NormalizeThresholdToLift(doc.Get("threshold.value").Float(), unit, s.K)

	prior := doc.Get("prior")
	switch prior.Get("kind").String() {
	case "student_t":
		s.Prior = dist.StudentTPrior(prior.Get("mu").Float(), prior.Get("sigma").Float(), prior.Get("df").Float())
	case "uniform":
		s.Prior = dist.UniformPrior(prior.Get("low").Float(), prior.Get("high").Float())
	default:
		s.Prior = dist.NormalPrior(prior.Get("mu").Float(), prior.Get("sigma").Float())
	}

	return s, nil
}

func (s scenario) evsiInputs() decision.EVSIInputs {
	return decision.EVSIInputs{
		K:                      s.K,
		BaselineConversionRate: s.CR0,
		ThresholdLift:          s.ThresholdLift,
		Prior:                  s.Prior,
		NControl:               s.NControl,
		NVariant:               s.NVariant,
	}
}

func (s scenario) netValueInputs() decision.NetValueInputs {
	return decision.NetValueInputs{
		EVSIInputs:          s.evsiInputs(),
		TestDurationDays:    s.DurationDays,
		VariantFraction:     s.VariantFrac,
		DecisionLatencyDays: s.LatencyDays,
	}
}

// engineOptions builds Options from env config plus the --seed flag.
// Seed 0 leaves the engine on its own time-seeded stream.
func engineOptions(cmdName string, seed int64) (engine.Options, error) {
	cfg, err := config.Load()
	if err != nil {
		return engine.Options{}, err
	}
	opts := engine.Options{
		NumSamples: cfg.Engine.NumSamples,
		GridPoints: cfg.Engine.GridPoints,
		Workers:    cfg.Engine.Workers,
	}
	if seed == 0 {
		seed = cfg.Engine.Seed
	}
	if seed != 0 {
		opts.Rand = rngPort.SeededStream(cmdName, seed)
	}
	return opts, nil
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func newEVPICmd() *cobra.Command {
	var seed int64

	cmd := &cobra.Command{
		Use:   "evpi [scenario.json]",
		Short: "Expected value of perfect information for a scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScenario(args[0])
			if err != nil {
				return err
			}
			if s.Prior.Kind != dist.PriorNormal {
				return fmt.Errorf("evpi requires a normal prior, scenario has %q", s.Prior.Kind)
			}
			opts, err := engineOptions("evpi", seed)
			if err != nil {
				return err
			}

			res := engine.EVPI(decision.EVPIInputs{
				BaselineConversionRate: s.CR0,
				AnnualVisitors:         s.AnnualVisitors,
				ValuePerConversion:     s.ValuePerConv,
				PriorMu:                s.Prior.Mu,
				PriorSigma:             s.Prior.Sigma,
				ThresholdLift:          s.ThresholdLift,
			}, opts)

			internal.DefaultLogger.Info("evpi=%.2f decision=%s method=%s", res.EVPIDollars, res.DefaultDecision, res.Diagnostics.Method)
			return printJSON(res)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for deterministic operations")
	return cmd
}

func newEVSICmd() *cobra.Command {
	var seed int64
	var closedForm bool

	cmd := &cobra.Command{
		Use:   "evsi [scenario.json]",
		Short: "Expected value of sample information for a specific test",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScenario(args[0])
			if err != nil {
				return err
			}
			opts, err := engineOptions("evsi", seed)
			if err != nil {
				return err
			}

			var res decision.EVSIResult
			if closedForm {
				res, err = engine.EVSIClosedForm(s.evsiInputs(), opts)
				if err != nil {
					return err
				}
			} else {
				res = engine.EVSI(s.evsiInputs(), opts)
			}

			internal.DefaultLogger.Info("evsi=%.2f decision=%s method=%s", res.EVSIDollars, res.DefaultDecision, res.Diagnostics.Method)
			return printJSON(res)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for deterministic operations")
	cmd.Flags().BoolVar(&closedForm, "closed-form", false, "Use the normal-prior conjugate fast path instead of simulation")
	return cmd
}

func newNetValueCmd() *cobra.Command {
	var seed int64

	cmd := &cobra.Command{
		Use:   "netvalue [scenario.json]",
		Short: "Net value of running the test, after delay and exposure costs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScenario(args[0])
			if err != nil {
				return err
			}
			opts, err := engineOptions("netvalue", seed)
			if err != nil {
				return err
			}

			res := engine.NetValue(s.netValueInputs(), opts)
			internal.DefaultLogger.Info("net=%.2f budget=%.2f decision=%s", res.NetValueDollars, res.MaxTestBudgetDollars, res.DefaultDecision)
			return printJSON(res)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for deterministic operations")
	return cmd
}

func newSweepCmd() *cobra.Command {
	var seed int64
	var arms string
	var out string

	cmd := &cobra.Command{
		Use:   "sweep [scenario.json]",
		Short: "Evaluate the scenario across candidate per-arm sample sizes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadScenario(args[0])
			if err != nil {
				return err
			}
			armSizes, err := parseArms(arms)
			if err != nil {
				return err
			}
			opts, err := engineOptions("sweep", seed)
			if err != nil {
				return err
			}

			res := engine.Sweep(s.netValueInputs(), armSizes, opts)
			if out != "" {
				if err := excel.NewReportWriter().WriteSweep(out, res); err != nil {
					return err
				}
				internal.DefaultLogger.Info("sweep workbook written to %s", out)
			}
			return printJSON(res)
		},
	}

	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for deterministic operations")
	cmd.Flags().StringVar(&arms, "arms", "1000,5000,10000,25000,50000,100000", "Comma-separated per-arm sample sizes")
	cmd.Flags().StringVar(&out, "out", "", "Optional .xlsx report path")
	return cmd
}

func parseArms(raw string) ([]float64, error) {
	parts := strings.Split(raw, ",")
	sizes := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid arm size %q: %w", p, err)
		}
		sizes = append(sizes, n)
	}
	if len(sizes) == 0 {
		return nil, fmt.Errorf("no arm sizes given")
	}
	return sizes, nil
}
