// Package excel renders sensitivity-sweep results as a workbook, for
// experimenters who want the numbers next to their planning spreadsheets.
package excel

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"infoworth/internal/engine"
)

const sweepSheet = "Sweep"

// ReportWriter writes sweep workbooks.
type ReportWriter struct{}

// NewReportWriter creates a writer.
func NewReportWriter() *ReportWriter {
	return &ReportWriter{}
}

// WriteSweep writes one sheet of sweep rows plus the EVPI ceiling to path.
func (w *ReportWriter) WriteSweep(path string, sweep engine.SweepResult) error {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sweepSheet)
	if err != nil {
		return fmt.Errorf("create sweep sheet: %w", err)
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	headers := []interface{}{"n_per_arm", "evsi_dollars", "net_value_dollars", "max_test_budget_dollars", "rejection_rate"}
	if err := f.SetSheetRow(sweepSheet, "A1", &headers); err != nil {
		return fmt.Errorf("write header row: %w", err)
	}

	for i, p := range sweep.Points {
		cell := fmt.Sprintf("A%d", i+2)
		row := []interface{}{p.NPerArm, p.EVSIDollars, p.NetValueDollars, p.MaxTestBudgetDollars, p.RejectionRate}
		if err := f.SetSheetRow(sweepSheet, cell, &row); err != nil {
			return fmt.Errorf("write sweep row %d: %w", i, err)
		}
	}

	summary := fmt.Sprintf("A%d", len(sweep.Points)+3)
	label := []interface{}{"evpi_ceiling_dollars", sweep.EVPIDollars}
	if err := f.SetSheetRow(sweepSheet, summary, &label); err != nil {
		return fmt.Errorf("write summary row: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
