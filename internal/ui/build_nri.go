package ui

import (
	"context"
	"fmt"
)

// BuildNRI runs the batch pipeline for the configured study region.
func (m *Menu) BuildNRI(ctx context.Context) {
	m.PrintWarning("Inputs are read from the paths in your .env file; results are written to OUTPUT_DIR.")

	report, err := m.Pipeline.RunBatch(ctx)
	if err != nil {
		m.PrintError(err.Error())
		return
	}

	source := "computed"
	if report.Cached {
		source = "loaded from cache"
	}
	m.PrintSuccess(fmt.Sprintf("NRI %s from %d scene(s)", source, report.Scenes))
	fmt.Fprintf(m.out, "%sCoverage: %.1f%%  min %.3f  mean %.3f  max %.3f%s\n",
		ColorGreen, report.Coverage*100, report.NRI.Min, report.NRI.Mean, report.NRI.Max, ColorReset)
	for _, path := range report.Exports {
		fmt.Fprintf(m.out, "%s- %s%s\n", ColorGreen, path, ColorReset)
	}
}
