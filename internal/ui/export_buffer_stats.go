package ui

import (
	"context"
	"fmt"
)

func formatMean(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.4f", *v)
}

// ExportBufferStats writes and prints the per-radius buffer table.
func (m *Menu) ExportBufferStats(_ context.Context) {
	stats, exports, err := m.Pipeline.ExportBufferStats()
	if err != nil {
		m.PrintError(err.Error())
		return
	}

	fmt.Fprintf(m.out, "\n%s%8s %8s %8s %8s %14s%s\n", ColorGreen, "Buffer_m", "cells", "NDVI", "NRI", "Nitrate_Load", ColorReset)
	for _, s := range stats {
		fmt.Fprintf(m.out, "%s%8.0f %8d %8s %8s %14s%s\n", ColorGreen,
			s.RadiusM, s.Cells, formatMean(s.NDVI), formatMean(s.NRI), formatMean(s.NitrateLoad), ColorReset)
	}
	m.PrintSuccess("Buffer statistics exported")
	for _, path := range exports {
		fmt.Fprintf(m.out, "%s- %s%s\n", ColorGreen, path, ColorReset)
	}
}

// StartServer starts the click server and blocks until it stops.
func (m *Menu) StartServer(ctx context.Context) {
	if m.Serve == nil {
		m.PrintError("HTTP serving is not configured")
		return
	}
	m.PrintWarning("Serving until interrupted (Ctrl+C).")
	if err := m.Serve(ctx); err != nil {
		m.PrintError(err.Error())
	}
}
