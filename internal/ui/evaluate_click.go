package ui

import (
	"context"
	"fmt"

	"github.com/dryfly-scientist/Hydro-Map/internal/tnri"
)

// EvaluateClick prompts for a location and discharge and reports the TNRI
// of the watershed under it.
func (m *Menu) EvaluateClick(ctx context.Context) {
	lon, err := m.ReadFloat("Enter longitude (WGS84): ", 0)
	if err != nil {
		m.PrintError(err.Error())
		return
	}
	lat, err := m.ReadFloat("Enter latitude (WGS84): ", 0)
	if err != nil {
		m.PrintError(err.Error())
		return
	}
	discharge, err := m.ReadFloat(fmt.Sprintf("Enter discharge [%g]: ", m.Discharge), m.Discharge)
	if err != nil {
		m.PrintError(err.Error())
		return
	}
	cfs, err := m.ReadYesNo("Is the discharge in cubic feet per second? (y/N): ", false)
	if err != nil {
		m.PrintError(err.Error())
		return
	}

	summary, err := m.Pipeline.EvaluateClick(ctx, tnri.Click{Lon: lon, Lat: lat, Discharge: discharge, DischargeCFS: cfs})
	if err != nil {
		m.PrintError(err.Error())
		return
	}

	name := summary.WatershedID
	if summary.WatershedName != "" {
		name = fmt.Sprintf("%s (%s)", summary.WatershedName, summary.WatershedID)
	}
	m.PrintSuccess("Watershed " + name)
	fmt.Fprintf(m.out, "%sMean nitrate: %.3f mg/L over %d sample(s)%s\n", ColorGreen, summary.MeanMgL, summary.Samples, ColorReset)
	fmt.Fprintf(m.out, "%sDischarge: %.3f m3/s  Flux: %.1f mg/s%s\n", ColorGreen, summary.DischargeCMS, summary.FluxMgS, ColorReset)
	fmt.Fprintf(m.out, "%sTNRI: min %.3f  mean %.3f  max %.3f over %d cells%s\n",
		ColorGreen, summary.TNRI.Min, summary.TNRI.Mean, summary.TNRI.Max, summary.TNRI.Count, ColorReset)
	for _, path := range summary.Exports {
		fmt.Fprintf(m.out, "%s- %s%s\n", ColorGreen, path, ColorReset)
	}
}
