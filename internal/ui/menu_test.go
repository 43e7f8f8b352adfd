package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dryfly-scientist/Hydro-Map/internal/delivery"
	"github.com/dryfly-scientist/Hydro-Map/internal/nri"
	"github.com/dryfly-scientist/Hydro-Map/internal/raster"
	"github.com/dryfly-scientist/Hydro-Map/internal/tnri"
	"github.com/dryfly-scientist/Hydro-Map/internal/watershed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePipeline struct {
	batches  int
	click    tnri.Click
	clickErr error
}

func (f *fakePipeline) RunBatch(context.Context) (*delivery.BatchReport, error) {
	f.batches++
	return &delivery.BatchReport{Scenes: 3, Coverage: 0.5, NRI: raster.Stats{Count: 4, Max: 1, Mean: 0.4}, Exports: []string{"/out/nri.tif"}}, nil
}

func (f *fakePipeline) EvaluateClick(_ context.Context, c tnri.Click) (*tnri.Summary, error) {
	f.click = c
	if f.clickErr != nil {
		return nil, f.clickErr
	}
	return &tnri.Summary{WatershedID: "071200060101", WatershedName: "Palmer Creek", FluxMgS: 4000}, nil
}

func (f *fakePipeline) ExportBufferStats() ([]nri.BufferStat, []string, error) {
	v := 0.42
	return []nri.BufferStat{{RadiusM: 30, Cells: 4, NDVI: &v}}, []string{"/out/buffer_stats.csv"}, nil
}

func (f *fakePipeline) ListWatersheds() ([]watershed.Watershed, error) {
	return []watershed.Watershed{{ID: "071200060101", Name: "Palmer Creek"}, {ID: "071200060102"}}, nil
}

func run(t *testing.T, p Pipeline, input string) string {
	t.Helper()
	var out bytes.Buffer
	NewMenu(p, nil, 1.5, strings.NewReader(input), &out).Show(context.Background())
	return out.String()
}

func TestMenu_BuildAndExit(t *testing.T) {
	p := &fakePipeline{}
	out := run(t, p, "1\n6\n")
	assert.Equal(t, 1, p.batches)
	assert.Contains(t, out, "NRI computed from 3 scene(s)")
	assert.Contains(t, out, "/out/nri.tif")
	assert.Contains(t, out, "Exiting...")
}

func TestMenu_EvaluateClick_DefaultDischarge(t *testing.T) {
	p := &fakePipeline{}
	out := run(t, p, "2\n-88.25\n42.65\n\n\n")
	assert.Equal(t, tnri.Click{Lon: -88.25, Lat: 42.65, Discharge: 1.5}, p.click)
	assert.Contains(t, out, "Palmer Creek (071200060101)")
}

func TestMenu_EvaluateClick_CFS(t *testing.T) {
	p := &fakePipeline{}
	run(t, p, "2\n-88.25\n42.65\n35.3\ny\n")
	assert.Equal(t, 35.3, p.click.Discharge)
	assert.True(t, p.click.DischargeCFS)
}

func TestMenu_EvaluateClick_Error(t *testing.T) {
	p := &fakePipeline{clickErr: errors.New("click is outside every watershed")}
	out := run(t, p, "2\n0\n0\n\n\n")
	assert.Contains(t, out, "Error: click is outside every watershed")
}

func TestMenu_ListAndStats(t *testing.T) {
	out := run(t, &fakePipeline{}, "4\n3\n")
	assert.Contains(t, out, "071200060101 Palmer Creek")
	assert.Contains(t, out, "- 071200060102")
	assert.Contains(t, out, "0.4200")
	assert.Contains(t, out, "/out/buffer_stats.csv")
}

func TestMenu_InvalidChoice(t *testing.T) {
	out := run(t, &fakePipeline{}, "9\nabc\n6\n")
	assert.Contains(t, out, "value must be between 1 and 6")
	assert.Contains(t, out, "invalid number: abc")
}

func TestMenu_ServeNotConfigured(t *testing.T) {
	out := run(t, &fakePipeline{}, "5\n")
	assert.Contains(t, out, "HTTP serving is not configured")
}

func TestMenu_Serve(t *testing.T) {
	called := false
	var out bytes.Buffer
	m := NewMenu(&fakePipeline{}, func(context.Context) error {
		called = true
		return nil
	}, 1, strings.NewReader("5\n6\n"), &out)
	m.Show(context.Background())
	require.True(t, called)
}
