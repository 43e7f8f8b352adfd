package landsat

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/dryfly-scientist/Hydro-Map/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var grid = raster.Grid{OriginX: 0, OriginY: 60, CellSize: 30, Cols: 2, Rows: 2, EPSG: 32617}

// dn inverts the surface reflectance rescale.
func dn(reflectance float64) float64 {
	return (reflectance - reflectanceOffset) / reflectanceScale
}

func scene(t *testing.T, id string, nir, red, qa []float64) Scene {
	t.Helper()
	s, err := SensorFor(id)
	require.NoError(t, err)
	acquired, err := AcquisitionDate(id)
	require.NoError(t, err)
	mk := func(name string, vs []float64) *raster.Raster {
		r, err := raster.FromValues(grid, name, vs)
		require.NoError(t, err)
		return r
	}
	return Scene{ID: id, Sensor: s, Acquired: acquired, QA: mk("qa", qa), NIR: mk(s.NIR, nir), Red: mk(s.Red, red)}
}

func TestSensorFor(t *testing.T) {
	tests := []struct {
		id      string
		nir     string
		red     string
		wantErr bool
	}{
		{id: "LT05_L2SP_018030_19950410_20200912_02_T1", nir: "SR_B4", red: "SR_B3"},
		{id: "LE07_L2SP_018030_20050410_20200912_02_T1", nir: "SR_B4", red: "SR_B3"},
		{id: "LC08_L2SP_018030_20200415_20200822_02_T1", nir: "SR_B5", red: "SR_B4"},
		{id: "LC09_L2SP_018030_20230415_20230417_02_T1", nir: "SR_B5", red: "SR_B4"},
		{id: "S2A_MSIL2A", wantErr: true},
		{id: "LC", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			s, err := SensorFor(tt.id)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.nir, s.NIR)
			assert.Equal(t, tt.red, s.Red)
		})
	}
}

func TestAcquisitionDate(t *testing.T) {
	d, err := AcquisitionDate("LC08_L2SP_018030_20200415_20200822_02_T1")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2020, time.April, 15, 0, 0, 0, 0, time.UTC), d)

	_, err = AcquisitionDate("LC08_L2SP")
	assert.Error(t, err)
}

func TestSpringWindow(t *testing.T) {
	w := SpringWindow(2023)
	assert.True(t, w.Contains(time.Date(2023, time.February, 1, 0, 0, 0, 0, time.UTC)))
	assert.True(t, w.Contains(time.Date(2023, time.May, 30, 23, 59, 0, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2023, time.May, 31, 0, 0, 0, 0, time.UTC)))
	assert.False(t, w.Contains(time.Date(2023, time.January, 31, 0, 0, 0, 0, time.UTC)))
}

func TestMaskQA_RejectsFlaggedBits(t *testing.T) {
	band := raster.Constant(grid, "b", 1)
	qa, err := raster.FromValues(grid, "qa", []float64{
		21824,    // clear
		1 << 3,   // cloud
		1 << 4,   // shadow
		1<<5 | 1, // snow and fill
	})
	require.NoError(t, err)

	out, err := MaskQA(band, qa)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, false, false, false}, out.Valid)
}

func TestScaleReflectance(t *testing.T) {
	r := raster.Constant(grid, "b", 10000)
	out := ScaleReflectance(r)
	assert.InDelta(t, 0.075, out.Data[0], 1e-12)
}

func TestNDVI_ZeroDenominatorIsAbsent(t *testing.T) {
	nir, _ := raster.FromValues(grid, "nir", []float64{0.5, 0, 0.3, 0.2})
	red, _ := raster.FromValues(grid, "red", []float64{0.1, 0, 0.3, -0.2})

	out, err := NDVI(nir, red)
	require.NoError(t, err)

	assert.InDelta(t, 0.4/0.6, out.Data[0], 1e-12)
	assert.False(t, out.Valid[1])
	assert.Equal(t, 0.0, out.Data[2])
	assert.False(t, out.Valid[3])
}

func TestComposite_MedianOfSpringScenes(t *testing.T) {
	clearQA := []float64{0, 0, 0, 0}
	cloudy := []float64{8, 0, 0, 0}
	scenes := []Scene{
		scene(t, "LC08_L2SP_018030_20200301_20200822_02_T1",
			[]float64{dn(0.3), dn(0.3), dn(0.3), dn(0.3)}, []float64{dn(0.1), dn(0.1), dn(0.1), dn(0.1)}, clearQA),
		scene(t, "LE07_L2SP_018030_20200315_20200822_02_T1",
			[]float64{dn(0.4), dn(0.4), dn(0.4), dn(0.4)}, []float64{dn(0.1), dn(0.1), dn(0.1), dn(0.1)}, clearQA),
		scene(t, "LC09_L2SP_018030_20200420_20200822_02_T1",
			[]float64{dn(0.9), dn(0.9), dn(0.9), dn(0.9)}, []float64{dn(0.1), dn(0.1), dn(0.1), dn(0.1)}, cloudy),
		// outside the window
		scene(t, "LC08_L2SP_018030_20200801_20200822_02_T1",
			[]float64{dn(0.9), dn(0.9), dn(0.9), dn(0.9)}, []float64{dn(0.0), dn(0.0), dn(0.0), dn(0.0)}, clearQA),
	}

	out, err := Compositor{Workers: 2, Quiet: true}.Composite(context.Background(), scenes, SpringWindow(2020))
	require.NoError(t, err)

	// pixel 0: cloud in the third scene leaves ndvi 0.5 and 0.6
	assert.InDelta(t, 0.55, out.Data[0], 1e-9)
	// pixel 1: ndvi 0.5, 0.6 and 0.8
	assert.InDelta(t, 0.6, out.Data[1], 1e-9)
}

func TestComposite_NoScenesInWindow(t *testing.T) {
	scenes := []Scene{
		scene(t, "LC08_L2SP_018030_20200801_20200822_02_T1",
			[]float64{1, 1, 1, 1}, []float64{1, 1, 1, 1}, []float64{0, 0, 0, 0}),
	}

	_, err := Compositor{Quiet: true}.Composite(context.Background(), scenes, SpringWindow(2020))
	assert.ErrorIs(t, err, ErrEmptyInputCollection)
}

func TestComposite_FullyMasked(t *testing.T) {
	scenes := []Scene{
		scene(t, "LC08_L2SP_018030_20200301_20200822_02_T1",
			[]float64{1, 1, 1, 1}, []float64{1, 1, 1, 1}, []float64{8, 8, 16, 32}),
	}

	_, err := Compositor{Quiet: true}.Composite(context.Background(), scenes, SpringWindow(2020))
	assert.ErrorIs(t, err, ErrEmptyInputCollection)
}

func TestGreenness(t *testing.T) {
	ndvi, _ := raster.FromValues(grid, "ndvi", []float64{-0.2, 0.4, 0.8, math.NaN()})
	g := Greenness(ndvi)

	assert.InDeltaSlice(t, []float64{0, 0.5, 1, 0}, g.Data, 1e-12)
	assert.Equal(t, []bool{true, true, true, false}, g.Valid)
	assert.Equal(t, "greenness", g.Name)
}
