package waterquality

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dryfly-scientist/Hydro-Map/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const table = `system:time_start,value
2023-05-01T00:00:00Z,3.0
2023-03-01T00:00:00Z,1.0
2023-04-15T00:00:00Z,2.0
`

func TestReadSamples(t *testing.T) {
	samples, err := ReadSamples(strings.NewReader(table))
	require.NoError(t, err)
	require.Len(t, samples, 3)

	assert.Equal(t, time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC), samples[0].Time)
	assert.Equal(t, 1.0, samples[0].Value)
	assert.Equal(t, 3.0, samples[2].Value)
}

func TestReadSamples_TimestampFormats(t *testing.T) {
	samples, err := ReadSamples(strings.NewReader("system:time_start,value\n2023-03-01,1\n1677628800000,2\n2023-03-01 06:00:00,3\n"))
	require.NoError(t, err)
	require.Len(t, samples, 3)
	assert.True(t, samples[0].Time.Equal(samples[1].Time))
}

func TestReadSamples_RejectsBadRows(t *testing.T) {
	tests := []struct {
		name string
		csv  string
		want string
	}{
		{name: "blank value", csv: "system:time_start,value\n2023-03-01,1\n2023-03-02,\n", want: "line 3"},
		{name: "non numeric", csv: "system:time_start,value\n2023-03-01,abc\n", want: "line 2"},
		{name: "bad time", csv: "system:time_start,value\nyesterday,1\n", want: "line 2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSamples(strings.NewReader(tt.csv))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReadSamples_EmptyTable(t *testing.T) {
	for _, csv := range []string{"", "system:time_start,value\n"} {
		samples, err := ReadSamples(strings.NewReader(csv))
		require.NoError(t, err)
		assert.Empty(t, samples)

		_, _, err = Mean(samples, Window{})
		assert.ErrorIs(t, err, ErrInsufficientSampleData)
	}
}

func TestLoadSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wq.csv")
	require.NoError(t, os.WriteFile(path, []byte(table), 0o644))

	samples, err := LoadSamples(path)
	require.NoError(t, err)
	assert.Len(t, samples, 3)

	_, err = LoadSamples(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}

func TestEstimateFlux_ThreeSamples(t *testing.T) {
	samples, err := ReadSamples(strings.NewReader(table))
	require.NoError(t, err)

	est, err := EstimateFlux(samples, Window{}, 2)
	require.NoError(t, err)
	assert.Equal(t, 2.0, est.Mean)
	assert.Equal(t, 3, est.Samples)
	assert.Equal(t, 4000.0, est.Flux)
}

func TestMean_Window(t *testing.T) {
	samples, _ := ReadSamples(strings.NewReader(table))
	w := Window{
		Start: time.Date(2023, time.April, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2023, time.May, 1, 0, 0, 0, 0, time.UTC),
	}

	mean, n, err := Mean(samples, w)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 2.0, mean)

	_, _, err = Mean(samples, Window{Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)})
	assert.ErrorIs(t, err, ErrInsufficientSampleData)
}

func TestFlux_Linear(t *testing.T) {
	base, err := Flux(1.5, 10)
	require.NoError(t, err)
	for _, k := range []float64{0, 0.5, 2, 7} {
		scaled, err := Flux(1.5, 10*k)
		require.NoError(t, err)
		assert.InDelta(t, k*base, scaled, 1e-9)
	}

	_, err = Flux(-1, 2)
	assert.Error(t, err)
	_, err = Flux(1, -2)
	assert.Error(t, err)
}

func TestCFSToCMS(t *testing.T) {
	assert.InDelta(t, 1145.68, CFSToCMS(40459.3), 0.01)
}

func TestThreeHourMeans(t *testing.T) {
	base := time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC)
	samples := []Sample{
		{Time: base.Add(4 * time.Hour), Value: 4},
		{Time: base.Add(30 * time.Minute), Value: 1},
		{Time: base.Add(2 * time.Hour), Value: 3},
		{Time: base.Add(5 * time.Hour), Value: 6},
	}

	buckets := ThreeHourMeans(samples)
	require.Len(t, buckets, 2)
	assert.Equal(t, base, buckets[0].Start)
	assert.Equal(t, 2.0, buckets[0].Mean)
	assert.Equal(t, 2, buckets[0].Count)
	assert.Equal(t, base.Add(3*time.Hour), buckets[1].Start)
	assert.Equal(t, 5.0, buckets[1].Mean)
}

func TestHydrologyNorm(t *testing.T) {
	g := raster.Grid{OriginX: 0, OriginY: 30, CellSize: 30, Cols: 5, Rows: 1, EPSG: 32617}
	acc, err := raster.FromValues(g, "upa", []float64{0, -5, 10, 1000, 1e6})
	require.NoError(t, err)

	norm := HydrologyNorm(acc)

	assert.False(t, norm.Valid[0])
	assert.False(t, norm.Valid[1])
	assert.InDelta(t, math.Pow(1.0/3.0, 2), norm.Data[2], 1e-12)
	assert.InDelta(t, 1.0, norm.Data[3], 1e-12)
	assert.Equal(t, 1.0, norm.Data[4])
}
