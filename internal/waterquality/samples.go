// Package waterquality reads in-situ concentration series and turns them into
// a nutrient flux for the terrestrial index.
package waterquality

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dryfly-scientist/Hydro-Map/internal/utils"
	"github.com/gocarina/gocsv"
)

var ErrInsufficientSampleData = errors.New("no water-quality samples in window")

type Sample struct {
	Time  time.Time
	Value float64
}

// record is one row of the two-column upload table.
type record struct {
	TimeStart string `csv:"system:time_start"`
	Value     string `csv:"value"`
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	time.DateTime,
	time.DateOnly,
	"01/02/2006 15:04",
	"01/02/2006",
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	// epoch milliseconds
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

// ReadSamples parses a table with the columns system:time_start and value,
// sorted by time. A table without rows yields no samples.
func ReadSamples(r io.Reader) ([]Sample, error) {
	var rows []*record
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		if errors.Is(err, gocsv.ErrEmptyCSVFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse water-quality table: %w", err)
	}

	samples := make([]Sample, 0, len(rows))
	for i, row := range rows {
		line := i + 2
		if strings.TrimSpace(row.TimeStart) == "" || strings.TrimSpace(row.Value) == "" {
			return nil, fmt.Errorf("line %d: blank timestamp or value", line)
		}
		t, err := parseTime(row.TimeStart)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(row.Value), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: value %q is not numeric", line, row.Value)
		}
		samples = append(samples, Sample{Time: t, Value: v})
	}
	utils.SortByTime(samples, func(s Sample) time.Time { return s.Time })
	return samples, nil
}

func LoadSamples(path string) ([]Sample, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open water-quality table: %w", err)
	}
	defer file.Close()

	samples, err := ReadSamples(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return samples, nil
}
