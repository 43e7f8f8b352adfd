package output

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dryfly-scientist/Hydro-Map/internal/nri"
	"github.com/dryfly-scientist/Hydro-Map/internal/waterquality"
	"github.com/gocarina/gocsv"
)

type seriesRow struct {
	Date  string  `csv:"date"`
	Mean  float64 `csv:"value"`
	Count int     `csv:"samples"`
}

func ensureCSV(path string) string {
	if !strings.HasSuffix(path, ".csv") {
		return path + ".csv"
	}
	return path
}

func CreateBufferStatsCsv(stats []nri.BufferStat, outputCsvPath string) (string, error) {
	outputCsvPath = ensureCSV(outputCsvPath)
	file, err := os.Create(outputCsvPath)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&stats, file); err != nil {
		return "", fmt.Errorf("error writing buffer statistics: %w", err)
	}
	return outputCsvPath, nil
}

// CreateSeriesCsv writes the bucketed water-quality series with UTC RFC3339
// bucket starts.
func CreateSeriesCsv(buckets []waterquality.Bucket, outputCsvPath string) (string, error) {
	outputCsvPath = ensureCSV(outputCsvPath)
	rows := make([]seriesRow, len(buckets))
	for i, b := range buckets {
		rows[i] = seriesRow{Date: b.Start.UTC().Format(time.RFC3339), Mean: b.Mean, Count: b.Count}
	}

	file, err := os.Create(outputCsvPath)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&rows, file); err != nil {
		return "", fmt.Errorf("error writing series: %w", err)
	}
	return outputCsvPath, nil
}
