// Package analytics computes read-only aggregate views over the current
// set of student records. Nothing here touches storage: callers load the
// records once and pass them in, so every function is a pure single pass
// over its input and holds no state between calls.
package analytics

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/aanand-mishra/student-dbms/internal/types"
)

// CSVHeader is the fixed column order of an export. It mirrors the table
// schema and is part of the download contract.
var CSVHeader = []string{"id", "name", "age", "major", "gpa", "email"}

// histogramBins is the number of buckets the GPA distribution is split
// into across the 0.0–4.0 range.
const histogramBins = 10

// Summary is the aggregate report for the current record set.
//
// MeanGPA is zero (not NaN) and the maps are empty when Total is zero —
// an empty table is a valid input, never an error.
type Summary struct {
	Total        int            `json:"total"`
	MeanGPA      float64        `json:"mean_gpa"`
	TopMajor     string         `json:"top_major,omitempty"`
	CountByMajor map[string]int `json:"count_by_major"`
	GPAHistogram []HistogramBin `json:"gpa_histogram"`
}

// HistogramBin is one bucket of the GPA distribution.
type HistogramBin struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Count int     `json:"count"`
}

// Summarize computes the Summary for the given records in one pass.
func Summarize(students []types.Student) Summary {
	summary := Summary{
		Total:        len(students),
		CountByMajor: make(map[string]int),
		GPAHistogram: gpaHistogram(students),
	}

	if len(students) == 0 {
		return summary
	}

	gpas := make([]float64, len(students))
	for i, s := range students {
		gpas[i] = s.GPA
		summary.CountByMajor[s.Major]++
	}
	summary.MeanGPA = stat.Mean(gpas, nil)
	summary.TopMajor = topMajor(summary.CountByMajor)

	return summary
}

// topMajor picks the modal major. Ties break toward the lexicographically
// smaller name so the result is stable across runs.
func topMajor(counts map[string]int) string {
	var best string
	bestCount := -1
	for major, count := range counts {
		if count > bestCount || (count == bestCount && major < best) {
			best, bestCount = major, count
		}
	}
	return best
}

// gpaHistogram buckets GPAs into histogramBins equal-width bins over
// [0, 4]. A GPA of exactly 4.0 lands in the last bin.
func gpaHistogram(students []types.Student) []HistogramBin {
	const width = 4.0 / histogramBins

	bins := make([]HistogramBin, histogramBins)
	for i := range bins {
		bins[i].Low = float64(i) * width
		bins[i].High = float64(i+1) * width
	}

	for _, s := range students {
		idx := int(s.GPA / width)
		if idx >= histogramBins {
			idx = histogramBins - 1
		}
		if idx < 0 {
			idx = 0
		}
		bins[idx].Count++
	}

	return bins
}

// ExportCSV serializes all records in CSVHeader column order, header row
// first. GPA uses the shortest decimal form that round-trips the stored
// value.
func ExportCSV(students []types.Student) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(CSVHeader); err != nil {
		return nil, fmt.Errorf("ExportCSV: write header: %w", err)
	}

	for _, s := range students {
		record := []string{
			strconv.FormatInt(s.ID, 10),
			s.Name,
			strconv.Itoa(s.Age),
			s.Major,
			strconv.FormatFloat(s.GPA, 'f', -1, 64),
			s.Email,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("ExportCSV: write row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("ExportCSV: flush: %w", err)
	}

	return buf.Bytes(), nil
}
