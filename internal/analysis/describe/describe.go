// Package describe computes per-column summary statistics over an analysis
// frame and renders them as a table with one column per series.
package describe

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"mmmsynth/domain/mmm"
	"mmmsynth/internal/errors"

	"github.com/montanaflynn/stats"
)

// Summary holds the descriptive statistics of one column. Count excludes
// missing values; every other field is NaN when there is nothing to summarize.
type Summary struct {
	Name   string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	Q25    float64
	Median float64
	Q75    float64
	Max    float64
}

// Column summarizes one series, skipping NaN
func Column(name string, values []float64) (Summary, error) {
	s := Summary{
		Name:   name,
		Mean:   math.NaN(),
		Std:    math.NaN(),
		Min:    math.NaN(),
		Q25:    math.NaN(),
		Median: math.NaN(),
		Q75:    math.NaN(),
		Max:    math.NaN(),
	}

	data := make(stats.Float64Data, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			data = append(data, v)
		}
	}
	s.Count = len(data)
	if s.Count == 0 {
		return s, nil
	}

	var err error
	if s.Mean, err = stats.Mean(data); err != nil {
		return s, errors.Wrapf(err, "mean of %s", name)
	}
	if s.Min, err = stats.Min(data); err != nil {
		return s, errors.Wrapf(err, "min of %s", name)
	}
	if s.Max, err = stats.Max(data); err != nil {
		return s, errors.Wrapf(err, "max of %s", name)
	}
	if s.Median, err = stats.Median(data); err != nil {
		return s, errors.Wrapf(err, "median of %s", name)
	}
	if s.Count > 1 {
		if s.Std, err = stats.StandardDeviationSample(data); err != nil {
			return s, errors.Wrapf(err, "std of %s", name)
		}
	}

	sorted := append([]float64(nil), data...)
	sort.Float64s(sorted)
	s.Q25 = quantile(sorted, 0.25)
	s.Q75 = quantile(sorted, 0.75)
	return s, nil
}

// quantile interpolates linearly between closest ranks, h = (n-1)p
func quantile(sorted []float64, p float64) float64 {
	h := float64(len(sorted)-1) * p
	lo := math.Floor(h)
	i := int(lo)
	if i+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[i] + (h-lo)*(sorted[i+1]-sorted[i])
}

// Frame summarizes every column of f in order
func Frame(f mmm.Frame) ([]Summary, error) {
	out := make([]Summary, 0, len(f.Columns))
	for _, c := range f.Columns {
		s, err := Column(c.Name, c.Values)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Find returns the summary for a named column
func Find(summaries []Summary, name string) (Summary, bool) {
	for _, s := range summaries {
		if s.Name == name {
			return s, true
		}
	}
	return Summary{}, false
}

// Equal reports whether two summaries agree on every statistic. NaN equals
// NaN.
func (s Summary) Equal(o Summary) bool {
	if s.Count != o.Count {
		return false
	}
	a, b := s.values(), o.values()
	for i := range a {
		if math.IsNaN(a[i]) && math.IsNaN(b[i]) {
			continue
		}
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (s Summary) values() []float64 {
	return []float64{float64(s.Count), s.Mean, s.Std, s.Min, s.Q25, s.Median, s.Q75, s.Max}
}

var rowLabels = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// LineWidth is the terminal width columns are wrapped to
const LineWidth = 80

// Render writes the summaries with statistics as rows and series as columns,
// wrapping onto further blocks when the line would exceed LineWidth.
func Render(w io.Writer, summaries []Summary) error {
	labelWidth := 0
	for _, l := range rowLabels {
		labelWidth = max(labelWidth, len(l))
	}

	cells := make([][]string, len(summaries))
	widths := make([]int, len(summaries))
	for j, s := range summaries {
		vals := s.values()
		cells[j] = make([]string, len(vals))
		widths[j] = len(s.Name)
		for i, v := range vals {
			cells[j][i] = formatCell(v)
			widths[j] = max(widths[j], len(cells[j][i]))
		}
	}

	var b strings.Builder
	for start := 0; start < len(summaries); {
		end := start
		used := labelWidth
		for end < len(summaries) && (end == start || used+2+widths[end] <= LineWidth) {
			used += 2 + widths[end]
			end++
		}

		if start > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strings.Repeat(" ", labelWidth))
		for j := start; j < end; j++ {
			fmt.Fprintf(&b, "  %*s", widths[j], summaries[j].Name)
		}
		b.WriteString("\n")
		for i, label := range rowLabels {
			fmt.Fprintf(&b, "%-*s", labelWidth, label)
			for j := start; j < end; j++ {
				fmt.Fprintf(&b, "  %*s", widths[j], cells[j][i])
			}
			b.WriteString("\n")
		}
		start = end
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return "NaN"
	}
	return fmt.Sprintf("%.6f", v)
}
