package synth

import (
	"math"
	"sort"
	"strings"

	"mmmsynth/domain/mmm"
	"mmmsynth/ports"
)

// MissingMode selects how retained values are placed after a column is sampled
type MissingMode string

const (
	// MissingResample writes the sampled values back in sampling order, so the
	// surviving values lose their alignment with the date index and with the
	// other columns.
	MissingResample MissingMode = "resample"
	// MissingAligned keeps every surviving value in its original row.
	MissingAligned MissingMode = "aligned"
)

// ParseMissingMode parses a mode name, case-insensitively
func ParseMissingMode(s string) (MissingMode, bool) {
	m := MissingMode(strings.ToLower(strings.TrimSpace(s)))
	return m, m.Valid()
}

// Valid reports whether m is a known mode
func (m MissingMode) Valid() bool {
	return m == MissingResample || m == MissingAligned
}

// KeepCount is the number of entries a column of n keeps when sampling
// fraction of it. Halves round to even.
func KeepCount(n int, fraction float64) int {
	k := int(math.RoundToEven(fraction * float64(n)))
	if k > n {
		return n
	}
	return k
}

// injectMissing samples every spend column and every spend lag column
// independently, in frame order
func injectMissing(t *mmm.Table, r ports.RNG, fraction float64, mode MissingMode) {
	n := t.Len()
	keep := KeepCount(n, fraction)

	for _, ch := range mmm.Channels {
		t.SetSpend(ch, sampleColumn(t.Spend(ch), r, keep, mode))
	}
	for lag := 1; lag <= mmm.MaxLag; lag++ {
		for _, ch := range mmm.Channels {
			t.SpendLags[lag-1][ch] = sampleColumn(t.SpendLags[lag-1][ch], r, keep, mode)
		}
	}
}

// sampleColumn keeps `keep` randomly chosen entries of values and blanks the
// rest. The permutation is always drawn, even when nothing is dropped, so the
// stream position does not depend on the fraction.
func sampleColumn(values []float64, r ports.RNG, keep int, mode MissingMode) []float64 {
	perm := r.Perm(len(values))
	picked := perm[:keep]

	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}

	switch mode {
	case MissingAligned:
		for _, idx := range picked {
			out[idx] = values[idx]
		}
	default:
		rows := append([]int(nil), picked...)
		sort.Ints(rows)
		for j, row := range rows {
			out[row] = values[picked[j]]
		}
	}
	return out
}
