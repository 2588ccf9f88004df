package mmm

import (
	"math"
	"time"
)

// Record is one synthetic week. Missing spend is NaN.
type Record struct {
	Date    time.Time
	Holiday bool
	Spend   [NumChannels]float64
	Sales   float64
}

// Table is the ordered weekly dataset plus the transient columns derived while
// building it. Only Records is exported; the rest exist for analysis.
type Table struct {
	Records []Record

	// Trend is the shared linear trend term, indexed by row
	Trend []float64
	// SpendLags[lag-1][channel] is the spend column shifted by lag rows
	SpendLags [MaxLag][NumChannels][]float64
	// SalesLags[lag-1] is the post-carryover sales column shifted by lag rows
	SalesLags [MaxLag][]float64
}

// NewTable allocates a table of n records
func NewTable(n int) *Table {
	return &Table{
		Records: make([]Record, n),
		Trend:   make([]float64, n),
	}
}

// Len returns the number of weeks
func (t *Table) Len() int {
	return len(t.Records)
}

// Dates returns the week-start dates in row order
func (t *Table) Dates() []time.Time {
	out := make([]time.Time, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.Date
	}
	return out
}

// Spend returns a copy of one channel's spend column
func (t *Table) Spend(ch Channel) []float64 {
	out := make([]float64, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.Spend[ch]
	}
	return out
}

// SetSpend overwrites one channel's spend column
func (t *Table) SetSpend(ch Channel, values []float64) {
	for i := range t.Records {
		t.Records[i].Spend[ch] = values[i]
	}
}

// Sales returns a copy of the sales column
func (t *Table) Sales() []float64 {
	out := make([]float64, len(t.Records))
	for i, r := range t.Records {
		out[i] = r.Sales
	}
	return out
}

// Holidays returns the holiday flag as a 0/1 column
func (t *Table) Holidays() []float64 {
	out := make([]float64, len(t.Records))
	for i, r := range t.Records {
		if r.Holiday {
			out[i] = 1
		}
	}
	return out
}

// HolidayCount returns the number of flagged weeks
func (t *Table) HolidayCount() int {
	n := 0
	for _, r := range t.Records {
		if r.Holiday {
			n++
		}
	}
	return n
}

// MissingSpend counts NaN entries in one channel's spend column
func (t *Table) MissingSpend(ch Channel) int {
	n := 0
	for _, r := range t.Records {
		if math.IsNaN(r.Spend[ch]) {
			n++
		}
	}
	return n
}

// Frame returns every numeric column in analysis order, with the constant
// column appended. Lag columns are included only when they were derived.
func (t *Table) Frame() Frame {
	n := len(t.Records)
	f := Frame{}

	f.add(ColumnSales, t.Sales())
	for _, ch := range Channels {
		f.add(ch.Column(), t.Spend(ch))
	}
	f.add(ColumnHoliday, t.Holidays())

	for lag := 1; lag <= MaxLag; lag++ {
		for _, ch := range Channels {
			if col := t.SpendLags[lag-1][ch]; len(col) == n {
				f.add(ch.LagColumn(lag), col)
			}
		}
	}
	for lag := 1; lag <= MaxLag; lag++ {
		if col := t.SalesLags[lag-1]; len(col) == n {
			f.add(SalesLagColumn(lag), col)
		}
	}

	constant := make([]float64, n)
	for i := range constant {
		constant[i] = 1
	}
	f.add(ColumnConstant, constant)
	return f
}
