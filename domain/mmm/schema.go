package mmm

import (
	"fmt"
	"time"
)

// Column names shared by the generator, exporter and analysis stages
const (
	ColumnDate     = "Date"
	ColumnSales    = "Sales"
	ColumnHoliday  = "black_friday"
	ColumnConstant = "constant"
)

// DateLayout is the calendar format used in exported files
const DateLayout = "2006-01-02"

// SalesLagColumn returns the name of the sales column shifted by lag weeks
func SalesLagColumn(lag int) string {
	return fmt.Sprintf("%s_t_%d", ColumnSales, lag)
}

// ExportColumns is the published column subset, in file order
func ExportColumns() []string {
	cols := []string{ColumnDate, ColumnSales}
	for _, ch := range Channels {
		cols = append(cols, ch.Column())
	}
	return cols
}

// RegressorColumns lists the independent variables of the sales model, in
// coefficient order
func RegressorColumns() []string {
	cols := make([]string, 0, NumChannels+2)
	for _, ch := range Channels {
		cols = append(cols, ch.Column())
	}
	return append(cols, ColumnHoliday, ColumnConstant)
}

// DefaultStartDate is the Monday the first synthetic week begins on
var DefaultStartDate = time.Date(2021, time.January, 4, 0, 0, 0, 0, time.UTC)

// AnchorOffset moves a week-start date to the Friday the week is keyed on
const AnchorOffset = 4 * 24 * time.Hour

// HolidayDates are the Black Friday dates flagged in the dataset
var HolidayDates = []time.Time{
	time.Date(2021, time.November, 26, 0, 0, 0, 0, time.UTC),
	time.Date(2022, time.November, 25, 0, 0, 0, 0, time.UTC),
	time.Date(2023, time.November, 24, 0, 0, 0, 0, time.UTC),
}

// IsHoliday reports whether the week starting at date contains a holiday on its
// Friday anchor
func IsHoliday(date time.Time) bool {
	anchor := Anchor(date)
	for _, h := range HolidayDates {
		if anchor.Equal(h) {
			return true
		}
	}
	return false
}

// Anchor returns the Friday of the week starting at date
func Anchor(date time.Time) time.Time {
	return date.Add(AnchorOffset)
}
