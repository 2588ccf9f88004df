package excel

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"mmmsynth/domain/mmm"
	"mmmsynth/internal/errors"
	"mmmsynth/ports"

	"github.com/xuri/excelize/v2"
)

// SheetName is the single sheet written to and read from workbooks
const SheetName = "Sheet1"

// CSVWriter writes the published columns as comma-separated text
type CSVWriter struct{}

// XLSXWriter writes the published columns to a single-sheet workbook
type XLSXWriter struct{}

var (
	_ ports.TableWriter = CSVWriter{}
	_ ports.TableWriter = XLSXWriter{}
)

// NewWriter returns the writer for a format name
func NewWriter(format string) (ports.TableWriter, error) {
	switch strings.ToLower(format) {
	case "csv":
		return CSVWriter{}, nil
	case "xlsx":
		return XLSXWriter{}, nil
	default:
		return nil, errors.ValidationError("unsupported output format: " + format)
	}
}

func (CSVWriter) Format() string { return "csv" }

func (CSVWriter) Write(w io.Writer, t *mmm.Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(mmm.ExportColumns()); err != nil {
		return err
	}
	for _, rec := range t.Records {
		if err := cw.Write(formatRecord(rec)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (XLSXWriter) Format() string { return "xlsx" }

func (XLSXWriter) Write(w io.Writer, t *mmm.Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if idx, err := f.GetSheetIndex(SheetName); err != nil || idx == -1 {
		idx, err := f.NewSheet(SheetName)
		if err != nil {
			return err
		}
		f.SetActiveSheet(idx)
	}

	for i, h := range mmm.ExportColumns() {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return err
		}
	}

	for r, rec := range t.Records {
		rowIdx := r + 2
		values := []interface{}{rec.Date.Format(mmm.DateLayout), rec.Sales}
		for _, ch := range mmm.Channels {
			values = append(values, rec.Spend[ch])
		}
		for c, v := range values {
			// missing spend stays an empty cell
			if fv, ok := v.(float64); ok && math.IsNaN(fv) {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, rowIdx)
			if err := f.SetCellValue(SheetName, cell, v); err != nil {
				return err
			}
		}
	}

	_, err := f.WriteTo(w)
	return err
}

func formatRecord(rec mmm.Record) []string {
	row := make([]string, 0, 2+mmm.NumChannels)
	row = append(row, rec.Date.Format(mmm.DateLayout), FormatFloat(rec.Sales))
	for _, ch := range mmm.Channels {
		row = append(row, FormatFloat(rec.Spend[ch]))
	}
	return row
}

// FormatFloat renders v the way a dataframe export does: shortest round-trip
// digits, a trailing ".0" on integral values, and an empty field for NaN
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
