package excel

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"mmmsynth/domain/mmm"
	"mmmsynth/internal"
	"mmmsynth/internal/errors"
	"mmmsynth/ports"

	"github.com/xuri/excelize/v2"
)

// DataReader handles reading exported Excel and CSV files
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
	logger   *internal.Logger
}

// NewDataReader creates a reader, choosing the format from the file extension
func NewDataReader(filePath string, logger *internal.Logger) *DataReader {
	ext := strings.ToLower(filepath.Ext(filePath))
	fileType := "csv"
	if ext == ".xlsx" {
		fileType = "xlsx"
	}
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &DataReader{filePath: filePath, fileType: fileType, logger: logger}
}

// ReadData reads the file into untyped header/value rows
func (r *DataReader) ReadData() (*ExcelData, error) {
	r.logger.Debug("reading %s file: %s", r.fileType, r.filePath)

	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s file not found: %s", strings.ToUpper(r.fileType), r.filePath)
	}

	switch r.fileType {
	case "csv":
		return r.readCSVData()
	case "xlsx":
		return r.readExcelData()
	default:
		return nil, fmt.Errorf("unsupported file type: %s", r.fileType)
	}
}

// ReadTable reads the file and types it into a table. The holiday flag is
// not exported, so it is recomputed from the dates.
func (r *DataReader) ReadTable() (*mmm.Table, error) {
	data, err := r.ReadData()
	if err != nil {
		return nil, errors.ImportError(r.filePath, err)
	}
	t, err := toTable(data)
	if err != nil {
		return nil, errors.ImportError(r.filePath, err)
	}
	r.logger.Debug("%s file typed (%d weeks)", strings.ToUpper(r.fileType), t.Len())
	return t, nil
}

func (r *DataReader) readExcelData() (*ExcelData, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", SheetName, err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("Excel file must have a header row")
	}
	return r.processRows(rows)
}

func (r *DataReader) readCSVData() (*ExcelData, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("CSV file must have a header row")
	}
	return r.processRows(rows)
}

// processRows converts raw string rows into ExcelData format
func (r *DataReader) processRows(rows [][]string) (*ExcelData, error) {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := make([]RawRowData, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		rowData := make(RawRowData)
		for j, cell := range rows[i] {
			if j < len(headers) {
				rowData[headers[j]] = strings.TrimSpace(cell)
			}
		}
		dataRows = append(dataRows, rowData)
	}

	r.logger.Debug("%s file processed (%d columns, %d rows)",
		strings.ToUpper(r.fileType), len(headers), len(dataRows))

	return &ExcelData{
		Headers: headers,
		Rows:    dataRows,
	}, nil
}

func toTable(data *ExcelData) (*mmm.Table, error) {
	present := make(map[string]bool, len(data.Headers))
	for _, h := range data.Headers {
		present[h] = true
	}
	for _, col := range mmm.ExportColumns() {
		if !present[col] {
			return nil, fmt.Errorf("missing column %q", col)
		}
	}

	t := mmm.NewTable(len(data.Rows))
	for i, row := range data.Rows {
		date, err := time.ParseInLocation(mmm.DateLayout, row[mmm.ColumnDate], time.UTC)
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid date %q: %w", i+1, row[mmm.ColumnDate], err)
		}
		sales, err := parseCell(row[mmm.ColumnSales])
		if err != nil {
			return nil, fmt.Errorf("row %d: %s: %w", i+1, mmm.ColumnSales, err)
		}

		rec := mmm.Record{Date: date, Holiday: mmm.IsHoliday(date), Sales: sales}
		for _, ch := range mmm.Channels {
			v, err := parseCell(row[ch.Column()])
			if err != nil {
				return nil, fmt.Errorf("row %d: %s: %w", i+1, ch.Column(), err)
			}
			rec.Spend[ch] = v
		}
		t.Records[i] = rec
		t.Trend[i] = math.NaN()
	}
	return t, nil
}

// parseCell reads a numeric field; an empty field is missing
func parseCell(s string) (float64, error) {
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// Loader adapts DataReader to ports.TableReader
type Loader struct {
	Logger *internal.Logger
}

var _ ports.TableReader = Loader{}

// Read loads the table stored at path
func (l Loader) Read(path string) (*mmm.Table, error) {
	return NewDataReader(path, l.Logger).ReadTable()
}
