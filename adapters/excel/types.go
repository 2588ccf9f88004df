package excel

// RawRowData represents a row of raw spreadsheet data as header/value pairs
type RawRowData map[string]string

// ExcelData represents a sheet or CSV file before it is typed
type ExcelData struct {
	Headers []string     // Column headers
	Rows    []RawRowData // Data rows
}
