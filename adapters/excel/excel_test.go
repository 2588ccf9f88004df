package excel

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mmmsynth/domain/mmm"
	"mmmsynth/internal/errors"
	"mmmsynth/internal/synth"
	"mmmsynth/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generate(t *testing.T) *mmm.Table {
	t.Helper()
	table, err := synth.GenerateSeeded(synth.DefaultConfig())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	return table
}

func encode(t *testing.T, w ports.TableWriter, table *mmm.Table) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, w.Write(&buf, table))
	return buf.Bytes()
}

func writeFile(t *testing.T, path string, w ports.TableWriter, table *mmm.Table) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, encode(t, w, table), 0o644))
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{3212, "3212.0"},
		{0, "0.0"},
		{-15.5, "-15.5"},
		{12345.678, "12345.678"},
		{math.NaN(), ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatFloat(tt.in))
	}
}

func TestCSVWriter_HeaderAndRows(t *testing.T) {
	table := generate(t)

	data := encode(t, CSVWriter{}, table)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, table.Len()+1)
	assert.Equal(t,
		"Date,Sales,adwords_spending,facebookads_spending,awin_spending,tiktok_spending,snapchat_spending",
		lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "2021-01-04,"), "first row: %s", lines[1])

	empty := 0
	for _, line := range lines[1:] {
		fields := strings.Split(line, ",")
		require.Len(t, fields, 7)
		assert.True(t, strings.HasSuffix(fields[1], ".0"), "sales should be integral: %s", fields[1])
		for _, f := range fields[2:] {
			if f == "" {
				empty++
			}
		}
	}
	assert.Equal(t, 2*mmm.NumChannels, empty)
}

func TestCSVWriter_Deterministic(t *testing.T) {
	a := encode(t, CSVWriter{}, generate(t))
	b := encode(t, CSVWriter{}, generate(t))

	assert.True(t, bytes.Equal(a, b), "exports of the same seed differ")
}

func assertSameTable(t *testing.T, want, got *mmm.Table) {
	t.Helper()
	require.Equal(t, want.Len(), got.Len())
	for i := range want.Records {
		w, g := want.Records[i], got.Records[i]
		assert.True(t, w.Date.Equal(g.Date), "row %d date", i)
		assert.Equal(t, w.Holiday, g.Holiday, "row %d holiday", i)
		assert.Equal(t, w.Sales, g.Sales, "row %d sales", i)
		for _, ch := range mmm.Channels {
			if math.IsNaN(w.Spend[ch]) {
				assert.True(t, math.IsNaN(g.Spend[ch]), "row %d %s should be missing", i, ch)
				continue
			}
			assert.Equal(t, w.Spend[ch], g.Spend[ch], "row %d %s", i, ch)
		}
	}
}

func TestRoundTrip_CSV(t *testing.T) {
	table := generate(t)
	path := filepath.Join(t.TempDir(), "data.csv")

	writeFile(t, path, CSVWriter{}, table)
	got, err := Loader{}.Read(path)
	require.NoError(t, err)

	assertSameTable(t, table, got)
	assert.Equal(t, 3, got.HolidayCount())
}

func TestRoundTrip_XLSX(t *testing.T) {
	table := generate(t)
	path := filepath.Join(t.TempDir(), "data.xlsx")

	writeFile(t, path, XLSXWriter{}, table)
	got, err := NewDataReader(path, nil).ReadTable()
	require.NoError(t, err)

	assertSameTable(t, table, got)
}

func TestReadTable_MissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.csv")
	require.NoError(t, os.WriteFile(path, []byte("Date,Sales\n2021-01-04,100.0\n"), 0o644))

	_, err := Loader{}.Read(path)
	require.Error(t, err)
	assert.Equal(t, errors.CodeImportError, errors.GetCode(err))
	assert.Contains(t, err.Error(), "adwords_spending")
}

func TestReadTable_RecomputesHoliday(t *testing.T) {
	body := "Date,Sales,adwords_spending,facebookads_spending,awin_spending,tiktok_spending,snapchat_spending\n" +
		"2021-11-15,100.0,1.0,2.0,3.0,4.0,5.0\n" +
		"2021-11-22,200.0,,2.0,3.0,4.0,5.0\n"
	path := filepath.Join(t.TempDir(), "weeks.csv")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	got, err := Loader{}.Read(path)
	require.NoError(t, err)

	require.Equal(t, 2, got.Len())
	assert.False(t, got.Records[0].Holiday)
	assert.True(t, got.Records[1].Holiday)
	assert.True(t, math.IsNaN(got.Records[1].Spend[mmm.ChannelAdwords]))
	assert.Equal(t, time.Date(2021, 11, 22, 0, 0, 0, 0, time.UTC), got.Records[1].Date)
}

func TestNewWriter(t *testing.T) {
	w, err := NewWriter("XLSX")
	require.NoError(t, err)
	assert.Equal(t, "xlsx", w.Format())

	_, err = NewWriter("parquet")
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))
}
