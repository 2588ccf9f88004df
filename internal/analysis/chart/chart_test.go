package chart

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"mmmsynth/internal/analysis/ols"
	"mmmsynth/internal/errors"
	"mmmsynth/internal/synth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSalesFit_WritesPNG(t *testing.T) {
	table, err := synth.GenerateSeeded(synth.DefaultConfig())
	require.NoError(t, err)
	res, err := ols.FitSales(table)
	require.NoError(t, err)

	p, err := SalesFit(table, res.Fitted)
	require.NoError(t, err)
	assert.Equal(t, "Weekly sales: actual vs fitted", p.Title.Text)

	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, p))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")), "output is not a PNG")
}

func TestSave(t *testing.T) {
	table, err := synth.GenerateSeeded(synth.DefaultConfig())
	require.NoError(t, err)
	p, err := SalesFit(table, table.Sales())
	require.NoError(t, err)

	dir := t.TempDir()
	path := filepath.Join(dir, "fit.png")
	require.NoError(t, Save(path, p))
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))

	err = Save(filepath.Join(dir, "fit.bmp"), p)
	assert.Equal(t, errors.CodeExportError, errors.GetCode(err))
}

func TestSalesFit_LengthMismatch(t *testing.T) {
	table, err := synth.GenerateSeeded(synth.DefaultConfig())
	require.NoError(t, err)

	_, err = SalesFit(table, []float64{1, 2, 3})
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))
}
