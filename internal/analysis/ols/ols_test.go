package ols

import (
	"math"
	"strings"
	"testing"
	"time"

	"mmmsynth/domain/mmm"
	"mmmsynth/internal/errors"
	"mmmsynth/internal/synth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ones(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}

// y = 0.6 + 0.8x with residuals -0.4, 0.8, -1, 1.2, -0.6
func simpleModel(t *testing.T) *Model {
	t.Helper()
	m, err := NewModel("y",
		[]float64{1, 3, 2, 5, 4},
		[]string{"x", "const"},
		[][]float64{{1, 2, 3, 4, 5}, ones(5)})
	require.NoError(t, err)
	return m
}

func TestFit_SimpleRegression(t *testing.T) {
	res, err := simpleModel(t).Fit()
	require.NoError(t, err)

	assert.InDelta(t, 0.8, res.Params[0], 1e-12)
	assert.InDelta(t, 0.6, res.Params[1], 1e-12)
	assert.Equal(t, 5, res.NObs)
	assert.Equal(t, 1.0, res.DfModel)
	assert.Equal(t, 3.0, res.DfResid)
	assert.True(t, res.HasConstant)

	assert.InDelta(t, 0.64, res.RSquared, 1e-12)
	assert.InDelta(t, 0.52, res.AdjRSquared, 1e-12)
	assert.InDelta(t, 1.2, res.Scale, 1e-12)
	assert.InDelta(t, 16.0/3.0, res.FValue, 1e-9)
	assert.InDelta(t, math.Sqrt(0.12), res.StdErr[0], 1e-12)
	assert.InDelta(t, 0.8/math.Sqrt(0.12), res.TValues[0], 1e-9)

	wantResid := []float64{-0.4, 0.8, -1, 1.2, -0.6}
	for i, w := range wantResid {
		assert.InDelta(t, w, res.Residuals[i], 1e-12)
		assert.InDelta(t, []float64{1, 3, 2, 5, 4}[i], res.Fitted[i]+res.Residuals[i], 1e-12)
	}
	assert.InDelta(t, 12.76/3.6, res.Diagnostics.DurbinWatson, 1e-12)

	wantLL := -2.5*math.Log(2*math.Pi) - 2.5*math.Log(3.6/5) - 2.5
	assert.InDelta(t, wantLL, res.LogLikelihood, 1e-12)
	assert.InDelta(t, -2*wantLL+4, res.AIC, 1e-12)
	assert.InDelta(t, -2*wantLL+2*math.Log(5), res.BIC, 1e-12)
}

func TestFit_InferenceIsConsistent(t *testing.T) {
	res, err := simpleModel(t).Fit()
	require.NoError(t, err)

	for j := range res.Params {
		assert.Greater(t, res.PValues[j], 0.0)
		assert.LessOrEqual(t, res.PValues[j], 1.0)
		assert.Less(t, res.ConfInt[j][0], res.Params[j])
		assert.Greater(t, res.ConfInt[j][1], res.Params[j])
		assert.InDelta(t, res.Params[j]-res.ConfInt[j][0], res.ConfInt[j][1]-res.Params[j], 1e-9)
	}
	assert.Greater(t, res.FPValue, 0.0)
	assert.Less(t, res.FPValue, 1.0)
	assert.GreaterOrEqual(t, res.CondNo, 1.0)
}

func TestFit_RecoversCoefficients(t *testing.T) {
	n := 40
	x1 := make([]float64, n)
	x2 := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x1[i] = float64(i)
		x2[i] = float64((i * 7) % 11)
		// small deterministic wobble keeps the residual variance nonzero
		wobble := 0.001 * float64(i%3-1)
		y[i] = 5 + 2*x1[i] - 3*x2[i] + wobble
	}

	m, err := NewModel("y", y, []string{"x1", "x2", "const"}, [][]float64{x1, x2, ones(n)})
	require.NoError(t, err)
	res, err := m.Fit()
	require.NoError(t, err)

	b, ok := res.Param("x1")
	require.True(t, ok)
	assert.InDelta(t, 2, b, 1e-3)
	b, _ = res.Param("x2")
	assert.InDelta(t, -3, b, 1e-3)
	b, _ = res.Param("const")
	assert.InDelta(t, 5, b, 1e-2)
	assert.Greater(t, res.RSquared, 0.999)

	_, ok = res.Param("missing")
	assert.False(t, ok)
}

func TestFit_SingularDesign(t *testing.T) {
	m, err := NewModel("y",
		[]float64{1, 2, 3, 4, 5, 6},
		[]string{"const", "zero"},
		[][]float64{ones(6), make([]float64, 6)})
	require.NoError(t, err)

	_, err = m.Fit()
	require.Error(t, err)
	assert.Equal(t, errors.CodeFitError, errors.GetCode(err))
}

func TestFit_TooFewObservations(t *testing.T) {
	m, err := NewModel("y", []float64{1, 2}, []string{"x", "const"}, [][]float64{{1, 2}, ones(2)})
	require.NoError(t, err)

	_, err = m.Fit()
	require.Error(t, err)
	assert.Equal(t, errors.CodeFitError, errors.GetCode(err))
}

func TestNewModel_Validation(t *testing.T) {
	_, err := NewModel("y", []float64{1, math.NaN()}, []string{"x"}, [][]float64{{1, 2}})
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))

	_, err = NewModel("y", []float64{1, 2}, []string{"x"}, [][]float64{{1, math.NaN()}})
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))

	_, err = NewModel("y", []float64{1, 2}, []string{"x"}, [][]float64{{1}})
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))

	_, err = NewModel("y", []float64{1, 2}, []string{"x", "z"}, [][]float64{{1, 2}})
	assert.Equal(t, errors.CodeValidationError, errors.GetCode(err))
}

func TestDiagnose(t *testing.T) {
	t.Run("symmetric residuals have zero skew", func(t *testing.T) {
		d := Diagnose([]float64{-2, -1, 0, 1, 2, -2, -1, 0, 1, 2})
		assert.InDelta(t, 0, d.Skew, 1e-12)
		// kurtosis of a discrete uniform on five points
		assert.InDelta(t, 1.7, d.Kurtosis, 1e-12)
		assert.InDelta(t, 10.0/6*(1.3*1.3/4), d.JarqueBera, 1e-12)
		assert.False(t, math.IsNaN(d.Omnibus))
		assert.GreaterOrEqual(t, d.OmnibusP, 0.0)
		assert.LessOrEqual(t, d.OmnibusP, 1.0)
	})

	t.Run("short series skip omnibus", func(t *testing.T) {
		d := Diagnose([]float64{1, -1, 2, -2})
		assert.True(t, math.IsNaN(d.Omnibus))
		assert.False(t, math.IsNaN(d.JarqueBera))
	})

	t.Run("alternating residuals have high durbin-watson", func(t *testing.T) {
		d := Diagnose([]float64{1, -1, 1, -1, 1, -1})
		// five jumps of 2 over six unit squares
		assert.InDelta(t, 20.0/6, d.DurbinWatson, 1e-12)
	})

	t.Run("constant zero residuals", func(t *testing.T) {
		d := Diagnose([]float64{0, 0, 0})
		assert.True(t, math.IsNaN(d.DurbinWatson))
		assert.True(t, math.IsNaN(d.Skew))
	})
}

func TestFitSales_GeneratedTable(t *testing.T) {
	table, err := synth.GenerateSeeded(synth.DefaultConfig())
	require.NoError(t, err)

	res, err := FitSales(table)
	require.NoError(t, err)

	assert.Equal(t, mmm.ColumnSales, res.DepVar)
	assert.Equal(t, mmm.RegressorColumns(), res.Names)
	assert.Equal(t, 156, res.NObs)
	assert.Equal(t, 6.0, res.DfModel)
	assert.Equal(t, 149.0, res.DfResid)

	holiday, ok := res.Param(mmm.ColumnHoliday)
	require.True(t, ok)
	assert.Greater(t, holiday, 0.0)
	assert.Greater(t, res.RSquared, 0.0)
	assert.LessOrEqual(t, res.RSquared, 1.0)

	// the table keeps its missing cells after fitting
	missing := 0
	for _, ch := range mmm.Channels {
		missing += table.MissingSpend(ch)
	}
	assert.Equal(t, 2*mmm.NumChannels, missing)
}

func TestFitSales_EmptyTable(t *testing.T) {
	cfg := synth.DefaultConfig()
	cfg.Samples = 0
	table, err := synth.GenerateSeeded(cfg)
	require.NoError(t, err)

	_, err = FitSales(table)
	require.Error(t, err)
	assert.Equal(t, errors.CodeFitError, errors.GetCode(err))
}

func TestSummary(t *testing.T) {
	res, err := simpleModel(t).Fit()
	require.NoError(t, err)

	now := time.Date(2024, 3, 8, 14, 5, 9, 0, time.UTC)
	out := res.Summary(now)

	for _, want := range []string{
		"OLS Regression Results",
		"Dep. Variable:",
		"R-squared:",
		"0.640",
		"Fri, 08 Mar 2024",
		"14:05:09",
		"No. Observations:",
		"Durbin-Watson:",
		"Jarque-Bera (JB):",
		"Cond. No.",
		"nonrobust",
	} {
		assert.Contains(t, out, want)
	}

	var coefLines int
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "x ") || strings.HasPrefix(line, "const ") {
			coefLines++
		}
	}
	assert.Equal(t, 2, coefLines)
}

func TestForg(t *testing.T) {
	assert.Equal(t, "0.640", forg(0.64, 3))
	assert.Equal(t, "1.235e+04", forg(12345.6, 4))
	assert.Equal(t, "0.000", forg(0, 3))
	assert.Equal(t, "nan", forg(math.NaN(), 3))
	assert.Equal(t, "inf", forg(math.Inf(1), 3))
}
