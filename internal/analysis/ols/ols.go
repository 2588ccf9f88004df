// Package ols fits ordinary least squares models and reports the classic
// regression statistics: coefficient inference, goodness of fit and residual
// diagnostics.
package ols

import (
	"fmt"
	"math"

	"mmmsynth/internal/errors"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Model is a linear model y = X·β + ε
type Model struct {
	DepVar string
	Names  []string
	Y      []float64
	X      *mat.Dense
}

// NewModel builds a model from column-major regressors. Every column must be
// as long as y and contain no NaN.
func NewModel(depVar string, y []float64, names []string, columns [][]float64) (*Model, error) {
	if len(names) != len(columns) {
		return nil, errors.ValidationError(fmt.Sprintf("%d names for %d columns", len(names), len(columns)))
	}
	if len(columns) == 0 {
		return nil, errors.ValidationError("model needs at least one regressor")
	}
	n, k := len(y), len(columns)

	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, errors.ValidationError(fmt.Sprintf("%s row %d is not finite", depVar, i))
		}
	}

	x := mat.NewDense(max(n, 1), k, nil)
	for j, col := range columns {
		if len(col) != n {
			return nil, errors.ValidationError(fmt.Sprintf("column %s has %d rows, want %d", names[j], len(col), n))
		}
		for i, v := range col {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, errors.ValidationError(fmt.Sprintf("%s row %d is not finite", names[j], i))
			}
			x.Set(i, j, v)
		}
	}

	return &Model{
		DepVar: depVar,
		Names:  append([]string(nil), names...),
		Y:      append([]float64(nil), y...),
		X:      x,
	}, nil
}

// Results holds a fitted model and its inference statistics
type Results struct {
	DepVar string
	Names  []string

	Params  []float64
	StdErr  []float64
	TValues []float64
	PValues []float64
	ConfInt [][2]float64

	NObs        int
	DfModel     float64
	DfResid     float64
	HasConstant bool

	RSquared      float64
	AdjRSquared   float64
	FValue        float64
	FPValue       float64
	LogLikelihood float64
	AIC           float64
	BIC           float64
	Scale         float64
	CondNo        float64

	Fitted    []float64
	Residuals []float64

	Diagnostics Diagnostics
}

// Fit estimates β by QR decomposition and derives the nonrobust covariance
// σ²(XᵀX)⁻¹. A singular or rank-deficient design is a FIT_ERROR.
func (m *Model) Fit() (*Results, error) {
	n := len(m.Y)
	_, k := m.X.Dims()
	if n <= k {
		return nil, errors.FitError(fmt.Sprintf("need more than %d observations, have %d", k, n))
	}

	y := mat.NewVecDense(n, m.Y)

	var qr mat.QR
	qr.Factorize(m.X)
	var beta mat.VecDense
	if err := qr.SolveVecTo(&beta, false, y); err != nil {
		return nil, errors.Wrap(errors.FitError(err.Error()), "design matrix is singular")
	}

	var xtx mat.SymDense
	xtx.SymOuterK(1, m.X.T())
	var chol mat.Cholesky
	if ok := chol.Factorize(&xtx); !ok {
		return nil, errors.FitError("XᵀX is not positive definite")
	}
	var xtxInv mat.SymDense
	if err := chol.InverseTo(&xtxInv); err != nil {
		return nil, errors.Wrap(errors.FitError(err.Error()), "invert XᵀX")
	}

	var fitted mat.VecDense
	fitted.MulVec(m.X, &beta)

	res := &Results{
		DepVar:      m.DepVar,
		Names:       append([]string(nil), m.Names...),
		NObs:        n,
		HasConstant: hasConstant(m.X),
		Params:      make([]float64, k),
		StdErr:      make([]float64, k),
		TValues:     make([]float64, k),
		PValues:     make([]float64, k),
		ConfInt:     make([][2]float64, k),
		Fitted:      make([]float64, n),
		Residuals:   make([]float64, n),
	}

	ssr := 0.0
	for i := 0; i < n; i++ {
		res.Fitted[i] = fitted.AtVec(i)
		res.Residuals[i] = m.Y[i] - res.Fitted[i]
		ssr += res.Residuals[i] * res.Residuals[i]
	}

	kConst := 0.0
	if res.HasConstant {
		kConst = 1
	}
	res.DfResid = float64(n - k)
	res.DfModel = float64(k) - kConst
	res.Scale = ssr / res.DfResid

	tss := totalSumOfSquares(m.Y, res.HasConstant)
	res.RSquared = 1 - ssr/tss
	res.AdjRSquared = 1 - (float64(n)-kConst)/res.DfResid*(1-res.RSquared)

	if res.DfModel > 0 {
		res.FValue = ((tss - ssr) / res.DfModel) / res.Scale
		res.FPValue = distuv.F{D1: res.DfModel, D2: res.DfResid}.Survival(res.FValue)
	} else {
		res.FValue, res.FPValue = math.NaN(), math.NaN()
	}

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: res.DfResid}
	tCrit := tDist.Quantile(0.975)
	for j := 0; j < k; j++ {
		b := beta.AtVec(j)
		se := math.Sqrt(res.Scale * xtxInv.At(j, j))
		res.Params[j] = b
		res.StdErr[j] = se
		res.TValues[j] = b / se
		res.PValues[j] = 2 * tDist.Survival(math.Abs(b/se))
		res.ConfInt[j] = [2]float64{b - tCrit*se, b + tCrit*se}
	}

	nf := float64(n)
	res.LogLikelihood = -nf/2*math.Log(2*math.Pi) - nf/2*math.Log(ssr/nf) - nf/2
	res.AIC = -2*res.LogLikelihood + 2*float64(k)
	res.BIC = -2*res.LogLikelihood + float64(k)*math.Log(nf)
	res.CondNo = mat.Cond(m.X, 2)
	res.Diagnostics = Diagnose(res.Residuals)

	return res, nil
}

// Param returns the estimate for a named regressor
func (r *Results) Param(name string) (float64, bool) {
	for i, n := range r.Names {
		if n == name {
			return r.Params[i], true
		}
	}
	return 0, false
}

// hasConstant reports whether any column is a nonzero constant
func hasConstant(x *mat.Dense) bool {
	rows, cols := x.Dims()
	for j := 0; j < cols; j++ {
		first := x.At(0, j)
		if first == 0 {
			continue
		}
		constant := true
		for i := 1; i < rows; i++ {
			if x.At(i, j) != first {
				constant = false
				break
			}
		}
		if constant {
			return true
		}
	}
	return false
}

// totalSumOfSquares is centered when the model has an intercept
func totalSumOfSquares(y []float64, centered bool) float64 {
	mean := 0.0
	if centered {
		for _, v := range y {
			mean += v
		}
		mean /= float64(len(y))
	}
	tss := 0.0
	for _, v := range y {
		d := v - mean
		tss += d * d
	}
	return tss
}
