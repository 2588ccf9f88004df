package ols

import (
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Diagnostics are residual normality and autocorrelation tests
type Diagnostics struct {
	Omnibus      float64
	OmnibusP     float64
	Skew         float64
	Kurtosis     float64
	DurbinWatson float64
	JarqueBera   float64
	JarqueBeraP  float64
}

// Diagnose computes residual diagnostics. Skew and kurtosis are the biased
// moment estimators; kurtosis is not excess. Statistics that need more
// observations than available are NaN.
func Diagnose(resid []float64) Diagnostics {
	d := Diagnostics{
		Omnibus:      math.NaN(),
		OmnibusP:     math.NaN(),
		Skew:         math.NaN(),
		Kurtosis:     math.NaN(),
		DurbinWatson: durbinWatson(resid),
		JarqueBera:   math.NaN(),
		JarqueBeraP:  math.NaN(),
	}
	n := float64(len(resid))
	if len(resid) < 2 {
		return d
	}

	m2 := stat.Moment(2, resid, nil)
	if m2 == 0 {
		return d
	}
	d.Skew = stat.Moment(3, resid, nil) / math.Pow(m2, 1.5)
	d.Kurtosis = stat.Moment(4, resid, nil) / (m2 * m2)

	chi2 := distuv.ChiSquared{K: 2}
	d.JarqueBera = n / 6 * (d.Skew*d.Skew + (d.Kurtosis-3)*(d.Kurtosis-3)/4)
	d.JarqueBeraP = chi2.Survival(d.JarqueBera)

	if len(resid) >= 8 {
		zs := skewTest(d.Skew, n)
		zk := kurtosisTest(d.Kurtosis, n)
		d.Omnibus = zs*zs + zk*zk
		d.OmnibusP = chi2.Survival(d.Omnibus)
	}
	return d
}

// durbinWatson is Σ(e_t − e_{t−1})² / Σe_t²
func durbinWatson(resid []float64) float64 {
	if len(resid) < 2 {
		return math.NaN()
	}
	num, den := 0.0, resid[0]*resid[0]
	for i := 1; i < len(resid); i++ {
		d := resid[i] - resid[i-1]
		num += d * d
		den += resid[i] * resid[i]
	}
	if den == 0 {
		return math.NaN()
	}
	return num / den
}

// skewTest is D'Agostino's normal approximation for sample skewness b1
func skewTest(b1, n float64) float64 {
	y := b1 * math.Sqrt((n+1)*(n+3)/(6*(n-2)))
	beta2 := 3 * (n*n + 27*n - 70) * (n + 1) * (n + 3) /
		((n - 2) * (n + 5) * (n + 7) * (n + 9))
	w2 := -1 + math.Sqrt(2*(beta2-1))
	delta := 1 / math.Sqrt(0.5*math.Log(w2))
	alpha := math.Sqrt(2 / (w2 - 1))
	if y == 0 {
		y = 1
	}
	r := y / alpha
	return delta * math.Log(r+math.Sqrt(r*r+1))
}

// kurtosisTest is Anscombe and Glynn's normal approximation for sample
// kurtosis b2
func kurtosisTest(b2, n float64) float64 {
	e := 3 * (n - 1) / (n + 1)
	varb2 := 24 * n * (n - 2) * (n - 3) / ((n + 1) * (n + 1) * (n + 3) * (n + 5))
	x := (b2 - e) / math.Sqrt(varb2)
	sqrtBeta1 := 6 * (n*n - 5*n + 2) / ((n + 7) * (n + 9)) *
		math.Sqrt(6*(n+3)*(n+5)/(n*(n-2)*(n-3)))
	a := 6 + 8/sqrtBeta1*(2/sqrtBeta1+math.Sqrt(1+4/(sqrtBeta1*sqrtBeta1)))
	term1 := 1 - 2/(9*a)
	denom := 1 + x*math.Sqrt(2/(a-4))
	if denom == 0 {
		return math.NaN()
	}
	term2 := math.Copysign(math.Cbrt((1-2/a)/math.Abs(denom)), denom)
	return (term1 - term2) / math.Sqrt(2/(9*a))
}
