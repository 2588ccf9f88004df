package ols

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"
)

const summaryWidth = 78

// Summary renders the results as a plain-text regression report. now stamps
// the Date and Time lines.
func (r *Results) Summary(now time.Time) string {
	var b strings.Builder
	_ = r.WriteSummary(&b, now)
	return b.String()
}

// WriteSummary writes the regression report to w
func (r *Results) WriteSummary(w io.Writer, now time.Time) error {
	nameWidth := 10
	for _, n := range r.Names {
		nameWidth = max(nameWidth, len(n)+1)
	}
	width := max(summaryWidth, nameWidth+6*11)

	var b strings.Builder
	b.WriteString(center("OLS Regression Results", width) + "\n")
	b.WriteString(strings.Repeat("=", width) + "\n")

	header := [][4]string{
		{"Dep. Variable:", r.DepVar, "R-squared:", forg(r.RSquared, 3)},
		{"Model:", "OLS", "Adj. R-squared:", forg(r.AdjRSquared, 3)},
		{"Method:", "Least Squares", "F-statistic:", forg(r.FValue, 4)},
		{"Date:", now.Format("Mon, 02 Jan 2006"), "Prob (F-statistic):", forg(r.FPValue, 3)},
		{"Time:", now.Format("15:04:05"), "Log-Likelihood:", forg(r.LogLikelihood, 2)},
		{"No. Observations:", fmt.Sprintf("%d", r.NObs), "AIC:", forg(r.AIC, 1)},
		{"Df Residuals:", fmt.Sprintf("%.0f", r.DfResid), "BIC:", forg(r.BIC, 1)},
		{"Df Model:", fmt.Sprintf("%.0f", r.DfModel), "", ""},
		{"Covariance Type:", "nonrobust", "", ""},
	}
	for _, row := range header {
		b.WriteString(pairLine(row, width) + "\n")
	}
	b.WriteString(strings.Repeat("=", width) + "\n")

	b.WriteString(fmt.Sprintf("%-*s%11s%11s%11s%11s%11s%11s\n",
		nameWidth, "", "coef", "std err", "t", "P>|t|", "[0.025", "0.975]"))
	b.WriteString(strings.Repeat("-", width) + "\n")
	for i, name := range r.Names {
		b.WriteString(fmt.Sprintf("%-*s%11s%11s%11s%11s%11s%11s\n",
			nameWidth, name,
			forg(r.Params[i], 4),
			forg(r.StdErr[i], 3),
			forg(r.TValues[i], 3),
			fmt.Sprintf("%.3f", r.PValues[i]),
			forg(r.ConfInt[i][0], 3),
			forg(r.ConfInt[i][1], 3)))
	}
	b.WriteString(strings.Repeat("=", width) + "\n")

	d := r.Diagnostics
	footer := [][4]string{
		{"Omnibus:", forg(d.Omnibus, 3), "Durbin-Watson:", forg(d.DurbinWatson, 3)},
		{"Prob(Omnibus):", forg(d.OmnibusP, 3), "Jarque-Bera (JB):", forg(d.JarqueBera, 3)},
		{"Skew:", forg(d.Skew, 3), "Prob(JB):", forg(d.JarqueBeraP, 3)},
		{"Kurtosis:", forg(d.Kurtosis, 3), "Cond. No.", forg(r.CondNo, 3)},
	}
	for _, row := range footer {
		b.WriteString(pairLine(row, width) + "\n")
	}
	b.WriteString(strings.Repeat("=", width) + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// pairLine lays out two label/value pairs across the report width
func pairLine(row [4]string, width int) string {
	left := 36
	right := width - left - 3
	return fmt.Sprintf("%-*s   %s",
		left, padBetween(row[0], row[1], left),
		padBetween(row[2], row[3], right))
}

func padBetween(label, value string, width int) string {
	gap := width - len(label) - len(value)
	if gap < 1 {
		gap = 1
	}
	return label + strings.Repeat(" ", gap) + value
}

func center(s string, width int) string {
	pad := (width - len(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}

// forg formats fixed-point for ordinary magnitudes and scientific otherwise
func forg(x float64, prec int) string {
	switch {
	case math.IsNaN(x):
		return "nan"
	case math.IsInf(x, 1):
		return "inf"
	case math.IsInf(x, -1):
		return "-inf"
	case x != 0 && (math.Abs(x) >= 1e4 || math.Abs(x) < 1e-4):
		return fmt.Sprintf("%.*e", prec-1, x)
	default:
		return fmt.Sprintf("%.*f", prec, x)
	}
}
