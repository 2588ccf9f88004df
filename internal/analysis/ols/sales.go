package ols

import (
	"mmmsynth/domain/mmm"
	"mmmsynth/internal/errors"
)

// SalesModel regresses sales on every spend channel, the holiday flag and
// the constant column. Missing spend is treated as zero for fitting only;
// the frame itself is left untouched.
func SalesModel(f mmm.Frame) (*Model, error) {
	sales, ok := f.Column(mmm.ColumnSales)
	if !ok {
		return nil, errors.ValidationError("frame has no " + mmm.ColumnSales + " column")
	}

	names := mmm.RegressorColumns()
	cols, err := f.Select(names, 0)
	if err != nil {
		return nil, errors.Wrap(errors.ValidationError(err.Error()), "select regressors")
	}
	return NewModel(mmm.ColumnSales, sales.Values, names, cols)
}

// FitSales builds and fits the sales model for a table
func FitSales(t *mmm.Table) (*Results, error) {
	model, err := SalesModel(t.Frame())
	if err != nil {
		return nil, err
	}
	res, err := model.Fit()
	if err != nil {
		return nil, errors.Wrap(err, "fit sales model")
	}
	return res, nil
}
