// Package chart draws actual versus fitted sales over the weekly calendar.
package chart

import (
	"image/color"
	"io"
	"path/filepath"
	"strings"

	"mmmsynth/domain/mmm"
	"mmmsynth/internal/errors"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

const (
	width  = 12 * vg.Inch
	height = 6 * vg.Inch
)

var (
	actualColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	fittedColor = color.RGBA{R: 255, G: 127, B: 14, A: 255}
)

// SalesFit builds a line plot of observed and fitted sales against the
// week-start dates of t. fitted must have one value per row.
func SalesFit(t *mmm.Table, fitted []float64) (*plot.Plot, error) {
	if len(fitted) != t.Len() {
		return nil, errors.ValidationError("fitted values do not match table rows")
	}
	if t.Len() == 0 {
		return nil, errors.ValidationError("nothing to plot")
	}

	actual := make(plotter.XYs, t.Len())
	model := make(plotter.XYs, t.Len())
	sales := t.Sales()
	for i, date := range t.Dates() {
		x := float64(date.Unix())
		actual[i] = plotter.XY{X: x, Y: sales[i]}
		model[i] = plotter.XY{X: x, Y: fitted[i]}
	}

	p := plot.New()
	p.Title.Text = "Weekly sales: actual vs fitted"
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = mmm.ColumnDate
	p.Y.Label.Text = mmm.ColumnSales
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01"}
	p.Add(plotter.NewGrid())

	actualLine, err := plotter.NewLine(actual)
	if err != nil {
		return nil, errors.Wrap(err, "actual series")
	}
	actualLine.Color = actualColor
	actualLine.Width = vg.Points(1.5)

	fittedLine, err := plotter.NewLine(model)
	if err != nil {
		return nil, errors.Wrap(err, "fitted series")
	}
	fittedLine.Color = fittedColor
	fittedLine.Width = vg.Points(1.5)
	fittedLine.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}

	p.Add(actualLine, fittedLine)
	p.Legend.Add("actual", actualLine)
	p.Legend.Add("fitted", fittedLine)
	p.Legend.Top = true
	return p, nil
}

// WritePNG renders p as a PNG image to w
func WritePNG(w io.Writer, p *plot.Plot) error {
	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return errors.Wrap(err, "render plot")
	}
	if _, err := wt.WriteTo(w); err != nil {
		return errors.Wrap(err, "write plot")
	}
	return nil
}

// Save writes p to path. The image format follows the file extension.
func Save(path string, p *plot.Plot) error {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch ext {
	case "png", "svg", "pdf", "jpg", "jpeg":
	default:
		return errors.ExportError(path, errors.ValidationError("unsupported image format "+ext))
	}
	if err := p.Save(width, height, path); err != nil {
		return errors.ExportError(path, err)
	}
	return nil
}
