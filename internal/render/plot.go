package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"eurostat/internal/engine"
	"eurostat/internal/models"
)

var errEmptySeries = errors.New("series has no points")

// WriteLinePlotPNG renders series with gonum/plot, including axes and a grid.
func WriteLinePlotPNG(w io.Writer, series models.LineSeries, width, height vg.Length) error {
	if len(series.Points) == 0 {
		return errEmptySeries
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s - %s", series.Indicator, engine.CountryName(series.Country))
	p.X.Label.Text = "An"
	p.Y.Label.Text = "Valoare"

	pts := make(plotter.XYs, len(series.Points))
	for i, dp := range series.Points {
		pts[i] = plotter.XY{X: float64(dp.Year), Y: dp.Value}
	}

	line, points, err := plotter.NewLinePoints(pts)
	if err != nil {
		return fmt.Errorf("build line: %w", err)
	}
	line.Color = color.RGBA{B: 200, A: 255}
	line.LineStyle.Width = vg.Points(2)
	points.GlyphStyle.Color = color.RGBA{R: 255, A: 255}
	points.GlyphStyle.Radius = vg.Points(3)

	p.Add(plotter.NewGrid(), line, points)

	wt, err := p.WriterTo(width, height, "png")
	if err != nil {
		return fmt.Errorf("create plot writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write plot: %w", err)
	}
	return nil
}
