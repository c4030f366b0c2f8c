// Package render turns engine outputs into SVG, PNG, HTML and terminal
// tables. It owns no data; every function is a pure function of its input.
package render

import (
	"bytes"
	"fmt"
	"strings"

	svg "github.com/ajstarks/svgo/float"

	"eurostat/internal/engine"
	"eurostat/internal/models"
)

// Margins of the line chart plot area, in pixels.
type Margins struct {
	Top, Right, Bottom, Left float64
}

var LineMargins = Margins{Top: 20, Right: 20, Bottom: 30, Left: 40}

// LineChartSVG draws series as white segments joining red points. Each
// point sits in a group whose <title> is the year and value tooltip.
func LineChartSVG(series models.LineSeries, width, height int) []byte {
	w, h := float64(width), float64(height)

	years := make([]float64, len(series.Points))
	values := make([]float64, len(series.Points))
	for i, p := range series.Points {
		years[i] = float64(p.Year)
		values[i] = p.Value
	}
	xAxis := engine.NewAxis(years, LineMargins.Left, w-LineMargins.Right)
	yAxis := engine.NewAxis(values, LineMargins.Top, h-LineMargins.Bottom)

	var buf bytes.Buffer
	canvas := svg.New(&buf)
	canvas.Start(w, h, fmt.Sprintf(`viewBox="0 0 %d %d"`, width, height))
	canvas.Title(fmt.Sprintf("%s %s", series.Indicator, series.Country))

	for i := 0; i+1 < len(series.Points); i++ {
		a, b := series.Points[i], series.Points[i+1]
		canvas.Line(
			xAxis.X(float64(a.Year)), yAxis.Y(a.Value),
			xAxis.X(float64(b.Year)), yAxis.Y(b.Value),
			`stroke="white"`, `stroke-width="2"`)
	}

	for _, p := range series.Points {
		canvas.Group()
		canvas.Title(fmt.Sprintf("An: %d, Valoare: %s", p.Year, formatValue(p.Value)))
		canvas.Circle(xAxis.X(float64(p.Year)), yAxis.Y(p.Value), 4, `fill="red"`)
		canvas.Gend()
	}

	canvas.End()
	return buf.Bytes()
}

func formatValue(v float64) string {
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", v), "0"), ".")
}
