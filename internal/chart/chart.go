// Package chart renders metal price series as PNG line charts.
package chart

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"svacron-metals/internal/format"
	"svacron-metals/internal/models"
)

const (
	defaultColor = "d4a017"
	maxTicks     = 12
)

// Options controls the rendered image
type Options struct {
	Title  string
	Color  string // hex, with or without a leading '#'
	Width  int
	Height int
}

// RenderPriceChart renders labelled price points, oldest first, to PNG bytes
func RenderPriceChart(points []models.ChartDataPoint, opts Options) ([]byte, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(points))
	}
	if opts.Width <= 0 {
		opts.Width = 900
	}
	if opts.Height <= 0 {
		opts.Height = 400
	}
	color := strings.TrimPrefix(opts.Color, "#")
	if color == "" {
		color = defaultColor
	}

	xValues := make([]float64, len(points))
	yValues := make([]float64, len(points))
	for i, p := range points {
		xValues[i] = float64(i)
		yValues[i] = p.Price.InexactFloat64()
	}

	series := chart.ContinuousSeries{
		Name: opts.Title,
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex(color),
			FillColor:   drawing.ColorFromHex(color).WithAlpha(40),
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: yValues,
	}

	graph := chart.Chart{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			Ticks: labelTicks(points),
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return "Rs " + format.Grouped(decimal.NewFromFloat(f), 0)
				}
				return ""
			},
		},
		Series: []chart.Series{series},
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}

// labelTicks spreads at most maxTicks point labels along the x axis,
// always including the last point
func labelTicks(points []models.ChartDataPoint) []chart.Tick {
	step := (len(points) + maxTicks - 1) / maxTicks
	if step < 1 {
		step = 1
	}

	ticks := make([]chart.Tick, 0, maxTicks+1)
	for i := 0; i < len(points); i += step {
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: points[i].Date})
	}
	if last := len(points) - 1; int(ticks[len(ticks)-1].Value) != last {
		ticks = append(ticks, chart.Tick{Value: float64(last), Label: points[last].Date})
	}
	return ticks
}
