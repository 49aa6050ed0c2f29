// Package charts renders the severity donut and the hourly trend frames as SVG.
package charts

import (
	"errors"
	"fmt"
	"html"
	"io"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/justin4957/seclab-dashboard/pkg/models"
)

// ErrNoData is returned when there is nothing to draw
var ErrNoData = errors.New("no data to chart")

const (
	defaultWidth  = 640
	defaultHeight = 400
)

// severityColors follows the "Reds" scale of the map for known levels
var severityColors = map[string]drawing.Color{
	"low":      drawing.ColorFromHex("fcbba1"),
	"medium":   drawing.ColorFromHex("fb6a4a"),
	"high":     drawing.ColorFromHex("cb181d"),
	"critical": drawing.ColorFromHex("67000d"),
}

// SeverityDonut draws the severity distribution with percent and label on
// each slice
func SeverityDonut(w io.Writer, counts []models.SeverityCount) error {
	values := make([]chart.Value, 0, len(counts))
	for i, c := range counts {
		if c.Count <= 0 {
			continue
		}
		color, ok := severityColors[c.Severity]
		if !ok {
			color = chart.GetDefaultColor(i)
		}
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s %.1f%%", c.Severity, c.Percent),
			Value: float64(c.Count),
			Style: chart.Style{
				FillColor:   color,
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 2,
			},
		})
	}
	if len(values) == 0 {
		return ErrNoData
	}

	donut := chart.DonutChart{
		Title:  "Risk Level Distribution",
		Width:  defaultWidth,
		Height: defaultHeight,
		Values: values,
	}
	return donut.Render(chart.SVG, w)
}

// Palette assigns each attack type a stable color by its position in the
// sorted list of all attack types in the view
func Palette(attackTypes []string) map[string]drawing.Color {
	palette := make(map[string]drawing.Color, len(attackTypes))
	for i, a := range attackTypes {
		palette[a] = chart.GetDefaultColor(i)
	}
	return palette
}

// TrendFrame draws one hour of the trend as a bar chart. The y-axis is
// fixed at [0, yMax] so frames are comparable while animating.
func TrendFrame(w io.Writer, frame models.TrendFrame, yMax int, palette map[string]drawing.Color) error {
	if len(frame.Bars) == 0 {
		return ErrNoData
	}

	bars := make([]chart.Value, len(frame.Bars))
	for i, b := range frame.Bars {
		color, ok := palette[b.AttackType]
		if !ok {
			color = chart.GetDefaultColor(i)
		}
		bars[i] = chart.Value{
			Label: b.AttackType,
			Value: float64(b.Count),
			Style: chart.Style{
				FillColor:   color,
				StrokeColor: color,
				StrokeWidth: 1,
			},
		}
	}

	bc := chart.BarChart{
		Title:    frame.Label,
		Width:    defaultWidth,
		Height:   defaultHeight,
		BarWidth: 48,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{
			Name:  "count",
			Range: &chart.ContinuousRange{Min: 0, Max: float64(yMax)},
		},
		Bars: bars,
	}
	return bc.Render(chart.SVG, w)
}

// Placeholder writes a minimal SVG carrying a message, used for empty views
func Placeholder(w io.Writer, message string) error {
	_, err := fmt.Fprintf(w,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d">`+
			`<rect width="100%%" height="100%%" fill="#fafafa"/>`+
			`<text x="50%%" y="50%%" text-anchor="middle" font-family="sans-serif" font-size="16" fill="#888">%s</text>`+
			`</svg>`,
		defaultWidth, defaultHeight, html.EscapeString(message))
	return err
}
