// Package plot renders the PNG bar charts written by the attrition pipeline.
package plot

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Bar is one labelled value.
type Bar struct {
	Label string
	Value float64
}

// BarChart describes a chart to render.
type BarChart struct {
	Title  string
	YLabel string
	Bars   []Bar
	Width  int
	Height int
	// RotateLabels tilts x labels, for long category names.
	RotateLabels bool
}

const (
	defaultWidth  = 1024
	defaultHeight = 512
)

// Render writes the chart as PNG.
func (c BarChart) Render(w io.Writer) error {
	if len(c.Bars) == 0 {
		return fmt.Errorf("rendering %q: no bars", c.Title)
	}

	bars := make([]chart.Value, 0, len(c.Bars))
	maxVal := 0.0
	for _, b := range c.Bars {
		maxVal = max(maxVal, b.Value)
		bars = append(bars, chart.Value{Value: b.Value, Label: b.Label})
	}
	if maxVal <= 0 {
		maxVal = 1
	}

	width, height := c.Width, c.Height
	if width == 0 {
		width = defaultWidth
	}
	if height == 0 {
		height = defaultHeight
	}

	graph := chart.BarChart{
		Title: c.Title,
		Background: chart.Style{
			Padding:     chart.Box{Top: 40, Left: 10, Right: 10, Bottom: 10},
			FillColor:   drawing.ColorWhite,
			StrokeColor: drawing.ColorFromHex("efefef"),
			StrokeWidth: 1,
		},
		Height:   height,
		Width:    width,
		BarWidth: barWidth(width, len(bars)),
		Bars:     bars,
		YAxis: chart.YAxis{
			Name:  c.YLabel,
			Range: &chart.ContinuousRange{Min: 0, Max: maxVal * 1.1},
		},
	}
	if c.RotateLabels {
		graph.XAxis = chart.Style{TextRotationDegrees: 45}
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("rendering %q: %w", c.Title, err)
	}
	return nil
}

// Save renders the chart to path, creating parent directories. Nothing is
// left behind when rendering fails.
func (c BarChart) Save(path string) error {
	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

func barWidth(width, n int) int {
	w := width / (2 * (n + 1))
	return min(max(w, 8), 80)
}
