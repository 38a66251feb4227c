// Package render draws the dashboard views as static chart images.
package render

import (
	"fmt"
	"image/color"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"airbnb-dashboard/models"
)

// Format is an image encoding supported by Encode.
type Format string

const (
	PNG Format = "png"
	SVG Format = "svg"
)

// Default chart sizes.
const (
	ChartWidth  = 8 * vg.Inch
	ChartHeight = 5 * vg.Inch
)

// ParseFormat accepts "png" or "svg", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case PNG, SVG:
		return f, nil
	}
	return "", fmt.Errorf("render: unsupported format %q", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	if f == SVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// Encode writes p to w as a width x height image.
func Encode(w io.Writer, p *plot.Plot, width, height vg.Length, format Format) error {
	wt, err := p.WriterTo(width, height, string(format))
	if err != nil {
		return fmt.Errorf("render: %s canvas: %w", format, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("render: write %s: %w", format, err)
	}
	return nil
}

// hexColor parses "#RRGGBB". Anything else is drawn grey.
func hexColor(s string) color.Color {
	s = strings.TrimPrefix(s, "#")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil || len(s) != 6 {
		return color.Gray{Y: 128}
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}

func legendColors(entries []models.LegendEntry) map[string]color.Color {
	m := make(map[string]color.Color, len(entries))
	for _, e := range entries {
		m[e.Label] = hexColor(e.Color)
	}
	return m
}

func newPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.BackgroundColor = color.White
	return p
}
