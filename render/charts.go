package render

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"airbnb-dashboard/geo"
	"airbnb-dashboard/models"
)

var (
	highlightStroke = color.Black
	boundaryStroke  = color.Gray{Y: 60}
)

// ScatterChart plots average service fee (x) against minimum nights (y), one
// series per room type in legend order.
func ScatterChart(v models.ScatterView) (*plot.Plot, error) {
	p := newPlot("Average Service Fee vs Minimum Nights", "Average Service Fee ($)", "Minimum Nights")
	p.Add(plotter.NewGrid())

	colors := legendColors(v.Legend)
	series := make(map[string]plotter.XYs)
	for _, pt := range v.Points {
		series[pt.RoomType] = append(series[pt.RoomType], plotter.XY{X: pt.AvgServiceFee, Y: float64(pt.MinNights)})
	}

	for _, entry := range v.Legend {
		pts := series[entry.Label]
		if len(pts) == 0 {
			continue
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("render: scatter %q: %w", entry.Label, err)
		}
		s.Color = colorOr(colors, entry.Label)
		s.Radius = vg.Points(3)
		s.Shape = draw.CircleGlyph{}
		if v.ActiveRoomType == entry.Label {
			s.Radius = vg.Points(4)
		}
		p.Add(s)
		p.Legend.Add(entry.Label, s)
	}
	p.Legend.Top = true

	if v.XDomain != nil {
		p.X.Min, p.X.Max = v.XDomain.Min, v.XDomain.Max
	}
	if v.YDomain != nil {
		p.Y.Min, p.Y.Max = padded(*v.YDomain)
	} else {
		p.Y.Min, p.Y.Max = 0, 1
	}
	return p, nil
}

// BarChart draws one bar per neighbourhood in view order, coloured by
// borough. The highlighted neighbourhood gets a dark outline.
func BarChart(v models.BarView) (*plot.Plot, error) {
	title := "Avg Review Rating per Neighborhood"
	if v.BoroughLabel != "" {
		title += " in " + v.BoroughLabel
	}
	p := newPlot(title, "", "Avg Review Rating")

	colors := legendColors(v.Legend)
	inLegend := make(map[string]bool)
	names := make([]string, len(v.Bars))
	width := vg.Points(6)

	for i, b := range v.Bars {
		names[i] = b.Neighborhood
		bc, err := plotter.NewBarChart(plotter.Values{b.AvgReview}, width)
		if err != nil {
			return nil, fmt.Errorf("render: bar %q: %w", b.Neighborhood, err)
		}
		bc.XMin = float64(i)
		bc.Color = colorOr(colors, b.Borough)
		bc.LineStyle.Width = 0
		if b.Neighborhood == v.Highlight {
			bc.LineStyle.Width = vg.Points(1.5)
			bc.LineStyle.Color = highlightStroke
		}
		p.Add(bc)
		if !inLegend[b.Borough] {
			inLegend[b.Borough] = true
			p.Legend.Add(b.Borough, bc)
		}
	}

	if len(names) > 0 {
		p.NominalX(names...)
		p.X.Tick.Label.Rotation = math.Pi / 4
		p.X.Tick.Label.XAlign = draw.XRight
		p.X.Tick.Label.YAlign = draw.YCenter
		p.X.Tick.Label.Font.Size = vg.Points(5)
	}
	p.Legend.Top = true
	p.Y.Min, p.Y.Max = v.YDomain.Min, v.YDomain.Max
	return p, nil
}

// MapChart draws the borough outlines and the listing points coloured by
// price, in the projected viewport space of the view. When the view carries a
// zoom transform only the zoomed window is shown.
func MapChart(v models.MapView, boundaries *geo.BoundarySet, proj geo.Projection) (*plot.Plot, error) {
	p := newPlot(fmt.Sprintf("Map of AirBNBs in NYC (%d listings)", v.ListingsCount), "", "")
	p.HideAxes()

	if boundaries != nil {
		for _, b := range boundaries.Boroughs {
			for _, ring := range b.Rings() {
				projected := proj.ProjectRing(ring)
				pts := make(plotter.XYs, len(projected))
				for i, xy := range projected {
					pts[i] = plotter.XY{X: xy[0], Y: -xy[1]}
				}
				line, err := plotter.NewLine(pts)
				if err != nil {
					return nil, fmt.Errorf("render: boundary %q: %w", b.Name, err)
				}
				line.Color = boundaryStroke
				line.Width = vg.Points(0.5)
				if b.Name == v.Borough {
					line.Color = color.RGBA{B: 255, A: 255}
					line.Width = vg.Points(1.5)
				}
				p.Add(line)
			}
		}
	}

	if len(v.Points) > 0 {
		pts := make(plotter.XYs, len(v.Points))
		for i, pt := range v.Points {
			pts[i] = plotter.XY{X: pt.X, Y: -pt.Y}
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("render: map points: %w", err)
		}

		cmap := moreland.SmoothBlueRed()
		domain := models.Extent{Min: 0, Max: 1}
		if v.PriceDomain != nil {
			domain = *v.PriceDomain
		}
		if domain.Max <= domain.Min {
			domain.Max = domain.Min + 1
		}
		cmap.SetMin(domain.Min)
		cmap.SetMax(domain.Max)

		s.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			c, err := cmap.At(math.Min(math.Max(v.Points[i].Price, domain.Min), domain.Max))
			if err != nil {
				c = color.Gray{Y: 128}
			}
			return draw.GlyphStyle{Color: c, Radius: vg.Points(1.5), Shape: draw.CircleGlyph{}}
		}
		p.Add(s)
	}

	x0, x1, y0, y1 := 0.0, v.Width, 0.0, v.Height
	if t := v.Transform; t != nil && t.K > 0 {
		x0, x1 = -t.X/t.K, (v.Width-t.X)/t.K
		y0, y1 = -t.Y/t.K, (v.Height-t.Y)/t.K
	}
	p.X.Min, p.X.Max = x0, x1
	p.Y.Min, p.Y.Max = -y1, -y0
	return p, nil
}

func colorOr(colors map[string]color.Color, label string) color.Color {
	if c, ok := colors[label]; ok {
		return c
	}
	return color.Gray{Y: 128}
}

// padded widens e by 5% so edge points are not clipped.
func padded(e models.Extent) (float64, float64) {
	pad := (e.Max - e.Min) * 0.05
	if pad == 0 {
		pad = 1
	}
	return e.Min - pad, e.Max + pad
}
