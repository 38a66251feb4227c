package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// Equal Earth polynomial coefficients.
const (
	eeA1 = 1.340264
	eeA2 = -0.081106
	eeA3 = 0.000893
	eeA4 = 0.003796
)

var eeM = math.Sqrt(3) / 2

// MaxZoom caps the scale of a fitted view.
const MaxZoom = 8

// fitPadding leaves a margin around a fitted borough.
const fitPadding = 0.9

// Projection is an Equal Earth projection scaled and translated into a
// width x height viewport with y growing downwards.
type Projection struct {
	Scale      float64
	TranslateX float64
	TranslateY float64
}

func equalEarthRaw(lon, lat float64) (float64, float64) {
	lambda := lon * math.Pi / 180
	phi := lat * math.Pi / 180

	l := math.Asin(eeM * math.Sin(phi))
	l2 := l * l
	l6 := l2 * l2 * l2
	x := lambda * math.Cos(l) / (eeM * (eeA1 + 3*eeA2*l2 + l6*(7*eeA3+9*eeA4*l2)))
	y := l * (eeA1 + eeA2*l2 + l6*(eeA3+eeA4*l2))
	return x, y
}

// Project maps lon/lat to viewport coordinates.
func (p Projection) Project(lon, lat float64) (float64, float64) {
	x, y := equalEarthRaw(lon, lat)
	return p.TranslateX + p.Scale*x, p.TranslateY - p.Scale*y
}

// FitSize returns the projection that fits every boundary in the set into a
// width x height viewport, centred.
func FitSize(width, height float64, set *BoundarySet) Projection {
	unit := Projection{Scale: 1}
	x0, y0, x1, y1, ok := unit.Bounds(set.Boroughs...)
	if !ok || x1 == x0 || y1 == y0 {
		return Projection{Scale: 1, TranslateX: width / 2, TranslateY: height / 2}
	}

	k := math.Min(width/(x1-x0), height/(y1-y0))
	return Projection{
		Scale:      k,
		TranslateX: (width - k*(x1+x0)) / 2,
		TranslateY: (height - k*(y1+y0)) / 2,
	}
}

// Bounds returns the projected bounding box of the given boundaries.
func (p Projection) Bounds(boundaries ...*BoroughBoundary) (x0, y0, x1, y1 float64, ok bool) {
	x0, y0 = math.Inf(1), math.Inf(1)
	x1, y1 = math.Inf(-1), math.Inf(-1)
	for _, b := range boundaries {
		for _, ring := range b.Rings() {
			for _, pt := range ring {
				x, y := p.Project(pt[0], pt[1])
				x0, y0 = math.Min(x0, x), math.Min(y0, y)
				x1, y1 = math.Max(x1, x), math.Max(y1, y)
				ok = true
			}
		}
	}
	return x0, y0, x1, y1, ok
}

// ProjectRing maps every vertex of a ring into the viewport.
func (p Projection) ProjectRing(ring orb.Ring) [][2]float64 {
	out := make([][2]float64, len(ring))
	for i, pt := range ring {
		x, y := p.Project(pt[0], pt[1])
		out[i] = [2]float64{x, y}
	}
	return out
}

// FitTransform centres the projected bounding box [x0,x1]x[y0,y1] in the
// viewport, scaled so the box fills 90% of the tighter dimension and never
// more than MaxZoom.
func FitTransform(x0, y0, x1, y1, width, height float64) (k, tx, ty float64) {
	spread := math.Max((x1-x0)/width, (y1-y0)/height)
	k = MaxZoom
	if spread > 0 {
		k = math.Min(MaxZoom, fitPadding/spread)
	}
	tx = width/2 - k*(x0+x1)/2
	ty = height/2 - k*(y0+y1)/2
	return k, tx, ty
}
