package dashboard

import (
	"airbnb-dashboard/geo"
	"airbnb-dashboard/models"
	"airbnb-dashboard/services"
)

// Map is the listing price map. Only listings inside a borough boundary are
// drawn; selecting a borough also scopes points to its polygon and zooms the
// view onto it.
type Map struct {
	hub *Hub

	width, height float64
	projection    geo.Projection
	base          []*models.Listing
	priceDomain   *models.Extent
	view          models.MapView
}

func (m *Map) UpdateByBorough(borough string) (models.DashboardState, error) {
	return m.hub.Select(DimBorough, borough)
}

func (m *Map) UpdateByNeighborhood(neighborhood string) (models.DashboardState, error) {
	return m.hub.Select(DimNeighborhood, neighborhood)
}

func (m *Map) UpdateByRoomType(roomType string) (models.DashboardState, error) {
	return m.hub.Select(DimRoomType, roomType)
}

func (m *Map) rebase(ds *services.Dataset) {
	if ds.Boundaries != nil {
		m.projection = geo.FitSize(m.width, m.height, ds.Boundaries)
	} else {
		m.projection = geo.Projection{Scale: 1, TranslateX: m.width / 2, TranslateY: m.height / 2}
	}

	m.base = services.Filter(ds.Listings, func(l *models.Listing) bool {
		return ds.PolygonBorough(l) != ""
	})

	prices := make([]float64, len(ds.Listings))
	for i, l := range ds.Listings {
		prices[i] = l.Price
	}
	m.priceDomain = services.Extent(prices)
}

func (m *Map) refresh(ds *services.Dataset, sel Selection) {
	match := Predicate(sel, AllDimensions...)
	keep := match
	if sel.Borough != "" {
		keep = func(l *models.Listing) bool {
			return match(l) && ds.PolygonBorough(l) == sel.Borough
		}
	}
	filtered := services.Filter(m.base, keep)

	points := make([]models.MapPoint, len(filtered))
	for i, l := range filtered {
		x, y := m.projection.Project(l.Longitude, l.Latitude)
		points[i] = models.MapPoint{
			ID:               l.ID,
			Lon:              l.Longitude,
			Lat:              l.Latitude,
			X:                x,
			Y:                y,
			Price:            l.Price,
			Borough:          l.Borough,
			Neighborhood:     l.Neighborhood,
			RoomType:         l.RoomType,
			ReviewRating:     l.ReviewRating,
			ConstructionYear: l.ConstructionYear,
		}
	}

	m.view = models.MapView{
		Points:        points,
		ListingsCount: len(points),
		PriceDomain:   m.priceDomain,
		Width:         m.width,
		Height:        m.height,
		Transform:     m.fit(ds, sel.Borough),
		Borough:       sel.Borough,
	}
}

// fit zooms onto the named borough. It returns nil when no borough is
// selected or the name has no boundary.
func (m *Map) fit(ds *services.Dataset, borough string) *models.ZoomTransform {
	if borough == "" || ds.Boundaries == nil {
		return nil
	}
	b := ds.Boundaries.Find(borough)
	if b == nil {
		return nil
	}
	x0, y0, x1, y1, ok := m.projection.Bounds(b)
	if !ok {
		return nil
	}
	k, tx, ty := geo.FitTransform(x0, y0, x1, y1, m.width, m.height)
	return &models.ZoomTransform{K: k, X: tx, Y: ty}
}
