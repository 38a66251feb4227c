package dashboard

import (
	"airbnb-dashboard/models"
	"airbnb-dashboard/services"
	"airbnb-dashboard/utils"
)

// RoomTypePalette colours the scatter points by room type.
var RoomTypePalette = []string{"#264653", "#2A9D8F", "#AD0F8F", "#0062D5"}

// scatterPadding widens the fixed service fee axis on both sides.
const scatterPadding = 10

// Scatter is the average service fee per minimum nights view, one point per
// (minimum nights, room type) bucket.
type Scatter struct {
	hub *Hub

	xDomain *models.Extent
	legend  []models.LegendEntry
	view    models.ScatterView
}

func (s *Scatter) UpdateByBorough(borough string) (models.DashboardState, error) {
	return s.hub.Select(DimBorough, borough)
}

func (s *Scatter) UpdateByNeighborhood(neighborhood string) (models.DashboardState, error) {
	return s.hub.Select(DimNeighborhood, neighborhood)
}

func (s *Scatter) UpdateByRoomType(roomType string) (models.DashboardState, error) {
	return s.hub.Select(DimRoomType, roomType)
}

// rebase fixes the service fee axis from the unfiltered aggregation and the
// room type legend from the full dataset.
func (s *Scatter) rebase(ds *services.Dataset) {
	rows := services.Aggregate(ds.Listings, services.ByMinimumNights, services.ByRoomType, services.ServiceFee)
	fees := make([]float64, len(rows))
	for i, r := range rows {
		fees[i] = r.Mean
	}
	s.xDomain = nil
	if e := services.Extent(fees); e != nil {
		s.xDomain = &models.Extent{Min: e.Min - scatterPadding, Max: e.Max + scatterPadding}
	}

	roomTypes := utils.NewOrderedSet()
	for _, l := range ds.Listings {
		roomTypes.Add(l.RoomType)
	}
	s.legend = legendFor(roomTypes.Values(), RoomTypePalette)
}

func (s *Scatter) refresh(ds *services.Dataset, sel Selection) {
	filtered := services.Filter(ds.Listings, Predicate(sel, AllDimensions...))
	rows := services.Aggregate(filtered, services.ByMinimumNights, services.ByRoomType, services.ServiceFee)

	points := make([]models.ScatterPoint, len(rows))
	nights := make([]float64, len(rows))
	for i, r := range rows {
		points[i] = models.ScatterPoint{
			MinNights:     r.Key1,
			RoomType:      r.Key2,
			AvgServiceFee: r.Mean,
			Count:         r.Count,
		}
		nights[i] = float64(r.Key1)
	}

	s.view = models.ScatterView{
		Points:         points,
		XDomain:        s.xDomain,
		YDomain:        services.Extent(nights),
		Legend:         s.legend,
		ActiveRoomType: sel.RoomType,
	}
}

// legendFor assigns palette colours to labels in order, cycling the palette.
func legendFor(labels []string, palette []string) []models.LegendEntry {
	legend := make([]models.LegendEntry, len(labels))
	for i, label := range labels {
		legend[i] = models.LegendEntry{Label: label, Color: palette[i%len(palette)]}
	}
	return legend
}
