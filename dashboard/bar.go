package dashboard

import (
	"sort"

	"airbnb-dashboard/models"
	"airbnb-dashboard/services"
	"airbnb-dashboard/utils"
)

// BoroughPalette colours the bars by borough.
var BoroughPalette = []string{"#1E90FF", "#EB0086", "#8A2BE2", "#F77F00", "#BEAF0C"}

// MaxReviewRating is the top of the bar chart's rating axis.
const MaxReviewRating = 5

// Bar is the average review rating per neighbourhood view. It filters by
// borough and room type; a selected neighbourhood is highlighted rather than
// filtered out.
type Bar struct {
	hub *Hub

	legend       []models.LegendEntry
	sortByReview bool
	view         models.BarView
}

func (b *Bar) UpdateByBorough(borough string) (models.DashboardState, error) {
	return b.hub.Select(DimBorough, borough)
}

// UpdateByNeighborhood only moves the highlight in this view; the other views
// filter on it.
func (b *Bar) UpdateByNeighborhood(neighborhood string) (models.DashboardState, error) {
	return b.hub.Select(DimNeighborhood, neighborhood)
}

func (b *Bar) UpdateByRoomType(roomType string) (models.DashboardState, error) {
	return b.hub.Select(DimRoomType, roomType)
}

func (b *Bar) rebase(ds *services.Dataset) {
	boroughs := utils.NewOrderedSet()
	for _, l := range ds.Listings {
		boroughs.Add(l.Borough)
	}
	b.legend = legendFor(sortedValues(boroughs), BoroughPalette)
}

func (b *Bar) refresh(ds *services.Dataset, sel Selection) {
	filtered := services.Filter(ds.Listings, Predicate(sel, DimBorough, DimRoomType))
	rows := services.Aggregate(filtered, services.ByBorough, services.ByNeighborhood, services.ReviewRating)

	bars := make([]models.BarEntry, len(rows))
	for i, r := range rows {
		bars[i] = models.BarEntry{
			Borough:      r.Key1,
			Neighborhood: r.Key2,
			AvgReview:    r.Mean,
			Count:        r.Count,
		}
	}
	sortBars(bars, b.sortByReview)

	b.view = models.BarView{
		Bars:          bars,
		YDomain:       models.Extent{Min: 0, Max: MaxReviewRating},
		Legend:        b.legend,
		Highlight:     sel.Neighborhood,
		BoroughLabel:  sel.Borough,
		SortByReview:  b.sortByReview,
		SortAvailable: sel.Borough == "",
	}
}

// sortBars orders by borough ascending then rating descending, or by rating
// descending alone when byReview is set.
func sortBars(bars []models.BarEntry, byReview bool) {
	sort.SliceStable(bars, func(i, j int) bool {
		if !byReview && bars[i].Borough != bars[j].Borough {
			return bars[i].Borough < bars[j].Borough
		}
		return bars[i].AvgReview > bars[j].AvgReview
	})
}
