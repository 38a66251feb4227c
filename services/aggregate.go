package services

import (
	"airbnb-dashboard/models"
)

// Key and metric accessors used by the views.
var (
	ByMinimumNights = func(l *models.Listing) int { return l.MinimumNights }
	ByRoomType      = func(l *models.Listing) string { return l.RoomType }
	ByBorough       = func(l *models.Listing) string { return l.Borough }
	ByNeighborhood  = func(l *models.Listing) string { return l.Neighborhood }

	ServiceFee   = func(l *models.Listing) float64 { return l.ServiceFee }
	ReviewRating = func(l *models.Listing) float64 { return l.ReviewRating }
	Price        = func(l *models.Listing) float64 { return l.Price }
)

type bucket struct {
	sum   float64
	count int
}

type group[K2 comparable] struct {
	order   []K2
	buckets map[K2]*bucket
}

// Aggregate groups records by key1, then by key2 within each key1 group, and
// returns the mean of metric for every non-empty bucket. Buckets are emitted
// in the order their keys were first seen. Empty input yields an empty slice.
func Aggregate[K1, K2 comparable](
	records []*models.Listing,
	key1 func(*models.Listing) K1,
	key2 func(*models.Listing) K2,
	metric func(*models.Listing) float64,
) []models.AggregateRow[K1, K2] {
	var order []K1
	groups := make(map[K1]*group[K2])
	total := 0

	for _, r := range records {
		k1 := key1(r)
		g, ok := groups[k1]
		if !ok {
			g = &group[K2]{buckets: make(map[K2]*bucket)}
			groups[k1] = g
			order = append(order, k1)
		}

		k2 := key2(r)
		b, ok := g.buckets[k2]
		if !ok {
			b = &bucket{}
			g.buckets[k2] = b
			g.order = append(g.order, k2)
			total++
		}
		b.sum += metric(r)
		b.count++
	}

	rows := make([]models.AggregateRow[K1, K2], 0, total)
	for _, k1 := range order {
		g := groups[k1]
		for _, k2 := range g.order {
			b := g.buckets[k2]
			rows = append(rows, models.AggregateRow[K1, K2]{
				Key1:  k1,
				Key2:  k2,
				Mean:  b.sum / float64(b.count),
				Count: b.count,
			})
		}
	}
	return rows
}

// Extent returns the min and max of values, or nil when there are none.
func Extent(values []float64) *models.Extent {
	if len(values) == 0 {
		return nil
	}
	e := &models.Extent{Min: values[0], Max: values[0]}
	for _, v := range values[1:] {
		if v < e.Min {
			e.Min = v
		}
		if v > e.Max {
			e.Max = v
		}
	}
	return e
}

// Filter returns the records satisfying keep, preserving order.
func Filter(records []*models.Listing, keep func(*models.Listing) bool) []*models.Listing {
	out := make([]*models.Listing, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
