package dashboard

import "airbnb-dashboard/models"

type constraint struct {
	dim  Dimension
	want string
}

// Predicate returns the conjunction of every non-empty dimension of sel among
// dims. With no active dimension it keeps every listing. All views filter
// through this one function.
func Predicate(sel Selection, dims ...Dimension) func(*models.Listing) bool {
	var checks []constraint
	for _, d := range dims {
		if v := sel.Value(d); v != "" {
			checks = append(checks, constraint{dim: d, want: v})
		}
	}

	return func(l *models.Listing) bool {
		for _, c := range checks {
			if field(l, c.dim) != c.want {
				return false
			}
		}
		return true
	}
}

func field(l *models.Listing, dim Dimension) string {
	switch dim {
	case DimBorough:
		return l.Borough
	case DimNeighborhood:
		return l.Neighborhood
	case DimRoomType:
		return l.RoomType
	}
	return ""
}
