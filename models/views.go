package models

// Extent is a closed numeric range. Views report a nil *Extent when there is
// nothing to measure.
type Extent struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// LegendEntry pairs a category with its display colour.
type LegendEntry struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

// Selection is the wire form of the shared filter state. Empty fields are
// unconstrained.
type Selection struct {
	Borough      string `json:"borough,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	RoomType     string `json:"roomType,omitempty"`
}

// ScatterPoint is one (minimum nights, room type) bucket.
type ScatterPoint struct {
	MinNights     int     `json:"minNights"`
	RoomType      string  `json:"roomType"`
	AvgServiceFee float64 `json:"avgServiceFee"`
	Count         int     `json:"count"`
}

// ScatterView is everything needed to draw the service fee scatter plot.
type ScatterView struct {
	Points         []ScatterPoint `json:"points"`
	XDomain        *Extent        `json:"xDomain"`
	YDomain        *Extent        `json:"yDomain"`
	Legend         []LegendEntry  `json:"legend"`
	ActiveRoomType string         `json:"activeRoomType,omitempty"`
}

// BarEntry is one neighbourhood bar.
type BarEntry struct {
	Borough      string  `json:"borough"`
	Neighborhood string  `json:"neighborhood"`
	AvgReview    float64 `json:"avgReview"`
	Count        int     `json:"count"`
}

// BarView is everything needed to draw the review rating bar chart.
type BarView struct {
	Bars          []BarEntry    `json:"bars"`
	YDomain       Extent        `json:"yDomain"`
	Legend        []LegendEntry `json:"legend"`
	Highlight     string        `json:"highlight,omitempty"`
	BoroughLabel  string        `json:"boroughLabel,omitempty"`
	SortByReview  bool          `json:"sortByReview"`
	SortAvailable bool          `json:"sortAvailable"`
}

// MapPoint is one listing placed on the map. X and Y are projected screen
// coordinates inside the map viewport.
type MapPoint struct {
	ID               int64   `json:"id"`
	Lon              float64 `json:"lon"`
	Lat              float64 `json:"lat"`
	X                float64 `json:"x"`
	Y                float64 `json:"y"`
	Price            float64 `json:"price"`
	Borough          string  `json:"borough"`
	Neighborhood     string  `json:"neighborhood"`
	RoomType         string  `json:"roomType"`
	ReviewRating     float64 `json:"reviewRating"`
	ConstructionYear int     `json:"constructionYear"`
}

// ZoomTransform is a translate-then-scale applied to projected coordinates.
type ZoomTransform struct {
	K float64 `json:"k"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// MapView is everything needed to draw the price map.
type MapView struct {
	Points        []MapPoint     `json:"points"`
	ListingsCount int            `json:"listingsCount"`
	PriceDomain   *Extent        `json:"priceDomain"`
	Width         float64        `json:"width"`
	Height        float64        `json:"height"`
	Transform     *ZoomTransform `json:"transform,omitempty"`
	Borough       string         `json:"borough,omitempty"`
}

// DashboardState is a consistent snapshot of the selection and all views.
type DashboardState struct {
	Selection Selection   `json:"selection"`
	Scatter   ScatterView `json:"scatter"`
	Bar       BarView     `json:"bar"`
	Map       MapView     `json:"map"`
}

// Metadata lists the values each selection dimension can take.
type Metadata struct {
	Boroughs      []string            `json:"boroughs"`
	Neighborhoods map[string][]string `json:"neighborhoods"`
	RoomTypes     []string            `json:"roomTypes"`
	TotalListings int                 `json:"totalListings"`
	BoundaryNames []string            `json:"boundaryNames"`
}
