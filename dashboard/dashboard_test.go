package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"airbnb-dashboard/geo"
	"airbnb-dashboard/models"
	"airbnb-dashboard/services"
	"airbnb-dashboard/utils"
)

const testBoroughs = `{"type":"FeatureCollection","features":[
{"type":"Feature","properties":{"boro_name":"Brooklyn"},
 "geometry":{"type":"Polygon","coordinates":[[[-74.0,40.6],[-73.9,40.6],[-73.9,40.7],[-74.0,40.7],[-74.0,40.6]]]}},
{"type":"Feature","properties":{"boro_name":"Queens"},
 "geometry":{"type":"Polygon","coordinates":[[[-73.9,40.6],[-73.7,40.6],[-73.7,40.8],[-73.9,40.8],[-73.9,40.6]]]}}]}`

func testListings() []*models.Listing {
	return []*models.Listing{
		{ID: 1, Borough: "Brooklyn", Neighborhood: "Bushwick", RoomType: "Private room",
			MinimumNights: 2, ServiceFee: 10, Price: 100, ReviewRating: 4, Longitude: -73.95, Latitude: 40.65},
		{ID: 2, Borough: "Brooklyn", Neighborhood: "Bushwick", RoomType: "Entire home/apt",
			MinimumNights: 2, ServiceFee: 30, Price: 300, ReviewRating: 2, Longitude: -73.94, Latitude: 40.66},
		{ID: 3, Borough: "Brooklyn", Neighborhood: "Williamsburg", RoomType: "Private room",
			MinimumNights: 5, ServiceFee: 20, Price: 200, ReviewRating: 5, Longitude: -73.96, Latitude: 40.68},
		{ID: 4, Borough: "Queens", Neighborhood: "Astoria", RoomType: "Private room",
			MinimumNights: 5, ServiceFee: 40, Price: 400, ReviewRating: 3, Longitude: -73.8, Latitude: 40.7},
		{ID: 5, Borough: "Queens", Neighborhood: "Astoria", RoomType: "Entire home/apt",
			MinimumNights: 30, ServiceFee: 50, Price: 500, ReviewRating: 4, Longitude: -73.8, Latitude: 40.75},
		// Outside every boundary: never on the map.
		{ID: 6, Borough: "Manhattan", Neighborhood: "Harlem", RoomType: "Private room",
			MinimumNights: 1, ServiceFee: 60, Price: 600, ReviewRating: 5, Longitude: -73.95, Latitude: 40.8},
		// Labelled Brooklyn but inside the Queens polygon.
		{ID: 7, Borough: "Brooklyn", Neighborhood: "Greenpoint", RoomType: "Shared room",
			MinimumNights: 3, ServiceFee: 5, Price: 50, ReviewRating: 1, Longitude: -73.8, Latitude: 40.65},
	}
}

func newTestDataset(t *testing.T, listings []*models.Listing) *services.Dataset {
	t.Helper()
	set, err := geo.ParseBoundaries([]byte(testBoroughs))
	if err != nil {
		t.Fatalf("ParseBoundaries: %v", err)
	}
	return services.NewDataset(listings, set)
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	return NewHub(newTestDataset(t, testListings()), 800, 350, utils.NewDiscardLogger())
}

func mustSelect(t *testing.T, h *Hub, dim Dimension, v string) models.DashboardState {
	t.Helper()
	st, err := h.Select(dim, v)
	if err != nil {
		t.Fatalf("Select(%s, %q): %v", dim, v, err)
	}
	return st
}

func mapIDs(v models.MapView) []int64 {
	ids := make([]int64, len(v.Points))
	for i, p := range v.Points {
		ids[i] = p.ID
	}
	return ids
}

func TestParseDimension(t *testing.T) {
	tests := []struct {
		in      string
		want    Dimension
		wantErr bool
	}{
		{"borough", DimBorough, false},
		{"neighbourhood group", DimBorough, false},
		{"Neighborhood", DimNeighborhood, false},
		{"neighbourhood", DimNeighborhood, false},
		{"roomType", DimRoomType, false},
		{"room type", DimRoomType, false},
		{"price", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseDimension(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseDimension(%q) error = %v; wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil && !errors.Is(err, ErrUnknownDimension) {
			t.Errorf("ParseDimension(%q) error = %v; want ErrUnknownDimension", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseDimension(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestSelectionResetRule(t *testing.T) {
	var s Selection
	s.SetRoomType("Private room")
	s.SetBorough("Brooklyn")
	s.SetNeighborhood("Bushwick")
	if s.Borough != "Brooklyn" || s.Neighborhood != "Bushwick" {
		t.Fatalf("neighbourhood must not clear borough: %+v", s)
	}

	s.SetBorough("Queens")
	want := Selection{Borough: "Queens", RoomType: "Private room"}
	if s != want {
		t.Errorf("after borough change: got %+v, want %+v", s, want)
	}

	s.SetNeighborhood("Astoria")
	s.SetRoomType("Shared room")
	want = Selection{Borough: "Queens", Neighborhood: "Astoria", RoomType: "Shared room"}
	if s != want {
		t.Errorf("room type must not clear anything: got %+v, want %+v", s, want)
	}
}

func TestSelectionClearAndReset(t *testing.T) {
	s := Selection{Borough: "Queens", Neighborhood: "Astoria", RoomType: "Private room"}
	if err := s.Clear(DimBorough); err != nil {
		t.Fatal(err)
	}
	if s.Neighborhood != "Astoria" || s.RoomType != "Private room" {
		t.Errorf("Clear(borough) touched other dimensions: %+v", s)
	}
	if err := s.Clear("price"); !errors.Is(err, ErrUnknownDimension) {
		t.Errorf("Clear(price) = %v; want ErrUnknownDimension", err)
	}
	if got := s.Active(); !reflect.DeepEqual(got, []Dimension{DimNeighborhood, DimRoomType}) {
		t.Errorf("Active() = %v", got)
	}
	s.Reset()
	if s != (Selection{}) || len(s.Active()) != 0 {
		t.Errorf("Reset left %+v", s)
	}
}

func TestPredicate(t *testing.T) {
	listings := testListings()
	tests := []struct {
		name string
		sel  Selection
		dims []Dimension
		want int
	}{
		{"no selection", Selection{}, AllDimensions, 7},
		{"borough", Selection{Borough: "Brooklyn"}, AllDimensions, 4},
		{"borough and room type", Selection{Borough: "Brooklyn", RoomType: "Private room"}, AllDimensions, 2},
		{"all three", Selection{Borough: "Brooklyn", Neighborhood: "Bushwick", RoomType: "Private room"}, AllDimensions, 1},
		{"neighbourhood ignored", Selection{Borough: "Brooklyn", Neighborhood: "Bushwick"}, []Dimension{DimBorough, DimRoomType}, 4},
		{"no matches", Selection{RoomType: "Hotel room"}, AllDimensions, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := services.Filter(listings, Predicate(tt.sel, tt.dims...))
			if len(got) != tt.want {
				t.Errorf("matched %d listings; want %d", len(got), tt.want)
			}
		})
	}
}

func TestHubInitialViews(t *testing.T) {
	st := newTestHub(t).Snapshot()

	if len(st.Scatter.Points) != 6 {
		t.Errorf("scatter points: got %d, want 6", len(st.Scatter.Points))
	}
	if want := (models.Extent{Min: -5, Max: 70}); st.Scatter.XDomain == nil || *st.Scatter.XDomain != want {
		t.Errorf("scatter x domain: got %v, want %v", st.Scatter.XDomain, want)
	}
	if want := (models.Extent{Min: 1, Max: 30}); st.Scatter.YDomain == nil || *st.Scatter.YDomain != want {
		t.Errorf("scatter y domain: got %v, want %v", st.Scatter.YDomain, want)
	}
	wantLegend := []models.LegendEntry{
		{Label: "Private room", Color: "#264653"},
		{Label: "Entire home/apt", Color: "#2A9D8F"},
		{Label: "Shared room", Color: "#AD0F8F"},
	}
	if !reflect.DeepEqual(st.Scatter.Legend, wantLegend) {
		t.Errorf("scatter legend: got %v, want %v", st.Scatter.Legend, wantLegend)
	}

	var order []string
	for _, b := range st.Bar.Bars {
		order = append(order, b.Neighborhood)
	}
	wantOrder := []string{"Williamsburg", "Bushwick", "Greenpoint", "Harlem", "Astoria"}
	if !reflect.DeepEqual(order, wantOrder) {
		t.Errorf("bar order: got %v, want %v", order, wantOrder)
	}
	if st.Bar.YDomain != (models.Extent{Min: 0, Max: 5}) || !st.Bar.SortAvailable {
		t.Errorf("bar view: %+v", st.Bar)
	}

	if got := mapIDs(st.Map); !reflect.DeepEqual(got, []int64{1, 2, 3, 4, 5, 7}) {
		t.Errorf("map ids: got %v", got)
	}
	if st.Map.Transform != nil {
		t.Errorf("map transform without borough: %+v", st.Map.Transform)
	}
	if want := (models.Extent{Min: 50, Max: 600}); st.Map.PriceDomain == nil || *st.Map.PriceDomain != want {
		t.Errorf("map price domain: got %v, want %v", st.Map.PriceDomain, want)
	}
}

func TestHubCrossFilter(t *testing.T) {
	h := newTestHub(t)

	st := mustSelect(t, h, DimBorough, "Brooklyn")
	if len(st.Scatter.Points) != 4 {
		t.Errorf("Brooklyn scatter points: got %d, want 4", len(st.Scatter.Points))
	}
	if len(st.Bar.Bars) != 3 || st.Bar.BoroughLabel != "Brooklyn" || st.Bar.SortAvailable {
		t.Errorf("Brooklyn bar view: %+v", st.Bar)
	}
	// Listing 7 is labelled Brooklyn but lies inside Queens.
	if got := mapIDs(st.Map); !reflect.DeepEqual(got, []int64{1, 2, 3}) {
		t.Errorf("Brooklyn map ids: got %v", got)
	}
	if st.Map.ListingsCount != 3 {
		t.Errorf("Brooklyn listings count: got %d", st.Map.ListingsCount)
	}
	if tr := st.Map.Transform; tr == nil || tr.K <= 0 || tr.K > geo.MaxZoom {
		t.Errorf("Brooklyn transform: %+v", tr)
	}

	st = mustSelect(t, h, DimNeighborhood, "Bushwick")
	if len(st.Scatter.Points) != 2 {
		t.Errorf("Bushwick scatter points: got %d, want 2", len(st.Scatter.Points))
	}
	if len(st.Bar.Bars) != 3 || st.Bar.Highlight != "Bushwick" {
		t.Errorf("bar must highlight, not filter, the neighbourhood: %+v", st.Bar)
	}
	if got := mapIDs(st.Map); !reflect.DeepEqual(got, []int64{1, 2}) {
		t.Errorf("Bushwick map ids: got %v", got)
	}

	st = mustSelect(t, h, DimRoomType, "Private room")
	if len(st.Scatter.Points) != 1 || st.Scatter.ActiveRoomType != "Private room" {
		t.Errorf("Bushwick private room scatter: %+v", st.Scatter)
	}
	if len(st.Bar.Bars) != 2 {
		t.Errorf("Brooklyn private room bars: got %d, want 2", len(st.Bar.Bars))
	}
	if got := mapIDs(st.Map); !reflect.DeepEqual(got, []int64{1}) {
		t.Errorf("Bushwick private room map ids: got %v", got)
	}

	st = mustSelect(t, h, DimBorough, "Queens")
	want := models.Selection{Borough: "Queens", RoomType: "Private room"}
	if st.Selection != want {
		t.Errorf("selection after borough change: got %+v, want %+v", st.Selection, want)
	}
	if len(st.Scatter.Points) != 1 || st.Scatter.Points[0].AvgServiceFee != 40 {
		t.Errorf("Queens private room scatter: %+v", st.Scatter.Points)
	}
	if got := mapIDs(st.Map); !reflect.DeepEqual(got, []int64{4}) {
		t.Errorf("Queens private room map ids: got %v", got)
	}
}

func TestHubViewsAgree(t *testing.T) {
	h := newTestHub(t)
	mustSelect(t, h, DimRoomType, "Entire home/apt")

	// Each adapter entry point drives the same shared selection.
	if _, err := h.Bar.UpdateByBorough("Queens"); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Map.UpdateByNeighborhood("Astoria"); err != nil {
		t.Fatal(err)
	}
	st, err := h.Scatter.UpdateByRoomType("Entire home/apt")
	if err != nil {
		t.Fatal(err)
	}

	want := models.Selection{Borough: "Queens", Neighborhood: "Astoria", RoomType: "Entire home/apt"}
	if st.Selection != want {
		t.Fatalf("selection: got %+v, want %+v", st.Selection, want)
	}
	if len(st.Scatter.Points) != 1 || st.Scatter.Points[0].MinNights != 30 {
		t.Errorf("scatter: %+v", st.Scatter.Points)
	}
	if len(st.Bar.Bars) != 1 || st.Bar.Bars[0].AvgReview != 4 {
		t.Errorf("bar: %+v", st.Bar.Bars)
	}
	if got := mapIDs(st.Map); !reflect.DeepEqual(got, []int64{5}) {
		t.Errorf("map ids: got %v", got)
	}
	if !reflect.DeepEqual(h.ScatterView(), st.Scatter) || !reflect.DeepEqual(h.BarView(), st.Bar) ||
		!reflect.DeepEqual(h.MapView(), st.Map) {
		t.Error("per-view accessors disagree with the snapshot")
	}
	if got := h.Filtered(); len(got) != 1 || got[0].ID != 5 {
		t.Errorf("Filtered: %v", got)
	}
}

func TestHubEmptySelection(t *testing.T) {
	h := newTestHub(t)
	st := mustSelect(t, h, DimRoomType, "Hotel room")

	if len(st.Scatter.Points) != 0 || st.Scatter.YDomain != nil {
		t.Errorf("scatter should be empty: %+v", st.Scatter)
	}
	if st.Scatter.XDomain == nil {
		t.Error("scatter x domain is fixed and must survive an empty selection")
	}
	if len(st.Bar.Bars) != 0 {
		t.Errorf("bars should be empty: %+v", st.Bar.Bars)
	}
	if len(st.Map.Points) != 0 || st.Map.ListingsCount != 0 {
		t.Errorf("map should be empty: %+v", st.Map)
	}
}

func TestHubUnknownDimension(t *testing.T) {
	h := newTestHub(t)
	if _, err := h.Select("price", "1"); !errors.Is(err, ErrUnknownDimension) {
		t.Errorf("Select(price) = %v; want ErrUnknownDimension", err)
	}
	if _, err := h.Clear("price"); !errors.Is(err, ErrUnknownDimension) {
		t.Errorf("Clear(price) = %v; want ErrUnknownDimension", err)
	}
}

func TestHubClearAndReset(t *testing.T) {
	h := newTestHub(t)
	mustSelect(t, h, DimBorough, "Brooklyn")
	mustSelect(t, h, DimRoomType, "Private room")

	st, err := h.Clear(DimBorough)
	if err != nil {
		t.Fatal(err)
	}
	if st.Selection != (models.Selection{RoomType: "Private room"}) {
		t.Errorf("after Clear(borough): %+v", st.Selection)
	}
	if len(st.Scatter.Points) != 3 {
		t.Errorf("private room scatter points: got %d, want 3", len(st.Scatter.Points))
	}

	st = h.Reset()
	if st.Selection != (models.Selection{}) || len(st.Map.Points) != 6 {
		t.Errorf("after Reset: %+v, %d map points", st.Selection, len(st.Map.Points))
	}
}

func TestHubToggleBarSort(t *testing.T) {
	h := newTestHub(t)

	bar, err := h.ToggleBarSort()
	if err != nil {
		t.Fatalf("ToggleBarSort: %v", err)
	}
	var order []string
	for _, b := range bar.Bars {
		order = append(order, b.Neighborhood)
	}
	want := []string{"Williamsburg", "Harlem", "Astoria", "Bushwick", "Greenpoint"}
	if !bar.SortByReview || !reflect.DeepEqual(order, want) {
		t.Errorf("sorted by review: got %v (%v), want %v", order, bar.SortByReview, want)
	}

	// The order sticks across refreshes.
	st := mustSelect(t, h, DimRoomType, "Private room")
	if !st.Bar.SortByReview || st.Bar.Bars[0].AvgReview != 5 {
		t.Errorf("sort mode lost on refresh: %+v", st.Bar)
	}

	mustSelect(t, h, DimBorough, "Brooklyn")
	if _, err := h.ToggleBarSort(); !errors.Is(err, ErrSortUnavailable) {
		t.Errorf("ToggleBarSort with borough = %v; want ErrSortUnavailable", err)
	}
}

func TestHubSwapDatasetKeepsSelection(t *testing.T) {
	h := newTestHub(t)
	mustSelect(t, h, DimBorough, "Queens")

	h.SwapDataset(newTestDataset(t, testListings()[3:5]))
	st := h.Snapshot()
	if st.Selection.Borough != "Queens" {
		t.Errorf("selection lost: %+v", st.Selection)
	}
	if len(st.Map.Points) != 2 || len(st.Scatter.Points) != 2 {
		t.Errorf("views not rebuilt: %d map, %d scatter", len(st.Map.Points), len(st.Scatter.Points))
	}
	if len(h.Dataset().Listings) != 2 {
		t.Errorf("dataset not swapped")
	}
}

func TestBuildMetadata(t *testing.T) {
	md := BuildMetadata(newTestDataset(t, testListings()))
	if !reflect.DeepEqual(md.Boroughs, []string{"Brooklyn", "Manhattan", "Queens"}) {
		t.Errorf("boroughs: %v", md.Boroughs)
	}
	if !reflect.DeepEqual(md.Neighborhoods["Brooklyn"], []string{"Bushwick", "Greenpoint", "Williamsburg"}) {
		t.Errorf("Brooklyn neighbourhoods: %v", md.Neighborhoods["Brooklyn"])
	}
	if !reflect.DeepEqual(md.RoomTypes, []string{"Entire home/apt", "Private room", "Shared room"}) {
		t.Errorf("room types: %v", md.RoomTypes)
	}
	if md.TotalListings != 7 || !reflect.DeepEqual(md.BoundaryNames, []string{"Brooklyn", "Queens"}) {
		t.Errorf("metadata: %+v", md)
	}
}

func TestSessionStoreIsolation(t *testing.T) {
	store := NewSessionStore(newTestDataset(t, testListings()), 800, 350, time.Hour, utils.NewDiscardLogger())

	id, h := store.Create()
	if id == "" || id == DefaultSession {
		t.Fatalf("Create returned id %q", id)
	}
	mustSelect(t, h, DimBorough, "Queens")

	def, ok := store.Get("")
	if !ok {
		t.Fatal("default session missing")
	}
	if def.Selection() != (Selection{}) {
		t.Errorf("default session saw another session's selection: %+v", def.Selection())
	}
	got, ok := store.Get(id)
	if !ok || got != h {
		t.Errorf("Get(%q) = %p, %v; want %p", id, got, ok, h)
	}
	if _, ok := store.Get("missing"); ok {
		t.Error("Get(missing) should fail")
	}
	if store.Len() != 2 {
		t.Errorf("Len() = %d; want 2", store.Len())
	}
}

func TestSessionStoreEvict(t *testing.T) {
	store := NewSessionStore(newTestDataset(t, testListings()), 800, 350, time.Minute, utils.NewDiscardLogger())
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	idle, _ := store.Create()
	busy, _ := store.Create()

	now = now.Add(50 * time.Second)
	store.Get(busy)
	now = now.Add(30 * time.Second)

	if n := store.Evict(); n != 1 {
		t.Errorf("Evict() = %d; want 1", n)
	}
	if _, ok := store.Get(idle); ok {
		t.Error("idle session survived eviction")
	}
	if _, ok := store.Get(busy); !ok {
		t.Error("busy session was evicted")
	}
	if _, ok := store.Get(DefaultSession); !ok {
		t.Error("default session must never be evicted")
	}
}

func TestReloaderReload(t *testing.T) {
	logger := utils.NewDiscardLogger()
	store := NewSessionStore(newTestDataset(t, testListings()), 800, 350, time.Hour, logger)
	_, h := store.Create()
	mustSelect(t, h, DimRoomType, "Private room")

	next := newTestDataset(t, testListings()[:3])
	r := NewReloader(store, func(context.Context) (*services.Dataset, error) {
		return next, nil
	}, time.Second, logger)

	if err := r.Reload(context.Background()); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if store.Dataset() != next || h.Dataset() != next {
		t.Error("dataset not swapped into store and hub")
	}
	if got := h.ScatterView().Points; len(got) != 2 {
		t.Errorf("scatter after reload: got %d points, want 2", len(got))
	}

	failing := NewReloader(store, func(context.Context) (*services.Dataset, error) {
		return nil, errors.New("boom")
	}, time.Second, logger)
	if err := failing.Reload(context.Background()); err == nil {
		t.Error("expected reload error")
	}
	if store.Dataset() != next {
		t.Error("failed reload replaced the dataset")
	}
}

func TestReloaderStartRejectsBadSchedule(t *testing.T) {
	store := NewSessionStore(newTestDataset(t, nil), 800, 350, time.Hour, utils.NewDiscardLogger())
	r := NewReloader(store, nil, time.Second, utils.NewDiscardLogger())
	if err := r.Start("not a schedule"); err == nil {
		r.Stop()
		t.Error("expected error for invalid cron expression")
	}
}

func TestHubSnapshotEncodesAfterNonFiniteInput(t *testing.T) {
	raw := func(id, lon, lat, rating string) *models.RawListing {
		return &models.RawListing{
			ID: id, Name: "Listing " + id, Borough: "Brooklyn", Neighborhood: "Bushwick",
			RoomType: "Private room", MinimumNights: "2", ServiceFee: "$10", Price: "$100",
			ReviewRating: rating, Longitude: lon, Latitude: lat,
		}
	}
	rows := []*models.RawListing{
		raw("1", "-73.95", "40.65", "4"),
		raw("2", "-73.95", "40.65", "Inf"),
		raw("3", "-Inf", "+Inf", "3"),
		raw("4", "NaN", "40.65", "5"),
		raw("5", "-73.95", "40.65", "-Infinity"),
	}

	listings := services.NewCleaner(utils.NewDiscardLogger()).Clean(rows)
	if len(listings) != 1 || listings[0].ID != 1 {
		t.Fatalf("cleaned listings: got %d, want only id 1", len(listings))
	}

	h := NewHub(newTestDataset(t, listings), 800, 350, utils.NewDiscardLogger())
	states := []models.DashboardState{
		h.Snapshot(),
		mustSelect(t, h, DimBorough, "Brooklyn"),
		mustSelect(t, h, DimNeighborhood, "Bushwick"),
	}
	for i, st := range states {
		if _, err := json.Marshal(st); err != nil {
			t.Errorf("state %d does not encode: %v", i, err)
		}
	}
}
