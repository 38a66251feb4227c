package dashboard

import (
	"errors"
	"sort"
	"sync"

	"airbnb-dashboard/geo"
	"airbnb-dashboard/models"
	"airbnb-dashboard/services"
	"airbnb-dashboard/utils"
)

// ErrSortUnavailable is returned when the bar sort is toggled while a borough
// is selected.
var ErrSortUnavailable = errors.New("dashboard: bar sort is only available without a borough selected")

// view is one cross-filtered adapter. rebase runs when the dataset changes,
// refresh after every selection event.
type view interface {
	rebase(ds *services.Dataset)
	refresh(ds *services.Dataset, sel Selection)
}

// Hub owns one Selection and the three views derived from it. Every event
// runs to completion under mu, so readers always see the selection and all
// three views agree.
type Hub struct {
	mu      sync.Mutex
	logger  *utils.Logger
	dataset *services.Dataset
	sel     Selection

	Scatter *Scatter
	Bar     *Bar
	Map     *Map
}

// NewHub builds a hub over ds with an empty selection. width and height size
// the map viewport.
func NewHub(ds *services.Dataset, width, height float64, logger *utils.Logger) *Hub {
	h := &Hub{logger: logger, dataset: ds}
	h.Scatter = &Scatter{hub: h}
	h.Bar = &Bar{hub: h}
	h.Map = &Map{hub: h, width: width, height: height}

	for _, v := range h.views() {
		v.rebase(ds)
	}
	h.refreshLocked()
	return h
}

func (h *Hub) views() []view {
	return []view{h.Scatter, h.Bar, h.Map}
}

// refreshLocked recomputes every view from the current selection. Callers
// hold mu, except NewHub before the hub is shared.
func (h *Hub) refreshLocked() {
	for _, v := range h.views() {
		v.refresh(h.dataset, h.sel)
	}
}

// Select applies one selection event and returns the resulting state.
func (h *Hub) Select(dim Dimension, value string) (models.DashboardState, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.sel.Set(dim, value); err != nil {
		return models.DashboardState{}, err
	}
	h.logger.Debug("[dashboard] select %s=%q → %+v", dim, value, h.sel)
	h.refreshLocked()
	return h.snapshotLocked(), nil
}

// Clear removes the constraint on one dimension.
func (h *Hub) Clear(dim Dimension) (models.DashboardState, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.sel.Clear(dim); err != nil {
		return models.DashboardState{}, err
	}
	h.refreshLocked()
	return h.snapshotLocked(), nil
}

// Reset clears the whole selection.
func (h *Hub) Reset() models.DashboardState {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sel.Reset()
	h.refreshLocked()
	return h.snapshotLocked()
}

// ToggleBarSort flips the bar chart order between borough-grouped and plain
// descending rating.
func (h *Hub) ToggleBarSort() (models.BarView, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.sel.Borough != "" {
		return h.Bar.view, ErrSortUnavailable
	}
	h.Bar.sortByReview = !h.Bar.sortByReview
	h.Bar.refresh(h.dataset, h.sel)
	return h.Bar.view, nil
}

// Selection returns the current selection.
func (h *Hub) Selection() Selection {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sel
}

// Snapshot returns the selection and all three views.
func (h *Hub) Snapshot() models.DashboardState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.snapshotLocked()
}

func (h *Hub) snapshotLocked() models.DashboardState {
	return models.DashboardState{
		Selection: h.sel.ToModel(),
		Scatter:   h.Scatter.view,
		Bar:       h.Bar.view,
		Map:       h.Map.view,
	}
}

// ScatterView returns the current scatter payload.
func (h *Hub) ScatterView() models.ScatterView {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Scatter.view
}

// BarView returns the current bar payload.
func (h *Hub) BarView() models.BarView {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Bar.view
}

// MapView returns the current map payload.
func (h *Hub) MapView() models.MapView {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Map.view
}

// MapScene returns the map view with the boundaries and projection it was
// computed against.
func (h *Hub) MapScene() (models.MapView, *geo.BoundarySet, geo.Projection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Map.view, h.dataset.Boundaries, h.Map.projection
}

// Filtered returns the listings matching every active dimension.
func (h *Hub) Filtered() []*models.Listing {
	h.mu.Lock()
	defer h.mu.Unlock()
	return services.Filter(h.dataset.Listings, Predicate(h.sel, AllDimensions...))
}

// Dataset returns the dataset the views are currently built from.
func (h *Hub) Dataset() *services.Dataset {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dataset
}

// SwapDataset replaces the dataset, keeping the selection, and rebuilds the
// views.
func (h *Hub) SwapDataset(ds *services.Dataset) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.dataset = ds
	for _, v := range h.views() {
		v.rebase(ds)
	}
	h.refreshLocked()
}

// BuildMetadata lists the values each dimension can take in ds, sorted.
func BuildMetadata(ds *services.Dataset) models.Metadata {
	boroughs := utils.NewOrderedSet()
	roomTypes := utils.NewOrderedSet()
	byBorough := make(map[string]*utils.OrderedSet)

	for _, l := range ds.Listings {
		boroughs.Add(l.Borough)
		roomTypes.Add(l.RoomType)
		set, ok := byBorough[l.Borough]
		if !ok {
			set = utils.NewOrderedSet()
			byBorough[l.Borough] = set
		}
		set.Add(l.Neighborhood)
	}

	md := models.Metadata{
		Boroughs:      sortedValues(boroughs),
		Neighborhoods: make(map[string][]string, len(byBorough)),
		RoomTypes:     sortedValues(roomTypes),
		TotalListings: len(ds.Listings),
		BoundaryNames: []string{},
	}
	for b, set := range byBorough {
		md.Neighborhoods[b] = sortedValues(set)
	}
	if ds.Boundaries != nil {
		md.BoundaryNames = ds.Boundaries.Names()
	}
	return md
}

func sortedValues(s *utils.OrderedSet) []string {
	values := s.Values()
	sort.Strings(values)
	return values
}
