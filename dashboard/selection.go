// Package dashboard keeps the shared selection state and recomputes the three
// cross-filtered views (scatter, bar, map) whenever it changes.
package dashboard

import (
	"errors"
	"fmt"
	"strings"

	"airbnb-dashboard/models"
)

// Dimension names one axis of the selection.
type Dimension string

const (
	DimBorough      Dimension = "borough"
	DimNeighborhood Dimension = "neighborhood"
	DimRoomType     Dimension = "roomType"
)

// AllDimensions lists every selection dimension in display order.
var AllDimensions = []Dimension{DimBorough, DimNeighborhood, DimRoomType}

// ErrUnknownDimension is returned for a dimension name that is not recognised.
var ErrUnknownDimension = errors.New("dashboard: unknown dimension")

// ParseDimension accepts the wire names plus the spellings used by the source
// columns ("neighbourhood", "room type", "neighbourhood group").
func ParseDimension(s string) (Dimension, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "borough", "neighbourhood group":
		return DimBorough, nil
	case "neighborhood", "neighbourhood":
		return DimNeighborhood, nil
	case "roomtype", "room_type", "room type":
		return DimRoomType, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDimension, s)
}

// Selection holds at most one value per dimension. An empty value means the
// dimension is unconstrained.
type Selection struct {
	Borough      string
	Neighborhood string
	RoomType     string
}

// SetBorough selects a borough. A previously selected neighbourhood is
// cleared; the room type is kept.
func (s *Selection) SetBorough(v string) {
	s.Borough = v
	s.Neighborhood = ""
}

// SetNeighborhood selects a neighbourhood and leaves the other dimensions alone.
func (s *Selection) SetNeighborhood(v string) {
	s.Neighborhood = v
}

// SetRoomType selects a room type and leaves the other dimensions alone.
func (s *Selection) SetRoomType(v string) {
	s.RoomType = v
}

// Set dispatches to the setter for dim.
func (s *Selection) Set(dim Dimension, v string) error {
	switch dim {
	case DimBorough:
		s.SetBorough(v)
	case DimNeighborhood:
		s.SetNeighborhood(v)
	case DimRoomType:
		s.SetRoomType(v)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDimension, dim)
	}
	return nil
}

// Clear removes the constraint on a single dimension only.
func (s *Selection) Clear(dim Dimension) error {
	switch dim {
	case DimBorough:
		s.Borough = ""
	case DimNeighborhood:
		s.Neighborhood = ""
	case DimRoomType:
		s.RoomType = ""
	default:
		return fmt.Errorf("%w: %q", ErrUnknownDimension, dim)
	}
	return nil
}

// Reset clears every dimension.
func (s *Selection) Reset() {
	*s = Selection{}
}

// Value returns the selected value for dim, or "".
func (s Selection) Value(dim Dimension) string {
	switch dim {
	case DimBorough:
		return s.Borough
	case DimNeighborhood:
		return s.Neighborhood
	case DimRoomType:
		return s.RoomType
	}
	return ""
}

// Active lists the constrained dimensions.
func (s Selection) Active() []Dimension {
	var dims []Dimension
	for _, d := range AllDimensions {
		if s.Value(d) != "" {
			dims = append(dims, d)
		}
	}
	return dims
}

func (s Selection) ToModel() models.Selection {
	return models.Selection{
		Borough:      s.Borough,
		Neighborhood: s.Neighborhood,
		RoomType:     s.RoomType,
	}
}
