package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"airbnb-dashboard/models"
	"airbnb-dashboard/utils"
)

// UnknownRoomType replaces a blank room type.
const UnknownRoomType = "Unknown"

const (
	maxMinimumNights = 366
)

var (
	// currencyRegexp matches the formatting stripped from monetary fields
	currencyRegexp = regexp.MustCompile(`[$,]`)

	// boroughSpellings maps known misspellings in the source to the canonical name
	boroughSpellings = map[string]string{
		"brookln":  "Brooklyn",
		"manhatan": "Manhattan",
	}
)

// Drop reasons, counted per Clean call.
const (
	dropMinimumNights = "minimum nights"
	dropPrice         = "price"
	dropServiceFee    = "service fee"
	dropCoordinates   = "coordinates"
	dropReview        = "review rate number"
	dropLocation      = "borough/neighbourhood"
)

// Cleaner transforms RawListings into clean, validated Listings.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Clean parses and validates raw rows. A row failing any check is dropped
// silently; only the per-reason counts are logged.
func (c *Cleaner) Clean(raw []*models.RawListing) []*models.Listing {
	result := make([]*models.Listing, 0, len(raw))
	dropped := make(map[string]int)

	for _, r := range raw {
		l, reason := c.cleanOne(r)
		if l == nil {
			dropped[reason]++
			continue
		}
		result = append(result, l)
	}

	for reason, n := range dropped {
		c.logger.Debug("[cleaner] Dropped %d listings: invalid %s", n, reason)
	}
	c.logger.Info("[cleaner] Cleaned %d → %d listings (dropped %d)",
		len(raw), len(result), len(raw)-len(result))
	return result
}

func (c *Cleaner) cleanOne(r *models.RawListing) (*models.Listing, string) {
	nights, ok := parseMinimumNights(r.MinimumNights)
	if !ok {
		return nil, dropMinimumNights
	}

	price, ok := parseCurrency(r.Price)
	if !ok || price <= 0 {
		return nil, dropPrice
	}

	fee, ok := parseCurrency(r.ServiceFee)
	if !ok || fee < 0 {
		return nil, dropServiceFee
	}

	lon, okLon := parseFinite(r.Longitude)
	lat, okLat := parseFinite(r.Latitude)
	if !okLon || !okLat || lon >= 0 || lat <= 0 {
		return nil, dropCoordinates
	}

	rating, ok := parseFinite(r.ReviewRating)
	if !ok || rating <= 0 {
		return nil, dropReview
	}

	borough := NormaliseBorough(normaliseText(r.Borough))
	neighborhood := normaliseText(r.Neighborhood)
	if borough == "" || neighborhood == "" {
		return nil, dropLocation
	}

	roomType := normaliseText(r.RoomType)
	if roomType == "" {
		roomType = UnknownRoomType
	}

	id, _ := strconv.ParseInt(strings.TrimSpace(r.ID), 10, 64)
	year, _ := strconv.Atoi(strings.TrimSpace(r.ConstructionYear))

	return &models.Listing{
		ID:               id,
		Name:             normaliseText(r.Name),
		Borough:          borough,
		Neighborhood:     neighborhood,
		RoomType:         roomType,
		MinimumNights:    nights,
		ServiceFee:       fee,
		Price:            price,
		ReviewRating:     rating,
		Longitude:        lon,
		Latitude:         lat,
		ConstructionYear: year,
	}, ""
}

// NormaliseBorough fixes the two misspellings found in the source. Every
// other value passes through unchanged.
func NormaliseBorough(s string) string {
	if fixed, ok := boroughSpellings[s]; ok {
		return fixed
	}
	return s
}

// parseCurrency strips "$" and "," and parses the rest. A blank field is 0.
// Examples:
//
//	"$1,060 " → 1060
//	"$193"    → 193
//	""        → 0
func parseCurrency(raw string) (float64, bool) {
	cleaned := strings.TrimSpace(currencyRegexp.ReplaceAllString(raw, ""))
	if cleaned == "" {
		return 0, true
	}
	return parseFinite(cleaned)
}

// parseFinite parses a float, rejecting NaN and the infinities that
// strconv.ParseFloat accepts ("Inf", "-Infinity").
func parseFinite(raw string) (float64, bool) {
	val, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, false
	}
	return val, true
}

// parseMinimumNights accepts whole numbers in (0, 366).
func parseMinimumNights(raw string) (int, bool) {
	val, ok := parseFinite(raw)
	if !ok || val != math.Trunc(val) {
		return 0, false
	}
	if val <= 0 || val >= maxMinimumNights {
		return 0, false
	}
	return int(val), true
}

// normaliseText strips leading/trailing whitespace and collapses internal whitespace.
func normaliseText(s string) string {
	fields := strings.FieldsFunc(s, unicode.IsSpace)
	return strings.Join(fields, " ")
}
