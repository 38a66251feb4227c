package storage

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"airbnb-dashboard/models"
)

// Source column names in the listings CSV.
const (
	ColID               = "id"
	ColName             = "NAME"
	ColBorough          = "neighbourhood group"
	ColNeighborhood     = "neighbourhood"
	ColRoomType         = "room type"
	ColMinimumNights    = "minimum nights"
	ColServiceFee       = "service fee"
	ColPrice            = "price"
	ColReviewRating     = "review rate number"
	ColLongitude        = "long"
	ColLatitude         = "lat"
	ColConstructionYear = "Construction year"
)

var requiredColumns = []string{
	ColBorough, ColNeighborhood, ColRoomType, ColMinimumNights, ColServiceFee,
	ColPrice, ColReviewRating, ColLongitude, ColLatitude,
}

// ReadRawListings reads every row of the listings CSV, mapping columns by
// header name. Optional columns (id, NAME, Construction year) may be absent.
// Rows with the wrong number of fields are skipped.
func ReadRawListings(r io.Reader) ([]*models.RawListing, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := cols[h]; !dup {
			cols[h] = i
		}
	}
	for _, c := range requiredColumns {
		if _, ok := cols[c]; !ok {
			return nil, fmt.Errorf("csv: missing required column %q", c)
		}
	}

	field := func(row []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var out []*models.RawListing
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}
			return nil, fmt.Errorf("csv: read row: %w", err)
		}
		if len(row) != len(header) {
			continue
		}

		out = append(out, &models.RawListing{
			ID:               field(row, ColID),
			Name:             field(row, ColName),
			Borough:          field(row, ColBorough),
			Neighborhood:     field(row, ColNeighborhood),
			RoomType:         field(row, ColRoomType),
			MinimumNights:    field(row, ColMinimumNights),
			ServiceFee:       field(row, ColServiceFee),
			Price:            field(row, ColPrice),
			ReviewRating:     field(row, ColReviewRating),
			Longitude:        field(row, ColLongitude),
			Latitude:         field(row, ColLatitude),
			ConstructionYear: field(row, ColConstructionYear),
		})
	}
	return out, nil
}
