package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"airbnb-dashboard/models"
)

// exportHeader uses the source column names so an export can be loaded again.
var exportHeader = []string{
	ColID, ColName, ColBorough, ColNeighborhood, ColRoomType, ColMinimumNights,
	ColServiceFee, ColPrice, ColReviewRating, ColLongitude, ColLatitude, ColConstructionYear,
}

// CSVWriter writes cleaned listings as CSV.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	closer io.Closer
	writer *csv.Writer
}

// NewCSVWriter writes the header row to w and returns a writer for listings.
func NewCSVWriter(w io.Writer) (*CSVWriter, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	cw.Flush()
	return &CSVWriter{writer: cw}, cw.Error()
}

// NewCSVFileWriter creates (or truncates) the CSV file at the given path.
// Intermediate directories are created automatically.
func NewCSVFileWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w, err := NewCSVWriter(f)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	w.closer = f
	return w, nil
}

// Write appends listings in the source CSV format: money gets its "$"
// prefix back so the export reads like the source file.
func (c *CSVWriter) Write(listings []*models.Listing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range listings {
		row := []string{
			strconv.FormatInt(l.ID, 10),
			l.Name,
			l.Borough,
			l.Neighborhood,
			l.RoomType,
			strconv.Itoa(l.MinimumNights),
			"$" + strconv.FormatFloat(l.ServiceFee, 'f', -1, 64),
			"$" + strconv.FormatFloat(l.Price, 'f', -1, 64),
			strconv.FormatFloat(l.ReviewRating, 'f', -1, 64),
			strconv.FormatFloat(l.Longitude, 'f', -1, 64),
			strconv.FormatFloat(l.Latitude, 'f', -1, 64),
			strconv.Itoa(l.ConstructionYear),
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file, if any.
func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writer.Flush()
	if c.closer != nil {
		return c.closer.Close()
	}
	return c.writer.Error()
}
