package storage

import "airbnb-dashboard/models"

// ListingWriter is the interface any listing sink must satisfy.
type ListingWriter interface {
	Write(listings []*models.Listing) error
	Close() error
}

// ListingStore is a ListingWriter that can also hand the listings back.
type ListingStore interface {
	ListingWriter
	FetchAll() ([]*models.Listing, error)
}

var (
	_ ListingWriter = (*CSVWriter)(nil)
	_ ListingStore  = (*SQLStore)(nil)
)
