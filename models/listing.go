package models

// RawListing holds one unprocessed row of the listings CSV, keyed by the
// source column it came from. Nothing has been parsed or validated yet.
type RawListing struct {
	ID               string // id
	Name             string // NAME
	Borough          string // neighbourhood group
	Neighborhood     string // neighbourhood
	RoomType         string // room type
	MinimumNights    string // minimum nights
	ServiceFee       string // service fee
	Price            string // price
	ReviewRating     string // review rate number
	Longitude        string // long
	Latitude         string // lat
	ConstructionYear string // Construction year
}

// Listing is a cleaned, validated record. Every Listing that exists has
// passed the loader's range checks; nothing downstream re-validates it.
type Listing struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Borough          string  `json:"borough"`
	Neighborhood     string  `json:"neighborhood"`
	RoomType         string  `json:"roomType"`
	MinimumNights    int     `json:"minimumNights"`
	ServiceFee       float64 `json:"serviceFee"`
	Price            float64 `json:"price"`
	ReviewRating     float64 `json:"reviewRating"`
	Longitude        float64 `json:"longitude"`
	Latitude         float64 `json:"latitude"`
	ConstructionYear int     `json:"constructionYear"`
}

// AggregateRow is the mean of a metric over one non-empty (Key1, Key2) bucket.
type AggregateRow[K1, K2 comparable] struct {
	Key1  K1
	Key2  K2
	Mean  float64
	Count int
}

// Summary holds headline statistics over a set of listings.
type Summary struct {
	TotalListings     int
	AveragePrice      float64
	MinPrice          float64
	MaxPrice          float64
	AverageServiceFee float64
	MostExpensive     *Listing
	TopRated          []*Listing
	ListingsByBorough map[string]int
}
