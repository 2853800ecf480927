package domain

import "time"

// Origin tells whether a record came from the live catalogue or the placeholder generator.
type Origin string

const (
	OriginLive Origin = "live"
	OriginMock Origin = "mock"
)

// ScrapeTarget is one (location, category, subcategory) input of a run.
type ScrapeTarget struct {
	Lat         float64
	Lng         float64
	Category    string
	Subcategory string
}

// Location is a coordinate pair plus the pincode derived from it.
type Location struct {
	Lat     float64
	Lng     float64
	Pincode string
}

// ProductRecord is one flat product observation tied to its scrape target.
// Values is keyed by ProductSchema column; a nil value means the field was absent.
type ProductRecord struct {
	Latitude    float64
	Longitude   float64
	Category    string
	Subcategory string
	Origin      Origin
	Values      map[string]any
}

// NewRecord returns an empty record bound to the target context.
func NewRecord(t ScrapeTarget, origin Origin) ProductRecord {
	return ProductRecord{
		Latitude:    t.Lat,
		Longitude:   t.Lng,
		Category:    t.Category,
		Subcategory: t.Subcategory,
		Origin:      origin,
		Values:      make(map[string]any, len(ProductSchema)),
	}
}

// Get returns the value of any column, context columns included.
func (r ProductRecord) Get(col string) any {
	switch col {
	case ColLatitude:
		return r.Latitude
	case ColLongitude:
		return r.Longitude
	case ColCategory:
		return r.Category
	case ColSubcategory:
		return r.Subcategory
	}
	return r.Values[col]
}

// Has reports whether the column is part of this record (even with a nil value).
func (r ProductRecord) Has(col string) bool {
	switch col {
	case ColLatitude, ColLongitude, ColCategory, ColSubcategory:
		return true
	}
	_, ok := r.Values[col]
	return ok
}

// Run summarises one scrape run.
type Run struct {
	ID          string    `json:"id"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
	Targets     int       `json:"targets"`
	Records     int       `json:"records"`
	MockRecords int       `json:"mock_records"`
	OutputPath  string    `json:"output_path,omitempty"`
}

// StoredProduct is a record read back from the run archive.
type StoredProduct struct {
	RunID       string         `json:"run_id"`
	Seq         int64          `json:"seq"`
	Origin      Origin         `json:"origin"`
	Latitude    float64        `json:"latitude"`
	Longitude   float64        `json:"longitude"`
	Category    string         `json:"category"`
	Subcategory string         `json:"subcategory"`
	ProductID   *string        `json:"product_id,omitempty"`
	Name        *string        `json:"product_name,omitempty"`
	Brand       *string        `json:"brand,omitempty"`
	Price       *float64       `json:"price,omitempty"`
	Attributes  map[string]any `json:"attributes,omitempty"`
}
