package domain

import "context"

// SearchQuery is what the prober sends: where, and what to look for.
type SearchQuery struct {
	Location Location
	Term     string
}

// ProbeHit is the first successful endpoint attempt and its decoded JSON body.
type ProbeHit struct {
	URL   string
	Shape string
	Body  any
}

type CatalogueClient interface {
	// ValidateLocation primes the remote session; callers never gate on its result.
	ValidateLocation(ctx context.Context, loc Location) (map[string]any, error)
	// Probe returns ErrProbeExhausted when no attempt produced a JSON 200.
	Probe(ctx context.Context, q SearchQuery) (ProbeHit, error)
}

type RecordExporter interface {
	// Export writes every record once and returns where they went.
	Export(ctx context.Context, run Run, recs []ProductRecord) (string, error)
}

type RunArchive interface {
	SaveRun(ctx context.Context, run Run, recs []ProductRecord) error
}

type RunRepository interface {
	// Write path
	RunArchive

	// Read paths
	GetRun(ctx context.Context, id string) (Run, error)
	ListRuns(ctx context.Context, limit int) ([]Run, error)
	ListProducts(ctx context.Context, runID string, q ProductsQuery) (ProductsPage, error)
}

type ObjectUploader interface {
	Upload(ctx context.Context, run Run, localPath string) (string, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

type ProductsQuery struct {
	Category    *string
	Subcategory *string
	Limit       int
	Cursor      *string
}

type ProductsPage struct {
	Items      []StoredProduct `json:"items"`
	NextCursor *string         `json:"next_cursor,omitempty"`
}
