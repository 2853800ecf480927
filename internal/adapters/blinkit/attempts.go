package blinkit

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/google/go-querystring/query"

	"blinkit_scraper/internal/domain"
)

// SearchPaths are the guessed product search endpoints, tried in this order.
var SearchPaths = []string{
	"/api/v4/search/product",
	"/api/v4/search/product_suggestions",
	"/api/v4/search/product_suggestions_similar",
	"/api/v4/search/product_suggestions_similar_v2",
	"/api/v4/search/product_suggestions_similar_v3",
	"/api/v4/search/product_suggestions_similar_v4",
	"/api/v4/search/product_suggestions_similar_v5",
	"/api/v4/search/product_suggestions_similar_v6",
	"/api/v4/search/product_suggestions_similar_v7",
	"/api/v4/search/product_suggestions_similar_v8",
	"/api/v4/search/product_suggestions_similar_v9",
	"/api/v4/search/product_suggestions_similar_v10",
}

const validatePath = "/api/v4/location/validate"

const pageSize = 50

// ---- parameter shapes ----

type qLatOffset struct {
	Q       string `url:"q"`
	Lat     string `url:"lat"`
	Lng     string `url:"lng"`
	Pincode string `url:"pincode"`
	Limit   int    `url:"limit"`
	Offset  int    `url:"offset"`
}

type queryLatitudeOffset struct {
	Query     string `url:"query"`
	Latitude  string `url:"latitude"`
	Longitude string `url:"longitude"`
	Pincode   string `url:"pincode"`
	Limit     int    `url:"limit"`
	Offset    int    `url:"offset"`
}

type searchLatOffset struct {
	Search  string `url:"search"`
	Lat     string `url:"lat"`
	Lng     string `url:"lng"`
	Pincode string `url:"pincode"`
	Limit   int    `url:"limit"`
	Offset  int    `url:"offset"`
}

type qLatPage struct {
	Q       string `url:"q"`
	Lat     string `url:"lat"`
	Lng     string `url:"lng"`
	Pincode string `url:"pincode"`
	Page    int    `url:"page"`
	Size    int    `url:"size"`
}

// ParamShape is one guess at how the search endpoint names its query parameters.
type ParamShape struct {
	Name  string
	Build func(q domain.SearchQuery) (url.Values, error)
}

// ParamShapes are tried, in order, against every search path.
var ParamShapes = []ParamShape{
	{"q/lat/offset", func(q domain.SearchQuery) (url.Values, error) {
		return query.Values(qLatOffset{
			Q: q.Term, Lat: coord(q.Location.Lat), Lng: coord(q.Location.Lng),
			Pincode: q.Location.Pincode, Limit: pageSize, Offset: 0,
		})
	}},
	{"query/latitude/offset", func(q domain.SearchQuery) (url.Values, error) {
		return query.Values(queryLatitudeOffset{
			Query: q.Term, Latitude: coord(q.Location.Lat), Longitude: coord(q.Location.Lng),
			Pincode: q.Location.Pincode, Limit: pageSize, Offset: 0,
		})
	}},
	{"search/lat/offset", func(q domain.SearchQuery) (url.Values, error) {
		return query.Values(searchLatOffset{
			Search: q.Term, Lat: coord(q.Location.Lat), Lng: coord(q.Location.Lng),
			Pincode: q.Location.Pincode, Limit: pageSize, Offset: 0,
		})
	}},
	{"q/lat/page", func(q domain.SearchQuery) (url.Values, error) {
		return query.Values(qLatPage{
			Q: q.Term, Lat: coord(q.Location.Lat), Lng: coord(q.Location.Lng),
			Pincode: q.Location.Pincode, Page: 1, Size: pageSize,
		})
	}},
}

// Attempt is one (url, parameter shape) combination.
type Attempt struct {
	URL   string
	Shape ParamShape
}

// Attempts lists every combination: URLs outer, shapes inner.
func Attempts(base string) []Attempt {
	base = strings.TrimRight(base, "/")
	out := make([]Attempt, 0, len(SearchPaths)*len(ParamShapes))
	for _, p := range SearchPaths {
		for _, s := range ParamShapes {
			out = append(out, Attempt{URL: base + p, Shape: s})
		}
	}
	return out
}

// coord renders a coordinate in its shortest exact form (28.6139, not 28.613900).
func coord(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
