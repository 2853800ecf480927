// Package location maps coordinates to the pincode the catalogue expects.
package location

import (
	"math"

	"blinkit_scraper/internal/domain"
)

// DefaultPincode is used for any coordinate that is not near a reference city.
const DefaultPincode = "110001"

// Tolerance is the per-axis distance, in degrees, within which a reference matches.
const Tolerance = 0.1

type reference struct {
	city     string
	lat, lng float64
	pincode  string
}

// Order matters: the first reference within tolerance wins, not the nearest.
var references = []reference{
	{"delhi", 28.6139, 77.2090, "110001"},
	{"mumbai", 19.0760, 72.8777, "400001"},
	{"bangalore", 12.9716, 77.5946, "560001"},
	{"kolkata", 22.5726, 88.3639, "700001"},
	{"hyderabad", 17.3850, 78.4867, "500001"},
}

// Pincode returns the pincode of the first reference city within Tolerance on
// both axes, or DefaultPincode.
func Pincode(lat, lng float64) string {
	for _, r := range references {
		if math.Abs(lat-r.lat) < Tolerance && math.Abs(lng-r.lng) < Tolerance {
			return r.pincode
		}
	}
	return DefaultPincode
}

// Resolve pairs a coordinate with the pincode Pincode picks for it.
func Resolve(lat, lng float64) domain.Location {
	return domain.Location{Lat: lat, Lng: lng, Pincode: Pincode(lat, lng)}
}
