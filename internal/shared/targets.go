package shared

import "blinkit_scraper/internal/domain"

// DefaultTargets is the fixed target list of a scrape run, in run order.
var DefaultTargets = []domain.ScrapeTarget{
	{Lat: 28.6139, Lng: 77.2090, Category: "Snacks & Munchies", Subcategory: "Nachos"},
	{Lat: 19.0760, Lng: 72.8777, Category: "Beverages", Subcategory: "Soft Drinks"},
	{Lat: 12.9716, Lng: 77.5946, Category: "Dairy & Bakery", Subcategory: "Milk"},
}
