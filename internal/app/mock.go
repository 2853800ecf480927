package app

import (
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"blinkit_scraper/internal/domain"
)

// MockGenerator produces placeholder records when no live data is available.
// It shares one random source with the session builder for reproducible runs;
// neither is safe for concurrent use.
type MockGenerator struct {
	rng *rand.Rand
}

func NewMockGenerator(rng *rand.Rand) *MockGenerator {
	return &MockGenerator{rng: rng}
}

// Generate returns 5 to 10 records, every schema column populated.
func (g *MockGenerator) Generate(t domain.ScrapeTarget) []domain.ProductRecord {
	n := g.between(5, 10)
	slug := strings.ReplaceAll(strings.ToLower(t.Subcategory), " ", "_")

	out := make([]domain.ProductRecord, 0, n)
	for i := 0; i < n; i++ {
		rec := domain.NewRecord(t, domain.OriginMock)
		for _, f := range domain.ProductSchema {
			rec.Values[f.Column] = g.value(f.Column, i, slug, t.Subcategory)
		}
		out = append(out, rec)
	}
	return out
}

func (g *MockGenerator) value(col string, i int, slug, sub string) any {
	switch col {
	case "product_id":
		return fmt.Sprintf("%s_%d", slug, i)
	case "product_name":
		return fmt.Sprintf("%s Product %d", sub, i+1)
	case "brand":
		return fmt.Sprintf("Brand %d", i+1)
	case "price":
		return g.money(50, 500)
	case "original_price":
		return g.money(60, 600)
	case "discount_percentage":
		return g.between(5, 30)
	case "rating", "seller_rating":
		return g.score()
	case "review_count":
		return g.between(10, 500)
	case "availability":
		return "In Stock"
	case "image_url":
		return fmt.Sprintf("https://example.com/image_%d.jpg", i)
	case "description":
		return fmt.Sprintf("This is a %s product", sub)
	case "weight":
		return fmt.Sprintf("%dg", g.between(100, 1000))
	case "unit":
		return "g"
	case "stock_quantity":
		return g.between(10, 100)
	case "seller_name":
		return fmt.Sprintf("Seller %d", i+1)
	case "delivery_time":
		return fmt.Sprintf("%d minutes", g.between(10, 60))
	case "delivery_charge":
		return g.between(0, 50)
	case "min_order_amount":
		return g.between(100, 500)
	case "is_available", "is_cash_on_delivery", "is_online_payment":
		return true
	case "instant_discount_amount":
		return g.maybe(func() any { return g.between(10, 100) }, 0)
	case "coupon_code":
		return g.maybe(func() any { return fmt.Sprintf("SAVE%d", i+1) }, "")
	case "coupon_discount":
		return g.maybe(func() any { return g.between(5, 20) }, 0)
	}
	if domain.IsFlagColumn(col) {
		return g.coin()
	}
	// a schema column without a generator still gets a value
	return ""
}

// between returns an int in [lo, hi].
func (g *MockGenerator) between(lo, hi int) int { return lo + g.rng.IntN(hi-lo+1) }

func (g *MockGenerator) coin() bool { return g.rng.IntN(2) == 1 }

func (g *MockGenerator) maybe(yes func() any, no any) any {
	if g.coin() {
		return yes()
	}
	return no
}

// money is a two-decimal amount in [lo, hi].
func (g *MockGenerator) money(lo, hi float64) float64 {
	return round(lo+g.rng.Float64()*(hi-lo), 2)
}

// score is a one-decimal rating in [3.0, 5.0].
func (g *MockGenerator) score() float64 {
	return round(3+g.rng.Float64()*2, 1)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
