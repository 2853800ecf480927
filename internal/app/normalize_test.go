package app_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blinkit_scraper/internal/app"
	"blinkit_scraper/internal/domain"
)

var nachos = domain.ScrapeTarget{Lat: 28.6139, Lng: 77.2090, Category: "Snacks & Munchies", Subcategory: "Nachos"}

// decode mirrors how the catalogue client hands bodies over.
func decode(t *testing.T, s string) any {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var v any
	require.NoError(t, dec.Decode(&v))
	return v
}

func TestNormalize_TopLevelProducts(t *testing.T) {
	recs, err := app.Normalize(decode(t, `{"products":[{"id":"a1","name":"X"}]}`), nachos)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	r := recs[0]
	assert.Equal(t, domain.OriginLive, r.Origin)
	assert.Equal(t, "a1", r.Get("product_id"))
	assert.Equal(t, "X", r.Get("product_name"))
	assert.Equal(t, 28.6139, r.Get(domain.ColLatitude))
	assert.Equal(t, 77.2090, r.Get(domain.ColLongitude))
	assert.Equal(t, "Snacks & Munchies", r.Get(domain.ColCategory))
	assert.Equal(t, "Nachos", r.Get(domain.ColSubcategory))

	// every other schema column is present and empty
	for _, f := range domain.ProductSchema {
		assert.True(t, r.Has(f.Column), f.Column)
		if f.Column != "product_id" && f.Column != "product_name" {
			assert.Nil(t, r.Get(f.Column), f.Column)
		}
	}
}

func TestNormalize_ListKeyPriority(t *testing.T) {
	cases := []struct {
		name string
		body string
		want []string
	}{
		{"nested data.products", `{"data":{"products":[{"id":"d1"},{"id":"d2"}]}}`, []string{"d1", "d2"}},
		{"results", `{"results":[{"id":"r1"}]}`, []string{"r1"}},
		{"products wins over results", `{"products":[{"id":"p1"}],"results":[{"id":"r1"},{"id":"r2"}]}`, []string{"p1"}},
		{"data.products wins over results", `{"data":{"products":[]},"results":[{"id":"r1"}]}`, nil},
		{"empty products wins", `{"products":[],"results":[{"id":"r1"}]}`, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			recs, err := app.Normalize(decode(t, tc.body), nachos)
			require.NoError(t, err)
			var ids []string
			for _, r := range recs {
				ids = append(ids, r.Get("product_id").(string))
			}
			assert.Equal(t, tc.want, ids)
		})
	}
}

func TestNormalize_UnknownShape(t *testing.T) {
	for _, body := range []string{`{"items":[{"id":"x"}]}`, `{"data":{"items":[]}}`, `[{"id":"x"}]`, `"text"`} {
		_, err := app.Normalize(decode(t, body), nachos)
		assert.ErrorIs(t, err, domain.ErrUnknownShape, body)
	}
}

func TestNormalize_NonArrayListYieldsNothing(t *testing.T) {
	recs, err := app.Normalize(decode(t, `{"products":{"id":"x"},"results":[{"id":"r1"}]}`), nachos)
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestNormalize_ValuesPassThroughVerbatim(t *testing.T) {
	body := `{"products":[
		{"id":7,"price":"45.50","rating":4.25,"is_veg":true,"is_gluten_free":false,"brand":null,"extra":"ignored"},
		"not an object"
	]}`
	recs, err := app.Normalize(decode(t, body), nachos)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	r := recs[0]
	assert.Equal(t, json.Number("7"), r.Get("product_id"))
	assert.Equal(t, "45.50", r.Get("price"))
	assert.Equal(t, json.Number("4.25"), r.Get("rating"))
	assert.Equal(t, true, r.Get("is_veg"))
	assert.Equal(t, false, r.Get("is_gluten_free"))
	assert.Nil(t, r.Get("brand"))
	assert.False(t, r.Has("extra"))
}
