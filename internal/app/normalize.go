package app

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog/log"

	"blinkit_scraper/internal/domain"
)

// productListKeys are checked in this order. The first key present is used
// exclusively, even if a later one would hold more products.
var productListKeys = []string{"products", "data.products", "results"}

/********** tiny helpers **********/

// lookupAny: nested lookup with dot paths on maps. ok is false when any hop is
// missing; a present key holding null returns (nil, true).
func lookupAny(m map[string]any, path string) (any, bool) {
	cur := any(m)
	for _, part := range strings.Split(path, ".") {
		obj, isMap := cur.(map[string]any)
		if !isMap {
			return nil, false
		}
		v, ok := obj[part]
		if !ok {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

func topLevelKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

/********** normalizer **********/

// Normalize flattens a decoded catalogue response into product records for t.
// It returns domain.ErrUnknownShape when none of the known list keys exist.
func Normalize(body any, t domain.ScrapeTarget) ([]domain.ProductRecord, error) {
	root, ok := body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: body is %T", domain.ErrUnknownShape, body)
	}

	var (
		list  any
		found bool
		key   string
	)
	for _, k := range productListKeys {
		if list, found = lookupAny(root, k); found {
			key = k
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("%w: keys %v", domain.ErrUnknownShape, topLevelKeys(root))
	}

	// A malformed list is still a hit: it yields what it can rather than
	// sending the caller on to the next parameter shape.
	items, ok := list.([]any)
	if !ok {
		log.Warn().Str("key", key).Str("type", fmt.Sprintf("%T", list)).Msg("product list is not an array")
		return []domain.ProductRecord{}, nil
	}

	out := make([]domain.ProductRecord, 0, len(items))
	for i, it := range items {
		obj, ok := it.(map[string]any)
		if !ok {
			log.Warn().Str("key", key).Int("index", i).Str("type", fmt.Sprintf("%T", it)).Msg("skipping non-object product")
			continue
		}
		out = append(out, mapProduct(obj, t))
	}
	return out, nil
}

// mapProduct copies every schema field verbatim. Missing keys stay nil.
func mapProduct(p map[string]any, t domain.ScrapeTarget) domain.ProductRecord {
	rec := domain.NewRecord(t, domain.OriginLive)
	for _, f := range domain.ProductSchema {
		rec.Values[f.Column] = p[f.Source]
	}
	return rec
}
