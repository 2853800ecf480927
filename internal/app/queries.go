package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"blinkit_scraper/internal/domain"
)

type QueryService struct {
	repo     domain.RunRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.RunRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *QueryService) GetRun(ctx context.Context, id string) (domain.Run, error) {
	key := "run:" + id
	var run domain.Run
	if ok, _ := s.cache.Get(ctx, key, &run); ok {
		return run, nil
	}
	run, err := s.repo.GetRun(ctx, id)
	if err != nil {
		return domain.Run{}, err
	}
	_ = s.cache.Set(ctx, key, run, int(s.cacheTTL.Seconds()))
	return run, nil
}

// ListRuns is not cached; new runs must show up immediately.
func (s *QueryService) ListRuns(ctx context.Context, limit int) ([]domain.Run, error) {
	return s.repo.ListRuns(ctx, limit)
}

func (s *QueryService) ListProducts(ctx context.Context, runID string, q domain.ProductsQuery) (domain.ProductsPage, error) {
	key := fmt.Sprintf("products:%s:%s:%s:%d:%s", runID, deref(q.Category), deref(q.Subcategory), q.Limit, deref(q.Cursor))
	var out domain.ProductsPage
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}

	page, err := s.repo.ListProducts(ctx, runID, q)
	if err != nil {
		return domain.ProductsPage{}, err
	}

	// copy slice to avoid aliasing the repo's backing array
	cp := deepCopyProductsPage(page)

	// archived runs never change, but keep huge pages out of the cache
	if b, _ := json.Marshal(cp); len(b) < 1_000_000 {
		_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
	}
	return cp, nil
}

func deepCopyProductsPage(in domain.ProductsPage) domain.ProductsPage {
	out := domain.ProductsPage{NextCursor: in.NextCursor}
	if n := len(in.Items); n > 0 {
		out.Items = make([]domain.StoredProduct, n)
		copy(out.Items, in.Items)
	}
	return out
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
