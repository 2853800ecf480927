package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"blinkit_scraper/internal/adapters/observability"
	"blinkit_scraper/internal/domain"
	"blinkit_scraper/internal/location"
)

// ScrapeService drives a run: one target at a time, probe, normalize or mock,
// then export everything collected in a single write.
type ScrapeService struct {
	client   domain.CatalogueClient
	mock     *MockGenerator
	exporter domain.RecordExporter
	archive  domain.RunArchive
	uploader domain.ObjectUploader
	pause    time.Duration
	now      func() time.Time
}

func NewScrapeService(c domain.CatalogueClient, mock *MockGenerator, exp domain.RecordExporter, pause time.Duration) *ScrapeService {
	return &ScrapeService{client: c, mock: mock, exporter: exp, pause: pause, now: time.Now}
}

// WithArchive stores every exported run. Archive failures are logged, not returned.
func (s *ScrapeService) WithArchive(r domain.RunArchive) *ScrapeService {
	s.archive = r
	return s
}

// WithUploader copies the exported file elsewhere. Upload failures are logged, not returned.
func (s *ScrapeService) WithUploader(u domain.ObjectUploader) *ScrapeService {
	s.uploader = u
	return s
}

// Run scrapes targets in order. It only fails on context cancellation or when
// the export itself fails; an empty result is reported and is not an error.
func (s *ScrapeService) Run(ctx context.Context, targets []domain.ScrapeTarget) (domain.Run, []domain.ProductRecord, error) {
	run := domain.Run{ID: uuid.NewString(), StartedAt: s.now(), Targets: len(targets)}
	logger := log.With().Str("run", run.ID).Logger()
	logger.Info().Int("targets", len(targets)).Msg("scrape starting")

	var all []domain.ProductRecord
	for i, t := range targets {
		recs, err := s.ScrapeTarget(ctx, t)
		if err != nil {
			return run, all, err
		}
		if len(recs) > 0 {
			all = append(all, recs...)
			logger.Info().Str("category", t.Category).Str("subcategory", t.Subcategory).Int("count", len(recs)).Msg("products found")
		} else {
			logger.Info().Str("category", t.Category).Str("subcategory", t.Subcategory).Msg("no products found")
		}

		// pace the targets; nothing to wait for after the last one
		if i < len(targets)-1 && !sleepCtx(ctx, s.pause) {
			return run, all, ctx.Err()
		}
	}

	run.FinishedAt = s.now()
	run.Records = len(all)
	for _, r := range all {
		if r.Origin == domain.OriginMock {
			run.MockRecords++
		}
	}

	if len(all) == 0 {
		logger.Warn().Msg("no data was scraped successfully")
		return run, nil, nil
	}

	out, err := s.exporter.Export(ctx, run, all)
	if err != nil {
		return run, all, fmt.Errorf("export run %s: %w", run.ID, err)
	}
	run.OutputPath = out
	logger.Info().
		Str("path", out).
		Int("records", run.Records).
		Int("mock_records", run.MockRecords).
		Int("columns", len(domain.Columns())).
		Msg("scraped data saved")

	if s.archive != nil {
		if err := s.archive.SaveRun(ctx, run, all); err != nil {
			logger.Warn().Err(err).Msg("archive run failed")
		} else {
			logger.Info().Msg("run archived")
		}
	}
	if s.uploader != nil {
		if loc, err := s.uploader.Upload(ctx, run, out); err != nil {
			logger.Warn().Err(err).Msg("upload export failed")
		} else {
			logger.Info().Str("location", loc).Msg("export uploaded")
		}
	}
	return run, all, nil
}

// ScrapeTarget collects the records of one target. Live data wins; an
// exhausted probe or an unrecognised body falls back to placeholder records.
func (s *ScrapeService) ScrapeTarget(ctx context.Context, t domain.ScrapeTarget) ([]domain.ProductRecord, error) {
	loc := location.Resolve(t.Lat, t.Lng)
	log.Info().
		Float64("lat", t.Lat).
		Float64("lng", t.Lng).
		Str("pincode", loc.Pincode).
		Str("category", t.Category).
		Str("subcategory", t.Subcategory).
		Msg("scraping target")

	// Validation only primes the remote session; its answer never gates probing.
	if _, err := s.client.ValidateLocation(ctx, loc); err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}

	hit, err := s.client.Probe(ctx, domain.SearchQuery{Location: loc, Term: t.Subcategory})
	switch {
	case err == nil:
		recs, nerr := Normalize(hit.Body, t)
		if nerr != nil {
			log.Warn().Err(nerr).Str("url", hit.URL).Msg("unknown API response structure, creating sample data")
			observability.ObserveProbe("unknown_shape")
			return s.mocked(t), nil
		}
		log.Info().Str("url", hit.URL).Str("shape", hit.Shape).Int("count", len(recs)).Msg("live data normalized")
		observability.ObserveProbe("hit")
		observability.ObserveRecords(string(domain.OriginLive), len(recs))
		return recs, nil

	case errors.Is(err, domain.ErrProbeExhausted):
		log.Warn().Str("subcategory", t.Subcategory).Msg("all API endpoints failed, creating sample data")
		observability.ObserveProbe("exhausted")
		return s.mocked(t), nil

	default:
		return nil, err
	}
}

func (s *ScrapeService) mocked(t domain.ScrapeTarget) []domain.ProductRecord {
	recs := s.mock.Generate(t)
	observability.ObserveRecords(string(domain.OriginMock), len(recs))
	return recs
}

// sleepCtx waits for d or returns early (false) if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
