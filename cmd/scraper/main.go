package main

import (
	"context"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"blinkit_scraper/internal/adapters/blinkit"
	"blinkit_scraper/internal/adapters/csvexport"
	"blinkit_scraper/internal/adapters/observability"
	"blinkit_scraper/internal/adapters/s3export"
	"blinkit_scraper/internal/adapters/session"
	"blinkit_scraper/internal/app"
	"blinkit_scraper/internal/shared"
	mysqlrepo "blinkit_scraper/internal/storage/mysql"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := shared.Load()

	// 1) initialize global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	observability.Serve(cfg.MetricsAddr)

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	// one source for user agents and placeholder data, so a seed replays a run
	rng := rand.New(rand.NewPCG(seed, seed))

	log.Info().
		Str("base", cfg.BaseURL).
		Str("output", cfg.OutputPath).
		Uint64("seed", seed).
		Int("targets", len(shared.DefaultTargets)).
		Msg("scraper starting")

	sessions := session.NewBuilder(session.DefaultProfile(), rng, nil)
	client, err := blinkit.New(cfg.BaseURL, sessions, blinkit.Options{
		ProbeTimeout:    cfg.ProbeTimeout,
		ValidateTimeout: cfg.ValidateTimeout,
		MaxRPS:          cfg.MaxRPS,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize catalogue client")
	}

	svc := app.NewScrapeService(client, app.NewMockGenerator(rng), csvexport.New(cfg.OutputPath), cfg.Pause)

	if cfg.MySQLDSN != "" {
		db, err := mysqlrepo.Open(cfg.MySQLDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("cannot open database")
		}
		defer db.Close()
		if err := db.PingContext(ctx); err != nil {
			log.Warn().Err(err).Msg("db.Ping failed, run archive disabled")
		} else {
			log.Info().Msg("db ping ok")
			svc.WithArchive(mysqlrepo.New(db))
		}
	}

	if cfg.S3Bucket != "" {
		up, err := s3export.New(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3Prefix, log.Logger)
		if err != nil {
			log.Warn().Err(err).Msg("S3 upload disabled")
		} else {
			svc.WithUploader(up)
		}
	}

	run, _, err := svc.Run(ctx, shared.DefaultTargets)
	if err != nil {
		log.Error().Err(err).Str("run", run.ID).Msg("scrape failed")
		os.Exit(1)
	}

	log.Info().
		Str("run", run.ID).
		Int("records", run.Records).
		Int("mock_records", run.MockRecords).
		Dur("took", run.FinishedAt.Sub(run.StartedAt)).
		Msg("scrape completed")
}
