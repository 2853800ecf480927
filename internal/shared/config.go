package shared

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv   string
	LogLevel string

	BaseURL         string
	OutputPath      string
	Pause           time.Duration
	ProbeTimeout    time.Duration
	ValidateTimeout time.Duration
	Seed            uint64
	MaxRPS          float64

	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	CacheTTL    time.Duration

	S3Bucket string
	S3Region string
	S3Prefix string
}

// Load reads an optional .env file, then the environment. Malformed numbers
// fall back to their defaults with a warning; Validate catches the rest.
func Load() Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warn().Err(err).Msg("cannot read .env")
	}

	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not an integer, using default")
		}
		return def
	}
	atof := func(k string, def float64) float64 {
		if v := os.Getenv(k); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				return f
			}
			log.Warn().Str("key", k).Str("value", v).Msg("not a number, using default")
		}
		return def
	}

	c := Config{
		AppEnv:          env("APP_ENV", "prod"),
		LogLevel:        env("LOG_LEVEL", "info"),
		BaseURL:         env("BLINKIT_BASE_URL", "https://blinkit.com"),
		OutputPath:      env("OUTPUT_PATH", "blinkit_scraped_data_simple_edge.csv"),
		Pause:           time.Duration(atoi("SCRAPE_PAUSE_MS", 2000)) * time.Millisecond,
		ProbeTimeout:    time.Duration(atoi("PROBE_TIMEOUT_SECONDS", 15)) * time.Second,
		ValidateTimeout: time.Duration(atoi("VALIDATE_TIMEOUT_SECONDS", 10)) * time.Second,
		Seed:            uint64(atoi("RANDOM_SEED", 0)),
		MaxRPS:          atof("OUTBOUND_MAX_RPS", 0),
		HTTPAddr:        env("HTTP_ADDR", ":8080"),
		MetricsAddr:     env("METRICS_ADDR", ""),
		MySQLDSN:        env("MYSQL_DSN", ""),
		RedisAddr:       env("REDIS_ADDR", "localhost:6379"),
		RedisPass:       env("REDIS_PASSWORD", ""),
		RedisDB:         atoi("REDIS_DB", 0),
		CacheTTL:        time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,
		S3Bucket:        env("S3_BUCKET", ""),
		S3Region:        env("S3_REGION", "ap-south-1"),
		S3Prefix:        env("S3_PREFIX", "exports/"),
	}
	if c.MySQLDSN == "" {
		log.Info().Msg("MYSQL_DSN is empty, run archive disabled")
	}
	return c
}

// Validate rejects settings the scraper cannot run with.
func (c Config) Validate() error {
	var errs []error
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("BLINKIT_BASE_URL %q is not an absolute URL", c.BaseURL))
	}
	if c.OutputPath == "" {
		errs = append(errs, errors.New("OUTPUT_PATH is empty"))
	}
	if c.Pause < 0 {
		errs = append(errs, errors.New("SCRAPE_PAUSE_MS must not be negative"))
	}
	if c.ProbeTimeout <= 0 {
		errs = append(errs, errors.New("PROBE_TIMEOUT_SECONDS must be positive"))
	}
	if c.ValidateTimeout <= 0 {
		errs = append(errs, errors.New("VALIDATE_TIMEOUT_SECONDS must be positive"))
	}
	if c.MaxRPS < 0 {
		errs = append(errs, errors.New("OUTBOUND_MAX_RPS must not be negative"))
	}
	if c.CacheTTL < 0 {
		errs = append(errs, errors.New("CACHE_TTL_SECONDS must not be negative"))
	}
	if c.S3Bucket != "" && c.S3Region == "" {
		errs = append(errs, errors.New("S3_REGION is required when S3_BUCKET is set"))
	}
	return errors.Join(errs...)
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
