// internal/adapters/blinkit/client.go
package blinkit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"blinkit_scraper/internal/adapters/observability"
	"blinkit_scraper/internal/adapters/session"
	"blinkit_scraper/internal/domain"
)

const service = "blinkit"

type Options struct {
	ProbeTimeout    time.Duration // per search attempt, default 15s
	ValidateTimeout time.Duration // location validation, default 10s
	MaxRPS          float64       // outbound cap; 0 means unlimited
}

type Client struct {
	base            string
	sessions        *session.Builder
	rl              *rate.Limiter
	attempts        []Attempt
	probeTimeout    time.Duration
	validateTimeout time.Duration
}

func New(base string, sessions *session.Builder, opts Options) (*Client, error) {
	if sessions == nil {
		return nil, fmt.Errorf("session builder is required")
	}
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q", base)
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = 15 * time.Second
	}
	if opts.ValidateTimeout <= 0 {
		opts.ValidateTimeout = 10 * time.Second
	}
	limit := rate.Inf
	if opts.MaxRPS > 0 {
		limit = rate.Limit(opts.MaxRPS)
	}
	base = strings.TrimRight(base, "/")
	return &Client{
		base:            base,
		sessions:        sessions,
		rl:              rate.NewLimiter(limit, 1),
		attempts:        Attempts(base),
		probeTimeout:    opts.ProbeTimeout,
		validateTimeout: opts.ValidateTimeout,
	}, nil
}

var (
	ErrForbidden = errors.New("blinkit: forbidden")
	ErrBadJSON   = errors.New("blinkit: body is not JSON")
)

// StatusError is any non-200 answer. errors.Is(err, ErrForbidden) holds for 403.
type StatusError struct {
	Status int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("blinkit: status %d", e.Status)
	}
	return fmt.Sprintf("blinkit: status %d: %s", e.Status, e.Detail)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrForbidden && e.Status == http.StatusForbidden
}

// ---- Public API ----

// ValidateLocation asks the catalogue to accept the delivery location. It
// always starts a fresh session; the answer is only logged by callers.
func (c *Client) ValidateLocation(ctx context.Context, loc domain.Location) (map[string]any, error) {
	sess := c.sessions.Build()
	params := url.Values{
		"lat":     {coord(loc.Lat)},
		"lng":     {coord(loc.Lng)},
		"pincode": {loc.Pincode},
	}

	body, status, err := c.getJSON(ctx, sess, c.base+validatePath, params, c.validateTimeout)
	if status != 0 {
		log.Info().Int("status", status).Str("pincode", loc.Pincode).Msg("location validation status")
	}
	if err != nil {
		log.Warn().Err(err).Str("pincode", loc.Pincode).Msg("location validation failed")
		return nil, err
	}
	out, ok := body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: location payload is %T", ErrBadJSON, body)
	}
	return out, nil
}

// Probe walks every (search path, parameter shape) combination in order and
// returns the first HTTP 200 whose body parses as JSON. A new session is built
// before each search path. Every failure just moves on to the next attempt;
// ErrProbeExhausted comes back when none is left.
func (c *Client) Probe(ctx context.Context, q domain.SearchQuery) (domain.ProbeHit, error) {
	var (
		sess    *session.Session
		lastURL string
	)
	for _, a := range c.attempts {
		if a.URL != lastURL {
			sess = c.sessions.Build()
			lastURL = a.URL
		}

		params, err := a.Shape.Build(q)
		if err != nil {
			log.Warn().Err(err).Str("shape", a.Shape.Name).Msg("cannot encode parameters")
			continue
		}

		log.Info().Str("url", a.URL).Str("shape", a.Shape.Name).Str("params", params.Encode()).Msg("trying endpoint")
		body, status, err := c.getJSON(ctx, sess, a.URL, params, c.probeTimeout)
		if ctx.Err() != nil {
			return domain.ProbeHit{}, ctx.Err()
		}
		if err != nil {
			log.Info().Err(err).Str("url", a.URL).Str("shape", a.Shape.Name).Int("status", status).Msg("endpoint attempt failed")
			continue
		}

		log.Info().Str("url", a.URL).Str("shape", a.Shape.Name).Msg("endpoint answered")
		return domain.ProbeHit{URL: a.URL, Shape: a.Shape.Name, Body: body}, nil
	}
	return domain.ProbeHit{}, domain.ErrProbeExhausted
}

// ---- Internals ----

// getJSON performs one paced GET and decodes a 200 body. status is 0 when no
// response came back at all.
func (c *Client) getJSON(ctx context.Context, sess *session.Session, u string, params url.Values, timeout time.Duration) (any, int, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, 0, err
	}

	start := time.Now()
	resp, err := sess.Get(ctx, u, params, timeout)
	if err != nil {
		observability.ObserveExternal(service, endpointLabel(u), 0, time.Since(start))
		return nil, 0, err
	}
	observability.ObserveExternal(service, endpointLabel(u), resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, &StatusError{Status: resp.StatusCode, Detail: summarize(resp)}
	}
	v, err := decodeJSON(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return v, resp.StatusCode, nil
}

// decodeJSON parses exactly one JSON document, keeping numbers as json.Number.
func decodeJSON(b []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadJSON, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after document", ErrBadJSON)
	}
	return v, nil
}

func endpointLabel(u string) string {
	if p, err := url.Parse(u); err == nil && p.Path != "" {
		return p.Path
	}
	return u
}
