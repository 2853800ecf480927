// Package session builds HTTP sessions that present themselves like a desktop browser.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// maxBodyBytes caps how much of a response body is read into memory.
const maxBodyBytes = 16 << 20

// ErrBodyTooLarge is returned when a response body exceeds the builder's limit.
var ErrBodyTooLarge = errors.New("session: response body too large")

// Builder hands out fresh sessions. The random source and clock are injected so
// a seeded run picks the same user agents every time.
type Builder struct {
	profile   Profile
	rng       *rand.Rand
	now       func() time.Time
	transport http.RoundTripper
	bodyLimit int64
}

func NewBuilder(p Profile, rng *rand.Rand, now func() time.Time) *Builder {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1))
	}
	if now == nil {
		now = time.Now
	}
	return &Builder{profile: p.withDefaults(), rng: rng, now: now, bodyLimit: maxBodyBytes}
}

// WithTransport swaps the round tripper used by every session built afterwards.
func (b *Builder) WithTransport(rt http.RoundTripper) *Builder {
	b.transport = rt
	return b
}

// WithBodyLimit caps the raw bytes read per response; n <= 0 restores the default.
func (b *Builder) WithBodyLimit(n int64) *Builder {
	if n <= 0 {
		n = maxBodyBytes
	}
	b.bodyLimit = n
	return b
}

// Build returns a new session with a freshly drawn user agent and synthetic cookies.
func (b *Builder) Build() *Session {
	p := b.profile
	ua := p.UserAgents[b.rng.IntN(len(p.UserAgents))]

	h := http.Header{}
	h.Set("User-Agent", ua)
	h.Set("Accept", "application/json, text/plain, */*")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Accept-Encoding", "gzip, deflate, br")
	h.Set("Connection", "keep-alive")
	h.Set("Sec-Fetch-Dest", "empty")
	h.Set("Sec-Fetch-Mode", "cors")
	h.Set("Sec-Fetch-Site", "same-origin")
	h.Set("Cache-Control", "no-cache")
	h.Set("Pragma", "no-cache")
	h.Set("Referer", strings.TrimRight(p.Origin, "/")+"/")
	h.Set("Origin", strings.TrimRight(p.Origin, "/"))
	h.Set("DNT", "1")
	h.Set("Sec-CH-UA", p.SecCHUA)
	h.Set("Sec-CH-UA-Mobile", "?0")
	h.Set("Sec-CH-UA-Platform", p.Platform)
	h.Set("X-Requested-With", "XMLHttpRequest")

	ts := strconv.FormatInt(b.now().Unix(), 10)
	cookies := []*http.Cookie{
		{Name: "device_id", Value: "web_" + ts},
		{Name: "session_id", Value: ts},
		{Name: "browser", Value: "edge"},
		{Name: "platform", Value: "windows"},
	}

	// cookiejar.New only fails on a bad PublicSuffixList, and we pass none.
	jar, _ := cookiejar.New(nil)
	return &Session{
		headers: h,
		cookies: cookies,
		hc:      &http.Client{Jar: jar, Transport: b.transport},
		limit:   b.bodyLimit,
	}
}

// Session is one browser-like identity. It is not safe for concurrent use.
type Session struct {
	headers http.Header
	cookies []*http.Cookie
	hc      *http.Client
	limit   int64
}

// Response is a fully read, decoded HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

func (s *Session) UserAgent() string { return s.headers.Get("User-Agent") }
func (s *Session) Header() http.Header { return s.headers.Clone() }
func (s *Session) Cookies() []*http.Cookie { return append([]*http.Cookie(nil), s.cookies...) }

// Get issues one GET with the session headers and cookies. timeout bounds the
// whole exchange, body included; zero means no extra deadline beyond ctx.
func (s *Session) Get(ctx context.Context, rawURL string, params url.Values, timeout time.Duration) (*Response, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	target := rawURL
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header = s.headers.Clone()
	for _, c := range s.cookies {
		req.AddCookie(c)
	}

	resp, err := s.hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := readCapped(resp.Body, s.limit)
	if err != nil {
		return nil, fmt.Errorf("read body from %s (limit %d bytes): %w", rawURL, s.limit, err)
	}
	body, err := decodeBody(resp.Header.Get("Content-Encoding"), raw, s.limit)
	if err != nil {
		return nil, fmt.Errorf("decode body from %s: %w", rawURL, err)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}
