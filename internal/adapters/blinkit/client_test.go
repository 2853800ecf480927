package blinkit_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"blinkit_scraper/internal/adapters/blinkit"
	"blinkit_scraper/internal/adapters/session"
	"blinkit_scraper/internal/domain"
)

// ---- helpers ----

type hit struct {
	path   string
	shape  string
	cookie bool
}

type recorder struct {
	mu   sync.Mutex
	hits []hit
}

func (r *recorder) add(h hit) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hits = append(r.hits, h)
}

func (r *recorder) all() []hit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]hit(nil), r.hits...)
}

// shapeOf names the parameter shape a request was built from.
func shapeOf(r *http.Request) string {
	q := r.URL.Query()
	switch {
	case q.Has("query"):
		return "query/latitude/offset"
	case q.Has("search"):
		return "search/lat/offset"
	case q.Has("page"):
		return "q/lat/page"
	case q.Has("q"):
		return "q/lat/offset"
	}
	return ""
}

func newClient(t *testing.T, base string) *blinkit.Client {
	t.Helper()
	rng := rand.New(rand.NewPCG(1, 2))
	b := session.NewBuilder(session.DefaultProfile(), rng, nil)
	cl, err := blinkit.New(base, b, blinkit.Options{ProbeTimeout: time.Second, ValidateTimeout: time.Second})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	return cl
}

var milkQuery = domain.SearchQuery{
	Location: domain.Location{Lat: 12.9716, Lng: 77.5946, Pincode: "560001"},
	Term:     "Milk",
}

// ---- tests ----

func TestAttempts_URLMajorOrder(t *testing.T) {
	as := blinkit.Attempts("https://blinkit.com/")
	if len(as) != 48 {
		t.Fatalf("expected 48 attempts, got %d", len(as))
	}
	if as[0].URL != "https://blinkit.com/api/v4/search/product" || as[0].Shape.Name != "q/lat/offset" {
		t.Fatalf("unexpected first attempt: %s %s", as[0].URL, as[0].Shape.Name)
	}
	if as[3].URL != as[0].URL || as[3].Shape.Name != "q/lat/page" {
		t.Fatalf("shapes should vary fastest: %s %s", as[3].URL, as[3].Shape.Name)
	}
	if as[4].URL != "https://blinkit.com/api/v4/search/product_suggestions" {
		t.Fatalf("second URL should start at index 4, got %s", as[4].URL)
	}
	if as[47].URL != "https://blinkit.com/api/v4/search/product_suggestions_similar_v10" {
		t.Fatalf("unexpected last URL %s", as[47].URL)
	}
}

func TestParamShapes_Encoding(t *testing.T) {
	want := []string{
		"lat=12.9716&limit=50&lng=77.5946&offset=0&pincode=560001&q=Milk",
		"latitude=12.9716&limit=50&longitude=77.5946&offset=0&pincode=560001&query=Milk",
		"lat=12.9716&limit=50&lng=77.5946&offset=0&pincode=560001&search=Milk",
		"lat=12.9716&lng=77.5946&page=1&pincode=560001&q=Milk&size=50",
	}
	for i, s := range blinkit.ParamShapes {
		v, err := s.Build(milkQuery)
		if err != nil {
			t.Fatalf("%s: %v", s.Name, err)
		}
		if got := v.Encode(); got != want[i] {
			t.Fatalf("%s: got %s want %s", s.Name, got, want[i])
		}
	}
}

func TestProbe_AllForbiddenIsExhausted(t *testing.T) {
	rec := &recorder{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(hit{path: r.URL.Path, shape: shapeOf(r)})
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	_, err := newClient(t, ts.URL).Probe(context.Background(), milkQuery)
	if !errors.Is(err, domain.ErrProbeExhausted) {
		t.Fatalf("expected ErrProbeExhausted, got %v", err)
	}

	hits := rec.all()
	if len(hits) != 48 {
		t.Fatalf("expected one request per attempt (48), got %d", len(hits))
	}
	for i, h := range hits {
		wantPath := blinkit.SearchPaths[i/4]
		wantShape := blinkit.ParamShapes[i%4].Name
		if h.path != wantPath || h.shape != wantShape {
			t.Fatalf("attempt %d: got %s %s, want %s %s", i, h.path, h.shape, wantPath, wantShape)
		}
	}
}

func TestProbe_LogsEveryAttemptAtInfo(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf).Level(zerolog.InfoLevel)
	defer func() { log.Logger = prev }()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// a non-403 failure must be as visible as a refusal
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	if _, err := newClient(t, ts.URL).Probe(context.Background(), milkQuery); !errors.Is(err, domain.ErrProbeExhausted) {
		t.Fatalf("expected ErrProbeExhausted, got %v", err)
	}

	counts := map[string]int{}
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var line struct {
			Level   string `json:"level"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(sc.Bytes(), &line); err != nil {
			t.Fatalf("log line is not JSON: %q", sc.Text())
		}
		if line.Level == "info" {
			counts[line.Message]++
		}
	}
	if counts["trying endpoint"] != 48 {
		t.Fatalf("expected 48 info attempt lines, got %d", counts["trying endpoint"])
	}
	if counts["endpoint attempt failed"] != 48 {
		t.Fatalf("expected 48 info failure lines, got %d", counts["endpoint attempt failed"])
	}
}

func TestProbe_StopsAtFirstJSON200(t *testing.T) {
	rec := &recorder{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(hit{path: r.URL.Path, shape: shapeOf(r)})
		if r.URL.Path == "/api/v4/search/product_suggestions" && r.URL.Query().Get("query") == "Milk" {
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"products": []any{map[string]any{"id": "m1"}}})
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	got, err := newClient(t, ts.URL).Probe(context.Background(), milkQuery)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.HasSuffix(got.URL, "/api/v4/search/product_suggestions") || got.Shape != "query/latitude/offset" {
		t.Fatalf("unexpected hit: %s %s", got.URL, got.Shape)
	}
	body, ok := got.Body.(map[string]any)
	if !ok || body["products"] == nil {
		t.Fatalf("unexpected body: %#v", got.Body)
	}
	if n := len(rec.all()); n != 6 {
		t.Fatalf("expected 6 requests (4 + 2), got %d", n)
	}
}

func TestProbe_UnparseableBodyMovesOn(t *testing.T) {
	rec := &recorder{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.add(hit{path: r.URL.Path, shape: shapeOf(r)})
		if r.URL.Path == "/api/v4/search/product" {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><title>Just a moment...</title></html>"))
			return
		}
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer ts.Close()

	got, err := newClient(t, ts.URL).Probe(context.Background(), milkQuery)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !strings.HasSuffix(got.URL, "/api/v4/search/product_suggestions") || got.Shape != "q/lat/offset" {
		t.Fatalf("unexpected hit: %s %s", got.URL, got.Shape)
	}
	if n := len(rec.all()); n != 5 {
		t.Fatalf("expected 5 requests, got %d", n)
	}
}

func TestProbe_FreshSessionPerSearchPath(t *testing.T) {
	rec := &recorder{}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := r.Cookie("srv")
		rec.add(hit{path: r.URL.Path, shape: shapeOf(r), cookie: err == nil})
		http.SetCookie(w, &http.Cookie{Name: "srv", Value: "1", Path: "/"})
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	_, _ = newClient(t, ts.URL).Probe(context.Background(), milkQuery)

	for i, h := range rec.all() {
		// the server cookie only survives within one search path
		wantCookie := i%4 != 0
		if h.cookie != wantCookie {
			t.Fatalf("attempt %d (%s %s): cookie=%v want %v", i, h.path, h.shape, h.cookie, wantCookie)
		}
	}
}

func TestProbe_CancelledContextStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var n int32
	var mu sync.Mutex
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		n++
		if n == 3 {
			cancel()
		}
		mu.Unlock()
		w.WriteHeader(http.StatusForbidden)
	}))
	defer ts.Close()

	_, err := newClient(t, ts.URL).Probe(ctx, milkQuery)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestValidateLocation(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v4/location/validate" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		q := r.URL.Query()
		if q.Get("pincode") == "400001" && q.Get("lat") == "19.076" && q.Get("lng") == "72.8777" {
			_, _ = w.Write([]byte(`{"serviceable":true}`))
			return
		}
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("<html><head><title>Access Denied</title></head></html>"))
	}))
	defer ts.Close()

	cl := newClient(t, ts.URL)

	got, err := cl.ValidateLocation(context.Background(), domain.Location{Lat: 19.0760, Lng: 72.8777, Pincode: "400001"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got["serviceable"] != true {
		t.Fatalf("unexpected payload: %+v", got)
	}

	_, err = cl.ValidateLocation(context.Background(), domain.Location{Lat: 1, Lng: 2, Pincode: "110001"})
	if !errors.Is(err, blinkit.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if !strings.Contains(err.Error(), "Access Denied") {
		t.Fatalf("expected page title in error, got %v", err)
	}
}

func TestNew_RejectsBadBase(t *testing.T) {
	b := session.NewBuilder(session.DefaultProfile(), nil, nil)
	if _, err := blinkit.New("not a url", b, blinkit.Options{}); err == nil {
		t.Fatalf("expected error for bad base URL")
	}
}
