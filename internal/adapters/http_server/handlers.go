// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"blinkit_scraper/internal/domain"
)

// RunQueries is the read side the handlers need; app.QueryService satisfies it.
type RunQueries interface {
	GetRun(ctx context.Context, id string) (domain.Run, error)
	ListRuns(ctx context.Context, limit int) ([]domain.Run, error)
	ListProducts(ctx context.Context, runID string, q domain.ProductsQuery) (domain.ProductsPage, error)
}

type Handlers struct{ Q RunQueries }

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/v1/runs", h.listRuns)
	s.mux.Get("/v1/runs/{id}", h.getRun)
	s.mux.Get("/v1/runs/{id}/products", h.listProducts)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain errors onto problem responses.
func writeError(w http.ResponseWriter, err error, what string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", what+" not found")
	case errors.Is(err, domain.ErrInvalidInput):
		writeProblem(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		log.Error().Err(err).Str("resource", what).Msg("query failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	etag := `W/"` + hex.EncodeToString(sum[:]) + `"`
	return etag, body
}

// writeJSON answers 304 when the client already holds this representation.
func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

// parseLimit returns def when absent and false after writing a 400.
func parseLimit(w http.ResponseWriter, r *http.Request, def int) (int, bool) {
	ls := r.URL.Query().Get("limit")
	if ls == "" {
		return def, true
	}
	l, err := strconv.Atoi(ls)
	if err != nil || l <= 0 || l > 200 {
		writeProblem(w, http.StatusBadRequest, "Invalid limit", "limit must be an integer between 1 and 200")
		return 0, false
	}
	return l, true
}

func optional(r *http.Request, key string) *string {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return nil
	}
	return &v
}

func (h *Handlers) listRuns(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r, 20)
	if !ok {
		return
	}
	runs, err := h.Q.ListRuns(r.Context(), limit)
	if err != nil {
		writeError(w, err, "runs")
		return
	}
	if runs == nil {
		runs = []domain.Run{}
	}
	writeJSON(w, r, map[string]any{"items": runs})
}

func (h *Handlers) getRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.Q.GetRun(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err, "run")
		return
	}
	writeJSON(w, r, run)
}

func (h *Handlers) listProducts(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r, 50)
	if !ok {
		return
	}
	cursor := optional(r, "cursor")
	if cursor != nil {
		if n, err := strconv.ParseInt(*cursor, 10, 64); err != nil || n < 0 {
			writeProblem(w, http.StatusBadRequest, "Invalid cursor", "cursor must be a non-negative integer")
			return
		}
	}

	q := domain.ProductsQuery{
		Category:    optional(r, "category"),
		Subcategory: optional(r, "subcategory"),
		Limit:       limit,
		Cursor:      cursor,
	}
	out, err := h.Q.ListProducts(r.Context(), chi.URLParam(r, "id"), q)
	if err != nil {
		writeError(w, err, "run")
		return
	}
	if out.Items == nil {
		out.Items = []domain.StoredProduct{}
	}
	writeJSON(w, r, out)
}
