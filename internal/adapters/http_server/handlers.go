package httpserver

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"review_analyzer/internal/adapters/observability"
	"review_analyzer/internal/app"
	"review_analyzer/internal/domain"
)

const maxFormBytes = 1 << 20

type Handlers struct {
	Q *app.QueryService
	C *app.CommandService
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.Get("/", h.listReviews)
	s.mux.Post("/", h.submitReview)
	s.mux.Options("/", preflight)
}

// preflight answers CORS preflights for the methods "/" serves. Anything else,
// plain OPTIONS included, is not allowed.
func preflight(w http.ResponseWriter, r *http.Request) {
	switch r.Header.Get("Access-Control-Request-Method") {
	case http.MethodGet, http.MethodPost:
		w.WriteHeader(http.StatusNoContent)
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeJSON renders v with two-space indentation.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Error().Err(err).Msg("marshal JSON response failed")
		status = http.StatusInternalServerError
		body = []byte(`{"error": "failed to encode response"}`)
	}
	writeBody(w, status, body)
}

func writeBody(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(status)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Msg("write response body failed")
	}
}

// calcETagAndBody marshals once and hashes once, returning both ETag and body.
func calcETagAndBody(v any) (string, []byte, error) {
	body, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", nil, err
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body, nil
}

func (h *Handlers) listReviews(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, err := domain.ParseFilter(q.Get("location"), q.Get("start_date"), q.Get("end_date"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	out, err := h.Q.ListReviews(r.Context(), f)
	if err != nil {
		log.Error().Err(err).Msg("list reviews failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	etag, body, err := calcETagAndBody(out)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	// If client already has this version, short-circuit.
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	writeBody(w, http.StatusOK, body)
}

func (h *Handlers) submitReview(w http.ResponseWriter, r *http.Request) {
	// The body is parsed as a URL-encoded form whatever the Content-Type says.
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxFormBytes))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	form := parseForm(string(raw))

	out, err := h.C.SubmitReview(r.Context(), app.Submission{
		Location:   form.Get("Location"),
		ReviewBody: form.Get("ReviewBody"),
	})
	switch {
	case errors.Is(err, domain.ErrMissingFields):
		writeError(w, http.StatusBadRequest, "Location and ReviewBody are required")
		return
	case errors.Is(err, domain.ErrInvalidLocation):
		writeError(w, http.StatusBadRequest, "Invalid location")
		return
	case err != nil:
		log.Error().Err(err).Msg("submit review failed")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	observability.ObserveReviewCreated(out.Location)
	writeJSON(w, http.StatusCreated, out)
}

// parseForm decodes a URL-encoded body leniently: a pair with a bad escape
// keeps its raw text, and invalid UTF-8 becomes U+FFFD so the stored text is
// exactly what JSON can echo back.
func parseForm(raw string) url.Values {
	form := url.Values{}
	for _, pair := range strings.Split(raw, "&") {
		if pair == "" {
			continue
		}
		k, v, _ := strings.Cut(pair, "=")
		form.Add(formUnescape(k), formUnescape(v))
	}
	return form
}

func formUnescape(s string) string {
	u, err := url.QueryUnescape(s)
	if err != nil {
		u = strings.ReplaceAll(s, "+", " ")
	}
	return strings.ToValidUTF8(u, "\uFFFD")
}
