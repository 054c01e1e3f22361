// Package web serves the browser UI and the JSON API over the finder
// service
package web

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/gardonyia/basket/internal/finder"
	"github.com/gardonyia/basket/internal/metrics"
	"github.com/gardonyia/basket/internal/present"
	"github.com/gardonyia/basket/internal/search"
	"github.com/gardonyia/basket/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("index.html").Funcs(template.FuncMap{
	"deref":      func(p *int) int { return *p },
	"sourceLine": present.SourceLine,
}).ParseFS(templateFS, "templates/index.html"))

// Options configures the router
type Options struct {
	CORSOrigins []string
	Version     string
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	svc     *finder.Service
	version string
}

// NewHandler creates a new handler
func NewHandler(svc *finder.Service, version string) *Handler {
	return &Handler{svc: svc, version: version}
}

// NewRouter wires the UI, the API, health and metrics routes
func NewRouter(svc *finder.Service, opts Options) http.Handler {
	h := NewHandler(svc, opts.Version)

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", h.Index)
	r.Get("/sessions/{id}", h.SessionPage)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/search", h.SearchAPI)
		r.Get("/sessions/{id}", h.SessionAPI)
		r.Post("/sessions/{id}/select/{idx}", h.SelectAPI)
	})

	r.Get("/health", h.HealthCheck)
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// requestLogger logs each request with zerolog and counts it by route
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		metrics.RecordHTTPRequest(route, strconv.Itoa(status))

		log.Debug().
			Str("method", r.Method).
			Str("route", route).
			Int("status", status).
			Str("request_id", middleware.GetReqID(r.Context())).
			Dur("duration", time.Since(start)).
			Msg("HTTP request")
	})
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"service": "matchfinder",
		"version": h.version,
		"sources": h.svc.Sources(),
	})
}

type leagueOption struct {
	Value    string
	Label    string
	Selected bool
}

type pageData struct {
	Query      string
	Date       string
	Leagues    []leagueOption
	Error      string
	View       *present.View
	Configured []string
}

func (h *Handler) newPage(query, date, league string) pageData {
	if date == "" {
		date = time.Now().Format(search.DateLayout)
	}

	page := pageData{Query: query, Date: date}
	for _, l := range search.Leagues {
		page.Leagues = append(page.Leagues, leagueOption{
			Value:    string(l),
			Label:    l.DisplayName(),
			Selected: string(l) == league,
		})
	}
	for _, s := range h.svc.Sources() {
		page.Configured = append(page.Configured, s.DisplayName())
	}
	return page
}

// Index renders the search form and, when a query is given, its results
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := h.newPage(q.Get("query"), q.Get("date"), q.Get("league"))

	if _, submitted := q["query"]; submitted {
		state, err := h.svc.Search(r.Context(), q.Get("query"), q.Get("date"), q.Get("league"))
		if err != nil {
			page.Error = present.ValidationMessage(err)
			h.render(w, http.StatusBadRequest, page)
			return
		}
		view := present.NewView(state)
		page.View = &view
	}

	h.render(w, http.StatusOK, page)
}

// SessionPage renders a stored session, applying ?pick=N when present
func (h *Handler) SessionPage(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		page := h.newPage("", "", "")
		page.Error = "This search has expired. Please search again."
		h.render(w, http.StatusNotFound, page)
		return
	}

	page := h.newPage(state.Request.Query, state.Request.Day(), string(state.Request.League))
	status := http.StatusOK

	if pick := r.URL.Query().Get("pick"); pick != "" {
		idx, convErr := strconv.Atoi(pick)
		if convErr != nil {
			idx = -1
		}
		if state, err = h.svc.Select(r.Context(), state, idx); err != nil {
			page.Error = present.ValidationMessage(err)
			status = http.StatusBadRequest
		}
	}

	if state != nil {
		view := present.NewView(state)
		page.View = &view
	}
	h.render(w, status, page)
}

func (h *Handler) render(w http.ResponseWriter, status int, page pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, page); err != nil {
		log.Error().Err(err).Msg("Failed to render page")
		metrics.RecordError("web", "template")
	}
}

// SearchAPI runs a search and returns the new session as JSON
func (h *Handler) SearchAPI(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	state, err := h.svc.Search(r.Context(), q.Get("query"), q.Get("date"), q.Get("league"))
	if err != nil {
		h.respondFinderError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, present.NewView(state))
}

// SessionAPI returns a stored session as JSON
func (h *Handler) SessionAPI(w http.ResponseWriter, r *http.Request) {
	state, err := h.svc.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondFinderError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, present.NewView(state))
}

// SelectAPI picks a candidate and returns the session with its box score
func (h *Handler) SelectAPI(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "selection index must be a number")
		return
	}

	state, err := h.svc.SelectByID(r.Context(), chi.URLParam(r, "id"), idx)
	if err != nil {
		h.respondFinderError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, present.NewView(state))
}

func (h *Handler) respondFinderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, session.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrNoMatches):
		respondError(w, http.StatusConflict, present.MsgNoMatches)
	case errors.Is(err, search.ErrEmptyQuery),
		errors.Is(err, search.ErrInvalidDate),
		errors.Is(err, search.ErrUnknownLeague),
		errors.Is(err, session.ErrSelectionOutOfRange):
		respondError(w, http.StatusBadRequest, present.ValidationMessage(err))
	default:
		log.Error().Err(err).Msg("Request failed")
		metrics.RecordError("web", "internal")
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// ParseOrigins splits a comma separated CORS origin list
func ParseOrigins(s string) []string {
	var out []string
	for _, o := range strings.Split(s, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
