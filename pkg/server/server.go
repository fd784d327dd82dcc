// Package server exposes collections and their derived views over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"sort"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"tableflip.dev/sitelog/pkg/app"
	"tableflip.dev/sitelog/pkg/collection"
	"tableflip.dev/sitelog/pkg/site"
)

// Server serves /api/{resource} (raw collections) and
// /api/{feature}/view (filtered and sorted) for one Service.
type Server struct {
	svc    *app.Service
	router *mux.Router
	log    zerolog.Logger
}

// ViewResponse is the body of /api/{feature}/view.
type ViewResponse struct {
	Feature       site.Feature `json:"feature"`
	Scope         string       `json:"scope"`
	Total         int          `json:"total"`
	Count         int          `json:"count"`
	ActiveFilters bool         `json:"activeFilters"`
	Sort          string       `json:"sort"`
	SortLabel     string       `json:"sortLabel"`
	Facets        []string     `json:"facets"`
	SortFields    []string     `json:"sortFields"`
	Status        string       `json:"status"`
	Error         string       `json:"error,omitempty"`
	Items         []any        `json:"items"`
}

// New creates a server for svc.
func New(svc *app.Service) *Server {
	s := &Server{
		svc:    svc,
		router: mux.NewRouter(),
		log:    svc.Log.With().Str("component", "server").Logger(),
	}
	s.RegisterRoutes()
	return s
}

// RegisterRoutes registers all API routes.
func (s *Server) RegisterRoutes() {
	s.router.HandleFunc("/healthz", s.Health).Methods(http.MethodGet)
	s.router.HandleFunc("/api/{feature}/view", s.View).Methods(http.MethodGet)
	s.router.HandleFunc("/api/{feature}/facets/{facet}", s.FacetOptions).Methods(http.MethodGet)
	s.router.HandleFunc("/api/{resource}", s.Raw).Methods(http.MethodGet)
	s.router.Use(s.logRequests)
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Health handles GET /healthz.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Raw handles GET /api/{resource}?scope=.
func (s *Server) Raw(w http.ResponseWriter, r *http.Request) {
	f, err := site.ParseFeature(mux.Vars(r)["resource"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if s.svc.Raw == nil {
		http.Error(w, "no source configured", http.StatusServiceUnavailable)
		return
	}
	b, err := s.svc.Raw.FetchRaw(r.Context(), string(f), r.URL.Query().Get("scope"))
	if err != nil {
		s.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(b)
}

// View handles GET /api/{feature}/view. Every parameter other than scope,
// date, search and sort names a facet; values may repeat or be
// comma-separated.
func (s *Server) View(w http.ResponseWriter, r *http.Request) {
	f, err := site.ParseFeature(mux.Vars(r)["feature"])
	if err != nil || !f.IsPage() {
		http.Error(w, "unknown feature", http.StatusNotFound)
		return
	}
	params := r.URL.Query()
	scope := params.Get("scope")

	sess := s.svc.NewSession()
	defer sess.Close()
	if err := sess.Load(r.Context(), scope, f); err != nil {
		s.fail(w, err)
		return
	}
	page, _ := sess.Page(f)
	if err := page.Apply(QueryFromValues(params)); err != nil {
		s.fail(w, err)
		return
	}

	resp := ViewResponse{
		Feature:       f,
		Scope:         scope,
		Total:         page.Total(),
		Count:         page.Len(),
		ActiveFilters: page.HasActiveFilters(),
		Sort:          page.Sort().String(),
		SortLabel:     site.SortLabel(page.Sort()),
		Facets:        page.FacetNames(),
		SortFields:    page.SortFields(),
		Status:        page.Status().String(),
		Items:         page.Records(),
	}
	if err := page.Err(); err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}

// FacetOptions handles GET /api/{feature}/facets/{facet}.
func (s *Server) FacetOptions(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	f, err := site.ParseFeature(vars["feature"])
	if err != nil || !f.IsPage() {
		http.Error(w, "unknown feature", http.StatusNotFound)
		return
	}
	sess := s.svc.NewSession()
	defer sess.Close()
	if err := sess.Load(r.Context(), r.URL.Query().Get("scope"), f); err != nil {
		s.fail(w, err)
		return
	}
	page, _ := sess.Page(f)
	facet := vars["facet"]
	known := false
	for _, name := range page.FacetNames() {
		known = known || name == facet
	}
	if !known {
		http.Error(w, "unknown facet", http.StatusNotFound)
		return
	}
	opts := page.FacetOptions(facet)
	if opts == nil {
		opts = []site.Option{}
	}
	writeJSON(w, http.StatusOK, opts)
}

// QueryFromValues reads view parameters from a URL query.
func QueryFromValues(params url.Values) app.Query {
	q := app.Query{
		Date:   params.Get("date"),
		Search: params.Get("search"),
		Sort:   params.Get("sort"),
	}
	if q.Search == "" {
		q.Search = params.Get("q")
	}
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		switch name {
		case "scope", "date", "search", "q", "sort":
			continue
		}
		if q.Facets == nil {
			q.Facets = map[string][]string{}
		}
		q.Facets[name] = app.SplitValues(params[name]...)
	}
	return q
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	var qerr *app.QueryError
	switch {
	case errors.As(err, &qerr):
		http.Error(w, qerr.Error(), http.StatusBadRequest)
	case errors.Is(err, site.ErrUnknownFeature):
		http.Error(w, err.Error(), http.StatusNotFound)
	case collection.IsFatal(err):
		s.log.Warn().Err(err).Msg("upstream refused request")
		http.Error(w, err.Error(), http.StatusBadGateway)
	default:
		s.log.Error().Err(err).Msg("request failed")
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	}
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("request")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
