package dashboard

import (
	"embed"
	"encoding/json"
	"io/fs"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed assets
var assetsFS embed.FS

// Server serves the dashboard API and the embedded web page.
type Server struct {
	store   Store
	version string
}

// NewServer creates a dashboard server backed by the given store.
func NewServer(store Store, version string) *Server {
	return &Server{store: store, version: version}
}

// Handler builds the route tree.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/countries", s.handleCountries)
		r.Get("/summary", s.handleSummary)
		r.Get("/ghi/distribution", s.handleDistribution)
	})

	assets, err := fs.Sub(assetsFS, "assets")
	if err != nil {
		panic(err) // embed layout is fixed at build time
	}
	r.Handle("/*", http.FileServer(http.FS(assets)))

	return r
}

// HealthResponse is the /healthz contract.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		log.Printf("health check failed: %v", err)
		writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable", Version: s.version})
		return
	}
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: s.version})
}

// CountriesResponse is the /api/v1/countries contract.
type CountriesResponse struct {
	Countries []string `json:"countries"`
}

func (s *Server) handleCountries(w http.ResponseWriter, r *http.Request) {
	countries, err := s.store.Countries(r.Context())
	if err != nil {
		serverError(w, "countries query failed", err)
		return
	}
	writeJSON(w, http.StatusOK, CountriesResponse{Countries: countries})
}

// SummaryResponse is the /api/v1/summary contract.
type SummaryResponse struct {
	Summaries []CountrySummary `json:"summaries"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.Summary(r.Context(), countryFilter(r))
	if err != nil {
		serverError(w, "summary query failed", err)
		return
	}
	writeJSON(w, http.StatusOK, SummaryResponse{Summaries: summaries})
}

// DistributionResponse is the /api/v1/ghi/distribution contract.
type DistributionResponse struct {
	Distributions []Distribution `json:"distributions"`
}

func (s *Server) handleDistribution(w http.ResponseWriter, r *http.Request) {
	dists, err := s.store.GHIDistribution(r.Context(), countryFilter(r))
	if err != nil {
		serverError(w, "distribution query failed", err)
		return
	}
	writeJSON(w, http.StatusOK, DistributionResponse{Distributions: dists})
}

// countryFilter parses the comma-separated "countries" query parameter.
// Blank entries are dropped; an empty result means no filter.
func countryFilter(r *http.Request) []string {
	raw := r.URL.Query().Get("countries")
	if raw == "" {
		return nil
	}
	var filter []string
	for _, c := range strings.Split(raw, ",") {
		if c = strings.TrimSpace(c); c != "" {
			filter = append(filter, c)
		}
	}
	return filter
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("response encode failed: %v", err)
	}
}

func serverError(w http.ResponseWriter, msg string, err error) {
	log.Printf("%s: %v", msg, err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
