package dashboard_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonlight-energy/solar-data-apps/internal/dashboard"
)

// stubStore serves canned cross-country metrics and records the
// country filter it was called with.
type stubStore struct {
	countries  []string
	summaries  []dashboard.CountrySummary
	dists      []dashboard.Distribution
	pingErr    error
	queryErr   error
	lastFilter []string
}

func (s *stubStore) Countries(ctx context.Context) ([]string, error) {
	return s.countries, s.queryErr
}

func (s *stubStore) Summary(ctx context.Context, countries []string) ([]dashboard.CountrySummary, error) {
	s.lastFilter = countries
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.summaries, nil
}

func (s *stubStore) GHIDistribution(ctx context.Context, countries []string) ([]dashboard.Distribution, error) {
	s.lastFilter = countries
	if s.queryErr != nil {
		return nil, s.queryErr
	}
	return s.dists, nil
}

func (s *stubStore) Ping(ctx context.Context) error {
	return s.pingErr
}

func newTestStore() *stubStore {
	return &stubStore{
		countries: []string{"Benin", "Sierra Leone", "Togo"},
		summaries: []dashboard.CountrySummary{
			{Country: "Benin", AvgGHI: 236.23, Readings: 515518},
			{Country: "Togo", AvgGHI: 223.22, Readings: 513521},
			{Country: "Sierra Leone", AvgGHI: 185.03, Readings: 510241},
		},
		dists: []dashboard.Distribution{
			{Country: "Benin", Min: -12.1, Q1: 0.6, Median: 2.2, Q3: 441.3, Max: 1413, Count: 515518},
		},
	}
}

func TestHandleSummary(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		url        string
		wantFilter []string
		wantRows   int
	}{
		{
			name:       "no filter means all countries",
			url:        "/api/v1/summary",
			wantFilter: nil,
			wantRows:   3,
		},
		{
			name:       "country filter forwarded",
			url:        "/api/v1/summary?countries=Benin,Togo",
			wantFilter: []string{"Benin", "Togo"},
			wantRows:   3, // stub ignores the filter; the contract is the pass-through
		},
		{
			name:       "blank entries dropped",
			url:        "/api/v1/summary?countries=Benin,%20,",
			wantFilter: []string{"Benin"},
			wantRows:   3,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := newTestStore()
			srv := dashboard.NewServer(store, "test")

			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			assert.Equal(t, tt.wantFilter, store.lastFilter)

			var resp dashboard.SummaryResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Len(t, resp.Summaries, tt.wantRows)

			// Ranking order comes from the store: highest average first.
			assert.Equal(t, "Benin", resp.Summaries[0].Country)
			assert.InDelta(t, 236.23, resp.Summaries[0].AvgGHI, 1e-9)
		})
	}
}

func TestHandleDistribution(t *testing.T) {
	t.Parallel()

	store := newTestStore()
	srv := dashboard.NewServer(store, "test")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/ghi/distribution?countries=Benin", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"Benin"}, store.lastFilter)

	var resp dashboard.DistributionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Distributions, 1)

	d := resp.Distributions[0]
	assert.Equal(t, "Benin", d.Country)
	assert.InDelta(t, 2.2, d.Median, 1e-9)
	assert.InDelta(t, 441.3, d.Q3, 1e-9)
}

func TestHandleCountries(t *testing.T) {
	t.Parallel()

	srv := dashboard.NewServer(newTestStore(), "test")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/countries", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp dashboard.CountriesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Benin", "Sierra Leone", "Togo"}, resp.Countries)
}

func TestHandleHealth(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		pingErr    error
		wantCode   int
		wantStatus string
	}{
		{"healthy", nil, http.StatusOK, "ok"},
		{"store down", errors.New("connection refused"), http.StatusServiceUnavailable, "unavailable"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := newTestStore()
			store.pingErr = tt.pingErr
			srv := dashboard.NewServer(store, "1.0.0")

			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rec := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rec, req)

			require.Equal(t, tt.wantCode, rec.Code)

			var resp dashboard.HealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, "1.0.0", resp.Version)
		})
	}
}

func TestStoreErrorsReturn500(t *testing.T) {
	t.Parallel()

	for _, url := range []string{"/api/v1/summary", "/api/v1/ghi/distribution", "/api/v1/countries"} {
		store := newTestStore()
		store.queryErr = errors.New("query timeout")
		srv := dashboard.NewServer(store, "test")

		req := httptest.NewRequest(http.MethodGet, url, nil)
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code, url)
	}
}

func TestIndexPageServed(t *testing.T) {
	t.Parallel()

	srv := dashboard.NewServer(newTestStore(), "test")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Solar Radiation Dashboard")
}
