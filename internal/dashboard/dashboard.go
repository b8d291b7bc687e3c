// Package dashboard provides the HTTP API and web page for exploring
// cleaned station data: country filtering, GHI distributions, and
// average-GHI rankings backed by ClickHouse.
package dashboard

import "context"

// CountrySummary is one row of the average-GHI ranking.
type CountrySummary struct {
	Country  string  `json:"country"`
	AvgGHI   float64 `json:"avgGhi"`
	Readings uint64  `json:"readings"`
}

// Distribution holds box-plot statistics for one country's GHI.
type Distribution struct {
	Country string  `json:"country"`
	Min     float64 `json:"min"`
	Q1      float64 `json:"q1"`
	Median  float64 `json:"median"`
	Q3      float64 `json:"q3"`
	Max     float64 `json:"max"`
	Count   uint64  `json:"count"`
}

// Store supplies aggregated metrics to the dashboard handlers.
// The production implementation queries ClickHouse; tests stub it.
type Store interface {
	// Countries lists the countries present in the readings table.
	Countries(ctx context.Context) ([]string, error)

	// Summary returns per-country average GHI, highest first.
	// An empty filter means all countries.
	Summary(ctx context.Context, countries []string) ([]CountrySummary, error)

	// GHIDistribution returns per-country box-plot statistics.
	// An empty filter means all countries.
	GHIDistribution(ctx context.Context, countries []string) ([]Distribution, error)

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error
}
