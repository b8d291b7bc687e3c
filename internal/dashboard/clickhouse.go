package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/moonlight-energy/solar-data-apps/internal/common"
)

// ClickHouseStore serves dashboard queries from the solar readings table.
type ClickHouseStore struct {
	conn  driver.Conn
	table string
}

// NewClickHouseStore connects to ClickHouse using the shared config.
func NewClickHouseStore(cfg *common.Config) (*ClickHouseStore, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.ClickHouseHost, cfg.ClickHousePort)},
		Auth: clickhouse.Auth{
			Database: cfg.ClickHouseDatabase,
			Username: cfg.ClickHouseUser,
			Password: cfg.ClickHousePassword,
		},
		Settings: clickhouse.Settings{
			"max_execution_time": 60,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return nil, fmt.Errorf("clickhouse connection failed: %w", err)
	}

	return &ClickHouseStore{
		conn:  conn,
		table: fmt.Sprintf("%s.readings", cfg.ClickHouseDatabase),
	}, nil
}

// Close releases the connection pool.
func (s *ClickHouseStore) Close() error {
	return s.conn.Close()
}

// Ping implements Store.
func (s *ClickHouseStore) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

// Countries implements Store.
func (s *ClickHouseStore) Countries(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf("SELECT DISTINCT country FROM %s ORDER BY country", s.table)
	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var countries []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		countries = append(countries, c)
	}
	return countries, rows.Err()
}

// Summary implements Store.
func (s *ClickHouseStore) Summary(ctx context.Context, countries []string) ([]CountrySummary, error) {
	query := fmt.Sprintf(
		"SELECT country, round(avg(ghi), 2) AS avg_ghi, count() AS readings FROM %s%s GROUP BY country ORDER BY avg_ghi DESC",
		s.table, countryWhere(countries))

	rows, err := s.conn.Query(ctx, query, countryArgs(countries)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []CountrySummary
	for rows.Next() {
		var cs CountrySummary
		if err := rows.Scan(&cs.Country, &cs.AvgGHI, &cs.Readings); err != nil {
			return nil, err
		}
		summaries = append(summaries, cs)
	}
	return summaries, rows.Err()
}

// GHIDistribution implements Store.
func (s *ClickHouseStore) GHIDistribution(ctx context.Context, countries []string) ([]Distribution, error) {
	query := fmt.Sprintf(
		"SELECT country, min(ghi), quantile(0.25)(ghi), quantile(0.5)(ghi), quantile(0.75)(ghi), max(ghi), count() "+
			"FROM %s%s GROUP BY country ORDER BY country",
		s.table, countryWhere(countries))

	rows, err := s.conn.Query(ctx, query, countryArgs(countries)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dists []Distribution
	for rows.Next() {
		var d Distribution
		if err := rows.Scan(&d.Country, &d.Min, &d.Q1, &d.Median, &d.Q3, &d.Max, &d.Count); err != nil {
			return nil, err
		}
		dists = append(dists, d)
	}
	return dists, rows.Err()
}

func countryWhere(countries []string) string {
	if len(countries) == 0 {
		return ""
	}
	return " WHERE country IN (?)"
}

func countryArgs(countries []string) []any {
	if len(countries) == 0 {
		return nil
	}
	return []any{countries}
}
