// solar-compare - Cross-country comparison of cleaned station data
//
// Loads the cleaned station exports, prints per-country summary
// statistics for the irradiance columns, tests whether average GHI
// differs between countries (one-way ANOVA), and ranks the countries
// by average GHI.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/solar-compare ./cmd/solar-compare

package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/moonlight-energy/solar-data-apps/internal/common"
	"github.com/moonlight-energy/solar-data-apps/internal/irradiance"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

// CountryStats holds per-country irradiance statistics. Metrics are
// keyed by column name (GHI/DNI/DHI).
type CountryStats struct {
	Country string
	Rows    int
	Mean    map[string]float64
	Median  map[string]float64
	Std     map[string]float64
	GHI     []float64
}

func loadCountry(cleanDir string, st irradiance.Station) (CountryStats, error) {
	path := filepath.Join(cleanDir, st.CleanFile)
	readings, _, err := irradiance.LoadFile(path)
	if err != nil {
		return CountryStats{}, fmt.Errorf("load %s: %w", path, err)
	}
	if len(readings) == 0 {
		return CountryStats{}, fmt.Errorf("no rows in %s", path)
	}

	stats := CountryStats{
		Country: st.Country,
		Rows:    len(readings),
		Mean:    make(map[string]float64),
		Median:  make(map[string]float64),
		Std:     make(map[string]float64),
	}

	for _, col := range irradiance.IrradianceColumns {
		values := irradiance.Column(readings, col)
		stats.Mean[col] = irradiance.Mean(values)
		stats.Median[col] = irradiance.Median(values)
		stats.Std[col] = irradiance.Std(values)
	}
	stats.GHI = irradiance.Column(readings, "GHI")

	return stats, nil
}

func writeComparisonCSV(path string, countries []CountryStats) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	header := []string{"Country"}
	for _, col := range irradiance.IrradianceColumns {
		header = append(header, col+"_mean", col+"_median", col+"_std")
	}
	if err := w.Write(header); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}

	for _, c := range countries {
		record := []string{c.Country}
		for _, col := range irradiance.IrradianceColumns {
			record = append(record,
				strconv.FormatFloat(c.Mean[col], 'f', 2, 64),
				strconv.FormatFloat(c.Median[col], 'f', 2, 64),
				strconv.FormatFloat(c.Std[col], 'f', 2, 64))
		}
		if err := w.Write(record); err != nil {
			f.Close()
			os.Remove(tmpPath)
			return err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, path)
}

func main() {
	cfg := common.DefaultConfig()

	cleanDir := flag.String("clean-dir", cfg.CleanDataDir(), "Cleaned data directory")
	outFile := flag.String("out", "", "Comparison CSV output path (default <clean-dir>/summary_statistics_comparison.csv)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "solar-compare v%s - Cross-Country Comparison\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Compares cleaned station datasets across countries:\n")
		fmt.Fprintf(os.Stderr, "  - Mean/median/std per country for GHI, DNI, DHI\n")
		fmt.Fprintf(os.Stderr, "  - One-way ANOVA on GHI (significance at p < %.2f)\n", irradiance.SignificanceLevel)
		fmt.Fprintf(os.Stderr, "  - Ranking by average GHI\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if *outFile == "" {
		*outFile = filepath.Join(*cleanDir, "summary_statistics_comparison.csv")
	}

	log.Println("=========================================================")
	log.Printf("Solar Compare v%s", Version)
	log.Println("=========================================================")
	log.Printf("Clean dir: %s", *cleanDir)

	startTime := time.Now()
	var countries []CountryStats

	for _, st := range irradiance.Stations {
		stats, err := loadCountry(*cleanDir, st)
		if err != nil {
			log.Fatalf("[%s] %v", st.Slug, err)
		}
		log.Printf("[%s] Loaded %d rows", st.Slug, stats.Rows)
		countries = append(countries, stats)
	}

	// Summary table
	fmt.Printf("\nSummary statistics by country:\n")
	fmt.Printf("  %-14s", "Country")
	for _, col := range irradiance.IrradianceColumns {
		fmt.Printf(" %10s %10s %10s", col+" mean", col+" med", col+" std")
	}
	fmt.Println()
	for _, c := range countries {
		fmt.Printf("  %-14s", c.Country)
		for _, col := range irradiance.IrradianceColumns {
			fmt.Printf(" %10.2f %10.2f %10.2f", c.Mean[col], c.Median[col], c.Std[col])
		}
		fmt.Println()
	}

	if err := writeComparisonCSV(*outFile, countries); err != nil {
		log.Fatalf("Write comparison CSV failed: %v", err)
	}
	log.Printf("Wrote %s", *outFile)

	// ANOVA on GHI across countries
	groups := make([][]float64, len(countries))
	for i, c := range countries {
		groups[i] = c.GHI
	}

	result, err := irradiance.OneWayANOVA(groups...)
	if err != nil {
		log.Fatalf("ANOVA failed: %v", err)
	}

	fmt.Printf("\nOne-way ANOVA on GHI:\n")
	fmt.Printf("  F = %.4f (df %d, %d), p = %.4g\n", result.F, result.DFBetween, result.DFWithin, result.P)
	if result.Significant() {
		fmt.Printf("  Average GHI differs significantly between countries (p < %.2f).\n", irradiance.SignificanceLevel)
	} else {
		fmt.Printf("  No significant difference in average GHI between countries (p >= %.2f).\n", irradiance.SignificanceLevel)
	}

	// Ranking by average GHI
	ranked := make([]CountryStats, len(countries))
	copy(ranked, countries)
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].Mean["GHI"] > ranked[j].Mean["GHI"]
	})

	fmt.Printf("\nRanking by average GHI:\n")
	for i, c := range ranked {
		fmt.Printf("  %d. %-14s %.2f W/m2\n", i+1, c.Country, c.Mean["GHI"])
	}

	log.Println()
	log.Println("=========================================================")
	log.Println("Comparison Summary")
	log.Println("=========================================================")
	log.Printf("Countries: %d", len(countries))
	log.Printf("Output:    %s", *outFile)
	log.Printf("Elapsed:   %v", time.Since(startTime).Round(time.Millisecond))
	log.Println("=========================================================")
}
