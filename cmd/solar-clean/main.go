// solar-clean - Station EDA and cleaning pipeline
//
// Profiles each raw station dataset (summary statistics, missing-value
// report, correlation matrix, cleaning-impact table), applies the
// z-score outlier rules and median imputation, and exports the cleaned
// dataset as CSV (optionally Parquet).
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/solar-clean ./cmd/solar-clean

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/moonlight-energy/solar-data-apps/internal/common"
	"github.com/moonlight-energy/solar-data-apps/internal/irradiance"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

const NumWorkers = 3

func main() {
	cfg := common.DefaultConfig()

	rawDir := flag.String("raw-dir", cfg.RawDataDir(), "Raw data directory")
	outDir := flag.String("out-dir", cfg.CleanDataDir(), "Cleaned data output directory")
	station := flag.String("station", "all", "Station to process (country name, slug, or 'all')")
	parquetOut := flag.Bool("parquet", false, "Also export cleaned data as Parquet")
	workers := flag.Int("workers", NumWorkers, "Number of parallel station workers")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "solar-clean v%s - Station EDA and Cleaning Pipeline\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Pipeline per station:\n")
		fmt.Fprintf(os.Stderr, "  - Summary statistics and missing-value report\n")
		fmt.Fprintf(os.Stderr, "  - Z-score outlier detection (|z| > %.0f)\n", irradiance.ZScoreLimit)
		fmt.Fprintf(os.Stderr, "  - Drop rows with bad irradiance, median-impute module/wind columns\n")
		fmt.Fprintf(os.Stderr, "  - Export <station>_clean.csv\n\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nStations:\n")
		for _, s := range irradiance.Stations {
			fmt.Fprintf(os.Stderr, "  %-15s %s (%s)\n", s.Slug, s.Country, s.Site)
		}
	}

	flag.Parse()

	var stations []irradiance.Station
	if *station == "all" {
		stations = irradiance.Stations
	} else {
		s, ok := irradiance.StationByCountry(*station)
		if !ok {
			log.Fatalf("Unknown station %q (try -station all)", *station)
		}
		stations = []irradiance.Station{s}
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("Cannot create output directory: %v", err)
	}

	log.Println("=========================================================")
	log.Printf("Solar Clean v%s", Version)
	log.Println("=========================================================")
	log.Printf("Raw dir:   %s", *rawDir)
	log.Printf("Out dir:   %s", *outDir)
	log.Printf("Stations:  %d | Workers: %d", len(stations), *workers)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("\nShutdown requested...")
		cancel()
	}()

	progress := common.NewProgress()
	progress.StartReporter()

	startTime := time.Now()

	failed := runStations(ctx, stations, *workers, func(st irradiance.Station) error {
		return processStation(ctx, st, *rawDir, *outDir, *parquetOut, progress)
	})

	progress.StopReporter()

	elapsed := time.Since(startTime)

	log.Println()
	log.Println("=========================================================")
	log.Println("Cleaning Summary")
	log.Println("=========================================================")
	log.Printf("Stations:   %d processed, %d failed", progress.FilesComplete(), failed)
	log.Printf("Total Rows: %d", progress.TotalRows())
	log.Printf("Elapsed:    %v", elapsed.Round(time.Millisecond))
	log.Println("=========================================================")

	if failed > 0 {
		os.Exit(1)
	}
}

// runStations dispatches stations to a bounded worker pool and returns
// the failure count. Scheduling stops once ctx is cancelled; stations
// already started run to completion.
func runStations(ctx context.Context, stations []irradiance.Station, workers int, fn func(irradiance.Station) error) int {
	var failed atomic.Int64
	sem := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for _, st := range stations {
		if ctx.Err() != nil {
			break
		}

		sem <- struct{}{}
		wg.Add(1)

		go func(st irradiance.Station) {
			defer func() { <-sem }()
			defer wg.Done()

			if err := fn(st); err != nil {
				log.Printf("[%s] ERROR: %v", st.Slug, err)
				failed.Add(1)
			}
		}(st)
	}

	wg.Wait()
	return int(failed.Load())
}

// findRawFile resolves the station's raw dataset, preferring the plain
// CSV over the gzip archive when both exist.
func findRawFile(rawDir string, st irradiance.Station) (string, error) {
	candidates := []string{
		filepath.Join(rawDir, st.RawFile),
		filepath.Join(rawDir, st.RawFile+".gz"),
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c, nil
		}
	}
	return "", fmt.Errorf("no raw file for %s (looked for %s[.gz] in %s)", st.Country, st.RawFile, rawDir)
}

func processStation(ctx context.Context, st irradiance.Station, rawDir, outDir string, parquetOut bool, progress *common.Progress) error {
	rawPath, err := findRawFile(rawDir, st)
	if err != nil {
		return err
	}

	log.Printf("[%s] Loading %s...", st.Slug, filepath.Base(rawPath))

	readings, stats, err := irradiance.LoadFile(rawPath)
	if err != nil {
		return fmt.Errorf("load failed: %w", err)
	}
	if len(readings) == 0 {
		return fmt.Errorf("no rows parsed from %s", rawPath)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	progress.AddRows(uint64(stats.SuccessfullyParsed))
	if info, err := os.Stat(rawPath); err == nil {
		progress.AddBytes(uint64(info.Size()))
	}

	flags := irradiance.DetectOutliers(readings, irradiance.ZScoreColumns)
	cleaned, cleanReport := irradiance.Clean(readings, flags)

	fmt.Print(buildStationReport(st, readings, cleaned, stats, cleanReport))

	cleanPath := filepath.Join(outDir, st.CleanFile)
	if err := irradiance.SaveCleanCSV(cleanPath, cleaned); err != nil {
		return fmt.Errorf("CSV export failed: %w", err)
	}
	log.Printf("[%s] Wrote %s (%d rows)", st.Slug, cleanPath, len(cleaned))

	if parquetOut {
		parquetPath := strings.TrimSuffix(cleanPath, ".csv") + ".parquet"
		if err := irradiance.SaveParquet(parquetPath, cleaned); err != nil {
			return fmt.Errorf("parquet export failed: %w", err)
		}
		log.Printf("[%s] Wrote %s", st.Slug, parquetPath)
	}

	progress.AddFile()
	return nil
}

// buildStationReport renders the per-station EDA text. Profiling
// sections (describe, missing, cleaning impact) cover the raw rows;
// the correlation matrix covers the cleaned rows.
func buildStationReport(st irradiance.Station, readings, cleaned []irradiance.Reading, stats *irradiance.ParseStats, cleanReport irradiance.CleanReport) string {
	var report strings.Builder
	fmt.Fprintf(&report, "\n=== %s (%s) ===\n", st.Country, st.Site)
	fmt.Fprintf(&report, "Rows parsed: %d (failed %d, missing cells %d)\n",
		stats.SuccessfullyParsed, stats.FailedRows, stats.MissingValues)
	fmt.Fprintf(&report, "Coverage:    %s .. %s\n",
		readings[0].Timestamp.Format("2006-01-02 15:04"),
		readings[len(readings)-1].Timestamp.Format("2006-01-02 15:04"))

	writeDescribeTable(&report, readings)
	writeMissingReport(&report, readings)

	fmt.Fprintf(&report, "\nCleaning:\n")
	fmt.Fprintf(&report, "  Rows in:          %d\n", cleanReport.RowsIn)
	fmt.Fprintf(&report, "  Rows kept:        %d\n", cleanReport.RowsKept)
	fmt.Fprintf(&report, "  Dropped outlier:  %d\n", cleanReport.DroppedOutlier)
	fmt.Fprintf(&report, "  Dropped missing:  %d\n", cleanReport.DroppedMissing)
	for _, col := range irradiance.ImputeColumns {
		fmt.Fprintf(&report, "  Imputed %-8s  %d cells (median %.2f)\n",
			col+":", cleanReport.Imputed[col], cleanReport.Medians[col])
	}

	writeCleaningImpact(&report, readings)
	writeCorrelationMatrix(&report, cleaned)

	return report.String()
}

func writeDescribeTable(w *strings.Builder, readings []irradiance.Reading) {
	fmt.Fprintf(w, "\nSummary statistics:\n")
	fmt.Fprintf(w, "  %-13s %8s %10s %10s %10s %10s %10s %10s %10s\n",
		"Column", "Count", "Mean", "Std", "Min", "25%", "50%", "75%", "Max")
	for _, col := range irradiance.NumericColumns {
		s := irradiance.Describe(irradiance.Column(readings, col))
		fmt.Fprintf(w, "  %-13s %8d %10.2f %10.2f %10.2f %10.2f %10.2f %10.2f %10.2f\n",
			col, s.Count, s.Mean, s.Std, s.Min, s.P25, s.P50, s.P75, s.Max)
	}
}

func writeMissingReport(w *strings.Builder, readings []irradiance.Reading) {
	missing := irradiance.BuildMissingReport(readings, irradiance.Columns)
	fmt.Fprintf(w, "\nMissing values (%d rows):\n", missing.TotalRows)
	for _, c := range missing.Columns {
		if c.Count == 0 {
			continue
		}
		fmt.Fprintf(w, "  %-14s %8d (%.2f%%)\n", c.Column, c.Count, c.Percent)
	}
	if over := missing.OverThreshold(); len(over) > 0 {
		names := make([]string, len(over))
		for i, c := range over {
			names[i] = c.Column
		}
		fmt.Fprintf(w, "  Columns over %.0f%% threshold: %s\n",
			irradiance.MissingThresholdPct, strings.Join(names, ", "))
	}
}

func writeCleaningImpact(w *strings.Builder, readings []irradiance.Reading) {
	impact := irradiance.BuildCleaningImpact(readings)
	fmt.Fprintf(w, "\nCleaning impact (module readings by wash flag):\n")
	fmt.Fprintf(w, "  %-10s %8s %10s %10s\n", "Cleaning", "Rows", "ModA", "ModB")
	for flag := 0; flag < 2; flag++ {
		fmt.Fprintf(w, "  %-10d %8d %10.2f %10.2f\n",
			flag, impact.Rows[flag], impact.ModA[flag], impact.ModB[flag])
	}
}

func writeCorrelationMatrix(w *strings.Builder, readings []irradiance.Reading) {
	cols := irradiance.CorrelationColumns
	matrix := irradiance.CorrelationMatrix(readings, cols)

	fmt.Fprintf(w, "\nCorrelation matrix:\n")
	fmt.Fprintf(w, "  %-7s", "")
	for _, col := range cols {
		fmt.Fprintf(w, " %6s", col)
	}
	fmt.Fprintln(w)
	for i, col := range cols {
		fmt.Fprintf(w, "  %-7s", col)
		for j := range cols {
			if math.IsNaN(matrix[i][j]) {
				fmt.Fprintf(w, " %6s", "-")
			} else {
				fmt.Fprintf(w, " %6.2f", matrix[i][j])
			}
		}
		fmt.Fprintln(w)
	}
}
