// solar-fetch - Download raw station measurement archives
//
// Data sources: minute-resolution ground-station CSVs for the
// MoonLight Energy Solutions West-Africa assessment (Benin/Malanville,
// Sierra Leone/Bumbuna, Togo/Dapaong).
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/solar-fetch ./cmd/solar-fetch

package main

import (
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/moonlight-energy/solar-data-apps/internal/common"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

// DataSource defines a raw station data source
type DataSource struct {
	Name     string
	URL      string
	Filename string
	Desc     string
}

var sources = []DataSource{
	{
		Name:     "benin",
		URL:      "https://data.moonlight.energy/solar/raw/benin-malanville.csv.gz",
		Filename: "benin-malanville.csv.gz",
		Desc:     "Benin Malanville station (minute resolution)",
	},
	{
		Name:     "sierra_leone",
		URL:      "https://data.moonlight.energy/solar/raw/sierraleone-bumbuna.csv.gz",
		Filename: "sierraleone-bumbuna.csv.gz",
		Desc:     "Sierra Leone Bumbuna station (minute resolution)",
	},
	{
		Name:     "togo",
		URL:      "https://data.moonlight.energy/solar/raw/togo-dapaong_qc.csv.gz",
		Filename: "togo-dapaong_qc.csv.gz",
		Desc:     "Togo Dapaong station (QC pass, minute resolution)",
	},
}

func downloadFile(url, destPath string, timeout time.Duration) error {
	client := &http.Client{
		Timeout: timeout,
	}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("HTTP GET failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	// Create temp file
	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file failed: %w", err)
	}

	n, err := io.Copy(f, resp.Body)
	f.Close()

	if err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("download failed: %w", err)
	}

	if err := verifyArchive(tmpPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("archive verification failed: %w", err)
	}

	// Atomic rename
	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename failed: %w", err)
	}

	fmt.Printf("  Downloaded %s (%d bytes)\n", filepath.Base(destPath), n)
	return nil
}

// verifyArchive decompresses gzip downloads end-to-end so the CRC is
// checked before the file replaces any previous copy.
func verifyArchive(path string) error {
	if !strings.HasSuffix(strings.ToLower(path), ".csv.gz.tmp") {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return err
	}
	defer gz.Close()

	_, err = io.Copy(io.Discard, gz)
	return err
}

func main() {
	cfg := common.DefaultConfig()

	destDir := flag.String("dest", cfg.RawDataDir(), "Destination directory")
	timeout := flag.Duration("timeout", 120*time.Second, "HTTP timeout per download")
	listSources := flag.Bool("list", false, "List available data sources")
	source := flag.String("source", "all", "Source to download (or 'all')")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "solar-fetch v%s - Station Archive Downloader\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Downloads raw station measurement archives.\n\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nData Sources:\n")
		for _, s := range sources {
			fmt.Fprintf(os.Stderr, "  %-15s %s\n", s.Name, s.Desc)
		}
	}

	flag.Parse()

	if *listSources {
		fmt.Printf("Available station data sources:\n\n")
		for _, s := range sources {
			fmt.Printf("  %-15s %s\n", s.Name, s.Desc)
			fmt.Printf("                  URL: %s\n", s.URL)
			fmt.Printf("                  File: %s\n\n", s.Filename)
		}
		return
	}

	fmt.Println("=========================================================")
	fmt.Printf("Solar Fetch v%s\n", Version)
	fmt.Println("=========================================================")
	fmt.Printf("Destination: %s\n", *destDir)
	fmt.Printf("Timeout:     %v\n", *timeout)
	fmt.Println()

	// Create destination directory
	if err := os.MkdirAll(*destDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Error: Cannot create directory: %v\n", err)
		os.Exit(1)
	}

	startTime := time.Now()
	downloaded := 0
	failed := 0

	for _, src := range sources {
		if *source != "all" && *source != src.Name {
			continue
		}

		destPath := filepath.Join(*destDir, src.Filename)
		fmt.Printf("[%s] Downloading from %s...\n", src.Name, src.URL)

		if err := downloadFile(src.URL, destPath, *timeout); err != nil {
			fmt.Printf("  ERROR: %v\n", err)
			failed++
		} else {
			downloaded++
		}
	}

	elapsed := time.Since(startTime)

	fmt.Println()
	fmt.Println("=========================================================")
	fmt.Println("Download Summary")
	fmt.Println("=========================================================")
	fmt.Printf("Downloaded: %d files\n", downloaded)
	fmt.Printf("Failed:     %d files\n", failed)
	fmt.Printf("Elapsed:    %v\n", elapsed.Round(time.Millisecond))
	fmt.Println("=========================================================")

	if failed > 0 {
		os.Exit(1)
	}
}
