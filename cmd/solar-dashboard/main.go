// solar-dashboard - HTTP dashboard for cross-country solar comparison
//
// Serves the embedded dashboard page and a JSON API over the ingested
// ClickHouse readings: country list, average-GHI summary, and GHI
// distribution statistics, all filterable by country.
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/solar-dashboard ./cmd/solar-dashboard

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moonlight-energy/solar-data-apps/internal/common"
	"github.com/moonlight-energy/solar-data-apps/internal/dashboard"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := common.DefaultConfig()

	addr := flag.String("addr", cfg.DashboardAddr, "HTTP listen address")
	chHost := flag.String("ch-host", cfg.ClickHouseHost, "ClickHouse host")
	chPort := flag.Int("ch-port", cfg.ClickHousePort, "ClickHouse native port")
	chDB := flag.String("ch-db", cfg.ClickHouseDatabase, "ClickHouse database")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "solar-dashboard v%s - Solar Radiation Dashboard\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Endpoints:\n")
		fmt.Fprintf(os.Stderr, "  GET /                        Dashboard page\n")
		fmt.Fprintf(os.Stderr, "  GET /healthz                 Health check\n")
		fmt.Fprintf(os.Stderr, "  GET /api/v1/countries        Known countries\n")
		fmt.Fprintf(os.Stderr, "  GET /api/v1/summary          Average GHI per country\n")
		fmt.Fprintf(os.Stderr, "  GET /api/v1/ghi/distribution GHI box-plot statistics\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	cfg.ClickHouseHost = *chHost
	cfg.ClickHousePort = *chPort
	cfg.ClickHouseDatabase = *chDB

	log.Println("=========================================================")
	log.Printf("Solar Dashboard v%s", Version)
	log.Println("=========================================================")
	log.Printf("Listen:     %s", *addr)
	log.Printf("ClickHouse: %s:%d/%s", cfg.ClickHouseHost, cfg.ClickHousePort, cfg.ClickHouseDatabase)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("\nShutdown requested...")
		cancel()
	}()

	store, err := dashboard.NewClickHouseStore(cfg)
	if err != nil {
		log.Fatalf("ClickHouse connection failed: %v", err)
	}
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		log.Printf("Warning: ClickHouse ping failed: %v", err)
	}

	srv := &http.Server{
		Addr:              *addr,
		Handler:           dashboard.NewServer(store, Version).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		log.Printf("Serving on %s", *addr)
		errChan <- srv.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		log.Fatalf("HTTP server failed: %v", err)
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Println("Dashboard stopped")
}
