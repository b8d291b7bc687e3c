// solar-ingest - Cleaned station data ingestion into ClickHouse
//
// Supported formats:
//   - Cleaned CSV (<station>_clean.csv): solar-clean output
//   - Parquet (<station>_clean.parquet): solar-clean -parquet output
//
// Build: CGO_ENABLED=0 go build -ldflags="-s -w" -o build/solar-ingest ./cmd/solar-ingest

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/ClickHouse/ch-go"
	"github.com/ClickHouse/ch-go/proto"

	"github.com/moonlight-energy/solar-data-apps/internal/common"
	"github.com/moonlight-energy/solar-data-apps/internal/irradiance"
)

// Version can be overridden at build time via -ldflags
var Version = "1.0.0"

const BatchSize = 100_000

const createTableDDL = `
CREATE TABLE IF NOT EXISTS %s (
    time          DateTime,
    country       LowCardinality(String),
    ghi           Float32,
    dni           Float32,
    dhi           Float32,
    mod_a         Float32,
    mod_b         Float32,
    tamb          Float32,
    rh            Float32,
    ws            Float32,
    ws_gust       Float32,
    ws_stdev      Float32,
    wd            Float32,
    wd_stdev      Float32,
    bp            Float32,
    cleaning      UInt8,
    precipitation Float32,
    tmod_a        Float32,
    tmod_b        Float32,
    source_file   String
)
ENGINE = MergeTree
PARTITION BY toYYYYMM(time)
ORDER BY (country, time)
`

// ReadingBatch holds column data for native insert
type ReadingBatch struct {
	Time          *proto.ColDateTime
	Country       *proto.ColStr
	GHI           *proto.ColFloat32
	DNI           *proto.ColFloat32
	DHI           *proto.ColFloat32
	ModA          *proto.ColFloat32
	ModB          *proto.ColFloat32
	Tamb          *proto.ColFloat32
	RH            *proto.ColFloat32
	WS            *proto.ColFloat32
	WSgust        *proto.ColFloat32
	WSstdev       *proto.ColFloat32
	WD            *proto.ColFloat32
	WDstdev       *proto.ColFloat32
	BP            *proto.ColFloat32
	Cleaning      *proto.ColUInt8
	Precipitation *proto.ColFloat32
	TModA         *proto.ColFloat32
	TModB         *proto.ColFloat32
	SourceFile    *proto.ColStr
}

func NewReadingBatch() *ReadingBatch {
	return &ReadingBatch{
		Time:          new(proto.ColDateTime),
		Country:       new(proto.ColStr),
		GHI:           new(proto.ColFloat32),
		DNI:           new(proto.ColFloat32),
		DHI:           new(proto.ColFloat32),
		ModA:          new(proto.ColFloat32),
		ModB:          new(proto.ColFloat32),
		Tamb:          new(proto.ColFloat32),
		RH:            new(proto.ColFloat32),
		WS:            new(proto.ColFloat32),
		WSgust:        new(proto.ColFloat32),
		WSstdev:       new(proto.ColFloat32),
		WD:            new(proto.ColFloat32),
		WDstdev:       new(proto.ColFloat32),
		BP:            new(proto.ColFloat32),
		Cleaning:      new(proto.ColUInt8),
		Precipitation: new(proto.ColFloat32),
		TModA:         new(proto.ColFloat32),
		TModB:         new(proto.ColFloat32),
		SourceFile:    new(proto.ColStr),
	}
}

func (b *ReadingBatch) Reset() {
	b.Time.Reset()
	b.Country.Reset()
	b.GHI.Reset()
	b.DNI.Reset()
	b.DHI.Reset()
	b.ModA.Reset()
	b.ModB.Reset()
	b.Tamb.Reset()
	b.RH.Reset()
	b.WS.Reset()
	b.WSgust.Reset()
	b.WSstdev.Reset()
	b.WD.Reset()
	b.WDstdev.Reset()
	b.BP.Reset()
	b.Cleaning.Reset()
	b.Precipitation.Reset()
	b.TModA.Reset()
	b.TModB.Reset()
	b.SourceFile.Reset()
}

func (b *ReadingBatch) Len() int {
	return b.Time.Rows()
}

func (b *ReadingBatch) Input() proto.Input {
	return proto.Input{
		{Name: "time", Data: b.Time},
		{Name: "country", Data: b.Country},
		{Name: "ghi", Data: b.GHI},
		{Name: "dni", Data: b.DNI},
		{Name: "dhi", Data: b.DHI},
		{Name: "mod_a", Data: b.ModA},
		{Name: "mod_b", Data: b.ModB},
		{Name: "tamb", Data: b.Tamb},
		{Name: "rh", Data: b.RH},
		{Name: "ws", Data: b.WS},
		{Name: "ws_gust", Data: b.WSgust},
		{Name: "ws_stdev", Data: b.WSstdev},
		{Name: "wd", Data: b.WD},
		{Name: "wd_stdev", Data: b.WDstdev},
		{Name: "bp", Data: b.BP},
		{Name: "cleaning", Data: b.Cleaning},
		{Name: "precipitation", Data: b.Precipitation},
		{Name: "tmod_a", Data: b.TModA},
		{Name: "tmod_b", Data: b.TModB},
		{Name: "source_file", Data: b.SourceFile},
	}
}

func (b *ReadingBatch) AddReading(r irradiance.Reading, country, sourceFile string) {
	b.Time.Append(r.Timestamp)
	b.Country.Append(country)
	b.GHI.Append(float32(r.GHI))
	b.DNI.Append(float32(r.DNI))
	b.DHI.Append(float32(r.DHI))
	b.ModA.Append(float32(r.ModA))
	b.ModB.Append(float32(r.ModB))
	b.Tamb.Append(float32(r.Tamb))
	b.RH.Append(float32(r.RH))
	b.WS.Append(float32(r.WS))
	b.WSgust.Append(float32(r.WSgust))
	b.WSstdev.Append(float32(r.WSstdev))
	b.WD.Append(float32(r.WD))
	b.WDstdev.Append(float32(r.WDstdev))
	b.BP.Append(float32(r.BP))
	b.Cleaning.Append(r.Cleaning)
	b.Precipitation.Append(float32(r.Precipitation))
	b.TModA.Append(float32(r.TModA))
	b.TModB.Append(float32(r.TModB))
	b.SourceFile.Append(sourceFile)
}

func flushBatch(ctx context.Context, conn *ch.Client, tableFQN string, batch *ReadingBatch) error {
	if batch.Len() == 0 {
		return nil
	}

	query := fmt.Sprintf("INSERT INTO %s (time, country, ghi, dni, dhi, mod_a, mod_b, tamb, rh, ws, ws_gust, ws_stdev, wd, wd_stdev, bp, cleaning, precipitation, tmod_a, tmod_b, source_file) VALUES", tableFQN)
	return conn.Do(ctx, ch.Query{
		Body:  query,
		Input: batch.Input(),
	})
}

// detectFormat determines the file format based on the filename
func detectFormat(filePath string) string {
	base := strings.ToLower(filepath.Base(filePath))

	if strings.HasSuffix(base, ".parquet") {
		return "parquet"
	}
	if strings.HasSuffix(base, ".csv") || strings.HasSuffix(base, ".csv.gz") {
		return "csv"
	}
	return "unknown"
}

// stationForFile resolves the station from a cleaned-data filename
// like benin_clean.csv or sierra_leone_clean.parquet.
func stationForFile(filePath string) (irradiance.Station, bool) {
	base := strings.ToLower(filepath.Base(filePath))
	for _, suffix := range []string{".parquet", ".csv.gz", ".csv"} {
		base = strings.TrimSuffix(base, suffix)
	}
	base = strings.TrimSuffix(base, "_clean")
	return irradiance.StationByCountry(base)
}

func ingestCSV(ctx context.Context, conn *ch.Client, tableFQN, filePath, country string, batch *ReadingBatch) (int, error) {
	reader, err := irradiance.OpenDataFile(filePath)
	if err != nil {
		return 0, err
	}
	defer reader.Close()

	sourceFile := filepath.Base(filePath)
	stats := &irradiance.ParseStats{}
	rows := irradiance.NewBatch(BatchSize)
	count := 0

	flush := func(full *irradiance.Batch) (*irradiance.Batch, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		for i := range full.Readings[:full.Count] {
			batch.AddReading(full.Readings[i], country, sourceFile)
		}
		count += full.Count
		if batch.Len() >= BatchSize {
			if err := flushBatch(ctx, conn, tableFQN, batch); err != nil {
				return nil, err
			}
			batch.Reset()
		}
		full.Reset()
		return full, nil
	}

	if err := irradiance.ParseCSVStream(reader, rows, stats, flush); err != nil {
		return count, err
	}
	if _, err := flush(rows); err != nil {
		return count, err
	}
	return count, nil
}

func ingestParquet(ctx context.Context, conn *ch.Client, tableFQN, filePath, country string, batch *ReadingBatch) (int, error) {
	sourceFile := filepath.Base(filePath)
	count := 0

	err := irradiance.ReadParquet(filePath, func(r irradiance.Reading) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		batch.AddReading(r, country, sourceFile)
		count++
		if batch.Len() >= BatchSize {
			if err := flushBatch(ctx, conn, tableFQN, batch); err != nil {
				return err
			}
			batch.Reset()
		}
		return nil
	})
	return count, err
}

func main() {
	cfg := common.DefaultConfig()

	chHost := flag.String("ch-host", fmt.Sprintf("%s:%d", cfg.ClickHouseHost, cfg.ClickHousePort), "ClickHouse address")
	chDB := flag.String("ch-db", cfg.ClickHouseDatabase, "ClickHouse database")
	chTable := flag.String("ch-table", "readings", "ClickHouse table")
	sourceDir := flag.String("source-dir", cfg.CleanDataDir(), "Cleaned data source directory")
	initTable := flag.Bool("init", false, "Create the table if it does not exist")
	truncate := flag.Bool("truncate", false, "Truncate table before insert")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "solar-ingest v%s - Station Data Ingester\n\n", Version)
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS] [files...]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Ingests cleaned station measurements into ClickHouse.\n\n")
		fmt.Fprintf(os.Stderr, "Supported formats:\n")
		fmt.Fprintf(os.Stderr, "  - Cleaned CSV (<station>_clean.csv)\n")
		fmt.Fprintf(os.Stderr, "  - Parquet (<station>_clean.parquet)\n\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	log.Println("=========================================================")
	log.Printf("Solar Ingest v%s", Version)
	log.Println("=========================================================")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("\nShutdown requested...")
		cancel()
	}()

	// Connect to ClickHouse
	log.Printf("Connecting to ClickHouse at %s...", *chHost)
	conn, err := ch.Dial(ctx, ch.Options{
		Address:     *chHost,
		Database:    *chDB,
		Compression: ch.CompressionLZ4,
	})
	if err != nil {
		log.Fatalf("ClickHouse connection failed: %v", err)
	}
	defer conn.Close()

	tableFQN := fmt.Sprintf("%s.%s", *chDB, *chTable)
	log.Printf("Table: %s", tableFQN)

	if *initTable {
		log.Printf("Ensuring table %s exists...", tableFQN)
		if err := conn.Do(ctx, ch.Query{Body: fmt.Sprintf(createTableDDL, tableFQN)}); err != nil {
			log.Fatalf("Create table failed: %v", err)
		}
	}

	// Truncate if requested
	if *truncate {
		log.Printf("Truncating table %s...", tableFQN)
		if err := conn.Do(ctx, ch.Query{Body: fmt.Sprintf("TRUNCATE TABLE %s", tableFQN)}); err != nil {
			log.Printf("Truncate warning: %v", err)
		}
	}

	// Discover files
	var files []string
	if len(flag.Args()) > 0 {
		files = flag.Args()
	} else {
		entries, err := os.ReadDir(*sourceDir)
		if err != nil {
			log.Fatalf("Cannot read source directory: %v", err)
		}
		for _, e := range entries {
			if !e.IsDir() && detectFormat(e.Name()) != "unknown" {
				files = append(files, filepath.Join(*sourceDir, e.Name()))
			}
		}
	}

	if len(files) == 0 {
		log.Fatal("No files to process")
	}

	log.Printf("Found %d file(s)", len(files))

	startTime := time.Now()
	totalRecords := 0
	batch := NewReadingBatch()

	for _, filePath := range files {
		if ctx.Err() != nil {
			log.Println("Cancelled; stopping file processing")
			break
		}

		fileName := filepath.Base(filePath)

		format := detectFormat(filePath)
		if format == "unknown" {
			log.Printf("[%s] Skipping (unknown format)", fileName)
			continue
		}

		station, ok := stationForFile(filePath)
		if !ok {
			log.Printf("[%s] Skipping (no known station for filename)", fileName)
			continue
		}

		var count int
		var err error

		switch format {
		case "csv":
			count, err = ingestCSV(ctx, conn, tableFQN, filePath, station.Country, batch)
		case "parquet":
			count, err = ingestParquet(ctx, conn, tableFQN, filePath, station.Country, batch)
		}

		if err != nil {
			log.Printf("[%s] Ingest error: %v", fileName, err)
			continue
		}

		log.Printf("[%s] Parsed %d records (%s format, country %s)", fileName, count, format, station.Country)
		totalRecords += count
	}

	// Flush remaining
	if batch.Len() > 0 {
		if err := flushBatch(ctx, conn, tableFQN, batch); err != nil {
			log.Fatalf("Insert error: %v", err)
		}
	}

	elapsed := time.Since(startTime)

	log.Println()
	log.Println("=========================================================")
	log.Println("Final Statistics")
	log.Println("=========================================================")
	log.Printf("Total Records: %d", totalRecords)
	log.Printf("Elapsed:       %v", elapsed.Round(time.Millisecond))
	log.Printf("Rate:          %.0f records/sec", float64(totalRecords)/elapsed.Seconds())
	log.Println("=========================================================")
}
