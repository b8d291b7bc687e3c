// Package irradiance - CSV parsing and file handling utilities.
package irradiance

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"math"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/pgzip"
)

// =============================================================================
// CSV Parsing Constants
// =============================================================================

const (
	// Error throttling: don't spam logs with parse errors
	MaxErrorsToLog = 10

	// Minimum columns for a usable station record (Timestamp + GHI/DNI/DHI)
	MinColumns = 4
)

// Timestamp layouts seen across the station archives. Minute-resolution
// files omit seconds.
var timestampLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// =============================================================================
// File Operations
// =============================================================================

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc *readCloser) Close() error {
	var first error
	for _, c := range rc.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenDataFile opens a station CSV for reading, transparently handling
// gzip-compressed archives via parallel decompression (pgzip).
func OpenDataFile(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	if strings.HasSuffix(strings.ToLower(path), ".gz") {
		gz, err := pgzip.NewReaderN(f, 256*1024, runtime.NumCPU())
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("gzip open failed: %w", err)
		}
		return &readCloser{Reader: gz, closers: []io.Closer{gz, f}}, nil
	}

	return f, nil
}

// =============================================================================
// CSV Parsing with Batch Rotation
// =============================================================================

// ParseCSVStream parses station CSV data from an io.Reader.
// The first row must be the header; columns are mapped by name so files
// with reordered or missing columns still parse.
// Implements batch rotation: calls onBatchFull when batch is full,
// receives new empty batch.
func ParseCSVStream(reader io.Reader, batch *Batch, stats *ParseStats, onBatchFull BatchFullCallback) error {
	csvReader := csv.NewReader(reader)
	csvReader.LazyQuotes = true
	csvReader.FieldsPerRecord = -1 // tolerate ragged rows

	header, err := csvReader.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return fmt.Errorf("header read failed: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	if _, ok := cols["Timestamp"]; !ok {
		return fmt.Errorf("header missing Timestamp column")
	}

	errorCount := 0

	for {
		record, err := csvReader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			stats.FailedRows++
			errorCount++
			if errorCount <= MaxErrorsToLog {
				log.Printf("CSV read error (row %d): %v", stats.TotalRowsRead, err)
			}
			continue
		}

		stats.TotalRowsRead++

		// Skip empty rows
		if len(record) == 0 || (len(record) == 1 && record[0] == "") {
			stats.SkippedEmptyRows++
			continue
		}

		reading, err := ParseRecord(cols, record, stats)
		if err != nil {
			stats.FailedRows++
			errorCount++
			if errorCount <= MaxErrorsToLog {
				log.Printf("Parse error (row %d): %v", stats.TotalRowsRead, err)
			}
			continue
		}

		stats.SuccessfullyParsed++

		if !batch.Add(reading) {
			// Batch is full - rotate
			if onBatchFull == nil {
				return fmt.Errorf("batch full at %d rows and no rotation callback", batch.Capacity)
			}
			newBatch, err := onBatchFull(batch)
			if err != nil {
				return err
			}
			if newBatch == nil {
				return nil // Callback requested stop
			}
			batch = newBatch
			batch.Add(reading)
		}
	}

	if errorCount > MaxErrorsToLog {
		log.Printf("... and %d more parse errors (suppressed)", errorCount-MaxErrorsToLog)
	}

	return nil
}

// LoadFile reads an entire station CSV (plain or gzipped) into memory.
// Station archives run to ~525k rows per year; whole-file loading keeps
// the statistics passes simple.
func LoadFile(path string) ([]Reading, *ParseStats, error) {
	rc, err := OpenDataFile(path)
	if err != nil {
		return nil, nil, err
	}
	defer rc.Close()

	stats := &ParseStats{}
	readings := make([]Reading, 0, 1<<19)
	batch := NewBatch(100_000)

	err = ParseCSVStream(rc, batch, stats, func(full *Batch) (*Batch, error) {
		readings = append(readings, full.Readings[:full.Count]...)
		full.Reset()
		return full, nil
	})
	if err != nil {
		return nil, stats, err
	}
	readings = append(readings, batch.Readings[:batch.Count]...)

	return readings, stats, nil
}

// =============================================================================
// Record Parsing
// =============================================================================

// ParseRecord parses a single CSV record into a Reading.
// Missing or blank numeric cells become NaN and count toward
// stats.MissingValues.
func ParseRecord(cols map[string]int, record []string, stats *ParseStats) (Reading, error) {
	if len(record) < MinColumns {
		return Reading{}, fmt.Errorf("insufficient columns: got %d, need %d", len(record), MinColumns)
	}

	field := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var r Reading
	var err error

	ts := field("Timestamp")
	if ts == "" {
		return Reading{}, fmt.Errorf("empty timestamp")
	}
	r.Timestamp, err = parseTimestamp(ts)
	if err != nil {
		return Reading{}, fmt.Errorf("invalid timestamp %q: %w", ts, err)
	}

	for _, name := range Columns {
		switch name {
		case "Timestamp", "Cleaning", "Comments":
			continue
		}
		v, missing, err := parseFloat(field(name))
		if err != nil {
			return Reading{}, fmt.Errorf("invalid %s: %w", name, err)
		}
		if missing && stats != nil {
			stats.MissingValues++
		}
		r.SetField(name, v)
	}

	// Cleaning flag arrives as 0/1 (occasionally "0.0")
	cleaning, missing, err := parseFloat(field("Cleaning"))
	if err != nil {
		return Reading{}, fmt.Errorf("invalid Cleaning: %w", err)
	}
	if !missing && cleaning != 0 {
		r.Cleaning = 1
	}

	r.Comments = field("Comments")

	return r, nil
}

func parseTimestamp(s string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// parseFloat parses a numeric cell. Blank and "NaN" cells report
// missing=true with a NaN value rather than an error.
func parseFloat(s string) (v float64, missing bool, err error) {
	if s == "" {
		return math.NaN(), true, nil
	}
	v, err = strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN(), false, err
	}
	if math.IsNaN(v) {
		return v, true, nil
	}
	return v, false, nil
}
