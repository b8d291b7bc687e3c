// Package irradiance provides solar irradiance data processing utilities.
// This package contains parsers, outlier cleaning, summary statistics, and
// export helpers for ground-station measurement data (GHI/DNI/DHI plus
// module, ambient, and wind sensors).
package irradiance

import (
	"math"
	"time"
)

// SchemaVersion is the current readings schema version.
const SchemaVersion = 1

// Reading represents a single station measurement row.
// Numeric fields use NaN for values missing in the source CSV.
type Reading struct {
	Timestamp     time.Time `ch:"time"`          // Measurement timestamp UTC
	GHI           float64   `ch:"ghi"`           // Global Horizontal Irradiance W/m²
	DNI           float64   `ch:"dni"`           // Direct Normal Irradiance W/m²
	DHI           float64   `ch:"dhi"`           // Diffuse Horizontal Irradiance W/m²
	ModA          float64   `ch:"mod_a"`         // Module A sensor W/m²
	ModB          float64   `ch:"mod_b"`         // Module B sensor W/m²
	Tamb          float64   `ch:"tamb"`          // Ambient temperature °C
	RH            float64   `ch:"rh"`            // Relative humidity %
	WS            float64   `ch:"ws"`            // Wind speed m/s
	WSgust        float64   `ch:"ws_gust"`       // Wind gust m/s
	WSstdev       float64   `ch:"ws_stdev"`      // Wind speed std dev m/s
	WD            float64   `ch:"wd"`            // Wind direction °N
	WDstdev       float64   `ch:"wd_stdev"`      // Wind direction std dev
	BP            float64   `ch:"bp"`            // Barometric pressure hPa
	Cleaning      uint8     `ch:"cleaning"`      // Panel wash event flag (0/1)
	Precipitation float64   `ch:"precipitation"` // Precipitation mm/min
	TModA         float64   `ch:"tmod_a"`        // Module A temperature °C
	TModB         float64   `ch:"tmod_b"`        // Module B temperature °C
	Comments      string    `ch:"comments"`      // Free-text column, usually empty
}

// Columns is the canonical CSV column order for station files.
var Columns = []string{
	"Timestamp", "GHI", "DNI", "DHI", "ModA", "ModB", "Tamb", "RH",
	"WS", "WSgust", "WSstdev", "WD", "WDstdev", "BP", "Cleaning",
	"Precipitation", "TModA", "TModB", "Comments",
}

// NumericColumns lists every numeric column in file order, the scope of
// the summary statistics tables.
var NumericColumns = []string{
	"GHI", "DNI", "DHI", "ModA", "ModB", "Tamb", "RH", "WS", "WSgust",
	"WSstdev", "WD", "WDstdev", "BP", "Cleaning", "Precipitation",
	"TModA", "TModB",
}

// ZScoreColumns are checked for |z| > 3 outliers during cleaning.
var ZScoreColumns = []string{"GHI", "DNI", "DHI", "ModA", "ModB", "WS", "WSgust"}

// IrradianceColumns are the key metrics: rows with missing or outlier
// values here are dropped rather than imputed.
var IrradianceColumns = []string{"GHI", "DNI", "DHI"}

// ImputeColumns get median imputation for missing or outlier values.
var ImputeColumns = []string{"ModA", "ModB", "WS", "WSgust"}

// CorrelationColumns feed the Pearson correlation matrix.
var CorrelationColumns = []string{"GHI", "DNI", "DHI", "TModA", "TModB", "Tamb", "RH", "WS", "BP"}

// Field returns a numeric column by name. The Cleaning flag is returned
// as 0/1. Unknown names return NaN.
func (r *Reading) Field(name string) float64 {
	switch name {
	case "GHI":
		return r.GHI
	case "DNI":
		return r.DNI
	case "DHI":
		return r.DHI
	case "ModA":
		return r.ModA
	case "ModB":
		return r.ModB
	case "Tamb":
		return r.Tamb
	case "RH":
		return r.RH
	case "WS":
		return r.WS
	case "WSgust":
		return r.WSgust
	case "WSstdev":
		return r.WSstdev
	case "WD":
		return r.WD
	case "WDstdev":
		return r.WDstdev
	case "BP":
		return r.BP
	case "Cleaning":
		return float64(r.Cleaning)
	case "Precipitation":
		return r.Precipitation
	case "TModA":
		return r.TModA
	case "TModB":
		return r.TModB
	default:
		return math.NaN()
	}
}

// SetField assigns a numeric column by name. Unknown names are ignored.
func (r *Reading) SetField(name string, v float64) {
	switch name {
	case "GHI":
		r.GHI = v
	case "DNI":
		r.DNI = v
	case "DHI":
		r.DHI = v
	case "ModA":
		r.ModA = v
	case "ModB":
		r.ModB = v
	case "Tamb":
		r.Tamb = v
	case "RH":
		r.RH = v
	case "WS":
		r.WS = v
	case "WSgust":
		r.WSgust = v
	case "WSstdev":
		r.WSstdev = v
	case "WD":
		r.WD = v
	case "WDstdev":
		r.WDstdev = v
	case "BP":
		r.BP = v
	case "Precipitation":
		r.Precipitation = v
	case "TModA":
		r.TModA = v
	case "TModB":
		r.TModB = v
	}
}

// Column extracts one named column across a slice of readings.
func Column(readings []Reading, name string) []float64 {
	out := make([]float64, len(readings))
	for i := range readings {
		out[i] = readings[i].Field(name)
	}
	return out
}

// =============================================================================
// Batch Types
// =============================================================================

// Batch represents a batch of readings for streaming processing.
type Batch struct {
	Readings []Reading // Slice of readings (dynamically sized)
	Count    int       // Number of valid readings in batch
	Capacity int       // Maximum capacity
}

// NewBatch creates a new batch with specified capacity.
func NewBatch(capacity int) *Batch {
	return &Batch{
		Readings: make([]Reading, capacity),
		Count:    0,
		Capacity: capacity,
	}
}

// Reset resets the batch for reuse without reallocating.
func (b *Batch) Reset() {
	b.Count = 0
}

// IsFull returns true if the batch is at capacity.
func (b *Batch) IsFull() bool {
	return b.Count >= b.Capacity
}

// Add adds a reading to the batch. Returns false if batch is full.
func (b *Batch) Add(r Reading) bool {
	if b.Count >= b.Capacity {
		return false
	}
	b.Readings[b.Count] = r
	b.Count++
	return true
}

// BatchFullCallback is called when a batch is full during parsing.
// It should process the full batch and return a new empty batch.
// Return nil to stop parsing.
type BatchFullCallback func(fullBatch *Batch) (*Batch, error)

// =============================================================================
// Parse Statistics
// =============================================================================

// ParseStats holds statistics for a parsing operation.
type ParseStats struct {
	TotalRowsRead      int64 // Total rows read from CSV
	SuccessfullyParsed int64 // Rows successfully parsed
	FailedRows         int64 // Rows that failed to parse
	SkippedEmptyRows   int64 // Empty rows skipped
	MissingValues      int64 // Individual cells missing from the source
}
