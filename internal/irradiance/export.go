// Package irradiance - cleaned dataset export (CSV and Parquet).
package irradiance

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/parquet-go/parquet-go"
)

const csvTimestampLayout = "2006-01-02 15:04:05"

// WriteCleanCSV writes readings in the canonical station column order.
// NaN cells are written as empty fields, mirroring the raw archives.
func WriteCleanCSV(w io.Writer, readings []Reading) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}

	record := make([]string, len(Columns))
	for i := range readings {
		r := &readings[i]
		for j, name := range Columns {
			switch name {
			case "Timestamp":
				record[j] = r.Timestamp.Format(csvTimestampLayout)
			case "Cleaning":
				record[j] = strconv.Itoa(int(r.Cleaning))
			case "Comments":
				record[j] = r.Comments
			default:
				record[j] = formatCell(r.Field(name))
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// SaveCleanCSV writes readings to path via a temp file and atomic rename.
func SaveCleanCSV(path string, readings []Reading) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file failed: %w", err)
	}

	err = WriteCleanCSV(f, readings)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename failed: %w", err)
	}
	return nil
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// =============================================================================
// Parquet
// =============================================================================

// ParquetRow matches the cleaned-data Parquet schema.
type ParquetRow struct {
	Timestamp     int64   `parquet:"timestamp"`
	GHI           float64 `parquet:"ghi"`
	DNI           float64 `parquet:"dni"`
	DHI           float64 `parquet:"dhi"`
	ModA          float64 `parquet:"mod_a"`
	ModB          float64 `parquet:"mod_b"`
	Tamb          float64 `parquet:"tamb"`
	RH            float64 `parquet:"rh"`
	WS            float64 `parquet:"ws"`
	WSgust        float64 `parquet:"ws_gust"`
	WSstdev       float64 `parquet:"ws_stdev"`
	WD            float64 `parquet:"wd"`
	WDstdev       float64 `parquet:"wd_stdev"`
	BP            float64 `parquet:"bp"`
	Cleaning      uint8   `parquet:"cleaning"`
	Precipitation float64 `parquet:"precipitation"`
	TModA         float64 `parquet:"tmod_a"`
	TModB         float64 `parquet:"tmod_b"`
}

func toParquetRow(r *Reading) ParquetRow {
	return ParquetRow{
		Timestamp:     r.Timestamp.Unix(),
		GHI:           r.GHI,
		DNI:           r.DNI,
		DHI:           r.DHI,
		ModA:          r.ModA,
		ModB:          r.ModB,
		Tamb:          r.Tamb,
		RH:            r.RH,
		WS:            r.WS,
		WSgust:        r.WSgust,
		WSstdev:       r.WSstdev,
		WD:            r.WD,
		WDstdev:       r.WDstdev,
		BP:            r.BP,
		Cleaning:      r.Cleaning,
		Precipitation: r.Precipitation,
		TModA:         r.TModA,
		TModB:         r.TModB,
	}
}

func fromParquetRow(p *ParquetRow) Reading {
	return Reading{
		Timestamp:     time.Unix(p.Timestamp, 0).UTC(),
		GHI:           p.GHI,
		DNI:           p.DNI,
		DHI:           p.DHI,
		ModA:          p.ModA,
		ModB:          p.ModB,
		Tamb:          p.Tamb,
		RH:            p.RH,
		WS:            p.WS,
		WSgust:        p.WSgust,
		WSstdev:       p.WSstdev,
		WD:            p.WD,
		WDstdev:       p.WDstdev,
		BP:            p.BP,
		Cleaning:      p.Cleaning,
		Precipitation: p.Precipitation,
		TModA:         p.TModA,
		TModB:         p.TModB,
	}
}

// WriteParquet writes readings as Parquet rows.
func WriteParquet(w io.Writer, readings []Reading) error {
	writer := parquet.NewGenericWriter[ParquetRow](w)

	rows := make([]ParquetRow, 0, 1000)
	for i := range readings {
		rows = append(rows, toParquetRow(&readings[i]))
		if len(rows) == cap(rows) {
			if _, err := writer.Write(rows); err != nil {
				return err
			}
			rows = rows[:0]
		}
	}
	if len(rows) > 0 {
		if _, err := writer.Write(rows); err != nil {
			return err
		}
	}
	return writer.Close()
}

// SaveParquet writes readings to path via a temp file and atomic rename.
func SaveParquet(path string, readings []Reading) error {
	tmpPath := path + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create file failed: %w", err)
	}

	err = WriteParquet(f, readings)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename failed: %w", err)
	}
	return nil
}

// ReadParquet streams readings from a Parquet file, invoking fn per row.
func ReadParquet(path string, fn func(Reading) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		return fmt.Errorf("parquet open failed: %w", err)
	}

	reader := parquet.NewGenericReader[ParquetRow](pf)
	defer reader.Close()

	rows := make([]ParquetRow, 1000)
	for {
		n, err := reader.Read(rows)
		for i := 0; i < n; i++ {
			if ferr := fn(fromParquetRow(&rows[i])); ferr != nil {
				return ferr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
	}
}
