package main

import (
	"context"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonlight-energy/solar-data-apps/internal/irradiance"
)

func stationReading(minute int, ghi, modA float64) irradiance.Reading {
	return irradiance.Reading{
		Timestamp:     time.Date(2021, 8, 9, 13, minute, 0, 0, time.UTC),
		GHI:           ghi,
		DNI:           210,
		DHI:           290,
		ModA:          modA,
		ModB:          modA,
		Tamb:          33,
		RH:            42,
		WS:            2,
		WSgust:        3,
		WSstdev:       0.5,
		WD:            180,
		WDstdev:       4,
		BP:            998,
		Precipitation: 0,
		TModA:         40,
		TModB:         41,
		Comments:      "ok",
	}
}

func TestStationReportCleaningImpactCoversRawRows(t *testing.T) {
	t.Parallel()

	// The third row is dropped during cleaning (missing GHI) but must
	// still feed the cleaning-impact averages.
	readings := []irradiance.Reading{
		stationReading(0, 500, 10),
		stationReading(1, 510, 20),
		stationReading(2, math.NaN(), 90),
	}

	flags := irradiance.DetectOutliers(readings, irradiance.ZScoreColumns)
	cleaned, cleanReport := irradiance.Clean(readings, flags)
	require.Equal(t, 2, cleanReport.RowsKept)
	require.Equal(t, 1, cleanReport.DroppedMissing)

	stats := &irradiance.ParseStats{SuccessfullyParsed: int64(len(readings))}
	st := irradiance.Stations[0]

	report := buildStationReport(st, readings, cleaned, stats, cleanReport)

	require.Contains(t, report, "Cleaning impact")
	// Mean ModA over all three raw flag-0 rows is 40, not the
	// post-clean 15.
	assert.Contains(t, report, "  0                 3      40.00      40.00")
}

func TestStationReportDescribesAllNumericColumns(t *testing.T) {
	t.Parallel()

	readings := []irradiance.Reading{
		stationReading(0, 500, 10),
		stationReading(1, 510, 20),
	}

	flags := irradiance.DetectOutliers(readings, irradiance.ZScoreColumns)
	cleaned, cleanReport := irradiance.Clean(readings, flags)
	stats := &irradiance.ParseStats{SuccessfullyParsed: 2}

	report := buildStationReport(irradiance.Stations[0], readings, cleaned, stats, cleanReport)

	for _, col := range irradiance.NumericColumns {
		assert.Contains(t, report, "\n  "+col+" ", col)
	}
	// The index column never appears in the missing-value report.
	assert.NotContains(t, report, "Timestamp")
}

func TestRunStationsStopsWhenCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int64
	failed := runStations(ctx, irradiance.Stations, 2, func(irradiance.Station) error {
		calls.Add(1)
		return nil
	})

	assert.Zero(t, calls.Load(), "no station may be scheduled after cancellation")
	assert.Zero(t, failed)
}

func TestRunStationsCountsFailures(t *testing.T) {
	t.Parallel()

	var calls atomic.Int64
	failed := runStations(context.Background(), irradiance.Stations, 2, func(st irradiance.Station) error {
		calls.Add(1)
		if st.Slug == "togo" {
			return assert.AnError
		}
		return nil
	})

	assert.Equal(t, int64(len(irradiance.Stations)), calls.Load())
	assert.Equal(t, 1, failed)
}
