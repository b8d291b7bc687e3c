package irradiance

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescribe(t *testing.T) {
	t.Parallel()

	nan := math.NaN()

	tests := []struct {
		name   string
		values []float64
		want   Summary
	}{
		{
			name:   "odd length with missing",
			values: []float64{1, 2, nan, 3, 4, 5},
			want:   Summary{Count: 5, Mean: 3, Std: math.Sqrt(2.5), Min: 1, P25: 2, P50: 3, P75: 4, Max: 5},
		},
		{
			name:   "even length interpolates quantiles",
			values: []float64{4, 1, 3, 2},
			want:   Summary{Count: 4, Mean: 2.5, Std: math.Sqrt(5.0 / 3.0), Min: 1, P25: 1.75, P50: 2.5, P75: 3.25, Max: 4},
		},
		{
			name:   "single value",
			values: []float64{7},
			want:   Summary{Count: 1, Mean: 7, Std: nan, Min: 7, P25: 7, P50: 7, P75: 7, Max: 7},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Describe(tt.values)
			assert.Equal(t, tt.want.Count, got.Count)
			assertFloat(t, tt.want.Mean, got.Mean, "mean")
			assertFloat(t, tt.want.Std, got.Std, "std")
			assertFloat(t, tt.want.Min, got.Min, "min")
			assertFloat(t, tt.want.P25, got.P25, "p25")
			assertFloat(t, tt.want.P50, got.P50, "p50")
			assertFloat(t, tt.want.P75, got.P75, "p75")
			assertFloat(t, tt.want.Max, got.Max, "max")
		})
	}
}

func TestDescribeEmpty(t *testing.T) {
	t.Parallel()

	got := Describe([]float64{math.NaN(), math.NaN()})
	assert.Equal(t, 0, got.Count)
	assert.True(t, math.IsNaN(got.Mean))
	assert.True(t, math.IsNaN(got.P50))
}

func TestMedian(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"odd", []float64{5, 1, 3}, 3},
		{"even averages middle pair", []float64{4, 1, 3, 2}, 2.5},
		{"missing values dropped", []float64{1, math.NaN(), 2}, 1.5},
		{"empty", nil, math.NaN()},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assertFloat(t, tt.want, Median(tt.values), "median")
		})
	}
}

func TestMeanStdOmitMissing(t *testing.T) {
	t.Parallel()

	values := []float64{2, 4, math.NaN(), 6}
	assert.InDelta(t, 4.0, Mean(values), 1e-12)
	assert.InDelta(t, 2.0, Std(values), 1e-12)
}

func TestCorrelationMatrix(t *testing.T) {
	t.Parallel()

	base := time.Date(2023, 8, 1, 0, 0, 0, 0, time.UTC)
	readings := make([]Reading, 5)
	for i := range readings {
		readings[i].Timestamp = base.Add(time.Duration(i) * time.Minute)
		readings[i].GHI = float64(i + 1)
		readings[i].DNI = 2 * float64(i+1)   // perfectly correlated
		readings[i].Tamb = -float64(i + 1)   // perfectly anti-correlated
		readings[i].RH = 50                  // zero variance
		readings[i].WS = 3 * float64(i+1)    // correlated, with a hole
	}
	readings[4].WS = math.NaN()
	readings[4].GHI = 1000 // only visible to pairs without WS

	matrix := CorrelationMatrix(readings, []string{"GHI", "DNI", "Tamb", "RH", "WS"})

	assert.InDelta(t, 1.0, matrix[0][0], 1e-12)
	assert.InDelta(t, 1.0, matrix[0][1], 1e-12)
	assert.InDelta(t, -1.0, matrix[0][2], 1e-12)
	assert.True(t, math.IsNaN(matrix[0][3]), "zero-variance column must yield NaN")
	// Pairwise-complete: the NaN WS row (and its GHI spike) drops out.
	assert.InDelta(t, 1.0, matrix[0][4], 1e-12)
	// Symmetry
	assert.Equal(t, matrix[1][0], matrix[0][1])
}

func TestBuildMissingReport(t *testing.T) {
	t.Parallel()

	readings := make([]Reading, 10)
	for i := range readings {
		readings[i].GHI = 100
		readings[i].DNI = 200
	}
	readings[0].GHI = math.NaN()
	readings[3].GHI = math.NaN()

	report := BuildMissingReport(readings, []string{"GHI", "DNI"})
	require.Len(t, report.Columns, 2)

	assert.Equal(t, 2, report.Columns[0].Count)
	assert.InDelta(t, 20.0, report.Columns[0].Percent, 1e-12)
	assert.Equal(t, 0, report.Columns[1].Count)

	over := report.OverThreshold()
	require.Len(t, over, 1)
	assert.Equal(t, "GHI", over[0].Column)
}

func TestBuildMissingReportFullColumnList(t *testing.T) {
	t.Parallel()

	full := Reading{
		Timestamp: time.Date(2021, 8, 9, 13, 0, 0, 0, time.UTC),
		GHI:       532,
		DNI:       210,
		DHI:       290,
		ModA:      500,
		ModB:      498,
		Tamb:      33.5,
		RH:        42,
		WS:        2.1,
		WSgust:    3.4,
		WSstdev:   0.5,
		WD:        180,
		WDstdev:   4.1,
		BP:        998,
		TModA:     40.2,
		TModB:     41.1,
		Comments:  "sensor ok",
	}

	report := BuildMissingReport([]Reading{full}, Columns)
	require.Len(t, report.Columns, len(Columns)-1, "Timestamp is the index, never reported")
	for _, c := range report.Columns {
		assert.NotEqual(t, "Timestamp", c.Column)
		assert.Zero(t, c.Count, c.Column)
	}
	assert.Empty(t, report.OverThreshold())
}

func TestBuildMissingReportEmptyComments(t *testing.T) {
	t.Parallel()

	withComment := Reading{GHI: 1, Comments: "wash"}
	blank := Reading{GHI: 2}

	report := BuildMissingReport([]Reading{withComment, blank}, []string{"GHI", "Comments"})
	require.Len(t, report.Columns, 2)
	assert.Equal(t, 0, report.Columns[0].Count)
	assert.Equal(t, 1, report.Columns[1].Count)
	assert.InDelta(t, 50.0, report.Columns[1].Percent, 1e-12)

	over := report.OverThreshold()
	require.Len(t, over, 1)
	assert.Equal(t, "Comments", over[0].Column)
}

func TestBuildCleaningImpact(t *testing.T) {
	t.Parallel()

	readings := []Reading{
		{ModA: 2, ModB: 20},
		{ModA: 4, ModB: math.NaN()},
		{ModA: 10, ModB: 100, Cleaning: 1},
	}

	impact := BuildCleaningImpact(readings)

	assert.Equal(t, [2]int{2, 1}, impact.Rows)
	assert.InDelta(t, 3.0, impact.ModA[0], 1e-12)
	assert.InDelta(t, 20.0, impact.ModB[0], 1e-12)
	assert.InDelta(t, 10.0, impact.ModA[1], 1e-12)
	assert.InDelta(t, 100.0, impact.ModB[1], 1e-12)
}

// assertFloat compares floats treating NaN == NaN.
func assertFloat(t *testing.T, want, got float64, name string) {
	t.Helper()
	if math.IsNaN(want) {
		assert.True(t, math.IsNaN(got), "%s: want NaN, got %v", name, got)
		return
	}
	assert.InDelta(t, want, got, 1e-9, name)
}
