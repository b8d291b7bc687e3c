// Package irradiance - summary statistics over station readings.
//
// The numeric conventions follow the reference analysis tooling the
// station archives were originally profiled with: sample standard
// deviation (ddof=1) for Describe, population deviation (ddof=0) for
// z-scores, linearly interpolated quantiles, and pairwise-complete
// observations for correlation.
package irradiance

import (
	"math"
	"sort"
)

// Summary holds describe()-style statistics for one column.
type Summary struct {
	Count int     // Non-missing observations
	Mean  float64
	Std   float64 // Sample standard deviation (ddof=1)
	Min   float64
	P25   float64
	P50   float64
	P75   float64
	Max   float64
}

// Describe computes summary statistics for a column, omitting NaN values.
// An empty or all-NaN column yields Count 0 and NaN statistics.
func Describe(values []float64) Summary {
	clean := dropNaN(values)
	s := Summary{
		Count: len(clean),
		Mean:  math.NaN(),
		Std:   math.NaN(),
		Min:   math.NaN(),
		P25:   math.NaN(),
		P50:   math.NaN(),
		P75:   math.NaN(),
		Max:   math.NaN(),
	}
	if len(clean) == 0 {
		return s
	}

	sort.Float64s(clean)
	s.Min = clean[0]
	s.Max = clean[len(clean)-1]
	s.P25 = quantileSorted(clean, 0.25)
	s.P50 = quantileSorted(clean, 0.50)
	s.P75 = quantileSorted(clean, 0.75)
	s.Mean, s.Std = meanStd(clean, 1)

	return s
}

// Mean returns the NaN-omitting mean of a column, or NaN if empty.
func Mean(values []float64) float64 {
	m, _ := meanStd(dropNaN(values), 1)
	return m
}

// Std returns the NaN-omitting sample standard deviation (ddof=1).
func Std(values []float64) float64 {
	_, sd := meanStd(dropNaN(values), 1)
	return sd
}

// Median returns the NaN-omitting median. Even-length inputs average
// the two middle values.
func Median(values []float64) float64 {
	clean := dropNaN(values)
	if len(clean) == 0 {
		return math.NaN()
	}
	sort.Float64s(clean)
	return quantileSorted(clean, 0.5)
}

// Quantile returns the q-th quantile (0..1) with linear interpolation,
// omitting NaN values.
func Quantile(values []float64, q float64) float64 {
	clean := dropNaN(values)
	if len(clean) == 0 {
		return math.NaN()
	}
	sort.Float64s(clean)
	return quantileSorted(clean, q)
}

// quantileSorted interpolates on an already-sorted, NaN-free slice.
func quantileSorted(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// meanStd computes mean and standard deviation over a NaN-free slice.
// ddof selects sample (1) or population (0) deviation.
func meanStd(clean []float64, ddof int) (mean, std float64) {
	n := len(clean)
	if n == 0 {
		return math.NaN(), math.NaN()
	}
	var sum float64
	for _, v := range clean {
		sum += v
	}
	mean = sum / float64(n)

	if n <= ddof {
		return mean, math.NaN()
	}
	var ss float64
	for _, v := range clean {
		d := v - mean
		ss += d * d
	}
	return mean, math.Sqrt(ss / float64(n-ddof))
}

func dropNaN(values []float64) []float64 {
	clean := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	return clean
}

// =============================================================================
// Missing Value Report
// =============================================================================

// MissingThresholdPct is the reporting threshold for problem columns.
const MissingThresholdPct = 5.0

// ColumnMissing reports missing cells for one column.
type ColumnMissing struct {
	Column  string
	Count   int
	Percent float64
}

// MissingReport summarizes per-column missing values across a dataset.
type MissingReport struct {
	TotalRows int
	Columns   []ColumnMissing
}

// BuildMissingReport counts missing cells per column. Timestamp is the
// row index and is never counted; Comments counts empty text, other
// columns count NaN.
func BuildMissingReport(readings []Reading, columns []string) MissingReport {
	report := MissingReport{TotalRows: len(readings)}
	for _, name := range columns {
		if name == "Timestamp" {
			continue
		}
		count := 0
		for i := range readings {
			if missingCell(&readings[i], name) {
				count++
			}
		}
		pct := 0.0
		if len(readings) > 0 {
			pct = float64(count) / float64(len(readings)) * 100
		}
		report.Columns = append(report.Columns, ColumnMissing{Column: name, Count: count, Percent: pct})
	}
	return report
}

func missingCell(r *Reading, name string) bool {
	if name == "Comments" {
		return r.Comments == ""
	}
	return math.IsNaN(r.Field(name))
}

// OverThreshold returns the columns exceeding MissingThresholdPct.
func (m MissingReport) OverThreshold() []ColumnMissing {
	var over []ColumnMissing
	for _, c := range m.Columns {
		if c.Percent > MissingThresholdPct {
			over = append(over, c)
		}
	}
	return over
}

// =============================================================================
// Correlation
// =============================================================================

// CorrelationMatrix computes Pearson correlations between the named
// columns using pairwise-complete observations: a row contributes to a
// pair only when both cells are present.
func CorrelationMatrix(readings []Reading, columns []string) [][]float64 {
	cols := make([][]float64, len(columns))
	for i, name := range columns {
		cols[i] = Column(readings, name)
	}

	matrix := make([][]float64, len(columns))
	for i := range columns {
		matrix[i] = make([]float64, len(columns))
		for j := range columns {
			if j < i {
				matrix[i][j] = matrix[j][i]
				continue
			}
			matrix[i][j] = pearson(cols[i], cols[j])
		}
	}
	return matrix
}

func pearson(x, y []float64) float64 {
	var n int
	var sumX, sumY float64
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		n++
		sumX += x[i]
		sumY += y[i]
	}
	if n < 2 {
		return math.NaN()
	}
	meanX := sumX / float64(n)
	meanY := sumY / float64(n)

	var cov, varX, varY float64
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return math.NaN()
	}
	return cov / math.Sqrt(varX*varY)
}

// =============================================================================
// Cleaning Impact
// =============================================================================

// CleaningImpact holds mean module readings grouped by the Cleaning flag.
// Index 0 is pre-wash rows, index 1 post-wash rows.
type CleaningImpact struct {
	Rows [2]int
	ModA [2]float64
	ModB [2]float64
}

// BuildCleaningImpact averages ModA/ModB per Cleaning flag value,
// omitting NaN cells.
func BuildCleaningImpact(readings []Reading) CleaningImpact {
	var impact CleaningImpact
	var sumA, sumB [2]float64
	var nA, nB [2]int

	for i := range readings {
		flag := int(readings[i].Cleaning)
		if flag > 1 {
			flag = 1
		}
		impact.Rows[flag]++
		if !math.IsNaN(readings[i].ModA) {
			sumA[flag] += readings[i].ModA
			nA[flag]++
		}
		if !math.IsNaN(readings[i].ModB) {
			sumB[flag] += readings[i].ModB
			nB[flag]++
		}
	}

	for flag := 0; flag < 2; flag++ {
		impact.ModA[flag] = math.NaN()
		impact.ModB[flag] = math.NaN()
		if nA[flag] > 0 {
			impact.ModA[flag] = sumA[flag] / float64(nA[flag])
		}
		if nB[flag] > 0 {
			impact.ModB[flag] = sumB[flag] / float64(nB[flag])
		}
	}
	return impact
}
