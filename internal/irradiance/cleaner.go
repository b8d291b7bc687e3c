// Package irradiance - outlier detection and dataset cleaning.
package irradiance

import "math"

// ZScoreLimit flags a cell as an outlier when |z| exceeds it.
const ZScoreLimit = 3.0

// OutlierFlags maps column name to a per-row outlier flag, indexed by
// the row's position in the input slice.
type OutlierFlags map[string][]bool

// DetectOutliers computes per-column z-scores (population deviation,
// NaN omitted) and flags cells with |z| > ZScoreLimit. A constant
// column (zero deviation) flags nothing.
func DetectOutliers(readings []Reading, columns []string) OutlierFlags {
	flags := make(OutlierFlags, len(columns))
	for _, name := range columns {
		values := Column(readings, name)
		mean, std := meanStd(dropNaN(values), 0)

		colFlags := make([]bool, len(values))
		if std > 0 && !math.IsNaN(std) {
			for i, v := range values {
				if math.IsNaN(v) {
					continue
				}
				if math.Abs(v-mean)/std > ZScoreLimit {
					colFlags[i] = true
				}
			}
		}
		flags[name] = colFlags
	}
	return flags
}

// CleanReport summarizes one cleaning pass.
type CleanReport struct {
	RowsIn         int
	RowsKept       int
	DroppedOutlier int            // rows dropped for an irradiance outlier
	DroppedMissing int            // rows dropped for missing irradiance
	Imputed        map[string]int // cells median-imputed per column
	Medians        map[string]float64
}

// Clean applies the station cleaning rules and returns the cleaned
// rows in their original order:
//
//  1. Rows with an outlier-flagged or missing GHI/DNI/DHI are dropped.
//  2. ModA/ModB/WS/WSgust medians are taken over the surviving rows
//     before masking, then outlier-flagged and missing cells are set
//     to that median.
//
// The input slice is not modified.
func Clean(readings []Reading, flags OutlierFlags) ([]Reading, CleanReport) {
	report := CleanReport{
		RowsIn:  len(readings),
		Imputed: make(map[string]int, len(ImputeColumns)),
		Medians: make(map[string]float64, len(ImputeColumns)),
	}

	kept := make([]Reading, 0, len(readings))
	keptIdx := make([]int, 0, len(readings))

rows:
	for i := range readings {
		for _, name := range IrradianceColumns {
			if f := flags[name]; i < len(f) && f[i] {
				report.DroppedOutlier++
				continue rows
			}
		}
		for _, name := range IrradianceColumns {
			if math.IsNaN(readings[i].Field(name)) {
				report.DroppedMissing++
				continue rows
			}
		}
		kept = append(kept, readings[i])
		keptIdx = append(keptIdx, i)
	}

	for _, name := range ImputeColumns {
		median := Median(Column(kept, name))
		report.Medians[name] = median
		colFlags := flags[name]

		for k := range kept {
			orig := keptIdx[k]
			flagged := orig < len(colFlags) && colFlags[orig]
			if flagged || math.IsNaN(kept[k].Field(name)) {
				kept[k].SetField(name, median)
				report.Imputed[name]++
			}
		}
	}

	report.RowsKept = len(kept)
	return kept, report
}
