// Package irradiance - one-way analysis of variance.
package irradiance

import (
	"errors"
	"math"
)

// SignificanceLevel is the p-value threshold used when interpreting
// cross-country comparisons.
const SignificanceLevel = 0.05

// ANOVAResult holds the outcome of a one-way ANOVA.
type ANOVAResult struct {
	F         float64
	P         float64
	DFBetween int
	DFWithin  int
}

// Significant reports whether the group means differ at SignificanceLevel.
func (r ANOVAResult) Significant() bool {
	return r.P < SignificanceLevel
}

// OneWayANOVA tests whether the group means differ. NaN observations
// are dropped per group. Requires at least two non-empty groups and
// more total observations than groups.
func OneWayANOVA(groups ...[]float64) (ANOVAResult, error) {
	if len(groups) < 2 {
		return ANOVAResult{}, errors.New("anova: need at least two groups")
	}

	clean := make([][]float64, 0, len(groups))
	total := 0
	for _, g := range groups {
		c := dropNaN(g)
		if len(c) == 0 {
			return ANOVAResult{}, errors.New("anova: empty group after dropping missing values")
		}
		clean = append(clean, c)
		total += len(c)
	}

	k := len(clean)
	if total <= k {
		return ANOVAResult{}, errors.New("anova: not enough observations")
	}

	var grandSum float64
	for _, g := range clean {
		for _, v := range g {
			grandSum += v
		}
	}
	grandMean := grandSum / float64(total)

	var ssb, ssw float64
	for _, g := range clean {
		var sum float64
		for _, v := range g {
			sum += v
		}
		mean := sum / float64(len(g))
		d := mean - grandMean
		ssb += float64(len(g)) * d * d
		for _, v := range g {
			dv := v - mean
			ssw += dv * dv
		}
	}

	dfb := k - 1
	dfw := total - k
	result := ANOVAResult{DFBetween: dfb, DFWithin: dfw}

	msb := ssb / float64(dfb)
	msw := ssw / float64(dfw)

	if msw == 0 {
		if msb == 0 {
			return ANOVAResult{}, errors.New("anova: zero variance in all groups")
		}
		result.F = math.Inf(1)
		result.P = 0
		return result, nil
	}

	result.F = msb / msw
	// Survival function of the F distribution via the regularized
	// incomplete beta: sf(F; d1, d2) = I_{d2/(d2+d1 F)}(d2/2, d1/2).
	d1 := float64(dfb)
	d2 := float64(dfw)
	result.P = regIncompleteBeta(d2/(d2+d1*result.F), d2/2, d1/2)

	return result, nil
}

// =============================================================================
// Regularized Incomplete Beta
// =============================================================================

// regIncompleteBeta computes I_x(a, b) with the continued fraction
// expansion (Lentz's method), switching tails for fast convergence.
func regIncompleteBeta(x, a, b float64) float64 {
	if x <= 0 {
		return 0
	}
	if x >= 1 {
		return 1
	}

	lgab, _ := math.Lgamma(a + b)
	lga, _ := math.Lgamma(a)
	lgb, _ := math.Lgamma(b)
	front := math.Exp(lgab - lga - lgb + a*math.Log(x) + b*math.Log(1-x))

	if x < (a+1)/(a+b+2) {
		return front * betaContinuedFraction(x, a, b) / a
	}
	return 1 - front*betaContinuedFraction(1-x, b, a)/b
}

func betaContinuedFraction(x, a, b float64) float64 {
	const (
		maxIterations = 200
		epsilon       = 3e-14
		tiny          = 1e-30
	)

	qab := a + b
	qap := a + 1
	qam := a - 1

	c := 1.0
	d := 1 - qab*x/qap
	if math.Abs(d) < tiny {
		d = tiny
	}
	d = 1 / d
	h := d

	for m := 1; m <= maxIterations; m++ {
		m2 := float64(2 * m)
		fm := float64(m)

		// Even step
		aa := fm * (b - fm) * x / ((qam + m2) * (a + m2))
		d = 1 + aa*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = 1 + aa/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		h *= d * c

		// Odd step
		aa = -(a + fm) * (qab + fm) * x / ((a + m2) * (qap + m2))
		d = 1 + aa*d
		if math.Abs(d) < tiny {
			d = tiny
		}
		c = 1 + aa/c
		if math.Abs(c) < tiny {
			c = tiny
		}
		d = 1 / d
		del := d * c
		h *= del

		if math.Abs(del-1) < epsilon {
			return h
		}
	}
	return h
}
