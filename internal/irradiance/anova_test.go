package irradiance

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOneWayANOVA(t *testing.T) {
	t.Parallel()

	t.Run("known F and p", func(t *testing.T) {
		t.Parallel()

		// Groups with means 2, 3, 4 and unit within-group spread:
		// F = 3 exactly, p = I_{0.5}(3, 1) = 0.125 exactly.
		result, err := OneWayANOVA(
			[]float64{1, 2, 3},
			[]float64{2, 3, 4},
			[]float64{3, 4, 5},
		)
		require.NoError(t, err)

		assert.Equal(t, 2, result.DFBetween)
		assert.Equal(t, 6, result.DFWithin)
		assert.InDelta(t, 3.0, result.F, 1e-12)
		assert.InDelta(t, 0.125, result.P, 1e-9)
		assert.False(t, result.Significant())
	})

	t.Run("identical groups", func(t *testing.T) {
		t.Parallel()

		result, err := OneWayANOVA(
			[]float64{1, 2, 3},
			[]float64{1, 2, 3},
		)
		require.NoError(t, err)
		assert.InDelta(t, 0.0, result.F, 1e-12)
		assert.InDelta(t, 1.0, result.P, 1e-9)
	})

	t.Run("well separated groups", func(t *testing.T) {
		t.Parallel()

		result, err := OneWayANOVA(
			[]float64{1.0, 1.1, 0.9, 1.05},
			[]float64{10.0, 10.1, 9.9, 10.05},
		)
		require.NoError(t, err)
		assert.Less(t, result.P, 0.001)
		assert.True(t, result.Significant())
	})

	t.Run("missing values dropped", func(t *testing.T) {
		t.Parallel()

		nan := math.NaN()
		withNaN, err := OneWayANOVA(
			[]float64{1, 2, 3, nan},
			[]float64{nan, 2, 3, 4},
			[]float64{3, 4, 5},
		)
		require.NoError(t, err)

		without, err := OneWayANOVA(
			[]float64{1, 2, 3},
			[]float64{2, 3, 4},
			[]float64{3, 4, 5},
		)
		require.NoError(t, err)

		assert.InDelta(t, without.F, withNaN.F, 1e-12)
		assert.InDelta(t, without.P, withNaN.P, 1e-12)
	})

	t.Run("constant differing groups", func(t *testing.T) {
		t.Parallel()

		result, err := OneWayANOVA(
			[]float64{5, 5, 5},
			[]float64{7, 7, 7},
		)
		require.NoError(t, err)
		assert.True(t, math.IsInf(result.F, 1))
		assert.Equal(t, 0.0, result.P)
	})
}

func TestOneWayANOVAErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		groups [][]float64
	}{
		{"single group", [][]float64{{1, 2, 3}}},
		{"group empty after dropping NaN", [][]float64{{1, 2}, {math.NaN()}}},
		{"all constant and equal", [][]float64{{4, 4}, {4, 4}}},
		{"not enough observations", [][]float64{{1}, {2}}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := OneWayANOVA(tt.groups...)
			assert.Error(t, err)
		})
	}
}

func TestRegIncompleteBeta(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		x, a, b float64
		want    float64
	}{
		{"uniform", 0.25, 1, 1, 0.25},
		{"arcsine midpoint", 0.5, 0.5, 0.5, 0.5},
		{"power law", 0.5, 3, 1, 0.125},
		{"lower bound", 0, 2, 5, 0},
		{"upper bound", 1, 2, 5, 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := regIncompleteBeta(tt.x, tt.a, tt.b)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}
