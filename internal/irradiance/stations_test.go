package irradiance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStationByCountry(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		query   string
		country string
		found   bool
	}{
		{name: "display name", query: "Benin", country: "Benin", found: true},
		{name: "lowercase", query: "benin", country: "Benin", found: true},
		{name: "slug", query: "sierra_leone", country: "Sierra Leone", found: true},
		{name: "display name with space", query: "Sierra Leone", country: "Sierra Leone", found: true},
		{name: "unknown", query: "ghana", found: false},
		{name: "empty", query: "", found: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			st, ok := StationByCountry(tt.query)
			assert.Equal(t, tt.found, ok)
			if tt.found {
				assert.Equal(t, tt.country, st.Country)
			}
		})
	}
}

func TestStationFiles(t *testing.T) {
	t.Parallel()

	require.Len(t, Stations, 3)
	for _, st := range Stations {
		assert.NotEmpty(t, st.RawFile, st.Country)
		assert.Contains(t, st.CleanFile, "_clean.csv", st.Country)
		assert.Equal(t, st.Slug+"_clean.csv", st.CleanFile, st.Country)
	}
}

func TestCountryNames(t *testing.T) {
	t.Parallel()
	assert.Equal(t, []string{"Benin", "Sierra Leone", "Togo"}, CountryNames())
}
