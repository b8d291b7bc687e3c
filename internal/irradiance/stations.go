package irradiance

import "strings"

// Station describes one measurement site and its dataset filenames.
type Station struct {
	Country   string // Display name ("Sierra Leone")
	Slug      string // Filename-safe name ("sierra_leone")
	Site      string // Station site name
	RawFile   string // Raw archive filename
	CleanFile string // Cleaned export filename
}

// Stations lists the measurement sites covered by the toolkit.
var Stations = []Station{
	{Country: "Benin", Slug: "benin", Site: "Malanville", RawFile: "benin-malanville.csv", CleanFile: "benin_clean.csv"},
	{Country: "Sierra Leone", Slug: "sierra_leone", Site: "Bumbuna", RawFile: "sierraleone-bumbuna.csv", CleanFile: "sierra_leone_clean.csv"},
	{Country: "Togo", Slug: "togo", Site: "Dapaong", RawFile: "togo-dapaong_qc.csv", CleanFile: "togo_clean.csv"},
}

// StationByCountry looks up a station by display name or slug
// (case-insensitive). Returns false if unknown.
func StationByCountry(name string) (Station, bool) {
	for _, s := range Stations {
		if strings.EqualFold(s.Country, name) || strings.EqualFold(s.Slug, name) {
			return s, true
		}
	}
	return Station{}, false
}

// CountryNames returns the display names of all known stations.
func CountryNames() []string {
	names := make([]string, len(Stations))
	for i, s := range Stations {
		names[i] = s.Country
	}
	return names
}
