package engine

import "github.com/biter777/countries"

// EU27 is the fixed iteration order for tables and bubble charts,
// independent of what the dataset contains.
var EU27 = []string{
	"BE", "BG", "CZ", "DK", "DE", "EE", "IE", "EL", "ES", "FR", "HR", "IT",
	"CY", "LV", "LT", "LU", "HU", "MT", "NL", "AT", "PL", "PT", "RO", "SI",
	"SK", "FI", "SE",
}

// Eurostat uses its own codes for a couple of members.
var eurostatToISO = map[string]string{
	"EL": "GR",
	"UK": "GB",
}

// CountryName resolves a display name, falling back to the code itself.
func CountryName(code string) string {
	iso := code
	if alias, ok := eurostatToISO[code]; ok {
		iso = alias
	}
	c := countries.ByName(iso)
	if c == countries.Unknown {
		return code
	}
	return c.String()
}
