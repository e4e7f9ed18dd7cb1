package wishlist

import "strings"

// Location is a parsed destination. Structured inputs map onto it directly;
// free-form strings go through ParseLocation.
type Location struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// ParseLocation derives (city, country) from a free-form location field.
// "City, Country" splits on the first comma; a single token is ambiguous
// and is treated as both city and country.
func ParseLocation(raw string) Location {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Location{}
	}

	if city, country, ok := strings.Cut(raw, ","); ok {
		return Location{
			City:    strings.TrimSpace(city),
			Country: strings.TrimSpace(country),
		}
	}
	return Location{City: raw, Country: raw}
}
