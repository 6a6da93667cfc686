package fourdevs

import (
	"html"
	"regexp"
	"strings"
)

// CityEntry is one city of a state catalog. Code is the provider's city id.
type CityEntry struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

var optionPattern = regexp.MustCompile(`(?i)<option\s+value="([^"]*)"[^>]*>([^<]*)</option>`)

// ParseCities extracts (code, name) pairs from an HTML option list, in
// source order. Entries whose trimmed code or name is empty are dropped.
func ParseCities(markup string) []CityEntry {
	matches := optionPattern.FindAllStringSubmatch(markup, -1)
	cities := make([]CityEntry, 0, len(matches))
	for _, m := range matches {
		code := strings.TrimSpace(html.UnescapeString(m[1]))
		name := strings.TrimSpace(html.UnescapeString(m[2]))
		if code == "" || name == "" {
			continue
		}
		cities = append(cities, CityEntry{Code: code, Name: name})
	}
	return cities
}

// HasOptionMarkup reports whether text looks like an option list at all.
func HasOptionMarkup(text string) bool {
	return strings.Contains(strings.ToLower(text), "<option")
}
