package weather

import (
	"fmt"
	"regexp"
	"strings"
)

var locationNamePattern = regexp.MustCompile(`^[a-zA-Z\s\-'.]+$`)

// ValidLocationName reports whether s is non-empty after trimming and made
// only of letters, spaces, hyphens, apostrophes and dots.
func ValidLocationName(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && locationNamePattern.MatchString(s)
}

// CollapseSpaces trims s and reduces every whitespace run to one space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// NewLocation normalizes the parts and applies defaultCountry when country
// is empty. Optional parts are validated only when present.
func NewLocation(city, state, country, defaultCountry string) (Location, error) {
	loc := Location{
		City:    CollapseSpaces(city),
		State:   CollapseSpaces(state),
		Country: CollapseSpaces(country),
	}

	if !ValidLocationName(loc.City) {
		return Location{}, fmt.Errorf("%w: city %q", ErrInvalidLocation, city)
	}
	if loc.State != "" && !ValidLocationName(loc.State) {
		return Location{}, fmt.Errorf("%w: state %q", ErrInvalidLocation, state)
	}
	if loc.Country == "" {
		loc.Country = defaultCountry
	} else if !ValidLocationName(loc.Country) {
		return Location{}, fmt.Errorf("%w: country %q", ErrInvalidLocation, country)
	}

	return loc, nil
}

// Key is the case-insensitive identity of a location, used for caching.
func (l Location) Key() string {
	return strings.ToLower(l.City + "|" + l.State + "|" + l.Country)
}

// SearchQuery is the text sent to the search engine: city, optional state,
// then "weather".
func (l Location) SearchQuery() string {
	parts := []string{l.City}
	if l.State != "" {
		parts = append(parts, l.State)
	}
	parts = append(parts, "weather")
	return strings.Join(parts, " ")
}
