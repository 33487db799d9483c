package gtfs

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RouteDisplayName produces a human presentable name for a route id.
// Hyphen separated segments are title cased independently so that names like
// "СТ. МЕТРО-ПЛОЩАДЬ" keep their hyphenation
func (f *StaticFeed) RouteDisplayName(routeId string) (string, error) {
	raw, ok := f.Routes.Names[routeId]
	if !ok {
		return "", fmt.Errorf("no route with id %q: %w", routeId, ErrNotFound)
	}
	cleaned := stripQuotes(strings.ToUpper(raw))
	caser := cases.Title(language.Russian)
	segments := strings.Split(cleaned, "-")
	for i, segment := range segments {
		segments[i] = caser.String(segment)
	}
	return strings.Join(segments, "-"), nil
}

// StopDisplayName produces a human presentable name for a stop id
func (f *StaticFeed) StopDisplayName(stopId string) (string, error) {
	raw, ok := f.Stops[stopId]
	if !ok {
		return "", fmt.Errorf("no stop with id %q: %w", stopId, ErrNotFound)
	}
	cleaned := stripQuotes(strings.ToUpper(raw))
	return cases.Title(language.Russian).String(cleaned), nil
}

func stripQuotes(s string) string {
	return strings.ReplaceAll(s, "\"", "")
}
