// Package gtfs contains the static transit feed model: in-memory indices
// built from a periodically republished GTFS dataset, and the query
// operations the arrival-watch service performs over them.
package gtfs

import "strings"

// RouteInfo describes one numbered route variant within a vehicle class
type RouteInfo struct {
	RouteId string `json:"route_id"`
	Name    string `json:"name"`
}

// RoutesIndex holds every known route, indexed by route number per vehicle
// class, plus a route id to raw name map covering all classes
type RoutesIndex struct {
	Bus     map[string]RouteInfo
	Tram    map[string]RouteInfo
	Trolley map[string]RouteInfo
	Names   map[string]string
}

// ByClass retrieves the route number index for one vehicle class
func (r *RoutesIndex) ByClass(class VehicleClass) map[string]RouteInfo {
	switch class {
	case Tram:
		return r.Tram
	case Trolley:
		return r.Trolley
	default:
		return r.Bus
	}
}

// TripDirections groups a route's trip ids by direction of travel.
// One-directional and circular routes may have only one nonempty list
type TripDirections struct {
	Forward  []string
	Backward []string
}

// byDirection picks the trip list for a direction code.
// 0 is forward, any other value is backward
func (t *TripDirections) byDirection(direction int) []string {
	if direction == 0 {
		return t.Forward
	}
	return t.Backward
}

// TripStop is one scheduled stop visit of a trip
type TripStop struct {
	Timestamp    int64
	StopId       string
	StopSequence uint8
}

// StaticFeed is a full snapshot of the static dataset. It is immutable after
// construction: a refresh builds a new snapshot and swaps it into the
// FeedStore, it never mutates a published one
type StaticFeed struct {
	Routes    RoutesIndex
	Stops     map[string]string
	Trips     map[string]*TripDirections
	StopTimes map[string][]TripStop
}

// NewStaticFeed creates an empty StaticFeed with all indices initialized
func NewStaticFeed() *StaticFeed {
	return &StaticFeed{
		Routes: RoutesIndex{
			Bus:     make(map[string]RouteInfo),
			Tram:    make(map[string]RouteInfo),
			Trolley: make(map[string]RouteInfo),
			Names:   make(map[string]string),
		},
		Stops:     make(map[string]string),
		Trips:     make(map[string]*TripDirections),
		StopTimes: make(map[string][]TripStop),
	}
}

// RoutesByNumber finds routes matching a user supplied route number in every
// vehicle class. The number is case folded before lookup. Classes without a
// match are absent from the result, which may therefore be empty
func (f *StaticFeed) RoutesByNumber(number string) map[VehicleClass]RouteInfo {
	number = strings.ToUpper(number)
	matches := make(map[VehicleClass]RouteInfo)
	for _, class := range []VehicleClass{Bus, Tram, Trolley} {
		if info, ok := f.Routes.ByClass(class)[number]; ok {
			matches[class] = info
		}
	}
	return matches
}
