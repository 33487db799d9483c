package gtfs

import (
	"errors"
	"fmt"
	"sort"
	"time"
)

// ErrNotFound reports a lookup against an id or route/direction combination
// the current feed snapshot has no data for
var ErrNotFound = errors.New("not found")

// StopsOnRoute returns the ordered stop ids served by routeId in the given
// direction. Trips on a route share one stop pattern, so the first trip of
// the direction that has stop time data acts as the representative.
//
// Some circular routes publish trip records for only one nominal direction;
// callers that get ErrNotFound may retry with the opposite direction code.
// That retry is deliberately a caller policy, not applied here
func (f *StaticFeed) StopsOnRoute(routeId string, direction int) ([]string, error) {
	trips, ok := f.Trips[routeId]
	if !ok {
		return nil, fmt.Errorf("no trips recorded for route %q: %w", routeId, ErrNotFound)
	}
	for _, tripId := range trips.byDirection(direction) {
		tripStops, ok := f.StopTimes[tripId]
		if !ok {
			continue
		}
		stopIds := make([]string, 0, len(tripStops))
		for _, tripStop := range tripStops {
			stopIds = append(stopIds, tripStop.StopId)
		}
		return stopIds, nil
	}
	return nil, fmt.Errorf("no stop pattern for route %q direction %d: %w", routeId, direction, ErrNotFound)
}

// ArrivalTimetable collects every scheduled arrival of routeId at stopId in
// the given direction that is strictly in the future relative to "now",
// across all trips of the direction. The result is sorted ascending and may
// contain duplicate instants when several trips serve the stop at the same
// time. Trips without stop time data are skipped
func (f *StaticFeed) ArrivalTimetable(routeId string, direction int, stopId string, now time.Time) ([]int64, error) {
	trips, ok := f.Trips[routeId]
	if !ok {
		return nil, fmt.Errorf("no trips recorded for route %q: %w", routeId, ErrNotFound)
	}
	tripIds := trips.byDirection(direction)
	if len(tripIds) == 0 {
		return nil, fmt.Errorf("no trips for route %q direction %d: %w", routeId, direction, ErrNotFound)
	}

	nowTimestamp := now.Unix()
	timetable := make([]int64, 0)
	for _, tripId := range tripIds {
		for _, tripStop := range f.StopTimes[tripId] {
			if tripStop.StopId == stopId && tripStop.Timestamp > nowTimestamp {
				timetable = append(timetable, tripStop.Timestamp)
			}
		}
	}
	sort.SliceStable(timetable, func(i, j int) bool { return timetable[i] < timetable[j] })
	return timetable, nil
}
