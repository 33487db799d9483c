package ingester

import (
	"bufio"
	"io"
	logger "log"
	"strconv"
	"strings"
	"time"

	"github.com/citytransit/arrivalwatch/business/data/gtfs"
)

// The dataset tables are strictly positional. Free text fields may embed
// unquoted commas, so a row is taken apart by counting a fixed number of
// fields from the left and from the right; the free text field is whatever
// sits between them. Header rows are always skipped.
//
// routes.txt: route_id,agency_id,route_short_name | long name | desc,type,url,color,text_color
// stops.txt:  stop_id,stop_code | stop name | desc,lat,lon,zone,location_type
// trips.txt and stop_times.txt have no free text and split plainly.

// splitLeft takes at most n comma separated fields from the left.
// The last element holds the unsplit remainder of the row
func splitLeft(row string, n int) []string {
	return strings.SplitN(row, ",", n)
}

// splitRight takes at most n comma separated fields from the right, returned
// in left to right order. The first element holds the unsplit remainder
func splitRight(row string, n int) []string {
	parts := make([]string, 0, n)
	for len(parts) < n-1 {
		i := strings.LastIndexByte(row, ',')
		if i < 0 {
			break
		}
		parts = append(parts, row[i+1:])
		row = row[:i]
	}
	parts = append(parts, row)
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return parts
}

// tableRows walks the data rows of one table, skipping the header line
func tableRows(r io.Reader, each func(line int, row string)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		if line == 1 {
			continue
		}
		row := strings.TrimRight(scanner.Text(), "\r")
		if len(row) == 0 {
			continue
		}
		each(line, row)
	}
	return scanner.Err()
}

// readRoutes fills the per class route number indices and the all classes
// route id to name map. Rows with an unknown vehicle class token still land
// in the name map but are skipped from the class indices. A duplicate route
// number within a class keeps the first occurrence
func readRoutes(log *logger.Logger, r io.Reader, feed *gtfs.StaticFeed) error {
	return tableRows(r, func(line int, row string) {
		left := splitLeft(row, 4)
		if len(left) < 4 {
			log.Printf("routes.txt line %d: too few fields, row skipped", line)
			return
		}
		right := splitRight(left[3], 6)
		if len(right) < 6 {
			log.Printf("routes.txt line %d: too few trailing fields, row skipped", line)
			return
		}

		routeId := left[0]
		number := left[2]
		name := right[0]
		feed.Routes.Names[routeId] = name

		class, err := gtfs.ParseVehicleClass(right[2])
		if err != nil {
			log.Printf("routes.txt line %d: %v, entry skipped", line, err)
			return
		}
		index := feed.Routes.ByClass(class)
		if existing, present := index[number]; present {
			log.Printf("routes.txt line %d: %s route %s already present as %s, keeping first",
				line, class, number, existing.RouteId)
			return
		}
		index[number] = gtfs.RouteInfo{RouteId: routeId, Name: name}
	})
}

// readStops fills the stop id to name index, first occurrence wins
func readStops(log *logger.Logger, r io.Reader, feed *gtfs.StaticFeed) error {
	return tableRows(r, func(line int, row string) {
		left := splitLeft(row, 3)
		if len(left) < 3 {
			log.Printf("stops.txt line %d: too few fields, row skipped", line)
			return
		}
		right := splitRight(left[2], 6)
		if len(right) < 6 {
			log.Printf("stops.txt line %d: too few trailing fields, row skipped", line)
			return
		}

		stopId := left[0]
		if existing, present := feed.Stops[stopId]; present {
			log.Printf("stops.txt line %d: stop %s already present as %q, keeping first", line, stopId, existing)
			return
		}
		feed.Stops[stopId] = right[0]
	})
}

// readTrips groups trip ids by route and direction of travel
func readTrips(log *logger.Logger, r io.Reader, feed *gtfs.StaticFeed) error {
	return tableRows(r, func(line int, row string) {
		fields := strings.Split(row, ",")
		if len(fields) < 4 {
			log.Printf("trips.txt line %d: too few fields, row skipped", line)
			return
		}
		routeId := fields[0]
		tripId := fields[2]
		direction, err := strconv.Atoi(fields[3])
		if err != nil {
			log.Printf("trips.txt line %d: bad direction code %q, row skipped", line, fields[3])
			return
		}

		trips, ok := feed.Trips[routeId]
		if !ok {
			trips = &gtfs.TripDirections{}
			feed.Trips[routeId] = trips
		}
		if direction == 0 {
			trips.Forward = append(trips.Forward, tripId)
		} else {
			trips.Backward = append(trips.Backward, tripId)
		}
	})
}

// readStopTimes fills the per trip stop visit lists. Arrival times are
// resolved against serviceDate, rolling times of 24:00:00 and later onto the
// next calendar day
func readStopTimes(log *logger.Logger, r io.Reader, feed *gtfs.StaticFeed, serviceDate time.Time) error {
	return tableRows(r, func(line int, row string) {
		fields := strings.Split(row, ",")
		if len(fields) < 5 {
			log.Printf("stop_times.txt line %d: too few fields, row skipped", line)
			return
		}
		tripId := fields[0]
		stopId := fields[3]

		hours, minutes, seconds, err := gtfs.ParseScheduleTime(fields[1])
		if err != nil {
			log.Printf("stop_times.txt line %d: %v, row skipped", line, err)
			return
		}
		sequence, err := strconv.Atoi(fields[4])
		if err != nil || sequence < 0 || sequence > 255 {
			log.Printf("stop_times.txt line %d: bad stop sequence %q, row skipped", line, fields[4])
			return
		}

		feed.StopTimes[tripId] = append(feed.StopTimes[tripId], gtfs.TripStop{
			Timestamp:    gtfs.StopTimestamp(serviceDate, hours, minutes, seconds),
			StopId:       stopId,
			StopSequence: uint8(sequence),
		})
	})
}
