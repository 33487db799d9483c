package ingester

import (
	"io"
	logger "log"
	"strings"
	"testing"
	"time"

	"github.com/citytransit/arrivalwatch/business/data/gtfs"
	"github.com/matryer/is"
)

func testLogger() *logger.Logger {
	return logger.New(io.Discard, "", 0)
}

func TestSplitRight(t *testing.T) {
	tests := []struct {
		name string
		give string
		n    int
		want []string
	}{
		{
			name: "plain fields",
			give: "a,b,c",
			n:    3,
			want: []string{"a", "b", "c"},
		},
		{
			name: "remainder keeps embedded commas",
			give: "НАЗВАНИЕ, С ЗАПЯТОЙ,desc,bus,url,color,text",
			n:    6,
			want: []string{"НАЗВАНИЕ, С ЗАПЯТОЙ", "desc", "bus", "url", "color", "text"},
		},
		{
			name: "fewer fields than requested",
			give: "a,b",
			n:    6,
			want: []string{"a", "b"},
		},
		{
			name: "no commas at all",
			give: "a",
			n:    6,
			want: []string{"a"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			is := is.New(t)
			is.Equal(splitRight(tt.give, tt.n), tt.want)
		})
	}
}

func TestReadRoutes(t *testing.T) {
	is := is.New(t)
	rows := strings.Join([]string{
		"route_id,agency_id,route_short_name,route_long_name,route_desc,route_type,route_url,route_color,route_text_color",
		"r-bus-5,a1,5,ПЛОЩАДЬ - ВОКЗАЛ,desc,bus,,FFFFFF,000000",
		"r-tram-5,a1,5,\"НАЗВАНИЕ, С ЗАПЯТОЙ\",desc,tram,,FFFFFF,000000",
		"r-bus-5-dup,a1,5,ДУБЛЬ,desc,bus,,FFFFFF,000000",
		"r-ferry-1,a1,F1,ПАРОМ,desc,ferry,,FFFFFF,000000",
		"r-short,a1",
	}, "\n")

	feed := gtfs.NewStaticFeed()
	is.NoErr(readRoutes(testLogger(), strings.NewReader(rows), feed))

	// one entry lands in exactly the index implied by the class token
	is.Equal(feed.Routes.Bus["5"], gtfs.RouteInfo{RouteId: "r-bus-5", Name: "ПЛОЩАДЬ - ВОКЗАЛ"})
	is.Equal(feed.Routes.Tram["5"], gtfs.RouteInfo{RouteId: "r-tram-5", Name: "\"НАЗВАНИЕ, С ЗАПЯТОЙ\""})
	is.Equal(len(feed.Routes.Trolley), 0)

	// the duplicate bus number keeps the first occurrence
	is.Equal(feed.Routes.Bus["5"].RouteId, "r-bus-5")

	// the name map covers every parsed row regardless of class
	is.Equal(len(feed.Routes.Names), 4)
	is.Equal(feed.Routes.Names["r-ferry-1"], "ПАРОМ")

	// the unknown class token never created a class entry
	for _, index := range []map[string]gtfs.RouteInfo{feed.Routes.Bus, feed.Routes.Tram, feed.Routes.Trolley} {
		_, present := index["F1"]
		is.True(!present)
	}
}

func TestReadStops(t *testing.T) {
	is := is.New(t)
	rows := strings.Join([]string{
		"stop_id,stop_code,stop_name,stop_desc,stop_lat,stop_lon,zone_id,location_type",
		"s1,c1,ПЛОЩАДЬ ВОССТАНИЯ,desc,59.9,30.3,z1,0",
		"s2,c2,\"УГОЛ, ДОМ 5\",desc,59.8,30.2,z1,0",
		"s1,c1,ДУБЛЬ,desc,0,0,z1,0",
	}, "\n")

	feed := gtfs.NewStaticFeed()
	is.NoErr(readStops(testLogger(), strings.NewReader(rows), feed))

	is.Equal(len(feed.Stops), 2)
	is.Equal(feed.Stops["s1"], "ПЛОЩАДЬ ВОССТАНИЯ") // first occurrence wins
	is.Equal(feed.Stops["s2"], "\"УГОЛ, ДОМ 5\"")
}

func TestReadTrips(t *testing.T) {
	is := is.New(t)
	rows := strings.Join([]string{
		"route_id,service_id,trip_id,direction_id",
		"r1,svc,t1,0",
		"r1,svc,t2,1",
		"r1,svc,t3,0",
		"r2,svc,t4,2",
		"r2,svc,t5,bad",
	}, "\n")

	feed := gtfs.NewStaticFeed()
	is.NoErr(readTrips(testLogger(), strings.NewReader(rows), feed))

	is.Equal(feed.Trips["r1"].Forward, []string{"t1", "t3"})
	is.Equal(feed.Trips["r1"].Backward, []string{"t2"})

	// nonzero direction codes are backward; malformed codes skip the row
	is.Equal(feed.Trips["r2"].Backward, []string{"t4"})
	is.Equal(len(feed.Trips["r2"].Forward), 0)
}

func TestReadStopTimes(t *testing.T) {
	is := is.New(t)
	location, err := time.LoadLocation("Europe/Moscow")
	is.NoErr(err)
	serviceDate := time.Date(2024, 3, 15, 0, 0, 0, 0, location)

	rows := strings.Join([]string{
		"trip_id,arrival_time,departure_time,stop_id,stop_sequence",
		"t1,08:30:00,08:30:00,s1,0",
		"t1,25:10:00,25:10:00,s2,1",
		"t1,bad:time,x,s3,2",
		"t1,09:00:00,09:00:00,s4,999",
	}, "\n")

	feed := gtfs.NewStaticFeed()
	is.NoErr(readStopTimes(testLogger(), strings.NewReader(rows), feed, serviceDate))

	is.Equal(len(feed.StopTimes["t1"]), 2)
	is.Equal(feed.StopTimes["t1"][0], gtfs.TripStop{
		Timestamp:    time.Date(2024, 3, 15, 8, 30, 0, 0, location).Unix(),
		StopId:       "s1",
		StopSequence: 0,
	})

	// 25:10:00 on the service date lands on the next calendar day
	is.Equal(feed.StopTimes["t1"][1], gtfs.TripStop{
		Timestamp:    time.Date(2024, 3, 16, 1, 10, 0, 0, location).Unix(),
		StopId:       "s2",
		StopSequence: 1,
	})
}
