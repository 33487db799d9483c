package gtfs

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ServiceDate produces the local calendar date "at" belongs to, at midnight.
// The dataset always describes that day's schedule
func ServiceDate(at time.Time) time.Time {
	return time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location())
}

// ParseScheduleTime reads a dataset time of day in HH:MM:SS form.
// Hours of 24 and above are legal and indicate time past midnight of the
// service day
func ParseScheduleTime(value string) (hours, minutes, seconds int, err error) {
	parts := strings.Split(value, ":")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("schedule time %q is not in HH:MM:SS form", value)
	}
	fields := [3]int{}
	for i, part := range parts {
		fields[i], err = strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return 0, 0, 0, fmt.Errorf("schedule time %q has a non numeric component: %v", value, err)
		}
	}
	return fields[0], fields[1], fields[2], nil
}

// StopTimestamp converts a schedule time of day on serviceDate to a unix
// timestamp. Times of 24:00:00 and later belong to serviceDate's trips but
// land on the next calendar day, so they are reduced by 24 hours and the
// resulting timestamp is shifted forward a full day
func StopTimestamp(serviceDate time.Time, hours, minutes, seconds int) int64 {
	nextDay := false
	if hours >= 24 {
		hours -= 24
		nextDay = true
	}
	timestamp := time.Date(serviceDate.Year(), serviceDate.Month(), serviceDate.Day(),
		hours, minutes, seconds, 0, serviceDate.Location()).Unix()
	if nextDay {
		timestamp += 86400
	}
	return timestamp
}
