package gtfs

import (
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestParseScheduleTime(t *testing.T) {
	tests := []struct {
		name        string
		give        string
		wantHours   int
		wantMinutes int
		wantSeconds int
		wantErr     bool
	}{
		{
			name:        "plain daytime value",
			give:        "08:15:30",
			wantHours:   8,
			wantMinutes: 15,
			wantSeconds: 30,
		},
		{
			name:        "past midnight of the service day",
			give:        "25:10:00",
			wantHours:   25,
			wantMinutes: 10,
			wantSeconds: 0,
		},
		{
			name:    "missing component",
			give:    "08:15",
			wantErr: true,
		},
		{
			name:    "non numeric component",
			give:    "08:xx:00",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hours, minutes, seconds, err := ParseScheduleTime(tt.give)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseScheduleTime(%q) error = %v, wantErr %v", tt.give, err, tt.wantErr)
				return
			}
			if err != nil {
				return
			}
			if hours != tt.wantHours || minutes != tt.wantMinutes || seconds != tt.wantSeconds {
				t.Errorf("ParseScheduleTime(%q) = %d:%d:%d, want %d:%d:%d",
					tt.give, hours, minutes, seconds, tt.wantHours, tt.wantMinutes, tt.wantSeconds)
			}
		})
	}
}

func TestStopTimestamp(t *testing.T) {
	is := is.New(t)
	location, err := time.LoadLocation("Europe/Moscow")
	is.NoErr(err)

	serviceDate := ServiceDate(time.Date(2024, 3, 15, 13, 42, 7, 0, location))
	is.Equal(serviceDate, time.Date(2024, 3, 15, 0, 0, 0, 0, location))

	// a daytime arrival lands on the service date itself
	is.Equal(StopTimestamp(serviceDate, 9, 30, 0),
		time.Date(2024, 3, 15, 9, 30, 0, 0, location).Unix())

	// 25:10:00 on service date D is D+1 at 01:10:00 local
	is.Equal(StopTimestamp(serviceDate, 25, 10, 0),
		time.Date(2024, 3, 16, 1, 10, 0, 0, location).Unix())

	// 24:00:00 is the first rolled over instant
	is.Equal(StopTimestamp(serviceDate, 24, 0, 0),
		time.Date(2024, 3, 16, 0, 0, 0, 0, location).Unix())
}
