package gtfs

import (
	"testing"
)

func TestParseVehicleClass(t *testing.T) {
	tests := []struct {
		token   string
		want    VehicleClass
		wantErr bool
	}{
		{token: "bus", want: Bus},
		{token: "tram", want: Tram},
		{token: "trolley", want: Trolley},
		{token: "ferry", wantErr: true},
		{token: "", wantErr: true},
		{token: "Bus", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, err := ParseVehicleClass(tt.token)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseVehicleClass(%q) error = %v, wantErr %v", tt.token, err, tt.wantErr)
				return
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseVehicleClass(%q) = %v, want %v", tt.token, got, tt.want)
			}
		})
	}
}

func TestVehicleClassString(t *testing.T) {
	tests := []struct {
		class VehicleClass
		want  string
	}{
		{class: Bus, want: "bus"},
		{class: Tram, want: "tram"},
		{class: Trolley, want: "trolley"},
		{class: VehicleClass(42), want: "unknown"},
	}
	for _, tt := range tests {
		if got := tt.class.String(); got != tt.want {
			t.Errorf("VehicleClass.String() = %v, want %v", got, tt.want)
		}
	}
}
