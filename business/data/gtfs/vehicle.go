package gtfs

import "fmt"

// VehicleClass identifies the transit mode a route is served by
type VehicleClass int

const (
	Bus VehicleClass = iota
	Tram
	Trolley
)

// ParseVehicleClass converts a raw dataset mode token into a VehicleClass.
// An unrecognized token is an error, never a default class
func ParseVehicleClass(token string) (VehicleClass, error) {
	switch token {
	case "bus":
		return Bus, nil
	case "tram":
		return Tram, nil
	case "trolley":
		return Trolley, nil
	default:
		return Bus, fmt.Errorf("unknown vehicle class token %q", token)
	}
}

// String - Stringer interface for VehicleClass
func (v VehicleClass) String() string {
	switch v {
	case Bus:
		return "bus"
	case Tram:
		return "tram"
	case Trolley:
		return "trolley"
	default:
		return "unknown"
	}
}
