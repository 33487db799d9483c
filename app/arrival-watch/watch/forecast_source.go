package watch

import (
	"context"
	"time"

	"github.com/citytransit/arrivalwatch/business/data/gtfsrt"
)

// ForecastSource provides live waiting times, in seconds, for arrivals of a
// route at a stop. An empty result means the provider has no prediction; an
// error means the fetch or decode failed. The watch loop treats both as "no
// live data this tick"
type ForecastSource interface {
	RouteWaits(ctx context.Context, routeId string, stopId string) ([]int64, error)
}

// gtfsrtForecastSource adapts the realtime feed client to ForecastSource
type gtfsrtForecastSource struct {
	client *gtfsrt.Client
}

// MakeGTFSRTForecastSource wraps a gtfsrt.Client as a ForecastSource
func MakeGTFSRTForecastSource(client *gtfsrt.Client) ForecastSource {
	return &gtfsrtForecastSource{client: client}
}

func (s *gtfsrtForecastSource) RouteWaits(ctx context.Context, routeId string, stopId string) ([]int64, error) {
	message, err := s.client.StopForecast(ctx, stopId)
	if err != nil {
		return nil, err
	}
	return gtfsrt.WaitingSeconds(message, routeId, time.Now().Unix()), nil
}
