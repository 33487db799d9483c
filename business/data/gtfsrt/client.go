// Package gtfsrt fetches and decodes the live per-stop arrival forecast feed
package gtfsrt

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	gtfsrtproto "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// Client requests arrival forecast messages from the realtime endpoint.
// No request timeout is configured beyond the defaults of the underlying
// http.Client; callers treat a slow or failed fetch as a tick without
// live data
type Client struct {
	httpClient  *http.Client
	forecastUrl string
}

// MakeClient builds a Client for the forecast endpoint at forecastUrl.
// The stop id is appended as the stopID query parameter on each request
func MakeClient(forecastUrl string) *Client {
	return &Client{
		httpClient:  &http.Client{},
		forecastUrl: forecastUrl,
	}
}

// StopForecast retrieves and decodes the forecast message for a stop
func (c *Client) StopForecast(ctx context.Context, stopId string) (*gtfsrtproto.FeedMessage, error) {
	requestUrl := fmt.Sprintf("%s?stopID=%s", c.forecastUrl, url.QueryEscape(stopId))
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, requestUrl, nil)
	if err != nil {
		return nil, fmt.Errorf("building forecast request for stop %s: %w", stopId, err)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("requesting forecast for stop %s: %w", stopId, err)
	}
	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("forecast request for stop %s returned status %d", stopId, response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("reading forecast response for stop %s: %w", stopId, err)
	}

	feedMessage := gtfsrtproto.FeedMessage{}
	if err = proto.Unmarshal(body, &feedMessage); err != nil {
		return nil, fmt.Errorf("decoding forecast message for stop %s: %w", stopId, err)
	}
	return &feedMessage, nil
}

// WaitingSeconds extracts the seconds remaining until each forecast arrival
// of routeId, relative to "now". Entities in the stop forecast feed are keyed
// by route id. Only strictly positive waits are kept; an empty result means
// the provider has no live prediction for the route, which is a normal
// outcome rather than an error
func WaitingSeconds(message *gtfsrtproto.FeedMessage, routeId string, now int64) []int64 {
	var waits []int64
	for _, entity := range message.Entity {
		if entity.Id == nil || *entity.Id != routeId {
			continue
		}
		if entity.TripUpdate == nil {
			continue
		}
		for _, stopTimeUpdate := range entity.TripUpdate.StopTimeUpdate {
			if stopTimeUpdate.Arrival == nil || stopTimeUpdate.Arrival.Time == nil {
				continue
			}
			timeLeft := *stopTimeUpdate.Arrival.Time - now
			if timeLeft > 0 {
				waits = append(waits, timeLeft)
			}
		}
	}
	return waits
}
