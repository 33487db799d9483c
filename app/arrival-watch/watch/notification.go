package watch

import (
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
)

// NotificationPath identifies which data source produced a departure
// notification
type NotificationPath string

const (
	// PathLive means the departure was confirmed by the realtime forecast
	PathLive NotificationPath = "live"
	// PathScheduleFallback means no live prediction was available and the
	// static timetable decided the departure
	PathScheduleFallback NotificationPath = "schedule-fallback"
)

// Notification is the single terminal event emitted by a fired watch
type Notification struct {
	SessionId string           `json:"session_id"`
	RouteId   string           `json:"route_id"`
	StopId    string           `json:"stop_id"`
	Path      NotificationPath `json:"path"`
}

// NotificationDestination is where notifications are sent when a watch fires
type NotificationDestination interface {
	Notify(notification *Notification) error
}

// natsNotificationDestination sends notifications over nats
type natsNotificationDestination struct {
	natsConn            *nats.Conn
	notificationSubject string
}

// MakeNatsNotificationDestination builds a NotificationDestination publishing
// json notifications on subject
func MakeNatsNotificationDestination(natsConn *nats.Conn, subject string) NotificationDestination {
	return &natsNotificationDestination{
		natsConn:            natsConn,
		notificationSubject: subject,
	}
}

func (n *natsNotificationDestination) Notify(notification *Notification) error {
	jsonData, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("error marshaling notification to json: %w", err)
	}
	return n.natsConn.Publish(n.notificationSubject, jsonData)
}
