// Package watch runs per session arrival watches: background polling tasks
// that reconcile the live forecast against the static timetable and emit one
// terminal notification when it is time to leave
package watch

import (
	"context"
	"fmt"
	logger "log"
	"sync"
	"time"

	"github.com/citytransit/arrivalwatch/business/data/gtfs"
)

// watchState tracks a watch task through its lifecycle. A task leaves
// watching through exactly one of the two terminal states
type watchState int

const (
	watching watchState = iota
	fired
	cancelled
)

// activeWatch is the cancellation handle for one running watch task
type activeWatch struct {
	sessionId string
	cancel    context.CancelFunc
	done      chan struct{}
}

// Scheduler owns at most one running watch per session. The session table is
// the only state mutated from multiple goroutines and every transition on it
// happens under the mutex, which makes cancel-and-replace atomic
type Scheduler struct {
	log          *logger.Logger
	feeds        *gtfs.FeedStore
	forecasts    ForecastSource
	destination  NotificationDestination
	pollInterval time.Duration

	mu      sync.Mutex
	watches map[string]*activeWatch
}

// NewScheduler builds a Scheduler polling at pollInterval
func NewScheduler(log *logger.Logger,
	feeds *gtfs.FeedStore,
	forecasts ForecastSource,
	destination NotificationDestination,
	pollInterval time.Duration) *Scheduler {

	return &Scheduler{
		log:          log,
		feeds:        feeds,
		forecasts:    forecasts,
		destination:  destination,
		pollInterval: pollInterval,
		watches:      make(map[string]*activeWatch),
	}
}

// StartWatch begins a background watch for sessionId. The arrival timetable
// is computed once, up front: it only needs the current service day, which
// the feed snapshot already describes. A watch already running for the
// session is cancelled, without a notification, before the new one polls for
// the first time
func (s *Scheduler) StartWatch(sessionId string, routeId string, stopId string, direction int, leewayMinutes int) error {
	feed := s.feeds.Current()
	if feed == nil {
		return fmt.Errorf("no feed snapshot published yet")
	}
	timetable, err := feed.ArrivalTimetable(routeId, direction, stopId, time.Now())
	if err != nil {
		return fmt.Errorf("building arrival timetable for watch: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &activeWatch{
		sessionId: sessionId,
		cancel:    cancel,
		done:      make(chan struct{}),
	}

	s.mu.Lock()
	if prior, ok := s.watches[sessionId]; ok {
		prior.cancel()
	}
	s.watches[sessionId] = w
	s.mu.Unlock()

	go s.runWatch(ctx, w, routeId, stopId, leewayMinutes, timetable)
	return nil
}

// CancelWatch stops the running watch for sessionId, if any. No notification
// is emitted
func (s *Scheduler) CancelWatch(sessionId string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.watches[sessionId]; ok {
		w.cancel()
		delete(s.watches, sessionId)
	}
}

// completeWatch claims the right to emit the terminal notification for w.
// It fails when w was cancelled or superseded, which is checked under the
// same mutex that start and cancel use, so two notifications can never race
// for one session
func (s *Scheduler) completeWatch(ctx context.Context, w *activeWatch) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ctx.Err() != nil {
		return false
	}
	if current, ok := s.watches[w.sessionId]; !ok || current != w {
		return false
	}
	delete(s.watches, w.sessionId)
	return true
}

// runWatch is the polling loop of one watch task
func (s *Scheduler) runWatch(ctx context.Context,
	w *activeWatch,
	routeId string,
	stopId string,
	leewayMinutes int,
	timetable []int64) {

	defer close(w.done)
	defer w.cancel()

	leewaySeconds := int64(leewayMinutes) * 60
	state := watching

	for state == watching {
		waits, err := s.forecasts.RouteWaits(ctx, routeId, stopId)
		if err != nil {
			s.log.Printf("session %s: no live forecast this tick for route %s at stop %s. error:%v",
				w.sessionId, routeId, stopId, err)
			waits = nil
		}
		// a fetch may have been in flight while the watch was cancelled or
		// superseded; its result is discarded here
		if ctx.Err() != nil {
			state = cancelled
			break
		}

		s.log.Printf("session %s: waiting times for route %s at stop %s: %v",
			w.sessionId, routeId, stopId, waits)

		decision := decideDeparture(waits, timetable, time.Now().Unix(), leewaySeconds)
		if decision != keepWaiting {
			if !s.completeWatch(ctx, w) {
				state = cancelled
				break
			}
			state = fired
			notification := &Notification{
				SessionId: w.sessionId,
				RouteId:   routeId,
				StopId:    stopId,
				Path:      notificationPath(decision),
			}
			s.log.Printf("session %s: leave now for route %s at stop %s (%s)",
				w.sessionId, routeId, stopId, notification.Path)
			if err = s.destination.Notify(notification); err != nil {
				s.log.Printf("session %s: error delivering notification. error:%v", w.sessionId, err)
			}
			break
		}

		select {
		case <-ctx.Done():
			state = cancelled
		case <-time.After(s.pollInterval):
		}
	}

	if state == cancelled {
		s.log.Printf("session %s: watch for route %s at stop %s ended without notification",
			w.sessionId, routeId, stopId)
	}
}

func notificationPath(decision departureDecision) NotificationPath {
	if decision == notifyLive {
		return PathLive
	}
	return PathScheduleFallback
}
