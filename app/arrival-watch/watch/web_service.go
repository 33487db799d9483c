package watch

import (
	"context"
	"encoding/json"
	"errors"
	logger "log"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/citytransit/arrivalwatch/business/data/gtfs"
	"github.com/gorilla/mux"
)

// defaultHttpHandler simple default http handler for default route
type defaultHttpHandler struct {
}

// ServeHTTP implements defaultHttpHandler http.Handler interface
func (h *defaultHttpHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Add("Application-Status", "OK")
}

// routeNumberHandler serves per vehicle class route matches for a number
type routeNumberHandler struct {
	log   *logger.Logger
	feeds *gtfs.FeedStore
}

// routeMatch is one lookup result entry
type routeMatch struct {
	RouteId string `json:"route_id"`
	Name    string `json:"name"`
}

// ServeHTTP implements routeNumberHandler's http.Handler interface
func (h *routeNumberHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	number := mux.Vars(r)["number"]
	feed := h.feeds.Current()

	// classes without a match are simply absent; an empty object is a
	// legitimate response
	matches := make(map[string]routeMatch)
	for class, info := range feed.RoutesByNumber(number) {
		name, err := feed.RouteDisplayName(info.RouteId)
		if err != nil {
			name = info.Name
		}
		matches[class.String()] = routeMatch{RouteId: info.RouteId, Name: name}
	}
	writeJSON(h.log, w, matches)
}

// routeNameHandler serves the display name for a route id
type routeNameHandler struct {
	log   *logger.Logger
	feeds *gtfs.FeedStore
}

// ServeHTTP implements routeNameHandler's http.Handler interface
func (h *routeNameHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	routeId := mux.Vars(r)["routeId"]
	name, err := h.feeds.Current().RouteDisplayName(routeId)
	if err != nil {
		writeLookupError(h.log, w, err)
		return
	}
	writeJSON(h.log, w, map[string]string{"route_id": routeId, "name": name})
}

// stopNameHandler serves the display name for a stop id
type stopNameHandler struct {
	log   *logger.Logger
	feeds *gtfs.FeedStore
}

// ServeHTTP implements stopNameHandler's http.Handler interface
func (h *stopNameHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stopId := mux.Vars(r)["stopId"]
	name, err := h.feeds.Current().StopDisplayName(stopId)
	if err != nil {
		writeLookupError(h.log, w, err)
		return
	}
	writeJSON(h.log, w, map[string]string{"stop_id": stopId, "name": name})
}

// routeStopsHandler serves the ordered stop list of a route and direction
type routeStopsHandler struct {
	log   *logger.Logger
	feeds *gtfs.FeedStore
}

// stopEntry is one stop in a route stop listing
type stopEntry struct {
	StopId string `json:"stop_id"`
	Name   string `json:"name"`
}

// routeStopsResponse reports the stop pattern along with the direction that
// actually produced it, so callers can see when the flip was applied
type routeStopsResponse struct {
	RouteId   string      `json:"route_id"`
	Direction int         `json:"direction"`
	Stops     []stopEntry `json:"stops"`
}

// ServeHTTP implements routeStopsHandler's http.Handler interface.
// Some circular routes carry trip ids for a return direction that is never
// served and has no stop time data; a lookup that fails for the requested
// direction is retried once with the opposite code before giving up
func (h *routeStopsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	routeId := mux.Vars(r)["routeId"]
	direction := 0
	if raw := r.FormValue("direction"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "direction must be an integer", http.StatusBadRequest)
			return
		}
		direction = parsed
	}

	feed := h.feeds.Current()
	stopIds, err := feed.StopsOnRoute(routeId, direction)
	if err != nil {
		direction = flipDirection(direction)
		stopIds, err = feed.StopsOnRoute(routeId, direction)
	}
	if err != nil {
		writeLookupError(h.log, w, err)
		return
	}

	response := routeStopsResponse{
		RouteId:   routeId,
		Direction: direction,
		Stops:     make([]stopEntry, 0, len(stopIds)),
	}
	for _, stopId := range stopIds {
		name, err := feed.StopDisplayName(stopId)
		if err != nil {
			name = stopId
		}
		response.Stops = append(response.Stops, stopEntry{StopId: stopId, Name: name})
	}
	writeJSON(h.log, w, response)
}

func flipDirection(direction int) int {
	if direction == 0 {
		return 1
	}
	return 0
}

// watchHandler starts and cancels session watches
type watchHandler struct {
	log       *logger.Logger
	scheduler *Scheduler
}

// watchRequest is the body of a start watch request
type watchRequest struct {
	RouteId       string `json:"route_id"`
	StopId        string `json:"stop_id"`
	Direction     int    `json:"direction"`
	LeewayMinutes int    `json:"leeway_minutes"`
}

// ServeHTTP implements watchHandler's http.Handler interface
func (h *watchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sessionId := mux.Vars(r)["sessionId"]

	if r.Method == http.MethodDelete {
		h.scheduler.CancelWatch(sessionId)
		w.WriteHeader(http.StatusNoContent)
		return
	}

	var request watchRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		http.Error(w, "malformed watch request body", http.StatusBadRequest)
		return
	}
	if request.RouteId == "" || request.StopId == "" || request.LeewayMinutes < 0 {
		http.Error(w, "route_id, stop_id and a non negative leeway_minutes are required", http.StatusBadRequest)
		return
	}

	err := h.scheduler.StartWatch(sessionId, request.RouteId, request.StopId, request.Direction, request.LeewayMinutes)
	if err != nil {
		writeLookupError(h.log, w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// writeJSON marshals payload to http.ResponseWriter
func writeJSON(log *logger.Logger, w http.ResponseWriter, payload interface{}) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshaling response to json: error:%v\n", err)
		http.Error(w, "Error serving request", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err = w.Write(jsonData); err != nil {
		log.Printf("Error writing json response: %s", err)
	}
}

// writeLookupError maps feed lookup failures to http statuses
func writeLookupError(log *logger.Logger, w http.ResponseWriter, err error) {
	if errors.Is(err, gtfs.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	log.Printf("Error serving request: %v", err)
	http.Error(w, "Error serving request", http.StatusInternalServerError)
}

// createServer creates configured http.Server for the arrival watch service
func createServer(log *logger.Logger,
	feeds *gtfs.FeedStore,
	scheduler *Scheduler,
	httpPort int) *http.Server {

	r := mux.NewRouter()
	r.Handle("/", &defaultHttpHandler{})
	r.Handle("/routes/number/{number}", &routeNumberHandler{log: log, feeds: feeds}).Methods(http.MethodGet)
	r.Handle("/routes/{routeId}/name", &routeNameHandler{log: log, feeds: feeds}).Methods(http.MethodGet)
	r.Handle("/routes/{routeId}/stops", &routeStopsHandler{log: log, feeds: feeds}).Methods(http.MethodGet)
	r.Handle("/stops/{stopId}/name", &stopNameHandler{log: log, feeds: feeds}).Methods(http.MethodGet)
	r.Handle("/watch/{sessionId}", &watchHandler{log: log, scheduler: scheduler}).
		Methods(http.MethodPut, http.MethodDelete)

	srv := &http.Server{
		Addr: strings.Join([]string{"0.0.0.0", strconv.Itoa(httpPort)}, ":"),
		// Good practice to set timeouts to avoid Slowloris attacks.
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      r,
	}
	return srv
}

// RunWebService starts up the arrival watch web service, and terminates on
// shutdown signal
func RunWebService(log *logger.Logger,
	wg *sync.WaitGroup,
	feeds *gtfs.FeedStore,
	scheduler *Scheduler,
	httpPort int,
	shutdownSignal chan bool) {

	wg.Add(1)
	defer wg.Done()
	srv := createServer(log, feeds, scheduler, httpPort)
	log.Printf("Starting server on port %d", httpPort)
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			log.Printf("server ListenAndServe ended. %s", err)
		}
	}()

	<-shutdownSignal
	log.Printf("ending webservice on shutdown signal")
	shutdownCtx, serverCancelFunc := context.WithTimeout(context.Background(), time.Duration(5)*time.Second)
	defer serverCancelFunc()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("error shutting down webservice, error:%s", err)
	}
}
