package watch

// departureDecision is the outcome of one polling pass over both arrival
// data sources
type departureDecision int

const (
	keepWaiting departureDecision = iota
	notifyLive
	notifySchedule
)

// departureWindowSeconds is how close the "time to leave" instant must be
// before a notification fires
const departureWindowSeconds = 60

// decideDeparture merges live forecast waits with the precomputed arrival
// timetable. Live data, when present and still outside the leave window,
// always wins over the timetable: the timetable is consulted only when the
// provider has no usable prediction at all, which happens silently when a
// vehicle drops off the live feed.
//
// forecastWaits holds seconds until each predicted arrival, timetable holds
// absolute arrival timestamps ascending, leewaySeconds is the user's walking
// time
func decideDeparture(forecastWaits []int64, timetable []int64, now int64, leewaySeconds int64) departureDecision {
	var liveCandidates []int64
	for _, wait := range forecastWaits {
		if wait-leewaySeconds > 0 {
			liveCandidates = append(liveCandidates, wait)
		}
	}

	if len(liveCandidates) > 0 {
		for _, wait := range liveCandidates {
			if wait-leewaySeconds < departureWindowSeconds {
				return notifyLive
			}
		}
		return keepWaiting
	}

	leaveBy := now + leewaySeconds
	for _, arrival := range timetable {
		if arrival > leaveBy && arrival-leaveBy < departureWindowSeconds {
			return notifySchedule
		}
	}
	return keepWaiting
}
