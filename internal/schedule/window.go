package schedule

import "time"

const (
	// departureGrace keeps a trip "currently scheduled" for a short tail
	// after its last arrival, covering dispatch slack at the terminus.
	departureGrace = 15 * time.Minute

	// Trips whose first departure falls before overnightStartHour were
	// generated against the previous service day; when queried at or after
	// overnightQueryHour their window is shifted back one calendar day.
	overnightStartHour = 5
	overnightQueryHour = 18
)

// TripsScheduledAt returns the set of trip ids whose scheduled operating
// window (first departure to last arrival plus grace) contains now.
func (idx *Index) TripsScheduledAt(now time.Time) map[string]struct{} {
	scheduled := make(map[string]struct{})

	active := idx.ActiveServices(now)
	if len(active) == 0 {
		return scheduled
	}

	base := serviceDayStart(now)
	for tripID, trip := range idx.trips {
		if _, ok := active[trip.ServiceID]; !ok {
			continue
		}
		start, end, ok := idx.tripWindow(tripID, base)
		if !ok {
			continue
		}

		if start.Hour() < overnightStartHour && now.Hour() >= overnightQueryHour {
			start = start.AddDate(0, 0, -1)
			end = end.AddDate(0, 0, -1)
		}

		if !start.After(now) && !now.After(end.Add(departureGrace)) {
			scheduled[tripID] = struct{}{}
		}
	}

	return scheduled
}

// tripWindow computes the trip's first departure and last arrival as absolute
// instants on the given service day. Returns ok=false when the trip has no
// stop-time entries or none of them parse.
func (idx *Index) tripWindow(tripID string, base time.Time) (start, end time.Time, ok bool) {
	entries := idx.tripStopTimes[tripID]
	if len(entries) == 0 {
		return time.Time{}, time.Time{}, false
	}

	var haveStart, haveEnd bool
	for _, e := range entries {
		if e.departure != "" {
			if t, err := ParseTime(e.departure, base); err == nil {
				if !haveStart || t.Before(start) {
					start = t
				}
				haveStart = true
			}
		}
		if e.arrival != "" {
			if t, err := ParseTime(e.arrival, base); err == nil {
				if !haveEnd || t.After(end) {
					end = t
				}
				haveEnd = true
			}
		}
	}
	if !haveStart || !haveEnd {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
