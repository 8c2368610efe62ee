package schedule

import (
	"sort"
	"strconv"

	"rubanwatch/internal/gtfs"
)

// stopTimeEntry is one scheduled stop visit with its sequence number parsed.
type stopTimeEntry struct {
	seq       int
	arrival   string // raw HH:MM:SS, may be empty
	departure string
	stopID    string
}

type calendarRow struct {
	serviceID string
	startDate int // YYYYMMDD, 0 when unparsable (never active)
	endDate   int
	weekdays  [7]bool // indexed by time.Weekday (Sunday = 0)
}

type calendarException struct {
	serviceID     string
	date          int
	exceptionType int // 1 = added, 2 = removed
}

// Index holds the static schedule as lookup maps built once per feed load,
// replacing repeated table scans with O(1) access.
type Index struct {
	routes        map[string]gtfs.Route
	trips         map[string]gtfs.Trip
	stopNames     map[string]string
	stopCoords    map[string][2]float64 // lat, lon
	tripStopTimes map[string][]stopTimeEntry // sorted by sequence
	tripStopBySeq map[string]map[int]stopTimeEntry
	calendar      []calendarRow
	exceptions    []calendarException

	stopIDsByName   map[string][]string
	linesByStopName map[string][]string // sorted route short names serving the stop
}

// NewIndex builds the lookup maps from a parsed feed. Rows with unparsable
// stop sequences or dates degrade to never-matched values instead of failing
// the load.
func NewIndex(feed *gtfs.Feed) *Index {
	idx := &Index{
		routes:          make(map[string]gtfs.Route, len(feed.Routes)),
		trips:           make(map[string]gtfs.Trip, len(feed.Trips)),
		stopNames:       make(map[string]string, len(feed.Stops)),
		stopCoords:      make(map[string][2]float64, len(feed.Stops)),
		tripStopTimes:   make(map[string][]stopTimeEntry),
		tripStopBySeq:   make(map[string]map[int]stopTimeEntry),
		stopIDsByName:   make(map[string][]string),
		linesByStopName: make(map[string][]string),
	}

	for _, r := range feed.Routes {
		idx.routes[r.RouteID] = r
	}
	for _, t := range feed.Trips {
		idx.trips[t.TripID] = t
	}
	for _, s := range feed.Stops {
		idx.stopNames[s.StopID] = s.StopName
		if s.StopName != "" {
			idx.stopIDsByName[s.StopName] = append(idx.stopIDsByName[s.StopName], s.StopID)
		}
		lat, errLat := strconv.ParseFloat(s.StopLat, 64)
		lon, errLon := strconv.ParseFloat(s.StopLon, 64)
		if errLat == nil && errLon == nil {
			idx.stopCoords[s.StopID] = [2]float64{lat, lon}
		}
	}

	for _, st := range feed.StopTimes {
		seq, err := strconv.Atoi(st.StopSequence)
		if err != nil || seq < 0 {
			continue
		}
		entry := stopTimeEntry{seq: seq, arrival: st.ArrivalTime, departure: st.DepartureTime, stopID: st.StopID}
		idx.tripStopTimes[st.TripID] = append(idx.tripStopTimes[st.TripID], entry)
		if idx.tripStopBySeq[st.TripID] == nil {
			idx.tripStopBySeq[st.TripID] = make(map[int]stopTimeEntry)
		}
		idx.tripStopBySeq[st.TripID][seq] = entry
	}
	for tripID := range idx.tripStopTimes {
		entries := idx.tripStopTimes[tripID]
		sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })
	}

	for _, c := range feed.Calendar {
		row := calendarRow{
			serviceID: c.ServiceID,
			startDate: atoiOrZero(c.StartDate),
			endDate:   atoiOrZero(c.EndDate),
		}
		row.weekdays[0] = c.Sunday == "1"
		row.weekdays[1] = c.Monday == "1"
		row.weekdays[2] = c.Tuesday == "1"
		row.weekdays[3] = c.Wednesday == "1"
		row.weekdays[4] = c.Thursday == "1"
		row.weekdays[5] = c.Friday == "1"
		row.weekdays[6] = c.Saturday == "1"
		idx.calendar = append(idx.calendar, row)
	}

	for _, cd := range feed.CalendarDates {
		excType, err := strconv.Atoi(cd.ExceptionType)
		if err != nil {
			continue
		}
		idx.exceptions = append(idx.exceptions, calendarException{
			serviceID:     cd.ServiceID,
			date:          atoiOrZero(cd.Date),
			exceptionType: excType,
		})
	}

	idx.buildStopDirectory(feed)
	return idx
}

// buildStopDirectory maps each stop name to the set of route short names
// serving it, for the dashboard's stop picker.
func (idx *Index) buildStopDirectory(feed *gtfs.Feed) {
	lines := make(map[string]map[string]struct{})
	for _, st := range feed.StopTimes {
		trip, ok := idx.trips[st.TripID]
		if !ok {
			continue
		}
		name := idx.stopNames[st.StopID]
		if name == "" {
			continue
		}
		short := trip.RouteID
		if r, ok := idx.routes[trip.RouteID]; ok && r.RouteShortName != "" {
			short = r.RouteShortName
		}
		if lines[name] == nil {
			lines[name] = make(map[string]struct{})
		}
		lines[name][short] = struct{}{}
	}
	for name, set := range lines {
		sorted := make([]string, 0, len(set))
		for s := range set {
			sorted = append(sorted, s)
		}
		sort.Strings(sorted)
		idx.linesByStopName[name] = sorted
	}
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// HasTrip reports whether the trip exists in the static schedule.
func (idx *Index) HasTrip(tripID string) bool {
	_, ok := idx.trips[tripID]
	return ok
}

// StopName returns the display name for a stop id, or "" when unknown.
func (idx *Index) StopName(stopID string) string {
	return idx.stopNames[stopID]
}

// StopLocation returns a stop's coordinates when the schedule carries them.
func (idx *Index) StopLocation(stopID string) (lat, lon float64, ok bool) {
	c, ok := idx.stopCoords[stopID]
	return c[0], c[1], ok
}

// StopIDsForName returns the stop ids sharing a display name.
func (idx *Index) StopIDsForName(name string) []string {
	return idx.stopIDsByName[name]
}

// StopDirectoryEntry is one row of the dashboard's stop picker.
type StopDirectoryEntry struct {
	StopName string   `json:"stop_name"`
	Lines    []string `json:"lines"`
}

// StopDirectory returns all distinct stop names with their serving lines,
// sorted by name.
func (idx *Index) StopDirectory() []StopDirectoryEntry {
	names := make([]string, 0, len(idx.stopIDsByName))
	for name := range idx.stopIDsByName {
		names = append(names, name)
	}
	sort.Strings(names)
	entries := make([]StopDirectoryEntry, 0, len(names))
	for _, name := range names {
		entries = append(entries, StopDirectoryEntry{StopName: name, Lines: idx.linesByStopName[name]})
	}
	return entries
}

// TripSummary holds the rider-facing description of a trip.
type TripSummary struct {
	Line        string
	Destination string
	Departure   string // first scheduled departure, raw HH:MM:SS
}

// Summary resolves a trip's line, headsign and first departure, falling back
// to "?" for anything the schedule does not carry.
func (idx *Index) Summary(tripID string) TripSummary {
	s := TripSummary{Line: "?", Destination: "?", Departure: "?"}
	trip, ok := idx.trips[tripID]
	if !ok {
		return s
	}
	if trip.TripHeadsign != "" {
		s.Destination = trip.TripHeadsign
	}
	if r, ok := idx.routes[trip.RouteID]; ok && r.RouteShortName != "" {
		s.Line = r.RouteShortName
	} else {
		s.Line = trip.RouteID
	}
	if entries := idx.tripStopTimes[tripID]; len(entries) > 0 && entries[0].departure != "" {
		s.Departure = entries[0].departure
	}
	return s
}

// TripRoute returns the route id a trip runs on, or "" when the trip is
// not in the schedule.
func (idx *Index) TripRoute(tripID string) string {
	return idx.trips[tripID].RouteID
}

// RouteShortName resolves a route id to its display name, falling back to the id.
func (idx *Index) RouteShortName(routeID string) string {
	if r, ok := idx.routes[routeID]; ok && r.RouteShortName != "" {
		return r.RouteShortName
	}
	return routeID
}
