package monitor

import (
	"sort"
	"time"

	"rubanwatch/internal/realtime"
	"rubanwatch/internal/schedule"
)

// UnknownRoute is the display sentinel for a vehicle whose route cannot be
// resolved from either the feed or the static schedule.
const UnknownRoute = "?"

// VehicleReport is the reconciled view of one vehicle: the live feed entity
// joined against the static schedule.
type VehicleReport struct {
	VehicleID    string
	Label        string
	TripID       string
	RouteID      string
	Status       StopStatus
	Occupancy    Occupancy
	Timestamp    *time.Time
	StopSequence *int
	DelaySeconds int
	NextStop     string
	Latitude     *float64
	Longitude    *float64
}

// DelayMinutes returns the delay as fractional minutes.
func (v *VehicleReport) DelayMinutes() float64 {
	return float64(v.DelaySeconds) / 60.0
}

// Reconcile joins feed entities against the schedule index. It returns the
// latest report per vehicle id, the set of trip ids observed in the feed,
// and vehicle labels seen on more than one distinct trip. Entities missing
// a trip id or vehicle id are skipped. When the same vehicle id appears
// several times the last entity wins.
func Reconcile(entities []realtime.VehicleEntity, idx *schedule.Index, now time.Time) (map[string]*VehicleReport, map[string]struct{}, map[string][]string) {
	vehicles := make(map[string]*VehicleReport)
	observed := make(map[string]struct{})
	tripsByLabel := make(map[string]map[string]struct{})

	for _, e := range entities {
		if e.TripID == "" || e.VehicleID == "" {
			continue
		}
		observed[e.TripID] = struct{}{}

		label := e.Label
		if label == "" {
			label = e.VehicleID
		}

		routeID := e.RouteID
		if routeID == "" {
			routeID = idx.TripRoute(e.TripID)
		}
		if routeID == "" {
			routeID = UnknownRoute
		}

		report := &VehicleReport{
			VehicleID:    e.VehicleID,
			Label:        label,
			TripID:       e.TripID,
			RouteID:      routeID,
			Status:       StopStatusFromCode(int(e.Status)),
			Occupancy:    OccupancyNotReported,
			Timestamp:    e.Timestamp,
			StopSequence: e.StopSequence,
			NextStop:     idx.NextStopName(e.TripID, e.StopSequence),
			Latitude:     e.Latitude,
			Longitude:    e.Longitude,
		}
		if e.Occupancy != nil {
			report.Occupancy = OccupancyFromCode(int(*e.Occupancy))
		}
		if e.StopSequence != nil {
			observedAt := now
			if e.Timestamp != nil {
				observedAt = *e.Timestamp
			}
			report.DelaySeconds = idx.EstimateDelay(e.TripID, *e.StopSequence, observedAt, now)
		}

		vehicles[e.VehicleID] = report

		if tripsByLabel[label] == nil {
			tripsByLabel[label] = make(map[string]struct{})
		}
		tripsByLabel[label][e.TripID] = struct{}{}
	}

	duplicates := make(map[string][]string)
	for label, trips := range tripsByLabel {
		if len(trips) < 2 {
			continue
		}
		list := make([]string, 0, len(trips))
		for tripID := range trips {
			list = append(list, tripID)
		}
		sort.Strings(list)
		duplicates[label] = list
	}

	return vehicles, observed, duplicates
}

// MissingTrips returns scheduled trip ids absent from the observed set,
// sorted for stable output.
func MissingTrips(scheduled, observed map[string]struct{}) []string {
	var missing []string
	for tripID := range scheduled {
		if _, ok := observed[tripID]; !ok {
			missing = append(missing, tripID)
		}
	}
	sort.Strings(missing)
	return missing
}
