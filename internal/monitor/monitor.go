// Package monitor reconciles live vehicle positions against the static
// schedule and classifies what it finds: delays, missing trips, duplicate
// vehicle labels, and anomalies.
package monitor

import (
	"sort"
	"time"

	"rubanwatch/internal/history"
	"rubanwatch/internal/realtime"
	"rubanwatch/internal/schedule"
)

// Report is the outcome of one monitor cycle.
type Report struct {
	GeneratedAt    time.Time
	Vehicles       map[string]*VehicleReport
	ObservedTrips  map[string]struct{}
	ScheduledTrips map[string]struct{}
	Missing        []string
	Duplicates     map[string][]string
	Anomalies      []Anomaly
	Predictions    map[string]float64
}

// HasProblem reports whether the cycle found anything alert-worthy.
func (r *Report) HasProblem() bool {
	return len(r.Missing) > 0 || len(r.Duplicates) > 0 || len(r.Anomalies) > 0
}

// SortedVehicles returns the reconciled vehicles ordered by label, then
// vehicle id for labels shared across vehicles.
func (r *Report) SortedVehicles() []*VehicleReport {
	out := make([]*VehicleReport, 0, len(r.Vehicles))
	for _, v := range r.Vehicles {
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Label != out[j].Label {
			return out[i].Label < out[j].Label
		}
		return out[i].VehicleID < out[j].VehicleID
	})
	return out
}

// Run executes one monitor cycle: reconcile the feed, diff against the
// scheduled trip set, detect anomalies against history recorded in earlier
// cycles, and compute per-route predictions. It does not mutate history;
// call UpdateHistory afterwards to fold this cycle in.
func Run(idx *schedule.Index, entities []realtime.VehicleEntity, hist *history.History, now time.Time, thresholdMin int) *Report {
	vehicles, observed, duplicates := Reconcile(entities, idx, now)
	scheduled := idx.TripsScheduledAt(now)

	return &Report{
		GeneratedAt:    now,
		Vehicles:       vehicles,
		ObservedTrips:  observed,
		ScheduledTrips: scheduled,
		Missing:        MissingTrips(scheduled, observed),
		Duplicates:     duplicates,
		Anomalies:      DetectAnomalies(vehicles, hist, thresholdMin),
		Predictions:    hist.Predict(),
	}
}

// UpdateHistory folds one cycle's per-route averages into history and
// returns the same aggregates for persistence, keyed by route id. Routes
// with an unresolved id are excluded.
func UpdateHistory(report *Report, idx *schedule.Index, hist *history.History) map[string]history.RouteStat {
	type acc struct {
		sum   float64
		count int
	}
	byRoute := make(map[string]*acc)
	for _, v := range report.Vehicles {
		if v.RouteID == UnknownRoute {
			continue
		}
		a := byRoute[v.RouteID]
		if a == nil {
			a = &acc{}
			byRoute[v.RouteID] = a
		}
		a.sum += v.DelayMinutes()
		a.count++
	}

	stats := make(map[string]history.RouteStat, len(byRoute))
	for routeID, a := range byRoute {
		avg := a.sum / float64(a.count)
		hist.Append(routeID, history.Sample{Label: idx.RouteShortName(routeID), AvgDelayMin: avg})
		stats[routeID] = history.RouteStat{RouteID: routeID, AvgDelayMin: avg, Vehicles: a.count}
	}
	return stats
}
