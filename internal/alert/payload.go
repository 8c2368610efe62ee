// Package alert pushes monitor findings to external sinks: an HTTP webhook
// and, optionally, a NATS subject.
package alert

import (
	"time"

	"rubanwatch/internal/monitor"
)

// AnomalyPayload is one flagged vehicle in the outbound payload.
type AnomalyPayload struct {
	Vehicle  string  `json:"vehicle"`
	RouteID  string  `json:"route_id"`
	DelayMin float64 `json:"delay_min"`
	Reason   string  `json:"reason"`
}

// Payload is the JSON body sent for an alert-worthy cycle.
type Payload struct {
	Timestamp    string              `json:"timestamp"`
	MissingTrips []string            `json:"missing_trips"`
	Duplicates   map[string][]string `json:"duplicates"`
	Anomalies    []AnomalyPayload    `json:"anomalies"`
}

// BuildPayload flattens a report into the wire shape.
func BuildPayload(report *monitor.Report) Payload {
	p := Payload{
		Timestamp:    report.GeneratedAt.Format(time.RFC3339),
		MissingTrips: report.Missing,
		Duplicates:   report.Duplicates,
		Anomalies:    make([]AnomalyPayload, 0, len(report.Anomalies)),
	}
	if p.MissingTrips == nil {
		p.MissingTrips = []string{}
	}
	if p.Duplicates == nil {
		p.Duplicates = map[string][]string{}
	}
	for _, a := range report.Anomalies {
		p.Anomalies = append(p.Anomalies, AnomalyPayload{
			Vehicle:  a.Vehicle.Label,
			RouteID:  a.Vehicle.RouteID,
			DelayMin: a.Vehicle.DelayMinutes(),
			Reason:   a.Reason,
		})
	}
	return p
}
