package monitor

import (
	"math"
	"sort"

	"rubanwatch/internal/history"
)

// Anomaly reasons, also used verbatim in webhook payloads.
const (
	ReasonLargeDeviation  = "large schedule deviation"
	ReasonHistoryAbnormal = "delay abnormal versus route history"
)

// Anomaly flags one vehicle whose delay breaks a detection rule. A vehicle
// breaking both rules yields two entries.
type Anomaly struct {
	Vehicle *VehicleReport
	Reason  string
}

// historyAbnormalFloorMin keeps the history rule from firing on routes
// whose average hovers near zero, where any delay doubles the mean.
const historyAbnormalFloorMin = 3.0

// DetectAnomalies applies the detection rules to every reconciled vehicle.
// The threshold is in minutes and inclusive: a delay of exactly threshold
// minutes is flagged. The history rule compares against the route's mean
// recorded before this cycle. Results are sorted by vehicle label.
func DetectAnomalies(vehicles map[string]*VehicleReport, hist *history.History, thresholdMin int) []Anomaly {
	var anomalies []Anomaly
	for _, v := range vehicles {
		delayMin := math.Abs(v.DelayMinutes())

		if math.Abs(float64(v.DelaySeconds)) >= float64(thresholdMin)*60 {
			anomalies = append(anomalies, Anomaly{Vehicle: v, Reason: ReasonLargeDeviation})
		}

		if v.RouteID != UnknownRoute {
			if avg, ok := hist.Mean(v.RouteID); ok {
				if delayMin > 2*math.Abs(avg) && delayMin > historyAbnormalFloorMin {
					anomalies = append(anomalies, Anomaly{Vehicle: v, Reason: ReasonHistoryAbnormal})
				}
			}
		}
	}

	sort.Slice(anomalies, func(i, j int) bool {
		if anomalies[i].Vehicle.Label != anomalies[j].Vehicle.Label {
			return anomalies[i].Vehicle.Label < anomalies[j].Vehicle.Label
		}
		return anomalies[i].Reason < anomalies[j].Reason
	})
	return anomalies
}
