// Package display renders monitor reports as console text.
package display

import (
	"fmt"
	"io"
	"time"

	"rubanwatch/internal/history"
	"rubanwatch/internal/monitor"
	"rubanwatch/internal/schedule"
)

// onTimeBand is the delay magnitude treated as on time in the listing.
const onTimeBand = 30 * time.Second

// Renderer writes cycle reports to a terminal.
type Renderer struct {
	w   io.Writer
	idx *schedule.Index

	// AlertOnly suppresses the full vehicle listing, keeping only
	// problem blocks.
	AlertOnly bool
	// Follow restricts the listing to one vehicle label.
	Follow string
	// Beep rings the terminal bell when a cycle has problems.
	Beep bool
}

// NewRenderer creates a console renderer.
func NewRenderer(w io.Writer, idx *schedule.Index) *Renderer {
	return &Renderer{w: w, idx: idx}
}

// Render writes one cycle report.
func (r *Renderer) Render(report *monitor.Report, hist *history.History) {
	fmt.Fprintf(r.w, "=== %s | %d vehicles | %d scheduled trips ===\n",
		report.GeneratedAt.Format("15:04:05"),
		len(report.Vehicles),
		len(report.ScheduledTrips))

	if !r.AlertOnly {
		r.renderVehicles(report)
		r.renderAverages(hist)
		r.renderPredictions(report, hist)
	}

	r.renderDuplicates(report)
	r.renderMissing(report)
	r.renderAnomalies(report)

	if report.HasProblem() && r.Beep {
		fmt.Fprint(r.w, "\a")
	}
	fmt.Fprintln(r.w)
}

func (r *Renderer) renderVehicles(report *monitor.Report) {
	for _, v := range report.SortedVehicles() {
		if r.Follow != "" && v.Label != r.Follow {
			continue
		}
		s := r.idx.Summary(v.TripID)
		fmt.Fprintf(r.w, "  [%s] line %s -> %s | %s %s | %s\n",
			v.Label, s.Line, s.Destination, v.Status, v.NextStop, formatDelay(v.DelaySeconds))
	}
}

func formatDelay(seconds int) string {
	d := time.Duration(seconds) * time.Second
	switch {
	case d >= onTimeBand:
		return fmt.Sprintf("late %s", d)
	case d <= -onTimeBand:
		return fmt.Sprintf("early %s", -d)
	default:
		return "on time"
	}
}

func (r *Renderer) renderAverages(hist *history.History) {
	routes := hist.Routes()
	if len(routes) == 0 {
		return
	}
	fmt.Fprintln(r.w, "  -- session averages --")
	for _, routeID := range routes {
		if avg, ok := hist.Mean(routeID); ok {
			fmt.Fprintf(r.w, "  line %s: %+.1f min over %d cycles\n",
				hist.Label(routeID), avg, len(hist.Samples(routeID)))
		}
	}
}

func (r *Renderer) renderPredictions(report *monitor.Report, hist *history.History) {
	if len(report.Predictions) == 0 {
		return
	}
	fmt.Fprintln(r.w, "  -- expected delays --")
	for _, routeID := range hist.Routes() {
		if pred, ok := report.Predictions[routeID]; ok {
			fmt.Fprintf(r.w, "  line %s: %+.1f min expected\n", hist.Label(routeID), pred)
		}
	}
}

func (r *Renderer) renderDuplicates(report *monitor.Report) {
	for label, trips := range report.Duplicates {
		fmt.Fprintf(r.w, "  !! vehicle %s reported on %d trips: %v\n", label, len(trips), trips)
	}
}

func (r *Renderer) renderMissing(report *monitor.Report) {
	if len(report.Missing) == 0 {
		return
	}
	fmt.Fprintf(r.w, "  !! %d scheduled trips without a vehicle:\n", len(report.Missing))
	for _, tripID := range report.Missing {
		s := r.idx.Summary(tripID)
		fmt.Fprintf(r.w, "     line %s -> %s (departure %s)\n", s.Line, s.Destination, s.Departure)
	}
}

func (r *Renderer) renderAnomalies(report *monitor.Report) {
	for _, a := range report.Anomalies {
		v := a.Vehicle
		fmt.Fprintf(r.w, "  !! anomaly [%s] line %s: %+.1f min (%s)\n",
			v.Label, r.idx.RouteShortName(v.RouteID), v.DelayMinutes(), a.Reason)
	}
}
