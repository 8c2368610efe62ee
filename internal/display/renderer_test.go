package display

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"rubanwatch/internal/gtfs"
	"rubanwatch/internal/history"
	"rubanwatch/internal/monitor"
	"rubanwatch/internal/schedule"
)

func displayFixture() *schedule.Index {
	return schedule.NewIndex(&gtfs.Feed{
		Routes: []gtfs.Route{{RouteID: "R1", RouteShortName: "T1"}},
		Trips:  []gtfs.Trip{{TripID: "TRIP1", RouteID: "R1", ServiceID: "ALL", TripHeadsign: "Quetigny"}},
		StopTimes: []gtfs.StopTime{
			{TripID: "TRIP1", StopID: "A", StopSequence: "1", DepartureTime: "10:00:00", ArrivalTime: "10:00:00"},
		},
	})
}

func sampleReport() *monitor.Report {
	return &monitor.Report{
		GeneratedAt: time.Date(2025, 7, 2, 10, 0, 0, 0, time.UTC),
		Vehicles: map[string]*monitor.VehicleReport{
			"V1": {VehicleID: "V1", Label: "501", TripID: "TRIP1", RouteID: "R1", DelaySeconds: 120, NextStop: "Darcy"},
			"V2": {VehicleID: "V2", Label: "502", TripID: "TRIP1", RouteID: "R1", DelaySeconds: 0, NextStop: "Darcy"},
		},
		Missing: []string{"TRIP9"},
	}
}

func TestRendererListing(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, displayFixture())
	r.Render(sampleReport(), history.New())

	out := buf.String()
	for _, want := range []string{"[501]", "[502]", "late 2m0s", "on time", "line T1 -> Quetigny", "without a vehicle"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\a") {
		t.Error("bell must be off by default")
	}
}

func TestRendererAlertOnly(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, displayFixture())
	r.AlertOnly = true
	r.Render(sampleReport(), history.New())

	out := buf.String()
	if strings.Contains(out, "[501]") {
		t.Error("alert-only output should not list vehicles")
	}
	if !strings.Contains(out, "without a vehicle") {
		t.Errorf("alert-only output must keep problem blocks:\n%s", out)
	}
}

func TestRendererFollow(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, displayFixture())
	r.Follow = "502"
	r.Render(sampleReport(), history.New())

	out := buf.String()
	if strings.Contains(out, "[501]") || !strings.Contains(out, "[502]") {
		t.Errorf("follow filter not applied:\n%s", out)
	}
}

func TestRendererBeepOnProblem(t *testing.T) {
	var buf bytes.Buffer
	r := NewRenderer(&buf, displayFixture())
	r.Beep = true
	r.Render(sampleReport(), history.New())
	if !strings.Contains(buf.String(), "\a") {
		t.Error("bell expected when the cycle has problems")
	}

	buf.Reset()
	clean := sampleReport()
	clean.Missing = nil
	r.Render(clean, history.New())
	if strings.Contains(buf.String(), "\a") {
		t.Error("no bell expected on a clean cycle")
	}
}
