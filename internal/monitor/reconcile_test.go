package monitor

import (
	"reflect"
	"testing"
	"time"

	"rubanwatch/internal/gtfs"
	"rubanwatch/internal/realtime"
	"rubanwatch/internal/schedule"
)

func monitorFixture() *schedule.Index {
	return schedule.NewIndex(&gtfs.Feed{
		Routes: []gtfs.Route{
			{RouteID: "R1", RouteShortName: "T1"},
			{RouteID: "R2", RouteShortName: "T2"},
		},
		Stops: []gtfs.Stop{
			{StopID: "A", StopName: "République"},
			{StopID: "B", StopName: "Darcy"},
		},
		Trips: []gtfs.Trip{
			{TripID: "TRIP1", RouteID: "R1", ServiceID: "ALL", TripHeadsign: "Quetigny"},
			{TripID: "TRIP2", RouteID: "R2", ServiceID: "ALL", TripHeadsign: "Chenôve"},
			{TripID: "TRIP3", RouteID: "R1", ServiceID: "ALL"},
		},
		StopTimes: []gtfs.StopTime{
			{TripID: "TRIP1", StopID: "A", StopSequence: "1", ArrivalTime: "10:00:00", DepartureTime: "10:00:00"},
			{TripID: "TRIP1", StopID: "B", StopSequence: "2", ArrivalTime: "10:05:00", DepartureTime: "10:05:00"},
			{TripID: "TRIP2", StopID: "A", StopSequence: "1", ArrivalTime: "10:00:00", DepartureTime: "10:00:00"},
			{TripID: "TRIP3", StopID: "A", StopSequence: "1", ArrivalTime: "10:00:00", DepartureTime: "10:00:00"},
		},
		Calendar: []gtfs.CalendarEntry{
			{
				ServiceID: "ALL",
				Monday:    "1", Tuesday: "1", Wednesday: "1", Thursday: "1",
				Friday: "1", Saturday: "1", Sunday: "1",
				StartDate: "20250101", EndDate: "20251231",
			},
		},
	})
}

func seq(n int) *int { return &n }

func ts(t time.Time) *time.Time { return &t }

func TestReconcile(t *testing.T) {
	idx := monitorFixture()
	now := time.Date(2025, 7, 2, 10, 0, 0, 0, time.UTC)

	entities := []realtime.VehicleEntity{
		// Complete entity, three minutes late at stop 1.
		{
			VehicleID: "V1", Label: "501", TripID: "TRIP1", RouteID: "R1",
			StopSequence: seq(1),
			Timestamp:    ts(now.Add(3 * time.Minute)),
		},
		// No label: falls back to the vehicle id. No route: resolved
		// from the schedule.
		{VehicleID: "V2", TripID: "TRIP2", StopSequence: seq(1), Timestamp: ts(now)},
		// Partial entities are skipped entirely.
		{VehicleID: "", TripID: "TRIP3"},
		{VehicleID: "V3", TripID: ""},
	}

	vehicles, observed, duplicates := Reconcile(entities, idx, now)

	if len(vehicles) != 2 {
		t.Fatalf("got %d vehicles, want 2", len(vehicles))
	}

	v1 := vehicles["V1"]
	if v1.Label != "501" || v1.RouteID != "R1" {
		t.Errorf("V1 = %+v, want label 501 on R1", v1)
	}
	if v1.DelaySeconds != 180 {
		t.Errorf("V1 delay = %d, want 180", v1.DelaySeconds)
	}
	if v1.NextStop != "Darcy" {
		t.Errorf("V1 next stop = %q, want Darcy", v1.NextStop)
	}

	v2 := vehicles["V2"]
	if v2.Label != "V2" {
		t.Errorf("V2 label = %q, want fallback to vehicle id", v2.Label)
	}
	if v2.RouteID != "R2" {
		t.Errorf("V2 route = %q, want R2 resolved from schedule", v2.RouteID)
	}

	wantObserved := map[string]struct{}{"TRIP1": {}, "TRIP2": {}}
	if !reflect.DeepEqual(observed, wantObserved) {
		t.Errorf("observed = %v, want %v", observed, wantObserved)
	}
	if len(duplicates) != 0 {
		t.Errorf("duplicates = %v, want none", duplicates)
	}
}

func TestReconcile_LastEntityWinsPerVehicle(t *testing.T) {
	idx := monitorFixture()
	now := time.Date(2025, 7, 2, 10, 0, 0, 0, time.UTC)

	entities := []realtime.VehicleEntity{
		{VehicleID: "V1", Label: "501", TripID: "TRIP1", RouteID: "R1", StopSequence: seq(1), Timestamp: ts(now)},
		{VehicleID: "V1", Label: "501", TripID: "TRIP1", RouteID: "R1", StopSequence: seq(2), Timestamp: ts(now.Add(5 * time.Minute))},
	}

	vehicles, _, _ := Reconcile(entities, idx, now)
	if len(vehicles) != 1 {
		t.Fatalf("got %d vehicles, want 1", len(vehicles))
	}
	v := vehicles["V1"]
	if v.StopSequence == nil || *v.StopSequence != 2 {
		t.Errorf("stop sequence = %v, want the later entity's 2", v.StopSequence)
	}
}

func TestReconcile_DuplicateLabelAcrossTrips(t *testing.T) {
	idx := monitorFixture()
	now := time.Date(2025, 7, 2, 10, 0, 0, 0, time.UTC)

	entities := []realtime.VehicleEntity{
		{VehicleID: "V1", Label: "501", TripID: "TRIP1", RouteID: "R1"},
		{VehicleID: "V2", Label: "501", TripID: "TRIP2", RouteID: "R2"},
	}

	_, _, duplicates := Reconcile(entities, idx, now)
	want := map[string][]string{"501": {"TRIP1", "TRIP2"}}
	if !reflect.DeepEqual(duplicates, want) {
		t.Errorf("duplicates = %v, want %v", duplicates, want)
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	idx := monitorFixture()
	now := time.Date(2025, 7, 2, 10, 0, 0, 0, time.UTC)
	entities := []realtime.VehicleEntity{
		{VehicleID: "V1", Label: "501", TripID: "TRIP1", RouteID: "R1", StopSequence: seq(1), Timestamp: ts(now)},
	}

	first, obs1, _ := Reconcile(entities, idx, now)
	second, obs2, _ := Reconcile(entities, idx, now)
	if !reflect.DeepEqual(first, second) || !reflect.DeepEqual(obs1, obs2) {
		t.Error("reconciling the same snapshot twice should give identical results")
	}
}

func TestMissingTrips(t *testing.T) {
	scheduled := map[string]struct{}{"TRIP1": {}, "TRIP2": {}, "TRIP3": {}}
	observed := map[string]struct{}{"TRIP2": {}, "GHOST": {}}

	got := MissingTrips(scheduled, observed)
	want := []string{"TRIP1", "TRIP3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("MissingTrips = %v, want %v", got, want)
	}
}

func TestReconcile_UnknownRouteSentinel(t *testing.T) {
	idx := monitorFixture()
	now := time.Date(2025, 7, 2, 10, 0, 0, 0, time.UTC)
	entities := []realtime.VehicleEntity{
		{VehicleID: "V9", Label: "509", TripID: "GHOST"},
	}

	vehicles, _, _ := Reconcile(entities, idx, now)
	if vehicles["V9"].RouteID != UnknownRoute {
		t.Errorf("route = %q, want %q", vehicles["V9"].RouteID, UnknownRoute)
	}
}
