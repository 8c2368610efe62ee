package schedule

import (
	"testing"

	"rubanwatch/internal/gtfs"
)

func stopsFixture() *Index {
	return NewIndex(&gtfs.Feed{
		Stops: []gtfs.Stop{
			{StopID: "A", StopName: "République"},
			{StopID: "B", StopName: "Darcy"},
			{StopID: "C", StopName: "Gare"},
			{StopID: "D", StopName: ""}, // unnamed stop
		},
		StopTimes: []gtfs.StopTime{
			{TripID: "T", StopID: "A", StopSequence: "1", ArrivalTime: "08:00:00", DepartureTime: "08:00:00"},
			{TripID: "T", StopID: "B", StopSequence: "2", ArrivalTime: "08:05:00", DepartureTime: "08:05:00"},
			{TripID: "T", StopID: "C", StopSequence: "3", ArrivalTime: "08:10:00", DepartureTime: "08:10:00"},
			// Sequence hole between 3 and 5.
			{TripID: "T", StopID: "D", StopSequence: "5", ArrivalTime: "08:20:00", DepartureTime: "08:20:00"},
		},
	})
}

func seq(n int) *int { return &n }

func TestNextStopName(t *testing.T) {
	idx := stopsFixture()

	tests := []struct {
		name    string
		tripID  string
		current *int
		want    string
	}{
		{name: "no position reported", tripID: "T", current: nil, want: NextStopUnknown},
		{name: "unknown trip", tripID: "NOPE", current: seq(1), want: NextStopUnknown},
		{name: "middle of the run", tripID: "T", current: seq(1), want: "Darcy"},
		{name: "approaching the last stop", tripID: "T", current: seq(2), want: "Gare"},
		{name: "at the last stop", tripID: "T", current: seq(5), want: NextStopTerminus},
		{name: "sequence hole", tripID: "T", current: seq(3), want: NextStopGap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := idx.NextStopName(tt.tripID, tt.current); got != tt.want {
				t.Errorf("NextStopName(%q, %v) = %q, want %q", tt.tripID, tt.current, got, tt.want)
			}
		})
	}
}

func TestNextStopName_UnnamedStopFallsThrough(t *testing.T) {
	idx := stopsFixture()
	// Next entry exists at sequence 5 but its stop has no name; with
	// sequence 4 absent this resolves as a gap, not an empty string.
	if got := idx.NextStopName("T", seq(4)); got != NextStopGap {
		t.Errorf("NextStopName past hole = %q, want %q", got, NextStopGap)
	}
}

func TestNextStopID(t *testing.T) {
	idx := stopsFixture()
	if got := idx.NextStopID("T", seq(1)); got != "B" {
		t.Errorf("NextStopID = %q, want B", got)
	}
	if got := idx.NextStopID("T", nil); got != "" {
		t.Errorf("NextStopID with nil sequence = %q, want empty", got)
	}
	if got := idx.NextStopID("T", seq(5)); got != "" {
		t.Errorf("NextStopID at terminus = %q, want empty", got)
	}
}
