package realtime

import (
	"testing"
	"time"

	gtfsrt "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

func TestDecode(t *testing.T) {
	feed := &gtfsrt.FeedMessage{
		Entity: []*gtfsrt.FeedEntity{
			{
				Id: proto.String("1"),
				Vehicle: &gtfsrt.VehiclePosition{
					Trip:                &gtfsrt.TripDescriptor{TripId: proto.String("TRIP1"), RouteId: proto.String("R1")},
					Vehicle:             &gtfsrt.VehicleDescriptor{Id: proto.String("V1"), Label: proto.String("501")},
					CurrentStopSequence: proto.Uint32(3),
					CurrentStatus:       gtfsrt.VehiclePosition_STOPPED_AT.Enum(),
					OccupancyStatus:     gtfsrt.VehiclePosition_FULL.Enum(),
					Timestamp:           proto.Uint64(1751450400),
					Position: &gtfsrt.Position{
						Latitude:  proto.Float32(47.322),
						Longitude: proto.Float32(5.041),
					},
				},
			},
			// No vehicle id: skipped.
			{
				Id: proto.String("2"),
				Vehicle: &gtfsrt.VehiclePosition{
					Trip: &gtfsrt.TripDescriptor{TripId: proto.String("TRIP2")},
				},
			},
			// No trip id: skipped.
			{
				Id: proto.String("3"),
				Vehicle: &gtfsrt.VehiclePosition{
					Vehicle: &gtfsrt.VehicleDescriptor{Id: proto.String("V3")},
				},
			},
			// Not a vehicle position at all: skipped.
			{Id: proto.String("4")},
		},
	}

	got := Decode(feed)
	if len(got) != 1 {
		t.Fatalf("decoded %d entities, want 1", len(got))
	}

	e := got[0]
	if e.VehicleID != "V1" || e.Label != "501" || e.TripID != "TRIP1" || e.RouteID != "R1" {
		t.Errorf("entity = %+v", e)
	}
	if e.Status != gtfsrt.VehiclePosition_STOPPED_AT {
		t.Errorf("status = %v", e.Status)
	}
	if e.StopSequence == nil || *e.StopSequence != 3 {
		t.Errorf("stop sequence = %v", e.StopSequence)
	}
	if e.Occupancy == nil || *e.Occupancy != gtfsrt.VehiclePosition_FULL {
		t.Errorf("occupancy = %v", e.Occupancy)
	}
	if e.Timestamp == nil || !e.Timestamp.Equal(time.Unix(1751450400, 0)) {
		t.Errorf("timestamp = %v", e.Timestamp)
	}
	if e.Latitude == nil || e.Longitude == nil {
		t.Error("position missing")
	}
}

func TestDecode_AbsentOptionalFields(t *testing.T) {
	feed := &gtfsrt.FeedMessage{
		Entity: []*gtfsrt.FeedEntity{
			{
				Id: proto.String("1"),
				Vehicle: &gtfsrt.VehiclePosition{
					Trip:    &gtfsrt.TripDescriptor{TripId: proto.String("TRIP1")},
					Vehicle: &gtfsrt.VehicleDescriptor{Id: proto.String("V1")},
				},
			},
		},
	}

	got := Decode(feed)
	if len(got) != 1 {
		t.Fatalf("decoded %d entities, want 1", len(got))
	}
	e := got[0]
	if e.StopSequence != nil || e.Occupancy != nil || e.Timestamp != nil || e.Latitude != nil {
		t.Errorf("absent fields must stay nil: %+v", e)
	}
	// Unset status resolves to the protocol default.
	if e.Status != gtfsrt.VehiclePosition_IN_TRANSIT_TO {
		t.Errorf("default status = %v, want IN_TRANSIT_TO", e.Status)
	}
	if e.Label != "" {
		t.Errorf("label = %q, want empty", e.Label)
	}
}

func TestUnmarshalRoundTrip(t *testing.T) {
	feed := &gtfsrt.FeedMessage{
		Header: &gtfsrt.FeedHeader{GtfsRealtimeVersion: proto.String("2.0")},
		Entity: []*gtfsrt.FeedEntity{
			{
				Id: proto.String("1"),
				Vehicle: &gtfsrt.VehiclePosition{
					Trip:    &gtfsrt.TripDescriptor{TripId: proto.String("TRIP1")},
					Vehicle: &gtfsrt.VehicleDescriptor{Id: proto.String("V1")},
				},
			},
		},
	}
	data, err := proto.Marshal(feed)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	got, err := Unmarshal(data)
	if err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got) != 1 || got[0].TripID != "TRIP1" {
		t.Errorf("round trip = %+v", got)
	}

	if _, err := Unmarshal([]byte("not protobuf at all")); err == nil {
		t.Error("expected error for garbage input")
	}
}
