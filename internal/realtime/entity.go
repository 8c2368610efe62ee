package realtime

import (
	"time"

	gtfsrt "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// VehicleEntity is one vehicle position lifted out of a FeedMessage.
// Optional fields keep pointer form so absence survives the decode; the
// status enum is resolved through its getter because the feed default
// (IN_TRANSIT_TO) applies when the field is unset.
type VehicleEntity struct {
	VehicleID    string
	Label        string
	TripID       string
	RouteID      string
	Status       gtfsrt.VehiclePosition_VehicleStopStatus
	StopSequence *int
	Occupancy    *gtfsrt.VehiclePosition_OccupancyStatus
	Timestamp    *time.Time
	Latitude     *float64
	Longitude    *float64
}

// Decode extracts vehicle positions from a feed message. Entities without a
// trip id or a vehicle id carry nothing reconcilable and are skipped.
func Decode(feed *gtfsrt.FeedMessage) []VehicleEntity {
	var out []VehicleEntity
	for _, entity := range feed.GetEntity() {
		vp := entity.GetVehicle()
		if vp == nil {
			continue
		}
		tripID := vp.GetTrip().GetTripId()
		vehicleID := vp.GetVehicle().GetId()
		if tripID == "" || vehicleID == "" {
			continue
		}

		ve := VehicleEntity{
			VehicleID: vehicleID,
			Label:     vp.GetVehicle().GetLabel(),
			TripID:    tripID,
			RouteID:   vp.GetTrip().GetRouteId(),
			Status:    vp.GetCurrentStatus(),
		}
		if vp.CurrentStopSequence != nil {
			seq := int(vp.GetCurrentStopSequence())
			ve.StopSequence = &seq
		}
		if vp.OccupancyStatus != nil {
			occ := vp.GetOccupancyStatus()
			ve.Occupancy = &occ
		}
		if vp.Timestamp != nil {
			ts := time.Unix(int64(vp.GetTimestamp()), 0)
			ve.Timestamp = &ts
		}
		if pos := vp.GetPosition(); pos != nil {
			if pos.Latitude != nil {
				lat := float64(pos.GetLatitude())
				ve.Latitude = &lat
			}
			if pos.Longitude != nil {
				lon := float64(pos.GetLongitude())
				ve.Longitude = &lon
			}
		}
		out = append(out, ve)
	}
	return out
}

// Unmarshal parses raw protobuf bytes into entities.
func Unmarshal(data []byte) ([]VehicleEntity, error) {
	feed := &gtfsrt.FeedMessage{}
	if err := proto.Unmarshal(data, feed); err != nil {
		return nil, err
	}
	return Decode(feed), nil
}
