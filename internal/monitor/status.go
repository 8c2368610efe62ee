package monitor

// StopStatus is a vehicle's relation to its current stop. Values mirror the
// GTFS-RT VehicleStopStatus codes; anything outside the known range maps to
// StatusUnknown.
type StopStatus int

const (
	StatusIncoming StopStatus = iota
	StatusStoppedAt
	StatusInTransit
	StatusUnknown
)

// StopStatusFromCode converts a raw feed code into a StopStatus.
func StopStatusFromCode(code int) StopStatus {
	switch code {
	case 0:
		return StatusIncoming
	case 1:
		return StatusStoppedAt
	case 2:
		return StatusInTransit
	default:
		return StatusUnknown
	}
}

func (s StopStatus) String() string {
	switch s {
	case StatusIncoming:
		return "approaching"
	case StatusStoppedAt:
		return "stopped at"
	case StatusInTransit:
		return "in transit to"
	default:
		return "unknown"
	}
}

// Occupancy is a vehicle's reported load level. Values mirror the GTFS-RT
// OccupancyStatus codes.
type Occupancy int

const (
	OccupancyEmpty Occupancy = iota
	OccupancyManySeats
	OccupancyFewSeats
	OccupancyStandingOnly
	OccupancyCrushed
	OccupancyFull
	OccupancyNotAccepting
	OccupancyNotReported
)

// OccupancyFromCode converts a raw feed code into an Occupancy.
func OccupancyFromCode(code int) Occupancy {
	if code < 0 || code > int(OccupancyNotAccepting) {
		return OccupancyNotReported
	}
	return Occupancy(code)
}

func (o Occupancy) String() string {
	switch o {
	case OccupancyEmpty:
		return "empty"
	case OccupancyManySeats:
		return "many seats available"
	case OccupancyFewSeats:
		return "few seats available"
	case OccupancyStandingOnly:
		return "standing room only"
	case OccupancyCrushed:
		return "crushed standing room"
	case OccupancyFull:
		return "full"
	case OccupancyNotAccepting:
		return "not accepting passengers"
	default:
		return "not reported"
	}
}
