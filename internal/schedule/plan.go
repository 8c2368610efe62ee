package schedule

// Connection is a single-trip link between an origin and a destination stop,
// carrying the raw scheduled departure at the origin.
type Connection struct {
	TripID    string
	Departure string // raw HH:MM:SS at the origin stop
}

// Connections returns every trip segment boarding at one of fromIDs and
// alighting later at one of toIDs. Each qualifying origin/destination pair
// yields one connection.
func (idx *Index) Connections(fromIDs, toIDs []string) []Connection {
	fromSet := make(map[string]struct{}, len(fromIDs))
	for _, id := range fromIDs {
		fromSet[id] = struct{}{}
	}
	toSet := make(map[string]struct{}, len(toIDs))
	for _, id := range toIDs {
		toSet[id] = struct{}{}
	}

	var out []Connection
	for tripID, entries := range idx.tripStopTimes {
		for _, from := range entries {
			if _, ok := fromSet[from.stopID]; !ok {
				continue
			}
			for _, to := range entries {
				if _, ok := toSet[to.stopID]; !ok {
					continue
				}
				if from.seq < to.seq {
					out = append(out, Connection{TripID: tripID, Departure: from.departure})
				}
			}
		}
	}
	return out
}
