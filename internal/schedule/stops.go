package schedule

// Sentinel results for NextStopName. Every lookup failure resolves to one of
// these rather than an error.
const (
	NextStopUnknown  = "unknown"           // no position information or no stop times
	NextStopTerminus = "terminus reached"  // vehicle is at the trip's last stop
	NextStopGap      = "next stop unknown" // sequence hole in the schedule
)

// NextStopName resolves the display name of the stop following the given
// sequence position on a trip. current is nil when the feed did not report
// a position.
func (idx *Index) NextStopName(tripID string, current *int) string {
	entries := idx.tripStopTimes[tripID]
	if len(entries) == 0 || current == nil {
		return NextStopUnknown
	}

	if next, ok := idx.tripStopBySeq[tripID][*current+1]; ok {
		if name := idx.stopNames[next.stopID]; name != "" {
			return name
		}
	}

	if *current == entries[len(entries)-1].seq {
		return NextStopTerminus
	}

	return NextStopGap
}

// NextStopID returns the stop id following the given sequence position, or
// "" when there is none.
func (idx *Index) NextStopID(tripID string, current *int) string {
	if current == nil {
		return ""
	}
	if next, ok := idx.tripStopBySeq[tripID][*current+1]; ok {
		return next.stopID
	}
	return ""
}
