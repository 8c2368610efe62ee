package schedule

import "time"

// rolloverHorizon guards against anchoring a scheduled time to the wrong
// calendar day: a scheduled time appearing more than this far in the future
// actually belongs to the previous service day.
const rolloverHorizon = 3 * time.Hour

// EstimateDelay returns the signed delay in whole seconds of an observation
// against the scheduled time at (tripID, seq). Positive means late. A missing
// stop-time entry or unparsable scheduled time yields zero rather than an
// error.
func (idx *Index) EstimateDelay(tripID string, seq int, observed, now time.Time) int {
	entry, ok := idx.tripStopBySeq[tripID][seq]
	if !ok {
		return 0
	}

	ref := entry.arrival
	if ref == "" {
		ref = entry.departure
	}
	if ref == "" {
		return 0
	}

	scheduled, err := ParseTime(ref, serviceDayStart(now))
	if err != nil {
		return 0
	}
	if scheduled.After(now.Add(rolloverHorizon)) {
		scheduled = scheduled.AddDate(0, 0, -1)
	}

	return int(observed.Sub(scheduled).Seconds())
}
