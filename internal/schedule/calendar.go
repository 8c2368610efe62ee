package schedule

import "time"

// ActiveServices returns the set of service ids running on the given date.
// The weekly pattern is evaluated first (date within [start_date, end_date]
// and the weekday flag set), then dated exceptions override it: type 2
// removes a service even if the weekly pattern has it, type 1 adds it back
// even if the weekly pattern misses it. An added exception wins over a
// removed one for the same service and date.
func (idx *Index) ActiveServices(date time.Time) map[string]struct{} {
	day := ymd(date)
	weekday := date.Weekday()

	active := make(map[string]struct{})
	for _, row := range idx.calendar {
		if row.startDate <= day && day <= row.endDate && row.weekdays[weekday] {
			active[row.serviceID] = struct{}{}
		}
	}

	var added, removed []string
	for _, exc := range idx.exceptions {
		if exc.date != day {
			continue
		}
		switch exc.exceptionType {
		case 1:
			added = append(added, exc.serviceID)
		case 2:
			removed = append(removed, exc.serviceID)
		}
	}
	for _, id := range removed {
		delete(active, id)
	}
	for _, id := range added {
		active[id] = struct{}{}
	}

	return active
}
