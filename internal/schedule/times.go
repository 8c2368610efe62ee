package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseTime converts a GTFS "HH:MM:SS" time-of-day string into an absolute
// instant by adding it to base (midnight of a service day). Hours may exceed
// 24 for trips that run past midnight, per the GTFS convention.
func ParseTime(s string, base time.Time) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("malformed GTFS time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed GTFS time %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed GTFS time %q", s)
	}
	sec, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed GTFS time %q", s)
	}
	return base.Add(time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second), nil
}

// serviceDayStart returns midnight of t's calendar date in t's location.
func serviceDayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// ymd formats a date as an 8-digit YYYYMMDD integer.
func ymd(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}
