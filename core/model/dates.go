package model

import "time"

// DateLayout is the wire format for mission and resource dates.
const DateLayout = "2006-01-02"

// DatesOverlap reports whether [aStart,aEnd] and [bStart,bEnd] intersect.
// Ranges are inclusive on both ends.
func DatesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aStart.After(bEnd) && !bStart.After(aEnd)
}

// DurationDays returns the number of days between start and end, counting
// both endpoints. A single-day range has duration 1.
func DurationDays(start, end time.Time) int {
	if end.Before(start) {
		return 0
	}
	return int(end.Sub(start).Hours()/24) + 1
}
