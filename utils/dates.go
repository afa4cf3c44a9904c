// utils/dates.go
package utils

import (
	"errors"
	"time"
)

var ErrUnrepresentableDate = errors.New("date out of representable range")

// LocalDayWindow returns the first and last instant (00:00:00 and 23:59:59
// local) of the civil day dayOffset days after ref, in loc. time.Date
// resolves the UTC offset for the target date itself, so a window computed
// across a DST transition carries the offset of that day rather than the
// offset in effect at ref.
func LocalDayWindow(ref time.Time, dayOffset int, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		return time.Time{}, time.Time{}, errors.New("location must not be nil")
	}

	year, month, day := ref.In(loc).Date()
	start := time.Date(year, month, day+dayOffset, 0, 0, 0, 0, loc)
	end := time.Date(year, month, day+dayOffset, 23, 59, 59, 0, loc)

	if start.Year() < 1 || start.Year() > 9999 {
		return time.Time{}, time.Time{}, ErrUnrepresentableDate
	}
	return start, end, nil
}
