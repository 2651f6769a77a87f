package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// All civil times in the system are interpreted in a fixed UTC+1 offset.
// There is no daylight-saving adjustment; the offset never changes.
const OffsetHours = 1

// Location is the single fixed-offset zone used for every civil↔UTC
// conversion. Components must never build their own zone or add/subtract
// the offset by hand.
var Location = time.FixedZone("UTC+1", OffsetHours*3600)

// Clock returns the current instant in UTC. Services take a Clock so tests
// can pin time; production wiring passes NowUTC.
type Clock func() time.Time

// NowUTC is the production Clock.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// ToUTC converts a civil (date, hour, minute) in the fixed local offset to
// a UTC instant.
func ToUTC(date time.Time, hour, minute int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, Location).UTC()
}

// FromUTC converts a UTC instant back into the fixed local offset.
func FromUTC(instant time.Time) time.Time {
	return instant.In(Location)
}

// ParseCivilTime parses a "HH:MM" wall-clock string.
func ParseCivilTime(s string) (hour, minute int, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}

// ParseDate parses a "YYYY-MM-DD" calendar date. The returned value carries
// only the date; callers combine it with ToUTC for instants.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD", s)
	}
	return d, nil
}

// FormatCivilTime renders a UTC instant as "HH:MM" in the fixed local offset.
func FormatCivilTime(instant time.Time) string {
	return instant.In(Location).Format("15:04")
}
