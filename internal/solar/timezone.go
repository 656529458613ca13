package solar

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	// Named zones must resolve even on hosts without a zoneinfo database.
	_ "time/tzdata"
)

// TimeZoneResolutionError reports a named zone missing from the zone database.
type TimeZoneResolutionError struct {
	Name string
	Err  error
}

func (e *TimeZoneResolutionError) Error() string {
	return fmt.Sprintf("cannot resolve time zone %q: %v", e.Name, e.Err)
}

func (e *TimeZoneResolutionError) Unwrap() error { return e.Err }

// TimeZone is either a fixed GMT offset in hours or a named zone.
type TimeZone struct {
	name   string
	offset float64
	loc    *time.Location
}

// UTC is the zero-offset zone used as the last-resort fallback.
var UTC = FixedOffset(0)

// FixedOffset returns a zone with a constant offset of hours east of GMT.
func FixedOffset(hours float64) TimeZone {
	return TimeZone{
		offset: hours,
		loc:    time.FixedZone(fmt.Sprintf("UTC%+.1f", hours), int(math.Round(hours*3600))),
	}
}

// Named wraps an already-resolved location.
func Named(loc *time.Location) TimeZone {
	return TimeZone{name: loc.String(), loc: loc}
}

// ParseTimeZone accepts a numeric GMT offset ("-5", "5.5") or a zone name
// ("Europe/London").
func ParseTimeZone(s string) (TimeZone, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return TimeZone{}, &TimeZoneResolutionError{Name: s, Err: fmt.Errorf("empty time zone")}
	}

	if hours, err := strconv.ParseFloat(s, 64); err == nil {
		if hours < -14 || hours > 14 {
			return TimeZone{}, fmt.Errorf("GMT offset %v out of range [-14, 14]", hours)
		}
		return FixedOffset(hours), nil
	}

	loc, err := time.LoadLocation(s)
	if err != nil {
		return TimeZone{}, &TimeZoneResolutionError{Name: s, Err: err}
	}
	return Named(loc), nil
}

// IsNamed reports whether the zone came from the zone database.
func (z TimeZone) IsNamed() bool { return z.name != "" }

// Location returns the zone as a *time.Location.
func (z TimeZone) Location() *time.Location {
	if z.loc == nil {
		return time.UTC
	}
	return z.loc
}

// OffsetHours returns the offset east of GMT in force at instant t.
func (z TimeZone) OffsetHours(t time.Time) float64 {
	if !z.IsNamed() {
		return z.offset
	}
	_, secs := t.In(z.loc).Zone()
	return float64(secs) / 3600
}

func (z TimeZone) String() string {
	if z.IsNamed() {
		return z.name
	}
	return fmt.Sprintf("UTC Offset %0.1f", z.offset)
}
