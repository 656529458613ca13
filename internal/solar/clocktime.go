package solar

import (
	"fmt"
	"math"
	"strings"
	"time"
)

const secondsPerDay = 24 * 60 * 60

// ClockTime is a local wall-clock time of day, stored as seconds since
// midnight and always normalized into [00:00, 24:00).
type ClockTime int

// NewClockTime builds a ClockTime from its components, wrapping around midnight.
func NewClockTime(hour, minute, second int) ClockTime {
	return normalizeSeconds(hour*3600 + minute*60 + second)
}

// ClockTimeFromHours converts fractional hours (e.g. 6.5 for 06:30) into a ClockTime.
func ClockTimeFromHours(hours float64) ClockTime {
	return normalizeSeconds(int(math.Round(hours * 3600)))
}

// ClockTimeOf returns the wall-clock time of t in t's own location.
func ClockTimeOf(t time.Time) ClockTime {
	return NewClockTime(t.Hour(), t.Minute(), t.Second())
}

// ParseClockTime parses a 24-hour "HH:MM" or "HH:MM:SS" string.
func ParseClockTime(s string) (ClockTime, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{"15:04", "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return NewClockTime(t.Hour(), t.Minute(), t.Second()), nil
		}
	}
	return 0, fmt.Errorf("invalid clock time %q: expected HH:MM", s)
}

func normalizeSeconds(secs int) ClockTime {
	secs %= secondsPerDay
	if secs < 0 {
		secs += secondsPerDay
	}
	return ClockTime(secs)
}

// Hour returns the hour component in [0, 23].
func (c ClockTime) Hour() int { return int(c) / 3600 }

// Minute returns the minute component in [0, 59].
func (c ClockTime) Minute() int { return int(c) % 3600 / 60 }

// Second returns the second component in [0, 59].
func (c ClockTime) Second() int { return int(c) % 60 }

// Hours returns the time of day as fractional hours.
func (c ClockTime) Hours() float64 { return float64(c) / 3600 }

// Add shifts the clock time by d, wrapping around midnight.
func (c ClockTime) Add(d time.Duration) ClockTime {
	return normalizeSeconds(int(c) + int(d/time.Second))
}

// Before reports whether c is earlier in the day than other.
func (c ClockTime) Before(other ClockTime) bool { return c < other }

// On places the clock time on the calendar date of day, in day's location.
func (c ClockTime) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, c.Hour(), c.Minute(), c.Second(), 0, day.Location())
}

// String formats the clock time as "HH:MM".
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// MarshalText implements encoding.TextMarshaler.
func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *ClockTime) UnmarshalText(text []byte) error {
	parsed, err := ParseClockTime(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// InWindow reports whether now falls inside [start, end). A window whose
// start is after its end wraps past midnight. An empty window (start == end)
// contains nothing.
func InWindow(now, start, end ClockTime) bool {
	if start <= end {
		return now >= start && now < end
	}
	return now >= start || now < end
}
