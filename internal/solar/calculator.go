// Package solar computes local sunrise and sunset clock times for a location,
// date and time-zone offset.
package solar

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// ErrInvalidLocation is returned for coordinates outside the valid range.
var ErrInvalidLocation = errors.New("invalid location")

// ErrUnknownZenith is returned by ParseZenith for unsupported names.
var ErrUnknownZenith = errors.New("unknown zenith")

// Location is a point on the Earth's surface in decimal degrees.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate rejects coordinates outside [-90, 90] x [-180, 180].
func (l Location) Validate() error {
	if math.IsNaN(l.Latitude) || l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v out of range [-90, 90]", ErrInvalidLocation, l.Latitude)
	}
	if math.IsNaN(l.Longitude) || l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v out of range [-180, 180]", ErrInvalidLocation, l.Longitude)
	}
	return nil
}

// Zenith is the angle from vertical, in degrees, at which the sun is
// considered to rise or set.
type Zenith float64

const (
	// ZenithOfficial puts the sun's centre 0.833° below the horizon, which
	// accounts for refraction and the radius of the solar disk.
	ZenithOfficial     Zenith = 90.833
	ZenithCivil        Zenith = 96
	ZenithNautical     Zenith = 102
	ZenithAmateur      Zenith = 105
	ZenithAstronomical Zenith = 108
)

var zenithNames = map[string]Zenith{
	"official":     ZenithOfficial,
	"civil":        ZenithCivil,
	"nautical":     ZenithNautical,
	"amateur":      ZenithAmateur,
	"astronomical": ZenithAstronomical,
}

// ParseZenith resolves a zenith name such as "official" or "civil".
func ParseZenith(name string) (Zenith, error) {
	z, ok := zenithNames[name]
	if !ok {
		names := make([]string, 0, len(zenithNames))
		for n := range zenithNames {
			names = append(names, n)
		}
		sort.Strings(names)
		return 0, fmt.Errorf("%w %q: must be one of %v", ErrUnknownZenith, name, names)
	}
	return z, nil
}

// Name returns the configuration name of the zenith.
func (z Zenith) Name() string {
	for name, v := range zenithNames {
		if v == z {
			return name
		}
	}
	return fmt.Sprintf("%.3f", float64(z))
}

// PolarCondition describes a date on which the sun never crosses the zenith.
type PolarCondition int

const (
	// PolarNone means the sun both rises and sets on the date.
	PolarNone PolarCondition = iota
	// PolarDay means the sun never sets.
	PolarDay
	// PolarNight means the sun never rises.
	PolarNight
)

func (p PolarCondition) String() string {
	switch p {
	case PolarDay:
		return "polar_day"
	case PolarNight:
		return "polar_night"
	default:
		return "none"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p PolarCondition) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// SunTimes holds the local sunrise and sunset for one calendar date. When
// Polar is not PolarNone, Sunrise and Sunset are meaningless.
type SunTimes struct {
	Date    time.Time      `json:"date"`
	Sunrise ClockTime      `json:"sunrise"`
	Sunset  ClockTime      `json:"sunset"`
	Polar   PolarCondition `json:"polar"`
}

// HasEvents reports whether both a sunrise and a sunset occur on the date.
func (s SunTimes) HasEvents() bool {
	return s.Polar == PolarNone
}

// Err returns a *NoEventError for polar dates and nil otherwise.
func (s SunTimes) Err() error {
	if s.Polar == PolarNone {
		return nil
	}
	return &NoEventError{Date: s.Date, Polar: s.Polar}
}

// NoEventError reports a date without sunrise or sunset at a location.
type NoEventError struct {
	Date  time.Time
	Polar PolarCondition
}

func (e *NoEventError) Error() string {
	switch e.Polar {
	case PolarDay:
		return fmt.Sprintf("no sunset on %s: sun stays above the horizon", e.Date.Format(time.DateOnly))
	default:
		return fmt.Sprintf("no sunrise on %s: sun stays below the horizon", e.Date.Format(time.DateOnly))
	}
}

// Calculator implements the almanac sunrise equation.
type Calculator struct {
	zenith Zenith
}

// NewCalculator creates a calculator for the given zenith. A zero zenith
// selects ZenithOfficial.
func NewCalculator(zenith Zenith) *Calculator {
	if zenith == 0 {
		zenith = ZenithOfficial
	}
	return &Calculator{zenith: zenith}
}

// Name implements Provider.
func (c *Calculator) Name() string { return AlgorithmAlmanac }

// Zenith returns the zenith the calculator was built with.
func (c *Calculator) Zenith() Zenith { return c.zenith }

// SunTimes computes sunrise and sunset for the calendar date of date at loc,
// expressed as local clock times using offsetHours east of GMT.
func (c *Calculator) SunTimes(date time.Time, loc Location, offsetHours float64) (SunTimes, error) {
	if err := loc.Validate(); err != nil {
		return SunTimes{}, err
	}

	y, m, d := date.Date()
	result := SunTimes{Date: time.Date(y, m, d, 0, 0, 0, 0, date.Location())}
	n := julian.DayOfYearGregorian(y, int(m), d)

	rise, polar := c.event(n, loc, true)
	if polar != PolarNone {
		result.Polar = polar
		return result, nil
	}
	set, polar := c.event(n, loc, false)
	if polar != PolarNone {
		result.Polar = polar
		return result, nil
	}

	result.Sunrise = ClockTimeFromHours(rise + offsetHours)
	result.Sunset = ClockTimeFromHours(set + offsetHours)
	return result, nil
}

// event returns the UT hour of sunrise (rising) or sunset for day-of-year n.
func (c *Calculator) event(n int, loc Location, rising bool) (float64, PolarCondition) {
	lngHour := loc.Longitude / 15

	// Approximate time of the event.
	t := float64(n) + (18-lngHour)/24
	if rising {
		t = float64(n) + (6-lngHour)/24
	}

	// Sun's mean anomaly and true longitude.
	meanAnomaly := 0.9856*t - 3.289
	trueLong := normalizeDegrees(meanAnomaly +
		1.916*sinDeg(meanAnomaly) +
		0.020*sinDeg(2*meanAnomaly) +
		282.634)

	// Right ascension, moved into the same quadrant as the true longitude.
	ra := normalizeDegrees(atanDeg(0.91764 * tanDeg(trueLong)))
	ra += math.Floor(trueLong/90)*90 - math.Floor(ra/90)*90
	raHours := ra / 15

	// Declination; 0.39782 is sin(23.44°).
	sinDec := 0.39782 * sinDeg(trueLong)
	cosDec := math.Cos(math.Asin(sinDec))

	cosH := (cosDeg(float64(c.zenith)) - sinDec*sinDeg(loc.Latitude)) /
		(cosDec * cosDeg(loc.Latitude))

	switch {
	case math.IsNaN(cosH):
		// Only at the poles themselves: the declination sign decides.
		if sinDec*loc.Latitude > 0 {
			return 0, PolarDay
		}
		return 0, PolarNight
	case cosH > 1:
		return 0, PolarNight
	case cosH < -1:
		return 0, PolarDay
	}

	h := acosDeg(cosH)
	if rising {
		h = 360 - h
	}
	h /= 15

	localMean := h + raHours - 0.06571*t - 6.622
	return normalizeHours(localMean - lngHour), PolarNone
}

// polarHint classifies a date that another backend reported as eventless.
func (c *Calculator) polarHint(date time.Time, loc Location) PolarCondition {
	y, m, d := date.Date()
	n := julian.DayOfYearGregorian(y, int(m), d)
	if _, polar := c.event(n, loc, true); polar != PolarNone {
		return polar
	}
	if _, polar := c.event(n, loc, false); polar != PolarNone {
		return polar
	}
	// Borderline date where the backends disagree: fall back to the season.
	meanAnomaly := 0.9856*float64(n) - 3.289
	trueLong := meanAnomaly + 1.916*sinDeg(meanAnomaly) + 0.020*sinDeg(2*meanAnomaly) + 282.634
	if sinDeg(trueLong)*loc.Latitude > 0 {
		return PolarDay
	}
	return PolarNight
}

func sinDeg(d float64) float64  { return math.Sin(d * math.Pi / 180) }
func cosDeg(d float64) float64  { return math.Cos(d * math.Pi / 180) }
func tanDeg(d float64) float64  { return math.Tan(d * math.Pi / 180) }
func atanDeg(x float64) float64 { return math.Atan(x) * 180 / math.Pi }
func acosDeg(x float64) float64 { return math.Acos(x) * 180 / math.Pi }

func normalizeDegrees(d float64) float64 {
	d = math.Mod(d, 360)
	if d < 0 {
		d += 360
	}
	return d
}

func normalizeHours(h float64) float64 {
	h = math.Mod(h, 24)
	if h < 0 {
		h += 24
	}
	return h
}
