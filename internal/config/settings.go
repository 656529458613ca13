package config

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"suntheme/internal/solar"

	"go.uber.org/multierr"
)

// Settings file keys.
const (
	KeyLatitude          = "latitude"
	KeyLongitude         = "longitude"
	KeyTimezone          = "timezone"
	KeyForceDay          = "forceDay"
	KeyForceNight        = "forceNight"
	KeyOverrideTimes     = "overrideTimes"
	KeyOverrideSunrise   = "overrideSunriseTime"
	KeyOverrideSunset    = "overrideSunsetTime"
	KeyDayColourScheme   = "dayColourScheme"
	KeyNightColourScheme = "nightColourScheme"
	KeyDayWindowTheme    = "dayWindowTheme"
	KeyNightWindowTheme  = "nightWindowTheme"
	KeyCheckCycle        = "checkCycle"
	KeyZenith            = "zenith"
	KeyAlgorithm         = "algorithm"
	KeyCollarMinutes     = "collarMinutes"
)

// Default values for keys that are missing or malformed.
const (
	DefaultTimezone        = "0"
	DefaultOverrideSunrise = "06:00"
	DefaultOverrideSunset  = "18:00"
	DefaultCheckCycle      = 5.0
	DefaultZenith          = "official"
	DefaultAlgorithm       = solar.AlgorithmAlmanac
)

// ConfigurationError describes one missing or malformed settings key. The
// key has already been replaced by its default when this is reported.
type ConfigurationError struct {
	Key   string
	Value interface{}
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("configuration: %v", e.Err)
	}
	return fmt.Sprintf("configuration key %q (value %v): %v", e.Key, e.Value, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// Settings is the parsed user configuration.
type Settings struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`

	ForceDay        bool            `json:"forceDay"`
	ForceNight      bool            `json:"forceNight"`
	OverrideTimes   bool            `json:"overrideTimes"`
	OverrideSunrise solar.ClockTime `json:"overrideSunriseTime"`
	OverrideSunset  solar.ClockTime `json:"overrideSunsetTime"`

	DayColourScheme   string `json:"dayColourScheme"`
	NightColourScheme string `json:"nightColourScheme"`
	DayWindowTheme    string `json:"dayWindowTheme"`
	NightWindowTheme  string `json:"nightWindowTheme"`

	CheckCycle    float64 `json:"checkCycle"`
	Zenith        string  `json:"zenith"`
	Algorithm     string  `json:"algorithm"`
	CollarMinutes float64 `json:"collarMinutes"`

	// Resolved forms of Timezone and Zenith.
	Zone        solar.TimeZone `json:"-"`
	ZenithAngle solar.Zenith   `json:"-"`
}

// DefaultSettings returns Settings with every key at its default.
func DefaultSettings() *Settings {
	sunrise, _ := solar.ParseClockTime(DefaultOverrideSunrise)
	sunset, _ := solar.ParseClockTime(DefaultOverrideSunset)
	return &Settings{
		Timezone:        DefaultTimezone,
		OverrideSunrise: sunrise,
		OverrideSunset:  sunset,
		CheckCycle:      DefaultCheckCycle,
		Zenith:          DefaultZenith,
		Algorithm:       DefaultAlgorithm,
		Zone:            solar.UTC,
		ZenithAngle:     solar.ZenithOfficial,
	}
}

// Location returns the configured coordinates.
func (s *Settings) Location() solar.Location {
	return solar.Location{Latitude: s.Latitude, Longitude: s.Longitude}
}

// CheckInterval returns checkCycle as a duration.
func (s *Settings) CheckInterval() time.Duration {
	return time.Duration(s.CheckCycle * float64(time.Second))
}

// Collar returns collarMinutes as a duration.
func (s *Settings) Collar() time.Duration {
	return time.Duration(s.CollarMinutes * float64(time.Minute))
}

// FromMap builds Settings from a decoded key-value document. Every bad key
// falls back to its default (or is clamped into range) and contributes a
// *ConfigurationError to the returned error; the Settings are always usable.
func FromMap(values map[string]interface{}) (*Settings, error) {
	s := DefaultSettings()
	var errs error

	fail := func(key string, value interface{}, err error) {
		errs = multierr.Append(errs, &ConfigurationError{Key: key, Value: value, Err: err})
	}

	readFloat := func(key string, dst *float64) {
		raw, ok := values[key]
		if !ok {
			return
		}
		f, err := toFloat(raw)
		if err != nil {
			fail(key, raw, err)
			return
		}
		*dst = f
	}
	readBool := func(key string, dst *bool) {
		raw, ok := values[key]
		if !ok {
			return
		}
		b, err := toBool(raw)
		if err != nil {
			fail(key, raw, err)
			return
		}
		*dst = b
	}
	readString := func(key string, dst *string) {
		raw, ok := values[key]
		if !ok || raw == nil {
			return
		}
		str, err := toString(raw)
		if err != nil {
			fail(key, raw, err)
			return
		}
		*dst = str
	}
	readClock := func(key string, dst *solar.ClockTime) {
		var str string
		readString(key, &str)
		if str == "" {
			return
		}
		c, err := solar.ParseClockTime(str)
		if err != nil {
			fail(key, str, err)
			return
		}
		*dst = c
	}

	readFloat(KeyLatitude, &s.Latitude)
	readFloat(KeyLongitude, &s.Longitude)
	readString(KeyTimezone, &s.Timezone)
	readBool(KeyForceDay, &s.ForceDay)
	readBool(KeyForceNight, &s.ForceNight)
	readBool(KeyOverrideTimes, &s.OverrideTimes)
	readClock(KeyOverrideSunrise, &s.OverrideSunrise)
	readClock(KeyOverrideSunset, &s.OverrideSunset)
	readString(KeyDayColourScheme, &s.DayColourScheme)
	readString(KeyNightColourScheme, &s.NightColourScheme)
	readString(KeyDayWindowTheme, &s.DayWindowTheme)
	readString(KeyNightWindowTheme, &s.NightWindowTheme)
	readFloat(KeyCheckCycle, &s.CheckCycle)
	readString(KeyZenith, &s.Zenith)
	readString(KeyAlgorithm, &s.Algorithm)
	readFloat(KeyCollarMinutes, &s.CollarMinutes)

	errs = multierr.Append(errs, s.validate())
	return s, errs
}

// validate clamps or resets out-of-range values and resolves the time zone
// and zenith.
func (s *Settings) validate() error {
	var errs error
	fail := func(key string, value interface{}, err error) {
		errs = multierr.Append(errs, &ConfigurationError{Key: key, Value: value, Err: err})
	}

	if clamped := clamp(s.Latitude, -90, 90); clamped != s.Latitude {
		fail(KeyLatitude, s.Latitude, fmt.Errorf("out of range [-90, 90], clamped to %v", clamped))
		s.Latitude = clamped
	}
	if clamped := clamp(s.Longitude, -180, 180); clamped != s.Longitude {
		fail(KeyLongitude, s.Longitude, fmt.Errorf("out of range [-180, 180], clamped to %v", clamped))
		s.Longitude = clamped
	}

	if s.CheckCycle <= 0 || math.IsNaN(s.CheckCycle) || math.IsInf(s.CheckCycle, 0) {
		fail(KeyCheckCycle, s.CheckCycle, fmt.Errorf("must be a positive number of seconds, using %v", DefaultCheckCycle))
		s.CheckCycle = DefaultCheckCycle
	}

	if math.IsNaN(s.CollarMinutes) || math.Abs(s.CollarMinutes) > 12*60 {
		fail(KeyCollarMinutes, s.CollarMinutes, fmt.Errorf("must be within ±720 minutes, using 0"))
		s.CollarMinutes = 0
	}

	zenith, err := solar.ParseZenith(s.Zenith)
	if err != nil {
		fail(KeyZenith, s.Zenith, err)
		s.Zenith = DefaultZenith
		zenith = solar.ZenithOfficial
	}
	s.ZenithAngle = zenith

	switch s.Algorithm {
	case solar.AlgorithmAlmanac, solar.AlgorithmSunrise, solar.AlgorithmSuncalc:
	default:
		fail(KeyAlgorithm, s.Algorithm, fmt.Errorf("unknown algorithm, using %s", DefaultAlgorithm))
		s.Algorithm = DefaultAlgorithm
	}

	zone, err := solar.ParseTimeZone(s.Timezone)
	if err != nil {
		fail(KeyTimezone, s.Timezone, err)
		s.Timezone = DefaultTimezone
		zone = solar.UTC
	}
	s.Zone = zone

	return errs
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(lo, math.Min(hi, v))
}

func toFloat(v interface{}) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number")
		}
		return f, nil
	default:
		return 0, fmt.Errorf("expected a number, got %T", v)
	}
}

func toBool(v interface{}) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		if err != nil {
			return false, fmt.Errorf("not a boolean")
		}
		return parsed, nil
	default:
		return false, fmt.Errorf("expected a boolean, got %T", v)
	}
}

func toString(v interface{}) (string, error) {
	switch s := v.(type) {
	case string:
		return s, nil
	case float64, float32, int, int64, uint64:
		// Numeric GMT offsets are legal for timezone.
		f, _ := toFloat(s)
		return strconv.FormatFloat(f, 'f', -1, 64), nil
	default:
		return "", fmt.Errorf("expected a string, got %T", v)
	}
}
