package solar

import (
	"fmt"
	"time"

	"github.com/nathan-osman/go-sunrise"
	"github.com/sixdouglas/suncalc"
	"go.uber.org/zap"
)

// Names accepted by NewProvider.
const (
	AlgorithmAlmanac = "almanac"
	AlgorithmSunrise = "sunrise"
	AlgorithmSuncalc = "suncalc"
)

// Provider computes local sunrise and sunset for a calendar date.
type Provider interface {
	Name() string
	SunTimes(date time.Time, loc Location, offsetHours float64) (SunTimes, error)
}

// NewProvider returns the sun-time backend named by algorithm.
func NewProvider(algorithm string, zenith Zenith, logger *zap.Logger) (Provider, error) {
	switch algorithm {
	case "", AlgorithmAlmanac:
		return NewCalculator(zenith), nil
	case AlgorithmSunrise:
		if zenith != 0 && zenith != ZenithOfficial {
			logger.Warn("sunrise backend only supports the official zenith, ignoring setting",
				zap.String("zenith", zenith.Name()))
		}
		return &sunriseProvider{fallback: NewCalculator(ZenithOfficial)}, nil
	case AlgorithmSuncalc:
		rise, set, ok := suncalcEvents(zenith)
		if !ok {
			logger.Warn("suncalc backend has no event for zenith, using official",
				zap.String("zenith", zenith.Name()))
			zenith = ZenithOfficial
		}
		return &suncalcProvider{
			rise:     rise,
			set:      set,
			fallback: NewCalculator(zenith),
		}, nil
	default:
		return nil, fmt.Errorf("unknown sun time algorithm %q", algorithm)
	}
}

// sunriseProvider wraps github.com/nathan-osman/go-sunrise.
type sunriseProvider struct {
	fallback *Calculator
}

func (p *sunriseProvider) Name() string { return AlgorithmSunrise }

func (p *sunriseProvider) SunTimes(date time.Time, loc Location, offsetHours float64) (SunTimes, error) {
	if err := loc.Validate(); err != nil {
		return SunTimes{}, err
	}

	y, m, d := date.Date()
	result := SunTimes{Date: time.Date(y, m, d, 0, 0, 0, 0, date.Location())}

	rise, set := sunrise.SunriseSunset(loc.Latitude, loc.Longitude, y, m, d)
	if rise.IsZero() || set.IsZero() {
		result.Polar = p.fallback.polarHint(date, loc)
		return result, nil
	}

	result.Sunrise = utcClockTime(rise, offsetHours)
	result.Sunset = utcClockTime(set, offsetHours)
	return result, nil
}

// suncalcProvider wraps github.com/sixdouglas/suncalc.
type suncalcProvider struct {
	rise     suncalc.DayTimeName
	set      suncalc.DayTimeName
	fallback *Calculator
}

func suncalcEvents(zenith Zenith) (suncalc.DayTimeName, suncalc.DayTimeName, bool) {
	switch zenith {
	case 0, ZenithOfficial:
		return suncalc.Sunrise, suncalc.Sunset, true
	case ZenithCivil:
		return suncalc.Dawn, suncalc.Dusk, true
	case ZenithNautical:
		return suncalc.NauticalDawn, suncalc.NauticalDusk, true
	case ZenithAstronomical:
		return suncalc.NightEnd, suncalc.Night, true
	default:
		return suncalc.Sunrise, suncalc.Sunset, false
	}
}

func (p *suncalcProvider) Name() string { return AlgorithmSuncalc }

func (p *suncalcProvider) SunTimes(date time.Time, loc Location, offsetHours float64) (SunTimes, error) {
	if err := loc.Validate(); err != nil {
		return SunTimes{}, err
	}

	y, m, d := date.Date()
	result := SunTimes{Date: time.Date(y, m, d, 0, 0, 0, 0, date.Location())}

	// suncalc anchors its search on the solar noon nearest to the instant
	// given, so ask about local noon of the requested date.
	noon := time.Date(y, m, d, 12, 0, 0, 0, time.UTC).Add(-time.Duration(offsetHours * float64(time.Hour)))
	times := suncalc.GetTimes(noon, loc.Latitude, loc.Longitude)

	rise, okRise := validEvent(times[p.rise].Value, noon)
	set, okSet := validEvent(times[p.set].Value, noon)
	if !okRise || !okSet {
		result.Polar = p.fallback.polarHint(date, loc)
		return result, nil
	}

	result.Sunrise = utcClockTime(rise, offsetHours)
	result.Sunset = utcClockTime(set, offsetHours)
	return result, nil
}

// validEvent filters the garbage suncalc produces when an event does not occur.
func validEvent(t, around time.Time) (time.Time, bool) {
	if t.IsZero() {
		return time.Time{}, false
	}
	diff := t.Sub(around)
	if diff < -24*time.Hour || diff > 24*time.Hour {
		return time.Time{}, false
	}
	return t, true
}

func utcClockTime(t time.Time, offsetHours float64) ClockTime {
	u := t.UTC()
	return ClockTimeFromHours(float64(u.Hour()) +
		float64(u.Minute())/60 +
		float64(u.Second())/3600 +
		offsetHours)
}
