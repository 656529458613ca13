package controller

import (
	"fmt"
	"time"

	"suntheme/internal/solar"
)

// State is the day/night state of the editor.
type State int

const (
	// Unknown is the state before the first successful apply.
	Unknown State = iota
	Day
	Night
)

func (s State) String() string {
	switch s {
	case Day:
		return "day"
	case Night:
		return "night"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Source names the rule that decided a state.
type Source string

const (
	SourceForceNight Source = "force_night"
	SourceForceDay   Source = "force_day"
	SourceOverride   Source = "override_times"
	SourceComputed   Source = "computed"
	SourcePolar      Source = "polar"
)

// ThemePair is the color scheme and window theme applied for one state. An
// empty name leaves that setting untouched.
type ThemePair struct {
	ColorScheme string `json:"colorScheme"`
	WindowTheme string `json:"windowTheme"`
}

// IsEmpty reports whether neither name is set.
func (p ThemePair) IsEmpty() bool {
	return p.ColorScheme == "" && p.WindowTheme == ""
}

// Policy is the per-tick view of the override settings.
type Policy struct {
	ForceDay        bool
	ForceNight      bool
	OverrideTimes   bool
	OverrideSunrise solar.ClockTime
	OverrideSunset  solar.ClockTime
}

// ScheduleState is what the controller carries between ticks.
type ScheduleState struct {
	CheckCycle     time.Duration `json:"checkCycle"`
	LastKnownState State         `json:"lastKnownState"`
	Applied        ThemePair     `json:"applied"`
}

// Decision is the outcome of one evaluation.
type Decision struct {
	State   State
	Source  Source
	Now     time.Time
	Sunrise solar.ClockTime
	Sunset  solar.ClockTime
	Polar   solar.PolarCondition
	Themes  ThemePair
}

// Reason describes the decision for logs and the shadow state.
func (d Decision) Reason() string {
	switch d.Source {
	case SourceForceNight:
		return "forceNight is set"
	case SourceForceDay:
		return "forceDay is set"
	case SourcePolar:
		return fmt.Sprintf("%s on %s", d.Polar, d.Now.Format(time.DateOnly))
	case SourceOverride:
		return fmt.Sprintf("override window %s-%s", d.Sunrise, d.Sunset)
	default:
		return fmt.Sprintf("sun window %s-%s", d.Sunrise, d.Sunset)
	}
}

// Resolve applies the precedence rules: forceNight, then forceDay, then the
// override window, then the polar condition, then the computed window. times
// is only consulted when neither a force flag nor overrideTimes is set.
func Resolve(policy Policy, now solar.ClockTime, times solar.SunTimes) (State, Source) {
	switch {
	case policy.ForceNight:
		return Night, SourceForceNight
	case policy.ForceDay:
		return Day, SourceForceDay
	case policy.OverrideTimes:
		if solar.InWindow(now, policy.OverrideSunrise, policy.OverrideSunset) {
			return Day, SourceOverride
		}
		return Night, SourceOverride
	}

	switch times.Polar {
	case solar.PolarDay:
		return Day, SourcePolar
	case solar.PolarNight:
		return Night, SourcePolar
	}

	if solar.InWindow(now, times.Sunrise, times.Sunset) {
		return Day, SourceComputed
	}
	return Night, SourceComputed
}

// widen moves sunrise earlier and sunset later by collar (a negative collar
// narrows the day). A collar that swallows the whole day or night turns the
// date into a polar one.
func widen(times solar.SunTimes, collar time.Duration) solar.SunTimes {
	if collar == 0 || !times.HasEvents() {
		return times
	}

	dayLength := time.Duration(int(times.Sunset)-int(times.Sunrise)) * time.Second
	if dayLength < 0 {
		dayLength += 24 * time.Hour
	}

	widened := dayLength + 2*collar
	switch {
	case widened <= 0:
		times.Polar = solar.PolarNight
		return times
	case widened >= 24*time.Hour:
		times.Polar = solar.PolarDay
		return times
	}

	times.Sunrise = times.Sunrise.Add(-collar)
	times.Sunset = times.Sunset.Add(collar)
	return times
}
