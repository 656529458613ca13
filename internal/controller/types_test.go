package controller

import (
	"testing"
	"time"

	"suntheme/internal/solar"

	"github.com/stretchr/testify/assert"
)

func ct(h, m int) solar.ClockTime { return solar.NewClockTime(h, m, 0) }

func TestResolve(t *testing.T) {
	sun := solar.SunTimes{Sunrise: ct(6, 4), Sunset: ct(18, 11)}
	override := Policy{OverrideTimes: true, OverrideSunrise: ct(6, 30), OverrideSunset: ct(20, 0)}
	wrapping := Policy{OverrideTimes: true, OverrideSunrise: ct(20, 0), OverrideSunset: ct(6, 0)}

	tests := []struct {
		name   string
		policy Policy
		now    solar.ClockTime
		times  solar.SunTimes
		state  State
		source Source
	}{
		{"both force flags pick night", Policy{ForceDay: true, ForceNight: true}, ct(12, 0), sun, Night, SourceForceNight},
		{"force night", Policy{ForceNight: true}, ct(12, 0), sun, Night, SourceForceNight},
		{"force day", Policy{ForceDay: true}, ct(23, 0), sun, Day, SourceForceDay},
		{"force beats override", Policy{ForceDay: true, OverrideTimes: true, OverrideSunrise: ct(6, 30), OverrideSunset: ct(20, 0)}, ct(23, 0), sun, Day, SourceForceDay},
		{"override day", override, ct(14, 0), sun, Day, SourceOverride},
		{"override at sunrise is day", override, ct(6, 30), sun, Day, SourceOverride},
		{"override at sunset is night", override, ct(20, 0), sun, Night, SourceOverride},
		{"override ignores polar night", override, ct(14, 0), solar.SunTimes{Polar: solar.PolarNight}, Day, SourceOverride},
		{"wrapping override late evening", wrapping, ct(23, 0), sun, Day, SourceOverride},
		{"wrapping override early morning", wrapping, ct(5, 0), sun, Day, SourceOverride},
		{"wrapping override midday", wrapping, ct(12, 0), sun, Night, SourceOverride},
		{"polar day", Policy{}, ct(0, 0), solar.SunTimes{Polar: solar.PolarDay}, Day, SourcePolar},
		{"polar night", Policy{}, ct(12, 0), solar.SunTimes{Polar: solar.PolarNight}, Night, SourcePolar},
		{"computed day", Policy{}, ct(12, 0), sun, Day, SourceComputed},
		{"computed before sunrise", Policy{}, ct(6, 3), sun, Night, SourceComputed},
		{"computed after sunset", Policy{}, ct(18, 11), sun, Night, SourceComputed},
		{"computed wrapping window", Policy{}, ct(1, 0), solar.SunTimes{Sunrise: ct(19, 26), Sunset: ct(10, 0)}, Day, SourceComputed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, source := Resolve(tt.policy, tt.now, tt.times)
			assert.Equal(t, tt.state, state)
			assert.Equal(t, tt.source, source)
		})
	}
}

func TestWiden(t *testing.T) {
	sun := solar.SunTimes{Sunrise: ct(6, 0), Sunset: ct(18, 0)}

	widened := widen(sun, 30*time.Minute)
	assert.Equal(t, ct(5, 30), widened.Sunrise)
	assert.Equal(t, ct(18, 30), widened.Sunset)

	narrowed := widen(sun, -time.Hour)
	assert.Equal(t, ct(7, 0), narrowed.Sunrise)
	assert.Equal(t, ct(17, 0), narrowed.Sunset)

	assert.Equal(t, solar.PolarNight, widen(sun, -6*time.Hour).Polar)
	assert.Equal(t, solar.PolarDay, widen(sun, 6*time.Hour).Polar)

	polar := solar.SunTimes{Polar: solar.PolarNight}
	assert.Equal(t, polar, widen(polar, time.Hour))
	assert.Equal(t, sun, widen(sun, 0))
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "day", Day.String())
	assert.Equal(t, "night", Night.String())
	assert.Equal(t, "unknown", Unknown.String())

	text, err := Night.MarshalText()
	assert.NoError(t, err)
	assert.Equal(t, "night", string(text))
}

func TestDecisionReason(t *testing.T) {
	assert.Equal(t, "forceNight is set", Decision{Source: SourceForceNight}.Reason())
	assert.Equal(t, "override window 06:30-20:00",
		Decision{Source: SourceOverride, Sunrise: ct(6, 30), Sunset: ct(20, 0)}.Reason())
	assert.Equal(t, "polar_night on 2025-12-21",
		Decision{Source: SourcePolar, Polar: solar.PolarNight, Now: time.Date(2025, 12, 21, 12, 0, 0, 0, time.UTC)}.Reason())
}
