package solar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

// assertNear checks that got is within tolerance of the expected "HH:MM".
func assertNear(t *testing.T, expected string, got ClockTime, tolerance time.Duration) {
	t.Helper()
	want, err := ParseClockTime(expected)
	require.NoError(t, err)

	diff := time.Duration(int(got)-int(want)) * time.Second
	if diff < 0 {
		diff = -diff
	}
	assert.LessOrEqual(t, diff, tolerance, "expected %s ± %s, got %s", expected, tolerance, got)
}

func TestCalculator_KnownLocations(t *testing.T) {
	calc := NewCalculator(ZenithOfficial)

	tests := []struct {
		name    string
		date    time.Time
		loc     Location
		offset  float64
		sunrise string
		sunset  string
	}{
		{
			name:    "London summer solstice (BST)",
			date:    date(2025, time.June, 21),
			loc:     Location{Latitude: 51.5074, Longitude: -0.1278},
			offset:  1,
			sunrise: "04:43",
			sunset:  "21:21",
		},
		{
			name:    "London winter solstice (GMT)",
			date:    date(2025, time.December, 21),
			loc:     Location{Latitude: 51.5074, Longitude: -0.1278},
			offset:  0,
			sunrise: "08:04",
			sunset:  "15:53",
		},
		{
			name:    "New York spring equinox (EDT)",
			date:    date(2025, time.March, 20),
			loc:     Location{Latitude: 40.7128, Longitude: -74.006},
			offset:  -4,
			sunrise: "07:00",
			sunset:  "19:08",
		},
		{
			name:    "Sydney winter solstice (AEST)",
			date:    date(2025, time.June, 21),
			loc:     Location{Latitude: -33.8688, Longitude: 151.2093},
			offset:  10,
			sunrise: "07:00",
			sunset:  "16:54",
		},
		{
			name:    "Helsinki mid January (EET)",
			date:    date(2025, time.January, 15),
			loc:     Location{Latitude: 60.1695, Longitude: 24.9354},
			offset:  2,
			sunrise: "09:10",
			sunset:  "15:50",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			times, err := calc.SunTimes(tt.date, tt.loc, tt.offset)
			require.NoError(t, err)
			require.True(t, times.HasEvents())
			assert.NoError(t, times.Err())

			assertNear(t, tt.sunrise, times.Sunrise, 3*time.Minute)
			assertNear(t, tt.sunset, times.Sunset, 3*time.Minute)
		})
	}
}

func TestCalculator_EquatorEquinox(t *testing.T) {
	calc := NewCalculator(ZenithOfficial)

	times, err := calc.SunTimes(date(2025, time.March, 20), Location{}, 0)
	require.NoError(t, err)
	require.True(t, times.HasEvents())

	// Refraction lengthens the equatorial day to about 12h07m and the
	// equation of time shifts solar noon by roughly +7 minutes in March.
	assertNear(t, "06:00", times.Sunrise, 5*time.Minute)
	assertNear(t, "18:00", times.Sunset, 15*time.Minute)

	dayLength := time.Duration(int(times.Sunset)-int(times.Sunrise)) * time.Second
	assert.InDelta(t, (12*time.Hour + 7*time.Minute).Minutes(), dayLength.Minutes(), 3)
}

func TestCalculator_SunriseBeforeSunset(t *testing.T) {
	calc := NewCalculator(ZenithOfficial)

	// Offsets match each longitude so local noon lands near 12:00.
	locations := []Location{
		{Latitude: 0, Longitude: 0},
		{Latitude: 32.85486, Longitude: -97.50515},
		{Latitude: -33.8688, Longitude: 151.2093},
		{Latitude: 60.1695, Longitude: 24.9354},
		{Latitude: -54.8019, Longitude: -68.3030},
		{Latitude: 64.1466, Longitude: -21.9426},
	}

	for _, loc := range locations {
		offset := float64(int(loc.Longitude / 15))
		for day := time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC); day.Year() == 2025; day = day.AddDate(0, 0, 7) {
			times, err := calc.SunTimes(day, loc, offset)
			require.NoError(t, err)
			if !times.HasEvents() {
				continue
			}
			assert.True(t, times.Sunrise.Before(times.Sunset),
				"%v on %s: sunrise %s should precede sunset %s", loc, day.Format(time.DateOnly), times.Sunrise, times.Sunset)
			assert.GreaterOrEqual(t, int(times.Sunrise), 0)
			assert.Less(t, int(times.Sunset), secondsPerDay)
		}
	}
}

func TestCalculator_PolarConditions(t *testing.T) {
	calc := NewCalculator(ZenithOfficial)

	tests := []struct {
		name     string
		date     time.Time
		loc      Location
		expected PolarCondition
	}{
		{"arctic winter solstice", date(2025, time.December, 21), Location{Latitude: 80}, PolarNight},
		{"arctic summer solstice", date(2025, time.June, 21), Location{Latitude: 80}, PolarDay},
		{"antarctic winter solstice", date(2025, time.June, 21), Location{Latitude: -80}, PolarNight},
		{"antarctic summer solstice", date(2025, time.December, 21), Location{Latitude: -80}, PolarDay},
		{"north pole in December", date(2025, time.December, 1), Location{Latitude: 90}, PolarNight},
		{"south pole in December", date(2025, time.December, 1), Location{Latitude: -90}, PolarDay},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			times, err := calc.SunTimes(tt.date, tt.loc, 0)
			require.NoError(t, err)
			assert.False(t, times.HasEvents())
			assert.Equal(t, tt.expected, times.Polar)

			var noEvent *NoEventError
			require.ErrorAs(t, times.Err(), &noEvent)
			assert.Equal(t, tt.expected, noEvent.Polar)
		})
	}
}

func TestCalculator_NoSunriseMessage(t *testing.T) {
	calc := NewCalculator(ZenithOfficial)

	times, err := calc.SunTimes(date(2025, time.December, 21), Location{Latitude: 80}, 0)
	require.NoError(t, err)
	assert.Contains(t, times.Err().Error(), "no sunrise on 2025-12-21")
}

func TestCalculator_InvalidLocation(t *testing.T) {
	calc := NewCalculator(ZenithOfficial)

	for _, loc := range []Location{
		{Latitude: 91},
		{Latitude: -90.5},
		{Longitude: 180.1},
		{Longitude: -200},
	} {
		_, err := calc.SunTimes(date(2025, time.March, 20), loc, 0)
		assert.ErrorIs(t, err, ErrInvalidLocation, "%+v", loc)
	}
}

func TestCalculator_ZenithWidensTwilight(t *testing.T) {
	loc := Location{Latitude: 51.5074, Longitude: -0.1278}
	day := date(2025, time.March, 20)

	official, err := NewCalculator(ZenithOfficial).SunTimes(day, loc, 0)
	require.NoError(t, err)
	civil, err := NewCalculator(ZenithCivil).SunTimes(day, loc, 0)
	require.NoError(t, err)
	nautical, err := NewCalculator(ZenithNautical).SunTimes(day, loc, 0)
	require.NoError(t, err)

	assert.True(t, civil.Sunrise.Before(official.Sunrise))
	assert.True(t, official.Sunset.Before(civil.Sunset))
	assert.True(t, nautical.Sunrise.Before(civil.Sunrise))
	assert.True(t, civil.Sunset.Before(nautical.Sunset))
}

func TestCalculator_OffsetWrapsIntoDay(t *testing.T) {
	calc := NewCalculator(ZenithOfficial)
	loc := Location{Latitude: 35.6762, Longitude: 139.6503}
	day := date(2025, time.June, 21)

	// Tokyo in UTC: sunrise lands on the previous evening's clock.
	utc, err := calc.SunTimes(day, loc, 0)
	require.NoError(t, err)
	local, err := calc.SunTimes(day, loc, 9)
	require.NoError(t, err)

	assert.True(t, utc.Sunset.Before(utc.Sunrise), "UTC clock times wrap around midnight")
	assert.InDelta(t, int(utc.Sunrise.Add(9*time.Hour)), int(local.Sunrise), 1)
	assertNear(t, "04:25", local.Sunrise, 3*time.Minute)
}

func TestCalculator_DefaultZenith(t *testing.T) {
	assert.Equal(t, ZenithOfficial, NewCalculator(0).Zenith())
}

func TestParseZenith(t *testing.T) {
	z, err := ParseZenith("civil")
	require.NoError(t, err)
	assert.Equal(t, ZenithCivil, z)
	assert.Equal(t, "civil", z.Name())

	_, err = ParseZenith("golden")
	assert.ErrorIs(t, err, ErrUnknownZenith)
}
