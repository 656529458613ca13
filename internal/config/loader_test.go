package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"suntheme/internal/solar"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const yamlSettings = `latitude: 51.5074
longitude: -0.1278
timezone: "Europe/London"
forceDay: false
forceNight: false
overrideTimes: true
overrideSunriseTime: "07:15"
overrideSunsetTime: "19:45"
dayColourScheme: "Packages/Color Scheme - Default/Breakers.sublime-color-scheme"
nightColourScheme: "Packages/Color Scheme - Default/Mariana.sublime-color-scheme"
dayWindowTheme: "Default.sublime-theme"
nightWindowTheme: "Adaptive.sublime-theme"
checkCycle: 2
zenith: civil
collarMinutes: 15
`

const tomlSettings = `latitude = 60.1695
longitude = 24.9354
timezone = 2
dayColourScheme = "Breakers"
nightColourScheme = "Mariana"
checkCycle = 10.5
algorithm = "suncalc"
`

const jsonSettings = `{
  "latitude": 32.85486,
  "longitude": -97.50515,
  "timezone": -6,
  "forceNight": true,
  "dayWindowTheme": "Default.sublime-theme",
  "nightWindowTheme": "Adaptive.sublime-theme"
}`

func writeSettings(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoader_LoadYAML(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	loader := NewLoader(writeSettings(t, "settings.yaml", yamlSettings), logger)

	settings, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, 51.5074, settings.Latitude)
	assert.Equal(t, -0.1278, settings.Longitude)
	assert.Equal(t, "Europe/London", settings.Timezone)
	assert.True(t, settings.Zone.IsNamed())
	assert.True(t, settings.OverrideTimes)
	assert.Equal(t, solar.NewClockTime(7, 15, 0), settings.OverrideSunrise)
	assert.Equal(t, solar.NewClockTime(19, 45, 0), settings.OverrideSunset)
	assert.Equal(t, "Adaptive.sublime-theme", settings.NightWindowTheme)
	assert.Equal(t, 2*time.Second, settings.CheckInterval())
	assert.Equal(t, solar.ZenithCivil, settings.ZenithAngle)
	assert.Equal(t, 15*time.Minute, settings.Collar())
	assert.Equal(t, solar.AlgorithmAlmanac, settings.Algorithm)
}

func TestLoader_LoadTOML(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	loader := NewLoader(writeSettings(t, "settings.toml", tomlSettings), logger)

	settings, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, 60.1695, settings.Latitude)
	assert.Equal(t, "2", settings.Timezone)
	assert.Equal(t, 2.0, settings.Zone.OffsetHours(time.Now()))
	assert.Equal(t, "Mariana", settings.NightColourScheme)
	assert.Equal(t, 10500*time.Millisecond, settings.CheckInterval())
	assert.Equal(t, solar.AlgorithmSuncalc, settings.Algorithm)
}

func TestLoader_LoadJSON(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	loader := NewLoader(writeSettings(t, "SunThemeSwitcher.sublime-settings", jsonSettings), logger)

	settings, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "-6", settings.Timezone)
	assert.Equal(t, -6.0, settings.Zone.OffsetHours(time.Now()))
	assert.True(t, settings.ForceNight)
	assert.False(t, settings.ForceDay)
	assert.Equal(t, DefaultCheckCycle, settings.CheckCycle)
}

func TestLoader_Defaults(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	loader := NewLoader(writeSettings(t, "settings.yaml", "{}\n"), logger)

	settings, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, 0.0, settings.Latitude)
	assert.Equal(t, "0", settings.Timezone)
	assert.Equal(t, solar.NewClockTime(6, 0, 0), settings.OverrideSunrise)
	assert.Equal(t, solar.NewClockTime(18, 0, 0), settings.OverrideSunset)
	assert.Equal(t, 5*time.Second, settings.CheckInterval())
	assert.Equal(t, solar.ZenithOfficial, settings.ZenithAngle)
	assert.Empty(t, settings.DayColourScheme)
}

func TestLoader_MalformedKeysFallBack(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	content := `latitude: 95
longitude: "east"
timezone: "Atlantis/Lost_City"
forceNight: "sometimes"
overrideSunriseTime: "25:00"
checkCycle: -1
zenith: golden
algorithm: sundial
dayColourScheme: "Breakers"
`
	loader := NewLoader(writeSettings(t, "settings.yaml", content), logger)

	settings, err := loader.Load()
	require.Error(t, err)

	keys := make(map[string]bool)
	for _, e := range multierr.Errors(err) {
		var cfgErr *ConfigurationError
		require.ErrorAs(t, e, &cfgErr)
		keys[cfgErr.Key] = true
	}
	for _, key := range []string{
		KeyLatitude, KeyLongitude, KeyTimezone, KeyForceNight,
		KeyOverrideSunrise, KeyCheckCycle, KeyZenith, KeyAlgorithm,
	} {
		assert.True(t, keys[key], "expected a configuration error for %s", key)
	}

	// Good keys still load; bad ones are clamped or defaulted.
	assert.Equal(t, "Breakers", settings.DayColourScheme)
	assert.Equal(t, 90.0, settings.Latitude)
	assert.Equal(t, 0.0, settings.Longitude)
	assert.Equal(t, solar.UTC, settings.Zone)
	assert.False(t, settings.ForceNight)
	assert.Equal(t, solar.NewClockTime(6, 0, 0), settings.OverrideSunrise)
	assert.Equal(t, DefaultCheckCycle, settings.CheckCycle)
	assert.Equal(t, DefaultZenith, settings.Zenith)
	assert.Equal(t, DefaultAlgorithm, settings.Algorithm)
}

func TestLoader_UnresolvableZoneKeepsLastGood(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	path := writeSettings(t, "settings.yaml", "timezone: \"America/Chicago\"\n")
	loader := NewLoader(path, logger)

	settings, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "America/Chicago", settings.Zone.String())

	require.NoError(t, os.WriteFile(path, []byte("timezone: \"America/Chicagoo\"\n"), 0644))
	settings, err = loader.Load()
	assert.Error(t, err)
	assert.Equal(t, "America/Chicago", settings.Zone.String())
}

func TestLoader_MissingFile(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	loader := NewLoader(filepath.Join(t.TempDir(), "missing.yaml"), logger)

	settings, err := loader.Load()
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	require.NotNil(t, settings)
	assert.Equal(t, DefaultCheckCycle, settings.CheckCycle)
}

func TestLoader_CurrentKeepsLastGoodOnParseError(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	path := writeSettings(t, "settings.yaml", yamlSettings)
	loader := NewLoader(path, logger)

	first := loader.Current()
	assert.Equal(t, 51.5074, first.Latitude)

	require.NoError(t, os.WriteFile(path, []byte("latitude: [unclosed\n"), 0644))
	second := loader.Current()
	assert.Equal(t, first, second)

	// Reporting the same problem twice is suppressed.
	third := loader.Current()
	assert.Equal(t, first, third)
	assert.Len(t, loader.reported, 1)
}

func TestLoader_ForceFlagsReReadEachCall(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	path := writeSettings(t, "settings.yaml", "forceNight: false\n")
	loader := NewLoader(path, logger)

	assert.False(t, loader.Current().ForceNight)

	require.NoError(t, os.WriteFile(path, []byte("forceNight: true\n"), 0644))
	assert.True(t, loader.Current().ForceNight)
}

func TestDecode_UnknownExtensionIsJSON(t *testing.T) {
	values, err := Decode("settings.conf", []byte(`{"checkCycle": 3}`))
	require.NoError(t, err)
	assert.Equal(t, 3.0, values["checkCycle"])

	_, err = Decode("settings.conf", []byte(`checkCycle: 3`))
	assert.Error(t, err)
}

func TestLoader_Watch(t *testing.T) {
	logger, _ := zap.NewDevelopment()
	path := writeSettings(t, "settings.yaml", yamlSettings)
	loader := NewLoader(path, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 1)
	err := loader.Watch(ctx, func() {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	require.NoError(t, err)

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(path), "other.yaml"), []byte("x: 1\n"), 0644))
	require.NoError(t, os.WriteFile(path, []byte("forceDay: true\n"), 0644))

	select {
	case <-changed:
	case <-time.After(5 * time.Second):
		t.Fatal("expected change notification")
	}
}
