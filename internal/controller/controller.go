// Package controller decides between day and night on a fixed check cycle
// and applies the matching theme pair to the editor when the state changes.
package controller

import (
	"fmt"
	"sync"
	"time"

	"suntheme/internal/clock"
	"suntheme/internal/config"
	"suntheme/internal/shadowstate"
	"suntheme/internal/solar"
	pkghost "suntheme/pkg/host"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// maxCachedDates bounds the sun times cache; ticks only need today.
const maxCachedDates = 8

// SettingsSource supplies the settings read on every tick.
type SettingsSource interface {
	Current() *config.Settings
}

// Controller is the day/night controller. It owns the schedule state and the
// per-date sun times cache.
type Controller struct {
	settings SettingsSource
	provider solar.Provider
	host     pkghost.Host
	clock    clock.Clock
	logger   *zap.Logger
	readOnly bool

	// Captured at construction; changing these needs a restart.
	location solar.Location
	zone     solar.TimeZone
	collar   time.Duration

	tickMu   sync.Mutex
	schedule ScheduleState

	cacheMu sync.Mutex
	cache   map[string]solar.SunTimes

	timerMu sync.Mutex
	timer   clock.Timer
	started bool

	shadowTracker *shadowstate.ControllerTracker
}

// NewController creates a controller. Location, time zone, zenith, algorithm
// and check cycle are taken from the settings at this point.
func NewController(
	settings SettingsSource,
	host pkghost.Host,
	clk clock.Clock,
	logger *zap.Logger,
	readOnly bool,
) (*Controller, error) {
	logger = logger.Named("controller")
	s := settings.Current()

	provider, err := solar.NewProvider(s.Algorithm, s.ZenithAngle, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create sun time provider: %w", err)
	}

	return &Controller{
		settings:      settings,
		provider:      provider,
		host:          host,
		clock:         clk,
		logger:        logger,
		readOnly:      readOnly,
		location:      s.Location(),
		zone:          s.Zone,
		collar:        s.Collar(),
		schedule:      ScheduleState{CheckCycle: s.CheckInterval()},
		cache:         make(map[string]solar.SunTimes),
		shadowTracker: shadowstate.NewControllerTracker(),
	}, nil
}

// GetShadowState returns the current shadow state
func (c *Controller) GetShadowState() *shadowstate.ControllerShadowState {
	return c.shadowTracker.GetState()
}

// Schedule returns a copy of the schedule state.
func (c *Controller) Schedule() ScheduleState {
	c.tickMu.Lock()
	defer c.tickMu.Unlock()
	return c.schedule
}

// Zone returns the time zone captured at construction.
func (c *Controller) Zone() solar.TimeZone {
	return c.zone
}

// Location returns the location captured at construction.
func (c *Controller) Location() solar.Location {
	return c.location
}

// Start runs the first tick and schedules the next one.
func (c *Controller) Start() error {
	c.timerMu.Lock()
	if c.started {
		c.timerMu.Unlock()
		return fmt.Errorf("controller already started")
	}
	c.started = true
	c.timerMu.Unlock()

	fields := []zap.Field{
		zap.String("timezone", c.zone.String()),
		zap.Float64("latitude", c.location.Latitude),
		zap.Float64("longitude", c.location.Longitude),
		zap.String("algorithm", c.provider.Name()),
		zap.Duration("check_cycle", c.schedule.CheckCycle),
		zap.Bool("read_only", c.readOnly),
	}
	if today, err := c.SunTimesFor(c.clock.Now()); err != nil {
		fields = append(fields, zap.NamedError("sun_times_error", err))
	} else if today.HasEvents() {
		fields = append(fields,
			zap.Stringer("sunrise", today.Sunrise),
			zap.Stringer("sunset", today.Sunset))
	} else {
		fields = append(fields, zap.Stringer("polar", today.Polar))
	}
	c.logger.Info("Starting day/night controller", fields...)

	c.run()
	return nil
}

// Stop cancels the pending tick. A tick already running completes but does
// not reschedule.
func (c *Controller) Stop() {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()

	if !c.started {
		c.logger.Info("Controller was not started, nothing to stop")
		return
	}
	c.started = false
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.logger.Info("Day/night controller stopped")
}

// Reevaluate runs a tick now and restarts the check cycle from here.
func (c *Controller) Reevaluate() (Decision, error) {
	decision, err := c.Tick()
	c.scheduleNext()
	return decision, err
}

// run is the timer callback. The next tick is always scheduled, even after a
// failed tick.
func (c *Controller) run() {
	defer c.scheduleNext()

	if _, err := c.Tick(); err != nil {
		c.logger.Error("Day/night check failed", zap.Error(err))
	}
}

func (c *Controller) scheduleNext() {
	c.timerMu.Lock()
	defer c.timerMu.Unlock()

	if !c.started {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = c.clock.AfterFunc(c.schedule.CheckCycle, c.run)
	c.shadowTracker.UpdateNextEvaluation(c.clock.Now().Add(c.schedule.CheckCycle))
}

// Tick evaluates the current state and applies the theme pair if it changed.
// Ticks are serialized.
func (c *Controller) Tick() (decision Decision, err error) {
	c.tickMu.Lock()
	defer c.tickMu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("day/night check panicked: %v", r)
		}
	}()

	now := c.clock.Now()
	decision, err = c.Evaluate(now)
	if err != nil {
		c.shadowTracker.UpdateEvaluation(Unknown.String(), "", "", "", "", now, err)
		return decision, fmt.Errorf("failed to evaluate day/night state: %w", err)
	}

	err = c.apply(decision)
	c.recordEvaluation(decision, err)
	return decision, err
}

// Evaluate decides the state at now without applying anything.
func (c *Controller) Evaluate(now time.Time) (Decision, error) {
	s := c.settings.Current()
	policy := PolicyFrom(s)
	local := now.In(c.zone.Location())

	decision := Decision{Now: local}

	var times solar.SunTimes
	if !policy.ForceNight && !policy.ForceDay && !policy.OverrideTimes {
		today, err := c.SunTimesFor(local)
		if err != nil {
			return decision, err
		}
		times = widen(today, c.collar)
	}

	decision.State, decision.Source = Resolve(policy, solar.ClockTimeOf(local), times)

	switch decision.Source {
	case SourceOverride:
		decision.Sunrise = policy.OverrideSunrise
		decision.Sunset = policy.OverrideSunset
	case SourceComputed, SourcePolar:
		decision.Sunrise = times.Sunrise
		decision.Sunset = times.Sunset
		decision.Polar = times.Polar
	}

	decision.Themes = ThemesFor(s, decision.State)

	c.shadowTracker.UpdateCurrentInputs(map[string]interface{}{
		"now":             solar.ClockTimeOf(local).String(),
		"date":            local.Format(time.DateOnly),
		"forceDay":        policy.ForceDay,
		"forceNight":      policy.ForceNight,
		"overrideTimes":   policy.OverrideTimes,
		"overrideSunrise": policy.OverrideSunrise.String(),
		"overrideSunset":  policy.OverrideSunset.String(),
	})

	return decision, nil
}

// SunTimesFor returns the sun times for the local calendar date of t,
// computing them once per date.
func (c *Controller) SunTimesFor(t time.Time) (solar.SunTimes, error) {
	local := t.In(c.zone.Location())
	key := local.Format(time.DateOnly)

	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()

	if cached, ok := c.cache[key]; ok {
		return cached, nil
	}

	// The offset at local noon is the one in force for most of the day.
	y, m, d := local.Date()
	noon := time.Date(y, m, d, 12, 0, 0, 0, c.zone.Location())

	times, err := c.provider.SunTimes(noon, c.location, c.zone.OffsetHours(noon))
	if err != nil {
		return solar.SunTimes{}, fmt.Errorf("failed to compute sun times for %s: %w", key, err)
	}

	if len(c.cache) >= maxCachedDates {
		c.cache = make(map[string]solar.SunTimes)
	}
	c.cache[key] = times

	c.logger.Debug("Computed sun times",
		zap.String("date", key),
		zap.Stringer("sunrise", times.Sunrise),
		zap.Stringer("sunset", times.Sunset),
		zap.Stringer("polar", times.Polar))
	return times, nil
}

// apply calls the host setters for names that differ from what was last
// applied. On failure the schedule state is left alone so the next tick
// retries.
func (c *Controller) apply(d Decision) error {
	stateChanged := d.State != c.schedule.LastKnownState

	var pending ThemePair
	if d.Themes.ColorScheme != "" && (stateChanged || d.Themes.ColorScheme != c.schedule.Applied.ColorScheme) {
		pending.ColorScheme = d.Themes.ColorScheme
	}
	if d.Themes.WindowTheme != "" && (stateChanged || d.Themes.WindowTheme != c.schedule.Applied.WindowTheme) {
		pending.WindowTheme = d.Themes.WindowTheme
	}

	if !stateChanged && pending.IsEmpty() {
		return nil
	}

	if stateChanged {
		c.logger.Info("Day/night state changed",
			zap.Stringer("old", c.schedule.LastKnownState),
			zap.Stringer("new", d.State),
			zap.String("reason", d.Reason()))
	}

	if c.readOnly {
		c.logger.Info("READ-ONLY mode: Would apply theme",
			zap.String("color_scheme", pending.ColorScheme),
			zap.String("window_theme", pending.WindowTheme))
		c.commit(d)
		return nil
	}

	var errs error
	if pending.ColorScheme != "" {
		if err := c.host.SetColorScheme(pending.ColorScheme); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to set color scheme %q: %w", pending.ColorScheme, err))
		}
	}
	if pending.WindowTheme != "" {
		if err := c.host.SetWindowTheme(pending.WindowTheme); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("failed to set window theme %q: %w", pending.WindowTheme, err))
		}
	}
	if errs != nil {
		return errs
	}

	c.logger.Info("Applied theme",
		zap.Stringer("state", d.State),
		zap.String("color_scheme", d.Themes.ColorScheme),
		zap.String("window_theme", d.Themes.WindowTheme))
	c.commit(d)
	return nil
}

func (c *Controller) commit(d Decision) {
	c.schedule.LastKnownState = d.State
	c.schedule.Applied = d.Themes
	c.shadowTracker.RecordAction(d.Themes.ColorScheme, d.Themes.WindowTheme, d.Reason(), d.Now)
}

func (c *Controller) recordEvaluation(d Decision, err error) {
	var sunrise, sunset string
	if d.Source == SourceComputed || d.Source == SourceOverride {
		sunrise, sunset = d.Sunrise.String(), d.Sunset.String()
	}
	c.shadowTracker.UpdateEvaluation(d.State.String(), string(d.Source), sunrise, sunset, d.Polar.String(), d.Now, err)
}

// PolicyFrom extracts the override policy from settings.
func PolicyFrom(s *config.Settings) Policy {
	return Policy{
		ForceDay:        s.ForceDay,
		ForceNight:      s.ForceNight,
		OverrideTimes:   s.OverrideTimes,
		OverrideSunrise: s.OverrideSunrise,
		OverrideSunset:  s.OverrideSunset,
	}
}

// ThemesFor returns the configured theme pair for state.
func ThemesFor(s *config.Settings, state State) ThemePair {
	if state == Night {
		return ThemePair{ColorScheme: s.NightColourScheme, WindowTheme: s.NightWindowTheme}
	}
	return ThemePair{ColorScheme: s.DayColourScheme, WindowTheme: s.DayWindowTheme}
}
