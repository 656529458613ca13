package shadowstate

import (
	"sync"
	"time"
)

// maxRecentActions bounds ControllerOutputs.RecentActions.
const maxRecentActions = 20

// Tracker exposes the shadow state of every registered component
type Tracker struct {
	mu        sync.RWMutex
	states    map[string]ComponentShadowState
	providers map[string]func() ComponentShadowState
}

// NewTracker creates a new shadow state tracker
func NewTracker() *Tracker {
	return &Tracker{
		states:    make(map[string]ComponentShadowState),
		providers: make(map[string]func() ComponentShadowState),
	}
}

// Register registers a static shadow state
func (t *Tracker) Register(name string, state ComponentShadowState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.states[name] = state
}

// RegisterProvider registers a function that provides a component's shadow
// state on demand
func (t *Tracker) RegisterProvider(name string, provider func() ComponentShadowState) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.providers[name] = provider
}

// Get retrieves a component's shadow state
func (t *Tracker) Get(name string) (ComponentShadowState, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if provider, ok := t.providers[name]; ok {
		return provider(), true
	}
	state, ok := t.states[name]
	return state, ok
}

// GetAll retrieves all shadow states. Providers win over static states on a
// name collision.
func (t *Tracker) GetAll() map[string]ComponentShadowState {
	t.mu.RLock()
	defer t.mu.RUnlock()

	states := make(map[string]ComponentShadowState, len(t.states)+len(t.providers))
	for k, v := range t.states {
		states[k] = v
	}
	for k, provider := range t.providers {
		states[k] = provider()
	}
	return states
}

// ControllerTracker manages shadow state for the day/night controller
type ControllerTracker struct {
	mu    sync.RWMutex
	state *ControllerShadowState
}

// NewControllerTracker creates a new controller shadow state tracker
func NewControllerTracker() *ControllerTracker {
	return &ControllerTracker{
		state: NewControllerShadowState(),
	}
}

// UpdateCurrentInputs merges inputs into the current input values
func (ct *ControllerTracker) UpdateCurrentInputs(inputs map[string]interface{}) {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	for key, value := range inputs {
		ct.state.Inputs.Current[key] = value
	}
	ct.state.Metadata.LastUpdated = time.Now()
}

// UpdateEvaluation records the outcome of one tick.
func (ct *ControllerTracker) UpdateEvaluation(state, source, sunrise, sunset, polar string, at time.Time, evalErr error) {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	ct.state.Outputs.State = state
	ct.state.Outputs.Source = source
	ct.state.Outputs.Sunrise = sunrise
	ct.state.Outputs.Sunset = sunset
	ct.state.Outputs.Polar = polar
	ct.state.Outputs.LastEvaluation = at
	ct.state.Outputs.LastError = ""
	if evalErr != nil {
		ct.state.Outputs.LastError = evalErr.Error()
	}
	ct.state.Metadata.LastUpdated = time.Now()
}

// UpdateNextEvaluation records when the next tick is due
func (ct *ControllerTracker) UpdateNextEvaluation(at time.Time) {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	ct.state.Outputs.NextEvaluation = at
	ct.state.Metadata.LastUpdated = time.Now()
}

// RecordAction records an applied theme pair and snapshots the current
// inputs as the at-last-action inputs.
func (ct *ControllerTracker) RecordAction(colorScheme, windowTheme, reason string, at time.Time) {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	ct.state.Inputs.AtLastAction = copyMap(ct.state.Inputs.Current)
	ct.state.Outputs.ColorScheme = colorScheme
	ct.state.Outputs.WindowTheme = windowTheme

	record := ActionRecord{
		Timestamp:  at,
		ActionType: "apply_theme",
		Reason:     reason,
		Details: map[string]interface{}{
			"colorScheme": colorScheme,
			"windowTheme": windowTheme,
		},
	}
	ct.state.Outputs.LastAction = &record
	ct.state.Outputs.RecentActions = append(ct.state.Outputs.RecentActions, record)
	if len(ct.state.Outputs.RecentActions) > maxRecentActions {
		ct.state.Outputs.RecentActions = ct.state.Outputs.RecentActions[len(ct.state.Outputs.RecentActions)-maxRecentActions:]
	}
	ct.state.Metadata.LastUpdated = time.Now()
}

// GetState returns a deep copy of the current shadow state
func (ct *ControllerTracker) GetState() *ControllerShadowState {
	ct.mu.RLock()
	defer ct.mu.RUnlock()

	out := *ct.state
	out.Inputs.Current = copyMap(ct.state.Inputs.Current)
	out.Inputs.AtLastAction = copyMap(ct.state.Inputs.AtLastAction)
	out.Outputs.RecentActions = make([]ActionRecord, len(ct.state.Outputs.RecentActions))
	for i, record := range ct.state.Outputs.RecentActions {
		record.Details = copyMap(record.Details)
		out.Outputs.RecentActions[i] = record
	}
	if ct.state.Outputs.LastAction != nil {
		last := *ct.state.Outputs.LastAction
		last.Details = copyMap(last.Details)
		out.Outputs.LastAction = &last
	}
	return &out
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
