package shadowstate

import "time"

// ComponentShadowState is implemented by every component that publishes a
// shadow state.
type ComponentShadowState interface {
	GetCurrentInputs() map[string]interface{}
	GetLastActionInputs() map[string]interface{}
	GetOutputs() interface{}
	GetMetadata() StateMetadata
}

// StateMetadata contains metadata about the shadow state
type StateMetadata struct {
	LastUpdated time.Time `json:"lastUpdated"`
	Component   string    `json:"component"`
}

// ActionRecord represents a single action taken by a component
type ActionRecord struct {
	Timestamp  time.Time              `json:"timestamp"`
	ActionType string                 `json:"actionType"`
	Reason     string                 `json:"reason"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// ControllerShadowState is the shadow state of the day/night controller.
type ControllerShadowState struct {
	Component string            `json:"component"`
	Inputs    ControllerInputs  `json:"inputs"`
	Outputs   ControllerOutputs `json:"outputs"`
	Metadata  StateMetadata     `json:"metadata"`
}

// ControllerInputs tracks current and last-action input values
type ControllerInputs struct {
	Current      map[string]interface{} `json:"current"`
	AtLastAction map[string]interface{} `json:"atLastAction"`
}

// ControllerOutputs tracks what the controller decided and applied.
type ControllerOutputs struct {
	State          string         `json:"state"`
	Source         string         `json:"source"`
	Sunrise        string         `json:"sunrise,omitempty"`
	Sunset         string         `json:"sunset,omitempty"`
	Polar          string         `json:"polar,omitempty"`
	ColorScheme    string         `json:"colorScheme,omitempty"`
	WindowTheme    string         `json:"windowTheme,omitempty"`
	LastEvaluation time.Time      `json:"lastEvaluation"`
	NextEvaluation time.Time      `json:"nextEvaluation"`
	LastError      string         `json:"lastError,omitempty"`
	LastAction     *ActionRecord  `json:"lastAction,omitempty"`
	RecentActions  []ActionRecord `json:"recentActions"`
}

// GetCurrentInputs implements ComponentShadowState
func (c *ControllerShadowState) GetCurrentInputs() map[string]interface{} {
	return c.Inputs.Current
}

// GetLastActionInputs implements ComponentShadowState
func (c *ControllerShadowState) GetLastActionInputs() map[string]interface{} {
	return c.Inputs.AtLastAction
}

// GetOutputs implements ComponentShadowState
func (c *ControllerShadowState) GetOutputs() interface{} {
	return c.Outputs
}

// GetMetadata implements ComponentShadowState
func (c *ControllerShadowState) GetMetadata() StateMetadata {
	return c.Metadata
}

// NewControllerShadowState creates an empty controller shadow state
func NewControllerShadowState() *ControllerShadowState {
	return &ControllerShadowState{
		Component: "controller",
		Inputs: ControllerInputs{
			Current:      make(map[string]interface{}),
			AtLastAction: make(map[string]interface{}),
		},
		Outputs: ControllerOutputs{
			State:         "unknown",
			RecentActions: make([]ActionRecord, 0),
		},
		Metadata: StateMetadata{
			LastUpdated: time.Now(),
			Component:   "controller",
		},
	}
}
