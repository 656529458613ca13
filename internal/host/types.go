package host

import "encoding/json"

// Message is the envelope for every frame exchanged with an editor bridge.
type Message struct {
	ID      int             `json:"id,omitempty"`
	Type    string          `json:"type"`
	Success *bool           `json:"success,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Error is an error reported by the bridge for a request.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AuthMessage answers the bridge's auth_required greeting.
type AuthMessage struct {
	Type        string `json:"type"`
	AccessToken string `json:"access_token,omitempty"`
}

// CallServiceRequest asks the bridge to run an editor command.
type CallServiceRequest struct {
	ID          int                    `json:"id"`
	Type        string                 `json:"type"`
	Domain      string                 `json:"domain"`
	Service     string                 `json:"service"`
	ServiceData map[string]interface{} `json:"service_data,omitempty"`
}

// Editor services understood by the bridge.
const (
	EditorDomain          = "editor"
	ServiceSetColorScheme = "set_color_scheme"
	ServiceSetWindowTheme = "set_window_theme"
)
