// Package testutil provides testing utilities for suntheme. It contains a
// mock editor bridge WebSocket server and a harness that wires a controller
// to it for integration tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// connWrapper wraps a WebSocket connection with its write mutex
type connWrapper struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (w *connWrapper) writeJSON(v interface{}) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()
	return w.conn.WriteJSON(v)
}

// Message represents a WebSocket message
type Message struct {
	ID      int           `json:"id,omitempty"`
	Type    string        `json:"type"`
	Success *bool         `json:"success,omitempty"`
	Error   *MessageError `json:"error,omitempty"`
}

// MessageError is the error body of a failed result
type MessageError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// AuthMessage represents authentication request
type AuthMessage struct {
	Type        string `json:"type"`
	AccessToken string `json:"access_token,omitempty"`
}

// CallServiceRequest represents a service call
type CallServiceRequest struct {
	ID          int                    `json:"id"`
	Type        string                 `json:"type"`
	Domain      string                 `json:"domain"`
	Service     string                 `json:"service"`
	ServiceData map[string]interface{} `json:"service_data,omitempty"`
}

// MockEditorServer simulates an editor bridge plugin. It applies
// set_color_scheme and set_window_theme calls to its own view of the
// editor settings.
type MockEditorServer struct {
	server   *http.Server
	listener net.Listener
	addr     string
	token    string

	connections []*connWrapper
	connsMu     sync.Mutex

	settings   map[string]string
	settingsMu sync.RWMutex

	failures   map[string]string
	failuresMu sync.Mutex

	serviceCalls []ServiceCall
	callsMu      sync.Mutex
}

// NewMockEditorServer creates a new mock bridge. addr may use port 0.
func NewMockEditorServer(addr, token string) *MockEditorServer {
	return &MockEditorServer{
		addr:         addr,
		token:        token,
		connections:  make([]*connWrapper, 0),
		settings:     make(map[string]string),
		failures:     make(map[string]string),
		serviceCalls: make([]ServiceCall, 0),
	}
}

// Start starts the mock server
func (s *MockEditorServer) Start() error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc("/bridge/websocket", s.handleWebSocket)
	s.server = &http.Server{Handler: mux}

	go func() {
		if err := s.server.Serve(listener); err != http.ErrServerClosed {
			log.Printf("Mock editor server error: %v", err)
		}
	}()
	return nil
}

// URL returns the WebSocket URL of the bridge endpoint
func (s *MockEditorServer) URL() string {
	return fmt.Sprintf("ws://%s/bridge/websocket", s.listener.Addr().String())
}

// Stop stops the mock server
func (s *MockEditorServer) Stop() error {
	s.DropConnections()
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}

// DropConnections closes every client connection, simulating an editor restart
func (s *MockEditorServer) DropConnections() {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()

	for _, wrapper := range s.connections {
		wrapper.conn.Close()
	}
	s.connections = nil
}

// ConnectionCount returns the number of open client connections
func (s *MockEditorServer) ConnectionCount() int {
	s.connsMu.Lock()
	defer s.connsMu.Unlock()
	return len(s.connections)
}

// Setting returns the editor's current value for key ("color_scheme" or "theme")
func (s *MockEditorServer) Setting(key string) string {
	s.settingsMu.RLock()
	defer s.settingsMu.RUnlock()
	return s.settings[key]
}

// FailService makes service calls fail with message until cleared with ""
func (s *MockEditorServer) FailService(service, message string) {
	s.failuresMu.Lock()
	defer s.failuresMu.Unlock()

	if message == "" {
		delete(s.failures, service)
		return
	}
	s.failures[service] = message
}

func (s *MockEditorServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	wrapper := &connWrapper{conn: conn}

	s.connsMu.Lock()
	s.connections = append(s.connections, wrapper)
	s.connsMu.Unlock()

	defer func() {
		s.connsMu.Lock()
		for i, w := range s.connections {
			if w.conn == conn {
				s.connections = append(s.connections[:i], s.connections[i+1:]...)
				break
			}
		}
		s.connsMu.Unlock()
		conn.Close()
	}()

	wrapper.writeJSON(Message{Type: "auth_required"})

	var authMsg AuthMessage
	if err := conn.ReadJSON(&authMsg); err != nil {
		return
	}
	if authMsg.AccessToken != s.token {
		wrapper.writeJSON(Message{Type: "auth_invalid"})
		return
	}
	wrapper.writeJSON(Message{Type: "auth_ok"})

	for {
		var msg json.RawMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return
		}

		var baseMsg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(msg, &baseMsg); err != nil {
			continue
		}

		if baseMsg.Type == "call_service" {
			s.handleCallService(wrapper, msg)
		}
	}
}

func (s *MockEditorServer) handleCallService(wrapper *connWrapper, msg json.RawMessage) {
	var req CallServiceRequest
	if err := json.Unmarshal(msg, &req); err != nil {
		return
	}

	s.callsMu.Lock()
	s.serviceCalls = append(s.serviceCalls, ServiceCall{
		Timestamp:   time.Now(),
		Domain:      req.Domain,
		Service:     req.Service,
		ServiceData: req.ServiceData,
	})
	s.callsMu.Unlock()

	s.failuresMu.Lock()
	failure, failing := s.failures[req.Service]
	s.failuresMu.Unlock()

	name, _ := req.ServiceData["name"].(string)

	var key string
	switch {
	case req.Domain != "editor":
		failing, failure = true, fmt.Sprintf("unknown domain %s", req.Domain)
	case req.Service == "set_color_scheme":
		key = "color_scheme"
	case req.Service == "set_window_theme":
		key = "theme"
	default:
		failing, failure = true, fmt.Sprintf("unknown service %s", req.Service)
	}

	if failing {
		success := false
		wrapper.writeJSON(Message{
			ID:      req.ID,
			Type:    "result",
			Success: &success,
			Error:   &MessageError{Code: "command_failed", Message: failure},
		})
		return
	}

	s.settingsMu.Lock()
	s.settings[key] = name
	s.settingsMu.Unlock()

	success := true
	wrapper.writeJSON(Message{ID: req.ID, Type: "result", Success: &success})
}

// GetServiceCalls returns a copy of all recorded service calls
func (s *MockEditorServer) GetServiceCalls() []ServiceCall {
	s.callsMu.Lock()
	defer s.callsMu.Unlock()

	calls := make([]ServiceCall, len(s.serviceCalls))
	copy(calls, s.serviceCalls)
	return calls
}

// ClearServiceCalls clears the recorded service calls
func (s *MockEditorServer) ClearServiceCalls() {
	s.callsMu.Lock()
	defer s.callsMu.Unlock()
	s.serviceCalls = make([]ServiceCall, 0)
}

// CountServiceCalls counts the calls to an editor service
func (s *MockEditorServer) CountServiceCalls(service string) int {
	return len(FilterServiceCalls(s.GetServiceCalls(), "editor", service))
}
