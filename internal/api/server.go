package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"suntheme/internal/clock"
	"suntheme/internal/controller"
	"suntheme/internal/shadowstate"
	"suntheme/internal/solar"

	"go.uber.org/zap"
)

// Controller is the part of the day/night controller the API exposes.
type Controller interface {
	GetShadowState() *shadowstate.ControllerShadowState
	Schedule() controller.ScheduleState
	SunTimesFor(t time.Time) (solar.SunTimes, error)
	Reevaluate() (controller.Decision, error)
	Zone() solar.TimeZone
	Location() solar.Location
}

// Server provides HTTP API endpoints for the theme switcher
type Server struct {
	controller Controller
	clock      clock.Clock
	logger     *zap.Logger
	shadow     *shadowstate.Tracker
	server     *http.Server
	listener   net.Listener
}

// NewServer creates a new API server
func NewServer(ctrl Controller, clk clock.Clock, logger *zap.Logger, port int) *Server {
	s := &Server{
		controller: ctrl,
		clock:      clk,
		logger:     logger.Named("api"),
		shadow:     shadowstate.NewTracker(),
	}
	s.shadow.RegisterProvider("controller", func() shadowstate.ComponentShadowState {
		return ctrl.GetShadowState()
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleSitemap)
	mux.HandleFunc("/api/state", s.handleGetState)
	mux.HandleFunc("/api/shadow", s.handleGetShadow)
	mux.HandleFunc("/api/suntimes", s.handleSunTimes)
	mux.HandleFunc("/api/reevaluate", s.handleReevaluate)
	mux.HandleFunc("/health", s.handleHealth)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Handler returns the server's request router.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// StateResponse represents the JSON response for the state endpoint
type StateResponse struct {
	State      string                             `json:"state"`
	CheckCycle string                             `json:"checkCycle"`
	Applied    controller.ThemePair               `json:"applied"`
	Timezone   string                             `json:"timezone"`
	Location   solar.Location                     `json:"location"`
	Shadow     *shadowstate.ControllerShadowState `json:"shadow"`
}

// SunTimesResponse represents the JSON response for the suntimes endpoint
type SunTimesResponse struct {
	Date      string         `json:"date"`
	Timezone  string         `json:"timezone"`
	Location  solar.Location `json:"location"`
	Sunrise   string         `json:"sunrise,omitempty"`
	Sunset    string         `json:"sunset,omitempty"`
	DayLength string         `json:"dayLength,omitempty"`
	Polar     string         `json:"polar"`
}

// ReevaluateResponse represents the JSON response for the reevaluate endpoint
type ReevaluateResponse struct {
	State  string `json:"state"`
	Source string `json:"source"`
	Reason string `json:"reason"`
	Error  string `json:"error,omitempty"`
}

// handleGetState returns the controller's schedule and shadow state
func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	schedule := s.controller.Schedule()
	s.writeJSON(w, http.StatusOK, StateResponse{
		State:      schedule.LastKnownState.String(),
		CheckCycle: schedule.CheckCycle.String(),
		Applied:    schedule.Applied,
		Timezone:   s.controller.Zone().String(),
		Location:   s.controller.Location(),
		Shadow:     s.controller.GetShadowState(),
	})

	s.logger.Debug("State request served",
		zap.String("remote_addr", r.RemoteAddr))
}

// handleGetShadow returns the shadow state of every component, or of the one
// named by ?component=
func (s *Server) handleGetShadow(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := r.URL.Query().Get("component")
	if name == "" {
		s.writeJSON(w, http.StatusOK, s.shadow.GetAll())
		return
	}

	state, ok := s.shadow.Get(name)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown component %q", name), http.StatusNotFound)
		return
	}
	s.writeJSON(w, http.StatusOK, state)
}

// handleSunTimes returns sunrise and sunset for ?date=YYYY-MM-DD (default today)
func (s *Server) handleSunTimes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	zone := s.controller.Zone()
	date := s.clock.Now().In(zone.Location())
	if q := r.URL.Query().Get("date"); q != "" {
		parsed, err := time.ParseInLocation(time.DateOnly, q, zone.Location())
		if err != nil {
			http.Error(w, fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", q), http.StatusBadRequest)
			return
		}
		date = parsed.Add(12 * time.Hour)
	}

	times, err := s.controller.SunTimesFor(date)
	if err != nil {
		s.logger.Error("Failed to compute sun times", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	response := SunTimesResponse{
		Date:     date.Format(time.DateOnly),
		Timezone: zone.String(),
		Location: s.controller.Location(),
		Polar:    times.Polar.String(),
	}
	if times.HasEvents() {
		response.Sunrise = times.Sunrise.String()
		response.Sunset = times.Sunset.String()
		length := time.Duration(int(times.Sunset)-int(times.Sunrise)) * time.Second
		if length < 0 {
			length += 24 * time.Hour
		}
		response.DayLength = length.String()
	}
	s.writeJSON(w, http.StatusOK, response)
}

// handleReevaluate runs an immediate day/night check
func (s *Server) handleReevaluate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.logger.Info("Re-evaluation requested", zap.String("remote_addr", r.RemoteAddr))

	decision, err := s.controller.Reevaluate()
	response := ReevaluateResponse{
		State:  decision.State.String(),
		Source: string(decision.Source),
		Reason: decision.Reason(),
	}
	status := http.StatusOK
	if err != nil {
		response.Error = err.Error()
		status = http.StatusBadGateway
	}
	s.writeJSON(w, status, response)
}

// handleHealth returns a simple health check response
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

// Endpoint represents an API endpoint with its documentation
type Endpoint struct {
	Path        string `json:"path"`
	Method      string `json:"method"`
	Description string `json:"description"`
}

var endpoints = []Endpoint{
	{Path: "/", Method: "GET", Description: "This sitemap - lists all available API endpoints"},
	{Path: "/api/state", Method: "GET", Description: "Current day/night state, applied themes and shadow state"},
	{Path: "/api/shadow", Method: "GET", Description: "Shadow state of all components, or ?component=<name>"},
	{Path: "/api/suntimes", Method: "GET", Description: "Sunrise and sunset for ?date=YYYY-MM-DD (default today)"},
	{Path: "/api/reevaluate", Method: "POST", Description: "Run a day/night check now"},
	{Path: "/health", Method: "GET", Description: "Health check endpoint - returns {\"status\": \"ok\"}"},
}

// handleSitemap returns a list of all available API endpoints
func (s *Server) handleSitemap(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	accept := r.Header.Get("Accept")
	preferHTML := strings.Contains(accept, "text/html")

	// 404 for automation compatibility, with a helpful body
	if preferHTML {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, `<!DOCTYPE html>
<html>
<head>
    <title>Sun Theme API</title>
    <style>
        body { font-family: monospace; margin: 40px; background: #1e1e1e; color: #d4d4d4; }
        h1 { color: #4ec9b0; }
        .endpoint { background: #2d2d2d; padding: 15px; margin: 10px 0; border-left: 3px solid #007acc; }
        .method { color: #4ec9b0; font-weight: bold; }
        .path { color: #ce9178; }
        .description { color: #9cdcfe; margin-top: 5px; }
    </style>
</head>
<body>
    <h1>Sun Theme API</h1>
`)
		for _, ep := range endpoints {
			fmt.Fprintf(w, `    <div class="endpoint">
        <div><span class="method">%s</span> <span class="path">%s</span></div>
        <div class="description">%s</div>
    </div>
`, ep.Method, ep.Path, ep.Description)
		}
		fmt.Fprintf(w, "</body>\n</html>\n")
	} else {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprintf(w, "Sun Theme API\n")
		fmt.Fprintf(w, "=============\n\n")
		fmt.Fprintf(w, "Available endpoints:\n\n")
		for _, ep := range endpoints {
			fmt.Fprintf(w, "  %-6s %-18s %s\n", ep.Method, ep.Path, ep.Description)
		}
		fmt.Fprintf(w, "\nExample:\n\n")
		fmt.Fprintf(w, "  curl -X POST http://localhost:8081/api/reevaluate | jq\n")
	}

	s.logger.Debug("Sitemap request served",
		zap.String("remote_addr", r.RemoteAddr),
		zap.Bool("html_format", preferHTML))
}

// Start begins serving HTTP requests
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.server.Addr, err)
	}
	s.listener = listener
	s.logger.Info("Starting HTTP API server", zap.String("addr", listener.Addr().String()))

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Addr returns the address the server is listening on, once started.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.server.Addr
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop() error {
	s.logger.Info("Stopping HTTP API server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	return nil
}
