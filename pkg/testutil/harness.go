package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"suntheme/internal/clock"
	"suntheme/internal/config"
	"suntheme/internal/controller"
	"suntheme/internal/host"

	"go.uber.org/zap"
)

const testToken = "test_token"

// TestEnv wires a controller to a mock editor bridge through the real
// WebSocket host, a real settings file and a MockClock.
type TestEnv struct {
	Server     *MockEditorServer
	Client     *host.WebSocketClient
	Clock      *clock.MockClock
	Loader     *config.Loader
	Controller *controller.Controller
	Logger     *zap.Logger

	dir string
}

// NewTestEnv creates a test environment whose clock starts at start and whose
// settings file holds settingsYAML. The controller is created but not started.
//
// Example usage:
//
//	env, err := testutil.NewTestEnv(start, "latitude: 51.5\n")
//	if err != nil {
//	    t.Fatal(err)
//	}
//	defer env.Cleanup()
//
//	env.Controller.Start()
//	env.Clock.Advance(time.Hour)
func NewTestEnv(start time.Time, settingsYAML string) (*TestEnv, error) {
	logger, _ := zap.NewDevelopment()

	dir, err := os.MkdirTemp("", "suntheme-test-")
	if err != nil {
		return nil, fmt.Errorf("failed to create settings dir: %w", err)
	}

	env := &TestEnv{
		Clock:  clock.NewMockClock(start),
		Logger: logger,
		dir:    dir,
	}

	if err := env.WriteSettings(settingsYAML); err != nil {
		env.Cleanup()
		return nil, err
	}
	env.Loader = config.NewLoader(filepath.Join(dir, "settings.yaml"), logger)

	env.Server = NewMockEditorServer("127.0.0.1:0", testToken)
	if err := env.Server.Start(); err != nil {
		env.Cleanup()
		return nil, fmt.Errorf("failed to start mock server: %w", err)
	}

	env.Client = host.NewWebSocketClient(env.Server.URL(), testToken, logger)
	if err := env.Client.Connect(); err != nil {
		env.Cleanup()
		return nil, fmt.Errorf("failed to connect client: %w", err)
	}

	env.Controller, err = controller.NewController(env.Loader, env.Client, env.Clock, logger, false)
	if err != nil {
		env.Cleanup()
		return nil, fmt.Errorf("failed to create controller: %w", err)
	}

	return env, nil
}

// WriteSettings replaces the settings file contents
func (e *TestEnv) WriteSettings(settingsYAML string) error {
	path := filepath.Join(e.dir, "settings.yaml")
	if err := os.WriteFile(path, []byte(settingsYAML), 0644); err != nil {
		return fmt.Errorf("failed to write settings: %w", err)
	}
	return nil
}

// SettingsPath returns the path of the settings file
func (e *TestEnv) SettingsPath() string {
	return filepath.Join(e.dir, "settings.yaml")
}

// Cleanup stops everything and removes the settings file
func (e *TestEnv) Cleanup() {
	if e.Controller != nil {
		e.Controller.Stop()
	}
	if e.Client != nil {
		e.Client.Disconnect()
	}
	if e.Server != nil {
		e.Server.Stop()
	}
	os.RemoveAll(e.dir)
}
