package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Options are the process-level settings taken from the environment. They
// describe where the settings file lives and how to reach the editor, and
// are read once at start-up.
type Options struct {
	ConfigPath      string
	Hosts           []string
	PreferencesPath string
	WebSocketURL    string
	WebSocketToken  string
	MQTTBroker      string
	MQTTTopic       string
	MQTTClientID    string
	APIPort         int
	ReadOnly        bool
}

// Host adapter names accepted in SUNTHEME_HOSTS.
const (
	HostPreferences = "preferences"
	HostWebSocket   = "websocket"
	HostMQTT        = "mqtt"
)

// DefaultMQTTTopic is the topic prefix the MQTT host publishes under.
const DefaultMQTTTopic = "suntheme"

// LoadOptions loads an optional .env file and reads the SUNTHEME_* variables.
func LoadOptions(logger *zap.Logger) Options {
	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file found, using environment variables")
	}

	opts := Options{
		ConfigPath:      getenv("SUNTHEME_CONFIG", DefaultConfigPath()),
		Hosts:           splitList(getenv("SUNTHEME_HOSTS", HostPreferences)),
		PreferencesPath: getenv("SUNTHEME_PREFERENCES", DefaultPreferencesPath()),
		WebSocketURL:    os.Getenv("SUNTHEME_WS_URL"),
		WebSocketToken:  os.Getenv("SUNTHEME_WS_TOKEN"),
		MQTTBroker:      os.Getenv("SUNTHEME_MQTT_BROKER"),
		MQTTTopic:       getenv("SUNTHEME_MQTT_TOPIC", DefaultMQTTTopic),
		MQTTClientID:    os.Getenv("SUNTHEME_MQTT_CLIENT_ID"),
		ReadOnly:        os.Getenv("READ_ONLY") == "true",
	}

	if port := os.Getenv("SUNTHEME_API_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			logger.Warn("Invalid SUNTHEME_API_PORT, API server disabled",
				zap.String("value", port), zap.Error(err))
		} else {
			opts.APIPort = p
		}
	}

	return opts
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/suntheme/settings.yaml,
// falling back to ~/.config.
func DefaultConfigPath() string {
	return filepath.Join(configHome(), "suntheme", "settings.yaml")
}

// DefaultPreferencesPath returns the Sublime Text user preferences file
// under the config home.
func DefaultPreferencesPath() string {
	return filepath.Join(configHome(), "sublime-text", "Packages", "User", "Preferences.sublime-settings")
}

func configHome() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
