package main

import (
	"fmt"
	"strings"

	"suntheme/internal/config"
	"suntheme/internal/host"

	"go.uber.org/zap"
)

// buildHosts creates the host adapters named in opts.Hosts.
func buildHosts(opts config.Options, logger *zap.Logger) (host.Multi, error) {
	var hosts host.Multi

	for _, name := range opts.Hosts {
		switch strings.ToLower(name) {
		case config.HostPreferences:
			hosts = append(hosts, host.NewPreferencesFile(opts.PreferencesPath, logger))

		case config.HostWebSocket:
			if opts.WebSocketURL == "" {
				return nil, fmt.Errorf("SUNTHEME_WS_URL must be set for the %s host", config.HostWebSocket)
			}
			hosts = append(hosts, host.NewWebSocketClient(opts.WebSocketURL, opts.WebSocketToken, logger))

		case config.HostMQTT:
			if opts.MQTTBroker == "" {
				return nil, fmt.Errorf("SUNTHEME_MQTT_BROKER must be set for the %s host", config.HostMQTT)
			}
			hosts = append(hosts, host.NewMQTTPublisher(opts.MQTTBroker, opts.MQTTTopic, opts.MQTTClientID, logger))

		default:
			return nil, fmt.Errorf("unknown host %q, expected %s, %s or %s",
				name, config.HostPreferences, config.HostWebSocket, config.HostMQTT)
		}
	}

	if len(hosts) == 0 {
		return nil, fmt.Errorf("no hosts configured")
	}
	return hosts, nil
}
