package host

import (
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const mqttTimeout = 10 * time.Second

// mqttClient is the subset of pahomqtt.Client the publisher uses.
type mqttClient interface {
	Connect() pahomqtt.Token
	Disconnect(quiesce uint)
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token
}

// MQTTPublisher announces theme changes as retained messages under
// <topic>/color_scheme and <topic>/window_theme, for editor plugins or
// other tooling that subscribes to the broker.
type MQTTPublisher struct {
	client mqttClient
	topic  string
	logger *zap.Logger
}

// NewMQTTPublisher creates a publisher for broker (e.g. tcp://localhost:1883).
// An empty clientID gets a generated one.
func NewMQTTPublisher(broker, topic, clientID string, logger *zap.Logger) *MQTTPublisher {
	if clientID == "" {
		clientID = "suntheme-" + uuid.NewString()
	}
	logger = logger.Named("mqtt")

	opts := pahomqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
			logger.Warn("MQTT connection lost", zap.Error(err))
		}).
		SetOnConnectHandler(func(_ pahomqtt.Client) {
			logger.Info("Connected to MQTT broker", zap.String("broker", broker))
		})

	return newMQTTPublisher(pahomqtt.NewClient(opts), topic, logger)
}

func newMQTTPublisher(client mqttClient, topic string, logger *zap.Logger) *MQTTPublisher {
	return &MQTTPublisher{client: client, topic: topic, logger: logger}
}

// Connect connects to the broker.
func (p *MQTTPublisher) Connect() error {
	return p.wait(p.client.Connect(), "connect to MQTT broker")
}

// Disconnect closes the broker connection.
func (p *MQTTPublisher) Disconnect() error {
	if p.client.IsConnected() {
		p.client.Disconnect(250)
	}
	return nil
}

// SetColorScheme implements host.Host.
func (p *MQTTPublisher) SetColorScheme(name string) error {
	return p.publish(SetterColorScheme, name)
}

// SetWindowTheme implements host.Host.
func (p *MQTTPublisher) SetWindowTheme(name string) error {
	return p.publish(SetterWindowTheme, name)
}

func (p *MQTTPublisher) publish(suffix, name string) error {
	topic := p.topic + "/" + suffix
	if err := p.wait(p.client.Publish(topic, 1, true, name), "publish "+topic); err != nil {
		return err
	}
	p.logger.Debug("Published theme", zap.String("topic", topic), zap.String("name", name))
	return nil
}

func (p *MQTTPublisher) wait(token pahomqtt.Token, action string) error {
	if !token.WaitTimeout(mqttTimeout) {
		return fmt.Errorf("failed to %s: timed out after %v", action, mqttTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to %s: %w", action, err)
	}
	return nil
}
