// internal/messaging/client.go
package messaging

import (
	"fmt"
	"time"

	"movement-server/internal/config"
	"movement-server/internal/utils"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Client MQTT client interface
type Client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) error
	Subscribe(topic string, qos byte, callback MessageHandler) error
	Disconnect(quiesce uint)
	IsConnected() bool
}

// MessageHandler message callback type
type MessageHandler func(client mqtt.Client, msg mqtt.Message)

// MQTTClient paho-backed Client
type MQTTClient struct {
	client mqtt.Client
	config *config.Config
}

// NewMQTTClient connects to the broker
func NewMQTTClient(cfg *config.Config) (*MQTTClient, error) {
	utils.Logger.Infof("🏗️ CREATING MQTT Client")

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.MQTTBroker)
	opts.SetClientID(cfg.MQTTClientID)
	opts.SetUsername(cfg.MQTTUsername)
	opts.SetPassword(cfg.MQTTPassword)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(10 * time.Second)
	// callbacks only enqueue work on the host; ordering per group is kept there
	opts.SetOrderMatters(false)

	opts.SetOnConnectHandler(func(c mqtt.Client) {
		utils.Logger.Info("MQTT client connected")
	})

	opts.SetConnectionLostHandler(func(c mqtt.Client, err error) {
		utils.Logger.Errorf("MQTT connection lost: %v", err)
	})

	client := mqtt.NewClient(opts)

	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	mqttClient := &MQTTClient{
		client: client,
		config: cfg,
	}

	utils.Logger.Infof("✅ MQTT Client CREATED")
	return mqttClient, nil
}

// Publish sends a message and waits for the broker to accept it
func (c *MQTTClient) Publish(topic string, qos byte, retained bool, payload interface{}) error {
	if !c.client.IsConnected() {
		return fmt.Errorf("MQTT client is not connected")
	}

	utils.Logger.Debugf("📤 MQTT SENDING Topic: %s, QoS: %d, Retained: %v", topic, qos, retained)

	token := c.client.Publish(topic, qos, retained, payload)
	if token.Wait() && token.Error() != nil {
		utils.Logger.Errorf("❌ MQTT SEND FAILED: %s - %v", topic, token.Error())
		return fmt.Errorf("failed to publish message: %w", token.Error())
	}
	return nil
}

// Subscribe registers callback for topic
func (c *MQTTClient) Subscribe(topic string, qos byte, callback MessageHandler) error {
	if !c.client.IsConnected() {
		return fmt.Errorf("MQTT client is not connected")
	}

	token := c.client.Subscribe(topic, qos, mqtt.MessageHandler(callback))
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", topic, token.Error())
	}

	utils.Logger.Infof("✅ Subscribed to topic: %s", topic)
	return nil
}

// Disconnect closes the broker connection
func (c *MQTTClient) Disconnect(quiesce uint) {
	if c.client.IsConnected() {
		c.client.Disconnect(quiesce)
		utils.Logger.Info("MQTT client disconnected")
	}
}

func (c *MQTTClient) IsConnected() bool {
	return c.client.IsConnected()
}
