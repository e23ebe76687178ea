// internal/messaging/subscriber.go
package messaging

import (
	"fmt"

	"movement-server/internal/common/constants"
	"movement-server/internal/utils"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Subscriber registers the robot's inbound topics and hands messages to the router
type Subscriber struct {
	client  Client
	router  *Router
	robotID string
}

// NewSubscriber creates a subscriber for one robot
func NewSubscriber(client Client, router *Router, robotID string) *Subscriber {
	utils.Logger.Infof("🏗️ CREATING MQTT Subscriber")

	subscriber := &Subscriber{
		client:  client,
		router:  router,
		robotID: robotID,
	}

	utils.Logger.Infof("✅ MQTT Subscriber CREATED")
	return subscriber
}

// SubscribeAll subscribes to every inbound topic
func (s *Subscriber) SubscribeAll() error {
	utils.Logger.Infof("🔔 STARTING All Subscriptions")

	subscriptions := []struct {
		suffix      string
		description string
	}{
		{suffix: constants.TopicOdom, description: "Pose feed"},
		{suffix: constants.TopicScan, description: "Range scans"},
		{suffix: constants.TopicMovementRequest, description: "Movement commands"},
		{suffix: constants.TopicMovementAbort, description: "Movement abort"},
	}

	for _, sub := range subscriptions {
		topic := constants.RobotTopic(s.robotID, sub.suffix)
		utils.Logger.Infof("🔔 SUBSCRIBING TO: %s (%s)", topic, sub.description)

		if err := s.client.Subscribe(topic, 0, s.handleMessage); err != nil {
			utils.Logger.Errorf("❌ SUBSCRIPTION FAILED: %s - %v", topic, err)
			return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
		}
	}

	utils.Logger.Infof("🎉 ALL SUBSCRIPTIONS COMPLETED")
	return nil
}

func (s *Subscriber) handleMessage(client mqtt.Client, msg mqtt.Message) {
	utils.Logger.Debugf("📨 MESSAGE RECEIVED Topic: %s (%d bytes)", msg.Topic(), len(msg.Payload()))
	s.router.RouteMessage(client, msg)
}
