// internal/messaging/router.go
package messaging

import (
	"movement-server/internal/common/constants"
	"movement-server/internal/utils"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// PoseHandler consumes the pose and range feeds
type PoseHandler interface {
	HandleOdometry(client mqtt.Client, msg mqtt.Message)
	HandleScan(client mqtt.Client, msg mqtt.Message)
}

// MovementHandler consumes movement commands
type MovementHandler interface {
	HandleMovementRequest(client mqtt.Client, msg mqtt.Message)
	HandleAbort(client mqtt.Client, msg mqtt.Message)
}

// Router dispatches messages by exact topic
type Router struct {
	poseHandler     PoseHandler
	movementHandler MovementHandler

	odomTopic    string
	scanTopic    string
	requestTopic string
	abortTopic   string
}

// NewRouter creates a router for robotID's topics
func NewRouter(robotID string, poseHandler PoseHandler, movementHandler MovementHandler) *Router {
	utils.Logger.Infof("🏗️ CREATING Message Router")

	router := &Router{
		poseHandler:     poseHandler,
		movementHandler: movementHandler,
		odomTopic:       constants.RobotTopic(robotID, constants.TopicOdom),
		scanTopic:       constants.RobotTopic(robotID, constants.TopicScan),
		requestTopic:    constants.RobotTopic(robotID, constants.TopicMovementRequest),
		abortTopic:      constants.RobotTopic(robotID, constants.TopicMovementAbort),
	}

	utils.Logger.Infof("✅ Message Router CREATED")
	return router
}

// RouteMessage routes msg to its handler
func (r *Router) RouteMessage(client mqtt.Client, msg mqtt.Message) {
	topic := msg.Topic()

	switch topic {
	case r.odomTopic:
		r.poseHandler.HandleOdometry(client, msg)
	case r.scanTopic:
		r.poseHandler.HandleScan(client, msg)
	case r.requestTopic:
		r.movementHandler.HandleMovementRequest(client, msg)
	case r.abortTopic:
		r.movementHandler.HandleAbort(client, msg)
	default:
		utils.Logger.Warnf("Unhandled topic: %s", topic)
	}
}
