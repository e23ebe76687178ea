// internal/messaging/publisher.go
package messaging

import (
	"encoding/json"
	"fmt"

	"movement-server/internal/common/constants"
	"movement-server/internal/models"
	"movement-server/internal/utils"
)

// VelocityPublisher sends velocity commands on the robot's cmd_vel topic
type VelocityPublisher struct {
	client Client
	topic  string
}

// NewVelocityPublisher creates a cmd_vel publisher for robotID
func NewVelocityPublisher(client Client, robotID string) *VelocityPublisher {
	return &VelocityPublisher{
		client: client,
		topic:  constants.RobotTopic(robotID, constants.TopicCmdVel),
	}
}

// PublishVelocity encodes cmd as a twist and publishes it
func (p *VelocityPublisher) PublishVelocity(cmd models.VelocityCommand) error {
	payload, err := json.Marshal(models.NewTwistMessage(cmd))
	if err != nil {
		return fmt.Errorf("failed to marshal twist: %w", err)
	}
	return p.client.Publish(p.topic, 0, false, payload)
}

// ResponseSender publishes movement responses
type ResponseSender struct {
	client Client
	topic  string
}

// NewResponseSender creates a response sender for robotID
func NewResponseSender(client Client, robotID string) *ResponseSender {
	return &ResponseSender{
		client: client,
		topic:  constants.RobotTopic(robotID, constants.TopicMovementResponse),
	}
}

// SendResponse publishes resp on the response topic
func (s *ResponseSender) SendResponse(resp models.MovementResponse) error {
	if !resp.Success {
		utils.Logger.Warnf("Command %s (%s) failed: %s", resp.ID, resp.Move, resp.Message)
	}

	payload, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal movement response: %w", err)
	}

	if err := s.client.Publish(s.topic, 1, false, payload); err != nil {
		utils.Logger.Errorf("Failed to send movement response %s: %v", resp.ID, err)
		return err
	}

	utils.Logger.Infof("Movement response sent: id=%s move=%s success=%v", resp.ID, resp.Move, resp.Success)
	return nil
}
