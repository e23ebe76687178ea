// internal/controller/handlers.go
package controller

import (
	"context"
	"encoding/json"
	"time"

	"movement-server/internal/heading"
	"movement-server/internal/models"
	"movement-server/internal/utils"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// HandleOdometry decodes an odometry sample and schedules the pose update
func (c *Controller) HandleOdometry(client mqtt.Client, msg mqtt.Message) {
	var odom models.OdometryMessage
	if err := json.Unmarshal(msg.Payload(), &odom); err != nil {
		utils.Logger.Warnf("Dropping malformed odometry on %s: %v", msg.Topic(), err)
		return
	}

	q := odom.Pose.Pose.Orientation
	c.host.SubmitPose(func(context.Context) {
		c.pose.Update(heading.FromQuaternion(q))
	})
}

// HandleScan decodes a range scan and schedules the buffer update
func (c *Controller) HandleScan(client mqtt.Client, msg mqtt.Message) {
	var scanMsg models.ScanMessage
	if err := json.Unmarshal(msg.Payload(), &scanMsg); err != nil {
		utils.Logger.Warnf("Dropping malformed scan on %s: %v", msg.Topic(), err)
		return
	}

	scan := models.RangeScan{
		AngleMin:       scanMsg.AngleMin,
		AngleMax:       scanMsg.AngleMax,
		AngleIncrement: scanMsg.AngleIncrement,
		RangeMin:       scanMsg.RangeMin,
		RangeMax:       scanMsg.RangeMax,
		Ranges:         scanMsg.Ranges,
		ReceivedAt:     time.Now(),
	}
	c.host.SubmitScan(func(context.Context) {
		c.scans.Update(scan)
	})
}

// HandleMovementRequest queues a movement command and publishes its response when done.
// Malformed requests are answered immediately with success=false.
func (c *Controller) HandleMovementRequest(client mqtt.Client, msg mqtt.Message) {
	var req models.MovementRequest
	if err := json.Unmarshal(msg.Payload(), &req); err != nil {
		utils.Logger.Warnf("Malformed movement request: %v", err)
		c.respond(models.MovementResponse{Success: false, Message: "malformed request: " + err.Error()})
		return
	}

	req = c.withID(req)
	err := c.Submit(context.Background(), req, SourceMQTT, c.respond)
	if err != nil {
		utils.Logger.Errorf("Failed to queue movement request %s: %v", req.ID, err)
		c.respond(models.MovementResponse{ID: req.ID, Move: req.Move, Success: false, Message: err.Error()})
	}
}

// HandleAbort cancels the command in flight. A payload {"id": "..."} restricts the abort
// to that request.
func (c *Controller) HandleAbort(client mqtt.Client, msg mqtt.Message) {
	var target struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(msg.Payload(), &target)

	id, err := c.AbortRequest(target.ID)
	if err != nil {
		utils.Logger.Infof("Abort requested (id=%q): %v", target.ID, err)
		return
	}
	utils.Logger.Infof("Abort delivered to %s", id)
}

func (c *Controller) respond(resp models.MovementResponse) {
	if c.responder == nil {
		return
	}
	if err := c.responder.SendResponse(resp); err != nil {
		utils.Logger.Errorf("Failed to publish response for %s: %v", resp.ID, err)
	}
}
