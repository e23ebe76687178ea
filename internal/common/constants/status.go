// internal/common/constants/status.go
package constants

import "time"

// Movement commands accepted on the request topic
const (
	MoveSquare   = "Square"
	MoveTriangle = "Triangle"
	MoveStop     = "Stop"
	MoveReset    = "Reiniciar"
)

// Fixed velocities
const (
	ForwardSpeed   = 0.5 // m/s
	RotateSpeed    = 0.3 // rad/s
	ResetTurnSpeed = 0.1 // rad/s
)

// Figure geometry: segments per figure and rotation per segment (radians)
const (
	SquareSegments   = 4
	SquareTurn       = 1.50
	TriangleSegments = 3
	TriangleTurn     = 2.0
)

// Heading thresholds
const (
	YawWrapClamp   = 6.10 // yaw above this is forced to 0
	ResetUpperYaw  = 6.2
	ResetOriginYaw = 0.1
)

// FrontLaserIndex is the range reading facing straight ahead
const FrontLaserIndex = 360

// Default timing
const (
	DefaultDriveDuration = 4 * time.Second
	DefaultDriveTick     = 100 * time.Millisecond
	DefaultSettleTick    = 500 * time.Millisecond
	DefaultRotateTick    = time.Second
)

// Command Status values stored in the command history
const (
	CommandStatusPending  = "PENDING"
	CommandStatusRunning  = "RUNNING"
	CommandStatusSuccess  = "SUCCESS"
	CommandStatusFailure  = "FAILURE"
	CommandStatusRejected = "REJECTED"
	CommandStatusAborted  = "ABORTED"
)

// Sequencer activities reported in status snapshots
const (
	ActivityIdle      = "IDLE"
	ActivityTracing   = "TRACING_FIGURE"
	ActivityResetting = "RESETTING"
	ActivityStopping  = "STOPPING"
)

// MQTT topic suffixes under robots/<id>/
const (
	TopicOdom             = "odom"
	TopicScan             = "scan"
	TopicCmdVel           = "cmd_vel"
	TopicMovementRequest  = "movement/request"
	TopicMovementResponse = "movement/response"
	TopicMovementAbort    = "movement/abort"
)

// RobotTopic builds a fully-qualified topic for a robot
func RobotTopic(robotID, suffix string) string {
	return "robots/" + robotID + "/" + suffix
}

// IsFigure reports whether move names a figure-tracing command
func IsFigure(move string) bool {
	return move == MoveSquare || move == MoveTriangle
}

// IsKnownMove reports whether move is one of the four supported commands
func IsKnownMove(move string) bool {
	switch move {
	case MoveSquare, MoveTriangle, MoveStop, MoveReset:
		return true
	default:
		return false
	}
}
