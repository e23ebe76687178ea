// internal/models/message.go
package models

// Vector3 generic xyz triple
type Vector3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// OdometryMessage inbound pose feed payload. Only the orientation is consumed.
type OdometryMessage struct {
	Header struct {
		Stamp   float64 `json:"stamp"`
		FrameID string  `json:"frame_id"`
	} `json:"header"`
	Pose struct {
		Pose struct {
			Position    Vector3    `json:"position"`
			Orientation Quaternion `json:"orientation"`
		} `json:"pose"`
	} `json:"pose"`
}

// ScanMessage inbound range sensor payload
type ScanMessage struct {
	AngleMin       float64   `json:"angle_min"`
	AngleMax       float64   `json:"angle_max"`
	AngleIncrement float64   `json:"angle_increment"`
	RangeMin       float64   `json:"range_min"`
	RangeMax       float64   `json:"range_max"`
	Ranges         []float64 `json:"ranges"`
}

// TwistMessage outbound velocity payload on cmd_vel
type TwistMessage struct {
	Linear  Vector3 `json:"linear"`
	Angular Vector3 `json:"angular"`
}

// NewTwistMessage converts a VelocityCommand to its wire form
func NewTwistMessage(cmd VelocityCommand) TwistMessage {
	return TwistMessage{
		Linear:  Vector3{X: cmd.LinearX},
		Angular: Vector3{Z: cmd.AngularZ},
	}
}

// MovementRequest command request
type MovementRequest struct {
	ID   string `json:"id,omitempty"`
	Move string `json:"move"`
}

// MovementResponse exactly one per request
type MovementResponse struct {
	ID      string `json:"id,omitempty"`
	Move    string `json:"move"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
