package models

import "time"

// Quaternion unit orientation (x, y, z, w)
type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// Pose latest orientation of the robot in radians.
// Yaw is normalized to [0, 2π) with the near-2π clamp applied.
type Pose struct {
	Yaw   float64 `json:"yaw"`
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
}

// RangeScan ordered range readings from the laser
type RangeScan struct {
	AngleMin       float64   `json:"angle_min"`
	AngleMax       float64   `json:"angle_max"`
	AngleIncrement float64   `json:"angle_increment"`
	RangeMin       float64   `json:"range_min"`
	RangeMax       float64   `json:"range_max"`
	Ranges         []float64 `json:"ranges"`
	ReceivedAt     time.Time `json:"received_at"`
}

// VelocityCommand the only output artifact sent to the actuation channel
type VelocityCommand struct {
	LinearX  float64 `json:"linear_x"`
	AngularZ float64 `json:"angular_z"`
}

// IsStop reports whether the command brings the robot to rest
func (v VelocityCommand) IsStop() bool {
	return v.LinearX == 0 && v.AngularZ == 0
}
