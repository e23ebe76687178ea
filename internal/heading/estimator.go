// Package heading converts orientation samples into normalized Euler angles.
package heading

import (
	"math"

	"movement-server/internal/common/constants"
	"movement-server/internal/models"
)

// FromQuaternion converts a quaternion (w last) to roll, pitch and yaw using the ZYX convention.
// Yaw is normalized with NormalizeYaw. The input is not required to be unit length.
func FromQuaternion(q models.Quaternion) models.Pose {
	x, y, z, w := q.X, q.Y, q.Z, q.W

	sinrCosp := 2 * (w*x + y*z)
	cosrCosp := 1 - 2*(x*x+y*y)
	roll := math.Atan2(sinrCosp, cosrCosp)

	sinp := clamp(2*(w*y-z*x), -1, 1)
	pitch := math.Asin(sinp)

	sinyCosp := 2 * (w*z + x*y)
	cosyCosp := 1 - 2*(y*y+z*z)
	yaw := math.Atan2(sinyCosp, cosyCosp)

	return models.Pose{
		Roll:  roll,
		Pitch: pitch,
		Yaw:   NormalizeYaw(yaw),
	}
}

// NormalizeYaw maps an atan2 result into [0, 2π). Anything above 6.10 rad collapses to 0 so
// jitter around the wrap boundary reads as the origin.
func NormalizeYaw(yaw float64) float64 {
	if yaw < 0 {
		yaw += 2 * math.Pi
	}
	if yaw > constants.YawWrapClamp {
		yaw = 0
	}
	return yaw
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
