package heading

import (
	"math"
	"testing"

	"movement-server/internal/models"
)

const eps = 1e-9

// yawQuaternion unit quaternion for a pure rotation about z
func yawQuaternion(yaw float64) models.Quaternion {
	return models.Quaternion{
		Z: math.Sin(yaw / 2),
		W: math.Cos(yaw / 2),
	}
}

func TestFromQuaternion(t *testing.T) {
	t.Run("Identity", func(t *testing.T) {
		p := FromQuaternion(models.Quaternion{W: 1})
		if p.Yaw != 0 || p.Roll != 0 || p.Pitch != 0 {
			t.Errorf("Expected zero pose, got %+v", p)
		}
	})

	t.Run("Quarter Turn", func(t *testing.T) {
		p := FromQuaternion(yawQuaternion(math.Pi / 2))
		if math.Abs(p.Yaw-math.Pi/2) > eps {
			t.Errorf("Expected yaw %f, got %f", math.Pi/2, p.Yaw)
		}
	})

	t.Run("Negative Yaw Wraps Positive", func(t *testing.T) {
		p := FromQuaternion(yawQuaternion(-math.Pi / 2))
		want := 3 * math.Pi / 2
		if math.Abs(p.Yaw-want) > eps {
			t.Errorf("Expected yaw %f, got %f", want, p.Yaw)
		}
	})

	t.Run("Near Full Turn Clamps To Zero", func(t *testing.T) {
		p := FromQuaternion(yawQuaternion(-0.1)) // 2π-0.1 ≈ 6.18
		if p.Yaw != 0 {
			t.Errorf("Expected yaw clamped to 0, got %f", p.Yaw)
		}
	})

	t.Run("Roll And Pitch", func(t *testing.T) {
		// 0.3 rad about x
		q := models.Quaternion{X: math.Sin(0.15), W: math.Cos(0.15)}
		p := FromQuaternion(q)
		if math.Abs(p.Roll-0.3) > eps {
			t.Errorf("Expected roll 0.3, got %f", p.Roll)
		}
		// 0.2 rad about y
		q = models.Quaternion{Y: math.Sin(0.1), W: math.Cos(0.1)}
		p = FromQuaternion(q)
		if math.Abs(p.Pitch-0.2) > eps {
			t.Errorf("Expected pitch 0.2, got %f", p.Pitch)
		}
	})

	t.Run("Non Unit Quaternion Does Not Produce NaN", func(t *testing.T) {
		q := models.Quaternion{Y: 1, W: 1} // 2(wy-zx) = 2
		p := FromQuaternion(q)
		if math.IsNaN(p.Pitch) {
			t.Fatalf("Expected clamped pitch, got NaN")
		}
		if math.Abs(p.Pitch-math.Pi/2) > eps {
			t.Errorf("Expected pitch π/2, got %f", p.Pitch)
		}
	})
}

func TestYawRange(t *testing.T) {
	for i := -720; i <= 720; i++ {
		angle := float64(i) * math.Pi / 360
		yaw := FromQuaternion(yawQuaternion(angle)).Yaw
		if yaw < 0 || yaw >= 2*math.Pi {
			t.Fatalf("Yaw %f out of [0, 2π) for angle %f", yaw, angle)
		}
		if yaw > 6.10 {
			t.Fatalf("Yaw %f above clamp for angle %f", yaw, angle)
		}
	}
}

func TestNormalizeYaw(t *testing.T) {
	tests := []struct {
		name string
		in   float64
		want float64
	}{
		{"zero", 0, 0},
		{"positive", 1.5, 1.5},
		{"negative", -1, 2*math.Pi - 1},
		{"at clamp", 6.10, 6.10},
		{"above clamp", 6.11, 0},
		{"negative near zero", -0.05, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeYaw(tt.in)
			if math.Abs(got-tt.want) > eps {
				t.Errorf("NormalizeYaw(%f) = %f, want %f", tt.in, got, tt.want)
			}
		})
	}
}
