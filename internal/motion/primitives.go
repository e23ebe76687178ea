// internal/motion/primitives.go
package motion

import (
	"movement-server/internal/common/constants"
	"movement-server/internal/models"
	"movement-server/internal/utils"
)

// Publisher actuation channel
type Publisher interface {
	PublishVelocity(cmd models.VelocityCommand) error
}

// Primitives emits fixed velocity commands. Each call publishes exactly one command;
// publication is fire-and-forget so failures are only logged.
type Primitives struct {
	out Publisher
}

// NewPrimitives creates motion primitives on top of an actuation channel
func NewPrimitives(out Publisher) *Primitives {
	return &Primitives{out: out}
}

// Stop brings the robot to rest
func (p *Primitives) Stop() {
	p.send(models.VelocityCommand{})
}

// DriveForward drives straight at the fixed forward speed
func (p *Primitives) DriveForward() {
	p.send(models.VelocityCommand{LinearX: constants.ForwardSpeed})
}

// Rotate spins in place at the fixed rotation speed
func (p *Primitives) Rotate() {
	p.send(models.VelocityCommand{AngularZ: constants.RotateSpeed})
}

// RotateSlow spins in place at the slow speed used by the reset walk
func (p *Primitives) RotateSlow() {
	p.send(models.VelocityCommand{AngularZ: constants.ResetTurnSpeed})
}

func (p *Primitives) send(cmd models.VelocityCommand) {
	if err := p.out.PublishVelocity(cmd); err != nil {
		utils.Logger.Errorf("Failed to publish velocity (linear.x=%.2f angular.z=%.2f): %v",
			cmd.LinearX, cmd.AngularZ, err)
	}
}
