package sequencer

import (
	"context"
	"time"

	"movement-server/internal/common/constants"
	"movement-server/internal/utils"
)

// reset walks yaw back to the 0/2π boundary with a slow rotation and re-arms figure tracing.
//
// Phase A (toggle=true) waits while yaw < 6.2; once yaw reads below 0.1 the toggle flips.
// Phase B (toggle=false) waits while yaw < 0.1; once yaw rises above 0.1 it flips back.
// Whatever the exit path, the robot is stopped, the target cleared, the toggle re-armed
// and the figure state returned to Idle.
func (s *Sequencer) reset(ctx context.Context) (bool, string) {
	s.setActivity(constants.ActivityResetting)

	s.act.Stop()
	s.fire(eventReset)
	utils.Logger.Infof("Resetting the robot!!")

	s.act.RotateSlow()

	err := s.resetWalk(ctx)

	s.act.Stop()
	s.setTarget(0)
	s.setDirectionToggle(true)
	s.fire(eventReset)

	if err != nil {
		return false, describe(constants.MoveReset, err)
	}
	return true, "reset complete"
}

func (s *Sequencer) resetWalk(ctx context.Context) error {
	start := s.clock.Now()

	for {
		changed := s.pose.Changed()
		if s.pose.Yaw() >= constants.ResetUpperYaw || !s.directionToggle() {
			break
		}
		if err := s.resetTick(ctx, start, changed); err != nil {
			return err
		}
		if s.pose.Yaw() < constants.ResetOriginYaw {
			s.setDirectionToggle(false)
		}
	}

	for {
		changed := s.pose.Changed()
		if s.pose.Yaw() >= constants.ResetOriginYaw || s.directionToggle() {
			break
		}
		if err := s.resetTick(ctx, start, changed); err != nil {
			return err
		}
		if s.pose.Yaw() > constants.ResetOriginYaw {
			s.setDirectionToggle(true)
		}
	}
	return nil
}

func (s *Sequencer) resetTick(ctx context.Context, start time.Time, changed <-chan struct{}) error {
	utils.Logger.Debugf("YAW value: %.4f, toggle: %v", s.pose.Yaw(), s.directionToggle())

	if s.settings.ResetTimeout > 0 && s.clock.Now().Sub(start) >= s.settings.ResetTimeout {
		return ErrResetTimeout
	}
	return s.yield.TickUntil(ctx, s.settings.RotateTick, changed)
}
