package sequencer

import (
	"context"
	"fmt"

	"movement-server/internal/common/constants"
	"movement-server/internal/utils"
)

// traceFigure drives segments drive-then-rotate units, each rotation adding turn radians
// to the cumulative target. A figure already traced is a no-op until the next reset.
func (s *Sequencer) traceFigure(ctx context.Context, move string, segments int, turn float64) (bool, string) {
	if s.figure.Is(StateCompleted) {
		utils.Logger.Infof("%s ignored: figure already completed, waiting for %s", move, constants.MoveReset)
		return true, "figure already completed"
	}

	s.setActivity(constants.ActivityTracing)
	s.setTarget(0)

	for seg := 1; seg <= segments; seg++ {
		if err := s.driveForward(ctx); err != nil {
			return s.failure(move, err)
		}

		s.act.Stop()
		// let the robot come to rest before turning
		if err := s.yield.Tick(ctx, s.settings.SettleTick); err != nil {
			return s.failure(move, err)
		}

		if err := s.rotateBy(ctx, turn); err != nil {
			return s.failure(move, err)
		}
		utils.Logger.Infof("%s segment %d/%d done (yaw=%.3f)", move, seg, segments, s.pose.Yaw())
	}

	s.act.Stop()
	s.fire(eventFigureCompleted)
	utils.Logger.Infof("Making a %s!!", move)

	return true, fmt.Sprintf("%s traced", move)
}

// driveForward open-loop timed drive: re-issues the forward command every tick until
// DriveDuration of wall-clock time has passed.
func (s *Sequencer) driveForward(ctx context.Context) error {
	start := s.clock.Now()
	for s.clock.Now().Sub(start) < s.settings.DriveDuration {
		s.act.DriveForward()
		if err := s.yield.Tick(ctx, s.settings.DriveTick); err != nil {
			return err
		}
	}
	return nil
}

// rotateBy sets the rotation velocity once and waits until yaw >= cumulative target.
// The velocity is not re-asserted while waiting. Every pose sample is checked; RotateTick
// only bounds how long one wait may last.
func (s *Sequencer) rotateBy(ctx context.Context, turn float64) error {
	s.act.Rotate()
	target := s.addTarget(turn)

	start := s.clock.Now()
	for {
		changed := s.pose.Changed()
		yaw := s.pose.Yaw()
		if yaw >= target {
			return nil
		}
		utils.Logger.Debugf("YAW value: %.4f, GIRO value: %.4f", yaw, target)

		if s.settings.RotateTimeout > 0 && s.clock.Now().Sub(start) >= s.settings.RotateTimeout {
			return ErrRotateTimeout
		}
		if err := s.yield.TickUntil(ctx, s.settings.RotateTick, changed); err != nil {
			return err
		}
	}
}
