// internal/sequencer/sequencer.go
package sequencer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"movement-server/internal/common/constants"
	"movement-server/internal/models"
	"movement-server/internal/utils"

	"github.com/looplab/fsm"
)

// Figure states
const (
	StateIdle      = "Idle"
	StateCompleted = "Completed"

	eventFigureCompleted = "figure_completed"
	eventReset           = "reset"
)

var (
	// ErrRotateTimeout yaw never reached the rotation target within RotateTimeout
	ErrRotateTimeout = errors.New("timed out waiting for yaw to reach target")
	// ErrResetTimeout reset walk did not settle within ResetTimeout
	ErrResetTimeout = errors.New("timed out waiting for reset to settle")
)

// Actuator motion primitives driven by the sequencer
type Actuator interface {
	Stop()
	DriveForward()
	Rotate()
	RotateSlow()
}

// PoseReader source of the latest normalized yaw. Changed is closed by the next pose update.
type PoseReader interface {
	Yaw() float64
	Changed() <-chan struct{}
}

// Yielder cedes control to the host for at most d so pose updates keep flowing.
// TickUntil also returns once wake fires. Both return ctx.Err() when the command is cancelled.
type Yielder interface {
	Tick(ctx context.Context, d time.Duration) error
	TickUntil(ctx context.Context, d time.Duration, wake <-chan struct{}) error
}

// Clock time source, faked in tests
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock wall-clock time
var SystemClock Clock = systemClock{}

// Settings timing of the sub-loops. Zero timeouts mean wait forever.
type Settings struct {
	DriveDuration time.Duration
	DriveTick     time.Duration
	SettleTick    time.Duration
	RotateTick    time.Duration
	RotateTimeout time.Duration
	ResetTimeout  time.Duration
}

// DefaultSettings default drive and tick timing
func DefaultSettings() Settings {
	return Settings{
		DriveDuration: constants.DefaultDriveDuration,
		DriveTick:     constants.DefaultDriveTick,
		SettleTick:    constants.DefaultSettleTick,
		RotateTick:    constants.DefaultRotateTick,
	}
}

// Status read-only snapshot of the controller state
type Status struct {
	FigureState      string  `json:"figure_state"`
	CumulativeTarget float64 `json:"cumulative_target"`
	DirectionToggle  bool    `json:"direction_toggle"`
	Activity         string  `json:"activity"`
	CurrentMove      string  `json:"current_move,omitempty"`
	Yaw              float64 `json:"yaw"`
	Executions       uint64  `json:"executions"`
}

// Sequencer interprets movement commands and drives the motion primitives.
// Only one command executes at a time per instance.
type Sequencer struct {
	settings Settings
	act      Actuator
	pose     PoseReader
	yield    Yielder
	clock    Clock

	figure *fsm.FSM
	runMu  sync.Mutex

	mu          sync.RWMutex
	target      float64
	toggle      bool
	activity    string
	currentMove string
	executions  uint64
}

// New creates a sequencer in the Idle figure state
func New(settings Settings, act Actuator, pose PoseReader, yield Yielder, clock Clock) *Sequencer {
	utils.Logger.Infof("🏗️ CREATING Command Sequencer")

	if clock == nil {
		clock = SystemClock
	}

	s := &Sequencer{
		settings: settings,
		act:      act,
		pose:     pose,
		yield:    yield,
		clock:    clock,
		toggle:   true,
		activity: constants.ActivityIdle,
	}

	s.figure = fsm.NewFSM(
		StateIdle,
		fsm.Events{
			{Name: eventFigureCompleted, Src: []string{StateIdle}, Dst: StateCompleted},
			{Name: eventReset, Src: []string{StateIdle, StateCompleted}, Dst: StateIdle},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				utils.Logger.Infof("Figure state changed from %s -> %s (Event: %s)", e.Src, e.Dst, e.Event)
			},
		},
	)

	utils.Logger.Infof("✅ Command Sequencer CREATED")
	return s
}

// Execute runs one movement command to completion and returns its single response.
// Figure and reset commands block for the whole maneuver.
func (s *Sequencer) Execute(ctx context.Context, req models.MovementRequest) models.MovementResponse {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	log := utils.WithCommand(req.ID, req.Move)
	log.Infof("Executing movement command")

	s.mu.Lock()
	s.executions++
	s.currentMove = req.Move
	s.mu.Unlock()

	resp := models.MovementResponse{ID: req.ID, Move: req.Move}

	switch req.Move {
	case constants.MoveSquare:
		resp.Success, resp.Message = s.traceFigure(ctx, req.Move, constants.SquareSegments, constants.SquareTurn)
	case constants.MoveTriangle:
		resp.Success, resp.Message = s.traceFigure(ctx, req.Move, constants.TriangleSegments, constants.TriangleTurn)
	case constants.MoveStop:
		s.setActivity(constants.ActivityStopping)
		s.act.Stop()
		log.Infof("Stop there!!")
		resp.Success, resp.Message = true, "stopped"
	case constants.MoveReset:
		resp.Success, resp.Message = s.reset(ctx)
	default:
		log.Warnf("Unknown movement command")
		resp.Success, resp.Message = false, fmt.Sprintf("unknown move %q", req.Move)
	}

	s.mu.Lock()
	s.activity = constants.ActivityIdle
	s.currentMove = ""
	s.mu.Unlock()

	log.Infof("Movement command finished (success=%v): %s", resp.Success, resp.Message)
	return resp
}

// FigureState current persistent figure state
func (s *Sequencer) FigureState() string {
	return s.figure.Current()
}

// Snapshot consistent view of the controller state
func (s *Sequencer) Snapshot() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		FigureState:      s.figure.Current(),
		CumulativeTarget: s.target,
		DirectionToggle:  s.toggle,
		Activity:         s.activity,
		CurrentMove:      s.currentMove,
		Yaw:              s.pose.Yaw(),
		Executions:       s.executions,
	}
}

func (s *Sequencer) fire(event string) {
	if err := s.figure.Event(context.Background(), event); err != nil {
		var noTransition fsm.NoTransitionError
		if errors.As(err, &noTransition) {
			return
		}
		utils.Logger.Warnf("Figure state event %s rejected in state %s: %v", event, s.figure.Current(), err)
	}
}

func (s *Sequencer) setActivity(activity string) {
	s.mu.Lock()
	s.activity = activity
	s.mu.Unlock()
}

func (s *Sequencer) setTarget(v float64) {
	s.mu.Lock()
	s.target = v
	s.mu.Unlock()
}

func (s *Sequencer) addTarget(delta float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.target += delta
	return s.target
}

func (s *Sequencer) directionToggle() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.toggle
}

func (s *Sequencer) setDirectionToggle(v bool) {
	s.mu.Lock()
	s.toggle = v
	s.mu.Unlock()
}

// failure stops the robot and turns an interrupted wait into a response message
func (s *Sequencer) failure(move string, err error) (bool, string) {
	s.act.Stop()
	return false, describe(move, err)
}

func describe(move string, err error) string {
	switch {
	case errors.Is(err, context.Canceled):
		utils.Logger.Warnf("%s aborted", move)
		return "aborted"
	case errors.Is(err, context.DeadlineExceeded):
		utils.Logger.Warnf("%s deadline exceeded", move)
		return "deadline exceeded"
	default:
		utils.Logger.Errorf("%s failed: %v", move, err)
		return err.Error()
	}
}
