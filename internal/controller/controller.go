// internal/controller/controller.go
package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	"movement-server/internal/common/constants"
	"movement-server/internal/common/idgen"
	"movement-server/internal/host"
	"movement-server/internal/interfaces"
	"movement-server/internal/models"
	"movement-server/internal/sequencer"
	"movement-server/internal/utils"
)

// Command sources
const (
	SourceMQTT = "mqtt"
	SourceHTTP = "http"
)

// ErrNoCommand nothing to abort
var ErrNoCommand = errors.New("no command in flight")

// Executor runs movement commands
type Executor interface {
	Execute(ctx context.Context, req models.MovementRequest) models.MovementResponse
	Snapshot() sequencer.Status
}

// Host schedules work on the execution groups
type Host interface {
	SubmitPose(job host.Job) bool
	SubmitScan(job host.Job) bool
	SubmitCommand(ctx context.Context, job host.Job) error
	Stats() host.Stats
}

// PoseStore latest pose sample
type PoseStore interface {
	Update(p models.Pose)
	Current() models.Pose
	Updates() uint64
	LastUpdate() time.Time
}

// ScanStore latest range scan
type ScanStore interface {
	Update(scan models.RangeScan)
	FrontRange() (float64, bool)
	Scans() uint64
}

// Responder publishes movement responses
type Responder interface {
	SendResponse(resp models.MovementResponse) error
}

// StatusMirror external status view
type StatusMirror interface {
	Sync(ctx context.Context, force bool) error
	MarkPending(ctx context.Context, req models.MovementRequest, source string) error
	ClearPending(ctx context.Context, id string) error
}

// Status aggregated view served to observers
type Status struct {
	RobotID        string           `json:"robot_id"`
	Controller     sequencer.Status `json:"controller"`
	Pose           models.Pose      `json:"pose"`
	PoseUpdates    uint64           `json:"pose_updates"`
	LastPoseUpdate *time.Time       `json:"last_pose_update,omitempty"`
	Scans          uint64           `json:"scans"`
	InFlight       string           `json:"in_flight,omitempty"`
	Host           host.Stats       `json:"host"`
}

// Controller connects the transports to the sequencer: it decodes feeds, schedules
// commands on the host and records their outcome.
type Controller struct {
	robotID   string
	executor  Executor
	host      Host
	pose      PoseStore
	scans     ScanStore
	responder Responder
	db        interfaces.DatabaseService
	mirror    StatusMirror
	ids       *idgen.Generator

	mu        sync.Mutex
	currentID string
	cancel    context.CancelFunc
}

// Deps collaborators of a Controller. DB and Mirror are optional.
type Deps struct {
	RobotID   string
	Executor  Executor
	Host      Host
	Pose      PoseStore
	Scans     ScanStore
	Responder Responder
	DB        interfaces.DatabaseService
	Mirror    StatusMirror
}

// New creates a controller
func New(deps Deps) *Controller {
	utils.Logger.Infof("🏗️ CREATING Movement Controller")

	c := &Controller{
		robotID:   deps.RobotID,
		executor:  deps.Executor,
		host:      deps.Host,
		pose:      deps.Pose,
		scans:     deps.Scans,
		responder: deps.Responder,
		db:        deps.DB,
		mirror:    deps.Mirror,
		ids:       idgen.NewGenerator(),
	}

	utils.Logger.Infof("✅ Movement Controller CREATED")
	return c
}

// Submit queues req and calls done with its response once executed. A job whose ctx is
// done by the time it reaches the front of the queue is skipped and done is not called.
func (c *Controller) Submit(ctx context.Context, req models.MovementRequest, source string, done func(models.MovementResponse)) error {
	req = c.withID(req)

	return c.host.SubmitCommand(ctx, func(hostCtx context.Context) {
		if err := ctx.Err(); err != nil {
			utils.WithCommand(req.ID, req.Move).Warnf("Skipping queued command, caller gone: %v", err)
			return
		}
		resp := c.run(hostCtx, req, source)
		if done != nil {
			done(resp)
		}
	})
}

// Execute queues req and waits for its response
func (c *Controller) Execute(ctx context.Context, req models.MovementRequest, source string) (models.MovementResponse, error) {
	result := make(chan models.MovementResponse, 1)

	if err := c.Submit(ctx, req, source, func(resp models.MovementResponse) {
		result <- resp
	}); err != nil {
		return models.MovementResponse{}, err
	}

	select {
	case resp := <-result:
		return resp, nil
	case <-ctx.Done():
		return models.MovementResponse{}, ctx.Err()
	}
}

// Abort cancels the command in flight and returns its request id
func (c *Controller) Abort() (string, error) {
	return c.AbortRequest("")
}

// AbortRequest cancels the command in flight only if its request id is id.
// An empty id matches any command.
func (c *Controller) AbortRequest(id string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel == nil || (id != "" && id != c.currentID) {
		return "", ErrNoCommand
	}

	utils.Logger.Warnf("Aborting command %s", c.currentID)
	c.cancel()
	return c.currentID, nil
}

// Status aggregated snapshot
func (c *Controller) Status() Status {
	st := Status{
		RobotID:     c.robotID,
		Controller:  c.executor.Snapshot(),
		Pose:        c.pose.Current(),
		PoseUpdates: c.pose.Updates(),
		Scans:       c.scans.Scans(),
		Host:        c.host.Stats(),
	}
	if last := c.pose.LastUpdate(); !last.IsZero() {
		st.LastPoseUpdate = &last
	}

	c.mu.Lock()
	st.InFlight = c.currentID
	c.mu.Unlock()

	return st
}

// FrontRange forward laser reading
func (c *Controller) FrontRange() (float64, bool) {
	return c.scans.FrontRange()
}

// History most recent commands first
func (c *Controller) History(limit int) ([]models.CommandRecord, error) {
	if c.db == nil {
		return nil, nil
	}
	return c.db.ListCommandRecords(c.robotID, limit)
}

func (c *Controller) withID(req models.MovementRequest) models.MovementRequest {
	if !idgen.Valid(req.ID) {
		req.ID = c.ids.RequestID()
	}
	return req
}

func (c *Controller) run(hostCtx context.Context, req models.MovementRequest, source string) models.MovementResponse {
	ctx, cancel := context.WithCancel(hostCtx)
	defer cancel()

	c.setCurrent(req.ID, cancel)
	defer c.setCurrent("", nil)

	record := c.begin(ctx, req, source)

	resp := c.executor.Execute(ctx, req)

	c.finish(record, req, resp, commandStatus(req, resp, ctx.Err()))
	return resp
}

func (c *Controller) begin(ctx context.Context, req models.MovementRequest, source string) *models.CommandRecord {
	record := &models.CommandRecord{
		RequestID:   req.ID,
		RobotID:     c.robotID,
		Move:        req.Move,
		Source:      source,
		Status:      constants.CommandStatusRunning,
		RequestTime: time.Now(),
	}

	if c.db != nil {
		if err := c.db.CreateCommandRecord(record); err != nil {
			utils.Logger.Errorf("Failed to record command %s: %v", req.ID, err)
			record = nil
		}
	}

	if c.mirror != nil {
		if err := c.mirror.MarkPending(ctx, req, source); err != nil {
			utils.Logger.Warnf("Failed to mark command %s pending: %v", req.ID, err)
		}
		if err := c.mirror.Sync(ctx, true); err != nil {
			utils.Logger.Warnf("Failed to mirror controller status: %v", err)
		}
	}
	return record
}

func (c *Controller) finish(record *models.CommandRecord, req models.MovementRequest, resp models.MovementResponse, status string) {
	if c.db != nil && record != nil {
		if err := c.db.CompleteCommandRecord(record, status, resp.Success, resp.Message, c.pose.Current().Yaw); err != nil {
			utils.Logger.Errorf("Failed to complete command record %s: %v", req.ID, err)
		}
	}

	if c.mirror != nil {
		// the command ctx may already be cancelled
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		if err := c.mirror.ClearPending(ctx, req.ID); err != nil {
			utils.Logger.Warnf("Failed to clear pending command %s: %v", req.ID, err)
		}
		if err := c.mirror.Sync(ctx, true); err != nil {
			utils.Logger.Warnf("Failed to mirror controller status: %v", err)
		}
	}
}

func (c *Controller) setCurrent(id string, cancel context.CancelFunc) {
	c.mu.Lock()
	c.currentID = id
	c.cancel = cancel
	c.mu.Unlock()
}

func commandStatus(req models.MovementRequest, resp models.MovementResponse, ctxErr error) string {
	switch {
	case !constants.IsKnownMove(req.Move):
		return constants.CommandStatusRejected
	case resp.Success:
		return constants.CommandStatusSuccess
	case errors.Is(ctxErr, context.Canceled):
		return constants.CommandStatusAborted
	default:
		return constants.CommandStatusFailure
	}
}
