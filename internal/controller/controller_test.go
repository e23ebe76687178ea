package controller

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"movement-server/internal/common/constants"
	"movement-server/internal/host"
	"movement-server/internal/models"
	"movement-server/internal/perception"
	"movement-server/internal/pose"
	"movement-server/internal/sequencer"
)

// syncHost runs every job inline
type syncHost struct {
	poseJobs, scanJobs, commandJobs int
}

func (h *syncHost) SubmitPose(job host.Job) bool {
	h.poseJobs++
	job(context.Background())
	return true
}

func (h *syncHost) SubmitScan(job host.Job) bool {
	h.scanJobs++
	job(context.Background())
	return true
}

func (h *syncHost) SubmitCommand(ctx context.Context, job host.Job) error {
	h.commandJobs++
	job(context.Background())
	return nil
}

func (h *syncHost) Stats() host.Stats { return host.Stats{Ticks: 7} }

type fakeExecutor struct {
	mu       sync.Mutex
	requests []models.MovementRequest
	started  chan struct{}
	block    bool
}

func (e *fakeExecutor) Execute(ctx context.Context, req models.MovementRequest) models.MovementResponse {
	e.mu.Lock()
	e.requests = append(e.requests, req)
	e.mu.Unlock()

	resp := models.MovementResponse{ID: req.ID, Move: req.Move}
	if e.block {
		close(e.started)
		<-ctx.Done()
		resp.Message = "aborted"
		return resp
	}
	if !constants.IsKnownMove(req.Move) {
		resp.Message = "unknown move"
		return resp
	}
	resp.Success = true
	resp.Message = "done"
	return resp
}

func (e *fakeExecutor) Snapshot() sequencer.Status {
	return sequencer.Status{FigureState: sequencer.StateIdle, DirectionToggle: true}
}

type fakeResponder struct {
	mu        sync.Mutex
	responses []models.MovementResponse
}

func (r *fakeResponder) SendResponse(resp models.MovementResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses = append(r.responses, resp)
	return nil
}

type mockDB struct {
	mu        sync.Mutex
	created   []*models.CommandRecord
	completed map[string]string
	createErr error
}

func newMockDB() *mockDB {
	return &mockDB{completed: make(map[string]string)}
}

func (m *mockDB) CreateCommandRecord(record *models.CommandRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, record)
	return nil
}

func (m *mockDB) CompleteCommandRecord(record *models.CommandRecord, status string, success bool, message string, finalYaw float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record.Status = status
	m.completed[record.RequestID] = status
	return nil
}

func (m *mockDB) ListCommandRecords(robotID string, limit int) ([]models.CommandRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.CommandRecord
	for i := len(m.created) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, *m.created[i])
	}
	return out, nil
}

func (m *mockDB) FailAllRunningCommands(robotID, reason string) error { return nil }

func (m *mockDB) status(id string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.completed[id]
}

type fakeMirror struct {
	mu      sync.Mutex
	pending map[string]bool
	marked  int
	syncs   int
}

func newFakeMirror() *fakeMirror {
	return &fakeMirror{pending: make(map[string]bool)}
}

func (f *fakeMirror) Sync(ctx context.Context, force bool) error {
	f.mu.Lock()
	f.syncs++
	f.mu.Unlock()
	return nil
}

func (f *fakeMirror) MarkPending(ctx context.Context, req models.MovementRequest, source string) error {
	f.mu.Lock()
	f.pending[req.ID] = true
	f.marked++
	f.mu.Unlock()
	return nil
}

func (f *fakeMirror) ClearPending(ctx context.Context, id string) error {
	f.mu.Lock()
	delete(f.pending, id)
	f.mu.Unlock()
	return nil
}

type mockMessage struct {
	topic   string
	payload []byte
}

func (m *mockMessage) Duplicate() bool   { return false }
func (m *mockMessage) Qos() byte         { return 0 }
func (m *mockMessage) Retained() bool    { return false }
func (m *mockMessage) Topic() string     { return m.topic }
func (m *mockMessage) MessageID() uint16 { return 0 }
func (m *mockMessage) Payload() []byte   { return m.payload }
func (m *mockMessage) Ack()              {}

type fixture struct {
	ctrl      *Controller
	host      *syncHost
	executor  *fakeExecutor
	responder *fakeResponder
	db        *mockDB
	mirror    *fakeMirror
	pose      *pose.Tracker
	scans     *perception.Buffer
}

func newFixture() *fixture {
	f := &fixture{
		host:      &syncHost{},
		executor:  &fakeExecutor{},
		responder: &fakeResponder{},
		db:        newMockDB(),
		mirror:    newFakeMirror(),
		pose:      pose.NewTracker(),
		scans:     perception.NewBuffer(),
	}
	f.ctrl = New(Deps{
		RobotID:   "tb3",
		Executor:  f.executor,
		Host:      f.host,
		Pose:      f.pose,
		Scans:     f.scans,
		Responder: f.responder,
		DB:        f.db,
		Mirror:    f.mirror,
	})
	return f
}

func TestHandleOdometry(t *testing.T) {
	f := newFixture()

	payload := `{"pose":{"pose":{"position":{"x":1,"y":2,"z":0},"orientation":{"x":0,"y":0,"z":0.7071067811865476,"w":0.7071067811865476}}}}`
	f.ctrl.HandleOdometry(nil, &mockMessage{topic: "robots/tb3/odom", payload: []byte(payload)})

	if yaw := f.pose.Yaw(); math.Abs(yaw-math.Pi/2) > 1e-9 {
		t.Errorf("Expected yaw π/2, got %f", yaw)
	}

	f.ctrl.HandleOdometry(nil, &mockMessage{topic: "robots/tb3/odom", payload: []byte("{not json")})
	if f.host.poseJobs != 1 || f.pose.Updates() != 1 {
		t.Errorf("Expected malformed odometry to be dropped")
	}
}

func TestHandleScan(t *testing.T) {
	f := newFixture()

	ranges := make([]float64, 720)
	ranges[360] = 0.8
	payload := `{"angle_min":0,"angle_max":6.28,"ranges":[` + joinRanges(ranges) + `]}`
	f.ctrl.HandleScan(nil, &mockMessage{topic: "robots/tb3/scan", payload: []byte(payload)})

	got, ok := f.ctrl.FrontRange()
	if !ok || got != 0.8 {
		t.Errorf("Expected front range 0.8, got %f (ok=%v)", got, ok)
	}

	f.ctrl.HandleScan(nil, &mockMessage{topic: "robots/tb3/scan", payload: []byte("[]")})
	if f.scans.Scans() != 1 {
		t.Errorf("Expected malformed scan to be dropped")
	}
}

func joinRanges(ranges []float64) string {
	out := make([]byte, 0, len(ranges)*4)
	for i, r := range ranges {
		if i > 0 {
			out = append(out, ',')
		}
		if r == 0.8 {
			out = append(out, "0.8"...)
		} else {
			out = append(out, '1')
		}
	}
	return string(out)
}

func TestHandleMovementRequest(t *testing.T) {
	t.Run("assigns id and responds", func(t *testing.T) {
		f := newFixture()
		f.ctrl.HandleMovementRequest(nil, &mockMessage{payload: []byte(`{"move":"Square"}`)})

		if len(f.responder.responses) != 1 {
			t.Fatalf("Expected exactly one response, got %d", len(f.responder.responses))
		}
		resp := f.responder.responses[0]
		if resp.ID == "" || !resp.Success || resp.Move != constants.MoveSquare {
			t.Errorf("Unexpected response %+v", resp)
		}
		if got := f.db.status(resp.ID); got != constants.CommandStatusSuccess {
			t.Errorf("Expected record status %s, got %q", constants.CommandStatusSuccess, got)
		}
		if f.db.created[0].Source != SourceMQTT {
			t.Errorf("Expected mqtt source, got %q", f.db.created[0].Source)
		}
		if f.mirror.marked != 1 || len(f.mirror.pending) != 0 {
			t.Errorf("Expected pending marker set and cleared, marked=%d pending=%v", f.mirror.marked, f.mirror.pending)
		}
	})

	t.Run("keeps client id", func(t *testing.T) {
		f := newFixture()
		f.ctrl.HandleMovementRequest(nil, &mockMessage{payload: []byte(`{"id":"req-42","move":"Stop"}`)})

		if resp := f.responder.responses[0]; resp.ID != "req-42" {
			t.Errorf("Expected id req-42, got %q", resp.ID)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		f := newFixture()
		f.ctrl.HandleMovementRequest(nil, &mockMessage{payload: []byte(`"Square"`)})

		if len(f.responder.responses) != 1 || f.responder.responses[0].Success {
			t.Fatalf("Expected a single failure response, got %+v", f.responder.responses)
		}
		if f.host.commandJobs != 0 {
			t.Errorf("Expected malformed request not to reach the host")
		}
	})

	t.Run("unknown move is rejected", func(t *testing.T) {
		f := newFixture()
		f.ctrl.HandleMovementRequest(nil, &mockMessage{payload: []byte(`{"id":"h1","move":"Hexagon"}`)})

		if f.responder.responses[0].Success {
			t.Errorf("Expected failure response")
		}
		if got := f.db.status("h1"); got != constants.CommandStatusRejected {
			t.Errorf("Expected %s, got %q", constants.CommandStatusRejected, got)
		}
	})

	t.Run("database failure does not fail the command", func(t *testing.T) {
		f := newFixture()
		f.db.createErr = errors.New("db down")
		f.ctrl.HandleMovementRequest(nil, &mockMessage{payload: []byte(`{"move":"Stop"}`)})

		if !f.responder.responses[0].Success {
			t.Errorf("Expected command to succeed despite storage failure")
		}
	})
}

func TestExecute(t *testing.T) {
	f := newFixture()

	resp, err := f.ctrl.Execute(context.Background(), models.MovementRequest{Move: constants.MoveTriangle}, SourceHTTP)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !resp.Success || resp.ID == "" {
		t.Errorf("Unexpected response %+v", resp)
	}
	if len(f.responder.responses) != 0 {
		t.Errorf("Expected synchronous execution not to publish a response")
	}

	history, err := f.ctrl.History(10)
	if err != nil || len(history) != 1 || history[0].Source != SourceHTTP {
		t.Errorf("Unexpected history %+v (err=%v)", history, err)
	}
}

func TestExecuteSkipsCommandOfDepartedCaller(t *testing.T) {
	f := newFixture()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.ctrl.Execute(ctx, models.MovementRequest{ID: "gone-1", Move: constants.MoveSquare}, SourceHTTP)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if f.host.commandJobs != 1 {
		t.Fatalf("Expected the job to reach the host, got %d", f.host.commandJobs)
	}
	if len(f.executor.requests) != 0 {
		t.Errorf("Expected no execution for a departed caller, got %+v", f.executor.requests)
	}
	if history, _ := f.ctrl.History(10); len(history) != 0 {
		t.Errorf("Expected no history for a skipped command, got %+v", history)
	}
}

func TestAbort(t *testing.T) {
	if _, err := newFixture().ctrl.Abort(); !errors.Is(err, ErrNoCommand) {
		t.Fatalf("Expected ErrNoCommand with nothing in flight, got %v", err)
	}

	h := host.New()
	h.Start(context.Background())
	defer h.Stop()

	f := newFixture()
	f.executor.block = true
	f.executor.started = make(chan struct{})
	f.ctrl.host = h

	done := make(chan models.MovementResponse, 1)
	if err := f.ctrl.Submit(context.Background(), models.MovementRequest{ID: "sq-1", Move: constants.MoveSquare}, SourceMQTT,
		func(resp models.MovementResponse) { done <- resp }); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	<-f.executor.started

	if st := f.ctrl.Status(); st.InFlight != "sq-1" {
		t.Errorf("Expected sq-1 in flight, got %q", st.InFlight)
	}

	if _, err := f.ctrl.AbortRequest("other"); !errors.Is(err, ErrNoCommand) {
		t.Errorf("Expected abort for another id to be ignored, got %v", err)
	}

	f.ctrl.HandleAbort(nil, &mockMessage{payload: []byte(`{"id":"sq-1"}`)})

	select {
	case resp := <-done:
		if resp.Success {
			t.Errorf("Expected aborted command to fail")
		}
	case <-time.After(time.Second):
		t.Fatal("Command did not observe the abort")
	}

	if got := f.db.status("sq-1"); got != constants.CommandStatusAborted {
		t.Errorf("Expected %s, got %q", constants.CommandStatusAborted, got)
	}
	if st := f.ctrl.Status(); st.InFlight != "" {
		t.Errorf("Expected nothing in flight, got %q", st.InFlight)
	}
}

func TestStatus(t *testing.T) {
	f := newFixture()
	f.pose.Update(models.Pose{Yaw: 1.5})

	st := f.ctrl.Status()
	if st.RobotID != "tb3" || st.Pose.Yaw != 1.5 || st.PoseUpdates != 1 {
		t.Errorf("Unexpected status %+v", st)
	}
	if st.LastPoseUpdate == nil {
		t.Errorf("Expected last pose update time")
	}
	if st.Host.Ticks != 7 || st.Controller.FigureState != sequencer.StateIdle {
		t.Errorf("Expected host and controller snapshots, got %+v", st)
	}
}
