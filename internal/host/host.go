// internal/host/host.go
package host

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"movement-server/internal/utils"
)

// Execution groups. Jobs within a group never overlap; jobs in different groups run in parallel.
const (
	GroupPose    = "pose"
	GroupScan    = "scan"
	GroupCommand = "command"
)

// QueueDepth bounded backlog per group
const QueueDepth = 10

// ErrStopped returned when submitting to a host that has been stopped
var ErrStopped = errors.New("host stopped")

// Job unit of work; ctx is cancelled when the host stops
type Job func(ctx context.Context)

type worker struct {
	name  string
	queue chan Job
	mu    sync.Mutex

	processed atomic.Uint64
	dropped   atomic.Uint64
}

// GroupStats counters for one execution group
type GroupStats struct {
	Queued    int    `json:"queued"`
	Processed uint64 `json:"processed"`
	Dropped   uint64 `json:"dropped"`
}

// Stats host counters
type Stats struct {
	Pose    GroupStats `json:"pose"`
	Scan    GroupStats `json:"scan"`
	Command GroupStats `json:"command"`
	Ticks   uint64     `json:"ticks"`
}

// Host runs inbound work on one worker per execution group so a long-running
// movement command never starves pose updates.
type Host struct {
	pose    *worker
	scan    *worker
	command *worker

	ticks atomic.Uint64

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	startMu sync.Mutex
	started bool
}

// New creates a host; workers run once Start is called
func New() *Host {
	utils.Logger.Infof("🏗️ CREATING Concurrency Host")

	ctx, cancel := context.WithCancel(context.Background())
	h := &Host{
		pose:    newWorker(GroupPose),
		scan:    newWorker(GroupScan),
		command: newWorker(GroupCommand),
		ctx:     ctx,
		cancel:  cancel,
	}

	utils.Logger.Infof("✅ Concurrency Host CREATED")
	return h
}

func newWorker(name string) *worker {
	return &worker{name: name, queue: make(chan Job, QueueDepth)}
}

// Start launches the group workers. Cancelling parent stops the host.
func (h *Host) Start(parent context.Context) {
	h.startMu.Lock()
	defer h.startMu.Unlock()

	if h.started || h.ctx.Err() != nil {
		return
	}
	h.started = true

	utils.Logger.Infof("🚀 STARTING Concurrency Host")
	context.AfterFunc(parent, h.cancel)

	for _, w := range []*worker{h.pose, h.scan, h.command} {
		h.wg.Add(1)
		go h.run(w)
	}
	utils.Logger.Infof("🎉 Concurrency Host STARTED")
}

// Stop cancels the running jobs and waits for every worker to return.
// Jobs still queued are discarded.
func (h *Host) Stop() {
	utils.Logger.Info("🛑 STOPPING Concurrency Host")
	h.cancel()
	h.wg.Wait()
	utils.Logger.Info("✅ Concurrency Host STOPPED")
}

// Done closed once the host is stopped
func (h *Host) Done() <-chan struct{} {
	return h.ctx.Done()
}

// SubmitPose queues a pose update, dropping the oldest queued one when full
func (h *Host) SubmitPose(job Job) bool {
	return h.submitLatest(h.pose, job)
}

// SubmitScan queues a scan update, dropping the oldest queued one when full
func (h *Host) SubmitScan(job Job) bool {
	return h.submitLatest(h.scan, job)
}

// SubmitCommand queues a command job, blocking until there is room, ctx is done or the host stops
func (h *Host) SubmitCommand(ctx context.Context, job Job) error {
	if h.ctx.Err() != nil {
		return ErrStopped
	}

	select {
	case h.command.queue <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-h.ctx.Done():
		return ErrStopped
	}
}

// Tick yields for d so other groups keep running. Returns ctx.Err() if ctx is cancelled first.
func (h *Host) Tick(ctx context.Context, d time.Duration) error {
	return h.TickUntil(ctx, d, nil)
}

// TickUntil is Tick that also returns as soon as wake is closed or receives.
// d stays the upper bound; a nil wake waits the full d.
func (h *Host) TickUntil(ctx context.Context, d time.Duration, wake <-chan struct{}) error {
	h.ticks.Add(1)

	if d <= 0 || ctx.Err() != nil {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-wake:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stats snapshot of the queue counters
func (h *Host) Stats() Stats {
	return Stats{
		Pose:    h.pose.stats(),
		Scan:    h.scan.stats(),
		Command: h.command.stats(),
		Ticks:   h.ticks.Load(),
	}
}

func (h *Host) submitLatest(w *worker, job Job) bool {
	if h.ctx.Err() != nil {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	for {
		select {
		case w.queue <- job:
			return true
		default:
		}

		select {
		case <-w.queue:
			w.dropped.Add(1)
			utils.Logger.Debugf("%s queue full, dropped oldest job", w.name)
		default:
		}
	}
}

func (h *Host) run(w *worker) {
	defer h.wg.Done()

	for {
		select {
		case <-h.ctx.Done():
			return
		case job := <-w.queue:
			h.execute(w, job)
		}
	}
}

func (h *Host) execute(w *worker, job Job) {
	defer func() {
		if r := recover(); r != nil {
			utils.Logger.Errorf("Panic in %s worker: %v", w.name, r)
		}
	}()

	job(h.ctx)
	w.processed.Add(1)
}

func (w *worker) stats() GroupStats {
	return GroupStats{
		Queued:    len(w.queue),
		Processed: w.processed.Load(),
		Dropped:   w.dropped.Load(),
	}
}
