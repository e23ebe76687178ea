// Package status mirrors the controller state into Redis for external observers.
package status

import (
	"context"
	"fmt"
	"strconv"
	"time"

	redisKeys "movement-server/internal/common/redis"
	"movement-server/internal/interfaces"
	"movement-server/internal/models"
	"movement-server/internal/sequencer"
	"movement-server/internal/utils"
)

// pendingTTL upper bound on how long an in-flight marker survives a crashed process
const pendingTTL = time.Hour

// Source provides controller snapshots
type Source interface {
	Snapshot() sequencer.Status
}

// Mirror writes the controller status hash and the in-flight command markers
type Mirror struct {
	cache    interfaces.CacheService
	source   Source
	robotID  string
	key      string
	interval time.Duration

	changes *utils.StatusCache
	limiter *utils.RateLimiter
}

// NewMirror creates a status mirror refreshed every interval
func NewMirror(cache interfaces.CacheService, source Source, robotID string, interval time.Duration) *Mirror {
	utils.Logger.Infof("🏗️ CREATING Status Mirror")

	m := &Mirror{
		cache:    cache,
		source:   source,
		robotID:  robotID,
		key:      redisKeys.ControllerStatus(robotID),
		interval: interval,
		changes:  utils.NewStatusCache(10 * interval),
		limiter:  utils.NewRateLimiter(interval / 4),
	}

	utils.Logger.Infof("✅ Status Mirror CREATED")
	return m
}

// Run refreshes the mirror until ctx is done
func (m *Mirror) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.Sync(ctx, false); err != nil {
				utils.Logger.Warnf("Failed to mirror controller status: %v", err)
			}
		}
	}
}

// Sync writes the current snapshot. Unless force is set, unchanged or too frequent
// writes are skipped; the yaw alone is refreshed on the heartbeat.
func (m *Mirror) Sync(ctx context.Context, force bool) error {
	st := m.source.Snapshot()
	fingerprint := fmt.Sprintf("%s|%s|%s|%.4f|%v|%d",
		st.FigureState, st.Activity, st.CurrentMove, st.CumulativeTarget, st.DirectionToggle, st.Executions)

	if !force {
		if !m.changes.ShouldUpdate(m.key, fingerprint) || !m.limiter.Allow(m.key) {
			return nil
		}
	}

	pipe := m.cache.Pipeline()
	fields := map[string]interface{}{
		"figure_state":      st.FigureState,
		"activity":          st.Activity,
		"current_move":      st.CurrentMove,
		"cumulative_target": strconv.FormatFloat(st.CumulativeTarget, 'f', 4, 64),
		"direction_toggle":  strconv.FormatBool(st.DirectionToggle),
		"yaw":               strconv.FormatFloat(st.Yaw, 'f', 4, 64),
		"executions":        strconv.FormatUint(st.Executions, 10),
		"updated_at":        time.Now().Format(time.RFC3339Nano),
	}
	for field, value := range fields {
		pipe.HSet(ctx, m.key, field, value)
	}
	pipe.Expire(ctx, m.key, 30*m.interval)

	if err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write %s: %w", m.key, err)
	}

	m.changes.Update(m.key, fingerprint)
	return nil
}

// MarkPending records an in-flight command
func (m *Mirror) MarkPending(ctx context.Context, req models.MovementRequest, source string) error {
	key := redisKeys.PendingCommand(req.ID)

	pipe := m.cache.Pipeline()
	pipe.HSet(ctx, key, "move", req.Move)
	pipe.HSet(ctx, key, "robot_id", m.robotID)
	pipe.HSet(ctx, key, "source", source)
	pipe.HSet(ctx, key, "started_at", time.Now().Format(time.RFC3339Nano))
	pipe.Expire(ctx, key, pendingTTL)

	if err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to mark %s pending: %w", req.ID, err)
	}
	return nil
}

// ClearPending removes the in-flight marker for id
func (m *Mirror) ClearPending(ctx context.Context, id string) error {
	return m.cache.Del(ctx, redisKeys.PendingCommand(id))
}

// ClearStale removes in-flight markers left behind by a previous process of this robot
// and forgets the last written status so the next Sync rewrites it
func (m *Mirror) ClearStale(ctx context.Context) (int, error) {
	m.changes.Remove(m.key)
	m.limiter.Reset(m.key)

	keys, err := m.cache.Keys(ctx, redisKeys.AllPendingCommands())
	if err != nil {
		return 0, err
	}

	var stale []string
	for _, key := range keys {
		fields, err := m.cache.HGetAll(ctx, key)
		if err != nil {
			continue
		}
		if fields["robot_id"] == m.robotID {
			stale = append(stale, key)
		}
	}

	if len(stale) == 0 {
		return 0, nil
	}
	if err := m.cache.Del(ctx, stale...); err != nil {
		return 0, err
	}

	utils.Logger.Infof("Cleared %d stale pending commands", len(stale))
	return len(stale), nil
}
