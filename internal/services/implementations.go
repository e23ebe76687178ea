// internal/services/implementations.go
package services

import (
	"context"
	"time"

	"movement-server/internal/common/constants"
	"movement-server/internal/interfaces"
	"movement-server/internal/models"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// =============================================================================
// Database Service Implementation
// =============================================================================

type DatabaseServiceImpl struct {
	db *gorm.DB
}

func NewDatabaseService(db *gorm.DB) interfaces.DatabaseService {
	return &DatabaseServiceImpl{db: db}
}

func (d *DatabaseServiceImpl) CreateCommandRecord(record *models.CommandRecord) error {
	return d.db.Create(record).Error
}

func (d *DatabaseServiceImpl) CompleteCommandRecord(record *models.CommandRecord, status string, success bool, message string, finalYaw float64) error {
	record.Status = status
	record.Success = success
	record.Message = message
	record.FinalYaw = finalYaw
	now := time.Now()
	record.ResponseTime = &now
	return d.db.Save(record).Error
}

func (d *DatabaseServiceImpl) ListCommandRecords(robotID string, limit int) ([]models.CommandRecord, error) {
	var records []models.CommandRecord
	err := d.db.Where("robot_id = ?", robotID).
		Order("request_time DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}

// FailAllRunningCommands marks commands left running by a previous process as failed
func (d *DatabaseServiceImpl) FailAllRunningCommands(robotID, reason string) error {
	return d.db.Model(&models.CommandRecord{}).
		Where("robot_id = ? AND status IN ?", robotID,
			[]string{constants.CommandStatusPending, constants.CommandStatusRunning}).
		Updates(map[string]interface{}{
			"status":        constants.CommandStatusFailure,
			"message":       reason,
			"response_time": time.Now(),
		}).Error
}

// =============================================================================
// Cache Service Implementation
// =============================================================================

type CacheServiceImpl struct {
	client *redis.Client
}

func NewCacheService(client *redis.Client) interfaces.CacheService {
	return &CacheServiceImpl{client: client}
}

func (c *CacheServiceImpl) Get(ctx context.Context, key string) (string, error) {
	return c.client.Get(ctx, key).Result()
}

func (c *CacheServiceImpl) Del(ctx context.Context, keys ...string) error {
	return c.client.Del(ctx, keys...).Err()
}

func (c *CacheServiceImpl) Keys(ctx context.Context, pattern string) ([]string, error) {
	return c.client.Keys(ctx, pattern).Result()
}

func (c *CacheServiceImpl) HSet(ctx context.Context, key, field string, value interface{}) error {
	return c.client.HSet(ctx, key, field, value).Err()
}

func (c *CacheServiceImpl) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return c.client.HGetAll(ctx, key).Result()
}

func (c *CacheServiceImpl) Pipeline() interfaces.CachePipeline {
	return &CachePipelineImpl{pipeline: c.client.Pipeline()}
}

type CachePipelineImpl struct {
	pipeline redis.Pipeliner
}

func (c *CachePipelineImpl) HSet(ctx context.Context, key, field string, value interface{}) error {
	c.pipeline.HSet(ctx, key, field, value)
	return nil
}

func (c *CachePipelineImpl) Expire(ctx context.Context, key string, expiration time.Duration) error {
	c.pipeline.Expire(ctx, key, expiration)
	return nil
}

func (c *CachePipelineImpl) Exec(ctx context.Context) error {
	_, err := c.pipeline.Exec(ctx)
	return err
}
