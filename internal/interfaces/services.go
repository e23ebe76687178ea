// internal/interfaces/services.go
package interfaces

import (
	"context"
	"time"

	"movement-server/internal/models"
)

// DatabaseService command history persistence
type DatabaseService interface {
	CreateCommandRecord(record *models.CommandRecord) error
	CompleteCommandRecord(record *models.CommandRecord, status string, success bool, message string, finalYaw float64) error
	ListCommandRecords(robotID string, limit int) ([]models.CommandRecord, error)

	// Batch operations
	FailAllRunningCommands(robotID, reason string) error
}

// CacheService Redis cache operations
type CacheService interface {
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	Keys(ctx context.Context, pattern string) ([]string, error)

	// Hash operations for status mirroring
	HSet(ctx context.Context, key, field string, value interface{}) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)

	// Pipeline operations
	Pipeline() CachePipeline
}

// CachePipeline batched Redis writes
type CachePipeline interface {
	HSet(ctx context.Context, key, field string, value interface{}) error
	Expire(ctx context.Context, key string, expiration time.Duration) error
	Exec(ctx context.Context) error
}
