package models

import (
	"time"

	"gorm.io/gorm"
)

// CommandRecord one movement request and its outcome
type CommandRecord struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	RequestID    string         `gorm:"size:64;not null;uniqueIndex" json:"request_id"`
	RobotID      string         `gorm:"size:50;not null;index" json:"robot_id"`
	Move         string         `gorm:"size:32;not null;index" json:"move"`
	Source       string         `gorm:"size:16" json:"source"` // mqtt, http
	Status       string         `gorm:"size:20;not null;index" json:"status"`
	Success      bool           `gorm:"default:false" json:"success"`
	Message      string         `gorm:"size:500" json:"message"`
	FinalYaw     float64        `json:"final_yaw"`
	RequestTime  time.Time      `gorm:"not null;index" json:"request_time"`
	ResponseTime *time.Time     `json:"response_time"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at"`
}

// Duration time between request and response, zero while still running
func (c *CommandRecord) Duration() time.Duration {
	if c.ResponseTime == nil {
		return 0
	}
	return c.ResponseTime.Sub(c.RequestTime)
}
