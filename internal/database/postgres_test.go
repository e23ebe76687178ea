package database

import (
	"testing"

	"movement-server/internal/config"

	"gorm.io/gorm/logger"
)

func TestDSN(t *testing.T) {
	cfg := &config.Config{
		DBHost:     "db",
		DBPort:     "5433",
		DBUser:     "robot",
		DBPassword: "secret",
		DBName:     "movement_server",
	}

	want := "host=db user=robot password=secret dbname=movement_server port=5433 sslmode=disable"
	if got := DSN(cfg); got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestGormLogLevel(t *testing.T) {
	tests := map[string]logger.LogLevel{
		"debug": logger.Info,
		"info":  logger.Warn,
		"warn":  logger.Warn,
		"error": logger.Error,
		"":      logger.Warn,
	}
	for level, want := range tests {
		if got := gormLogLevel(level); got != want {
			t.Errorf("Level %q: expected %v, got %v", level, want, got)
		}
	}
}
