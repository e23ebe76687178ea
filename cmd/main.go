// cmd/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"movement-server/internal/config"
	"movement-server/internal/di"
	"movement-server/internal/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load config: " + err.Error())
	}
	utils.SetupLogger(cfg.LogLevel)

	container, err := di.NewContainer(cfg)
	if err != nil {
		utils.Logger.Fatalf("Failed to create DI container: %v", err)
	}
	defer container.Cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := container.MovementService.Start(ctx); err != nil {
		utils.Logger.Fatalf("Failed to start movement service: %v", err)
	}

	utils.Logger.Infof("🎯 Movement server started for robot %s", cfg.RobotID)
	utils.Logger.Infof("📊 Services initialized:")
	utils.Logger.Infof("   ✅ Database Service")
	utils.Logger.Infof("   ✅ Cache Service")
	utils.Logger.Infof("   ✅ MQTT Client")
	utils.Logger.Infof("   ✅ Command Sequencer")
	if cfg.HTTPAddr != "" {
		utils.Logger.Infof("   ✅ HTTP API on %s", cfg.HTTPAddr)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	utils.Logger.Infof("🛑 Shutdown signal received")
	container.MovementService.Stop()
	cancel()

	utils.Logger.Infof("✅ Movement server shutdown completed")
}
