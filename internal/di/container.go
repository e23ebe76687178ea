// internal/di/container.go
package di

import (
	"context"
	"fmt"
	"sync"
	"time"

	"movement-server/internal/api"
	"movement-server/internal/config"
	"movement-server/internal/controller"
	"movement-server/internal/database"
	"movement-server/internal/host"
	"movement-server/internal/interfaces"
	"movement-server/internal/messaging"
	"movement-server/internal/motion"
	"movement-server/internal/perception"
	"movement-server/internal/pose"
	"movement-server/internal/redis"
	"movement-server/internal/sequencer"
	"movement-server/internal/services"
	"movement-server/internal/status"
	"movement-server/internal/utils"

	redisClient "github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

// Container dependency injection container
type Container struct {
	Config *config.Config

	// Infrastructure
	Database   interfaces.DatabaseService
	Cache      interfaces.CacheService
	MQTTClient messaging.Client
	db         *gorm.DB
	redis      *redisClient.Client

	// Domain
	Host       *host.Host
	Pose       *pose.Tracker
	Scans      *perception.Buffer
	Primitives *motion.Primitives
	Sequencer  *sequencer.Sequencer
	Mirror     *status.Mirror
	Controller *controller.Controller

	// Transport
	Router     *messaging.Router
	Subscriber *messaging.Subscriber
	HTTPServer *api.Server

	// Service
	MovementService *MovementService
}

// NewContainer connects to postgres, redis and the MQTT broker and wires the server
func NewContainer(cfg *config.Config) (*Container, error) {
	container := &Container{Config: cfg}

	if err := container.initInfraServices(cfg); err != nil {
		return nil, fmt.Errorf("failed to init infra services: %w", err)
	}

	container.initDomain(cfg)
	container.initTransport(cfg)
	container.MovementService = NewMovementService(container)

	return container, nil
}

func (c *Container) initInfraServices(cfg *config.Config) error {
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		return fmt.Errorf("database init failed: %w", err)
	}
	c.db = db
	c.Database = services.NewDatabaseService(db)

	rc, err := redis.NewRedisClient(cfg)
	if err != nil {
		return fmt.Errorf("redis init failed: %w", err)
	}
	c.redis = rc
	c.Cache = services.NewCacheService(rc)

	mqttClient, err := messaging.NewMQTTClient(cfg)
	if err != nil {
		return fmt.Errorf("mqtt init failed: %w", err)
	}
	c.MQTTClient = mqttClient

	return nil
}

func (c *Container) initDomain(cfg *config.Config) {
	c.Host = host.New()
	c.Pose = pose.NewTracker()
	c.Scans = perception.NewBuffer()
	c.Primitives = motion.NewPrimitives(messaging.NewVelocityPublisher(c.MQTTClient, cfg.RobotID))

	c.Sequencer = sequencer.New(sequencerSettings(cfg), c.Primitives, c.Pose, c.Host, sequencer.SystemClock)
	c.Mirror = status.NewMirror(c.Cache, c.Sequencer, cfg.RobotID, cfg.StatusInterval)

	c.Controller = controller.New(controller.Deps{
		RobotID:   cfg.RobotID,
		Executor:  c.Sequencer,
		Host:      c.Host,
		Pose:      c.Pose,
		Scans:     c.Scans,
		Responder: messaging.NewResponseSender(c.MQTTClient, cfg.RobotID),
		DB:        c.Database,
		Mirror:    c.Mirror,
	})
}

func (c *Container) initTransport(cfg *config.Config) {
	c.Router = messaging.NewRouter(cfg.RobotID, c.Controller, c.Controller)
	c.Subscriber = messaging.NewSubscriber(c.MQTTClient, c.Router, cfg.RobotID)

	if cfg.HTTPAddr != "" {
		c.HTTPServer = api.NewServer(cfg.HTTPAddr, api.NewHandler(c.Controller))
	}
}

func sequencerSettings(cfg *config.Config) sequencer.Settings {
	return sequencer.Settings{
		DriveDuration: cfg.DriveDuration,
		DriveTick:     cfg.DriveTick,
		SettleTick:    cfg.SettleTick,
		RotateTick:    cfg.RotateTick,
		RotateTimeout: cfg.RotateTimeout,
		ResetTimeout:  cfg.ResetTimeout,
	}
}

// Cleanup releases the infrastructure connections
func (c *Container) Cleanup() {
	if c.MQTTClient != nil {
		c.MQTTClient.Disconnect(250)
	}
	if c.redis != nil {
		c.redis.Close()
	}
	if c.db != nil {
		if sqlDB, err := c.db.DB(); err == nil {
			sqlDB.Close()
		}
	}
	utils.Logger.Infof("Container cleanup completed")
}

// =============================================================================
// Movement Service
// =============================================================================

// MovementService lifecycle of the running server
type MovementService struct {
	container *Container

	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewMovementService(container *Container) *MovementService {
	return &MovementService{container: container}
}

// Start recovers state left by a previous process, subscribes to the robot topics and
// starts the host, status mirror and HTTP server
func (s *MovementService) Start(ctx context.Context) error {
	c := s.container
	utils.Logger.Infof("🚀 STARTING Movement Service")

	ctx, s.cancel = context.WithCancel(ctx)

	if err := c.Database.FailAllRunningCommands(c.Config.RobotID, "interrupted by restart"); err != nil {
		utils.Logger.Warnf("Failed to close interrupted commands: %v", err)
	}
	if _, err := c.Mirror.ClearStale(ctx); err != nil {
		utils.Logger.Warnf("Failed to clear stale pending commands: %v", err)
	}

	c.Host.Start(ctx)

	if err := c.Subscriber.SubscribeAll(); err != nil {
		return err
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		c.Mirror.Run(ctx)
	}()

	if c.HTTPServer != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := c.HTTPServer.Start(); err != nil {
				utils.Logger.Errorf("HTTP server stopped: %v", err)
			}
		}()
	}

	utils.Logger.Infof("🎉 Movement Service STARTED Successfully")
	return nil
}

// Stop cancels the command in flight, which leaves the robot stopped, then shuts the
// HTTP server and status mirror down
func (s *MovementService) Stop() {
	s.stopOnce.Do(func() {
		c := s.container
		utils.Logger.Info("🛑 STOPPING Movement Service")

		c.Host.Stop()
		if s.cancel != nil {
			s.cancel()
		}

		if c.HTTPServer != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := c.HTTPServer.Shutdown(ctx); err != nil {
				utils.Logger.Warnf("HTTP server shutdown: %v", err)
			}
		}

		s.wg.Wait()
		utils.Logger.Info("✅ Movement Service STOPPED")
	})
}

// GetHealthStatus connectivity summary
func (s *MovementService) GetHealthStatus() map[string]interface{} {
	return map[string]interface{}{
		"mqtt_connected": s.container.MQTTClient.IsConnected(),
		"timestamp":      time.Now().Format(time.RFC3339),
		"status":         "running",
	}
}

// =============================================================================
// Factory functions (testing)
// =============================================================================

// NewTestContainer wires the server on top of the given collaborators without
// opening any network connection
func NewTestContainer(
	cfg *config.Config,
	database interfaces.DatabaseService,
	cache interfaces.CacheService,
	client messaging.Client,
) *Container {
	container := &Container{
		Config:     cfg,
		Database:   database,
		Cache:      cache,
		MQTTClient: client,
	}

	container.initDomain(cfg)
	container.initTransport(cfg)
	container.MovementService = NewMovementService(container)

	return container
}

// NewMockContainer test container backed by in-memory mocks
func NewMockContainer(cfg *config.Config) *Container {
	return NewTestContainer(
		cfg,
		NewMockDatabaseService(),
		NewMockCacheService(),
		NewMockMessagePublisher(),
	)
}
