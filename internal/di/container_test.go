package di

import (
	"context"
	"encoding/json"
	"math"
	"testing"
	"time"

	"movement-server/internal/common/constants"
	"movement-server/internal/config"
	"movement-server/internal/controller"
	"movement-server/internal/models"
)

func testConfig() *config.Config {
	return &config.Config{
		RobotID:        "tb3",
		DriveDuration:  50 * time.Millisecond,
		DriveTick:      10 * time.Millisecond,
		SettleTick:     10 * time.Millisecond,
		RotateTick:     10 * time.Millisecond,
		StatusInterval: 10 * time.Millisecond,
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

func TestMockContainerWiring(t *testing.T) {
	container := NewMockContainer(testConfig())
	client := container.MQTTClient.(*MockMessagePublisher)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := container.MovementService.Start(ctx); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer container.MovementService.Stop()

	if len(client.subscriptions) != 4 {
		t.Errorf("Expected 4 subscriptions, got %d", len(client.subscriptions))
	}

	t.Run("odometry reaches the tracker", func(t *testing.T) {
		var odom models.OdometryMessage
		odom.Pose.Pose.Orientation = models.Quaternion{Z: math.Sin(math.Pi / 4), W: math.Cos(math.Pi / 4)}
		payload, _ := json.Marshal(odom)

		if err := client.Deliver(constants.RobotTopic("tb3", constants.TopicOdom), payload); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		waitFor(t, "pose update", func() bool { return container.Pose.Updates() > 0 })

		if yaw := container.Pose.Yaw(); math.Abs(yaw-math.Pi/2) > 1e-6 {
			t.Errorf("Expected yaw π/2, got %f", yaw)
		}
	})

	t.Run("stop over MQTT is answered", func(t *testing.T) {
		payload, _ := json.Marshal(models.MovementRequest{ID: "stop-1", Move: constants.MoveStop})
		client.Deliver(constants.RobotTopic("tb3", constants.TopicMovementRequest), payload)

		responseTopic := constants.RobotTopic("tb3", constants.TopicMovementResponse)
		waitFor(t, "movement response", func() bool { return len(client.GetPublishedMessages(responseTopic)) > 0 })

		var resp models.MovementResponse
		json.Unmarshal(client.GetPublishedMessages(responseTopic)[0].Payload(), &resp)
		if resp.ID != "stop-1" || !resp.Success {
			t.Errorf("Unexpected response %+v", resp)
		}

		twists := client.GetPublishedMessages(constants.RobotTopic("tb3", constants.TopicCmdVel))
		if len(twists) == 0 {
			t.Fatal("Expected a velocity command on cmd_vel")
		}
		var twist models.TwistMessage
		json.Unmarshal(twists[len(twists)-1].Payload(), &twist)
		if twist.Linear.X != 0 || twist.Angular.Z != 0 {
			t.Errorf("Expected zero twist, got %+v", twist)
		}
	})

	t.Run("history is recorded", func(t *testing.T) {
		db := container.Database.(*MockDatabaseService)
		waitFor(t, "completed record", func() bool {
			r := db.GetLastRecord()
			return r != nil && r.Status == constants.CommandStatusSuccess
		})
		if r := db.GetLastRecord(); r.RequestID != "stop-1" || r.Source != controller.SourceMQTT {
			t.Errorf("Unexpected record %+v", r)
		}
	})

	t.Run("status is mirrored", func(t *testing.T) {
		cache := container.Cache.(*MockCacheService)
		waitFor(t, "status hash", func() bool {
			fields, _ := cache.HGetAll(context.Background(), "controller_status:tb3")
			return fields["figure_state"] != ""
		})
	})
}

func TestStartClosesInterruptedCommands(t *testing.T) {
	container := NewMockContainer(testConfig())
	db := container.Database.(*MockDatabaseService)
	cache := container.Cache.(*MockCacheService)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db.CreateCommandRecord(&models.CommandRecord{RequestID: "old", RobotID: "tb3", Status: constants.CommandStatusRunning})
	cache.HSet(ctx, "pending_command:old", "robot_id", "tb3")

	if err := container.MovementService.Start(ctx); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	defer container.MovementService.Stop()

	if r := db.GetLastRecord(); r.Status != constants.CommandStatusFailure {
		t.Errorf("Expected interrupted command marked FAILURE, got %s", r.Status)
	}
	if fields, _ := cache.HGetAll(ctx, "pending_command:old"); len(fields) != 0 {
		t.Errorf("Expected stale pending marker cleared, got %v", fields)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	container := NewMockContainer(testConfig())
	ctx, cancel := context.WithCancel(context.Background())

	if err := container.MovementService.Start(ctx); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	cancel()
	container.MovementService.Stop()
	container.MovementService.Stop()
	container.Cleanup()

	if container.MQTTClient.IsConnected() {
		t.Errorf("Expected MQTT client disconnected after cleanup")
	}
}
