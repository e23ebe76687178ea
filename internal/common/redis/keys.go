// internal/common/redis/keys.go
package redis

import "fmt"

// Redis key patterns
const (
	ControllerStatusPattern = "controller_status:%s"
	PendingCommandPattern   = "pending_command:%s"
)

// ControllerStatus key of the status mirror hash for a robot
func ControllerStatus(robotID string) string {
	return fmt.Sprintf(ControllerStatusPattern, robotID)
}

// PendingCommand key of the in-flight command hash
func PendingCommand(requestID string) string {
	return fmt.Sprintf(PendingCommandPattern, requestID)
}

// AllPendingCommands pattern matching every in-flight command key
func AllPendingCommands() string {
	return "pending_command:*"
}
