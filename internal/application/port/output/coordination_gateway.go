// Package output defines the outbound ports of the application layer.
package output

import "context"

// CoordinationGateway mirrors local operations to the remote
// multiplayer coordination database. It is a fire-and-forget side
// channel: callers log failures and carry on, and a failed remote call
// never rolls back the local operation it mirrored.
type CoordinationGateway interface {
	// Connect probes connectivity to the coordination database.
	Connect(ctx context.Context) error

	// RegisterAgent announces this agent and its capabilities.
	RegisterAgent(ctx context.Context, agentType string, capabilities []string) error

	// RegisterCapability registers a single capability with a
	// proficiency level between 1 and 100.
	RegisterCapability(ctx context.Context, name, description string, proficiency int) error

	// SendMessage delivers a message to another agent. Priority runs
	// 1 (lowest) to 5 (highest).
	SendMessage(ctx context.Context, to, messageType string, payload map[string]any, priority int) error

	// UpdateTaskProgress reports progress (0-100) on an assigned task.
	UpdateTaskProgress(ctx context.Context, taskID string, progress int, note string) error
}
