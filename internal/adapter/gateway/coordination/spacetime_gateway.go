// Package coordination implements the coordination gateway over the
// external SpacetimeDB CLI.
package coordination

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/agentwire/agentwire/internal/application/port/output"
	"github.com/oklog/ulid/v2"
)

// caller abstracts the CLI runner so tests can capture invocations.
type caller interface {
	Call(ctx context.Context, reducer string, args ...string) (string, error)
	Logs(ctx context.Context) (string, error)
}

// SpacetimeGateway routes coordination calls through the spacetime CLI.
type SpacetimeGateway struct {
	agentID string
	cli     caller
	entropy *ulid.MonotonicEntropy
}

var _ output.CoordinationGateway = (*SpacetimeGateway)(nil)

// New creates a gateway for the given agent identity.
func New(agentID string, cli caller) *SpacetimeGateway {
	return &SpacetimeGateway{
		agentID: agentID,
		cli:     cli,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
}

// Connect probes the database by tailing its log.
func (g *SpacetimeGateway) Connect(ctx context.Context) error {
	if _, err := g.cli.Logs(ctx); err != nil {
		return fmt.Errorf("coordination database unreachable: %w", err)
	}
	return nil
}

// RegisterAgent announces the agent, then registers each capability.
func (g *SpacetimeGateway) RegisterAgent(ctx context.Context, agentType string, capabilities []string) error {
	_, err := g.cli.Call(ctx, "register_agent",
		"--agent_id", g.agentID,
		"--agent_type", agentType,
	)
	if err != nil {
		return err
	}
	for _, name := range capabilities {
		if err := g.RegisterCapability(ctx, name, "", 80); err != nil {
			return err
		}
	}
	return nil
}

// RegisterCapability registers one capability for this agent.
func (g *SpacetimeGateway) RegisterCapability(ctx context.Context, name, description string, proficiency int) error {
	_, err := g.cli.Call(ctx, "register_agent_capability",
		"--agent_id", g.agentID,
		"--capability_name", name,
		"--description", description,
		"--proficiency_level", strconv.Itoa(proficiency),
	)
	return err
}

// SendMessage delivers a payload to another agent. Each call gets a
// fresh ULID correlation id so remote threads can be traced back.
func (g *SpacetimeGateway) SendMessage(ctx context.Context, to, messageType string, payload map[string]any, priority int) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	correlationID := ulid.MustNew(ulid.Timestamp(time.Now()), g.entropy).String()
	_, err = g.cli.Call(ctx, "send_agent_message",
		"--from_agent", g.agentID,
		"--to_agent", to,
		"--message_type", messageType,
		"--payload", string(body),
		"--priority", strconv.Itoa(priority),
		"--correlation_id", correlationID,
	)
	return err
}

// UpdateTaskProgress reports task progress to the coordination board.
func (g *SpacetimeGateway) UpdateTaskProgress(ctx context.Context, taskID string, progress int, note string) error {
	_, err := g.cli.Call(ctx, "update_task_progress",
		"--agent_id", g.agentID,
		"--task_id", taskID,
		"--progress", strconv.Itoa(progress),
		"--notes", note,
	)
	return err
}
