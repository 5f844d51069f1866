// Package service holds the application services tying the domain to
// its ports.
package service

import (
	"context"
	"fmt"

	"github.com/agentwire/agentwire/internal/app"
	appconfig "github.com/agentwire/agentwire/internal/app/config"
	"github.com/agentwire/agentwire/internal/application/port/output"
	"github.com/agentwire/agentwire/internal/domain/message"
	"github.com/agentwire/agentwire/internal/domain/repository"
)

// Protocol is one agent's handle on a communication channel. It is an
// explicit object constructed with its configuration and passed around
// by the callers; there is no ambient singleton.
type Protocol struct {
	agentID string
	cfg     appconfig.Config
	store   repository.MessageRepository
	bridge  output.CoordinationGateway // nil when coordination is disabled
}

// Option configures a Protocol.
type Option func(*Protocol)

// WithBridge attaches a coordination gateway; sends are mirrored to it
// fire-and-forget.
func WithBridge(b output.CoordinationGateway) Option {
	return func(p *Protocol) { p.bridge = b }
}

// NewProtocol builds a protocol handle for the given agent identity.
// The agent id is NFKC-normalized before use.
func NewProtocol(agentID string, cfg appconfig.Config, store repository.MessageRepository, opts ...Option) (*Protocol, error) {
	agentID = message.NormalizeAgentID(agentID)
	if agentID == "" {
		return nil, fmt.Errorf("agent id must not be empty")
	}
	p := &Protocol{agentID: agentID, cfg: cfg, store: store}
	for _, opt := range opts {
		opt(p)
	}
	if err := store.Initialize(map[string]any{
		"agent_id":    agentID,
		"environment": cfg.Environment(),
	}); err != nil {
		return nil, fmt.Errorf("initialize channel: %w", err)
	}
	return p, nil
}

// AgentID returns the normalized agent identity used as sender.
func (p *Protocol) AgentID() string { return p.agentID }

// Send validates and appends a message, then mirrors it to the
// coordination bridge when one is attached. The local append is never
// rolled back on bridge failure; the failure is only logged.
func (p *Protocol) Send(ctx context.Context, t message.Type, content map[string]any, target string, metadata map[string]any) (string, error) {
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadata["created_by"] = p.agentID

	m, err := message.New(p.agentID, t, content, metadata)
	if err != nil {
		return "", err
	}

	id, err := p.store.Append(m)
	if err != nil {
		return "", err
	}

	if p.bridge != nil {
		to := target
		if to == "" {
			to = "broadcast"
		}
		if err := p.bridge.SendMessage(ctx, to, string(t), content, 1); err != nil {
			app.GetLogger().Warn("coordination mirror failed for %s: %v", id, err)
		}
	}
	return id, nil
}

// Messages returns the channel's messages narrowed by the filter.
func (p *Protocol) Messages(f repository.Filter) ([]*message.Message, error) {
	return p.store.Find(f)
}

// UpdateStatus transitions a message's lifecycle status. The boolean
// is false when the id is unknown.
func (p *Protocol) UpdateStatus(id string, status message.Status, patch map[string]any) (bool, error) {
	return p.store.UpdateStatus(id, status, patch)
}

// Cleanup runs a retention sweep. days <= 0 uses the configured
// retention window.
func (p *Protocol) Cleanup(days int, archive bool) (*repository.CleanupResult, error) {
	if days <= 0 {
		days = p.cfg.RetentionDays()
	}
	return p.store.Cleanup(days, archive)
}

// ValidateAll re-validates the whole channel.
func (p *Protocol) ValidateAll() (*repository.ValidationReport, error) {
	return p.store.ValidateAll()
}
