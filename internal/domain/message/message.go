// Package message defines the typed agent-to-agent message protocol:
// the envelope, the per-type content contracts, and the validation
// engine that enforces them.
//
// A message's content shape is fully determined by its declared type.
// Content is validated at construction and re-validated on every read
// from storage, because the backing file is plain JSON that can be
// edited out-of-band.
package message

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

// TimeLayout is the wire format for all timestamps: UTC, second
// precision, literal Z suffix.
const TimeLayout = "2006-01-02T15:04:05Z"

// Status is the mutable lifecycle field of a message.
type Status string

const (
	StatusPending   Status = "pending"
	StatusProcessed Status = "processed"
	StatusFailed    Status = "failed"
)

// ParseStatus converts a raw string into a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusProcessed, StatusFailed:
		return Status(s), nil
	}
	return "", fmt.Errorf("invalid status %q (expected pending, processed or failed)", s)
}

// Type identifies the content contract of a message.
type Type string

const (
	TypeTestRequest         Type = "test_request"
	TypeTestResult          Type = "test_result"
	TypeStatusUpdate        Type = "status_update"
	TypeContextUpdate       Type = "context_update"
	TypeWorkflowRequest     Type = "workflow_request"
	TypeValidationRequest   Type = "validation_request"
	TypeDocumentationUpdate Type = "documentation_update"
)

// Types lists every supported message type in declaration order.
var Types = []Type{
	TypeTestRequest,
	TypeTestResult,
	TypeStatusUpdate,
	TypeContextUpdate,
	TypeWorkflowRequest,
	TypeValidationRequest,
	TypeDocumentationUpdate,
}

// ParseType converts a raw string into a Type.
func ParseType(s string) (Type, error) {
	for _, t := range Types {
		if Type(s) == t {
			return t, nil
		}
	}
	return "", fmt.Errorf("invalid message type %q", s)
}

var agentIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// NormalizeAgentID applies NFKC normalization and trims surrounding
// whitespace so that visually identical identifiers compare equal.
func NormalizeAgentID(s string) string {
	return norm.NFKC.String(strings.TrimSpace(s))
}

// Message is the atomic unit of communication. Envelope fields other
// than Status and Metadata are immutable after construction.
type Message struct {
	ID        uuid.UUID
	Timestamp time.Time
	Sender    string
	Type      Type
	Content   Content
	Status    Status
	Metadata  map[string]any
}

// New constructs a validated message with a fresh ID, the current UTC
// time truncated to seconds, and status pending. The content map is
// decoded against the contract of the given type; on violation the
// returned error is a *ValidationError listing every problem.
func New(sender string, t Type, content map[string]any, metadata map[string]any) (*Message, error) {
	var violations []FieldError

	sender = NormalizeAgentID(sender)
	if sender == "" {
		violations = append(violations, FieldError{Field: "sender", Message: "missing required field"})
	} else if !agentIDPattern.MatchString(sender) {
		violations = append(violations, FieldError{Field: "sender", Message: "must match [a-zA-Z0-9_-]+"})
	}

	c, cerrs := decodeContent(t, content)
	violations = append(violations, cerrs...)

	if err := newValidationError(violations); err != nil {
		return nil, err
	}

	if metadata == nil {
		metadata = map[string]any{}
	}
	return &Message{
		ID:        uuid.New(),
		Timestamp: time.Now().UTC().Truncate(time.Second),
		Sender:    sender,
		Type:      t,
		Content:   c,
		Status:    StatusPending,
		Metadata:  metadata,
	}, nil
}

type messageJSON struct {
	ID        string         `json:"id"`
	Timestamp string         `json:"timestamp"`
	Sender    string         `json:"sender"`
	Type      Type           `json:"type"`
	Content   Content        `json:"content"`
	Status    Status         `json:"status"`
	Metadata  map[string]any `json:"metadata"`
}

// MarshalJSON serializes the message in the persisted wire format.
func (m *Message) MarshalJSON() ([]byte, error) {
	meta := m.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	return json.Marshal(messageJSON{
		ID:        m.ID.String(),
		Timestamp: m.Timestamp.UTC().Format(TimeLayout),
		Sender:    m.Sender,
		Type:      m.Type,
		Content:   m.Content,
		Status:    m.Status,
		Metadata:  meta,
	})
}

// UnmarshalJSON decodes and fully re-validates a persisted message.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	decoded, err := FromMap(raw)
	if err != nil {
		return err
	}
	*m = *decoded
	return nil
}

// envelope keys accepted on the wire. Anything else is a violation;
// the schema is deliberately strict with no extension field.
var envelopeKeys = map[string]bool{
	"id": true, "timestamp": true, "sender": true, "type": true,
	"content": true, "status": true, "metadata": true,
}

// FromMap validates a raw decoded JSON object as a message. All
// envelope and content violations are collected into a single
// *ValidationError.
func FromMap(raw map[string]any) (*Message, error) {
	var violations []FieldError
	add := func(field, msg string) {
		violations = append(violations, FieldError{Field: field, Message: msg})
	}

	for k := range raw {
		if !envelopeKeys[k] {
			add(k, "unknown field")
		}
	}

	msg := &Message{Metadata: map[string]any{}}

	if v, ok := stringValue(raw, "id", &violations); ok {
		id, err := uuid.Parse(v)
		if err != nil {
			add("id", "must be a UUID")
		} else {
			msg.ID = id
		}
	}
	if v, ok := stringValue(raw, "timestamp", &violations); ok {
		ts, err := parseTimestamp(v)
		if err != nil {
			add("timestamp", "must be an ISO-8601 UTC timestamp")
		} else {
			msg.Timestamp = ts
		}
	}
	if v, ok := stringValue(raw, "sender", &violations); ok {
		if !agentIDPattern.MatchString(v) {
			add("sender", "must match [a-zA-Z0-9_-]+")
		}
		msg.Sender = v
	}

	var typeKnown bool
	if v, ok := stringValue(raw, "type", &violations); ok {
		t, err := ParseType(v)
		if err != nil {
			add("type", err.Error())
		} else {
			msg.Type = t
			typeKnown = true
		}
	}

	if v, ok := stringValue(raw, "status", &violations); ok {
		st, err := ParseStatus(v)
		if err != nil {
			add("status", err.Error())
		} else {
			msg.Status = st
		}
	}

	if v, ok := raw["metadata"]; ok && v != nil {
		meta, ok := v.(map[string]any)
		if !ok {
			add("metadata", "must be an object")
		} else {
			msg.Metadata = meta
		}
	}

	content, ok := raw["content"]
	if !ok {
		add("content", "missing required field")
	} else if typeKnown {
		obj, isObj := content.(map[string]any)
		if !isObj {
			add("content", "must be an object")
		} else {
			c, cerrs := decodeContent(msg.Type, obj)
			violations = append(violations, prefixErrors("content", cerrs)...)
			msg.Content = c
		}
	}

	if err := newValidationError(violations); err != nil {
		return nil, err
	}
	return msg, nil
}

// stringValue fetches a required string envelope field, recording a
// violation when it is absent or of the wrong type.
func stringValue(raw map[string]any, key string, violations *[]FieldError) (string, bool) {
	v, ok := raw[key]
	if !ok {
		*violations = append(*violations, FieldError{Field: key, Message: "missing required field"})
		return "", false
	}
	s, ok := v.(string)
	if !ok {
		*violations = append(*violations, FieldError{Field: key, Message: "must be a string"})
		return "", false
	}
	return s, true
}

func prefixErrors(prefix string, errs []FieldError) []FieldError {
	out := make([]FieldError, len(errs))
	for i, e := range errs {
		field := prefix
		if e.Field != "" {
			field = prefix + "." + e.Field
		}
		out[i] = FieldError{Field: field, Message: e.Message}
	}
	return out
}

// parseTimestamp accepts the canonical second-precision Z format and,
// for tolerance with hand-edited files, plain RFC3339.
func parseTimestamp(s string) (time.Time, error) {
	if ts, err := time.Parse(TimeLayout, s); err == nil {
		return ts, nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return ts.UTC(), nil
}
