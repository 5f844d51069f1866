package message

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"
)

// Version is the current collection format version.
const Version = "1.1.0"

var semverPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// Collection is the file-backed aggregate for one channel: the ordered
// message sequence plus file-level metadata. Insertion order is
// chronological append order and is never reordered.
type Collection struct {
	Messages    []*Message
	LastUpdated time.Time
	Version     string
	Metadata    map[string]any
}

// NewCollection returns an empty collection at the current format
// version.
func NewCollection(metadata map[string]any) *Collection {
	if metadata == nil {
		metadata = map[string]any{}
	}
	return &Collection{
		Messages:    []*Message{},
		LastUpdated: time.Now().UTC().Truncate(time.Second),
		Version:     Version,
		Metadata:    metadata,
	}
}

type collectionJSON struct {
	Messages    []json.RawMessage `json:"messages"`
	LastUpdated string            `json:"last_updated"`
	Version     string            `json:"version"`
	Metadata    map[string]any    `json:"metadata"`
}

// MarshalJSON serializes the collection in the persisted wire format.
func (c *Collection) MarshalJSON() ([]byte, error) {
	msgs := make([]json.RawMessage, 0, len(c.Messages))
	for _, m := range c.Messages {
		b, err := json.Marshal(m)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, b)
	}
	meta := c.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	return json.Marshal(collectionJSON{
		Messages:    msgs,
		LastUpdated: c.LastUpdated.UTC().Format(TimeLayout),
		Version:     c.Version,
		Metadata:    meta,
	})
}

// ParseCollection decodes and validates a persisted collection. Every
// contained message is re-validated against its declared type; any
// schema violation makes the whole file invalid, which the store treats
// as corruption. Unlike messages, unknown top-level keys are tolerated.
func ParseCollection(data []byte) (*Collection, error) {
	var raw collectionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid collection JSON: %w", err)
	}

	c := &Collection{
		Messages: make([]*Message, 0, len(raw.Messages)),
		Version:  raw.Version,
		Metadata: raw.Metadata,
	}
	if c.Version == "" {
		c.Version = Version
	} else if !semverPattern.MatchString(c.Version) {
		return nil, fmt.Errorf("invalid collection version %q", c.Version)
	}
	if c.Metadata == nil {
		c.Metadata = map[string]any{}
	}
	if raw.LastUpdated != "" {
		ts, err := parseTimestamp(raw.LastUpdated)
		if err != nil {
			return nil, fmt.Errorf("invalid last_updated timestamp %q", raw.LastUpdated)
		}
		c.LastUpdated = ts
	}

	for i, rawMsg := range raw.Messages {
		var m Message
		if err := json.Unmarshal(rawMsg, &m); err != nil {
			return nil, fmt.Errorf("message %d: %w", i, err)
		}
		c.Messages = append(c.Messages, &m)
	}
	return c, nil
}

// Touch updates the last-write timestamp.
func (c *Collection) Touch() {
	c.LastUpdated = time.Now().UTC().Truncate(time.Second)
}

// RawMessages decodes only the structural JSON of a collection,
// returning each message as an undecoded object. Used for defensive
// per-message re-validation where one bad message must not hide the
// rest of the file.
func RawMessages(data []byte) ([]map[string]any, error) {
	var raw struct {
		Messages []map[string]any `json:"messages"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid collection JSON: %w", err)
	}
	return raw.Messages, nil
}
