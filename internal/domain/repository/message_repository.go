package repository

import (
	"github.com/agentwire/agentwire/internal/domain/message"
)

// Filter narrows a channel read. Zero-value fields match everything;
// set fields are ANDed together. Limit keeps only the newest N matches.
type Filter struct {
	Status message.Status
	Type   message.Type
	Sender string
	Limit  int
}

// Matches reports whether msg satisfies every set field of the filter.
// Limit is applied by the store, not here.
func (f Filter) Matches(msg *message.Message) bool {
	if f.Status != "" && msg.Status != f.Status {
		return false
	}
	if f.Type != "" && msg.Type != f.Type {
		return false
	}
	if f.Sender != "" && msg.Sender != f.Sender {
		return false
	}
	return true
}

// InvalidMessage describes one message that failed re-validation.
type InvalidMessage struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
	Error string `json:"error"`
}

// ValidationReport summarizes a full channel re-validation.
type ValidationReport struct {
	Total   int              `json:"total"`
	Valid   int              `json:"valid"`
	Invalid int              `json:"invalid"`
	Errors  []InvalidMessage `json:"errors,omitempty"`
}

// CleanupResult reports the outcome of a retention pass.
type CleanupResult struct {
	Removed     int    `json:"removed"`
	ArchiveFile string `json:"archive_file,omitempty"`
}

// MessageRepository is the persistence port for a message channel.
type MessageRepository interface {
	// Initialize creates the channel file if it does not exist yet.
	// Metadata is stored on the collection when the file is created.
	Initialize(metadata map[string]any) error

	// Append stores an already-constructed message and returns its ID.
	Append(msg *message.Message) (string, error)

	// Find returns messages matching the filter in channel order.
	Find(f Filter) ([]*message.Message, error)

	// UpdateStatus sets the status (and merges the metadata patch) of the
	// message with the given ID. It returns false with a nil error when
	// no such message exists.
	UpdateStatus(id string, status message.Status, patch map[string]any) (bool, error)

	// Cleanup archives processed messages strictly older than the
	// retention window. When archive is false the messages are dropped.
	Cleanup(retentionDays int, archive bool) (*CleanupResult, error)

	// ValidateAll re-checks every stored message against its type schema.
	ValidateAll() (*ValidationReport, error)
}
