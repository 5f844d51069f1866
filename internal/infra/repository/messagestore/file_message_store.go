// Package messagestore is the file-backed implementation of the
// message repository: one JSON collection file per channel, rewritten
// whole on every mutation.
package messagestore

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/agentwire/agentwire/internal/app"
	"github.com/agentwire/agentwire/internal/domain/message"
	"github.com/agentwire/agentwire/internal/domain/repository"
	"github.com/agentwire/agentwire/internal/infra/persistence/file"
	"github.com/spf13/afero"
)

// Store owns the channel file at path. Every operation is a full
// read-modify-write cycle; no in-memory state is kept between calls.
type Store struct {
	fs   afero.Fs
	path string
}

var _ repository.MessageRepository = (*Store)(nil)

// New creates a store for the given channel file.
func New(fs afero.Fs, path string) *Store {
	return &Store{fs: fs, path: path}
}

// Path returns the channel file path.
func (s *Store) Path() string { return s.path }

// Initialize writes an empty collection if the channel file is absent.
// Calling it on an initialized channel is a no-op.
func (s *Store) Initialize(metadata map[string]any) error {
	exists, err := afero.Exists(s.fs, s.path)
	if err != nil {
		return fmt.Errorf("stat channel file: %w", err)
	}
	if exists {
		return nil
	}
	return s.save(message.NewCollection(metadata))
}

// Append adds the message and rewrites the channel file.
func (s *Store) Append(m *message.Message) (string, error) {
	release, err := file.AcquireLock(s.fs, s.lockPath())
	if err != nil {
		return "", err
	}
	defer release()

	coll, _, err := s.load()
	if err != nil {
		return "", err
	}
	coll.Messages = append(coll.Messages, m)
	if err := s.save(coll); err != nil {
		return "", err
	}
	return m.ID.String(), nil
}

// Find returns the messages matching every set filter predicate, in
// insertion order. Limit keeps the most recent N without reordering.
func (s *Store) Find(f repository.Filter) ([]*message.Message, error) {
	coll, _, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]*message.Message, 0, len(coll.Messages))
	for _, m := range coll.Messages {
		if f.Matches(m) {
			out = append(out, m)
		}
	}
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[len(out)-f.Limit:]
	}
	return out, nil
}

// UpdateStatus sets the status of the message with the given id and
// shallow-merges the metadata patch (new keys override). A missing id
// returns false with nothing written.
func (s *Store) UpdateStatus(id string, status message.Status, patch map[string]any) (bool, error) {
	release, err := file.AcquireLock(s.fs, s.lockPath())
	if err != nil {
		return false, err
	}
	defer release()

	coll, _, err := s.load()
	if err != nil {
		return false, err
	}
	for _, m := range coll.Messages {
		if m.ID.String() != id {
			continue
		}
		m.Status = status
		if m.Metadata == nil {
			m.Metadata = map[string]any{}
		}
		for k, v := range patch {
			m.Metadata[k] = v
		}
		if err := s.save(coll); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// Cleanup archives processed messages strictly older than the
// retention window and rewrites the channel with the rest. Pending and
// failed messages never age out.
func (s *Store) Cleanup(retentionDays int, archive bool) (*repository.CleanupResult, error) {
	release, err := file.AcquireLock(s.fs, s.lockPath())
	if err != nil {
		return nil, err
	}
	defer release()

	coll, _, err := s.load()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	cutoff := message.Cutoff(now, retentionDays)
	current, old := message.Partition(coll.Messages, cutoff)

	result := &repository.CleanupResult{Removed: len(old)}

	if archive && len(old) > 0 {
		archivePath := filepath.Join(filepath.Dir(s.path),
			fmt.Sprintf("archive_%s.json", now.Format("20060102_150405")))
		archColl := message.NewCollection(map[string]any{
			"archived_from": s.path,
			"archive_date":  now.Format(message.TimeLayout),
		})
		archColl.Version = coll.Version
		archColl.Messages = old
		data, err := json.MarshalIndent(archColl, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal archive: %w", err)
		}
		if err := file.WriteFileAtomic(s.fs, archivePath, data); err != nil {
			return nil, fmt.Errorf("write archive: %w", err)
		}
		result.ArchiveFile = archivePath
		app.GetLogger().Info("archived %d messages to %s", len(old), archivePath)
	}

	coll.Messages = current
	if err := s.save(coll); err != nil {
		return nil, err
	}
	return result, nil
}

// ValidateAll re-validates every stored message against its declared
// type's contract. Unlike the regular read path it tolerates invalid
// messages, reporting each one instead of quarantining the file; only
// structurally unreadable JSON triggers recovery.
func (s *Store) ValidateAll() (*repository.ValidationReport, error) {
	report := &repository.ValidationReport{Errors: []repository.InvalidMessage{}}

	exists, err := afero.Exists(s.fs, s.path)
	if err != nil {
		return nil, fmt.Errorf("stat channel file: %w", err)
	}
	if !exists {
		return report, nil
	}
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return nil, fmt.Errorf("read channel file: %w", err)
	}

	raws, err := message.RawMessages(data)
	if err != nil {
		s.quarantine(err)
		return report, nil
	}

	for i, raw := range raws {
		report.Total++
		if _, err := message.FromMap(raw); err != nil {
			report.Invalid++
			id, _ := raw["id"].(string)
			report.Errors = append(report.Errors, repository.InvalidMessage{
				Index: i,
				ID:    id,
				Error: err.Error(),
			})
		} else {
			report.Valid++
		}
	}
	return report, nil
}

// load reads and validates the channel file. A missing file yields an
// empty collection. A corrupt file (bad JSON or schema violation) is
// quarantined to a .backup.json sibling and the channel restarts
// empty; the recovery is reported through the logger and the returned
// flag, never as an error.
func (s *Store) load() (coll *message.Collection, recovered bool, err error) {
	exists, err := afero.Exists(s.fs, s.path)
	if err != nil {
		return nil, false, fmt.Errorf("stat channel file: %w", err)
	}
	if !exists {
		return message.NewCollection(nil), false, nil
	}

	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		return nil, false, fmt.Errorf("read channel file: %w", err)
	}

	coll, perr := message.ParseCollection(data)
	if perr != nil {
		s.quarantine(perr)
		return message.NewCollection(nil), true, nil
	}
	return coll, false, nil
}

// quarantine moves the corrupt channel file aside, overwriting any
// previous backup. Failure to move it is logged but never propagated;
// an unreadable file must not crash the caller.
func (s *Store) quarantine(cause error) {
	backup := s.backupPath()
	app.GetLogger().Warn("corrupted channel file %s: %v", s.path, cause)
	_ = s.fs.Remove(backup)
	if err := s.fs.Rename(s.path, backup); err != nil {
		app.GetLogger().Error("failed to quarantine %s: %v", s.path, err)
		return
	}
	app.GetLogger().Warn("channel reset; corrupt file backed up to %s", backup)
}

func (s *Store) save(coll *message.Collection) error {
	coll.Touch()
	data, err := json.MarshalIndent(coll, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal collection: %w", err)
	}
	return file.WriteFileAtomic(s.fs, s.path, data)
}

func (s *Store) lockPath() string { return s.path + ".lock" }

func (s *Store) backupPath() string {
	return strings.TrimSuffix(s.path, ".json") + ".backup.json"
}
