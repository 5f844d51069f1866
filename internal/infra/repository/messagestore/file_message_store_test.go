package messagestore

import (
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/agentwire/agentwire/internal/domain/message"
	"github.com/agentwire/agentwire/internal/domain/repository"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const channelPath = "/home/.agentwire/var/history/dev_messages.json"

func newTestStore(t *testing.T) (*Store, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	store := New(fs, channelPath)
	require.NoError(t, store.Initialize(map[string]any{"environment": "development"}))
	return store, fs
}

func statusMessage(t *testing.T, sender string, state string) *message.Message {
	t.Helper()
	m, err := message.New(sender, message.TypeStatusUpdate, map[string]any{
		"agent_id": sender,
		"state":    state,
		"progress": 0,
	}, nil)
	require.NoError(t, err)
	return m
}

func TestStore_InitializeIsIdempotent(t *testing.T) {
	store, fs := newTestStore(t)

	id, err := store.Append(statusMessage(t, "one", "idle"))
	require.NoError(t, err)

	// a second Initialize must not wipe the channel
	require.NoError(t, store.Initialize(nil))

	msgs, err := store.Find(repository.Filter{})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, id, msgs[0].ID.String())

	exists, _ := afero.Exists(fs, channelPath)
	assert.True(t, exists)
}

func TestStore_AppendAndFind(t *testing.T) {
	store, _ := newTestStore(t)

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := store.Append(statusMessage(t, fmt.Sprintf("agent-%d", i), "busy"))
		require.NoError(t, err)
		ids = append(ids, id)
	}

	msgs, err := store.Find(repository.Filter{})
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	for i, m := range msgs {
		assert.Equal(t, ids[i], m.ID.String(), "insertion order must hold")
	}
}

func TestStore_FindFilters(t *testing.T) {
	store, _ := newTestStore(t)

	// ten messages: alternating senders, mixed types and statuses
	for i := 0; i < 10; i++ {
		sender := "alpha"
		if i%2 == 1 {
			sender = "beta"
		}
		var m *message.Message
		var err error
		if i < 7 {
			m = statusMessage(t, sender, "busy")
		} else {
			m, err = message.New(sender, message.TypeContextUpdate, map[string]any{
				"context_id": "f0db5123-12cd-4f34-9e6d-9f9816d162c6",
				"type":       "add",
				"data":       map[string]any{},
			}, nil)
			require.NoError(t, err)
		}
		id, err := store.Append(m)
		require.NoError(t, err)
		if i < 4 {
			_, err = store.UpdateStatus(id, message.StatusProcessed, nil)
			require.NoError(t, err)
		}
	}

	tests := []struct {
		name   string
		filter repository.Filter
		want   int
	}{
		{"all", repository.Filter{}, 10},
		{"by sender", repository.Filter{Sender: "alpha"}, 5},
		{"by type", repository.Filter{Type: message.TypeContextUpdate}, 3},
		{"by status", repository.Filter{Status: message.StatusProcessed}, 4},
		{"sender and status", repository.Filter{Sender: "alpha", Status: message.StatusProcessed}, 2},
		{"no match", repository.Filter{Sender: "gamma"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msgs, err := store.Find(tt.filter)
			require.NoError(t, err)
			assert.Len(t, msgs, tt.want)
		})
	}
}

func TestStore_FindLimitKeepsNewest(t *testing.T) {
	store, _ := newTestStore(t)

	var ids []string
	for i := 0; i < 3; i++ {
		m, err := message.New("runner", message.TypeTestRequest, map[string]any{
			"test_type": "unit",
			"test_file": fmt.Sprintf("pkg/suite_%d_test.go", i),
			"parameters": map[string]any{
				"environment": "development",
			},
		}, nil)
		require.NoError(t, err)
		id, err := store.Append(m)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	msgs, err := store.Find(repository.Filter{Limit: 2})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, ids[1], msgs[0].ID.String())
	assert.Equal(t, ids[2], msgs[1].ID.String())
}

func TestStore_UpdateStatus(t *testing.T) {
	store, _ := newTestStore(t)

	id, err := store.Append(statusMessage(t, "updater", "busy"))
	require.NoError(t, err)

	found, err := store.UpdateStatus(id, message.StatusProcessed, map[string]any{"processed_by": "tester"})
	require.NoError(t, err)
	assert.True(t, found)

	msgs, err := store.Find(repository.Filter{})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, message.StatusProcessed, msgs[0].Status)
	assert.Equal(t, "tester", msgs[0].Metadata["processed_by"])

	// unknown id: no error, nothing written
	found, err = store.UpdateStatus("0c6a3db1-40cb-4222-ae80-b013a9c164af", message.StatusFailed, nil)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_UpdateStatusMergesMetadata(t *testing.T) {
	store, _ := newTestStore(t)

	m := statusMessage(t, "merge", "busy")
	m.Metadata["origin"] = "test"
	m.Metadata["attempt"] = 1.0
	id, err := store.Append(m)
	require.NoError(t, err)

	_, err = store.UpdateStatus(id, message.StatusFailed, map[string]any{"attempt": 2.0, "reason": "timeout"})
	require.NoError(t, err)

	msgs, err := store.Find(repository.Filter{})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "test", msgs[0].Metadata["origin"])
	assert.Equal(t, 2.0, msgs[0].Metadata["attempt"])
	assert.Equal(t, "timeout", msgs[0].Metadata["reason"])
}

func TestStore_CleanupArchivesOldProcessed(t *testing.T) {
	store, fs := newTestStore(t)

	old := statusMessage(t, "janitor", "idle")
	old.Status = message.StatusProcessed
	old.Timestamp = time.Now().UTC().Add(-8 * 24 * time.Hour).Truncate(time.Second)

	oldPending := statusMessage(t, "janitor", "busy")
	oldPending.Timestamp = old.Timestamp

	fresh := statusMessage(t, "janitor", "idle")
	fresh.Status = message.StatusProcessed

	for _, m := range []*message.Message{old, oldPending, fresh} {
		_, err := store.Append(m)
		require.NoError(t, err)
	}

	result, err := store.Cleanup(7, true)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Removed)
	require.NotEmpty(t, result.ArchiveFile)

	// archive holds exactly the removed message
	data, err := afero.ReadFile(fs, result.ArchiveFile)
	require.NoError(t, err)
	arch, err := message.ParseCollection(data)
	require.NoError(t, err)
	require.Len(t, arch.Messages, 1)
	assert.Equal(t, old.ID, arch.Messages[0].ID)
	assert.Equal(t, channelPath, arch.Metadata["archived_from"])

	// channel keeps pending-but-old and fresh-processed
	msgs, err := store.Find(repository.Filter{})
	require.NoError(t, err)
	assert.Len(t, msgs, 2)
}

func TestStore_CleanupBoundary(t *testing.T) {
	store, _ := newTestStore(t)

	exactly := statusMessage(t, "boundary", "idle")
	exactly.Status = message.StatusProcessed
	exactly.Timestamp = time.Now().UTC().Add(-7 * 24 * time.Hour).Add(time.Minute).Truncate(time.Second)

	over := statusMessage(t, "boundary", "idle")
	over.Status = message.StatusProcessed
	over.Timestamp = time.Now().UTC().Add(-7 * 24 * time.Hour).Add(-time.Second).Truncate(time.Second)

	for _, m := range []*message.Message{exactly, over} {
		_, err := store.Append(m)
		require.NoError(t, err)
	}

	result, err := store.Cleanup(7, true)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Removed)

	msgs, err := store.Find(repository.Filter{})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, exactly.ID, msgs[0].ID)
}

func TestStore_CleanupWithoutArchive(t *testing.T) {
	store, fs := newTestStore(t)

	old := statusMessage(t, "janitor", "idle")
	old.Status = message.StatusProcessed
	old.Timestamp = time.Now().UTC().Add(-30 * 24 * time.Hour).Truncate(time.Second)
	_, err := store.Append(old)
	require.NoError(t, err)

	result, err := store.Cleanup(7, false)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Removed)
	assert.Empty(t, result.ArchiveFile)

	// no archive file written next to the channel
	entries, err := afero.ReadDir(fs, "/home/.agentwire/var/history")
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), "archive_")
	}
}

func TestStore_CleanupIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t)

	old := statusMessage(t, "janitor", "idle")
	old.Status = message.StatusProcessed
	old.Timestamp = time.Now().UTC().Add(-8 * 24 * time.Hour).Truncate(time.Second)
	_, err := store.Append(old)
	require.NoError(t, err)

	first, err := store.Cleanup(7, true)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Removed)

	second, err := store.Cleanup(7, true)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Removed)
	assert.Empty(t, second.ArchiveFile)
}

func TestStore_ReadBackProgressValue(t *testing.T) {
	store, _ := newTestStore(t)

	m, err := message.New("agentX", message.TypeStatusUpdate, map[string]any{
		"agent_id": "X",
		"state":    "busy",
		"progress": 42.5,
	}, nil)
	require.NoError(t, err)
	_, err = store.Append(m)
	require.NoError(t, err)

	msgs, err := store.Find(repository.Filter{Sender: "agentX"})
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, message.StatusPending, msgs[0].Status)
	content, ok := msgs[0].Content.(*message.StatusUpdateContent)
	require.True(t, ok)
	assert.Equal(t, 42.5, content.Progress)
}

func TestStore_CleanupEmptyChannelIsNoop(t *testing.T) {
	store, _ := newTestStore(t)
	result, err := store.Cleanup(7, true)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Removed)
	assert.Empty(t, result.ArchiveFile)
}

func TestStore_CorruptFileIsQuarantined(t *testing.T) {
	store, fs := newTestStore(t)
	require.NoError(t, afero.WriteFile(fs, channelPath, []byte("{ not json"), 0o644))

	// the read must not fail; the channel restarts empty
	msgs, err := store.Find(repository.Filter{})
	require.NoError(t, err)
	assert.Empty(t, msgs)

	backup := "/home/.agentwire/var/history/dev_messages.backup.json"
	data, err := afero.ReadFile(fs, backup)
	require.NoError(t, err)
	assert.Equal(t, "{ not json", string(data))

	// the next write starts a fresh collection
	_, err = store.Append(statusMessage(t, "phoenix", "idle"))
	require.NoError(t, err)
	msgs, err = store.Find(repository.Filter{})
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestStore_QuarantineOverwritesPreviousBackup(t *testing.T) {
	store, fs := newTestStore(t)
	backup := "/home/.agentwire/var/history/dev_messages.backup.json"
	require.NoError(t, afero.WriteFile(fs, backup, []byte("earlier"), 0o644))
	require.NoError(t, afero.WriteFile(fs, channelPath, []byte("newer corruption"), 0o644))

	_, err := store.Find(repository.Filter{})
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, backup)
	require.NoError(t, err)
	assert.Equal(t, "newer corruption", string(data))
}

func TestStore_SchemaViolationCountsAsCorruption(t *testing.T) {
	store, fs := newTestStore(t)
	coll := map[string]any{
		"messages": []any{map[string]any{"id": "not-a-uuid"}},
		"version":  "1.1.0",
	}
	data, err := json.Marshal(coll)
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, channelPath, data, 0o644))

	msgs, err := store.Find(repository.Filter{})
	require.NoError(t, err)
	assert.Empty(t, msgs)

	exists, _ := afero.Exists(fs, "/home/.agentwire/var/history/dev_messages.backup.json")
	assert.True(t, exists)
}

func TestStore_ValidateAll(t *testing.T) {
	store, fs := newTestStore(t)

	good := statusMessage(t, "checker", "idle")
	goodJSON, err := json.Marshal(good)
	require.NoError(t, err)

	// hand-build a collection with one good and one broken message,
	// mimicking an out-of-band edit
	raw := fmt.Sprintf(`{
		"messages": [%s, {"id": "0c6a3db1-40cb-4222-ae80-b013a9c164af", "sender": "x"}],
		"version": "1.1.0",
		"metadata": {}
	}`, goodJSON)
	require.NoError(t, afero.WriteFile(fs, channelPath, []byte(raw), 0o644))

	report, err := store.ValidateAll()
	require.NoError(t, err)
	assert.Equal(t, 2, report.Total)
	assert.Equal(t, 1, report.Valid)
	assert.Equal(t, 1, report.Invalid)
	require.Len(t, report.Errors, 1)
	assert.Equal(t, 1, report.Errors[0].Index)
	assert.Equal(t, "0c6a3db1-40cb-4222-ae80-b013a9c164af", report.Errors[0].ID)

	// per-message validation must not quarantine the file
	exists, _ := afero.Exists(fs, "/home/.agentwire/var/history/dev_messages.backup.json")
	assert.False(t, exists)
}

func TestStore_ValidateAllMissingFile(t *testing.T) {
	store := New(afero.NewMemMapFs(), channelPath)
	report, err := store.ValidateAll()
	require.NoError(t, err)
	assert.Equal(t, 0, report.Total)
}

func TestStore_WriteReleasesLock(t *testing.T) {
	store, fs := newTestStore(t)
	_, err := store.Append(statusMessage(t, "locker", "idle"))
	require.NoError(t, err)

	exists, _ := afero.Exists(fs, channelPath+".lock")
	assert.False(t, exists, "lock file must be released after the write")
}
