package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/agentwire/agentwire/internal/app"
	"github.com/agentwire/agentwire/internal/domain/message"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// execute runs the CLI with a fresh root command against the given home.
func execute(t *testing.T, home string, args ...string) error {
	t.Helper()
	rootOpts = rootFlags{}
	root := NewRoot()
	root.SetArgs(append(args, "--home", home, "--agent-id", "cli-tester"))
	return root.Execute()
}

func readChannel(t *testing.T, home string) *message.Collection {
	t.Helper()
	path := filepath.Join(home, "var", "history", "dev_messages.json")
	data, err := afero.ReadFile(afero.NewOsFs(), path)
	require.NoError(t, err)
	coll, err := message.ParseCollection(data)
	require.NoError(t, err)
	return coll
}

func TestCLI_InitCreatesLayout(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, execute(t, home, "init"))

	fs := afero.NewOsFs()
	for _, p := range []string{
		filepath.Join(home, "etc", "agent_settings.json"),
		filepath.Join(home, "var", "history", "dev_messages.json"),
	} {
		exists, err := afero.Exists(fs, p)
		require.NoError(t, err)
		assert.True(t, exists, "expected %s to exist", p)
	}
}

func TestCLI_SendAndUpdate(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, execute(t, home, "init"))

	content := map[string]any{
		"agent_id": "cli-tester",
		"state":    "busy",
		"progress": 50,
	}
	raw, err := json.Marshal(content)
	require.NoError(t, err)

	require.NoError(t, execute(t, home,
		"send", "--type", "status_update", "--content", string(raw)))

	coll := readChannel(t, home)
	require.Len(t, coll.Messages, 1)
	m := coll.Messages[0]
	assert.Equal(t, "cli-tester", m.Sender)
	assert.Equal(t, message.StatusPending, m.Status)
	assert.Equal(t, "cli-tester", m.Metadata["created_by"])

	require.NoError(t, execute(t, home,
		"update", m.ID.String(), "--status", "processed"))
	coll = readChannel(t, home)
	assert.Equal(t, message.StatusProcessed, coll.Messages[0].Status)
}

func TestCLI_SendRejectsInvalidContent(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, execute(t, home, "init"))

	err := execute(t, home,
		"send", "--type", "status_update", "--content", `{"agent_id": "x"}`)
	require.Error(t, err)

	// nothing reached the channel
	coll := readChannel(t, home)
	assert.Empty(t, coll.Messages)
}

func TestCLI_SendWorkflowFile(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, execute(t, home, "init"))

	wfPath := filepath.Join(home, "release.yaml")
	require.NoError(t, afero.WriteFile(afero.NewOsFs(), wfPath, []byte(`
name: release
steps:
  - name: build
    action: compile
`), 0o644))

	require.NoError(t, execute(t, home, "send", "--workflow-file", wfPath))

	coll := readChannel(t, home)
	require.Len(t, coll.Messages, 1)
	assert.Equal(t, message.TypeWorkflowRequest, coll.Messages[0].Type)
}

func TestCLI_SendRejectsUnknownType(t *testing.T) {
	home := t.TempDir()
	err := execute(t, home, "send", "--type", "gossip", "--content", "{}")
	assert.Error(t, err)
}

func TestCLI_UpdateUnknownIDFails(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, execute(t, home, "init"))

	err := execute(t, home,
		"update", "f0db5123-12cd-4f34-9e6d-9f9816d162c6", "--status", "processed")
	assert.ErrorContains(t, err, "not found")
}

func TestCLI_ReadAndCleanupRun(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, execute(t, home, "init"))
	require.NoError(t, execute(t, home, "read", "--status", "pending"))
	require.NoError(t, execute(t, home, "cleanup"))
	require.NoError(t, execute(t, home, "validate"))

	err := execute(t, home, "read", "--status", "archived")
	assert.Error(t, err, "unknown status must be rejected")
}

func TestCLI_DoctorOnFreshHome(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, execute(t, home, "init"))
	require.NoError(t, execute(t, home, "doctor"))
}

func TestLogLevelFromString(t *testing.T) {
	assert.Equal(t, LogLevelDebug, LogLevelFromString("debug"))
	assert.Equal(t, LogLevelWarn, LogLevelFromString("WARNING "))
	assert.Equal(t, LogLevelError, LogLevelFromString("error"))
	assert.Equal(t, LogLevelWarn, LogLevelFromString("verbose"))
}

func TestAppLoggerBridge(t *testing.T) {
	InitGlobalLogger("debug")
	app.SetLogger(GetLogger())
	assert.NotNil(t, app.GetLogger())
}
