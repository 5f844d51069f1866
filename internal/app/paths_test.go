package app

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolvePathsIn(t *testing.T) {
	p := ResolvePathsIn("/srv/.agentwire")
	assert.Equal(t, "/srv/.agentwire", p.Home)
	assert.Equal(t, filepath.Join("/srv/.agentwire", "etc"), p.Etc)
	assert.Equal(t, filepath.Join("/srv/.agentwire", "var", "history"), p.History)
	assert.Equal(t, filepath.Join("/srv/.agentwire", "etc", "agent_settings.json"), p.Settings)
}

func TestResolvePaths_EnvOverride(t *testing.T) {
	t.Setenv("AGENTWIRE_HOME", "/custom/home")
	p := ResolvePaths()
	assert.Equal(t, "/custom/home", p.Home)

	t.Setenv("AGENTWIRE_HOME", "")
	p = ResolvePaths()
	assert.Equal(t, ".agentwire", p.Home)
}

func TestMessageFile(t *testing.T) {
	p := ResolvePathsIn(".agentwire")
	tests := []struct {
		environment string
		file        string
	}{
		{"development", "dev_messages.json"},
		{"staging", "staging_messages.json"},
		{"production", "agent_messages.json"},
	}
	for _, tt := range tests {
		assert.Equal(t,
			filepath.Join(".agentwire", "var", "history", tt.file),
			p.MessageFile(tt.environment))
	}
}
