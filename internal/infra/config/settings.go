// Package config loads agent settings from agent_settings.json.
package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/agentwire/agentwire/internal/app/config"
	"github.com/spf13/afero"
)

// RawSettings represents the structure of the agent_settings.json file.
// Pointer fields distinguish "absent" from zero values so defaults only
// fill real gaps.
type RawSettings struct {
	// Identity
	AgentID     *string `json:"agent_id"`
	Environment *string `json:"environment"`

	// Message lifecycle
	RetentionDays *int `json:"retention_days"`

	// Coordination bridge
	Coordination    *bool   `json:"coordination"`
	CoordinationBin *string `json:"coordination_bin"`
	TimeoutSec      *int    `json:"timeout_sec"`

	// Logging
	StderrLevel *string `json:"stderr_level"`
}

// LoadSettings loads configuration from agent_settings.json under the
// given path, applying defaults for anything absent.
// Priority: agent_settings.json > defaults.
func LoadSettings(fs afero.Fs, home, settingPath string) (*config.AppConfig, error) {
	settings := &RawSettings{}
	configSource := "default"
	loadedPath := ""

	if data, err := afero.ReadFile(fs, settingPath); err == nil {
		if err := json.Unmarshal(data, settings); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", settingPath, err)
		}
		configSource = "json"
		loadedPath = settingPath
	}

	applyDefaults(settings)

	return config.NewAppConfig(
		home,
		*settings.AgentID,
		*settings.Environment,
		*settings.RetentionDays,
		*settings.Coordination,
		*settings.CoordinationBin,
		*settings.TimeoutSec,
		*settings.StderrLevel,
		configSource,
		loadedPath,
	), nil
}

func applyDefaults(s *RawSettings) {
	if s.AgentID == nil {
		s.AgentID = strPtr("agent")
	}
	if s.Environment == nil {
		s.Environment = strPtr("development")
	}
	if s.RetentionDays == nil {
		s.RetentionDays = intPtr(7)
	}
	if s.Coordination == nil {
		s.Coordination = boolPtr(false)
	}
	if s.CoordinationBin == nil {
		s.CoordinationBin = strPtr("spacetime")
	}
	if s.TimeoutSec == nil {
		s.TimeoutSec = intPtr(30)
	}
	if s.StderrLevel == nil {
		s.StderrLevel = strPtr("warn")
	}
}

// WriteSettings persists settings to agent_settings.json, creating the
// parent directory as needed.
func WriteSettings(fs afero.Fs, settingPath string, s *RawSettings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if err := fs.MkdirAll(parentDir(settingPath), 0o755); err != nil {
		return err
	}
	return afero.WriteFile(fs, settingPath, append(data, '\n'), 0o644)
}

func parentDir(path string) string { return filepath.Dir(path) }

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }
