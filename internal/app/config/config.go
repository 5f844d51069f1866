package config

import "time"

// Config provides read-only access to application configuration.
// This interface abstracts the configuration source (JSON, defaults)
// and ensures the app layer doesn't depend on infrastructure details.
type Config interface {
	// Core settings
	Home() string        // Base directory (AGENTWIRE_HOME)
	AgentID() string     // Identity used as message sender
	Environment() string // Channel environment (development/staging/production)

	// Message lifecycle
	RetentionDays() int // Retention window for processed messages

	// Coordination bridge
	Coordination() bool      // Mirror sends to the external coordination CLI
	CoordinationBin() string // External CLI binary name
	TimeoutSec() int         // Subprocess timeout in seconds
	Timeout() time.Duration  // Subprocess timeout as Duration

	// Logging
	StderrLevel() string // Minimum stderr log level

	// Metadata
	ConfigSource() string // Source of configuration: "json" or "default"
	SettingPath() string  // Path to agent_settings.json if loaded from file
}

// AppConfig is the concrete implementation of Config interface.
type AppConfig struct {
	home        string
	agentID     string
	environment string

	retentionDays int

	coordination    bool
	coordinationBin string
	timeoutSec      int

	stderrLevel string

	configSource string
	settingPath  string
}

// NewAppConfig creates an AppConfig with all values explicitly set.
func NewAppConfig(
	home, agentID, environment string,
	retentionDays int,
	coordination bool, coordinationBin string, timeoutSec int,
	stderrLevel string,
	configSource, settingPath string,
) *AppConfig {
	return &AppConfig{
		home:            home,
		agentID:         agentID,
		environment:     environment,
		retentionDays:   retentionDays,
		coordination:    coordination,
		coordinationBin: coordinationBin,
		timeoutSec:      timeoutSec,
		stderrLevel:     stderrLevel,
		configSource:    configSource,
		settingPath:     settingPath,
	}
}

func (c *AppConfig) Home() string            { return c.home }
func (c *AppConfig) AgentID() string         { return c.agentID }
func (c *AppConfig) Environment() string     { return c.environment }
func (c *AppConfig) RetentionDays() int      { return c.retentionDays }
func (c *AppConfig) Coordination() bool      { return c.coordination }
func (c *AppConfig) CoordinationBin() string { return c.coordinationBin }
func (c *AppConfig) TimeoutSec() int         { return c.timeoutSec }
func (c *AppConfig) Timeout() time.Duration  { return time.Duration(c.timeoutSec) * time.Second }
func (c *AppConfig) StderrLevel() string     { return c.stderrLevel }
func (c *AppConfig) ConfigSource() string    { return c.configSource }
func (c *AppConfig) SettingPath() string     { return c.settingPath }
