package app

import (
	"os"
	"path/filepath"
)

// Paths holds all resolved paths for the agentwire home layout
type Paths struct {
	Home    string // .agentwire directory
	Etc     string // .agentwire/etc
	Var     string // .agentwire/var
	History string // .agentwire/var/history

	// Key files
	Settings string // .agentwire/etc/agent_settings.json
}

// ResolvePaths returns all paths based on the AGENTWIRE_HOME environment
// variable, falling back to .agentwire in the working directory.
func ResolvePaths() Paths {
	home := os.Getenv("AGENTWIRE_HOME")
	if home == "" {
		home = ".agentwire"
	}
	return ResolvePathsIn(home)
}

// ResolvePathsIn builds the path layout under an explicit home directory.
func ResolvePathsIn(home string) Paths {
	p := Paths{
		Home: home,
		Etc:  filepath.Join(home, "etc"),
		Var:  filepath.Join(home, "var"),
	}
	p.History = filepath.Join(p.Var, "history")
	p.Settings = filepath.Join(p.Etc, "agent_settings.json")
	return p
}

// MessageFile returns the channel file for an environment. Each
// environment maps to a distinct file so parallel environments don't
// collide.
func (p Paths) MessageFile(environment string) string {
	switch environment {
	case "development":
		return filepath.Join(p.History, "dev_messages.json")
	case "staging":
		return filepath.Join(p.History, "staging_messages.json")
	default:
		return filepath.Join(p.History, "agent_messages.json")
	}
}
