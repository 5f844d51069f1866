// Package cli wires the agentwire commands. The CLI is a thin dispatch
// layer: all message semantics live in the domain and application
// packages.
package cli

import (
	"os"

	"github.com/agentwire/agentwire/internal/app"
	appconfig "github.com/agentwire/agentwire/internal/app/config"
	infraconfig "github.com/agentwire/agentwire/internal/infra/config"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// globalConfig holds the loaded configuration for all commands
var globalConfig appconfig.Config

// rootFlags are the persistent overrides shared by every command.
type rootFlags struct {
	agentID     string
	environment string
	home        string
}

var rootOpts rootFlags

func NewRoot() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "agentwire",
		Short:         "File-based agent-to-agent messaging toolkit",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			home := rootOpts.home
			if home == "" {
				home = os.Getenv("AGENTWIRE_HOME")
			}
			if home == "" {
				home = ".agentwire"
			}
			paths := app.ResolvePathsIn(home)

			cfg, err := infraconfig.LoadSettings(afero.NewOsFs(), home, paths.Settings)
			if err != nil {
				// Continue with defaults if loading fails
				GetLogger().Warn("failed to load settings: %v", err)
				cfg, _ = infraconfig.LoadSettings(afero.NewOsFs(), home, "")
			}
			globalConfig = cfg

			InitGlobalLogger(cfg.StderrLevel())
			app.SetLogger(GetLogger())
			return nil
		},
		RunE: func(c *cobra.Command, _ []string) error { return c.Help() },
	}

	cmd.PersistentFlags().StringVar(&rootOpts.agentID, "agent-id", "", "Agent identifier (overrides settings)")
	cmd.PersistentFlags().StringVar(&rootOpts.environment, "environment", "", "Environment: development, staging or production")
	cmd.PersistentFlags().StringVar(&rootOpts.home, "home", "", "Home directory (default $AGENTWIRE_HOME or .agentwire)")

	cmd.AddCommand(newInitCmd())
	cmd.AddCommand(newSendCmd())
	cmd.AddCommand(newReadCmd())
	cmd.AddCommand(newUpdateCmd())
	cmd.AddCommand(newCleanupCmd())
	cmd.AddCommand(newValidateCmd())
	cmd.AddCommand(newDoctorCmd())
	cmd.AddCommand(newVersionCmd())
	return cmd
}

// agentID resolves the effective agent identity.
func agentID() string {
	if rootOpts.agentID != "" {
		return rootOpts.agentID
	}
	return globalConfig.AgentID()
}

// environment resolves the effective channel environment.
func environment() string {
	if rootOpts.environment != "" {
		return rootOpts.environment
	}
	return globalConfig.Environment()
}

// homePaths resolves the effective path layout.
func homePaths() app.Paths {
	home := rootOpts.home
	if home == "" {
		home = os.Getenv("AGENTWIRE_HOME")
	}
	if home == "" {
		home = globalConfig.Home()
	}
	if home == "" {
		home = ".agentwire"
	}
	return app.ResolvePathsIn(home)
}
