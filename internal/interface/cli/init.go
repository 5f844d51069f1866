package cli

import (
	"fmt"

	"github.com/agentwire/agentwire/internal/domain/message"
	infraconfig "github.com/agentwire/agentwire/internal/infra/config"
	"github.com/agentwire/agentwire/internal/infra/repository/messagestore"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the home directory and channel file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(force)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Rewrite agent_settings.json even if it exists")
	return cmd
}

func runInit(force bool) error {
	fsys := afero.NewOsFs()
	paths := homePaths()

	for _, dir := range []string{paths.Etc, paths.History} {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}

	exists, err := afero.Exists(fsys, paths.Settings)
	if err != nil {
		return fmt.Errorf("stat settings: %w", err)
	}
	if !exists || force {
		raw := &infraconfig.RawSettings{}
		if rootOpts.agentID != "" {
			raw.AgentID = &rootOpts.agentID
		}
		if rootOpts.environment != "" {
			raw.Environment = &rootOpts.environment
		}
		if err := infraconfig.WriteSettings(fsys, paths.Settings, raw); err != nil {
			return fmt.Errorf("write settings: %w", err)
		}
		fmt.Printf("Wrote %s\n", paths.Settings)
	} else {
		fmt.Printf("Settings already present at %s (use --force to rewrite)\n", paths.Settings)
	}

	env := environment()
	if _, err := message.ParseEnvironment(env); err != nil {
		return err
	}
	store := messagestore.New(fsys, paths.MessageFile(env))
	if err := store.Initialize(map[string]any{
		"agent_id":    agentID(),
		"environment": env,
	}); err != nil {
		return fmt.Errorf("initialize channel: %w", err)
	}
	fmt.Printf("Channel ready at %s\n", store.Path())
	return nil
}
