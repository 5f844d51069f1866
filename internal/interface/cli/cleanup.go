package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCleanupCmd() *cobra.Command {
	var days int
	var noArchive bool

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Archive old processed messages",
		Long: `Cleanup removes processed messages older than the retention window
from the channel file. Unless --no-archive is given, removed messages
are written to a timestamped archive file next to the channel file.
Pending and failed messages are never removed, regardless of age.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCleanup(days, !noArchive)
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Retention days (default: from settings)")
	cmd.Flags().BoolVar(&noArchive, "no-archive", false, "Delete instead of archiving")
	return cmd
}

func runCleanup(days int, archive bool) error {
	p, err := newProtocol()
	if err != nil {
		return err
	}
	result, err := p.Cleanup(days, archive)
	if err != nil {
		return err
	}
	if result.ArchiveFile != "" {
		fmt.Printf("Archived %d message(s) to %s\n", result.Removed, result.ArchiveFile)
	} else {
		fmt.Printf("Cleaned up %d message(s)\n", result.Removed)
	}
	return nil
}
