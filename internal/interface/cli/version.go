package cli

import (
	"fmt"

	"github.com/agentwire/agentwire/internal/buildinfo"
	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the agentwire version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("agentwire version %s\n", buildinfo.GetVersion())
			return nil
		},
	}
}
