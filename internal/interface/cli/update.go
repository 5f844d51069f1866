package cli

import (
	"encoding/json"
	"fmt"

	"github.com/agentwire/agentwire/internal/domain/message"
	"github.com/spf13/cobra"
)

func newUpdateCmd() *cobra.Command {
	var status string
	var metadata string

	cmd := &cobra.Command{
		Use:   "update <message-id>",
		Short: "Update a message's lifecycle status",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpdate(args[0], status, metadata)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "New status: processed or failed (required)")
	cmd.Flags().StringVar(&metadata, "metadata", "", "Metadata patch as JSON string (shallow merge)")
	_ = cmd.MarkFlagRequired("status")
	return cmd
}

func runUpdate(id, status, metadata string) error {
	st, err := message.ParseStatus(status)
	if err != nil {
		return err
	}

	var patch map[string]any
	if metadata != "" {
		if err := json.Unmarshal([]byte(metadata), &patch); err != nil {
			return fmt.Errorf("invalid metadata JSON: %w", err)
		}
	}

	p, err := newProtocol()
	if err != nil {
		return err
	}
	found, err := p.UpdateStatus(id, st, patch)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("message %s not found", id)
	}
	fmt.Printf("Message %s status updated to %s\n", id, st)
	return nil
}
