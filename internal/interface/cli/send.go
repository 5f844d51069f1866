package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/agentwire/agentwire/internal/domain/message"
	"github.com/agentwire/agentwire/internal/workflow"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func newSendCmd() *cobra.Command {
	var msgType string
	var content string
	var workflowFile string
	var target string
	var metadata string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a validated message to the channel",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(cmd.Context(), msgType, content, workflowFile, target, metadata)
		},
	}

	cmd.Flags().StringVar(&msgType, "type", "", "Message type (required unless --workflow-file is given)")
	cmd.Flags().StringVar(&content, "content", "", "Message content as JSON string")
	cmd.Flags().StringVar(&workflowFile, "workflow-file", "", "Send a workflow_request built from a YAML definition")
	cmd.Flags().StringVar(&target, "target", "", "Target agent identifier")
	cmd.Flags().StringVar(&metadata, "metadata", "", "Additional metadata as JSON string")
	cmd.MarkFlagsMutuallyExclusive("content", "workflow-file")
	return cmd
}

func runSend(ctx context.Context, msgType, content, workflowFile, target, metadata string) error {
	var t message.Type
	var contentMap map[string]any

	switch {
	case workflowFile != "":
		def, err := workflow.Load(afero.NewOsFs(), workflowFile)
		if err != nil {
			return err
		}
		t = message.TypeWorkflowRequest
		contentMap = def.Content()
	case content != "":
		parsed, err := message.ParseType(msgType)
		if err != nil {
			return err
		}
		t = parsed
		if err := json.Unmarshal([]byte(content), &contentMap); err != nil {
			return fmt.Errorf("invalid content JSON: %w", err)
		}
	default:
		return fmt.Errorf("either --content or --workflow-file is required")
	}

	var metadataMap map[string]any
	if metadata != "" {
		if err := json.Unmarshal([]byte(metadata), &metadataMap); err != nil {
			return fmt.Errorf("invalid metadata JSON: %w", err)
		}
	}

	p, err := newProtocol()
	if err != nil {
		return err
	}

	id, err := p.Send(ctx, t, contentMap, target, metadataMap)
	if err != nil {
		var verr *message.ValidationError
		if errors.As(err, &verr) {
			GetLogger().Error("message validation failed:")
			for _, v := range verr.Violations {
				GetLogger().Error("  %s", v.String())
			}
		}
		return err
	}

	fmt.Printf("Message sent: %s (type=%s)\n", id, t)
	return nil
}
