package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/agentwire/agentwire/internal/domain/message"
	"github.com/agentwire/agentwire/internal/domain/repository"
	"github.com/spf13/cobra"
)

func newReadCmd() *cobra.Command {
	var status string
	var msgType string
	var sender string
	var limit int
	var format string

	cmd := &cobra.Command{
		Use:   "read",
		Short: "Read and display channel messages with filtering",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRead(status, msgType, sender, limit, format)
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (pending/processed/failed)")
	cmd.Flags().StringVar(&msgType, "type", "", "Filter by message type")
	cmd.Flags().StringVar(&sender, "sender", "", "Filter by sender")
	cmd.Flags().IntVar(&limit, "limit", 0, "Keep only the most recent N results")
	cmd.Flags().StringVar(&format, "format", "", "Output format (json for CI integration)")
	return cmd
}

func runRead(status, msgType, sender string, limit int, format string) error {
	f := repository.Filter{Sender: sender, Limit: limit}
	if status != "" {
		st, err := message.ParseStatus(status)
		if err != nil {
			return err
		}
		f.Status = st
	}
	if msgType != "" {
		t, err := message.ParseType(msgType)
		if err != nil {
			return err
		}
		f.Type = t
	}

	p, err := newProtocol()
	if err != nil {
		return err
	}
	msgs, err := p.Messages(f)
	if err != nil {
		return err
	}

	if format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(msgs)
	}

	printMessages(msgs)
	return nil
}

func printMessages(msgs []*message.Message) {
	if len(msgs) == 0 {
		fmt.Println("No messages found.")
		return
	}

	fmt.Printf("%-10s %-22s %-16s %-10s %-20s %s\n",
		"ID", "TYPE", "SENDER", "STATUS", "TIMESTAMP", "CONTENT")
	for _, m := range msgs {
		fmt.Printf("%-10s %-22s %-16s %-10s %-20s %s\n",
			shortID(m.ID.String()),
			m.Type,
			m.Sender,
			m.Status,
			m.Timestamp.Format(message.TimeLayout),
			contentPreview(m),
		)
	}
	fmt.Printf("%d message(s)\n", len(msgs))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8] + ".."
	}
	return id
}

func contentPreview(m *message.Message) string {
	b, err := json.Marshal(m.Content)
	if err != nil {
		return "?"
	}
	const max = 50
	s := string(b)
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
